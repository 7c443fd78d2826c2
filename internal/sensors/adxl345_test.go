package sensors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRegIO emulates the register surface of an ADXL345.
type fakeRegIO struct {
	devID  byte
	data   [6]byte
	writes map[byte]byte
}

func newFakeRegIO(devID byte) *fakeRegIO {
	return &fakeRegIO{devID: devID, writes: make(map[byte]byte)}
}

func (f *fakeRegIO) ReadReg(reg byte, dst []byte) error {
	switch reg {
	case regDevID:
		dst[0] = f.devID
	case regDataX0:
		copy(dst, f.data[:])
	}
	return nil
}

func (f *fakeRegIO) WriteReg(reg, value byte) error {
	f.writes[reg] = value
	return nil
}

func TestNewADXL345_RejectsWrongDevID(t *testing.T) {
	_, err := newWithIO(newFakeRegIO(0x33))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "devid")
}

func TestNewADXL345_ConfiguresMeasurement(t *testing.T) {
	fake := newFakeRegIO(devIDVal)

	_, err := newWithIO(fake)
	require.NoError(t, err)

	assert.Equal(t, byte(rate50Hz), fake.writes[regBWRate])
	assert.Equal(t, byte(bitFullRes|range2g), fake.writes[regDataFormat])
	assert.Equal(t, byte(bitMeasure), fake.writes[regPowerCtl])
}

func TestReadSample_ScalesToMS2(t *testing.T) {
	fake := newFakeRegIO(devIDVal)
	d, err := newWithIO(fake)
	require.NoError(t, err)

	// X=+256 LSB, Y=-256 LSB, Z=+1 LSB, little-endian.
	fake.data = [6]byte{0x00, 0x01, 0x00, 0xFF, 0x01, 0x00}

	s, err := d.ReadSample()
	require.NoError(t, err)

	assert.InDelta(t, 256*lsbToMS2, s.X, 1e-9)
	assert.InDelta(t, -256*lsbToMS2, s.Y, 1e-9)
	assert.InDelta(t, 1*lsbToMS2, s.Z, 1e-9)
	assert.Greater(t, s.Timestamp, int64(0))
}
