// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"

	"github.com/relabs-tech/stride_computer/internal/accel"
)

// regIO is the register-level transport the driver talks through.
// Split out so tests can substitute a fake without I2C hardware.
type regIO interface {
	ReadReg(reg byte, dst []byte) error
	WriteReg(reg, value byte) error
}

type i2cRegIO struct {
	dev *i2c.Dev
}

func (io i2cRegIO) ReadReg(reg byte, dst []byte) error {
	return io.dev.Tx([]byte{reg}, dst)
}

func (io i2cRegIO) WriteReg(reg, value byte) error {
	return io.dev.Tx([]byte{reg, value}, nil)
}

// ADXL345 is a minimal driver for the ADXL345 accelerometer: probe,
// 50 Hz full-resolution configuration, and single-sample reads. That
// is all the step pipeline needs; FIFO and interrupt modes are not
// wired up.
type ADXL345 struct {
	dev regIO
}

// NewADXL345 probes the chip on the given I2C bus and configures it
// for 50 Hz full-resolution measurement.
func NewADXL345(bus i2c.Bus, addr uint16) (*ADXL345, error) {
	return newWithIO(i2cRegIO{dev: &i2c.Dev{Bus: bus, Addr: addr}})
}

func newWithIO(dev regIO) (*ADXL345, error) {
	if dev == nil {
		return nil, fmt.Errorf("adxl345: dev is nil")
	}
	d := &ADXL345{dev: dev}

	var id [1]byte
	if err := d.dev.ReadReg(regDevID, id[:]); err != nil {
		return nil, fmt.Errorf("adxl345: devid read failed: %w", err)
	}
	if id[0] != devIDVal {
		return nil, fmt.Errorf("adxl345: devid=0x%02X want 0x%02X", id[0], devIDVal)
	}

	if err := d.init(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *ADXL345) init() error {
	// 50 Hz matches the ~20 ms delivery the pipeline is tuned for.
	if err := d.dev.WriteReg(regBWRate, rate50Hz); err != nil {
		return fmt.Errorf("adxl345: rate config failed: %w", err)
	}
	if err := d.dev.WriteReg(regDataFormat, bitFullRes|range2g); err != nil {
		return fmt.Errorf("adxl345: data format config failed: %w", err)
	}
	if err := d.dev.WriteReg(regPowerCtl, bitMeasure); err != nil {
		return fmt.Errorf("adxl345: measure enable failed: %w", err)
	}
	return nil
}

// ReadSample reads one acceleration sample, scaled to m/s² and stamped
// on the process monotonic clock.
func (d *ADXL345) ReadSample() (accel.Sample, error) {
	var buf [6]byte
	if err := d.dev.ReadReg(regDataX0, buf[:]); err != nil {
		return accel.Sample{}, fmt.Errorf("adxl345: data read failed: %w", err)
	}

	x := int16(uint16(buf[0]) | uint16(buf[1])<<8)
	y := int16(uint16(buf[2]) | uint16(buf[3])<<8)
	z := int16(uint16(buf[4]) | uint16(buf[5])<<8)

	return accel.Sample{
		Timestamp: accel.MonotonicNanos(),
		X:         float64(x) * lsbToMS2,
		Y:         float64(y) * lsbToMS2,
		Z:         float64(z) * lsbToMS2,
	}, nil
}
