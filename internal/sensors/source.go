package sensors

import (
	"fmt"

	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/stride_computer/internal/accel"
	"github.com/relabs-tech/stride_computer/internal/config"
)

type adxlSource struct {
	dev *ADXL345
}

// NewAccelSource initializes periph, opens the configured I2C bus and
// returns an accel.Source backed by the ADXL345.
func NewAccelSource() (accel.Source, error) {
	cfg := config.Get()

	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("accel: periph host init: %w", err)
	}

	bus, err := i2creg.Open(cfg.AccelI2CBus)
	if err != nil {
		return nil, fmt.Errorf("accel: open I2C bus %q: %w", cfg.AccelI2CBus, err)
	}

	dev, err := NewADXL345(bus, cfg.AccelI2CAddr)
	if err != nil {
		return nil, fmt.Errorf("accel: init ADXL345 at 0x%02X: %w", cfg.AccelI2CAddr, err)
	}

	return &adxlSource{dev: dev}, nil
}

func (s *adxlSource) Next() (accel.Sample, error) {
	return s.dev.ReadSample()
}
