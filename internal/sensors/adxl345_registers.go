package sensors

// ADXL345 register map (subset used by this driver).
const (
	regDevID      = 0x00 // expected 0xE5
	regBWRate     = 0x2C
	regPowerCtl   = 0x2D
	regDataFormat = 0x31
	regDataX0     = 0x32 // 6 contiguous bytes, little-endian X/Y/Z

	devIDVal = 0xE5

	// BW_RATE output data rate codes.
	rate50Hz  = 0x09
	rate100Hz = 0x0A

	// POWER_CTL bits.
	bitMeasure = 0x08

	// DATA_FORMAT bits.
	bitFullRes = 0x08
	range2g    = 0x00
)

// In full-resolution mode the ADXL345 reports 3.9 mg per LSB
// regardless of range.
const lsbToMS2 = 0.0039 * 9.80665
