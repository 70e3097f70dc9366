package ds323x

// Address is the fixed I2C address of the DS3231 and DS3232.
const Address = 0x68

// Registers
const (
	Seconds     = 0x00 // Time registers starting with seconds
	Alarm1      = 0x07 // Alarm 1 registers starting with seconds
	Alarm2      = 0x0B // Alarm 2 registers starting with minutes
	Control     = 0x0E // Control register
	Status      = 0x0F // Control/status register
	AgingOffset = 0x10 // Aging offset, signed
	TempMSB     = 0x11 // Temperature integer part, signed
	TempLSB     = 0x12 // Temperature fraction in the upper two bits
	TempConv    = 0x13 // Temperature conversion on battery (DS3234 only)
)

// Control register bits
const (
	EOSC  = 0x80 // Oscillator disabled when set (on battery only)
	BBSQW = 0x40 // Battery-backed square-wave enable
	CONV  = 0x20 // Temperature conversion in progress / start
	RS2   = 0x10 // Square-wave rate select, high bit
	RS1   = 0x08 // Square-wave rate select, low bit
	INTCN = 0x04 // INT/SQW pin used as interrupt output when set
	A2IE  = 0x02 // Alarm 2 interrupt enable
	A1IE  = 0x01 // Alarm 1 interrupt enable
)

// Status register bits
const (
	OSF     = 0x80 // Oscillator stop flag, sticky
	BB32KHZ = 0x40 // 32kHz output enabled on battery (DS3232, DS3234)
	CRATE1  = 0x20 // Temperature conversion rate, high bit (DS3232, DS3234)
	CRATE0  = 0x10 // Temperature conversion rate, low bit (DS3232, DS3234)
	EN32KHZ = 0x08 // 32kHz output enable
	BSY     = 0x04 // Temperature conversion busy, read only
	A2F     = 0x02 // Alarm 2 matched, sticky
	A1F     = 0x01 // Alarm 1 matched, sticky
)

// TempConv register bits
const (
	BBTD = 0x01 // Temperature conversions disabled on battery
)

// Power-on-reset register contents.
const (
	ControlPOR = INTCN | RS2 | RS1
	StatusPOR  = OSF | BB32KHZ | EN32KHZ
)

// spiWrite is set in the address byte of every SPI write.
const spiWrite = 0x80
