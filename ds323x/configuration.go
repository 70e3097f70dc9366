package ds323x

// SquareWaveFrequency is the rate of the INT/SQW output in square-wave mode.
type SquareWaveFrequency uint8

const (
	SquareWave1Hz SquareWaveFrequency = iota
	SquareWave1024Hz
	SquareWave4096Hz
	SquareWave8192Hz
)

// ConversionRate is the interval between automatic temperature conversions (DS3232 and DS3234 only).
type ConversionRate uint8

const (
	ConversionRate64s ConversionRate = iota
	ConversionRate128s
	ConversionRate256s
	ConversionRate512s
)

// twoBitField clears both bits of a field, then sets the ones selected by v (0 to 3, high bit first).
func twoBitField(reg, high, low uint8, v uint8) uint8 {
	reg &^= high | low
	if v&0b10 != 0 {
		reg |= high
	}
	if v&0b01 != 0 {
		reg |= low
	}
	return reg
}

func setBit(reg, bit uint8, on bool) uint8 {
	if on {
		return reg | bit
	}
	return reg &^ bit
}

// Enable starts the oscillator (default). The EOSC bit only has an effect while running on battery.
func (d *Device) Enable() error {
	return d.writeControl(setBit(d.control, EOSC, false))
}

// Disable stops the oscillator when the device switches to battery.
func (d *Device) Disable() error {
	return d.writeControl(setBit(d.control, EOSC, true))
}

// ConvertTemperature forces a temperature conversion and oscillator compensation. Nothing is written when a
// conversion is already in progress.
func (d *Device) ConvertTemperature() error {
	control, err := d.iface.readRegister(Control)
	if err != nil {
		return err
	}
	if control&CONV == 0 {
		if err := d.iface.writeRegister(Control, control|CONV); err != nil {
			return err
		}
	}
	d.control = control &^ CONV
	return nil
}

// Enable32kHzOutput enables the 32kHz output pin (default).
func (d *Device) Enable32kHzOutput() error {
	return d.writeStatus(setBit(d.status, EN32KHZ, true))
}

// Disable32kHzOutput disables the 32kHz output pin.
func (d *Device) Disable32kHzOutput() error {
	return d.writeStatus(setBit(d.status, EN32KHZ, false))
}

// SetAgingOffset writes the aging offset. Positive values slow the oscillator down, roughly 0.1ppm per step at 25°C.
func (d *Device) SetAgingOffset(offset int8) error {
	return d.iface.writeRegister(AgingOffset, uint8(offset))
}

// AgingOffset reads the aging offset.
func (d *Device) AgingOffset() (int8, error) {
	v, err := d.iface.readRegister(AgingOffset)
	return int8(v), err
}

// UseInterruptOutput makes the INT/SQW pin an alarm interrupt output.
func (d *Device) UseInterruptOutput() error {
	return d.writeControl(setBit(d.control, INTCN, true))
}

// UseSquareWaveOutput makes the INT/SQW pin a square-wave output.
func (d *Device) UseSquareWaveOutput() error {
	return d.writeControl(setBit(d.control, INTCN, false))
}

// EnableSquareWave enables the square wave while running on battery.
func (d *Device) EnableSquareWave() error {
	return d.writeControl(setBit(d.control, BBSQW, true))
}

// DisableSquareWave disables the square wave while running on battery.
func (d *Device) DisableSquareWave() error {
	return d.writeControl(setBit(d.control, BBSQW, false))
}

// SetSquareWaveFrequency selects the square-wave output rate.
func (d *Device) SetSquareWaveFrequency(freq SquareWaveFrequency) error {
	if freq > SquareWave8192Hz {
		return ErrInvalidInputData
	}
	return d.writeControl(twoBitField(d.control, RS2, RS1, uint8(freq)))
}

// EnableAlarm1Interrupts lets alarm 1 assert the INT pin. The pin must be in interrupt mode, see UseInterruptOutput.
func (d *Device) EnableAlarm1Interrupts() error {
	return d.writeControl(setBit(d.control, A1IE, true))
}

// DisableAlarm1Interrupts stops alarm 1 from asserting the INT pin.
func (d *Device) DisableAlarm1Interrupts() error {
	return d.writeControl(setBit(d.control, A1IE, false))
}

// EnableAlarm2Interrupts lets alarm 2 assert the INT pin. The pin must be in interrupt mode, see UseInterruptOutput.
func (d *Device) EnableAlarm2Interrupts() error {
	return d.writeControl(setBit(d.control, A2IE, true))
}

// DisableAlarm2Interrupts stops alarm 2 from asserting the INT pin.
func (d *Device) DisableAlarm2Interrupts() error {
	return d.writeControl(setBit(d.control, A2IE, false))
}

func (d *Device) set32kHzOutputOnBattery(on bool) error {
	return d.writeStatus(setBit(d.status, BB32KHZ, on))
}

func (d *Device) setConversionRate(rate ConversionRate) error {
	if rate > ConversionRate512s {
		return ErrInvalidInputData
	}
	return d.writeStatus(twoBitField(d.status, CRATE1, CRATE0, uint8(rate)))
}
