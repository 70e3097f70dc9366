package ds323x

// Running reports whether the oscillator is enabled, reading the Control register.
func (d *Device) Running() (bool, error) {
	control, err := d.iface.readRegister(Control)
	if err != nil {
		return false, err
	}
	d.control = control &^ CONV
	return control&EOSC == 0, nil
}

// Busy reports whether a temperature conversion is in progress.
func (d *Device) Busy() (bool, error) {
	status, err := d.iface.readRegister(Status)
	return status&BSY != 0, err
}

// HasBeenStopped reports whether the oscillator is or has been stopped, meaning the time may be invalid. It stays
// true until ClearHasBeenStopped is called.
func (d *Device) HasBeenStopped() (bool, error) {
	status, err := d.iface.readRegister(Status)
	return status&OSF != 0, err
}

// ClearHasBeenStopped clears the oscillator stop flag.
func (d *Device) ClearHasBeenStopped() error {
	if err := d.iface.writeRegister(Status, d.status&^OSF|A2F|A1F); err != nil {
		return err
	}
	d.status &^= OSF
	return nil
}

// HasAlarm1Matched reports whether alarm 1 has matched since its flag was last cleared.
func (d *Device) HasAlarm1Matched() (bool, error) {
	status, err := d.iface.readRegister(Status)
	return status&A1F != 0, err
}

// ClearAlarm1Matched clears the alarm 1 flag, leaving alarm 2 and the oscillator stop flag latched.
func (d *Device) ClearAlarm1Matched() error {
	return d.iface.writeRegister(Status, d.status&^A1F|A2F|OSF)
}

// HasAlarm2Matched reports whether alarm 2 has matched since its flag was last cleared.
func (d *Device) HasAlarm2Matched() (bool, error) {
	status, err := d.iface.readRegister(Status)
	return status&A2F != 0, err
}

// ClearAlarm2Matched clears the alarm 2 flag, leaving alarm 1 and the oscillator stop flag latched.
func (d *Device) ClearAlarm2Matched() error {
	return d.iface.writeRegister(Status, d.status&^A2F|A1F|OSF)
}

// ReadTemperature returns the last converted temperature in °C, with a resolution of 0.25°C.
func (d *Device) ReadTemperature() (float32, error) {
	buf := [3]byte{TempMSB}
	if err := d.iface.readData(buf[:]); err != nil {
		return 0, err
	}
	return decodeTemperature(buf[1], buf[2]), nil
}

// decodeTemperature converts the 10-bit two's complement reading held in msb and the top two bits of lsb.
func decodeTemperature(msb, lsb uint8) float32 {
	raw := uint16(msb)<<2 | uint16(lsb>>6)
	if msb&0x80 != 0 {
		raw |= 0xFC00
	}
	return float32(int16(raw)) * 0.25
}
