package ds323x

// Enable32kHzOutputOnBattery keeps the 32kHz output running on battery (default). The output itself must also be
// enabled, see Enable32kHzOutput.
func (d *DS3232) Enable32kHzOutputOnBattery() error {
	return d.set32kHzOutputOnBattery(true)
}

// Disable32kHzOutputOnBattery stops the 32kHz output on battery. It keeps running on main power if enabled.
func (d *DS3232) Disable32kHzOutputOnBattery() error {
	return d.set32kHzOutputOnBattery(false)
}

// SetTemperatureConversionRate sets how often the temperature is measured and the oscillator compensated. Slower
// rates save power but react late to sudden temperature changes.
func (d *DS3232) SetTemperatureConversionRate(rate ConversionRate) error {
	return d.setConversionRate(rate)
}

// Enable32kHzOutputOnBattery keeps the 32kHz output running on battery (default). The output itself must also be
// enabled, see Enable32kHzOutput.
func (d *DS3234) Enable32kHzOutputOnBattery() error {
	return d.set32kHzOutputOnBattery(true)
}

// Disable32kHzOutputOnBattery stops the 32kHz output on battery. It keeps running on main power if enabled.
func (d *DS3234) Disable32kHzOutputOnBattery() error {
	return d.set32kHzOutputOnBattery(false)
}

// SetTemperatureConversionRate sets how often the temperature is measured and the oscillator compensated.
func (d *DS3234) SetTemperatureConversionRate(rate ConversionRate) error {
	return d.setConversionRate(rate)
}

// EnableTemperatureConversionsOnBattery lets the DS3234 keep compensating on battery (default).
func (d *DS3234) EnableTemperatureConversionsOnBattery() error {
	return d.iface.writeRegister(TempConv, 0)
}

// DisableTemperatureConversionsOnBattery stops temperature conversions while on battery.
func (d *DS3234) DisableTemperatureConversionsOnBattery() error {
	return d.iface.writeRegister(TempConv, BBTD)
}
