// Package ds323x implements a driver for the DS3231, DS3232 and DS3234 family of extremely accurate real-time clocks.
// The DS3231 and DS3232 are reached over I2C, the DS3234 over SPI.
//
// The driver keeps a local copy of the Control and Status registers and only writes them, it never reads them back
// before a change. Those copies start from the power-on-reset values; call Resync if the device may have been
// configured by someone else. The sticky flags in the Status register (oscillator stopped and both alarms) are never
// trusted from the local copy: every Status write sets them so that a latched event is not lost, only the matching
// Clear call writes a 0 to one of them, and the flag queries always read the device.
//
// Time and alarm date encoding are not implemented.
//
// Datasheets:
// https://datasheets.maximintegrated.com/en/ds/DS3231.pdf
// https://datasheets.maximintegrated.com/en/ds/DS3232.pdf
// https://datasheets.maximintegrated.com/en/ds/DS3234.pdf
package ds323x

import (
	"tinygo.org/x/drivers"
)

// Device holds the operations common to every chip of the family.
//
// The zero value is not usable: get one from NewDS3231, NewDS3232 or NewDS3234.
type Device struct {
	iface   transport
	control uint8
	status  uint8
}

// DS3231 is a DS3231 on an I2C bus.
type DS3231 struct {
	Device
	bus drivers.I2C
}

// DS3232 is a DS3232 on an I2C bus. It adds the battery-backed 32kHz output and the conversion rate setting.
type DS3232 struct {
	Device
	bus drivers.I2C
}

// DS3234 is a DS3234 on an SPI bus. It adds the DS3232 features and control of temperature conversions on battery.
type DS3234 struct {
	Device
	bus drivers.SPI
}

func newDevice(iface transport) Device {
	return Device{
		iface:   iface,
		control: ControlPOR,
		status:  StatusPOR,
	}
}

// NewDS3231 creates a driver on a preconfigured I2C bus. No bus transaction happens.
func NewDS3231(bus drivers.I2C) *DS3231 {
	return &DS3231{
		Device: newDevice(&i2cTransport{bus: bus, address: Address}),
		bus:    bus,
	}
}

// NewDS3232 creates a driver on a preconfigured I2C bus. No bus transaction happens.
func NewDS3232(bus drivers.I2C) *DS3232 {
	return &DS3232{
		Device: newDevice(&i2cTransport{bus: bus, address: Address}),
		bus:    bus,
	}
}

// NewDS3234 creates a driver on a preconfigured SPI bus (mode 1 or 3, up to 4 MHz). cs is driven low for the duration
// of each transfer; pass nil if the bus selects the chip itself.
func NewDS3234(bus drivers.SPI, cs Pin) *DS3234 {
	if cs != nil {
		cs.High()
	}
	return &DS3234{
		Device: newDevice(&spiTransport{bus: bus, cs: cs}),
		bus:    bus,
	}
}

// SetAddress changes the I2C address used to reach the chip, for boards with an address translator in between.
func (d *DS3231) SetAddress(addr uint16) {
	d.iface.(*i2cTransport).address = addr
}

// SetAddress changes the I2C address used to reach the chip.
func (d *DS3232) SetAddress(addr uint16) {
	d.iface.(*i2cTransport).address = addr
}

// Bus returns the bus the driver was created with.
func (d *DS3231) Bus() drivers.I2C { return d.bus }

// Bus returns the bus the driver was created with.
func (d *DS3232) Bus() drivers.I2C { return d.bus }

// Bus returns the bus the driver was created with.
func (d *DS3234) Bus() drivers.SPI { return d.bus }

// ControlShadow returns the Control register value as last written by the driver.
func (d *Device) ControlShadow() uint8 {
	return d.control
}

// StatusShadow returns the Status register value as last written by the driver. The alarm flag and busy bits are
// meaningless here.
func (d *Device) StatusShadow() uint8 {
	return d.status
}

// Resync reads the Control and Status registers and replaces the local copies.
func (d *Device) Resync() error {
	var buf [3]byte
	buf[0] = Control
	if err := d.iface.readData(buf[:]); err != nil {
		return err
	}
	d.control = buf[1]
	d.status = buf[2] &^ (A2F | A1F | BSY)
	return nil
}

// ReadRegisters reads len(buf) consecutive registers starting at reg.
func (d *Device) ReadRegisters(reg uint8, buf []byte) error {
	payload := make([]byte, len(buf)+1)
	payload[0] = reg
	if err := d.iface.readData(payload); err != nil {
		return err
	}
	copy(buf, payload[1:])
	return nil
}

// WriteRegisters writes data to consecutive registers starting at reg. Writing the Control or Status register this
// way leaves the driver's copies stale until Resync is called.
func (d *Device) WriteRegisters(reg uint8, data []byte) error {
	payload := make([]byte, len(data)+1)
	payload[0] = reg
	copy(payload[1:], data)
	return d.iface.writeData(payload)
}

func (d *Device) writeControl(control uint8) error {
	if err := d.iface.writeRegister(Control, control); err != nil {
		return err
	}
	d.control = control
	return nil
}

// stickyFlags are cleared by writing 0 and left alone by writing 1.
const stickyFlags = OSF | A2F | A1F

// writeStatus keeps the sticky flags set in the written value: writing a 0 there would clear a latched event.
func (d *Device) writeStatus(status uint8) error {
	if err := d.iface.writeRegister(Status, status|stickyFlags); err != nil {
		return err
	}
	d.status = status
	return nil
}
