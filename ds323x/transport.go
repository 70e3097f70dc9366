package ds323x

import (
	"tinygo.org/x/drivers"
)

// Pin is a chip-select output. machine.Pin satisfies it.
type Pin interface {
	High()
	Low()
}

// transport moves register contents over the wire. Payload-based methods take
// the start register in payload[0], followed by the data bytes.
type transport interface {
	readRegister(reg uint8) (uint8, error)
	writeRegister(reg, val uint8) error
	readData(payload []byte) error
	writeData(payload []byte) error
}

// i2cTransport addresses registers by writing the register number first.
type i2cTransport struct {
	bus     drivers.I2C
	address uint16
}

func (t *i2cTransport) readRegister(reg uint8) (uint8, error) {
	w := [1]byte{reg}
	r := [1]byte{}
	if err := t.bus.Tx(t.address, w[:], r[:]); err != nil {
		return 0, &TransportError{Op: "read", Register: reg, Err: err}
	}
	return r[0], nil
}

func (t *i2cTransport) writeRegister(reg, val uint8) error {
	buf := [2]byte{reg, val}
	if err := t.bus.Tx(t.address, buf[:], nil); err != nil {
		return &TransportError{Op: "write", Register: reg, Err: err}
	}
	return nil
}

func (t *i2cTransport) readData(payload []byte) error {
	if err := t.bus.Tx(t.address, payload[:1], payload[1:]); err != nil {
		return &TransportError{Op: "read", Register: payload[0], Err: err}
	}
	return nil
}

func (t *i2cTransport) writeData(payload []byte) error {
	if err := t.bus.Tx(t.address, payload, nil); err != nil {
		return &TransportError{Op: "write", Register: payload[0], Err: err}
	}
	return nil
}

// spiTransport sets bit 7 of the address byte for writes. Reads send the bare
// address and clock the data out in the same full-duplex transfer.
type spiTransport struct {
	bus drivers.SPI
	cs  Pin
}

func (t *spiTransport) tx(w, r []byte) error {
	if t.cs != nil {
		t.cs.Low()
		defer t.cs.High()
	}
	return t.bus.Tx(w, r)
}

func (t *spiTransport) readRegister(reg uint8) (uint8, error) {
	buf := [2]byte{reg, 0}
	if err := t.tx(buf[:], buf[:]); err != nil {
		return 0, &TransportError{Op: "read", Register: reg, Err: err}
	}
	return buf[1], nil
}

func (t *spiTransport) writeRegister(reg, val uint8) error {
	buf := [2]byte{reg | spiWrite, val}
	if err := t.tx(buf[:], nil); err != nil {
		return &TransportError{Op: "write", Register: reg, Err: err}
	}
	return nil
}

// readData overwrites payload in place; payload[0] receives whatever the
// device drove while the address was being clocked in.
func (t *spiTransport) readData(payload []byte) error {
	reg := payload[0]
	if err := t.tx(payload, payload); err != nil {
		return &TransportError{Op: "read", Register: reg, Err: err}
	}
	return nil
}

func (t *spiTransport) writeData(payload []byte) error {
	reg := payload[0]
	buf := make([]byte, len(payload))
	copy(buf, payload)
	buf[0] |= spiWrite
	if err := t.tx(buf, nil); err != nil {
		return &TransportError{Op: "write", Register: reg, Err: err}
	}
	return nil
}
