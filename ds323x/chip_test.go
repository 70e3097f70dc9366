package ds323x

import (
	"errors"
)

// chip simulates the DS323x register file behind either an I2C or an SPI bus. Sticky status flags can only be
// cleared by writing a 0, never set by writing a 1; the busy bit is read only.
type chip struct {
	regs [256]byte
	// raw bytes written on the bus, one entry per transaction
	sent [][]byte

	// fail is returned by every transaction, failWrite only by those that write data.
	fail      error
	failWrite error
}

func newChip() *chip {
	c := &chip{}
	c.regs[Control] = ControlPOR
	c.regs[Status] = StatusPOR
	return c
}

const sticky = OSF | A2F | A1F

func (c *chip) write(reg, val uint8) {
	if reg == Status {
		old := c.regs[Status]
		val = val&^(sticky|BSY) | old&val&sticky | old&BSY
	}
	c.regs[reg] = val
}

func (c *chip) record(w []byte) {
	buf := make([]byte, len(w))
	copy(buf, w)
	c.sent = append(c.sent, buf)
}

// Tx implements drivers.I2C.
func (c *chip) Tx(addr uint16, w, r []byte) error {
	c.record(w)
	if c.fail != nil {
		return c.fail
	}
	if addr != Address {
		return errors.New("nack")
	}
	if len(w) == 0 {
		return errors.New("no register pointer")
	}
	if len(w) > 1 && c.failWrite != nil {
		return c.failWrite
	}
	ptr := w[0]
	for _, b := range w[1:] {
		c.write(ptr, b)
		ptr++
	}
	for i := range r {
		r[i] = c.regs[ptr]
		ptr++
	}
	return nil
}

func (c *chip) ReadRegister(addr uint8, reg uint8, buf []byte) error {
	return c.Tx(uint16(addr), []byte{reg}, buf)
}

func (c *chip) WriteRegister(addr uint8, reg uint8, buf []byte) error {
	return c.Tx(uint16(addr), append([]byte{reg}, buf...), nil)
}

// spiChip puts the same register file behind an SPI bus.
type spiChip struct {
	*chip
}

// Tx implements drivers.SPI.
func (c spiChip) Tx(w, r []byte) error {
	c.record(w)
	if c.fail != nil {
		return c.fail
	}
	if len(w) == 0 {
		return errors.New("empty transfer")
	}
	ptr := w[0] &^ spiWrite
	if w[0]&spiWrite != 0 {
		if c.failWrite != nil {
			return c.failWrite
		}
		for _, b := range w[1:] {
			c.write(ptr, b)
			ptr++
		}
		return nil
	}
	out := make([]byte, len(w))
	for i := 1; i < len(out); i++ {
		out[i] = c.regs[ptr]
		ptr++
	}
	copy(r, out)
	return nil
}

func (c spiChip) Transfer(b byte) (byte, error) {
	return 0, errors.New("single byte transfers are not used")
}

type pin struct {
	low   bool
	drops int
}

func (p *pin) High() {
	p.low = false
}

func (p *pin) Low() {
	p.low = true
	p.drops++
}
