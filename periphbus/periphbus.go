// Package periphbus lets drivers written against tinygo.org/x/drivers bus interfaces run on Linux hosts through
// periph.io.
package periphbus

import (
	"encoding/hex"
	"fmt"
	"io"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
	"tinygo.org/x/drivers"
)

// LogFunc receives a trace of every transfer.
type LogFunc func(format string, params ...interface{})

var (
	_ drivers.I2C = (*I2C)(nil)
	_ drivers.SPI = (*SPI)(nil)
)

// I2C adapts a periph I2C bus.
type I2C struct {
	Bus i2c.Bus
	Log LogFunc
}

func (b *I2C) log(format string, params ...interface{}) {
	if b.Log != nil {
		b.Log(format, params...)
	}
}

func (b *I2C) Tx(addr uint16, w, r []byte) error {
	if err := b.Bus.Tx(addr, w, r); err != nil {
		b.log("i2c 0x%02x: write %s: %v", addr, hex.EncodeToString(w), err)
		return err
	}
	if len(r) > 0 {
		b.log("i2c 0x%02x: write %s read %s", addr, hex.EncodeToString(w), hex.EncodeToString(r))
	} else {
		b.log("i2c 0x%02x: write %s", addr, hex.EncodeToString(w))
	}
	return nil
}

func (b *I2C) ReadRegister(addr uint8, reg uint8, buf []byte) error {
	return b.Tx(uint16(addr), []byte{reg}, buf)
}

func (b *I2C) WriteRegister(addr uint8, reg uint8, buf []byte) error {
	w := make([]byte, len(buf)+1)
	w[0] = reg
	copy(w[1:], buf)
	return b.Tx(uint16(addr), w, nil)
}

// SPI adapts a periph SPI connection. The connection owns chip select.
type SPI struct {
	Conn conn.Conn
	Log  LogFunc
}

func (s *SPI) log(format string, params ...interface{}) {
	if s.Log != nil {
		s.Log(format, params...)
	}
}

// Tx runs one full-duplex transfer. w and r may be the same slice.
func (s *SPI) Tx(w, r []byte) error {
	sent := hex.EncodeToString(w)
	if err := s.Conn.Tx(w, r); err != nil {
		s.log("spi: send %s: %v", sent, err)
		return err
	}
	if len(r) > 0 {
		s.log("spi: send %s recv %s", sent, hex.EncodeToString(r))
	} else {
		s.log("spi: send %s", sent)
	}
	return nil
}

func (s *SPI) Transfer(b byte) (byte, error) {
	buf := [1]byte{b}
	err := s.Tx(buf[:], buf[:])
	return buf[0], err
}

// OpenI2C initializes the host drivers and opens the named I2C bus ("" for the first one).
func OpenI2C(name string, logFunc LogFunc) (*I2C, io.Closer, error) {
	if _, err := host.Init(); err != nil {
		return nil, nil, fmt.Errorf("could not init host: %w", err)
	}
	bus, err := i2creg.Open(name)
	if err != nil {
		return nil, nil, fmt.Errorf("could not open i2c bus %q: %w", name, err)
	}
	return &I2C{Bus: bus, Log: logFunc}, bus, nil
}

// OpenSPI initializes the host drivers and connects to the named SPI port ("" for the first one) with 8 bit words.
func OpenSPI(name string, mode spi.Mode, freq physic.Frequency, logFunc LogFunc) (*SPI, io.Closer, error) {
	if _, err := host.Init(); err != nil {
		return nil, nil, fmt.Errorf("could not init host: %w", err)
	}
	port, err := spireg.Open(name)
	if err != nil {
		return nil, nil, fmt.Errorf("could not open spi port %q: %w", name, err)
	}
	c, err := port.Connect(freq, mode, 8)
	if err != nil {
		port.Close()
		return nil, nil, fmt.Errorf("could not connect to spi port %q: %w", name, err)
	}
	return &SPI{Conn: c, Log: logFunc}, port, nil
}
