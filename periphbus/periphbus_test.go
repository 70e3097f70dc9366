package periphbus

import (
	"errors"
	"fmt"
	"testing"

	qt "github.com/frankban/quicktest"
	"periph.io/x/conn/v3/conntest"
	"periph.io/x/conn/v3/i2c/i2ctest"

	"github.com/ajanata/ds323x/ds323x"
)

type logLines []string

func (l *logLines) log(format string, params ...interface{}) {
	*l = append(*l, fmt.Sprintf(format, params...))
}

func TestI2CRegisters(t *testing.T) {
	c := qt.New(t)
	pb := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: ds323x.Address, W: []byte{ds323x.Status}, R: []byte{0x88}},
			{Addr: ds323x.Address, W: []byte{ds323x.Control, 0x1C}},
		},
		DontPanic: true,
	}
	var lines logLines
	b := &I2C{Bus: pb, Log: lines.log}

	buf := make([]byte, 1)
	c.Assert(b.ReadRegister(ds323x.Address, ds323x.Status, buf), qt.IsNil)
	c.Assert(buf[0], qt.Equals, uint8(0x88))
	c.Assert(b.WriteRegister(ds323x.Address, ds323x.Control, []byte{0x1C}), qt.IsNil)
	c.Assert(pb.Close(), qt.IsNil)

	c.Assert([]string(lines), qt.DeepEquals, []string{
		"i2c 0x68: write 0f read 88",
		"i2c 0x68: write 0e1c",
	})
}

func TestI2CDrivesDS3232(t *testing.T) {
	c := qt.New(t)
	pb := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: ds323x.Address, W: []byte{ds323x.TempMSB}, R: []byte{0x19, 0x40}},
			{Addr: ds323x.Address, W: []byte{ds323x.Status, ds323x.StatusPOR&^ds323x.EN32KHZ | ds323x.A2F | ds323x.A1F}},
		},
		DontPanic: true,
	}
	d := ds323x.NewDS3232(&I2C{Bus: pb})

	temp, err := d.ReadTemperature()
	c.Assert(err, qt.IsNil)
	c.Assert(temp, qt.Equals, float32(25.25))
	c.Assert(d.Disable32kHzOutput(), qt.IsNil)
	c.Assert(pb.Close(), qt.IsNil)
}

func TestI2CErrorIsTraced(t *testing.T) {
	c := qt.New(t)
	pb := &i2ctest.Playback{DontPanic: true}
	var lines logLines
	b := &I2C{Bus: pb, Log: lines.log}

	err := b.Tx(0x68, []byte{0x0E}, make([]byte, 1))
	c.Assert(err, qt.Not(qt.IsNil))
	c.Assert(lines, qt.HasLen, 1)
}

func TestSPIDrivesDS3234(t *testing.T) {
	c := qt.New(t)
	pb := &conntest.Playback{
		Ops: []conntest.IO{
			{W: []byte{ds323x.Status, 0}, R: []byte{0, ds323x.BSY}},
			{W: []byte{ds323x.Control | 0x80, ds323x.ControlPOR | ds323x.EOSC}},
			{W: []byte{ds323x.TempConv | 0x80, ds323x.BBTD}},
		},
		DontPanic: true,
	}
	var lines logLines
	d := ds323x.NewDS3234(&SPI{Conn: pb, Log: lines.log}, nil)

	busy, err := d.Busy()
	c.Assert(err, qt.IsNil)
	c.Assert(busy, qt.Equals, true)
	c.Assert(d.Disable(), qt.IsNil)
	c.Assert(d.DisableTemperatureConversionsOnBattery(), qt.IsNil)
	c.Assert(pb.Close(), qt.IsNil)

	c.Assert([]string(lines), qt.DeepEquals, []string{
		"spi: send 0f00 recv 0004",
		"spi: send 8e9c",
		"spi: send 9301",
	})
}

func TestSPITransfer(t *testing.T) {
	c := qt.New(t)
	pb := &conntest.Playback{
		Ops:       []conntest.IO{{W: []byte{0xAB}, R: []byte{0xCD}}},
		DontPanic: true,
	}
	b := &SPI{Conn: pb}

	got, err := b.Transfer(0xAB)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, byte(0xCD))
	c.Assert(pb.Close(), qt.IsNil)
}

func TestSPIErrorSurfacesAsTransportError(t *testing.T) {
	c := qt.New(t)
	pb := &conntest.Playback{DontPanic: true}
	d := ds323x.NewDS3234(&SPI{Conn: pb}, nil)

	_, err := d.HasAlarm1Matched()
	var te *ds323x.TransportError
	c.Assert(errors.As(err, &te), qt.Equals, true)
	c.Assert(te.Register, qt.Equals, uint8(ds323x.Status))
	c.Assert(d.StatusShadow(), qt.Equals, uint8(ds323x.StatusPOR))
}
