package main

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"

	"github.com/ajanata/ds323x/ds323x"
	"github.com/ajanata/ds323x/internal/config"
	"github.com/ajanata/ds323x/internal/telemetry"
	"github.com/ajanata/ds323x/periphbus"
)

// clock is what every chip of the family can do.
type clock interface {
	telemetry.Source

	Enable() error
	Disable() error
	Running() (bool, error)
	HasBeenStopped() (bool, error)
	ClearHasBeenStopped() error
	HasAlarm1Matched() (bool, error)
	ClearAlarm1Matched() error
	HasAlarm2Matched() (bool, error)
	ClearAlarm2Matched() error
	Enable32kHzOutput() error
	Disable32kHzOutput() error
	SetAgingOffset(offset int8) error
	AgingOffset() (int8, error)
	UseInterruptOutput() error
	UseSquareWaveOutput() error
	EnableSquareWave() error
	DisableSquareWave() error
	SetSquareWaveFrequency(freq ds323x.SquareWaveFrequency) error
	EnableAlarm1Interrupts() error
	DisableAlarm1Interrupts() error
	EnableAlarm2Interrupts() error
	DisableAlarm2Interrupts() error
	WriteRegisters(reg uint8, data []byte) error
	Resync() error
	ControlShadow() uint8
	StatusShadow() uint8
}

// batteryClock is a DS3232 or DS3234.
type batteryClock interface {
	Enable32kHzOutputOnBattery() error
	Disable32kHzOutputOnBattery() error
	SetTemperatureConversionRate(rate ds323x.ConversionRate) error
}

// conversionClock is a DS3234.
type conversionClock interface {
	EnableTemperatureConversionsOnBattery() error
	DisableTemperatureConversionsOnBattery() error
}

var (
	_ clock           = (*ds323x.DS3231)(nil)
	_ batteryClock    = (*ds323x.DS3232)(nil)
	_ batteryClock    = (*ds323x.DS3234)(nil)
	_ conversionClock = (*ds323x.DS3234)(nil)
)

type openFunc func(cfg config.Config, log zerolog.Logger) (clock, io.Closer, error)

func openDevice(cfg config.Config, log zerolog.Logger) (clock, io.Closer, error) {
	trace := func(format string, params ...interface{}) {
		log.Trace().Msgf(format, params...)
	}

	if cfg.IsSPI() {
		mode := spi.Mode1
		if cfg.SPI.Mode == 3 {
			mode = spi.Mode3
		}
		bus, closer, err := periphbus.OpenSPI(cfg.SPI.Port, mode, physic.Frequency(cfg.SPI.Frequency)*physic.Hertz, trace)
		if err != nil {
			return nil, nil, err
		}
		log.Debug().Str("port", cfg.SPI.Port).Int("mode", cfg.SPI.Mode).Msg("opened spi")
		return ds323x.NewDS3234(bus, nil), closer, nil
	}

	bus, closer, err := periphbus.OpenI2C(cfg.I2C.Bus, trace)
	if err != nil {
		return nil, nil, err
	}
	log.Debug().Str("bus", cfg.I2C.Bus).Uint16("address", cfg.I2C.Address).Msg("opened i2c")
	switch cfg.Chip {
	case config.ChipDS3232:
		d := ds323x.NewDS3232(bus)
		d.SetAddress(cfg.I2C.Address)
		return d, closer, nil
	case config.ChipDS3231:
		d := ds323x.NewDS3231(bus)
		d.SetAddress(cfg.I2C.Address)
		return d, closer, nil
	}
	closer.Close()
	return nil, nil, fmt.Errorf("unknown chip %q", cfg.Chip)
}
