// Command ds323xctl configures and monitors a DS3231, DS3232 or DS3234 real-time clock attached to a Linux host.
package main

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ajanata/ds323x/internal/config"
)

// env is shared by all commands. The device is opened on first use and kept open, so an interactive shell talks to
// the same driver instance and its register copies for the whole session.
type env struct {
	cfgPath string
	chip    string
	i2cBus  string
	spiPort string
	verbose int

	cfg    config.Config
	log    zerolog.Logger
	out    io.Writer
	open   openFunc
	dev    clock
	closer io.Closer
}

func (e *env) setup() error {
	cfg, err := config.Load(e.cfgPath)
	if err != nil {
		return err
	}
	if e.chip != "" {
		cfg.Chip = e.chip
	}
	if e.i2cBus != "" {
		cfg.I2C.Bus = e.i2cBus
	}
	if e.spiPort != "" {
		cfg.SPI.Port = e.spiPort
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	e.cfg = cfg

	level := zerolog.InfoLevel
	switch {
	case e.verbose > 1:
		level = zerolog.TraceLevel
	case e.verbose == 1:
		level = zerolog.DebugLevel
	}
	e.log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Str("chip", cfg.Chip).Logger()
	return nil
}

func (e *env) device() (clock, error) {
	if e.dev != nil {
		return e.dev, nil
	}
	dev, closer, err := e.open(e.cfg, e.log)
	if err != nil {
		return nil, err
	}
	e.dev, e.closer = dev, closer
	return dev, nil
}

func (e *env) Close() error {
	if e.closer == nil {
		return nil
	}
	err := e.closer.Close()
	e.dev, e.closer = nil, nil
	return err
}

func newRootCmd(e *env) *cobra.Command {
	root := &cobra.Command{
		Use:           "ds323xctl",
		Short:         "Configure and monitor a DS3231/DS3232/DS3234 real-time clock",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.setup()
		},
	}
	f := root.PersistentFlags()
	f.StringVarP(&e.cfgPath, "config", "c", "", "YAML configuration file")
	f.StringVar(&e.chip, "chip", "", "chip type: ds3231, ds3232 or ds3234")
	f.StringVar(&e.i2cBus, "i2c-bus", "", "I2C bus name or number")
	f.StringVar(&e.spiPort, "spi-port", "", "SPI port name")
	f.CountVarP(&e.verbose, "verbose", "v", "debug logging, repeat to trace bus transfers")

	root.AddCommand(deviceCommands(e)...)
	root.AddCommand(newShellCmd(e), newPublishCmd(e))
	return root
}

func main() {
	e := &env{
		out:  os.Stdout,
		open: openDevice,
		log:  zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger(),
	}
	err := newRootCmd(e).Execute()
	if cerr := e.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		e.log.Error().Err(err).Msg("failed")
		os.Exit(1)
	}
}
