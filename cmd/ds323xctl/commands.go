package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ajanata/ds323x/ds323x"
	"github.com/ajanata/ds323x/internal/telemetry"
)

// feature is something that can be switched on and off.
type feature struct {
	help string
	set  func(d clock, on bool) error
}

func pick(on bool, enable, disable func() error) error {
	if on {
		return enable()
	}
	return disable()
}

func battery(d clock, chip string) (batteryClock, error) {
	b, ok := d.(batteryClock)
	if !ok {
		return nil, fmt.Errorf("%s has no battery-backed 32kHz output or conversion rate", chip)
	}
	return b, nil
}

func (e *env) features() map[string]feature {
	return map[string]feature{
		"oscillator": {"oscillator on battery", func(d clock, on bool) error {
			return pick(on, d.Enable, d.Disable)
		}},
		"sqw": {"battery-backed square wave", func(d clock, on bool) error {
			return pick(on, d.EnableSquareWave, d.DisableSquareWave)
		}},
		"32khz": {"32kHz output", func(d clock, on bool) error {
			return pick(on, d.Enable32kHzOutput, d.Disable32kHzOutput)
		}},
		"alarm1-int": {"alarm 1 interrupts", func(d clock, on bool) error {
			return pick(on, d.EnableAlarm1Interrupts, d.DisableAlarm1Interrupts)
		}},
		"alarm2-int": {"alarm 2 interrupts", func(d clock, on bool) error {
			return pick(on, d.EnableAlarm2Interrupts, d.DisableAlarm2Interrupts)
		}},
		"32khz-battery": {"32kHz output on battery (ds3232, ds3234)", func(d clock, on bool) error {
			b, err := battery(d, e.cfg.Chip)
			if err != nil {
				return err
			}
			return pick(on, b.Enable32kHzOutputOnBattery, b.Disable32kHzOutputOnBattery)
		}},
		"conv-battery": {"temperature conversions on battery (ds3234)", func(d clock, on bool) error {
			c, ok := d.(conversionClock)
			if !ok {
				return fmt.Errorf("%s cannot control conversions on battery", e.cfg.Chip)
			}
			return pick(on, c.EnableTemperatureConversionsOnBattery, c.DisableTemperatureConversionsOnBattery)
		}},
	}
}

func featureList(features map[string]feature) string {
	names := make([]string, 0, len(features))
	for name, f := range features {
		names = append(names, fmt.Sprintf("  %-14s %s", name, f.help))
	}
	sort.Strings(names)
	return strings.Join(names, "\n")
}

func newToggleCmd(e *env, on bool) *cobra.Command {
	use, short := "disable", "Disable a device feature"
	if on {
		use, short = "enable", "Enable a device feature"
	}
	return &cobra.Command{
		Use:   use + " FEATURE",
		Short: short,
		Long:  "Features:\n" + featureList(e.features()),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, ok := e.features()[args[0]]
			if !ok {
				return fmt.Errorf("unknown feature %q", args[0])
			}
			d, err := e.device()
			if err != nil {
				return err
			}
			return f.set(d, on)
		},
	}
}

func onOff(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func newStatusCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show oscillator, alarm and temperature state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := e.device()
			if err != nil {
				return err
			}
			s, err := telemetry.Collect(d, e.cfg.Chip, timeNow())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "chip:         %s\n", s.Chip)
			fmt.Fprintf(w, "running:      %s\n", onOff(s.Running))
			fmt.Fprintf(w, "stopped flag: %s\n", onOff(s.Stopped))
			fmt.Fprintf(w, "busy:         %s\n", onOff(s.Busy))
			fmt.Fprintf(w, "alarm 1:      %s\n", onOff(s.Alarm1))
			fmt.Fprintf(w, "alarm 2:      %s\n", onOff(s.Alarm2))
			fmt.Fprintf(w, "temperature:  %.2f°C\n", s.Temperature)
			fmt.Fprintf(w, "aging offset: %d\n", s.AgingOffset)
			fmt.Fprintf(w, "control:      0x%02X (driver 0x%02X)\n", s.Control, d.ControlShadow())
			fmt.Fprintf(w, "status:       0x%02X (driver 0x%02X)\n", s.Status, d.StatusShadow())
			return nil
		},
	}
}

func newTempCmd(e *env) *cobra.Command {
	var convert bool
	cmd := &cobra.Command{
		Use:   "temp",
		Short: "Read the temperature",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := e.device()
			if err != nil {
				return err
			}
			if convert {
				if err := d.ConvertTemperature(); err != nil {
					return err
				}
			}
			t, err := d.ReadTemperature()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%.2f\n", t)
			return nil
		},
	}
	cmd.Flags().BoolVar(&convert, "convert", false, "force a conversion first (the reading may still be the previous one while busy)")
	return cmd
}

func newOutputCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:       "output interrupt|square-wave",
		Short:     "Select the INT/SQW pin function",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"interrupt", "square-wave"},
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := e.device()
			if err != nil {
				return err
			}
			switch args[0] {
			case "interrupt":
				return d.UseInterruptOutput()
			case "square-wave":
				return d.UseSquareWaveOutput()
			}
			return fmt.Errorf("unknown output mode %q", args[0])
		},
	}
}

var frequencies = map[string]ds323x.SquareWaveFrequency{
	"1":    ds323x.SquareWave1Hz,
	"1024": ds323x.SquareWave1024Hz,
	"4096": ds323x.SquareWave4096Hz,
	"8192": ds323x.SquareWave8192Hz,
}

func newFreqCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "freq 1|1024|4096|8192",
		Short: "Set the square-wave frequency in Hz",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			freq, ok := frequencies[args[0]]
			if !ok {
				return fmt.Errorf("unsupported frequency %q", args[0])
			}
			d, err := e.device()
			if err != nil {
				return err
			}
			return d.SetSquareWaveFrequency(freq)
		},
	}
}

var rates = map[string]ds323x.ConversionRate{
	"64":  ds323x.ConversionRate64s,
	"128": ds323x.ConversionRate128s,
	"256": ds323x.ConversionRate256s,
	"512": ds323x.ConversionRate512s,
}

func newRateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "rate 64|128|256|512",
		Short: "Set the temperature conversion interval in seconds (ds3232, ds3234)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rate, ok := rates[args[0]]
			if !ok {
				return fmt.Errorf("unsupported rate %q", args[0])
			}
			d, err := e.device()
			if err != nil {
				return err
			}
			b, err := battery(d, e.cfg.Chip)
			if err != nil {
				return err
			}
			return b.SetTemperatureConversionRate(rate)
		},
	}
}

// newAgingCmd takes no flags so that a negative offset is not read as a shorthand flag.
func newAgingCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:                "aging [OFFSET]",
		Short:              "Read or set the aging offset (-128 to 127)",
		Args:               cobra.MaximumNArgs(1),
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 && (args[0] == "-h" || args[0] == "--help") {
				return cmd.Help()
			}
			d, err := e.device()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				v, err := strconv.ParseInt(args[0], 0, 8)
				if err != nil {
					return fmt.Errorf("invalid aging offset %q: %w", args[0], err)
				}
				return d.SetAgingOffset(int8(v))
			}
			v, err := d.AgingOffset()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	}
}

func newClearCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:       "clear alarm1|alarm2|stopped",
		Short:     "Clear a sticky status flag",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"alarm1", "alarm2", "stopped"},
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := e.device()
			if err != nil {
				return err
			}
			switch args[0] {
			case "alarm1":
				return d.ClearAlarm1Matched()
			case "alarm2":
				return d.ClearAlarm2Matched()
			case "stopped":
				return d.ClearHasBeenStopped()
			}
			return fmt.Errorf("unknown flag %q", args[0])
		},
	}
}

func parseByte(s string) (uint8, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid byte %q", s)
	}
	return uint8(v), nil
}

func newRegCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reg",
		Short: "Raw register access",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "read ADDR [COUNT]",
		Short: "Read COUNT registers starting at ADDR",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := parseByte(args[0])
			if err != nil {
				return err
			}
			n := uint8(1)
			if len(args) == 2 {
				if n, err = parseByte(args[1]); err != nil {
					return err
				}
			}
			d, err := e.device()
			if err != nil {
				return err
			}
			buf := make([]byte, n)
			if err := d.ReadRegisters(addr, buf); err != nil {
				return err
			}
			for i, b := range buf {
				fmt.Fprintf(cmd.OutOrStdout(), "0x%02X: 0x%02X\n", int(addr)+i, b)
			}
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "write ADDR VALUE...",
		Short: "Write consecutive registers starting at ADDR",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := parseByte(args[0])
			if err != nil {
				return err
			}
			data := make([]byte, len(args)-1)
			for i, a := range args[1:] {
				if data[i], err = parseByte(a); err != nil {
					return err
				}
			}
			d, err := e.device()
			if err != nil {
				return err
			}
			if err := d.WriteRegisters(addr, data); err != nil {
				return err
			}
			end := int(addr) + len(data)
			if int(addr) <= ds323x.Status && end > ds323x.Control {
				e.log.Debug().Msg("control or status written directly, resyncing")
				return d.Resync()
			}
			return nil
		},
	})
	return cmd
}

func newResyncCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "resync",
		Short: "Reload the driver's copy of the control and status registers from the device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := e.device()
			if err != nil {
				return err
			}
			return d.Resync()
		},
	}
}

func deviceCommands(e *env) []*cobra.Command {
	return []*cobra.Command{
		newStatusCmd(e),
		newTempCmd(e),
		newToggleCmd(e, true),
		newToggleCmd(e, false),
		newOutputCmd(e),
		newFreqCmd(e),
		newRateCmd(e),
		newAgingCmd(e),
		newClearCmd(e),
		newRegCmd(e),
		newResyncCmd(e),
	}
}
