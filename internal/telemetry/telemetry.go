// Package telemetry samples a DS323x and publishes the readings over MQTT.
package telemetry

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/ajanata/ds323x/ds323x"
)

// Source is the part of a DS323x driver needed to take a snapshot. Every chip type satisfies it.
type Source interface {
	ReadRegisters(reg uint8, buf []byte) error
	ReadTemperature() (float32, error)
	ConvertTemperature() error
	Busy() (bool, error)
}

// Snapshot is one sample of the device state.
type Snapshot struct {
	Chip        string    `json:"chip"`
	Time        time.Time `json:"time"`
	Temperature float32   `json:"temperature"`
	AgingOffset int8      `json:"aging_offset"`
	Running     bool      `json:"running"`
	Busy        bool      `json:"busy"`
	Stopped     bool      `json:"stopped"`
	Alarm1      bool      `json:"alarm1"`
	Alarm2      bool      `json:"alarm2"`
	Control     uint8     `json:"control"`
	Status      uint8     `json:"status"`
}

// Collect reads Control, Status and the aging offset in one transfer, then the temperature.
func Collect(src Source, chip string, now time.Time) (Snapshot, error) {
	var regs [3]byte
	if err := src.ReadRegisters(ds323x.Control, regs[:]); err != nil {
		return Snapshot{}, err
	}
	temp, err := src.ReadTemperature()
	if err != nil {
		return Snapshot{}, err
	}
	control, status := regs[0], regs[1]
	return Snapshot{
		Chip:        chip,
		Time:        now,
		Temperature: temp,
		AgingOffset: int8(regs[2]),
		Running:     control&ds323x.EOSC == 0,
		Busy:        status&ds323x.BSY != 0,
		Stopped:     status&ds323x.OSF != 0,
		Alarm1:      status&ds323x.A1F != 0,
		Alarm2:      status&ds323x.A2F != 0,
		Control:     control,
		Status:      status,
	}, nil
}

// Encode serializes s as "json" or "cbor".
func Encode(s Snapshot, format string) ([]byte, error) {
	switch format {
	case "json":
		return json.Marshal(s)
	case "cbor":
		return cbor.Marshal(s)
	}
	return nil, fmt.Errorf("unknown payload format %q", format)
}
