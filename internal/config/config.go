// Package config loads the ds323xctl configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Chip names accepted in the configuration.
const (
	ChipDS3231 = "ds3231"
	ChipDS3232 = "ds3232"
	ChipDS3234 = "ds3234"
)

// Payload formats accepted for telemetry.
const (
	FormatJSON = "json"
	FormatCBOR = "cbor"
)

type Config struct {
	Chip string     `yaml:"chip"`
	I2C  I2CConfig  `yaml:"i2c"`
	SPI  SPIConfig  `yaml:"spi"`
	MQTT MQTTConfig `yaml:"mqtt"`
}

type I2CConfig struct {
	Bus     string `yaml:"bus"`
	Address uint16 `yaml:"address"`
}

// SPIConfig selects the SPI port. Mode is 1 or 3.
type SPIConfig struct {
	Port      string `yaml:"port"`
	Mode      int    `yaml:"mode"`
	Frequency int64  `yaml:"frequency_hz"`
}

type MQTTConfig struct {
	Broker   string        `yaml:"broker"`
	ClientID string        `yaml:"client_id"`
	Topic    string        `yaml:"topic"`
	QoS      byte          `yaml:"qos"`
	Retained bool          `yaml:"retained"`
	Interval time.Duration `yaml:"interval"`
	Format   string        `yaml:"format"`

	// Convert forces a temperature conversion before each sample.
	Convert bool `yaml:"convert"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Chip: ChipDS3231,
		I2C: I2CConfig{
			Address: 0x68,
		},
		SPI: SPIConfig{
			Mode:      1,
			Frequency: 4000000,
		},
		MQTT: MQTTConfig{
			Broker:   "tcp://localhost:1883",
			ClientID: "ds323xctl",
			Topic:    "rtc/ds323x",
			Interval: time.Minute,
			Format:   FormatJSON,
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// IsSPI reports whether the configured chip sits on the SPI bus.
func (c Config) IsSPI() bool {
	return c.Chip == ChipDS3234
}

func (c Config) Validate() error {
	switch c.Chip {
	case ChipDS3231, ChipDS3232, ChipDS3234:
	default:
		return fmt.Errorf("unknown chip %q", c.Chip)
	}
	if c.I2C.Address == 0 || c.I2C.Address > 0x7F {
		return fmt.Errorf("i2c address 0x%x out of range", c.I2C.Address)
	}
	if c.SPI.Mode != 1 && c.SPI.Mode != 3 {
		return fmt.Errorf("spi mode %d not supported, use 1 or 3", c.SPI.Mode)
	}
	if c.SPI.Frequency <= 0 || c.SPI.Frequency > 4000000 {
		return fmt.Errorf("spi frequency %d out of range", c.SPI.Frequency)
	}
	if c.MQTT.QoS > 2 {
		return fmt.Errorf("mqtt qos %d out of range", c.MQTT.QoS)
	}
	if c.MQTT.Interval <= 0 {
		return errors.New("mqtt interval must be positive")
	}
	if c.MQTT.Format != FormatJSON && c.MQTT.Format != FormatCBOR {
		return fmt.Errorf("unknown payload format %q", c.MQTT.Format)
	}
	return nil
}
