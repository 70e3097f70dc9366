package telemetry

import (
	"context"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
)

// Client is the publishing half of an MQTT client.
type Client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// Publisher samples Source every Interval and publishes the encoded snapshot to Topic.
type Publisher struct {
	Source   Source
	Client   Client
	Chip     string
	Topic    string
	QoS      byte
	Retained bool
	Format   string
	Interval time.Duration

	// Convert forces a temperature conversion before each sample.
	Convert bool

	// ConversionTimeout bounds the wait for a forced conversion.
	ConversionTimeout time.Duration

	Now func() time.Time
	Log zerolog.Logger
}

// NewPublisher returns a Publisher with a disabled logger and the wall clock.
func NewPublisher(src Source, client Client) *Publisher {
	return &Publisher{
		Source:            src,
		Client:            client,
		Format:            "json",
		Interval:          time.Minute,
		ConversionTimeout: 250 * time.Millisecond,
		Now:               time.Now,
		Log:               zerolog.Nop(),
	}
}

func (p *Publisher) convert() error {
	if err := p.Source.ConvertTemperature(); err != nil {
		return err
	}
	deadline := time.Now().Add(p.ConversionTimeout)
	for {
		busy, err := p.Source.Busy()
		if err != nil {
			return err
		}
		if !busy {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("temperature conversion still busy after %v", p.ConversionTimeout)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// PublishOnce takes and publishes a single sample.
func (p *Publisher) PublishOnce() (Snapshot, error) {
	if p.Convert {
		if err := p.convert(); err != nil {
			return Snapshot{}, err
		}
	}
	s, err := Collect(p.Source, p.Chip, p.Now())
	if err != nil {
		return Snapshot{}, err
	}
	payload, err := Encode(s, p.Format)
	if err != nil {
		return s, err
	}
	token := p.Client.Publish(p.Topic, p.QoS, p.Retained, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		return s, fmt.Errorf("publish to %s: %w", p.Topic, err)
	}
	return s, nil
}

// Run publishes immediately and then every Interval until ctx is done. Failed samples are logged and skipped.
func (p *Publisher) Run(ctx context.Context) {
	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()
	for {
		s, err := p.PublishOnce()
		if err != nil {
			p.Log.Warn().Err(err).Str("topic", p.Topic).Msg("sample not published")
		} else {
			p.Log.Debug().Str("topic", p.Topic).Float32("temperature", s.Temperature).Msg("published")
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
