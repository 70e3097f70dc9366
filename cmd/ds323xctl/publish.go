package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/spf13/cobra"

	"github.com/ajanata/ds323x/internal/config"
	"github.com/ajanata/ds323x/internal/telemetry"
)

var timeNow = time.Now

func newPublishCmd(e *env) *cobra.Command {
	var (
		topic    string
		format   string
		interval time.Duration
		convert  bool
	)
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish telemetry to MQTT until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m := e.cfg.MQTT
			if cmd.Flags().Changed("topic") {
				m.Topic = topic
			}
			if cmd.Flags().Changed("format") {
				m.Format = format
			}
			if cmd.Flags().Changed("interval") {
				m.Interval = interval
			}
			if cmd.Flags().Changed("convert") {
				m.Convert = convert
			}
			cfg := e.cfg
			cfg.MQTT = m
			if err := cfg.Validate(); err != nil {
				return err
			}

			d, err := e.device()
			if err != nil {
				return err
			}

			opts := mqtt.NewClientOptions().
				AddBroker(m.Broker).
				SetClientID(m.ClientID).
				SetAutoReconnect(true)
			client := mqtt.NewClient(opts)
			if token := client.Connect(); token.Wait() && token.Error() != nil {
				return fmt.Errorf("connect to %s: %w", m.Broker, token.Error())
			}
			defer client.Disconnect(250)
			e.log.Info().Str("broker", m.Broker).Str("topic", m.Topic).Dur("interval", m.Interval).Msg("publishing")

			p := telemetry.NewPublisher(d, client)
			p.Chip = cfg.Chip
			p.Topic = m.Topic
			p.QoS = m.QoS
			p.Retained = m.Retained
			p.Format = m.Format
			p.Interval = m.Interval
			p.Convert = m.Convert
			p.Now = timeNow
			p.Log = e.log

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			p.Run(ctx)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&topic, "topic", "", "MQTT topic (default from config)")
	f.StringVar(&format, "format", config.FormatJSON, "payload format: json or cbor")
	f.DurationVar(&interval, "interval", time.Minute, "sampling interval")
	f.BoolVar(&convert, "convert", false, "force a temperature conversion before each sample")
	return cmd
}
