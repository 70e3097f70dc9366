package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	qt "github.com/frankban/quicktest"
	"github.com/fxamacker/cbor/v2"

	"github.com/ajanata/ds323x/ds323x"
)

type source struct {
	regs      [3]byte
	temp      float32
	busy      []bool
	converts  int
	readError error
}

func (s *source) ReadRegisters(reg uint8, buf []byte) error {
	if s.readError != nil {
		return s.readError
	}
	if reg != ds323x.Control {
		return errors.New("unexpected register")
	}
	copy(buf, s.regs[:])
	return nil
}

func (s *source) ReadTemperature() (float32, error) { return s.temp, nil }

func (s *source) ConvertTemperature() error {
	s.converts++
	return nil
}

func (s *source) Busy() (bool, error) {
	if len(s.busy) == 0 {
		return false, nil
	}
	b := s.busy[0]
	s.busy = s.busy[1:]
	return b, nil
}

type token struct {
	err error
}

func (t token) Wait() bool                     { return true }
func (t token) WaitTimeout(time.Duration) bool { return true }
func (t token) Error() error                   { return t.err }

func (t token) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type message struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

type client struct {
	sent []message
	err  error
}

func (c *client) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.sent = append(c.sent, message{topic, qos, retained, payload.([]byte)})
	return token{c.err}
}

var now = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func testSource() *source {
	return &source{
		regs: [3]byte{ds323x.EOSC | ds323x.INTCN, ds323x.OSF | ds323x.A2F | ds323x.BSY, 0xFE},
		temp: 21.5,
	}
}

func TestCollect(t *testing.T) {
	c := qt.New(t)
	s, err := Collect(testSource(), "ds3232", now)
	c.Assert(err, qt.IsNil)
	c.Assert(s, qt.DeepEquals, Snapshot{
		Chip:        "ds3232",
		Time:        now,
		Temperature: 21.5,
		AgingOffset: -2,
		Running:     false,
		Busy:        true,
		Stopped:     true,
		Alarm1:      false,
		Alarm2:      true,
		Control:     ds323x.EOSC | ds323x.INTCN,
		Status:      ds323x.OSF | ds323x.A2F | ds323x.BSY,
	})
}

func TestCollectError(t *testing.T) {
	c := qt.New(t)
	src := testSource()
	src.readError = errors.New("bus gone")
	_, err := Collect(src, "ds3231", now)
	c.Assert(err, qt.ErrorMatches, "bus gone")
}

func TestEncode(t *testing.T) {
	c := qt.New(t)
	s, err := Collect(testSource(), "ds3234", now)
	c.Assert(err, qt.IsNil)

	js, err := Encode(s, "json")
	c.Assert(err, qt.IsNil)
	var fromJSON Snapshot
	c.Assert(json.Unmarshal(js, &fromJSON), qt.IsNil)
	c.Assert(fromJSON, qt.DeepEquals, s)

	cb, err := Encode(s, "cbor")
	c.Assert(err, qt.IsNil)
	var fromCBOR Snapshot
	c.Assert(cbor.Unmarshal(cb, &fromCBOR), qt.IsNil)
	c.Assert(fromCBOR.Temperature, qt.Equals, s.Temperature)
	c.Assert(fromCBOR.Alarm2, qt.Equals, true)
	c.Assert(fromCBOR.Time.Equal(now), qt.Equals, true)

	_, err = Encode(s, "xml")
	c.Assert(err, qt.ErrorMatches, `unknown payload format "xml"`)
}

func TestPublishOnce(t *testing.T) {
	c := qt.New(t)
	src := testSource()
	src.busy = []bool{true, false}
	cl := &client{}
	p := NewPublisher(src, cl)
	p.Chip = "ds3232"
	p.Topic = "rtc/test"
	p.QoS = 1
	p.Convert = true
	p.Now = func() time.Time { return now }

	s, err := p.PublishOnce()
	c.Assert(err, qt.IsNil)
	c.Assert(src.converts, qt.Equals, 1)
	c.Assert(cl.sent, qt.HasLen, 1)
	c.Assert(cl.sent[0].topic, qt.Equals, "rtc/test")
	c.Assert(cl.sent[0].qos, qt.Equals, byte(1))

	want, err := Encode(s, "json")
	c.Assert(err, qt.IsNil)
	c.Assert(cl.sent[0].payload, qt.DeepEquals, want)
}

func TestPublishOnceConversionTimeout(t *testing.T) {
	c := qt.New(t)
	src := testSource()
	src.busy = []bool{true, true, true, true, true}
	p := NewPublisher(src, &client{})
	p.Convert = true
	p.ConversionTimeout = 0

	_, err := p.PublishOnce()
	c.Assert(err, qt.ErrorMatches, `temperature conversion still busy after 0s`)
}

func TestPublishError(t *testing.T) {
	c := qt.New(t)
	p := NewPublisher(testSource(), &client{err: errors.New("not connected")})
	p.Topic = "rtc/test"

	_, err := p.PublishOnce()
	c.Assert(err, qt.ErrorMatches, `publish to rtc/test: not connected`)
}

func TestRunStopsOnCancel(t *testing.T) {
	c := qt.New(t)
	cl := &client{}
	p := NewPublisher(testSource(), cl)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p.Run(ctx)
	c.Assert(cl.sent, qt.HasLen, 1)
}
