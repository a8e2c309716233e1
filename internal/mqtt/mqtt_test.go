package mqtt

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"respirate-server/internal/config"
	"respirate-server/pkg/telemetry"
)

func testConfig() config.Config {
	return config.Config{
		MQTTBroker:   "127.0.0.1",
		MQTTPort:     1,
		MQTTClientID: "test",
		MQTTTopic:    "respirate/+/telemetry",
	}
}

func newTestSubscriber(t *testing.T) (*Subscriber, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return NewSubscriber(testConfig(), logger), &buf
}

func TestHandleMessage_ValidTelemetry(t *testing.T) {
	s, _ := newTestSubscriber(t)

	var got []telemetry.Telemetry
	s.SetMessageHandler(func(tm telemetry.Telemetry) error {
		got = append(got, tm)
		return nil
	})

	payload := []byte(`{"source_id":"3","metric":"AQI","value":68,"timestamp":"2024-03-29T21:30:00Z"}`)
	s.handleMessage("respirate/3/telemetry", payload)

	if len(got) != 1 {
		t.Fatalf("handler called %d times, want 1", len(got))
	}
	if got[0].Metric != telemetry.MetricAQI {
		t.Errorf("Metric = %q, want normalized %q", got[0].Metric, telemetry.MetricAQI)
	}
	if got[0].Unit != "AQI" {
		t.Errorf("Unit = %q, want default AQI", got[0].Unit)
	}
	if *got[0].Value != 68 {
		t.Errorf("Value = %v, want 68", *got[0].Value)
	}
}

func TestHandleMessage_Rejected(t *testing.T) {
	payloads := map[string]string{
		"malformed json":    `{"source_id":`,
		"missing source":    `{"metric":"aqi","value":1,"timestamp":"2024-03-29T21:30:00Z"}`,
		"missing timestamp": `{"source_id":"3","metric":"aqi","value":1}`,
		"negative aqi":      `{"source_id":"3","metric":"aqi","value":-5,"timestamp":"2024-03-29T21:30:00Z"}`,
		"unknown metric":    `{"source_id":"3","metric":"glucose","value":5,"timestamp":"2024-03-29T21:30:00Z"}`,
	}
	for name, p := range payloads {
		t.Run(name, func(t *testing.T) {
			s, buf := newTestSubscriber(t)
			called := false
			s.SetMessageHandler(func(telemetry.Telemetry) error {
				called = true
				return nil
			})

			s.handleMessage("respirate/3/telemetry", []byte(p))

			if called {
				t.Error("handler called for rejected message")
			}
			if !strings.Contains(buf.String(), "level=WARN") {
				t.Errorf("expected a warning log, got %q", buf.String())
			}
		})
	}
}

func TestHandleMessage_HandlerErrorLogged(t *testing.T) {
	s, buf := newTestSubscriber(t)
	s.SetMessageHandler(func(telemetry.Telemetry) error { return errors.New("db down") })

	s.handleMessage("respirate/2/telemetry",
		[]byte(`{"source_id":"2","metric":"spo2","value":97,"timestamp":"2024-03-29T21:30:00Z"}`))

	if !strings.Contains(buf.String(), "message handler failed") {
		t.Errorf("log = %q, want handler failure", buf.String())
	}
}

func TestHandleMessage_NoHandler(t *testing.T) {
	s, _ := newTestSubscriber(t)
	s.handleMessage("respirate/2/telemetry",
		[]byte(`{"source_id":"2","metric":"spo2","value":97,"timestamp":"2024-03-29T21:30:00Z"}`))
}

func TestSubscriber_DisconnectIdempotent(t *testing.T) {
	s, _ := newTestSubscriber(t)
	s.Disconnect()
	s.Disconnect()

	if err := s.Connect(context.Background()); err == nil {
		t.Fatal("Connect() after Disconnect() = nil, want error")
	}
	if s.IsConnected() {
		t.Error("IsConnected() = true after Disconnect()")
	}
}

func TestSubscriber_ConnectRespectsContext(t *testing.T) {
	s, _ := newTestSubscriber(t)
	defer s.Disconnect()

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	if err := s.Connect(ctx); err == nil {
		t.Fatal("Connect() to closed port = nil, want error")
	}
}

func TestPublisher_Publish(t *testing.T) {
	p := NewPublisher(testConfig(), "pub-test", slog.New(slog.DiscardHandler))
	defer p.Disconnect()

	v := 72.0
	valid := telemetry.Telemetry{SourceID: "2", Metric: "heart_rate", Value: &v}
	if err := p.Publish(valid); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Publish() error = %v, want ErrNotConnected", err)
	}

	bad := -1.0
	invalid := telemetry.Telemetry{SourceID: "2", Metric: "battery", Value: &bad}
	err := p.Publish(invalid)
	if err == nil || errors.Is(err, ErrNotConnected) {
		t.Errorf("Publish() error = %v, want validation error", err)
	}
}
