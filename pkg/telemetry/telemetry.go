// Package telemetry defines the JSON reading message exchanged over MQTT
// between publishers (respiratectl, monitors) and the server.
package telemetry

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"respirate-server/internal/classify"
)

// Telemetry is a single reading from a monitoring source.
type Telemetry struct {
	SourceID  string    `json:"source_id"`
	Metric    string    `json:"metric"`
	Value     *float64  `json:"value"`
	Unit      string    `json:"unit,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	MetricHeartRate       = classify.VitalHeartRate
	MetricSpO2            = classify.VitalSpO2
	MetricRespiratoryRate = classify.VitalRespiratoryRate
	MetricPeakFlow        = classify.VitalPeakFlow

	MetricAQI         = string(classify.ScaleAQI)
	MetricPollen      = string(classify.ScalePollen)
	MetricUV          = string(classify.ScaleUV)
	MetricBattery     = string(classify.ScaleBattery)
	MetricPM25        = "pm25"
	MetricPM10        = "pm10"
	MetricTemperature = "temperature_f"
	MetricHumidity    = "humidity_pct"
	MetricWind        = "wind_mph"
)

var ErrUnknownMetric = errors.New("unknown metric")

// TopicPrefix is the first level of every telemetry topic.
const TopicPrefix = "respirate"

// Topic returns the publish topic for a source: respirate/<source>/telemetry.
func Topic(sourceID string) string {
	return fmt.Sprintf("%s/%s/telemetry", TopicPrefix, sourceID)
}

var defaultUnits = map[string]string{
	MetricHeartRate:       "bpm",
	MetricSpO2:            "%",
	MetricRespiratoryRate: "breaths/min",
	MetricPeakFlow:        "L/min",
	MetricAQI:             "AQI",
	MetricPollen:          "count/m³",
	MetricUV:              "",
	MetricBattery:         "%",
	MetricPM25:            "μg/m³",
	MetricPM10:            "μg/m³",
	MetricTemperature:     "°F",
	MetricHumidity:        "%",
	MetricWind:            "mph",
}

// Metrics returns every metric name accepted by Validate.
func Metrics() []string {
	out := make([]string, 0, len(defaultUnits))
	for m := range defaultUnits {
		out = append(out, m)
	}
	return out
}

// DefaultUnit returns the unit stored for a metric when the message has none.
func DefaultUnit(metric string) (string, bool) {
	u, ok := defaultUnits[metric]
	return u, ok
}

// Normalize lower-cases the metric and fills in a missing unit.
func (t Telemetry) Normalize() Telemetry {
	t.SourceID = strings.TrimSpace(t.SourceID)
	t.Metric = strings.ToLower(strings.TrimSpace(t.Metric))
	if t.Unit == "" {
		t.Unit, _ = DefaultUnit(t.Metric)
	}
	return t
}

// Validate checks required fields and runs metrics that have a scale or a
// vital range through the classifier, so a reading the dashboard could not
// classify is never stored.
func Validate(t Telemetry) error {
	if t.SourceID == "" {
		return fmt.Errorf("source_id is required")
	}
	if t.Metric == "" {
		return fmt.Errorf("metric is required")
	}
	if t.Timestamp.IsZero() {
		return fmt.Errorf("timestamp is required")
	}
	if t.Value == nil {
		return fmt.Errorf("value is required")
	}
	v := *t.Value
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("value must be finite: %v", v)
	}

	switch t.Metric {
	case MetricHeartRate, MetricSpO2, MetricRespiratoryRate, MetricPeakFlow:
		r, err := classify.LookupVital(t.Metric)
		if err != nil {
			return err
		}
		_, err = classify.ClassifyVital(r, v)
		return err
	case MetricAQI, MetricPollen, MetricUV, MetricBattery:
		_, err := classify.Classify(classify.ScaleID(t.Metric), v)
		return err
	case MetricPM25, MetricPM10, MetricWind:
		if v < 0 {
			return fmt.Errorf("%s must not be negative: %f", t.Metric, v)
		}
	case MetricHumidity:
		if v < 0 || v > 100 {
			return fmt.Errorf("humidity_pct out of range: %f (must be 0-100)", v)
		}
	case MetricTemperature:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMetric, t.Metric)
	}
	return nil
}
