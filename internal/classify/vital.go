package classify

import (
	"fmt"
	"math"
	"strings"
)

// Vital names used by ingest, storage and the API.
const (
	VitalHeartRate       = "heart_rate"
	VitalSpO2            = "spo2"
	VitalRespiratoryRate = "respiratory_rate"
	VitalPeakFlow        = "peak_flow"
)

// VitalRange is the closed normal range [Min, Max] of a vital sign.
type VitalRange struct {
	Vital string  `json:"vital"`
	Name  string  `json:"name"`
	Unit  string  `json:"unit"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

var (
	vitalNormal  = Category{Label: "normal", Tier: TierGood, Color: "green"}
	vitalWarning = Category{Label: "warning", Tier: TierWarning, Color: "yellow"}
)

var vitals = []VitalRange{
	{Vital: VitalHeartRate, Name: "Heart Rate", Unit: "bpm", Min: 60, Max: 100},
	{Vital: VitalSpO2, Name: "Oxygen Saturation", Unit: "%", Min: 95, Max: 100},
	{Vital: VitalRespiratoryRate, Name: "Respiratory Rate", Unit: "breaths/min", Min: 12, Max: 20},
	{Vital: VitalPeakFlow, Name: "Peak Flow", Unit: "L/min", Min: 350, Max: 700},
}

// Vitals returns the default normal ranges.
func Vitals() []VitalRange {
	return append([]VitalRange(nil), vitals...)
}

func LookupVital(name string) (VitalRange, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, v := range vitals {
		if v.Vital == name {
			return v, nil
		}
	}
	return VitalRange{}, fmt.Errorf("%w: %q", ErrUnknownVital, name)
}

// ClassifyVital reports "normal" when value lies in r and "warning" otherwise.
// Too high and too low are not distinguished. Non-finite values are invalid
// readings. Negative values are invalid too unless r extends below zero, in
// which case the reading is unbounded below.
func ClassifyVital(r VitalRange, value float64) (Result, error) {
	if math.IsNaN(r.Min) || math.IsNaN(r.Max) || r.Min > r.Max {
		return Result{}, fmt.Errorf("vital %s: invalid range [%v, %v]", r.Vital, r.Min, r.Max)
	}
	floor := 0.0
	if r.Min < 0 {
		floor = math.Inf(-1)
	}
	if err := checkReading(r.Vital, value, floor, math.Inf(1)); err != nil {
		return Result{}, err
	}
	c := vitalWarning
	if value >= r.Min && value <= r.Max {
		c = vitalNormal
	}
	return Result{Scale: r.Vital, Value: value, Unit: r.Unit, Category: c}, nil
}
