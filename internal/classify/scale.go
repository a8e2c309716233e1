// Package classify maps numeric health and environmental readings onto
// discrete categories. Every scale is an ordered threshold table: the first
// rule whose upper bound is >= the reading wins, so bounds are inclusive.
package classify

import (
	"errors"
	"fmt"
	"math"
)

// ScaleID names a built-in scale.
type ScaleID string

const (
	ScaleAQI     ScaleID = "aqi"
	ScalePollen  ScaleID = "pollen"
	ScaleBattery ScaleID = "battery"
	ScaleUV      ScaleID = "uv"
	ScaleRisk    ScaleID = "risk"
)

// Category is the outcome of a classification. Color, Description and Icon
// are display hints for the views.
type Category struct {
	Label       string `json:"label"`
	Tier        Tier   `json:"tier"`
	Color       string `json:"color"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
}

// Rule matches readings <= Max.
type Rule struct {
	Max      float64  `json:"max"`
	Category Category `json:"category"`
}

type Scale struct {
	ID    ScaleID `json:"id"`
	Name  string  `json:"name"`
	Unit  string  `json:"unit,omitempty"`
	Min   float64 `json:"min"`
	Max   float64 `json:"-"`
	Rules []Rule  `json:"rules"`
}

// Result is a classified reading.
type Result struct {
	Scale    string   `json:"scale"`
	Value    float64  `json:"value"`
	Unit     string   `json:"unit,omitempty"`
	Category Category `json:"category"`
}

// NewScale validates rules and returns a scale over the domain [min, max].
// Rules must be in strictly ascending order of Max and the last rule must
// be unbounded so every in-domain value matches exactly one rule.
func NewScale(id ScaleID, name, unit string, min, max float64, rules []Rule) (Scale, error) {
	if len(rules) == 0 {
		return Scale{}, errors.New("scale has no rules")
	}
	if math.IsNaN(min) || math.IsNaN(max) || min > max {
		return Scale{}, fmt.Errorf("scale %s: invalid domain [%v, %v]", id, min, max)
	}
	for i := 1; i < len(rules); i++ {
		if !(rules[i].Max > rules[i-1].Max) {
			return Scale{}, fmt.Errorf("scale %s: rule %d bound %v not above %v", id, i, rules[i].Max, rules[i-1].Max)
		}
	}
	if !math.IsInf(rules[len(rules)-1].Max, 1) {
		return Scale{}, fmt.Errorf("scale %s: last rule must be unbounded", id)
	}
	cp := make([]Rule, len(rules))
	copy(cp, rules)
	return Scale{ID: id, Name: name, Unit: unit, Min: min, Max: max, Rules: cp}, nil
}

func mustScale(id ScaleID, name, unit string, min, max float64, rules []Rule) Scale {
	s, err := NewScale(id, name, unit, min, max, rules)
	if err != nil {
		panic(err)
	}
	return s
}

// Classify maps value onto the scale. Non-finite and out-of-domain values
// fail with ErrInvalidReading.
func (s Scale) Classify(value float64) (Result, error) {
	if err := checkReading(string(s.ID), value, s.Min, s.Max); err != nil {
		return Result{}, err
	}
	for _, r := range s.Rules {
		if value <= r.Max {
			return Result{Scale: string(s.ID), Value: value, Unit: s.Unit, Category: r.Category}, nil
		}
	}
	// unreachable: the last rule is unbounded
	return Result{}, &InvalidReadingError{Scale: string(s.ID), Value: value, Reason: "no matching rule"}
}

func (s Scale) clone() Scale {
	s.Rules = append([]Rule(nil), s.Rules...)
	return s
}

func checkReading(scale string, value, min, max float64) error {
	switch {
	case math.IsNaN(value):
		return &InvalidReadingError{Scale: scale, Value: value, Reason: "not a number"}
	case math.IsInf(value, 0):
		return &InvalidReadingError{Scale: scale, Value: value, Reason: "not finite"}
	case value < min:
		return &InvalidReadingError{Scale: scale, Value: value, Reason: fmt.Sprintf("below minimum %v", min)}
	case value > max:
		return &InvalidReadingError{Scale: scale, Value: value, Reason: fmt.Sprintf("above maximum %v", max)}
	}
	return nil
}
