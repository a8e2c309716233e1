package classify

import (
	"encoding/json"
	"math"
)

// JSON has no infinity, so unbounded limits are encoded as null.

func boundPtr(v float64) *float64 {
	if math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func (r Rule) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Max      *float64 `json:"max"`
		Category Category `json:"category"`
	}{boundPtr(r.Max), r.Category})
}

func (s Scale) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID    ScaleID  `json:"id"`
		Name  string   `json:"name"`
		Unit  string   `json:"unit,omitempty"`
		Min   *float64 `json:"min"`
		Max   *float64 `json:"max"`
		Rules []Rule   `json:"rules"`
	}{s.ID, s.Name, s.Unit, boundPtr(s.Min), boundPtr(s.Max), s.Rules})
}

