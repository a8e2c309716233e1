package classify

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

var inf = math.Inf(1)

var builtin = map[ScaleID]Scale{
	ScaleAQI: mustScale(ScaleAQI, "Air Quality Index", "AQI", 0, inf, []Rule{
		{Max: 50, Category: Category{Label: "Good", Tier: TierGood, Color: "green", Description: "Air quality is satisfactory"}},
		{Max: 100, Category: Category{Label: "Moderate", Tier: TierModerate, Color: "yellow", Description: "Sensitive groups may experience minor symptoms"}},
		{Max: 150, Category: Category{Label: "Unhealthy for Sensitive Groups", Tier: TierWarning, Color: "orange", Description: "Sensitive individuals should limit outdoor exposure"}},
		{Max: inf, Category: Category{Label: "Unhealthy", Tier: TierCritical, Color: "red", Description: "Everyone should limit outdoor activities"}},
	}),
	ScalePollen: mustScale(ScalePollen, "Pollen", "count/m³", 0, inf, []Rule{
		{Max: 2, Category: Category{Label: "Low", Tier: TierGood, Color: "green"}},
		{Max: 4, Category: Category{Label: "Medium", Tier: TierModerate, Color: "yellow", Description: "Consider taking antihistamines if sensitive"}},
		{Max: inf, Category: Category{Label: "High", Tier: TierCritical, Color: "red", Description: "Limit time outdoors"}},
	}),
	ScaleBattery: mustScale(ScaleBattery, "Battery", "%", 0, 100, []Rule{
		{Max: 20, Category: Category{Label: "Critical", Tier: TierCritical, Color: "red", Description: "Charge the device now"}},
		{Max: 50, Category: Category{Label: "Low", Tier: TierWarning, Color: "yellow"}},
		{Max: inf, Category: Category{Label: "Healthy", Tier: TierGood, Color: "green"}},
	}),
	ScaleUV: mustScale(ScaleUV, "UV Index", "", 0, inf, []Rule{
		{Max: 2, Category: Category{Label: "Low", Tier: TierGood, Color: "green"}},
		{Max: 5, Category: Category{Label: "Moderate", Tier: TierModerate, Color: "yellow"}},
		{Max: 7, Category: Category{Label: "High", Tier: TierWarning, Color: "orange", Description: "Reduce time in the sun around midday"}},
		{Max: 10, Category: Category{Label: "Very High", Tier: TierCritical, Color: "red", Description: "Avoid sun exposure around midday"}},
		{Max: inf, Category: Category{Label: "Extreme", Tier: TierCritical, Color: "purple", Description: "Avoid sun exposure"}},
	}),
	ScaleRisk: mustScale(ScaleRisk, "Risk", "%", 0, 100, []Rule{
		{Max: 33, Category: Category{Label: "low", Tier: TierGood, Color: "blue", Icon: "check-circle"}},
		{Max: 66, Category: Category{Label: "medium", Tier: TierWarning, Color: "yellow", Icon: "bell"}},
		{Max: inf, Category: Category{Label: "high", Tier: TierCritical, Color: "red", Icon: "alert-triangle"}},
	}),
}

var severities = map[string]Category{
	"high":   {Label: "high", Tier: TierCritical, Color: "red", Icon: "alert-triangle"},
	"medium": {Label: "medium", Tier: TierWarning, Color: "yellow", Icon: "bell"},
	"low":    {Label: "low", Tier: TierGood, Color: "blue", Icon: "check-circle"},
}

// Lookup returns a copy of the built-in scale with the given id.
func Lookup(id ScaleID) (Scale, error) {
	s, ok := builtin[ScaleID(strings.ToLower(string(id)))]
	if !ok {
		return Scale{}, fmt.Errorf("%w: %q", ErrUnknownScale, id)
	}
	return s.clone(), nil
}

// Scales returns copies of all built-in scales ordered by id.
func Scales() []Scale {
	out := make([]Scale, 0, len(builtin))
	for _, s := range builtin {
		out = append(out, s.clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Classify classifies value under the built-in scale id.
func Classify(id ScaleID, value float64) (Result, error) {
	s, ok := builtin[ScaleID(strings.ToLower(string(id)))]
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownScale, id)
	}
	return s.Classify(value)
}

// ClassifySeverity maps an alert or prediction severity (high, medium, low)
// to its category.
func ClassifySeverity(severity string) (Category, error) {
	c, ok := severities[strings.ToLower(strings.TrimSpace(severity))]
	if !ok {
		return Category{}, fmt.Errorf("%w: %q", ErrUnknownSeverity, severity)
	}
	return c, nil
}
