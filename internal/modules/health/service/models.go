package service

import (
	"time"

	"respirate-server/internal/classify"
	"respirate-server/internal/modules/health/types"
)

// Reading is a stored value with its classification. Category is nil when the
// reading is missing, has no scale, or failed classification (Error is set).
type Reading struct {
	Metric   string               `json:"metric"`
	Name     string               `json:"name"`
	Value    *float64             `json:"value"`
	Unit     string               `json:"unit"`
	Time     time.Time            `json:"time,omitzero"`
	Category *classify.Category   `json:"category"`
	Range    *classify.VitalRange `json:"range,omitempty"`
	Error    string               `json:"error,omitempty"`
}

func (r Reading) Available() bool { return r.Value != nil }

func (r Reading) Invalid() bool { return r.Error != "" }

type HealthScore struct {
	Overall       float64 `json:"overall"`
	LungFunction  float64 `json:"lungFunction"`
	Adherence     float64 `json:"adherence"`
	Environmental float64 `json:"environmental"`
}

type Dashboard struct {
	Vitals  []Reading           `json:"vitals"`
	History []types.VitalSample `json:"history"`
	Score   HealthScore         `json:"score"`
}

type RiskView struct {
	Overall       Reading   `json:"overall"`
	Environmental Reading   `json:"environmental"`
	Medication    Reading   `json:"medication"`
	Symptoms      Reading   `json:"symptoms"`
	AssessedAt    time.Time `json:"assessedAt"`
	// Elevated is set when the overall risk is at warning tier or above.
	Elevated bool `json:"elevated"`
}

type PredictionCard struct {
	types.Prediction
	Title      string             `json:"title"`
	Level      *classify.Category `json:"level"`
	Likelihood *classify.Category `json:"likelihood"`
	Error      string             `json:"error,omitempty"`
}

// AccuracyDay pairs the risk-classified prediction for a weekday with the
// events actually observed.
type AccuracyDay struct {
	Day          string  `json:"day"`
	Predicted    Reading `json:"predicted"`
	ActualEvents float64 `json:"actualEvents"`
}

type AccuracyView struct {
	AccuracyRate      float64       `json:"accuracyRate"`
	FalsePositiveRate float64       `json:"falsePositiveRate"`
	MissedEventRate   float64       `json:"missedEventRate"`
	Days              []AccuracyDay `json:"days"`
}

type PatternGroup struct {
	Category string   `json:"category"`
	Title    string   `json:"title"`
	Color    string   `json:"color"`
	Items    []string `json:"items"`
}

type PredictionsView struct {
	Risk        RiskView         `json:"risk"`
	Predictions []PredictionCard `json:"predictions"`
	Accuracy    AccuracyView     `json:"accuracy"`
	Patterns    []PatternGroup   `json:"patterns"`
}

type DeviceCard struct {
	types.Device
	Connected bool    `json:"connected"`
	Battery   Reading `json:"batteryLevel"`
}

type DevicesView struct {
	Devices   []DeviceCard           `json:"devices"`
	Connected int                    `json:"connected"`
	Total     int                    `json:"total"`
	Activity  []types.DeviceActivity `json:"activity"`
}

type MedicationItem struct {
	types.Medication
	Status string `json:"status"`
}

type MedicationView struct {
	Items            []MedicationItem     `json:"items"`
	Taken            int                  `json:"taken"`
	Total            int                  `json:"total"`
	MonthlyAdherence float64              `json:"monthlyAdherence"`
	MissedDoses      float64              `json:"missedDoses"`
	Weekly           []types.AdherenceDay `json:"weekly"`
	Reminders        []ReminderItem       `json:"reminders"`
}

type ReminderItem struct {
	types.Reminder
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

type EnvironmentWarning struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

type EnvironmentView struct {
	AirQuality  Reading                  `json:"airQuality"`
	Temperature Reading                  `json:"temperature"`
	Humidity    Reading                  `json:"humidity"`
	Pollen      Reading                  `json:"pollen"`
	UV          Reading                  `json:"uv"`
	Wind        Reading                  `json:"wind"`
	PM25        Reading                  `json:"pm25"`
	PM10        Reading                  `json:"pm10"`
	History     []types.AirQualitySample `json:"history"`
	Warning     *EnvironmentWarning      `json:"warning"`
}

type AlertItem struct {
	types.Alert
	Level *classify.Category `json:"level"`
	Error string             `json:"error,omitempty"`
}

type DoctorView struct {
	Patient       types.Patient       `json:"patient"`
	RiskLevel     *classify.Category  `json:"riskLevel"`
	Trends        []types.HealthTrend `json:"trends"`
	AvgPeakFlow   float64             `json:"avgPeakFlow"`
	AdherenceRate float64             `json:"adherenceRate"`
	SymptomDays   int                 `json:"symptomDays"`
	Alerts        []AlertItem         `json:"alerts"`
	Plan          TreatmentPlan       `json:"treatmentPlan"`
}

type TreatmentItem struct {
	types.TreatmentMedication
	Label string `json:"label"`
	Color string `json:"color"`
}

type TreatmentPlan struct {
	Medications  []TreatmentItem         `json:"medications"`
	Instructions []types.CareInstruction `json:"careInstructions"`
}

// MedicationEvent acknowledges a "taken" toggle. It is logged, not stored.
type MedicationEvent struct {
	EventID      string    `json:"event_id"`
	MedicationID int64     `json:"medication_id"`
	RecordedAt   time.Time `json:"recorded_at"`
}
