package types

import "time"

type Patient struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	Age             int    `json:"age"`
	Condition       string `json:"condition"`
	LastVisit       string `json:"lastVisit"`
	NextAppointment string `json:"nextAppointment"`
	RiskLevel       string `json:"riskLevel"`
}

type Device struct {
	ID       int64     `json:"id"`
	Name     string    `json:"name"`
	Type     string    `json:"type"`
	Status   string    `json:"status"`
	Battery  float64   `json:"battery"`
	LastSync time.Time `json:"lastSync"`
	Color    string    `json:"color"`
}

const (
	DeviceConnected    = "connected"
	DeviceDisconnected = "disconnected"
)

type Medication struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency"`
	NextDose  string `json:"nextDose"`
	Taken     bool   `json:"taken"`
	Type      string `json:"type"`
	Color     string `json:"color"`
}

type AdherenceDay struct {
	Day       string  `json:"day"`
	Adherence float64 `json:"adherence"`
}

type Prediction struct {
	ID          int64    `json:"id"`
	Type        string   `json:"type"`
	Probability float64  `json:"probability"`
	Timeframe   string   `json:"timeframe"`
	Confidence  float64  `json:"confidence"`
	Severity    string   `json:"severity"`
	Triggers    []string `json:"triggers"`
	Action      string   `json:"action"`
}

type Alert struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Severity  string    `json:"severity"`
	CreatedAt time.Time `json:"createdAt"`
}

type RiskAssessment struct {
	Overall       float64   `json:"overall"`
	Environmental float64   `json:"environmental"`
	Medication    float64   `json:"medication"`
	Symptoms      float64   `json:"symptoms"`
	AssessedAt    time.Time `json:"assessedAt"`
}

type HealthTrend struct {
	Date      string  `json:"date"`
	PeakFlow  float64 `json:"peakFlow"`
	Adherence float64 `json:"adherence"`
	Symptoms  int     `json:"symptoms"`
}

type HealthScore struct {
	LungFunction  float64   `json:"lungFunction"`
	Environmental float64   `json:"environmental"`
	AssessedAt    time.Time `json:"assessedAt"`
}

// Reading is a raw stored measurement. Classification is never stored.
type Reading struct {
	SourceID string    `json:"sourceId"`
	Metric   string    `json:"metric"`
	Time     time.Time `json:"time"`
	Value    float64   `json:"value"`
	Unit     string    `json:"unit"`
}

// VitalSample is one point of the vitals trend. A nil field had no reading at that time.
type VitalSample struct {
	Time            time.Time `json:"time"`
	HeartRate       *float64  `json:"heartRate"`
	SpO2            *float64  `json:"spo2"`
	RespiratoryRate *float64  `json:"respiratoryRate"`
}

// AirQualitySample is one point of the air quality trend.
type AirQualitySample struct {
	Time time.Time `json:"time"`
	AQI  *float64  `json:"aqi"`
	PM25 *float64  `json:"pm25"`
	PM10 *float64  `json:"pm10"`
}

// AccuracyDay compares the risk predicted for a weekday with the events that followed.
type AccuracyDay struct {
	Day           string  `json:"day"`
	PredictedRisk float64 `json:"predictedRisk"`
	ActualEvents  float64 `json:"actualEvents"`
}

type PredictionAccuracy struct {
	AccuracyRate      float64       `json:"accuracyRate"`
	FalsePositiveRate float64       `json:"falsePositiveRate"`
	MissedEventRate   float64       `json:"missedEventRate"`
	Days              []AccuracyDay `json:"days"`
}

const (
	PatternEnvironmental = "environmental"
	PatternBehavioral    = "behavioral"
)

type Pattern struct {
	Category    string `json:"category"`
	Description string `json:"description"`
}

type DeviceActivity struct {
	Label string `json:"label"`
	Count int    `json:"count"`
	Color string `json:"color"`
}

type Reminder struct {
	Kind    string `json:"kind"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

type TreatmentMedication struct {
	Name         string `json:"name"`
	Instructions string `json:"instructions"`
	Role         string `json:"role"`
}

type CareInstruction struct {
	Instruction string `json:"instruction"`
	Color       string `json:"color"`
}
