package schemas

import "time"

// RiskLevel is the categorical risk classification derived from the
// composite probability score.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// RiskFactor records one triggered adjustment in the composite risk score.
// Impact is the additive contribution; Mitigation is optional guidance.
type RiskFactor struct {
	Impact      int    `json:"impact"`
	Description string `json:"description"`
	Mitigation  string `json:"mitigation,omitempty"`
}

// RiskAnalysis is the output of the risk analyzer. Probability is always
// within [0, 95]. HistoricalEventDay is nil when no involuntary events
// exist in the history.
type RiskAnalysis struct {
	Level              RiskLevel    `json:"level"`
	Probability        int          `json:"probability"`
	Factors            []RiskFactor `json:"factors"`
	PeakRiskDay        int          `json:"peak_risk_day"`
	SafetyBufferDays   int          `json:"safety_buffer_days"`
	HistoricalEventDay *float64     `json:"historical_event_day,omitempty"`
}

// Prediction is a single projected day in the forecast horizon.
// Day counts forward from tomorrow (1-based).
type Prediction struct {
	Day           int             `json:"day"`
	State         EngagementState `json:"state"`
	Confidence    int             `json:"confidence"`
	DaysInState   int             `json:"days_in_state"`
	AltState      EngagementState `json:"alt_state,omitempty"`
	AltConfidence int             `json:"alt_confidence,omitempty"`
	Factors       []string        `json:"factors,omitempty"`
}

// WindowType tags an optimal window with the activity it suits.
type WindowType string

const (
	WindowDeepEngagement  WindowType = "deep_engagement"
	WindowCommitment      WindowType = "commitment"
	WindowBreakthrough    WindowType = "breakthrough"
	WindowLowRiskPractice WindowType = "low_risk_practice"
	WindowRest            WindowType = "rest"
)

// WindowQuality grades an optimal window.
type WindowQuality string

const (
	QualityExcellent WindowQuality = "excellent"
	QualityGood      WindowQuality = "good"
	QualityFair      WindowQuality = "fair"
)

// OptimalWindow is a contiguous run of predicted days suited to a specific
// activity type. StartDay and EndDay are inclusive and lie within the
// forecast horizon.
type OptimalWindow struct {
	Type           WindowType      `json:"type"`
	StartDay       int             `json:"start_day"`
	EndDay         int             `json:"end_day"`
	Quality        WindowQuality   `json:"quality"`
	Reasoning      string          `json:"reasoning"`
	PredictedState EngagementState `json:"predicted_state"`
}

// DayRange is an inclusive span of future days, relative to today.
type DayRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// CycleForecast estimates the shape of the current cycle.
// OptimalReleaseWindow is nil when no release window falls within reach.
// HistoricalAccuracy is a self-assessed 0-100 score.
type CycleForecast struct {
	PredictedCycleLength int       `json:"predicted_cycle_length"`
	DaysUntilThreshold   int       `json:"days_until_threshold"`
	DaysUntilOverload    int       `json:"days_until_overload"`
	OptimalReleaseWindow *DayRange `json:"optimal_release_window,omitempty"`
	NextPlateauDate      time.Time `json:"next_plateau_date"`
	HistoricalAccuracy   int       `json:"historical_accuracy"`
}

// RecommendationPriority orders recommendations for display.
type RecommendationPriority string

const (
	PriorityHigh   RecommendationPriority = "high"
	PriorityMedium RecommendationPriority = "medium"
	PriorityLow    RecommendationPriority = "low"
)

// Recommendation is one actionable message derived from the forecast.
type Recommendation struct {
	Priority      RecommendationPriority `json:"priority"`
	Type          string                 `json:"type"`
	Title         string                 `json:"title"`
	Description   string                 `json:"description"`
	ActionableDay *int                   `json:"actionable_day,omitempty"`
}

// Forecast is the full output of a forecasting run. It is a value object
// generated fresh per call; the engine never persists it.
type Forecast struct {
	ID              string           `json:"id"`
	GeneratedAt     time.Time        `json:"generated_at"`
	CurrentState    EngagementState  `json:"current_state"`
	CurrentCycleDay int              `json:"current_cycle_day"`
	Predictions     []Prediction     `json:"predictions"`
	RiskAnalysis    RiskAnalysis     `json:"risk_analysis"`
	OptimalWindows  []OptimalWindow  `json:"optimal_windows"`
	CycleForecast   CycleForecast    `json:"cycle_forecast"`
	Recommendations []Recommendation `json:"recommendations"`
}

// QuickForecast is a reduced projection of Forecast for lightweight display.
type QuickForecast struct {
	State              EngagementState `json:"state"`
	Day                int             `json:"day"`
	RiskLevel          RiskLevel       `json:"risk_level"`
	DaysUntilThreshold int             `json:"days_until_threshold"`
	DaysUntilRisk      int             `json:"days_until_risk"`
	TopRecommendation  *Recommendation `json:"top_recommendation,omitempty"`
}
