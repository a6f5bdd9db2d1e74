package forecast

import (
	"fmt"

	"github.com/driftwoodlabs/momentum/api/schemas"
)

const (
	baseRiskProbability = 20
	maxRiskProbability  = 95
	volatilityWindow    = 7
	volatilityStates    = 4
)

// CurrentState derives the user's current engagement state from the most
// recent history record, defaulting to baseline with no history.
func CurrentState(history []schemas.StateChangeRecord) schemas.EngagementState {
	if len(history) == 0 {
		return schemas.StateBaseline
	}
	return history[0].State
}

// AnalyzeRisk computes the composite risk score for the current cycle day.
// It is a pure function of its inputs: no I/O, no clock reads, no
// randomness.
func AnalyzeRisk(history []schemas.StateChangeRecord, events []schemas.RewardEvent, cycleDay int, metrics schemas.RollingMetrics) schemas.RiskAnalysis {
	probability := baseRiskProbability
	var factors []schemas.RiskFactor
	current := CurrentState(history)
	overloadDay := metrics.AverageOverloadDay

	// Elapsed time against the historical overload day. The two branches
	// are mutually exclusive; only the matching one fires.
	switch {
	case cycleDay >= overloadDay:
		probability += 30
		factors = append(factors, schemas.RiskFactor{
			Impact:      30,
			Description: fmt.Sprintf("cycle day %d has reached the average overload day (%d)", cycleDay, overloadDay),
			Mitigation:  "plan a release or deliberate wind-down",
		})
	case overloadDay-cycleDay <= 2:
		probability += 15
		factors = append(factors, schemas.RiskFactor{
			Impact:      15,
			Description: fmt.Sprintf("cycle day %d is within 2 days of the average overload day (%d)", cycleDay, overloadDay),
			Mitigation:  "reduce intensity before the overload threshold",
		})
	}

	// Historical involuntary event timing.
	historicalEventDay := involuntaryEventDay(events)
	if historicalEventDay != nil && float64(cycleDay) >= *historicalEventDay-1 {
		probability += 20
		factors = append(factors, schemas.RiskFactor{
			Impact:      20,
			Description: fmt.Sprintf("involuntary events historically occur around day %.1f", *historicalEventDay),
		})
	}

	// State volatility over the most recent week of records.
	if isVolatile(history) {
		probability += 10
		factors = append(factors, schemas.RiskFactor{
			Impact:      10,
			Description: fmt.Sprintf("%d or more distinct states in the last %d records", volatilityStates, volatilityWindow),
		})
	}

	// Current-state danger.
	switch {
	case current == schemas.StateOverload:
		probability += 25
		factors = append(factors, schemas.RiskFactor{
			Impact:      25,
			Description: "currently in the overload state",
			Mitigation:  "prioritize recovery activities",
		})
	case current == schemas.StatePeak && cycleDay > 7:
		probability += 10
		factors = append(factors, schemas.RiskFactor{
			Impact:      10,
			Description: fmt.Sprintf("extended peak state at cycle day %d", cycleDay),
		})
	}

	if probability > maxRiskProbability {
		probability = maxRiskProbability
	}
	if probability < 0 {
		probability = 0
	}

	peakRiskDay := overloadDay - cycleDay
	if peakRiskDay <= 0 {
		peakRiskDay = 3
	}
	safetyBuffer := overloadDay - 2 - cycleDay
	if safetyBuffer < 0 {
		safetyBuffer = 0
	}

	return schemas.RiskAnalysis{
		Level:              riskLevel(probability),
		Probability:        probability,
		Factors:            factors,
		PeakRiskDay:        peakRiskDay,
		SafetyBufferDays:   safetyBuffer,
		HistoricalEventDay: historicalEventDay,
	}
}

// riskLevel maps a probability to its categorical level. Boundaries are
// inclusive.
func riskLevel(probability int) schemas.RiskLevel {
	switch {
	case probability >= 70:
		return schemas.RiskCritical
	case probability >= 50:
		return schemas.RiskHigh
	case probability >= 30:
		return schemas.RiskModerate
	default:
		return schemas.RiskLow
	}
}

// involuntaryEventDay returns the mean days-since-last across involuntary
// events, or nil when none exist.
func involuntaryEventDay(events []schemas.RewardEvent) *float64 {
	var sum, n int
	for _, ev := range events {
		if !ev.Category.CountsTowardCycle() {
			sum += ev.DaysSinceLast
			n++
		}
	}
	if n == 0 {
		return nil
	}
	mean := float64(sum) / float64(n)
	return &mean
}

// isVolatile reports whether the most recent records span enough distinct
// states to count as volatility.
func isVolatile(history []schemas.StateChangeRecord) bool {
	recent := history
	if len(recent) > volatilityWindow {
		recent = recent[:volatilityWindow]
	}
	distinct := make(map[schemas.EngagementState]struct{}, len(recent))
	for _, rec := range recent {
		distinct[rec.State] = struct{}{}
	}
	return len(distinct) >= volatilityStates
}
