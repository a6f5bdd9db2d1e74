package forecast

import (
	"fmt"
	"math"

	"github.com/driftwoodlabs/momentum/api/schemas"
)

// Thresholds carries the per-user day heuristics the predictor keys on,
// derived from the rolling metrics snapshot.
type Thresholds struct {
	EntryDay    int
	OverloadDay int
}

// ThresholdsFromMetrics maps a rolling metrics snapshot to the predictor's
// threshold inputs.
func ThresholdsFromMetrics(m schemas.RollingMetrics) Thresholds {
	return Thresholds{
		EntryDay:    m.AverageThresholdEntryDay,
		OverloadDay: m.AverageOverloadDay,
	}
}

// Heuristic confidence values per rule. When the transition matrix has an
// entry for the tentative transition, the final confidence is the rounded
// mean of the heuristic value and the historical percentage.
const (
	confEnterBuilding  = 75
	confEnterPeak      = 80
	confEnterOverload  = 65
	confLeaveOverload  = 60
	confLeavePostEvent = 85
	confHoldState      = 70
)

// minAltProbability is the percentage an alternative transition must
// exceed to be reported alongside the primary prediction.
const minAltProbability = 20.0

// Predict projects the state sequence horizon days forward. The output is
// fully deterministic for identical inputs: the heuristic rules have no
// randomness and the alternative-state scan walks states in a fixed order.
func Predict(current schemas.EngagementState, cycleDay, daysInState int, matrix TransitionMatrix, t Thresholds, horizon int) []schemas.Prediction {
	predictions := make([]schemas.Prediction, 0, horizon)

	for d := 1; d <= horizon; d++ {
		projectedDay := cycleDay + d
		next, confidence, factor := applyHeuristic(current, projectedDay, daysInState, t)

		factors := []string{factor}
		if pct, ok := matrix.Probability(current, next); ok {
			confidence = int(math.Round((float64(confidence) + pct) / 2))
			factors = append(factors, fmt.Sprintf("blended with historical %s->%s rate of %.0f%%", current, next, pct))
		}

		alt, altConfidence := bestAlternative(matrix, current, next)

		if next != current {
			daysInState = 0
		} else {
			daysInState++
		}

		predictions = append(predictions, schemas.Prediction{
			Day:           d,
			State:         next,
			Confidence:    confidence,
			DaysInState:   daysInState,
			AltState:      alt,
			AltConfidence: altConfidence,
			Factors:       factors,
		})
		current = next
	}
	return predictions
}

// applyHeuristic evaluates the state-specific rule for one projected day
// and returns the tentative next state, its heuristic confidence, and a
// human-readable factor describing which rule applied.
func applyHeuristic(current schemas.EngagementState, projectedDay, daysInState int, t Thresholds) (schemas.EngagementState, int, string) {
	switch current {
	case schemas.StateBaseline, schemas.StateRecovery:
		if projectedDay >= t.EntryDay-1 {
			return schemas.StateBuilding, confEnterBuilding,
				fmt.Sprintf("cycle day %d approaches threshold entry day %d", projectedDay, t.EntryDay)
		}
	case schemas.StateBuilding:
		if projectedDay >= t.EntryDay {
			return schemas.StatePeak, confEnterPeak,
				fmt.Sprintf("cycle day %d at or past threshold entry day %d", projectedDay, t.EntryDay)
		}
	case schemas.StatePeak:
		if projectedDay >= t.OverloadDay-1 {
			return schemas.StateOverload, confEnterOverload,
				fmt.Sprintf("cycle day %d near average overload day %d", projectedDay, t.OverloadDay)
		}
	case schemas.StateOverload:
		if daysInState >= 2 {
			return schemas.StateRecovery, confLeaveOverload,
				fmt.Sprintf("overload unstable after %d days in state", daysInState)
		}
	case schemas.StatePostEvent:
		if daysInState >= 1 {
			return schemas.StateRecovery, confLeavePostEvent, "post-event phase resolves after one day"
		}
	}
	return current, confHoldState, fmt.Sprintf("no transition rule fired for %s", current)
}

// bestAlternative picks the highest-probability transition out of the
// current state, other than the chosen one, above the reporting threshold.
// States are scanned in a fixed order so ties resolve deterministically.
func bestAlternative(matrix TransitionMatrix, current, chosen schemas.EngagementState) (schemas.EngagementState, int) {
	row, ok := matrix[current]
	if !ok {
		return "", 0
	}
	var best schemas.EngagementState
	var bestPct float64
	for _, candidate := range schemas.AllStates {
		if candidate == chosen {
			continue
		}
		if pct, ok := row[candidate]; ok && pct > minAltProbability && pct > bestPct {
			best = candidate
			bestPct = pct
		}
	}
	if best == "" {
		return "", 0
	}
	return best, int(math.Round(bestPct))
}
