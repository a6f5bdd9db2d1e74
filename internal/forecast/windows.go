package forecast

import (
	"fmt"
	"sort"

	"github.com/driftwoodlabs/momentum/api/schemas"
)

// IdentifyWindows scans the predicted sequence for contiguous day ranges
// suited to specific activity types. A range with no predictions of the
// relevant state simply produces no window of that type.
func IdentifyWindows(predictions []schemas.Prediction, risk schemas.RiskAnalysis) []schemas.OptimalWindow {
	var windows []schemas.OptimalWindow

	// Peak runs host both deep-engagement and commitment windows.
	for _, run := range findRuns(predictions, func(s schemas.EngagementState) bool {
		return s == schemas.StatePeak
	}) {
		quality := confidenceQuality(run.avgConfidence)
		windows = append(windows,
			schemas.OptimalWindow{
				Type:           schemas.WindowDeepEngagement,
				StartDay:       run.start,
				EndDay:         run.end,
				Quality:        quality,
				Reasoning:      fmt.Sprintf("predicted peak state from day %d to %d", run.start, run.end),
				PredictedState: schemas.StatePeak,
			},
			schemas.OptimalWindow{
				Type:           schemas.WindowCommitment,
				StartDay:       run.start,
				EndDay:         run.end,
				Quality:        quality,
				Reasoning:      "peak-state days favor taking on new commitments",
				PredictedState: schemas.StatePeak,
			},
		)
	}

	// Building runs of at least two days are breakthrough windows.
	for _, run := range findRuns(predictions, func(s schemas.EngagementState) bool {
		return s == schemas.StateBuilding
	}) {
		if run.end-run.start < 1 {
			continue
		}
		windows = append(windows, schemas.OptimalWindow{
			Type:           schemas.WindowBreakthrough,
			StartDay:       run.start,
			EndDay:         run.end,
			Quality:        confidenceQuality(run.avgConfidence),
			Reasoning:      fmt.Sprintf("sustained building state over %d days", run.end-run.start+1),
			PredictedState: schemas.StateBuilding,
		})
	}

	// Building or peak runs wholly inside the safety buffer are low-risk
	// practice windows.
	safeLimit := risk.SafetyBufferDays + 2
	for _, run := range findRuns(predictions, func(s schemas.EngagementState) bool {
		return s == schemas.StateBuilding || s == schemas.StatePeak
	}) {
		if run.end > safeLimit {
			continue
		}
		windows = append(windows, schemas.OptimalWindow{
			Type:           schemas.WindowLowRiskPractice,
			StartDay:       run.start,
			EndDay:         run.end,
			Quality:        riskQuality(risk.Level),
			Reasoning:      fmt.Sprintf("active days within the %d-day safety buffer", safeLimit),
			PredictedState: run.state,
		})
	}

	// Post-event and recovery runs are rest windows.
	for _, run := range findRuns(predictions, func(s schemas.EngagementState) bool {
		return s == schemas.StatePostEvent || s == schemas.StateRecovery
	}) {
		windows = append(windows, schemas.OptimalWindow{
			Type:           schemas.WindowRest,
			StartDay:       run.start,
			EndDay:         run.end,
			Quality:        riskQuality(risk.Level),
			Reasoning:      "recovery-phase days suit rest and consolidation",
			PredictedState: run.state,
		})
	}

	sort.SliceStable(windows, func(i, j int) bool {
		return windows[i].StartDay < windows[j].StartDay
	})
	return windows
}

// run is a maximal contiguous span of predictions matching a predicate.
// state is the predicted state on the run's first day.
type run struct {
	start, end    int
	state         schemas.EngagementState
	avgConfidence float64
}

// findRuns returns the maximal contiguous runs of predictions whose state
// matches the predicate, in day order.
func findRuns(predictions []schemas.Prediction, match func(schemas.EngagementState) bool) []run {
	var runs []run
	var cur *run
	var confSum float64
	var confN int

	flush := func() {
		if cur != nil {
			cur.avgConfidence = confSum / float64(confN)
			runs = append(runs, *cur)
			cur = nil
		}
	}

	for _, p := range predictions {
		if !match(p.State) {
			flush()
			continue
		}
		if cur == nil {
			cur = &run{start: p.Day, end: p.Day, state: p.State}
			confSum, confN = 0, 0
		} else {
			cur.end = p.Day
		}
		confSum += float64(p.Confidence)
		confN++
	}
	flush()
	return runs
}

// confidenceQuality grades a window by its average prediction confidence.
func confidenceQuality(avg float64) schemas.WindowQuality {
	switch {
	case avg >= 75:
		return schemas.QualityExcellent
	case avg >= 60:
		return schemas.QualityGood
	default:
		return schemas.QualityFair
	}
}

// riskQuality grades rest and low-risk windows by the ambient risk level.
func riskQuality(level schemas.RiskLevel) schemas.WindowQuality {
	switch level {
	case schemas.RiskLow:
		return schemas.QualityExcellent
	case schemas.RiskModerate:
		return schemas.QualityGood
	default:
		return schemas.QualityFair
	}
}
