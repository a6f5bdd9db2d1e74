package forecast

import (
	"fmt"
	"sort"

	"github.com/driftwoodlabs/momentum/api/schemas"
)

var priorityRank = map[schemas.RecommendationPriority]int{
	schemas.PriorityHigh:   0,
	schemas.PriorityMedium: 1,
	schemas.PriorityLow:    2,
}

// GenerateRecommendations converts the forecast components into a ranked,
// capped list of actionable messages. Rules are evaluated in a fixed order
// and the final sort is stable, so equal-priority items keep rule order.
func GenerateRecommendations(risk schemas.RiskAnalysis, windows []schemas.OptimalWindow, cycle schemas.CycleForecast, limit int) []schemas.Recommendation {
	var recs []schemas.Recommendation

	// 1. Elevated risk warnings come first.
	if risk.Level == schemas.RiskCritical || risk.Level == schemas.RiskHigh {
		priority := schemas.PriorityHigh
		title := "Elevated overload risk"
		if risk.Level == schemas.RiskCritical {
			title = "Critical overload risk"
		}
		recs = append(recs, schemas.Recommendation{
			Priority:    priority,
			Type:        "risk_warning",
			Title:       title,
			Description: fmt.Sprintf("Risk is %s (%d/100). Scale back intensity and protect recovery time.", risk.Level, risk.Probability),
		})
	}

	// 2. An excellent deep-engagement window is the headline opportunity.
	if w := firstWindow(windows, schemas.WindowDeepEngagement, schemas.QualityExcellent); w != nil {
		day := w.StartDay
		recs = append(recs, schemas.Recommendation{
			Priority:      schemas.PriorityMedium,
			Type:          "deep_engagement",
			Title:         "Prime focus window ahead",
			Description:   fmt.Sprintf("Days %d-%d look excellent for demanding, high-focus work.", w.StartDay, w.EndDay),
			ActionableDay: &day,
		})
	}

	// 3. Commitment windows suggest scheduling obligations.
	if w := firstWindow(windows, schemas.WindowCommitment, ""); w != nil {
		day := w.StartDay
		recs = append(recs, schemas.Recommendation{
			Priority:      schemas.PriorityMedium,
			Type:          "commitment",
			Title:         "Good stretch for new commitments",
			Description:   fmt.Sprintf("Schedule obligations between days %d and %d while momentum holds.", w.StartDay, w.EndDay),
			ActionableDay: &day,
		})
	}

	// 4. Approaching-threshold guidance, only when it is imminent.
	if cycle.DaysUntilThreshold > 0 && cycle.DaysUntilThreshold <= 3 {
		day := cycle.DaysUntilThreshold
		recs = append(recs, schemas.Recommendation{
			Priority:      schemas.PriorityMedium,
			Type:          "approaching_threshold",
			Title:         "Threshold entry approaching",
			Description:   fmt.Sprintf("Expect the building phase to start in about %d day(s). Prepare your routine now.", cycle.DaysUntilThreshold),
			ActionableDay: &day,
		})
	}

	// 5. Release-window guidance is suppressed under critical risk.
	if cycle.OptimalReleaseWindow != nil && risk.Level != schemas.RiskCritical {
		day := cycle.OptimalReleaseWindow.Start
		recs = append(recs, schemas.Recommendation{
			Priority:      schemas.PriorityLow,
			Type:          "release_window",
			Title:         "Release window open",
			Description:   fmt.Sprintf("Days %d-%d are the natural point to close out this cycle.", cycle.OptimalReleaseWindow.Start, cycle.OptimalReleaseWindow.End),
			ActionableDay: &day,
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return priorityRank[recs[i].Priority] < priorityRank[recs[j].Priority]
	})
	if len(recs) > limit {
		recs = recs[:limit]
	}
	return recs
}

// firstWindow returns the earliest window of the given type, optionally
// filtered by quality (empty quality matches any).
func firstWindow(windows []schemas.OptimalWindow, wt schemas.WindowType, quality schemas.WindowQuality) *schemas.OptimalWindow {
	for i := range windows {
		if windows[i].Type != wt {
			continue
		}
		if quality != "" && windows[i].Quality != quality {
			continue
		}
		return &windows[i]
	}
	return nil
}
