package forecast

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftwoodlabs/momentum/api/schemas"
)

func partialEvent(daysAgo, daysSinceLast int) schemas.RewardEvent {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	return schemas.RewardEvent{
		OccurredAt:    base.AddDate(0, 0, -daysAgo),
		Category:      schemas.RewardPartial,
		DaysSinceLast: daysSinceLast,
	}
}

func TestAnalyzeRisk(t *testing.T) {
	metrics := schemas.DefaultRollingMetrics()

	t.Run("empty inputs yield the base probability", func(t *testing.T) {
		risk := AnalyzeRisk(nil, nil, 1, metrics)
		assert.Equal(t, 20, risk.Probability)
		assert.Equal(t, schemas.RiskLow, risk.Level)
		assert.Empty(t, risk.Factors)
		assert.Nil(t, risk.HistoricalEventDay)
	})

	t.Run("overload boundary adds exactly the +30 factor", func(t *testing.T) {
		// Cycle day equal to the average overload day must fire the +30
		// branch and not the +15 proximity branch.
		risk := AnalyzeRisk(nil, nil, metrics.AverageOverloadDay, metrics)

		require.Len(t, risk.Factors, 1)
		assert.Equal(t, 30, risk.Factors[0].Impact)
		assert.Equal(t, 50, risk.Probability)
	})

	t.Run("proximity to overload adds the +15 factor", func(t *testing.T) {
		risk := AnalyzeRisk(nil, nil, metrics.AverageOverloadDay-2, metrics)
		require.Len(t, risk.Factors, 1)
		assert.Equal(t, 15, risk.Factors[0].Impact)
	})

	t.Run("involuntary events add risk near their historical day", func(t *testing.T) {
		events := []schemas.RewardEvent{partialEvent(10, 6), partialEvent(20, 8)}
		// Historical event day is 7; day 6 is within one day of it. Day 6
		// also sits within 2 days of overload day 7, so +15 fires too.
		risk := AnalyzeRisk(nil, events, 6, metrics)

		require.NotNil(t, risk.HistoricalEventDay)
		assert.InDelta(t, 7, *risk.HistoricalEventDay, 0.01)
		assert.Equal(t, 20+15+20, risk.Probability)
	})

	t.Run("volatile recent history adds risk", func(t *testing.T) {
		history := []schemas.StateChangeRecord{
			record(0, schemas.StateBaseline),
			record(1, schemas.StatePeak),
			record(2, schemas.StateRecovery),
			record(3, schemas.StateBuilding),
			record(4, schemas.StateBaseline),
		}
		risk := AnalyzeRisk(history, nil, 1, metrics)
		require.Len(t, risk.Factors, 1)
		assert.Equal(t, 10, risk.Factors[0].Impact)
	})

	t.Run("overload state and extended peak add danger factors", func(t *testing.T) {
		overloadRisk := AnalyzeRisk([]schemas.StateChangeRecord{record(0, schemas.StateOverload)}, nil, 1, metrics)
		assert.Equal(t, 45, overloadRisk.Probability)

		peakRisk := AnalyzeRisk([]schemas.StateChangeRecord{record(0, schemas.StatePeak)}, nil, 8, metrics)
		// +30 past overload day, +10 extended peak.
		assert.Equal(t, 60, peakRisk.Probability)
	})

	t.Run("probability is clamped to 95", func(t *testing.T) {
		history := []schemas.StateChangeRecord{
			record(0, schemas.StateOverload),
			record(1, schemas.StatePeak),
			record(2, schemas.StateBuilding),
			record(3, schemas.StateBaseline),
		}
		events := []schemas.RewardEvent{partialEvent(5, 6)}
		risk := AnalyzeRisk(history, events, 20, metrics)
		assert.Equal(t, 95, risk.Probability)
		assert.Equal(t, schemas.RiskCritical, risk.Level)
	})

	t.Run("level boundaries are inclusive", func(t *testing.T) {
		assert.Equal(t, schemas.RiskCritical, riskLevel(70))
		assert.Equal(t, schemas.RiskHigh, riskLevel(50))
		assert.Equal(t, schemas.RiskHigh, riskLevel(69))
		assert.Equal(t, schemas.RiskModerate, riskLevel(30))
		assert.Equal(t, schemas.RiskLow, riskLevel(29))
	})

	t.Run("derives buffer days and peak risk day", func(t *testing.T) {
		risk := AnalyzeRisk(nil, nil, 2, metrics)
		assert.Equal(t, 5, risk.PeakRiskDay)
		assert.Equal(t, 3, risk.SafetyBufferDays)

		past := AnalyzeRisk(nil, nil, 9, metrics)
		assert.Equal(t, 3, past.PeakRiskDay, "non-positive peak risk day falls back to 3")
		assert.Zero(t, past.SafetyBufferDays)
	})

	t.Run("is pure", func(t *testing.T) {
		history := []schemas.StateChangeRecord{record(0, schemas.StatePeak), record(1, schemas.StateBuilding)}
		events := []schemas.RewardEvent{partialEvent(3, 5)}
		first := AnalyzeRisk(history, events, 6, metrics)
		second := AnalyzeRisk(history, events, 6, metrics)
		assert.Empty(t, cmp.Diff(first, second))
	})
}
