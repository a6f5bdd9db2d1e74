package forecast

import (
	"math"
	"time"

	"github.com/driftwoodlabs/momentum/api/schemas"
)

const (
	// maxAccuracyCycles caps how many completed cycles feed the accuracy
	// self-assessment.
	maxAccuracyCycles = 5
	// minAccuracyCycles is the number of qualifying cycles below which the
	// accuracy score falls back to its neutral default.
	minAccuracyCycles = 3
	// maxPlausibleGapDays filters out data-error gaps between events.
	maxPlausibleGapDays = 60
	// defaultAccuracy is the neutral score used with insufficient history.
	defaultAccuracy = 50
)

// ForecastCycle estimates the likely shape of the current cycle. now is
// passed in rather than read from the clock so the function stays pure.
func ForecastCycle(events []schemas.RewardEvent, cycleDay int, metrics schemas.RollingMetrics, now time.Time) schemas.CycleForecast {
	predictedLength := metrics.AverageCycleLength

	daysUntilThreshold := metrics.AverageThresholdEntryDay - cycleDay
	if daysUntilThreshold < 0 {
		daysUntilThreshold = 0
	}
	daysUntilOverload := metrics.AverageOverloadDay - cycleDay
	if daysUntilOverload < 0 {
		daysUntilOverload = 0
	}

	return schemas.CycleForecast{
		PredictedCycleLength: predictedLength,
		DaysUntilThreshold:   daysUntilThreshold,
		DaysUntilOverload:    daysUntilOverload,
		OptimalReleaseWindow: releaseWindow(cycleDay, predictedLength, metrics.AverageOverloadDay),
		NextPlateauDate:      now.AddDate(0, 0, daysUntilThreshold),
		HistoricalAccuracy:   historicalAccuracy(events, predictedLength),
	}
}

// releaseWindow computes the recommended release span. Past the overload
// margin the window is immediate; otherwise it tracks the predicted cycle
// end when that falls within the coming week.
func releaseWindow(cycleDay, predictedLength, overloadDay int) *schemas.DayRange {
	if cycleDay > overloadDay-2 {
		return &schemas.DayRange{Start: 0, End: 3}
	}
	remaining := predictedLength - cycleDay
	if remaining >= 0 && remaining <= 7 {
		start := remaining - 1
		if start < 0 {
			start = 0
		}
		return &schemas.DayRange{Start: start, End: remaining + 2}
	}
	return nil
}

// historicalAccuracy scores how well the predicted cycle length matches
// the last few completed cycles, as 100 minus the mean absolute percentage
// error. Fewer than minAccuracyCycles qualifying cycles yield the neutral
// default.
func historicalAccuracy(events []schemas.RewardEvent, predictedLength int) int {
	gaps := completedCycleGaps(events)
	if len(gaps) < minAccuracyCycles || predictedLength <= 0 {
		return defaultAccuracy
	}

	var errSum float64
	for _, gap := range gaps {
		errSum += math.Abs(float64(gap)-float64(predictedLength)) / float64(gap)
	}
	meanErr := errSum / float64(len(gaps))
	accuracy := int(math.Round(100 - meanErr*100))
	if accuracy < 0 {
		accuracy = 0
	}
	return accuracy
}

// completedCycleGaps derives the most recent completed cycle lengths from
// gaps between consecutive qualifying reward events (newest first),
// dropping non-positive or implausibly long gaps as data errors.
func completedCycleGaps(events []schemas.RewardEvent) []int {
	var qualifying []schemas.RewardEvent
	for _, ev := range events {
		if ev.Category.CountsTowardCycle() {
			qualifying = append(qualifying, ev)
		}
	}

	var gaps []int
	for i := 0; i+1 < len(qualifying) && len(gaps) < maxAccuracyCycles; i++ {
		gap := int(math.Round(qualifying[i].OccurredAt.Sub(qualifying[i+1].OccurredAt).Hours() / 24))
		if gap <= 0 || gap >= maxPlausibleGapDays {
			continue
		}
		gaps = append(gaps, gap)
	}
	return gaps
}
