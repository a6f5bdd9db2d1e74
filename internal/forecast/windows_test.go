package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftwoodlabs/momentum/api/schemas"
)

func prediction(day int, state schemas.EngagementState, confidence int) schemas.Prediction {
	return schemas.Prediction{Day: day, State: state, Confidence: confidence}
}

func lowRisk() schemas.RiskAnalysis {
	return schemas.RiskAnalysis{Level: schemas.RiskLow, Probability: 20, SafetyBufferDays: 4}
}

func TestIdentifyWindows(t *testing.T) {
	t.Run("no matching states yield no windows", func(t *testing.T) {
		predictions := []schemas.Prediction{
			prediction(1, schemas.StateBaseline, 70),
			prediction(2, schemas.StateBaseline, 70),
		}
		assert.Empty(t, IdentifyWindows(predictions, lowRisk()))
	})

	t.Run("a peak run yields both deep-engagement and commitment windows", func(t *testing.T) {
		predictions := []schemas.Prediction{
			prediction(1, schemas.StateBaseline, 70),
			prediction(2, schemas.StatePeak, 80),
			prediction(3, schemas.StatePeak, 80),
			prediction(4, schemas.StateOverload, 60),
		}
		windows := IdentifyWindows(predictions, schemas.RiskAnalysis{Level: schemas.RiskHigh})

		types := make(map[schemas.WindowType]schemas.OptimalWindow)
		for _, w := range windows {
			types[w.Type] = w
		}
		deep, ok := types[schemas.WindowDeepEngagement]
		require.True(t, ok)
		commit, ok := types[schemas.WindowCommitment]
		require.True(t, ok)

		assert.Equal(t, 2, deep.StartDay)
		assert.Equal(t, 3, deep.EndDay)
		assert.Equal(t, deep.StartDay, commit.StartDay)
		assert.Equal(t, deep.EndDay, commit.EndDay)
		assert.Equal(t, schemas.QualityExcellent, deep.Quality)
	})

	t.Run("a single building day is not a breakthrough window", func(t *testing.T) {
		predictions := []schemas.Prediction{
			prediction(1, schemas.StateBuilding, 70),
			prediction(2, schemas.StateBaseline, 70),
		}
		for _, w := range IdentifyWindows(predictions, lowRisk()) {
			assert.NotEqual(t, schemas.WindowBreakthrough, w.Type)
		}
	})

	t.Run("a sustained building run is a breakthrough window", func(t *testing.T) {
		predictions := []schemas.Prediction{
			prediction(1, schemas.StateBuilding, 65),
			prediction(2, schemas.StateBuilding, 65),
			prediction(3, schemas.StateBuilding, 50),
		}
		windows := IdentifyWindows(predictions, lowRisk())

		var breakthrough *schemas.OptimalWindow
		for i := range windows {
			if windows[i].Type == schemas.WindowBreakthrough {
				breakthrough = &windows[i]
			}
		}
		require.NotNil(t, breakthrough)
		assert.Equal(t, 1, breakthrough.StartDay)
		assert.Equal(t, 3, breakthrough.EndDay)
		assert.Equal(t, schemas.QualityGood, breakthrough.Quality)
	})

	t.Run("active runs inside the safety buffer are low-risk practice windows", func(t *testing.T) {
		predictions := []schemas.Prediction{
			prediction(1, schemas.StateBuilding, 70),
			prediction(2, schemas.StatePeak, 70),
		}
		windows := IdentifyWindows(predictions, lowRisk())

		var found bool
		for _, w := range windows {
			if w.Type == schemas.WindowLowRiskPractice {
				found = true
				assert.Equal(t, schemas.QualityExcellent, w.Quality, "low ambient risk grades the window")
			}
		}
		assert.True(t, found)
	})

	t.Run("runs past the safety buffer are not low-risk windows", func(t *testing.T) {
		risk := schemas.RiskAnalysis{Level: schemas.RiskModerate, SafetyBufferDays: 0}
		predictions := []schemas.Prediction{
			prediction(1, schemas.StateBuilding, 70),
			prediction(2, schemas.StateBuilding, 70),
			prediction(3, schemas.StatePeak, 70),
		}
		for _, w := range IdentifyWindows(predictions, risk) {
			assert.NotEqual(t, schemas.WindowLowRiskPractice, w.Type)
		}
	})

	t.Run("recovery phases are rest windows", func(t *testing.T) {
		predictions := []schemas.Prediction{
			prediction(1, schemas.StatePostEvent, 85),
			prediction(2, schemas.StateRecovery, 80),
			prediction(3, schemas.StateBaseline, 70),
		}
		windows := IdentifyWindows(predictions, lowRisk())

		require.Len(t, windows, 1)
		assert.Equal(t, schemas.WindowRest, windows[0].Type)
		assert.Equal(t, 1, windows[0].StartDay)
		assert.Equal(t, 2, windows[0].EndDay)
	})

	t.Run("windows stay within the horizon and are ordered", func(t *testing.T) {
		// Drive a realistic sequence through the predictor and check the
		// structural invariants on whatever windows come out.
		predictions := Predict(schemas.StateBuilding, 5, 0, TransitionMatrix{}, defaultThresholds(), 14)
		windows := IdentifyWindows(predictions, lowRisk())

		require.NotEmpty(t, windows)
		lastStart := 0
		for _, w := range windows {
			assert.LessOrEqual(t, w.StartDay, w.EndDay)
			assert.GreaterOrEqual(t, w.StartDay, 1)
			assert.LessOrEqual(t, w.EndDay, 14)
			assert.GreaterOrEqual(t, w.StartDay, lastStart, "windows must be sorted by start day")
			lastStart = w.StartDay
		}
	})
}
