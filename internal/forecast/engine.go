package forecast

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/driftwoodlabs/momentum/api/schemas"
	"github.com/driftwoodlabs/momentum/internal/config"
	"github.com/driftwoodlabs/momentum/internal/gate"
	"github.com/driftwoodlabs/momentum/internal/store"
)

// Storage is the read contract the engine requires from the persistence
// collaborator. All series arrive newest-first. The engine never writes.
type Storage interface {
	GetStateHistory(ctx context.Context, userID string, since time.Time) ([]schemas.StateChangeRecord, error)
	GetRewardEvents(ctx context.Context, userID string, since time.Time) ([]schemas.RewardEvent, error)
	GetRollingMetrics(ctx context.Context, userID string) (*schemas.RollingMetrics, error)
	GetActiveComplianceGates(ctx context.Context, userID string, category schemas.RewardEventCategory) ([]schemas.GateRef, error)
	GetComplianceHistory(ctx context.Context, userID string) (*schemas.ComplianceHistory, error)
	GetEngagementMetrics(ctx context.Context, userID string) (*schemas.EngagementMetrics, error)
}

// Engine is the behavioral state forecasting engine. It holds no mutable
// state of its own; every call reads fresh inputs and returns a new value,
// so concurrent use needs no locking.
type Engine struct {
	storage Storage
	gate    *gate.Gate
	cfg     *config.Config
	log     *zap.Logger
	now     func() time.Time
}

// New creates an engine backed by the given storage collaborator.
func New(storage Storage, g *gate.Gate, cfg *config.Config, logger *zap.Logger) *Engine {
	return &Engine{
		storage: storage,
		gate:    g,
		cfg:     cfg,
		log:     logger.Named("forecast"),
		now:     time.Now,
	}
}

// GenerateForecast produces a full forecast for the user. An unknown user
// yields a nil forecast with a nil error; callers treat that as
// insufficient data, not a fault. Storage failures propagate unchanged.
func (e *Engine) GenerateForecast(ctx context.Context, userID string) (*schemas.Forecast, error) {
	now := e.now().UTC()

	metricsRow, err := e.storage.GetRollingMetrics(ctx, userID)
	if errors.Is(err, store.ErrUserNotFound) {
		e.log.Debug("no such user, skipping forecast", zap.String("user_id", userID))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading rolling metrics: %w", err)
	}
	metrics := schemas.DefaultRollingMetrics()
	if metricsRow != nil {
		metrics = *metricsRow
	}

	since := now.AddDate(0, 0, -e.cfg.Forecast.HistoryWindowDays)
	history, err := e.storage.GetStateHistory(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("reading state history: %w", err)
	}
	events, err := e.storage.GetRewardEvents(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("reading reward events: %w", err)
	}

	current := CurrentState(history)
	cycleDay := currentCycleDay(events, now)

	matrix := BuildTransitionMatrix(history)
	predictions := Predict(current, cycleDay, daysInCurrentState(history), matrix, ThresholdsFromMetrics(metrics), e.cfg.Forecast.HorizonDays)
	risk := AnalyzeRisk(history, events, cycleDay, metrics)
	windows := IdentifyWindows(predictions, risk)
	cycle := ForecastCycle(events, cycleDay, metrics, now)
	recommendations := GenerateRecommendations(risk, windows, cycle, e.cfg.Forecast.MaxRecommendations)

	e.log.Info("forecast generated",
		zap.String("user_id", userID),
		zap.String("current_state", string(current)),
		zap.Int("cycle_day", cycleDay),
		zap.String("risk_level", string(risk.Level)),
	)

	return &schemas.Forecast{
		ID:              uuid.NewString(),
		GeneratedAt:     now,
		CurrentState:    current,
		CurrentCycleDay: cycleDay,
		Predictions:     predictions,
		RiskAnalysis:    risk,
		OptimalWindows:  windows,
		CycleForecast:   cycle,
		Recommendations: recommendations,
	}, nil
}

// QuickForecast is the reduced projection for lightweight display. It
// shares GenerateForecast's unknown-user semantics.
func (e *Engine) QuickForecast(ctx context.Context, userID string) (*schemas.QuickForecast, error) {
	full, err := e.GenerateForecast(ctx, userID)
	if err != nil || full == nil {
		return nil, err
	}

	quick := &schemas.QuickForecast{
		State:              full.CurrentState,
		Day:                full.CurrentCycleDay,
		RiskLevel:          full.RiskAnalysis.Level,
		DaysUntilThreshold: full.CycleForecast.DaysUntilThreshold,
		DaysUntilRisk:      full.CycleForecast.DaysUntilOverload,
	}
	if len(full.Recommendations) > 0 {
		quick.TopRecommendation = &full.Recommendations[0]
	}
	return quick, nil
}

// EvaluateEligibility reads the compliance inputs and delegates to the
// reward gate. Unlike forecasts, an unknown user here is a real error: the
// gate must never silently pass or fail without auditable inputs.
func (e *Engine) EvaluateEligibility(ctx context.Context, userID string, currentDay int) (*schemas.EligibilityDecision, error) {
	compliance, err := e.storage.GetComplianceHistory(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("reading compliance history: %w", err)
	}
	engagement, err := e.storage.GetEngagementMetrics(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("reading engagement metrics: %w", err)
	}
	activeGates, err := e.storage.GetActiveComplianceGates(ctx, userID, schemas.RewardFull)
	if err != nil {
		return nil, fmt.Errorf("reading compliance gates: %w", err)
	}

	decision := e.gate.Evaluate(currentDay, *engagement, *compliance, activeGates)
	return &decision, nil
}

// currentCycleDay counts the days since the most recent qualifying reward
// event. With no qualifying events in the window it defaults to 1.
func currentCycleDay(events []schemas.RewardEvent, now time.Time) int {
	for _, ev := range events {
		if !ev.Category.CountsTowardCycle() {
			continue
		}
		days := int(now.Sub(ev.OccurredAt).Hours() / 24)
		if days < 0 {
			days = 0
		}
		return days
	}
	return 1
}

// daysInCurrentState counts how many consecutive recent records share the
// current state, beyond the first.
func daysInCurrentState(history []schemas.StateChangeRecord) int {
	if len(history) == 0 {
		return 0
	}
	days := 0
	for i := 1; i < len(history); i++ {
		if history[i].State != history[0].State {
			break
		}
		days++
	}
	return days
}
