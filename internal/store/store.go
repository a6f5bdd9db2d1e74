package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/driftwoodlabs/momentum/api/schemas"
)

// ErrUserNotFound is returned when the storage layer has no row for the
// requested user at all. Callers treat it as "insufficient data to
// forecast", not a fault.
var ErrUserNotFound = errors.New("store: user not found")

// DBPool abstracts the pgxpool.Pool to allow for mocking in tests.
type DBPool interface {
	Ping(ctx context.Context) error
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store provides the PostgreSQL implementation of the engine's read
// contracts. It does not retry or translate storage errors; those
// propagate to the caller unchanged.
type Store struct {
	pool DBPool
	log  *zap.Logger
}

// New creates a new store instance and verifies the connection.
func New(ctx context.Context, pool DBPool, logger *zap.Logger) (*Store, error) {
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Store{
		pool: pool,
		log:  logger.Named("store"),
	}, nil
}

// GetStateHistory returns the user's state-change records since the given
// date, newest first.
func (s *Store) GetStateHistory(ctx context.Context, userID string, since time.Time) ([]schemas.StateChangeRecord, error) {
	query := `
        SELECT recorded_on, state
        FROM engagement_states
        WHERE user_id = $1 AND recorded_on >= $2
        ORDER BY recorded_on DESC;
    `
	rows, err := s.pool.Query(ctx, query, userID, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query state history: %w", err)
	}
	defer rows.Close()

	var history []schemas.StateChangeRecord
	for rows.Next() {
		var rec schemas.StateChangeRecord
		var state string
		if err := rows.Scan(&rec.Date, &state); err != nil {
			return nil, fmt.Errorf("failed to scan state record: %w", err)
		}
		rec.State = schemas.EngagementState(state)
		rec.Date = rec.Date.UTC()
		history = append(history, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during state history iteration: %w", err)
	}
	return history, nil
}

// GetRewardEvents returns the user's reward events since the given date,
// newest first.
func (s *Store) GetRewardEvents(ctx context.Context, userID string, since time.Time) ([]schemas.RewardEvent, error) {
	query := `
        SELECT occurred_at, category, days_since_last
        FROM reward_events
        WHERE user_id = $1 AND occurred_at >= $2
        ORDER BY occurred_at DESC;
    `
	rows, err := s.pool.Query(ctx, query, userID, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query reward events: %w", err)
	}
	defer rows.Close()

	var events []schemas.RewardEvent
	for rows.Next() {
		var ev schemas.RewardEvent
		var category string
		if err := rows.Scan(&ev.OccurredAt, &category, &ev.DaysSinceLast); err != nil {
			return nil, fmt.Errorf("failed to scan reward event: %w", err)
		}
		ev.Category = schemas.RewardEventCategory(category)
		ev.OccurredAt = ev.OccurredAt.UTC()
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during reward event iteration: %w", err)
	}
	return events, nil
}

// GetRollingMetrics returns the user's rolling metrics snapshot, or nil
// when the user exists but has no metrics row yet. An unknown user yields
// ErrUserNotFound.
func (s *Store) GetRollingMetrics(ctx context.Context, userID string) (*schemas.RollingMetrics, error) {
	query := `
        SELECT m.average_cycle_length, m.average_threshold_entry_day, m.average_overload_day
        FROM users u
        LEFT JOIN rolling_metrics m ON m.user_id = u.id
        WHERE u.id = $1;
    `
	var cycleLen, thresholdDay, overloadDay *int
	err := s.pool.QueryRow(ctx, query, userID).Scan(&cycleLen, &thresholdDay, &overloadDay)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query rolling metrics: %w", err)
	}
	if cycleLen == nil || thresholdDay == nil || overloadDay == nil {
		// User exists, no metrics row yet; the engine applies defaults.
		return nil, nil
	}
	return &schemas.RollingMetrics{
		AverageCycleLength:       *cycleLen,
		AverageThresholdEntryDay: *thresholdDay,
		AverageOverloadDay:       *overloadDay,
	}, nil
}

// GetActiveComplianceGates returns gates currently flagged against the
// given reward category for this user.
func (s *Store) GetActiveComplianceGates(ctx context.Context, userID string, category schemas.RewardEventCategory) ([]schemas.GateRef, error) {
	query := `
        SELECT id, category, reason
        FROM compliance_gates
        WHERE user_id = $1 AND category = $2 AND active = TRUE
        ORDER BY created_at ASC;
    `
	rows, err := s.pool.Query(ctx, query, userID, string(category))
	if err != nil {
		return nil, fmt.Errorf("failed to query compliance gates: %w", err)
	}
	defer rows.Close()

	var gates []schemas.GateRef
	for rows.Next() {
		var g schemas.GateRef
		var cat string
		if err := rows.Scan(&g.ID, &cat, &g.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan compliance gate: %w", err)
		}
		g.Category = schemas.RewardEventCategory(cat)
		gates = append(gates, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during compliance gate iteration: %w", err)
	}
	return gates, nil
}

// GetEngagementMetrics returns the current-cycle session summary used by
// the reward gate. An unknown user yields ErrUserNotFound.
func (s *Store) GetEngagementMetrics(ctx context.Context, userID string) (*schemas.EngagementMetrics, error) {
	query := `
        SELECT sessions_this_cycle, unfulfilled_mandatory, strong_practice_signal, weak_practice_signal
        FROM engagement_summary
        WHERE user_id = $1;
    `
	var em schemas.EngagementMetrics
	err := s.pool.QueryRow(ctx, query, userID).Scan(
		&em.SessionsThisCycle,
		&em.UnfulfilledMandatory,
		&em.StrongPracticeSignal,
		&em.WeakPracticeSignal,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query engagement metrics: %w", err)
	}
	return &em, nil
}

// GetComplianceHistory returns the trailing compliance snapshot for the
// user. An unknown user yields ErrUserNotFound.
func (s *Store) GetComplianceHistory(ctx context.Context, userID string) (*schemas.ComplianceHistory, error) {
	query := `
        SELECT compliance_rate, declining_count_7d, avg_engagement_this_cycle, days_since_qualifying_activity
        FROM compliance_summary
        WHERE user_id = $1;
    `
	var ch schemas.ComplianceHistory
	err := s.pool.QueryRow(ctx, query, userID).Scan(
		&ch.ComplianceRate,
		&ch.DecliningCount7d,
		&ch.AvgEngagementThisCycle,
		&ch.DaysSinceQualifyingActivity,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query compliance history: %w", err)
	}
	return &ch, nil
}
