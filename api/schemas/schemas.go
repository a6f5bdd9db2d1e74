package schemas

import "time"

// EngagementState is the behavioral phase a user is currently modeled as
// being in. Exactly one state is current at any time; it is derived from
// the most recent StateChangeRecord and defaults to StateBaseline when no
// history exists.
type EngagementState string

const (
	StateBaseline  EngagementState = "baseline"
	StateBuilding  EngagementState = "building"
	StatePeak      EngagementState = "peak"
	StateOverload  EngagementState = "overload"
	StatePostEvent EngagementState = "post_event"
	StateRecovery  EngagementState = "recovery"
)

// AllStates lists every engagement state in cycle order.
var AllStates = []EngagementState{
	StateBaseline, StateBuilding, StatePeak,
	StateOverload, StatePostEvent, StateRecovery,
}

// Valid reports whether s is one of the enumerated engagement states.
func (s EngagementState) Valid() bool {
	switch s {
	case StateBaseline, StateBuilding, StatePeak, StateOverload, StatePostEvent, StateRecovery:
		return true
	}
	return false
}

// StateChangeRecord is a single observed state transition. The engine
// receives these newest-first and never mutates them.
type StateChangeRecord struct {
	Date  time.Time       `json:"date"`
	State EngagementState `json:"state"`
}

// RewardEventCategory distinguishes voluntary, complete reward events from
// involuntary or partial ones. Only full events count toward cycle statistics.
type RewardEventCategory string

const (
	RewardFull    RewardEventCategory = "full"
	RewardPartial RewardEventCategory = "partial"
)

// CountsTowardCycle reports whether events of this category terminate a cycle.
func (c RewardEventCategory) CountsTowardCycle() bool {
	return c == RewardFull
}

// RewardEvent is a terminating event that resets the cycle day counter.
// Received newest-first, append-only.
type RewardEvent struct {
	OccurredAt    time.Time           `json:"occurred_at"`
	Category      RewardEventCategory `json:"category"`
	DaysSinceLast int                 `json:"days_since_last"`
}

// RollingMetrics is the per-user summary maintained by an external
// aggregation job. The engine treats it as a read-only snapshot.
type RollingMetrics struct {
	AverageCycleLength       int `json:"average_cycle_length"`
	AverageThresholdEntryDay int `json:"average_threshold_entry_day"`
	AverageOverloadDay       int `json:"average_overload_day"`
}

// Fallbacks used when no metrics row exists for the user.
const (
	DefaultCycleLength       = 3
	DefaultThresholdEntryDay = 10
	DefaultOverloadDay       = 7
)

// DefaultRollingMetrics returns the documented fallback snapshot.
func DefaultRollingMetrics() RollingMetrics {
	return RollingMetrics{
		AverageCycleLength:       DefaultCycleLength,
		AverageThresholdEntryDay: DefaultThresholdEntryDay,
		AverageOverloadDay:       DefaultOverloadDay,
	}
}
