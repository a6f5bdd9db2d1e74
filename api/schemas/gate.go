package schemas

// GateRef identifies an active external compliance gate that blocks a
// reward category while it remains unresolved.
type GateRef struct {
	ID       string              `json:"id"`
	Category RewardEventCategory `json:"category"`
	Reason   string              `json:"reason"`
}

// ComplianceHistory is the trailing compliance snapshot read from the
// storage collaborator. Rates are in [0, 1]; engagement ratings on a 1-10
// scale.
type ComplianceHistory struct {
	ComplianceRate              float64 `json:"compliance_rate"`
	DecliningCount7d            int     `json:"declining_count_7d"`
	AvgEngagementThisCycle      float64 `json:"avg_engagement_this_cycle"`
	DaysSinceQualifyingActivity int     `json:"days_since_qualifying_activity"`
}

// EngagementMetrics summarizes the current cycle's practice activity for
// the reward gate. The practice signals nudge the roll probability and are
// derived upstream from session quality.
type EngagementMetrics struct {
	SessionsThisCycle    int  `json:"sessions_this_cycle"`
	UnfulfilledMandatory bool `json:"unfulfilled_mandatory"`
	StrongPracticeSignal bool `json:"strong_practice_signal"`
	WeakPracticeSignal   bool `json:"weak_practice_signal"`
}

// EligibilityDecision is the reward gate's output. Eligible reflects hard
// rule satisfaction; Earned additionally reflects the stochastic roll. The
// raw probability is never part of the decision.
type EligibilityDecision struct {
	Eligible        bool     `json:"eligible"`
	BlockingReasons []string `json:"blocking_reasons"`
	Earned          bool     `json:"earned"`
}
