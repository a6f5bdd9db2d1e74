// Package gate implements the reward admission control: an adaptive
// minimum-duration rule, hard blocking conditions from collaborator
// subsystems, and a stochastic roll whose probability is never surfaced to
// the caller.
package gate

import (
	"fmt"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/driftwoodlabs/momentum/api/schemas"
	"github.com/driftwoodlabs/momentum/internal/config"
)

// minSessionTarget caps the per-cycle session requirement.
const minSessionTarget = 5

// Gate evaluates reward eligibility for a cycle day. The random source is
// injectable so tests can pin both roll outcomes deterministically.
type Gate struct {
	cfg  config.GateConfig
	log  *zap.Logger
	rand func() float64
}

// New creates a gate with the production random source.
func New(cfg config.GateConfig, logger *zap.Logger) *Gate {
	return NewWithRand(cfg, logger, rand.Float64)
}

// NewWithRand creates a gate with an injected random source returning
// values in [0, 1).
func NewWithRand(cfg config.GateConfig, logger *zap.Logger, random func() float64) *Gate {
	return &Gate{
		cfg:  cfg,
		log:  logger.Named("gate"),
		rand: random,
	}
}

// AdaptiveMinimum computes the minimum cycle length in days before a
// reward becomes possible, adjusted by trailing compliance and clamped to
// the configured bounds.
func (g *Gate) AdaptiveMinimum(ch schemas.ComplianceHistory) int {
	minimum := g.cfg.BaseMinimumDays
	if ch.ComplianceRate > 0.9 {
		minimum--
	} else if ch.ComplianceRate < 0.7 {
		minimum += 2
	}
	if ch.DecliningCount7d >= 3 {
		minimum++
	}
	if minimum < g.cfg.MinimumFloor {
		minimum = g.cfg.MinimumFloor
	}
	if minimum > g.cfg.MinimumCeiling {
		minimum = g.cfg.MinimumCeiling
	}
	return minimum
}

// Evaluate combines the hard eligibility conditions with the stochastic
// roll. Every failing condition appears in BlockingReasons so the decision
// is auditable and reproducible from its inputs.
func (g *Gate) Evaluate(currentDay int, em schemas.EngagementMetrics, ch schemas.ComplianceHistory, activeGates []schemas.GateRef) schemas.EligibilityDecision {
	minimum := g.AdaptiveMinimum(ch)
	var reasons []string

	if currentDay < minimum {
		reasons = append(reasons, fmt.Sprintf("cycle day %d is below the adaptive minimum of %d", currentDay, minimum))
	}
	for _, ref := range activeGates {
		reasons = append(reasons, fmt.Sprintf("active compliance gate %s: %s", ref.ID, ref.Reason))
	}
	if em.UnfulfilledMandatory {
		reasons = append(reasons, "a mandatory session remains unfulfilled")
	}
	if ch.DaysSinceQualifyingActivity >= 3 {
		reasons = append(reasons, fmt.Sprintf("%d consecutive days without a qualifying practice activity", ch.DaysSinceQualifyingActivity))
	}
	if target := sessionTarget(currentDay); em.SessionsThisCycle < target {
		reasons = append(reasons, fmt.Sprintf("only %d of %d expected sessions this cycle", em.SessionsThisCycle, target))
	}
	if ch.AvgEngagementThisCycle < 6 {
		reasons = append(reasons, fmt.Sprintf("average engagement rating %.1f is below 6", ch.AvgEngagementThisCycle))
	}

	eligible := len(reasons) == 0 && currentDay >= minimum

	earned := false
	if eligible {
		p := g.probability(currentDay, minimum, em)
		earned = g.rand() < p
		g.log.Debug("reward roll evaluated",
			zap.Int("current_day", currentDay),
			zap.Int("minimum", minimum),
			zap.Bool("earned", earned),
		)
	}

	return schemas.EligibilityDecision{
		Eligible:        eligible,
		BlockingReasons: reasons,
		Earned:          earned,
	}
}

// sessionTarget is the per-cycle session count expected by the current
// day, capped so long cycles do not demand unbounded activity.
func sessionTarget(currentDay int) int {
	if currentDay < minSessionTarget {
		return currentDay
	}
	return minSessionTarget
}

// probability computes the variable-ratio roll probability. Zero below the
// adaptive minimum, saturated at the historical maximum day, and a linear
// ramp adjusted by engagement quality in between. The value never leaves
// this package.
func (g *Gate) probability(currentDay, minimum int, em schemas.EngagementMetrics) float64 {
	if currentDay < minimum {
		return 0
	}
	if currentDay >= g.cfg.HistoricalMaxDay {
		return 0.95
	}

	span := g.cfg.HistoricalMaxDay - minimum
	if span <= 0 {
		return 0.95
	}
	p := g.cfg.RampSlope * float64(currentDay-minimum) / float64(span)
	if em.StrongPracticeSignal {
		p += g.cfg.StrongSignalBonus
	}
	if em.WeakPracticeSignal {
		p -= g.cfg.WeakSignalPenalty
	}

	if p < g.cfg.ProbabilityFloor {
		p = g.cfg.ProbabilityFloor
	}
	if p > g.cfg.ProbabilityCeiling {
		p = g.cfg.ProbabilityCeiling
	}
	return p
}
