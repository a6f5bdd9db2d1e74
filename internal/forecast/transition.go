package forecast

import "github.com/driftwoodlabs/momentum/api/schemas"

// TransitionMatrix is the empirical state-transition probability table.
// Row values are percentages and sum to 100 for every observed "from"
// state. States with no observed outgoing transitions are absent; callers
// fall back to static heuristics on a missing entry.
type TransitionMatrix map[schemas.EngagementState]map[schemas.EngagementState]float64

// BuildTransitionMatrix derives the matrix from the state-change history.
// The history is newest-first, so history[i] is the "from" state and the
// more recent history[i-1] is the "to" state of each adjacent pair. Fewer
// than two records yield an empty matrix.
//
// No smoothing is applied for unseen transitions; sparse early data simply
// leaves rows out and the heuristic fallback covers them.
func BuildTransitionMatrix(history []schemas.StateChangeRecord) TransitionMatrix {
	matrix := make(TransitionMatrix)
	if len(history) < 2 {
		return matrix
	}

	counts := make(map[schemas.EngagementState]map[schemas.EngagementState]int)
	totals := make(map[schemas.EngagementState]int)
	for i := 1; i < len(history); i++ {
		from := history[i].State
		to := history[i-1].State
		if counts[from] == nil {
			counts[from] = make(map[schemas.EngagementState]int)
		}
		counts[from][to]++
		totals[from]++
	}

	for from, row := range counts {
		matrix[from] = make(map[schemas.EngagementState]float64, len(row))
		for to, n := range row {
			matrix[from][to] = float64(n) / float64(totals[from]) * 100
		}
	}
	return matrix
}

// Probability returns the historical percentage for a transition and
// whether it was ever observed.
func (m TransitionMatrix) Probability(from, to schemas.EngagementState) (float64, bool) {
	row, ok := m[from]
	if !ok {
		return 0, false
	}
	p, ok := row[to]
	return p, ok
}
