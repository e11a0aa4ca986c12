package sat

import (
	"math/rand"

	"github.com/rhartert/yagh"
)

// DecisionPolicy selects how the solver picks decision literals.
type DecisionPolicy int

const (
	// DecideRandom picks a variable index uniformly at random, scans forward
	// with wraparound to the first unassigned variable, and picks its
	// polarity uniformly at random. This is the default policy.
	DecideRandom DecisionPolicy = iota

	// DecideActivity picks the unassigned variable with the highest
	// activity score, bumping variables involved in conflicts.
	DecideActivity
)

// VarOrder maintains the order in which variables are selected as
// decisions.
type VarOrder struct {
	policy DecisionPolicy
	rng    *rand.Rand

	// Binary heap to access the next variable with the highest score. The
	// heap breaks ties using variable IDs, which corresponds to the order
	// in which variables were declared. Only maintained under
	// DecideActivity; keys are variable IDs minus one.
	order      *yagh.IntMap[float64]
	scores     []float64 // in [0, 1e100)
	scoreInc   float64   // in (0, 1e100)
	scoreDecay float64   // in (0, 1]

	phases      []LBool
	phaseSaving bool
}

func newVarOrder(policy DecisionPolicy, rng *rand.Rand, decay float64, phaseSaving bool) *VarOrder {
	vo := &VarOrder{
		policy:      policy,
		rng:         rng,
		scoreInc:    1,
		scoreDecay:  decay,
		phaseSaving: phaseSaving,
	}
	if policy == DecideActivity {
		vo.order = yagh.New[float64](0)
	}
	return vo
}

// AddVar registers variable v with the given initial phase.
func (vo *VarOrder) AddVar(v int, initPhase bool) {
	vo.scores = append(vo.scores, 0)
	vo.phases = append(vo.phases, Lift(initPhase))
	if vo.order != nil {
		vo.order.GrowBy(1)
		vo.order.Put(v-1, 0)
	}
}

// Reinsert adds variable v back to the set of candidates to be selected.
// This function must be called by the solver when v is being unassigned
// (e.g. when a backjump occurs) where val is the value the variable was
// assigned to.
func (vo *VarOrder) Reinsert(v int, val LBool) {
	if vo.order == nil {
		return
	}
	if vo.phaseSaving {
		vo.phases[v-1] = val
	}
	vo.order.Put(v-1, -vo.scores[v-1])
}

// Bump increases the score of the given variable. This operation might
// trigger a rescaling of all scores if the score of v exceeds a given
// threshold. The rescaling conserves the relative importance of each
// variable when compared to the others.
func (vo *VarOrder) Bump(v int) {
	if vo.order == nil {
		return
	}
	newScore := vo.scores[v-1] + vo.scoreInc
	vo.scores[v-1] = newScore
	if vo.order.Contains(v - 1) {
		vo.order.Put(v-1, -newScore)
	}
	if newScore > 1e100 {
		vo.rescaleScoresAndIncrement()
	}
}

// Decay slightly decreases the scores of all variables relative to the ones
// bumped after this call.
func (vo *VarOrder) Decay() {
	if vo.order == nil {
		return
	}
	vo.scoreInc /= vo.scoreDecay // decay scores by bumping the increment
	if vo.scoreInc > 1e100 {
		vo.rescaleScoresAndIncrement()
	}
}

// NextDecision returns the next decision literal, or NoLiteral if every
// variable is assigned.
func (vo *VarOrder) NextDecision(s *Solver) Literal {
	if vo.policy == DecideRandom {
		return vo.nextRandom(s)
	}
	return vo.nextByActivity(s)
}

// nextRandom picks a variable index uniformly at random and, if that
// variable is assigned, scans forward with wraparound for the first
// unassigned one. The polarity is picked uniformly at random.
func (vo *VarOrder) nextRandom(s *Solver) Literal {
	n := s.NumVariables()
	if n == 0 {
		return NoLiteral
	}
	v := vo.rng.Intn(n) + 1
	for i := 0; i < n; i++ {
		if s.VarValue(v) == Unknown {
			if vo.rng.Intn(2) == 0 {
				return Literal(v)
			}
			return Literal(-v)
		}
		if v++; v > n {
			v = 1
		}
	}
	return NoLiteral
}

func (vo *VarOrder) nextByActivity(s *Solver) Literal {
	for {
		next, ok := vo.order.Pop()
		if !ok {
			return NoLiteral
		}
		v := next.Elem + 1
		if s.VarValue(v) != Unknown {
			continue // already assigned
		}
		if vo.phases[v-1] == False {
			return Literal(-v)
		}
		return Literal(v)
	}
}

func (vo *VarOrder) rescaleScoresAndIncrement() {
	vo.scoreInc *= 1e-100 // important to keep proportions
	for i, score := range vo.scores {
		newScore := score * 1e-100
		vo.scores[i] = newScore
		if vo.order.Contains(i) {
			vo.order.Put(i, -newScore)
		}
	}
}
