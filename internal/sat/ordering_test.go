package sat

import (
	"math/rand"
	"testing"
)

func TestNextRandomCoversAllVariables(t *testing.T) {
	s := NewSolver(Options{Seed: 3})
	for i := 0; i < 8; i++ {
		s.AddVariable()
	}

	// With no clauses, repeatedly deciding must assign every variable
	// exactly once.
	picked := map[int]bool{}
	for {
		l := s.order.NextDecision(s)
		if l == NoLiteral {
			break
		}
		if picked[l.Var()] {
			t.Fatalf("variable %d decided twice", l.Var())
		}
		picked[l.Var()] = true
		s.assign(l, nil)
	}
	if len(picked) != 8 {
		t.Errorf("decided %d variables, want 8", len(picked))
	}
}

func TestNextRandomExhausted(t *testing.T) {
	s := NewSolver(Options{Seed: 1})
	if got := s.order.NextDecision(s); got != NoLiteral {
		t.Errorf("no variables: got %s, want NoLiteral", got)
	}
}

func TestActivityOrderPrefersBumped(t *testing.T) {
	rng := rand.New(rand.NewSource(0))
	vo := newVarOrder(DecideActivity, rng, 0.95, false)
	s := NewSolver(Options{Decision: DecideActivity, ActivityDecay: 0.95})
	s.order = vo
	for i := 0; i < 3; i++ {
		s.AddVariable()
	}

	vo.Bump(2)
	vo.Bump(2)
	vo.Bump(3)

	if l := vo.NextDecision(s); l.Var() != 2 {
		t.Fatalf("first decision on variable %d, want 2", l.Var())
	}
	s.assign(Literal(2), nil)

	if l := vo.NextDecision(s); l.Var() != 3 {
		t.Errorf("second decision on variable %d, want 3", l.Var())
	}
}

func TestActivityOrderPhaseSaving(t *testing.T) {
	rng := rand.New(rand.NewSource(0))
	vo := newVarOrder(DecideActivity, rng, 0.95, true)
	s := NewSolver(Options{Decision: DecideActivity, ActivityDecay: 0.95, PhaseSaving: true})
	s.order = vo
	v := s.AddVariable()

	// Simulate an assignment to false undone by a backjump: the saved
	// phase must be reused by the next decision.
	vo.Reinsert(v, False)
	if l := vo.NextDecision(s); l != Literal(-v) {
		t.Errorf("got decision %s, want %d", l, -v)
	}
}

func TestActivityRescaling(t *testing.T) {
	rng := rand.New(rand.NewSource(0))
	vo := newVarOrder(DecideActivity, rng, 0.95, false)
	s := NewSolver(Options{Decision: DecideActivity, ActivityDecay: 0.95})
	s.order = vo
	s.AddVariable()
	s.AddVariable()

	vo.scores[0] = 2e100
	vo.Bump(1) // crosses the rescaling threshold

	for i, score := range vo.scores {
		if score > 1e100 {
			t.Errorf("score of variable %d not rescaled: %g", i+1, score)
		}
	}
	if l := vo.NextDecision(s); l.Var() != 1 {
		t.Errorf("rescaling changed the relative order: got variable %d, want 1", l.Var())
	}
}
