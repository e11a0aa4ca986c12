package sat

import (
	"fmt"
	"math/rand"
	"time"
)

// variable holds the solver state attached to a single boolean variable.
type variable struct {
	// Current value of the variable. Unknown means the variable is not on
	// the trail.
	value LBool

	// Decision level at which the variable was assigned. Level 0 is the
	// root level. Only meaningful while value is not Unknown.
	level int

	// Clause that forced the assignment through propagation, or nil for
	// decisions and unit facts. The clause's slot 0 is always the literal
	// it assigned.
	reason *Clause

	// Scratch flag owned by conflict analysis. Always false outside it.
	mark bool

	// Pre-trail record that a unit clause over this variable was added.
	// unitSign is true when the recorded literal is negative. Unit facts
	// are asserted by Solve before the first decision.
	unit     bool
	unitSign bool

	// Clauses watching this variable: watches[0] holds the clauses
	// watching +v, watches[1] the clauses watching -v.
	watches [2][]*Clause
}

// Solver is a CDCL SAT solver with two-watched-literal propagation, 1-UIP
// clause learning, and backjumping. Variables are declared with AddVariable
// and clauses with AddClause; Solve runs the search.
type Solver struct {
	// Variable states, indexed by variable ID. Slot 0 is unused.
	vars []variable

	// Clause database. Clauses are also referenced from watch lists and
	// reason fields; the database itself only exists for accounting.
	constraints []*Clause
	learnts     []*Clause

	// Trail of currently assigned literals, in assignment order. Literal
	// levels along the trail are nondecreasing.
	trail  []Literal
	dlevel int

	// Whether the problem has reached a top level conflict.
	unsat bool

	// Decision ordering, which owns the solver's random source.
	order *VarOrder

	verbose   bool
	startTime time.Time

	// Search statistics.
	TotalConflicts    int64
	TotalDecisions    int64
	TotalPropagations int64

	// Models found by Solve.
	Models [][]bool

	// Temporary slices reused by all analyze calls to avoid unnecessary
	// allocations. tmpPending accumulates the marked literals below the
	// conflict level; tmpLearnt the learnt clause under construction.
	tmpPending []Literal
	tmpLearnt  []Literal
}

// Options configures a Solver.
type Options struct {
	// Seed for the random source behind decisions. Runs with the same seed
	// and input are reproducible.
	Seed int64

	// Decision selects the decision policy.
	Decision DecisionPolicy

	// ActivityDecay controls how fast variable scores decay under
	// DecideActivity. Must be in (0, 1].
	ActivityDecay float64

	// PhaseSaving makes DecideActivity reuse the last value a variable was
	// assigned to. It has no effect under DecideRandom.
	PhaseSaving bool

	// Verbose turns on the c-prefixed search progress table.
	Verbose bool
}

var DefaultOptions = Options{
	Seed:          0,
	Decision:      DecideRandom,
	ActivityDecay: 0.95,
	PhaseSaving:   false,
}

// NewDefaultSolver returns a solver configured with default options. This
// is equivalent to calling NewSolver with DefaultOptions.
func NewDefaultSolver() *Solver {
	return NewSolver(DefaultOptions)
}

func NewSolver(ops Options) *Solver {
	rng := rand.New(rand.NewSource(ops.Seed))
	return &Solver{
		vars:    make([]variable, 1), // slot 0 unused
		order:   newVarOrder(ops.Decision, rng, ops.ActivityDecay, ops.PhaseSaving),
		verbose: ops.Verbose,
	}
}

// NumVariables returns the number of declared variables.
func (s *Solver) NumVariables() int {
	return len(s.vars) - 1
}

// NumAssigns returns the number of literals currently on the trail.
func (s *Solver) NumAssigns() int {
	return len(s.trail)
}

func (s *Solver) NumConstraints() int {
	return len(s.constraints)
}

func (s *Solver) NumLearnts() int {
	return len(s.learnts)
}

// VarValue returns the current value of variable v.
func (s *Solver) VarValue(v int) LBool {
	return s.vars[v].value
}

// LitValue returns the current value of literal l: True if the literal
// holds under the current assignment, False if its opposite does, and
// Unknown if its variable is unassigned.
func (s *Solver) LitValue(l Literal) LBool {
	if l < 0 {
		return s.vars[-l].value.Opposite()
	}
	return s.vars[l].value
}

// AddVariable declares a new variable and returns its ID. IDs are assigned
// contiguously starting at 1.
func (s *Solver) AddVariable() int {
	s.vars = append(s.vars, variable{})
	v := len(s.vars) - 1
	s.order.AddVar(v, true)
	return v
}

// AddClause adds a CNF clause to the solver. An empty clause makes the
// problem unsatisfiable; a unit clause is recorded as a unit fact and
// asserted by the next call to Solve. Longer clauses are installed with
// their first two literals watched; when root level assignments already
// exist, normalizeWatches first reorders the clause or absorbs it (see
// there). Duplicate literals and tautologies are tolerated but not
// simplified. Clauses can only be added at the root level.
func (s *Solver) AddClause(clause []Literal) error {
	if s.dlevel != 0 {
		return fmt.Errorf("can only add clauses at the root level")
	}
	switch len(clause) {
	case 0:
		s.unsat = true
	case 1:
		s.recordUnitFact(clause[0])
	default:
		c := newClause(clause, false)
		if len(s.trail) > 0 && !s.normalizeWatches(c) {
			return nil // absorbed against the root assignment
		}
		s.install(c)
	}
	return nil
}

// recordUnitFact records that a unit clause over l's variable was added,
// flagging the problem unsatisfiable if a unit fact of the opposite sign
// was recorded before.
func (s *Solver) recordUnitFact(l Literal) {
	v := &s.vars[l.Var()]
	sign := !l.IsPositive()
	if v.unit && v.unitSign != sign {
		s.unsat = true
		return
	}
	v.unit = true
	v.unitSign = sign
}

// normalizeWatches moves two non-false literals into the watch slots of a
// clause added after root level assignments were made, so that the watched
// literal invariant holds for clauses added between two Solve calls. It
// reports whether the clause should be installed at all: a clause with a
// single non-false literal left is recorded as a unit fact instead, and a
// fully falsified clause flags the problem unsatisfiable.
func (s *Solver) normalizeWatches(c *Clause) bool {
	k := 0
	for j := 0; j < len(c.literals) && k < 2; j++ {
		if s.LitValue(c.literals[j]) != False {
			c.literals[k], c.literals[j] = c.literals[j], c.literals[k]
			k++
		}
	}
	switch k {
	case 0:
		s.unsat = true
		return false
	case 1:
		if s.LitValue(c.literals[0]) == Unknown {
			s.recordUnitFact(c.literals[0])
			return false
		}
		return true // satisfied at the root; keep it installed
	default:
		return true
	}
}

// install registers the clause in the watch lists of its first two slots
// and in the clause database.
func (s *Solver) install(c *Clause) {
	s.watch(c, c.literals[0])
	s.watch(c, c.literals[1])
	if c.learnt {
		s.learnts = append(s.learnts, c)
	} else {
		s.constraints = append(s.constraints, c)
	}
}

// watch appends c to the watch list of literal l.
func (s *Solver) watch(c *Clause, l Literal) {
	v := &s.vars[l.Var()]
	i := l.watchIndex()
	v.watches[i] = append(v.watches[i], c)
}

// assign makes l true at the current decision level and appends it to the
// trail. The caller must ensure l's variable is unassigned.
func (s *Solver) assign(l Literal, reason *Clause) {
	v := &s.vars[l.Var()]
	v.value = Lift(l.IsPositive())
	v.level = s.dlevel
	v.reason = reason
	s.trail = append(s.trail, l)
}

// unassignLast pops the trail's last literal and clears its assignment.
// The reason and level fields are left as is: they are meaningless while
// the variable is unassigned.
func (s *Solver) unassignLast() {
	l := s.trail[len(s.trail)-1]
	s.trail = s.trail[:len(s.trail)-1]
	v := &s.vars[l.Var()]
	val := v.value
	v.value = Unknown
	s.order.Reinsert(l.Var(), val)
}

// propagate assigns seed with the given reason at the current decision
// level and propagates all implied assignments via watched literals until
// quiescence. Conflicts below the top level are resolved in place: a
// clause is learnt, the trail backjumps, and propagation resumes with the
// learnt implication. propagate returns false only on an unrecoverable
// top level conflict, in which case the unsat flag is set.
func (s *Solver) propagate(seed Literal, reason *Clause) bool {
	curr := len(s.trail)
	s.assign(seed, reason)

trail:
	for curr < len(s.trail) {
		l := s.trail[curr]
		curr++
		s.TotalPropagations++

		// fl just became false; examine the clauses watching it.
		fl := l.Opposite()
		w := &s.vars[fl.Var()].watches[fl.watchIndex()]

		for i := 0; i < len(*w); i++ {
			c := (*w)[i]

			// Slot k holds fl; other is the second watched literal.
			k := 0
			if c.literals[1] == fl {
				k = 1
			}
			other := c.literals[1-k]

			if s.LitValue(other) == True {
				continue // clause already satisfied
			}

			// Look for a non-false replacement watch.
			if j := s.findWatch(c); j >= 0 {
				m := c.literals[j]
				c.literals[k], c.literals[j] = m, fl
				// Remove c from this watch list in place and re-examine
				// the slot the last clause was swapped into.
				(*w)[i] = (*w)[len(*w)-1]
				*w = (*w)[:len(*w)-1]
				i--
				s.watch(c, m)
				continue
			}

			// Every literal but other is false.
			if s.LitValue(other) == Unknown {
				// Unit implication. The implied literal must end up in
				// slot 0 so the clause can serve as its reason.
				if k == 0 {
					c.literals[0], c.literals[1] = c.literals[1], c.literals[0]
				}
				s.assign(other, c)
				continue
			}

			// Conflict: both watched literals are false.
			s.TotalConflicts++
			asserting, learnt, ok := s.analyze(c)
			if !ok {
				s.unsat = true
				return false
			}

			// analyze unwound the trail to the backjump level and lowered
			// dlevel; resume from the new trail tail with the asserting
			// literal, abandoning the rest of this watch list.
			s.assign(asserting, learnt)
			curr = len(s.trail) - 1
			continue trail
		}
	}
	return true
}

// findWatch returns the index of a literal in c's non-watched slots that is
// not false, or -1 if every candidate replacement watch is false.
func (s *Solver) findWatch(c *Clause) int {
	for j := 2; j < len(c.literals); j++ {
		if s.LitValue(c.literals[j]) != False {
			return j
		}
	}
	return -1
}

// analyze derives a first-UIP learnt clause from the conflicting clause,
// installs it, and unwinds the trail to the backjump level. It returns the
// asserting literal and its reason clause (nil when the learnt clause is
// unit) for the caller to re-assign. ok is false when the conflict is at
// the top level, which makes the problem unsatisfiable.
func (s *Solver) analyze(confl *Clause) (asserting Literal, learnt *Clause, ok bool) {
	if s.dlevel == 0 {
		return NoLiteral, nil, false
	}

	// Number of marked literals at the conflict level that have not been
	// resolved against their reason yet. The backward walk is done when a
	// single one remains: the first unique implication point.
	count := 0
	s.tmpPending = s.tmpPending[:0]

	mark := func(l Literal) {
		v := &s.vars[l.Var()]
		if v.mark || v.level == 0 {
			return
		}
		v.mark = true
		s.order.Bump(l.Var())
		if v.level == s.dlevel {
			count++
		} else {
			s.tmpPending = append(s.tmpPending, l)
		}
	}

	for _, l := range confl.literals {
		mark(l)
	}

	// Walk the trail backward, unassigning as we go, and resolve each
	// marked literal of the conflict level against its reason.
	var uip Literal
	for {
		l := s.trail[len(s.trail)-1]
		v := &s.vars[l.Var()]
		reason := v.reason
		s.unassignLast()
		if !v.mark {
			continue
		}
		v.mark = false
		count--
		if count == 0 {
			uip = l
			break
		}
		for _, m := range reason.literals[1:] {
			mark(m)
		}
	}

	// Build the learnt clause: the negated UIP plus the pending literals
	// that survive minimization. The single literal at the highest level is
	// kept in slot 1 so that it is watched once the clause is installed.
	s.tmpLearnt = s.tmpLearnt[:0]
	s.tmpLearnt = append(s.tmpLearnt, uip.Opposite())
	blevel := 0
	for _, l := range s.tmpPending {
		if s.redundant(l) {
			continue
		}
		s.tmpLearnt = append(s.tmpLearnt, l)
		if level := s.vars[l.Var()].level; level > blevel {
			blevel = level
			last := len(s.tmpLearnt) - 1
			s.tmpLearnt[1], s.tmpLearnt[last] = s.tmpLearnt[last], s.tmpLearnt[1]
		}
	}

	// Unwind the rest of the conflicting levels.
	for len(s.trail) > 0 {
		l := s.trail[len(s.trail)-1]
		if s.vars[l.Var()].level <= blevel {
			break
		}
		s.unassignLast()
	}

	// Release the scratch marks.
	for _, l := range s.tmpPending {
		s.vars[l.Var()].mark = false
	}

	s.dlevel = blevel
	s.order.Decay()

	if len(s.tmpLearnt) == 1 {
		// Unit no-good: record it as a unit fact so that a later Solve
		// re-asserts it. The caller assigns it at the root with no reason.
		s.recordUnitFact(s.tmpLearnt[0])
		return s.tmpLearnt[0], nil, true
	}

	c := newClause(s.tmpLearnt, true)
	s.install(c)
	return c.literals[0], c, true
}

// redundant reports whether a pending literal can be dropped from the
// learnt clause: it is implied by the rest of the clause when every
// non-asserting literal of its reason is itself marked.
func (s *Solver) redundant(l Literal) bool {
	reason := s.vars[l.Var()].reason
	if reason == nil {
		return false
	}
	for _, m := range reason.literals[1:] {
		if !s.vars[m.Var()].mark {
			return false
		}
	}
	return true
}

// Solve runs the CDCL search. It returns True if a model was found and
// False if the problem is unsatisfiable. The model is appended to Models
// and the trail is unwound to the root level so that more clauses can be
// added and Solve called again.
func (s *Solver) Solve() LBool {
	if s.unsat {
		return False
	}

	s.startTime = time.Now()
	if s.verbose {
		s.printSeparator()
		s.printSearchHeader()
		s.printSeparator()
	}

	s.dlevel = 0
	if !s.assertUnitFacts() {
		s.unsat = true
		return False
	}

	for {
		s.dlevel++

		l := s.order.NextDecision(s)
		if l == NoLiteral {
			// Every variable is assigned and no conflict occurred.
			s.saveModel()
			s.cancelUntil(0)
			if s.verbose {
				s.printSearchStats()
				s.printSeparator()
			}
			return True
		}

		s.TotalDecisions++
		if !s.propagate(l, nil) {
			return False
		}

		if s.verbose && s.TotalDecisions%10000 == 0 {
			s.printSearchStats()
		}
	}
}

// assertUnitFacts propagates the unit facts recorded by AddClause at the
// root level. Facts already satisfied at the root are skipped; a
// contradicted fact makes the problem unsatisfiable.
func (s *Solver) assertUnitFacts() bool {
	for v := 1; v < len(s.vars); v++ {
		if !s.vars[v].unit {
			continue
		}
		l := Literal(v)
		if s.vars[v].unitSign {
			l = -l
		}
		switch s.LitValue(l) {
		case True:
			continue
		case False:
			return false
		}
		if !s.propagate(l, nil) {
			return false
		}
	}
	return true
}

// cancelUntil unwinds the trail down to the given decision level.
func (s *Solver) cancelUntil(level int) {
	for len(s.trail) > 0 {
		l := s.trail[len(s.trail)-1]
		if s.vars[l.Var()].level <= level {
			break
		}
		s.unassignLast()
	}
	s.dlevel = level
}

func (s *Solver) saveModel() {
	model := make([]bool, s.NumVariables())
	for v := 1; v < len(s.vars); v++ {
		val := s.vars[v].value
		if val == Unknown {
			panic("not a model")
		}
		model[v-1] = val == True
	}
	s.Models = append(s.Models, model)
}

// Solve decides the satisfiability of the CNF formula made of the given
// clauses over variables 1..nVars. Each clause is a list of nonzero
// literals in [-nVars, nVars]; an empty clause denotes the immediately
// unsatisfiable clause. On success, Solve returns a model indexed by
// variable ID minus one. Literal validation is the caller's
// responsibility.
func Solve(nVars int, clauses [][]int) ([]bool, bool) {
	s := NewDefaultSolver()
	for i := 0; i < nVars; i++ {
		s.AddVariable()
	}
	buf := make([]Literal, 0, 16)
	for _, clause := range clauses {
		buf = buf[:0]
		for _, l := range clause {
			buf = append(buf, Literal(l))
		}
		s.AddClause(buf)
	}
	if s.Solve() != True {
		return nil, false
	}
	return s.Models[len(s.Models)-1], true
}

func (s *Solver) printSeparator() {
	fmt.Println("c ---------------------------------------------------------------------------")
}

func (s *Solver) printSearchHeader() {
	fmt.Println("c            time      decisions   propagations      conflicts        learnts")
}

func (s *Solver) printSearchStats() {
	fmt.Printf(
		"c %14.3fs %14d %14d %14d %14d\n",
		time.Since(s.startTime).Seconds(),
		s.TotalDecisions,
		s.TotalPropagations,
		s.TotalConflicts,
		len(s.learnts))
}
