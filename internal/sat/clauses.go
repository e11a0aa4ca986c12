package sat

import "strings"

// Clause is a disjunction of at least two literals. The literals in the
// first two slots are the clause's watched literals; propagation permutes
// slots freely but never changes which literals the clause contains.
//
// For clauses acting as a reason, slot 0 always holds the literal the
// clause assigned. Conflict analysis relies on this when it expands a
// reason and skips the asserting literal.
type Clause struct {
	literals []Literal

	// Whether the clause was learnt by conflict analysis.
	learnt bool
}

func newClause(literals []Literal, learnt bool) *Clause {
	c := &Clause{
		literals: make([]Literal, len(literals)),
		learnt:   learnt,
	}
	copy(c.literals, literals)
	return c
}

// Len returns the number of literals in the clause.
func (c *Clause) Len() int {
	return len(c.literals)
}

// Literals returns a copy of the clause's literals. The first two entries
// are the currently watched literals.
func (c *Clause) Literals() []Literal {
	lits := make([]Literal, len(c.literals))
	copy(lits, c.literals)
	return lits
}

func (c *Clause) String() string {
	if len(c.literals) == 0 {
		return "Clause[]"
	}
	sb := strings.Builder{}
	sb.WriteString("Clause[")
	sb.WriteString(c.literals[0].String())
	for _, l := range c.literals[1:] {
		sb.WriteByte(' ')
		sb.WriteString(l.String())
	}
	sb.WriteByte(']')
	return sb.String()
}
