package sat

import "strconv"

// Literal represents a boolean variable or its negation, encoded as a
// nonzero signed integer: +v stands for variable v, -v for its negation.
// The encoding matches the one used by the DIMACS CNF format, so literals
// read from an instance convert by plain conversion. The zero value is
// reserved to mean "no literal".
type Literal int

// NoLiteral is the reserved zero value of Literal.
const NoLiteral Literal = 0

// Var returns the ID of the literal's variable.
func (l Literal) Var() int {
	if l < 0 {
		return int(-l)
	}
	return int(l)
}

// IsPositive returns true if and only if the literal represents the value
// of its variable (i.e. not its negation).
func (l Literal) IsPositive() bool {
	return l > 0
}

// Opposite returns the opposite literal.
func (l Literal) Opposite() Literal {
	return -l
}

// watchIndex returns the index of the polarity watch list holding the
// clauses that watch this literal: 0 for positive literals, 1 for negative
// ones.
func (l Literal) watchIndex() int {
	if l < 0 {
		return 1
	}
	return 0
}

func (l Literal) String() string {
	return strconv.Itoa(int(l))
}
