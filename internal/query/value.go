package query

import (
	"cmp"
	"errors"
	"fmt"
	"strings"
)

// Value is a comparison operand. Its concrete type selects which record
// accessor a predicate reads: Int uses IntField, Uint uses UintField and
// Text uses StrField.
type Value interface {
	isValue()
	fmt.Stringer
}

type (
	Int  int
	Uint uint32
	Text string
)

func (Int) isValue()  {}
func (Uint) isValue() {}
func (Text) isValue() {}

func (v Int) String() string  { return fmt.Sprintf("%d", int(v)) }
func (v Uint) String() string { return fmt.Sprintf("%d", uint32(v)) }
func (v Text) String() string { return string(v) }

// Compare is a predicate operator.
type Compare int

const (
	EQ Compare = iota
	LT
	GT
	LE
	GE
	NE
	BTWAND
	BTWOR
	REGEX
)

// ErrUnknownCompare is returned by ParseCompare for unsupported names.
var ErrUnknownCompare = errors.New("unknown comparator")

var compareNames = [...]string{"eq", "lt", "gt", "le", "ge", "ne", "btwand", "btwor", "regex"}

func (c Compare) String() string {
	if c < 0 || int(c) >= len(compareNames) {
		return "unknown"
	}
	return compareNames[c]
}

// ParseCompare maps a case-insensitive operator name to a Compare.
func ParseCompare(name string) (Compare, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, s := range compareNames {
		if s == n {
			return Compare(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCompare, name)
}

// IsRange reports whether c takes a second bound.
func (c Compare) IsRange() bool {
	return c == BTWAND || c == BTWOR
}

// decide evaluates got <c> want. For range operators want is the lower and
// hi the upper bound, both inclusive. BTWOR is true when either bound test
// holds.
func decide[T cmp.Ordered](got, want, hi T, c Compare) bool {
	switch c {
	case EQ:
		return got == want
	case LT:
		return got < want
	case GT:
		return got > want
	case LE:
		return got <= want
	case GE:
		return got >= want
	case NE:
		return got != want
	case BTWAND:
		return got >= want && got <= hi
	case BTWOR:
		return got >= want || got <= hi
	}
	return false
}
