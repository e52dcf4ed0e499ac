// Package emotion maps classifier output to emotion labels.
//
// A frozen classifier predicts an integer class code per feature vector.
// The [Adapter] feeds it one vector at a time, takes the first prediction
// and translates the code through an explicit [Table]:
//
//	0 → non-negative
//	1 → negative
//
// The table is checked against the classifier's class set when the
// adapter is built, so a code the table cannot map is a startup error and
// never a surprise at classification time.
package emotion

import (
	"fmt"
	"slices"
)

// Label is the coarse emotion assigned to a clip.
type Label int

const (
	NonNegative Label = iota
	Negative
)

func (l Label) String() string {
	switch l {
	case NonNegative:
		return "non-negative"
	case Negative:
		return "negative"
	default:
		return fmt.Sprintf("Label(%d)", int(l))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (l Label) MarshalText() ([]byte, error) {
	switch l {
	case NonNegative, Negative:
		return []byte(l.String()), nil
	}
	return nil, fmt.Errorf("emotion: invalid label %d", int(l))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Label) UnmarshalText(b []byte) error {
	v, err := ParseLabel(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// ParseLabel parses the string form of a label.
func ParseLabel(s string) (Label, error) {
	switch s {
	case "non-negative":
		return NonNegative, nil
	case "negative":
		return Negative, nil
	}
	return 0, fmt.Errorf("emotion: unknown label %q", s)
}

// Table maps classifier class codes to labels.
type Table map[int]Label

// DefaultTable returns the table the bundled classifier was trained with.
func DefaultTable() Table {
	return Table{
		0: NonNegative,
		1: Negative,
	}
}

// Lookup maps a class code.
func (t Table) Lookup(code int) (Label, error) {
	l, ok := t[code]
	if !ok {
		return 0, &UnmappedLabelError{Code: code}
	}
	return l, nil
}

// Check reports the smallest code in codes that the table cannot map.
func (t Table) Check(codes []int) error {
	sorted := slices.Clone(codes)
	slices.Sort(sorted)
	for _, c := range sorted {
		if _, ok := t[c]; !ok {
			return &UnmappedLabelError{Code: c}
		}
	}
	return nil
}

// Codes returns the mapped codes in ascending order.
func (t Table) Codes() []int {
	codes := make([]int, 0, len(t))
	for c := range t {
		codes = append(codes, c)
	}
	slices.Sort(codes)
	return codes
}
