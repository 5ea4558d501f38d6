package lifecycle

import (
	"fmt"
)

// DerivedField names one of the boolean fields an Evaluation derives.
// The set is closed: predicates over any other field fail loudly.
type DerivedField int

const (
	// FieldIsAvailable selects on Evaluation.IsAvailable.
	FieldIsAvailable DerivedField = iota + 1

	// FieldIsInQuarantine selects on Evaluation.IsInQuarantine.
	FieldIsInQuarantine

	// FieldIsPastQuarantine selects on Evaluation.IsPastQuarantine.
	FieldIsPastQuarantine

	// FieldIsInReserve selects on Evaluation.IsInReserve.
	FieldIsInReserve
)

// String provides a string representation of DerivedField for error messages
// and query building.
func (f DerivedField) String() string {
	switch f {
	case FieldIsAvailable:
		return "is_available"
	case FieldIsInQuarantine:
		return "is_in_quarantine"
	case FieldIsPastQuarantine:
		return "is_past_quarantine"
	case FieldIsInReserve:
		return "is_in_reserve"
	default:
		return fmt.Sprintf("derived_field(%d)", int(f))
	}
}

// Operator is the comparison a Predicate applies to a derived field.
type Operator int

const (
	// OpEquals passes the boolean operand through.
	OpEquals Operator = iota + 1

	// OpNotEquals inverts the boolean operand cleanly (three-valued logic is
	// collapsed to boolean before comparison, so != b is exactly == !b).
	OpNotEquals
)

// derivedFieldGetters is the closed dispatch table from field to evaluator.
var derivedFieldGetters = map[DerivedField]func(Evaluation) bool{
	FieldIsAvailable:      func(e Evaluation) bool { return e.IsAvailable },
	FieldIsInQuarantine:   func(e Evaluation) bool { return e.IsInQuarantine },
	FieldIsPastQuarantine: func(e Evaluation) bool { return e.IsPastQuarantine },
	FieldIsInReserve:      func(e Evaluation) bool { return e.IsInReserve },
}

// Predicate is a composable filter over one derived boolean field.
//
// It should only be constructed with the supplied factory methods Eq and Neq;
// the zero Predicate fails loudly when used.
type Predicate struct {
	field    DerivedField
	operator Operator
	operand  bool
}

// Eq builds a predicate matching evaluations whose field equals operand.
func Eq(field DerivedField, operand bool) Predicate {
	return Predicate{field: field, operator: OpEquals, operand: operand}
}

// Neq builds a predicate matching evaluations whose field does not equal operand.
func Neq(field DerivedField, operand bool) Predicate {
	return Predicate{field: field, operator: OpNotEquals, operand: operand}
}

// Field returns the derived field the predicate selects on.
func (p Predicate) Field() DerivedField {
	return p.field
}

// Operator returns the predicate's comparison operator.
func (p Predicate) Operator() Operator {
	return p.operator
}

// Operand returns the boolean the field is compared against.
func (p Predicate) Operand() bool {
	return p.operand
}

// Wanted collapses the operator and operand into the boolean value the field
// must hold for the predicate to match.
func (p Predicate) Wanted() (bool, error) {
	switch p.operator {
	case OpEquals:
		return p.operand, nil
	case OpNotEquals:
		return !p.operand, nil
	default:
		return false, fmt.Errorf("%w: %d", ErrUnknownOperator, int(p.operator))
	}
}

// Matches reports whether the evaluation satisfies the predicate.
// A predicate over an unknown field or operator is a programming-contract
// violation and returns an error rather than silently not matching.
func (p Predicate) Matches(evaluation Evaluation) (bool, error) {
	getter, found := derivedFieldGetters[p.field]
	if !found {
		return false, fmt.Errorf("%w: %s", ErrUnknownDerivedField, p.field)
	}

	wanted, err := p.Wanted()
	if err != nil {
		return false, err
	}

	return getter(evaluation) == wanted, nil
}
