package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Predicate_Wanted_CollapsesOperatorAndOperand(t *testing.T) {
	tests := []struct {
		name      string
		predicate Predicate
		expected  bool
	}{
		{
			name:      "equals true wants true",
			predicate: Eq(FieldIsAvailable, true),
			expected:  true,
		},
		{
			name:      "equals false wants false",
			predicate: Eq(FieldIsAvailable, false),
			expected:  false,
		},
		{
			name:      "not equals true wants false",
			predicate: Neq(FieldIsAvailable, true),
			expected:  false,
		},
		{
			name:      "not equals false wants true",
			predicate: Neq(FieldIsAvailable, false),
			expected:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wanted, err := tt.predicate.Wanted()

			require.NoError(t, err)
			assert.Equal(t, tt.expected, wanted)
		})
	}
}

func Test_Predicate_Wanted_WithUnknownOperator_Errors(t *testing.T) {
	predicate := Predicate{field: FieldIsAvailable, operator: Operator(99), operand: true}

	_, err := predicate.Wanted()

	assert.ErrorIs(t, err, ErrUnknownOperator)
}

//nolint:funlen // Table-driven test covering all derived fields
func Test_Predicate_Matches_AllDerivedFields(t *testing.T) {
	evaluation := Evaluation{
		Status:           StatusInShelf,
		IsAvailable:      true,
		IsInQuarantine:   false,
		IsPastQuarantine: false,
		IsInReserve:      false,
	}

	tests := []struct {
		name      string
		predicate Predicate
		expected  bool
	}{
		{
			name:      "is_available equals true matches available",
			predicate: Eq(FieldIsAvailable, true),
			expected:  true,
		},
		{
			name:      "is_available equals false does not match available",
			predicate: Eq(FieldIsAvailable, false),
			expected:  false,
		},
		{
			name:      "is_available not equals false matches available",
			predicate: Neq(FieldIsAvailable, false),
			expected:  true,
		},
		{
			name:      "is_in_quarantine equals true does not match",
			predicate: Eq(FieldIsInQuarantine, true),
			expected:  false,
		},
		{
			name:      "is_in_quarantine not equals true matches",
			predicate: Neq(FieldIsInQuarantine, true),
			expected:  true,
		},
		{
			name:      "is_past_quarantine equals false matches",
			predicate: Eq(FieldIsPastQuarantine, false),
			expected:  true,
		},
		{
			name:      "is_in_reserve equals true does not match",
			predicate: Eq(FieldIsInReserve, true),
			expected:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches, err := tt.predicate.Matches(evaluation)

			require.NoError(t, err)
			assert.Equal(t, tt.expected, matches)
		})
	}
}

func Test_Predicate_Matches_ErrorCases(t *testing.T) {
	tests := []struct {
		name        string
		predicate   Predicate
		expectedErr error
	}{
		{
			name:        "zero predicate has no field",
			predicate:   Predicate{},
			expectedErr: ErrUnknownDerivedField,
		},
		{
			name:        "field outside the closed set",
			predicate:   Predicate{field: DerivedField(42), operator: OpEquals},
			expectedErr: ErrUnknownDerivedField,
		},
		{
			name:        "known field with unknown operator",
			predicate:   Predicate{field: FieldIsAvailable, operator: Operator(42)},
			expectedErr: ErrUnknownOperator,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.predicate.Matches(Evaluation{})

			assert.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

func Test_Predicate_Accessors(t *testing.T) {
	predicate := Neq(FieldIsInReserve, true)

	assert.Equal(t, FieldIsInReserve, predicate.Field())
	assert.Equal(t, OpNotEquals, predicate.Operator())
	assert.True(t, predicate.Operand())
}

func Test_DerivedField_String(t *testing.T) {
	assert.Equal(t, "is_available", FieldIsAvailable.String())
	assert.Equal(t, "is_in_quarantine", FieldIsInQuarantine.String())
	assert.Equal(t, "is_past_quarantine", FieldIsPastQuarantine.String())
	assert.Equal(t, "is_in_reserve", FieldIsInReserve.String())
	assert.Equal(t, "derived_field(42)", DerivedField(42).String())
}
