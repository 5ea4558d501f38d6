package lifecycle_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mediatheque/exemplary-lifecycle-go/lifecycle"
)

func Test_DefaultPolicy(t *testing.T) {
	policy := lifecycle.DefaultPolicy()

	assert.Equal(t, 20, policy.LoanPeriodDays)
	assert.Equal(t, 7, policy.QuarantineDays)
	assert.NoError(t, policy.Validate())
}

func Test_Policy_Validate_ErrorCases(t *testing.T) {
	tests := []struct {
		name        string
		policy      lifecycle.Policy
		expectedErr error
	}{
		{
			name:        "zero loan period",
			policy:      lifecycle.Policy{LoanPeriodDays: 0, QuarantineDays: 7},
			expectedErr: lifecycle.ErrInvalidLoanPeriod,
		},
		{
			name:        "negative loan period",
			policy:      lifecycle.Policy{LoanPeriodDays: -1, QuarantineDays: 7},
			expectedErr: lifecycle.ErrInvalidLoanPeriod,
		},
		{
			name:        "negative quarantine window",
			policy:      lifecycle.Policy{LoanPeriodDays: 20, QuarantineDays: -1},
			expectedErr: lifecycle.ErrInvalidQuarantineWindow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.policy.Validate(), tt.expectedErr)
		})
	}
}

func Test_Policy_Validate_ZeroQuarantineIsAllowed(t *testing.T) {
	policy := lifecycle.Policy{LoanPeriodDays: 20, QuarantineDays: 0}

	assert.NoError(t, policy.Validate())
}

func Test_Policy_ExpectedReturnDate(t *testing.T) {
	policy := lifecycle.DefaultPolicy()

	assert.Equal(t, day(21), policy.ExpectedReturnDate(day(1)))
}

func Test_Policy_QuarantineEnd(t *testing.T) {
	policy := lifecycle.DefaultPolicy()

	assert.Equal(t, day(17), policy.QuarantineEnd(day(10)))
}
