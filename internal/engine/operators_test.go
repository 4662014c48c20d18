package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"hr-approval-service/internal/models"
)

func TestCompareValues_Numeric(t *testing.T) {
	tests := []struct {
		name      string
		operator  string
		condition string
		rule      string
		want      bool
	}{
		{"LT below threshold", models.OperatorLT, "500000", "1000000", true},
		{"LT at threshold", models.OperatorLT, "1000000", "1000000", false},
		{"LTE at threshold", models.OperatorLTE, "1000000", "1000000", true},
		{"GT above threshold", models.OperatorGT, "2000000", "1000000", true},
		{"GT at threshold", models.OperatorGT, "1000000", "1000000", false},
		{"GTE at threshold", models.OperatorGTE, "1000000", "1000000", true},
		{"GTE below threshold", models.OperatorGTE, "999999", "1000000", false},
		{"decimal comparison", models.OperatorLT, "99.5", "100", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := compareValues(tt.operator, tt.condition, tt.rule)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompareValues_EQ(t *testing.T) {
	got, err := compareValues(models.OperatorEQ, "URGENT", "URGENT")
	assert.NoError(t, err)
	assert.True(t, got)

	got, err = compareValues(models.OperatorEQ, "URGENT", "NORMAL")
	assert.NoError(t, err)
	assert.False(t, got)
}

func TestCompareValues_NonNumericOperand(t *testing.T) {
	_, err := compareValues(models.OperatorLT, "not-a-number", "1000000")
	assert.Error(t, err)

	_, err = compareValues(models.OperatorGTE, "500", "also-not-a-number")
	assert.Error(t, err)
}

func TestCompareValues_UnknownOperator(t *testing.T) {
	_, err := compareValues("BETWEEN", "1", "2")
	assert.Error(t, err)
}
