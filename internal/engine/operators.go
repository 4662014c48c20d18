package engine

import (
	"fmt"
	"strconv"

	"hr-approval-service/internal/models"
)

// compareValues applies a rule operator to a condition value and the rule's
// stored comparison value. LT/LTE/GT/GTE compare numerically; EQ is string
// equality. A non-numeric operand for a numeric operator is a rule-evaluation
// error, which callers log and treat as "no match".
func compareValues(operator, conditionValue, ruleValue string) (bool, error) {
	if operator == models.OperatorEQ {
		return conditionValue == ruleValue, nil
	}

	left, err := strconv.ParseFloat(conditionValue, 64)
	if err != nil {
		return false, fmt.Errorf("condition value %q is not numeric: %w", conditionValue, err)
	}
	right, err := strconv.ParseFloat(ruleValue, 64)
	if err != nil {
		return false, fmt.Errorf("rule value %q is not numeric: %w", ruleValue, err)
	}

	switch operator {
	case models.OperatorLT:
		return left < right, nil
	case models.OperatorLTE:
		return left <= right, nil
	case models.OperatorGT:
		return left > right, nil
	case models.OperatorGTE:
		return left >= right, nil
	default:
		return false, fmt.Errorf("unknown operator %q", operator)
	}
}
