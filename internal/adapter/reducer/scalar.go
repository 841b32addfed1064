package reducer

import (
	"fmt"

	"github.com/combinedb/combine/internal/adapter/schema"
	"github.com/combinedb/combine/pkg/model"
	"github.com/combinedb/combine/pkg/port"
)

func reduceLastWriteWins(_ *schema.Node, _ string, _, incoming interface{}) (interface{}, error) {
	return incoming, nil
}

func reduceFirstWriteWins(_ *schema.Node, _ string, existing, _ interface{}) (interface{}, error) {
	return existing, nil
}

func reduceSum(_ *schema.Node, path string, existing, incoming interface{}) (interface{}, error) {
	ei, ef, eInt, ok := asNumber(existing)
	if !ok {
		return nil, sumError(path, existing)
	}
	ii, fi, iInt, ok := asNumber(incoming)
	if !ok {
		return nil, sumError(path, incoming)
	}

	if eInt && iInt {
		sum := ei + ii
		// two's-complement overflow flips the sign away from both operands
		if (ei > 0 && ii > 0 && sum < 0) || (ei < 0 && ii < 0 && sum >= 0) {
			return nil, &port.ReductionError{Path: path, Strategy: "sum", Reason: "integer overflow"}
		}
		return sum, nil
	}
	return ef + fi, nil
}

func sumError(path string, v interface{}) error {
	return &port.ReductionError{
		Path:     path,
		Strategy: "sum",
		Reason:   fmt.Sprintf("operand %v is not a number", v),
	}
}

// asNumber splits a numeric operand into its integer and float forms.
func asNumber(v interface{}) (i int64, f float64, isInt bool, ok bool) {
	switch t := v.(type) {
	case int64:
		return t, float64(t), true, true
	case float64:
		return 0, t, false, true
	}
	return 0, 0, false, false
}

func reduceMinimize(_ *schema.Node, _ string, existing, incoming interface{}) (interface{}, error) {
	if model.CompareValues(incoming, existing) < 0 {
		return incoming, nil
	}
	return existing, nil
}

func reduceMaximize(_ *schema.Node, _ string, existing, incoming interface{}) (interface{}, error) {
	if model.CompareValues(incoming, existing) > 0 {
		return incoming, nil
	}
	return existing, nil
}
