package reducer

import (
	"fmt"

	"github.com/combinedb/combine/internal/adapter/schema"
	"github.com/combinedb/combine/pkg/port"
)

func reduceAppend(_ *schema.Node, path string, existing, incoming interface{}) (interface{}, error) {
	le, err := asArray(existing, path, "append")
	if err != nil {
		return nil, err
	}
	li, err := asArray(incoming, path, "append")
	if err != nil {
		return nil, err
	}
	return concat(le, li), nil
}

func reducePrepend(_ *schema.Node, path string, existing, incoming interface{}) (interface{}, error) {
	le, err := asArray(existing, path, "prepend")
	if err != nil {
		return nil, err
	}
	li, err := asArray(incoming, path, "prepend")
	if err != nil {
		return nil, err
	}
	return concat(li, le), nil
}

func concat(a, b []interface{}) []interface{} {
	out := make([]interface{}, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

// asArray accepts an array operand, treating null as empty.
func asArray(v interface{}, path, strategy string) ([]interface{}, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case []interface{}:
		return t, nil
	}
	return nil, &port.ReductionError{
		Path:     path,
		Strategy: strategy,
		Reason:   fmt.Sprintf("operand %v is not an array", v),
	}
}
