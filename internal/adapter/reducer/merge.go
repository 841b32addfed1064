package reducer

import (
	"sort"

	"github.com/combinedb/combine/internal/adapter/schema"
	"github.com/combinedb/combine/pkg/port"
)

// reduceMerge combines two objects field-wise. Each field reduces
// under its own subschema strategy, defaulting to last-write-wins.
func reduceMerge(node *schema.Node, path string, existing, incoming interface{}) (interface{}, error) {
	le, ok := existing.(map[string]interface{})
	if !ok {
		return nil, &port.ReductionError{Path: path, Strategy: "merge", Reason: "existing value is not an object"}
	}
	li, ok := incoming.(map[string]interface{})
	if !ok {
		return nil, &port.ReductionError{Path: path, Strategy: "merge", Reason: "incoming value is not an object"}
	}

	out := make(map[string]interface{}, len(le)+len(li))
	for f, v := range le {
		out[f] = v
	}

	fields := make([]string, 0, len(li))
	for f := range li {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	for _, f := range fields {
		cur, ok := out[f]
		if !ok {
			out[f] = li[f]
			continue
		}
		reduced, err := Apply(node.Property(f), path+"/"+escapeToken(f), cur, li[f])
		if err != nil {
			return nil, err
		}
		out[f] = reduced
	}

	return out, nil
}
