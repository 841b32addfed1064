package reducer

import (
	"github.com/combinedb/combine/internal/adapter/schema"
	"github.com/combinedb/combine/pkg/model"
)

// reduceFunc combines an existing reduced value with an incoming value
// at one schema location. Implementations are pure: they never mutate
// either operand, so a failed reduction leaves prior state intact.
type reduceFunc func(node *schema.Node, path string, existing, incoming interface{}) (interface{}, error)

// strategies is the closed dispatch table, one entry per annotation
// tag. Unknown tags are rejected at schema parse time. Populated in
// init because reduceMerge recurses through Apply.
var strategies map[schema.Strategy]reduceFunc

func init() {
	strategies = map[schema.Strategy]reduceFunc{
		schema.LastWriteWins:  reduceLastWriteWins,
		schema.FirstWriteWins: reduceFirstWriteWins,
		schema.Sum:            reduceSum,
		schema.Minimize:       reduceMinimize,
		schema.Maximize:       reduceMaximize,
		schema.Merge:          reduceMerge,
		schema.Append:         reduceAppend,
		schema.Prepend:        reducePrepend,
		schema.Set:            reduceSet,
	}
}

// Apply reduces incoming into existing at the given schema node.
// Without a declared strategy two objects merge field-wise, so nested
// annotations still take effect; any other pairing is last-write-wins.
func Apply(node *schema.Node, path string, existing, incoming interface{}) (interface{}, error) {
	if node != nil && node.Reduce != nil {
		return strategies[node.Reduce.Strategy](node, path, existing, incoming)
	}

	if isObject(existing) && isObject(incoming) {
		return reduceMerge(node, path, existing, incoming)
	}
	return incoming, nil
}

func isObject(v interface{}) bool {
	_, ok := v.(map[string]interface{})
	return ok
}

func escapeToken(token string) string {
	return model.Pointer{token}.String()[1:]
}
