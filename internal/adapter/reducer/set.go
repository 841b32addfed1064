package reducer

import (
	"fmt"
	"sort"

	"github.com/combinedb/combine/internal/adapter/schema"
	"github.com/combinedb/combine/pkg/model"
	"github.com/combinedb/combine/pkg/port"
)

// reduceSet treats the array as a set kept sorted ascending by element
// identity. The incoming value is either a plain array (union) or an
// object with "add", "remove" and "union" member arrays; removals
// apply before additions. Identity is full structural equality unless
// the annotation declares a "key" of identity pointers.
func reduceSet(node *schema.Node, path string, existing, incoming interface{}) (interface{}, error) {
	identity := identityFunc(node)

	base, err := asArray(existing, path, "set")
	if err != nil {
		return nil, err
	}
	out := make([]interface{}, len(base))
	copy(out, base)
	sort.SliceStable(out, func(i, j int) bool {
		return model.CompareValues(identity(out[i]), identity(out[j])) < 0
	})

	var add, remove []interface{}
	switch t := incoming.(type) {
	case nil:
	case []interface{}:
		add = t
	case map[string]interface{}:
		for marker := range t {
			switch marker {
			case "add", "remove", "union":
			default:
				return nil, &port.ReductionError{
					Path:     path,
					Strategy: "set",
					Reason:   fmt.Sprintf("unknown set marker %q", marker),
				}
			}
		}
		// markers apply in a fixed order so colliding identities
		// resolve deterministically
		for _, marker := range []string{"remove", "add", "union"} {
			members, err := asArray(t[marker], path+"/"+marker, "set")
			if err != nil {
				return nil, err
			}
			if marker == "remove" {
				remove = append(remove, members...)
			} else {
				add = append(add, members...)
			}
		}
	default:
		return nil, &port.ReductionError{
			Path:     path,
			Strategy: "set",
			Reason:   "operand is not an array or set-marker object",
		}
	}

	for _, e := range remove {
		if pos, found := search(out, identity, identity(e)); found {
			out = append(out[:pos], out[pos+1:]...)
		}
	}
	for _, e := range add {
		pos, found := search(out, identity, identity(e))
		if found {
			out[pos] = e
		} else {
			out = append(out, nil)
			copy(out[pos+1:], out[pos:])
			out[pos] = e
		}
	}

	return out, nil
}

func identityFunc(node *schema.Node) func(interface{}) interface{} {
	if node == nil || node.Reduce == nil || len(node.Reduce.Key) == 0 {
		return func(v interface{}) interface{} { return v }
	}
	ptrs := node.Reduce.Key
	return func(v interface{}) interface{} {
		return []interface{}(model.ExtractKey(v, ptrs))
	}
}

func search(set []interface{}, identity func(interface{}) interface{}, id interface{}) (int, bool) {
	pos := sort.Search(len(set), func(i int) bool {
		return model.CompareValues(identity(set[i]), id) >= 0
	})
	found := pos < len(set) && model.CompareValues(identity(set[pos]), id) == 0
	return pos, found
}
