package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/combinedb/combine/pkg/model"
	"github.com/combinedb/combine/pkg/port"
)

// Strategy is the closed set of reduction rules a schema node may
// declare via its "reduce" annotation.
type Strategy uint8

const (
	LastWriteWins Strategy = iota
	FirstWriteWins
	Sum
	Minimize
	Maximize
	Merge
	Append
	Prepend
	Set
)

var strategyByName = map[string]Strategy{
	"lastWriteWins":  LastWriteWins,
	"firstWriteWins": FirstWriteWins,
	"sum":            Sum,
	"minimize":       Minimize,
	"maximize":       Maximize,
	"merge":          Merge,
	"append":         Append,
	"prepend":        Prepend,
	"set":            Set,
}

func (s Strategy) String() string {
	for name, strat := range strategyByName {
		if strat == s {
			return name
		}
	}
	return fmt.Sprintf("strategy(%d)", s)
}

// Annotation is a parsed "reduce" annotation.
type Annotation struct {
	Strategy Strategy
	// Key holds the identity pointers of a set strategy. Empty means
	// full structural equality.
	Key []model.Pointer
}

// Node is one location of an annotated schema.
type Node struct {
	Reduce               *Annotation
	Types                []string
	Properties           map[string]*Node
	Required             []string
	Items                *Node
	AdditionalProperties *Node
	DenyAdditional       bool
	Enum                 []interface{}

	deny bool // the "false" schema
}

// Property resolves the subschema validating the named object field.
func (n *Node) Property(name string) *Node {
	if n == nil {
		return nil
	}
	if child, ok := n.Properties[name]; ok {
		return child
	}
	return n.AdditionalProperties
}

// Item resolves the subschema validating array elements.
func (n *Node) Item() *Node {
	if n == nil {
		return nil
	}
	return n.Items
}

// Schema is a parsed, annotated JSON Schema. It is owned by exactly
// one session and never mutated after Parse.
type Schema struct {
	root *Node
}

func (s *Schema) Root() *Node {
	return s.root
}

// Parse builds an annotated schema from raw, fully-resolved JSON
// Schema bytes. Structural problems and invalid or conflicting reduce
// annotations are rejected here, never at merge time.
func Parse(raw []byte) (*Schema, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, &port.SchemaError{Reason: err.Error()}
	}

	root, err := parseNode(model.Normalize(v), "")
	if err != nil {
		return nil, err
	}
	return &Schema{root: root}, nil
}

// StrategyAt reports the strategy declared at the given document
// location, defaulting to lastWriteWins where none is annotated.
func (s *Schema) StrategyAt(ptr model.Pointer) Strategy {
	n := s.root
	for _, token := range ptr {
		if n == nil {
			return LastWriteWins
		}
		if child, ok := n.Properties[token]; ok {
			n = child
			continue
		}
		if _, isIndex := arrayIndex(token); isIndex && n.Items != nil {
			n = n.Items
			continue
		}
		n = n.AdditionalProperties
	}
	if n == nil || n.Reduce == nil {
		return LastWriteWins
	}
	return n.Reduce.Strategy
}

var jsonTypeNames = map[string]bool{
	"null":    true,
	"boolean": true,
	"number":  true,
	"integer": true,
	"string":  true,
	"array":   true,
	"object":  true,
}

func parseNode(v interface{}, ptr string) (*Node, error) {
	switch t := v.(type) {
	case bool:
		return &Node{deny: !t}, nil
	case map[string]interface{}:
		return parseObjectNode(t, ptr)
	default:
		return nil, &port.SchemaError{Ptr: ptr, Reason: "schema must be an object or boolean"}
	}
}

func parseObjectNode(obj map[string]interface{}, ptr string) (*Node, error) {
	if _, ok := obj["$ref"]; ok {
		return nil, &port.SchemaError{Ptr: ptr, Reason: "schema must be fully resolved ($ref is not supported)"}
	}

	n := &Node{}

	switch ty := obj["type"].(type) {
	case nil:
	case string:
		n.Types = []string{ty}
	case []interface{}:
		for _, e := range ty {
			name, ok := e.(string)
			if !ok {
				return nil, &port.SchemaError{Ptr: ptr + "/type", Reason: "type must name JSON types"}
			}
			n.Types = append(n.Types, name)
		}
	default:
		return nil, &port.SchemaError{Ptr: ptr + "/type", Reason: "type must be a string or array of strings"}
	}
	for _, name := range n.Types {
		if !jsonTypeNames[name] {
			return nil, &port.SchemaError{Ptr: ptr + "/type", Reason: fmt.Sprintf("unknown type %q", name)}
		}
	}

	if props, ok := obj["properties"]; ok {
		m, ok := props.(map[string]interface{})
		if !ok {
			return nil, &port.SchemaError{Ptr: ptr + "/properties", Reason: "properties must be an object"}
		}
		n.Properties = make(map[string]*Node, len(m))
		for name, sub := range m {
			child, err := parseNode(sub, ptr+"/properties/"+escapeToken(name))
			if err != nil {
				return nil, err
			}
			n.Properties[name] = child
		}
	}

	if req, ok := obj["required"]; ok {
		list, ok := req.([]interface{})
		if !ok {
			return nil, &port.SchemaError{Ptr: ptr + "/required", Reason: "required must be an array of property names"}
		}
		for _, e := range list {
			name, ok := e.(string)
			if !ok {
				return nil, &port.SchemaError{Ptr: ptr + "/required", Reason: "required must be an array of property names"}
			}
			n.Required = append(n.Required, name)
		}
	}

	if items, ok := obj["items"]; ok {
		if _, isTuple := items.([]interface{}); isTuple {
			return nil, &port.SchemaError{Ptr: ptr + "/items", Reason: "tuple form of items is not supported"}
		}
		child, err := parseNode(items, ptr+"/items")
		if err != nil {
			return nil, err
		}
		n.Items = child
	}

	if ap, ok := obj["additionalProperties"]; ok {
		switch t := ap.(type) {
		case bool:
			n.DenyAdditional = !t
		case map[string]interface{}:
			child, err := parseNode(t, ptr+"/additionalProperties")
			if err != nil {
				return nil, err
			}
			n.AdditionalProperties = child
		default:
			return nil, &port.SchemaError{Ptr: ptr + "/additionalProperties", Reason: "additionalProperties must be a boolean or schema"}
		}
	}

	if enum, ok := obj["enum"]; ok {
		list, ok := enum.([]interface{})
		if !ok {
			return nil, &port.SchemaError{Ptr: ptr + "/enum", Reason: "enum must be an array"}
		}
		n.Enum = list
	}

	if reduce, ok := obj["reduce"]; ok {
		ann, err := parseAnnotation(reduce, ptr+"/reduce")
		if err != nil {
			return nil, err
		}
		if err := checkStrategyType(ann.Strategy, n.Types, ptr+"/reduce"); err != nil {
			return nil, err
		}
		n.Reduce = ann
	}

	return n, nil
}

// annotationSpec is the object form of a reduce annotation.
type annotationSpec struct {
	Strategy string   `mapstructure:"strategy"`
	Key      []string `mapstructure:"key"`
}

func parseAnnotation(v interface{}, ptr string) (*Annotation, error) {
	var spec annotationSpec

	switch t := v.(type) {
	case string:
		spec.Strategy = t
	case map[string]interface{}:
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:      &spec,
			ErrorUnused: true,
		})
		if err != nil {
			return nil, err
		}
		if err := dec.Decode(t); err != nil {
			return nil, &port.SchemaError{Ptr: ptr, Reason: fmt.Sprintf("invalid reduce annotation: %v", err)}
		}
	default:
		return nil, &port.SchemaError{Ptr: ptr, Reason: "reduce must be a strategy name or annotation object"}
	}

	strat, ok := strategyByName[spec.Strategy]
	if !ok {
		return nil, &port.SchemaError{Ptr: ptr, Reason: fmt.Sprintf("unknown reduction strategy %q", spec.Strategy)}
	}
	if len(spec.Key) > 0 && strat != Set {
		return nil, &port.SchemaError{Ptr: ptr, Reason: `"key" is only valid with the set strategy`}
	}

	ann := &Annotation{Strategy: strat}
	for _, s := range spec.Key {
		p, err := model.ParsePointer(s)
		if err != nil {
			return nil, &port.SchemaError{Ptr: ptr, Reason: fmt.Sprintf("invalid key pointer %q: %v", s, err)}
		}
		ann.Key = append(ann.Key, p)
	}
	return ann, nil
}

// checkStrategyType rejects a strategy that can never apply to the
// node's declared type.
func checkStrategyType(strat Strategy, types []string, ptr string) error {
	if len(types) == 0 {
		return nil
	}

	var want []string
	switch strat {
	case Sum:
		want = []string{"number", "integer"}
	case Merge:
		want = []string{"object"}
	case Append, Prepend, Set:
		want = []string{"array"}
	default:
		return nil
	}

	for _, have := range types {
		for _, w := range want {
			if have == w {
				return nil
			}
		}
	}
	return &port.SchemaError{
		Ptr:    ptr,
		Reason: fmt.Sprintf("strategy %s cannot apply to type %v", strat, types),
	}
}

func escapeToken(token string) string {
	return model.Pointer{token}.String()[1:]
}

// arrayIndex mirrors pointer token semantics: tokens with leading
// zeros are property names, never indices.
func arrayIndex(token string) (int, bool) {
	if token == "" || (len(token) > 1 && token[0] == '0') {
		return 0, false
	}
	ind := 0
	for _, c := range token {
		if c < '0' || c > '9' {
			return 0, false
		}
		ind = ind*10 + int(c-'0')
	}
	return ind, true
}
