package schema

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/combinedb/combine/pkg/model"
	"github.com/combinedb/combine/pkg/port"
)

// Validate checks doc structurally against the schema. It runs before
// every add; a failing document never reaches the accumulator.
func (s *Schema) Validate(doc interface{}) error {
	return validateNode(s.root, "", doc)
}

func validateNode(n *Node, path string, v interface{}) error {
	if n == nil {
		return nil
	}
	if n.deny {
		return &port.ValidationError{Path: path, Reason: "schema permits no value"}
	}

	if len(n.Types) > 0 {
		matched := false
		for _, name := range n.Types {
			if typeMatches(name, v) {
				matched = true
				break
			}
		}
		if !matched {
			return &port.ValidationError{
				Path:   path,
				Reason: fmt.Sprintf("expected %v, got %s", n.Types, jsonTypeName(v)),
			}
		}
	}

	if len(n.Enum) > 0 {
		matched := false
		for _, e := range n.Enum {
			if model.CompareValues(e, v) == 0 {
				matched = true
				break
			}
		}
		if !matched {
			return &port.ValidationError{Path: path, Reason: "value is not one of the enumerated values"}
		}
	}

	switch t := v.(type) {
	case map[string]interface{}:
		for _, req := range n.Required {
			if _, ok := t[req]; !ok {
				return &port.ValidationError{
					Path:   path,
					Reason: fmt.Sprintf("missing required property %q", req),
				}
			}
		}

		fields := make([]string, 0, len(t))
		for f := range t {
			fields = append(fields, f)
		}
		sort.Strings(fields)

		for _, f := range fields {
			fieldPath := path + "/" + escapeToken(f)
			child, declared := n.Properties[f]
			if !declared {
				if n.DenyAdditional {
					return &port.ValidationError{
						Path:   fieldPath,
						Reason: "additional properties are not allowed",
					}
				}
				child = n.AdditionalProperties
			}
			if err := validateNode(child, fieldPath, t[f]); err != nil {
				return err
			}
		}
	case []interface{}:
		if n.Items != nil {
			for i, e := range t {
				if err := validateNode(n.Items, path+"/"+strconv.Itoa(i), e); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

func jsonTypeName(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case int64, float64:
		return "number"
	case string:
		return "string"
	case []interface{}:
		return "array"
	case map[string]interface{}:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}

func typeMatches(name string, v interface{}) bool {
	switch name {
	case "null":
		return v == nil
	case "boolean":
		_, ok := v.(bool)
		return ok
	case "string":
		_, ok := v.(string)
		return ok
	case "array":
		_, ok := v.([]interface{})
		return ok
	case "object":
		_, ok := v.(map[string]interface{})
		return ok
	case "number":
		switch v.(type) {
		case int64, float64:
			return true
		}
		return false
	case "integer":
		switch t := v.(type) {
		case int64:
			return true
		case float64:
			return t == math.Trunc(t)
		}
		return false
	}
	return false
}
