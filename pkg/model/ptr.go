package model

import (
	"errors"
	"strconv"
	"strings"
)

var ErrPointerNotRooted = errors.New("non-empty JSON pointer must have a leading '/'")

// Pointer is a parsed JSON pointer (RFC 6901).
type Pointer []string

// ParsePointer parses s into a Pointer. The empty string references
// the document root.
func ParsePointer(s string) (Pointer, error) {
	if s == "" {
		return Pointer{}, nil
	}
	if !strings.HasPrefix(s, "/") {
		return nil, ErrPointerNotRooted
	}

	parts := strings.Split(s, "/")[1:]
	ptr := make(Pointer, len(parts))
	for i, t := range parts {
		t = strings.ReplaceAll(t, "~1", "/")
		t = strings.ReplaceAll(t, "~0", "~")
		ptr[i] = t
	}
	return ptr, nil
}

func (p Pointer) String() string {
	var sb strings.Builder
	for _, t := range p {
		t = strings.ReplaceAll(t, "~", "~0")
		t = strings.ReplaceAll(t, "/", "~1")
		sb.WriteByte('/')
		sb.WriteString(t)
	}
	return sb.String()
}

// Query resolves the pointer against doc. It returns nil if the
// location, or any parent of it, does not exist.
func (p Pointer) Query(doc interface{}) interface{} {
	v := doc
	for _, token := range p {
		switch node := v.(type) {
		case map[string]interface{}:
			child, ok := node[token]
			if !ok {
				return nil
			}
			v = child
		case []interface{}:
			ind, ok := arrayIndex(token)
			if !ok || ind >= len(node) {
				return nil
			}
			v = node[ind]
		default:
			return nil
		}
	}
	return v
}

// arrayIndex interprets a pointer token as an array index. Tokens with
// leading zeros ("01") are property names, never indices.
func arrayIndex(token string) (int, bool) {
	if token == "" || (len(token) > 1 && token[0] == '0') {
		return 0, false
	}
	ind, err := strconv.Atoi(token)
	if err != nil || ind < 0 {
		return 0, false
	}
	return ind, true
}
