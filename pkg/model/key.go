package model

import (
	"math"

	"github.com/fxamacker/cbor/v2"
)

// Key is the ordered tuple extracted from a document. It determines
// which documents reduce together and the drain output order.
type Key []interface{}

var keyEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	keyEncMode = em
}

// ExtractKey resolves each key pointer against doc. A missing location
// yields JSON null so that documents with absent fields still group
// deterministically.
func ExtractKey(doc interface{}, ptrs []Pointer) Key {
	key := make(Key, len(ptrs))
	for i, p := range ptrs {
		key[i] = p.Query(doc)
	}
	return key
}

// Compare orders two keys element-wise under the engine's total order.
func (k Key) Compare(other Key) int {
	for i := 0; i < len(k) && i < len(other); i++ {
		if c := CompareValues(k[i], other[i]); c != 0 {
			return c
		}
	}
	return len(k) - len(other)
}

// Encode returns canonical key bytes: equal keys (under Compare) always
// encode to equal bytes, so the encoding can index the accumulator.
func (k Key) Encode() ([]byte, error) {
	return keyEncMode.Marshal(keyCanon(k))
}

// keyCanon unifies numeric identity before encoding: a float with no
// fractional part must encode like the equal integer.
func keyCanon(v interface{}) interface{} {
	switch t := v.(type) {
	case Key:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = keyCanon(e)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = keyCanon(e)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, e := range t {
			out[k] = keyCanon(e)
		}
		return out
	case float64:
		if t == math.Trunc(t) && math.Abs(t) <= 1<<53 {
			return int64(t)
		}
		return t
	default:
		return v
	}
}
