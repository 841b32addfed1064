package bbolt_engine

import (
	"reflect"

	"github.com/fxamacker/cbor/v2"

	"github.com/combinedb/combine/pkg/model"
)

// segmentRecord is one (key, document) pair of a spill segment.
type segmentRecord struct {
	Key model.Key   `cbor:"k"`
	Doc interface{} `cbor:"d"`
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}

	// Decode back into the engine's normalized in-memory form:
	// integers as int64, objects as map[string]interface{}.
	decMode, err = cbor.DecOptions{
		IntDec:         cbor.IntDecConvertSigned,
		DefaultMapType: reflect.TypeOf(map[string]interface{}(nil)),
	}.DecMode()
	if err != nil {
		panic(err)
	}
}
