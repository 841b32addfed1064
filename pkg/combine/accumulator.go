package combine

import (
	"sort"

	"github.com/combinedb/combine/pkg/model"
)

// entryOverhead is the assumed bookkeeping cost per accumulator entry.
const entryOverhead = 64

// entry is the in-progress reduction for one key.
type entry struct {
	key model.Key
	doc interface{}
}

type accumulator struct {
	entries map[string]*entry
	size    int64
}

func newAccumulator() *accumulator {
	return &accumulator{
		entries: make(map[string]*entry),
	}
}

// sortedDocs snapshots all entries in ascending key order.
func (a *accumulator) sortedDocs() []*model.Document {
	docs := make([]*model.Document, 0, len(a.entries))
	for _, e := range a.entries {
		docs = append(docs, &model.Document{Key: e.key, Value: e.doc})
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].Key.Compare(docs[j].Key) < 0
	})
	return docs
}

func (a *accumulator) reset() {
	a.entries = make(map[string]*entry)
	a.size = 0
}

// estimateSize is a heuristic byte count of a JSON value, used only to
// decide when to spill. It is deliberately cheap, not exact.
func estimateSize(v interface{}) int64 {
	switch t := v.(type) {
	case nil, bool:
		return 8
	case int64, float64:
		return 16
	case string:
		return int64(len(t)) + 16
	case []interface{}:
		size := int64(24)
		for _, e := range t {
			size += estimateSize(e)
		}
		return size
	case model.Key:
		size := int64(24)
		for _, e := range t {
			size += estimateSize(e)
		}
		return size
	case map[string]interface{}:
		size := int64(48)
		for k, e := range t {
			size += int64(len(k)) + 16 + estimateSize(e)
		}
		return size
	}
	return 16
}
