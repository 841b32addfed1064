package combine_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/combinedb/combine/pkg/combine"
)

// TestDrainGolden pins the exact drained byte stream, spill included,
// against a golden file.
func TestDrainGolden(t *testing.T) {
	withSession(t, combine.Config{Schema: countSchema, Key: []string{"/id"}, MemoryBudget: 1}, func(s *combine.Session) {
		addJSON(t, s,
			`{"id": 1, "count": 2}`,
			`{"id": 1, "count": 3}`,
			`{"id": 2, "count": 5}`,
		)

		iter, err := s.Drain()
		require.NoError(t, err)

		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		for {
			doc, err := iter.Next()
			require.NoError(t, err)
			if doc == nil {
				break
			}
			require.NoError(t, enc.Encode(doc))
		}

		g := goldie.New(t,
			goldie.WithFixtureDir("testdata/golden"),
			goldie.WithNameSuffix(".golden"),
		)
		g.Assert(t, "drain_sum", buf.Bytes())
	})
}
