package bbolt_engine_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/combinedb/combine/internal/adapter/bbolt_engine"
	"github.com/combinedb/combine/pkg/model"
	"github.com/combinedb/combine/pkg/port"
)

func WithTestSpill(t *testing.T, fn func(s *bbolt_engine.Spill)) {
	dir, err := os.MkdirTemp(os.TempDir(), "combine-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	s, err := bbolt_engine.Open(dir)
	require.NoError(t, err)
	defer s.Close()

	fn(s)
}

func TestSpillRoundTrip(t *testing.T) {
	WithTestSpill(t, func(s *bbolt_engine.Spill) {
		docs := []*model.Document{
			{Key: model.Key{int64(1)}, Value: map[string]interface{}{"id": int64(1), "count": int64(2)}},
			{Key: model.Key{int64(2)}, Value: map[string]interface{}{"id": int64(2), "note": "x"}},
		}
		require.NoError(t, s.WriteSegment(docs))
		require.NoError(t, s.WriteSegment(docs[:1]))
		assert.Equal(t, 2, s.Segments())

		cursors, release, err := s.SegmentCursors()
		require.NoError(t, err)
		defer release()
		require.Len(t, cursors, 2)

		var replayed []*model.Document
		for head, err := cursors[0].Peek(); head != nil; head, err = cursors[0].Peek() {
			require.NoError(t, err)
			replayed = append(replayed, head)
			require.NoError(t, cursors[0].Advance())
		}
		assert.Equal(t, docs, replayed)

		head, err := cursors[1].Peek()
		require.NoError(t, err)
		assert.Equal(t, docs[0], head)
	})
}

func TestSpillCloseRemovesStorage(t *testing.T) {
	dir, err := os.MkdirTemp(os.TempDir(), "combine-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	s, err := bbolt_engine.Open(dir)
	require.NoError(t, err)
	require.NoError(t, s.WriteSegment([]*model.Document{
		{Key: model.Key{"k"}, Value: "v"},
	}))

	require.NoError(t, s.Close())
	require.NoError(t, s.Close()) // idempotent

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, files)
}

var _ port.SpillEngine = (*bbolt_engine.Spill)(nil)
