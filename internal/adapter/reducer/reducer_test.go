package reducer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/combinedb/combine/internal/adapter/reducer"
	"github.com/combinedb/combine/internal/adapter/schema"
	"github.com/combinedb/combine/pkg/port"
)

func mustSchema(t *testing.T, raw string) *schema.Schema {
	t.Helper()
	s, err := schema.Parse([]byte(raw))
	require.NoError(t, err)
	return s
}

func TestApplyDefaults(t *testing.T) {
	root := mustSchema(t, `{}`).Root()

	t.Run("scalars are last write wins", func(t *testing.T) {
		v, err := reducer.Apply(root, "", int64(1), "two")
		require.NoError(t, err)
		assert.Equal(t, "two", v)
	})

	t.Run("objects merge field-wise", func(t *testing.T) {
		v, err := reducer.Apply(root, "",
			map[string]interface{}{"a": int64(1), "b": int64(2)},
			map[string]interface{}{"b": int64(3), "c": int64(4)},
		)
		require.NoError(t, err)
		assert.Equal(t, map[string]interface{}{
			"a": int64(1),
			"b": int64(3),
			"c": int64(4),
		}, v)
	})

	t.Run("merge does not mutate operands", func(t *testing.T) {
		existing := map[string]interface{}{"a": int64(1)}
		_, err := reducer.Apply(root, "", existing, map[string]interface{}{"a": int64(2)})
		require.NoError(t, err)
		assert.Equal(t, map[string]interface{}{"a": int64(1)}, existing)
	})
}

func TestWriteWins(t *testing.T) {
	first := mustSchema(t, `{"reduce": "firstWriteWins"}`).Root()
	v, err := reducer.Apply(first, "", "old", "new")
	require.NoError(t, err)
	assert.Equal(t, "old", v)

	last := mustSchema(t, `{"reduce": "lastWriteWins"}`).Root()
	v, err = reducer.Apply(last, "", "old", "new")
	require.NoError(t, err)
	assert.Equal(t, "new", v)
}

func TestSum(t *testing.T) {
	root := mustSchema(t, `{"reduce": "sum"}`).Root()

	t.Run("integers", func(t *testing.T) {
		v, err := reducer.Apply(root, "", int64(2), int64(3))
		require.NoError(t, err)
		assert.Equal(t, int64(5), v)
	})

	t.Run("mixed promotes to float", func(t *testing.T) {
		v, err := reducer.Apply(root, "", int64(2), 0.5)
		require.NoError(t, err)
		assert.Equal(t, 2.5, v)
	})

	t.Run("non-numeric operand", func(t *testing.T) {
		_, err := reducer.Apply(root, "/count", int64(2), "x")
		var reductionErr *port.ReductionError
		require.ErrorAs(t, err, &reductionErr)
		assert.Equal(t, "/count", reductionErr.Path)
		assert.Equal(t, "sum", reductionErr.Strategy)
	})

	t.Run("integer overflow fails", func(t *testing.T) {
		_, err := reducer.Apply(root, "", int64(1)<<62, int64(1)<<62)
		var reductionErr *port.ReductionError
		require.ErrorAs(t, err, &reductionErr)
		assert.Contains(t, reductionErr.Reason, "overflow")
	})
}

func TestExtrema(t *testing.T) {
	min := mustSchema(t, `{"reduce": "minimize"}`).Root()
	max := mustSchema(t, `{"reduce": "maximize"}`).Root()

	v, err := reducer.Apply(min, "", int64(3), int64(5))
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)

	v, err = reducer.Apply(max, "", int64(3), int64(5))
	require.NoError(t, err)
	assert.Equal(t, int64(5), v)

	// cross-type extrema follow the total order: number < string
	v, err = reducer.Apply(max, "", int64(3), "s")
	require.NoError(t, err)
	assert.Equal(t, "s", v)
}

func TestAppendPrepend(t *testing.T) {
	app := mustSchema(t, `{"reduce": "append"}`).Root()
	pre := mustSchema(t, `{"reduce": "prepend"}`).Root()

	v, err := reducer.Apply(app, "", []interface{}{int64(1)}, []interface{}{int64(2)})
	require.NoError(t, err)
	assert.Equal(t, []interface{}{int64(1), int64(2)}, v)

	v, err = reducer.Apply(pre, "", []interface{}{int64(1)}, []interface{}{int64(2)})
	require.NoError(t, err)
	assert.Equal(t, []interface{}{int64(2), int64(1)}, v)

	t.Run("null is empty", func(t *testing.T) {
		v, err := reducer.Apply(app, "", nil, []interface{}{int64(9)})
		require.NoError(t, err)
		assert.Equal(t, []interface{}{int64(9)}, v)
	})

	t.Run("non-array operand", func(t *testing.T) {
		_, err := reducer.Apply(app, "", []interface{}{}, "x")
		var reductionErr *port.ReductionError
		assert.ErrorAs(t, err, &reductionErr)
	})
}

func TestNestedStrategies(t *testing.T) {
	root := mustSchema(t, `{
		"type": "object",
		"properties": {
			"count": {"reduce": "sum"},
			"first": {"reduce": "firstWriteWins"},
			"log": {"type": "array", "reduce": "append"}
		}
	}`).Root()

	v, err := reducer.Apply(root, "",
		map[string]interface{}{
			"count": int64(2),
			"first": "a",
			"log":   []interface{}{"x"},
		},
		map[string]interface{}{
			"count": int64(3),
			"first": "b",
			"log":   []interface{}{"y"},
			"other": int64(1),
		},
	)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{
		"count": int64(5),
		"first": "a",
		"log":   []interface{}{"x", "y"},
		"other": int64(1),
	}, v)
}

func TestDeclaredMergeRecurses(t *testing.T) {
	// a declared merge dispatches through the strategy table and back
	// into Apply for each field
	root := mustSchema(t, `{
		"type": "object",
		"reduce": "merge",
		"properties": {
			"count": {"reduce": "sum"}
		}
	}`).Root()

	v, err := reducer.Apply(root, "",
		map[string]interface{}{"count": int64(2)},
		map[string]interface{}{"count": int64(3)},
	)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"count": int64(5)}, v)
}

func TestMergeTypeErrors(t *testing.T) {
	root := mustSchema(t, `{"reduce": "merge"}`).Root()

	_, err := reducer.Apply(root, "", "scalar", map[string]interface{}{})
	var reductionErr *port.ReductionError
	require.ErrorAs(t, err, &reductionErr)
	assert.Equal(t, "merge", reductionErr.Strategy)

	_, err = reducer.Apply(root, "", map[string]interface{}{}, []interface{}{})
	assert.ErrorAs(t, err, &reductionErr)
}
