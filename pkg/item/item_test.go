package item_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/surrealdb/surrealdb.go/pkg/models"
	"github.com/surrealdb/surrealflow/pkg/item"
)

func TestFormatArrayResultEmpty(t *testing.T) {
	assert.Empty(t, item.FormatArrayResult([]any{}, 0))
	assert.Empty(t, item.FormatArrayResult(nil, 0))
}

func TestFormatArrayResultPreservesOrder(t *testing.T) {
	a := map[string]any{"name": "a"}
	b := map[string]any{"name": "b"}

	items := item.FormatArrayResult([]any{a, b}, 3)
	require.Len(t, items, 2)
	assert.Equal(t, item.Item{JSON: a, PairedItem: 3}, items[0])
	assert.Equal(t, item.Item{JSON: b, PairedItem: 3}, items[1])
}

func TestFormatArrayResultShapes(t *testing.T) {
	t.Run("array of arrays is flattened", func(t *testing.T) {
		items := item.FormatArrayResult([]any{[]any{map[string]any{"n": 1}}, []any{map[string]any{"n": 2}}}, 0)
		require.Len(t, items, 2)
		assert.Equal(t, 1, items[0].JSON["n"])
		assert.Equal(t, 2, items[1].JSON["n"])
	})

	t.Run("single object yields one item", func(t *testing.T) {
		items := item.FormatArrayResult(map[string]any{"n": 1}, 1)
		require.Len(t, items, 1)
		assert.Equal(t, 1, items[0].PairedItem)
	})

	t.Run("scalars are wrapped", func(t *testing.T) {
		items := item.FormatArrayResult([]any{1, "two", nil}, 0)
		require.Len(t, items, 2)
		assert.Equal(t, map[string]any{item.ResultKey: 1}, items[0].JSON)
		assert.Equal(t, map[string]any{item.ResultKey: "two"}, items[1].JSON)
	})
}

func TestFormatSingleResult(t *testing.T) {
	assert.Empty(t, item.FormatSingleResult(nil, 0))
	assert.Empty(t, item.FormatSingleResult(models.None, 0))

	var nilMap map[string]any
	assert.Empty(t, item.FormatSingleResult(nilMap, 0))

	items := item.FormatSingleResult([]any{1, 2}, 2)
	require.Len(t, items, 1)
	assert.Equal(t, []any{1, 2}, items[0].JSON[item.ResultKey])
}

func TestNormalize(t *testing.T) {
	in := map[string]any{
		"id":   models.NewRecordID("person", "tobie"),
		"tags": []any{models.NewRecordID("tag", int64(1))},
		"nested": map[any]any{
			"k": models.Table("person"),
		},
	}
	out := item.Normalize(in)
	assert.Equal(t, map[string]any{
		"id":     "person:tobie",
		"tags":   []any{"tag:1"},
		"nested": map[string]any{"k": "person"},
	}, out)
}

func TestFirstArray(t *testing.T) {
	rows := []any{map[string]any{"n": 1}}
	assert.Equal(t, rows, item.FirstArray([]any{rows, []any{}}))
	assert.Equal(t, rows, item.FirstArray(rows))
	assert.Nil(t, item.FirstArray(map[string]any{}))
}

func TestIsEmpty(t *testing.T) {
	assert.True(t, item.IsEmpty(nil))
	assert.True(t, item.IsEmpty([]any{}))
	assert.True(t, item.IsEmpty(map[string]any{}))
	assert.False(t, item.IsEmpty(map[string]any{"a": 1}))
	assert.False(t, item.IsEmpty(0))
}

func TestErrorItem(t *testing.T) {
	it := item.Error(errors.New("boom"), 4)
	assert.Equal(t, 4, it.PairedItem)
	assert.Equal(t, "boom", it.JSON[item.ErrorKey])
	assert.True(t, it.IsError())
	assert.False(t, item.New(map[string]any{"name": "x"}, 0).IsError())
}
