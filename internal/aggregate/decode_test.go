package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	t.Run("decodes congruent id and detail columns", func(t *testing.T) {
		ids, refs := Decode(
			"3,7",
			"3:Alice:alice@example.com:https://cdn.example.com/a.png,7:Bob:bob@example.com:",
		)

		assert.Equal(t, []int64{3, 7}, ids)
		require.Len(t, refs, 2)

		assert.Equal(t, int64(3), refs[0].ID)
		assert.Equal(t, "Alice", refs[0].Name)
		assert.Equal(t, "alice@example.com", refs[0].Email)
		require.NotNil(t, refs[0].Avatar)
		assert.Equal(t, "https://cdn.example.com/a.png", *refs[0].Avatar)

		assert.Equal(t, int64(7), refs[1].ID)
		assert.Nil(t, refs[1].Avatar, "empty avatar segment should decode to nil")
	})

	t.Run("empty columns decode to empty slices", func(t *testing.T) {
		ids, refs := Decode("", "")
		assert.NotNil(t, ids)
		assert.NotNil(t, refs)
		assert.Empty(t, ids)
		assert.Empty(t, refs)
	})

	t.Run("avatar may contain colons", func(t *testing.T) {
		_, refs := Decode("1", "1:Alice:alice@example.com:https://cdn.example.com/a.png")
		require.Len(t, refs, 1)
		require.NotNil(t, refs[0].Avatar)
		assert.Equal(t, "https://cdn.example.com/a.png", *refs[0].Avatar)
	})

	t.Run("skips malformed tuples", func(t *testing.T) {
		ids, refs := Decode("1,2", "1:Alice:alice@example.com:,garbage")
		assert.Equal(t, []int64{1, 2}, ids)
		require.Len(t, refs, 1)
		assert.Equal(t, "Alice", refs[0].Name)
	})
}

func TestDecodeIDs(t *testing.T) {
	assert.Equal(t, []int64{4, 8, 15}, DecodeIDs("4,8,15"))
	assert.Empty(t, DecodeIDs(""))
	assert.Equal(t, []int64{2}, DecodeIDs("x,2"), "unparseable entries are skipped")
}
