package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRecord(t *testing.T) {
	t.Run("valid entry", func(t *testing.T) {
		rec := DecodeRecord([]byte(`{"id": 5, "name": "libft", "x": 3000, "by": [{"points": [[1, 2], [3, 4]]}]}`))

		require.NoError(t, rec.DecodeErr)
		assert.Equal(t, 5, rec.ID)
		require.NotNil(t, rec.Name)
		assert.Equal(t, "libft", *rec.Name)
		require.Len(t, rec.By, 1)
	})

	t.Run("mistyped field keeps only the id", func(t *testing.T) {
		rec := DecodeRecord([]byte(`{"id": 6, "name": "b", "by": "oops"}`))

		require.Error(t, rec.DecodeErr)
		assert.Equal(t, 6, rec.ID)
		assert.Nil(t, rec.Name)
		assert.Nil(t, rec.By)
	})

	t.Run("not an object", func(t *testing.T) {
		rec := DecodeRecord([]byte(`"libft"`))

		require.Error(t, rec.DecodeErr)
		assert.Zero(t, rec.ID)
	})
}
