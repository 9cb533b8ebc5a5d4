package catalog_test

import (
	"testing"

	"repairbot/internal/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("should keep insertion order", func(t *testing.T) {
		c, err := catalog.New([]catalog.Service{
			{ID: "b", DisplayName: "B", PriceMinor: 200},
			{ID: "a", DisplayName: "A", PriceMinor: 100},
			{ID: "c", DisplayName: "C", PriceMinor: 300},
		})
		require.NoError(t, err)

		list := c.List()
		require.Len(t, list, 3)
		assert.Equal(t, "b", list[0].ID)
		assert.Equal(t, "a", list[1].ID)
		assert.Equal(t, "c", list[2].ID)
	})

	t.Run("should reject duplicate ids", func(t *testing.T) {
		_, err := catalog.New([]catalog.Service{
			{ID: "a", DisplayName: "A", PriceMinor: 100},
			{ID: "a", DisplayName: "A again", PriceMinor: 200},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate service id")
	})

	t.Run("should reject empty id", func(t *testing.T) {
		_, err := catalog.New([]catalog.Service{{ID: "  ", DisplayName: "X"}})
		require.Error(t, err)
	})

	t.Run("should reject negative price", func(t *testing.T) {
		_, err := catalog.New([]catalog.Service{{ID: "x", DisplayName: "X", PriceMinor: -1}})
		require.Error(t, err)
	})
}

func TestGet(t *testing.T) {
	c, err := catalog.New([]catalog.Service{{ID: "screen", DisplayName: "Screen", PriceMinor: 300000}})
	require.NoError(t, err)

	svc, ok := c.Get("screen")
	require.True(t, ok)
	assert.Equal(t, "Screen", svc.DisplayName)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestDefault(t *testing.T) {
	c := catalog.Default()
	require.Equal(t, 7, c.Len())

	battery, ok := c.Get("battery")
	require.True(t, ok)
	assert.Equal(t, int64(150000), battery.PriceMinor)

	// "Other" is price-on-request and must still be selectable.
	other, ok := c.Get("other")
	require.True(t, ok)
	assert.Zero(t, other.PriceMinor)
}

func TestListReturnsCopy(t *testing.T) {
	c := catalog.Default()
	list := c.List()
	list[0].DisplayName = "mutated"

	fresh := c.List()
	assert.NotEqual(t, "mutated", fresh[0].DisplayName)
}
