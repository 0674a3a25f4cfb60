package boosts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()

	assert.Len(t, c.All(), 45)
	assert.Equal(t, []Category{CategorySleep, CategoryMindset, CategoryNutrition, CategoryExercise, CategoryBiohack}, c.Categories())

	for _, cat := range c.Categories() {
		list := c.ByCategory(cat)
		require.Len(t, list, 9, "category %s", cat)
		for i, b := range list {
			assert.Equal(t, i+1, b.Points)
			if b.Points >= 7 {
				assert.Equal(t, 2, b.Tier, b.ID)
			} else {
				assert.Equal(t, 1, b.Tier, b.ID)
			}
		}
	}
}

func TestCatalogLookup(t *testing.T) {
	c := DefaultCatalog()

	b, ok := c.Lookup(" Sleep-101 ")
	require.True(t, ok)
	assert.Equal(t, "Morning Light Protocol", b.Name)
	assert.Equal(t, CategorySleep, b.Category)

	_, ok = c.Lookup("sleep-999")
	assert.False(t, ok)
}

func TestCatalogAllReturnsCopy(t *testing.T) {
	c := DefaultCatalog()
	all := c.All()
	all[0].Points = 100

	b, _ := c.Lookup(all[0].ID)
	assert.Equal(t, 1, b.Points)
}

func TestNewCatalogRejectsBadEntries(t *testing.T) {
	_, err := NewCatalog([]Boost{
		{ID: "x-1", Points: 1, Tier: 1},
		{ID: "x-1", Points: 2, Tier: 1},
	})
	assert.Error(t, err)

	_, err = NewCatalog([]Boost{{ID: "x-1", Points: 10, Tier: 1}})
	assert.Error(t, err)

	_, err = NewCatalog([]Boost{{ID: "x-1", Points: 1, Tier: 3}})
	assert.Error(t, err)
}

func TestParseCategory(t *testing.T) {
	for in, want := range map[string]Category{
		"sleep":     CategorySleep,
		"Сон":       CategorySleep,
		"biohack":   CategoryBiohack,
		"ПИТАНИЕ":   CategoryNutrition,
		" mindset ": CategoryMindset,
	} {
		got, ok := ParseCategory(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := ParseCategory("contests")
	assert.False(t, ok)
}
