package actor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItem_Candidates(t *testing.T) {
	item := Item{Name: "Bread Loaf", Aliases: []string{"bread", "loaf"}}
	assert.Equal(t, []string{"Bread Loaf", "bread", "loaf"}, item.Candidates())
}

func TestItem_Matches(t *testing.T) {
	item := Item{Name: "Iron Sword", Aliases: []string{"sword"}}
	assert.True(t, item.Matches("iron sword"))
	assert.True(t, item.Matches("SWORD"))
	assert.False(t, item.Matches("shield"))
}

func TestActor_FindItem(t *testing.T) {
	a := Actor{
		Name: "Marla",
		Role: "shopkeeper",
		Inventory: []Item{
			{Name: "Bread Loaf", Aliases: []string{"bread"}, Cost: 3},
			{Name: "Iron Sword", Cost: 120},
		},
	}

	item, ok := a.FindItem("bread")
	require.True(t, ok)
	assert.Equal(t, "Bread Loaf", item.Name)

	_, ok = a.FindItem("shield")
	assert.False(t, ok)
}
