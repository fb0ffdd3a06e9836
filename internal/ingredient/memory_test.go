package ingredient

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddMergesOnNameAndUnit(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	id1, err := store.Add(ctx, AddParams{Name: "卵", Quantity: 10, Unit: "個", Category: CategoryOther})
	require.NoError(t, err)
	id2, err := store.Add(ctx, AddParams{Name: "卵", Quantity: 5, Unit: "個", Category: CategoryOther})
	require.NoError(t, err)

	assert.Equal(t, id1, id2)

	ingredients, err := store.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, ingredients, 1)
	assert.Equal(t, 15.0, ingredients[0].Quantity)

	events, err := store.UsageHistory(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	for _, e := range events {
		assert.Equal(t, ActionAdd, e.Action)
		assert.Equal(t, id1, e.IngredientID)
	}
}

func TestAddMergeKeepsExistingMetadata(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	expiry := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	id, err := store.Add(ctx, AddParams{Name: "牛乳", Quantity: 1, Unit: "本", Category: CategoryDairy, ExpiryDate: &expiry, Notes: "開封済み"})
	require.NoError(t, err)

	later := time.Date(2026, 9, 20, 0, 0, 0, 0, time.UTC)
	_, err = store.Add(ctx, AddParams{Name: "牛乳", Quantity: 2, Unit: "本", Category: CategoryOther, ExpiryDate: &later, Notes: "new"})
	require.NoError(t, err)

	ingredients, err := store.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, ingredients, 1)
	assert.Equal(t, id, ingredients[0].ID)
	assert.Equal(t, 3.0, ingredients[0].Quantity)
	// Merge does not overwrite category, expiry or notes.
	assert.Equal(t, CategoryDairy, ingredients[0].Category)
	assert.Equal(t, expiry, *ingredients[0].ExpiryDate)
	assert.Equal(t, "開封済み", ingredients[0].Notes)
}

func TestAddSameNameDifferentUnitIsSeparate(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	id1, err := store.Add(ctx, AddParams{Name: "米", Quantity: 2, Unit: "kg"})
	require.NoError(t, err)
	id2, err := store.Add(ctx, AddParams{Name: "米", Quantity: 1, Unit: "パック"})
	require.NoError(t, err)

	assert.NotEqual(t, id1, id2)
}

func TestUseClampsAndDeletesAtZero(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	id, err := store.Add(ctx, AddParams{Name: "卵", Quantity: 10, Unit: "個"})
	require.NoError(t, err)

	ok, err := store.Use(ctx, id, 15)
	require.NoError(t, err)
	assert.True(t, ok)

	// Over-consumption deletes the row instead of going negative.
	ingredients, err := store.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Empty(t, ingredients)

	// The event records the requested quantity, not the clamped delta.
	events, err := store.UsageHistory(ctx, 1)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, ActionUse, events[0].Action)
	assert.Equal(t, 15.0, events[0].Quantity)
	assert.Equal(t, id, events[0].IngredientID)
}

func TestUsePartial(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	id, err := store.Add(ctx, AddParams{Name: "卵", Quantity: 10, Unit: "個"})
	require.NoError(t, err)

	ok, err := store.Use(ctx, id, 4)
	require.NoError(t, err)
	assert.True(t, ok)

	ingredients, err := store.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, ingredients, 1)
	assert.Equal(t, 6.0, ingredients[0].Quantity)
}

func TestUseUnknownIDAppendsNoEvent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	ok, err := store.Use(ctx, 42, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	events, err := store.UsageHistory(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestUpdatePartialPatch(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	id, err := store.Add(ctx, AddParams{Name: "鶏肉", Quantity: 2, Unit: "枚", Category: CategoryMeat, Notes: "冷凍"})
	require.NoError(t, err)

	newQuantity := 1.0
	ok, err := store.Update(ctx, id, UpdateParams{Quantity: &newQuantity})
	require.NoError(t, err)
	assert.True(t, ok)

	ingredients, err := store.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, ingredients, 1)
	assert.Equal(t, 1.0, ingredients[0].Quantity)
	// Untouched fields survive.
	assert.Equal(t, "鶏肉", ingredients[0].Name)
	assert.Equal(t, CategoryMeat, ingredients[0].Category)
	assert.Equal(t, "冷凍", ingredients[0].Notes)
}

func TestUpdateWithoutFieldsFails(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	id, err := store.Add(ctx, AddParams{Name: "鶏肉", Quantity: 2, Unit: "枚"})
	require.NoError(t, err)

	ok, err := store.Update(ctx, id, UpdateParams{})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpdateUnknownIDFails(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	name := "x"
	ok, err := store.Update(ctx, 42, UpdateParams{Name: &name})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	id, err := store.Add(ctx, AddParams{Name: "鶏肉", Quantity: 2, Unit: "枚"})
	require.NoError(t, err)

	ok, err := store.Delete(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Delete(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestListExpiryWindow(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	in3 := today.AddDate(0, 0, 3)
	in4 := today.AddDate(0, 0, 4)

	_, err := store.Add(ctx, AddParams{Name: "牛乳", Quantity: 1, Unit: "本", ExpiryDate: &today})
	require.NoError(t, err)
	_, err = store.Add(ctx, AddParams{Name: "卵", Quantity: 6, Unit: "個", ExpiryDate: &in3})
	require.NoError(t, err)
	_, err = store.Add(ctx, AddParams{Name: "豆腐", Quantity: 1, Unit: "パック", ExpiryDate: &in4})
	require.NoError(t, err)

	days := 3
	ingredients, err := store.List(ctx, Filter{ExpiringWithinDays: &days})
	require.NoError(t, err)
	require.Len(t, ingredients, 2)
	// Ordered by ascending expiry date.
	assert.Equal(t, "牛乳", ingredients[0].Name)
	assert.Equal(t, "卵", ingredients[1].Name)
}

func TestListOrderingNilExpiryLast(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	now := time.Now()
	soon := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)

	_, err := store.Add(ctx, AddParams{Name: "味噌", Quantity: 1, Unit: "パック"})
	require.NoError(t, err)
	_, err = store.Add(ctx, AddParams{Name: "卵", Quantity: 6, Unit: "個", ExpiryDate: &soon})
	require.NoError(t, err)
	_, err = store.Add(ctx, AddParams{Name: "塩", Quantity: 1, Unit: "パック"})
	require.NoError(t, err)

	ingredients, err := store.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, ingredients, 3)
	assert.Equal(t, "卵", ingredients[0].Name)
	// Dateless rows come last, ordered by name.
	assert.Equal(t, "塩", ingredients[1].Name)
	assert.Equal(t, "味噌", ingredients[2].Name)
}

func TestListCategoryFilter(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Add(ctx, AddParams{Name: "鶏肉", Quantity: 2, Unit: "枚", Category: CategoryMeat})
	require.NoError(t, err)
	_, err = store.Add(ctx, AddParams{Name: "トマト", Quantity: 3, Unit: "個", Category: CategoryVegetable})
	require.NoError(t, err)

	ingredients, err := store.List(ctx, Filter{Category: CategoryMeat})
	require.NoError(t, err)
	require.Len(t, ingredients, 1)
	assert.Equal(t, "鶏肉", ingredients[0].Name)
}

func TestStatistics(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	now := time.Now()
	tomorrow := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	farAway := tomorrow.AddDate(0, 1, 0)

	_, err := store.Add(ctx, AddParams{Name: "鶏肉", Quantity: 2, Unit: "枚", Category: CategoryMeat, ExpiryDate: &tomorrow})
	require.NoError(t, err)
	_, err = store.Add(ctx, AddParams{Name: "トマト", Quantity: 3, Unit: "個", Category: CategoryVegetable, ExpiryDate: &farAway})
	require.NoError(t, err)
	_, err = store.Add(ctx, AddParams{Name: "きゅうり", Quantity: 2, Unit: "本", Category: CategoryVegetable})
	require.NoError(t, err)

	stats, err := store.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalCount)
	assert.Equal(t, map[string]int{CategoryMeat: 1, CategoryVegetable: 2}, stats.CategoryStats)
	assert.Equal(t, 1, stats.ExpiringSoon)
}

func TestRecipeHistory(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	id1, err := store.AddRecipeHistory(ctx, "提案レシピ", "鶏肉 2枚", "1. 【チキンソテー】...")
	require.NoError(t, err)
	id2, err := store.AddRecipeHistory(ctx, "提案レシピ", "トマト 3個", "1. 【トマトパスタ】...")
	require.NoError(t, err)

	recipes, err := store.RecipeHistory(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recipes, 2)
	// Newest first.
	assert.Equal(t, id2, recipes[0].ID)
	assert.Equal(t, id1, recipes[1].ID)
	assert.False(t, recipes[0].Liked)

	ok, err := store.SetRecipeLiked(ctx, id2, true)
	require.NoError(t, err)
	assert.True(t, ok)

	recipes, err = store.RecipeHistory(ctx, 10)
	require.NoError(t, err)
	assert.True(t, recipes[0].Liked)

	ok, err = store.SetRecipeLiked(ctx, 999, true)
	require.NoError(t, err)
	assert.False(t, ok)
}
