package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolkov/plateful/backend/internal/testhelpers"
	"github.com/avolkov/plateful/backend/internal/types"
)

func TestShoppingListAggregation(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	recipes := NewRecipeService(db)
	rels := NewRelationshipService(db)
	lists := NewShoppingListService(db)
	ctx := context.Background()

	author := testhelpers.CreateTestUser(t, db, "author")
	shopper := testhelpers.CreateTestUser(t, db, "shopper")
	onion := testhelpers.CreateTestIngredient(t, db, "onion", "pcs")
	salt := testhelpers.CreateTestIngredient(t, db, "salt", "g")

	r1, err := recipes.Create(ctx, author.ID, &types.CreateRecipeRequest{
		Name:        "R1",
		Text:        "text",
		CookingTime: 10,
		Ingredients: []types.IngredientLine{
			{ID: onion.ID, Amount: 2},
			{ID: salt.ID, Amount: 1},
		},
	})
	require.NoError(t, err)

	r2, err := recipes.Create(ctx, author.ID, &types.CreateRecipeRequest{
		Name:        "R2",
		Text:        "text",
		CookingTime: 10,
		Ingredients: []types.IngredientLine{
			{ID: onion.ID, Amount: 3},
			{ID: salt.ID, Amount: 1},
		},
	})
	require.NoError(t, err)

	_, err = rels.AddToCart(ctx, shopper.ID, r1.ID)
	require.NoError(t, err)
	_, err = rels.AddToCart(ctx, shopper.ID, r2.ID)
	require.NoError(t, err)

	items, err := lists.Aggregate(ctx, shopper.ID)
	require.NoError(t, err)

	// Each ingredient appears exactly once with summed amounts.
	require.Len(t, items, 2)
	byName := map[string]types.ShoppingListItem{}
	for _, item := range items {
		byName[item.Name] = item
	}
	assert.Equal(t, 5, byName["onion"].Amount)
	assert.Equal(t, "pcs", byName["onion"].MeasurementUnit)
	assert.Equal(t, 2, byName["salt"].Amount)
	assert.Equal(t, "g", byName["salt"].MeasurementUnit)
}

func TestShoppingListFirstSeenOrder(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	recipes := NewRecipeService(db)
	rels := NewRelationshipService(db)
	lists := NewShoppingListService(db)
	ctx := context.Background()

	author := testhelpers.CreateTestUser(t, db, "author")
	shopper := testhelpers.CreateTestUser(t, db, "shopper")
	onion := testhelpers.CreateTestIngredient(t, db, "onion", "pcs")
	salt := testhelpers.CreateTestIngredient(t, db, "salt", "g")

	r1, err := recipes.Create(ctx, author.ID, &types.CreateRecipeRequest{
		Name:        "R1",
		Text:        "text",
		CookingTime: 10,
		Ingredients: []types.IngredientLine{
			{ID: onion.ID, Amount: 2},
			{ID: salt.ID, Amount: 1},
		},
	})
	require.NoError(t, err)
	_, err = rels.AddToCart(ctx, shopper.ID, r1.ID)
	require.NoError(t, err)

	items, err := lists.Aggregate(ctx, shopper.ID)
	require.NoError(t, err)

	// Order follows the query result, not the alphabet: the rows of R1 were
	// inserted together, so the name tiebreak puts onion before salt.
	require.Len(t, items, 2)
	assert.Equal(t, "onion", items[0].Name)
	assert.Equal(t, "salt", items[1].Name)
}

func TestShoppingListIgnoresOtherUsersCarts(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	recipes := NewRecipeService(db)
	rels := NewRelationshipService(db)
	lists := NewShoppingListService(db)
	ctx := context.Background()

	author := testhelpers.CreateTestUser(t, db, "author")
	shopper := testhelpers.CreateTestUser(t, db, "shopper")
	other := testhelpers.CreateTestUser(t, db, "other")
	onion := testhelpers.CreateTestIngredient(t, db, "onion", "pcs")

	r1, err := recipes.Create(ctx, author.ID, &types.CreateRecipeRequest{
		Name:        "R1",
		Text:        "text",
		CookingTime: 10,
		Ingredients: []types.IngredientLine{{ID: onion.ID, Amount: 2}},
	})
	require.NoError(t, err)

	_, err = rels.AddToCart(ctx, other.ID, r1.ID)
	require.NoError(t, err)

	items, err := lists.Aggregate(ctx, shopper.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestShoppingListRender(t *testing.T) {
	lists := NewShoppingListService(nil)

	text := lists.Render([]types.ShoppingListItem{
		{Name: "onion", MeasurementUnit: "pcs", Amount: 5},
		{Name: "salt", MeasurementUnit: "g", Amount: 2},
	})
	assert.Equal(t, "Shopping List\n\nonion (pcs) 5\nsalt (g) 2", text)
}

func TestShoppingListRenderEmptyCart(t *testing.T) {
	lists := NewShoppingListService(nil)

	assert.Equal(t, "Shopping List\n", lists.Render(nil))
}
