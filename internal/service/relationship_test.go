package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolkov/plateful/backend/internal/testhelpers"
	"github.com/avolkov/plateful/backend/internal/types"
)

func TestFavoriteAddAndRemove(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	recipes := NewRecipeService(db)
	rels := NewRelationshipService(db)
	ctx := context.Background()

	author := testhelpers.CreateTestUser(t, db, "author")
	fan := testhelpers.CreateTestUser(t, db, "fan")
	salt := testhelpers.CreateTestIngredient(t, db, "salt", "g")

	recipe, err := recipes.Create(ctx, author.ID, &types.CreateRecipeRequest{
		Name:        "Cake",
		Image:       "http://example.com/cake.jpg",
		Text:        "Bake.",
		CookingTime: 45,
		Ingredients: []types.IngredientLine{{ID: salt.ID, Amount: 1}},
	})
	require.NoError(t, err)

	summary, err := rels.AddFavorite(ctx, fan.ID, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, recipe.ID, summary.ID)
	assert.Equal(t, "Cake", summary.Name)
	assert.Equal(t, "http://example.com/cake.jpg", summary.Image)
	assert.Equal(t, 45, summary.CookingTime)

	// Second add of the same pair is a conflict.
	_, err = rels.AddFavorite(ctx, fan.ID, recipe.ID)
	assert.ErrorIs(t, err, ErrConflict)

	require.NoError(t, rels.RemoveFavorite(ctx, fan.ID, recipe.ID))

	// Removing a pair that no longer exists is NotFound.
	err = rels.RemoveFavorite(ctx, fan.ID, recipe.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFavoriteUnknownRecipe(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	rels := NewRelationshipService(db)

	fan := testhelpers.CreateTestUser(t, db, "fan")

	_, err := rels.AddFavorite(context.Background(), fan.ID, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestShoppingCartIndependentOfFavorites(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	recipes := NewRecipeService(db)
	rels := NewRelationshipService(db)
	ctx := context.Background()

	author := testhelpers.CreateTestUser(t, db, "author")
	fan := testhelpers.CreateTestUser(t, db, "fan")
	salt := testhelpers.CreateTestIngredient(t, db, "salt", "g")

	recipe, err := recipes.Create(ctx, author.ID, &types.CreateRecipeRequest{
		Name:        "Stew",
		Text:        "Simmer.",
		CookingTime: 90,
		Ingredients: []types.IngredientLine{{ID: salt.ID, Amount: 1}},
	})
	require.NoError(t, err)

	_, err = rels.AddToCart(ctx, fan.ID, recipe.ID)
	require.NoError(t, err)

	// The favorite relation is untouched by cart membership.
	_, err = rels.AddFavorite(ctx, fan.ID, recipe.ID)
	require.NoError(t, err)

	_, err = rels.AddToCart(ctx, fan.ID, recipe.ID)
	assert.ErrorIs(t, err, ErrConflict)

	require.NoError(t, rels.RemoveFromCart(ctx, fan.ID, recipe.ID))
	err = rels.RemoveFromCart(ctx, fan.ID, recipe.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFollowAndUnfollow(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	rels := NewRelationshipService(db)
	ctx := context.Background()

	follower := testhelpers.CreateTestUser(t, db, "follower")
	author := testhelpers.CreateTestUser(t, db, "author")

	resp, err := rels.Follow(ctx, follower.ID, author.ID)
	require.NoError(t, err)
	assert.Equal(t, author.ID, resp.ID)
	assert.True(t, resp.IsSubscribed)

	// Following twice conflicts.
	_, err = rels.Follow(ctx, follower.ID, author.ID)
	assert.ErrorIs(t, err, ErrConflict)

	require.NoError(t, rels.Unfollow(ctx, follower.ID, author.ID))

	// Unfollow is idempotent: a second unfollow still succeeds.
	require.NoError(t, rels.Unfollow(ctx, follower.ID, author.ID))
}

func TestSelfFollowRejected(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	rels := NewRelationshipService(db)
	ctx := context.Background()

	for _, name := range []string{"first", "second"} {
		user := testhelpers.CreateTestUser(t, db, name)
		_, err := rels.Follow(ctx, user.ID, user.ID)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "author", verr.Field)
	}
}

func TestFollowUnknownAuthor(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	rels := NewRelationshipService(db)

	follower := testhelpers.CreateTestUser(t, db, "follower")

	_, err := rels.Follow(context.Background(), follower.ID, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListFollowing(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	recipes := NewRecipeService(db)
	rels := NewRelationshipService(db)
	ctx := context.Background()

	follower := testhelpers.CreateTestUser(t, db, "follower")
	author := testhelpers.CreateTestUser(t, db, "author")
	salt := testhelpers.CreateTestIngredient(t, db, "salt", "g")

	for _, name := range []string{"A", "B", "C", "D"} {
		_, err := recipes.Create(ctx, author.ID, &types.CreateRecipeRequest{
			Name:        name,
			Text:        "text",
			CookingTime: 10,
			Ingredients: []types.IngredientLine{{ID: salt.ID, Amount: 1}},
		})
		require.NoError(t, err)
	}

	_, err := rels.Follow(ctx, follower.ID, author.ID)
	require.NoError(t, err)

	results, total, err := rels.ListFollowing(ctx, follower.ID, follower.ID, 10, 0, 3)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, results, 1)

	got := results[0]
	assert.Equal(t, author.ID, got.ID)
	assert.True(t, got.IsSubscribed)
	assert.EqualValues(t, 4, got.RecipesCount)
	// The preview is capped by recipes_limit.
	assert.Len(t, got.Recipes, 3)
}
