package types

import (
	"time"

	"github.com/google/uuid"
)

// IngredientLine is one (ingredient, amount) pair in a create/update request.
type IngredientLine struct {
	ID     uuid.UUID `json:"id" binding:"required"`
	Amount int       `json:"amount" binding:"required"`
}

// CreateRecipeRequest is the payload for POST /recipes.
type CreateRecipeRequest struct {
	Name        string           `json:"name" binding:"required,max=200"`
	Image       string           `json:"image"`
	Text        string           `json:"text" binding:"required"`
	CookingTime int              `json:"cooking_time" binding:"required"`
	TagIDs      []uuid.UUID      `json:"tags"`
	Ingredients []IngredientLine `json:"ingredients" binding:"required"`
}

// UpdateRecipeRequest is the payload for PATCH /recipes/:id. Nil fields are
// left untouched; a non-nil Ingredients or TagIDs replaces the whole
// association set.
type UpdateRecipeRequest struct {
	Name        *string           `json:"name"`
	Image       *string           `json:"image"`
	Text        *string           `json:"text"`
	CookingTime *int              `json:"cooking_time"`
	TagIDs      *[]uuid.UUID      `json:"tags"`
	Ingredients *[]IngredientLine `json:"ingredients"`
}

// RecipeIngredientResponse is a fully expanded ingredient line.
type RecipeIngredientResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	MeasurementUnit string    `json:"measurement_unit"`
	Amount          int       `json:"amount"`
}

type TagResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Color string    `json:"color"`
	Slug  string    `json:"slug"`
}

// RecipeResponse is the read projection of a recipe, with viewer-relative
// flags. Both flags are false for anonymous viewers.
type RecipeResponse struct {
	ID               uuid.UUID                  `json:"id"`
	Author           UserResponse               `json:"author"`
	Name             string                     `json:"name"`
	Image            string                     `json:"image"`
	Text             string                     `json:"text"`
	CookingTime      int                        `json:"cooking_time"`
	Tags             []TagResponse              `json:"tags"`
	Ingredients      []RecipeIngredientResponse `json:"ingredients"`
	IsFavorited      bool                       `json:"is_favorited"`
	IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
	PublishedAt      time.Time                  `json:"published_at"`
}

// RecipeSummary is the short projection returned by favorite/cart adds and
// embedded in subscription listings.
type RecipeSummary struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Image       string    `json:"image"`
	CookingTime int       `json:"cooking_time"`
}

// RecipeListFilter collects the supported list filters. Favorited and
// InShoppingCart are viewer-relative and require an authenticated viewer.
type RecipeListFilter struct {
	AuthorID       *uuid.UUID
	TagSlug        string
	Favorited      bool
	InShoppingCart bool
	Limit          int
	Offset         int
}

// ShoppingListItem is one aggregated line of the shopping list.
type ShoppingListItem struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}
