package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avolkov/plateful/backend/internal/types"
)

// ShoppingListService derives a deduplicated, summed ingredient list from a
// user's shopping-cart recipes.
type ShoppingListService struct {
	db *gorm.DB
}

// NewShoppingListService creates a new ShoppingListService instance
func NewShoppingListService(db *gorm.DB) *ShoppingListService {
	return &ShoppingListService{db: db}
}

type cartIngredientRow struct {
	Name            string
	MeasurementUnit string
	Amount          int
}

// Aggregate joins the ingredient rows of every recipe in the user's cart and
// folds them by (name, measurement_unit), summing amounts. Items keep the
// order in which their key was first seen in the query result.
func (s *ShoppingListService) Aggregate(ctx context.Context, userID uuid.UUID) ([]types.ShoppingListItem, error) {
	var rows []cartIngredientRow
	err := s.db.WithContext(ctx).
		Table("recipe_ingredients").
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, recipe_ingredients.amount AS amount").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Joins("JOIN shopping_cart_entries ON shopping_cart_entries.recipe_id = recipe_ingredients.recipe_id").
		Where("shopping_cart_entries.user_id = ?", userID).
		Order("recipe_ingredients.created_at, ingredients.name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	type key struct {
		name string
		unit string
	}
	index := make(map[key]int, len(rows))
	items := make([]types.ShoppingListItem, 0, len(rows))
	for _, row := range rows {
		k := key{name: row.Name, unit: row.MeasurementUnit}
		if i, ok := index[k]; ok {
			items[i].Amount += row.Amount
			continue
		}
		index[k] = len(items)
		items = append(items, types.ShoppingListItem{
			Name:            row.Name,
			MeasurementUnit: row.MeasurementUnit,
			Amount:          row.Amount,
		})
	}
	return items, nil
}

// Render produces the plain-text document: a two-line header followed by one
// line per ingredient. An empty cart renders the header only.
func (s *ShoppingListService) Render(items []types.ShoppingListItem) string {
	lines := make([]string, 0, len(items)+2)
	lines = append(lines, "Shopping List", "")
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("%s (%s) %d", item.Name, item.MeasurementUnit, item.Amount))
	}
	return strings.Join(lines, "\n")
}
