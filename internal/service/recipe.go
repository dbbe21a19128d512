package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/avolkov/plateful/backend/internal/models"
	"github.com/avolkov/plateful/backend/internal/types"
)

// RecipeService owns the recipe aggregate: the recipe row plus its
// ingredient and tag associations, managed as one consistency boundary.
type RecipeService struct {
	db *gorm.DB
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB) *RecipeService {
	return &RecipeService{db: db}
}

// Create validates the submission and creates the recipe together with its
// ingredient rows and tag links in a single transaction. A failed lookup or
// bound leaves nothing behind.
func (s *RecipeService) Create(ctx context.Context, authorID uuid.UUID, req *types.CreateRecipeRequest) (*types.RecipeResponse, error) {
	if err := validateAmount("cooking_time", req.CookingTime); err != nil {
		return nil, err
	}
	if err := validateIngredientLines(req.Ingredients); err != nil {
		return nil, err
	}

	recipe := &models.Recipe{
		AuthorID:    authorID,
		Name:        req.Name,
		Image:       req.Image,
		Text:        req.Text,
		CookingTime: req.CookingTime,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, err := resolveTags(tx, req.TagIDs)
		if err != nil {
			return err
		}
		if err := resolveIngredients(tx, req.Ingredients); err != nil {
			return err
		}
		if err := tx.Create(recipe).Error; err != nil {
			return err
		}
		if err := createIngredientRows(tx, recipe.ID, req.Ingredients); err != nil {
			return err
		}
		if len(tags) > 0 {
			if err := tx.Model(recipe).Association("Tags").Append(&tags); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, recipe.ID, &authorID)
}

// Update applies the provided fields. A supplied ingredient or tag set
// replaces the previous associations wholesale inside the same transaction;
// on postgres the recipe row is locked so concurrent replacements cannot
// interleave.
func (s *RecipeService) Update(ctx context.Context, recipeID, actorID uuid.UUID, req *types.UpdateRecipeRequest) (*types.RecipeResponse, error) {
	if req.CookingTime != nil {
		if err := validateAmount("cooking_time", *req.CookingTime); err != nil {
			return nil, err
		}
	}
	if req.Ingredients != nil {
		if err := validateIngredientLines(*req.Ingredients); err != nil {
			return nil, err
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		q := tx
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := q.First(&recipe, "id = ?", recipeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if recipe.AuthorID != actorID {
			return ErrForbidden
		}

		updates := map[string]interface{}{}
		if req.Name != nil {
			updates["name"] = *req.Name
		}
		if req.Image != nil {
			updates["image"] = *req.Image
		}
		if req.Text != nil {
			updates["text"] = *req.Text
		}
		if req.CookingTime != nil {
			updates["cooking_time"] = *req.CookingTime
		}
		if len(updates) > 0 {
			if err := tx.Model(&recipe).Updates(updates).Error; err != nil {
				return err
			}
		}

		if req.Ingredients != nil {
			if err := resolveIngredients(tx, *req.Ingredients); err != nil {
				return err
			}
			if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
				return err
			}
			if err := createIngredientRows(tx, recipe.ID, *req.Ingredients); err != nil {
				return err
			}
		}

		if req.TagIDs != nil {
			tags, err := resolveTags(tx, *req.TagIDs)
			if err != nil {
				return err
			}
			if err := tx.Model(&recipe).Association("Tags").Replace(&tags); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, recipeID, &actorID)
}

// Delete removes the recipe and every row referencing it: ingredient rows,
// favorites, shopping cart entries and tag links.
func (s *RecipeService) Delete(ctx context.Context, recipeID, actorID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := tx.First(&recipe, "id = ?", recipeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if recipe.AuthorID != actorID {
			return ErrForbidden
		}

		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.ShoppingCartEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&recipe).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(&recipe).Error
	})
}

// Get returns the expanded recipe with viewer-relative flags. viewerID nil
// means anonymous: both flags come back false.
func (s *RecipeService) Get(ctx context.Context, recipeID uuid.UUID, viewerID *uuid.UUID) (*types.RecipeResponse, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("recipe_ingredients.created_at")
		}).
		Preload("Ingredients.Ingredient").
		First(&recipe, "id = ?", recipeID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	responses, err := s.expand(ctx, []models.Recipe{recipe}, viewerID)
	if err != nil {
		return nil, err
	}
	return &responses[0], nil
}

// List returns a filtered, newest-first page of recipes plus the total count.
func (s *RecipeService) List(ctx context.Context, filter types.RecipeListFilter, viewerID *uuid.UUID) ([]types.RecipeResponse, int64, error) {
	if (filter.Favorited || filter.InShoppingCart) && viewerID == nil {
		field := "is_favorited"
		if filter.InShoppingCart {
			field = "is_in_shopping_cart"
		}
		return nil, 0, validationErr(field, "filter requires authentication")
	}

	query := s.db.WithContext(ctx).Model(&models.Recipe{})

	if filter.AuthorID != nil {
		query = query.Where("author_id = ?", *filter.AuthorID)
	}
	if filter.TagSlug != "" {
		query = query.Where("recipes.id IN (?)",
			s.db.Table("recipe_tags").
				Select("recipe_tags.recipe_id").
				Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
				Where("tags.slug = ?", filter.TagSlug))
	}
	if filter.Favorited {
		query = query.Where("recipes.id IN (?)",
			s.db.Model(&models.Favorite{}).Select("recipe_id").Where("user_id = ?", *viewerID))
	}
	if filter.InShoppingCart {
		query = query.Where("recipes.id IN (?)",
			s.db.Model(&models.ShoppingCartEntry{}).Select("recipe_id").Where("user_id = ?", *viewerID))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var recipes []models.Recipe
	page := query.Order("recipes.created_at DESC")
	if filter.Limit > 0 {
		page = page.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		page = page.Offset(filter.Offset)
	}
	err := page.
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("recipe_ingredients.created_at")
		}).
		Preload("Ingredients.Ingredient").
		Find(&recipes).Error
	if err != nil {
		return nil, 0, err
	}

	responses, err := s.expand(ctx, recipes, viewerID)
	if err != nil {
		return nil, 0, err
	}
	return responses, total, nil
}

// expand builds read projections, resolving viewer-relative flags in three
// batched queries regardless of page size.
func (s *RecipeService) expand(ctx context.Context, recipes []models.Recipe, viewerID *uuid.UUID) ([]types.RecipeResponse, error) {
	favorited := map[uuid.UUID]bool{}
	inCart := map[uuid.UUID]bool{}
	subscribed := map[uuid.UUID]bool{}

	if viewerID != nil && len(recipes) > 0 {
		recipeIDs := make([]uuid.UUID, 0, len(recipes))
		authorIDs := make([]uuid.UUID, 0, len(recipes))
		for _, r := range recipes {
			recipeIDs = append(recipeIDs, r.ID)
			authorIDs = append(authorIDs, r.AuthorID)
		}

		var favs []models.Favorite
		if err := s.db.WithContext(ctx).Where("user_id = ? AND recipe_id IN ?", *viewerID, recipeIDs).Find(&favs).Error; err != nil {
			return nil, err
		}
		for _, f := range favs {
			favorited[f.RecipeID] = true
		}

		var entries []models.ShoppingCartEntry
		if err := s.db.WithContext(ctx).Where("user_id = ? AND recipe_id IN ?", *viewerID, recipeIDs).Find(&entries).Error; err != nil {
			return nil, err
		}
		for _, e := range entries {
			inCart[e.RecipeID] = true
		}

		var subs []models.Subscription
		if err := s.db.WithContext(ctx).Where("follower_id = ? AND author_id IN ?", *viewerID, authorIDs).Find(&subs).Error; err != nil {
			return nil, err
		}
		for _, sub := range subs {
			subscribed[sub.AuthorID] = true
		}
	}

	responses := make([]types.RecipeResponse, 0, len(recipes))
	for _, r := range recipes {
		resp := types.RecipeResponse{
			ID:               r.ID,
			Name:             r.Name,
			Image:            r.Image,
			Text:             r.Text,
			CookingTime:      r.CookingTime,
			IsFavorited:      favorited[r.ID],
			IsInShoppingCart: inCart[r.ID],
			PublishedAt:      r.CreatedAt,
			Tags:             make([]types.TagResponse, 0, len(r.Tags)),
			Ingredients:      make([]types.RecipeIngredientResponse, 0, len(r.Ingredients)),
		}
		if r.Author != nil {
			resp.Author = types.UserResponse{
				ID:           r.Author.ID,
				Username:     r.Author.Username,
				Email:        r.Author.Email,
				FirstName:    r.Author.FirstName,
				LastName:     r.Author.LastName,
				IsSubscribed: subscribed[r.AuthorID],
			}
		}
		for _, t := range r.Tags {
			resp.Tags = append(resp.Tags, types.TagResponse{ID: t.ID, Name: t.Name, Color: t.Color, Slug: t.Slug})
		}
		for _, ri := range r.Ingredients {
			line := types.RecipeIngredientResponse{
				ID:     ri.IngredientID,
				Amount: ri.Amount,
			}
			if ri.Ingredient != nil {
				line.Name = ri.Ingredient.Name
				line.MeasurementUnit = ri.Ingredient.MeasurementUnit
			}
			resp.Ingredients = append(resp.Ingredients, line)
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

func validateAmount(field string, v int) error {
	if v < models.MinAmount || v > models.MaxAmount {
		return validationErr(field, fmt.Sprintf("must be between %d and %d", models.MinAmount, models.MaxAmount))
	}
	return nil
}

func validateIngredientLines(lines []types.IngredientLine) error {
	if len(lines) == 0 {
		return validationErr("ingredients", "at least one ingredient is required")
	}
	seen := make(map[uuid.UUID]bool, len(lines))
	for _, line := range lines {
		if err := validateAmount("amount", line.Amount); err != nil {
			return err
		}
		if seen[line.ID] {
			return validationErr("ingredients", fmt.Sprintf("ingredient %s appears more than once", line.ID))
		}
		seen[line.ID] = true
	}
	return nil
}

// resolveTags loads the referenced tags; any unknown id fails the call.
func resolveTags(tx *gorm.DB, ids []uuid.UUID) ([]models.Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var tags []models.Tag
	if err := tx.Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, err
	}
	if len(tags) != len(ids) {
		return nil, validationErr("tags", "one or more tags do not exist")
	}
	return tags, nil
}

// resolveIngredients checks every referenced ingredient exists.
func resolveIngredients(tx *gorm.DB, lines []types.IngredientLine) error {
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ID)
	}
	var count int64
	if err := tx.Model(&models.Ingredient{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
		return err
	}
	if count != int64(len(ids)) {
		return validationErr("ingredients", "one or more ingredients do not exist")
	}
	return nil
}

func createIngredientRows(tx *gorm.DB, recipeID uuid.UUID, lines []types.IngredientLine) error {
	rows := make([]models.RecipeIngredient, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, models.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: line.ID,
			Amount:       line.Amount,
		})
	}
	return tx.Create(&rows).Error
}
