package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avolkov/plateful/backend/internal/models"
	"github.com/avolkov/plateful/backend/internal/types"
)

// RelationshipService manages the favorite, shopping-cart and subscription
// relations. Duplicate pairs are caught by the unique constraints; the
// translated gorm.ErrDuplicatedKey is surfaced as ErrConflict rather than
// pre-checked, so concurrent duplicate requests cannot race past the check.
type RelationshipService struct {
	db *gorm.DB
}

// NewRelationshipService creates a new RelationshipService instance
func NewRelationshipService(db *gorm.DB) *RelationshipService {
	return &RelationshipService{db: db}
}

// AddFavorite creates the (user, recipe) favorite pair and returns the
// recipe summary. Duplicates come back as ErrConflict.
func (s *RelationshipService) AddFavorite(ctx context.Context, userID, recipeID uuid.UUID) (*types.RecipeSummary, error) {
	recipe, err := s.findRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	fav := models.Favorite{UserID: userID, RecipeID: recipeID}
	if err := s.db.WithContext(ctx).Create(&fav).Error; err != nil {
		return nil, translateDuplicate(err)
	}
	return summarize(recipe), nil
}

// RemoveFavorite deletes the pair; a missing pair is ErrNotFound.
func (s *RelationshipService) RemoveFavorite(ctx context.Context, userID, recipeID uuid.UUID) error {
	res := s.db.WithContext(ctx).Where("user_id = ? AND recipe_id = ?", userID, recipeID).Delete(&models.Favorite{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AddToCart mirrors AddFavorite for the independent shopping-cart relation.
func (s *RelationshipService) AddToCart(ctx context.Context, userID, recipeID uuid.UUID) (*types.RecipeSummary, error) {
	recipe, err := s.findRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	entry := models.ShoppingCartEntry{UserID: userID, RecipeID: recipeID}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return nil, translateDuplicate(err)
	}
	return summarize(recipe), nil
}

// RemoveFromCart deletes the pair; a missing pair is ErrNotFound.
func (s *RelationshipService) RemoveFromCart(ctx context.Context, userID, recipeID uuid.UUID) error {
	res := s.db.WithContext(ctx).Where("user_id = ? AND recipe_id = ?", userID, recipeID).Delete(&models.ShoppingCartEntry{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Follow subscribes follower to author. Self-follow is a validation error
// for every user; a duplicate subscription is ErrConflict.
func (s *RelationshipService) Follow(ctx context.Context, followerID, authorID uuid.UUID) (*types.UserResponse, error) {
	if followerID == authorID {
		return nil, validationErr("author", "cannot subscribe to yourself")
	}
	var author models.User
	if err := s.db.WithContext(ctx).First(&author, "id = ?", authorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	sub := models.Subscription{FollowerID: followerID, AuthorID: authorID}
	if err := s.db.WithContext(ctx).Create(&sub).Error; err != nil {
		return nil, translateDuplicate(err)
	}
	return &types.UserResponse{
		ID:           author.ID,
		Username:     author.Username,
		Email:        author.Email,
		FirstName:    author.FirstName,
		LastName:     author.LastName,
		IsSubscribed: true,
	}, nil
}

// Unfollow is idempotent: deleting an absent subscription succeeds.
func (s *RelationshipService) Unfollow(ctx context.Context, followerID, authorID uuid.UUID) error {
	return s.db.WithContext(ctx).
		Where("follower_id = ? AND author_id = ?", followerID, authorID).
		Delete(&models.Subscription{}).Error
}

// ListFollowing returns a page of authors the follower subscribes to, each
// annotated relative to the viewer and carrying a capped recipe preview.
// recipesLimit <= 0 disables the cap.
func (s *RelationshipService) ListFollowing(ctx context.Context, followerID, viewerID uuid.UUID, limit, offset, recipesLimit int) ([]types.SubscriptionResponse, int64, error) {
	base := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id IN (?)", s.db.Model(&models.Subscription{}).Select("author_id").Where("follower_id = ?", followerID))

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var authors []models.User
	page := base.Order("created_at DESC")
	if limit > 0 {
		page = page.Limit(limit)
	}
	if offset > 0 {
		page = page.Offset(offset)
	}
	if err := page.Find(&authors).Error; err != nil {
		return nil, 0, err
	}

	viewerFollows := map[uuid.UUID]bool{}
	if len(authors) > 0 {
		ids := make([]uuid.UUID, 0, len(authors))
		for _, a := range authors {
			ids = append(ids, a.ID)
		}
		var subs []models.Subscription
		if err := s.db.WithContext(ctx).Where("follower_id = ? AND author_id IN ?", viewerID, ids).Find(&subs).Error; err != nil {
			return nil, 0, err
		}
		for _, sub := range subs {
			viewerFollows[sub.AuthorID] = true
		}
	}

	responses := make([]types.SubscriptionResponse, 0, len(authors))
	for _, author := range authors {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.Recipe{}).Where("author_id = ?", author.ID).Count(&count).Error; err != nil {
			return nil, 0, err
		}

		var recipes []models.Recipe
		q := s.db.WithContext(ctx).Where("author_id = ?", author.ID).Order("created_at DESC")
		if recipesLimit > 0 {
			q = q.Limit(recipesLimit)
		}
		if err := q.Find(&recipes).Error; err != nil {
			return nil, 0, err
		}

		resp := types.SubscriptionResponse{
			UserResponse: types.UserResponse{
				ID:           author.ID,
				Username:     author.Username,
				Email:        author.Email,
				FirstName:    author.FirstName,
				LastName:     author.LastName,
				IsSubscribed: viewerFollows[author.ID],
			},
			RecipesCount: count,
			Recipes:      make([]types.RecipeSummary, 0, len(recipes)),
		}
		for i := range recipes {
			resp.Recipes = append(resp.Recipes, *summarize(&recipes[i]))
		}
		responses = append(responses, resp)
	}
	return responses, total, nil
}

// IsSubscribed reports whether follower follows author.
func (s *RelationshipService) IsSubscribed(ctx context.Context, followerID, authorID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("follower_id = ? AND author_id = ?", followerID, authorID).
		Count(&count).Error
	return count > 0, err
}

func (s *RelationshipService) findRecipe(ctx context.Context, recipeID uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &recipe, nil
}

func summarize(r *models.Recipe) *types.RecipeSummary {
	return &types.RecipeSummary{
		ID:          r.ID,
		Name:        r.Name,
		Image:       r.Image,
		CookingTime: r.CookingTime,
	}
}

func translateDuplicate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrConflict
	}
	return err
}
