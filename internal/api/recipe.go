package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/avolkov/plateful/backend/internal/middleware"
	"github.com/avolkov/plateful/backend/internal/service"
	"github.com/avolkov/plateful/backend/internal/types"
)

type RecipeHandler struct {
	recipes       *service.RecipeService
	relationships *service.RelationshipService
	shoppingList  *service.ShoppingListService
	images        service.ImageStorage
	validator     middleware.TokenValidator
	limiter       *middleware.RateLimiter
}

func NewRecipeHandler(
	recipes *service.RecipeService,
	relationships *service.RelationshipService,
	shoppingList *service.ShoppingListService,
	images service.ImageStorage,
	validator middleware.TokenValidator,
	limiter *middleware.RateLimiter,
) *RecipeHandler {
	return &RecipeHandler{
		recipes:       recipes,
		relationships: relationships,
		shoppingList:  shoppingList,
		images:        images,
		validator:     validator,
		limiter:       limiter,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	optional := middleware.OptionalAuth(h.validator)
	required := middleware.AuthMiddleware(h.validator)
	limited := h.limiter.Middleware()

	recipes := router.Group("/recipes")
	{
		recipes.GET("", optional, h.ListRecipes)
		recipes.GET("/download_shopping_cart", required, h.DownloadShoppingCart)
		recipes.GET("/:id", optional, h.GetRecipe)
		recipes.POST("", required, limited, h.CreateRecipe)
		recipes.PATCH("/:id", required, limited, h.UpdateRecipe)
		recipes.DELETE("/:id", required, limited, h.DeleteRecipe)
		recipes.POST("/:id/favorite", required, h.FavoriteRecipe)
		recipes.DELETE("/:id/favorite", required, h.UnfavoriteRecipe)
		recipes.POST("/:id/shopping_cart", required, h.AddToShoppingCart)
		recipes.DELETE("/:id/shopping_cart", required, h.RemoveFromShoppingCart)
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	params := parsePageParams(c)
	filter := types.RecipeListFilter{
		TagSlug:        c.Query("tags"),
		Favorited:      isFlagSet(c.Query("is_favorited")),
		InShoppingCart: isFlagSet(c.Query("is_in_shopping_cart")),
		Limit:          params.Limit,
		Offset:         params.Offset(),
	}
	if author := c.Query("author"); author != "" {
		authorID, err := uuid.Parse(author)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid author id"})
			return
		}
		filter.AuthorID = &authorID
	}

	results, count, err := h.recipes.List(c.Request.Context(), filter, viewerID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, paginated(c, count, params, results))
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	recipeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	recipe, err := h.recipes.Get(c.Request.Context(), recipeID, viewerID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req types.CreateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	if req.Image != "" && h.images != nil {
		url, err := h.images.StoreRecipeImage(c.Request.Context(), req.Image)
		if err != nil {
			respondError(c, err)
			return
		}
		req.Image = url
	}

	recipe, err := h.recipes.Create(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, recipe)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	recipeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	var req types.UpdateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	if req.Image != nil && *req.Image != "" && h.images != nil {
		url, err := h.images.StoreRecipeImage(c.Request.Context(), *req.Image)
		if err != nil {
			respondError(c, err)
			return
		}
		req.Image = &url
	}

	recipe, err := h.recipes.Update(c.Request.Context(), recipeID, userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	recipeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	if err := h.recipes.Delete(c.Request.Context(), recipeID, userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "recipe deleted successfully"})
}

func (h *RecipeHandler) FavoriteRecipe(c *gin.Context) {
	h.addRelation(c, h.relationships.AddFavorite)
}

func (h *RecipeHandler) UnfavoriteRecipe(c *gin.Context) {
	h.removeRelation(c, h.relationships.RemoveFavorite, "recipe removed from favorites")
}

func (h *RecipeHandler) AddToShoppingCart(c *gin.Context) {
	h.addRelation(c, h.relationships.AddToCart)
}

func (h *RecipeHandler) RemoveFromShoppingCart(c *gin.Context) {
	h.removeRelation(c, h.relationships.RemoveFromCart, "recipe removed from shopping cart")
}

func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	items, err := h.shoppingList.Aggregate(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename=shopping_list.txt`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(h.shoppingList.Render(items)))
}

func (h *RecipeHandler) addRelation(c *gin.Context, add func(ctx context.Context, userID, recipeID uuid.UUID) (*types.RecipeSummary, error)) {
	recipeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	summary, err := add(c.Request.Context(), userID, recipeID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, summary)
}

func (h *RecipeHandler) removeRelation(c *gin.Context, remove func(ctx context.Context, userID, recipeID uuid.UUID) error, message string) {
	recipeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	if err := remove(c.Request.Context(), userID, recipeID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": message})
}

func isFlagSet(v string) bool {
	return v == "1" || v == "true"
}
