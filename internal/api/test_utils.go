package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/avolkov/plateful/backend/internal/middleware"
	"github.com/avolkov/plateful/backend/internal/service"
	"github.com/avolkov/plateful/backend/internal/testhelpers"
	"github.com/avolkov/plateful/backend/internal/types"
)

// testEnv bundles the router and the services the tests seed fixtures with.
type testEnv struct {
	router        *gin.Engine
	db            *gorm.DB
	auth          *service.AuthService
	recipes       *service.RecipeService
	relationships *service.RelationshipService
}

// setupTestEnv wires the full handler stack against an in-memory database.
// The image store is nil, so image values pass through untouched, and the
// rate limiter has no redis client, so it never blocks.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupTestDatabase(t)

	auth := service.NewAuthService(db, "test-secret")
	recipes := service.NewRecipeService(db)
	relationships := service.NewRelationshipService(db)
	shoppingList := service.NewShoppingListService(db)
	catalog := service.NewCatalogService(db)
	limiter := middleware.NewMutationRateLimiter(nil)

	engine := gin.New()
	NewHealthHandler(nil).RegisterRoutes(engine)
	v1 := engine.Group("/api/v1")
	NewAuthHandler(auth).RegisterRoutes(v1)
	NewRecipeHandler(recipes, relationships, shoppingList, nil, auth, limiter).RegisterRoutes(v1)
	NewUserHandler(auth, relationships, auth).RegisterRoutes(v1)
	NewCatalogHandler(catalog).RegisterRoutes(v1)

	return &testEnv{
		router:        engine,
		db:            db,
		auth:          auth,
		recipes:       recipes,
		relationships: relationships,
	}
}

// registerUser creates an account through the service and returns its token
// and id.
func (env *testEnv) registerUser(t *testing.T, username string) (string, *types.TokenClaims) {
	t.Helper()

	token, err := env.auth.Register(context.Background(), &types.RegisterRequest{
		Username:  username,
		Email:     username + "@example.com",
		FirstName: "Test",
		LastName:  "User",
		Password:  "password123",
	})
	require.NoError(t, err)

	claims, err := env.auth.ValidateToken(token)
	require.NoError(t, err)
	return token, claims
}

// request performs an HTTP request against the test router. A non-nil body
// is JSON-encoded; an empty token leaves the request anonymous.
func (env *testEnv) request(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), "body: %s", w.Body.String())
}
