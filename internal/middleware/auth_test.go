package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/avolkov/plateful/backend/internal/types"
)

type stubValidator struct {
	claims *types.TokenClaims
}

func (v *stubValidator) ValidateToken(token string) (*types.TokenClaims, error) {
	if token == "valid-token" && v.claims != nil {
		return v.claims, nil
	}
	return nil, errors.New("invalid token")
}

func authTestRouter(handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", handler, func(c *gin.Context) {
		id, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusOK, gin.H{"anonymous": true})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": id.(uuid.UUID).String()})
	})
	return r
}

func get(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	userID := uuid.New()
	validator := &stubValidator{claims: &types.TokenClaims{UserID: userID, Username: "alice"}}
	r := authTestRouter(AuthMiddleware(validator))

	w := get(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = get(r, "NotBearer token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = get(r, "Bearer wrong-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = get(r, "Bearer valid-token")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), userID.String())
}

func TestOptionalAuth(t *testing.T) {
	userID := uuid.New()
	validator := &stubValidator{claims: &types.TokenClaims{UserID: userID, Username: "alice"}}
	r := authTestRouter(OptionalAuth(validator))

	// No header and malformed tokens both fall through as anonymous.
	w := get(r, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "anonymous")

	w = get(r, "Bearer wrong-token")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "anonymous")

	w = get(r, "Bearer valid-token")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), userID.String())
}
