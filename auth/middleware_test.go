package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newProtectedRouter(authority *TokenAuthority) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/me", Middleware(authority), func(c *gin.Context) {
		userID, ok := UserID(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": userID, "roles": Roles(c)})
	})
	return router
}

func TestMiddleware(t *testing.T) {
	authority := NewTokenAuthority("secret", "", time.Hour)
	router := newProtectedRouter(authority)
	token, err := authority.GenerateToken("alice", []string{RoleAdmin})
	require.NoError(t, err)

	t.Run("should accept a bearer header", func(t *testing.T) {
		req := require.New(t)
		r := httptest.NewRequest(http.MethodGet, "/me", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, r)

		req.Equal(http.StatusOK, w.Code)
		var body struct {
			UserID string   `json:"user_id"`
			Roles  []string `json:"roles"`
		}
		req.NoError(json.Unmarshal(w.Body.Bytes(), &body))
		req.Equal("alice", body.UserID)
		req.Equal([]string{RoleAdmin}, body.Roles)
	})

	t.Run("should accept a query token", func(t *testing.T) {
		req := require.New(t)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me?token="+token, nil))
		req.Equal(http.StatusOK, w.Code)
	})

	t.Run("should reject a missing token", func(t *testing.T) {
		req := require.New(t)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))

		req.Equal(http.StatusUnauthorized, w.Code)
		var body struct {
			Status int    `json:"status"`
			Error  string `json:"error"`
		}
		req.NoError(json.Unmarshal(w.Body.Bytes(), &body))
		req.Equal(http.StatusUnauthorized, body.Status)
		req.Equal("authorization token is missing", body.Error)
	})

	t.Run("should reject an invalid token", func(t *testing.T) {
		req := require.New(t)
		r := httptest.NewRequest(http.MethodGet, "/me", nil)
		r.Header.Set("Authorization", "Bearer nope")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, r)

		req.Equal(http.StatusUnauthorized, w.Code)
	})

	t.Run("should ignore a non bearer scheme", func(t *testing.T) {
		req := require.New(t)
		r := httptest.NewRequest(http.MethodGet, "/me", nil)
		r.Header.Set("Authorization", "Basic "+token)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, r)

		req.Equal(http.StatusUnauthorized, w.Code)
	})
}
