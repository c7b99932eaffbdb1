package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"healthsync-server/internal/config"
	"healthsync-server/internal/models"
	"healthsync-server/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthMiddlewareTokenSources(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		JWTSecret:                 "test-secret",
		JWTRefreshSecret:          "test-refresh",
		JWTExpirationMinutes:      15,
		JWTRefreshExpirationHours: 1,
	}

	user := models.User{Role: models.RolePatient}
	user.ID = "patient-1"
	token, _, err := utils.GenerateTokens(&user, cfg)
	require.NoError(t, err)

	router := gin.New()
	router.GET("/resource", AuthMiddleware(cfg), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	do := func(target string, header http.Header) int {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		for key, values := range header {
			req.Header[key] = values
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	t.Run("bearer header accepted", func(t *testing.T) {
		code := do("/resource", http.Header{"Authorization": {"Bearer " + token}})
		assert.Equal(t, http.StatusOK, code)
	})

	t.Run("missing token refused", func(t *testing.T) {
		code := do("/resource", nil)
		assert.Equal(t, http.StatusUnauthorized, code)
	})

	t.Run("query token refused on plain requests", func(t *testing.T) {
		// Tokens in query strings end up in access logs; only websocket
		// upgrades, which cannot set headers from a browser, may use them.
		code := do("/resource?token="+token, nil)
		assert.Equal(t, http.StatusUnauthorized, code)
	})

	t.Run("query token accepted on websocket upgrades", func(t *testing.T) {
		code := do("/resource?token="+token, http.Header{
			"Connection": {"Upgrade"},
			"Upgrade":    {"websocket"},
		})
		assert.Equal(t, http.StatusOK, code)
	})

	t.Run("malformed bearer header refused", func(t *testing.T) {
		code := do("/resource", http.Header{"Authorization": {"Token " + token}})
		assert.Equal(t, http.StatusUnauthorized, code)
	})
}
