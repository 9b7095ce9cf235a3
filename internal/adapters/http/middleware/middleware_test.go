package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/wellness-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/wellness-service/internal/platform/config"
)

const testSecret = "a-test-secret-of-enough-length"

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()

	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	return body
}

func TestRequestID(t *testing.T) {
	tests := []struct {
		name    string
		inbound string
	}{
		{name: "generates when absent"},
		{name: "keeps inbound", inbound: "req-123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var fromGin, fromCtx string

			router := gin.New()
			router.Use(RequestID())
			router.GET("/x", func(c *gin.Context) {
				fromGin = GetRequestID(c)
				fromCtx = RequestIDFromContext(c.Request.Context())
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			if tt.inbound != "" {
				req.Header.Set(HeaderRequestID, tt.inbound)
			}

			w := serve(router, req)

			require.NotEmpty(t, fromGin)
			assert.Equal(t, fromGin, fromCtx)
			assert.Equal(t, fromGin, w.Header().Get(HeaderRequestID))

			if tt.inbound != "" {
				assert.Equal(t, tt.inbound, fromGin)
			}
		})
	}
}

func TestCorrelationID_PropagatesToContext(t *testing.T) {
	var fromCtx string

	router := gin.New()
	router.Use(CorrelationID())
	router.GET("/x", func(c *gin.Context) {
		fromCtx = CorrelationIDFromContext(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(HeaderCorrelationID, "corr-9")

	w := serve(router, req)

	assert.Equal(t, "corr-9", fromCtx)
	assert.Equal(t, "corr-9", w.Header().Get(HeaderCorrelationID))
}

func TestContextIDs_NilAndEmpty(t *testing.T) {
	//nolint:staticcheck // nil context is part of the contract
	assert.Empty(t, RequestIDFromContext(nil))
	assert.Empty(t, CorrelationIDFromContext(context.Background()))
}

func signToken(t *testing.T, claims jwt.RegisteredClaims, secret string) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)

	return token
}

func authRouter(cfg *config.AuthConfig, caller *string) *gin.Engine {
	router := gin.New()
	router.Use(Authenticate(cfg))
	router.GET("/me", func(c *gin.Context) {
		*caller = Caller(c)
		c.Status(http.StatusOK)
	})
	router.POST("/write", RequireAuth(cfg), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	return router
}

func TestAuthenticate_Disabled(t *testing.T) {
	cfg := &config.AuthConfig{SubjectHeader: "X-User-ID"}

	var caller string

	router := authRouter(cfg, &caller)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("X-User-ID", "alice")
	serve(router, req)
	assert.Equal(t, "alice", caller)

	serve(router, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, "anonymous", caller)

	w := serve(router, httptest.NewRequest(http.MethodPost, "/write", nil))
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestAuthenticate_Enabled(t *testing.T) {
	cfg := &config.AuthConfig{
		Enabled:       true,
		JWTSecret:     testSecret,
		Issuer:        "wellness",
		Audience:      "wellness-api",
		ClockSkew:     time.Second,
		SubjectHeader: "X-User-ID",
	}

	valid := jwt.RegisteredClaims{
		Subject:   "bob",
		Issuer:    "wellness",
		Audience:  jwt.ClaimStrings{"wellness-api"},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}

	t.Run("valid token names caller", func(t *testing.T) {
		var caller string

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, valid, testSecret))
		req.Header.Set("X-User-ID", "mallory")

		w := serve(authRouter(cfg, &caller), req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "bob", caller)
	})

	t.Run("header ignored without token", func(t *testing.T) {
		var caller string

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("X-User-ID", "mallory")

		serve(authRouter(cfg, &caller), req)

		assert.Equal(t, "anonymous", caller)
	})

	rejected := map[string]func(t *testing.T) string{
		"wrong secret": func(t *testing.T) string { return signToken(t, valid, "another-secret-of-enough-length") },
		"expired": func(t *testing.T) string {
			c := valid
			c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
			return signToken(t, c, testSecret)
		},
		"wrong issuer": func(t *testing.T) string {
			c := valid
			c.Issuer = "someone-else"
			return signToken(t, c, testSecret)
		},
		"no subject": func(t *testing.T) string {
			c := valid
			c.Subject = ""
			return signToken(t, c, testSecret)
		},
		"garbage": func(*testing.T) string { return "not.a.jwt" },
	}

	for name, token := range rejected {
		t.Run(name, func(t *testing.T) {
			var caller string

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			req.Header.Set("Authorization", "Bearer "+token(t))

			w := serve(authRouter(cfg, &caller), req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, dto.ErrorCodeUnauthorized, decodeError(t, w).Error.Code)
			assert.Empty(t, caller)
		})
	}

	t.Run("write requires token", func(t *testing.T) {
		var caller string

		router := authRouter(cfg, &caller)

		w := serve(router, httptest.NewRequest(http.MethodPost, "/write", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		req := httptest.NewRequest(http.MethodPost, "/write", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, valid, testSecret))
		w = serve(router, req)
		assert.Equal(t, http.StatusCreated, w.Code)
	})
}

func TestBearerToken(t *testing.T) {
	tests := map[string]struct {
		token string
		ok    bool
	}{
		"Bearer abc":  {token: "abc", ok: true},
		"bearer abc ": {token: "abc", ok: true},
		"Basic abc":   {},
		"Bearer":      {},
		"":            {},
	}

	for header, want := range tests {
		token, ok := bearerToken(header)
		assert.Equal(t, want.ok, ok, header)
		assert.Equal(t, want.token, token, header)
	}
}

func TestRecovery(t *testing.T) {
	router := gin.New()
	router.Use(Recovery())
	router.GET("/boom", func(*gin.Context) {
		panic("kaboom")
	})

	w := serve(router, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, dto.ErrorCodeInternal, decodeError(t, w).Error.Code)
}

func TestTimeout(t *testing.T) {
	router := gin.New()
	router.Use(Timeout(20 * time.Millisecond))
	router.GET("/slow", func(c *gin.Context) {
		<-c.Request.Context().Done()
	})
	router.GET("/fast", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	w := serve(router, httptest.NewRequest(http.MethodGet, "/slow", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, dto.ErrorCodeTimeout, decodeError(t, w).Error.Code)

	w = serve(router, httptest.NewRequest(http.MethodGet, "/fast", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestCORS(t *testing.T) {
	router := gin.New()
	router.Use(CORS(&config.CORSConfig{
		Enabled:        true,
		AllowedOrigins: []string{"https://app.example.com"},
		MaxAge:         time.Hour,
	}))
	router.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)

	w := serve(router, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example.com")

	w = serve(router, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestLogging_PassesThrough(t *testing.T) {
	router := gin.New()
	router.Use(Logging("/skip"))
	router.GET("/x", func(c *gin.Context) { c.Status(http.StatusTeapot) })
	router.GET("/skip", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusTeapot, serve(router, httptest.NewRequest(http.MethodGet, "/x", nil)).Code)
	assert.Equal(t, http.StatusOK, serve(router, httptest.NewRequest(http.MethodGet, "/skip", nil)).Code)
}
