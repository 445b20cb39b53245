package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"showpro/internal/access"
	"showpro/internal/config"
	"showpro/internal/identity"
	"showpro/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "test-secret"
	testUser   = "0b7e4c52-6a4f-4d8e-b2a1-93f1d0c6e7aa"
)

type stubRoles struct {
	role  string
	err   error
	calls int
}

func (s *stubRoles) Resolve(ctx context.Context, userID string) (string, error) {
	s.calls++
	return s.role, s.err
}

func token(t *testing.T, secret string, method jwt.SigningMethod, claims Claims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func validClaims() Claims {
	return Claims{
		Email: "ops@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   testUser,
			Issuer:    "showpro-auth",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func authRouter(roles RoleResolver, resource string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	api := r.Group("/api")
	api.Use(Auth(config.AuthConfig{JWTSecret: testSecret, Issuer: "showpro-auth"}, roles))
	api.Any("/thing", RequirePermission(resource), func(c *gin.Context) {
		id, _ := identity.FromContext(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{
			"user":       id.UserID.String(),
			"email":      id.Email,
			"role":       id.Role,
			"request_id": logger.RequestIDFromContext(c.Request.Context()),
		})
	})
	api.POST("/thing/mark", RequireAction(resource, access.Update), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func do(r http.Handler, method, path, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthAcceptsValidToken(t *testing.T) {
	roles := &stubRoles{role: access.RoleStaff}
	r := authRouter(roles, "bookings")

	w := do(r, http.MethodGet, "/api/thing", token(t, testSecret, jwt.SigningMethodHS256, validClaims()))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), testUser)
	assert.Contains(t, w.Body.String(), `"role":"staff"`)
	assert.Contains(t, w.Body.String(), "ops@example.com")
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	assert.Equal(t, 1, roles.calls)
}

func TestAuthRejects(t *testing.T) {
	r := authRouter(&stubRoles{role: access.RoleAdmin}, "bookings")

	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	otherIssuer := validClaims()
	otherIssuer.Issuer = "someone-else"
	badSubject := validClaims()
	badSubject.Subject = "42"

	cases := map[string]string{
		"missing":      "",
		"garbage":      "not-a-jwt",
		"wrong secret": token(t, "other", jwt.SigningMethodHS256, validClaims()),
		"wrong alg":    token(t, testSecret, jwt.SigningMethodHS512, validClaims()),
		"expired":      token(t, testSecret, jwt.SigningMethodHS256, expired),
		"issuer":       token(t, testSecret, jwt.SigningMethodHS256, otherIssuer),
		"subject":      token(t, testSecret, jwt.SigningMethodHS256, badSubject),
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			w := do(r, http.MethodGet, "/api/thing", tok)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestAuthRoleLookupFailure(t *testing.T) {
	r := authRouter(&stubRoles{err: errors.New("db down")}, "bookings")

	w := do(r, http.MethodGet, "/api/thing", token(t, testSecret, jwt.SigningMethodHS256, validClaims()))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRequirePermission(t *testing.T) {
	tok := token(t, "test-secret", jwt.SigningMethodHS256, validClaims())

	tests := []struct {
		role     string
		resource string
		method   string
		path     string
		want     int
	}{
		{access.RoleViewer, "bookings", http.MethodGet, "/api/thing", http.StatusOK},
		{access.RoleViewer, "bookings", http.MethodPost, "/api/thing", http.StatusForbidden},
		{access.RoleStaff, "bookings", http.MethodPut, "/api/thing", http.StatusOK},
		{access.RoleStaff, "bookings", http.MethodDelete, "/api/thing", http.StatusForbidden},
		{access.RoleStaff, access.ResImport, http.MethodPost, "/api/thing", http.StatusForbidden},
		{access.RoleManager, access.ResRoles, http.MethodPut, "/api/thing", http.StatusForbidden},
		{access.RoleAdmin, access.ResRoles, http.MethodPut, "/api/thing", http.StatusOK},
		{access.RoleStaff, access.ResEmails, http.MethodPost, "/api/thing/mark", http.StatusNoContent},
		{access.RoleViewer, access.ResEmails, http.MethodPost, "/api/thing/mark", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.role+" "+tt.method+" "+tt.resource, func(t *testing.T) {
			r := authRouter(&stubRoles{role: tt.role}, tt.resource)
			w := do(r, tt.method, tt.path, tok)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	w := do(r, http.MethodOptions, "/x", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "DELETE")
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), Recovery())
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := do(r, http.MethodGet, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal server error")
}

func TestRequestIDKeepsClientValue(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), Timeout(time.Second))
	r.GET("/id", func(c *gin.Context) {
		_, hasDeadline := c.Request.Context().Deadline()
		c.JSON(http.StatusOK, gin.H{"id": logger.RequestIDFromContext(c.Request.Context()), "deadline": hasDeadline})
	})

	req := httptest.NewRequest(http.MethodGet, "/id", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	assert.JSONEq(t, `{"id":"abc-123","deadline":true}`, w.Body.String())
}
