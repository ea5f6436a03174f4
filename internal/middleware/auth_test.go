package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suteetoe/tenancy-service/internal/service"
	"github.com/suteetoe/tenancy-service/pkg/jwtutil"
)

type observed struct {
	identity *service.Identity
	scope    service.Scope
}

func runIdentify(t *testing.T, a *Authenticator, target, authorization string) observed {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if authorization != "" {
		req.Header.Set(echo.HeaderAuthorization, authorization)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	var got observed
	err := a.Identify(func(c echo.Context) error {
		got.identity, _ = IdentityFromContext(c)
		got.scope = ScopeFromContext(c)
		return nil
	})(c)
	require.NoError(t, err)
	return got
}

func TestIdentify(t *testing.T) {
	tokens, err := jwtutil.NewJWTUtil("middleware-test-key", time.Hour)
	require.NoError(t, err)
	userToken, err := tokens.GenerateToken("user-1", "9876543210", "property-1")
	require.NoError(t, err)
	supervisorToken, err := tokens.GenerateSupervisorToken()
	require.NoError(t, err)

	trusting := NewAuthenticator(tokens, true)
	strict := NewAuthenticator(tokens, false)

	tests := []struct {
		name          string
		auth          *Authenticator
		target        string
		authorization string
		wantIdentity  *service.Identity
		wantScope     service.Scope
	}{
		{
			name:      "anonymous",
			auth:      trusting,
			target:    "/complaints",
			wantScope: service.ScopeSelf,
		},
		{
			name:          "tenant token",
			auth:          trusting,
			target:        "/complaints",
			authorization: "Bearer " + userToken,
			wantIdentity:  &service.Identity{UserID: "user-1", Mobile: "9876543210", PropertyID: "property-1"},
			wantScope:     service.ScopeSelf,
		},
		{
			name:          "lowercase scheme",
			auth:          trusting,
			target:        "/complaints",
			authorization: "bearer " + userToken,
			wantIdentity:  &service.Identity{UserID: "user-1", Mobile: "9876543210", PropertyID: "property-1"},
			wantScope:     service.ScopeSelf,
		},
		{
			name:          "malformed header",
			auth:          trusting,
			target:        "/complaints",
			authorization: userToken,
			wantScope:     service.ScopeSelf,
		},
		{
			name:          "invalid token",
			auth:          trusting,
			target:        "/complaints",
			authorization: "Bearer garbage",
			wantScope:     service.ScopeSelf,
		},
		{
			name:          "supervisor token",
			auth:          strict,
			target:        "/complaints",
			authorization: "Bearer " + supervisorToken,
			wantScope:     service.ScopeSupervisor,
		},
		{
			name:      "trusted supervisor flag",
			auth:      trusting,
			target:    "/complaints?supervisor=true",
			wantScope: service.ScopeSupervisor,
		},
		{
			name:          "trusted flag keeps tenant identity",
			auth:          trusting,
			target:        "/complaints?supervisor=true",
			authorization: "Bearer " + userToken,
			wantIdentity:  &service.Identity{UserID: "user-1", Mobile: "9876543210", PropertyID: "property-1"},
			wantScope:     service.ScopeSupervisor,
		},
		{
			name:      "ignored supervisor flag",
			auth:      strict,
			target:    "/complaints?supervisor=true",
			wantScope: service.ScopeSelf,
		},
		{
			name:      "flag must be true",
			auth:      trusting,
			target:    "/complaints?supervisor=1",
			wantScope: service.ScopeSelf,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := runIdentify(t, tt.auth, tt.target, tt.authorization)
			assert.Equal(t, tt.wantIdentity, got.identity)
			assert.Equal(t, tt.wantScope, got.scope)
		})
	}
}

func TestRequireIdentity(t *testing.T) {
	e := echo.New()
	called := false
	next := func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	}

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/complaints", nil), rec)
	require.NoError(t, RequireIdentity(next)(c))
	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Unauthorized"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodPost, "/complaints", nil), rec)
	c.Set(identityKey, &service.Identity{UserID: "user-1"})
	require.NoError(t, RequireIdentity(next)(c))
	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
}
