package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/tenancy-service/internal/service"
	"github.com/suteetoe/tenancy-service/pkg/jwtutil"
	"github.com/suteetoe/tenancy-service/pkg/logger"
	"github.com/suteetoe/tenancy-service/prometheus"
	"go.uber.org/zap"
)

const (
	identityKey = "identity"
	scopeKey    = "scope"
)

// Authenticator resolves the caller identity and complaint scope of a request
type Authenticator struct {
	tokens              *jwtutil.JWTUtil
	trustSupervisorFlag bool
}

// NewAuthenticator creates an Authenticator. When trustSupervisorFlag is set
// the unauthenticated ?supervisor=true query flag grants supervisor scope.
func NewAuthenticator(tokens *jwtutil.JWTUtil, trustSupervisorFlag bool) *Authenticator {
	return &Authenticator{tokens: tokens, trustSupervisorFlag: trustSupervisorFlag}
}

func bearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// Identify stores the identity and scope of the caller on the context. A
// missing or invalid token leaves the request anonymous; it is never rejected here.
func (a *Authenticator) Identify(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)
		scope := service.ScopeSelf

		if header := c.Request().Header.Get(echo.HeaderAuthorization); header != "" {
			tokenString, ok := bearerToken(header)
			if !ok {
				log.Warn("Invalid Authorization header format")
				prometheus.RecordAuthError("malformed_header")
			} else if claims, err := a.tokens.ValidateToken(tokenString); err != nil {
				log.Warn("Invalid JWT token", zap.Error(err))
				prometheus.RecordAuthError("invalid_token")
			} else if claims.IsSupervisor() {
				scope = service.ScopeSupervisor
			} else {
				c.Set(identityKey, &service.Identity{
					UserID:     claims.UserID,
					Mobile:     claims.Mobile,
					PropertyID: claims.PropertyID,
				})
			}
		}

		if scope != service.ScopeSupervisor && c.QueryParam("supervisor") == "true" {
			if a.trustSupervisorFlag {
				log.Warn("Supervisor scope granted from query flag",
					zap.String("path", c.Path()),
					zap.String("ip", c.RealIP()))
				prometheus.SupervisorFlagCounter.Inc()
				scope = service.ScopeSupervisor
			} else {
				log.Warn("Ignoring supervisor query flag")
			}
		}

		c.Set(scopeKey, scope)
		return next(c)
	}
}

// RequireIdentity rejects requests without a tenant identity
func RequireIdentity(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := IdentityFromContext(c); !ok {
			prometheus.RecordAuthError("missing_identity")
			return c.JSON(http.StatusUnauthorized, echo.Map{
				"success": false,
				"message": "Unauthorized",
			})
		}
		return next(c)
	}
}

// IdentityFromContext returns the tenant identity resolved by Identify
func IdentityFromContext(c echo.Context) (*service.Identity, bool) {
	identity, ok := c.Get(identityKey).(*service.Identity)
	return identity, ok && identity != nil
}

// ScopeFromContext returns the complaint scope resolved by Identify
func ScopeFromContext(c echo.Context) service.Scope {
	if scope, ok := c.Get(scopeKey).(service.Scope); ok {
		return scope
	}
	return service.ScopeSelf
}
