package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/clerk/clerk-sdk-go/v2"
	clerkhttp "github.com/clerk/clerk-sdk-go/v2/http"
	"github.com/deppfellow/app-functions/internal/config"
	"github.com/deppfellow/app-functions/internal/errs"
	"github.com/deppfellow/app-functions/internal/model"
	"github.com/deppfellow/app-functions/internal/server"
	"github.com/deppfellow/app-functions/internal/service"
	"github.com/labstack/echo/v4"
)

const (
	// ClaimsKey holds the verified model.Claims in the echo context.
	ClaimsKey = "claims"

	unauthorizedMessage = "Unauthorized"
)

// AuthMiddleware verifies the bearer token on protected routes.
type AuthMiddleware struct {
	server *server.Server
	auth   *service.AuthService
}

func NewAuthMiddleware(s *server.Server, auth *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{
		server: s,
		auth:   auth,
	}
}

// RequireAuth rejects the request with 403 Unauthorized unless it carries a
// valid "Authorization: Bearer <token>" header. On success the claims are
// stored under ClaimsKey and the uid under UserIDKey.
func (a *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	if a.auth.Provider == config.AuthProviderClerk {
		return a.requireClerk(next)
	}
	return a.requireBearer(next)
}

// requireClerk delegates verification to Clerk's net/http middleware.
func (a *AuthMiddleware) requireClerk(next echo.HandlerFunc) echo.HandlerFunc {
	return echo.WrapMiddleware(
		clerkhttp.WithHeaderAuthorization(
			clerkhttp.CustomClaimsConstructor(func(context.Context) any {
				return &service.ClerkCustomClaims{}
			}),
			clerkhttp.AuthorizationFailureHandler(http.HandlerFunc(a.writeClerkFailure)),
		))(
		func(c echo.Context) error {
			sessionClaims, ok := clerk.SessionClaimsFromContext(c.Request().Context())
			if !ok {
				GetLogger(c).Warn().
					Str("function", "RequireAuth").
					Msg("could not get session claims from context")
				return errs.NewForbiddenError(unauthorizedMessage, false)
			}

			return a.authenticated(c, next, service.ClaimsFromClerk(sessionClaims))
		})
}

// writeClerkFailure renders the same body GlobalErrorHandler would, since
// Clerk stops the chain before echo sees an error.
func (a *AuthMiddleware) writeClerkFailure(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	body := errs.NewForbiddenError(unauthorizedMessage, false)

	w.Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	w.WriteHeader(body.Status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		a.server.Logger.Error().
			Err(err).
			Str("function", "RequireAuth").
			Dur("duration", time.Since(start)).
			Msg("failed to write JSON response")
		return
	}

	a.server.Logger.Warn().
		Str("function", "RequireAuth").
		Str("path", r.URL.Path).
		Msg("clerk rejected bearer token")
}

// requireBearer verifies the token with the configured TokenVerifier.
func (a *AuthMiddleware) requireBearer(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
		if !ok {
			GetLogger(c).Warn().Str("function", "RequireAuth").Msg("missing bearer token")
			return errs.NewForbiddenError(unauthorizedMessage, false)
		}

		claims, err := a.auth.Verify(c.Request().Context(), token)
		if err != nil {
			GetLogger(c).Warn().Err(err).Str("function", "RequireAuth").Msg("token verification failed")
			return errs.NewForbiddenError(unauthorizedMessage, false)
		}

		return a.authenticated(c, next, claims)
	}
}

func (a *AuthMiddleware) authenticated(c echo.Context, next echo.HandlerFunc, claims model.Claims) error {
	c.Set(ClaimsKey, claims)
	c.Set(UserIDKey, claims.UID)

	// Re-scope the request logger now that the user is known.
	l := GetLogger(c).With().Str("user_id", claims.UID).Logger()
	setLogger(c, &l)

	l.Debug().Str("function", "RequireAuth").Msg("user authenticated successfully")

	return next(c)
}

// bearerToken extracts the token from an Authorization header value.
// The scheme is case-insensitive.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// GetClaims returns the claims stored by RequireAuth.
func GetClaims(c echo.Context) (model.Claims, bool) {
	claims, ok := c.Get(ClaimsKey).(model.Claims)
	return claims, ok
}
