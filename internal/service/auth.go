package service

import (
	"context"
	"errors"

	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/deppfellow/app-functions/internal/config"
	"github.com/deppfellow/app-functions/internal/model"
	"github.com/deppfellow/app-functions/internal/server"
)

// AuthService configures bearer token verification for the selected provider.
//
// For clerk, verification happens inside the Clerk HTTP middleware and
// Verifier is nil. For jwt, Verifier checks tokens directly.
type AuthService struct {
	server   *server.Server
	Provider string
	Verifier TokenVerifier
}

func NewAuthService(s *server.Server) (*AuthService, error) {
	auth := &AuthService{server: s, Provider: s.Config.Auth.Provider}

	switch auth.Provider {
	case config.AuthProviderClerk:
		clerk.SetKey(s.Config.Auth.SecretKey)
	case config.AuthProviderJWT:
		verifier, err := NewJWTVerifier(s.Config.Auth.JWTSecret, s.Config.Auth.Issuer)
		if err != nil {
			return nil, err
		}
		auth.Verifier = verifier
	}

	return auth, nil
}

// ClerkCustomClaims are the session token template fields read for clerk.
type ClerkCustomClaims struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// ClaimsFromClerk converts verified Clerk session claims.
func ClaimsFromClerk(c *clerk.SessionClaims) model.Claims {
	claims := model.Claims{UID: c.Subject}
	if custom, ok := c.Custom.(*ClerkCustomClaims); ok && custom != nil {
		claims.Email = custom.Email
		claims.Name = custom.Name
		claims.Picture = custom.Picture
	}
	return claims
}

// Verify checks a raw token with the configured verifier.
func (a *AuthService) Verify(ctx context.Context, token string) (model.Claims, error) {
	if a.Verifier == nil {
		return model.Claims{}, errors.New("no direct verifier for provider " + a.Provider)
	}
	return a.Verifier.Verify(ctx, token)
}
