// Package zgwjwt mints and validates the HS256 tokens the ZGW services
// exchange. Inbound tokens identify a client application; outbound tokens are
// minted per call against the credentials of the registered peer service.
package zgwjwt

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"zgw/internal/platform/middleware"
	dErrors "zgw/pkg/domain-errors"
)

// Claims carries the ZGW token payload.
type Claims struct {
	ClientID           string   `json:"client_id"`
	UserID             string   `json:"user_id"`
	UserRepresentation string   `json:"user_representation"`
	Roles              []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// SecretSource resolves the shared secret for a client id. The authz store
// implements this against the applicatie table.
type SecretSource interface {
	SecretFor(ctx context.Context, clientID string) (string, error)
}

// Service handles JWT creation and validation.
type Service struct {
	secrets SecretSource
}

func NewService(secrets SecretSource) *Service {
	return &Service{secrets: secrets}
}

// Mint produces a short-lived token for an outbound call using the peer's
// registered credentials.
func Mint(clientID, secret, userID, userRepresentation string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		ClientID:           clientID,
		UserID:             userID,
		UserRepresentation: userRepresentation,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    clientID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(5 * time.Minute)),
		},
	})
	return token.SignedString([]byte(secret))
}

// ValidateToken parses and verifies an inbound token. The signing secret is
// looked up by the unverified client_id claim, then the signature and expiry
// are checked against it.
func (s *Service) ValidateToken(ctx context.Context, tokenString string) (*middleware.Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		inner, ok := token.Claims.(*Claims)
		if !ok || inner.ClientID == "" {
			return nil, jwt.ErrTokenInvalidClaims
		}
		secret, err := s.secrets.SecretFor(ctx, inner.ClientID)
		if err != nil {
			return nil, err
		}
		return []byte(secret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeJWTExpired, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	return &middleware.Claims{
		ClientID:           claims.ClientID,
		UserID:             claims.UserID,
		UserRepresentation: claims.UserRepresentation,
		Roles:              claims.Roles,
	}, nil
}
