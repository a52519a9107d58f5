package zgwjwt

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "zgw/pkg/domain-errors"
	"zgw/pkg/platform/sentinel"
)

type staticSecrets map[string]string

func (s staticSecrets) SecretFor(_ context.Context, clientID string) (string, error) {
	secret, ok := s[clientID]
	if !ok {
		return "", sentinel.ErrNotFound
	}
	return secret, nil
}

// contextSecrets refuses lookups once the caller's context is done.
type contextSecrets struct {
	inner staticSecrets
}

func (c contextSecrets) SecretFor(ctx context.Context, clientID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return c.inner.SecretFor(ctx, clientID)
}

var jwtService = NewService(staticSecrets{"open-zaak": "test-signing-key"})

func Test_MintAndValidate(t *testing.T) {
	token, err := Mint("open-zaak", "test-signing-key", "user-123", "A. Ambtenaar")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := jwtService.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "open-zaak", claims.ClientID)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "A. Ambtenaar", claims.UserRepresentation)
}

func Test_ValidateToken_InvalidToken(t *testing.T) {
	_, err := jwtService.ValidateToken(context.Background(), "invalid-token-string")
	require.ErrorIs(t, err, dErrors.New(dErrors.CodeUnauthorized, "invalid token"))
}

func Test_ValidateToken_UnknownClient(t *testing.T) {
	token, err := Mint("unregistered", "some-secret", "", "")
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(context.Background(), token)
	require.ErrorIs(t, err, dErrors.New(dErrors.CodeUnauthorized, "invalid token"))
}

func Test_ValidateToken_WrongSecret(t *testing.T) {
	token, err := Mint("open-zaak", "wrong-secret", "", "")
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(context.Background(), token)
	require.ErrorIs(t, err, dErrors.New(dErrors.CodeUnauthorized, "invalid token"))
}

func Test_ValidateToken_ExpiredToken(t *testing.T) {
	now := time.Now()
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		ClientID: "open-zaak",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "open-zaak",
			IssuedAt:  jwt.NewNumericDate(now.Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
		},
	})
	tokenString, err := expired.SignedString([]byte("test-signing-key"))
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(context.Background(), tokenString)
	require.ErrorIs(t, err, dErrors.New(dErrors.CodeJWTExpired, "token has expired"))
}

func Test_ValidateToken_SecretLookupSeesCallerContext(t *testing.T) {
	token, err := Mint("open-zaak", "test-signing-key", "", "")
	require.NoError(t, err)

	svc := NewService(contextSecrets{inner: staticSecrets{"open-zaak": "test-signing-key"}})

	ctx, cancel := context.WithCancel(context.Background())
	_, err = svc.ValidateToken(ctx, token)
	require.NoError(t, err)

	cancel()
	_, err = svc.ValidateToken(ctx, token)
	require.ErrorIs(t, err, dErrors.New(dErrors.CodeUnauthorized, "invalid token"))
}

func Test_ValidateToken_RolesClaim(t *testing.T) {
	now := time.Now()
	withRoles := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		ClientID: "open-zaak",
		Roles:    []string{"behandelaar"},
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "open-zaak",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	})
	tokenString, err := withRoles.SignedString([]byte("test-signing-key"))
	require.NoError(t, err)

	claims, err := jwtService.ValidateToken(context.Background(), tokenString)
	require.NoError(t, err)
	assert.Equal(t, []string{"behandelaar"}, claims.Roles)
}
