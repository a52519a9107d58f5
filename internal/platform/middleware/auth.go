package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	dErrors "zgw/pkg/domain-errors"
	"zgw/pkg/platform/httputil"
	"zgw/pkg/requestcontext"
)

// Claims represents the claims we expect from the JWT validator.
type Claims struct {
	ClientID           string
	UserID             string
	UserRepresentation string
	Roles              []string
}

// JWTValidator defines the interface for validating JWT tokens.
type JWTValidator interface {
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// RequireAuth rejects requests without a valid Bearer token and stores the
// token's actor claims in the request context.
func RequireAuth(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing or invalid Authorization header"))
				return
			}

			claims, err := validator.ValidateToken(ctx, token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				httputil.WriteError(w, err)
				return
			}

			ctx = requestcontext.WithClientID(ctx, claims.ClientID)
			ctx = requestcontext.WithUserID(ctx, claims.UserID)
			ctx = requestcontext.WithUserRepresentation(ctx, claims.UserRepresentation)
			if len(claims.Roles) > 0 {
				ctx = requestcontext.WithRoles(ctx, claims.Roles)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
