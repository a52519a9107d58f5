// Package requestcontext provides HTTP-independent context accessors for request-scoped values.
//
// This package defines context keys and getter/setter functions for values that are
// typically set by middleware but consumed by services. By keeping this package free
// of net/http dependencies, services can import only what they need without pulling
// in HTTP-related code.
//
// Usage in services (read values):
//
//	clientID := requestcontext.ClientID(ctx)
//	requestID := requestcontext.RequestID(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in middleware (set values):
//
//	ctx = requestcontext.WithClientID(ctx, clientID)
//	ctx = requestcontext.WithRequestID(ctx, requestID)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
//	ctx = requestcontext.WithAuditToelichting(ctx, "correctie na bezwaar")
package requestcontext

import (
	"context"
	"time"
)

// Context key types (unexported for encapsulation).
type (
	clientIDKey         struct{}
	userIDKey           struct{}
	userRepresentationKey struct{}
	rolesKey            struct{}
	auditToelichtingKey struct{}
	requestIDKey        struct{}
	requestTimeKey      struct{}
)

// Exported context keys for direct use in tests that need context.WithValue.
var (
	ContextKeyClientID           = clientIDKey{}
	ContextKeyUserID             = userIDKey{}
	ContextKeyUserRepresentation = userRepresentationKey{}
	ContextKeyRoles              = rolesKey{}
	ContextKeyAuditToelichting   = auditToelichtingKey{}
	ContextKeyRequestID          = requestIDKey{}
	ContextKeyRequestTime        = requestTimeKey{}
)

// -----------------------------------------------------------------------------
// Auth context (application client, acting user, roles)
// -----------------------------------------------------------------------------

// ClientID retrieves the authenticated application's client id from the context.
func ClientID(ctx context.Context) string {
	if clientID, ok := ctx.Value(ContextKeyClientID).(string); ok {
		return clientID
	}
	return ""
}

// WithClientID injects an application client id into the context.
func WithClientID(ctx context.Context, clientID string) context.Context {
	return context.WithValue(ctx, ContextKeyClientID, clientID)
}

// UserID retrieves the acting user's identifier (JWT user_id claim).
func UserID(ctx context.Context) string {
	if userID, ok := ctx.Value(ContextKeyUserID).(string); ok {
		return userID
	}
	return ""
}

// WithUserID injects a user id into the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ContextKeyUserID, userID)
}

// UserRepresentation retrieves the human-readable actor name.
func UserRepresentation(ctx context.Context) string {
	if rep, ok := ctx.Value(ContextKeyUserRepresentation).(string); ok {
		return rep
	}
	return ""
}

// WithUserRepresentation injects a human-readable actor name.
func WithUserRepresentation(ctx context.Context, rep string) context.Context {
	return context.WithValue(ctx, ContextKeyUserRepresentation, rep)
}

// Roles retrieves the role names carried by the token, nil when absent.
func Roles(ctx context.Context) []string {
	if roles, ok := ctx.Value(ContextKeyRoles).([]string); ok {
		return roles
	}
	return nil
}

// WithRoles injects token roles into the context.
func WithRoles(ctx context.Context, roles []string) context.Context {
	return context.WithValue(ctx, ContextKeyRoles, roles)
}

// -----------------------------------------------------------------------------
// Audit metadata
// -----------------------------------------------------------------------------

// AuditToelichting retrieves the X-Audit-Toelichting header value.
func AuditToelichting(ctx context.Context) string {
	if note, ok := ctx.Value(ContextKeyAuditToelichting).(string); ok {
		return note
	}
	return ""
}

// WithAuditToelichting injects an audit note into the context.
func WithAuditToelichting(ctx context.Context, note string) context.Context {
	return context.WithValue(ctx, ContextKeyAuditToelichting, note)
}

// -----------------------------------------------------------------------------
// Request metadata
// -----------------------------------------------------------------------------

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// -----------------------------------------------------------------------------
// Request time
// -----------------------------------------------------------------------------

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() if not set (for non-HTTP contexts like workers, CLI, tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context.
// Useful for:
//   - Service unit tests that don't run the full HTTP middleware chain
//   - Workers that need consistent time within a batch operation
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
