package authz

import (
	"context"
)

// Store persists applications and roles. Writes go through the AC admin
// surface which is out of scope here; these services only read.
type Store interface {
	FindByClientID(ctx context.Context, clientID string) (*Applicatie, error)
	FindRoles(ctx context.Context, names []string) ([]Rol, error)
}
