package authz

import (
	"context"
	"strings"
	"sync"

	"zgw/pkg/platform/sentinel"
)

// InMemory is the test double for the authz store.
type InMemory struct {
	mu    sync.RWMutex
	apps  map[string]*Applicatie
	roles map[string]Rol
}

func NewInMemory() *InMemory {
	return &InMemory{
		apps:  make(map[string]*Applicatie),
		roles: make(map[string]Rol),
	}
}

// Seed registers an application. Client ids are case-insensitive.
func (s *InMemory) Seed(app *Applicatie) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apps[strings.ToLower(app.ClientID)] = app
}

// SeedRole registers a role profile.
func (s *InMemory) SeedRole(role Rol) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles[role.Naam] = role
}

func (s *InMemory) FindByClientID(_ context.Context, clientID string) (*Applicatie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, ok := s.apps[strings.ToLower(clientID)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *app
	clone.Autorisaties = append([]Autorisatie(nil), app.Autorisaties...)
	return &clone, nil
}

func (s *InMemory) FindRoles(_ context.Context, names []string) ([]Rol, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Rol
	for _, name := range names {
		if role, ok := s.roles[name]; ok {
			out = append(out, role)
		}
	}
	return out, nil
}
