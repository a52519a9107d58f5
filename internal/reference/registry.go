package reference

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"

	"zgw/pkg/platform/sentinel"
)

// Service is a registered peer API. Outbound calls to URLs under its root are
// authenticated with a token minted from its credentials; URLs that match no
// registered service are rejected as bad-url.
type Service struct {
	Label    string
	APIRoot  string
	ClientID string
	Secret   string
}

// Registry resolves the service responsible for a remote URL.
type Registry interface {
	Match(ctx context.Context, rawURL string) (*Service, error)
	List(ctx context.Context) ([]Service, error)
}

// InMemoryRegistry holds registered services in memory, for tests and
// single-node deployments configured from the environment.
type InMemoryRegistry struct {
	mu       sync.RWMutex
	services []Service
}

func NewInMemoryRegistry(services ...Service) *InMemoryRegistry {
	r := &InMemoryRegistry{}
	for _, svc := range services {
		r.Register(svc)
	}
	return r
}

func (r *InMemoryRegistry) Register(svc Service) {
	r.mu.Lock()
	defer r.mu.Unlock()
	svc.APIRoot = strings.TrimRight(svc.APIRoot, "/")
	r.services = append(r.services, svc)
}

func (r *InMemoryRegistry) Match(_ context.Context, rawURL string) (*Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.services {
		if strings.HasPrefix(rawURL, r.services[i].APIRoot+"/") {
			svc := r.services[i]
			return &svc, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (r *InMemoryRegistry) List(_ context.Context) ([]Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Service, len(r.services))
	copy(out, r.services)
	return out, nil
}

// PostgresRegistry reads registered services from the services table.
type PostgresRegistry struct {
	db *sql.DB
}

func NewPostgresRegistry(db *sql.DB) *PostgresRegistry {
	return &PostgresRegistry{db: db}
}

func (r *PostgresRegistry) Match(ctx context.Context, rawURL string) (*Service, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT label, api_root, client_id, secret
		FROM services
		WHERE $1 LIKE api_root || '/%'
		ORDER BY length(api_root) DESC
		LIMIT 1`, rawURL)

	var svc Service
	if err := row.Scan(&svc.Label, &svc.APIRoot, &svc.ClientID, &svc.Secret); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}
	svc.APIRoot = strings.TrimRight(svc.APIRoot, "/")
	return &svc, nil
}

func (r *PostgresRegistry) List(ctx context.Context) ([]Service, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT label, api_root, client_id, secret FROM services ORDER BY label`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Service
	for rows.Next() {
		var svc Service
		if err := rows.Scan(&svc.Label, &svc.APIRoot, &svc.ClientID, &svc.Secret); err != nil {
			return nil, err
		}
		svc.APIRoot = strings.TrimRight(svc.APIRoot, "/")
		out = append(out, svc)
	}
	return out, rows.Err()
}
