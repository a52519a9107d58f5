package authz

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	id "zgw/pkg/domain"
	"zgw/pkg/platform/sentinel"
)

// Postgres reads applications and roles from the authorization tables.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) FindByClientID(ctx context.Context, clientID string) (*Applicatie, error) {
	app := &Applicatie{}
	var appID string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, client_id, secret, label, heeft_alle_autorisaties
		FROM applicaties
		WHERE lower(client_id) = lower($1)
	`, clientID).Scan(&appID, &app.ClientID, &app.Secret, &app.Label, &app.HeeftAlleAutorisaties)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find applicatie: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT component, scopes, type_url, max_vertrouwelijkheid
		FROM autorisaties
		WHERE applicatie_id = $1
		ORDER BY component, type_url
	`, appID)
	if err != nil {
		return nil, fmt.Errorf("list autorisaties: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		grant, err := scanGrant(rows)
		if err != nil {
			return nil, err
		}
		app.Autorisaties = append(app.Autorisaties, grant)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate autorisaties: %w", err)
	}
	return app, nil
}

func (s *Postgres) FindRoles(ctx context.Context, names []string) ([]Rol, error) {
	if len(names) == 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT rol_naam, component, scopes, type_url, max_vertrouwelijkheid
		FROM rol_autorisaties
		WHERE rol_naam = ANY($1)
		ORDER BY rol_naam
	`, pq.Array(names))
	if err != nil {
		return nil, fmt.Errorf("list rol autorisaties: %w", err)
	}
	defer rows.Close()

	byName := make(map[string]*Rol)
	var order []string
	for rows.Next() {
		var name string
		var component, typeURL, max string
		var scopes pq.StringArray
		if err := rows.Scan(&name, &component, &scopes, &typeURL, &max); err != nil {
			return nil, fmt.Errorf("scan rol autorisatie: %w", err)
		}
		role, ok := byName[name]
		if !ok {
			role = &Rol{Naam: name}
			byName[name] = role
			order = append(order, name)
		}
		role.Grants = append(role.Grants, Autorisatie{
			Component:            id.Component(component),
			Scopes:               toScopeSet(scopes),
			TypeURL:              typeURL,
			MaxVertrouwelijkheid: id.Vertrouwelijkheid(max),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rol autorisaties: %w", err)
	}

	out := make([]Rol, 0, len(order))
	for _, name := range order {
		out = append(out, *byName[name])
	}
	return out, nil
}

type grantScanner interface {
	Scan(dest ...any) error
}

func scanGrant(row grantScanner) (Autorisatie, error) {
	var component, typeURL, max string
	var scopes pq.StringArray
	if err := row.Scan(&component, &scopes, &typeURL, &max); err != nil {
		return Autorisatie{}, fmt.Errorf("scan autorisatie: %w", err)
	}
	return Autorisatie{
		Component:            id.Component(component),
		Scopes:               toScopeSet(scopes),
		TypeURL:              typeURL,
		MaxVertrouwelijkheid: id.Vertrouwelijkheid(max),
	}, nil
}

func toScopeSet(raw []string) id.ScopeSet {
	set := make(id.ScopeSet, len(raw))
	for _, s := range raw {
		set[id.Scope(s)] = struct{}{}
	}
	return set
}
