package authz

import (
	"context"
	"errors"
	"log/slog"

	id "zgw/pkg/domain"
	dErrors "zgw/pkg/domain-errors"
	"zgw/pkg/platform/sentinel"
	"zgw/pkg/requestcontext"
)

// Service evaluates authorization for the acting client application. The
// acting client and its roles come from the request context set by the auth
// middleware.
type Service struct {
	store  Store
	logger *slog.Logger
}

func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// SecretFor implements zgwjwt.SecretSource against the applicatie table.
func (s *Service) SecretFor(ctx context.Context, clientID string) (string, error) {
	app, err := s.store.FindByClientID(ctx, clientID)
	if err != nil {
		return "", err
	}
	return app.Secret, nil
}

// effectiveGrants computes the grants in force for this request: the
// application's grants, narrowed by role grants when the token carries roles.
// A role can restrict but never widen; grants with no matching role grant are
// dropped entirely when roles are present.
func (s *Service) effectiveGrants(ctx context.Context) (*Applicatie, []Autorisatie, error) {
	clientID := requestcontext.ClientID(ctx)
	if clientID == "" {
		return nil, nil, dErrors.New(dErrors.CodeUnauthorized, "no authenticated client")
	}

	app, err := s.store.FindByClientID(ctx, clientID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil, dErrors.New(dErrors.CodeForbidden, "client application is not registered")
		}
		return nil, nil, err
	}

	roleNames := requestcontext.Roles(ctx)
	if len(roleNames) == 0 {
		return app, app.Autorisaties, nil
	}

	roles, err := s.store.FindRoles(ctx, roleNames)
	if err != nil {
		return nil, nil, err
	}

	var roleGrants []Autorisatie
	for _, role := range roles {
		roleGrants = append(roleGrants, role.Grants...)
	}

	var effective []Autorisatie
	for _, grant := range app.Autorisaties {
		for _, narrowing := range roleGrants {
			if narrowing.Component != grant.Component || narrowing.TypeURL != grant.TypeURL {
				continue
			}
			scopes := grant.Scopes.Intersect(narrowing.Scopes)
			if len(scopes) == 0 {
				continue
			}
			max := grant.MaxVertrouwelijkheid
			if narrowing.MaxVertrouwelijkheid.Order() < max.Order() {
				max = narrowing.MaxVertrouwelijkheid
			}
			effective = append(effective, Autorisatie{
				Component:            grant.Component,
				TypeURL:              grant.TypeURL,
				Scopes:               scopes,
				MaxVertrouwelijkheid: max,
			})
		}
	}
	return app, effective, nil
}

// FilterFor derives the list filter for one (component, scope) pair.
func (s *Service) FilterFor(ctx context.Context, component id.Component, scope id.Scope) (Filter, error) {
	app, grants, err := s.effectiveGrants(ctx)
	if err != nil {
		return Filter{}, err
	}
	if app.HeeftAlleAutorisaties {
		return AllowAll, nil
	}

	var filter Filter
	for _, grant := range grants {
		if grant.Component != component || !grant.Scopes.Contains(scope) {
			continue
		}
		filter.Rules = append(filter.Rules, FilterRule{
			TypeURL:              grant.TypeURL,
			MaxVertrouwelijkheid: grant.MaxVertrouwelijkheid,
		})
	}
	return filter, nil
}

// Authorize applies the object-level check: the caller needs a grant for the
// component and scope matching the object's type, with the object's
// confidentiality at or below the grant's ceiling.
func (s *Service) Authorize(ctx context.Context, component id.Component, scope id.Scope, typeURL string, vertrouwelijkheid id.Vertrouwelijkheid) error {
	filter, err := s.FilterFor(ctx, component, scope)
	if err != nil {
		return err
	}
	if !filter.Allows(typeURL, vertrouwelijkheid) {
		s.logger.InfoContext(ctx, "authorization denied",
			"client_id", requestcontext.ClientID(ctx),
			"component", component,
			"scope", scope,
			"type", typeURL,
		)
		return dErrors.New(dErrors.CodeForbidden, "insufficient scope for this object")
	}
	return nil
}

// HasScope reports whether the caller holds the scope for the component on
// any type. Used for bypass scopes (forced update, forced unlock, reopen)
// that are not tied to a single object.
func (s *Service) HasScope(ctx context.Context, component id.Component, scope id.Scope) (bool, error) {
	app, grants, err := s.effectiveGrants(ctx)
	if err != nil {
		return false, err
	}
	if app.HeeftAlleAutorisaties {
		return true, nil
	}
	for _, grant := range grants {
		if grant.Component == component && grant.Scopes.Contains(scope) {
			return true, nil
		}
	}
	return false, nil
}
