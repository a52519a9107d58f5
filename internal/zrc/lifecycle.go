package zrc

import (
	"context"

	"zgw/pkg/domain"
	dErrors "zgw/pkg/domain-errors"
)

// IsClosed reports whether the case's latest status is an end status.
func (s *Service) IsClosed(ctx context.Context, zaakID domain.ZaakID) (bool, error) {
	latest, err := s.store.LatestStatus(ctx, zaakID)
	if err != nil {
		return false, err
	}
	return latest != nil && latest.IsEindstatus, nil
}

// ensureOpen gates mutations of a case and its related data. Closed cases
// reject everything unless the caller holds the forced-update scope.
func (s *Service) ensureOpen(ctx context.Context, zaakID domain.ZaakID) error {
	closed, err := s.IsClosed(ctx, zaakID)
	if err != nil {
		return err
	}
	if !closed {
		return nil
	}
	forced, err := s.authz.HasScope(ctx, domain.ComponentZRC, domain.ScopeZakenGeforceerdBijwerken)
	if err != nil {
		return err
	}
	if !forced {
		return dErrors.New(dErrors.CodeForbidden, "the case is closed; mutations require the forced update scope")
	}
	return nil
}
