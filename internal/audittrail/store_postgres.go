package audittrail

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"zgw/pkg/platform/sentinel"
	"zgw/pkg/platform/tx"
)

// Postgres stores audit trail entries in the audittrails table.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Postgres) q(ctx context.Context) querier {
	if sqlTx, ok := tx.From(ctx); ok {
		return sqlTx
	}
	return s.db
}

func (s *Postgres) Append(ctx context.Context, entry Entry) error {
	_, err := s.q(ctx).ExecContext(ctx, `
		INSERT INTO audittrails (
			uuid, bron, applicatie_id, applicatie_weergave,
			gebruikers_id, gebruikers_weergave, actie, actie_weergave,
			resultaat, hoofd_object, resource, resource_url,
			resource_weergave, toelichting, aanmaakdatum, oud, nieuw
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
		entry.UUID, entry.Bron, entry.ApplicatieID, entry.ApplicatieWeergave,
		entry.GebruikersID, entry.GebruikersWeergave, entry.Actie, entry.ActieWeergave,
		entry.Resultaat, entry.HoofdObject, entry.Resource, entry.ResourceURL,
		entry.ResourceWeergave, entry.Toelichting, entry.AanmaakDatum,
		nullableJSON(entry.Wijzigingen.Oud), nullableJSON(entry.Wijzigingen.Nieuw),
	)
	if err != nil {
		return fmt.Errorf("append audit trail entry: %w", err)
	}
	return nil
}

func nullableJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}

const selectColumns = `
	uuid, bron, applicatie_id, applicatie_weergave,
	gebruikers_id, gebruikers_weergave, actie, actie_weergave,
	resultaat, hoofd_object, resource, resource_url,
	resource_weergave, toelichting, aanmaakdatum, oud, nieuw`

func (s *Postgres) ListByHoofdObject(ctx context.Context, hoofdObject string) ([]Entry, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `
		SELECT `+selectColumns+`
		FROM audittrails
		WHERE hoofd_object = $1
		ORDER BY aanmaakdatum`, hoofdObject)
	if err != nil {
		return nil, fmt.Errorf("list audit trail: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

func (s *Postgres) Get(ctx context.Context, hoofdObject string, id uuid.UUID) (*Entry, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `
		SELECT `+selectColumns+`
		FROM audittrails
		WHERE hoofd_object = $1 AND uuid = $2`, hoofdObject, id)
	if err != nil {
		return nil, fmt.Errorf("get audit trail entry: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, sentinel.ErrNotFound
	}
	entry, err := scanEntry(rows)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *Postgres) DeleteByHoofdObject(ctx context.Context, hoofdObject string) error {
	_, err := s.q(ctx).ExecContext(ctx, `DELETE FROM audittrails WHERE hoofd_object = $1`, hoofdObject)
	if err != nil {
		return fmt.Errorf("delete audit trail: %w", err)
	}
	return nil
}

func scanEntry(rows *sql.Rows) (Entry, error) {
	var (
		entry     Entry
		oud, nieu []byte
	)
	err := rows.Scan(
		&entry.UUID, &entry.Bron, &entry.ApplicatieID, &entry.ApplicatieWeergave,
		&entry.GebruikersID, &entry.GebruikersWeergave, &entry.Actie, &entry.ActieWeergave,
		&entry.Resultaat, &entry.HoofdObject, &entry.Resource, &entry.ResourceURL,
		&entry.ResourceWeergave, &entry.Toelichting, &entry.AanmaakDatum, &oud, &nieu,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, sentinel.ErrNotFound
		}
		return Entry{}, fmt.Errorf("scan audit trail entry: %w", err)
	}
	entry.Wijzigingen.Oud = oud
	entry.Wijzigingen.Nieuw = nieu
	return entry, nil
}
