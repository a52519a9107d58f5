package brc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"zgw/internal/authz"
	"zgw/internal/reference"
	"zgw/pkg/domain"
	"zgw/pkg/platform/guard"
	"zgw/pkg/platform/sentinel"
	"zgw/pkg/platform/tx"
)

// Postgres stores decisions and their document relation rows.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

var _ Store = (*Postgres)(nil)

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

// exec refuses unbounded UPDATE/DELETE statements; decision rows only
// mutate through the keyed per-row path.
func (s *Postgres) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if err := guard.CheckMutation(query); err != nil {
		return nil, err
	}
	return s.q(ctx).ExecContext(ctx, query, args...)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

const besluitColumns = `
	uuid, identificatie, verantwoordelijke_organisatie,
	besluittype_fk, besluittype_url, zaak_fk, zaak_url,
	datum, ingangsdatum, vervaldatum, vervalreden,
	publicatiedatum, verzenddatum, uiterlijke_reactiedatum,
	bestuursorgaan, toelichting, zaak_mirror_url`

func (s *Postgres) CreateBesluit(ctx context.Context, besluit Besluit) error {
	btFK, btURL := besluit.Besluittype.Columns()
	zFK, zURL := besluit.Zaak.Columns()
	_, err := s.exec(ctx, `
		INSERT INTO besluiten (
			uuid, identificatie, verantwoordelijke_organisatie,
			besluittype_fk, besluittype_url, zaak_fk, zaak_url,
			datum, ingangsdatum, vervaldatum, vervalreden,
			publicatiedatum, verzenddatum, uiterlijke_reactiedatum,
			bestuursorgaan, toelichting, zaak_mirror_url
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
		uuid.UUID(besluit.ID), besluit.Identificatie, besluit.VerantwoordelijkeOrganisatie,
		btFK, btURL, zFK, zURL,
		besluit.Datum, besluit.Ingangsdatum, besluit.Vervaldatum, besluit.Vervalreden,
		besluit.Publicatiedatum, besluit.Verzenddatum, besluit.UiterlijkeReactiedatum,
		besluit.Bestuursorgaan, besluit.Toelichting, besluit.ZaakMirrorURL,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create besluit: %w", err)
	}
	return nil
}

func scanBesluit(rows *sql.Rows) (Besluit, error) {
	var (
		besluit     Besluit
		btFK, btURL sql.NullString
		zFK, zURL   sql.NullString
	)
	err := rows.Scan(
		(*uuid.UUID)(&besluit.ID), &besluit.Identificatie, &besluit.VerantwoordelijkeOrganisatie,
		&btFK, &btURL, &zFK, &zURL,
		&besluit.Datum, &besluit.Ingangsdatum, &besluit.Vervaldatum, &besluit.Vervalreden,
		&besluit.Publicatiedatum, &besluit.Verzenddatum, &besluit.UiterlijkeReactiedatum,
		&besluit.Bestuursorgaan, &besluit.Toelichting, &besluit.ZaakMirrorURL,
	)
	if err != nil {
		return Besluit{}, fmt.Errorf("scan besluit: %w", err)
	}
	if besluit.Besluittype, err = reference.FromColumns(btFK, btURL); err != nil {
		return Besluit{}, err
	}
	if besluit.Zaak, err = reference.FromColumns(zFK, zURL); err != nil {
		return Besluit{}, err
	}
	return besluit, nil
}

func (s *Postgres) GetBesluit(ctx context.Context, id domain.BesluitID) (*Besluit, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `
		SELECT `+besluitColumns+` FROM besluiten WHERE uuid = $1`, uuid.UUID(id))
	if err != nil {
		return nil, fmt.Errorf("get besluit: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, sentinel.ErrNotFound
	}
	besluit, err := scanBesluit(rows)
	if err != nil {
		return nil, err
	}
	return &besluit, nil
}

func (s *Postgres) ListBesluiten(ctx context.Context, filter BesluitFilter, authFilter authz.Filter) ([]Besluit, int, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.VerantwoordelijkeOrganisatie != "" {
		where = append(where, "verantwoordelijke_organisatie = "+arg(filter.VerantwoordelijkeOrganisatie))
	}
	if filter.Identificatie != "" {
		where = append(where, "identificatie = "+arg(filter.Identificatie))
	}
	if filter.BesluittypeURL != "" {
		where = append(where, "besluittype_url = "+arg(filter.BesluittypeURL))
	}
	if filter.ZaakURL != "" {
		where = append(where, "zaak_url = "+arg(filter.ZaakURL))
	}

	// Decisions carry no confidentiality; the filter reduces to the type
	// rules with a trivially satisfied ceiling.
	predicate, predicateArgs := authFilter.SQLPredicate("besluittype_url", "0", len(args))
	where = append(where, predicate)
	args = append(args, predicateArgs...)

	clause := "WHERE " + strings.Join(where, " AND ")

	var total int
	if err := s.q(ctx).QueryRowContext(ctx, "SELECT COUNT(*) FROM besluiten "+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count besluiten: %w", err)
	}

	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	query := fmt.Sprintf(
		"SELECT %s FROM besluiten %s ORDER BY identificatie LIMIT %d OFFSET %d",
		besluitColumns, clause, pageSize, (page-1)*pageSize,
	)
	rows, err := s.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list besluiten: %w", err)
	}
	defer rows.Close()

	var out []Besluit
	for rows.Next() {
		besluit, err := scanBesluit(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, besluit)
	}
	return out, total, rows.Err()
}

func (s *Postgres) UpdateBesluit(ctx context.Context, besluit Besluit) error {
	zFK, zURL := besluit.Zaak.Columns()
	res, err := s.exec(ctx, `
		UPDATE besluiten SET
			zaak_fk = $2, zaak_url = $3,
			datum = $4, ingangsdatum = $5, vervaldatum = $6, vervalreden = $7,
			publicatiedatum = $8, verzenddatum = $9, uiterlijke_reactiedatum = $10,
			bestuursorgaan = $11, toelichting = $12, zaak_mirror_url = $13
		WHERE uuid = $1`,
		uuid.UUID(besluit.ID),
		zFK, zURL,
		besluit.Datum, besluit.Ingangsdatum, besluit.Vervaldatum, besluit.Vervalreden,
		besluit.Publicatiedatum, besluit.Verzenddatum, besluit.UiterlijkeReactiedatum,
		besluit.Bestuursorgaan, besluit.Toelichting, besluit.ZaakMirrorURL,
	)
	if err != nil {
		return fmt.Errorf("update besluit: %w", err)
	}
	return requireRow(res)
}

func (s *Postgres) DeleteBesluit(ctx context.Context, id domain.BesluitID) error {
	// The relation table cascades on the besluit foreign key.
	res, err := s.exec(ctx, `DELETE FROM besluiten WHERE uuid = $1`, uuid.UUID(id))
	if err != nil {
		return fmt.Errorf("delete besluit: %w", err)
	}
	return requireRow(res)
}

func (s *Postgres) SetZaakMirrorURL(ctx context.Context, id domain.BesluitID, mirrorURL string) error {
	res, err := s.exec(ctx, `
		UPDATE besluiten SET zaak_mirror_url = $2 WHERE uuid = $1`,
		uuid.UUID(id), mirrorURL)
	if err != nil {
		return fmt.Errorf("set zaak mirror url: %w", err)
	}
	return requireRow(res)
}

func (s *Postgres) IdentificatieExists(ctx context.Context, verantwoordelijkeOrganisatie, identificatie string) (bool, error) {
	var exists bool
	err := s.q(ctx).QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM besluiten WHERE verantwoordelijke_organisatie = $1 AND identificatie = $2)`,
		verantwoordelijkeOrganisatie, identificatie).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check identificatie: %w", err)
	}
	return exists, nil
}

const bioColumns = `uuid, besluit_uuid, informatieobject_fk, informatieobject_url, mirror_url`

func (s *Postgres) CreateBesluitInformatieObject(ctx context.Context, bio BesluitInformatieObject) error {
	ioFK, ioURL := bio.InformatieObject.Columns()
	_, err := s.exec(ctx, `
		INSERT INTO besluitinformatieobjecten (uuid, besluit_uuid, informatieobject_fk, informatieobject_url, mirror_url)
		VALUES ($1,$2,$3,$4,$5)`,
		uuid.UUID(bio.ID), uuid.UUID(bio.BesluitID), ioFK, ioURL, bio.MirrorURL,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create besluitinformatieobject: %w", err)
	}
	return nil
}

func scanBIO(rows *sql.Rows) (BesluitInformatieObject, error) {
	var (
		bio         BesluitInformatieObject
		ioFK, ioURL sql.NullString
	)
	err := rows.Scan(
		(*uuid.UUID)(&bio.ID), (*uuid.UUID)(&bio.BesluitID), &ioFK, &ioURL, &bio.MirrorURL,
	)
	if err != nil {
		return BesluitInformatieObject{}, fmt.Errorf("scan besluitinformatieobject: %w", err)
	}
	if bio.InformatieObject, err = reference.FromColumns(ioFK, ioURL); err != nil {
		return BesluitInformatieObject{}, err
	}
	return bio, nil
}

func (s *Postgres) GetBesluitInformatieObject(ctx context.Context, id domain.BesluitInformatieObjectID) (*BesluitInformatieObject, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `
		SELECT `+bioColumns+` FROM besluitinformatieobjecten WHERE uuid = $1`, uuid.UUID(id))
	if err != nil {
		return nil, fmt.Errorf("get besluitinformatieobject: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, sentinel.ErrNotFound
	}
	bio, err := scanBIO(rows)
	if err != nil {
		return nil, err
	}
	return &bio, nil
}

func (s *Postgres) ListBesluitInformatieObjecten(ctx context.Context, besluitID domain.BesluitID) ([]BesluitInformatieObject, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `
		SELECT `+bioColumns+` FROM besluitinformatieobjecten WHERE besluit_uuid = $1`, uuid.UUID(besluitID))
	if err != nil {
		return nil, fmt.Errorf("list besluitinformatieobjecten: %w", err)
	}
	defer rows.Close()

	var out []BesluitInformatieObject
	for rows.Next() {
		bio, err := scanBIO(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, bio)
	}
	return out, rows.Err()
}

func (s *Postgres) SetBesluitInformatieObjectMirrorURL(ctx context.Context, id domain.BesluitInformatieObjectID, mirrorURL string) error {
	res, err := s.exec(ctx, `
		UPDATE besluitinformatieobjecten SET mirror_url = $2 WHERE uuid = $1`,
		uuid.UUID(id), mirrorURL)
	if err != nil {
		return fmt.Errorf("set bio mirror url: %w", err)
	}
	return requireRow(res)
}

func (s *Postgres) DeleteBesluitInformatieObject(ctx context.Context, id domain.BesluitInformatieObjectID) error {
	res, err := s.exec(ctx, `DELETE FROM besluitinformatieobjecten WHERE uuid = $1`, uuid.UUID(id))
	if err != nil {
		return fmt.Errorf("delete besluitinformatieobject: %w", err)
	}
	return requireRow(res)
}
