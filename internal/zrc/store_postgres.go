package zrc

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
	"zgw/pkg/platform/sentinel"
	"zgw/pkg/platform/tx"
)

// Postgres stores cases and their child rows. Geometry columns hold PostGIS
// geometries so the _zoek containment check runs in the database.
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

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func nullGeometry(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

const zaakColumns = `
	uuid, identificatie, bronorganisatie, omschrijving, toelichting,
	zaaktype_fk, zaaktype_url, hoofdzaak_fk, hoofdzaak_url,
	registratiedatum, startdatum, einddatum_gepland,
	uiterlijke_einddatum_afdoening, einddatum,
	vertrouwelijkheid, betalingsindicatie,
	ST_AsGeoJSON(zaakgeometrie),
	opschorting_indicatie, opschorting_reden,
	verlenging_reden, verlenging_duur`

func (s *Postgres) CreateZaak(ctx context.Context, zaak Zaak) error {
	ztFK, ztURL := zaak.Zaaktype.Columns()
	hzFK, hzURL := zaak.Hoofdzaak.Columns()
	_, err := s.q(ctx).ExecContext(ctx, `
		INSERT INTO zaken (
			uuid, identificatie, bronorganisatie, omschrijving, toelichting,
			zaaktype_fk, zaaktype_url, hoofdzaak_fk, hoofdzaak_url,
			registratiedatum, startdatum, einddatum_gepland,
			uiterlijke_einddatum_afdoening, einddatum,
			vertrouwelijkheid, vertrouwelijkheid_orde, betalingsindicatie,
			zaakgeometrie,
			opschorting_indicatie, opschorting_reden,
			verlenging_reden, verlenging_duur
		) VALUES (
			$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,
			ST_GeomFromGeoJSON($18),$19,$20,$21,$22
		)`,
		uuid.UUID(zaak.ID), zaak.Identificatie, zaak.Bronorganisatie, zaak.Omschrijving, zaak.Toelichting,
		ztFK, ztURL, hzFK, hzURL,
		zaak.Registratiedatum, zaak.Startdatum, zaak.EinddatumGepland,
		zaak.UiterlijkeEinddatumAfdoening, zaak.Einddatum,
		zaak.Vertrouwelijkheid, zaak.Vertrouwelijkheid.Order(), zaak.Betalingsindicatie,
		nullGeometry(zaak.Zaakgeometrie),
		zaak.Opschorting.Indicatie, zaak.Opschorting.Reden,
		zaak.Verlenging.Reden, zaak.Verlenging.DuurDays,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create zaak: %w", err)
	}
	return nil
}

func scanZaak(rows *sql.Rows) (Zaak, error) {
	var (
		zaak               Zaak
		ztFK, ztURL        sql.NullString
		hzFK, hzURL        sql.NullString
		geom               sql.NullString
		betalingsindicatie sql.NullString
	)
	err := rows.Scan(
		(*uuid.UUID)(&zaak.ID), &zaak.Identificatie, &zaak.Bronorganisatie, &zaak.Omschrijving, &zaak.Toelichting,
		&ztFK, &ztURL, &hzFK, &hzURL,
		&zaak.Registratiedatum, &zaak.Startdatum, &zaak.EinddatumGepland,
		&zaak.UiterlijkeEinddatumAfdoening, &zaak.Einddatum,
		&zaak.Vertrouwelijkheid, &betalingsindicatie,
		&geom,
		&zaak.Opschorting.Indicatie, &zaak.Opschorting.Reden,
		&zaak.Verlenging.Reden, &zaak.Verlenging.DuurDays,
	)
	if err != nil {
		return Zaak{}, fmt.Errorf("scan zaak: %w", err)
	}
	if zaak.Zaaktype, err = reference.FromColumns(ztFK, ztURL); err != nil {
		return Zaak{}, err
	}
	if zaak.Hoofdzaak, err = reference.FromColumns(hzFK, hzURL); err != nil {
		return Zaak{}, err
	}
	if geom.Valid {
		zaak.Zaakgeometrie = []byte(geom.String)
	}
	zaak.Betalingsindicatie = betalingsindicatie.String
	return zaak, nil
}

func (s *Postgres) GetZaak(ctx context.Context, id domain.ZaakID) (*Zaak, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `
		SELECT `+zaakColumns+` FROM zaken WHERE uuid = $1`, uuid.UUID(id))
	if err != nil {
		return nil, fmt.Errorf("get zaak: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, sentinel.ErrNotFound
	}
	zaak, err := scanZaak(rows)
	if err != nil {
		return nil, err
	}
	return &zaak, nil
}

func (s *Postgres) ListZaken(ctx context.Context, filter ZaakFilter, authFilter authz.Filter) ([]Zaak, int, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Bronorganisatie != "" {
		where = append(where, "bronorganisatie = "+arg(filter.Bronorganisatie))
	}
	if filter.Identificatie != "" {
		where = append(where, "identificatie = "+arg(filter.Identificatie))
	}
	if filter.ZaaktypeURL != "" {
		where = append(where, "zaaktype_url = "+arg(filter.ZaaktypeURL))
	}
	if filter.MaxVertrouwelijkheid != nil {
		where = append(where, "vertrouwelijkheid_orde <= "+arg(filter.MaxVertrouwelijkheid.Order()))
	}
	if len(filter.Within) > 0 {
		where = append(where, "zaakgeometrie IS NOT NULL AND ST_Within(zaakgeometrie, ST_GeomFromGeoJSON("+arg(string(filter.Within))+"))")
	}

	predicate, predicateArgs := authFilter.SQLPredicate("zaaktype_url", "vertrouwelijkheid_orde", len(args))
	where = append(where, predicate)
	args = append(args, predicateArgs...)

	clause := "WHERE " + strings.Join(where, " AND ")

	var total int
	if err := s.q(ctx).QueryRowContext(ctx, "SELECT COUNT(*) FROM zaken "+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count zaken: %w", err)
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
		"SELECT %s FROM zaken %s ORDER BY identificatie LIMIT %d OFFSET %d",
		zaakColumns, clause, pageSize, (page-1)*pageSize,
	)
	rows, err := s.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list zaken: %w", err)
	}
	defer rows.Close()

	var out []Zaak
	for rows.Next() {
		zaak, err := scanZaak(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, zaak)
	}
	return out, total, rows.Err()
}

func (s *Postgres) UpdateZaak(ctx context.Context, zaak Zaak) error {
	hzFK, hzURL := zaak.Hoofdzaak.Columns()
	res, err := s.q(ctx).ExecContext(ctx, `
		UPDATE zaken SET
			omschrijving = $2, toelichting = $3,
			hoofdzaak_fk = $4, hoofdzaak_url = $5,
			startdatum = $6, einddatum_gepland = $7,
			uiterlijke_einddatum_afdoening = $8, einddatum = $9,
			vertrouwelijkheid = $10, vertrouwelijkheid_orde = $11,
			betalingsindicatie = $12,
			zaakgeometrie = ST_GeomFromGeoJSON($13),
			opschorting_indicatie = $14, opschorting_reden = $15,
			verlenging_reden = $16, verlenging_duur = $17
		WHERE uuid = $1`,
		uuid.UUID(zaak.ID),
		zaak.Omschrijving, zaak.Toelichting,
		hzFK, hzURL,
		zaak.Startdatum, zaak.EinddatumGepland,
		zaak.UiterlijkeEinddatumAfdoening, zaak.Einddatum,
		zaak.Vertrouwelijkheid, zaak.Vertrouwelijkheid.Order(),
		zaak.Betalingsindicatie,
		nullGeometry(zaak.Zaakgeometrie),
		zaak.Opschorting.Indicatie, zaak.Opschorting.Reden,
		zaak.Verlenging.Reden, zaak.Verlenging.DuurDays,
	)
	if err != nil {
		return fmt.Errorf("update zaak: %w", err)
	}
	return requireRow(res)
}

func (s *Postgres) DeleteZaak(ctx context.Context, id domain.ZaakID) error {
	// Child tables cascade on the zaak foreign key.
	res, err := s.q(ctx).ExecContext(ctx, `DELETE FROM zaken WHERE uuid = $1`, uuid.UUID(id))
	if err != nil {
		return fmt.Errorf("delete zaak: %w", err)
	}
	return requireRow(res)
}

func (s *Postgres) LockZaak(ctx context.Context, id domain.ZaakID) error {
	var found uuid.UUID
	err := s.q(ctx).QueryRowContext(ctx, `
		SELECT uuid FROM zaken WHERE uuid = $1 FOR UPDATE`, uuid.UUID(id)).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("lock zaak: %w", err)
	}
	return nil
}

func (s *Postgres) IdentificatieExists(ctx context.Context, bronorganisatie, identificatie string) (bool, error) {
	var exists bool
	err := s.q(ctx).QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM zaken WHERE bronorganisatie = $1 AND identificatie = $2)`,
		bronorganisatie, identificatie).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check identificatie: %w", err)
	}
	return exists, nil
}

func (s *Postgres) IsDeelzaak(ctx context.Context, id domain.ZaakID) (bool, error) {
	var isDeelzaak bool
	err := s.q(ctx).QueryRowContext(ctx, `
		SELECT hoofdzaak_fk IS NOT NULL OR hoofdzaak_url IS NOT NULL
		FROM zaken WHERE uuid = $1`, uuid.UUID(id)).Scan(&isDeelzaak)
	if errors.Is(err, sql.ErrNoRows) {
		return false, sentinel.ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("check deelzaak: %w", err)
	}
	return isDeelzaak, nil
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

const statusColumns = `uuid, zaak_uuid, statustype, datum_status_gezet, statustoelichting, is_eindstatus`

func (s *Postgres) CreateStatus(ctx context.Context, status Status) error {
	_, err := s.q(ctx).ExecContext(ctx, `
		INSERT INTO statussen (uuid, zaak_uuid, statustype, datum_status_gezet, statustoelichting, is_eindstatus)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		uuid.UUID(status.ID), uuid.UUID(status.ZaakID), status.Statustype,
		status.DatumStatusGezet, status.Statustoelichting, status.IsEindstatus,
	)
	if err != nil {
		return fmt.Errorf("create status: %w", err)
	}
	return nil
}

func scanStatus(rows *sql.Rows) (Status, error) {
	var status Status
	err := rows.Scan(
		(*uuid.UUID)(&status.ID), (*uuid.UUID)(&status.ZaakID), &status.Statustype,
		&status.DatumStatusGezet, &status.Statustoelichting, &status.IsEindstatus,
	)
	if err != nil {
		return Status{}, fmt.Errorf("scan status: %w", err)
	}
	return status, nil
}

func (s *Postgres) GetStatus(ctx context.Context, id domain.StatusID) (*Status, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `
		SELECT `+statusColumns+` FROM statussen WHERE uuid = $1`, uuid.UUID(id))
	if err != nil {
		return nil, fmt.Errorf("get status: %w", err)
	}
	defer rows.Close()
	return oneStatus(rows)
}

func oneStatus(rows *sql.Rows) (*Status, error) {
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, sentinel.ErrNotFound
	}
	status, err := scanStatus(rows)
	if err != nil {
		return nil, err
	}
	return &status, nil
}

func (s *Postgres) ListStatussen(ctx context.Context, zaakID domain.ZaakID) ([]Status, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `
		SELECT `+statusColumns+` FROM statussen
		WHERE zaak_uuid = $1 ORDER BY datum_status_gezet`, uuid.UUID(zaakID))
	if err != nil {
		return nil, fmt.Errorf("list statussen: %w", err)
	}
	defer rows.Close()

	var out []Status
	for rows.Next() {
		status, err := scanStatus(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, status)
	}
	return out, rows.Err()
}

func (s *Postgres) LatestStatus(ctx context.Context, zaakID domain.ZaakID) (*Status, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `
		SELECT `+statusColumns+` FROM statussen
		WHERE zaak_uuid = $1 ORDER BY datum_status_gezet DESC LIMIT 1`, uuid.UUID(zaakID))
	if err != nil {
		return nil, fmt.Errorf("latest status: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, nil
	}
	status, err := scanStatus(rows)
	if err != nil {
		return nil, err
	}
	return &status, nil
}

func (s *Postgres) CreateResultaat(ctx context.Context, resultaat Resultaat) error {
	_, err := s.q(ctx).ExecContext(ctx, `
		INSERT INTO resultaten (uuid, zaak_uuid, resultaattype, toelichting)
		VALUES ($1,$2,$3,$4)`,
		uuid.UUID(resultaat.ID), uuid.UUID(resultaat.ZaakID), resultaat.Resultaattype, resultaat.Toelichting,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create resultaat: %w", err)
	}
	return nil
}

func (s *Postgres) getResultaat(ctx context.Context, clause string, arg any) (*Resultaat, error) {
	var resultaat Resultaat
	err := s.q(ctx).QueryRowContext(ctx, `
		SELECT uuid, zaak_uuid, resultaattype, toelichting FROM resultaten WHERE `+clause, arg).Scan(
		(*uuid.UUID)(&resultaat.ID), (*uuid.UUID)(&resultaat.ZaakID), &resultaat.Resultaattype, &resultaat.Toelichting,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get resultaat: %w", err)
	}
	return &resultaat, nil
}

func (s *Postgres) GetResultaat(ctx context.Context, id domain.ResultaatID) (*Resultaat, error) {
	return s.getResultaat(ctx, "uuid = $1", uuid.UUID(id))
}

func (s *Postgres) GetResultaatByZaak(ctx context.Context, zaakID domain.ZaakID) (*Resultaat, error) {
	return s.getResultaat(ctx, "zaak_uuid = $1", uuid.UUID(zaakID))
}

func (s *Postgres) DeleteResultaat(ctx context.Context, id domain.ResultaatID) error {
	res, err := s.q(ctx).ExecContext(ctx, `DELETE FROM resultaten WHERE uuid = $1`, uuid.UUID(id))
	if err != nil {
		return fmt.Errorf("delete resultaat: %w", err)
	}
	return requireRow(res)
}

const rolColumns = `uuid, zaak_uuid, betrokkene, betrokkene_type, roltype, roltoelichting, registratiedatum`

func (s *Postgres) CreateRol(ctx context.Context, rol Rol) error {
	_, err := s.q(ctx).ExecContext(ctx, `
		INSERT INTO rollen (uuid, zaak_uuid, betrokkene, betrokkene_type, roltype, roltoelichting, registratiedatum)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		uuid.UUID(rol.ID), uuid.UUID(rol.ZaakID), rol.Betrokkene, rol.BetrokkeneType,
		rol.Roltype, rol.Roltoelichting, rol.Registratiedatum,
	)
	if err != nil {
		return fmt.Errorf("create rol: %w", err)
	}
	return nil
}

func scanRol(rows *sql.Rows) (Rol, error) {
	var rol Rol
	err := rows.Scan(
		(*uuid.UUID)(&rol.ID), (*uuid.UUID)(&rol.ZaakID), &rol.Betrokkene, &rol.BetrokkeneType,
		&rol.Roltype, &rol.Roltoelichting, &rol.Registratiedatum,
	)
	if err != nil {
		return Rol{}, fmt.Errorf("scan rol: %w", err)
	}
	return rol, nil
}

func (s *Postgres) GetRol(ctx context.Context, id domain.RolID) (*Rol, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `
		SELECT `+rolColumns+` FROM rollen WHERE uuid = $1`, uuid.UUID(id))
	if err != nil {
		return nil, fmt.Errorf("get rol: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, sentinel.ErrNotFound
	}
	rol, err := scanRol(rows)
	if err != nil {
		return nil, err
	}
	return &rol, nil
}

func (s *Postgres) ListRollen(ctx context.Context, zaakID domain.ZaakID) ([]Rol, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `
		SELECT `+rolColumns+` FROM rollen WHERE zaak_uuid = $1 ORDER BY registratiedatum`, uuid.UUID(zaakID))
	if err != nil {
		return nil, fmt.Errorf("list rollen: %w", err)
	}
	defer rows.Close()

	var out []Rol
	for rows.Next() {
		rol, err := scanRol(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rol)
	}
	return out, rows.Err()
}

func (s *Postgres) DeleteRol(ctx context.Context, id domain.RolID) error {
	res, err := s.q(ctx).ExecContext(ctx, `DELETE FROM rollen WHERE uuid = $1`, uuid.UUID(id))
	if err != nil {
		return fmt.Errorf("delete rol: %w", err)
	}
	return requireRow(res)
}

const zaakObjectColumns = `uuid, zaak_uuid, object, object_type, relatieomschrijving`

func (s *Postgres) CreateZaakObject(ctx context.Context, zo ZaakObject) error {
	_, err := s.q(ctx).ExecContext(ctx, `
		INSERT INTO zaakobjecten (uuid, zaak_uuid, object, object_type, relatieomschrijving)
		VALUES ($1,$2,$3,$4,$5)`,
		uuid.UUID(zo.ID), uuid.UUID(zo.ZaakID), zo.Object, zo.ObjectType, zo.RelatieOmschrijving,
	)
	if err != nil {
		return fmt.Errorf("create zaakobject: %w", err)
	}
	return nil
}

func scanZaakObject(rows *sql.Rows) (ZaakObject, error) {
	var zo ZaakObject
	err := rows.Scan(
		(*uuid.UUID)(&zo.ID), (*uuid.UUID)(&zo.ZaakID), &zo.Object, &zo.ObjectType, &zo.RelatieOmschrijving,
	)
	if err != nil {
		return ZaakObject{}, fmt.Errorf("scan zaakobject: %w", err)
	}
	return zo, nil
}

func (s *Postgres) GetZaakObject(ctx context.Context, id domain.ZaakObjectID) (*ZaakObject, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `
		SELECT `+zaakObjectColumns+` FROM zaakobjecten WHERE uuid = $1`, uuid.UUID(id))
	if err != nil {
		return nil, fmt.Errorf("get zaakobject: %w", err)
	}
	defer rows.Close()
	return oneZaakObject(rows)
}

func (s *Postgres) FindZaakObjectByObjectURL(ctx context.Context, zaakID domain.ZaakID, objectURL string) (*ZaakObject, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `
		SELECT `+zaakObjectColumns+` FROM zaakobjecten WHERE zaak_uuid = $1 AND object = $2`,
		uuid.UUID(zaakID), objectURL)
	if err != nil {
		return nil, fmt.Errorf("find zaakobject: %w", err)
	}
	defer rows.Close()
	return oneZaakObject(rows)
}

func oneZaakObject(rows *sql.Rows) (*ZaakObject, error) {
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, sentinel.ErrNotFound
	}
	zo, err := scanZaakObject(rows)
	if err != nil {
		return nil, err
	}
	return &zo, nil
}

func (s *Postgres) ListZaakObjecten(ctx context.Context, zaakID domain.ZaakID) ([]ZaakObject, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `
		SELECT `+zaakObjectColumns+` FROM zaakobjecten WHERE zaak_uuid = $1 ORDER BY uuid`, uuid.UUID(zaakID))
	if err != nil {
		return nil, fmt.Errorf("list zaakobjecten: %w", err)
	}
	defer rows.Close()

	var out []ZaakObject
	for rows.Next() {
		zo, err := scanZaakObject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, zo)
	}
	return out, rows.Err()
}

func (s *Postgres) DeleteZaakObject(ctx context.Context, id domain.ZaakObjectID) error {
	res, err := s.q(ctx).ExecContext(ctx, `DELETE FROM zaakobjecten WHERE uuid = $1`, uuid.UUID(id))
	if err != nil {
		return fmt.Errorf("delete zaakobject: %w", err)
	}
	return requireRow(res)
}

func (s *Postgres) CreateZaakEigenschap(ctx context.Context, ze ZaakEigenschap) error {
	_, err := s.q(ctx).ExecContext(ctx, `
		INSERT INTO zaakeigenschappen (uuid, zaak_uuid, eigenschap, naam, waarde)
		VALUES ($1,$2,$3,$4,$5)`,
		uuid.UUID(ze.ID), uuid.UUID(ze.ZaakID), ze.Eigenschap, ze.Naam, ze.Waarde,
	)
	if err != nil {
		return fmt.Errorf("create zaakeigenschap: %w", err)
	}
	return nil
}

func (s *Postgres) GetZaakEigenschap(ctx context.Context, id domain.ZaakEigenschapID) (*ZaakEigenschap, error) {
	var ze ZaakEigenschap
	err := s.q(ctx).QueryRowContext(ctx, `
		SELECT uuid, zaak_uuid, eigenschap, naam, waarde FROM zaakeigenschappen WHERE uuid = $1`,
		uuid.UUID(id)).Scan(
		(*uuid.UUID)(&ze.ID), (*uuid.UUID)(&ze.ZaakID), &ze.Eigenschap, &ze.Naam, &ze.Waarde,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get zaakeigenschap: %w", err)
	}
	return &ze, nil
}

func (s *Postgres) ListZaakEigenschappen(ctx context.Context, zaakID domain.ZaakID) ([]ZaakEigenschap, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `
		SELECT uuid, zaak_uuid, eigenschap, naam, waarde
		FROM zaakeigenschappen WHERE zaak_uuid = $1 ORDER BY naam`, uuid.UUID(zaakID))
	if err != nil {
		return nil, fmt.Errorf("list zaakeigenschappen: %w", err)
	}
	defer rows.Close()

	var out []ZaakEigenschap
	for rows.Next() {
		var ze ZaakEigenschap
		if err := rows.Scan(
			(*uuid.UUID)(&ze.ID), (*uuid.UUID)(&ze.ZaakID), &ze.Eigenschap, &ze.Naam, &ze.Waarde,
		); err != nil {
			return nil, fmt.Errorf("scan zaakeigenschap: %w", err)
		}
		out = append(out, ze)
	}
	return out, rows.Err()
}

func (s *Postgres) DeleteZaakEigenschap(ctx context.Context, id domain.ZaakEigenschapID) error {
	res, err := s.q(ctx).ExecContext(ctx, `DELETE FROM zaakeigenschappen WHERE uuid = $1`, uuid.UUID(id))
	if err != nil {
		return fmt.Errorf("delete zaakeigenschap: %w", err)
	}
	return requireRow(res)
}

func (s *Postgres) CreateKlantContact(ctx context.Context, kc KlantContact) error {
	_, err := s.q(ctx).ExecContext(ctx, `
		INSERT INTO klantcontacten (uuid, zaak_uuid, identificatie, datumtijd, kanaal, onderwerp, toelichting)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		uuid.UUID(kc.ID), uuid.UUID(kc.ZaakID), kc.Identificatie, kc.Datumtijd, kc.Kanaal, kc.Onderwerp, kc.Toelichting,
	)
	if err != nil {
		return fmt.Errorf("create klantcontact: %w", err)
	}
	return nil
}

func (s *Postgres) ListKlantContacten(ctx context.Context, zaakID domain.ZaakID) ([]KlantContact, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `
		SELECT uuid, zaak_uuid, identificatie, datumtijd, kanaal, onderwerp, toelichting
		FROM klantcontacten WHERE zaak_uuid = $1 ORDER BY datumtijd`, uuid.UUID(zaakID))
	if err != nil {
		return nil, fmt.Errorf("list klantcontacten: %w", err)
	}
	defer rows.Close()

	var out []KlantContact
	for rows.Next() {
		var kc KlantContact
		if err := rows.Scan(
			(*uuid.UUID)(&kc.ID), (*uuid.UUID)(&kc.ZaakID), &kc.Identificatie,
			&kc.Datumtijd, &kc.Kanaal, &kc.Onderwerp, &kc.Toelichting,
		); err != nil {
			return nil, fmt.Errorf("scan klantcontact: %w", err)
		}
		out = append(out, kc)
	}
	return out, rows.Err()
}

const zioColumns = `uuid, zaak_uuid, informatieobject_fk, informatieobject_url, titel, beschrijving, aard_relatie, registratiedatum, mirror_url`

func (s *Postgres) CreateZaakInformatieObject(ctx context.Context, zio ZaakInformatieObject) error {
	ioFK, ioURL := zio.InformatieObject.Columns()
	_, err := s.q(ctx).ExecContext(ctx, `
		INSERT INTO zaakinformatieobjecten (
			uuid, zaak_uuid, informatieobject_fk, informatieobject_url,
			titel, beschrijving, aard_relatie, registratiedatum, mirror_url
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		uuid.UUID(zio.ID), uuid.UUID(zio.ZaakID), ioFK, ioURL,
		zio.Titel, zio.Beschrijving, zio.AardRelatie, zio.Registratiedatum, zio.MirrorURL,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create zaakinformatieobject: %w", err)
	}
	return nil
}

func scanZIO(rows *sql.Rows) (ZaakInformatieObject, error) {
	var (
		zio         ZaakInformatieObject
		ioFK, ioURL sql.NullString
	)
	err := rows.Scan(
		(*uuid.UUID)(&zio.ID), (*uuid.UUID)(&zio.ZaakID), &ioFK, &ioURL,
		&zio.Titel, &zio.Beschrijving, &zio.AardRelatie, &zio.Registratiedatum, &zio.MirrorURL,
	)
	if err != nil {
		return ZaakInformatieObject{}, fmt.Errorf("scan zaakinformatieobject: %w", err)
	}
	if zio.InformatieObject, err = reference.FromColumns(ioFK, ioURL); err != nil {
		return ZaakInformatieObject{}, err
	}
	return zio, nil
}

func (s *Postgres) GetZaakInformatieObject(ctx context.Context, id domain.ZaakInformatieObjectID) (*ZaakInformatieObject, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `
		SELECT `+zioColumns+` FROM zaakinformatieobjecten WHERE uuid = $1`, uuid.UUID(id))
	if err != nil {
		return nil, fmt.Errorf("get zaakinformatieobject: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, sentinel.ErrNotFound
	}
	zio, err := scanZIO(rows)
	if err != nil {
		return nil, err
	}
	return &zio, nil
}

func (s *Postgres) ListZaakInformatieObjecten(ctx context.Context, zaakID domain.ZaakID) ([]ZaakInformatieObject, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `
		SELECT `+zioColumns+` FROM zaakinformatieobjecten WHERE zaak_uuid = $1 ORDER BY registratiedatum`,
		uuid.UUID(zaakID))
	if err != nil {
		return nil, fmt.Errorf("list zaakinformatieobjecten: %w", err)
	}
	defer rows.Close()

	var out []ZaakInformatieObject
	for rows.Next() {
		zio, err := scanZIO(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, zio)
	}
	return out, rows.Err()
}

func (s *Postgres) SetZaakInformatieObjectMirrorURL(ctx context.Context, id domain.ZaakInformatieObjectID, mirrorURL string) error {
	res, err := s.q(ctx).ExecContext(ctx, `
		UPDATE zaakinformatieobjecten SET mirror_url = $2 WHERE uuid = $1`, uuid.UUID(id), mirrorURL)
	if err != nil {
		return fmt.Errorf("set zaakinformatieobject mirror url: %w", err)
	}
	return requireRow(res)
}

func (s *Postgres) DeleteZaakInformatieObject(ctx context.Context, id domain.ZaakInformatieObjectID) error {
	res, err := s.q(ctx).ExecContext(ctx, `DELETE FROM zaakinformatieobjecten WHERE uuid = $1`, uuid.UUID(id))
	if err != nil {
		return fmt.Errorf("delete zaakinformatieobject: %w", err)
	}
	return requireRow(res)
}

func (s *Postgres) CreateZaakBesluit(ctx context.Context, zb ZaakBesluit) error {
	bFK, bURL := zb.Besluit.Columns()
	_, err := s.q(ctx).ExecContext(ctx, `
		INSERT INTO zaakbesluiten (uuid, zaak_uuid, besluit_fk, besluit_url)
		VALUES ($1,$2,$3,$4)`,
		uuid.UUID(zb.ID), uuid.UUID(zb.ZaakID), bFK, bURL,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create zaakbesluit: %w", err)
	}
	return nil
}

func scanZaakBesluit(rows *sql.Rows) (ZaakBesluit, error) {
	var (
		zb        ZaakBesluit
		bFK, bURL sql.NullString
	)
	err := rows.Scan((*uuid.UUID)(&zb.ID), (*uuid.UUID)(&zb.ZaakID), &bFK, &bURL)
	if err != nil {
		return ZaakBesluit{}, fmt.Errorf("scan zaakbesluit: %w", err)
	}
	if zb.Besluit, err = reference.FromColumns(bFK, bURL); err != nil {
		return ZaakBesluit{}, err
	}
	return zb, nil
}

func (s *Postgres) GetZaakBesluit(ctx context.Context, zaakID domain.ZaakID, id domain.ZaakBesluitID) (*ZaakBesluit, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `
		SELECT uuid, zaak_uuid, besluit_fk, besluit_url
		FROM zaakbesluiten WHERE zaak_uuid = $1 AND uuid = $2`, uuid.UUID(zaakID), uuid.UUID(id))
	if err != nil {
		return nil, fmt.Errorf("get zaakbesluit: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, sentinel.ErrNotFound
	}
	zb, err := scanZaakBesluit(rows)
	if err != nil {
		return nil, err
	}
	return &zb, nil
}

func (s *Postgres) ListZaakBesluiten(ctx context.Context, zaakID domain.ZaakID) ([]ZaakBesluit, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `
		SELECT uuid, zaak_uuid, besluit_fk, besluit_url
		FROM zaakbesluiten WHERE zaak_uuid = $1 ORDER BY uuid`, uuid.UUID(zaakID))
	if err != nil {
		return nil, fmt.Errorf("list zaakbesluiten: %w", err)
	}
	defer rows.Close()

	var out []ZaakBesluit
	for rows.Next() {
		zb, err := scanZaakBesluit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, zb)
	}
	return out, rows.Err()
}

func (s *Postgres) DeleteZaakBesluit(ctx context.Context, zaakID domain.ZaakID, id domain.ZaakBesluitID) error {
	res, err := s.q(ctx).ExecContext(ctx, `
		DELETE FROM zaakbesluiten WHERE zaak_uuid = $1 AND uuid = $2`, uuid.UUID(zaakID), uuid.UUID(id))
	if err != nil {
		return fmt.Errorf("delete zaakbesluit: %w", err)
	}
	return requireRow(res)
}
