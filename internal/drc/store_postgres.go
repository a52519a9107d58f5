package drc

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

// Postgres stores documents, their versions and dependent rows. All mutations
// pass the bulk-operation guard: documents are versioned, so every write must
// be keyed to a single row.
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

// exec routes every mutation through the query guard.
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

const canoniekColumns = `
	uuid, identificatie, bronorganisatie,
	informatieobjecttype_fk, informatieobjecttype_url,
	vertrouwelijkheid, indicatie_gebruiksrecht, lock_token`

const versieColumns = `
	versie, informatieobject_uuid, titel, auteur, taal, status,
	formaat, bestandsnaam, beschrijving, bestandsomvang, content_key,
	begin_registratie`

func (s *Postgres) CreateDocument(ctx context.Context, doc InformatieObject, versie Versie) error {
	iotFK, iotURL := doc.Informatieobjecttype.Columns()
	_, err := s.exec(ctx, `
		INSERT INTO drc_informatieobjecten (
			uuid, identificatie, bronorganisatie,
			informatieobjecttype_fk, informatieobjecttype_url,
			vertrouwelijkheid, vertrouwelijkheid_orde,
			indicatie_gebruiksrecht, lock_token
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		uuid.UUID(doc.ID), doc.Identificatie, doc.Bronorganisatie,
		iotFK, iotURL,
		doc.Vertrouwelijkheid, doc.Vertrouwelijkheid.Order(),
		doc.IndicatieGebruiksrecht, doc.Lock)
	if isUniqueViolation(err) {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert informatieobject: %w", err)
	}
	return s.AppendVersie(ctx, versie)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCanoniek(row rowScanner) (InformatieObject, error) {
	var (
		doc           InformatieObject
		iotFK, iotURL sql.NullString
	)
	err := row.Scan(
		(*uuid.UUID)(&doc.ID), &doc.Identificatie, &doc.Bronorganisatie,
		&iotFK, &iotURL,
		&doc.Vertrouwelijkheid, &doc.IndicatieGebruiksrecht, &doc.Lock,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return doc, sentinel.ErrNotFound
	}
	if err != nil {
		return doc, fmt.Errorf("scan informatieobject: %w", err)
	}
	if doc.Informatieobjecttype, err = reference.FromColumns(iotFK, iotURL); err != nil {
		return doc, err
	}
	return doc, nil
}

func scanVersie(row rowScanner) (Versie, error) {
	var v Versie
	err := row.Scan(
		&v.Versie, (*uuid.UUID)(&v.DocumentID), &v.Titel, &v.Auteur, &v.Taal, &v.Status,
		&v.Formaat, &v.Bestandsnaam, &v.Beschrijving, &v.Bestandsomvang, &v.ContentKey,
		&v.BeginRegistratie,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return v, sentinel.ErrNotFound
	}
	if err != nil {
		return v, fmt.Errorf("scan versie: %w", err)
	}
	return v, nil
}

func (s *Postgres) GetInformatieObject(ctx context.Context, id domain.DocumentID) (*InformatieObject, error) {
	row := s.q(ctx).QueryRowContext(ctx,
		`SELECT `+canoniekColumns+` FROM drc_informatieobjecten WHERE uuid = $1`,
		uuid.UUID(id))
	doc, err := scanCanoniek(row)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *Postgres) GetVersie(ctx context.Context, id domain.DocumentID, versie int) (*Versie, error) {
	query := `SELECT ` + versieColumns + ` FROM drc_versies WHERE informatieobject_uuid = $1 AND versie = $2`
	args := []any{uuid.UUID(id), versie}
	if versie == 0 {
		query = `SELECT ` + versieColumns + ` FROM drc_versies WHERE informatieobject_uuid = $1 ORDER BY versie DESC LIMIT 1`
		args = args[:1]
	}
	v, err := scanVersie(s.q(ctx).QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *Postgres) ListDocuments(ctx context.Context, filter DocumentFilter, authFilter authz.Filter) ([]Document, int, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Bronorganisatie != "" {
		where = append(where, "d.bronorganisatie = "+arg(filter.Bronorganisatie))
	}
	if filter.Identificatie != "" {
		where = append(where, "d.identificatie = "+arg(filter.Identificatie))
	}

	predicate, predicateArgs := authFilter.SQLPredicate("d.informatieobjecttype_url", "d.vertrouwelijkheid_orde", len(args))
	where = append(where, predicate)
	args = append(args, predicateArgs...)

	clause := "WHERE " + strings.Join(where, " AND ")

	var total int
	if err := s.q(ctx).QueryRowContext(ctx,
		"SELECT COUNT(*) FROM drc_informatieobjecten d "+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count documenten: %w", err)
	}

	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	// Each document is joined with its newest version.
	query := fmt.Sprintf(`
		SELECT
			d.uuid, d.identificatie, d.bronorganisatie,
			d.informatieobjecttype_fk, d.informatieobjecttype_url,
			d.vertrouwelijkheid, d.indicatie_gebruiksrecht, d.lock_token,
			v.versie, v.informatieobject_uuid, v.titel, v.auteur, v.taal, v.status,
			v.formaat, v.bestandsnaam, v.beschrijving, v.bestandsomvang, v.content_key,
			v.begin_registratie
		FROM drc_informatieobjecten d
		JOIN drc_versies v ON v.informatieobject_uuid = d.uuid
			AND v.versie = (SELECT MAX(versie) FROM drc_versies WHERE informatieobject_uuid = d.uuid)
		%s ORDER BY d.identificatie LIMIT %d OFFSET %d`,
		clause, pageSize, (page-1)*pageSize)

	rows, err := s.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list documenten: %w", err)
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		var (
			doc           Document
			iotFK, iotURL sql.NullString
		)
		err := rows.Scan(
			(*uuid.UUID)(&doc.ID), &doc.Identificatie, &doc.Bronorganisatie,
			&iotFK, &iotURL,
			&doc.Vertrouwelijkheid, &doc.IndicatieGebruiksrecht, &doc.Lock,
			&doc.Versie.Versie, (*uuid.UUID)(&doc.Versie.DocumentID), &doc.Titel, &doc.Auteur, &doc.Taal, &doc.Status,
			&doc.Formaat, &doc.Bestandsnaam, &doc.Beschrijving, &doc.Bestandsomvang, &doc.ContentKey,
			&doc.BeginRegistratie,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan document: %w", err)
		}
		if doc.Informatieobjecttype, err = reference.FromColumns(iotFK, iotURL); err != nil {
			return nil, 0, err
		}
		out = append(out, doc)
	}
	return out, total, rows.Err()
}

func (s *Postgres) ListVersies(ctx context.Context, id domain.DocumentID) ([]Versie, error) {
	rows, err := s.q(ctx).QueryContext(ctx,
		`SELECT `+versieColumns+` FROM drc_versies WHERE informatieobject_uuid = $1 ORDER BY versie`,
		uuid.UUID(id))
	if err != nil {
		return nil, fmt.Errorf("list versies: %w", err)
	}
	defer rows.Close()

	var out []Versie
	for rows.Next() {
		v, err := scanVersie(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *Postgres) AppendVersie(ctx context.Context, versie Versie) error {
	_, err := s.exec(ctx, `
		INSERT INTO drc_versies (
			versie, informatieobject_uuid, titel, auteur, taal, status,
			formaat, bestandsnaam, beschrijving, bestandsomvang, content_key,
			begin_registratie
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		versie.Versie, uuid.UUID(versie.DocumentID), versie.Titel, versie.Auteur, versie.Taal, versie.Status,
		versie.Formaat, versie.Bestandsnaam, versie.Beschrijving, versie.Bestandsomvang, versie.ContentKey,
		versie.BeginRegistratie)
	if isUniqueViolation(err) {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert versie: %w", err)
	}
	return nil
}

func (s *Postgres) UpdateCanoniek(ctx context.Context, doc InformatieObject) error {
	res, err := s.exec(ctx, `
		UPDATE drc_informatieobjecten SET
			vertrouwelijkheid = $2, vertrouwelijkheid_orde = $3,
			indicatie_gebruiksrecht = $4
		WHERE uuid = $1`,
		uuid.UUID(doc.ID),
		doc.Vertrouwelijkheid, doc.Vertrouwelijkheid.Order(),
		doc.IndicatieGebruiksrecht)
	if err != nil {
		return fmt.Errorf("update informatieobject: %w", err)
	}
	return requireRow(res)
}

func (s *Postgres) SetLock(ctx context.Context, id domain.DocumentID, lock string) error {
	res, err := s.exec(ctx,
		`UPDATE drc_informatieobjecten SET lock_token = $2 WHERE uuid = $1`,
		uuid.UUID(id), lock)
	if err != nil {
		return fmt.Errorf("set lock: %w", err)
	}
	return requireRow(res)
}

func (s *Postgres) SetVersieContent(ctx context.Context, id domain.DocumentID, versie int, contentKey string, omvang *int64) error {
	res, err := s.exec(ctx, `
		UPDATE drc_versies SET content_key = $3, bestandsomvang = $4
		WHERE informatieobject_uuid = $1 AND versie = $2`,
		uuid.UUID(id), versie, contentKey, omvang)
	if err != nil {
		return fmt.Errorf("set versie content: %w", err)
	}
	return requireRow(res)
}

func (s *Postgres) DeleteDocument(ctx context.Context, id domain.DocumentID) error {
	// Versions and dependent rows cascade on the informatieobject foreign
	// key.
	res, err := s.exec(ctx,
		`DELETE FROM drc_informatieobjecten WHERE uuid = $1`, uuid.UUID(id))
	if err != nil {
		return fmt.Errorf("delete informatieobject: %w", err)
	}
	return requireRow(res)
}

func (s *Postgres) IdentificatieExists(ctx context.Context, bronorganisatie, identificatie string) (bool, error) {
	var exists bool
	err := s.q(ctx).QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM drc_informatieobjecten
			WHERE bronorganisatie = $1 AND identificatie = $2
		)`, bronorganisatie, identificatie).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check identificatie: %w", err)
	}
	return exists, nil
}

func (s *Postgres) CreateBestandsDelen(ctx context.Context, delen []BestandsDeel) error {
	for _, deel := range delen {
		_, err := s.exec(ctx, `
			INSERT INTO drc_bestandsdelen (uuid, informatieobject_uuid, volgnummer, omvang, voltooid)
			VALUES ($1,$2,$3,$4,$5)`,
			uuid.UUID(deel.ID), uuid.UUID(deel.DocumentID), deel.Volgnummer, deel.Omvang, deel.Voltooid)
		if err != nil {
			return fmt.Errorf("insert bestandsdeel: %w", err)
		}
	}
	return nil
}

func (s *Postgres) GetBestandsDeel(ctx context.Context, id domain.BestandsDeelID) (*BestandsDeel, error) {
	var deel BestandsDeel
	err := s.q(ctx).QueryRowContext(ctx, `
		SELECT uuid, informatieobject_uuid, volgnummer, omvang, voltooid
		FROM drc_bestandsdelen WHERE uuid = $1`, uuid.UUID(id)).Scan(
		(*uuid.UUID)(&deel.ID), (*uuid.UUID)(&deel.DocumentID), &deel.Volgnummer, &deel.Omvang, &deel.Voltooid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan bestandsdeel: %w", err)
	}
	return &deel, nil
}

func (s *Postgres) ListBestandsDelen(ctx context.Context, id domain.DocumentID) ([]BestandsDeel, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `
		SELECT uuid, informatieobject_uuid, volgnummer, omvang, voltooid
		FROM drc_bestandsdelen WHERE informatieobject_uuid = $1 ORDER BY volgnummer`,
		uuid.UUID(id))
	if err != nil {
		return nil, fmt.Errorf("list bestandsdelen: %w", err)
	}
	defer rows.Close()

	var out []BestandsDeel
	for rows.Next() {
		var deel BestandsDeel
		if err := rows.Scan(
			(*uuid.UUID)(&deel.ID), (*uuid.UUID)(&deel.DocumentID),
			&deel.Volgnummer, &deel.Omvang, &deel.Voltooid); err != nil {
			return nil, fmt.Errorf("scan bestandsdeel: %w", err)
		}
		out = append(out, deel)
	}
	return out, rows.Err()
}

func (s *Postgres) MarkBestandsDeelVoltooid(ctx context.Context, id domain.BestandsDeelID) error {
	res, err := s.exec(ctx,
		`UPDATE drc_bestandsdelen SET voltooid = TRUE WHERE uuid = $1`, uuid.UUID(id))
	if err != nil {
		return fmt.Errorf("mark bestandsdeel: %w", err)
	}
	return requireRow(res)
}

func (s *Postgres) DeleteBestandsDelen(ctx context.Context, id domain.DocumentID) error {
	if _, err := s.exec(ctx,
		`DELETE FROM drc_bestandsdelen WHERE informatieobject_uuid = $1`, uuid.UUID(id)); err != nil {
		return fmt.Errorf("delete bestandsdelen: %w", err)
	}
	return nil
}

func (s *Postgres) CreateGebruiksrechten(ctx context.Context, gr Gebruiksrechten) error {
	_, err := s.exec(ctx, `
		INSERT INTO drc_gebruiksrechten (uuid, informatieobject_uuid, startdatum, einddatum, omschrijving_voorwaarden)
		VALUES ($1,$2,$3,$4,$5)`,
		uuid.UUID(gr.ID), uuid.UUID(gr.DocumentID), gr.Startdatum, gr.Einddatum, gr.OmschrijvingVoorwaarden)
	if err != nil {
		return fmt.Errorf("insert gebruiksrechten: %w", err)
	}
	return nil
}

func (s *Postgres) GetGebruiksrechten(ctx context.Context, id domain.GebruiksrechtenID) (*Gebruiksrechten, error) {
	var gr Gebruiksrechten
	err := s.q(ctx).QueryRowContext(ctx, `
		SELECT uuid, informatieobject_uuid, startdatum, einddatum, omschrijving_voorwaarden
		FROM drc_gebruiksrechten WHERE uuid = $1`, uuid.UUID(id)).Scan(
		(*uuid.UUID)(&gr.ID), (*uuid.UUID)(&gr.DocumentID), &gr.Startdatum, &gr.Einddatum, &gr.OmschrijvingVoorwaarden)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan gebruiksrechten: %w", err)
	}
	return &gr, nil
}

func (s *Postgres) ListGebruiksrechten(ctx context.Context, id domain.DocumentID) ([]Gebruiksrechten, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `
		SELECT uuid, informatieobject_uuid, startdatum, einddatum, omschrijving_voorwaarden
		FROM drc_gebruiksrechten WHERE informatieobject_uuid = $1 ORDER BY startdatum`,
		uuid.UUID(id))
	if err != nil {
		return nil, fmt.Errorf("list gebruiksrechten: %w", err)
	}
	defer rows.Close()

	var out []Gebruiksrechten
	for rows.Next() {
		var gr Gebruiksrechten
		if err := rows.Scan(
			(*uuid.UUID)(&gr.ID), (*uuid.UUID)(&gr.DocumentID),
			&gr.Startdatum, &gr.Einddatum, &gr.OmschrijvingVoorwaarden); err != nil {
			return nil, fmt.Errorf("scan gebruiksrechten: %w", err)
		}
		out = append(out, gr)
	}
	return out, rows.Err()
}

func (s *Postgres) DeleteGebruiksrechten(ctx context.Context, id domain.GebruiksrechtenID) error {
	res, err := s.exec(ctx,
		`DELETE FROM drc_gebruiksrechten WHERE uuid = $1`, uuid.UUID(id))
	if err != nil {
		return fmt.Errorf("delete gebruiksrechten: %w", err)
	}
	return requireRow(res)
}

func (s *Postgres) CreateVerzending(ctx context.Context, vz Verzending) error {
	_, err := s.exec(ctx, `
		INSERT INTO drc_verzendingen (uuid, informatieobject_uuid, betrokkene, aard_relatie, toelichting, ontvangstdatum, verzenddatum)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		uuid.UUID(vz.ID), uuid.UUID(vz.DocumentID), vz.Betrokkene, vz.AardRelatie, vz.Toelichting, vz.Ontvangstdatum, vz.Verzenddatum)
	if err != nil {
		return fmt.Errorf("insert verzending: %w", err)
	}
	return nil
}

func (s *Postgres) GetVerzending(ctx context.Context, id domain.VerzendingID) (*Verzending, error) {
	var vz Verzending
	err := s.q(ctx).QueryRowContext(ctx, `
		SELECT uuid, informatieobject_uuid, betrokkene, aard_relatie, toelichting, ontvangstdatum, verzenddatum
		FROM drc_verzendingen WHERE uuid = $1`, uuid.UUID(id)).Scan(
		(*uuid.UUID)(&vz.ID), (*uuid.UUID)(&vz.DocumentID), &vz.Betrokkene, &vz.AardRelatie, &vz.Toelichting, &vz.Ontvangstdatum, &vz.Verzenddatum)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan verzending: %w", err)
	}
	return &vz, nil
}

func (s *Postgres) ListVerzendingen(ctx context.Context, id domain.DocumentID) ([]Verzending, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `
		SELECT uuid, informatieobject_uuid, betrokkene, aard_relatie, toelichting, ontvangstdatum, verzenddatum
		FROM drc_verzendingen WHERE informatieobject_uuid = $1 ORDER BY betrokkene`,
		uuid.UUID(id))
	if err != nil {
		return nil, fmt.Errorf("list verzendingen: %w", err)
	}
	defer rows.Close()

	var out []Verzending
	for rows.Next() {
		var vz Verzending
		if err := rows.Scan(
			(*uuid.UUID)(&vz.ID), (*uuid.UUID)(&vz.DocumentID),
			&vz.Betrokkene, &vz.AardRelatie, &vz.Toelichting, &vz.Ontvangstdatum, &vz.Verzenddatum); err != nil {
			return nil, fmt.Errorf("scan verzending: %w", err)
		}
		out = append(out, vz)
	}
	return out, rows.Err()
}

func (s *Postgres) DeleteVerzending(ctx context.Context, id domain.VerzendingID) error {
	res, err := s.exec(ctx,
		`DELETE FROM drc_verzendingen WHERE uuid = $1`, uuid.UUID(id))
	if err != nil {
		return fmt.Errorf("delete verzending: %w", err)
	}
	return requireRow(res)
}

func (s *Postgres) CreateObjectInformatieObject(ctx context.Context, oio ObjectInformatieObject) error {
	objFK, objURL := oio.Object.Columns()
	_, err := s.exec(ctx, `
		INSERT INTO drc_objectinformatieobjecten (uuid, informatieobject_uuid, object_fk, object_url, object_type)
		VALUES ($1,$2,$3,$4,$5)`,
		uuid.UUID(oio.ID), uuid.UUID(oio.DocumentID), objFK, objURL, oio.ObjectType)
	if isUniqueViolation(err) {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert objectinformatieobject: %w", err)
	}
	return nil
}

func scanOIO(row rowScanner) (ObjectInformatieObject, error) {
	var (
		oio           ObjectInformatieObject
		objFK, objURL sql.NullString
	)
	err := row.Scan(
		(*uuid.UUID)(&oio.ID), (*uuid.UUID)(&oio.DocumentID), &objFK, &objURL, &oio.ObjectType)
	if errors.Is(err, sql.ErrNoRows) {
		return oio, sentinel.ErrNotFound
	}
	if err != nil {
		return oio, fmt.Errorf("scan objectinformatieobject: %w", err)
	}
	if oio.Object, err = reference.FromColumns(objFK, objURL); err != nil {
		return oio, err
	}
	return oio, nil
}

func (s *Postgres) GetObjectInformatieObject(ctx context.Context, id domain.ObjectInformatieObjectID) (*ObjectInformatieObject, error) {
	oio, err := scanOIO(s.q(ctx).QueryRowContext(ctx, `
		SELECT uuid, informatieobject_uuid, object_fk, object_url, object_type
		FROM drc_objectinformatieobjecten WHERE uuid = $1`, uuid.UUID(id)))
	if err != nil {
		return nil, err
	}
	return &oio, nil
}

func (s *Postgres) ListObjectInformatieObjecten(ctx context.Context, filter OIOFilter) ([]ObjectInformatieObject, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.DocumentID != nil {
		where = append(where, "informatieobject_uuid = "+arg(uuid.UUID(*filter.DocumentID)))
	}
	if filter.ObjectURL != "" {
		where = append(where, "object_url = "+arg(filter.ObjectURL))
	}
	query := `SELECT uuid, informatieobject_uuid, object_fk, object_url, object_type
		FROM drc_objectinformatieobjecten`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY object_url"

	rows, err := s.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list objectinformatieobjecten: %w", err)
	}
	defer rows.Close()

	var out []ObjectInformatieObject
	for rows.Next() {
		oio, err := scanOIO(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, oio)
	}
	return out, rows.Err()
}

func (s *Postgres) DeleteObjectInformatieObject(ctx context.Context, id domain.ObjectInformatieObjectID) error {
	res, err := s.exec(ctx,
		`DELETE FROM drc_objectinformatieobjecten WHERE uuid = $1`, uuid.UUID(id))
	if err != nil {
		return fmt.Errorf("delete objectinformatieobject: %w", err)
	}
	return requireRow(res)
}
