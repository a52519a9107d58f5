//go:build integration

package zrc

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"zgw/internal/authz"
	"zgw/internal/platform/db"
	"zgw/internal/platform/db/migrations"
	"zgw/internal/reference"
	"zgw/pkg/domain"
	"zgw/pkg/platform/sentinel"
	"zgw/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	conn  *sql.DB
	store *Postgres
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	dsn := containers.StartPostgres(s.T())

	conn, err := db.Open(dsn)
	s.Require().NoError(err)
	s.conn = conn

	s.Require().NoError(migrations.Apply(context.Background(), conn))
	s.store = NewPostgres(conn)
}

func (s *PostgresStoreSuite) TearDownSuite() {
	if s.conn != nil {
		s.conn.Close()
	}
}

func (s *PostgresStoreSuite) newZaak(identificatie string) Zaak {
	return Zaak{
		ID:                domain.ZaakID(uuid.New()),
		Identificatie:     identificatie,
		Bronorganisatie:   "123456782",
		Omschrijving:      "kapvergunning eikenlaan",
		Zaaktype:          reference.Local(uuid.New()),
		Registratiedatum:  domain.NewDate(2026, time.May, 1),
		Startdatum:        domain.NewDate(2026, time.May, 1),
		Vertrouwelijkheid: domain.VertrouwelijkheidOpenbaar,
	}
}

func (s *PostgresStoreSuite) TestZaakRoundTrip() {
	ctx := context.Background()
	zaak := s.newZaak("ZAAK-IT-0001")

	s.Require().NoError(s.store.CreateZaak(ctx, zaak))

	got, err := s.store.GetZaak(ctx, zaak.ID)
	s.Require().NoError(err)
	s.Equal(zaak.Identificatie, got.Identificatie)
	s.Equal(zaak.Bronorganisatie, got.Bronorganisatie)
	s.Equal(zaak.Zaaktype, got.Zaaktype)
	s.Equal(zaak.Startdatum, got.Startdatum)
	s.Nil(got.Einddatum)

	exists, err := s.store.IdentificatieExists(ctx, zaak.Bronorganisatie, zaak.Identificatie)
	s.Require().NoError(err)
	s.True(exists)
}

func (s *PostgresStoreSuite) TestDuplicateIdentificatieConflicts() {
	ctx := context.Background()
	zaak := s.newZaak("ZAAK-IT-0002")

	s.Require().NoError(s.store.CreateZaak(ctx, zaak))

	dup := s.newZaak("ZAAK-IT-0002")
	s.ErrorIs(s.store.CreateZaak(ctx, dup), sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestUpdateZaak() {
	ctx := context.Background()
	zaak := s.newZaak("ZAAK-IT-0003")
	s.Require().NoError(s.store.CreateZaak(ctx, zaak))

	einddatum := domain.NewDate(2026, time.June, 15)
	zaak.Einddatum = &einddatum
	zaak.Toelichting = "afgehandeld"
	s.Require().NoError(s.store.UpdateZaak(ctx, zaak))

	got, err := s.store.GetZaak(ctx, zaak.ID)
	s.Require().NoError(err)
	s.Equal("afgehandeld", got.Toelichting)
	s.Require().NotNil(got.Einddatum)
	s.Equal(einddatum, *got.Einddatum)
}

func (s *PostgresStoreSuite) TestStatusHistory() {
	ctx := context.Background()
	zaak := s.newZaak("ZAAK-IT-0004")
	s.Require().NoError(s.store.CreateZaak(ctx, zaak))

	first := Status{
		ID:               domain.StatusID(uuid.New()),
		ZaakID:           zaak.ID,
		Statustype:       "https://catalogus.example.nl/api/v1/statustypen/" + uuid.NewString(),
		DatumStatusGezet: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
	}
	second := first
	second.ID = domain.StatusID(uuid.New())
	second.DatumStatusGezet = time.Date(2026, 5, 2, 9, 0, 0, 0, time.UTC)
	second.IsEindstatus = true

	s.Require().NoError(s.store.CreateStatus(ctx, first))
	s.Require().NoError(s.store.CreateStatus(ctx, second))

	latest, err := s.store.LatestStatus(ctx, zaak.ID)
	s.Require().NoError(err)
	s.Equal(second.ID, latest.ID)
	s.True(latest.IsEindstatus)

	all, err := s.store.ListStatussen(ctx, zaak.ID)
	s.Require().NoError(err)
	s.Len(all, 2)
}

func (s *PostgresStoreSuite) TestListZakenPaginates() {
	ctx := context.Background()
	bron := "987654321"
	for _, ident := range []string{"ZAAK-IT-L1", "ZAAK-IT-L2", "ZAAK-IT-L3"} {
		zaak := s.newZaak(ident)
		zaak.Bronorganisatie = bron
		s.Require().NoError(s.store.CreateZaak(ctx, zaak))
	}

	page, total, err := s.store.ListZaken(ctx, ZaakFilter{
		Bronorganisatie: bron,
		Page:            1,
		PageSize:        2,
	}, authz.AllowAll)
	s.Require().NoError(err)
	s.Equal(3, total)
	s.Len(page, 2)
	s.Equal("ZAAK-IT-L1", page[0].Identificatie)
}

func (s *PostgresStoreSuite) TestDeleteZaakCascades() {
	ctx := context.Background()
	zaak := s.newZaak("ZAAK-IT-0005")
	s.Require().NoError(s.store.CreateZaak(ctx, zaak))

	status := Status{
		ID:               domain.StatusID(uuid.New()),
		ZaakID:           zaak.ID,
		Statustype:       "https://catalogus.example.nl/api/v1/statustypen/" + uuid.NewString(),
		DatumStatusGezet: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
	}
	s.Require().NoError(s.store.CreateStatus(ctx, status))

	s.Require().NoError(s.store.DeleteZaak(ctx, zaak.ID))

	_, err := s.store.GetZaak(ctx, zaak.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
	_, err = s.store.GetStatus(ctx, status.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}
