package zrc

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"zgw/internal/reference"
	"zgw/pkg/domain"
	dErrors "zgw/pkg/domain-errors"
)

// zaakRequest is the HTTP body for case create and update.
type zaakRequest struct {
	Identificatie   string `json:"identificatie"`
	Bronorganisatie string `json:"bronorganisatie"`
	Omschrijving    string `json:"omschrijving"`
	Toelichting     string `json:"toelichting"`
	Zaaktype        string `json:"zaaktype"`
	Hoofdzaak       string `json:"hoofdzaak"`

	Registratiedatum             domain.Date  `json:"registratiedatum"`
	Startdatum                   domain.Date  `json:"startdatum"`
	EinddatumGepland             *domain.Date `json:"einddatumGepland"`
	UiterlijkeEinddatumAfdoening *domain.Date `json:"uiterlijkeEinddatumAfdoening"`

	Vertrouwelijkheid  string          `json:"vertrouwelijkheidaanduiding"`
	Betalingsindicatie string          `json:"betalingsindicatie"`
	Zaakgeometrie      json.RawMessage `json:"zaakgeometrie,omitempty"`

	Opschorting Opschorting `json:"opschorting"`
	Verlenging  Verlenging  `json:"verlenging"`
}

func (req *zaakRequest) toZaak(splitter *reference.Splitter) (Zaak, error) {
	if req.Bronorganisatie == "" {
		return Zaak{}, dErrors.Param("bronorganisatie", dErrors.CodeInvalidInput, "bronorganisatie is required")
	}
	zaaktype, err := splitter.SplitParam("zaaktype", req.Zaaktype)
	if err != nil {
		return Zaak{}, err
	}
	hoofdzaak, err := splitter.SplitParam("hoofdzaak", req.Hoofdzaak)
	if err != nil {
		return Zaak{}, err
	}
	var vert domain.Vertrouwelijkheid
	if req.Vertrouwelijkheid != "" {
		vert, err = domain.ParseVertrouwelijkheid(req.Vertrouwelijkheid)
		if err != nil {
			return Zaak{}, dErrors.Param("vertrouwelijkheidaanduiding", dErrors.CodeInvalidInput, err.Error())
		}
	}
	return Zaak{
		Identificatie:                req.Identificatie,
		Bronorganisatie:              req.Bronorganisatie,
		Omschrijving:                 req.Omschrijving,
		Toelichting:                  req.Toelichting,
		Zaaktype:                     zaaktype,
		Hoofdzaak:                    hoofdzaak,
		Registratiedatum:             req.Registratiedatum,
		Startdatum:                   req.Startdatum,
		EinddatumGepland:             req.EinddatumGepland,
		UiterlijkeEinddatumAfdoening: req.UiterlijkeEinddatumAfdoening,
		Vertrouwelijkheid:            vert,
		Betalingsindicatie:           req.Betalingsindicatie,
		Zaakgeometrie:                req.Zaakgeometrie,
		Opschorting:                  req.Opschorting,
		Verlenging:                   req.Verlenging,
	}, nil
}

// zaakResponse is the HTTP representation of a case.
type zaakResponse struct {
	URL             string `json:"url"`
	UUID            string `json:"uuid"`
	Identificatie   string `json:"identificatie"`
	Bronorganisatie string `json:"bronorganisatie"`
	Omschrijving    string `json:"omschrijving"`
	Toelichting     string `json:"toelichting,omitempty"`
	Zaaktype        string `json:"zaaktype"`
	Hoofdzaak       string `json:"hoofdzaak,omitempty"`

	Registratiedatum             domain.Date  `json:"registratiedatum"`
	Startdatum                   domain.Date  `json:"startdatum"`
	EinddatumGepland             *domain.Date `json:"einddatumGepland,omitempty"`
	UiterlijkeEinddatumAfdoening *domain.Date `json:"uiterlijkeEinddatumAfdoening,omitempty"`
	Einddatum                    *domain.Date `json:"einddatum,omitempty"`

	Vertrouwelijkheid  string          `json:"vertrouwelijkheidaanduiding"`
	Betalingsindicatie string          `json:"betalingsindicatie,omitempty"`
	Zaakgeometrie      json.RawMessage `json:"zaakgeometrie,omitempty"`

	Opschorting Opschorting `json:"opschorting"`
	Verlenging  Verlenging  `json:"verlenging"`
}

func fromZaak(zaak *Zaak, splitter *reference.Splitter) *zaakResponse {
	return &zaakResponse{
		URL:                          splitter.ResourceURL("zaken", uuid.UUID(zaak.ID)),
		UUID:                         uuid.UUID(zaak.ID).String(),
		Identificatie:                zaak.Identificatie,
		Bronorganisatie:              zaak.Bronorganisatie,
		Omschrijving:                 zaak.Omschrijving,
		Toelichting:                  zaak.Toelichting,
		Zaaktype:                     splitter.Render("zaaktypen", zaak.Zaaktype),
		Hoofdzaak:                    splitter.Render("zaken", zaak.Hoofdzaak),
		Registratiedatum:             zaak.Registratiedatum,
		Startdatum:                   zaak.Startdatum,
		EinddatumGepland:             zaak.EinddatumGepland,
		UiterlijkeEinddatumAfdoening: zaak.UiterlijkeEinddatumAfdoening,
		Einddatum:                    zaak.Einddatum,
		Vertrouwelijkheid:            string(zaak.Vertrouwelijkheid),
		Betalingsindicatie:           zaak.Betalingsindicatie,
		Zaakgeometrie:                zaak.Zaakgeometrie,
		Opschorting:                  zaak.Opschorting,
		Verlenging:                   zaak.Verlenging,
	}
}

type pageResponse struct {
	Count    int    `json:"count"`
	Next     string `json:"next,omitempty"`
	Previous string `json:"previous,omitempty"`
	Results  []any  `json:"results"`
}

func fromPage(page *Page, splitter *reference.Splitter) *pageResponse {
	results := make([]any, 0, len(page.Results))
	for i := range page.Results {
		results = append(results, fromZaak(&page.Results[i], splitter))
	}
	return &pageResponse{Count: page.Count, Next: page.Next, Previous: page.Previous, Results: results}
}

type statusRequest struct {
	Zaak              string    `json:"zaak"`
	Statustype        string    `json:"statustype"`
	DatumStatusGezet  time.Time `json:"datumStatusGezet"`
	Statustoelichting string    `json:"statustoelichting"`
}

type statusResponse struct {
	URL               string    `json:"url"`
	UUID              string    `json:"uuid"`
	Zaak              string    `json:"zaak"`
	Statustype        string    `json:"statustype"`
	DatumStatusGezet  time.Time `json:"datumStatusGezet"`
	Statustoelichting string    `json:"statustoelichting,omitempty"`
	IsEindstatus      bool      `json:"isEindstatus"`
}

func fromStatus(status *Status, splitter *reference.Splitter) *statusResponse {
	return &statusResponse{
		URL:               splitter.ResourceURL("statussen", uuid.UUID(status.ID)),
		UUID:              uuid.UUID(status.ID).String(),
		Zaak:              splitter.ResourceURL("zaken", uuid.UUID(status.ZaakID)),
		Statustype:        status.Statustype,
		DatumStatusGezet:  status.DatumStatusGezet,
		Statustoelichting: status.Statustoelichting,
		IsEindstatus:      status.IsEindstatus,
	}
}

type resultaatRequest struct {
	Zaak          string `json:"zaak"`
	Resultaattype string `json:"resultaattype"`
	Toelichting   string `json:"toelichting"`
}

type resultaatResponse struct {
	URL           string `json:"url"`
	UUID          string `json:"uuid"`
	Zaak          string `json:"zaak"`
	Resultaattype string `json:"resultaattype"`
	Toelichting   string `json:"toelichting,omitempty"`
}

func fromResultaat(resultaat *Resultaat, splitter *reference.Splitter) *resultaatResponse {
	return &resultaatResponse{
		URL:           splitter.ResourceURL("resultaten", uuid.UUID(resultaat.ID)),
		UUID:          uuid.UUID(resultaat.ID).String(),
		Zaak:          splitter.ResourceURL("zaken", uuid.UUID(resultaat.ZaakID)),
		Resultaattype: resultaat.Resultaattype,
		Toelichting:   resultaat.Toelichting,
	}
}

type rolRequest struct {
	Zaak           string `json:"zaak"`
	Betrokkene     string `json:"betrokkene"`
	BetrokkeneType string `json:"betrokkeneType"`
	Roltype        string `json:"roltype"`
	Roltoelichting string `json:"roltoelichting"`
}

type rolResponse struct {
	URL              string    `json:"url"`
	UUID             string    `json:"uuid"`
	Zaak             string    `json:"zaak"`
	Betrokkene       string    `json:"betrokkene"`
	BetrokkeneType   string    `json:"betrokkeneType"`
	Roltype          string    `json:"roltype"`
	Roltoelichting   string    `json:"roltoelichting,omitempty"`
	Registratiedatum time.Time `json:"registratiedatum"`
}

func fromRol(rol *Rol, splitter *reference.Splitter) *rolResponse {
	return &rolResponse{
		URL:              splitter.ResourceURL("rollen", uuid.UUID(rol.ID)),
		UUID:             uuid.UUID(rol.ID).String(),
		Zaak:             splitter.ResourceURL("zaken", uuid.UUID(rol.ZaakID)),
		Betrokkene:       rol.Betrokkene,
		BetrokkeneType:   rol.BetrokkeneType,
		Roltype:          rol.Roltype,
		Roltoelichting:   rol.Roltoelichting,
		Registratiedatum: rol.Registratiedatum,
	}
}

type zaakObjectRequest struct {
	Zaak                string `json:"zaak"`
	Object              string `json:"object"`
	ObjectType          string `json:"objectType"`
	RelatieOmschrijving string `json:"relatieomschrijving"`
}

type zaakObjectResponse struct {
	URL                 string `json:"url"`
	UUID                string `json:"uuid"`
	Zaak                string `json:"zaak"`
	Object              string `json:"object"`
	ObjectType          string `json:"objectType"`
	RelatieOmschrijving string `json:"relatieomschrijving,omitempty"`
}

func fromZaakObject(zo *ZaakObject, splitter *reference.Splitter) *zaakObjectResponse {
	return &zaakObjectResponse{
		URL:                 splitter.ResourceURL("zaakobjecten", uuid.UUID(zo.ID)),
		UUID:                uuid.UUID(zo.ID).String(),
		Zaak:                splitter.ResourceURL("zaken", uuid.UUID(zo.ZaakID)),
		Object:              zo.Object,
		ObjectType:          zo.ObjectType,
		RelatieOmschrijving: zo.RelatieOmschrijving,
	}
}

type zaakEigenschapRequest struct {
	Zaak       string `json:"zaak"`
	Eigenschap string `json:"eigenschap"`
	Waarde     string `json:"waarde"`
}

type zaakEigenschapResponse struct {
	URL        string `json:"url"`
	UUID       string `json:"uuid"`
	Zaak       string `json:"zaak"`
	Eigenschap string `json:"eigenschap"`
	Naam       string `json:"naam,omitempty"`
	Waarde     string `json:"waarde"`
}

func fromZaakEigenschap(ze *ZaakEigenschap, splitter *reference.Splitter) *zaakEigenschapResponse {
	return &zaakEigenschapResponse{
		URL:        splitter.ResourceURL("zaakeigenschappen", uuid.UUID(ze.ID)),
		UUID:       uuid.UUID(ze.ID).String(),
		Zaak:       splitter.ResourceURL("zaken", uuid.UUID(ze.ZaakID)),
		Eigenschap: ze.Eigenschap,
		Naam:       ze.Naam,
		Waarde:     ze.Waarde,
	}
}

type klantContactRequest struct {
	Zaak          string    `json:"zaak"`
	Identificatie string    `json:"identificatie"`
	Datumtijd     time.Time `json:"datumtijd"`
	Kanaal        string    `json:"kanaal"`
	Onderwerp     string    `json:"onderwerp"`
	Toelichting   string    `json:"toelichting"`
}

type klantContactResponse struct {
	URL           string    `json:"url"`
	UUID          string    `json:"uuid"`
	Zaak          string    `json:"zaak"`
	Identificatie string    `json:"identificatie,omitempty"`
	Datumtijd     time.Time `json:"datumtijd"`
	Kanaal        string    `json:"kanaal,omitempty"`
	Onderwerp     string    `json:"onderwerp,omitempty"`
	Toelichting   string    `json:"toelichting,omitempty"`
}

func fromKlantContact(kc *KlantContact, splitter *reference.Splitter) *klantContactResponse {
	return &klantContactResponse{
		URL:           splitter.ResourceURL("klantcontacten", uuid.UUID(kc.ID)),
		UUID:          uuid.UUID(kc.ID).String(),
		Zaak:          splitter.ResourceURL("zaken", uuid.UUID(kc.ZaakID)),
		Identificatie: kc.Identificatie,
		Datumtijd:     kc.Datumtijd,
		Kanaal:        kc.Kanaal,
		Onderwerp:     kc.Onderwerp,
		Toelichting:   kc.Toelichting,
	}
}

type zaakInformatieObjectRequest struct {
	Zaak             string `json:"zaak"`
	InformatieObject string `json:"informatieobject"`
	Titel            string `json:"titel"`
	Beschrijving     string `json:"beschrijving"`
	AardRelatie      string `json:"aardRelatieWeergave"`
}

type zaakInformatieObjectResponse struct {
	URL              string    `json:"url"`
	UUID             string    `json:"uuid"`
	Zaak             string    `json:"zaak"`
	InformatieObject string    `json:"informatieobject"`
	Titel            string    `json:"titel,omitempty"`
	Beschrijving     string    `json:"beschrijving,omitempty"`
	AardRelatie      string    `json:"aardRelatieWeergave,omitempty"`
	Registratiedatum time.Time `json:"registratiedatum"`
}

func fromZaakInformatieObject(zio *ZaakInformatieObject, splitter *reference.Splitter) *zaakInformatieObjectResponse {
	return &zaakInformatieObjectResponse{
		URL:              splitter.ResourceURL("zaakinformatieobjecten", uuid.UUID(zio.ID)),
		UUID:             uuid.UUID(zio.ID).String(),
		Zaak:             splitter.ResourceURL("zaken", uuid.UUID(zio.ZaakID)),
		InformatieObject: splitter.Render("enkelvoudiginformatieobjecten", zio.InformatieObject),
		Titel:            zio.Titel,
		Beschrijving:     zio.Beschrijving,
		AardRelatie:      zio.AardRelatie,
		Registratiedatum: zio.Registratiedatum,
	}
}

type zaakBesluitRequest struct {
	Besluit string `json:"besluit"`
}

type zaakBesluitResponse struct {
	URL     string `json:"url"`
	UUID    string `json:"uuid"`
	Zaak    string `json:"zaak"`
	Besluit string `json:"besluit"`
}

func fromZaakBesluit(zb *ZaakBesluit, splitter *reference.Splitter) *zaakBesluitResponse {
	zaakURL := splitter.ResourceURL("zaken", uuid.UUID(zb.ZaakID))
	return &zaakBesluitResponse{
		URL:     zaakURL + "/besluiten/" + uuid.UUID(zb.ID).String(),
		UUID:    uuid.UUID(zb.ID).String(),
		Zaak:    zaakURL,
		Besluit: splitter.Render("besluiten", zb.Besluit),
	}
}

// zoekRequest is the body of the geometry search.
type zoekRequest struct {
	Zaakgeometrie struct {
		Within json.RawMessage `json:"within"`
	} `json:"zaakgeometrie"`
	Bronorganisatie string `json:"bronorganisatie"`
	Zaaktype        string `json:"zaaktype"`
}
