package brc

import (
	"github.com/google/uuid"

	"zgw/internal/reference"
	"zgw/pkg/domain"
	dErrors "zgw/pkg/domain-errors"
)

// besluitRequest is the HTTP body for decision create and update.
type besluitRequest struct {
	Identificatie                string `json:"identificatie"`
	VerantwoordelijkeOrganisatie string `json:"verantwoordelijkeOrganisatie"`
	Besluittype                  string `json:"besluittype"`
	Zaak                         string `json:"zaak"`

	Datum                  domain.Date  `json:"datum"`
	Ingangsdatum           domain.Date  `json:"ingangsdatum"`
	Vervaldatum            *domain.Date `json:"vervaldatum"`
	Vervalreden            string       `json:"vervalreden"`
	Publicatiedatum        *domain.Date `json:"publicatiedatum"`
	Verzenddatum           *domain.Date `json:"verzenddatum"`
	UiterlijkeReactiedatum *domain.Date `json:"uiterlijkeReactiedatum"`

	Bestuursorgaan string `json:"bestuursorgaan"`
	Toelichting    string `json:"toelichting"`
}

func (req *besluitRequest) toBesluit(splitter *reference.Splitter) (Besluit, error) {
	if req.VerantwoordelijkeOrganisatie == "" {
		return Besluit{}, dErrors.Param("verantwoordelijkeOrganisatie", dErrors.CodeInvalidInput, "verantwoordelijkeOrganisatie is required")
	}
	besluittype, err := splitter.SplitParam("besluittype", req.Besluittype)
	if err != nil {
		return Besluit{}, err
	}
	zaak, err := splitter.SplitParam("zaak", req.Zaak)
	if err != nil {
		return Besluit{}, err
	}
	return Besluit{
		Identificatie:                req.Identificatie,
		VerantwoordelijkeOrganisatie: req.VerantwoordelijkeOrganisatie,
		Besluittype:                  besluittype,
		Zaak:                         zaak,
		Datum:                        req.Datum,
		Ingangsdatum:                 req.Ingangsdatum,
		Vervaldatum:                  req.Vervaldatum,
		Vervalreden:                  req.Vervalreden,
		Publicatiedatum:              req.Publicatiedatum,
		Verzenddatum:                 req.Verzenddatum,
		UiterlijkeReactiedatum:       req.UiterlijkeReactiedatum,
		Bestuursorgaan:               req.Bestuursorgaan,
		Toelichting:                  req.Toelichting,
	}, nil
}

// besluitResponse is the HTTP representation of a decision.
type besluitResponse struct {
	URL                          string `json:"url"`
	UUID                         string `json:"uuid"`
	Identificatie                string `json:"identificatie"`
	VerantwoordelijkeOrganisatie string `json:"verantwoordelijkeOrganisatie"`
	Besluittype                  string `json:"besluittype"`
	Zaak                         string `json:"zaak,omitempty"`

	Datum                  domain.Date  `json:"datum"`
	Ingangsdatum           domain.Date  `json:"ingangsdatum"`
	Vervaldatum            *domain.Date `json:"vervaldatum,omitempty"`
	Vervalreden            string       `json:"vervalreden,omitempty"`
	Publicatiedatum        *domain.Date `json:"publicatiedatum,omitempty"`
	Verzenddatum           *domain.Date `json:"verzenddatum,omitempty"`
	UiterlijkeReactiedatum *domain.Date `json:"uiterlijkeReactiedatum,omitempty"`

	Bestuursorgaan string `json:"bestuursorgaan,omitempty"`
	Toelichting    string `json:"toelichting,omitempty"`
}

func fromBesluit(besluit *Besluit, splitter *reference.Splitter) *besluitResponse {
	return &besluitResponse{
		URL:                          splitter.ResourceURL("besluiten", uuid.UUID(besluit.ID)),
		UUID:                         uuid.UUID(besluit.ID).String(),
		Identificatie:                besluit.Identificatie,
		VerantwoordelijkeOrganisatie: besluit.VerantwoordelijkeOrganisatie,
		Besluittype:                  splitter.Render("besluittypen", besluit.Besluittype),
		Zaak:                         splitter.Render("zaken", besluit.Zaak),
		Datum:                        besluit.Datum,
		Ingangsdatum:                 besluit.Ingangsdatum,
		Vervaldatum:                  besluit.Vervaldatum,
		Vervalreden:                  besluit.Vervalreden,
		Publicatiedatum:              besluit.Publicatiedatum,
		Verzenddatum:                 besluit.Verzenddatum,
		UiterlijkeReactiedatum:       besluit.UiterlijkeReactiedatum,
		Bestuursorgaan:               besluit.Bestuursorgaan,
		Toelichting:                  besluit.Toelichting,
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
		results = append(results, fromBesluit(&page.Results[i], splitter))
	}
	return &pageResponse{Count: page.Count, Next: page.Next, Previous: page.Previous, Results: results}
}

type bioRequest struct {
	Besluit          string `json:"besluit"`
	InformatieObject string `json:"informatieobject"`
}

type bioResponse struct {
	URL              string `json:"url"`
	UUID             string `json:"uuid"`
	Besluit          string `json:"besluit"`
	InformatieObject string `json:"informatieobject"`
}

func fromBIO(bio *BesluitInformatieObject, splitter *reference.Splitter) *bioResponse {
	return &bioResponse{
		URL:              splitter.ResourceURL("besluitinformatieobjecten", uuid.UUID(bio.ID)),
		UUID:             uuid.UUID(bio.ID).String(),
		Besluit:          splitter.ResourceURL("besluiten", uuid.UUID(bio.BesluitID)),
		InformatieObject: splitter.Render("enkelvoudiginformatieobjecten", bio.InformatieObject),
	}
}

// verwerkRequest is the body of the one-shot convenience operation.
type verwerkRequest struct {
	Besluit            besluitRequest `json:"besluit"`
	InformatieObjecten []string       `json:"informatieobjecten"`
}

type verwerkResponse struct {
	Besluit            *besluitResponse `json:"besluit"`
	InformatieObjecten []*bioResponse   `json:"informatieobjecten"`
}
