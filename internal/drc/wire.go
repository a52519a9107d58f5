package drc

import (
	"encoding/base64"
	"strconv"
	"time"

	"github.com/google/uuid"

	"zgw/internal/reference"
	"zgw/pkg/domain"
	dErrors "zgw/pkg/domain-errors"
)

// documentRequest is the HTTP body for document create and update. Inhoud is
// base64; lock is the write-lock token required on update.
type documentRequest struct {
	Identificatie        string `json:"identificatie"`
	Bronorganisatie      string `json:"bronorganisatie"`
	Informatieobjecttype string `json:"informatieobjecttype"`

	Vertrouwelijkheidaanduiding string `json:"vertrouwelijkheidaanduiding"`
	IndicatieGebruiksrecht      *bool  `json:"indicatieGebruiksrecht"`

	Titel        string `json:"titel"`
	Auteur       string `json:"auteur"`
	Taal         string `json:"taal"`
	Status       string `json:"status"`
	Formaat      string `json:"formaat"`
	Bestandsnaam string `json:"bestandsnaam"`
	Beschrijving string `json:"beschrijving"`

	Bestandsomvang *int64 `json:"bestandsomvang"`
	Inhoud         string `json:"inhoud"`

	Lock string `json:"lock"`
}

func (req *documentRequest) toDocument(splitter *reference.Splitter) (Document, []byte, error) {
	if req.Bronorganisatie == "" {
		return Document{}, nil, dErrors.Param("bronorganisatie", dErrors.CodeInvalidInput, "bronorganisatie is required")
	}
	var (
		iot reference.Ref
		err error
	)
	if req.Informatieobjecttype != "" {
		if iot, err = splitter.SplitParam("informatieobjecttype", req.Informatieobjecttype); err != nil {
			return Document{}, nil, err
		}
	}
	var vertrouwelijkheid domain.Vertrouwelijkheid
	if req.Vertrouwelijkheidaanduiding != "" {
		if vertrouwelijkheid, err = domain.ParseVertrouwelijkheid(req.Vertrouwelijkheidaanduiding); err != nil {
			return Document{}, nil, dErrors.Param("vertrouwelijkheidaanduiding", dErrors.CodeInvalidInput, err.Error())
		}
	}
	var inhoud []byte
	if req.Inhoud != "" {
		if inhoud, err = base64.StdEncoding.DecodeString(req.Inhoud); err != nil {
			return Document{}, nil, dErrors.Param("inhoud", dErrors.CodeInvalidInput, "inhoud is not valid base64")
		}
	}
	doc := Document{
		InformatieObject: InformatieObject{
			Identificatie:          req.Identificatie,
			Bronorganisatie:        req.Bronorganisatie,
			Informatieobjecttype:   iot,
			Vertrouwelijkheid:      vertrouwelijkheid,
			IndicatieGebruiksrecht: req.IndicatieGebruiksrecht,
		},
		Versie: Versie{
			Titel:          req.Titel,
			Auteur:         req.Auteur,
			Taal:           req.Taal,
			Status:         req.Status,
			Formaat:        req.Formaat,
			Bestandsnaam:   req.Bestandsnaam,
			Beschrijving:   req.Beschrijving,
			Bestandsomvang: req.Bestandsomvang,
		},
	}
	return doc, inhoud, nil
}

// documentResponse is the HTTP representation of one document version.
// Inhoud is the download URL; the lock token only appears on a chunked
// create, where the document is returned locked.
type documentResponse struct {
	URL             string `json:"url"`
	UUID            string `json:"uuid"`
	Identificatie   string `json:"identificatie"`
	Bronorganisatie string `json:"bronorganisatie"`

	Informatieobjecttype        string `json:"informatieobjecttype"`
	Vertrouwelijkheidaanduiding string `json:"vertrouwelijkheidaanduiding"`
	IndicatieGebruiksrecht      *bool  `json:"indicatieGebruiksrecht"`

	Titel        string `json:"titel,omitempty"`
	Auteur       string `json:"auteur,omitempty"`
	Taal         string `json:"taal,omitempty"`
	Status       string `json:"status,omitempty"`
	Formaat      string `json:"formaat,omitempty"`
	Bestandsnaam string `json:"bestandsnaam,omitempty"`
	Beschrijving string `json:"beschrijving,omitempty"`

	Bestandsomvang *int64 `json:"bestandsomvang"`
	Inhoud         string `json:"inhoud,omitempty"`

	Versie           int       `json:"versie"`
	BeginRegistratie time.Time `json:"beginRegistratie"`
	Locked           bool      `json:"locked"`

	Bestandsdelen []*bestandsdeelResponse `json:"bestandsdelen,omitempty"`
	Lock          string                  `json:"lock,omitempty"`
}

func fromDocument(doc *Document, splitter *reference.Splitter) *documentResponse {
	resp := &documentResponse{
		URL:                         splitter.ResourceURL("enkelvoudiginformatieobjecten", uuid.UUID(doc.ID)),
		UUID:                        uuid.UUID(doc.ID).String(),
		Identificatie:               doc.Identificatie,
		Bronorganisatie:             doc.Bronorganisatie,
		Informatieobjecttype:        splitter.Render("informatieobjecttypen", doc.Informatieobjecttype),
		Vertrouwelijkheidaanduiding: string(doc.Vertrouwelijkheid),
		IndicatieGebruiksrecht:      doc.IndicatieGebruiksrecht,
		Titel:                       doc.Titel,
		Auteur:                      doc.Auteur,
		Taal:                        doc.Taal,
		Status:                      doc.Status,
		Formaat:                     doc.Formaat,
		Bestandsnaam:                doc.Bestandsnaam,
		Beschrijving:                doc.Beschrijving,
		Bestandsomvang:              doc.Bestandsomvang,
		Versie:                      doc.Versie.Versie,
		BeginRegistratie:            doc.BeginRegistratie,
		Locked:                      doc.Locked(),
	}
	if doc.ContentKey != "" {
		resp.Inhoud = resp.URL + "/download?versie=" + strconv.Itoa(doc.Versie.Versie)
	}
	return resp
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
		results = append(results, fromDocument(&page.Results[i], splitter))
	}
	return &pageResponse{Count: page.Count, Next: page.Next, Previous: page.Previous, Results: results}
}

type bestandsdeelResponse struct {
	URL        string `json:"url"`
	Volgnummer int    `json:"volgnummer"`
	Omvang     int64  `json:"omvang"`
	Voltooid   bool   `json:"voltooid"`
}

func fromBestandsDeel(deel *BestandsDeel, splitter *reference.Splitter) *bestandsdeelResponse {
	return &bestandsdeelResponse{
		URL:        splitter.ResourceURL("bestandsdelen", uuid.UUID(deel.ID)),
		Volgnummer: deel.Volgnummer,
		Omvang:     deel.Omvang,
		Voltooid:   deel.Voltooid,
	}
}

func fromBestandsDelen(delen []BestandsDeel, splitter *reference.Splitter) []*bestandsdeelResponse {
	out := make([]*bestandsdeelResponse, 0, len(delen))
	for i := range delen {
		out = append(out, fromBestandsDeel(&delen[i], splitter))
	}
	return out
}

type lockResponse struct {
	Lock string `json:"lock"`
}

type unlockRequest struct {
	Lock string `json:"lock"`
}

type gebruiksrechtenRequest struct {
	InformatieObject        string       `json:"informatieobject"`
	Startdatum              domain.Date  `json:"startdatum"`
	Einddatum               *domain.Date `json:"einddatum"`
	OmschrijvingVoorwaarden string       `json:"omschrijvingVoorwaarden"`
}

type gebruiksrechtenResponse struct {
	URL                     string       `json:"url"`
	UUID                    string       `json:"uuid"`
	InformatieObject        string       `json:"informatieobject"`
	Startdatum              domain.Date  `json:"startdatum"`
	Einddatum               *domain.Date `json:"einddatum,omitempty"`
	OmschrijvingVoorwaarden string       `json:"omschrijvingVoorwaarden"`
}

func fromGebruiksrechten(gr *Gebruiksrechten, splitter *reference.Splitter) *gebruiksrechtenResponse {
	return &gebruiksrechtenResponse{
		URL:                     splitter.ResourceURL("gebruiksrechten", uuid.UUID(gr.ID)),
		UUID:                    uuid.UUID(gr.ID).String(),
		InformatieObject:        splitter.ResourceURL("enkelvoudiginformatieobjecten", uuid.UUID(gr.DocumentID)),
		Startdatum:              gr.Startdatum,
		Einddatum:               gr.Einddatum,
		OmschrijvingVoorwaarden: gr.OmschrijvingVoorwaarden,
	}
}

type verzendingRequest struct {
	InformatieObject string       `json:"informatieobject"`
	Betrokkene       string       `json:"betrokkene"`
	AardRelatie      string       `json:"aardRelatie"`
	Toelichting      string       `json:"toelichting"`
	Ontvangstdatum   *domain.Date `json:"ontvangstdatum"`
	Verzenddatum     *domain.Date `json:"verzenddatum"`
}

type verzendingResponse struct {
	URL              string       `json:"url"`
	UUID             string       `json:"uuid"`
	InformatieObject string       `json:"informatieobject"`
	Betrokkene       string       `json:"betrokkene"`
	AardRelatie      string       `json:"aardRelatie"`
	Toelichting      string       `json:"toelichting,omitempty"`
	Ontvangstdatum   *domain.Date `json:"ontvangstdatum,omitempty"`
	Verzenddatum     *domain.Date `json:"verzenddatum,omitempty"`
}

func fromVerzending(vz *Verzending, splitter *reference.Splitter) *verzendingResponse {
	return &verzendingResponse{
		URL:              splitter.ResourceURL("verzendingen", uuid.UUID(vz.ID)),
		UUID:             uuid.UUID(vz.ID).String(),
		InformatieObject: splitter.ResourceURL("enkelvoudiginformatieobjecten", uuid.UUID(vz.DocumentID)),
		Betrokkene:       vz.Betrokkene,
		AardRelatie:      vz.AardRelatie,
		Toelichting:      vz.Toelichting,
		Ontvangstdatum:   vz.Ontvangstdatum,
		Verzenddatum:     vz.Verzenddatum,
	}
}

type oioRequest struct {
	Object           string `json:"object"`
	InformatieObject string `json:"informatieobject"`
	ObjectType       string `json:"objectType"`
}

type oioResponse struct {
	URL              string `json:"url"`
	UUID             string `json:"uuid"`
	InformatieObject string `json:"informatieobject"`
	Object           string `json:"object"`
	ObjectType       string `json:"objectType"`
}

func fromOIO(oio *ObjectInformatieObject, splitter *reference.Splitter) *oioResponse {
	collection := "zaken"
	if oio.ObjectType == "besluit" {
		collection = "besluiten"
	}
	return &oioResponse{
		URL:              splitter.ResourceURL("objectinformatieobjecten", uuid.UUID(oio.ID)),
		UUID:             uuid.UUID(oio.ID).String(),
		InformatieObject: splitter.ResourceURL("enkelvoudiginformatieobjecten", uuid.UUID(oio.DocumentID)),
		Object:           splitter.Render(collection, oio.Object),
		ObjectType:       oio.ObjectType,
	}
}

// importRequest is the bulk registration body; each row is an independent
// document create.
type importRequest struct {
	Documenten []documentRequest `json:"documenten"`
}

type importRowResponse struct {
	Status   string           `json:"status"`
	Document *documentResponse `json:"document,omitempty"`
	Fout     string           `json:"fout,omitempty"`
}

type importResponse struct {
	Resultaten []importRowResponse `json:"resultaten"`
}
