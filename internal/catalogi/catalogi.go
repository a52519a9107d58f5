// Package catalogi provides typed proxies for catalog (ZTC) resources. The
// case, decision and document services never store catalog data; they fetch
// type definitions on demand through the reference resolver and validate
// relations against them.
package catalogi

import (
	"context"
	"slices"

	"zgw/internal/reference"
	dErrors "zgw/pkg/domain-errors"
)

// Zaaktype is the proxy for a case type definition.
type Zaaktype struct {
	URL                   string   `json:"url"`
	Identificatie         string   `json:"identificatie"`
	Omschrijving          string   `json:"omschrijving"`
	Concept               bool     `json:"concept"`
	Vertrouwelijkheid     string   `json:"vertrouwelijkheidaanduiding"`
	Statustypen           []string `json:"statustypen"`
	Resultaattypen        []string `json:"resultaattypen"`
	Informatieobjecttypen []string `json:"informatieobjecttypen"`
	Besluittypen          []string `json:"besluittypen"`
}

func (Zaaktype) Remote() bool { return true }

// Statustype describes one status a case of some type can take. The status
// with the highest volgnummer is the closing status.
type Statustype struct {
	URL          string `json:"url"`
	Omschrijving string `json:"omschrijving"`
	Zaaktype     string `json:"zaaktype"`
	Volgnummer   int    `json:"volgnummer"`
	IsEindstatus bool   `json:"isEindstatus"`
	Informeren   bool   `json:"informeren"`
	Statustekst  string `json:"statustekst,omitempty"`
}

func (Statustype) Remote() bool { return true }

// Resultaattype describes a possible case result.
type Resultaattype struct {
	URL          string `json:"url"`
	Zaaktype     string `json:"zaaktype"`
	Omschrijving string `json:"omschrijving"`
}

func (Resultaattype) Remote() bool { return true }

// Besluittype is the proxy for a decision type definition.
type Besluittype struct {
	URL                   string   `json:"url"`
	Omschrijving          string   `json:"omschrijving"`
	Concept               bool     `json:"concept"`
	Zaaktypen             []string `json:"zaaktypen"`
	Informatieobjecttypen []string `json:"informatieobjecttypen"`
}

func (Besluittype) Remote() bool { return true }

// Informatieobjecttype is the proxy for a document type definition.
type Informatieobjecttype struct {
	URL               string `json:"url"`
	Omschrijving      string `json:"omschrijving"`
	Concept           bool   `json:"concept"`
	Vertrouwelijkheid string `json:"vertrouwelijkheidaanduiding"`
}

func (Informatieobjecttype) Remote() bool { return true }

// Fetcher loads catalog resources. The production implementation is the
// reference resolver; tests substitute a fixture.
type Fetcher interface {
	FetchInto(ctx context.Context, url string, target any) error
}

// Client wraps a Fetcher with typed accessors and relation checks.
type Client struct {
	fetcher Fetcher
}

func NewClient(fetcher Fetcher) *Client {
	return &Client{fetcher: fetcher}
}

var _ Fetcher = (*reference.Resolver)(nil)

func (c *Client) Zaaktype(ctx context.Context, url string) (*Zaaktype, error) {
	var zt Zaaktype
	if err := c.fetcher.FetchInto(ctx, url, &zt); err != nil {
		return nil, err
	}
	return &zt, nil
}

func (c *Client) Statustype(ctx context.Context, url string) (*Statustype, error) {
	var st Statustype
	if err := c.fetcher.FetchInto(ctx, url, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (c *Client) Resultaattype(ctx context.Context, url string) (*Resultaattype, error) {
	var rt Resultaattype
	if err := c.fetcher.FetchInto(ctx, url, &rt); err != nil {
		return nil, err
	}
	return &rt, nil
}

func (c *Client) Besluittype(ctx context.Context, url string) (*Besluittype, error) {
	var bt Besluittype
	if err := c.fetcher.FetchInto(ctx, url, &bt); err != nil {
		return nil, err
	}
	return &bt, nil
}

func (c *Client) Informatieobjecttype(ctx context.Context, url string) (*Informatieobjecttype, error) {
	var iot Informatieobjecttype
	if err := c.fetcher.FetchInto(ctx, url, &iot); err != nil {
		return nil, err
	}
	return &iot, nil
}

// CheckPublished rejects catalog resources still in concept state. Concept
// types may not be referenced from production data.
func CheckPublished(field string, concept bool) error {
	if !concept {
		return nil
	}
	return dErrors.Param(field, dErrors.CodeNotPublished, "the resource is a concept and may not be used yet")
}

// CheckZaaktypeBesluittype validates that a decision type is allowed for a
// case type. The relation must exist on at least one side of the catalog.
func CheckZaaktypeBesluittype(zt *Zaaktype, bt *Besluittype) error {
	if slices.Contains(zt.Besluittypen, bt.URL) || slices.Contains(bt.Zaaktypen, zt.URL) {
		return nil
	}
	return dErrors.Param("besluittype", dErrors.CodeZaaktypeMismatch,
		"the decision type does not belong to the case type of the referenced case")
}

// CheckZaaktypeInformatieobjecttype validates that a document of the given
// type may be related to a case of the given type.
func CheckZaaktypeInformatieobjecttype(zt *Zaaktype, iotURL string) error {
	if slices.Contains(zt.Informatieobjecttypen, iotURL) {
		return nil
	}
	return dErrors.Param("informatieobject", dErrors.CodeMissingZaaktypeIOTRelation,
		"the case type has no relation with the document's type")
}

// CheckBesluittypeInformatieobjecttype validates that a document of the given
// type may be related to a decision of the given type.
func CheckBesluittypeInformatieobjecttype(bt *Besluittype, iotURL string) error {
	if slices.Contains(bt.Informatieobjecttypen, iotURL) {
		return nil
	}
	return dErrors.Param("informatieobject", dErrors.CodeMissingBesluittypeIOTRelation,
		"the decision type has no relation with the document's type")
}

// CheckStatustypeZaaktype validates that a status type belongs to the case's
// case type.
func CheckStatustypeZaaktype(st *Statustype, zaaktypeURL string) error {
	if st.Zaaktype == zaaktypeURL {
		return nil
	}
	return dErrors.Param("statustype", dErrors.CodeZaaktypeMismatch,
		"the status type does not belong to the case type of the case")
}

// CheckResultaattypeZaaktype validates that a result type belongs to the
// case's case type.
func CheckResultaattypeZaaktype(rt *Resultaattype, zaaktypeURL string) error {
	if rt.Zaaktype == zaaktypeURL {
		return nil
	}
	return dErrors.Param("resultaattype", dErrors.CodeZaaktypeMismatch,
		"the result type does not belong to the case type of the case")
}
