package catalogi

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "zgw/pkg/domain-errors"
	"zgw/pkg/platform/sentinel"
)

// fixtureFetcher serves canned catalog bodies keyed by URL.
type fixtureFetcher struct {
	bodies map[string]string
}

func (f *fixtureFetcher) FetchInto(_ context.Context, url string, target any) error {
	body, ok := f.bodies[url]
	if !ok {
		return dErrors.New(dErrors.CodeBadURL, "the URL could not be retrieved")
	}
	if err := json.Unmarshal([]byte(body), target); err != nil {
		return sentinel.ErrInvalidState
	}
	return nil
}

const (
	zaaktypeURL    = "https://ztc.example.org/api/v1/zaaktypen/11111111-1111-1111-1111-111111111111"
	besluittypeURL = "https://ztc.example.org/api/v1/besluittypen/22222222-2222-2222-2222-222222222222"
	iotURL         = "https://ztc.example.org/api/v1/informatieobjecttypen/33333333-3333-3333-3333-333333333333"
)

func fixtureClient(t *testing.T) *Client {
	t.Helper()
	return NewClient(&fixtureFetcher{bodies: map[string]string{
		zaaktypeURL: `{
			"url": "` + zaaktypeURL + `",
			"identificatie": "ZAAKTYPE-01",
			"concept": false,
			"besluittypen": ["` + besluittypeURL + `"],
			"informatieobjecttypen": ["` + iotURL + `"]
		}`,
		besluittypeURL: `{"url": "` + besluittypeURL + `", "concept": false, "zaaktypen": [], "informatieobjecttypen": []}`,
	}})
}

func TestZaaktypeFetch(t *testing.T) {
	zt, err := fixtureClient(t).Zaaktype(context.Background(), zaaktypeURL)
	require.NoError(t, err)
	assert.True(t, zt.Remote())
	assert.Equal(t, "ZAAKTYPE-01", zt.Identificatie)
}

func TestZaaktypeFetchUnknownURL(t *testing.T) {
	_, err := fixtureClient(t).Zaaktype(context.Background(), "https://ztc.example.org/api/v1/zaaktypen/missing")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadURL))
}

func TestCheckPublished(t *testing.T) {
	assert.NoError(t, CheckPublished("besluittype", false))

	err := CheckPublished("besluittype", true)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotPublished))
}

func TestCheckZaaktypeBesluittype(t *testing.T) {
	zt := &Zaaktype{URL: zaaktypeURL, Besluittypen: []string{besluittypeURL}}
	bt := &Besluittype{URL: besluittypeURL}

	assert.NoError(t, CheckZaaktypeBesluittype(zt, bt), "relation on the zaaktype side is enough")

	// Relation may also live on the besluittype side only.
	zt.Besluittypen = nil
	bt.Zaaktypen = []string{zaaktypeURL}
	assert.NoError(t, CheckZaaktypeBesluittype(zt, bt))

	bt.Zaaktypen = nil
	err := CheckZaaktypeBesluittype(zt, bt)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeZaaktypeMismatch))
}

func TestCheckZaaktypeInformatieobjecttype(t *testing.T) {
	zt := &Zaaktype{URL: zaaktypeURL, Informatieobjecttypen: []string{iotURL}}

	assert.NoError(t, CheckZaaktypeInformatieobjecttype(zt, iotURL))

	err := CheckZaaktypeInformatieobjecttype(zt, "https://ztc.example.org/api/v1/informatieobjecttypen/other")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeMissingZaaktypeIOTRelation))
}

func TestCheckBesluittypeInformatieobjecttype(t *testing.T) {
	bt := &Besluittype{URL: besluittypeURL, Informatieobjecttypen: []string{iotURL}}

	assert.NoError(t, CheckBesluittypeInformatieobjecttype(bt, iotURL))

	err := CheckBesluittypeInformatieobjecttype(bt, "https://ztc.example.org/api/v1/informatieobjecttypen/other")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeMissingBesluittypeIOTRelation))
}

func TestCheckStatustypeZaaktype(t *testing.T) {
	st := &Statustype{Zaaktype: zaaktypeURL}

	assert.NoError(t, CheckStatustypeZaaktype(st, zaaktypeURL))

	err := CheckStatustypeZaaktype(st, "https://ztc.example.org/api/v1/zaaktypen/other")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeZaaktypeMismatch))
}
