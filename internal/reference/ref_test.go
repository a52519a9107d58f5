package reference

import (
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "zgw/pkg/domain-errors"
)

func TestRefVariants(t *testing.T) {
	id := uuid.New()
	local := Local(id)
	assert.True(t, local.IsLocal())
	assert.False(t, local.IsRemote())
	assert.Equal(t, id, local.LocalID())

	remote, err := Remote("https://ztc.example.org/api/v1/zaaktypen/" + uuid.NewString())
	require.NoError(t, err)
	assert.True(t, remote.IsRemote())
	assert.False(t, remote.IsLocal())

	var zero Ref
	assert.True(t, zero.IsZero())
}

func TestRemoteRejectsRelativeURL(t *testing.T) {
	_, err := Remote("/api/v1/zaaktypen/abc")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadURL))

	_, err = Remote("not a url")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadURL))
}

func TestFromColumns(t *testing.T) {
	id := uuid.New()

	ref, err := FromColumns(sql.NullString{String: id.String(), Valid: true}, sql.NullString{})
	require.NoError(t, err)
	assert.Equal(t, id, ref.LocalID())

	ref, err = FromColumns(sql.NullString{}, sql.NullString{String: "https://example.org/x/" + id.String(), Valid: true})
	require.NoError(t, err)
	assert.True(t, ref.IsRemote())

	ref, err = FromColumns(sql.NullString{}, sql.NullString{})
	require.NoError(t, err)
	assert.True(t, ref.IsZero())

	_, err = FromColumns(
		sql.NullString{String: id.String(), Valid: true},
		sql.NullString{String: "https://example.org/x", Valid: true},
	)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidResource))
}

func TestColumnsRoundTrip(t *testing.T) {
	id := uuid.New()
	fk, rawURL := Local(id).Columns()
	assert.True(t, fk.Valid)
	assert.False(t, rawURL.Valid)

	got, err := FromColumns(fk, rawURL)
	require.NoError(t, err)
	assert.True(t, got.Equal(Local(id)))
}

func TestCheckImmutable(t *testing.T) {
	a := Local(uuid.New())
	b := Local(uuid.New())

	assert.NoError(t, CheckImmutable("zaak", Ref{}, a), "setting an unset reference is allowed")
	assert.NoError(t, CheckImmutable("zaak", a, a), "resubmitting the same reference is allowed")

	err := CheckImmutable("zaak", a, b)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeImmutableField))
}

func TestSplitter(t *testing.T) {
	s := NewSplitter("https://zrc.example.org/api/v1/")
	id := uuid.New()

	ref, err := s.Split("https://zrc.example.org/api/v1/zaken/" + id.String())
	require.NoError(t, err)
	assert.True(t, ref.IsLocal())
	assert.Equal(t, id, ref.LocalID())

	ref, err = s.Split("https://ztc.example.org/api/v1/zaaktypen/" + id.String())
	require.NoError(t, err)
	assert.True(t, ref.IsRemote())

	_, err = s.Split("https://zrc.example.org/api/v1/zaken/not-a-uuid")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadURL))

	ref, err = s.Split("")
	require.NoError(t, err)
	assert.True(t, ref.IsZero())
}

func TestSplitterRender(t *testing.T) {
	s := NewSplitter("https://zrc.example.org/api/v1")
	id := uuid.New()

	assert.Equal(t, "https://zrc.example.org/api/v1/zaken/"+id.String(), s.Render("zaken", Local(id)))

	remote, err := Remote("https://other.example.org/api/v1/zaken/" + id.String())
	require.NoError(t, err)
	assert.Equal(t, remote.URL(), s.Render("zaken", remote))

	assert.Empty(t, s.Render("zaken", Ref{}))
}

func TestSplitterPageLinks(t *testing.T) {
	s := NewSplitter("https://zrc.example.org/api/v1")

	next, previous := s.PageLinks("zaken", 2, 10, 35)
	assert.Equal(t, "https://zrc.example.org/api/v1/zaken?page=3&pageSize=10", next)
	assert.Equal(t, "https://zrc.example.org/api/v1/zaken?page=1&pageSize=10", previous)

	next, previous = s.PageLinks("zaken", 1, 10, 35)
	assert.Equal(t, "https://zrc.example.org/api/v1/zaken?page=2&pageSize=10", next)
	assert.Empty(t, previous)

	next, previous = s.PageLinks("zaken", 4, 10, 35)
	assert.Empty(t, next)
	assert.Equal(t, "https://zrc.example.org/api/v1/zaken?page=3&pageSize=10", previous)

	next, previous = s.PageLinks("zaken", 1, 10, 0)
	assert.Empty(t, next)
	assert.Empty(t, previous)
}
