package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "zgw/pkg/domain-errors"
)

// TestParseUUID_Invariants validates the parsing invariant:
// "IDs must be valid, non-empty, non-nil UUIDs"
func TestParseUUID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseZaakID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseZaakID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseZaakID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		validUUID := uuid.New()
		id, err := ParseZaakID(validUUID.String())
		require.NoError(t, err)
		assert.Equal(t, ZaakID(validUUID), id)
	})
}

// TestTypeDistinction verifies the compiler enforces type safety.
func TestTypeDistinction(t *testing.T) {
	zaakID := ZaakID(uuid.New())
	besluitID := BesluitID(uuid.New())

	// These would fail to compile if types were interchangeable:
	// var _ ZaakID = besluitID   // compile error
	// var _ BesluitID = zaakID   // compile error

	assert.NotEqual(t, uuid.UUID(zaakID), uuid.UUID(besluitID))
}

func TestVertrouwelijkheidOrdering(t *testing.T) {
	assert.True(t, VertrouwelijkheidOpenbaar.AtMost(VertrouwelijkheidOpenbaar))
	assert.True(t, VertrouwelijkheidOpenbaar.AtMost(VertrouwelijkheidZeerGeheim))
	assert.False(t, VertrouwelijkheidVertrouwelijk.AtMost(VertrouwelijkheidOpenbaar))
	assert.False(t, VertrouwelijkheidZeerGeheim.AtMost(VertrouwelijkheidGeheim))

	t.Run("unknown level never widens access", func(t *testing.T) {
		assert.False(t, Vertrouwelijkheid("bogus").AtMost(VertrouwelijkheidGeheim))
	})
}

func TestScopeSetIntersect(t *testing.T) {
	app := NewScopeSet(ScopeZakenLezen, ScopeZakenAanmaken, ScopeZakenGeforceerdBijwerken)
	role := NewScopeSet(ScopeZakenLezen, ScopeBesluitenLezen)

	effective := app.Intersect(role)
	assert.True(t, effective.Contains(ScopeZakenLezen))
	assert.False(t, effective.Contains(ScopeZakenAanmaken))
	// A role never widens the application's authority.
	assert.False(t, effective.Contains(ScopeBesluitenLezen))
}
