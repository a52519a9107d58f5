package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_CheckMutation_AllowsKeyedStatements(t *testing.T) {
	assert.NoError(t, CheckMutation("UPDATE drc_informatieobjecten SET lock = $1 WHERE uuid = $2"))
	assert.NoError(t, CheckMutation("DELETE FROM drc_bestandsdelen WHERE informatieobject_uuid = $1"))
}

func Test_CheckMutation_AllowsReadsAndInserts(t *testing.T) {
	assert.NoError(t, CheckMutation("SELECT uuid FROM drc_informatieobjecten"))
	assert.NoError(t, CheckMutation("INSERT INTO drc_versies (uuid) VALUES ($1)"))
}

func Test_CheckMutation_BlocksUnboundedMutations(t *testing.T) {
	err := CheckMutation("DELETE FROM drc_informatieobjecten")
	require.ErrorIs(t, err, ErrQueryBlocked)

	err = CheckMutation("UPDATE drc_versies SET status = 'definitief' WHERE status = 'in_bewerking'")
	require.ErrorIs(t, err, ErrQueryBlocked)
}
