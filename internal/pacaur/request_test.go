package pacaur

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseState(t *testing.T) {
	for _, s := range []string{"absent", "present", "latest"} {
		st, err := ParseState(s)
		require.NoError(t, err)
		assert.Equal(t, State(s), st)
	}
	_, err := ParseState("installed")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestRequestValidate(t *testing.T) {
	assert.NoError(t, (&Request{Names: []string{"vim"}, State: StatePresent}).Validate())
	assert.NoError(t, (&Request{Upgrade: true, State: StatePresent}).Validate())
	assert.NoError(t, (&Request{UpdateCache: true, State: StatePresent}).Validate())

	var verr *ValidationError
	err := (&Request{Names: []string{"vim"}, Upgrade: true, State: StatePresent}).Validate()
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name and upgrade options are mutually exclusive", verr.Msg)

	err = (&Request{State: StatePresent}).Validate()
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "one of name, upgrade or update_cache is required", verr.Msg)

	err = (&Request{Names: []string{"vim"}, State: State("held")}).Validate()
	assert.ErrorAs(t, err, &verr)
}

func TestSplitExtraArgs(t *testing.T) {
	assert.Equal(t, []string{"--dbpath", "/tmp/db"}, splitExtraArgs("  --dbpath   /tmp/db "))
	assert.Empty(t, splitExtraArgs(""))
}

func TestStatePastParticiple(t *testing.T) {
	assert.Equal(t, "removed", StateAbsent.pastParticiple())
	assert.Equal(t, "installed", StatePresent.pastParticiple())
	assert.Equal(t, "updated", StateLatest.pastParticiple())
}
