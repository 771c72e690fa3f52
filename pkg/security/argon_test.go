package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHash_ProducesPHCString(t *testing.T) {
	a := New()

	e, err := a.Hash("correct horse battery staple")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(e, "$argon2id$v=19$"))
	assert.NotContains(t, e, "correct horse")
}

func TestHash_SamePasswordDifferentSalt(t *testing.T) {
	a := New()

	e1, err := a.Hash("hunter2")
	require.NoError(t, err)
	e2, err := a.Hash("hunter2")
	require.NoError(t, err)

	assert.NotEqual(t, e1, e2)
}

func TestVerify_Roundtrip(t *testing.T) {
	a := New()

	e, err := a.Hash("hunter2")
	require.NoError(t, err)

	ok, err := a.Verify("hunter2", e)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = a.Verify("hunter3", e)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerify_OldParametersStillVerify(t *testing.T) {
	old := &ArgonHash{
		Memory:      32 * 1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}

	e, err := old.Hash("hunter2")
	require.NoError(t, err)

	// Current parameters differ, but verification reads them from the hash
	ok, err := New().Verify("hunter2", e)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerify_MalformedHash(t *testing.T) {
	_, err := New().Verify("whatever", "not-a-phc-string")
	assert.Error(t, err)
}
