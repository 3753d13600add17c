package password

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.NoError(t, Verify("s3cret-pass", hash))

	err = Verify("wrong-pass", hash)
	assert.True(t, errors.Is(err, ErrMismatch))
}

func TestHashRejectsEmptyPassword(t *testing.T) {
	_, err := Hash("")
	assert.Error(t, err)
}

func TestHashesAreSalted(t *testing.T) {
	first, err := Hash("same-input")
	require.NoError(t, err)
	second, err := Hash("same-input")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}
