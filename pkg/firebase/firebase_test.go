package firebase

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitFirebase_MissingCredentials(t *testing.T) {
	_, err := InitFirebase(context.Background(), "")
	assert.Error(t, err)

	_, err = InitFirebase(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "not found")
}

func TestIdentityFromClaims(t *testing.T) {
	id, err := identityFromClaims("uid-1", map[string]interface{}{"email": "a@b.com", "name": "Ada"})
	require.NoError(t, err)
	assert.Equal(t, &Identity{UID: "uid-1", Email: "a@b.com", Name: "Ada"}, id)

	_, err = identityFromClaims("uid-2", map[string]interface{}{"name": "No Mail"})
	assert.ErrorIs(t, err, ErrMissingEmail)
}
