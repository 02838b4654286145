package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/anonto42/acebook/backend/internal/router"
	"github.com/anonto42/acebook/backend/internal/testutil"
	"github.com/anonto42/acebook/backend/pkg/firebase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFirebase struct {
	identities map[string]*firebase.Identity
}

func (f *fakeFirebase) VerifyIDToken(_ context.Context, idToken string) (*firebase.Identity, error) {
	if id, ok := f.identities[idToken]; ok {
		return id, nil
	}
	return nil, errors.New("invalid id token")
}

func TestLogin(t *testing.T) {
	srv := testutil.NewServer(t)
	_, userID := srv.Signup(t, "login@example.com")

	t.Run("valid credentials", func(t *testing.T) {
		rec := srv.Do(t, http.MethodPost, "/tokens", "", map[string]string{
			"email":    "Login@Example.com",
			"password": "password123",
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var out struct {
			Message string `json:"message"`
			Token   string `json:"token"`
		}
		testutil.Decode(t, rec, &out)
		assert.Equal(t, "OK", out.Message)
		got, err := srv.Codec.Verify(out.Token)
		require.NoError(t, err)
		assert.Equal(t, userID, got)
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := srv.Do(t, http.MethodPost, "/tokens", "", map[string]string{
			"email":    "login@example.com",
			"password": "wrong-password",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"message":"auth error"}`, rec.Body.String())
	})

	t.Run("unknown email", func(t *testing.T) {
		rec := srv.Do(t, http.MethodPost, "/tokens", "", map[string]string{
			"email":    "ghost@example.com",
			"password": "password123",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		rec := srv.Do(t, http.MethodPost, "/tokens", "", map[string]string{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestFirebaseLogin(t *testing.T) {
	verifier := &fakeFirebase{identities: map[string]*firebase.Identity{
		"good": {UID: "uid-1", Email: "Fire@Example.com", Name: "Fira"},
	}}
	srv := testutil.NewServer(t, func(d *router.Deps) { d.Firebase = verifier })

	rec := srv.Do(t, http.MethodPost, "/tokens/firebase", "", map[string]string{"idToken": "good"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var first struct {
		Token string `json:"token"`
	}
	testutil.Decode(t, rec, &first)
	firstID, err := srv.Codec.Verify(first.Token)
	require.NoError(t, err)

	user, err := srv.Repos.Users.GetUserByEmail(context.Background(), "fire@example.com")
	require.NoError(t, err)
	assert.Equal(t, firstID, user.ID)
	require.NotNil(t, user.FirstName)
	assert.Equal(t, "Fira", *user.FirstName)

	// second sign-in reuses the account
	rec = srv.Do(t, http.MethodPost, "/tokens/firebase", "", map[string]string{"idToken": "good"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var second struct {
		Token string `json:"token"`
	}
	testutil.Decode(t, rec, &second)
	secondID, err := srv.Codec.Verify(second.Token)
	require.NoError(t, err)
	assert.Equal(t, firstID, secondID)

	rec = srv.Do(t, http.MethodPost, "/tokens/firebase", "", map[string]string{"idToken": "bad"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestFirebaseLogin_DisabledWithoutCredentials(t *testing.T) {
	srv := testutil.NewServer(t)

	rec := srv.Do(t, http.MethodPost, "/tokens/firebase", "", map[string]string{"idToken": "good"})
	assert.NotEqual(t, http.StatusCreated, rec.Code)
}
