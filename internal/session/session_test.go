package session

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "test-secret-that-is-long-enough-for-hs256"

func TestCodec_IssueAndVerify(t *testing.T) {
	codec := NewCodec(testSecret, 7*24*time.Hour, 10*time.Minute)
	userID := primitive.NewObjectID()

	token, err := codec.IssueLogin(userID)
	require.NoError(t, err)

	got, err := codec.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestCodec_RefreshHasNewerIssuedAt(t *testing.T) {
	codec := NewCodec(testSecret, time.Hour, 10*time.Minute)
	userID := primitive.NewObjectID()

	base := time.Now().Add(-time.Minute).Truncate(time.Second)
	codec.now = func() time.Time { return base }
	first, err := codec.IssueLogin(userID)
	require.NoError(t, err)

	codec.now = func() time.Time { return base.Add(5 * time.Second) }
	second, err := codec.IssueRefresh(userID)
	require.NoError(t, err)

	iat := func(token string) time.Time {
		claims := &jwt.RegisteredClaims{}
		_, _, err := new(jwt.Parser).ParseUnverified(token, claims)
		require.NoError(t, err)
		return claims.IssuedAt.Time
	}
	assert.True(t, iat(second).After(iat(first)))

	exp := func(token string) time.Time {
		claims := &jwt.RegisteredClaims{}
		_, _, err := new(jwt.Parser).ParseUnverified(token, claims)
		require.NoError(t, err)
		return claims.ExpiresAt.Time
	}
	assert.Equal(t, base.Add(5*time.Second+10*time.Minute), exp(second))
}

func TestCodec_VerifyFailures(t *testing.T) {
	codec := NewCodec(testSecret, time.Hour, time.Minute)
	userID := primitive.NewObjectID()

	expired, err := codec.Issue(userID, -time.Minute)
	require.NoError(t, err)

	otherKey, err := NewCodec("another-secret-of-reasonable-length!!", time.Hour, time.Minute).IssueLogin(userID)
	require.NoError(t, err)

	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "not-an-object-id",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: userID.Hex(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		expired bool
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "not.a.token"},
		{name: "wrong secret", token: otherKey},
		{name: "bad subject", token: badSubject},
		{name: "missing expiry", token: noExpiry},
		{name: "expired", token: expired, expired: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.Verify(tt.token)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidToken))
			assert.Equal(t, tt.expired, errors.Is(err, ErrExpiredToken))
		})
	}
}

func TestCodec_RejectsOtherAlgorithms(t *testing.T) {
	codec := NewCodec(testSecret, time.Hour, time.Minute)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject:   primitive.NewObjectID().Hex(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = codec.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
