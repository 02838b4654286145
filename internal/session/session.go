// Package session mints and verifies the signed tokens that carry a user id
// between requests. Every authenticated response carries a freshly issued
// token, so the token behaves as a sliding-expiry session.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrInvalidToken covers bad signatures, malformed tokens and bad subjects.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken also matches ErrInvalidToken under errors.Is.
	ErrExpiredToken = fmt.Errorf("%w: expired", ErrInvalidToken)
)

// Codec signs tokens with HS256.
type Codec struct {
	secret     []byte
	loginTTL   time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewCodec(secret string, loginTTL, refreshTTL time.Duration) *Codec {
	return &Codec{
		secret:     []byte(secret),
		loginTTL:   loginTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// IssueLogin mints the long-lived token returned by signup and login.
func (c *Codec) IssueLogin(userID primitive.ObjectID) (string, error) {
	return c.Issue(userID, c.loginTTL)
}

// IssueRefresh mints the short-lived token attached to authenticated responses.
func (c *Codec) IssueRefresh(userID primitive.ObjectID) (string, error) {
	return c.Issue(userID, c.refreshTTL)
}

// Issue signs a token with sub, iat and exp claims.
func (c *Codec) Issue(userID primitive.ObjectID, ttl time.Duration) (string, error) {
	now := c.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.Hex(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Verify checks signature and expiry and returns the subject.
func (c *Codec) Verify(tokenString string) (primitive.ObjectID, error) {
	claims := &jwt.RegisteredClaims{}
	parser := jwt.Parser{ValidMethods: []string{jwt.SigningMethodHS256.Alg()}}
	_, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		var verr *jwt.ValidationError
		if errors.As(err, &verr) && verr.Errors&jwt.ValidationErrorExpired != 0 {
			return primitive.NilObjectID, ErrExpiredToken
		}
		return primitive.NilObjectID, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.ExpiresAt == nil {
		return primitive.NilObjectID, fmt.Errorf("%w: missing expiry", ErrInvalidToken)
	}

	userID, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return userID, nil
}
