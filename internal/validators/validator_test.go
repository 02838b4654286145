package validators

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type signup struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type ref struct {
	Post string `json:"post" validate:"objectid"`
}

func TestValidate(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name    string
		in      interface{}
		wantErr string
	}{
		{name: "valid", in: signup{Email: "a@b.com", Password: "12345678"}},
		{name: "missing email", in: signup{Password: "12345678"}, wantErr: "email is required"},
		{name: "bad email", in: signup{Email: "nope", Password: "12345678"}, wantErr: "email must be a valid email address"},
		{name: "short password", in: signup{Email: "a@b.com", Password: "1234567"}, wantErr: "password must be at least 8 characters"},
		{name: "valid id", in: ref{Post: primitive.NewObjectID().Hex()}},
		{name: "bad id", in: ref{Post: "123"}, wantErr: "post is not a valid id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.in)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}

func TestText(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Text("message", "hi", 200))
	assert.NoError(t, v.Text("message", strings.Repeat("é", 200), 200))
	assert.EqualError(t, v.Text("message", "", 200), "message is required")
	assert.EqualError(t, v.Text("message", strings.Repeat("a", 201), 200), "message must be at most 200 characters")
}
