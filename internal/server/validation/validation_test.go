package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func valid() Registration {
	return Registration{
		FirstName:         "Ada",
		LastName:          "Lovelace",
		Email:             "ada@example.com",
		Password:          "analytical",
		ConfirmedPassword: "analytical",
	}
}

func TestRegistration(t *testing.T) {
	v := New()
	require.NoError(t, v.Struct(valid()))

	tests := []struct {
		name   string
		mutate func(*Registration)
		want   string
	}{
		{"missing first name", func(r *Registration) { r.FirstName = "" }, "first_name is required"},
		{"bad email", func(r *Registration) { r.Email = "nope" }, "invalid email format"},
		{"short password", func(r *Registration) { r.Password, r.ConfirmedPassword = "abc", "abc" }, "password must be at least 6 characters"},
		{"long password", func(r *Registration) {
			r.Password = strings.Repeat("x", 129)
			r.ConfirmedPassword = r.Password
		}, "password must be at most 128 characters"},
		{"mismatch", func(r *Registration) { r.ConfirmedPassword = "other-one" }, "passwords do not match"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid()
			tt.mutate(&r)
			err := v.Struct(r)
			require.Error(t, err)
			assert.Contains(t, Message(err), tt.want)
		})
	}
}

func TestCredentials(t *testing.T) {
	err := New().Struct(Credentials{Email: "a@b.c"})
	require.Error(t, err)
	assert.Equal(t, "password is required", Message(err))
}

func TestMessage_NotValidationError(t *testing.T) {
	assert.Equal(t, "invalid request", Message(errors.New("boom")))
}
