package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidEmail(t *testing.T) {
	valid := []string{"test@example.com", "first.last@mail.co.uk", "a-b_c@host-1.io"}
	invalid := []string{"", "plain", "no-at.example.com", "user@host", "user@host.c", "us er@example.com"}

	for _, email := range valid {
		assert.True(t, ValidEmail(email), email)
	}
	for _, email := range invalid {
		assert.False(t, ValidEmail(email), email)
	}
}

func TestPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		username string
		want     []string
	}{
		{
			name:     "strong",
			password: "Dtanurag12@",
			username: "dhsvjf",
		},
		{
			name:     "short and numeric",
			password: "1234",
			username: "someone",
			want: []string{
				"This password is too short. It must contain at least 8 characters.",
				"This password is entirely numeric.",
			},
		},
		{
			name:     "common",
			password: "Password1",
			username: "someone",
			want:     []string{"This password is too common."},
		},
		{
			name:     "contains username",
			password: "moviefan-2024!",
			username: "MovieFan",
			want:     []string{"The password is too similar to the username."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Password(tt.password, tt.username))
		})
	}
}

type signupRequest struct {
	Username string `json:"username" validate:"required,max=150"`
	Email    string `json:"email" validate:"required,account_email"`
}

func TestStruct(t *testing.T) {
	require.NoError(t, Struct(signupRequest{Username: "ann", Email: "ann@example.com"}))

	err := Struct(signupRequest{Email: "nope"})
	require.Error(t, err)

	var verrs *Errors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, []string{"username: this field is required.", "Invalid email format."}, verrs.Messages)
}
