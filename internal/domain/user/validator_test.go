package user

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialRules_ValidateLogin(t *testing.T) {
	rules := NewCredentialRules()

	tests := []struct {
		name    string
		login   string
		wantErr string
	}{
		{name: "handle", login: "anna_k"},
		{name: "dots and dashes", login: "anna.k-1"},
		{name: "cyrillic handle", login: "анна"},
		{name: "email", login: "anna@example.com"},
		{name: "too short", login: "ab", wantErr: "at least 3"},
		{name: "too long", login: strings.Repeat("a", 65), wantErr: "at most 64"},
		{name: "space", login: "anna k", wantErr: "may contain only"},
		{name: "broken email", login: "anna@", wantErr: "not a valid email"},
		{name: "display name email", login: "Anna <anna@example.com>", wantErr: "not a valid email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := rules.ValidateLogin(tt.login)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCredentialRules_ValidatePassword(t *testing.T) {
	t.Run("accepts letters and digits", func(t *testing.T) {
		require.NoError(t, NewCredentialRules().ValidatePassword("oatmeal42"))
	})

	t.Run("reports every problem", func(t *testing.T) {
		err := NewCredentialRules().ValidatePassword("abc")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least 8 characters")
		assert.Contains(t, err.Error(), "at least one digit")
	})

	t.Run("common password", func(t *testing.T) {
		err := NewCredentialRules().ValidatePassword("Password123")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "too common")
	})

	t.Run("digits only", func(t *testing.T) {
		err := NewCredentialRules().ValidatePassword("90817263")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must contain a letter")
	})

	t.Run("mixed case when required", func(t *testing.T) {
		rules := NewCredentialRules()
		rules.RequireMixed = true

		assert.Error(t, rules.ValidatePassword("oatmeal42"))
		assert.NoError(t, rules.ValidatePassword("Oatmeal42"))
	})

	t.Run("bcrypt limit", func(t *testing.T) {
		err := NewCredentialRules().ValidatePassword(strings.Repeat("a1", 40))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at most 72 bytes")
	})
}

func TestCredentialRules_ValidateRegister(t *testing.T) {
	rules := NewCredentialRules()

	require.NoError(t, rules.ValidateRegister("anna@example.com", "Str0ng!Pass"))

	err := rules.ValidateRegister("a", "Str0ng!Pass")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "login:")

	err = rules.ValidateRegister("anna", "short")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "password:")

	err = rules.ValidateRegister("anna2024", "ANNA2024")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "differ from login")
}
