package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_Success(t *testing.T) {
	password := "Geheim123"

	hash, err := HashPassword(password)

	require.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, password, hash)
	assert.True(t, CheckPassword(password, hash))
	assert.False(t, CheckPassword("Geheim124", hash))
}

func TestHashPassword_DifferentHashesForSamePassword(t *testing.T) {
	hash1, err1 := HashPassword("Geheim123")
	hash2, err2 := HashPassword("Geheim123")

	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.NotEqual(t, hash1, hash2)
}

func TestCheckPassword_InvalidHash(t *testing.T) {
	assert.False(t, CheckPassword("Geheim123", "not-a-bcrypt-hash"))
}

func TestValidatePasswordStrength(t *testing.T) {
	tests := []struct {
		password string
		valid    bool
	}{
		{"Geheim123", true},
		{"Äpfel1234", true},
		{"Ab1", false},
		{"Short1A", false},
		{"alllowercase1", false},
		{"ALLUPPERCASE1", false},
		{"NoDigitsHere", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			err := ValidatePasswordStrength(tt.password)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrWeakPassword)
			}
		})
	}
}
