package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestGenerateAndParseToken(t *testing.T) {
	userID := uuid.New()

	token, err := GenerateToken(testSecret, userID, "garage", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	parsedID, role, err := ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, userID, parsedID)
	assert.Equal(t, "garage", role)
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, err := GenerateToken(testSecret, uuid.New(), "user", time.Hour)
	require.NoError(t, err)

	_, _, err = ParseToken("another-secret", token)
	assert.Error(t, err)
}

func TestParseToken_Expired(t *testing.T) {
	token, err := GenerateToken(testSecret, uuid.New(), "user", -time.Minute)
	require.NoError(t, err)

	_, _, err = ParseToken(testSecret, token)
	assert.Error(t, err)
}

func TestParseToken_Garbage(t *testing.T) {
	_, _, err := ParseToken(testSecret, "not-a-token")
	assert.Error(t, err)
}
