package utils

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", "utils-test-secret")
	os.Exit(m.Run())
}

func TestGenerateTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken(7, "Asha", "donor", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "Asha", claims.Name)
	assert.Equal(t, "donor", claims.Role)
	assert.NotEmpty(t, claims.ID)
}

func TestGenerateTokenDistinctPerIssue(t *testing.T) {
	// Same principal, same second: the tokens must still differ, or
	// revoking one session would revoke them all.
	first, err := GenerateToken(1, "Asha", "donor", time.Hour)
	require.NoError(t, err)
	second, err := GenerateToken(1, "Asha", "donor", time.Hour)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	BlacklistToken(first, time.Now().Add(time.Hour))
	assert.True(t, IsTokenBlacklisted(first))
	assert.False(t, IsTokenBlacklisted(second))
}

func TestParseTokenRejectsExpired(t *testing.T) {
	token, err := GenerateToken(7, "Asha", "donor", -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(token)
	assert.Error(t, err)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	_, err := ParseToken("not-a-jwt")
	assert.Error(t, err)
}
