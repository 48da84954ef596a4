package identity

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-key"))
	require.NoError(t, err)
	return signed
}

func TestFromBearerPreferredUsername(t *testing.T) {
	raw := signToken(t, jwt.MapClaims{
		"preferred_username": "bob@contoso.com",
		"oid":                "11111111-2222-3333-4444-555555555555",
	})

	userID, err := FromBearer("Bearer " + raw)

	require.NoError(t, err)
	assert.Equal(t, "bob@contoso.com", userID)
}

func TestFromBearerFallsBackToOID(t *testing.T) {
	raw := signToken(t, jwt.MapClaims{
		"oid": "11111111-2222-3333-4444-555555555555",
	})

	userID, err := FromBearer(raw)

	require.NoError(t, err)
	assert.Equal(t, "11111111-2222-3333-4444-555555555555", userID)
}

func TestFromBearerUPN(t *testing.T) {
	raw := signToken(t, jwt.MapClaims{
		"upn": "bob@contoso.com",
	})

	userID, err := FromBearer("Bearer " + raw)

	require.NoError(t, err)
	assert.Equal(t, "bob@contoso.com", userID)
}

func TestFromBearerEmpty(t *testing.T) {
	_, err := FromBearer("")
	assert.ErrorIs(t, err, ErrNoIdentity)

	_, err = FromBearer("Bearer ")
	assert.ErrorIs(t, err, ErrNoIdentity)
}

func TestFromBearerMalformed(t *testing.T) {
	_, err := FromBearer("Bearer not-a-jwt")
	assert.Error(t, err)
}

func TestFromBearerNoUsableClaims(t *testing.T) {
	raw := signToken(t, jwt.MapClaims{"aud": "graph"})

	_, err := FromBearer("Bearer " + raw)

	assert.ErrorIs(t, err, ErrNoIdentity)
}
