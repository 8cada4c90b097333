package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	j := &JWTer{Secret: []byte("test-secret"), Issuer: "rewear-api", TTL: time.Hour}

	token, err := j.Issue("u-1", "user")
	require.NoError(t, err)

	claims, err := j.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UID)
	assert.Equal(t, "u-1", claims.Subject)
	assert.Equal(t, "user", claims.Role)
	assert.Equal(t, "rewear-api", claims.Issuer)
}

func TestJWTWrongSecret(t *testing.T) {
	j := &JWTer{Secret: []byte("test-secret"), Issuer: "rewear-api", TTL: time.Hour}
	token, err := j.Issue("u-1", "user")
	require.NoError(t, err)

	other := &JWTer{Secret: []byte("another"), Issuer: "rewear-api", TTL: time.Hour}
	_, err = other.Parse(token)
	assert.Error(t, err)
}

func TestJWTWrongIssuer(t *testing.T) {
	j := &JWTer{Secret: []byte("test-secret"), Issuer: "someone-else", TTL: time.Hour}
	token, err := j.Issue("u-1", "user")
	require.NoError(t, err)

	mine := &JWTer{Secret: []byte("test-secret"), Issuer: "rewear-api", TTL: time.Hour}
	_, err = mine.Parse(token)
	assert.Error(t, err)
}

func TestJWTExpired(t *testing.T) {
	// leeway 60s，过期要够久
	j := &JWTer{Secret: []byte("test-secret"), Issuer: "rewear-api", TTL: -5 * time.Minute}
	token, err := j.Issue("u-1", "user")
	require.NoError(t, err)

	_, err = j.Parse(token)
	assert.Error(t, err)
}
