package auth

import (
	"testing"
	"time"

	"aidanwoods.dev/go-paseto"
	"github.com/MikeRez0/ypstore/internal/adapter/config"
	"github.com/MikeRez0/ypstore/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasetoToken_RoundTrip(t *testing.T) {
	ts, err := New(&config.Token{TTL: time.Hour})
	require.NoError(t, err)

	token, err := ts.CreateToken(&domain.User{ID: 7, Role: domain.RoleSeller})
	require.NoError(t, err)

	payload, err := ts.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), payload.UserID)
	assert.Equal(t, domain.RoleSeller, payload.Role)
}

func TestPasetoToken_SharedKey(t *testing.T) {
	key := paseto.NewV4SymmetricKey().ExportHex()

	issuer, err := New(&config.Token{KeyHex: key, TTL: time.Hour})
	require.NoError(t, err)
	verifier, err := New(&config.Token{KeyHex: key, TTL: time.Hour})
	require.NoError(t, err)

	token, err := issuer.CreateToken(&domain.User{ID: 1, Role: domain.RoleBuyer})
	require.NoError(t, err)

	_, err = verifier.VerifyToken(token)
	assert.NoError(t, err)

	_, err = New(&config.Token{KeyHex: "not-hex"})
	assert.Error(t, err)
}

func TestPasetoToken_Rejects(t *testing.T) {
	ts, err := New(&config.Token{TTL: time.Hour})
	require.NoError(t, err)
	other, err := New(&config.Token{TTL: time.Hour})
	require.NoError(t, err)

	foreign, err := other.CreateToken(&domain.User{ID: 1, Role: domain.RoleBuyer})
	require.NoError(t, err)

	_, err = ts.VerifyToken(foreign)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	_, err = ts.VerifyToken("v4.local.garbage")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	token, err := ts.CreateToken(&domain.User{ID: 1, Role: domain.RoleBuyer})
	require.NoError(t, err)
	ts.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	_, err = ts.VerifyToken(token)
	assert.ErrorIs(t, err, domain.ErrExpiredToken)
}
