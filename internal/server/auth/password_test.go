package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/timecapsule/internal/server/config"
)

func TestAuthenticator_HashWins(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("valentine"), bcrypt.MinCost)
	require.NoError(t, err)

	a := NewAuthenticator(config.Credentials{
		ACWPasswordHash: string(hash),
		ACWPassword:     "plain",
	})

	assert.True(t, a.Verify(PartnerACW, "valentine"))
	assert.False(t, a.Verify(PartnerACW, "plain"))
	assert.False(t, a.Verify(PartnerACW, ""))
}

func TestAuthenticator_PlainAndShared(t *testing.T) {
	a := NewAuthenticator(config.Credentials{SLSPassword: "roses"})
	assert.True(t, a.Verify(PartnerSLS, "roses"))
	assert.False(t, a.Verify(PartnerSLS, "Roses"))
	assert.False(t, a.Verify(PartnerACW, "roses"))
	assert.False(t, a.Configured(PartnerACW))
	assert.True(t, a.Configured(PartnerSLS))

	shared := NewAuthenticator(config.Credentials{SLSPassword: "roses", SharedPassword: " lovebirds "})
	assert.True(t, shared.Verify(PartnerACW, "lovebirds"))
	assert.True(t, shared.Verify(PartnerSLS, "lovebirds"))
	assert.False(t, shared.Verify(PartnerSLS, "roses"))
}

func TestAuthenticator_UnknownPartner(t *testing.T) {
	a := NewAuthenticator(config.Credentials{SharedPassword: "x"})
	assert.False(t, a.Verify(Partner("C"), "x"))
}
