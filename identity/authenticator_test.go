package identity

import (
	"bytes"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deedprotocol/escrow-backend/interfaces"
)

func TestHeaderAuthenticator(t *testing.T) {
	auth := HeaderAuthenticator{}

	req := httptest.NewRequest("POST", "/api/v1/assets", nil)
	req.Header.Set(CallerHeader, "0123456789abcdef0123456789abcdef01234567")

	id, err := auth.Authenticate(req, nil)
	require.NoError(t, err)
	assert.Equal(t, "0123456789abcdef0123456789abcdef01234567", id.String())
}

func TestHeaderAuthenticatorRejects(t *testing.T) {
	auth := HeaderAuthenticator{}

	req := httptest.NewRequest("POST", "/api/v1/assets", nil)
	_, err := auth.Authenticate(req, nil)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	req.Header.Set(CallerHeader, "not-hex")
	_, err = auth.Authenticate(req, nil)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestSignatureAuthenticatorRoundTrip(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	want := interfaces.Identity(crypto.PubkeyToAddress(key.PublicKey))

	body := []byte(`{"description":"two hectares","valuation":5000}`)
	sig, err := SignRequest(key, "POST", "/api/v1/assets", body)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/v1/assets", bytes.NewReader(body))
	req.Header.Set(SignatureHeader, sig)

	got, err := SignatureAuthenticator{}.Authenticate(req, body)
	require.NoError(t, err)
	assert.True(t, want.Equal(got))
}

func TestSignatureAuthenticatorTamperedBody(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	signer := interfaces.Identity(crypto.PubkeyToAddress(key.PublicKey))

	body := []byte(`{"asking_price":100}`)
	sig, err := SignRequest(key, "POST", "/api/v1/assets/parcel-1/list", body)
	require.NoError(t, err)

	tampered := []byte(`{"asking_price":1}`)
	req := httptest.NewRequest("POST", "/api/v1/assets/parcel-1/list", bytes.NewReader(tampered))
	req.Header.Set(SignatureHeader, sig)

	// Recovery over a different digest yields a different identity, not the
	// signer. The operation then fails authorization downstream.
	got, err := SignatureAuthenticator{}.Authenticate(req, tampered)
	if err == nil {
		assert.False(t, signer.Equal(got))
	}
}

func TestSignatureAuthenticatorRejectsGarbage(t *testing.T) {
	auth := SignatureAuthenticator{}

	req := httptest.NewRequest("POST", "/x", nil)
	_, err := auth.Authenticate(req, nil)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	req.Header.Set(SignatureHeader, "zz")
	_, err = auth.Authenticate(req, nil)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	req.Header.Set(SignatureHeader, "abcd")
	_, err = auth.Authenticate(req, nil)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}
