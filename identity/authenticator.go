// Package identity resolves the caller identity of API requests. The core
// components never authenticate callers; everything behind the HTTP boundary
// receives the identity this package extracted.
package identity

import (
	"crypto/ecdsa"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/deedprotocol/escrow-backend/interfaces"
)

// Header constants used in HTTP requests.
const (
	// CallerHeader carries the hex-encoded caller identity. Trusted only by
	// the HeaderAuthenticator.
	CallerHeader = "X-Deed-Caller"

	// SignatureHeader carries a hex-encoded 65-byte secp256k1 signature over
	// the request digest.
	SignatureHeader = "X-Deed-Signature"
)

// ErrUnauthenticated is returned when a request carries no usable identity.
var ErrUnauthenticated = errors.New("request carries no valid caller identity")

// RequestDigest computes the signed digest for a request: the keccak256 hash
// of method, canonical path, and body, newline separated.
func RequestDigest(method, path string, body []byte) []byte {
	var buf []byte
	buf = append(buf, method...)
	buf = append(buf, '\n')
	buf = append(buf, path...)
	buf = append(buf, '\n')
	buf = append(buf, body...)
	return crypto.Keccak256(buf)
}

// SignRequest produces the SignatureHeader value for a request. Used by the
// API client and tests.
func SignRequest(key *ecdsa.PrivateKey, method, path string, body []byte) (string, error) {
	sig, err := crypto.Sign(RequestDigest(method, path, body), key)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(sig), nil
}

// HeaderAuthenticator trusts the CallerHeader as-is. Intended for
// development deployments and tests where an upstream proxy established the
// identity.
type HeaderAuthenticator struct{}

// Authenticate returns the identity named by the CallerHeader.
func (HeaderAuthenticator) Authenticate(r *http.Request, _ []byte) (interfaces.Identity, error) {
	raw := r.Header.Get(CallerHeader)
	if raw == "" {
		return interfaces.Identity{}, fmt.Errorf("%w: missing %s header", ErrUnauthenticated, CallerHeader)
	}

	id, err := interfaces.NewIdentityFromHex(raw)
	if err != nil {
		return interfaces.Identity{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	return id, nil
}

// SignatureAuthenticator recovers the caller identity from a secp256k1
// signature over the request digest. The recovered public key's address is
// the identity, so no registry of known callers is needed.
type SignatureAuthenticator struct{}

// Authenticate recovers the identity from the SignatureHeader.
func (SignatureAuthenticator) Authenticate(r *http.Request, body []byte) (interfaces.Identity, error) {
	raw := strings.TrimPrefix(r.Header.Get(SignatureHeader), "0x")
	if raw == "" {
		return interfaces.Identity{}, fmt.Errorf("%w: missing %s header", ErrUnauthenticated, SignatureHeader)
	}

	sig, err := hex.DecodeString(raw)
	if err != nil {
		return interfaces.Identity{}, fmt.Errorf("%w: signature is not valid hex", ErrUnauthenticated)
	}
	if len(sig) != crypto.SignatureLength {
		return interfaces.Identity{}, fmt.Errorf("%w: signature must be %d bytes", ErrUnauthenticated, crypto.SignatureLength)
	}

	// The digest covers the path exactly as the client sent it, so ids with
	// percent-encoded bytes verify without canonicalization.
	pub, err := crypto.SigToPub(RequestDigest(r.Method, r.URL.EscapedPath(), body), sig)
	if err != nil {
		return interfaces.Identity{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	addr := crypto.PubkeyToAddress(*pub)
	return interfaces.Identity(addr), nil
}
