// Package clients provides a typed Go client for the deed registry API.
package clients

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/deedprotocol/escrow-backend/api"
	"github.com/deedprotocol/escrow-backend/identity"
	"github.com/deedprotocol/escrow-backend/interfaces"
)

// DeedClient talks to a deed registry server. Requests are authenticated
// either by signing with PrivateKey or, when no key is set, by sending
// Caller in the identity header for deployments that trust it.
type DeedClient struct {
	// ServerAddr is the base URL of the registry server.
	ServerAddr string

	// PrivateKey signs requests when set. The caller identity is recovered
	// from the signature server-side.
	PrivateKey *ecdsa.PrivateKey

	// Caller is sent as the identity header when no private key is set.
	Caller interfaces.Identity

	// HTTPClient is used for requests. Defaults to http.DefaultClient.
	HTTPClient *http.Client
}

func (c *DeedClient) do(method, path string, reqBody any, out any) error {
	var payload []byte
	if reqBody != nil {
		var err error
		payload, err = json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("could not encode request: %w", err)
		}
	}

	req, err := http.NewRequest(method, c.ServerAddr+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	if c.PrivateKey != nil {
		sig, err := identity.SignRequest(c.PrivateKey, method, path, payload)
		if err != nil {
			return fmt.Errorf("could not sign request: %w", err)
		}
		req.Header.Set(identity.SignatureHeader, sig)
	} else if !c.Caller.IsZero() {
		req.Header.Set(identity.CallerHeader, c.Caller.String())
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("could not request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("%s returned non-200 response: %d", path, resp.StatusCode)
		}
		return fmt.Errorf("%s returned error %d: %s", path, resp.StatusCode, string(bodyBytes))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("could not parse %s response: %w", path, err)
	}
	return nil
}

// RegisterAsset records a new deed owned by the caller.
func (c *DeedClient) RegisterAsset(id, description string, valuation uint64) error {
	return c.do(http.MethodPost, "/api/v1/assets", api.RegisterAssetRequest{
		ID:          id,
		Description: description,
		Valuation:   valuation,
	}, nil)
}

// UpdateDetails replaces the description and valuation of an owned deed.
func (c *DeedClient) UpdateDetails(id, description string, valuation uint64) error {
	return c.do(http.MethodPut, "/api/v1/assets/"+url.PathEscape(id), api.UpdateDetailsRequest{
		Description: description,
		Valuation:   valuation,
	}, nil)
}

// ListForSale marks an owned deed for sale at the asking price.
func (c *DeedClient) ListForSale(id string, askingPrice uint64) error {
	return c.do(http.MethodPost, "/api/v1/assets/"+url.PathEscape(id)+"/list", api.ListForSaleRequest{
		AskingPrice: askingPrice,
	}, nil)
}

// Delist clears the for-sale flag of an owned deed.
func (c *DeedClient) Delist(id string) error {
	return c.do(http.MethodPost, "/api/v1/assets/"+url.PathEscape(id)+"/delist", nil, nil)
}

// GetAsset returns the deed record.
func (c *DeedClient) GetAsset(id string) (*api.AssetResponse, error) {
	var resp api.AssetResponse
	if err := c.do(http.MethodGet, "/api/v1/assets/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// IsOwner reports whether the identity owns the deed.
func (c *DeedClient) IsOwner(id string, owner interfaces.Identity) (bool, error) {
	var resp api.IsOwnerResponse
	if err := c.do(http.MethodGet, "/api/v1/assets/"+url.PathEscape(id)+"/owner/"+owner.String(), nil, &resp); err != nil {
		return false, err
	}
	return resp.IsOwner, nil
}

// InitiatePurchase opens an escrowed transfer with the caller as buyer.
func (c *DeedClient) InitiatePurchase(id string) error {
	return c.do(http.MethodPost, "/api/v1/escrows/"+url.PathEscape(id), nil, nil)
}

// ApproveAsSeller records the caller's consent as the asset owner.
func (c *DeedClient) ApproveAsSeller(id string) error {
	return c.do(http.MethodPost, "/api/v1/escrows/"+url.PathEscape(id)+"/approve/seller", nil, nil)
}

// ApproveAsNotary records the caller's consent as an active notary.
func (c *DeedClient) ApproveAsNotary(id string) error {
	return c.do(http.MethodPost, "/api/v1/escrows/"+url.PathEscape(id)+"/approve/notary", nil, nil)
}

// Complete settles a fully approved transfer.
func (c *DeedClient) Complete(id string) error {
	return c.do(http.MethodPost, "/api/v1/escrows/"+url.PathEscape(id)+"/complete", nil, nil)
}

// Cancel aborts a pending transfer and refunds the buyer.
func (c *DeedClient) Cancel(id string) error {
	return c.do(http.MethodPost, "/api/v1/escrows/"+url.PathEscape(id)+"/cancel", nil, nil)
}

// RefundExpired reclaims the deposit of a transfer past its window.
func (c *DeedClient) RefundExpired(id string) error {
	return c.do(http.MethodPost, "/api/v1/escrows/"+url.PathEscape(id)+"/refund", nil, nil)
}

// GetEscrow returns the pending transfer for a deed.
func (c *DeedClient) GetEscrow(id string) (*api.EscrowResponse, error) {
	var resp api.EscrowResponse
	if err := c.do(http.MethodGet, "/api/v1/escrows/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AddNotary authorizes a new notary. Contract owner only.
func (c *DeedClient) AddNotary(notary interfaces.Identity, jurisdiction string) error {
	return c.do(http.MethodPost, "/api/admin/notaries", api.AddNotaryRequest{
		Notary:       notary.String(),
		Jurisdiction: jurisdiction,
	}, nil)
}

// DeactivateNotary revokes a notary's standing. Contract owner only.
func (c *DeedClient) DeactivateNotary(notary interfaces.Identity) error {
	return c.do(http.MethodDelete, "/api/admin/notaries/"+notary.String(), nil, nil)
}

// GetNotary returns a notary record.
func (c *DeedClient) GetNotary(notary interfaces.Identity) (*api.NotaryResponse, error) {
	var resp api.NotaryResponse
	if err := c.do(http.MethodGet, "/api/admin/notaries/"+notary.String(), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TransferOwnership reassigns the contract owner. Current owner only.
func (c *DeedClient) TransferOwnership(newOwner interfaces.Identity) error {
	return c.do(http.MethodPost, "/api/admin/transfer-ownership", api.TransferOwnershipRequest{
		NewOwner: newOwner.String(),
	}, nil)
}
