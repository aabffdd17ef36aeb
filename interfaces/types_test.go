package interfaces

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityHexRoundTrip(t *testing.T) {
	id, err := NewIdentityFromHex("0x0123456789abcdef0123456789abcdef01234567")
	require.NoError(t, err)
	assert.Equal(t, "0123456789abcdef0123456789abcdef01234567", id.String())

	same, err := NewIdentityFromHex(id.String())
	require.NoError(t, err)
	assert.True(t, id.Equal(same))
	assert.False(t, id.IsZero())
}

func TestIdentityFromInvalidHex(t *testing.T) {
	_, err := NewIdentityFromHex("0x1234")
	assert.Error(t, err)

	_, err = NewIdentityFromHex(strings.Repeat("zz", 20))
	assert.Error(t, err)
}

func TestAssetIDValidate(t *testing.T) {
	_, err := NewAssetID("parcel-0042")
	assert.NoError(t, err)

	_, err = NewAssetID("")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = NewAssetID(strings.Repeat("a", MaxAssetIDLength+1))
	assert.Error(t, err)

	_, err = NewAssetID("parcel 42")
	assert.Error(t, err, "spaces are not printable ASCII identifiers")

	_, err = NewAssetID("parcel-é")
	assert.Error(t, err)
}

func TestValidateDescription(t *testing.T) {
	assert.NoError(t, ValidateDescription(strings.Repeat("é", MaxDescriptionLength)))
	assert.Error(t, ValidateDescription(strings.Repeat("a", MaxDescriptionLength+1)))
}

func TestValidateJurisdiction(t *testing.T) {
	assert.NoError(t, ValidateJurisdiction("EU-PT-Lisboa"))
	assert.Error(t, ValidateJurisdiction(strings.Repeat("x", MaxJurisdictionLength+1)))
	assert.Error(t, ValidateJurisdiction("café"))
}

func TestEscrowTransferPredicates(t *testing.T) {
	tr := EscrowTransfer{BuyerApproved: true, ExpiresAt: 100}
	assert.False(t, tr.FullyApproved())

	tr.SellerApproved = true
	tr.NotaryApproved = true
	assert.True(t, tr.FullyApproved())

	assert.False(t, tr.ExpiredAt(99))
	assert.False(t, tr.ExpiredAt(100), "still actionable at the boundary")
	assert.True(t, tr.ExpiredAt(101))
}

func TestContentIDRoundTrip(t *testing.T) {
	id := ComputeID([]byte("deed snapshot"))
	parsed, err := NewContentIDFromHex(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)
}

func TestStorageBackendLocation(t *testing.T) {
	loc, err := NewStorageBackendLocation("s3://bucket/snapshots?region=eu-west-1")
	require.NoError(t, err)
	assert.Equal(t, "s3", loc.Scheme)
	assert.Equal(t, "eu-west-1", loc.GetParam("region"))

	_, err = NewStorageBackendLocation("vault://secrets")
	assert.ErrorIs(t, err, ErrInvalidLocationURI)
}
