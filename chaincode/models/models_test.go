package models_test

import (
	"caeth-contract/chaincode/constants"
	"caeth-contract/chaincode/fterr"
	"caeth-contract/chaincode/models"
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMetadataValidate(t *testing.T) {
	t.Parallel()

	hash := base64.StdEncoding.EncodeToString(make([]byte, constants.ReferenceHashLen))

	tests := []struct {
		testName string
		modify   func(*models.FungibleTokenMetadata)
		valid    bool
	}{
		{
			testName: "Success - default metadata",
			modify:   func(m *models.FungibleTokenMetadata) {},
			valid:    true,
		},
		{
			testName: "Success - reference with hash",
			modify: func(m *models.FungibleTokenMetadata) {
				m.Reference = "https://example.org/caeth.json"
				m.ReferenceHash = hash
			},
			valid: true,
		},
		{
			testName: "Success - zero decimals and no icon",
			modify: func(m *models.FungibleTokenMetadata) {
				m.Decimals = 0
				m.Icon = ""
			},
			valid: true,
		},
		{
			testName: "Success - max decimals",
			modify:   func(m *models.FungibleTokenMetadata) { m.Decimals = constants.MaxDecimals },
			valid:    true,
		},
		{
			testName: "Failure - wrong spec",
			modify:   func(m *models.FungibleTokenMetadata) { m.Spec = "ft-2.0.0" },
		},
		{
			testName: "Failure - missing spec",
			modify:   func(m *models.FungibleTokenMetadata) { m.Spec = "" },
		},
		{
			testName: "Failure - missing name",
			modify:   func(m *models.FungibleTokenMetadata) { m.Name = "" },
		},
		{
			testName: "Failure - missing symbol",
			modify:   func(m *models.FungibleTokenMetadata) { m.Symbol = "" },
		},
		{
			testName: "Failure - too many decimals",
			modify:   func(m *models.FungibleTokenMetadata) { m.Decimals = constants.MaxDecimals + 1 },
		},
		{
			testName: "Failure - reference without hash",
			modify:   func(m *models.FungibleTokenMetadata) { m.Reference = "https://example.org/caeth.json" },
		},
		{
			testName: "Failure - hash without reference",
			modify:   func(m *models.FungibleTokenMetadata) { m.ReferenceHash = hash },
		},
		{
			testName: "Failure - hash is not base64",
			modify: func(m *models.FungibleTokenMetadata) {
				m.Reference = "https://example.org/caeth.json"
				m.ReferenceHash = "not base64!"
			},
		},
		{
			testName: "Failure - hash has the wrong length",
			modify: func(m *models.FungibleTokenMetadata) {
				m.Reference = "https://example.org/caeth.json"
				m.ReferenceHash = base64.StdEncoding.EncodeToString([]byte("short"))
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.testName, func(t *testing.T) {
			t.Parallel()

			metadata := models.DefaultMetadata()
			tt.modify(&metadata)

			err := metadata.Validate()
			if tt.valid {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, fterr.ErrInvalidMetadata)
		})
	}
}

func TestMetadataJSON(t *testing.T) {
	t.Parallel()

	var metadata models.FungibleTokenMetadata
	err := json.Unmarshal([]byte(`{"spec":"ft-1.0.0","name":"Chain Abstraction ETH","symbol":"caETH","decimals":24}`), &metadata)
	require.NoError(t, err)
	require.NoError(t, metadata.Validate())
	require.Equal(t, uint8(24), metadata.Decimals)

	bytes, err := json.Marshal(metadata)
	require.NoError(t, err)
	require.NotContains(t, string(bytes), "reference")
	require.NotContains(t, string(bytes), "icon")
}

func TestReceiptString(t *testing.T) {
	t.Parallel()

	r := models.Receipt{Attached: "10", Charged: "7", Refund: "3", StorageDelta: 121}
	require.Equal(t, "attached=10 charged=7 refund=3 delta=121", r.String())
}
