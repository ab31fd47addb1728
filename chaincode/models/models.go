package models

import (
	"caeth-contract/chaincode/constants"
	"caeth-contract/chaincode/fterr"
	"encoding/base64"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type FungibleTokenMetadata struct {
	Spec          string `json:"spec" validate:"required,eq=ft-1.0.0"`
	Name          string `json:"name" validate:"required"`
	Symbol        string `json:"symbol" validate:"required"`
	Icon          string `json:"icon,omitempty" metadata:",optional"`
	Reference     string `json:"reference,omitempty" metadata:",optional" validate:"required_with=ReferenceHash"`
	ReferenceHash string `json:"reference_hash,omitempty" metadata:",optional" validate:"required_with=Reference"`
	Decimals      uint8  `json:"decimals" validate:"lte=38"`
}

func DefaultMetadata() FungibleTokenMetadata {
	return FungibleTokenMetadata{
		Spec:     constants.FtMetadataSpec,
		Name:     constants.DefaultName,
		Symbol:   constants.DefaultSymbol,
		Icon:     constants.DefaultIcon,
		Decimals: constants.DefaultDecimals,
	}
}

func (m FungibleTokenMetadata) Validate() error {
	if err := validate.Struct(m); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			e := verrs[0]
			return fterr.ErrInvalidMetadata.Withf("field: %s, error: %s", e.Field(), e.Tag())
		}
		return fterr.ErrInvalidMetadata.Withf("%v", err)
	}
	if m.ReferenceHash != "" {
		hash, err := base64.StdEncoding.DecodeString(m.ReferenceHash)
		if err != nil {
			return fterr.ErrInvalidMetadata.Withf("reference_hash is not base64: %v", err)
		}
		if len(hash) != constants.ReferenceHashLen {
			return fterr.ErrInvalidMetadata.Withf("reference_hash has to be %d bytes, got %d", constants.ReferenceHashLen, len(hash))
		}
	}
	return nil
}

// Config is the mutable contract configuration kept under constants.ConfigKey.
type Config struct {
	Owner            string   `json:"owner"`
	Minters          []string `json:"minters"`
	StorageBytePrice string   `json:"storageBytePrice"`
}

type PendingTransfer struct {
	Id       string `json:"id"`
	Sender   string `json:"sender"`
	Receiver string `json:"receiver"`
	Amount   string `json:"amount"`
}

// Receipt reports how the attached deposit of a mutating call was spent.
type Receipt struct {
	Attached     string `json:"attached"`
	Charged      string `json:"charged"`
	Refund       string `json:"refund"`
	StorageDelta int64  `json:"storageDelta"`
}

func (r Receipt) String() string {
	return fmt.Sprintf("attached=%s charged=%s refund=%s delta=%d", r.Attached, r.Charged, r.Refund, r.StorageDelta)
}

type StorageBalance struct {
	Total     string `json:"total"`
	Available string `json:"available"`
}

type StorageBalanceBounds struct {
	Min string `json:"min"`
	Max string `json:"max"`
}

type StorageBalanceView struct {
	Registered bool   `json:"registered"`
	Total      string `json:"total"`
	Available  string `json:"available"`
}

type StorageDepositResult struct {
	Balance StorageBalance `json:"balance"`
	Receipt Receipt        `json:"receipt"`
}

type StorageWithdrawResult struct {
	Balance StorageBalance `json:"balance"`
	Receipt Receipt        `json:"receipt"`
}

type UnregisterResult struct {
	Removed bool    `json:"removed"`
	Receipt Receipt `json:"receipt"`
}

type TransferCallResult struct {
	TransferId string  `json:"transferId"`
	Receipt    Receipt `json:"receipt"`
}

type ResolveTransferResult struct {
	UsedAmount string  `json:"usedAmount"`
	Receipt    Receipt `json:"receipt"`
}

type ExternalBalance struct {
	Account  string `json:"account"`
	Mintable string `json:"mintable"`
}
