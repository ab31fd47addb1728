// Package bridge holds the hook through which balances proven on Ethereum
// become mintable caETH. No proof mechanism ships with the contract; a
// deployment plugs its own Validator into the SmartContract.
package bridge

import (
	"caeth-contract/chaincode/fterr"

	"github.com/holiman/uint256"
)

type Validator interface {
	// ValidateExternalBalance returns how much caETH account may be minted.
	ValidateExternalBalance(account string) (*uint256.Int, error)
}

// ValidatorFunc adapts a function to the Validator interface.
type ValidatorFunc func(account string) (*uint256.Int, error)

func (f ValidatorFunc) ValidateExternalBalance(account string) (*uint256.Int, error) {
	return f(account)
}

// Unconfigured rejects every request.
type Unconfigured struct{}

func (Unconfigured) ValidateExternalBalance(account string) (*uint256.Int, error) {
	return nil, fterr.ErrBridgeNotConfigured.Withf("cannot validate %s", account)
}
