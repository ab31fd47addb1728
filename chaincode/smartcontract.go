package chaincode

import (
	"caeth-contract/chaincode/bridge"
	"caeth-contract/chaincode/constants"
	"caeth-contract/chaincode/fterr"
	"caeth-contract/chaincode/helper"
	"caeth-contract/chaincode/internal"
	"caeth-contract/chaincode/logger"
	"caeth-contract/chaincode/models"
	"encoding/json"

	"github.com/holiman/uint256"
	"github.com/p2eengineering/kalp-sdk-public/kalpsdk"
)

type SmartContract struct {
	kalpsdk.Contract

	// Bridge validates balances held on Ethereum before MintCaeth. Nil means
	// bridge.Unconfigured.
	Bridge bridge.Validator
}

func (s *SmartContract) validator() bridge.Validator {
	if s.Bridge == nil {
		return bridge.Unconfigured{}
	}
	return s.Bridge
}

// predecessor is the account on whose behalf the call runs: the calling
// contract when invoked from another contract, the signer otherwise.
func (s *SmartContract) predecessor(ctx kalpsdk.TransactionContextInterface) (string, error) {
	called, err := internal.GetCalledContractAddress(ctx)
	if err != nil {
		return "", err
	}
	if called != constants.ContractAddress {
		logger.Log.Infof("called by contract %s", called)
		return called, nil
	}
	return helper.GetUserId(ctx)
}

// New initializes the contract. ownerId receives totalSupply and becomes the
// owner and first minter. metadata is a JSON encoded FungibleTokenMetadata.
func (s *SmartContract) New(ctx kalpsdk.TransactionContextInterface, ownerId string, totalSupply string, metadata string) (bool, error) {
	logger.Log.Infoln("New invoked... with arguments", ownerId, totalSupply, metadata)

	var meta models.FungibleTokenMetadata
	if e := json.Unmarshal([]byte(metadata), &meta); e != nil {
		return false, fterr.ErrInvalidMetadata.Withf("failed to parse metadata: %v", e)
	}
	return s.initialize(ctx, ownerId, totalSupply, meta)
}

// NewDefaultMeta initializes the contract with the caETH metadata.
func (s *SmartContract) NewDefaultMeta(ctx kalpsdk.TransactionContextInterface, ownerId string, totalSupply string) (bool, error) {
	logger.Log.Infoln("NewDefaultMeta invoked... with arguments", ownerId, totalSupply)
	return s.initialize(ctx, ownerId, totalSupply, models.DefaultMetadata())
}

func (s *SmartContract) initialize(ctx kalpsdk.TransactionContextInterface, ownerId string, totalSupply string, metadata models.FungibleTokenMetadata) (bool, error) {
	supply, err := helper.ParseU128(totalSupply)
	if err != nil {
		return false, err
	}
	if _, err := internal.ExecuteUnmetered(ctx, func(l *internal.Ledger) error {
		return l.Initialize(ownerId, supply, metadata)
	}); err != nil {
		return false, err
	}
	logger.Log.Infoln("New invoke complete")
	return true, nil
}

func (s *SmartContract) FtTransfer(ctx kalpsdk.TransactionContextInterface, receiverId string, amount string, memo string, attachedDeposit string) (models.Receipt, error) {
	logger.Log.Infoln("FtTransfer invoked... with arguments", receiverId, amount, memo, attachedDeposit)

	sender, err := s.predecessor(ctx)
	if err != nil {
		return models.Receipt{}, err
	}
	value, attached, err := parseAmountAndDeposit(amount, attachedDeposit)
	if err != nil {
		return models.Receipt{}, err
	}
	return internal.Execute(ctx, attached, func(l *internal.Ledger) error {
		return l.Transfer(sender, receiverId, value, memo)
	})
}

// FtTransferCall transfers to receiverId and leaves the transfer pending under
// the transaction id until the receiver calls FtResolveTransfer.
func (s *SmartContract) FtTransferCall(ctx kalpsdk.TransactionContextInterface, receiverId string, amount string, memo string, msg string, attachedDeposit string) (models.TransferCallResult, error) {
	logger.Log.Infoln("FtTransferCall invoked... with arguments", receiverId, amount, memo, msg, attachedDeposit)

	sender, err := s.predecessor(ctx)
	if err != nil {
		return models.TransferCallResult{}, err
	}
	value, attached, err := parseAmountAndDeposit(amount, attachedDeposit)
	if err != nil {
		return models.TransferCallResult{}, err
	}
	id := ctx.GetTxID()
	receipt, err := internal.Execute(ctx, attached, func(l *internal.Ledger) error {
		return l.TransferCall(id, sender, receiverId, value, memo, msg)
	})
	if err != nil {
		return models.TransferCallResult{}, err
	}
	return models.TransferCallResult{TransferId: id, Receipt: receipt}, nil
}

// FtResolveTransfer is the receiver's answer to FtTransferCall. unusedAmount
// is returned to the sender as far as the receiver still holds it.
func (s *SmartContract) FtResolveTransfer(ctx kalpsdk.TransactionContextInterface, transferId string, unusedAmount string, attachedDeposit string) (models.ResolveTransferResult, error) {
	logger.Log.Infoln("FtResolveTransfer invoked... with arguments", transferId, unusedAmount, attachedDeposit)

	caller, err := s.predecessor(ctx)
	if err != nil {
		return models.ResolveTransferResult{}, err
	}
	unused, err := helper.ParseDeposit(unusedAmount)
	if err != nil {
		return models.ResolveTransferResult{}, err
	}
	attached, err := helper.ParseDeposit(attachedDeposit)
	if err != nil {
		return models.ResolveTransferResult{}, err
	}
	var used *uint256.Int
	receipt, err := internal.Execute(ctx, attached, func(l *internal.Ledger) error {
		var err error
		used, err = l.ResolveTransfer(caller, transferId, unused)
		return err
	})
	if err != nil {
		return models.ResolveTransferResult{}, err
	}
	return models.ResolveTransferResult{UsedAmount: used.Dec(), Receipt: receipt}, nil
}

func (s *SmartContract) FtTotalSupply(ctx kalpsdk.TransactionContextInterface) (string, error) {
	var supply *uint256.Int
	if err := internal.Query(ctx, func(l *internal.Ledger) error {
		var err error
		supply, err = l.TotalSupply()
		return err
	}); err != nil {
		return "", err
	}
	return supply.Dec(), nil
}

func (s *SmartContract) FtBalanceOf(ctx kalpsdk.TransactionContextInterface, accountId string) (string, error) {
	var balance *uint256.Int
	if err := internal.Query(ctx, func(l *internal.Ledger) error {
		var err error
		balance, err = l.BalanceOf(accountId)
		return err
	}); err != nil {
		return "", err
	}
	return balance.Dec(), nil
}

func (s *SmartContract) FtMetadata(ctx kalpsdk.TransactionContextInterface) (models.FungibleTokenMetadata, error) {
	var metadata models.FungibleTokenMetadata
	err := internal.Query(ctx, func(l *internal.Ledger) error {
		var err error
		metadata, err = l.Metadata()
		return err
	})
	return metadata, err
}

// Mint credits accountId with new tokens. Only minters may call it.
func (s *SmartContract) Mint(ctx kalpsdk.TransactionContextInterface, accountId string, amount string, memo string, attachedDeposit string) (models.Receipt, error) {
	logger.Log.Infoln("Mint invoked... with arguments", accountId, amount, memo, attachedDeposit)

	caller, err := s.predecessor(ctx)
	if err != nil {
		return models.Receipt{}, err
	}
	value, attached, err := parseAmountAndDeposit(amount, attachedDeposit)
	if err != nil {
		return models.Receipt{}, err
	}
	return internal.Execute(ctx, attached, func(l *internal.Ledger) error {
		if err := l.RequireMinter(caller); err != nil {
			return err
		}
		return l.Deposit(accountId, value, memo)
	})
}

// Burn destroys tokens held by accountId. Only minters may call it.
func (s *SmartContract) Burn(ctx kalpsdk.TransactionContextInterface, accountId string, amount string, memo string, attachedDeposit string) (models.Receipt, error) {
	logger.Log.Infoln("Burn invoked... with arguments", accountId, amount, memo, attachedDeposit)

	caller, err := s.predecessor(ctx)
	if err != nil {
		return models.Receipt{}, err
	}
	value, attached, err := parseAmountAndDeposit(amount, attachedDeposit)
	if err != nil {
		return models.Receipt{}, err
	}
	return internal.Execute(ctx, attached, func(l *internal.Ledger) error {
		if err := l.RequireMinter(caller); err != nil {
			return err
		}
		return l.Burn(accountId, value, memo)
	})
}

func (s *SmartContract) AddMinter(ctx kalpsdk.TransactionContextInterface, accountId string, attachedDeposit string) (models.Receipt, error) {
	logger.Log.Infoln("AddMinter invoked... with arguments", accountId, attachedDeposit)

	caller, err := s.predecessor(ctx)
	if err != nil {
		return models.Receipt{}, err
	}
	attached, err := helper.ParseDeposit(attachedDeposit)
	if err != nil {
		return models.Receipt{}, err
	}
	return internal.Execute(ctx, attached, func(l *internal.Ledger) error {
		return l.AddMinter(caller, accountId)
	})
}

func (s *SmartContract) RemoveMinter(ctx kalpsdk.TransactionContextInterface, accountId string, attachedDeposit string) (models.Receipt, error) {
	logger.Log.Infoln("RemoveMinter invoked... with arguments", accountId, attachedDeposit)

	caller, err := s.predecessor(ctx)
	if err != nil {
		return models.Receipt{}, err
	}
	attached, err := helper.ParseDeposit(attachedDeposit)
	if err != nil {
		return models.Receipt{}, err
	}
	return internal.Execute(ctx, attached, func(l *internal.Ledger) error {
		return l.RemoveMinter(caller, accountId)
	})
}

func (s *SmartContract) Minters(ctx kalpsdk.TransactionContextInterface) ([]string, error) {
	var minters []string
	err := internal.Query(ctx, func(l *internal.Ledger) error {
		var err error
		minters, err = l.Minters()
		return err
	})
	return minters, err
}

// ValidateEth reports how much caETH the bridge allows accountId to receive.
func (s *SmartContract) ValidateEth(ctx kalpsdk.TransactionContextInterface, accountId string) (models.ExternalBalance, error) {
	logger.Log.Infoln("ValidateEth invoked... with arguments", accountId)

	if err := helper.ValidateAccountId(accountId); err != nil {
		return models.ExternalBalance{}, err
	}
	mintable, err := s.validator().ValidateExternalBalance(accountId)
	if err != nil {
		return models.ExternalBalance{}, err
	}
	return models.ExternalBalance{Account: accountId, Mintable: mintable.Dec()}, nil
}

// MintCaeth mints up to the bridge validated amount into accountId.
func (s *SmartContract) MintCaeth(ctx kalpsdk.TransactionContextInterface, accountId string, amount string, attachedDeposit string) (models.Receipt, error) {
	logger.Log.Infoln("MintCaeth invoked... with arguments", accountId, amount, attachedDeposit)

	caller, err := s.predecessor(ctx)
	if err != nil {
		return models.Receipt{}, err
	}
	value, attached, err := parseAmountAndDeposit(amount, attachedDeposit)
	if err != nil {
		return models.Receipt{}, err
	}
	return internal.Execute(ctx, attached, func(l *internal.Ledger) error {
		if err := l.RequireMinter(caller); err != nil {
			return err
		}
		mintable, err := s.validator().ValidateExternalBalance(accountId)
		if err != nil {
			return err
		}
		if mintable.Lt(value) {
			return fterr.ErrExternalBalanceExceeded.Withf("requested %s, validated %s", value.Dec(), mintable.Dec())
		}
		return l.Deposit(accountId, value, constants.CaethMintMemo)
	})
}

func parseAmountAndDeposit(amount string, attachedDeposit string) (*uint256.Int, *uint256.Int, error) {
	value, err := helper.ParseU128(amount)
	if err != nil {
		return nil, nil, err
	}
	attached, err := helper.ParseDeposit(attachedDeposit)
	if err != nil {
		return nil, nil, err
	}
	return value, attached, nil
}
