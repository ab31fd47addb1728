package chaincode

import (
	"caeth-contract/chaincode/helper"
	"caeth-contract/chaincode/internal"
	"caeth-contract/chaincode/logger"
	"caeth-contract/chaincode/models"

	"github.com/p2eengineering/kalp-sdk-public/kalpsdk"
)

// StorageDeposit registers accountId, or the caller when accountId is empty.
// attachedDeposit has to cover the minimum storage balance; whatever exceeds
// the cost of the account slot is refunded. Storage balance is never kept
// beyond the slot, so registrationOnly does not change the outcome.
func (s *SmartContract) StorageDeposit(ctx kalpsdk.TransactionContextInterface, accountId string, registrationOnly bool, attachedDeposit string) (models.StorageDepositResult, error) {
	logger.Log.Infoln("StorageDeposit invoked... with arguments", accountId, registrationOnly, attachedDeposit)

	if accountId == "" {
		caller, err := s.predecessor(ctx)
		if err != nil {
			return models.StorageDepositResult{}, err
		}
		accountId = caller
	}
	attached, err := helper.ParseDeposit(attachedDeposit)
	if err != nil {
		return models.StorageDepositResult{}, err
	}

	var balance models.StorageBalanceView
	receipt, err := internal.Execute(ctx, attached, func(l *internal.Ledger) error {
		created, err := l.RegisterAccount(accountId)
		if err != nil {
			return err
		}
		if created {
			logger.Log.Infof("account %s registered", accountId)
		}
		balance, err = l.StorageBalanceOf(accountId)
		return err
	})
	if err != nil {
		return models.StorageDepositResult{}, err
	}
	return models.StorageDepositResult{
		Balance: models.StorageBalance{Total: balance.Total, Available: balance.Available},
		Receipt: receipt,
	}, nil
}

// StorageWithdraw releases available storage balance of the caller. amount
// empty means everything available.
func (s *SmartContract) StorageWithdraw(ctx kalpsdk.TransactionContextInterface, amount string, attachedDeposit string) (models.StorageWithdrawResult, error) {
	logger.Log.Infoln("StorageWithdraw invoked... with arguments", amount, attachedDeposit)

	caller, err := s.predecessor(ctx)
	if err != nil {
		return models.StorageWithdrawResult{}, err
	}
	value, err := helper.ParseDeposit(amount)
	if err != nil {
		return models.StorageWithdrawResult{}, err
	}
	attached, err := helper.ParseDeposit(attachedDeposit)
	if err != nil {
		return models.StorageWithdrawResult{}, err
	}

	var balance models.StorageBalance
	receipt, err := internal.Execute(ctx, attached, func(l *internal.Ledger) error {
		var err error
		balance, err = l.StorageWithdraw(caller, value)
		return err
	})
	if err != nil {
		return models.StorageWithdrawResult{}, err
	}
	return models.StorageWithdrawResult{Balance: balance, Receipt: receipt}, nil
}

// StorageUnregister closes the caller's account and refunds its storage
// balance. A positive token balance is burned when force is set, otherwise
// the call fails.
func (s *SmartContract) StorageUnregister(ctx kalpsdk.TransactionContextInterface, force bool, attachedDeposit string) (models.UnregisterResult, error) {
	logger.Log.Infoln("StorageUnregister invoked... with arguments", force, attachedDeposit)

	caller, err := s.predecessor(ctx)
	if err != nil {
		return models.UnregisterResult{}, err
	}
	attached, err := helper.ParseDeposit(attachedDeposit)
	if err != nil {
		return models.UnregisterResult{}, err
	}

	var removed bool
	receipt, err := internal.Execute(ctx, attached, func(l *internal.Ledger) error {
		var err error
		removed, err = l.UnregisterAccount(caller, force)
		return err
	})
	if err != nil {
		return models.UnregisterResult{}, err
	}
	return models.UnregisterResult{Removed: removed, Receipt: receipt}, nil
}

func (s *SmartContract) StorageBalanceBounds(ctx kalpsdk.TransactionContextInterface) (models.StorageBalanceBounds, error) {
	var bounds models.StorageBalanceBounds
	err := internal.Query(ctx, func(l *internal.Ledger) error {
		var err error
		bounds, err = l.StorageBalanceBounds()
		return err
	})
	return bounds, err
}

func (s *SmartContract) StorageBalanceOf(ctx kalpsdk.TransactionContextInterface, accountId string) (models.StorageBalanceView, error) {
	var view models.StorageBalanceView
	err := internal.Query(ctx, func(l *internal.Ledger) error {
		var err error
		view, err = l.StorageBalanceOf(accountId)
		return err
	})
	return view, err
}

// StorageUsage reports the number of bytes currently billed for the ledger.
func (s *SmartContract) StorageUsage(ctx kalpsdk.TransactionContextInterface) (int64, error) {
	var usage int64
	err := internal.Query(ctx, func(l *internal.Ledger) error {
		var err error
		usage, err = l.StorageUsage()
		return err
	})
	return usage, err
}
