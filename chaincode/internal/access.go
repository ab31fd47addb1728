package internal

import (
	"caeth-contract/chaincode/constants"
	"caeth-contract/chaincode/fterr"
	"caeth-contract/chaincode/helper"
	"caeth-contract/chaincode/logger"

	"golang.org/x/exp/slices"
)

func (l *Ledger) RequireOwner(caller string) error {
	cfg, err := l.Config()
	if err != nil {
		return err
	}
	if caller != cfg.Owner {
		return fterr.ErrUnauthorized.Withf("%s is not the owner", caller)
	}
	return nil
}

func (l *Ledger) RequireMinter(caller string) error {
	cfg, err := l.Config()
	if err != nil {
		return err
	}
	if !slices.Contains(cfg.Minters, caller) {
		return fterr.ErrUnauthorized.Withf("%s is not a minter", caller)
	}
	return nil
}

func (l *Ledger) Minters() ([]string, error) {
	cfg, err := l.Config()
	if err != nil {
		return nil, err
	}
	return cfg.Minters, nil
}

// AddMinter lets account mint and burn. Only the owner may call it.
func (l *Ledger) AddMinter(caller string, account string) error {
	if err := l.RequireOwner(caller); err != nil {
		return err
	}
	if err := helper.ValidateAccountId(account); err != nil {
		return err
	}
	cfg, err := l.Config()
	if err != nil {
		return err
	}
	if slices.Contains(cfg.Minters, account) {
		return fterr.ErrAlreadyMinter.Withf("%s", account)
	}
	cfg.Minters = append(cfg.Minters, account)
	logger.Log.Infof("minter %s added by %s", account, caller)
	return l.putJSON(constants.ConfigKey, cfg)
}

func (l *Ledger) RemoveMinter(caller string, account string) error {
	if err := l.RequireOwner(caller); err != nil {
		return err
	}
	cfg, err := l.Config()
	if err != nil {
		return err
	}
	i := slices.Index(cfg.Minters, account)
	if i < 0 {
		return fterr.ErrMinterNotFound.Withf("%s", account)
	}
	cfg.Minters = slices.Delete(cfg.Minters, i, i+1)
	logger.Log.Infof("minter %s removed by %s", account, caller)
	return l.putJSON(constants.ConfigKey, cfg)
}
