package internal

import (
	"caeth-contract/chaincode/constants"
	"caeth-contract/chaincode/events"
	"caeth-contract/chaincode/fterr"
	"caeth-contract/chaincode/helper"
	"caeth-contract/chaincode/logger"
	"caeth-contract/chaincode/models"
	"encoding/json"
	"net/http"

	"github.com/holiman/uint256"
)

// Ledger is the token ledger as seen by a single call. All reads and writes go
// through the call's TxState and all events through its Log.
type Ledger struct {
	state    *TxState
	events   *events.Log
	attached *uint256.Int
}

func newLedger(world WorldState, attached *uint256.Int) *Ledger {
	if attached == nil {
		attached = new(uint256.Int)
	}
	return &Ledger{
		state:    NewTxState(world, RecordBytes),
		events:   events.NewLog(),
		attached: attached,
	}
}

func (l *Ledger) Events() *events.Log {
	return l.events
}

func accountKey(account string) string {
	return constants.AccountPrefix + account
}

func pendingKey(id string) string {
	return constants.PendingTransferPrefix + id
}

func (l *Ledger) getJSON(key string, v interface{}) (bool, error) {
	bytes, err := l.state.Get(key)
	if err != nil {
		return false, err
	}
	if bytes == nil {
		return false, nil
	}
	if err := json.Unmarshal(bytes, v); err != nil {
		return false, fterr.ErrCorruptedState(err, key)
	}
	return true, nil
}

func (l *Ledger) putJSON(key string, v interface{}) error {
	bytes, err := json.Marshal(v)
	if err != nil {
		return fterr.ErrCorruptedState(err, key)
	}
	l.state.Put(key, bytes)
	return nil
}

func (l *Ledger) getU128(key string) (*uint256.Int, bool, error) {
	bytes, err := l.state.Get(key)
	if err != nil {
		return nil, false, err
	}
	if bytes == nil {
		return new(uint256.Int), false, nil
	}
	v, err := helper.DecodeU128(bytes)
	if err != nil {
		return nil, false, fterr.ErrCorruptedState(err, key)
	}
	return v, true, nil
}

func (l *Ledger) IsInitialized() (bool, error) {
	bytes, err := l.state.Get(constants.MetadataKey)
	if err != nil {
		return false, err
	}
	return bytes != nil, nil
}

func (l *Ledger) requireInitialized() error {
	initialized, err := l.IsInitialized()
	if err != nil {
		return err
	}
	if !initialized {
		return fterr.ErrNotInitialized
	}
	return nil
}

// Initialize creates the ledger: stores metadata and configuration, registers
// the owner and credits it with the whole initial supply.
func (l *Ledger) Initialize(owner string, totalSupply *uint256.Int, metadata models.FungibleTokenMetadata) error {
	initialized, err := l.IsInitialized()
	if err != nil {
		return err
	}
	if initialized {
		return fterr.ErrAlreadyInitialized
	}
	if err := helper.ValidateAccountId(owner); err != nil {
		return err
	}
	if err := metadata.Validate(); err != nil {
		return err
	}
	if err := l.putJSON(constants.MetadataKey, metadata); err != nil {
		return err
	}
	cfg := models.Config{
		Owner:            owner,
		Minters:          []string{owner},
		StorageBytePrice: constants.StorageBytePrice,
	}
	if err := l.putJSON(constants.ConfigKey, cfg); err != nil {
		return err
	}
	l.state.Put(accountKey(owner), helper.EncodeU128(totalSupply))
	l.state.Put(constants.TotalSupplyKey, helper.EncodeU128(totalSupply))
	l.events.Mint(owner, totalSupply.Dec(), constants.InitialMintMemo)
	logger.Log.Infof("ledger initialized, owner: %s, total supply: %s", owner, totalSupply.Dec())
	return nil
}

func (l *Ledger) Metadata() (models.FungibleTokenMetadata, error) {
	var metadata models.FungibleTokenMetadata
	found, err := l.getJSON(constants.MetadataKey, &metadata)
	if err != nil {
		return metadata, err
	}
	if !found {
		return metadata, fterr.ErrNotInitialized
	}
	return metadata, nil
}

func (l *Ledger) Config() (models.Config, error) {
	var cfg models.Config
	found, err := l.getJSON(constants.ConfigKey, &cfg)
	if err != nil {
		return cfg, err
	}
	if !found {
		return cfg, fterr.ErrNotInitialized
	}
	return cfg, nil
}

func (l *Ledger) StorageBytePrice() (*uint256.Int, error) {
	cfg, err := l.Config()
	if err != nil {
		return nil, err
	}
	price, err := helper.ParseU128(cfg.StorageBytePrice)
	if err != nil {
		return nil, fterr.ErrCorruptedState(err, constants.ConfigKey)
	}
	return price, nil
}

// BalanceOf returns zero for accounts that are not registered.
func (l *Ledger) BalanceOf(account string) (*uint256.Int, error) {
	if err := l.requireInitialized(); err != nil {
		return nil, err
	}
	balance, _, err := l.getU128(accountKey(account))
	return balance, err
}

func (l *Ledger) TotalSupply() (*uint256.Int, error) {
	if err := l.requireInitialized(); err != nil {
		return nil, err
	}
	supply, _, err := l.getU128(constants.TotalSupplyKey)
	return supply, err
}

func (l *Ledger) IsRegistered(account string) (bool, error) {
	_, registered, err := l.getU128(accountKey(account))
	return registered, err
}

func (l *Ledger) account(account string) (*uint256.Int, error) {
	balance, registered, err := l.getU128(accountKey(account))
	if err != nil {
		return nil, err
	}
	if !registered {
		return nil, fterr.ErrNotRegistered.Withf("%s", account)
	}
	return balance, nil
}

func (l *Ledger) setBalance(account string, balance *uint256.Int) {
	l.state.Put(accountKey(account), helper.EncodeU128(balance))
}

func (l *Ledger) setTotalSupply(supply *uint256.Int) {
	l.state.Put(constants.TotalSupplyKey, helper.EncodeU128(supply))
}

// StorageBalanceBounds returns the cost of one account slot. The minimum and
// maximum are equal since an account never needs more than its slot.
func (l *Ledger) StorageBalanceBounds() (models.StorageBalanceBounds, error) {
	slot, err := l.minStorageBalance()
	if err != nil {
		return models.StorageBalanceBounds{}, err
	}
	return models.StorageBalanceBounds{Min: slot.Dec(), Max: slot.Dec()}, nil
}

func (l *Ledger) minStorageBalance() (*uint256.Int, error) {
	price, err := l.StorageBytePrice()
	if err != nil {
		return nil, err
	}
	return new(uint256.Int).Mul(price, uint256.NewInt(uint64(constants.AccountSlotBytes))), nil
}

func (l *Ledger) StorageBalanceOf(account string) (models.StorageBalanceView, error) {
	bounds, err := l.StorageBalanceBounds()
	if err != nil {
		return models.StorageBalanceView{}, err
	}
	registered, err := l.IsRegistered(account)
	if err != nil {
		return models.StorageBalanceView{}, err
	}
	if !registered {
		return models.StorageBalanceView{Registered: false, Total: "0", Available: "0"}, nil
	}
	return models.StorageBalanceView{Registered: true, Total: bounds.Min, Available: "0"}, nil
}

// RegisterAccount creates a zero balance record for account. The attached
// deposit must cover one account slot even when the account already exists;
// in that case nothing is written and the whole deposit is refunded.
func (l *Ledger) RegisterAccount(account string) (bool, error) {
	if err := helper.ValidateAccountId(account); err != nil {
		return false, err
	}
	minBalance, err := l.minStorageBalance()
	if err != nil {
		return false, err
	}
	if l.attached.Lt(minBalance) {
		return false, fterr.ErrInsufficientStorageDeposit.Withf("the attached deposit %s is less than the minimum storage balance %s", l.attached.Dec(), minBalance.Dec())
	}
	registered, err := l.IsRegistered(account)
	if err != nil {
		return false, err
	}
	if registered {
		logger.Log.Infof("account %s is already registered, refunding the deposit", account)
		return false, nil
	}
	l.setBalance(account, new(uint256.Int))
	return true, nil
}

// UnregisterAccount removes account. A positive balance is only given up with
// force, in which case it is burned.
func (l *Ledger) UnregisterAccount(account string, force bool) (bool, error) {
	if err := l.requireInitialized(); err != nil {
		return false, err
	}
	balance, err := l.account(account)
	if err != nil {
		return false, err
	}
	if !balance.IsZero() {
		if !force {
			return false, fterr.ErrNonZeroBalance.Withf("%s holds %s", account, balance.Dec())
		}
		supply, err := l.TotalSupply()
		if err != nil {
			return false, err
		}
		l.setTotalSupply(new(uint256.Int).Sub(supply, balance))
		l.events.Burn(account, balance.Dec(), constants.UnregisterMemo)
	}
	l.state.Del(accountKey(account))
	logger.Log.Infof("closed @%s with %s", account, balance.Dec())
	return true, nil
}

// StorageWithdraw never releases anything: a registered account's storage
// balance is exactly its slot, so any positive amount exceeds what is available.
func (l *Ledger) StorageWithdraw(account string, amount *uint256.Int) (models.StorageBalance, error) {
	if err := l.requireInitialized(); err != nil {
		return models.StorageBalance{}, err
	}
	if _, err := l.account(account); err != nil {
		return models.StorageBalance{}, err
	}
	if !amount.IsZero() {
		return models.StorageBalance{}, fterr.ErrStorageWithdrawExceeded.Withf("requested %s, available 0", amount.Dec())
	}
	view, err := l.StorageBalanceOf(account)
	if err != nil {
		return models.StorageBalance{}, err
	}
	return models.StorageBalance{Total: view.Total, Available: view.Available}, nil
}

func (l *Ledger) move(sender string, receiver string, amount *uint256.Int) error {
	if amount.IsZero() {
		return fterr.ErrMustBePositive
	}
	if sender == receiver {
		return fterr.ErrSelfTransfer
	}
	senderBalance, err := l.account(sender)
	if err != nil {
		return err
	}
	if senderBalance.Lt(amount) {
		return fterr.ErrInsufficientBalance.Withf("%s holds %s, required %s", sender, senderBalance.Dec(), amount.Dec())
	}
	receiverBalance, registered, err := l.getU128(accountKey(receiver))
	if err != nil {
		return err
	}
	if !registered {
		return fterr.ErrReceiverNotRegistered.Withf("%s", receiver)
	}
	credited, err := helper.AddU128(receiverBalance, amount)
	if err != nil {
		return err
	}
	l.setBalance(sender, new(uint256.Int).Sub(senderBalance, amount))
	l.setBalance(receiver, credited)
	return nil
}

func (l *Ledger) Transfer(sender string, receiver string, amount *uint256.Int, memo string) error {
	if err := l.requireInitialized(); err != nil {
		return err
	}
	if err := l.move(sender, receiver, amount); err != nil {
		return err
	}
	l.events.Transfer(sender, receiver, amount.Dec(), memo)
	return nil
}

// TransferCall transfers like Transfer and leaves a pending record the receiver
// resolves in a later call, returning whatever part of amount it did not use.
func (l *Ledger) TransferCall(id string, sender string, receiver string, amount *uint256.Int, memo string, msg string) error {
	existing, err := l.state.Get(pendingKey(id))
	if err != nil {
		return err
	}
	if existing != nil {
		return fterr.NewInternalError(nil, "pending transfer "+id+" already exists", http.StatusConflict)
	}
	if err := l.Transfer(sender, receiver, amount, memo); err != nil {
		return err
	}
	pending := models.PendingTransfer{Id: id, Sender: sender, Receiver: receiver, Amount: amount.Dec()}
	if err := l.putJSON(pendingKey(id), pending); err != nil {
		return err
	}
	l.events.TransferCall(id, sender, receiver, amount.Dec(), msg)
	return nil
}

// ResolveTransfer settles a pending transfer on behalf of its receiver and
// returns the amount the receiver kept.
func (l *Ledger) ResolveTransfer(caller string, id string, unused *uint256.Int) (*uint256.Int, error) {
	if err := l.requireInitialized(); err != nil {
		return nil, err
	}
	var pending models.PendingTransfer
	found, err := l.getJSON(pendingKey(id), &pending)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fterr.ErrTransferNotFound.Withf("%s", id)
	}
	if caller != pending.Receiver {
		return nil, fterr.ErrUnauthorized.Withf("only %s can resolve transfer %s", pending.Receiver, id)
	}
	amount, err := helper.ParseU128(pending.Amount)
	if err != nil {
		return nil, fterr.ErrCorruptedState(err, pendingKey(id))
	}
	l.state.Del(pendingKey(id))

	refund := helper.MinU128(unused, amount)
	receiverBalance, registered, err := l.getU128(accountKey(pending.Receiver))
	if err != nil {
		return nil, err
	}
	if !registered {
		receiverBalance = new(uint256.Int)
	}
	refund = helper.MinU128(refund, receiverBalance)
	if refund.IsZero() {
		return amount, nil
	}

	senderRegistered, err := l.IsRegistered(pending.Sender)
	if err != nil {
		return nil, err
	}
	if senderRegistered {
		if err := l.move(pending.Receiver, pending.Sender, refund); err != nil {
			return nil, err
		}
		l.events.Transfer(pending.Receiver, pending.Sender, refund.Dec(), constants.RefundMemo)
	} else {
		// sender left in the meantime, the refund has nowhere to go
		if err := l.Burn(pending.Receiver, refund, constants.RefundMemo); err != nil {
			return nil, err
		}
	}
	return new(uint256.Int).Sub(amount, refund), nil
}

// Deposit mints amount into a registered account.
func (l *Ledger) Deposit(account string, amount *uint256.Int, memo string) error {
	if err := l.requireInitialized(); err != nil {
		return err
	}
	if amount.IsZero() {
		return fterr.ErrMustBePositive
	}
	balance, err := l.account(account)
	if err != nil {
		return err
	}
	supply, err := l.TotalSupply()
	if err != nil {
		return err
	}
	newSupply, err := helper.AddU128(supply, amount)
	if err != nil {
		return err
	}
	newBalance, err := helper.AddU128(balance, amount)
	if err != nil {
		return err
	}
	l.setBalance(account, newBalance)
	l.setTotalSupply(newSupply)
	l.events.Mint(account, amount.Dec(), memo)
	return nil
}

func (l *Ledger) Burn(account string, amount *uint256.Int, memo string) error {
	if err := l.requireInitialized(); err != nil {
		return err
	}
	if amount.IsZero() {
		return fterr.ErrMustBePositive
	}
	balance, err := l.account(account)
	if err != nil {
		return err
	}
	if balance.Lt(amount) {
		return fterr.ErrInsufficientBalance.Withf("%s holds %s, required %s", account, balance.Dec(), amount.Dec())
	}
	supply, err := l.TotalSupply()
	if err != nil {
		return err
	}
	l.setBalance(account, new(uint256.Int).Sub(balance, amount))
	l.setTotalSupply(new(uint256.Int).Sub(supply, amount))
	l.events.Burn(account, amount.Dec(), memo)
	logger.Log.Infof("account @%s burned %s", account, amount.Dec())
	return nil
}
