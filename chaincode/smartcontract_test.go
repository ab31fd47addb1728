package chaincode_test

import (
	"caeth-contract/chaincode"
	"caeth-contract/chaincode/bridge"
	"caeth-contract/chaincode/constants"
	"caeth-contract/chaincode/fterr"
	"caeth-contract/chaincode/mocks"
	"caeth-contract/chaincode/models"
	"errors"
	"testing"

	"github.com/holiman/uint256"
	"github.com/hyperledger/fabric-chaincode-go/pkg/cid"
	"github.com/p2eengineering/kalp-sdk-public/kalpsdk"
	"github.com/stretchr/testify/require"
)

//go:generate counterfeiter -o mocks/transaction.go -fake-name TransactionContext . transactionContext
type transactionContext interface {
	kalpsdk.TransactionContextInterface
}

//go:generate counterfeiter -o mocks/clientidentity.go -fake-name ClientIdentity . clientIdentity
type clientIdentity interface {
	cid.ClientIdentity
}

const minStorageBalance = "1210000000000000000000"

func setupContract(t *testing.T) (*chaincode.SmartContract, *mocks.WorldState) {
	t.Helper()
	contract := &chaincode.SmartContract{}
	ctx := mocks.NewWorldState("alice", constants.ContractAddress)
	ok, err := contract.NewDefaultMeta(ctx, "alice", "1000000")
	require.NoError(t, err)
	require.True(t, ok)
	return contract, ctx
}

func registerAs(t *testing.T, contract *chaincode.SmartContract, ctx *mocks.WorldState, account string) {
	t.Helper()
	signer := ctx.UserID
	ctx.SetUserID(account)
	_, err := contract.StorageDeposit(ctx, "", false, minStorageBalance)
	require.NoError(t, err)
	ctx.SetUserID(signer)
}

func requireBalance(t *testing.T, contract *chaincode.SmartContract, ctx *mocks.WorldState, account string, expected string) {
	t.Helper()
	balance, err := contract.FtBalanceOf(ctx, account)
	require.NoError(t, err)
	require.Equal(t, expected, balance)
}

func TestInitialize(t *testing.T) {
	t.Parallel()

	contract, ctx := setupContract(t)

	supply, err := contract.FtTotalSupply(ctx)
	require.NoError(t, err)
	require.Equal(t, "1000000", supply)
	requireBalance(t, contract, ctx, "alice", "1000000")

	metadata, err := contract.FtMetadata(ctx)
	require.NoError(t, err)
	require.Equal(t, models.DefaultMetadata(), metadata)

	ok, err := contract.NewDefaultMeta(ctx, "bob", "5")
	require.ErrorIs(t, err, fterr.ErrAlreadyInitialized)
	require.False(t, ok)

	ok, err = contract.New(ctx, "bob", "5", `{"spec":"ft-1.0.0","name":"x","symbol":"x","decimals":1}`)
	require.ErrorIs(t, err, fterr.ErrAlreadyInitialized)
	require.False(t, ok)
}

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		testName    string
		owner       string
		totalSupply string
		metadata    string
		err         error
	}{
		{
			testName:    "Success - custom metadata",
			owner:       "alice",
			totalSupply: "1000000",
			metadata:    `{"spec":"ft-1.0.0","name":"Wrapped","symbol":"wETH","decimals":18}`,
		},
		{
			testName:    "Failure - metadata is not JSON",
			owner:       "alice",
			totalSupply: "1000000",
			metadata:    `{"spec":`,
			err:         fterr.ErrInvalidMetadata,
		},
		{
			testName:    "Failure - metadata has the wrong spec",
			owner:       "alice",
			totalSupply: "1000000",
			metadata:    `{"spec":"ft-0.1.0","name":"Wrapped","symbol":"wETH","decimals":18}`,
			err:         fterr.ErrInvalidMetadata,
		},
		{
			testName:    "Failure - supply is not a number",
			owner:       "alice",
			totalSupply: "lots",
			metadata:    `{"spec":"ft-1.0.0","name":"Wrapped","symbol":"wETH","decimals":18}`,
			err:         fterr.ErrInvalidAmount,
		},
		{
			testName:    "Failure - owner is not an account id",
			owner:       "Alice",
			totalSupply: "1",
			metadata:    `{"spec":"ft-1.0.0","name":"Wrapped","symbol":"wETH","decimals":18}`,
			err:         fterr.ErrInvalidAccountId,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.testName, func(t *testing.T) {
			t.Parallel()

			contract := &chaincode.SmartContract{}
			ctx := mocks.NewWorldState("alice", constants.ContractAddress)
			ok, err := contract.New(ctx, tt.owner, tt.totalSupply, tt.metadata)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				require.False(t, ok)
				require.Empty(t, ctx.World)
				return
			}
			require.NoError(t, err)
			require.True(t, ok)

			metadata, err := contract.FtMetadata(ctx)
			require.NoError(t, err)
			require.Equal(t, "wETH", metadata.Symbol)
			require.Equal(t, uint8(18), metadata.Decimals)
		})
	}
}

func TestQueriesBeforeInitialization(t *testing.T) {
	t.Parallel()

	contract := &chaincode.SmartContract{}
	ctx := mocks.NewWorldState("alice", constants.ContractAddress)

	_, err := contract.FtTotalSupply(ctx)
	require.ErrorIs(t, err, fterr.ErrNotInitialized)
	_, err = contract.FtBalanceOf(ctx, "alice")
	require.ErrorIs(t, err, fterr.ErrNotInitialized)
	_, err = contract.FtMetadata(ctx)
	require.ErrorIs(t, err, fterr.ErrNotInitialized)
	_, err = contract.StorageBalanceBounds(ctx)
	require.ErrorIs(t, err, fterr.ErrNotInitialized)
	_, err = contract.StorageDeposit(ctx, "bob", false, minStorageBalance)
	require.ErrorIs(t, err, fterr.ErrNotInitialized)
}

func TestRegistrationAndTransfers(t *testing.T) {
	t.Parallel()

	contract, ctx := setupContract(t)

	bounds, err := contract.StorageBalanceBounds(ctx)
	require.NoError(t, err)
	require.Equal(t, minStorageBalance, bounds.Min)
	require.Equal(t, minStorageBalance, bounds.Max)

	// bob registers himself, the second time everything is refunded
	ctx.SetUserID("bob")
	result, err := contract.StorageDeposit(ctx, "", false, minStorageBalance)
	require.NoError(t, err)
	require.Equal(t, minStorageBalance, result.Receipt.Charged)
	require.Equal(t, "0", result.Receipt.Refund)
	require.Equal(t, minStorageBalance, result.Balance.Total)

	result, err = contract.StorageDeposit(ctx, "", true, minStorageBalance)
	require.NoError(t, err)
	require.Equal(t, "0", result.Receipt.Charged)
	require.Equal(t, minStorageBalance, result.Receipt.Refund)

	_, err = contract.StorageDeposit(ctx, "", false, "1")
	require.ErrorIs(t, err, fterr.ErrInsufficientStorageDeposit)

	view, err := contract.StorageBalanceOf(ctx, "bob")
	require.NoError(t, err)
	require.True(t, view.Registered)

	ctx.SetUserID("alice")
	_, err = contract.FtTransfer(ctx, "bob", "300000", "", "")
	require.NoError(t, err)
	requireBalance(t, contract, ctx, "alice", "700000")
	requireBalance(t, contract, ctx, "bob", "300000")

	_, err = contract.FtTransfer(ctx, "carol", "1", "", "")
	require.ErrorIs(t, err, fterr.ErrReceiverNotRegistered)
	requireBalance(t, contract, ctx, "carol", "0")

	_, err = contract.FtTransfer(ctx, "bob", "0", "", "")
	require.ErrorIs(t, err, fterr.ErrMustBePositive)

	_, err = contract.FtTransfer(ctx, "bob", "-5", "", "")
	require.ErrorIs(t, err, fterr.ErrInvalidAmount)

	_, err = contract.FtTransfer(ctx, "alice", "1", "", "")
	require.ErrorIs(t, err, fterr.ErrSelfTransfer)

	_, err = contract.FtTransfer(ctx, "bob", "700000", "", "")
	require.NoError(t, err)
	requireBalance(t, contract, ctx, "alice", "0")

	// bob holds tokens and cannot leave without force
	ctx.SetUserID("bob")
	_, err = contract.StorageUnregister(ctx, false, "")
	require.ErrorIs(t, err, fterr.ErrNonZeroBalance)

	unregistered, err := contract.StorageUnregister(ctx, true, "")
	require.NoError(t, err)
	require.True(t, unregistered.Removed)
	require.Equal(t, minStorageBalance, unregistered.Receipt.Refund)

	supply, err := contract.FtTotalSupply(ctx)
	require.NoError(t, err)
	require.Equal(t, "0", supply)

	_, err = contract.StorageUnregister(ctx, true, "")
	require.ErrorIs(t, err, fterr.ErrNotRegistered)
}

func TestStorageWithdraw(t *testing.T) {
	t.Parallel()

	contract, ctx := setupContract(t)
	registerAs(t, contract, ctx, "bob")
	ctx.SetUserID("bob")

	result, err := contract.StorageWithdraw(ctx, "", "")
	require.NoError(t, err)
	require.Equal(t, models.StorageBalance{Total: minStorageBalance, Available: "0"}, result.Balance)

	_, err = contract.StorageWithdraw(ctx, "1", "")
	require.ErrorIs(t, err, fterr.ErrStorageWithdrawExceeded)

	ctx.SetUserID("carol")
	_, err = contract.StorageWithdraw(ctx, "", "")
	require.ErrorIs(t, err, fterr.ErrNotRegistered)
}

func TestTransferCallAndResolve(t *testing.T) {
	t.Parallel()

	contract, ctx := setupContract(t)
	registerAs(t, contract, ctx, "bob")

	ctx.TxID = "tx-stake"
	result, err := contract.FtTransferCall(ctx, "bob", "1000", "", "stake", "10000000000000000000000")
	require.NoError(t, err)
	require.Equal(t, "tx-stake", result.TransferId)
	require.Greater(t, result.Receipt.StorageDelta, int64(0))

	// only bob can answer
	_, err = contract.FtResolveTransfer(ctx, "tx-stake", "0", "")
	require.ErrorIs(t, err, fterr.ErrUnauthorized)

	ctx.SetUserID("bob")
	resolved, err := contract.FtResolveTransfer(ctx, "tx-stake", "400", "")
	require.NoError(t, err)
	require.Equal(t, "600", resolved.UsedAmount)
	require.Less(t, resolved.Receipt.StorageDelta, int64(0))

	requireBalance(t, contract, ctx, "alice", "999400")
	requireBalance(t, contract, ctx, "bob", "600")

	_, err = contract.FtResolveTransfer(ctx, "tx-stake", "0", "")
	require.ErrorIs(t, err, fterr.ErrTransferNotFound)
}

func TestMintBurn(t *testing.T) {
	t.Parallel()

	tests := []struct {
		testName string
		signer   string
		mint     bool
		account  string
		amount   string
		balance  string
		supply   string
		err      error
	}{
		{testName: "Success - owner mints", signer: "alice", mint: true, account: "bob", amount: "500", balance: "500", supply: "1000500"},
		{testName: "Success - owner burns", signer: "alice", account: "alice", amount: "500", balance: "999500", supply: "999500"},
		{testName: "Failure - bob is not a minter", signer: "bob", mint: true, account: "bob", amount: "500", err: fterr.ErrUnauthorized},
		{testName: "Failure - bob cannot burn", signer: "bob", account: "alice", amount: "500", err: fterr.ErrUnauthorized},
		{testName: "Failure - mint zero", signer: "alice", mint: true, account: "bob", amount: "0", err: fterr.ErrMustBePositive},
		{testName: "Failure - mint to unregistered", signer: "alice", mint: true, account: "carol", amount: "1", err: fterr.ErrNotRegistered},
		{testName: "Failure - burn more than held", signer: "alice", account: "bob", amount: "1", err: fterr.ErrInsufficientBalance},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.testName, func(t *testing.T) {
			t.Parallel()

			contract, ctx := setupContract(t)
			registerAs(t, contract, ctx, "bob")
			ctx.SetUserID(tt.signer)

			var err error
			if tt.mint {
				_, err = contract.Mint(ctx, tt.account, tt.amount, "", "")
			} else {
				_, err = contract.Burn(ctx, tt.account, tt.amount, "", "")
			}
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			requireBalance(t, contract, ctx, tt.account, tt.balance)
			supply, err := contract.FtTotalSupply(ctx)
			require.NoError(t, err)
			require.Equal(t, tt.supply, supply)
		})
	}
}

func TestMinterManagement(t *testing.T) {
	t.Parallel()

	contract, ctx := setupContract(t)
	registerAs(t, contract, ctx, "bob")

	ctx.SetUserID("bob")
	_, err := contract.AddMinter(ctx, "bob", minStorageBalance)
	require.ErrorIs(t, err, fterr.ErrUnauthorized)

	ctx.SetUserID("alice")
	_, err = contract.AddMinter(ctx, "bob", "")
	require.ErrorIs(t, err, fterr.ErrInsufficientStorageDeposit)

	receipt, err := contract.AddMinter(ctx, "bob", minStorageBalance)
	require.NoError(t, err)
	require.Greater(t, receipt.StorageDelta, int64(0))

	minters, err := contract.Minters(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"alice", "bob"}, minters)

	ctx.SetUserID("bob")
	_, err = contract.Mint(ctx, "bob", "10", "", "")
	require.NoError(t, err)
	requireBalance(t, contract, ctx, "bob", "10")

	ctx.SetUserID("alice")
	receipt, err = contract.RemoveMinter(ctx, "bob", "")
	require.NoError(t, err)
	require.Less(t, receipt.StorageDelta, int64(0))

	ctx.SetUserID("bob")
	_, err = contract.Mint(ctx, "bob", "10", "", "")
	require.ErrorIs(t, err, fterr.ErrUnauthorized)
}

func TestCallFromAnotherContract(t *testing.T) {
	t.Parallel()

	const vault = "klp-7661756c74-cc"
	contract, ctx := setupContract(t)
	registerAs(t, contract, ctx, "bob")

	_, err := contract.StorageDeposit(ctx, vault, false, minStorageBalance)
	require.NoError(t, err)
	_, err = contract.FtTransfer(ctx, vault, "1000", "", "")
	require.NoError(t, err)

	// alice signs, but the vault contract is the one moving its tokens
	ctx.CalledContract = vault
	_, err = contract.FtTransfer(ctx, "bob", "250", "", "")
	require.NoError(t, err)

	requireBalance(t, contract, ctx, vault, "750")
	requireBalance(t, contract, ctx, "bob", "250")
	requireBalance(t, contract, ctx, "alice", "999000")
}

func TestBridge(t *testing.T) {
	t.Parallel()

	validated := bridge.ValidatorFunc(func(account string) (*uint256.Int, error) {
		if account == "bob" {
			return uint256.NewInt(500), nil
		}
		return nil, errors.New("no proof")
	})

	tests := []struct {
		testName  string
		validator bridge.Validator
		signer    string
		account   string
		amount    string
		balance   string
		err       error
	}{
		{testName: "Failure - bridge not configured", signer: "alice", account: "bob", amount: "1", err: fterr.ErrBridgeNotConfigured},
		{testName: "Success - within validated amount", validator: validated, signer: "alice", account: "bob", amount: "500", balance: "500"},
		{testName: "Failure - above validated amount", validator: validated, signer: "alice", account: "bob", amount: "501", err: fterr.ErrExternalBalanceExceeded},
		{testName: "Failure - not a minter", validator: validated, signer: "bob", account: "bob", amount: "1", err: fterr.ErrUnauthorized},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.testName, func(t *testing.T) {
			t.Parallel()

			contract, ctx := setupContract(t)
			contract.Bridge = tt.validator
			registerAs(t, contract, ctx, "bob")
			ctx.SetUserID(tt.signer)

			_, err := contract.MintCaeth(ctx, tt.account, tt.amount, "")
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			requireBalance(t, contract, ctx, tt.account, tt.balance)
		})
	}
}

func TestValidateEth(t *testing.T) {
	t.Parallel()

	contract, ctx := setupContract(t)

	_, err := contract.ValidateEth(ctx, "bob")
	require.ErrorIs(t, err, fterr.ErrBridgeNotConfigured)

	contract.Bridge = bridge.ValidatorFunc(func(account string) (*uint256.Int, error) {
		return uint256.NewInt(42), nil
	})
	balance, err := contract.ValidateEth(ctx, "bob")
	require.NoError(t, err)
	require.Equal(t, models.ExternalBalance{Account: "bob", Mintable: "42"}, balance)

	_, err = contract.ValidateEth(ctx, "Bob")
	require.ErrorIs(t, err, fterr.ErrInvalidAccountId)
}

func TestStorageUsageQuery(t *testing.T) {
	t.Parallel()

	contract, ctx := setupContract(t)
	before, err := contract.StorageUsage(ctx)
	require.NoError(t, err)

	registerAs(t, contract, ctx, "bob")
	after, err := contract.StorageUsage(ctx)
	require.NoError(t, err)
	require.Equal(t, before+constants.AccountSlotBytes, after)
}
