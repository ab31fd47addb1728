package internal_test

import (
	"caeth-contract/chaincode/constants"
	"caeth-contract/chaincode/fterr"
	"caeth-contract/chaincode/internal"
	"caeth-contract/chaincode/mocks"
	"errors"
	"strconv"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestTxState(t *testing.T) {
	t.Parallel()

	ctx := mocks.NewWorldState("alice", constants.ContractAddress)
	ctx.World["x"] = []byte("old")
	ctx.World["gone"] = []byte("bye")

	state := internal.NewTxState(ctx, internal.RecordBytes)
	require.False(t, state.Dirty())

	state.Put("x", []byte("new"))
	state.Put("y", []byte("fresh"))
	state.Del("gone")
	require.True(t, state.Dirty())

	v, err := state.Get("x")
	require.NoError(t, err)
	require.Equal(t, []byte("new"), v)
	v, err = state.Get("gone")
	require.NoError(t, err)
	require.Nil(t, v)
	require.Equal(t, []byte("old"), ctx.World["x"])
	require.Equal(t, 0, ctx.PutStateWithoutKYCCallCount())

	// x keeps its size, y adds 1+5+40 bytes, gone frees 4+3+40 bytes
	delta, err := state.Delta()
	require.NoError(t, err)
	require.Equal(t, int64(46-47), delta)

	require.NoError(t, state.Commit())
	require.False(t, state.Dirty())
	require.Equal(t, map[string][]byte{"x": []byte("new"), "y": []byte("fresh")}, ctx.World)
}

func TestTxStateErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		setup func(*mocks.WorldState)
		run   func(*internal.TxState) error
	}{
		{
			name:  "Failure - get state",
			setup: func(ctx *mocks.WorldState) { ctx.GetStateReturns(nil, errors.New("ledger down")) },
			run: func(s *internal.TxState) error {
				_, err := s.Get("x")
				return err
			},
		},
		{
			name:  "Failure - put state",
			setup: func(ctx *mocks.WorldState) { ctx.PutStateWithoutKYCReturns(errors.New("ledger down")) },
			run: func(s *internal.TxState) error {
				s.Put("x", []byte("1"))
				return s.Commit()
			},
		},
		{
			name:  "Failure - delete state",
			setup: func(ctx *mocks.WorldState) { ctx.DelStateWithoutKYCReturns(errors.New("ledger down")) },
			run: func(s *internal.TxState) error {
				s.Del("x")
				return s.Commit()
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := mocks.NewWorldState("alice", constants.ContractAddress)
			tt.setup(ctx)
			err := tt.run(internal.NewTxState(ctx, internal.RecordBytes))
			require.ErrorIs(t, err, fterr.NewInternalError(nil, "", 0))
		})
	}
}

func TestRecordBytes(t *testing.T) {
	t.Parallel()

	require.Equal(t, constants.AccountSlotBytes, internal.RecordBytes("abob", make([]byte, 16)))
	require.Equal(t, constants.AccountSlotBytes, internal.RecordBytes("a"+string(make([]byte, 64)), make([]byte, 16)))
	require.Equal(t, int64(0), internal.RecordBytes(constants.StorageUsageKey, []byte("12345")))
	require.Equal(t, int64(1+16+40), internal.RecordBytes(constants.TotalSupplyKey, make([]byte, 16)))
}

func TestExecuteDiscardsFailedCall(t *testing.T) {
	t.Parallel()

	ctx := setupLedger(t, "bob")
	before := ctx.Snapshot()

	_, err := internal.Execute(ctx, plenty(t), func(l *internal.Ledger) error {
		if err := l.Transfer("alice", "bob", uint256.NewInt(10), ""); err != nil {
			return err
		}
		if _, err := l.RegisterAccount("carol"); err != nil {
			return err
		}
		return l.Transfer("alice", "dave", uint256.NewInt(10), "")
	})
	require.ErrorIs(t, err, fterr.ErrReceiverNotRegistered)
	require.Equal(t, before, ctx.World)
	require.Empty(t, ctx.Events)
}

func TestExecuteCommitFailure(t *testing.T) {
	t.Parallel()

	ctx := setupLedger(t, "bob")
	ctx.PutStateWithoutKYCReturns(errors.New("ledger down"))

	_, err := internal.Execute(ctx, nil, func(l *internal.Ledger) error {
		return l.Transfer("alice", "bob", uint256.NewInt(10), "")
	})
	require.ErrorIs(t, err, fterr.NewInternalError(nil, "", 0))
	require.Empty(t, ctx.Events)
}

func TestExecuteEmitFailure(t *testing.T) {
	t.Parallel()

	ctx := setupLedger(t, "bob")
	ctx.SetEventReturns(errors.New("no events"))

	_, err := internal.Execute(ctx, nil, func(l *internal.Ledger) error {
		return l.Transfer("alice", "bob", uint256.NewInt(10), "")
	})
	require.ErrorIs(t, err, fterr.NewInternalError(nil, "", 0))
}

func TestStorageUsage(t *testing.T) {
	t.Parallel()

	ctx := setupLedger(t)
	usage := func() int64 {
		var u int64
		require.NoError(t, internal.Query(ctx, func(l *internal.Ledger) error {
			var err error
			u, err = l.StorageUsage()
			return err
		}))
		return u
	}

	initial := usage()
	require.Greater(t, initial, constants.AccountSlotBytes)
	require.Equal(t, strconv.FormatInt(initial, 10), string(ctx.World[constants.StorageUsageKey]))

	register(t, ctx, "bob")
	require.Equal(t, initial+constants.AccountSlotBytes, usage())

	_, err := internal.Execute(ctx, nil, func(l *internal.Ledger) error {
		_, err := l.UnregisterAccount("bob", false)
		return err
	})
	require.NoError(t, err)
	require.Equal(t, initial, usage())

	ctx.World[constants.StorageUsageKey] = []byte("garbage")
	_, err = internal.Execute(ctx, nil, func(l *internal.Ledger) error { return nil })
	require.ErrorIs(t, err, fterr.NewInternalError(nil, "", 0))
}

func TestTransferCall(t *testing.T) {
	t.Parallel()

	ctx := setupLedger(t, "bob")
	ctx.TxID = "tx1"
	pendingKey := constants.PendingTransferPrefix + "tx1"

	// the pending record needs storage the caller has to pay for
	before := ctx.Snapshot()
	_, err := internal.Execute(ctx, nil, func(l *internal.Ledger) error {
		return l.TransferCall("tx1", "alice", "bob", uint256.NewInt(300), "", "stake")
	})
	require.ErrorIs(t, err, fterr.ErrInsufficientStorageDeposit)
	require.Equal(t, before, ctx.World)

	receipt, err := internal.Execute(ctx, plenty(t), func(l *internal.Ledger) error {
		return l.TransferCall("tx1", "alice", "bob", uint256.NewInt(300), "", "stake")
	})
	require.NoError(t, err)
	require.Contains(t, ctx.World, pendingKey)

	recordBytes := internal.RecordBytes(pendingKey, ctx.World[pendingKey])
	require.Equal(t, recordBytes, receipt.StorageDelta)
	charged := new(uint256.Int).Mul(u128(t, constants.StorageBytePrice), uint256.NewInt(uint64(recordBytes)))
	require.Equal(t, charged.Dec(), receipt.Charged)
	refund := new(uint256.Int).Sub(plenty(t), charged)
	require.Equal(t, refund.Dec(), receipt.Refund)

	require.Equal(t, "999700", balanceOf(t, ctx, "alice"))
	require.Equal(t, "300", balanceOf(t, ctx, "bob"))

	emitted := lastEvents(t, ctx)
	require.Len(t, emitted, 2)
	require.Equal(t, constants.FtTransfer, emitted[0].Event)
	require.Equal(t, constants.FtTransferCall, emitted[1].Event)

	_, err = internal.Execute(ctx, plenty(t), func(l *internal.Ledger) error {
		return l.TransferCall("tx1", "alice", "bob", uint256.NewInt(1), "", "")
	})
	require.ErrorIs(t, err, fterr.NewInternalError(nil, "", 0))
}

func TestResolveTransfer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		caller       string
		id           string
		unused       uint64
		spend        uint64
		senderLeaves bool
		used         string
		aliceBalance string
		bobBalance   string
		supply       string
		err          error
	}{
		{name: "Success - nothing unused", caller: "bob", id: "tx1", unused: 0, used: "300", aliceBalance: "999700", bobBalance: "300", supply: "1000000"},
		{name: "Success - partial refund", caller: "bob", id: "tx1", unused: 100, used: "200", aliceBalance: "999800", bobBalance: "200", supply: "1000000"},
		{name: "Success - refund capped at amount", caller: "bob", id: "tx1", unused: 5000, used: "0", aliceBalance: "1000000", bobBalance: "0", supply: "1000000"},
		{name: "Success - refund capped at receiver balance", caller: "bob", id: "tx1", unused: 300, spend: 250, used: "250", aliceBalance: "999750", bobBalance: "0", supply: "1000000"},
		{name: "Success - sender left, refund burned", caller: "bob", id: "tx1", unused: 100, senderLeaves: true, used: "200", bobBalance: "200", supply: "999900"},
		{name: "Failure - only the receiver resolves", caller: "alice", id: "tx1", err: fterr.ErrUnauthorized},
		{name: "Failure - unknown transfer", caller: "bob", id: "tx9", err: fterr.ErrTransferNotFound},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := setupLedger(t, "bob", "carol")
			sender := "alice"
			if tt.senderLeaves {
				sender = "carol"
				_, err := internal.Execute(ctx, nil, func(l *internal.Ledger) error {
					return l.Transfer("alice", "carol", uint256.NewInt(300), "")
				})
				require.NoError(t, err)
			}
			_, err := internal.Execute(ctx, plenty(t), func(l *internal.Ledger) error {
				return l.TransferCall("tx1", sender, "bob", uint256.NewInt(300), "", "")
			})
			require.NoError(t, err)
			if tt.spend > 0 {
				_, err := internal.Execute(ctx, nil, func(l *internal.Ledger) error {
					return l.Transfer("bob", "carol", uint256.NewInt(tt.spend), "")
				})
				require.NoError(t, err)
			}
			if tt.senderLeaves {
				_, err := internal.Execute(ctx, nil, func(l *internal.Ledger) error {
					_, err := l.UnregisterAccount("carol", false)
					return err
				})
				require.NoError(t, err)
			}
			before := ctx.Snapshot()

			var used *uint256.Int
			receipt, err := internal.Execute(ctx, nil, func(l *internal.Ledger) error {
				var err error
				used, err = l.ResolveTransfer(tt.caller, tt.id, uint256.NewInt(tt.unused))
				return err
			})
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				require.Equal(t, before, ctx.World)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.used, used.Dec())
			require.NotContains(t, ctx.World, constants.PendingTransferPrefix+tt.id)
			require.Less(t, receipt.StorageDelta, int64(0))
			if !tt.senderLeaves {
				require.Equal(t, tt.aliceBalance, balanceOf(t, ctx, "alice"))
			}
			require.Equal(t, tt.bobBalance, balanceOf(t, ctx, "bob"))
			require.Equal(t, tt.supply, totalSupply(t, ctx))
		})
	}
}
