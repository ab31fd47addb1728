package internal

import (
	"caeth-contract/chaincode/constants"
	"caeth-contract/chaincode/events"
	"caeth-contract/chaincode/fterr"
	"caeth-contract/chaincode/logger"
	"caeth-contract/chaincode/models"
	"net/http"
	"strconv"

	"github.com/holiman/uint256"
)

// Context is what a metered call needs from the transaction context.
type Context interface {
	WorldState
	events.Emitter
}

// Execute runs op as one atomic, storage metered call. The state growth caused
// by op is charged against attached, released state is refunded, and so is any
// part of attached that was not needed. If op fails or attached does not cover
// the growth, no write reaches the world state and no event is emitted.
func Execute(ctx Context, attached *uint256.Int, op func(*Ledger) error) (models.Receipt, error) {
	return execute(ctx, attached, true, op)
}

// ExecuteUnmetered is Execute without charging: usage is still tracked. It is
// used for initialization, whose storage is paid for by the deployment.
func ExecuteUnmetered(ctx Context, op func(*Ledger) error) (models.Receipt, error) {
	return execute(ctx, nil, false, op)
}

// Query runs a read-only op. Any write op attempts is dropped.
func Query(world WorldState, op func(*Ledger) error) error {
	return op(newLedger(world, nil))
}

func execute(ctx Context, attached *uint256.Int, metered bool, op func(*Ledger) error) (models.Receipt, error) {
	l := newLedger(ctx, attached)
	before, err := l.StorageUsage()
	if err != nil {
		return models.Receipt{}, err
	}

	if err := op(l); err != nil {
		return models.Receipt{}, err
	}

	delta, err := l.state.Delta()
	if err != nil {
		return models.Receipt{}, err
	}
	charged, released := new(uint256.Int), new(uint256.Int)
	if metered && delta != 0 {
		price, err := l.StorageBytePrice()
		if err != nil {
			return models.Receipt{}, err
		}
		if delta > 0 {
			charged.Mul(price, uint256.NewInt(uint64(delta)))
		} else {
			released.Mul(price, uint256.NewInt(uint64(-delta)))
		}
		if l.attached.Lt(charged) {
			return models.Receipt{}, fterr.ErrInsufficientStorageDeposit.Withf("%d bytes cost %s, attached %s", delta, charged.Dec(), l.attached.Dec())
		}
	}

	after := before + delta
	if after < 0 {
		return models.Receipt{}, fterr.NewInternalError(nil, "storage usage would become negative", http.StatusInternalServerError)
	}
	if delta != 0 {
		l.state.Put(constants.StorageUsageKey, []byte(strconv.FormatInt(after, 10)))
	}

	if err := l.state.Commit(); err != nil {
		logger.Log.Errorf("failed to commit call: %v", err)
		return models.Receipt{}, err
	}
	if err := l.events.Emit(ctx); err != nil {
		return models.Receipt{}, err
	}

	refund := new(uint256.Int).Sub(l.attached, charged)
	refund.Add(refund, released)
	receipt := models.Receipt{
		Attached:     l.attached.Dec(),
		Charged:      charged.Dec(),
		Refund:       refund.Dec(),
		StorageDelta: delta,
	}
	logger.Log.Debugf("storage usage %d -> %d bytes, %s", before, after, receipt)
	return receipt, nil
}

// StorageUsage returns the number of billable bytes the ledger occupies.
func (l *Ledger) StorageUsage() (int64, error) {
	bytes, err := l.state.Get(constants.StorageUsageKey)
	if err != nil {
		return 0, err
	}
	if bytes == nil {
		return 0, nil
	}
	usage, err := strconv.ParseInt(string(bytes), 10, 64)
	if err != nil {
		return 0, fterr.ErrCorruptedState(err, constants.StorageUsageKey)
	}
	return usage, nil
}
