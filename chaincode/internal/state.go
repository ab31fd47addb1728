package internal

import (
	"caeth-contract/chaincode/constants"
	"caeth-contract/chaincode/fterr"
	"strings"
)

// WorldState is the subset of the transaction context the ledger reads and
// writes through.
type WorldState interface {
	GetState(key string) ([]byte, error)
	PutStateWithoutKYC(key string, value []byte) error
	DelStateWithoutKYC(key string) error
}

// Sizer reports how many billable bytes a record occupies.
type Sizer func(key string, value []byte) int64

// RecordBytes bills account records as fixed size slots, so registering any
// account costs exactly the advertised minimum storage balance. The usage
// counter itself is not billed.
func RecordBytes(key string, value []byte) int64 {
	switch {
	case key == constants.StorageUsageKey:
		return 0
	case strings.HasPrefix(key, constants.AccountPrefix):
		return constants.AccountSlotBytes
	default:
		return int64(len(key)+len(value)) + constants.StorageRecordOverhead
	}
}

// TxState buffers the writes of one call on top of the world state. Reads see
// buffered writes first. Nothing reaches the world state until Commit, so a
// failed call is discarded by dropping the TxState.
type TxState struct {
	world  WorldState
	sizer  Sizer
	writes map[string][]byte
	order  []string
}

func NewTxState(world WorldState, sizer Sizer) *TxState {
	return &TxState{
		world:  world,
		sizer:  sizer,
		writes: map[string][]byte{},
	}
}

func (s *TxState) Get(key string) ([]byte, error) {
	if v, ok := s.writes[key]; ok {
		return v, nil
	}
	v, err := s.world.GetState(key)
	if err != nil {
		return nil, fterr.ErrFailedToGetState(err, key)
	}
	return v, nil
}

func (s *TxState) Put(key string, value []byte) {
	s.record(key)
	s.writes[key] = value
}

func (s *TxState) Del(key string) {
	s.record(key)
	s.writes[key] = nil
}

func (s *TxState) record(key string) {
	if _, ok := s.writes[key]; !ok {
		s.order = append(s.order, key)
	}
}

func (s *TxState) Dirty() bool {
	return len(s.order) > 0
}

// Delta is the change in billable bytes the buffered writes would cause.
func (s *TxState) Delta() (int64, error) {
	var delta int64
	for _, key := range s.order {
		before, err := s.world.GetState(key)
		if err != nil {
			return 0, fterr.ErrFailedToGetState(err, key)
		}
		if before != nil {
			delta -= s.sizer(key, before)
		}
		if after := s.writes[key]; after != nil {
			delta += s.sizer(key, after)
		}
	}
	return delta, nil
}

func (s *TxState) Commit() error {
	for _, key := range s.order {
		value := s.writes[key]
		if value == nil {
			if err := s.world.DelStateWithoutKYC(key); err != nil {
				return fterr.ErrFailedToDelState(err, key)
			}
			continue
		}
		if err := s.world.PutStateWithoutKYC(key, value); err != nil {
			return fterr.ErrFailedToPutState(err, key)
		}
	}
	s.writes = map[string][]byte{}
	s.order = nil
	return nil
}
