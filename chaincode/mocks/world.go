package mocks

import (
	"encoding/base64"
	"fmt"
	"sort"
	"strings"

	"github.com/golang/protobuf/proto"
	"github.com/hyperledger/fabric-protos-go/common"
	"github.com/hyperledger/fabric-protos-go/peer"
)

type Event struct {
	Name    string
	Payload []byte
}

// WorldState wires a TransactionContext fake to an in-memory world state.
// Stubs can still be overridden with the fake's Returns helpers.
type WorldState struct {
	*TransactionContext

	Identity       *ClientIdentity
	World          map[string][]byte
	Events         []Event
	UserID         string
	CalledContract string
	TxID           string
}

func NewWorldState(userID string, calledContract string) *WorldState {
	w := &WorldState{
		TransactionContext: &TransactionContext{},
		Identity:           &ClientIdentity{},
		World:              map[string][]byte{},
		CalledContract:     calledContract,
		TxID:               "tx0",
	}
	w.SetUserID(userID)
	w.GetClientIdentityReturns(w.Identity)

	w.GetStateStub = func(key string) ([]byte, error) {
		data, found := w.World[key]
		if !found {
			return nil, nil
		}
		return append([]byte(nil), data...), nil
	}
	w.PutStateWithoutKYCStub = func(key string, value []byte) error {
		w.World[key] = append([]byte(nil), value...)
		return nil
	}
	w.DelStateWithoutKYCStub = func(key string) error {
		delete(w.World, key)
		return nil
	}
	w.SetEventStub = func(name string, payload []byte) error {
		w.Events = append(w.Events, Event{Name: name, Payload: payload})
		return nil
	}
	w.GetTxIDStub = func() string {
		return w.TxID
	}
	w.GetSignedProposalStub = w.signedProposal
	return w
}

// SetUserID switches the certificate CN the next calls are signed with.
func (w *WorldState) SetUserID(userID string) {
	w.UserID = userID
	completeId := fmt.Sprintf("x509::CN=%s,O=Organization,L=City,ST=State,C=Country", userID)
	w.Identity.GetIDReturns(base64.StdEncoding.EncodeToString([]byte(completeId)), nil)
}

// signedProposal builds a proposal whose channel header names CalledContract
// as the invoked chaincode.
func (w *WorldState) signedProposal() (*peer.SignedProposal, error) {
	ext, err := proto.Marshal(&peer.ChaincodeHeaderExtension{
		ChaincodeId: &peer.ChaincodeID{Name: w.CalledContract},
	})
	if err != nil {
		return nil, err
	}
	channelHeader, err := proto.Marshal(&common.ChannelHeader{
		Type:      int32(common.HeaderType_ENDORSER_TRANSACTION),
		ChannelId: "kalp",
		TxId:      w.TxID,
		Extension: ext,
	})
	if err != nil {
		return nil, err
	}
	payload, err := proto.Marshal(&common.Payload{
		Header: &common.Header{ChannelHeader: channelHeader},
	})
	if err != nil {
		return nil, err
	}
	proposal, err := proto.Marshal(&peer.Proposal{Payload: payload})
	if err != nil {
		return nil, err
	}
	return &peer.SignedProposal{ProposalBytes: proposal}, nil
}

// Keys returns the world state keys with the given prefix in sorted order.
func (w *WorldState) Keys(prefix string) []string {
	var keys []string
	for k := range w.World {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Snapshot copies the world state so tests can assert a call left it untouched.
func (w *WorldState) Snapshot() map[string][]byte {
	out := make(map[string][]byte, len(w.World))
	for k, v := range w.World {
		out[k] = append([]byte(nil), v...)
	}
	return out
}
