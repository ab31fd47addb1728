package events

import (
	"caeth-contract/chaincode/constants"
	"caeth-contract/chaincode/fterr"
	"caeth-contract/chaincode/logger"
	"encoding/json"
	"fmt"
	"net/http"
)

// Emitter is the part of the transaction context that publishes chaincode events.
type Emitter interface {
	SetEvent(name string, payload []byte) error
}

// Event is a single NEP-297 formatted record.
type Event struct {
	Standard string        `json:"standard"`
	Version  string        `json:"version"`
	Event    string        `json:"event"`
	Data     []interface{} `json:"data"`
}

type MintEvent struct {
	OwnerId string `json:"owner_id"`
	Amount  string `json:"amount"`
	Memo    string `json:"memo,omitempty"`
}

type BurnEvent struct {
	OwnerId string `json:"owner_id"`
	Amount  string `json:"amount"`
	Memo    string `json:"memo,omitempty"`
}

type TransferEvent struct {
	OldOwnerId string `json:"old_owner_id"`
	NewOwnerId string `json:"new_owner_id"`
	Amount     string `json:"amount"`
	Memo       string `json:"memo,omitempty"`
}

// TransferCallEvent notifies the receiver that tokens arrived with a message.
// The receiver answers with FtResolveTransfer quoting TransferId.
type TransferCallEvent struct {
	TransferId string `json:"transfer_id"`
	SenderId   string `json:"sender_id"`
	ReceiverId string `json:"receiver_id"`
	Amount     string `json:"amount"`
	Msg        string `json:"msg"`
}

// Log buffers the events of one call. Nothing leaves the log until Emit,
// which the caller invokes only after the state changes are committed.
type Log struct {
	records []Event
}

func NewLog() *Log {
	return &Log{}
}

func (l *Log) add(name string, data interface{}) {
	l.records = append(l.records, Event{
		Standard: constants.EventStandard,
		Version:  constants.EventVersion,
		Event:    name,
		Data:     []interface{}{data},
	})
}

func (l *Log) Mint(owner string, amount string, memo string) {
	l.add(constants.FtMint, MintEvent{OwnerId: owner, Amount: amount, Memo: memo})
}

func (l *Log) Burn(owner string, amount string, memo string) {
	l.add(constants.FtBurn, BurnEvent{OwnerId: owner, Amount: amount, Memo: memo})
}

func (l *Log) Transfer(from string, to string, amount string, memo string) {
	l.add(constants.FtTransfer, TransferEvent{OldOwnerId: from, NewOwnerId: to, Amount: amount, Memo: memo})
}

func (l *Log) TransferCall(id string, sender string, receiver string, amount string, msg string) {
	l.add(constants.FtTransferCall, TransferCallEvent{TransferId: id, SenderId: sender, ReceiverId: receiver, Amount: amount, Msg: msg})
}

func (l *Log) Records() []Event {
	return l.records
}

func (l *Log) Len() int {
	return len(l.records)
}

// Emit publishes the buffered records. A transaction carries a single chaincode
// event, so all records of the call go out together as one JSON array.
func (l *Log) Emit(ctx Emitter) error {
	if len(l.records) == 0 {
		return nil
	}
	lines := make([][]byte, 0, len(l.records))
	for _, r := range l.records {
		b, e := json.Marshal(r)
		if e != nil {
			err := fterr.NewInternalError(e, fmt.Sprintf("failed to marshal %s event", r.Event), http.StatusInternalServerError)
			logger.Log.Error(err.FullError())
			return err
		}
		lines = append(lines, b)
	}
	payload, e := json.Marshal(l.records)
	if e != nil {
		err := fterr.NewInternalError(e, "failed to marshal events", http.StatusInternalServerError)
		logger.Log.Error(err.FullError())
		return err
	}
	if e := ctx.SetEvent(constants.EventName, payload); e != nil {
		err := fterr.NewInternalError(e, "failed to emit events", http.StatusInternalServerError)
		logger.Log.Error(err.FullError())
		return err
	}
	for _, b := range lines {
		logger.Event(b)
	}
	l.records = nil
	return nil
}
