package logger

import (
	"caeth-contract/chaincode/constants"

	"github.com/p2eengineering/kalp-sdk-public/kalpsdk"
)

var Log *kalpsdk.ChaincodeLogger

func init() {
	Log = kalpsdk.NewLogger()
}

// Event writes a serialized event in the EVENT_JSON log format indexers scrape.
func Event(payload []byte) {
	Log.Infof("%s%s", constants.EventLogPrefix, payload)
}
