package internal

import (
	"caeth-contract/chaincode/fterr"
	"caeth-contract/chaincode/helper"
	"caeth-contract/chaincode/logger"
	"net/http"
	"strings"

	"github.com/golang/protobuf/proto"
	"github.com/hyperledger/fabric-protos-go/common"
	"github.com/hyperledger/fabric-protos-go/peer"
)

// ProposalProvider is the part of the transaction context that exposes the
// proposal the transaction was submitted with.
type ProposalProvider interface {
	GetSignedProposal() (*peer.SignedProposal, error)
}

// GetCalledContractAddress returns the address of the contract the proposal
// was addressed to. When another contract invokes this one the proposal names
// that contract, not this one.
func GetCalledContractAddress(ctx ProposalProvider) (string, error) {
	signedProposal, e := ctx.GetSignedProposal()
	if e != nil {
		err := fterr.NewInternalError(e, "error in getting signed proposal", http.StatusInternalServerError)
		logger.Log.Error(err.FullError())
		return "", err
	}
	if signedProposal == nil {
		err := fterr.NewInternalError(nil, "could not retrieve signed proposal", http.StatusInternalServerError)
		logger.Log.Error(err.FullError())
		return "", err
	}

	data := signedProposal.GetProposalBytes()
	if data == nil {
		err := fterr.NewInternalError(nil, "error in fetching proposal bytes", http.StatusInternalServerError)
		logger.Log.Error(err.FullError())
		return "", err
	}

	proposal := &peer.Proposal{}
	if e := proto.Unmarshal(data, proposal); e != nil {
		err := fterr.NewInternalError(e, "error in parsing signed proposal", http.StatusInternalServerError)
		logger.Log.Error(err.FullError())
		return "", err
	}

	payload := &common.Payload{}
	if e := proto.Unmarshal(proposal.Payload, payload); e != nil {
		err := fterr.NewInternalError(e, "error in parsing payload", http.StatusInternalServerError)
		logger.Log.Error(err.FullError())
		return "", err
	}

	channelHeader := payload.GetHeader().GetChannelHeader()
	if len(channelHeader) == 0 {
		err := fterr.NewInternalError(nil, "channel header is empty", http.StatusInternalServerError)
		logger.Log.Error(err.FullError())
		return "", err
	}

	printable := helper.FilterPrintableASCII(string(channelHeader))
	logger.Log.Debugf("channel header: %s", printable)

	// hex digits are case-insensitive; account ids are lower case only
	contractAddress := strings.ToLower(helper.FindContractAddress(printable))
	if contractAddress == "" {
		err := fterr.NewInternalError(nil, "contract address not found", http.StatusInternalServerError)
		logger.Log.Error(err.FullError())
		return "", err
	}
	return contractAddress, nil
}
