/*
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"log"

	"caeth-contract/chaincode"
	"caeth-contract/chaincode/constants"

	"github.com/hyperledger/fabric-contract-api-go/metadata"
	"github.com/p2eengineering/kalp-sdk-public/kalpsdk"
)

func main() {
	contract := kalpsdk.Contract{IsPayableContract: false}
	contract.Contract.Name = constants.ContractAddress
	contract.Contract.Info = metadata.InfoMetadata{
		Title:       constants.DefaultName,
		Description: "caETH fungible token with storage deposits",
		Version:     constants.FtMetadataSpec,
	}
	contract.Logger = kalpsdk.NewLogger()
	caethChaincode, err := kalpsdk.NewChaincode(&chaincode.SmartContract{Contract: contract})
	if err != nil {
		log.Panicf("Error creating caeth chaincode: %v", err)
	}

	if err := caethChaincode.Start(); err != nil {
		log.Panicf("Error starting caeth chaincode: %v", err)
	}
}
