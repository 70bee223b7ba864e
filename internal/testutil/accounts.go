package testutil

import "github.com/roach88/clartest/internal/clarinet"

// Devnet addresses used across tests.
const (
	DeployerAddress = "ST1PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGM"
	Wallet1Address  = "ST1SJ3DTE5DN7X54YDH5D64R3BCB6A2AG2ZQ8YPD5"
	Wallet2Address  = "ST2CY5V39NHDPWSXMW9QDT3HC3GD6Q6XX4CFRK9AG"
)

// DevnetAccounts returns deployer, wallet_1 and wallet_2.
func DevnetAccounts() clarinet.AccountMap {
	return clarinet.NewAccountMap(map[string]clarinet.Account{
		"deployer": {Address: DeployerAddress},
		"wallet_1": {Address: Wallet1Address},
		"wallet_2": {Address: Wallet2Address},
	})
}
