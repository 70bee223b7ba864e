// Package simnet is a stub chain simulator implementing clarinet.Chain.
//
// It orders transactions into numbered blocks and produces receipts. It
// does not interpret contract source: contracts are Go implementations of
// the Contract interface, registered by name with RegisterContract (the
// way database/sql drivers register) and deployed in the genesis block.
//
// # Heights
//
// A new chain is at height 1: the genesis block holds the contract
// deployments. The first MineBlock therefore returns height 2.
//
// # State
//
// Each contract owns a ContractState of data maps and data vars. A public
// call runs against a copy of the state, and the copy is committed only
// when the call returns (ok ...). A block is atomic: if any transaction
// fails with a Go error (unknown function, bad argument), MineBlock returns
// the error and the chain is unchanged. Read-only calls run against a
// throwaway copy and never change state.
//
// # Persistence
//
// WithStore appends every block, including genesis, to a store.Store
// chain log under the chain's session ID.
package simnet
