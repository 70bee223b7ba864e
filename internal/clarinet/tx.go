package clarinet

import (
	"slices"

	"github.com/roach88/clartest/internal/clarity"
)

// Tx describes one contract call. It is immutable; build it with
// ContractCall. Malformed contents are the chain's to reject.
type Tx struct {
	contract string
	function string
	args     []clarity.Value
	sender   string
}

// ContractCall builds a transaction calling function on contract with
// args, sent by sender. The args slice is copied.
func ContractCall(contract, function string, args []clarity.Value, sender string) Tx {
	return Tx{
		contract: contract,
		function: function,
		args:     slices.Clone(args),
		sender:   sender,
	}
}

// Contract returns the target contract name.
func (t Tx) Contract() string { return t.contract }

// Function returns the called function name.
func (t Tx) Function() string { return t.function }

// Sender returns the sender address.
func (t Tx) Sender() string { return t.sender }

// Args returns a copy of the arguments.
func (t Tx) Args() []clarity.Value { return slices.Clone(t.args) }
