// Package propertytokenizer is a fixture implementation of the
// property-tokenizer contract: enough of it to create properties and read
// them back. Importing the package registers it with simnet.
package propertytokenizer

import (
	"github.com/roach88/clartest/internal/clarity"
	"github.com/roach88/clartest/internal/simnet"
)

// Name is the contract name used for deployment and calls.
const Name = "property-tokenizer"

// Function names.
const (
	FnCreateTokenizedProperty = "create-tokenized-property"
	FnGetPropertyInfo         = "get-property-info"
	FnGetPropertyCount        = "get-property-count"
)

// Error codes returned as (err uN).
const (
	ErrOwnerOnly      = 100
	ErrPropertyExists = 101
	ErrInvalidAmount  = 102
)

// Tuple field names of a property record.
const (
	FieldPropertyAddress = "property-address"
	FieldTotalValue      = "total-value"
	FieldTotalTokens     = "total-tokens"
	FieldPricePerToken   = "price-per-token"
	FieldOwner           = "owner"
)

const (
	propertiesMap = "properties"
	countVar      = "property-count"

	maxIDLen      = 36
	maxAddressLen = 256
)

func init() {
	simnet.RegisterContract(Name, New)
}

type contract struct{}

// New returns a fresh contract instance.
func New() simnet.Contract { return contract{} }

func (contract) Public(name string) (simnet.PublicFunc, bool) {
	switch name {
	case FnCreateTokenizedProperty:
		return createTokenizedProperty, true
	}
	return nil, false
}

func (contract) ReadOnly(name string) (simnet.ReadOnlyFunc, bool) {
	switch name {
	case FnGetPropertyInfo:
		return getPropertyInfo, true
	case FnGetPropertyCount:
		return getPropertyCount, true
	}
	return nil, false
}

func fail(code uint64) clarity.ResponseValue {
	return clarity.Err(clarity.Uint(code))
}

// (create-tokenized-property (property-id (string-ascii 36))
//   (property-address (string-ascii 256)) (total-value uint) (total-tokens uint))
func createTokenizedProperty(cc *simnet.CallContext, args []clarity.Value) (clarity.ResponseValue, error) {
	if err := simnet.CheckArity(args, 4); err != nil {
		return clarity.ResponseValue{}, err
	}
	id, err := simnet.ArgASCII(args, 0, maxIDLen)
	if err != nil {
		return clarity.ResponseValue{}, err
	}
	address, err := simnet.ArgASCII(args, 1, maxAddressLen)
	if err != nil {
		return clarity.ResponseValue{}, err
	}
	totalValue, err := simnet.ArgUint(args, 2)
	if err != nil {
		return clarity.ResponseValue{}, err
	}
	totalTokens, err := simnet.ArgUint(args, 3)
	if err != nil {
		return clarity.ResponseValue{}, err
	}

	if cc.Sender != cc.Deployer {
		return fail(ErrOwnerOnly), nil
	}
	if totalValue.IsZero() || totalTokens.IsZero() {
		return fail(ErrInvalidAmount), nil
	}

	price, err := totalValue.Div(totalTokens)
	if err != nil {
		return clarity.ResponseValue{}, err
	}
	record := clarity.Tuple(map[string]clarity.Value{
		FieldPropertyAddress: address,
		FieldTotalValue:      totalValue,
		FieldTotalTokens:     totalTokens,
		FieldPricePerToken:   price,
		FieldOwner:           clarity.Principal(cc.Sender),
	})

	inserted, err := cc.State.MapInsert(propertiesMap, id, record)
	if err != nil {
		return clarity.ResponseValue{}, err
	}
	if !inserted {
		return fail(ErrPropertyExists), nil
	}

	count := clarity.Uint(0)
	if v, ok := cc.State.VarGet(countVar); ok {
		count = v.(clarity.UintValue)
	}
	n, _ := count.Uint64()
	cc.State.VarSet(countVar, clarity.Uint(n+1))

	return clarity.Ok(id), nil
}

// (get-property-info (property-id (string-ascii 36)))
func getPropertyInfo(cc *simnet.CallContext, args []clarity.Value) (clarity.Value, error) {
	if err := simnet.CheckArity(args, 1); err != nil {
		return nil, err
	}
	id, err := simnet.ArgASCII(args, 0, maxIDLen)
	if err != nil {
		return nil, err
	}

	record, ok, err := cc.State.MapGet(propertiesMap, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return clarity.None(), nil
	}
	return clarity.Some(record), nil
}

// (get-property-count)
func getPropertyCount(cc *simnet.CallContext, args []clarity.Value) (clarity.Value, error) {
	if err := simnet.CheckArity(args, 0); err != nil {
		return nil, err
	}
	if v, ok := cc.State.VarGet(countVar); ok {
		return v, nil
	}
	return clarity.Uint(0), nil
}
