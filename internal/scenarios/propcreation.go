// Package scenarios holds the registered contract tests. Importing it
// registers every test in clarinet.DefaultRegistry.
package scenarios

import (
	"context"
	"fmt"

	"github.com/roach88/clartest/internal/asserts"
	"github.com/roach88/clartest/internal/clarinet"
	"github.com/roach88/clartest/internal/clarity"
	"github.com/roach88/clartest/internal/contracts/propertytokenizer"
)

// PropertyCreationName is the display name of PropertyCreation.
const PropertyCreationName = "Property Tokenizer: Allows owner to create a new tokenized property"

const (
	propertyID      = "PROP_NYC_001"
	propertyAddress = "123 Main St, New York, NY"
	totalValue      = 100000000 // cents
	totalTokens     = 100
)

func init() {
	Register(clarinet.DefaultRegistry)
}

// Register adds every scenario in this package to r.
func Register(r *clarinet.Registry) {
	r.Test(clarinet.Options{Name: PropertyCreationName, Fn: PropertyCreation})
}

// PropertyCreation has the deployer create a property, then reads it back.
// It returns at the first failed check.
func PropertyCreation(ctx context.Context, chain clarinet.Chain, accounts clarinet.AccountMap) error {
	deployer, err := accounts.Require("deployer")
	if err != nil {
		return err
	}

	block, err := chain.MineBlock(ctx, []clarinet.Tx{
		clarinet.ContractCall(
			propertytokenizer.Name,
			propertytokenizer.FnCreateTokenizedProperty,
			[]clarity.Value{
				clarity.Ascii(propertyID),
				clarity.Ascii(propertyAddress),
				clarity.Uint(totalValue),
				clarity.Uint(totalTokens),
			},
			deployer.Address,
		),
	})
	if err != nil {
		return fmt.Errorf("mine block: %w", err)
	}
	if err := asserts.AssertEquals(len(block.Receipts), 1, "receipt count"); err != nil {
		return err
	}
	if err := asserts.AssertEquals(block.Height, int64(2), "block height"); err != nil {
		return err
	}

	created, err := block.Receipts[0].Result.ExpectOk()
	if err != nil {
		return err
	}
	if err := created.ExpectAscii(propertyID); err != nil {
		return err
	}

	info, err := chain.CallReadOnlyFn(ctx,
		propertytokenizer.Name,
		propertytokenizer.FnGetPropertyInfo,
		[]clarity.Value{clarity.Ascii(propertyID)},
		deployer.Address,
	)
	if err != nil {
		return fmt.Errorf("read property: %w", err)
	}
	record, err := info.Result.ExpectSome()
	if err != nil {
		return err
	}
	tuple, err := record.ExpectTuple()
	if err != nil {
		return err
	}

	checks := []struct {
		field string
		want  clarity.Value
	}{
		{propertytokenizer.FieldPropertyAddress, clarity.Ascii(propertyAddress)},
		{propertytokenizer.FieldTotalValue, clarity.Uint(totalValue)},
		{propertytokenizer.FieldPricePerToken, clarity.Uint(totalValue / totalTokens)},
	}
	for _, c := range checks {
		got, _ := tuple.Get(c.field)
		if err := asserts.AssertEquals(got, c.want, c.field); err != nil {
			return err
		}
	}
	return nil
}
