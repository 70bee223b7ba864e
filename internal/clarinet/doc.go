// Package clarinet is the surface contract tests are written against.
//
// It declares the capabilities a chain simulator must provide (Chain), the
// transaction factory (ContractCall), the account registry (AccountMap),
// receipt expectations (Result) and test registration (Registry, Test).
// The package holds no chain logic; simnet provides an implementation.
//
// # Writing a test
//
//	func init() {
//	    clarinet.Test(clarinet.Options{
//	        Name: "counter: increments",
//	        Fn: func(ctx context.Context, chain clarinet.Chain, accounts clarinet.AccountMap) error {
//	            deployer, err := accounts.Require("deployer")
//	            if err != nil {
//	                return err
//	            }
//	            block, err := chain.MineBlock(ctx, []clarinet.Tx{
//	                clarinet.ContractCall("counter", "increment", nil, deployer.Address),
//	            })
//	            if err != nil {
//	                return err
//	            }
//	            _, err = block.Receipts[0].Result.ExpectOk()
//	            return err
//	        },
//	    })
//	}
//
// Registration records the test and nothing else. A Runner later executes
// registered tests one at a time, each against a fresh chain.
package clarinet
