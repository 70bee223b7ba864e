// Package harness runs declarative contract test scenarios.
//
// A scenario is a YAML file listing steps against a fresh simulated chain:
//
//	name: property-creation
//	description: Deployer creates a property and reads it back
//	steps:
//	  - mine:
//	      - call: property-tokenizer.create-tokenized-property
//	        sender: deployer
//	        args:
//	          - ascii: PROP_NYC_001
//	          - uint: 100
//	    expect:
//	      height: 2
//	      results:
//	        - ok: {ascii: PROP_NYC_001}
//	  - read_only:
//	      call: property-tokenizer.get-property-info
//	      sender: deployer
//	      args:
//	        - ascii: PROP_NYC_001
//	    expect:
//	      fields:
//	        price-per-token: {uint: 1}
//	assertions:
//	  - type: trace_count
//	    call: property-tokenizer.create-tokenized-property
//	    count: 1
//
// Senders name account roles from the manifest. Typed values are
// single-key maps: ascii, utf8, uint, bool, principal, account (a role,
// resolved to its address), some, none, list, tuple, ok and err.
//
// Steps run in order and stop at the first failed expectation. Every
// transaction and read-only call is recorded in the trace, which can be
// compared against golden files. Session IDs, tx IDs and block hashes are
// left out of the trace so golden files only change when behavior does.
package harness
