package simnet

import "errors"

var (
	// ErrUnknownContract is returned for calls to, or deployments of,
	// contracts that are not registered or not deployed.
	ErrUnknownContract = errors.New("unknown contract")

	// ErrUnknownFunction is returned when a contract has no function of
	// the requested name and kind (public or read-only).
	ErrUnknownFunction = errors.New("unknown function")

	// ErrInvalidArgument is returned for malformed senders and arguments.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidResult is returned when a contract function returns a
	// value that fails clarity.Validate, such as (ok nil).
	ErrInvalidResult = errors.New("invalid contract result")

	// ErrDuplicateDeployment is returned when two deployments share a name.
	ErrDuplicateDeployment = errors.New("contract deployed twice")
)
