package simnet

import (
	"fmt"

	"github.com/roach88/clartest/internal/clarity"
)

// Argument helpers for contract implementations. All failures wrap
// ErrInvalidArgument.

// CheckArity checks that exactly n arguments were passed.
func CheckArity(args []clarity.Value, n int) error {
	if len(args) != n {
		return fmt.Errorf("%w: expected %d arguments, got %d", ErrInvalidArgument, n, len(args))
	}
	return nil
}

// ArgASCII returns args[i] as a string-ascii of at most maxLen bytes.
func ArgASCII(args []clarity.Value, i, maxLen int) (clarity.ASCIIValue, error) {
	v, ok := args[i].(clarity.ASCIIValue)
	if !ok {
		return "", argTypeError(args, i, "string-ascii")
	}
	if len(v) > maxLen {
		return "", fmt.Errorf("%w: argument %d: string-ascii longer than %d", ErrInvalidArgument, i, maxLen)
	}
	return v, nil
}

// ArgUint returns args[i] as a uint.
func ArgUint(args []clarity.Value, i int) (clarity.UintValue, error) {
	v, ok := args[i].(clarity.UintValue)
	if !ok {
		return clarity.UintValue{}, argTypeError(args, i, "uint")
	}
	return v, nil
}

// argPrincipal returns args[i] as a principal.
func argPrincipal(args []clarity.Value, i int) (clarity.PrincipalValue, error) {
	v, ok := args[i].(clarity.PrincipalValue)
	if !ok {
		return "", argTypeError(args, i, "principal")
	}
	return v, nil
}

func argTypeError(args []clarity.Value, i int, want string) error {
	return fmt.Errorf("%w: argument %d: expected %s, got %s", ErrInvalidArgument, i, want, args[i].Kind())
}

// validateCall rejects malformed senders and argument values before any
// contract code runs.
func validateCall(sender string, args []clarity.Value) error {
	if err := clarity.Validate(clarity.Principal(sender)); err != nil {
		return fmt.Errorf("%w: sender: %w", ErrInvalidArgument, err)
	}
	for i, arg := range args {
		if arg == nil {
			return fmt.Errorf("%w: argument %d is nil", ErrInvalidArgument, i)
		}
		if err := clarity.Validate(arg); err != nil {
			return fmt.Errorf("%w: argument %d: %w", ErrInvalidArgument, i, err)
		}
	}
	return nil
}
