package merge

import "errors"

var (
	// ErrInvalidStrategy indicates an unsupported merge strategy.
	ErrInvalidStrategy = errors.New("invalid or unsupported merge strategy")

	// ErrParseFailed indicates a contribution could not be parsed as
	// JSON under the Shallow or Deep strategy.
	ErrParseFailed = errors.New("failed to parse contribution for merge")
)
