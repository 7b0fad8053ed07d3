package manifold

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is returned when generator parameters violate their invariants.
	ErrInvalidConfig = errors.New("invalid generator config")

	// ErrUnknownFamily is returned for a family selector that names no generator.
	ErrUnknownFamily = errors.New("unknown manifold family")

	// ErrMissingArgument is returned by plotting when neither a dataset nor a
	// family name is supplied.
	ErrMissingArgument = errors.New("provide either a dataset or a family name to generate")
)

// ConfigError reports which parameter was rejected.
type ConfigError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }

// UnknownFamilyError carries the offending selector.
type UnknownFamilyError struct {
	Name string
}

func (e *UnknownFamilyError) Error() string {
	return fmt.Sprintf("no generator named %q", e.Name)
}

func (e *UnknownFamilyError) Unwrap() error { return ErrUnknownFamily }
