package core

import "fmt"

// ConfigurationError reports an invalid option detected before any
// simulation state is touched.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s: %s", e.Field, e.Reason)
}

// MalformedPatternError reports pattern text that violates the run-length
// grammar. Line is 1-based and zero when the position is unknown.
type MalformedPatternError struct {
	Line   int
	Reason string
}

func (e *MalformedPatternError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed pattern: line %d: %s", e.Line, e.Reason)
	}
	return fmt.Sprintf("malformed pattern: %s", e.Reason)
}

// AllocationError reports a failed grid buffer allocation.
type AllocationError struct {
	Op    string
	Bytes int
	Err   error
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("allocation: %s: %d bytes: %v", e.Op, e.Bytes, e.Err)
}

func (e *AllocationError) Unwrap() error { return e.Err }

// AcceleratorError reports a failed accelerator operation other than
// allocation, such as a kernel launch, a synchronize or a transfer.
type AcceleratorError struct {
	Op  string
	Err error
}

func (e *AcceleratorError) Error() string {
	return fmt.Sprintf("accelerator: %s: %v", e.Op, e.Err)
}

func (e *AcceleratorError) Unwrap() error { return e.Err }
