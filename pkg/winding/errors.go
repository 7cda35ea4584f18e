package winding

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidSpec is matched by every ValidationError via errors.Is.
var ErrInvalidSpec = errors.New("invalid winding spec")

// ValidationError reports a bad generator input and names the field.
type ValidationError struct {
	Field  string // e.g. "spiral.turns" or "coil.layer_stack[2]"
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s = %v: %s", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidSpec
}

func invalid(field string, value any, reason string) error {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}

// checks collects the first failing validation of a spec.
type checks struct {
	err error
}

func (c *checks) finite(field string, vals ...float64) {
	if c.err != nil {
		return
	}
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			c.err = invalid(field, v, "must be finite")
			return
		}
	}
}

func (c *checks) positive(field string, v float64) {
	c.finite(field, v)
	if c.err == nil && v <= 0 {
		c.err = invalid(field, v, "must be positive")
	}
}

func (c *checks) nonNegative(field string, v float64) {
	c.finite(field, v)
	if c.err == nil && v < 0 {
		c.err = invalid(field, v, "must not be negative")
	}
}

func (c *checks) rotation(field string, r int) {
	if c.err == nil && r != 1 && r != -1 {
		c.err = invalid(field, r, "must be +1 or -1")
	}
}

func (c *checks) fail(field string, value any, reason string) {
	if c.err == nil {
		c.err = invalid(field, value, reason)
	}
}
