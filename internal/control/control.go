// Package control routes textual control batches to the live parameters
// of the projector.
//
// A batch is a single space separated list of tokens, each of the form
// key:arg1:arg2:... The key selects a Target and the remaining fields
// are handed to its Update method. Tokens are independent; one that
// fails does not stop the rest of the batch from applying.
package control

import (
	"fmt"
	"math"
	"strconv"
	"sync/atomic"
)

// Target is a live parameter addressable from a control batch.
type Target interface {
	// Update applies the fields following the key. If the fields do not
	// parse, Update returns an error and leaves the target unchanged.
	Update(args []string) error
}

// TargetFunc adapts a function to a Target.
type TargetFunc func(args []string) error

// Update calls f(args).
func (f TargetFunc) Update(args []string) error { return f(args) }

// Float is a numeric control, such as a rotation angle.
type Float struct {
	bits atomic.Uint64
}

// NewFloat returns a Float holding v.
func NewFloat(v float64) *Float {
	f := &Float{}
	f.Set(v)
	return f
}

// Value returns the current value.
func (f *Float) Value() float64 { return math.Float64frombits(f.bits.Load()) }

// Set stores v.
func (f *Float) Set(v float64) { f.bits.Store(math.Float64bits(v)) }

// Update sets the value from the first argument.
func (f *Float) Update(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("control: missing value")
	}
	v, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("control: %w", err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("control: value %q is not finite", args[0])
	}
	f.Set(v)
	return nil
}
