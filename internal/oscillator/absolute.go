package oscillator

import (
	"errors"
	"math"
	"sync/atomic"
)

// ErrBipolarOverride is the panic value raised when a bipolar render is
// requested from an Absolute oscillator. Absolute oscillators feed color
// channels only; asking one for a position value is a programming error.
var ErrBipolarOverride = errors.New("oscillator: bipolar render of an absolute oscillator")

// unset marks an Absolute oscillator without an override. Overrides are
// always finite, so NaN never collides with a real value.
var unset = math.Float64bits(math.NaN())

// Absolute is a Derived oscillator whose unipolar output can be pinned
// to a constant, bypassing the waveform entirely. It is used to hold a
// color or blanking channel steady while keeping the option of bringing
// modulation back later.
type Absolute struct {
	*Derived

	override atomic.Uint64 // math.Float64bits, unset when modulating
}

// NewAbsolute returns an Absolute oscillator without an override.
func NewAbsolute(name string, freq float64, sampleRate int, table *Table, parent Handle) *Absolute {
	a := &Absolute{Derived: NewDerived(name, freq, sampleRate, table, parent)}
	a.override.Store(unset)
	return a
}

// Override returns the pinned value, if any.
func (a *Absolute) Override() (float64, bool) {
	bits := a.override.Load()
	if bits == unset {
		return 0, false
	}
	return math.Float64frombits(bits), true
}

// SetOverride pins the unipolar output to v.
func (a *Absolute) SetOverride(v float64) {
	a.override.Store(math.Float64bits(v))
}

// ClearOverride returns the oscillator to normal rendering.
func (a *Absolute) ClearOverride() {
	a.override.Store(unset)
}

// RenderUnipolar returns the override when one is set, otherwise the
// selected waveform.
func (a *Absolute) RenderUnipolar() float64 {
	if v, ok := a.Override(); ok {
		return v
	}
	return a.Derived.RenderUnipolar()
}

// RenderBipolar always panics with ErrBipolarOverride.
func (a *Absolute) RenderBipolar() float64 {
	panic(ErrBipolarOverride)
}

// Update handles ["absolute", value] by pinning the output. Anything
// else is a Derived update and releases the pin, but only once the
// update has parsed.
func (a *Absolute) Update(args []string) error {
	if len(args) > 0 && args[0] == "absolute" {
		if len(args) < 2 {
			return ErrNoArguments
		}
		v, err := parseFinite(args[1])
		if err != nil {
			return err
		}
		a.SetOverride(v)
		return nil
	}

	u, err := a.parse(args)
	if err != nil {
		return err
	}
	a.ClearOverride()
	return a.apply(u)
}
