// Package oscillator implements the phase accumulating oscillators that
// drive every output channel of the projector.
//
// There are three flavours, each built by composition on the last:
//
//   - Oscillator, a bare phase accumulator with a frequency.
//   - Derived, an Oscillator with its own waveform Selector that can be
//     phase locked to a parent oscillator at a rational multiple.
//   - Absolute, a Derived that can be pinned to a constant amplitude.
//
// All mutable state is held in atomic words. Control updates and the
// render loop touch the same oscillators concurrently without locks; a
// read that straddles an update sees either the old or the new value of
// each individual field, never a torn one.
package oscillator

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"sync/atomic"

	"github.com/thelolagemann/galvo/internal/waveform"
)

var (
	// ErrNoArguments is returned when an update carries no fields.
	ErrNoArguments = errors.New("oscillator: no arguments")
	// ErrNotFinite is returned for NaN or infinite values.
	ErrNotFinite = errors.New("oscillator: value is not finite")
)

// Oscillator is a phase accumulator. One full cycle of the phase
// spans the entire uint32 range, so the phase wraps naturally on
// overflow.
type Oscillator struct {
	name       string
	sampleRate int

	frequency atomic.Uint64 // math.Float64bits
	phase     atomic.Uint32
}

// New returns an Oscillator running at freq Hz for a stream of
// sampleRate samples per second.
func New(name string, freq float64, sampleRate int) *Oscillator {
	o := &Oscillator{name: name, sampleRate: sampleRate}
	o.SetFrequency(freq)
	return o
}

// Name returns the control name of the oscillator.
func (o *Oscillator) Name() string { return o.name }

// SampleRate returns the number of ticks per second.
func (o *Oscillator) SampleRate() int { return o.sampleRate }

// Frequency returns the frequency in Hz.
func (o *Oscillator) Frequency() float64 {
	return math.Float64frombits(o.frequency.Load())
}

// SetFrequency sets the frequency in Hz.
func (o *Oscillator) SetFrequency(freq float64) {
	o.frequency.Store(math.Float64bits(freq))
}

// Phase returns the current phase accumulator value.
func (o *Oscillator) Phase() uint32 {
	return o.phase.Load()
}

// SetPhase sets the phase accumulator.
func (o *Oscillator) SetPhase(phase uint32) {
	o.phase.Store(phase)
}

// Step returns the phase increment applied per tick at the current
// frequency.
func (o *Oscillator) Step() uint32 {
	return step(o.Frequency(), o.sampleRate)
}

func step(freq float64, sampleRate int) uint32 {
	// via int64 so negative and >1 cycle steps wrap instead of saturating
	return uint32(int64(math.Round(waveform.FullCycle / float64(sampleRate) * freq)))
}

// Advance moves the phase on by one tick.
func (o *Oscillator) Advance() {
	o.phase.Add(o.Step())
}

// Base returns the underlying phase accumulator.
func (o *Oscillator) Base() *Oscillator { return o }

// RenderUnipolar renders the current sample of the given waveform
// in [0, 1]. A silenced oscillator, one with a frequency of 0, always
// reads as fully on so that a channel can be kept lit without any
// modulation.
func (o *Oscillator) RenderUnipolar(kind waveform.Kind) float64 {
	if o.Frequency() == 0 {
		return 1
	}
	return waveform.Unipolar(kind, o.Phase())
}

// RenderBipolar renders the current sample of the given waveform in
// [-1, 1].
func (o *Oscillator) RenderBipolar(kind waveform.Kind) float64 {
	return waveform.ToBipolar(o.RenderUnipolar(kind))
}

// Update sets the frequency from the first argument.
func (o *Oscillator) Update(args []string) error {
	freq, err := parseFrequency(args)
	if err != nil {
		return err
	}
	o.SetFrequency(freq)
	return nil
}

func (o *Oscillator) String() string {
	return fmt.Sprintf("%s(%.3fHz @ %08X)", o.name, o.Frequency(), o.Phase())
}

func parseFrequency(args []string) (float64, error) {
	if len(args) == 0 {
		return 0, ErrNoArguments
	}
	return parseFinite(args[0])
}

func parseFinite(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("oscillator: %w", err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q", ErrNotFinite, s)
	}
	return v, nil
}
