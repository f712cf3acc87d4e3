package oscillator

import (
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/thelolagemann/galvo/internal/waveform"
)

// ErrMultiplierIndex is returned when a phase lock names a multiplier
// outside of Multipliers.
var ErrMultiplierIndex = errors.New("oscillator: multiplier index out of range")

// Multipliers are the ratios a Derived oscillator can be locked at,
// relative to its parent, addressed by index in a phase update.
var Multipliers = [...]float64{0.25, 1 / 3.0, 0.5, 1, 1.5, 2, 3, 4, 5, 6, 7, 8, 9, 10}

// phase steps per degree of offset
const degreesToPhase = waveform.FullCycle / 360.0

const freeRun = -1

// Selector holds the waveform a Derived oscillator renders with.
type Selector struct {
	kind atomic.Int32
}

// NewSelector returns a Selector set to kind.
func NewSelector(kind waveform.Kind) *Selector {
	s := &Selector{}
	s.Set(kind)
	return s
}

// Kind returns the selected waveform.
func (s *Selector) Kind() waveform.Kind { return waveform.Kind(s.kind.Load()) }

// Set selects kind.
func (s *Selector) Set(kind waveform.Kind) { s.kind.Store(int32(kind)) }

// Update selects the waveform named by the first argument.
func (s *Selector) Update(args []string) error {
	if len(args) == 0 {
		return ErrNoArguments
	}
	kind, err := waveform.Parse(args[0])
	if err != nil {
		return err
	}
	s.Set(kind)
	return nil
}

// Derived is an oscillator with its own waveform selection that can
// be locked to a parent oscillator.
//
// A lock fixes the derived frequency to a multiple of the parent's and
// resets the derived phase to the parent's scaled phase plus an offset.
// While locked, the frequency is read through the parent so retuning the
// parent retunes every child locked to it.
//
// The render loop only ever adds to the phase. A lock is applied at once
// and again on the next Advance, against the parent's phase for that
// tick, so a lock that lands halfway through a tick cannot leave the
// child a step behind.
type Derived struct {
	Oscillator
	Waveform *Selector

	table   *Table
	parent  Handle
	lock    atomic.Int32 // index into Multipliers, or freeRun
	pending atomic.Pointer[phaseLock]
}

// phaseLock is a lock waiting to be aligned by the render loop.
type phaseLock struct {
	multiplier float64
	offset     float64
}

func (l *phaseLock) phase(parent uint32) uint32 {
	return uint32(int64(float64(parent)*l.multiplier) + int64(l.offset*degreesToPhase))
}

// NewDerived returns a free-running Derived oscillator whose parent is
// the voice at parent in table.
func NewDerived(name string, freq float64, sampleRate int, table *Table, parent Handle) *Derived {
	d := &Derived{
		Waveform: NewSelector(waveform.Sin),
		table:    table,
		parent:   parent,
	}
	d.name = name
	d.sampleRate = sampleRate
	d.SetFrequency(freq)
	d.lock.Store(freeRun)
	return d
}

// Locked reports whether the oscillator is phase locked, and at which
// multiplier.
func (d *Derived) Locked() (float64, bool) {
	idx := d.lock.Load()
	if idx == freeRun {
		return 0, false
	}
	return Multipliers[idx], true
}

// Frequency returns the parent's frequency times the multiplier while
// locked, and the free running frequency otherwise.
func (d *Derived) Frequency() float64 {
	if m, ok := d.Locked(); ok {
		if parent := d.table.Resolve(d.parent); parent != nil {
			return parent.Frequency() * m
		}
	}
	return d.Oscillator.Frequency()
}

// Step returns the phase increment applied per tick.
func (d *Derived) Step() uint32 {
	return step(d.Frequency(), d.sampleRate)
}

// Advance moves the phase on by one tick. A pending lock instead snaps
// the phase to the parent's, which has already advanced for this tick.
func (d *Derived) Advance() {
	if l := d.pending.Swap(nil); l != nil {
		if parent := d.table.Resolve(d.parent); parent != nil {
			d.SetPhase(l.phase(parent.Phase()))
			return
		}
	}
	d.phase.Add(d.Step())
}

// RenderUnipolar renders the selected waveform in [0, 1].
func (d *Derived) RenderUnipolar() float64 {
	if d.Frequency() == 0 {
		return 1
	}
	return waveform.Unipolar(d.Waveform.Kind(), d.Phase())
}

// RenderBipolar renders the selected waveform in [-1, 1].
func (d *Derived) RenderBipolar() float64 {
	return waveform.ToBipolar(d.RenderUnipolar())
}

func (d *Derived) String() string {
	return fmt.Sprintf("%s(%.3fHz @ %08X)", d.name, d.Frequency(), d.Phase())
}

// update is a parsed, not yet applied, Derived update.
type update struct {
	lock      bool
	index     int
	offset    float64
	frequency float64
}

// Update applies either a phase lock, ["phase", index, offsetDegrees],
// or a plain frequency which releases any lock. Nothing is changed if
// the arguments do not parse.
func (d *Derived) Update(args []string) error {
	u, err := d.parse(args)
	if err != nil {
		return err
	}
	return d.apply(u)
}

func (d *Derived) parse(args []string) (update, error) {
	if len(args) == 0 {
		return update{}, ErrNoArguments
	}
	if args[0] != "phase" {
		freq, err := parseFrequency(args)
		return update{frequency: freq}, err
	}

	if len(args) < 3 {
		return update{}, fmt.Errorf("oscillator: phase lock wants an index and an offset, got %d arguments", len(args)-1)
	}
	idx, err := strconv.Atoi(args[1])
	if err != nil {
		return update{}, fmt.Errorf("oscillator: %w", err)
	}
	if idx < 0 || idx >= len(Multipliers) {
		return update{}, fmt.Errorf("%w: %d", ErrMultiplierIndex, idx)
	}
	offset, err := parseFinite(args[2])
	if err != nil {
		return update{}, err
	}
	return update{lock: true, index: idx, offset: offset}, nil
}

func (d *Derived) apply(u update) error {
	if !u.lock {
		d.pending.Store(nil)
		d.SetFrequency(u.frequency)
		d.lock.Store(freeRun)
		return nil
	}

	parent := d.table.Resolve(d.parent)
	if parent == nil {
		return fmt.Errorf("oscillator: %s has no parent to lock to", d.name)
	}
	l := &phaseLock{multiplier: Multipliers[u.index], offset: u.offset}
	d.SetPhase(l.phase(parent.Phase()))
	d.lock.Store(int32(u.index))
	// published last, so the render loop aligns after the store above
	d.pending.Store(l)
	return nil
}
