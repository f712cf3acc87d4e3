package oscillator

import "fmt"

// Voice is anything held in a Table. Voices advance together, once
// per sample, in the order they were added.
type Voice interface {
	Base() *Oscillator
	Advance()
}

// Handle refers to a voice in a Table by position. It does not keep
// the voice alive and is resolved every time it is used.
type Handle int

// Table is the fixed set of voices that share a single global tick.
// Voices are added while the topology is being built and never removed.
type Table struct {
	voices []Voice
}

// NewTable returns an empty Table.
func NewTable() *Table {
	return &Table{}
}

// Add appends v to the table and returns its handle.
func (t *Table) Add(v Voice) Handle {
	t.voices = append(t.voices, v)
	return Handle(len(t.voices) - 1)
}

// Resolve returns the oscillator behind h, or nil if h does not refer to
// a voice in the table.
func (t *Table) Resolve(h Handle) *Oscillator {
	if h < 0 || int(h) >= len(t.voices) {
		return nil
	}
	return t.voices[h].Base()
}

// Len returns the number of voices in the table.
func (t *Table) Len() int { return len(t.voices) }

// Advance ticks every voice exactly once, in insertion order. Parents are
// added before their children so a child always observes its parent's
// state for the same tick.
func (t *Table) Advance() {
	for _, v := range t.voices {
		v.Advance()
	}
}

func (t *Table) String() string {
	return fmt.Sprintf("Table(%d voices)", len(t.voices))
}
