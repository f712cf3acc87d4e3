package oscillator

import (
	"errors"
	"math"
	"strconv"
	"testing"

	"github.com/thelolagemann/galvo/internal/waveform"
)

const pps = 30000

// rig builds a master with a derived and an absolute child, in the same
// order the projector does.
func rig() (*Table, *Oscillator, *Derived, *Absolute) {
	table := NewTable()
	master := New("master", 75, pps)
	h := table.Add(master)
	d := NewDerived("x", 74.8, pps, table, h)
	table.Add(d)
	a := NewAbsolute("red", 74.5, pps, table, h)
	table.Add(a)
	return table, master, d, a
}

func TestAdvance(t *testing.T) {
	t.Run("400ticks", func(t *testing.T) {
		o := New("master", 75, pps)
		for i := 0; i < 400; i++ {
			o.Advance()
		}
		step := uint64(math.Round(4294967296.0 / pps * 75))
		want := uint32((step * 400) % (1 << 32))
		if o.Phase() != want {
			t.Errorf("got %d, want %d", o.Phase(), want)
		}
	})
	t.Run("periodicity", func(t *testing.T) {
		for _, freq := range []float64{1, 50, 75, 300, 1000, 7500} {
			o := New("p", freq, pps)
			o.SetPhase(12345)
			ticks := int(pps / freq)
			for i := 0; i < ticks; i++ {
				o.Advance()
			}
			// one rounding error of at most half a phase step per tick
			diff := int64(int32(o.Phase() - 12345))
			if diff < 0 {
				diff = -diff
			}
			if diff > int64(ticks) {
				t.Errorf("%vHz: phase drifted by %d after %d ticks", freq, diff, ticks)
			}
		}
	})
	t.Run("wraps", func(t *testing.T) {
		o := New("w", 15000, pps) // half a cycle per tick
		start := uint32(math.MaxUint32 - 1)
		o.SetPhase(start)
		o.Advance()
		if o.Phase() != start+1<<31 {
			t.Errorf("got %d", o.Phase())
		}
	})
	t.Run("negative", func(t *testing.T) {
		o := New("n", -75, pps)
		o.Advance()
		if want := -int32(New("p", 75, pps).Step()); int32(o.Phase()) != want {
			t.Errorf("got %d, want %d", int32(o.Phase()), want)
		}
	})
}

func TestZeroFrequency(t *testing.T) {
	o := New("blank", 0, pps)
	for _, k := range waveform.Kinds() {
		for _, p := range []uint32{0, 1 << 30, 1 << 31, math.MaxUint32} {
			o.SetPhase(p)
			if got := o.RenderUnipolar(k); got != 1.0 {
				t.Errorf("%v @ %d: got %v, want exactly 1", k, p, got)
			}
		}
	}
	if got := o.RenderBipolar(waveform.Sin); got != 1.0 {
		t.Errorf("bipolar: got %v, want 1", got)
	}
}

func TestOscillatorUpdate(t *testing.T) {
	o := New("master", 75, pps)
	if err := o.Update([]string{"120.5"}); err != nil {
		t.Fatal(err)
	}
	if o.Frequency() != 120.5 {
		t.Errorf("got %v", o.Frequency())
	}
	for _, args := range [][]string{nil, {"abc"}, {"NaN"}, {"+Inf"}} {
		if err := o.Update(args); err == nil {
			t.Errorf("%q: expected error", args)
		}
		if o.Frequency() != 120.5 {
			t.Errorf("%q: frequency changed to %v", args, o.Frequency())
		}
	}
}

func TestPhaseLock(t *testing.T) {
	for idx, m := range Multipliers {
		for _, offset := range []float64{0, 90, 45.5, -30, 720} {
			table, master, d, _ := rig()
			for i := 0; i < 1234; i++ {
				table.Advance()
			}
			master.SetFrequency(75)

			if err := d.Update([]string{"phase", strconv.Itoa(idx), strconv.FormatFloat(offset, 'f', -1, 64)}); err != nil {
				t.Fatal(err)
			}
			if d.Frequency() != 75*m {
				t.Errorf("x%d: frequency got %v, want %v", idx, d.Frequency(), 75*m)
			}
			want := uint32(int64(float64(master.Phase())*m) + int64(offset*(4294967296.0/360)))
			if d.Phase() != want {
				t.Errorf("x%d %v°: phase got %d, want %d", idx, offset, d.Phase(), want)
			}
			if got, ok := d.Locked(); !ok || got != m {
				t.Errorf("x%d: locked = %v, %v", idx, got, ok)
			}
		}
	}
}

func TestPhaseLockUnison(t *testing.T) {
	table, master, d, _ := rig()
	for i := 0; i < 777; i++ {
		table.Advance()
	}
	if err := d.Update([]string{"phase", "3", "0"}); err != nil {
		t.Fatal(err)
	}
	if d.Frequency() != 75.0 {
		t.Errorf("frequency: got %v, want 75", d.Frequency())
	}
	if d.Phase() != master.Phase() {
		t.Errorf("phase: got %d, want %d", d.Phase(), master.Phase())
	}
	// unison lock stays in step
	for i := 0; i < 30000; i++ {
		table.Advance()
	}
	if d.Phase() != master.Phase() {
		t.Errorf("after a second: got %d, want %d", d.Phase(), master.Phase())
	}
}

func TestPhaseLockFollowsParent(t *testing.T) {
	table, master, d, _ := rig()
	if err := d.Update([]string{"phase", "5", "0"}); err != nil {
		t.Fatal(err)
	}
	master.SetFrequency(100)
	table.Advance()
	if d.Frequency() != 200 {
		t.Errorf("got %v, want 200", d.Frequency())
	}

	if err := d.Update([]string{"50"}); err != nil {
		t.Fatal(err)
	}
	if _, ok := d.Locked(); ok {
		t.Error("frequency update should release the lock")
	}
	master.SetFrequency(10)
	table.Advance()
	if d.Frequency() != 50 {
		t.Errorf("free running: got %v, want 50", d.Frequency())
	}
}

func TestPhaseLockMidTick(t *testing.T) {
	table, master, d, _ := rig()
	for i := 0; i < 100; i++ {
		table.Advance()
	}
	// the lock lands after the master has ticked but before the child has
	master.Advance()
	if err := d.Update([]string{"phase", "3", "0"}); err != nil {
		t.Fatal(err)
	}
	d.Advance()
	if d.Phase() != master.Phase() {
		t.Fatalf("got %d, want %d", d.Phase(), master.Phase())
	}
	for i := 0; i < 1000; i++ {
		table.Advance()
	}
	if d.Phase() != master.Phase() {
		t.Errorf("drifted: got %d, want %d", d.Phase(), master.Phase())
	}
}

// ticking runs table.Advance in a loop until the returned func is called.
func ticking(table *Table) func() {
	stop, done := make(chan struct{}), make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-stop:
				return
			default:
				table.Advance()
			}
		}
	}()
	return func() {
		close(stop)
		<-done
	}
}

func TestUpdateDuringAdvance(t *testing.T) {
	const trials = 300
	t.Run("lock", func(t *testing.T) {
		for i := 0; i < trials; i++ {
			table, master, d, _ := rig()
			stop := ticking(table)
			if err := d.Update([]string{"phase", "3", "0"}); err != nil {
				t.Fatal(err)
			}
			stop()
			table.Advance()
			if d.Phase() != master.Phase() {
				t.Fatalf("trial %d: got %d, want %d", i, d.Phase(), master.Phase())
			}
		}
	})
	t.Run("freeRun", func(t *testing.T) {
		for i := 0; i < trials; i++ {
			table, _, d, _ := rig()
			if err := d.Update([]string{"phase", "3", "0"}); err != nil {
				t.Fatal(err)
			}
			stop := ticking(table)
			if err := d.Update([]string{"50"}); err != nil {
				t.Fatal(err)
			}
			stop()
			table.Advance()
			if _, ok := d.Locked(); ok || d.Frequency() != 50 {
				t.Fatalf("trial %d: got %v Hz, locked %v", i, d.Frequency(), ok)
			}
		}
	})
}

func TestPhaseLockErrors(t *testing.T) {
	for _, test := range []struct {
		name string
		args []string
		is   error
	}{
		{"empty", nil, ErrNoArguments},
		{"short", []string{"phase", "3"}, nil},
		{"badIndex", []string{"phase", "x", "0"}, nil},
		{"lowIndex", []string{"phase", "-1", "0"}, ErrMultiplierIndex},
		{"highIndex", []string{"phase", "14", "0"}, ErrMultiplierIndex},
		{"badOffset", []string{"phase", "3", "deg"}, nil},
		{"badFrequency", []string{"fast"}, nil},
	} {
		t.Run(test.name, func(t *testing.T) {
			_, _, d, _ := rig()
			d.SetPhase(42)
			err := d.Update(test.args)
			if err == nil {
				t.Fatal("expected error")
			}
			if test.is != nil && !errors.Is(err, test.is) {
				t.Errorf("got %v, want %v", err, test.is)
			}
			if d.Frequency() != 74.8 || d.Phase() != 42 {
				t.Errorf("state changed: %v", d)
			}
		})
	}
}

func TestSelector(t *testing.T) {
	_, _, d, _ := rig()
	d.SetPhase(1 << 30)
	if err := d.Waveform.Update([]string{"SQ50"}); err != nil {
		t.Fatal(err)
	}
	if d.RenderUnipolar() != 1 || d.RenderBipolar() != 1 {
		t.Errorf("got %v / %v", d.RenderUnipolar(), d.RenderBipolar())
	}
	if err := d.Waveform.Update([]string{"NOPE"}); err == nil {
		t.Error("expected error")
	}
	if d.Waveform.Kind() != waveform.Pulse50 {
		t.Errorf("kind changed to %v", d.Waveform.Kind())
	}
}

func TestAbsolute(t *testing.T) {
	t.Run("override", func(t *testing.T) {
		_, _, _, a := rig()
		if err := a.Update([]string{"absolute", "0.25"}); err != nil {
			t.Fatal(err)
		}
		for _, p := range []uint32{0, 1 << 30, 3 << 30} {
			a.SetPhase(p)
			if got := a.RenderUnipolar(); got != 0.25 {
				t.Errorf("phase %d: got %v, want 0.25", p, got)
			}
		}
		a.SetFrequency(0)
		if got := a.RenderUnipolar(); got != 0.25 {
			t.Errorf("override should win over zero frequency, got %v", got)
		}
	})
	t.Run("cleared", func(t *testing.T) {
		_, _, _, a := rig()
		a.SetOverride(0)
		if err := a.Update([]string{"60"}); err != nil {
			t.Fatal(err)
		}
		if _, ok := a.Override(); ok {
			t.Fatal("override should be cleared")
		}
		a.SetPhase(1 << 30)
		if got := a.RenderUnipolar(); got != 1 {
			t.Errorf("got %v, want sine peak", got)
		}
	})
	t.Run("clearedByLock", func(t *testing.T) {
		_, master, _, a := rig()
		a.SetOverride(0)
		if err := a.Update([]string{"phase", "3", "0"}); err != nil {
			t.Fatal(err)
		}
		if _, ok := a.Override(); ok {
			t.Error("override should be cleared")
		}
		if a.Frequency() != master.Frequency() {
			t.Errorf("got %v", a.Frequency())
		}
	})
	t.Run("badUpdateKeepsOverride", func(t *testing.T) {
		_, _, _, a := rig()
		a.SetOverride(0.5)
		for _, args := range [][]string{{"absolute"}, {"absolute", "x"}, {"zz"}, {"phase", "99", "0"}} {
			if err := a.Update(args); err == nil {
				t.Errorf("%q: expected error", args)
			}
			if v, ok := a.Override(); !ok || v != 0.5 {
				t.Errorf("%q: override now %v, %v", args, v, ok)
			}
		}
	})
	t.Run("bipolarPanics", func(t *testing.T) {
		_, _, _, a := rig()
		defer func() {
			if r := recover(); r != ErrBipolarOverride {
				t.Errorf("got %v, want ErrBipolarOverride", r)
			}
		}()
		a.RenderBipolar()
	})
}

func TestTable(t *testing.T) {
	table, master, d, a := rig()
	if table.Len() != 3 {
		t.Fatalf("got %d voices", table.Len())
	}
	if table.Resolve(0) != master || table.Resolve(1) != &d.Oscillator || table.Resolve(2) != &a.Oscillator {
		t.Error("handles resolve to the wrong voices")
	}
	if table.Resolve(3) != nil || table.Resolve(-1) != nil {
		t.Error("out of range handles should resolve to nil")
	}
	table.Advance()
	if master.Phase() != master.Step() || d.Phase() != d.Step() || a.Phase() != a.Step() {
		t.Error("every voice should advance exactly once")
	}
}

func BenchmarkTableAdvance(b *testing.B) {
	table, _, _, _ := rig()
	for i := 0; i < b.N; i++ {
		table.Advance()
	}
}
