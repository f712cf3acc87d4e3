package virtual

import (
	"testing"
	"time"

	"github.com/thelolagemann/galvo/pkg/dac"
)

type clock struct {
	t     time.Time
	slept time.Duration
}

func (c *clock) now() time.Time { return c.t }
func (c *clock) sleep(d time.Duration) {
	c.slept += d
	c.t = c.t.Add(d)
}

func newFake() (*DAC, *clock) {
	c := &clock{t: time.Unix(0, 0)}
	d := New()
	d.now, d.sleep = c.now, c.sleep
	return d, c
}

func TestDiscovery(t *testing.T) {
	d, _ := newFake()
	if d.Count() != 0 {
		t.Fatal("nothing should be found before LibStart")
	}
	if s := d.Connect(d.Get(0)); s != NotStarted {
		t.Errorf("connect before start: got %d", s)
	}
	if s := d.LibStart(); s != dac.OK {
		t.Fatal(s)
	}
	if d.Count() != devices {
		t.Errorf("got %d devices, want %d", d.Count(), devices)
	}
	h := d.Get(0)
	if d.ID(h) != idBase {
		t.Errorf("got id %X", d.ID(h))
	}
	if s := d.Connect(d.Get(5)); s != NoSuchDAC {
		t.Errorf("got %d, want NoSuchDAC", s)
	}
	if s := d.WaitForReady(h); s != NotConnected {
		t.Errorf("got %d, want NotConnected", s)
	}
}

func TestPacing(t *testing.T) {
	d, c := newFake()
	d.LibStart()
	h := d.Get(0)
	d.Connect(h)

	frame := make([]dac.Point, 1000)
	// 1000 points at 10000 pps is 100ms per frame, one frame is buffered
	for i := 0; i < 5; i++ {
		if s := d.WaitForReady(h); s != dac.OK {
			t.Fatal(s)
		}
		if s := d.Write(h, frame, len(frame), 10000, 1); s != dac.OK {
			t.Fatal(s)
		}
	}
	if want := 300 * time.Millisecond; c.slept != want {
		t.Errorf("slept %v, want %v", c.slept, want)
	}

	// an idle DAC does not owe the time it spent idle
	c.t = c.t.Add(time.Hour)
	c.slept = 0
	d.WaitForReady(h)
	d.Write(h, frame, len(frame), 10000, 1)
	d.WaitForReady(h)
	if c.slept != 0 {
		t.Errorf("slept %v after an underrun", c.slept)
	}
}

func TestWrite(t *testing.T) {
	d, _ := newFake()
	d.LibStart()
	h := d.Get(0)
	d.Connect(h)

	var got []dac.Point
	d.OnFrame(func(fh dac.Handle, frame []dac.Point) {
		if fh != h {
			t.Errorf("got handle %d", fh)
		}
		got = append(got[:0], frame...)
	})

	frame := []dac.Point{{X: 1}, {X: 2}, {X: 3}}
	for _, test := range []struct {
		name       string
		n, pps, rp int
		want       dac.Status
	}{
		{"partial", 2, 1000, 1, dac.OK},
		{"too many", 4, 1000, 1, BadFrame},
		{"no rate", 3, 0, 1, BadFrame},
		{"no repeat", 3, 1000, 0, BadFrame},
	} {
		t.Run(test.name, func(t *testing.T) {
			if s := d.Write(h, frame, test.n, test.pps, test.rp); s != test.want {
				t.Errorf("got %d, want %d", s, test.want)
			}
		})
	}
	if len(got) != 2 || got[1].X != 2 {
		t.Errorf("observed %+v", got)
	}

	if s := d.Stop(h); s != dac.OK {
		t.Fatal(s)
	}
	if s := d.Write(h, frame, 3, 1000, 1); s != NotConnected {
		t.Errorf("write after stop: got %d", s)
	}
}

func TestInstalled(t *testing.T) {
	if dac.GetDriver("virtual") != Default {
		t.Error("virtual driver not installed")
	}
}
