// Package virtual provides a software DAC. It consumes points at the
// rate they are written for, exactly like hardware would, which makes it
// suitable for running the projector headless and for tests.
package virtual

import (
	"sync"
	"time"

	"github.com/thelolagemann/galvo/pkg/dac"
)

// Status codes reported by the virtual DAC.
const (
	NotStarted   dac.Status = -1
	NoSuchDAC    dac.Status = -2
	NotConnected dac.Status = -3
	BadFrame     dac.Status = -4
)

// idBase is or'ed with the index of a device to form its id.
const idBase = 0x7E000000

var (
	devices = 1
	// Default is the virtual DAC installed as the "virtual" driver.
	Default = New()
)

func init() {
	dac.Install("virtual", Default, []dac.DriverOption{
		{Name: "devices", Default: 1, Value: &devices, Type: "int", Description: "number of virtual DACs to discover"},
	})
}

type device struct {
	connected bool
	// points are considered played until due
	due     time.Time
	lastDur time.Duration
}

// DAC is a software laser DAC.
type DAC struct {
	mu      sync.Mutex
	started bool
	devices []*device
	frames  []func(h dac.Handle, frame []dac.Point)

	now   func() time.Time
	sleep func(time.Duration)
}

// New returns a virtual DAC. The number of devices it discovers is
// read from the "devices" driver option when LibStart is called.
func New() *DAC {
	return &DAC{now: time.Now, sleep: time.Sleep}
}

// OnFrame registers fn to be called with every frame written. The frame
// is only valid for the duration of the call.
func (d *DAC) OnFrame(fn func(h dac.Handle, frame []dac.Point)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.frames = append(d.frames, fn)
}

func (d *DAC) LibStart() dac.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.started {
		d.started = true
		for i := 0; i < devices; i++ {
			d.devices = append(d.devices, &device{})
		}
	}
	return dac.OK
}

func (d *DAC) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.devices)
}

func (d *DAC) Get(index int) dac.Handle {
	return dac.Handle(index + 1)
}

func (d *DAC) ID(h dac.Handle) uint32 {
	return idBase | uint32(h-1)
}

// lookup returns the device behind h. d.mu must be held.
func (d *DAC) lookup(h dac.Handle) (*device, dac.Status) {
	if !d.started {
		return nil, NotStarted
	}
	i := int(h) - 1
	if i < 0 || i >= len(d.devices) {
		return nil, NoSuchDAC
	}
	return d.devices[i], dac.OK
}

func (d *DAC) Connect(h dac.Handle) dac.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	dev, status := d.lookup(h)
	if status != dac.OK {
		return status
	}
	dev.connected = true
	dev.due = d.now()
	return dac.OK
}

// WaitForReady blocks while more than one frame is still waiting to be
// played.
func (d *DAC) WaitForReady(h dac.Handle) dac.Status {
	d.mu.Lock()
	dev, status := d.lookup(h)
	if status == dac.OK && !dev.connected {
		status = NotConnected
	}
	var wait time.Duration
	if status == dac.OK {
		wait = dev.due.Add(-dev.lastDur).Sub(d.now())
	}
	d.mu.Unlock()

	if status != dac.OK {
		return status
	}
	if wait > 0 {
		d.sleep(wait)
	}
	return dac.OK
}

func (d *DAC) Write(h dac.Handle, frame []dac.Point, n, pps, repeat int) dac.Status {
	d.mu.Lock()
	dev, status := d.lookup(h)
	if status == dac.OK && !dev.connected {
		status = NotConnected
	}
	if status == dac.OK && (n < 0 || n > len(frame) || pps <= 0 || repeat < 1) {
		status = BadFrame
	}
	if status != dac.OK {
		d.mu.Unlock()
		return status
	}

	dur := time.Duration(n*repeat) * time.Second / time.Duration(pps)
	if now := d.now(); dev.due.Before(now) {
		// underrun, the galvos have been idle
		dev.due = now
	}
	dev.due = dev.due.Add(dur)
	dev.lastDur = dur
	frames := d.frames
	d.mu.Unlock()

	for _, fn := range frames {
		fn(h, frame[:n])
	}
	return dac.OK
}

func (d *DAC) Stop(h dac.Handle) dac.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	dev, status := d.lookup(h)
	if status != dac.OK {
		return status
	}
	dev.connected = false
	dev.lastDur = 0
	return dac.OK
}
