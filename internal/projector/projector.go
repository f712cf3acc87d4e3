// Package projector wires the oscillators, the control registry and the
// compositor into a single engine, and streams its output to a DAC.
package projector

import (
	"github.com/thelolagemann/galvo/internal/control"
	"github.com/thelolagemann/galvo/internal/oscillator"
	"github.com/thelolagemann/galvo/internal/render"
	"github.com/thelolagemann/galvo/pkg/dac"
	"github.com/thelolagemann/galvo/pkg/log"
)

const (
	// DefaultSampleRate is the default number of points per second.
	DefaultSampleRate = 30000
	// DefaultFramePoints is the default number of points in one frame.
	DefaultFramePoints = 1000
)

// Projector owns every live control of the show.
type Projector struct {
	Master                  *oscillator.Oscillator
	X, Y, Z                 *oscillator.Derived
	Red, Green, Blue, Blank *oscillator.Absolute
	XRot, YRot              *control.Float
	Mode                    *render.ModeControl

	log         log.Logger
	sampleRate  int
	framePoints int
	strict      bool

	table      *oscillator.Table
	registry   *control.Registry
	compositor *render.Compositor
}

// New returns a Projector with the default topology: a 75 Hz master
// oscillator that every other oscillator is parented on.
func New(opts ...Opt) *Projector {
	p := &Projector{
		log:         log.NewNullLogger(),
		sampleRate:  DefaultSampleRate,
		framePoints: DefaultFramePoints,
	}
	for _, opt := range opts {
		opt(p)
	}

	sr := p.sampleRate
	p.table = oscillator.NewTable()
	p.Master = oscillator.New("master", 75, sr)
	master := p.table.Add(p.Master)

	p.X = oscillator.NewDerived("x", 74.8, sr, p.table, master)
	p.Y = oscillator.NewDerived("y", 75, sr, p.table, master)
	p.Z = oscillator.NewDerived("z", 75, sr, p.table, master)
	p.Red = oscillator.NewAbsolute("red", 74.5, sr, p.table, master)
	p.Green = oscillator.NewAbsolute("green", 75, sr, p.table, master)
	p.Blue = oscillator.NewAbsolute("blue", 75.5, sr, p.table, master)
	p.Blank = oscillator.NewAbsolute("blank", 0, sr, p.table, master)
	p.Blank.SetOverride(1)
	for _, v := range []oscillator.Voice{p.X, p.Y, p.Z, p.Red, p.Green, p.Blue, p.Blank} {
		p.table.Add(v)
	}

	p.XRot = control.NewFloat(0)
	p.YRot = control.NewFloat(0)
	p.Mode = render.NewModeControl(render.Mode1)

	p.registry = control.NewRegistry(map[string]control.Target{
		"master":   p.Master,
		"x":        p.X,
		"y":        p.Y,
		"z":        p.Z,
		"red":      p.Red,
		"green":    p.Green,
		"blue":     p.Blue,
		"blank":    p.Blank,
		"xrot":     p.XRot,
		"yrot":     p.YRot,
		"xwfm":     p.X.Waveform,
		"ywfm":     p.Y.Waveform,
		"zwfm":     p.Z.Waveform,
		"redwfm":   p.Red.Waveform,
		"greenwfm": p.Green.Waveform,
		"bluewfm":  p.Blue.Waveform,
		"blankwfm": p.Blank.Waveform,
		"mode":     p.Mode,
	}, p.log)

	var compositorOpts []render.Opt
	if p.strict {
		compositorOpts = append(compositorOpts, render.Strict())
	}
	p.compositor = render.NewCompositor(render.Channels{
		X: p.X, Y: p.Y, Z: p.Z,
		Red: p.Red, Green: p.Green, Blue: p.Blue, Blank: p.Blank,
		XRot: p.XRot, YRot: p.YRot,
		Mode:  p.Mode,
		Clock: p.table,
	}, compositorOpts...)

	return p
}

// Dispatch applies a control batch. See control.Registry.Dispatch.
func (p *Projector) Dispatch(batch string) error {
	p.log.Infof("control: %s", batch)
	return p.registry.Dispatch(batch)
}

// Keys returns every control key, sorted.
func (p *Projector) Keys() []string {
	return p.registry.Keys()
}

// SampleRate returns the number of points rendered per second.
func (p *Projector) SampleRate() int {
	return p.sampleRate
}

// FramePoints returns the number of points in one frame.
func (p *Projector) FramePoints() int {
	return p.framePoints
}

// NewFrame allocates a frame of FramePoints points.
func (p *Projector) NewFrame() []dac.Point {
	return make([]dac.Point, p.framePoints)
}

// RenderFrame fills frame with consecutive samples.
func (p *Projector) RenderFrame(frame []dac.Point) {
	p.compositor.RenderFrame(frame)
}

// Violations returns how many out of range values have been clamped.
func (p *Projector) Violations() uint64 {
	return p.compositor.Violations()
}

// Oscillators returns the oscillator table, in tick order.
func (p *Projector) Oscillators() *oscillator.Table {
	return p.table
}
