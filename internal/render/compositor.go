// Package render turns the state of the oscillators into DAC points.
//
// For every sample the Compositor reads the color and blanking channels,
// combines the X/Y/Z channels according to the active Mode, rotates the
// result in 3D, projects it onto the two mirror axes and then advances
// every oscillator by one tick.
package render

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/thelolagemann/galvo/internal/waveform"
	"github.com/thelolagemann/galvo/pkg/dac"
)

// Calibration of the projection onto the galvo range. These were tuned
// by eye against real hardware.
const (
	projectionScale = 0.18
	yRecentre       = 0.48
	mode4Ratio      = 1.2
)

// Position is an oscillator driving one spatial axis.
type Position interface {
	RenderBipolar() float64
	Phase() uint32
}

// Color is an oscillator driving a color or blanking channel.
type Color interface {
	RenderUnipolar() float64
}

// Value is a live numeric control, such as a rotation in degrees.
type Value interface {
	Value() float64
}

// Clock advances every oscillator by a single tick.
type Clock interface {
	Advance()
}

// Channels are the inputs of a Compositor.
type Channels struct {
	X, Y, Z                 Position
	Red, Green, Blue, Blank Color
	XRot, YRot              Value
	Mode                    *ModeControl
	Clock                   Clock
}

// Opt configures a Compositor.
type Opt func(c *Compositor)

// Strict makes range violations panic instead of being clamped.
func Strict() Opt {
	return func(c *Compositor) {
		c.strict = true
	}
}

// Compositor renders samples from a set of Channels.
type Compositor struct {
	ch         Channels
	strict     bool
	violations atomic.Uint64
}

// NewCompositor returns a Compositor reading from ch.
func NewCompositor(ch Channels, opts ...Opt) *Compositor {
	c := &Compositor{ch: ch}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Violations returns how many out of range values have been clamped.
func (c *Compositor) Violations() uint64 {
	return c.violations.Load()
}

// Position returns the unrotated position for the current tick under the
// active mode. Each axis is within [-1, 1].
func (c *Compositor) Position() (x, y, z float64) {
	ch := c.ch
	switch ch.Mode.Mode() {
	case Mode2:
		m := ch.Z.RenderBipolar()
		x = ch.X.RenderBipolar() * m
		y = ch.Y.RenderBipolar() * m
	case Mode3:
		m := math.Sin(waveform.Angle(ch.X.Phase() + ch.Y.Phase()))
		x = ch.X.RenderBipolar() * m
		y = ch.Y.RenderBipolar() * m
		z = ch.Z.RenderBipolar()
	case Mode4:
		x = ch.X.RenderBipolar() * math.Sin(waveform.Angle(ch.X.Phase())*mode4Ratio)
		y = ch.Y.RenderBipolar()
		z = ch.Z.RenderBipolar()
	case Mode5:
		m := math.Sin(waveform.Angle(ch.X.Phase()))
		x = ch.X.RenderBipolar() * m
		y = ch.Y.RenderBipolar() * m
		z = ch.Z.RenderBipolar()
	case Mode6:
		m := (math.Sin(waveform.Angle(ch.Y.Phase())+math.Pi/2) + 3) / 4
		x = ch.X.RenderBipolar() * m
		y = ch.Y.RenderBipolar() * m
		z = ch.Z.RenderBipolar() / 3
	default:
		x = ch.X.RenderBipolar()
		y = ch.Y.RenderBipolar()
		z = ch.Z.RenderBipolar()
	}

	return c.check("x", x, -1), c.check("y", y, -1), c.check("z", z, -1)
}

// Render writes the sample for the current tick into p and advances
// every oscillator.
func (c *Compositor) Render(p *dac.Point) {
	ch := c.ch
	blank := c.check("blank", ch.Blank.RenderUnipolar(), 0)
	p.R = scaleColor(c.check("red", ch.Red.RenderUnipolar(), 0) * blank)
	p.G = scaleColor(c.check("green", ch.Green.RenderUnipolar(), 0) * blank)
	p.B = scaleColor(c.check("blue", ch.Blue.RenderUnipolar(), 0) * blank)

	x, y, z := c.Position()
	xr, yr := radians(ch.XRot.Value()), radians(ch.YRot.Value())
	sinX, cosX := math.Sincos(xr)
	sinY, cosY := math.Sincos(yr)

	xo := x*cosY + (z*cosX+y*sinX)*sinY
	yo := y*cosX - z*sinX

	p.X = scaleAxis(xo * projectionScale)
	p.Y = scaleAxis(yo*projectionScale + yRecentre)

	ch.Clock.Advance()
}

// RenderFrame fills points with consecutive samples.
func (c *Compositor) RenderFrame(points []dac.Point) {
	for i := range points {
		c.Render(&points[i])
	}
}

// check keeps v within [lo, 1]. Out of range values panic in strict mode,
// otherwise they are counted and clamped; NaN becomes 0.
func (c *Compositor) check(name string, v, lo float64) float64 {
	if v >= lo && v <= 1 {
		return v
	}
	if c.strict {
		panic(fmt.Sprintf("render: %s = %v outside [%v, 1]", name, v, lo))
	}
	c.violations.Add(1)
	switch {
	case math.IsNaN(v):
		return 0
	case v < lo:
		return lo
	default:
		return 1
	}
}

func radians(deg float64) float64 {
	return deg / 180 * math.Pi
}

func scaleColor(v float64) uint16 {
	return uint16(v * math.MaxUint16)
}

func scaleAxis(v float64) int16 {
	return int16(math.Max(-1, math.Min(1, v)) * math.MaxInt16)
}
