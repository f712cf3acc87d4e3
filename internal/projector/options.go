package projector

import "github.com/thelolagemann/galvo/pkg/log"

// Opt is a function that modifies a Projector
// before its oscillators are built.
type Opt func(p *Projector)

// WithLogger sets the logger every dispatched control batch is logged to.
func WithLogger(log log.Logger) Opt {
	return func(p *Projector) {
		p.log = log
	}
}

// SampleRate sets the number of points per second. Oscillator steps are
// derived from it, so it cannot change once the projector is built.
func SampleRate(pps int) Opt {
	return func(p *Projector) {
		if pps > 0 {
			p.sampleRate = pps
		}
	}
}

// FramePoints sets the number of points rendered and written per frame.
func FramePoints(n int) Opt {
	return func(p *Projector) {
		if n > 0 {
			p.framePoints = n
		}
	}
}

// StrictChecks makes the compositor panic on out of range values
// instead of clamping them.
func StrictChecks() Opt {
	return func(p *Projector) {
		p.strict = true
	}
}
