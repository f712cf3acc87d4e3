// Package waveform provides the stateless waveform shapes used by the
// oscillators. Every shape maps a 32-bit phase accumulator value to a
// unipolar amplitude in the range [0, 1].
package waveform

import (
	"fmt"
	"math"
	"strings"
)

// Kind selects the shape of a waveform.
type Kind int32

const (
	// Sin is a plain sine wave.
	Sin Kind = iota
	// SinR3 is a sine wave shaped by a cube root, giving
	// it a softer falloff towards the zero crossing.
	SinR3
	// RampUp rises linearly from 0 to 1 over a cycle.
	RampUp
	// RampDown falls linearly from 1 to 0 over a cycle.
	RampDown
	// Pulse10 through Pulse90 are pulse waves, high for the
	// given percentage of the cycle.
	Pulse10
	Pulse25
	Pulse50
	Pulse75
	Pulse90

	numKinds
)

// FullCycle is the number of phase steps in one waveform cycle.
const FullCycle = 1 << 32

// pulse thresholds, high while phase is below the threshold
const (
	maxPhase = math.MaxUint32

	threshold10 uint32 = maxPhase / 10
	threshold25 uint32 = maxPhase / 4
	threshold50 uint32 = maxPhase / 2
	threshold75 uint32 = 3 * (maxPhase / 4)
	threshold90 uint32 = 9 * (maxPhase / 10)
)

var names = [numKinds]string{
	Sin:      "SIN",
	SinR3:    "SINR3",
	RampUp:   "PLUS_TRI",
	RampDown: "MINUS_TRI",
	Pulse10:  "SQ10",
	Pulse25:  "SQ25",
	Pulse50:  "SQ50",
	Pulse75:  "SQ75",
	Pulse90:  "SQ90",
}

// Kinds returns every waveform kind in declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, numKinds)
	for k := Kind(0); k < numKinds; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Kind(%d)", int32(k))
	}
	return names[k]
}

// Valid reports whether k is a known waveform kind.
func (k Kind) Valid() bool {
	return k >= 0 && k < numKinds
}

// Parse returns the Kind with the given wire name. Names are
// matched case-insensitively.
func Parse(name string) (Kind, error) {
	upper := strings.ToUpper(name)
	for k, n := range names {
		if n == upper {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("waveform: unknown kind %q", name)
}

// Angle converts a phase accumulator value into radians.
func Angle(phase uint32) float64 {
	return float64(phase) * 2 * math.Pi / FullCycle
}

// Fraction returns how far through the cycle the phase is, in [0, 1).
func Fraction(phase uint32) float64 {
	return float64(phase) / FullCycle
}

// Unipolar renders a single sample of the given kind at phase.
func Unipolar(k Kind, phase uint32) float64 {
	switch k {
	case Sin:
		return 0.5 + 0.5*math.Sin(Angle(phase))
	case SinR3:
		return 0.5 + 0.5*math.Cbrt(math.Sin(Angle(phase)))
	case RampUp:
		return Fraction(phase)
	case RampDown:
		return 1 - Fraction(phase)
	case Pulse10:
		return pulse(phase, threshold10)
	case Pulse25:
		return pulse(phase, threshold25)
	case Pulse50:
		return pulse(phase, threshold50)
	case Pulse75:
		return pulse(phase, threshold75)
	case Pulse90:
		return pulse(phase, threshold90)
	}
	panic(fmt.Sprintf("waveform: unknown kind %d", int32(k)))
}

// Bipolar renders a single sample of the given kind at phase,
// mapped onto [-1, 1].
func Bipolar(k Kind, phase uint32) float64 {
	return ToBipolar(Unipolar(k, phase))
}

// ToBipolar maps a unipolar amplitude onto [-1, 1].
func ToBipolar(v float64) float64 {
	return (v - 0.5) * 2
}

func pulse(phase, threshold uint32) float64 {
	if phase < threshold {
		return 1
	}
	return 0
}
