// Package oto drives an oscilloscope in XY mode from the default audio
// output through oto. There is exactly one DAC, the default output.
package oto
