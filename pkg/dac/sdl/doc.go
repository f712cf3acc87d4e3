// Package sdl drives an oscilloscope in XY mode from an audio output,
// through the SDL audio queue. Every audio output device is discovered
// as one DAC.
package sdl
