// Package dac defines the contract between the projector and a laser
// DAC, plus a registry of the drivers compiled into the binary.
//
// The contract mirrors the Ether Dream driver library: discovery with
// LibStart/Count/Get, then Connect, and a streaming loop of WaitForReady
// followed by Write. Every call reports a Status where 0 is success.
package dac

import (
	"errors"
	"fmt"
)

// ErrStatus wraps every non-zero Status turned into an error.
var ErrStatus = errors.New("dac: call failed")

// Status is the result code of a DAC call.
type Status int

// OK is the only successful Status.
const OK Status = 0

// Err returns nil for OK, otherwise an error wrapping ErrStatus that
// names the call.
func (s Status) Err(call string) error {
	if s == OK {
		return nil
	}
	return fmt.Errorf("%w: %s returned %d", ErrStatus, call, int(s))
}

// Handle identifies one DAC found by a driver.
type Handle uintptr

// DAC is a laser DAC driver library.
type DAC interface {
	// LibStart starts the driver, beginning discovery of DACs.
	LibStart() Status
	// Count returns the number of DACs discovered so far.
	Count() int
	// Get returns the DAC at index.
	Get(index int) Handle
	// ID returns the hardware id of h.
	ID(h Handle) uint32
	// Connect opens a connection to h.
	Connect(h Handle) Status
	// WaitForReady blocks until h can accept another Write.
	WaitForReady(h Handle) Status
	// Write queues the first n points of frame for output at pps
	// points per second, repeated repeat times.
	Write(h Handle, frame []Point, n, pps, repeat int) Status
	// Stop halts output on h.
	Stop(h Handle) Status
}
