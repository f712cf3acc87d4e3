//go:build etherdream

package etherdream

// #cgo LDFLAGS: -letherdream
// #include <etherdream.h>
import "C"

import (
	"unsafe"

	"github.com/thelolagemann/galvo/pkg/dac"
)

func init() {
	dac.Install("etherdream", lib{}, nil)
}

// the library keeps its own state, so lib has none
type lib struct{}

func device(h dac.Handle) *C.struct_etherdream {
	return (*C.struct_etherdream)(unsafe.Pointer(h))
}

func (lib) LibStart() dac.Status { return dac.Status(C.etherdream_lib_start()) }

func (lib) Count() int { return int(C.etherdream_dac_count()) }

func (lib) Get(index int) dac.Handle {
	return dac.Handle(unsafe.Pointer(C.etherdream_get(C.ulong(index))))
}

func (lib) ID(h dac.Handle) uint32 { return uint32(C.etherdream_get_id(device(h))) }

func (lib) Connect(h dac.Handle) dac.Status {
	return dac.Status(C.etherdream_connect(device(h)))
}

func (lib) WaitForReady(h dac.Handle) dac.Status {
	return dac.Status(C.etherdream_wait_for_ready(device(h)))
}

// Write hands the points straight to the library; dac.Point shares the
// layout of struct etherdream_point.
func (lib) Write(h dac.Handle, frame []dac.Point, n, pps, repeat int) dac.Status {
	if n == 0 {
		return dac.OK
	}
	pts := (*C.struct_etherdream_point)(unsafe.Pointer(&frame[0]))
	return dac.Status(C.etherdream_write(device(h), pts, C.int(n), C.int(pps), C.int(repeat)))
}

func (lib) Stop(h dac.Handle) dac.Status {
	return dac.Status(C.etherdream_stop(device(h)))
}
