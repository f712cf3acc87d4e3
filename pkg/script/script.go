// Package script runs Lua show scripts against the control plane.
//
// A script sees three globals:
//
//	send(batch)  applies a control batch, returning nil or an error string
//	sleep(ms)    pauses the script
//	log(msg)     writes msg to the log
//
// For example:
//
//	for i = 1, 10 do
//	  send("master:" .. (70 + i) .. " mode:MODE" .. (i % 6 + 1))
//	  sleep(500)
//	end
package script

import (
	"context"
	"fmt"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/thelolagemann/galvo/pkg/log"
	"github.com/thelolagemann/galvo/pkg/utils"
)

// Dispatcher applies control batches.
type Dispatcher interface {
	Dispatch(batch string) error
}

// Runner runs scripts against a Dispatcher.
type Runner struct {
	d   Dispatcher
	log log.Logger
}

// NewRunner returns a Runner sending batches to d.
func NewRunner(d Dispatcher, l log.Logger) *Runner {
	if l == nil {
		l = log.NewNullLogger()
	}
	return &Runner{d: d, log: l}
}

// RunFile loads filename, which may be compressed, and runs it.
func (r *Runner) RunFile(ctx context.Context, filename string) error {
	src, err := utils.LoadFile(filename, ".lua")
	if err != nil {
		return fmt.Errorf("script: loading %s: %w", filename, err)
	}
	return r.Run(ctx, filename, string(src))
}

// Run runs src until it ends or ctx is done.
func (r *Runner) Run(ctx context.Context, name, src string) error {
	L := lua.NewState()
	defer L.Close()
	L.SetContext(ctx)

	L.SetGlobal("send", L.NewFunction(func(L *lua.LState) int {
		if err := r.d.Dispatch(L.CheckString(1)); err != nil {
			L.Push(lua.LString(err.Error()))
			return 1
		}
		L.Push(lua.LNil)
		return 1
	}))
	L.SetGlobal("sleep", L.NewFunction(func(L *lua.LState) int {
		d := time.Duration(float64(L.CheckNumber(1)) * float64(time.Millisecond))
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			L.RaiseError("interrupted")
		}
		return 0
	}))
	L.SetGlobal("log", L.NewFunction(func(L *lua.LState) int {
		r.log.Infof("script %s: %s", name, L.CheckString(1))
		return 0
	}))

	r.log.Debugf("script: running %s", name)
	if err := L.DoString(src); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("script: %s: %w", name, err)
	}
	return nil
}
