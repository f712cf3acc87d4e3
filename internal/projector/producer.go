package projector

import (
	"context"
	"runtime"
	"sync/atomic"

	"github.com/thelolagemann/galvo/pkg/dac"
	"github.com/thelolagemann/galvo/pkg/log"
)

// FrameObserver is called with every frame written to the DAC. The frame
// is reused for the next write, so observers must copy what they keep
// and must not block.
type FrameObserver func(frame []dac.Point)

// Producer streams frames from a Projector to one DAC.
type Producer struct {
	p         *Projector
	dac       dac.DAC
	handle    dac.Handle
	observers []FrameObserver
	log       log.Logger

	frames atomic.Uint64
}

// NewProducer returns a Producer writing the frames of p to handle h
// of d.
func NewProducer(p *Projector, d dac.DAC, h dac.Handle, observers ...FrameObserver) *Producer {
	return &Producer{
		p:         p,
		dac:       d,
		handle:    h,
		observers: observers,
		log:       p.log,
	}
}

// Frames returns how many frames have been written.
func (pr *Producer) Frames() uint64 {
	return pr.frames.Load()
}

// Run waits for the DAC, renders a frame and writes it, until ctx is done
// or the DAC reports a failure. ctx is only checked between frames; a
// pending WaitForReady is never interrupted. A failure is logged and
// returned wrapping dac.ErrStatus; nothing is retried.
func (pr *Producer) Run(ctx context.Context) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	raisePriority(pr.log)

	frame := pr.p.NewFrame()
	pps := pr.p.SampleRate()
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if err := pr.dac.WaitForReady(pr.handle).Err("wait_for_ready"); err != nil {
			pr.log.Errorf("producer: %v", err)
			return err
		}

		pr.p.RenderFrame(frame)

		if err := pr.dac.Write(pr.handle, frame, len(frame), pps, 1).Err("write"); err != nil {
			pr.log.Errorf("producer: %v", err)
			return err
		}
		pr.frames.Add(1)

		for _, observe := range pr.observers {
			observe(frame)
		}
	}
}
