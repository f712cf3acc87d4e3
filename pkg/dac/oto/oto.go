//go:build !headless

package oto

import (
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/thelolagemann/galvo/pkg/dac"
)

const (
	initFailed   dac.Status = -1
	noSuchDevice dac.Status = -2
	notConnected dac.Status = -3
)

var (
	sampleRate = 96000
	latency    = 40
)

func init() {
	dac.Install("oto", &scope{}, []dac.DriverOption{
		{Name: "rate", Default: 96000, Value: &sampleRate, Type: "int", Description: "audio sample rate of XY scope outputs"},
		{Name: "latency", Default: 40, Value: &latency, Type: "int", Description: "milliseconds of XY scope audio to keep queued"},
	})
}

type scope struct {
	mu     sync.Mutex
	ctx    *oto.Context
	player *oto.Player
	queue  []byte
}

// LibStart creates the oto context. oto allows one context per process,
// so later calls reuse it.
func (s *scope) LibStart() dac.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx != nil {
		return dac.OK
	}
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return initFailed
	}
	<-ready
	s.ctx = ctx
	return dac.OK
}

func (s *scope) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx == nil {
		return 0
	}
	return 1
}

func (s *scope) Get(int) dac.Handle { return 1 }

func (s *scope) ID(dac.Handle) uint32 { return 0x070 }

func (s *scope) Connect(h dac.Handle) dac.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx == nil || h != 1 {
		return noSuchDevice
	}
	if s.player == nil {
		s.player = s.ctx.NewPlayer(s)
		s.player.Play()
	}
	return dac.OK
}

// Read feeds the oto player. An empty queue plays silence, which parks
// the beam in the centre.
func (s *scope) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := copy(p, s.queue)
	s.queue = s.queue[:copy(s.queue, s.queue[n:])]
	clear(p[n:])
	return len(p), nil
}

func (s *scope) queued() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue), s.player != nil
}

func (s *scope) WaitForReady(dac.Handle) dac.Status {
	threshold := sampleRate * latency / 1000 * dac.StereoFrameSize
	for {
		n, connected := s.queued()
		if !connected {
			return notConnected
		}
		if n <= threshold {
			return dac.OK
		}
		time.Sleep(time.Millisecond)
	}
}

func (s *scope) Write(_ dac.Handle, frame []dac.Point, n, pps, repeat int) dac.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.player == nil {
		return notConnected
	}
	for r := 0; r < repeat; r++ {
		s.queue = dac.AppendStereo(s.queue, frame[:n], pps, sampleRate)
	}
	return dac.OK
}

func (s *scope) Stop(dac.Handle) dac.Status {
	s.mu.Lock()
	player := s.player
	s.player = nil
	s.queue = s.queue[:0]
	s.mu.Unlock()

	if player == nil {
		return notConnected
	}
	player.Pause()
	_ = player.Close()
	return dac.OK
}
