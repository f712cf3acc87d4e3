//go:build !nosdl

package sdl

import (
	"sync"
	"time"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/thelolagemann/galvo/pkg/dac"
)

const (
	initFailed   dac.Status = -1
	noSuchDevice dac.Status = -2
	openFailed   dac.Status = -3
	queueFailed  dac.Status = -4
	notConnected dac.Status = -5
)

var (
	sampleRate = 96000
	latency    = 40
)

func init() {
	dac.Install("sdl", &scope{}, []dac.DriverOption{
		{Name: "rate", Default: 96000, Value: &sampleRate, Type: "int", Description: "audio sample rate of XY scope outputs"},
		{Name: "latency", Default: 40, Value: &latency, Type: "int", Description: "milliseconds of XY scope audio to keep queued"},
	})
}

type scope struct {
	mu      sync.Mutex
	names   []string
	devices map[dac.Handle]sdl.AudioDeviceID
	buf     []byte
}

func (s *scope) LibStart() dac.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := sdl.InitSubSystem(sdl.INIT_AUDIO); err != nil {
		return initFailed
	}
	s.devices = make(map[dac.Handle]sdl.AudioDeviceID)
	s.names = s.names[:0]
	for i := 0; i < sdl.GetNumAudioDevices(false); i++ {
		s.names = append(s.names, sdl.GetAudioDeviceName(i, false))
	}
	return dac.OK
}

func (s *scope) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.names)
}

func (s *scope) Get(index int) dac.Handle { return dac.Handle(index + 1) }

func (s *scope) ID(h dac.Handle) uint32 { return uint32(h) }

func (s *scope) Connect(h dac.Handle) dac.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := int(h) - 1
	if i < 0 || i >= len(s.names) {
		return noSuchDevice
	}
	id, err := sdl.OpenAudioDevice(s.names[i], false, &sdl.AudioSpec{
		Freq:     int32(sampleRate),
		Format:   sdl.AUDIO_F32,
		Channels: 2,
		Samples:  1024,
	}, nil, 0)
	if err != nil {
		return openFailed
	}
	s.devices[h] = id
	sdl.PauseAudioDevice(id, false)
	return dac.OK
}

func (s *scope) device(h dac.Handle) (sdl.AudioDeviceID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.devices[h]
	return id, ok
}

// WaitForReady polls the queue until less than the configured latency
// of audio is left to play.
func (s *scope) WaitForReady(h dac.Handle) dac.Status {
	id, ok := s.device(h)
	if !ok {
		return notConnected
	}
	threshold := uint32(sampleRate * latency / 1000 * dac.StereoFrameSize)
	for sdl.GetQueuedAudioSize(id) > threshold {
		time.Sleep(time.Millisecond)
	}
	return dac.OK
}

func (s *scope) Write(h dac.Handle, frame []dac.Point, n, pps, repeat int) dac.Status {
	id, ok := s.device(h)
	if !ok {
		return notConnected
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf = s.buf[:0]
	for r := 0; r < repeat; r++ {
		s.buf = dac.AppendStereo(s.buf, frame[:n], pps, sampleRate)
	}
	if err := sdl.QueueAudio(id, s.buf); err != nil {
		return queueFailed
	}
	return dac.OK
}

func (s *scope) Stop(h dac.Handle) dac.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.devices[h]
	if !ok {
		return notConnected
	}
	sdl.ClearQueuedAudio(id)
	sdl.CloseAudioDevice(id)
	delete(s.devices, h)
	return dac.OK
}
