package web

import (
	"time"

	"github.com/thelolagemann/galvo/pkg/log"
)

// Opt is a function that modifies a Hub.
type Opt func(h *Hub)

// WithLogger sets the logger used for connections and failed frames.
// Batches are logged by the Controller, so the hub only logs them at
// debug level.
func WithLogger(log log.Logger) Opt {
	return func(h *Hub) {
		h.log = log
	}
}

// Quality sets the brotli quality of preview frames, 0 to 11.
func Quality(q int) Opt {
	return func(h *Hub) {
		if q >= 0 && q <= 11 {
			h.quality = q
		}
	}
}

// CacheSize sets how many recent frames clients are expected to keep.
func CacheSize(n int) Opt {
	return func(h *Hub) {
		if n > 0 {
			h.cacheSize = n
		}
	}
}

// FrameBuffer sets how many frames Observe queues before dropping.
func FrameBuffer(n int) Opt {
	return func(h *Hub) {
		if n > 0 {
			h.frames = make(chan []byte, n)
		}
	}
}

// InfoInterval sets how often ServerInfo is broadcast.
func InfoInterval(d time.Duration) Opt {
	return func(h *Hub) {
		if d > 0 {
			h.interval = d
		}
	}
}
