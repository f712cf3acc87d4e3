// Package web serves the control plane of the projector over websockets.
//
// Clients connected to /websocket send control batches as text messages.
// Clients connected to /preview additionally receive every rendered
// frame, compressed, so a browser can draw what the galvos trace.
package web

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/cespare/xxhash"
	"github.com/gorilla/websocket"

	"github.com/thelolagemann/galvo/pkg/dac"
	"github.com/thelolagemann/galvo/pkg/log"
)

// Controller receives the control batches sent by clients.
type Controller interface {
	Dispatch(batch string) error
	Keys() []string
}

// Hub tracks connected clients, forwards their control batches and
// broadcasts preview frames to them.
type Hub struct {
	controller Controller
	log        log.Logger

	clients              map[*Client]bool
	register, unregister chan *Client
	replies              chan reply
	frames               chan []byte
	done                 chan struct{}

	cache     *cache
	cacheSize int
	lastHash  uint64
	haveLast  bool
	skipped   uint32
	quality   int
	interval  time.Duration

	dropped atomic.Uint64
}

// NewHub returns a Hub forwarding control batches to c. Run must be
// called for the hub to process anything.
func NewHub(c Controller, opts ...Opt) *Hub {
	h := &Hub{
		controller: c,
		log:        log.NewNullLogger(),
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		replies:    make(chan reply, 16),
		frames:     make(chan []byte, 1),
		done:       make(chan struct{}),
		cacheSize:  64,
		quality:    5,
		interval:   time.Second,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.cache = newCache(h.cacheSize)
	return h
}

// Handler returns the HTTP handler serving /websocket and /preview.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/websocket", func(w http.ResponseWriter, r *http.Request) {
		h.serve(w, r, false)
	})
	mux.HandleFunc("/preview", func(w http.ResponseWriter, r *http.Request) {
		h.serve(w, r, true)
	})
	return mux
}

// ListenAndServe serves Handler on addr until ctx is done.
func (h *Hub) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: h.Handler()}
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdown)
	}()

	h.log.Infof("web: listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (h *Hub) serve(w http.ResponseWriter, r *http.Request, preview bool) {
	w.Header().Set("Access-Control-Allow-Origin", "*")

	// upgrade the connection to a websocket connection
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Errorf("web: upgrading %s: %v", r.RemoteAddr, err)
		return
	}

	c := newClient(h, conn, r, preview)
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}
	h.log.Infof("web: client %s connected from %s (%s)", c.ID, c.RemoteAddr, c.UserAgent)

	// spawn read/write pumps
	go c.ReadPump()
	go c.WritePump()

	keys := []byte(nil)
	for i, k := range h.controller.Keys() {
		if i > 0 {
			keys = append(keys, ' ')
		}
		keys = append(keys, k...)
	}
	h.reply(c, append(append([]byte{ClientInfo}, c.ID[:]...), keys...))
}

type reply struct {
	c   *Client
	msg []byte
}

// reply queues msg for c alone. Messages to a client that has gone are
// discarded.
func (h *Hub) reply(c *Client, msg []byte) {
	select {
	case h.replies <- reply{c, msg}:
	case <-h.done:
	}
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Observe queues a frame for the preview clients. It never blocks: when
// the hub is still busy with the previous frame, the frame is dropped.
// It can be used as a projector.FrameObserver.
func (h *Hub) Observe(frame []dac.Point) {
	select {
	case h.frames <- dac.Encode(frame):
	default:
		h.dropped.Add(1)
	}
}

// Dropped returns how many frames Observe could not queue, plus every
// message a slow client missed.
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}

// Run processes clients and frames until ctx is done.
func (h *Hub) Run(ctx context.Context) error {
	t := time.NewTicker(h.interval)
	defer t.Stop()
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.remove(c)
			}
			return nil
		case c := <-h.register:
			h.clients[c] = true
			if c.preview {
				// the new client has none of the cached frames
				h.cache = newCache(h.cacheSize)
				h.haveLast = false
			}
		case c := <-h.unregister:
			if h.clients[c] {
				h.remove(c)
				h.log.Infof("web: client %s disconnected", c.ID)
			}
		case r := <-h.replies:
			if h.clients[r.c] {
				select {
				case r.c.Send <- r.msg:
				default:
				}
			}
		case raw := <-h.frames:
			h.frame(raw)
		case <-t.C:
			// build information
			data := []byte{ServerInfo}
			for c := range h.clients {
				data = append(data, c.ID[:]...)
				data = binary.LittleEndian.AppendUint16(data, uint16(c.latency.Load()))
			}
			h.send(data, false)
		}
	}
}

func (h *Hub) remove(c *Client) {
	delete(h.clients, c)
	close(c.Send)
}

// send delivers msg to every client, or only the preview clients. A
// client that is not keeping up misses the message.
func (h *Hub) send(msg []byte, previewOnly bool) {
	for c := range h.clients {
		if previewOnly && !c.preview {
			continue
		}
		select {
		case c.Send <- msg:
		default:
			h.dropped.Add(1)
		}
	}
}

// frame sends raw encoded points to the preview clients, skipping
// repeats of the previous frame and replaying cached ones.
func (h *Hub) frame(raw []byte) {
	hash := xxhash.Sum64(raw)
	if h.haveLast && hash == h.lastHash {
		h.skipped++
		return
	}
	h.lastHash, h.haveLast = hash, true

	if h.skipped > 0 {
		buf := binary.LittleEndian.AppendUint32(nil, h.skipped)
		h.send(append([]byte{FrameSkip}, bytes.TrimRight(buf, "\x00")...), true)
		h.skipped = 0
	}

	if idx := h.cache.index(hash); idx != -1 {
		h.send(binary.LittleEndian.AppendUint16([]byte{FrameCache}, uint16(idx)), true)
		return
	}

	var out bytes.Buffer
	out.WriteByte(Frame)
	out.Write([]byte{0, 0}) // cache slot
	w := brotli.NewWriterLevel(&out, h.quality)
	if _, err := w.Write(raw); err != nil {
		h.log.Errorf("web: compressing frame: %v", err)
		return
	}
	if err := w.Close(); err != nil {
		h.log.Errorf("web: compressing frame: %v", err)
		return
	}
	msg := out.Bytes()
	binary.LittleEndian.PutUint16(msg[1:], uint16(h.cache.add(hash)))
	h.send(msg, true)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024 * 16,
	WriteBufferSize: 1024 * 16,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// rtt returns the smoothed round trip time of conn.
func rtt(conn net.Conn) (time.Duration, error) {
	tcp, ok := conn.(*net.TCPConn)
	if !ok {
		return 0, errors.New("web: not a TCP connection")
	}
	return tcpRTT(tcp)
}
