//go:build linux

package projector

import (
	"golang.org/x/sys/unix"

	"github.com/thelolagemann/galvo/pkg/log"
)

// niceness of the producer thread; negative values need CAP_SYS_NICE
const producerNice = -10

// raisePriority raises the scheduling priority of the calling thread,
// which must be locked to its goroutine.
func raisePriority(l log.Logger) {
	if err := unix.Setpriority(unix.PRIO_PROCESS, unix.Gettid(), producerNice); err != nil {
		l.Errorf("producer: could not raise thread priority: %v", err)
		return
	}
	l.Debugf("producer: thread %d running at nice %d", unix.Gettid(), producerNice)
}
