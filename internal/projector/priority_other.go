//go:build !linux

package projector

import "github.com/thelolagemann/galvo/pkg/log"

func raisePriority(l log.Logger) {
	l.Debugf("producer: thread priority is left unchanged on this platform")
}
