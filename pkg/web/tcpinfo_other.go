//go:build !linux

package web

import (
	"errors"
	"net"
	"time"
)

func tcpRTT(*net.TCPConn) (time.Duration, error) {
	return 0, errors.New("web: round trip time unavailable on this platform")
}
