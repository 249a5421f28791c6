package link

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/serkey/serkeyd-go/core"
)

// A TCP stand-in for the serial device, for working on the daemon with no
// hardware attached. ":emulator" dials the default address, and
// ":emulator-<host:port>" dials elsewhere.

const (
	emulatorPrefix  = ":emulator"
	emulatorAddress = "127.0.0.1:21324"
)

func isEmulator(port string) bool {
	return strings.HasPrefix(port, emulatorPrefix)
}

type emulatorChannel struct {
	conn    net.Conn
	timeout time.Duration // 0 once streaming
}

func openEmulator(port string, timeout time.Duration) (core.Channel, error) {
	addr := emulatorAddress
	if rest := strings.TrimPrefix(port, emulatorPrefix); strings.HasPrefix(rest, "-") {
		addr = rest[1:]
	}
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("connecting to device emulator at %s: %w", addr, err)
	}
	return &emulatorChannel{conn: conn, timeout: timeout}, nil
}

func (c *emulatorChannel) Read(p []byte) (int, error) {
	if c.timeout > 0 {
		if err := c.conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
			return 0, err
		}
	}
	return c.conn.Read(p)
}

func (c *emulatorChannel) Write(p []byte) (int, error) {
	return c.conn.Write(p)
}

func (c *emulatorChannel) SetStreaming() error {
	c.timeout = 0
	return c.conn.SetReadDeadline(time.Time{})
}

func (c *emulatorChannel) Close() error {
	return c.conn.Close()
}
