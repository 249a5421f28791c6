package link

import (
	"fmt"
	"time"

	"go.bug.st/serial"

	"github.com/serkey/serkeyd-go/core"
)

type serialChannel struct {
	port serial.Port
}

func openSerial(name string, baud int, timeout time.Duration) (core.Channel, error) {
	port, err := serial.Open(name, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("opening serial port %s (is the device connected?): %w", name, err)
	}
	if err := port.SetReadTimeout(timeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("setting read timeout on %s: %w", name, err)
	}
	return &serialChannel{port: port}, nil
}

func (c *serialChannel) Read(p []byte) (int, error) {
	n, err := c.port.Read(p)
	// In the bounded regime an expired timeout surfaces as a zero-byte
	// read with no error; the session needs it to be a failure.
	if n == 0 && err == nil {
		return 0, ErrTimeout
	}
	return n, err
}

func (c *serialChannel) Write(p []byte) (int, error) {
	return c.port.Write(p)
}

func (c *serialChannel) SetStreaming() error {
	return c.port.SetReadTimeout(serial.NoTimeout)
}

func (c *serialChannel) Close() error {
	return c.port.Close()
}
