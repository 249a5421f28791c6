// Package link opens the byte-stream channel to the device: a real USB
// serial port, or a TCP emulator for development without hardware. Both
// implement core.Channel with its two read-timeout regimes.
package link

import (
	"errors"
	"fmt"
	"strings"

	"go.bug.st/serial/enumerator"

	"github.com/serkey/serkeyd-go/config"
	"github.com/serkey/serkeyd-go/core"
	"github.com/serkey/serkeyd-go/memorywriter"
)

// ErrTimeout reports a bounded-timeout read that saw no data. Only the
// handshake phase uses bounded reads, and there it is fatal.
var ErrTimeout = errors.New("read timed out")

const autoUSBPrefix = ":auto-usb-"

// Resolve turns the configured port name into something Open accepts,
// logging a survey of the available ports along the way. The
// ":auto-usb-<substr>" wildcard picks the first USB serial port whose
// product name contains the substring, ignoring case.
func Resolve(cfg *config.Config, log *memorywriter.MemoryWriter) (string, error) {
	if isEmulator(cfg.SerialPort) {
		return cfg.SerialPort, nil
	}

	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return "", fmt.Errorf("enumerating serial ports: %w", err)
	}
	surveyPorts(ports, log)

	if !strings.HasPrefix(cfg.SerialPort, autoUSBPrefix) {
		return cfg.SerialPort, nil
	}

	substr := strings.ToLower(strings.TrimPrefix(cfg.SerialPort, autoUSBPrefix))
	for _, port := range ports {
		if port.IsUSB && strings.Contains(strings.ToLower(port.Product), substr) {
			log.Log(fmt.Sprintf("link - %q resolved to %s", cfg.SerialPort, port.Name))
			return port.Name, nil
		}
	}
	return "", fmt.Errorf("found no usb serial port containing %q in its product name", substr)
}

func surveyPorts(ports []*enumerator.PortDetails, log *memorywriter.MemoryWriter) {
	log.Log(fmt.Sprintf("link - %d serial ports available:", len(ports)))
	for _, port := range ports {
		if port.IsUSB {
			log.Log(fmt.Sprintf("link -  %s: usb vid %s pid %s serial %q product %q",
				port.Name, port.VID, port.PID, port.SerialNumber, port.Product))
		} else {
			log.Log(fmt.Sprintf("link -  %s", port.Name))
		}
	}
}

// Open connects the channel for a resolved port name. Reads start out in
// the bounded-timeout regime; core.Channel.SetStreaming makes them block.
func Open(port string, cfg *config.Config) (core.Channel, error) {
	if isEmulator(port) {
		return openEmulator(port, cfg.ReadTimeout())
	}
	return openSerial(port, cfg.BaudRate, cfg.ReadTimeout())
}
