// Package config loads the serkeyd configuration file. A missing or broken
// file is never fatal: the defaults are used and written back, so a fresh
// install gets a commented starting point to edit.
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/serkey/serkeyd-go/wire"
)

// KeyMap binds one device pin to the keycodes injected on its transitions.
// The position of a KeyMap in Config.Keys is its key index on the wire: the
// device refers to keys by the order their AddKey frames were sent.
type KeyMap struct {
	// The device pin to map this key to.
	Pin uint8 `toml:"pin"`
	// Keycodes injected, in order, on each transition of the pin.
	Keycodes []uint16 `toml:"keycodes"`
}

// DebounceType selects the device's debounce timing reference.
type DebounceType int

const (
	// Wait for the debounce window from the first key-state change.
	FirstChange DebounceType = iota
	// Wait for the debounce window from the last key-state change.
	LastChange
)

func (t DebounceType) Policy() wire.DebouncePolicy {
	if t == FirstChange {
		return wire.FirstChange
	}
	return wire.LastChange
}

func (t DebounceType) MarshalText() ([]byte, error) {
	switch t {
	case FirstChange:
		return []byte("first-change"), nil
	case LastChange:
		return []byte("last-change"), nil
	}
	return nil, fmt.Errorf("unknown debounce type %d", int(t))
}

func (t *DebounceType) UnmarshalText(text []byte) error {
	switch string(text) {
	case "first-change":
		*t = FirstChange
	case "last-change":
		*t = LastChange
	default:
		return fmt.Errorf("unknown debounce type %q (use first-change or last-change)", text)
	}
	return nil
}

type Config struct {
	// What serial port to connect to. ":auto-usb-<substr>" picks the first
	// USB serial port whose product name contains the substring;
	// ":emulator" or ":emulator-<addr>" connects to a TCP device emulator.
	SerialPort string `toml:"serial_port"`
	// Command to run before opening the port, typically to program the
	// device. The literal {{port}} is replaced with the resolved port.
	PreviousCommand string `toml:"previous_command"`
	// Bits per second on the serial link.
	BaudRate int `toml:"baud_rate"`
	// Milliseconds of debounce applied by the device.
	DebounceMs float64 `toml:"debounce_ms"`
	// What kind of debounce to use.
	DebounceType DebounceType `toml:"debounce_type"`
	// Whether the device should listen to pin interrupts.
	EnableInterrupts bool `toml:"enable_interrupts"`
	// Per-read timeout in milliseconds while handshaking.
	TimeoutMs uint `toml:"timeout_ms"`
	// Keys to map, in key-index order.
	Keys []KeyMap `toml:"key"`
}

func Default() *Config {
	return &Config{
		SerialPort:       ":auto-usb-arduino",
		PreviousCommand:  "",
		BaudRate:         115200,
		DebounceMs:       1.0,
		DebounceType:     LastChange,
		EnableInterrupts: false,
		TimeoutMs:        3000,
		Keys: []KeyMap{
			{Pin: 2, Keycodes: []uint16{57}}, // KEY_SPACE
		},
	}
}

// Load reads the config file at path. It never fails: on any read or parse
// problem it logs, falls back to Default and tries to write the default
// file for the user to edit.
func Load(path string, stderrLogger *log.Logger) *Config {
	var cfg Config
	_, err := toml.DecodeFile(path, &cfg)
	if err == nil {
		return &cfg
	}
	stderrLogger.Printf("error reading config file %s: %s", path, err)
	stderrLogger.Print("using default config")

	def := Default()
	if err := write(path, def); err != nil {
		stderrLogger.Printf("error writing config file: %s", err)
	}
	return def
}

func write(path string, cfg *Config) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}

func (c *Config) Validate() error {
	if c.SerialPort == "" {
		return fmt.Errorf("serial_port must be set")
	}
	if c.BaudRate <= 0 {
		return fmt.Errorf("baud_rate must be positive, got %d", c.BaudRate)
	}
	if c.TimeoutMs == 0 {
		return fmt.Errorf("timeout_ms must be positive")
	}
	// event bytes carry a 7-bit key index
	if len(c.Keys) > 128 {
		return fmt.Errorf("at most 128 keys can be mapped, got %d", len(c.Keys))
	}
	return nil
}

// ReadTimeout is the bounded per-read timeout used while handshaking.
func (c *Config) ReadTimeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}
