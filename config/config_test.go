package config

import (
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/BurntSushi/toml"
)

func TestDebounceTypeText(t *testing.T) {
	for _, dt := range []DebounceType{FirstChange, LastChange} {
		text, err := dt.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v): %v", dt, err)
		}
		var back DebounceType
		if err := back.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%s): %v", text, err)
		}
		if back != dt {
			t.Errorf("debounce type %v round-tripped to %v", dt, back)
		}
	}

	var dt DebounceType
	if err := dt.UnmarshalText([]byte("sometimes")); err == nil {
		t.Error("UnmarshalText accepted an unknown debounce type")
	}
}

func TestDecodeFile(t *testing.T) {
	const file = `
serial_port = "/dev/ttyACM0"
baud_rate = 9600
debounce_ms = 2.5
debounce_type = "first-change"
enable_interrupts = true
timeout_ms = 1000

[[key]]
pin = 3
keycodes = [29, 46]

[[key]]
pin = 4
keycodes = [57]
`
	var cfg Config
	if _, err := toml.Decode(file, &cfg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cfg.SerialPort != "/dev/ttyACM0" || cfg.BaudRate != 9600 {
		t.Errorf("port/baud decoded wrong: %+v", cfg)
	}
	if cfg.DebounceMs != 2.5 || cfg.DebounceType != FirstChange {
		t.Errorf("debounce decoded wrong: %+v", cfg)
	}
	if len(cfg.Keys) != 2 || cfg.Keys[0].Pin != 3 || len(cfg.Keys[0].Keycodes) != 2 {
		t.Errorf("keys decoded wrong: %+v", cfg.Keys)
	}
	if cfg.Keys[1].Keycodes[0] != 57 {
		t.Errorf("second key decoded wrong: %+v", cfg.Keys[1])
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadMissingFileWritesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "serkeyd.toml")
	logger := log.New(os.Stderr, "", 0)

	cfg := Load(path, logger)
	if cfg.SerialPort != Default().SerialPort {
		t.Errorf("Load on missing file did not return defaults: %+v", cfg)
	}

	// the default file must have been written and must load back cleanly
	var back Config
	if _, err := toml.DecodeFile(path, &back); err != nil {
		t.Fatalf("default config file does not parse: %v", err)
	}
	if back.BaudRate != cfg.BaudRate || len(back.Keys) != len(cfg.Keys) {
		t.Errorf("written default differs: %+v vs %+v", back, cfg)
	}
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty port", func(c *Config) { c.SerialPort = "" }},
		{"zero baud", func(c *Config) { c.BaudRate = 0 }},
		{"zero timeout", func(c *Config) { c.TimeoutMs = 0 }},
		{"too many keys", func(c *Config) { c.Keys = make([]KeyMap, 129) }},
	}
	for _, tc := range testCases {
		cfg := Default()
		tc.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: Validate accepted an invalid config", tc.name)
		}
	}
	if err := Default().Validate(); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}
