package wire

import (
	"bytes"
	"testing"
)

func TestFrameLayout(t *testing.T) {
	testCases := []struct {
		name     string
		frame    []byte
		expected []byte
	}{
		{"reset", ResetFrame(), []byte{0xEE, 0x00, 0x00}},
		{"finish", FinishFrame(), []byte{0x0F, 0x00, 0x00}},
		{"add key pin 2", AddKeyFrame(2), []byte{0xAD, 0x00, 0x01, 0x02}},
		{"add key pin 255", AddKeyFrame(255), []byte{0xAD, 0x00, 0x01, 0xFF}},
		{"smoothness first", SmoothnessFrame(FirstChange), []byte{0xAE, 0x00, 0x01, 0x00}},
		{"smoothness last", SmoothnessFrame(LastChange), []byte{0xAE, 0x00, 0x01, 0x01}},
		{"interrupts off", InterruptsFrame(false), []byte{0xEA, 0x00, 0x01, 0x00}},
		{"interrupts on", InterruptsFrame(true), []byte{0xEA, 0x00, 0x01, 0x01}},
		{"debounce 1ms", DebounceFrame(1.0), []byte{0xDB, 0x00, 0x04, 0x00, 0x00, 0x03, 0xE8}},
	}

	for _, tc := range testCases {
		if !bytes.Equal(tc.frame, tc.expected) {
			t.Errorf("%s: got % X, expected % X", tc.name, tc.frame, tc.expected)
		}
	}
}

func TestDebounceMicros(t *testing.T) {
	testCases := []struct {
		ms       float64
		expected uint32
	}{
		{0, 0},
		{1.0, 1000},
		{0.5, 500},
		{2.75, 2750},
		{-3, 0},
		{5e9, 4294967295},
		{0.0015, 1}, // truncated toward zero, not rounded
	}

	for _, tc := range testCases {
		if got := DebounceMicros(tc.ms); got != tc.expected {
			t.Errorf("DebounceMicros(%v) = %d, expected %d", tc.ms, got, tc.expected)
		}
	}
}

func TestDecodeEvent(t *testing.T) {
	testCases := []struct {
		b       byte
		index   uint8
		pressed bool
	}{
		{0x82, 2, true},
		{0x02, 2, false},
		{0xFF, 127, true},
		{0x00, 0, false},
		{0x80, 0, true},
		{0x7F, 127, false},
	}

	for _, tc := range testCases {
		ev := DecodeEvent(tc.b)
		if ev.Index != tc.index || ev.Pressed != tc.pressed {
			t.Errorf("DecodeEvent(0x%02X) = %+v, expected index %d pressed %v",
				tc.b, ev, tc.index, tc.pressed)
		}
	}
}

func TestDecodeEventTotal(t *testing.T) {
	// Direction and index together recover the original byte for every
	// possible input; there is no invalid event byte.
	for b := 0; b < 256; b++ {
		ev := DecodeEvent(byte(b))
		back := ev.Index
		if ev.Pressed {
			back |= 0x80
		}
		if back != byte(b) {
			t.Fatalf("DecodeEvent(0x%02X) lost information: %+v", b, ev)
		}
	}
}

func TestMagicLength(t *testing.T) {
	if len(Magic) != 8 {
		t.Errorf("magic sequence is %d bytes, expected 8", len(Magic))
	}
}
