// Package wire implements the SerKey setup-command encoding and
// event-byte decoding. It is pure; all I/O lives in the core package.
package wire

import "encoding/binary"

// Magic is the 8-byte marker exchanged during the handshake to confirm
// protocol compatibility and align the byte stream.
var Magic = []byte("SerKey01")

// SetupCommand is one of the fixed host->device configuration commands.
// The value of each constant is its wire opcode.
type SetupCommand byte

const (
	Finish           SetupCommand = 0x0F
	AddKey           SetupCommand = 0xAD
	SetDebounce      SetupCommand = 0xDB
	AwaitSmoothness  SetupCommand = 0xAE
	Reset            SetupCommand = 0xEE
	EnableInterrupts SetupCommand = 0xEA
)

func (c SetupCommand) String() string {
	switch c {
	case Finish:
		return "finish"
	case AddKey:
		return "add-key"
	case SetDebounce:
		return "set-debounce"
	case AwaitSmoothness:
		return "await-smoothness"
	case Reset:
		return "reset"
	case EnableInterrupts:
		return "enable-interrupts"
	}
	return "unknown"
}

// Frame builds the length-prefixed setup frame [opcode, len_hi, len_lo,
// payload...]. Payloads never exceed 4 bytes today; the 16-bit big-endian
// length field leaves room for longer ones.
func (c SetupCommand) Frame(payload ...byte) []byte {
	frame := make([]byte, 0, 3+len(payload))
	frame = append(frame, byte(c), byte(len(payload)>>8), byte(len(payload)))
	return append(frame, payload...)
}

// DebouncePolicy selects whether the device measures the debounce window
// from the first or the last observed key-state change.
type DebouncePolicy byte

const (
	FirstChange DebouncePolicy = 0
	LastChange  DebouncePolicy = 1
)

// DebounceMicros converts a debounce length in milliseconds to the
// microsecond value carried on the wire: truncated toward zero and clamped
// to the uint32 range. Negative and NaN inputs clamp to 0.
func DebounceMicros(ms float64) uint32 {
	us := ms * 1000
	if !(us > 0) {
		return 0
	}
	if us >= float64(^uint32(0)) {
		return ^uint32(0)
	}
	return uint32(us)
}

// ResetFrame guards against a device already mid-session.
func ResetFrame() []byte {
	return Reset.Frame()
}

// FinishFrame ends device configuration.
func FinishFrame() []byte {
	return Finish.Frame()
}

// AddKeyFrame registers one device pin. The order in which AddKey frames
// are sent assigns the key indices used in later event bytes: the first
// frame binds index 0, the second index 1, and so on.
func AddKeyFrame(pin uint8) []byte {
	return AddKey.Frame(pin)
}

// DebounceFrame carries the debounce length as big-endian microseconds.
func DebounceFrame(ms float64) []byte {
	var us [4]byte
	binary.BigEndian.PutUint32(us[:], DebounceMicros(ms))
	return SetDebounce.Frame(us[:]...)
}

func SmoothnessFrame(p DebouncePolicy) []byte {
	return AwaitSmoothness.Frame(byte(p))
}

func InterruptsFrame(enabled bool) []byte {
	e := byte(0)
	if enabled {
		e = 1
	}
	return EnableInterrupts.Frame(e)
}

// Event is one key transition reported by the device. Index is the
// 7-bit key index assigned by AddKey frame order during setup.
type Event struct {
	Index   uint8
	Pressed bool
}

// DecodeEvent decodes one event byte: bit 7 is the transition direction,
// bits 0-6 the key index. Total over all 256 byte values; an index with no
// configured key is still structurally valid.
func DecodeEvent(b byte) Event {
	return Event{
		Index:   b & 0x7F,
		Pressed: b&0x80 != 0,
	}
}
