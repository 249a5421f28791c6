package core

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	"github.com/serkey/serkeyd-go/config"
	"github.com/serkey/serkeyd-go/memorywriter"
	"github.com/serkey/serkeyd-go/wire"
)

// Package with the "core logic" of one device connection: the handshake
// state machine over an abstract channel, and the event loop feeding the
// dispatcher.
//
// The link and injector packages are not imported; abstract interfaces
// are used instead, so this package builds and tests without a serial
// port or /dev/uinput attached.

// Channel is one open byte-stream link to the device. The Session owns it
// exclusively; nothing else may read or write it concurrently.
type Channel interface {
	io.ReadWriter

	// SetStreaming switches the channel from bounded-timeout reads to
	// blocking reads. One-way; never reverted for the channel's lifetime.
	SetStreaming() error

	Close() error
}

// Injector is the OS capability that turns a keycode plus direction into
// a synthesized key event. One instance is constructed at startup and
// shared for the process lifetime.
type Injector interface {
	KeyDown(code uint16) error
	KeyUp(code uint16) error
	Close() error
}

type State int32

const (
	StateIdle State = iota
	StateHandshaking
	StateConfiguring
	StateAwaitingSetupLog
	StateStreaming
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateHandshaking:
		return "handshaking"
	case StateConfiguring:
		return "configuring device"
	case StateAwaitingSetupLog:
		return "awaiting setup log"
	case StateStreaming:
		return "streaming"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

var ErrNotIdle = errors.New("session already used")

// Session drives the wire protocol on one channel: reset, magic exchange,
// device configuration, setup-log readout, then the event loop. A session
// is single-use; after any failure the caller must open a fresh channel
// and build a new one.
type Session struct {
	ch      Channel
	cfg     *config.Config
	disp    *Dispatcher
	verbose bool

	state   int32 // atomic State
	garbage int64 // atomic, noise bytes consumed before the magic matched
	events  int64 // atomic, events dispatched

	log *memorywriter.MemoryWriter
}

func New(ch Channel, cfg *config.Config, inj Injector, verbose bool, log *memorywriter.MemoryWriter) *Session {
	return &Session{
		ch:      ch,
		cfg:     cfg,
		disp:    NewDispatcher(cfg.Keys, inj, log),
		verbose: verbose,
		log:     log,
	}
}

func (s *Session) Log(m string) {
	s.log.Log("core - " + m)
}

// Run performs the handshake and then serves device events until the
// channel fails. It never returns nil.
func (s *Session) Run() error {
	if err := s.Handshake(); err != nil {
		return err
	}
	return s.serve()
}

// Handshake runs the connection through reset, magic exchange, device
// configuration and setup-log readout, leaving the channel in streaming
// mode. Any I/O error is fatal to the session; there is no retry.
func (s *Session) Handshake() error {
	if !atomic.CompareAndSwapInt32(&s.state, int32(StateIdle), int32(StateHandshaking)) {
		return ErrNotIdle
	}

	// Reset first, in case the device is already mid-session.
	s.Log("handshake - sending reset")
	if _, err := s.ch.Write(wire.ResetFrame()); err != nil {
		return s.fail(fmt.Errorf("writing reset command: %w", err))
	}

	s.Log("handshake - sending magic number")
	if _, err := s.ch.Write(wire.Magic); err != nil {
		return s.fail(fmt.Errorf("sending magic number: %w", err))
	}
	if err := s.readMagic(); err != nil {
		return s.fail(fmt.Errorf("reading magic number: %w", err))
	}

	// Bounded-timeout reads exist only to unstick the magic resync. The
	// device is allowed to take its time over setup, so the regime switch
	// happens here, not when the streaming state is reached.
	s.Log("handshake - switching channel to streaming reads")
	if err := s.ch.SetStreaming(); err != nil {
		return s.fail(fmt.Errorf("switching to streaming reads: %w", err))
	}

	s.setState(StateConfiguring)
	if err := s.configure(); err != nil {
		return s.fail(err)
	}

	s.setState(StateAwaitingSetupLog)
	if err := s.readSetupLog(); err != nil {
		return s.fail(fmt.Errorf("reading setup log: %w", err))
	}

	s.setState(StateStreaming)
	return nil
}

// readMagic scans the incoming bytes for the device's magic echo. The
// link may still carry leftover output from a previous session, so the
// echo can be buried behind arbitrary noise.
//
// No overall deadline: a device that never echoes the magic keeps the
// handshake blocked at the granularity of single bounded-timeout reads.
func (s *Session) readMagic() error {
	sc, err := wire.NewScanner(wire.Magic)
	if err != nil {
		return err
	}
	var b [1]byte
	for !sc.Done() {
		if _, err := io.ReadFull(s.ch, b[:]); err != nil {
			return err
		}
		sc.Feed(b[0])
	}
	atomic.StoreInt64(&s.garbage, int64(sc.Garbage()))
	s.Log(fmt.Sprintf("handshake - received magic number after %d bytes of garbage", sc.Garbage()))
	return nil
}

// configure sends the setup commands. The AddKey frames go out in
// config order; that order is what binds each key map to the key index
// the device uses in event bytes, so it must not be changed.
func (s *Session) configure() error {
	s.Log(fmt.Sprintf("configure - debounce %.3fms", s.cfg.DebounceMs))
	if _, err := s.ch.Write(wire.DebounceFrame(s.cfg.DebounceMs)); err != nil {
		return fmt.Errorf("writing debounce length: %w", err)
	}
	if _, err := s.ch.Write(wire.SmoothnessFrame(s.cfg.DebounceType.Policy())); err != nil {
		return fmt.Errorf("writing debounce type: %w", err)
	}
	for i, km := range s.cfg.Keys {
		s.Log(fmt.Sprintf("configure - key index %d on pin %d", i, km.Pin))
		if _, err := s.ch.Write(wire.AddKeyFrame(km.Pin)); err != nil {
			return fmt.Errorf("setting up key %d with device: %w", i, err)
		}
	}
	if _, err := s.ch.Write(wire.InterruptsFrame(s.cfg.EnableInterrupts)); err != nil {
		return fmt.Errorf("writing interrupt setting: %w", err)
	}
	if _, err := s.ch.Write(wire.FinishFrame()); err != nil {
		return fmt.Errorf("finishing setup: %w", err)
	}
	return nil
}

// readSetupLog surfaces the device's setup output. The device signals
// readiness with one empty line; losing the channel before that line is a
// protocol violation.
func (s *Session) readSetupLog() error {
	s.Log("setup - device setup output:")
	for {
		line, err := s.readLine()
		if err != nil {
			return fmt.Errorf("device never signaled setup completion: %w", err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			s.Log("setup - finished")
			return nil
		}
		s.log.Log("device - " + line)
	}
}

// readLine reads one byte at a time. A buffered reader would swallow the
// event bytes that follow the setup log on the same channel.
func (s *Session) readLine() (string, error) {
	var line []byte
	var b [1]byte
	for {
		if _, err := io.ReadFull(s.ch, b[:]); err != nil {
			return "", err
		}
		if b[0] == '\n' {
			return string(line), nil
		}
		line = append(line, b[0])
	}
}

// serve is the streaming loop: read one event byte, dispatch it fully,
// read the next. The device is not read again until dispatch returns,
// which serializes event processing with device arrival.
func (s *Session) serve() error {
	s.Log("serve - handling device events")
	for {
		ev, err := s.ReadEvent()
		if err != nil {
			return s.fail(fmt.Errorf("reading event from device: %w", err))
		}
		s.disp.Dispatch(ev)
		atomic.AddInt64(&s.events, 1)
	}
}

// ReadEvent blocks until one event byte arrives and decodes it.
func (s *Session) ReadEvent() (wire.Event, error) {
	var b [1]byte
	if _, err := io.ReadFull(s.ch, b[:]); err != nil {
		return wire.Event{}, err
	}
	if s.verbose {
		s.Log(fmt.Sprintf("received event byte 0x%02X", b[0]))
	}
	return wire.DecodeEvent(b[0]), nil
}

func (s *Session) fail(err error) error {
	s.setState(StateFailed)
	s.Log("failed - " + err.Error())
	return err
}

func (s *Session) setState(st State) {
	atomic.StoreInt32(&s.state, int32(st))
}

func (s *Session) State() State {
	return State(atomic.LoadInt32(&s.state))
}

// GarbageCount is the number of noise bytes consumed before the magic
// echo matched. Diagnostic only.
func (s *Session) GarbageCount() int {
	return int(atomic.LoadInt64(&s.garbage))
}

// EventCount is the number of events dispatched so far.
func (s *Session) EventCount() int {
	return int(atomic.LoadInt64(&s.events))
}
