package core

import (
	"fmt"

	"github.com/serkey/serkeyd-go/config"
	"github.com/serkey/serkeyd-go/memorywriter"
	"github.com/serkey/serkeyd-go/wire"
)

// Dispatcher turns decoded device events into injected OS key presses.
type Dispatcher struct {
	keys []config.KeyMap
	inj  Injector
	log  *memorywriter.MemoryWriter
}

func NewDispatcher(keys []config.KeyMap, inj Injector, log *memorywriter.MemoryWriter) *Dispatcher {
	return &Dispatcher{
		keys: keys,
		inj:  inj,
		log:  log,
	}
}

// Dispatch looks the event's key index up in the configured key maps and
// injects that key's keycodes in declaration order. An index with no
// configured key map is dropped: the device may report keys the host
// never mapped, and that is not an error. Injection failures are logged
// and do not stop the session.
func (d *Dispatcher) Dispatch(ev wire.Event) {
	if int(ev.Index) >= len(d.keys) {
		d.log.Log(fmt.Sprintf("dispatch - no key map for index %d, dropping", ev.Index))
		return
	}
	for _, code := range d.keys[ev.Index].Keycodes {
		var err error
		if ev.Pressed {
			err = d.inj.KeyDown(code)
		} else {
			err = d.inj.KeyUp(code)
		}
		if err != nil {
			d.log.Log(fmt.Sprintf("dispatch - injecting keycode %d: %s", code, err))
		}
	}
}
