// Package injector delivers decoded key events to the operating system.
// On Linux it creates a virtual keyboard through /dev/uinput; other
// platforms get a constructor that explains itself and fails.
package injector

import (
	"github.com/serkey/serkeyd-go/core"
	"github.com/serkey/serkeyd-go/memorywriter"
)

// New opens the platform key injector.
func New(mw *memorywriter.MemoryWriter) (core.Injector, error) {
	return newPlatform(mw)
}
