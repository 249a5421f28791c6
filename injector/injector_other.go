//go:build !linux

package injector

import (
	"errors"

	"github.com/serkey/serkeyd-go/core"
	"github.com/serkey/serkeyd-go/memorywriter"
)

func newPlatform(mw *memorywriter.MemoryWriter) (core.Injector, error) {
	return nil, errors.New("key injection requires Linux uinput; this platform is not supported")
}
