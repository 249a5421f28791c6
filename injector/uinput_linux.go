//go:build linux

package injector

import (
	"fmt"
	"os"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/serkey/serkeyd-go/core"
	"github.com/serkey/serkeyd-go/memorywriter"
)

// Linux input constants we emit.
const (
	evSyn     = 0x00
	evKey     = 0x01
	synReport = 0x00

	keyMax = 0x2ff
)

const (
	uinputMaxNameSize = 80
	absCount          = 64

	busUSB = 0x03
)

// ioctl request encoding (Linux _IOC macro)
const (
	iocNRBits   = 8
	iocTypeBits = 8
	iocSizeBits = 14

	iocNRShift   = 0
	iocTypeShift = iocNRShift + iocNRBits
	iocSizeShift = iocTypeShift + iocTypeBits
	iocDirShift  = iocSizeShift + iocSizeBits

	iocNone  = 0
	iocWrite = 1
)

func ioc(dir uint32, typ uint32, nr uint32, size uint32) uintptr {
	return uintptr((dir << iocDirShift) | (typ << iocTypeShift) | (nr << iocNRShift) | (size << iocSizeShift))
}

// uinput ioctl requests, from linux/uinput.h.
func uiSetEvBit() uintptr   { return ioc(iocWrite, uint32('U'), 100, 4) } // _IOW('U', 100, int)
func uiSetKeyBit() uintptr  { return ioc(iocWrite, uint32('U'), 101, 4) } // _IOW('U', 101, int)
func uiDevCreate() uintptr  { return ioc(iocNone, uint32('U'), 1, 0) }    // _IO('U', 1)
func uiDevDestroy() uintptr { return ioc(iocNone, uint32('U'), 2, 0) }    // _IO('U', 2)

type inputID struct {
	Bustype uint16
	Vendor  uint16
	Product uint16
	Version uint16
}

// The legacy uinput_user_dev setup record, written to the fd before
// UI_DEV_CREATE. Works on every kernel that has uinput at all.
type userDev struct {
	Name       [uinputMaxNameSize]byte
	ID         inputID
	EffectsMax uint32
	Absmax     [absCount]int32
	Absmin     [absCount]int32
	Absfuzz    [absCount]int32
	Absflat    [absCount]int32
}

type inputEvent struct {
	Time  unix.Timeval
	Type  uint16
	Code  uint16
	Value int32
}

type uinputInjector struct {
	f  *os.File
	mw *memorywriter.MemoryWriter
}

func newPlatform(mw *memorywriter.MemoryWriter) (core.Injector, error) {
	mw.Log("injector - opening /dev/uinput")
	f, err := os.OpenFile("/dev/uinput", os.O_WRONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("opening /dev/uinput (is the uinput module loaded and writable?): %w", err)
	}

	inj := &uinputInjector{f: f, mw: mw}
	if err := inj.setup(); err != nil {
		f.Close()
		return nil, err
	}
	// Give the kernel and any listening display server a moment to pick
	// the new device up before events start flowing.
	time.Sleep(200 * time.Millisecond)
	mw.Log("injector - virtual keyboard created")
	return inj, nil
}

func (inj *uinputInjector) setup() error {
	fd := inj.f.Fd()

	if err := inj.ioctl(uiSetEvBit(), evKey); err != nil {
		return fmt.Errorf("enabling key events: %w", err)
	}
	if err := inj.ioctl(uiSetEvBit(), evSyn); err != nil {
		return fmt.Errorf("enabling syn events: %w", err)
	}
	// Register the whole keycode range. The configured key maps are the
	// interesting subset but registering everything costs nothing and
	// keeps config reloads off the device lifecycle.
	for code := 0; code <= keyMax; code++ {
		if err := inj.ioctl(uiSetKeyBit(), uintptr(code)); err != nil {
			return fmt.Errorf("registering keycode %d: %w", code, err)
		}
	}

	var dev userDev
	copy(dev.Name[:], "serkeyd virtual keyboard")
	dev.ID = inputID{Bustype: busUSB, Vendor: 0x1209, Product: 0x5e7b, Version: 1}

	buf := (*[unsafe.Sizeof(dev)]byte)(unsafe.Pointer(&dev))[:]
	if _, err := inj.f.Write(buf); err != nil {
		return fmt.Errorf("writing uinput device record: %w", err)
	}

	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, uiDevCreate(), 0); errno != 0 {
		return fmt.Errorf("creating uinput device: %w", errno)
	}
	return nil
}

func (inj *uinputInjector) ioctl(req uintptr, arg uintptr) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, inj.f.Fd(), req, arg)
	if errno != 0 {
		return errno
	}
	return nil
}

func (inj *uinputInjector) emit(typ uint16, code uint16, value int32) error {
	ev := inputEvent{Type: typ, Code: code, Value: value}
	buf := (*[unsafe.Sizeof(ev)]byte)(unsafe.Pointer(&ev))[:]
	_, err := inj.f.Write(buf)
	return err
}

func (inj *uinputInjector) key(code uint16, value int32) error {
	if err := inj.emit(evKey, code, value); err != nil {
		return err
	}
	return inj.emit(evSyn, synReport, 0)
}

func (inj *uinputInjector) KeyDown(code uint16) error {
	return inj.key(code, 1)
}

func (inj *uinputInjector) KeyUp(code uint16) error {
	return inj.key(code, 0)
}

func (inj *uinputInjector) Close() error {
	inj.mw.Log("injector - destroying virtual keyboard")
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, inj.f.Fd(), uiDevDestroy(), 0); errno != 0 {
		inj.f.Close()
		return errno
	}
	return inj.f.Close()
}
