package link

import (
	"net"
	"testing"
	"time"
)

func TestEmulatorAddressForms(t *testing.T) {
	testCases := []struct {
		port     string
		emulator bool
	}{
		{":emulator", true},
		{":emulator-127.0.0.1:9999", true},
		{"/dev/ttyACM0", false},
		{":auto-usb-arduino", false},
	}
	for _, tc := range testCases {
		if got := isEmulator(tc.port); got != tc.emulator {
			t.Errorf("isEmulator(%q) = %v, expected %v", tc.port, got, tc.emulator)
		}
	}
}

func TestEmulatorTimeoutRegimes(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := l.Accept()
		if err != nil {
			return
		}
		accepted <- conn
	}()

	ch, err := openEmulator(":emulator-"+l.Addr().String(), 20*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	defer ch.Close()
	dev := <-accepted
	defer dev.Close()

	// Bounded regime: a silent device makes the read fail.
	buf := make([]byte, 1)
	if _, err := ch.Read(buf); err == nil {
		t.Error("bounded read returned without data or error")
	}

	// Streaming regime: the read blocks until a byte arrives.
	if err := ch.SetStreaming(); err != nil {
		t.Fatal(err)
	}
	go func() {
		time.Sleep(50 * time.Millisecond)
		dev.Write([]byte{0x81})
	}()
	n, err := ch.Read(buf)
	if err != nil || n != 1 || buf[0] != 0x81 {
		t.Errorf("streaming read = %d %v %v, expected the event byte", n, buf[:n], err)
	}
}
