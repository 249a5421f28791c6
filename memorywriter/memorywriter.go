// Package memorywriter keeps a rotating log in memory: recent lines are
// rotated away under a cap, but the first lines after startup are kept, so
// an export always shows both how the daemon started and what it did last.
// The detailed protocol trace would be far too large for a plain file.
package memorywriter

import (
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"
)

// hardcoded cap to prevent memory issues on a runaway line
const maxLineLength = 500

type MemoryWriter struct {
	maxLineCount int
	lines        [][]byte // lines include newlines
	startCount   int
	startLines   [][]byte
	startTime    time.Time
	printTime    bool
	outWriter    io.Writer // optional verbose tee
	mutex        sync.Mutex
}

func New(size, startSize int, printTime bool, out io.Writer) (*MemoryWriter, error) {
	if size < 1 || startSize < 1 {
		return nil, errors.New("memorywriter: sizes cannot be <1")
	}
	return &MemoryWriter{
		maxLineCount: size,
		lines:        make([][]byte, 0, size),
		startCount:   startSize,
		startLines:   make([][]byte, 0, startSize),
		startTime:    time.Now(),
		printTime:    printTime,
		outWriter:    out,
	}, nil
}

func (m *MemoryWriter) Log(s string) {
	long := []byte(s + "\n")
	if _, err := m.Write(long); err != nil {
		// give up, just print on stdout
		fmt.Println(err)
	}
}

// Write remembers one line in memory
func (m *MemoryWriter) Write(p []byte) (int, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if len(p) > maxLineLength {
		p = p[:maxLineLength]
	}

	var newline []byte
	if !m.printTime {
		newline = make([]byte, len(p))
		copy(newline, p)
	} else {
		now := time.Now()
		elapsed := now.Sub(m.startTime)
		newline = []byte(fmt.Sprintf("[%.6f : %s] %s",
			elapsed.Seconds(), now.Format("15:04:05"), string(p)))
	}

	if len(m.startLines) < m.startCount {
		// still within the preserved startup window
		m.startLines = append(m.startLines, newline)
	} else {
		// rotate
		for len(m.lines) >= m.maxLineCount {
			m.lines = m.lines[1:]
		}
		m.lines = append(m.lines, newline)
	}

	if m.outWriter != nil {
		if _, err := m.outWriter.Write(newline); err != nil {
			fmt.Println(err)
		}
	}
	return len(p), nil
}

// writeTo exports the remembered lines, newest first, with additional text
// on top. In our case the additional text is the serkeyd version and the
// serial port survey.
func (m *MemoryWriter) writeTo(start string, w io.Writer) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, err := w.Write([]byte(start)); err != nil {
		return err
	}

	for i := len(m.lines) - 1; i >= 0; i-- {
		if _, err := w.Write(m.lines[i]); err != nil {
			return err
		}
	}

	// ... marks the rotated-away gap between end and start lines
	if _, err := w.Write([]byte("...\n")); err != nil {
		return err
	}

	for i := len(m.startLines) - 1; i >= 0; i-- {
		if _, err := w.Write(m.startLines[i]); err != nil {
			return err
		}
	}
	return nil
}

// String exports as string
func (m *MemoryWriter) String(start string) (string, error) {
	var b bytes.Buffer
	if err := m.writeTo(start, &b); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Gzip exports as GZip bytes
func (m *MemoryWriter) Gzip(start string) ([]byte, error) {
	var buf bytes.Buffer
	gw, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, err
	}
	gw.Name = "log.txt"
	if err := m.writeTo(start, gw); err != nil {
		return nil, err
	}
	if err := gw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
