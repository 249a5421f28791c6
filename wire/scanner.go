package wire

import (
	"bytes"
	"fmt"
)

// Scanner locates a fixed byte sequence inside a noisy stream, one byte at
// a time. It is used once per connection, to find the device's magic echo
// behind whatever leftover output the link still carries.
//
// The scan restarts from zero on every mismatch and does not re-examine
// rejected bytes, so it can miss matches when the sequence's first byte
// recurs later in the sequence (a KMP failure table would be needed for
// that). NewScanner therefore refuses such sequences instead of silently
// mis-scanning.
type Scanner struct {
	seq     []byte
	cursor  int
	garbage int
}

func NewScanner(seq []byte) (*Scanner, error) {
	if len(seq) == 0 {
		return nil, fmt.Errorf("scanner: empty sequence")
	}
	if bytes.IndexByte(seq[1:], seq[0]) >= 0 {
		return nil, fmt.Errorf("scanner: sequence %q has a self-overlapping prefix", seq)
	}
	return &Scanner{seq: seq}, nil
}

// Feed consumes one byte and reports whether the full sequence has now
// been matched. Further bytes must not be fed after a full match.
func (s *Scanner) Feed(b byte) bool {
	if b == s.seq[s.cursor] {
		s.cursor++
	} else {
		s.garbage += s.cursor + 1
		s.cursor = 0
	}
	return s.cursor == len(s.seq)
}

func (s *Scanner) Done() bool {
	return s.cursor == len(s.seq)
}

// Garbage is the total count of consumed bytes that did not end up being
// part of the match: each rejected byte adds the partial-match length plus
// itself. Diagnostic only.
func (s *Scanner) Garbage() int {
	return s.garbage
}
