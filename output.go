package cvsynth

import (
	"fmt"
	"strings"
)

// Tee is an Output that copies everything to all of its outputs, in order.
type Tee []Output

var _ Output = Tee{}

func (t Tee) SetVoice(v int, freq float32, amp int) {
	for _, o := range t {
		o.SetVoice(v, freq, amp)
	}
}

func (t Tee) SetGate(on bool) {
	for _, o := range t {
		o.SetGate(on)
	}
}

func (t Tee) SetEnvelope(level int) {
	for _, o := range t {
		o.SetEnvelope(level)
	}
}

func (t Tee) SetFilterMod(level int) {
	for _, o := range t {
		o.SetFilterMod(level)
	}
}

func (t Tee) String() string {
	s := make([]string, len(t))
	for i, o := range t {
		s[i] = fmt.Sprint(o)
	}
	return fmt.Sprintf("Tee(%s)", strings.Join(s, ","))
}

// Discard is an Output that ignores everything.
type Discard struct{}

var _ Output = Discard{}

func (Discard) SetVoice(int, float32, int) {}
func (Discard) SetGate(bool)               {}
func (Discard) SetEnvelope(int)            {}
func (Discard) SetFilterMod(int)           {}
func (Discard) String() string             { return "Discard" }

// Bytes is a Source reading from a fixed slice, mostly useful for tests and
// replaying captures.
type Bytes struct {
	b []byte
}

var _ Source = (*Bytes)(nil)

func NewBytes(b ...byte) *Bytes {
	return &Bytes{b: b}
}

// Push queues more bytes.
func (s *Bytes) Push(b ...byte) {
	s.b = append(s.b, b...)
}

func (s *Bytes) Next() (byte, bool) {
	if len(s.b) == 0 {
		return 0, false
	}
	b := s.b[0]
	s.b = s.b[1:]
	return b, true
}
