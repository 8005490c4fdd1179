// package voice decides which oscillator plays which note. Allocators track
// the keys held on the keyboard and turn them into a frequency per voice plus
// a single gate for the envelope.
package voice

import (
	"fmt"
	"strings"
)

const (
	// MaxVoices is the number of oscillators on the board.
	MaxVoices = 6
	// StackSize is the number of held keys Mono remembers.
	StackSize = 25

	DefaultPortamentoTime = 10
	DefaultSubVoices      = 3
	DefaultDetune         = 1.02
)

// Allocator is implemented by Mono, FatMono and Para. Every method is cheap
// and none of them blocks, they are called from the tick loop.
type Allocator interface {
	// Reset forgets all notes and silences every voice.
	Reset()
	// NoteOn and NoteOff take the time of the event in µs.
	NoteOn(note, velocity uint8, now uint32)
	NoteOff(note uint8, now uint32)
	// Tick advances anything that moves on its own, once per loop.
	Tick()
	// Gate reports whether any key is held.
	Gate() bool
	// Voices is the number of voices the allocator drives.
	Voices() int
	// Frequency is the unbent frequency of voice v in Hz, 0 for silence.
	Frequency(v int) float32
	Voice(v int) State
	// Dirty reports whether the frequencies changed since ClearDirty.
	Dirty() bool
	ClearDirty()
	// Velocity of the last note on.
	Velocity() uint8
}

// State describes one voice.
type State struct {
	Note uint8
	// Held is true while the key playing Note is down.
	Held bool
	// Sounding is true if the voice has a pitch at all. A voice can sound
	// without being held, when it rings out or doubles another note.
	Sounding bool
	// Since is when the key playing Note last went down or up.
	Since uint32
}

func (s State) String() string {
	if !s.Sounding {
		return "-"
	}
	if s.Held {
		return fmt.Sprintf("%d*", s.Note)
	}
	return fmt.Sprint(s.Note)
}

// Dump renders the state of every voice of a, for debug logs.
func Dump(a Allocator) string {
	var sb strings.Builder
	for v := 0; v < a.Voices(); v++ {
		if v > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%d:%v", v, a.Voice(v))
	}
	if a.Gate() {
		sb.WriteString(" gate")
	}
	return sb.String()
}

// Mode selects an allocator.
type Mode byte

const (
	ModeMono Mode = iota
	ModeFatMono
	ModePara
)

var modeNames = []string{
	ModeMono:    "mono",
	ModeFatMono: "fat",
	ModePara:    "para",
}

func (m Mode) String() string {
	if int(m) >= len(modeNames) {
		return fmt.Sprintf("Mode(%d)", m)
	}
	return modeNames[m]
}

func (m Mode) MarshalText() ([]byte, error) {
	if int(m) >= len(modeNames) {
		return nil, fmt.Errorf("unknown mode %d", m)
	}
	return []byte(modeNames[m]), nil
}

func (m *Mode) UnmarshalText(b []byte) error {
	for i, n := range modeNames {
		if strings.EqualFold(n, string(b)) {
			*m = Mode(i)
			return nil
		}
	}
	return fmt.Errorf("unknown mode %q, want one of %s", b, strings.Join(modeNames, ", "))
}

// New returns the allocator for a mode with its default settings. voices is
// only used by FatMono and Para.
func New(m Mode, voices int) Allocator {
	switch m {
	case ModeFatMono:
		return NewFatMono(voices)
	case ModePara:
		return NewPara(voices)
	default:
		return NewMono()
	}
}

func clampVoices(n int) int {
	return min(max(n, 1), MaxVoices)
}
