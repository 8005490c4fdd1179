package voice

import (
	"fmt"

	"github.com/pfcm/cvsynth/interp"
	"github.com/pfcm/cvsynth/osc"
)

// stack holds the keys that are down, most recent first.
type stack struct {
	notes [StackSize]uint8
	n     int
}

func (s *stack) find(note uint8) int {
	for i := 0; i < s.n; i++ {
		if s.notes[i] == note {
			return i
		}
	}
	return -1
}

// push puts note at the front, shifting everything else right. A note that is
// already held moves to the front instead of being stored twice. When the
// stack is full the oldest key falls off the end.
func (s *stack) push(note uint8) {
	if i := s.find(note); i >= 0 {
		s.remove(i)
	}
	if s.n < StackSize {
		s.n++
	}
	copy(s.notes[1:s.n], s.notes[:s.n-1])
	s.notes[0] = note
}

// remove drops the entry at i, shifting the rest left.
func (s *stack) remove(i int) {
	copy(s.notes[i:s.n-1], s.notes[i+1:s.n])
	s.n--
}

func (s *stack) top() (uint8, bool) {
	if s.n == 0 {
		return 0, false
	}
	return s.notes[0], true
}

// Mono plays the most recent key on a single voice. Releasing it falls back
// to the next most recent key still held.
type Mono struct {
	keys     stack
	note     uint8
	sounding bool
	velocity uint8
	since    uint32

	portamento bool
	glideTime  int
	from, to   float32
	step       int
	freq       float32

	dirty bool
}

func NewMono() *Mono {
	m := &Mono{glideTime: DefaultPortamentoTime}
	m.Reset()
	return m
}

func (m *Mono) String() string {
	return fmt.Sprintf("Mono(%v)", m.Held())
}

// SetPortamento turns the glide on or off. A glide takes steps+1 ticks.
// Turning it off or shortening it past the current step finishes a glide in
// progress on its target. A longer or shorter glide otherwise carries on from
// the current pitch with the new length.
func (m *Mono) SetPortamento(on bool, steps int) {
	steps = max(steps, 0)
	wasGliding := m.gliding()
	changed := steps != m.glideTime
	m.portamento = on
	m.glideTime = steps
	switch {
	case !wasGliding:
		m.endGlide()
	case !on || m.step > steps:
		m.freq = m.to
		m.dirty = true
		m.endGlide()
	case changed:
		m.from = m.freq
		m.step = 0
	}
}

func (m *Mono) Reset() {
	m.keys.n = 0
	m.sounding = false
	m.freq = 0
	m.endGlide()
	m.dirty = true
}

func (m *Mono) NoteOn(note, velocity uint8, now uint32) {
	m.velocity = velocity
	if m.Gate() && m.sounding && note == m.note {
		return
	}
	m.keys.push(note)
	m.play(note, now)
}

// NoteOff releases a key. If it was the one sounding, the next held key takes
// over. The last key keeps its pitch so the release can ring.
func (m *Mono) NoteOff(note uint8, now uint32) {
	i := m.keys.find(note)
	if i < 0 {
		return
	}
	m.keys.remove(i)
	if i != 0 {
		return
	}
	if next, ok := m.keys.top(); ok {
		m.play(next, now)
	} else {
		m.since = now
	}
}

// play makes note the sounding note, gliding to it from wherever the pitch is
// now if portamento is on.
func (m *Mono) play(note uint8, now uint32) {
	if m.sounding && note == m.note {
		return
	}
	target := osc.NoteFrequency(note)
	if m.portamento && m.sounding && m.glideTime > 0 {
		m.from, m.to = m.freq, target
		m.step = 0
	} else {
		m.freq = target
		m.to = target
		m.endGlide()
	}
	m.note = note
	m.sounding = true
	m.since = now
	m.dirty = true
}

func (m *Mono) gliding() bool {
	return m.step <= m.glideTime
}

func (m *Mono) endGlide() {
	m.step = m.glideTime + 1
}

func (m *Mono) Tick() {
	if !m.gliding() {
		return
	}
	m.step++
	m.freq = interp.Steps(m.from, m.to, m.step, m.glideTime+1)
	m.dirty = true
}

func (m *Mono) Gate() bool      { return m.keys.n > 0 }
func (m *Mono) Voices() int     { return 1 }
func (m *Mono) Dirty() bool     { return m.dirty }
func (m *Mono) Velocity() uint8 { return m.velocity }

// ClearDirty has no effect until a glide reaches its target.
func (m *Mono) ClearDirty() {
	if !m.gliding() {
		m.dirty = false
	}
}

func (m *Mono) Frequency(v int) float32 {
	if v != 0 || !m.sounding {
		return 0
	}
	return m.freq
}

func (m *Mono) Voice(v int) State {
	if v != 0 {
		return State{}
	}
	return State{
		Note:     m.note,
		Held:     m.Gate(),
		Sounding: m.sounding,
		Since:    m.since,
	}
}

// Held returns the keys that are down, most recent first.
func (m *Mono) Held() []uint8 {
	return append([]uint8(nil), m.keys.notes[:m.keys.n]...)
}

// FatMono plays the Mono note on several voices at once, optionally spread
// out in pitch around it.
type FatMono struct {
	Mono
	voices int
	detune bool
	ratio  float32
}

func NewFatMono(voices int) *FatMono {
	f := &FatMono{
		Mono:   *NewMono(),
		voices: clampVoices(voices),
		ratio:  DefaultDetune,
	}
	return f
}

func (f *FatMono) String() string {
	return fmt.Sprintf("FatMono(%d, %v)", f.voices, f.Held())
}

// SetDetune spreads the voices in pitch. Voice 0 stays on the note, the others
// pair up above and below it, each pair a further ratio-1 away.
func (f *FatMono) SetDetune(on bool, ratio float32) {
	if on != f.detune || ratio != f.ratio {
		f.dirty = true
	}
	f.detune = on
	f.ratio = ratio
}

func (f *FatMono) Voices() int { return f.voices }

func (f *FatMono) Frequency(v int) float32 {
	if v < 0 || v >= f.voices {
		return 0
	}
	freq := f.Mono.Frequency(0)
	if !f.detune || v == 0 {
		return freq
	}
	k := float32((v + 1) / 2)
	offset := k * (f.ratio - 1)
	if v%2 == 1 {
		return freq * (1 + offset)
	}
	return freq * (1 - offset)
}

func (f *FatMono) Voice(v int) State {
	if v < 0 || v >= f.voices {
		return State{}
	}
	return f.Mono.Voice(0)
}
