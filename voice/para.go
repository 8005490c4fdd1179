package voice

import (
	"fmt"
	"strings"

	"github.com/pfcm/cvsynth/osc"
)

// Fill chooses what Para plays on voices that have no key of their own.
type Fill byte

const (
	// FillRoundRobin deals the held notes out over the free voices in turn,
	// so a single key plays in unison on every voice.
	FillRoundRobin Fill = iota
	// FillLatest doubles the most recent key on every free voice.
	FillLatest
	// FillNone leaves free voices silent.
	FillNone
)

var fillNames = []string{
	FillRoundRobin: "roundrobin",
	FillLatest:     "latest",
	FillNone:       "none",
}

func (f Fill) String() string {
	if int(f) >= len(fillNames) {
		return fmt.Sprintf("Fill(%d)", f)
	}
	return fillNames[f]
}

func (f Fill) MarshalText() ([]byte, error) {
	if int(f) >= len(fillNames) {
		return nil, fmt.Errorf("unknown fill %d", f)
	}
	return []byte(fillNames[f]), nil
}

func (f *Fill) UnmarshalText(b []byte) error {
	for i, n := range fillNames {
		if strings.EqualFold(n, string(b)) {
			*f = Fill(i)
			return nil
		}
	}
	return fmt.Errorf("unknown fill %q, want one of %s", b, strings.Join(fillNames, ", "))
}

// Para gives each held key its own voice, stealing the least recently used
// voice once they are all taken. All voices share one envelope.
type Para struct {
	voices   int
	notes    [MaxVoices]uint8
	held     [MaxVoices]bool
	sounding [MaxVoices]bool
	since    [MaxVoices]uint32
	// muted voices were released under solo and stay silent until the next
	// key goes down.
	muted [MaxVoices]bool

	// lru holds the voices with a key, least recently touched first.
	lru    [MaxVoices]int
	lruLen int

	fill     Fill
	solo     bool
	velocity uint8
	dirty    bool
}

func NewPara(voices int) *Para {
	p := &Para{voices: clampVoices(voices)}
	p.Reset()
	return p
}

func (p *Para) String() string {
	return fmt.Sprintf("Para(%d, %v)", p.voices, p.fill)
}

func (p *Para) SetFill(f Fill) {
	if f != p.fill {
		p.fill = f
		p.refill()
	}
}

// SetSolo turns on the solo submode: a key released while others are still
// held silences its voice, so only the last key rings out. Free voices are
// still filled on the next key.
func (p *Para) SetSolo(on bool) {
	p.solo = on
}

func (p *Para) Reset() {
	for v := range p.notes {
		p.notes[v] = 0
		p.held[v] = false
		p.sounding[v] = false
		p.since[v] = 0
		p.muted[v] = false
	}
	p.lruLen = 0
	p.dirty = true
}

func (p *Para) NoteOn(note, velocity uint8, now uint32) {
	p.velocity = velocity
	if p.find(note) >= 0 {
		return
	}
	if p.lruLen == 0 {
		// First key after all were released: drop the ringing chord.
		for v := range p.sounding {
			p.sounding[v] = false
		}
	}
	for v := range p.muted {
		p.muted[v] = false
	}
	v := p.freeVoice()
	if v < 0 {
		v = p.lru[0]
		p.lruRemove(v)
	}
	p.notes[v] = note
	p.held[v] = true
	p.sounding[v] = true
	p.since[v] = now
	p.lruAdd(v)
	p.refill()
	p.dirty = true
}

// NoteOff releases the voice holding note. Once the last key is up nothing is
// held any more, but every voice keeps its pitch so the release rings.
func (p *Para) NoteOff(note uint8, now uint32) {
	v := p.find(note)
	if v < 0 {
		return
	}
	p.held[v] = false
	p.since[v] = now
	p.lruRemove(v)
	if p.lruLen == 0 {
		return
	}
	if p.solo {
		p.sounding[v] = false
		p.muted[v] = true
	}
	p.refill()
	p.dirty = true
}

// find returns the voice holding note, or -1.
func (p *Para) find(note uint8) int {
	for v := 0; v < p.voices; v++ {
		if p.held[v] && p.notes[v] == note {
			return v
		}
	}
	return -1
}

func (p *Para) freeVoice() int {
	for v := 0; v < p.voices; v++ {
		if !p.held[v] {
			return v
		}
	}
	return -1
}

func (p *Para) lruAdd(v int) {
	p.lru[p.lruLen] = v
	p.lruLen++
}

// lruRemove takes v out of the order, keeping the others where they are.
func (p *Para) lruRemove(v int) {
	for i := 0; i < p.lruLen; i++ {
		if p.lru[i] != v {
			continue
		}
		copy(p.lru[i:p.lruLen-1], p.lru[i+1:p.lruLen])
		p.lruLen--
		return
	}
}

// refill gives the voices without a key something to play.
func (p *Para) refill() {
	if p.lruLen == 0 {
		return
	}
	// held notes in voice order
	var notes [MaxVoices]uint8
	n := 0
	for v := 0; v < p.voices; v++ {
		if p.held[v] {
			notes[n] = p.notes[v]
			n++
		}
	}
	latest := p.notes[p.lru[p.lruLen-1]]
	next := 0
	for v := 0; v < p.voices; v++ {
		if p.held[v] {
			continue
		}
		switch {
		case p.muted[v] || p.fill == FillNone:
			p.sounding[v] = false
		case p.fill == FillLatest:
			p.notes[v] = latest
			p.sounding[v] = true
		default:
			p.notes[v] = notes[next]
			p.sounding[v] = true
			next = (next + 1) % n
		}
	}
	p.dirty = true
}

func (p *Para) Tick()           {}
func (p *Para) Gate() bool      { return p.lruLen > 0 }
func (p *Para) Voices() int     { return p.voices }
func (p *Para) Dirty() bool     { return p.dirty }
func (p *Para) ClearDirty()     { p.dirty = false }
func (p *Para) Velocity() uint8 { return p.velocity }
func (p *Para) Fill() Fill      { return p.fill }

func (p *Para) Frequency(v int) float32 {
	if v < 0 || v >= p.voices || !p.sounding[v] {
		return 0
	}
	return osc.NoteFrequency(p.notes[v])
}

// Voice reports the note of a silent voice as 0.
func (p *Para) Voice(v int) State {
	if v < 0 || v >= p.voices {
		return State{}
	}
	if !p.sounding[v] {
		return State{Since: p.since[v]}
	}
	return State{
		Note:     p.notes[v],
		Held:     p.held[v],
		Sounding: p.sounding[v],
		Since:    p.since[v],
	}
}
