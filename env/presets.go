package env

import (
	"time"

	"github.com/pfcm/cvsynth/fix"
)

// Preset timings and levels for the soft, hold and ring switches. Sustain
// levels are for a 12 bit output.
const (
	AttackShort  = 3500 * time.Microsecond
	AttackLong   = 210 * time.Millisecond
	DecayShort   = 500 * time.Millisecond
	DecayMid     = 1500 * time.Millisecond
	ReleaseShort = 500 * time.Millisecond

	DecayLongMin   = 7500 * time.Millisecond
	DecayLongMax   = 23 * time.Second
	ReleaseLongMin = 5 * time.Second
	ReleaseLongMax = 30 * time.Second

	SustainOn  fix.Level = 3600
	SustainOff fix.Level = 0
)

// Preset returns the envelope selected by the three panel switches:
//   - soft lengthens the attack,
//   - hold sustains while a key is down,
//   - ring lets the note ring, with a long decay without hold or a long
//     release with it.
//
// decayLong and releaseLong are the lengths of the ringing stages, usually
// from RingLength.
func Preset(soft, hold, ring bool, decayLong, releaseLong time.Duration) Params {
	p := Params{
		Attack:  AttackShort,
		Decay:   DecayShort,
		Sustain: SustainOff,
		Release: ReleaseShort,
	}
	if soft {
		p.Attack = AttackLong
	}
	switch {
	case hold:
		p.Sustain = SustainOn
		if ring {
			p.Release = releaseLong
		}
	case ring:
		p.Decay = decayLong
	case !soft:
		// No switches at all: a plucky mid decay.
		p.Decay = DecayMid
	}
	return p
}

// RingLength maps the position of the ring length knob, from 0 to 1, onto the
// long decay and release times.
func RingLength(knob float64) (decayLong, releaseLong time.Duration) {
	knob = fix.Clamp(knob, 0, 1)
	lerp := func(a, b time.Duration) time.Duration {
		// whole 100ms steps, like the knob is read.
		const step = 100 * time.Millisecond
		d := a + time.Duration(knob*float64(b-a))
		return d / step * step
	}
	return lerp(DecayLongMin, DecayLongMax), lerp(ReleaseLongMin, ReleaseLongMax)
}
