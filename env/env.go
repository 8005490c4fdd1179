// package env provides envelope generators.
package env

import (
	"fmt"
	"time"

	"github.com/pfcm/cvsynth/fix"
)

// Phase is the stage an envelope is in.
type Phase byte

const (
	Idle Phase = iota
	Attack
	Decay
	Sustain
	Release
)

func (p Phase) String() string {
	if int(p) >= len(phaseNames) {
		return "?"
	}
	return phaseNames[p]
}

var phaseNames = []string{
	Idle:    "x",
	Attack:  "A",
	Decay:   "D",
	Sustain: "S",
	Release: "R",
}

const (
	// LUTSize is the number of time steps in the lookup tables, which is
	// the time resolution of every phase.
	LUTSize = 1024

	// DefaultAttackAlpha varies between 0.9 (steep curve) and 0.9995
	// (straight line).
	DefaultAttackAlpha = 0.995
	// DefaultDecayBeta fits a LUTSize of 1024.
	DefaultDecayBeta = 0.972
	// DefaultResolution suits a 12 bit DAC.
	DefaultResolution = 4096
)

// Params are the settings of an ADSR. Sustain is a level between 0 and the
// resolution - 1, anything outside is clamped.
type Params struct {
	Attack  time.Duration
	Decay   time.Duration
	Sustain fix.Level
	Release time.Duration
}

// ADSR is an attack-decay-sustain-release envelope driven by two triggers
// rather than a gate: TriggerOn starts the attack and TriggerOff the release.
// Triggers nest, so the release only starts once every TriggerOn has been
// matched by a TriggerOff.
//
// All times are microsecond timestamps from a free running clock that is
// allowed to wrap around.
type ADSR struct {
	res          int
	attackTable  [LUTSize]fix.Level
	decayTable   [LUTSize]fix.Level
	alpha, beta  float64
	attack       uint32 // µs
	decay        uint32
	sustain      fix.Level
	release      uint32
	resetAttack  bool
	pressed      int
	phase        Phase
	tOn, tOff    uint32
	attackStart  fix.Level
	releaseStart fix.Level
	out          fix.Level
}

// NewADSR builds the lookup tables for the given vertical resolution (e.g. 4096
// for a 12 bit DAC) and curve coefficients. The envelope starts out with
// 300ms attack, decay and release and half level sustain.
func NewADSR(resolution int, alpha, beta float64) *ADSR {
	a := &ADSR{
		res:   max(resolution, 2),
		alpha: alpha,
		beta:  beta,
	}
	a.buildTables()
	a.SetParams(Params{
		Attack:  300 * time.Millisecond,
		Decay:   300 * time.Millisecond,
		Sustain: fix.Level(a.res / 2),
		Release: 300 * time.Millisecond,
	})
	return a
}

func (a *ADSR) String() string {
	return fmt.Sprintf("ADSR(%dus,%dus,%d,%dus)", a.attack, a.decay, a.sustain, a.release)
}

// buildTables fills the attack table with a curve rising towards full scale
// and the decay table with an exponential fall, then stretches both so that
// their end points land exactly on 0 and resolution - 1.
func (a *ADSR) buildTables() {
	top := float64(a.res - 1)
	var att, dec [LUTSize]float64
	att[0] = 0
	dec[0] = top
	for i := 0; i < LUTSize-1; i++ {
		att[i+1] = (1-a.alpha)*top + a.alpha*att[i]
		dec[i+1] = a.beta * dec[i]
	}
	for i := range att {
		a.attackTable[i] = normalise(att[i], att[0], att[LUTSize-1], top)
		a.decayTable[i] = normalise(dec[i], dec[LUTSize-1], dec[0], top)
	}
}

// normalise maps v from [lo, hi] onto [0, top], rounding to the nearest level.
func normalise(v, lo, hi, top float64) fix.Level {
	if hi == lo {
		return 0
	}
	return fix.Level((v-lo)/(hi-lo)*top + 0.5)
}

// Resolution returns the number of output levels.
func (a *ADSR) Resolution() int { return a.res }

// SetParams updates the timings and sustain level. It takes effect from the next
// Sample, in whatever phase the envelope is.
func (a *ADSR) SetParams(p Params) {
	a.attack = micros(p.Attack)
	a.decay = micros(p.Decay)
	a.sustain = fix.Clamp(p.Sustain, 0, fix.Level(a.res-1))
	a.release = micros(p.Release)
}

// Params returns the current settings.
func (a *ADSR) Params() Params {
	return Params{
		Attack:  time.Duration(a.attack) * time.Microsecond,
		Decay:   time.Duration(a.decay) * time.Microsecond,
		Sustain: a.sustain,
		Release: time.Duration(a.release) * time.Microsecond,
	}
}

func micros(d time.Duration) uint32 {
	us := d.Microseconds()
	if us < 0 {
		return 0
	}
	// Half the clock range, so elapsed times stay unambiguous across a
	// wraparound.
	const limit = 1 << 31
	return uint32(min(us, limit))
}

// SetResetAttack chooses where a new attack starts: at zero if reset is true,
// otherwise at the current output so retriggering doesn't click.
func (a *ADSR) SetResetAttack(reset bool) {
	a.resetAttack = reset
}

// TriggerOn registers a press. Only the first of overlapping presses starts
// the attack.
func (a *ADSR) TriggerOn(now uint32) {
	a.pressed++
	if a.pressed > 1 {
		return
	}
	start := a.Sample(now)
	if a.resetAttack {
		start = 0
	}
	a.attackStart = start
	a.tOn = now
	a.phase = Attack
}

// TriggerOff registers a release. Once every press has been released the
// envelope captures its current level and starts the release from there.
// Extra releases are ignored.
func (a *ADSR) TriggerOff(now uint32) {
	if a.pressed == 0 {
		return
	}
	a.pressed--
	if a.pressed > 0 {
		return
	}
	a.releaseStart = a.Sample(now)
	a.tOff = now
	a.phase = Release
}

// Active reports whether any press is being held.
func (a *ADSR) Active() bool {
	return a.pressed >= 1
}

// Phase returns the phase the envelope is in at time now.
func (a *ADSR) Phase(now uint32) Phase {
	a.Sample(now)
	return a.phase
}

// Sample returns the output level at time now.
func (a *ADSR) Sample(now uint32) fix.Level {
	top := fix.Level(a.res - 1)
	switch a.phase {
	case Sustain:
		// Held without looking at the clock again, so a note can be held
		// for longer than the clock takes to wrap.
		a.out = a.sustain
	case Attack, Decay:
		// unsigned difference, correct across a clock wraparound.
		delta := now - a.tOn
		switch {
		case delta < a.attack:
			a.phase = Attack
			v := a.attackTable[index(delta, a.attack)]
			a.out = fix.Map(v, 0, top, a.attackStart, top)
		case delta-a.attack < a.decay:
			a.phase = Decay
			v := a.decayTable[index(delta-a.attack, a.decay)]
			a.out = fix.Map(v, 0, top, a.sustain, top)
		default:
			a.phase = Sustain
			a.out = a.sustain
		}
	case Release:
		delta := now - a.tOff
		if delta < a.release {
			v := a.decayTable[index(delta, a.release)]
			a.out = fix.Map(v, 0, top, 0, a.releaseStart)
		} else {
			a.phase = Idle
			a.out = 0
		}
	default:
		a.out = 0
	}
	return a.out
}

// index returns the table position for elapsed time delta of a phase lasting
// total. delta must be less than total.
func index(delta, total uint32) int {
	return int(uint64(delta) * LUTSize / uint64(total))
}

// TableKind selects one of the lookup tables.
type TableKind byte

const (
	AttackTable TableKind = iota
	DecayTable
)

// Table returns a copy of a lookup table.
func (a *ADSR) Table(k TableKind) []fix.Level {
	t := a.decayTable
	if k == AttackTable {
		t = a.attackTable
	}
	return append([]fix.Level(nil), t[:]...)
}
