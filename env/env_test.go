package env

import (
	"testing"
	"time"

	"github.com/pfcm/cvsynth/fix"
)

func newTestADSR(p Params) *ADSR {
	a := NewADSR(DefaultResolution, DefaultAttackAlpha, DefaultDecayBeta)
	a.SetParams(p)
	return a
}

func TestTables(t *testing.T) {
	a := NewADSR(DefaultResolution, DefaultAttackAlpha, DefaultDecayBeta)
	top := fix.Level(DefaultResolution - 1)

	att := a.Table(AttackTable)
	if att[0] != 0 || att[len(att)-1] != top {
		t.Errorf("attack table ends = %d, %d, want: 0, %d", att[0], att[len(att)-1], top)
	}
	dec := a.Table(DecayTable)
	if dec[0] != top || dec[len(dec)-1] != 0 {
		t.Errorf("decay table ends = %d, %d, want: %d, 0", dec[0], dec[len(dec)-1], top)
	}
	for i := 1; i < LUTSize; i++ {
		if att[i] < att[i-1] {
			t.Fatalf("attack table falls at %d: %d -> %d", i, att[i-1], att[i])
		}
		if dec[i] > dec[i-1] {
			t.Fatalf("decay table rises at %d: %d -> %d", i, dec[i-1], dec[i])
		}
	}
	// copies, not views
	att[0] = 1
	if a.Table(AttackTable)[0] != 0 {
		t.Errorf("Table returned a view of the internal table")
	}
}

func TestADSRPhases(t *testing.T) {
	for _, p := range []Params{
		{Attack: 10 * time.Millisecond, Decay: 20 * time.Millisecond, Sustain: 2000, Release: 30 * time.Millisecond},
		{Attack: AttackShort, Decay: DecayMid, Sustain: SustainOn, Release: ReleaseShort},
		{Attack: AttackLong, Decay: 23 * time.Second, Sustain: 0, Release: 30 * time.Second},
		{Attack: time.Millisecond, Decay: time.Millisecond, Sustain: 4095, Release: time.Millisecond},
	} {
		a := newTestADSR(p)
		attack := uint32(p.Attack.Microseconds())
		decay := uint32(p.Decay.Microseconds())
		release := uint32(p.Release.Microseconds())
		const t0 = 1000

		a.TriggerOn(t0)
		if got := a.Sample(t0); got != 0 {
			t.Errorf("%v: Sample(0) = %d, want: 0", a, got)
		}
		if got := a.Phase(t0 + attack/2); got != Attack {
			t.Errorf("%v: Phase(attack/2) = %v, want: %v", a, got, Attack)
		}
		if got := a.Sample(t0 + attack); got != DefaultResolution-1 {
			t.Errorf("%v: Sample(attack) = %d, want: %d", a, got, DefaultResolution-1)
		}
		if got := a.Phase(t0 + attack + decay/2); got != Decay {
			t.Errorf("%v: Phase(attack+decay/2) = %v, want: %v", a, got, Decay)
		}
		if got := a.Sample(t0 + attack + decay/2); got < p.Sustain || got > DefaultResolution-1 {
			t.Errorf("%v: Sample(decay/2) = %d, want between %d and %d", a, got, p.Sustain, DefaultResolution-1)
		}
		tSus := t0 + attack + decay
		if got := a.Sample(tSus); got != p.Sustain {
			t.Errorf("%v: Sample(attack+decay) = %d, want: %d", a, got, p.Sustain)
		}
		if got := a.Phase(tSus + 5_000_000); got != Sustain {
			t.Errorf("%v: Phase(held) = %v, want: %v", a, got, Sustain)
		}

		tOff := tSus + 5_000_000
		a.TriggerOff(tOff)
		if a.Active() {
			t.Errorf("%v: Active() after release = true", a)
		}
		if got := a.Sample(tOff); got != p.Sustain {
			t.Errorf("%v: Sample(release start) = %d, want: %d", a, got, p.Sustain)
		}
		if got := a.Sample(tOff + release); got != 0 {
			t.Errorf("%v: Sample(release) = %d, want: 0", a, got)
		}
		if got := a.Phase(tOff + release); got != Idle {
			t.Errorf("%v: Phase(after release) = %v, want: %v", a, got, Idle)
		}
	}
}

func TestADSRNestedTriggers(t *testing.T) {
	a := newTestADSR(Params{Attack: 10 * time.Millisecond, Decay: 10 * time.Millisecond, Sustain: 1000, Release: 10 * time.Millisecond})
	a.TriggerOn(0)
	a.TriggerOn(5000)
	// second press doesn't restart the attack
	if got, want := a.Sample(10000), fix.Level(DefaultResolution-1); got != want {
		t.Errorf("Sample(attack) = %d, want: %d", got, want)
	}
	a.TriggerOff(30000)
	if !a.Active() {
		t.Errorf("Active() with one press left = false")
	}
	if got := a.Phase(30000); got != Sustain {
		t.Errorf("Phase() with one press left = %v, want: %v", got, Sustain)
	}
	a.TriggerOff(40000)
	if got := a.Phase(40000); got != Release {
		t.Errorf("Phase() after last release = %v, want: %v", got, Release)
	}
	// extra releases don't underflow
	a.TriggerOff(41000)
	a.TriggerOff(42000)
	a.TriggerOn(100000)
	if !a.Active() {
		t.Errorf("Active() after press = false")
	}
	if got := a.Phase(100000); got != Attack {
		t.Errorf("Phase() after press = %v, want: %v", got, Attack)
	}
}

func TestADSRRetrigger(t *testing.T) {
	p := Params{Attack: 10 * time.Millisecond, Decay: 10 * time.Millisecond, Sustain: 3000, Release: 100 * time.Millisecond}
	for _, reset := range []bool{false, true} {
		a := newTestADSR(p)
		a.SetResetAttack(reset)
		a.TriggerOn(0)
		a.TriggerOff(30000)
		mid := uint32(50000)
		level := a.Sample(mid)
		if level <= 0 || level >= 3000 {
			t.Fatalf("reset=%v: release level = %d, want inside (0, 3000)", reset, level)
		}
		a.TriggerOn(mid)
		want := level
		if reset {
			want = 0
		}
		if got := a.Sample(mid); got != want {
			t.Errorf("reset=%v: Sample() at retrigger = %d, want: %d", reset, got, want)
		}
		if got := a.Sample(mid + 10000); got != DefaultResolution-1 {
			t.Errorf("reset=%v: Sample() at end of attack = %d, want: %d", reset, got, DefaultResolution-1)
		}
	}
}

func TestADSRWraparound(t *testing.T) {
	a := newTestADSR(Params{Attack: 10 * time.Millisecond, Decay: 10 * time.Millisecond, Sustain: 500, Release: 10 * time.Millisecond})
	t0 := ^uint32(0) - 4000
	a.TriggerOn(t0)
	if got := a.Phase(t0 + 5000); got != Attack {
		t.Errorf("Phase() across wrap = %v, want: %v", got, Attack)
	}
	if got := a.Sample(t0 + 10000); got != DefaultResolution-1 {
		t.Errorf("Sample(attack) across wrap = %d, want: %d", got, DefaultResolution-1)
	}
	if got := a.Sample(t0 + 20000); got != 500 {
		t.Errorf("Sample(sustain) across wrap = %d, want: 500", got)
	}
}

func TestSetParamsClamps(t *testing.T) {
	a := NewADSR(DefaultResolution, DefaultAttackAlpha, DefaultDecayBeta)
	for _, c := range []struct {
		in, want fix.Level
	}{
		{-10, 0},
		{0, 0},
		{2048, 2048},
		{4095, 4095},
		{9999, 4095},
	} {
		a.SetParams(Params{Sustain: c.in})
		if got := a.Params().Sustain; got != c.want {
			t.Errorf("SetParams(sustain %d): sustain = %d, want: %d", c.in, got, c.want)
		}
	}
	a.SetParams(Params{Attack: -time.Second, Decay: 1500 * time.Millisecond})
	if got := a.Params(); got.Attack != 0 || got.Decay != 1500*time.Millisecond {
		t.Errorf("Params() = %+v, want attack 0 and decay 1.5s", got)
	}
}

func TestPreset(t *testing.T) {
	const dl, rl = 10 * time.Second, 20 * time.Second
	for _, c := range []struct {
		soft, hold, ring bool
		want             Params
	}{
		{false, false, false, Params{AttackShort, DecayMid, SustainOff, ReleaseShort}},
		{true, false, false, Params{AttackLong, DecayShort, SustainOff, ReleaseShort}},
		{false, true, false, Params{AttackShort, DecayShort, SustainOn, ReleaseShort}},
		{false, false, true, Params{AttackShort, dl, SustainOff, ReleaseShort}},
		{false, true, true, Params{AttackShort, DecayShort, SustainOn, rl}},
		{true, true, false, Params{AttackLong, DecayShort, SustainOn, ReleaseShort}},
		{true, false, true, Params{AttackLong, dl, SustainOff, ReleaseShort}},
		{true, true, true, Params{AttackLong, DecayShort, SustainOn, rl}},
	} {
		got := Preset(c.soft, c.hold, c.ring, dl, rl)
		if got != c.want {
			t.Errorf("Preset(soft=%v, hold=%v, ring=%v) = %+v, want: %+v", c.soft, c.hold, c.ring, got, c.want)
		}
	}
}

func TestRingLength(t *testing.T) {
	for _, c := range []struct {
		knob       float64
		decay, rel time.Duration
	}{
		{-1, DecayLongMin, ReleaseLongMin},
		{0, DecayLongMin, ReleaseLongMin},
		{0.5, 15200 * time.Millisecond, 17500 * time.Millisecond},
		{1, DecayLongMax, ReleaseLongMax},
		{2, DecayLongMax, ReleaseLongMax},
	} {
		d, r := RingLength(c.knob)
		if d != c.decay || r != c.rel {
			t.Errorf("RingLength(%v) = %v, %v, want: %v, %v", c.knob, d, r, c.decay, c.rel)
		}
	}
}
