// package cvsynth turns a stream of MIDI bytes into the control signals of an
// analog synthesizer: a frequency and level per oscillator, a gate, an
// envelope and a filter modulation level.
package cvsynth

import (
	"fmt"
	"log"

	"github.com/pfcm/cvsynth/config"
	"github.com/pfcm/cvsynth/env"
	"github.com/pfcm/cvsynth/midi"
	"github.com/pfcm/cvsynth/osc"
	"github.com/pfcm/cvsynth/voice"
)

// Source provides received MIDI bytes. Next must not block: ok is false once
// nothing more is waiting.
type Source interface {
	Next() (b byte, ok bool)
}

// Output is the hardware driven by the controller.
type Output interface {
	// SetVoice sets the frequency (Hz) and amplitude compensation level of
	// an oscillator. A silent voice gets 0 for both.
	SetVoice(v int, freq float32, amp int)
	SetGate(on bool)
	// SetEnvelope and SetFilterMod write DAC levels.
	SetEnvelope(level int)
	SetFilterMod(level int)
}

const (
	ccModWheel    = 1
	ccAllSoundOff = 120
	ccAllNotesOff = 123
)

// Controller owns the parser, the voice allocator and the envelope, and
// moves everything along once per Tick. It is not safe for concurrent use.
type Controller struct {
	cfg    config.Config
	src    Source
	out    Output
	log    *log.Logger
	parser midi.Parser
	filter midi.Filter

	mode  voice.Mode
	alloc voice.Allocator
	env   *env.ADSR
	fmod  FilterMod

	bend, latched uint16
	bendChanged   bool
	modWheel      uint8
	gate          bool

	// force makes the next Tick write every output.
	force bool
}

type Option func(*Controller)

// WithLogger traces every handled message and the resulting voices.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// New returns a controller reading from src and writing to out, set up from
// cfg. The first Tick writes every output.
func New(cfg *config.Config, src Source, out Output, opts ...Option) *Controller {
	c := &Controller{
		src:  src,
		out:  out,
		bend: midi.PitchBendCenter,
	}
	for _, o := range opts {
		o(c)
	}
	c.latched = c.bend
	c.cfg = *cfg
	c.cfg.Clamp()
	c.buildEnvelope()
	c.SetMode(c.cfg.Mode)
	return c
}

func (c *Controller) String() string {
	return fmt.Sprintf("Controller(%v, %v)", c.mode, c.env)
}

func (c *Controller) logf(format string, args ...any) {
	if c.log != nil {
		c.log.Printf(format, args...)
	}
}

func (c *Controller) buildEnvelope() {
	e := c.cfg.Envelope
	c.env = env.NewADSR(c.cfg.Resolution, e.AttackAlpha, e.DecayBeta)
}

// configure pushes the settings that don't need a new allocator or envelope.
func (c *Controller) configure() {
	c.filter = c.cfg.Filter()
	c.env.SetParams(c.cfg.Envelope.Params())
	c.env.SetResetAttack(c.cfg.Envelope.ResetAttack)
	if c.cfg.BendMode == config.BendContinuous {
		c.latched = c.bend
	}
	c.fmod = FilterMod{
		KeyboardTracking: c.cfg.KeyboardTracking,
		VelocityTracking: c.cfg.VelocityTracking,
		Resolution:       c.cfg.Resolution,
	}
	if c.alloc == nil {
		return
	}
	if a, ok := c.alloc.(interface{ SetPortamento(bool, int) }); ok {
		a.SetPortamento(c.cfg.Portamento, c.cfg.PortamentoTime)
	}
	if a, ok := c.alloc.(interface{ SetDetune(bool, float32) }); ok {
		a.SetDetune(c.cfg.Detune, c.cfg.DetuneRatio)
	}
	if a, ok := c.alloc.(*voice.Para); ok {
		a.SetFill(c.cfg.Fill)
		a.SetSolo(c.cfg.Solo)
	}
	c.force = true
}

// Apply takes a new configuration. The allocator is only replaced when the
// mode or its number of voices changed.
func (c *Controller) Apply(cfg *config.Config) {
	old := c.cfg
	c.cfg = *cfg
	c.cfg.Clamp()
	e, oe := c.cfg.Envelope, old.Envelope
	if c.cfg.Resolution != old.Resolution || e.AttackAlpha != oe.AttackAlpha || e.DecayBeta != oe.DecayBeta {
		c.buildEnvelope()
	}
	switch {
	case c.cfg.Mode != c.mode,
		c.cfg.Mode == voice.ModePara && c.cfg.Voices != old.Voices,
		c.cfg.Mode == voice.ModeFatMono && c.cfg.SubVoices != old.SubVoices:
		c.SetMode(c.cfg.Mode)
	default:
		c.configure()
	}
}

// SetMode switches to a new allocator, dropping every note.
func (c *Controller) SetMode(m voice.Mode) {
	voices := c.cfg.Voices
	if m == voice.ModeFatMono {
		voices = c.cfg.SubVoices
	}
	c.mode = m
	c.cfg.Mode = m
	c.alloc = voice.New(m, voices)
	c.configure()
	c.logf("mode %v: %v", m, c.alloc)
}

func (c *Controller) Mode() voice.Mode           { return c.mode }
func (c *Controller) Allocator() voice.Allocator { return c.alloc }
func (c *Controller) Envelope() *env.ADSR        { return c.env }

// Tick drains the source, then brings every output up to date for time now
// (µs, free running).
func (c *Controller) Tick(now uint32) {
	for {
		b, ok := c.src.Next()
		if !ok {
			break
		}
		if msg, ok := c.parser.Feed(b); ok {
			c.Handle(msg, now)
		}
	}
	c.alloc.Tick()
	if c.force || c.alloc.Dirty() || c.bendChanged {
		c.writeVoices()
		c.alloc.ClearDirty()
		c.bendChanged = false
	}

	gate := c.alloc.Gate()
	if gate && !c.env.Active() {
		c.env.TriggerOn(now)
	} else if !gate && c.env.Active() {
		c.env.TriggerOff(now)
	}
	if gate != c.gate || c.force {
		c.out.SetGate(gate)
		c.gate = gate
	}
	if c.force {
		c.updateFilterMod()
	}
	c.force = false
	c.out.SetEnvelope(int(c.env.Sample(now)))
}

// Handle acts on a single message, if it gets through the channel and note
// filter.
func (c *Controller) Handle(msg midi.Message, now uint32) {
	if !c.filter.Match(msg) {
		return
	}
	switch msg.CV1Type {
	case midi.CV1NoteOn:
		if msg.Velocity == 0 {
			c.alloc.NoteOff(msg.Note, now)
			break
		}
		c.alloc.NoteOn(msg.Note, msg.Velocity, now)
		if c.cfg.BendMode == config.BendOnNoteOn && c.latched != c.bend {
			c.latched = c.bend
			c.bendChanged = true
		}
		c.updateFilterMod()
	case midi.CV1NoteOff:
		c.alloc.NoteOff(msg.Note, now)
	case midi.CV1PitchBend:
		if msg.PitchBend == c.bend {
			return
		}
		c.bend = msg.PitchBend
		if c.cfg.BendMode == config.BendContinuous {
			c.latched = c.bend
			c.bendChanged = true
		}
	case midi.CV1ControlChange:
		switch msg.Note {
		case ccModWheel:
			c.modWheel = msg.Velocity
			c.updateFilterMod()
		case ccAllSoundOff, ccAllNotesOff:
			c.alloc.Reset()
		default:
			c.logf("ignoring %v", msg)
			return
		}
	default:
		return
	}
	c.logf("%v: %s", msg, voice.Dump(c.alloc))
}

// writeVoices sends the frequency of every voice, bent and clamped to the
// range of the oscillators. A forced pass also silences the voices the
// allocator doesn't use.
func (c *Controller) writeVoices() {
	n := c.alloc.Voices()
	for v := 0; v < voice.MaxVoices; v++ {
		if v >= n {
			if c.force {
				c.out.SetVoice(v, 0, 0)
			}
			continue
		}
		freq := c.alloc.Frequency(v)
		if freq <= 0 {
			c.out.SetVoice(v, 0, 0)
			continue
		}
		freq = osc.Bend(freq, c.latched, c.cfg.BendRange)
		freq = osc.ClampFrequency(freq, c.cfg.MaxFrequency)
		c.out.SetVoice(v, freq, osc.Amplitude(freq, c.cfg.MaxFrequency, osc.AmpFull))
	}
}

func (c *Controller) updateFilterMod() {
	level := c.fmod.Level(c.alloc.Frequency(0), c.alloc.Velocity(), c.modWheel)
	c.out.SetFilterMod(level)
}
