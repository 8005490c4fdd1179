// package config holds the settings the panel switches and knobs would
// otherwise provide, stored as JSON.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pfcm/cvsynth/env"
	"github.com/pfcm/cvsynth/fix"
	"github.com/pfcm/cvsynth/midi"
	"github.com/pfcm/cvsynth/voice"
)

const (
	// LowestNote is the lowest note the DCOs track reliably, A0.
	LowestNote = 21
	// DefaultBendRange is the pitch bend range in semitones.
	DefaultBendRange = 2
	// DefaultMaxFrequency is the top of the DCOs' range in Hz.
	DefaultMaxFrequency = 5000
)

// BendMode chooses when the pitch wheel reaches the oscillators.
type BendMode byte

const (
	// BendContinuous follows the wheel while notes sound.
	BendContinuous BendMode = iota
	// BendOnNoteOn uses the position of the wheel when the note started.
	BendOnNoteOn
)

var bendModeNames = []string{
	BendContinuous: "continuous",
	BendOnNoteOn:   "noteon",
}

func (b BendMode) String() string {
	if int(b) >= len(bendModeNames) {
		return fmt.Sprintf("BendMode(%d)", b)
	}
	return bendModeNames[b]
}

func (b BendMode) MarshalText() ([]byte, error) {
	if int(b) >= len(bendModeNames) {
		return nil, fmt.Errorf("unknown bend mode %d", b)
	}
	return []byte(bendModeNames[b]), nil
}

func (b *BendMode) UnmarshalText(text []byte) error {
	for i, n := range bendModeNames {
		if strings.EqualFold(n, string(text)) {
			*b = BendMode(i)
			return nil
		}
	}
	return fmt.Errorf("unknown bend mode %q, want one of %s", text, strings.Join(bendModeNames, ", "))
}

// Duration is a time.Duration written as e.g. "1.5s".
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Envelope selects the ADSR settings, either from the soft/hold/ring switches
// or set by hand.
type Envelope struct {
	Soft bool `json:"soft"`
	Hold bool `json:"hold"`
	Ring bool `json:"ring"`
	// RingLength is the position of the ring length knob, 0 to 1.
	RingLength  float64 `json:"ringLength"`
	ResetAttack bool    `json:"resetAttack,omitempty"`
	// Manual replaces the switches when set.
	Manual *ManualEnvelope `json:"manual,omitempty"`

	AttackAlpha float64 `json:"attackAlpha,omitempty"`
	DecayBeta   float64 `json:"decayBeta,omitempty"`
}

type ManualEnvelope struct {
	Attack  Duration `json:"attack"`
	Decay   Duration `json:"decay"`
	Sustain int      `json:"sustain"`
	Release Duration `json:"release"`
}

// Params returns the envelope settings for the ADSR.
func (e Envelope) Params() env.Params {
	if m := e.Manual; m != nil {
		return env.Params{
			Attack:  time.Duration(m.Attack),
			Decay:   time.Duration(m.Decay),
			Sustain: fix.Level(m.Sustain),
			Release: time.Duration(m.Release),
		}
	}
	dl, rl := env.RingLength(e.RingLength)
	return env.Preset(e.Soft, e.Hold, e.Ring, dl, rl)
}

// Config is everything the controller can be told.
type Config struct {
	Mode voice.Mode `json:"mode"`
	// Voices is the number of oscillators fitted, used by Para.
	Voices int `json:"voices"`
	// SubVoices is the number of voices FatMono stacks up.
	SubVoices int `json:"subVoices"`

	// Channels to listen on, 0 to 15. Empty means all of them.
	Channels []int `json:"channels,omitempty"`
	MinNote  int   `json:"minNote"`

	Portamento     bool `json:"portamento"`
	PortamentoTime int  `json:"portamentoTime"`

	Detune      bool    `json:"detune"`
	DetuneRatio float32 `json:"detuneRatio"`

	Solo bool       `json:"solo"`
	Fill voice.Fill `json:"fill"`

	BendMode  BendMode `json:"bendMode"`
	BendRange int      `json:"bendRange"`

	// KeyboardTracking and VelocityTracking open the filter with pitch and
	// velocity, on top of the mod wheel.
	KeyboardTracking bool `json:"kbTracking"`
	VelocityTracking bool `json:"veloTracking"`

	MaxFrequency float32 `json:"maxFrequency"`
	// Resolution is the number of DAC levels of the envelope and filter
	// outputs.
	Resolution int `json:"resolution"`

	Envelope Envelope `json:"envelope"`
}

// Default returns the settings of a freshly flashed board.
func Default() *Config {
	return &Config{
		Mode:           voice.ModeMono,
		Voices:         voice.MaxVoices,
		SubVoices:      voice.DefaultSubVoices,
		MinNote:        LowestNote,
		PortamentoTime: voice.DefaultPortamentoTime,
		DetuneRatio:    voice.DefaultDetune,
		Fill:           voice.FillRoundRobin,
		BendMode:       BendContinuous,
		BendRange:      DefaultBendRange,
		MaxFrequency:   DefaultMaxFrequency,
		Resolution:     env.DefaultResolution,
		Envelope: Envelope{
			RingLength:  0.5,
			AttackAlpha: env.DefaultAttackAlpha,
			DecayBeta:   env.DefaultDecayBeta,
		},
	}
}

// Clamp pulls every setting into its valid range. Nothing is ever rejected.
func (c *Config) Clamp() {
	d := Default()
	if c.Mode > voice.ModePara {
		c.Mode = d.Mode
	}
	c.Voices = fix.Clamp(c.Voices, 1, voice.MaxVoices)
	c.SubVoices = fix.Clamp(c.SubVoices, 1, c.Voices)

	var chans []int
	for _, ch := range c.Channels {
		if ch >= 0 && ch < 16 {
			chans = append(chans, ch)
		}
	}
	c.Channels = chans
	c.MinNote = fix.Clamp(c.MinNote, 0, 127)

	c.PortamentoTime = fix.Clamp(c.PortamentoTime, 0, 1000)
	c.DetuneRatio = fix.Clamp(c.DetuneRatio, 1, 1.5)
	if c.Fill > voice.FillNone {
		c.Fill = d.Fill
	}
	if c.BendMode > BendOnNoteOn {
		c.BendMode = d.BendMode
	}
	c.BendRange = fix.Clamp(c.BendRange, 0, 24)
	if c.MaxFrequency <= 0 {
		c.MaxFrequency = d.MaxFrequency
	}
	c.MaxFrequency = min(c.MaxFrequency, 20000)
	c.Resolution = fix.Clamp(c.Resolution, 2, 1<<16)

	e := &c.Envelope
	e.RingLength = fix.Clamp(e.RingLength, 0, 1)
	if e.AttackAlpha <= 0 || e.AttackAlpha >= 1 {
		e.AttackAlpha = d.Envelope.AttackAlpha
	}
	if e.DecayBeta <= 0 || e.DecayBeta >= 1 {
		e.DecayBeta = d.Envelope.DecayBeta
	}
	if m := e.Manual; m != nil {
		m.Attack = max(m.Attack, 0)
		m.Decay = max(m.Decay, 0)
		m.Release = max(m.Release, 0)
		m.Sustain = fix.Clamp(m.Sustain, 0, c.Resolution-1)
	}
}

// ChannelMask returns the channels to listen on.
func (c *Config) ChannelMask() midi.ChannelMask {
	if len(c.Channels) == 0 {
		return midi.AllChannels
	}
	var m midi.ChannelMask
	for _, ch := range c.Channels {
		m |= midi.Channel(byte(ch))
	}
	return m
}

// Filter returns the MIDI filter for the configured channels and note floor.
func (c *Config) Filter() midi.Filter {
	return midi.NewFilter(
		midi.WithChannelMask(c.ChannelMask()),
		midi.WithMinNote(byte(c.MinNote)),
	)
}

// DefaultPath returns ~/.config/cvsynth/config.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding config dir: %w", err)
	}
	return filepath.Join(home, ".config", "cvsynth", "config.json"), nil
}

// Load reads the config at path. A missing file gives the defaults, as does
// any setting the file leaves out.
func Load(path string) (*Config, error) {
	c := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	c.Clamp()
	return c, nil
}

// Save writes the config to path, creating its directory if needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
