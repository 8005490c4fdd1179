// package io provides host side output stages for the controller: an audio
// monitor that plays the voices through the default sound device, and a text
// log of everything written.
package io

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"sync"

	"github.com/gen2brain/malgo"

	"github.com/pfcm/cvsynth/fix"
	"github.com/pfcm/cvsynth/osc"
	"github.com/pfcm/cvsynth/voice"
)

// DefaultSampleRate is used by Play when the monitor was built with none.
const DefaultSampleRate = 44100

// Monitor stands in for the analog voice card: each voice is a square wave
// DCO, summed and scaled by the envelope. Setters may be called from the
// control loop while Render runs on the audio callback.
type Monitor struct {
	samplerate int
	resolution int

	mu    sync.Mutex
	dcos  [voice.MaxVoices]*osc.Square
	freqs [voice.MaxVoices]float32
	gate  bool
	level fix.Level
	fmod  fix.Level
}

// NewMonitor returns a silent monitor. resolution is the number of envelope
// levels the controller writes.
func NewMonitor(samplerate, resolution int) *Monitor {
	if samplerate <= 0 {
		samplerate = DefaultSampleRate
	}
	m := &Monitor{
		samplerate: samplerate,
		resolution: max(resolution, 2),
	}
	for i := range m.dcos {
		m.dcos[i] = osc.NewSquare(float32(samplerate))
	}
	return m
}

func (m *Monitor) String() string {
	return fmt.Sprintf("Monitor(%dHz)", m.samplerate)
}

func (m *Monitor) SetVoice(v int, freq float32, _ int) {
	if v < 0 || v >= len(m.dcos) {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.freqs[v] == freq {
		return
	}
	m.freqs[v] = freq
	m.dcos[v].SetFrequency(freq)
}

func (m *Monitor) SetGate(on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gate = on
}

func (m *Monitor) SetEnvelope(level int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.level = fix.Level(level)
}

// SetFilterMod is recorded but not audible, there's no filter model.
func (m *Monitor) SetFilterMod(level int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fmod = fix.Level(level)
}

// Levels returns the last envelope and filter mod levels written.
func (m *Monitor) Levels() (env, fmod int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int(m.level), int(m.fmod)
}

// Render fills out with mono samples in [-1, 1].
func (m *Monitor) Render(out []float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	gain := fix.Float[float32](m.level, m.resolution) / voice.MaxVoices
	for i := range out {
		var s float32
		for _, d := range m.dcos {
			s += d.Next()
		}
		out[i] = s * gain
	}
}

// Play sends the monitor to the default playback device until ctx is
// cancelled.
func (m *Monitor) Play(ctx context.Context) error {
	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(msg string) {
		fmt.Fprint(os.Stderr, msg)
	})
	if err != nil {
		return fmt.Errorf("initialising audio: %w", err)
	}
	defer func() {
		mctx.Uninit()
		mctx.Free()
	}()
	cfg := malgo.DefaultDeviceConfig(malgo.Playback)
	cfg.Playback.Format = malgo.FormatF32
	cfg.Playback.Channels = 1
	cfg.SampleRate = uint32(m.samplerate)

	buf := make([]float32, 4096)
	send := func(out, _ []byte, framecount uint32) {
		if framecount == 0 {
			return
		}
		if int(framecount) > len(buf) {
			buf = make([]float32, framecount)
		}
		samples := buf[:framecount]
		m.Render(samples)
		o := out[:0]
		for _, f := range samples {
			o = binary.LittleEndian.AppendUint32(o, math.Float32bits(f))
		}
	}

	device, err := malgo.InitDevice(mctx.Context, cfg, malgo.DeviceCallbacks{
		Data: send,
	})
	if err != nil {
		return fmt.Errorf("opening playback device: %w", err)
	}
	defer device.Uninit()
	if err := device.Start(); err != nil {
		return fmt.Errorf("starting playback: %w", err)
	}
	<-ctx.Done()
	return nil
}
