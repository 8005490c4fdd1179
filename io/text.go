package io

import (
	"fmt"
	goio "io"
	"sync"

	"github.com/pfcm/cvsynth/voice"
)

// Printer writes a line for every output that changes. The envelope is
// written every tick, so it is only printed when asked for.
type Printer struct {
	w            goio.Writer
	showEnvelope bool

	mu    sync.Mutex
	freqs [voice.MaxVoices]float32
	amps  [voice.MaxVoices]int
	gate  bool
	env   int
	fmod  int

	// started makes the first write of each output print.
	started seen
}

type seen struct {
	voice           [voice.MaxVoices]bool
	gate, env, fmod bool
}

func NewPrinter(w goio.Writer, showEnvelope bool) *Printer {
	return &Printer{w: w, showEnvelope: showEnvelope}
}

func (p *Printer) String() string { return "Printer" }

func (p *Printer) SetVoice(v int, freq float32, amp int) {
	if v < 0 || v >= len(p.freqs) {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started.voice[v] && p.freqs[v] == freq && p.amps[v] == amp {
		return
	}
	p.started.voice[v] = true
	p.freqs[v], p.amps[v] = freq, amp
	if freq <= 0 {
		fmt.Fprintf(p.w, "voice %d: off\n", v)
		return
	}
	fmt.Fprintf(p.w, "voice %d: %.2fHz amp %d\n", v, freq, amp)
}

func (p *Printer) SetGate(on bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started.gate && p.gate == on {
		return
	}
	p.started.gate = true
	p.gate = on
	if on {
		fmt.Fprintln(p.w, "gate on")
	} else {
		fmt.Fprintln(p.w, "gate off")
	}
}

func (p *Printer) SetEnvelope(level int) {
	if !p.showEnvelope {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started.env && p.env == level {
		return
	}
	p.started.env = true
	p.env = level
	fmt.Fprintf(p.w, "env %d\n", level)
}

func (p *Printer) SetFilterMod(level int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started.fmod && p.fmod == level {
		return
	}
	p.started.fmod = true
	p.fmod = level
	fmt.Fprintf(p.w, "filter %d\n", level)
}
