package osc

import (
	"math"
	"testing"
)

func near(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestNoteFrequency(t *testing.T) {
	for _, c := range []struct {
		note uint8
		freq float64
	}{
		{69, 440},
		{57, 220},
		{81, 880},
		{60, 261.6256},
		{21, 27.5},
	} {
		got := NoteFrequency(c.note)
		if !near(float64(got), c.freq, 1e-3) {
			t.Errorf("NoteFrequency(%d) = %v, want: %v", c.note, got, c.freq)
		}
	}
}

func TestBend(t *testing.T) {
	const f = 440
	for _, semis := range []int{1, 2, 12} {
		if got := Bend(f, 0x2000, semis); got != f {
			t.Errorf("Bend(%v, center, %d) = %v, want: %v", f, semis, got, f)
		}
		up := float64(Bend(f, 0x3FFF, semis))
		down := float64(Bend(f, 0x0000, semis))
		wantUp := f * math.Pow(2, float64(semis)/12)
		wantDown := f * math.Pow(2, -float64(semis)/12)
		if !near(up, wantUp, 1e-3) {
			t.Errorf("Bend(%v, max, %d) = %v, want: %v", f, semis, up, wantUp)
		}
		if !near(down, wantDown, 1e-3) {
			t.Errorf("Bend(%v, min, %d) = %v, want: %v", f, semis, down, wantDown)
		}
		// symmetric in semitones
		if !near(up/f, f/down, 1e-5) {
			t.Errorf("Bend(%d semitones) not symmetric: up %v, down %v", semis, up, down)
		}
	}
	if got, want := Bend(f, 0xFFFF, 2), Bend(f, 0x3FFF, 2); got != want {
		t.Errorf("Bend out of range = %v, want clamped: %v", got, want)
	}
}

func TestAmplitude(t *testing.T) {
	for _, c := range []struct {
		freq, max float32
		out       int
	}{
		{0, 5000, 0},
		{2500, 5000, 625},
		{5000, 5000, 1250},
		{9000, 5000, 1250},
		{100, 0, 0},
	} {
		if got := Amplitude(c.freq, c.max, AmpFull); got != c.out {
			t.Errorf("Amplitude(%v, %v) = %d, want: %d", c.freq, c.max, got, c.out)
		}
	}
}

func TestClampFrequency(t *testing.T) {
	if got := ClampFrequency(6000, 5000); got != 5000 {
		t.Errorf("ClampFrequency(6000, 5000) = %v, want: 5000", got)
	}
	if got := ClampFrequency(-3, 5000); got != 0 {
		t.Errorf("ClampFrequency(-3, 5000) = %v, want: 0", got)
	}
	if got := ClampFrequency(440, 5000); got != 440 {
		t.Errorf("ClampFrequency(440, 5000) = %v, want: 440", got)
	}
}

func TestSquare(t *testing.T) {
	s := NewSquare(8)
	if got := s.Next(); got != 0 {
		t.Errorf("stopped Next() = %v, want: 0", got)
	}
	// 2 Hz at 8 samples per second is 4 samples per period.
	s.SetFrequency(2)
	want := []float32{1, 1, -1, -1, 1, 1, -1, -1}
	for i, w := range want {
		if got := s.Next(); got != w {
			t.Errorf("sample %d = %v, want: %v", i, got, w)
		}
	}
}
