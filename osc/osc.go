// package osc computes the control values that set the pitch and level of
// the analog oscillators (DCOs).
package osc

import (
	"math"
)

const (
	// A4 is the tuning reference, MIDI note 69.
	A4 = 440.0
	// AmpFull is the PWM wrap of the amplitude compensation outputs.
	AmpFull = 1250

	bendCenter = 0x2000
	bendMax    = 0x3FFF
)

// NoteFrequency returns the equal tempered frequency of a MIDI note in Hz.
func NoteFrequency(note uint8) float32 {
	return float32(math.Pow(2, (float64(note)-69)/12) * A4)
}

// Bend applies a 14 bit MIDI pitch bend to freq. The extremes of the wheel
// shift by exactly the given number of semitones in either direction and the
// center leaves freq untouched. Values above 0x3FFF are clamped.
func Bend(freq float32, bend uint16, semitones int) float32 {
	bend = min(bend, bendMax)
	if bend == bendCenter || semitones == 0 {
		return freq
	}
	// The wheel has one more step below the center than above it, so each
	// half gets its own divisor to make the end points symmetric.
	var amount float64
	if bend < bendCenter {
		amount = -float64(bendCenter-bend) / bendCenter
	} else {
		amount = float64(bend-bendCenter) / (bendMax - bendCenter)
	}
	return float32(float64(freq) * math.Pow(2, amount*float64(semitones)/12))
}

// ClampFrequency limits freq to the usable range of the DCOs.
func ClampFrequency(freq, maxFreq float32) float32 {
	if freq < 0 {
		return 0
	}
	if maxFreq > 0 && freq > maxFreq {
		return maxFreq
	}
	return freq
}

// Amplitude returns the amplitude compensation level for a DCO running at
// freq. The integrator's output falls with frequency, so the level rises
// linearly with it, reaching full at maxFreq.
func Amplitude(freq, maxFreq float32, full int) int {
	if maxFreq <= 0 || freq <= 0 {
		return 0
	}
	amp := int(float32(full) * freq / maxFreq)
	return min(max(amp, 0), full)
}
