package osc

// Square models the square wave DCO at audio rate, for listening to the
// control outputs on a host machine. It is a phase accumulator over a two
// entry table, the way the hardware divides a clock.
type Square struct {
	tab        [2]float32
	phase      float32
	step       float32
	samplerate float32
}

// NewSquare returns a silent oscillator swinging between -1 and 1.
func NewSquare(samplerate float32) *Square {
	return &Square{
		tab:        [2]float32{1, -1},
		samplerate: samplerate,
	}
}

// SetFrequency changes the pitch, keeping the phase. 0 stops the oscillator.
func (s *Square) SetFrequency(freq float32) {
	if freq <= 0 || s.samplerate <= 0 {
		s.step = 0
		return
	}
	// table samples per second over output samples per second.
	s.step = float32(len(s.tab)) * freq / s.samplerate
}

// Next returns the next sample. A stopped oscillator returns 0.
func (s *Square) Next() float32 {
	if s.step == 0 {
		return 0
	}
	out := s.tab[int(s.phase)]
	s.phase += s.step
	for s.phase >= float32(len(s.tab)) {
		s.phase -= float32(len(s.tab))
	}
	return out
}
