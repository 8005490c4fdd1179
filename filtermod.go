package cvsynth

import (
	"github.com/pfcm/cvsynth/fix"
)

const (
	// Keyboard tracking follows voice 0 between these frequencies: below
	// it adds nothing, above it opens the filter fully.
	KeyTrackMin    = 55
	KeyTrackMax    = 1760
	KeyTrackFactor = 2.3
	// VelocityFactor scales note velocity into filter levels, so a full
	// velocity leaves headroom for the other sources.
	VelocityFactor = 24
)

// FilterMod is the set of sources summed into the filter cutoff output.
type FilterMod struct {
	KeyboardTracking bool
	VelocityTracking bool
	Resolution       int
}

// Level returns the filter output for a voice 0 frequency, the last note on
// velocity and the mod wheel position. The sum is clamped to the output range.
func (f FilterMod) Level(freq float32, velocity, modWheel uint8) int {
	top := f.Resolution - 1
	level := 0
	if f.KeyboardTracking {
		hz := fix.Clamp(int(freq), KeyTrackMin, KeyTrackMax)
		level = int(float64(fix.Map(hz, KeyTrackMin, KeyTrackMax, 0, top)) * KeyTrackFactor)
	}
	if f.VelocityTracking {
		level += int(velocity) * VelocityFactor
	}
	level += fix.Map(int(min(modWheel, 127)), 0, 127, 0, top)
	return fix.Clamp(level, 0, top)
}
