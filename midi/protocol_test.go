package midi

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	gomidi "gitlab.com/gomidi/midi/v2"
)

func feedAll(p *Parser, bs ...byte) []Message {
	var out []Message
	for _, b := range bs {
		if msg, ok := p.Feed(b); ok {
			out = append(out, msg)
		}
	}
	return out
}

func TestParserFeed(t *testing.T) {
	for _, c := range []struct {
		name string
		in   []byte
		out  []Message
	}{{
		name: "note on",
		in:   []byte{0x90, 0x40, 0x7F},
		out:  []Message{{CV1Type: CV1NoteOn, Channel: 0, Note: 0x40, Velocity: 0x7F}},
	}, {
		name: "note on with zero velocity",
		in:   []byte{0x90, 0x40, 0x00},
		out:  []Message{{CV1Type: CV1NoteOff, Channel: 0, Note: 0x40}},
	}, {
		name: "running status",
		in:   []byte{0x91, 0x3C, 0x64, 0x40, 0x64},
		out: []Message{
			{CV1Type: CV1NoteOn, Channel: 1, Note: 0x3C, Velocity: 0x64},
			{CV1Type: CV1NoteOn, Channel: 1, Note: 0x40, Velocity: 0x64},
		},
	}, {
		name: "running status survives a zero velocity note on",
		in:   []byte{0x92, 0x3C, 0x64, 0x3C, 0x00, 0x3E, 0x10},
		out: []Message{
			{CV1Type: CV1NoteOn, Channel: 2, Note: 0x3C, Velocity: 0x64},
			{CV1Type: CV1NoteOff, Channel: 2, Note: 0x3C},
			{CV1Type: CV1NoteOn, Channel: 2, Note: 0x3E, Velocity: 0x10},
		},
	}, {
		name: "pitch bend is little endian",
		in:   []byte{0xE3, 0x01, 0x40},
		out:  []Message{{CV1Type: CV1PitchBend, Channel: 3, PitchBend: 0x2001}},
	}, {
		name: "program change takes one byte",
		in:   []byte{0xC5, 0x07, 0x08},
		out: []Message{
			{CV1Type: CV1ProgramChange, Channel: 5, Note: 7},
			{CV1Type: CV1ProgramChange, Channel: 5, Note: 8},
		},
	}, {
		name: "channel pressure",
		in:   []byte{0xD0, 0x33},
		out:  []Message{{CV1Type: CV1ChannelPressure, Velocity: 0x33}},
	}, {
		name: "poly pressure",
		in:   []byte{0xA4, 0x3C, 0x22},
		out:  []Message{{CV1Type: CV1PolyPressure, Channel: 4, Note: 0x3C, Velocity: 0x22}},
	}, {
		name: "data without status is dropped",
		in:   []byte{0x40, 0x7F, 0x90, 0x40, 0x7F},
		out:  []Message{{CV1Type: CV1NoteOn, Note: 0x40, Velocity: 0x7F}},
	}, {
		name: "new status discards partial message",
		in:   []byte{0x90, 0x40, 0xB0, 0x01, 0x7F},
		out:  []Message{{CV1Type: CV1ControlChange, Note: 1, Velocity: 0x7F}},
	}, {
		name: "sysex is swallowed",
		in:   []byte{0xF0, 0x7E, 0x40, 0x01, 0xF7, 0x40, 0x90, 0x40, 0x01},
		out:  []Message{{CV1Type: CV1NoteOn, Note: 0x40, Velocity: 0x01}},
	}, {
		name: "system common cancels running status",
		in:   []byte{0x90, 0x40, 0x7F, 0xF2, 0x00, 0x10, 0x41, 0x7F},
		out:  []Message{{CV1Type: CV1NoteOn, Note: 0x40, Velocity: 0x7F}},
	}, {
		name: "realtime bytes are transparent",
		in:   []byte{0x90, 0xF8, 0x40, 0xFE, 0x7F, 0xF8, 0x41, 0x7F},
		out: []Message{
			{CV1Type: CV1NoteOn, Note: 0x40, Velocity: 0x7F},
			{CV1Type: CV1NoteOn, Note: 0x41, Velocity: 0x7F},
		},
	}, {
		name: "tune request takes no data",
		in:   []byte{0xF6, 0x40, 0x40},
		out:  nil,
	}} {
		var p Parser
		got := feedAll(&p, c.in...)
		if diff := cmp.Diff(c.out, got); diff != "" {
			t.Errorf("%s: Feed(% x) mismatch (-want +got):\n%s", c.name, c.in, diff)
		}
	}
}

func TestParserGomidiMessages(t *testing.T) {
	for _, c := range []struct {
		in  gomidi.Message
		out Message
	}{
		{gomidi.NoteOn(9, 60, 100), Message{CV1Type: CV1NoteOn, Channel: 9, Note: 60, Velocity: 100}},
		{gomidi.NoteOff(9, 60), Message{CV1Type: CV1NoteOff, Channel: 9, Note: 60}},
		{gomidi.ControlChange(15, 1, 64), Message{CV1Type: CV1ControlChange, Channel: 15, Note: 1, Velocity: 64}},
		{gomidi.ProgramChange(2, 5), Message{CV1Type: CV1ProgramChange, Channel: 2, Note: 5}},
		{gomidi.Pitchbend(0, 0), Message{CV1Type: CV1PitchBend, PitchBend: PitchBendCenter}},
		{gomidi.Pitchbend(0, -8192), Message{CV1Type: CV1PitchBend, PitchBend: 0}},
		{gomidi.Pitchbend(0, 8191), Message{CV1Type: CV1PitchBend, PitchBend: MaxPitchBend}},
	} {
		var p Parser
		got := feedAll(&p, c.in.Bytes()...)
		if len(got) != 1 || got[0] != c.out {
			t.Errorf("Feed(%v) = %v, want: %v", c.in, got, c.out)
		}
	}
}

func TestParserReset(t *testing.T) {
	var p Parser
	feedAll(&p, 0x90, 0x40)
	p.Reset()
	if got := feedAll(&p, 0x7F, 0x41, 0x7F); len(got) != 0 {
		t.Errorf("after Reset got %v, want nothing", got)
	}
}

func TestFilterMatch(t *testing.T) {
	f := NewFilter(WithChannel(0), WithMinNote(21), WithoutCV1Type(CV1ProgramChange))
	for _, c := range []struct {
		msg  Message
		want bool
	}{
		{Message{CV1Type: CV1NoteOn, Channel: 0, Note: 60}, true},
		{Message{CV1Type: CV1NoteOn, Channel: 1, Note: 60}, false},
		{Message{CV1Type: CV1NoteOn, Channel: 0, Note: 20}, false},
		{Message{CV1Type: CV1NoteOff, Channel: 0, Note: 20}, false},
		{Message{CV1Type: CV1NoteOff, Channel: 0, Note: 21}, true},
		{Message{CV1Type: CV1PitchBend, Channel: 0}, true},
		{Message{CV1Type: CV1ControlChange, Channel: 0, Note: 1}, true},
		{Message{CV1Type: CV1ProgramChange, Channel: 0}, false},
	} {
		if got := f.Match(c.msg); got != c.want {
			t.Errorf("Match(%v) = %v, want: %v", c.msg, got, c.want)
		}
	}
	if !NewFilter().Match(Message{CV1Type: CV1NoteOn, Channel: 15}) {
		t.Errorf("default filter should match every channel")
	}
}
