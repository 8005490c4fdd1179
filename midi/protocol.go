package midi

import "fmt"

// CV1MessageType is the type of a 1.0 Channel Voice message. It is also the
// high 4 bits of the status byte.
type CV1MessageType byte

const (
	CV1NoteOff = CV1MessageType(0x8 | byte(iota))
	CV1NoteOn
	CV1PolyPressure
	CV1ControlChange
	CV1ProgramChange
	CV1ChannelPressure
	CV1PitchBend
)

// cv1System is the high nibble shared by all system common and realtime
// status bytes. It never appears in a Message.
const cv1System CV1MessageType = 0xF

func (t CV1MessageType) String() string {
	switch t {
	case CV1NoteOff:
		return "NoteOff"
	case CV1NoteOn:
		return "NoteOn"
	case CV1PolyPressure:
		return "PolyPressure"
	case CV1ControlChange:
		return "ControlChange"
	case CV1ProgramChange:
		return "ProgramChange"
	case CV1ChannelPressure:
		return "ChannelPressure"
	case CV1PitchBend:
		return "PitchBend"
	}
	return fmt.Sprintf("CV1MessageType(%#x)", byte(t))
}

const (
	// PitchBendCenter is the value of an unbent pitch wheel.
	PitchBendCenter uint16 = 0x2000
	// MaxPitchBend is the largest 14 bit pitch bend value.
	MaxPitchBend uint16 = 0x3FFF
)

// Message is a decoded channel voice message.
type Message struct {
	CV1Type CV1MessageType
	Channel byte
	// MIDI note for note on/note off/poly pressure, but also
	// index for control change and program for program change.
	Note      byte
	Velocity  byte // for note {on, off}, {poly,channel} pressure, cc value.
	PitchBend uint16
}

func (m Message) String() string {
	switch m.CV1Type {
	case CV1NoteOff, CV1NoteOn:
		return fmt.Sprintf("%v(ch=%d, note=%d, vel=%d)", m.CV1Type, m.Channel, m.Note, m.Velocity)
	case CV1PolyPressure:
		return fmt.Sprintf("%v(ch=%d, note=%d, pressure=%d)", m.CV1Type, m.Channel, m.Note, m.Velocity)
	case CV1ControlChange:
		return fmt.Sprintf("%v(ch=%d, cc=%d, value=%d)", m.CV1Type, m.Channel, m.Note, m.Velocity)
	case CV1ProgramChange:
		return fmt.Sprintf("%v(ch=%d, program=%d)", m.CV1Type, m.Channel, m.Note)
	case CV1ChannelPressure:
		return fmt.Sprintf("%v(ch=%d, pressure=%d)", m.CV1Type, m.Channel, m.Velocity)
	case CV1PitchBend:
		return fmt.Sprintf("%v(ch=%d, bend=%#04x)", m.CV1Type, m.Channel, m.PitchBend)
	}
	return fmt.Sprintf("%v(ch=%d)", m.CV1Type, m.Channel)
}

// skipData marks a SysEx in progress: every data byte is discarded until the
// next status byte.
const skipData = -1

// Parser turns a MIDI 1.0 byte stream into Messages. The zero value is ready
// to use and is waiting for a status byte.
type Parser struct {
	status byte // running status, 0 when there is none
	need   int
	have   int
	data   [2]byte
}

// Reset discards any running status and partially collected message.
func (p *Parser) Reset() {
	*p = Parser{}
}

// Feed consumes a single byte. It returns a message and true whenever the byte
// completes one. Data bytes that arrive without a status byte are dropped.
func (p *Parser) Feed(b byte) (Message, bool) {
	if b >= 0xF8 {
		// Realtime messages can be interleaved anywhere, including in the
		// middle of another message, and leave everything alone.
		return Message{}, false
	}
	if b&0x80 != 0 {
		p.setStatus(b)
		return Message{}, false
	}
	if p.status == 0 || p.need == skipData || p.need == 0 {
		return Message{}, false
	}
	p.data[p.have] = b
	p.have++
	if p.have < p.need {
		return Message{}, false
	}
	p.have = 0
	if CV1MessageType(p.status>>4) == cv1System {
		// System common messages don't establish running status, and
		// none of them are surfaced.
		p.status = 0
		return Message{}, false
	}
	return p.message(), true
}

func (p *Parser) setStatus(b byte) {
	p.status = b
	p.have = 0
	switch CV1MessageType(b >> 4) {
	case CV1NoteOff, CV1NoteOn, CV1PolyPressure, CV1ControlChange, CV1PitchBend:
		p.need = 2
	case CV1ProgramChange, CV1ChannelPressure:
		p.need = 1
	default:
		switch b {
		case 0xF0:
			p.need = skipData
		case 0xF1, 0xF3:
			p.need = 1
		case 0xF2:
			p.need = 2
		default:
			// Tune request, end of exclusive and the undefined ones.
			p.status = 0
			p.need = 0
		}
	}
}

func (p *Parser) message() Message {
	msg := Message{
		CV1Type: CV1MessageType(p.status >> 4),
		Channel: p.status & 0xF,
	}
	switch msg.CV1Type {
	case CV1NoteOff, CV1NoteOn, CV1PolyPressure, CV1ControlChange:
		msg.Note = p.data[0]
		msg.Velocity = p.data[1]
		if msg.CV1Type == CV1NoteOn && msg.Velocity == 0 {
			msg.CV1Type = CV1NoteOff
		}
	case CV1ProgramChange:
		msg.Note = p.data[0]
	case CV1ChannelPressure:
		msg.Velocity = p.data[0]
	case CV1PitchBend:
		msg.PitchBend = uint16(p.data[1])<<7 | uint16(p.data[0])
	}
	return msg
}
