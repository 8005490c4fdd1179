// package midi handles midi.
package midi

// ChannelMask selects channels, one bit per channel.
type ChannelMask uint16

// AllChannels selects every channel.
const AllChannels ChannelMask = 0xFFFF

// Channel returns a mask selecting only ch.
func Channel(ch byte) ChannelMask {
	return 1 << (ch & 0xF)
}

// Filter decides which messages are passed on to the voice allocator.
type Filter struct {
	channels ChannelMask
	cv1Types [7]bool
	minNote  byte
}

// NewFilter returns a filter that lets everything through, adjusted by the
// provided options.
func NewFilter(opts ...FilterOption) Filter {
	f := Filter{
		channels: AllChannels,
	}
	for i := range f.cv1Types {
		f.cv1Types[i] = true
	}
	for _, o := range opts {
		o(&f)
	}
	return f
}

// Match reports whether msg passes the filter.
func (f Filter) Match(msg Message) bool {
	if Channel(msg.Channel)&f.channels == 0 {
		return false
	}
	if !f.cv1Types[int(msg.CV1Type&0x7)] {
		return false
	}
	switch msg.CV1Type {
	case CV1NoteOn, CV1NoteOff:
		return msg.Note >= f.minNote
	}
	return true
}

// FilterOption adjusts a Filter made by NewFilter.
type FilterOption func(f *Filter)

// WithChannelMask only accepts messages on the channels set in cm.
func WithChannelMask(cm ChannelMask) FilterOption {
	return func(f *Filter) { f.channels = cm }
}

// WithChannel only accepts messages on a single channel (0-15).
func WithChannel(ch byte) FilterOption {
	return WithChannelMask(Channel(ch))
}

// WithoutCV1Type drops every message of type t.
func WithoutCV1Type(t CV1MessageType) FilterOption {
	return func(f *Filter) {
		f.cv1Types[int(t&0x7)] = false
	}
}

// WithMinNote drops note on and note off messages below n. Very low notes can
// leave the DCOs in a stuck state.
func WithMinNote(n byte) FilterOption {
	return func(f *Filter) { f.minNote = n }
}
