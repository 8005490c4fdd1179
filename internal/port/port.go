// package port connects gomidi input ports to the byte queue the controller
// reads from. Drivers register themselves by import, see cmd/synth.
package port

import (
	"fmt"
	"io"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// Names lists the input ports of the registered driver.
func Names() []string {
	var names []string
	for _, in := range gomidi.GetInPorts() {
		names = append(names, in.String())
	}
	return names
}

// Find returns the input port with the given name, or the first one if name
// is empty.
func Find(name string) (drivers.In, error) {
	if name != "" {
		in, err := gomidi.FindInPort(name)
		if err != nil {
			return nil, fmt.Errorf("finding midi port %q: %w", name, err)
		}
		return in, nil
	}
	ins := gomidi.GetInPorts()
	if len(ins) == 0 {
		return nil, fmt.Errorf("no midi input ports")
	}
	return ins[0], nil
}

// Listen copies every message arriving on in to w as raw bytes, until stop
// is called.
func Listen(in drivers.In, w io.Writer) (stop func(), err error) {
	stop, err = gomidi.ListenTo(in, Copy(w), gomidi.UseSysEx())
	if err != nil {
		return nil, fmt.Errorf("listening to %v: %w", in, err)
	}
	return stop, nil
}

// Copy returns a gomidi receiver writing messages to w. Write errors are
// dropped, the receiver runs on the driver's goroutine with no one to
// report to.
func Copy(w io.Writer) func(gomidi.Message, int32) {
	return func(msg gomidi.Message, _ int32) {
		w.Write(msg.Bytes())
	}
}
