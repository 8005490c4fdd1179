// command midimon checks that midi is working: it prints every message the
// controller would see from an input port.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/pfcm/cvsynth/internal/buffer"
	"github.com/pfcm/cvsynth/internal/cli"
	"github.com/pfcm/cvsynth/internal/port"
	"github.com/pfcm/cvsynth/midi"
)

var (
	portFlag    = flag.String("port", "", "midi input port, defaults to the first one")
	channelFlag = flag.Int("channel", -1, "only print this channel, 0 to 15")
	minNoteFlag = flag.Int("min-note", 0, "drop notes below this one")
	rawFlag     = flag.Bool("raw", false, "also print the bytes as they arrive")
)

func main() {
	flag.Parse()

	var opts []midi.FilterOption
	if ch := *channelFlag; ch >= 0 {
		if ch > 15 {
			log.Fatalf("channel %d out of range", ch)
		}
		opts = append(opts, midi.WithChannel(byte(ch)))
	}
	if *minNoteFlag > 0 {
		opts = append(opts, midi.WithMinNote(byte(min(*minNoteFlag, 127))))
	}
	filter := midi.NewFilter(opts...)

	in, err := port.Find(*portFlag)
	if err != nil {
		log.Fatal(err)
	}
	ring := buffer.NewRing(4096)
	stop, err := port.Listen(in, ring)
	if err != nil {
		log.Fatal(err)
	}
	defer stop()
	fmt.Fprintf(os.Stderr, "Listening to %v\n", in)

	ctx, cancel := cli.InterruptContext()
	defer cancel()
	tick := time.NewTicker(time.Millisecond)
	defer tick.Stop()
	var p midi.Parser
	for {
		select {
		case <-ctx.Done():
			if n := ring.Dropped(); n > 0 {
				log.Printf("dropped %d bytes", n)
			}
			log.Println("all done")
			return
		case <-tick.C:
		}
		for {
			b, ok := ring.Next()
			if !ok {
				break
			}
			if *rawFlag {
				fmt.Printf("%02x ", b)
			}
			msg, ok := p.Feed(b)
			if !ok {
				continue
			}
			if *rawFlag {
				fmt.Println()
			}
			if filter.Match(msg) {
				fmt.Println(msg)
			}
		}
	}
}
