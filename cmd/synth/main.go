// command synth runs the controller on this machine: MIDI comes from a
// gomidi input port and the outputs go to the sound card, the terminal or
// both.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
	"golang.org/x/sync/errgroup"

	"github.com/pfcm/cvsynth"
	"github.com/pfcm/cvsynth/config"
	"github.com/pfcm/cvsynth/internal/buffer"
	"github.com/pfcm/cvsynth/internal/cli"
	"github.com/pfcm/cvsynth/internal/port"
	"github.com/pfcm/cvsynth/io"
)

var (
	configFlag  = flag.String("config", "", "config file, defaults to ~/.config/cvsynth/config.json")
	portFlag    = flag.String("port", "", "midi input port, defaults to the first one")
	portsFlag   = flag.Bool("ports", false, "list the midi input ports and exit")
	modeFlag    = flag.String("mode", "", "overrides the configured mode: mono, fat or para")
	monitorFlag = flag.Bool("monitor", true, "play the voices through the default sound device")
	printFlag   = flag.Bool("print", false, "print every output change instead of showing the status panel")
	envFlag     = flag.Bool("print-env", false, "with -print, also print the envelope")
	verboseFlag = flag.Bool("v", false, "log every message and the resulting voices")
	tickFlag    = flag.Duration("tick", time.Millisecond, "control loop period")
	saveFlag    = flag.Bool("save", false, "write the config, with any flags applied, and exit")
	profileFlag = flag.Bool("profile", false, "whether to write pprof profiles to the current working directory")
)

func main() {
	flag.Parse()

	if *portsFlag {
		for _, n := range port.Names() {
			fmt.Println(n)
		}
		return
	}

	path := *configFlag
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			log.Fatal(err)
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatal(err)
	}
	if *modeFlag != "" {
		if err := cfg.Mode.UnmarshalText([]byte(*modeFlag)); err != nil {
			log.Fatal(err)
		}
	}
	if *saveFlag {
		if err := cfg.Save(path); err != nil {
			log.Fatal(err)
		}
		fmt.Fprintf(os.Stderr, "Wrote %s\n", path)
		return
	}

	if *profileFlag {
		finish, err := cli.StartProfiles(".")
		if err != nil {
			log.Fatalf("Starting profiling: %v", err)
		}
		defer func() {
			if err := finish(); err != nil {
				log.Fatalf("Finishing profiles: %v", err)
			}
		}()
	}

	in, err := port.Find(*portFlag)
	if err != nil {
		log.Fatal(err)
	}
	// About a second of back to back MIDI.
	ring := buffer.NewRing(4096)
	stop, err := port.Listen(in, ring)
	if err != nil {
		log.Fatal(err)
	}
	defer stop()
	fmt.Fprintf(os.Stderr, "Listening to %v\n", in)

	var outs cvsynth.Tee
	var mon *io.Monitor
	if *monitorFlag {
		mon = io.NewMonitor(io.DefaultSampleRate, cfg.Resolution)
		outs = append(outs, mon)
	}
	if *printFlag {
		outs = append(outs, io.NewPrinter(os.Stdout, *envFlag))
	}
	var opts []cvsynth.Option
	if *verboseFlag {
		opts = append(opts, cvsynth.WithLogger(log.New(os.Stderr, "", log.Lmicroseconds)))
	}
	c := cvsynth.New(cfg, ring, outs, opts...)

	ctx, cancel := cli.InterruptContext()
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)
	if mon != nil {
		g.Go(func() error {
			return mon.Play(ctx)
		})
	}
	edits := make(chan edit, 8)
	var p *tea.Program
	if !*printFlag {
		p = tea.NewProgram(newModel(edits, path))
		g.Go(func() error {
			defer cancel()
			_, err := p.Run()
			return err
		})
		g.Go(func() error {
			<-ctx.Done()
			p.Quit()
			return nil
		})
	}
	g.Go(func() error {
		return run(ctx, c, cfg, ring, edits, p)
	})
	if err := g.Wait(); err != nil {
		log.Fatal(err)
	}
}

// run ticks the controller until ctx is done. The controller and cfg are
// only ever touched from here. With a program, it is sent the status every
// 100ms and edits from it are applied.
func run(ctx context.Context, c *cvsynth.Controller, cfg *config.Config, ring *buffer.Ring, edits <-chan edit, p *tea.Program) error {
	t0 := time.Now()
	tick := time.NewTicker(*tickFlag)
	defer tick.Stop()
	show := time.NewTicker(100 * time.Millisecond)
	defer show.Stop()
	var note string
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick.C:
			c.Tick(uint32(time.Since(t0).Microseconds()))
		case e := <-edits:
			note = e(cfg)
			c.Apply(cfg)
		case <-show.C:
			if p != nil {
				p.Send(statusMsg{line: statusLine(c, ring, time.Since(t0)), cfg: *cfg, note: note})
				note = ""
			}
		}
	}
}
