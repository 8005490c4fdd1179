// show-env prints the envelope lookup tables, or the envelope a note of a
// given length would produce, mostly for checking curve shapes and presets.
package main

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/pfcm/cvsynth/config"
	"github.com/pfcm/cvsynth/env"
)

var (
	configFlag = flag.String("config", "", "config file to take the envelope from. Leave empty for the defaults")
	alphaFlag  = flag.Float64("alpha", 0, "attack curve coefficient, 0 < alpha < 1")
	betaFlag   = flag.Float64("beta", 0, "decay curve coefficient, 0 < beta < 1")
	resFlag    = flag.Int("resolution", 0, "number of output levels")
	softFlag   = flag.Bool("soft", false, "soft switch: long attack")
	holdFlag   = flag.Bool("hold", false, "hold switch: sustain")
	ringFlag   = flag.Bool("ring", false, "ring switch: long decay or release")
	lengthFlag = flag.Float64("ring-length", 0.5, "ring length knob, 0 to 1")
	stepFlag   = flag.Int("step", 32, "print every `n`th table entry")
	gateFlag   = flag.Duration("gate", time.Second, "how long the note is held, for curve")
	everyFlag  = flag.Duration("every", 50*time.Millisecond, "time between samples, for curve")
)

func main() {
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), help)
		fmt.Fprintln(flag.CommandLine.Output(), "\nOptional arguments:")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		fail("Need exactly one argument.")
	}
	cfg, err := loadConfig()
	if err != nil {
		fail(err.Error())
	}
	e := cfg.Envelope
	a := env.NewADSR(cfg.Resolution, e.AttackAlpha, e.DecayBeta)
	a.SetParams(e.Params())
	a.SetResetAttack(e.ResetAttack)

	w := tabwriter.NewWriter(os.Stdout, 11, 1, 1, ' ', 0)
	switch flag.Arg(0) {
	case "tables":
		showTables(w, a, max(*stepFlag, 1))
	case "curve":
		showCurve(w, a, *gateFlag, *everyFlag)
	default:
		fail(fmt.Sprintf("Unknown command %q.", flag.Arg(0)))
	}
	if err := w.Flush(); err != nil {
		fail(err.Error())
	}
}

// loadConfig reads the config, if any, then applies the flags that were
// actually set.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if *configFlag != "" {
		c, err := config.Load(*configFlag)
		if err != nil {
			return nil, err
		}
		cfg = c
	}
	e := &cfg.Envelope
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "alpha":
			e.AttackAlpha = *alphaFlag
		case "beta":
			e.DecayBeta = *betaFlag
		case "resolution":
			cfg.Resolution = *resFlag
		case "soft":
			e.Soft = *softFlag
		case "hold":
			e.Hold = *holdFlag
		case "ring":
			e.Ring = *ringFlag
		case "ring-length":
			e.RingLength = *lengthFlag
		}
		// The switches mean nothing to a hand set envelope.
		switch f.Name {
		case "soft", "hold", "ring", "ring-length":
			e.Manual = nil
		}
	})
	cfg.Clamp()
	return cfg, nil
}

func showTables(w *tabwriter.Writer, a *env.ADSR, step int) {
	att, dec := a.Table(env.AttackTable), a.Table(env.DecayTable)
	fmt.Fprintln(w, "index\tattack\tdecay\t")
	for i := 0; i < len(att); i += step {
		fmt.Fprintf(w, "%d\t%d\t%d\t\n", i, att[i], dec[i])
	}
	if last := len(att) - 1; last%step != 0 {
		fmt.Fprintf(w, "%d\t%d\t%d\t\n", last, att[last], dec[last])
	}
}

// showCurve holds a note for gate, then samples until the envelope is idle.
func showCurve(w *tabwriter.Writer, a *env.ADSR, gate, every time.Duration) {
	fmt.Fprintln(w, a)
	fmt.Fprintln(w, "time\tphase\tlevel\t")
	every = max(every, time.Millisecond)
	a.TriggerOn(0)
	for t := time.Duration(0); ; t += every {
		if t >= gate && a.Active() {
			a.TriggerOff(uint32(gate.Microseconds()))
		}
		now := uint32(t.Microseconds())
		p := a.Phase(now)
		fmt.Fprintf(w, "%v\t%v\t%d\t\n", t, p, a.Sample(now))
		if p == env.Idle {
			return
		}
	}
}

func fail(reason string) {
	fmt.Fprintln(os.Stderr, reason)
	fmt.Fprintln(os.Stderr, help)
	os.Exit(1)
}

const help = `show-env shows the envelope lookup tables and curves.
Usage:
	show-env [flags] tables|curve

tables prints the attack and decay lookup tables. curve prints the envelope
of a single note held for -gate, sampled every -every until it is idle.
`
