// package cli holds the bits every command needs: shutting down on ^C and
// optional profiling.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"runtime/pprof"
)

// InterruptContext is cancelled on the first interrupt, or by cancel.
func InterruptContext() (ctx context.Context, cancel context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// StartProfiles starts a CPU profile in dir/cpu.pprof. The returned function
// stops it and writes a heap profile to dir/mem.pprof.
func StartProfiles(dir string) (finish func() error, err error) {
	cpu, err := os.Create(filepath.Join(dir, "cpu.pprof"))
	if err != nil {
		return nil, fmt.Errorf("creating cpu profile: %w", err)
	}
	if err := pprof.StartCPUProfile(cpu); err != nil {
		cpu.Close()
		return nil, fmt.Errorf("starting cpu profile: %w", err)
	}
	return func() error {
		pprof.StopCPUProfile()
		if err := cpu.Close(); err != nil {
			return err
		}
		mem, err := os.Create(filepath.Join(dir, "mem.pprof"))
		if err != nil {
			return fmt.Errorf("creating heap profile: %w", err)
		}
		defer mem.Close()
		runtime.GC()
		if err := pprof.WriteHeapProfile(mem); err != nil {
			return fmt.Errorf("writing heap profile: %w", err)
		}
		return mem.Close()
	}, nil
}
