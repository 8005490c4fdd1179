package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStartProfiles(t *testing.T) {
	dir := t.TempDir()
	finish, err := StartProfiles(dir)
	if err != nil {
		t.Fatalf("StartProfiles() error: %v", err)
	}
	if err := finish(); err != nil {
		t.Fatalf("finish() error: %v", err)
	}
	for _, name := range []string{"cpu.pprof", "mem.pprof"} {
		fi, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			t.Errorf("Stat(%s) error: %v", name, err)
			continue
		}
		if fi.Size() == 0 {
			t.Errorf("%s is empty", name)
		}
	}
}

func TestStartProfilesBadDir(t *testing.T) {
	if _, err := StartProfiles(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Errorf("StartProfiles(missing dir) returned no error")
	}
}

func TestInterruptContext(t *testing.T) {
	ctx, cancel := InterruptContext()
	if ctx.Err() != nil {
		t.Fatalf("fresh context already done: %v", ctx.Err())
	}
	cancel()
	<-ctx.Done()
}
