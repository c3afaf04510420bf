package supervisor

import (
	"testing"
	"time"
)

func TestNew_RejectsInvalidProcesses(t *testing.T) {
	if _, err := New(nil, "", nil); err == nil {
		t.Fatalf("expected error for empty process list")
	}
	if _, err := New([]Process{{Name: "", Args: []string{"bin/x"}}}, "", nil); err == nil {
		t.Fatalf("expected error for unnamed process")
	}
	if _, err := New([]Process{{Name: "x", Args: nil}}, "", nil); err == nil {
		t.Fatalf("expected error for missing command")
	}
}

func TestDefaultProcesses_AreFiveAndValid(t *testing.T) {
	procs := DefaultProcesses()
	if len(procs) != 5 {
		t.Fatalf("expected 5 processes, got %d", len(procs))
	}
	for _, p := range procs {
		if err := p.Validate(); err != nil {
			t.Fatalf("invalid default process %q: %v", p.Name, err)
		}
	}
}

func TestNextRestartDelay(t *testing.T) {
	if got := NextRestartDelay(time.Second, time.Second); got != 2*time.Second {
		t.Fatalf("quick crash should double delay, got %s", got)
	}
	if got := NextRestartDelay(20*time.Second, time.Second); got != 30*time.Second {
		t.Fatalf("delay must cap at 30s, got %s", got)
	}
	if got := NextRestartDelay(30*time.Second, 2*time.Minute); got != time.Second {
		t.Fatalf("long uptime should reset delay, got %s", got)
	}
}
