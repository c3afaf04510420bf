// Package supervisor launches the deployment's long-running sibling
// processes (HTTP API, queue worker, broadcaster, scheduler, AMI
// listener) from one terminal, restarting any that exit, and tears
// everything down on signal. It knows nothing about what the processes
// do; the broadcast core runs as just another supervised process.
package supervisor

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"
)

// Process is one managed command.
type Process struct {
	Name string
	Args []string // argv, Args[0] is the binary
}

func (p Process) Validate() error {
	if p.Name == "" {
		return errors.New("supervisor: process name required")
	}
	if len(p.Args) == 0 || p.Args[0] == "" {
		return errors.New("supervisor: process command required")
	}
	return nil
}

// DefaultProcesses are the five processes a full deployment runs.
// Each can be overridden via CALLCENTER_CMD_<NAME> before calling,
// which the CLI layer resolves; these are the conventional binaries.
func DefaultProcesses() []Process {
	return []Process{
		{Name: "http-api", Args: []string{"bin/api"}},
		{Name: "queue-worker", Args: []string{"bin/queue-worker"}},
		{Name: "broadcastd", Args: []string{"bin/broadcastd"}},
		{Name: "scheduler", Args: []string{"bin/scheduler"}},
		{Name: "ami-listener", Args: []string{"bin/ami-listener"}},
	}
}

const (
	minRestartDelay = time.Second
	maxRestartDelay = 30 * time.Second
)

type Supervisor struct {
	procs []Process
	log   *slog.Logger
	dir   string
}

// New validates the process list. dir is the shared working directory;
// empty means inherit the supervisor's own.
func New(procs []Process, dir string, log *slog.Logger) (*Supervisor, error) {
	if len(procs) == 0 {
		return nil, errors.New("supervisor: no processes configured")
	}
	for _, p := range procs {
		if err := p.Validate(); err != nil {
			return nil, err
		}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Supervisor{procs: procs, log: log, dir: dir}, nil
}

// Run starts every process and blocks until ctx is done, restarting
// crashed processes with growing delay. All children are killed via
// context cancellation on shutdown.
func (s *Supervisor) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for _, p := range s.procs {
		wg.Add(1)
		go func(p Process) {
			defer wg.Done()
			s.keepAlive(ctx, p)
		}(p)
	}
	wg.Wait()
	return ctx.Err()
}

func (s *Supervisor) keepAlive(ctx context.Context, p Process) {
	delay := minRestartDelay
	for {
		start := time.Now()
		err := s.runOnce(ctx, p)
		if ctx.Err() != nil {
			s.log.Info("process stopped", "process", p.Name)
			return
		}
		s.log.Error("process exited, restarting", "process", p.Name, "err", err, "delay", delay)

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
		delay = NextRestartDelay(delay, time.Since(start))
	}
}

func (s *Supervisor) runOnce(ctx context.Context, p Process) error {
	cmd := exec.CommandContext(ctx, p.Args[0], p.Args[1:]...)
	cmd.Dir = s.dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = os.Environ()

	s.log.Info("process starting", "process", p.Name, "cmd", p.Args[0])
	return cmd.Run()
}

// NextRestartDelay doubles the delay for quick crashes and resets it
// once a process has stayed up for a minute.
func NextRestartDelay(current, uptime time.Duration) time.Duration {
	if uptime >= time.Minute {
		return minRestartDelay
	}
	next := current * 2
	if next > maxRestartDelay {
		next = maxRestartDelay
	}
	return next
}
