// sim/sim.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/sauna-sim/sauna-api-sub001/log"

	"github.com/shirou/gopsutil/cpu"
	"golang.org/x/sync/errgroup"
)

// Sim runs a session: the registered aircraft, each with its own
// workers, and the command queue they share.
type Sim struct {
	Config   Config
	Env      Environment
	Registry *Registry
	Queue    *CommandQueue

	tx Transmitter
	lg *log.Logger

	mu      sync.Mutex
	ctx     context.Context
	eg      *errgroup.Group
	cancels map[*Aircraft]context.CancelFunc
	stopped bool

	startTime time.Time
}

func NewSim(cfg Config, env Environment, tx Transmitter, lg *log.Logger) *Sim {
	return &Sim{
		Config:    cfg,
		Env:       env,
		Registry:  NewRegistry(),
		Queue:     NewCommandQueue(cfg.CommandDelayMin.Duration(), cfg.CommandDelayMax.Duration(), lg),
		tx:        tx,
		lg:        lg,
		cancels:   make(map[*Aircraft]context.CancelFunc),
		startTime: time.Now(),
	}
}

// Add registers an aircraft; if the sim is running, its workers are
// started. Once Run's context is done, Add returns ErrSimStopped.
func (s *Sim) Add(ac *Aircraft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return ErrSimStopped
	}

	if err := s.Registry.Add(ac); err != nil {
		return err
	}
	if s.eg != nil {
		s.startLocked(ac)
	}
	return nil
}

// Remove disconnects an aircraft.
func (s *Sim) Remove(callsign string) error {
	ac, ok := s.Registry.Remove(callsign)
	if !ok {
		return ErrNoMatchingAircraft
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if cancel, ok := s.cancels[ac]; ok {
		cancel()
		delete(s.cancels, ac)
	}
	return nil
}

func (s *Sim) startLocked(ac *Aircraft) {
	if _, ok := s.cancels[ac]; ok {
		return
	}
	ctx, cancel := context.WithCancel(s.ctx)
	s.cancels[ac] = cancel

	s.eg.Go(func() error {
		defer cancel()
		if err := ac.Run(ctx, s.tx); err != nil {
			s.lg.Warn("aircraft disconnected", slog.String("callsign", ac.Callsign), slog.Any("error", err))
		}
		s.Registry.removeAircraft(ac)

		s.mu.Lock()
		delete(s.cancels, ac)
		s.mu.Unlock()
		// One aircraft stopping doesn't end the session.
		return nil
	})
}

// Run starts the workers of all registered aircraft and the command
// queue and waits until ctx is cancelled and they have all stopped.
func (s *Sim) Run(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)

	s.mu.Lock()
	s.ctx, s.eg = ctx, eg
	for _, ac := range s.Registry.All() {
		s.startLocked(ac)
	}
	s.mu.Unlock()

	eg.Go(func() error { return s.Queue.Run(ctx) })
	// Keeps the group open until no more aircraft can be started.
	eg.Go(func() error {
		<-ctx.Done()
		s.mu.Lock()
		s.stopped = true
		s.mu.Unlock()
		return nil
	})
	if s.Config.StatsInterval > 0 {
		eg.Go(func() error { return s.logStats(ctx) })
	}

	s.lg.Info("session started", slog.Int("aircraft", s.Registry.Len()))
	err := eg.Wait()
	s.lg.Info("session ended", slog.Duration("uptime", time.Since(s.startTime)))
	return err
}

// RunCommands parses the input and queues the commands for the
// aircraft. The result is delivered on the returned channel once the
// commands have been run; syntax errors are returned immediately.
func (s *Sim) RunCommands(ctx context.Context, callsign, input string) <-chan CommandResult {
	ch := make(chan CommandResult, 1)
	callsign = normalizeCallsign(callsign)

	ac, ok := s.Registry.Get(callsign)
	if !ok {
		ch <- errorResult(callsign, input, ErrNoMatchingAircraft)
		return ch
	}
	cmds, err := ParseCommands(input)
	if err != nil {
		ch <- errorResult(callsign, input, err)
		return ch
	}

	err = s.Queue.Submit(ctx, func(ctx context.Context) {
		ch <- ac.RunCommands(ctx, s.Env, input, cmds)
	})
	if err != nil {
		ch <- errorResult(callsign, input, err)
	}
	return ch
}

func (s *Sim) logStats(ctx context.Context) error {
	ticker := time.NewTicker(s.Config.StatsInterval.Duration())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			// With a zero interval, usage is since the previous call.
			usage, _ := cpu.Percent(0, false)
			cpuPct := 0.
			if len(usage) > 0 {
				cpuPct = usage[0]
			}

			s.lg.Info("stats",
				slog.Duration("uptime", time.Since(s.startTime).Round(time.Second)),
				slog.Int("aircraft", s.Registry.Len()),
				slog.Int("goroutines", runtime.NumGoroutine()),
				slog.Uint64("alloc_mb", m.Alloc/(1024*1024)),
				slog.Uint64("sys_mb", m.Sys/(1024*1024)),
				slog.Uint64("num_gc", uint64(m.NumGC)),
				slog.Float64("cpu_percent", cpuPct))
		}
	}
}
