// sim/aircraft.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	av "github.com/sauna-sim/sauna-api-sub001/aviation"
	"github.com/sauna-sim/sauna-api-sub001/log"
	"github.com/sauna-sim/sauna-api-sub001/nav"
	"github.com/sauna-sim/sauna-api-sub001/wx"

	"github.com/goforj/godump"
	"golang.org/x/sync/errgroup"
)

// Environment holds the oracles shared by all of the aircraft. Any of
// them may be nil.
type Environment struct {
	Nav        av.NavigationOracle
	Atmosphere wx.Oracle
	Magnetic   av.MagneticModel
}

// request is a function to be run by the aircraft's update worker
// between ticks.
type request struct {
	fn     func(pos *nav.AircraftPosition, ctl *nav.AircraftControl) error
	result chan error
}

// Aircraft is a simulated aircraft. Its position and control state are
// only touched by the update worker started by Run; other goroutines
// read the latest position through State and modify the aircraft by
// sending requests to the worker with Do.
type Aircraft struct {
	Callsign string

	pos     *nav.AircraftPosition
	control *nav.AircraftControl

	updateInterval time.Duration
	reportInterval time.Duration

	requests chan request
	running  atomic.Bool
	stopped  chan struct{}

	stateMu  sync.Mutex
	state    nav.PositionState
	lateral  string
	vertical string
	lnav     bool
	sequence uint64

	lg *log.Logger
}

func NewAircraft(callsign string, init nav.InitialPosition, env Environment, cfg Config, lg *log.Logger) *Aircraft {
	callsign = normalizeCallsign(callsign)
	lg = lg.With(slog.String("callsign", callsign))

	pos := nav.NewAircraftPosition(init, env.Atmosphere, env.Magnetic, lg)
	ctl := nav.NewAircraftControl(callsign, pos, lg)
	ctl.Acceleration = cfg.Acceleration
	ctl.HoldRadiusBuffer = cfg.HoldRadiusBuffer

	ac := &Aircraft{
		Callsign:       callsign,
		pos:            pos,
		control:        ctl,
		updateInterval: cfg.UpdateInterval.Duration(),
		reportInterval: cfg.ReportInterval.Duration(),
		requests:       make(chan request, 8),
		stopped:        make(chan struct{}),
		lg:             lg,
	}
	ac.updateState()
	return ac
}

// Fms returns the aircraft's FMS; its route may be built before Run is
// called.
func (ac *Aircraft) Fms() *nav.AircraftFms { return ac.control.Fms }

// State returns the aircraft's position as of the end of the last tick.
func (ac *Aircraft) State() nav.PositionState {
	ac.stateMu.Lock()
	defer ac.stateMu.Unlock()
	return ac.state
}

// Report returns a position report for the aircraft's current state.
func (ac *Aircraft) Report() PositionReport {
	ac.stateMu.Lock()
	defer ac.stateMu.Unlock()
	ac.sequence++
	return PositionReport{
		Callsign: ac.Callsign,
		Sequence: ac.sequence,
		State:    ac.state,
		Lateral:  ac.lateral,
		Vertical: ac.vertical,
		LNAV:     ac.lnav,
	}
}

func (ac *Aircraft) updateState() {
	lateral := ac.control.CurrentLateral()
	_, lnav := lateral.(*nav.LNAV)
	state := ac.pos.State()

	ac.stateMu.Lock()
	defer ac.stateMu.Unlock()
	ac.state = state
	ac.lateral = lateral.Mode().String()
	ac.vertical = ac.control.CurrentVertical().Mode().String()
	ac.lnav = lnav
}

// Run runs the aircraft's update and report workers until ctx is
// cancelled or the transmitter reports that the aircraft has been
// disconnected. It may only be called once.
func (ac *Aircraft) Run(ctx context.Context, tx Transmitter) error {
	if !ac.running.CompareAndSwap(false, true) {
		return ErrAircraftRunning
	}
	defer close(ac.stopped)

	ac.lg.Info("aircraft started", slog.Any("position", ac.pos))

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error { return ac.updateLoop(ctx) })
	eg.Go(func() error { return ac.reportLoop(ctx, tx) })
	err := eg.Wait()

	ac.lg.Info("aircraft stopped", slog.Any("position", ac.pos), slog.Any("error", err))
	return err
}

func (ac *Aircraft) updateLoop(ctx context.Context) error {
	ticker := time.NewTicker(ac.updateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			ac.tick(ac.updateInterval)
		case req := <-ac.requests:
			req.result <- ac.execute(req.fn)
		}
	}
}

func (ac *Aircraft) reportLoop(ctx context.Context, tx Transmitter) error {
	ticker := time.NewTicker(ac.reportInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := tx.Transmit(ctx, ac.Report()); errors.Is(err, ErrDisconnected) {
				return fmt.Errorf("%s: %w", ac.Callsign, err)
			} else if err != nil {
				ac.lg.Warn("position report failed", slog.Any("error", err))
			}
		}
	}
}

// tick advances the aircraft by dt. A panic is logged and the aircraft
// carries on with the next tick.
func (ac *Aircraft) tick(dt time.Duration) {
	defer ac.lg.CatchAndReportCrash()
	ok := false
	defer func() {
		if !ok {
			ac.lg.Errorf("update failed: %s", godump.DumpStr(ac.pos.State()))
		}
	}()

	events := ac.control.UpdatePosition(ac.pos, dt)
	for _, ev := range events {
		switch ev.Type {
		case nav.EventHoldPhase:
			ac.lg.Debug("hold", slog.String("event", ev.String()))
		default:
			ac.lg.Info("route", slog.String("event", ev.String()))
		}
	}
	ac.updateState()
	ok = true
}

func (ac *Aircraft) execute(fn func(*nav.AircraftPosition, *nav.AircraftControl) error) (err error) {
	err = ErrCommandFailed
	defer ac.lg.CatchAndReportCrash()

	err = fn(ac.pos, ac.control)
	ac.updateState()
	return err
}

// Do runs fn on the aircraft's update worker between two ticks and
// returns its result.
func (ac *Aircraft) Do(ctx context.Context, fn func(pos *nav.AircraftPosition, ctl *nav.AircraftControl) error) error {
	req := request{fn: fn, result: make(chan error, 1)}

	select {
	case ac.requests <- req:
	case <-ac.stopped:
		return ErrAircraftStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-req.result:
		return err
	case <-ac.stopped:
		return ErrAircraftStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AircraftStatus is a detailed copy of an aircraft's state.
type AircraftStatus struct {
	Callsign string
	Position nav.PositionState
	Control  nav.ControlSnapshot
}

func (ac *Aircraft) Status(ctx context.Context) (AircraftStatus, error) {
	var s AircraftStatus
	err := ac.Do(ctx, func(pos *nav.AircraftPosition, ctl *nav.AircraftControl) error {
		s = AircraftStatus{
			Callsign: ac.Callsign,
			Position: pos.State(),
			Control:  ctl.Snapshot(),
		}
		return nil
	})
	return s, err
}

func (s AircraftStatus) String() string {
	return fmt.Sprintf("%s %s alt %.0f hdg %03.0f gs %.0f: %s", s.Callsign, s.Position.Location.DDString(),
		s.Position.IndicatedAltitude, s.Position.MagneticHeading, s.Position.GS, s.Control)
}
