// sim/control.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	av "github.com/sauna-sim/sauna-api-sub001/aviation"
	"github.com/sauna-sim/sauna-api-sub001/nav"
	"github.com/sauna-sim/sauna-api-sub001/util"

	"github.com/davecgh/go-spew/spew"
)

// CommandResult is returned for each command input. Errors are reported
// as text; if Error is set, the aircraft's state is unchanged.
type CommandResult struct {
	Callsign       string
	Input          string
	Error          string
	RemainingInput string
	// Diagnostic output, for DUMP.
	Output string
}

func (r CommandResult) OK() bool { return r.Error == "" }

func (r CommandResult) String() string {
	if r.Error != "" {
		return fmt.Sprintf("%s %s: %s (at %q)", r.Callsign, r.Input, r.Error, r.RemainingInput)
	}
	return r.Callsign + " " + r.Input + ": ok"
}

func errorResult(callsign, input string, err error) CommandResult {
	r := CommandResult{Callsign: callsign, Input: input, Error: err.Error(), RemainingInput: input}
	var ce *CommandError
	if errors.As(err, &ce) && ce.Remaining != "" {
		r.RemainingInput = ce.Remaining
	}
	return r
}

// action applies a resolved command.
type action func() (output string, err error)

// lookupPoint returns the route's point with the given identifier or
// else the closest fix with that name.
func lookupPoint(env Environment, pos *nav.AircraftPosition, ctl *nav.AircraftControl, id string) (*av.FmsPoint, error) {
	if p, ok := ctl.Fms.FindPoint(id); ok {
		return p, nil
	}
	if env.Nav != nil {
		if fix, ok := env.Nav.FindFixNear(id, pos.Location()); ok {
			return av.NewFmsPoint(fix.Identifier, fix.Location, av.FlyBy), nil
		}
	}
	return nil, fmt.Errorf("%s: %w", id, av.ErrNoMatchingFix)
}

// resolveCommand looks up everything cmd refers to and checks that it
// can be applied to the aircraft in its current state. Nothing is
// modified until the returned action is called.
func resolveCommand(cmd Command, env Environment, pos *nav.AircraftPosition, ctl *nav.AircraftControl) (action, error) {
	switch c := cmd.(type) {
	case HeadingCommand:
		return func() (string, error) { return "", ctl.FlyHeading(pos, c.Heading, c.Turn) }, nil

	case TrackCommand:
		return func() (string, error) { return "", ctl.FlyTrack(pos, c.Track, c.Turn) }, nil

	case InterceptCommand:
		fix, err := lookupPoint(env, pos, ctl, c.Fix)
		if err != nil {
			return nil, err
		}
		return func() (string, error) { return "", ctl.InterceptCourse(pos, fix, c.Course) }, nil

	case AltitudeCommand:
		return func() (string, error) { return "", ctl.AssignAltitude(pos, c.Altitude, c.AltimeterHPa) }, nil

	case SpeedCommand:
		return func() (string, error) { return "", ctl.AssignSpeed(pos, c.Target) }, nil

	case DirectCommand:
		fix, err := lookupPoint(env, pos, ctl, c.Fix)
		if err != nil {
			return nil, err
		}
		return func() (string, error) {
			ctl.DirectTo(pos, fix)
			return "", nil
		}, nil

	case HoldCommand:
		return resolveHold(c, env, pos, ctl)

	case HoldExitCommand:
		holds := util.FilterSlice(ctl.Fms.Route(), func(leg nav.RouteLeg) bool {
			return leg.Type() == nav.LegHoldToManual
		})
		if len(holds) == 0 {
			return nil, nav.ErrNotHolding
		}
		return func() (string, error) { return "", ctl.ArmHoldExit(pos) }, nil

	case ApproachCommand:
		if env.Nav == nil {
			return nil, fmt.Errorf("%s %s: %w", c.Airport, c.Runway, av.ErrNoLocalizer)
		}
		loc, ok := env.Nav.FindLocalizer(c.Airport, c.Runway)
		if !ok {
			return nil, fmt.Errorf("%s %s: %w", c.Airport, c.Runway, av.ErrNoLocalizer)
		}
		return func() (string, error) {
			ctl.Approach(pos, loc)
			return "", nil
		}, nil

	case LNAVCommand:
		if len(ctl.Fms.Route()) == 0 {
			return nil, nav.ErrNoRoute
		}
		return func() (string, error) { return "", ctl.EngageLNAV(pos) }, nil

	case DumpCommand:
		return func() (string, error) {
			return pos.Summary() + "\n" + spew.Sdump(ctl.Snapshot()), nil
		}, nil

	default:
		panic(fmt.Sprintf("unhandled command type %T", cmd))
	}
}

func resolveHold(c HoldCommand, env Environment, pos *nav.AircraftPosition, ctl *nav.AircraftControl) (action, error) {
	fix, err := lookupPoint(env, pos, ctl, c.Fix)
	if err != nil {
		return nil, err
	}

	ph := av.PublishedHold{
		Fix:           c.Fix,
		InboundCourse: c.InboundCourse,
		Turn:          c.Turn,
		LegLength:     c.Length,
	}
	if !c.Specified {
		var ok bool
		if env.Nav != nil {
			ph, ok = env.Nav.FindPublishedHold(c.Fix)
		}
		if !ok {
			return nil, fmt.Errorf("%s: %w", c.Fix, av.ErrNoPublishedHold)
		}
	}

	inboundTrue := av.MagneticToTrue(pos.MagneticModel(), fix.Location, pos.Time(), ph.InboundCourse)
	h := nav.NewHoldController(fix, inboundTrue, ph.InboundCourse, ph.Turn, ph.LegLength, ctl.HoldRadiusBuffer)
	speed := nav.SpeedTarget{Constraint: av.ConstraintAtOrBelow, IAS: ph.HoldingSpeed(pos.IndicatedAltitude())}

	return func() (string, error) {
		if err := ctl.AssignSpeed(pos, speed); err != nil {
			return "", err
		}
		ctl.Hold(pos, h)
		return "", nil
	}, nil
}

// RunCommands resolves and then applies the commands on the aircraft's
// update worker. If any command can't be resolved, none are applied.
func (ac *Aircraft) RunCommands(ctx context.Context, env Environment, input string, cmds []ParsedCommand) CommandResult {
	var output string
	err := ac.Do(ctx, func(pos *nav.AircraftPosition, ctl *nav.AircraftControl) error {
		restore := ctl.Checkpoint(pos)
		var actions []action
		for i, pc := range cmds {
			act, err := resolveCommand(pc.Command, env, pos, ctl)
			if err != nil {
				return &CommandError{Remaining: remainingText(cmds[i:]), Err: err}
			}
			actions = append(actions, act)
		}

		for i, act := range actions {
			out, err := act()
			if err != nil {
				// An earlier command in the line can invalidate a later
				// one; nothing from the line is kept.
				restore()
				ac.lg.Warn("command failed after it was resolved", slog.String("command", cmds[i].Text),
					slog.Any("error", err))
				return &CommandError{Remaining: remainingText(cmds[i:]), Err: err}
			}
			output += out
			ac.lg.Info("command", slog.String("command", cmds[i].Command.String()))
		}
		return nil
	})

	if err != nil {
		return errorResult(ac.Callsign, input, err)
	}
	return CommandResult{Callsign: ac.Callsign, Input: input, Output: output}
}

func remainingText(cmds []ParsedCommand) string {
	var s string
	for i, c := range cmds {
		if i > 0 {
			s += " "
		}
		s += c.Text
	}
	return s
}
