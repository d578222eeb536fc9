// sim/commands.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"fmt"
	"strconv"
	"strings"

	av "github.com/sauna-sim/sauna-api-sub001/aviation"
	"github.com/sauna-sim/sauna-api-sub001/nav"
	"github.com/sauna-sim/sauna-api-sub001/util"
)

// Command is a parsed control instruction. The set of commands is closed;
// each one is handled in resolveCommand.
type Command interface {
	fmt.Stringer
	command()
}

type HeadingCommand struct {
	Heading float32 // magnetic
	Turn    av.TurnDirection
}

type TrackCommand struct {
	Track float32 // magnetic
	Turn  av.TurnDirection
}

type InterceptCommand struct {
	Fix    string
	Course float32 // magnetic, inbound to the fix
}

type AltitudeCommand struct {
	Altitude     float32
	AltimeterHPa float32 // 0 if not given
}

type SpeedCommand struct {
	Target nav.SpeedTarget
}

type DirectCommand struct {
	Fix string
}

// HoldCommand holds at a fix, as published unless Specified is set.
type HoldCommand struct {
	Fix           string
	Specified     bool
	InboundCourse float32 // magnetic
	Turn          av.TurnDirection
	Length        av.HoldLegLength
}

type HoldExitCommand struct{}

type ApproachCommand struct {
	Airport string
	Runway  string
}

type LNAVCommand struct{}

type DumpCommand struct{}

func (HeadingCommand) command()   {}
func (TrackCommand) command()     {}
func (InterceptCommand) command() {}
func (AltitudeCommand) command()  {}
func (SpeedCommand) command()     {}
func (DirectCommand) command()    {}
func (HoldCommand) command()      {}
func (HoldExitCommand) command()  {}
func (ApproachCommand) command()  {}
func (LNAVCommand) command()      {}
func (DumpCommand) command()      {}

func (c HeadingCommand) String() string {
	return fmt.Sprintf("fly heading %03.0f (%s)", c.Heading, c.Turn)
}

func (c TrackCommand) String() string {
	return fmt.Sprintf("fly track %03.0f (%s)", c.Track, c.Turn)
}

func (c InterceptCommand) String() string {
	return fmt.Sprintf("intercept %s course %03.0f", c.Fix, c.Course)
}

func (c AltitudeCommand) String() string {
	if c.AltimeterHPa > 0 {
		return fmt.Sprintf("altitude %.0f, altimeter %.0f hPa", c.Altitude, c.AltimeterHPa)
	}
	return fmt.Sprintf("altitude %.0f", c.Altitude)
}

func (c SpeedCommand) String() string  { return "speed " + c.Target.String() }
func (c DirectCommand) String() string { return "direct " + c.Fix }

func (c HoldCommand) String() string {
	if !c.Specified {
		return "hold at " + c.Fix + " as published"
	}
	return fmt.Sprintf("hold at %s inbound %03.0f %s turns %s legs", c.Fix, c.InboundCourse, c.Turn, c.Length)
}

func (HoldExitCommand) String() string   { return "exit hold" }
func (c ApproachCommand) String() string { return "cleared approach " + c.Airport + " " + c.Runway }
func (LNAVCommand) String() string       { return "engage LNAV" }
func (DumpCommand) String() string       { return "dump state" }

// ParsedCommand is a command along with the text it was parsed from.
type ParsedCommand struct {
	Text    string
	Command Command
}

// CommandError reports the failure of one of a sequence of commands.
// None of the commands are applied if any of them fails.
type CommandError struct {
	// The failed command followed by the rest of the input.
	Remaining string
	Err       error
}

func (e *CommandError) Error() string { return e.Err.Error() }
func (e *CommandError) Unwrap() error { return e.Err }

// ParseCommands parses a space-separated sequence of commands.
func ParseCommands(input string) ([]ParsedCommand, error) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return nil, &CommandError{Err: ErrInvalidCommandSyntax}
	}

	var cmds []ParsedCommand
	for i, f := range fields {
		cmd, err := ParseCommand(f)
		if err != nil {
			return nil, &CommandError{Remaining: strings.Join(fields[i:], " "), Err: err}
		}
		cmds = append(cmds, ParsedCommand{Text: f, Command: cmd})
	}
	return cmds, nil
}

// ParseCommand parses a single command:
//
//	H270, L270, R270    fly heading (closest turn, left, right)
//	T270                fly track
//	IFIX/090            intercept the 090 course to FIX
//	C100, D100, A100    altitude in hundreds of feet; /Q1013 (hPa) or
//	                    /A2992 (inHg) also sets the altimeter
//	S250, S250+, S250-  speed: at, at or above, at or below; S alone cancels
//	M078                Mach .78 (also with + or -)
//	DFIX                direct to FIX
//	HFIX                hold at FIX as published
//	HFIX/R090/L/5NM     hold inbound on 090 with left turns and 5nm legs;
//	                    HFIX/R090/2M gives the legs in minutes instead
//	HX                  exit the hold
//	C/KJFK/22L          cleared for the approach
//	LNAV                engage LNAV
//	DUMP                dump the aircraft's state
func ParseCommand(command string) (Command, error) {
	command = strings.ToUpper(command)
	if len(command) < 1 {
		return nil, ErrInvalidCommandSyntax
	}

	switch command {
	case "LNAV":
		return LNAVCommand{}, nil
	case "DUMP":
		return DumpCommand{}, nil
	case "HX":
		return HoldExitCommand{}, nil
	}

	switch command[0] {
	case 'H', 'L', 'R':
		turn := map[byte]av.TurnDirection{'H': av.TurnClosest, 'L': av.TurnLeft, 'R': av.TurnRight}[command[0]]
		if util.IsAllNumbers(command[1:]) {
			hdg, err := parseDegrees(command[1:])
			if err != nil {
				return nil, err
			}
			return HeadingCommand{Heading: hdg, Turn: turn}, nil
		} else if command[0] == 'H' {
			return parseHold(command[1:])
		}
		return nil, ErrInvalidCommandSyntax

	case 'T':
		if !util.IsAllNumbers(command[1:]) {
			return nil, ErrInvalidCommandSyntax
		}
		trk, err := parseDegrees(command[1:])
		if err != nil {
			return nil, err
		}
		return TrackCommand{Track: trk, Turn: av.TurnClosest}, nil

	case 'I':
		fix, crs, ok := strings.Cut(command[1:], "/")
		if !ok || !util.IsIdentifier(fix) || !util.IsAllNumbers(crs) {
			return nil, ErrInvalidCommandSyntax
		}
		course, err := parseDegrees(crs)
		if err != nil {
			return nil, err
		}
		return InterceptCommand{Fix: fix, Course: course}, nil

	case 'A', 'C', 'D':
		if command[0] == 'C' && strings.HasPrefix(command, "C/") {
			return parseApproach(command[2:])
		}
		alt, opt, hasOpt := strings.Cut(command[1:], "/")
		if util.IsAllNumbers(alt) {
			return parseAltitude(alt, opt, hasOpt)
		} else if command[0] == 'D' && !hasOpt && util.IsIdentifier(alt) {
			return DirectCommand{Fix: alt}, nil
		}
		return nil, ErrInvalidCommandSyntax

	case 'S', 'M':
		return parseSpeed(command)

	default:
		return nil, ErrInvalidCommandSyntax
	}
}

// parseDegrees parses a heading or course; 360 is north and 0 is
// invalid.
func parseDegrees(s string) (float32, error) {
	d, err := strconv.Atoi(s)
	if err != nil {
		return 0, ErrInvalidCommandSyntax
	}
	if d <= 0 || d > 360 {
		return 0, fmt.Errorf("%03d: %w", d, nav.ErrInvalidHeading)
	}
	return float32(d), nil
}

func parseAltitude(alt, opt string, hasOpt bool) (Command, error) {
	hundreds, err := strconv.Atoi(alt)
	if err != nil {
		return nil, ErrInvalidCommandSyntax
	}
	if hundreds > 600 {
		return nil, fmt.Errorf("%d00: %w", hundreds, nav.ErrInvalidAltitude)
	}
	cmd := AltitudeCommand{Altitude: float32(100 * hundreds)}

	if hasOpt {
		if len(opt) < 2 || !util.IsAllNumbers(opt[1:]) {
			return nil, ErrInvalidCommandSyntax
		}
		v, err := strconv.Atoi(opt[1:])
		if err != nil {
			return nil, ErrInvalidCommandSyntax
		}
		switch opt[0] {
		case 'Q':
			cmd.AltimeterHPa = float32(v)
		case 'A':
			cmd.AltimeterHPa = av.InHgToHPa(float32(v) / 100)
		default:
			return nil, ErrInvalidCommandSyntax
		}
		if cmd.AltimeterHPa < 850 || cmd.AltimeterHPa > 1090 {
			return nil, fmt.Errorf("%s: %w", opt, ErrInvalidAltimeter)
		}
	}
	return cmd, nil
}

func parseSpeed(command string) (Command, error) {
	if command == "S" {
		return SpeedCommand{Target: nav.SpeedTarget{Constraint: av.ConstraintNone}}, nil
	}

	constraint := av.ConstraintAt
	value := command[1:]
	if strings.HasSuffix(value, "+") {
		constraint = av.ConstraintAtOrAbove
		value = strings.TrimSuffix(value, "+")
	} else if strings.HasSuffix(value, "-") {
		constraint = av.ConstraintAtOrBelow
		value = strings.TrimSuffix(value, "-")
	}
	if !util.IsAllNumbers(value) {
		return nil, ErrInvalidCommandSyntax
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		return nil, ErrInvalidCommandSyntax
	}

	target := nav.SpeedTarget{Constraint: constraint}
	if command[0] == 'M' {
		target.Mach = float32(v) / 100
		if target.Mach <= 0 || target.Mach > 1 {
			return nil, fmt.Errorf("M%s: %w", value, nav.ErrInvalidSpeed)
		}
	} else {
		target.IAS = float32(v)
		if target.IAS <= 0 || target.IAS > 450 {
			return nil, fmt.Errorf("%s kts: %w", value, nav.ErrInvalidSpeed)
		}
	}
	return SpeedCommand{Target: target}, nil
}

func parseApproach(s string) (Command, error) {
	airport, runway, ok := strings.Cut(s, "/")
	if !ok || !util.IsIdentifier(airport) || runway == "" || strings.Contains(runway, "/") {
		return nil, ErrInvalidCommandSyntax
	}
	return ApproachCommand{Airport: airport, Runway: runway}, nil
}

// parseHold parses "FIX" or "FIX/option/option...", where the options
// are L or R (turn direction), Rxxx (inbound course, required), xxNM
// (leg length) or xxM (leg time in minutes). Repeated options are an
// error; a hold's legs are given either as a length or as a time.
func parseHold(s string) (Command, error) {
	fix, opts, ok := strings.Cut(s, "/")
	if !util.IsIdentifier(fix) {
		return nil, ErrInvalidCommandSyntax
	}
	if !ok {
		return HoldCommand{Fix: fix}, nil
	}

	hold := HoldCommand{Fix: fix, Specified: true, Turn: av.TurnRight}
	haveTurn, haveCourse := false, false
	for opt := range strings.SplitSeq(opts, "/") {
		switch {
		case opt == "L" || opt == "R":
			if haveTurn {
				return nil, ErrInvalidCommandSyntax
			}
			hold.Turn = util.Select(opt == "L", av.TurnLeft, av.TurnRight)
			haveTurn = true

		case strings.HasSuffix(opt, "NM") || strings.HasSuffix(opt, "M"):
			if hold.Length.Type != av.HoldLegDefault {
				return nil, ErrInvalidCommandSyntax
			}
			lt := util.Select(strings.HasSuffix(opt, "NM"), av.HoldLegDistance, av.HoldLegTime)
			v, err := strconv.ParseFloat(strings.TrimRight(opt, "NM"), 32)
			if err != nil {
				return nil, ErrInvalidCommandSyntax
			}
			if v <= 0 || v > 60 {
				return nil, fmt.Errorf("%s: %w", opt, nav.ErrInvalidHoldLength)
			}
			hold.Length = av.HoldLegLength{Type: lt, Value: float32(v)}

		case len(opt) > 1 && opt[0] == 'R' && util.IsAllNumbers(opt[1:]):
			if haveCourse {
				return nil, ErrInvalidCommandSyntax
			}
			crs, err := parseDegrees(opt[1:])
			if err != nil {
				return nil, err
			}
			hold.InboundCourse = crs
			haveCourse = true

		default:
			return nil, ErrInvalidCommandSyntax
		}
	}

	if !haveCourse {
		return nil, ErrInvalidCommandSyntax
	}
	return hold, nil
}
