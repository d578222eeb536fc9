// sim/scenario.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	av "github.com/sauna-sim/sauna-api-sub001/aviation"
	"github.com/sauna-sim/sauna-api-sub001/log"
	"github.com/sauna-sim/sauna-api-sub001/math"
	"github.com/sauna-sim/sauna-api-sub001/nav"
	"github.com/sauna-sim/sauna-api-sub001/util"

	"github.com/iancoleman/orderedmap"
)

// ScenarioLeg describes one leg of an aircraft's route. Courses are
// magnetic.
type ScenarioLeg struct {
	Type     string                `json:"type"` // DF, CF, TF, FA, CA, FM, RF or HM
	Fix      string                `json:"fix,omitempty"`
	FlyOver  bool                  `json:"fly_over,omitempty"`
	Course   float32               `json:"course,omitempty"`
	Altitude av.AltitudeConstraint `json:"altitude,omitzero"`
	Speed    av.SpeedConstraint    `json:"speed,omitzero"`
	Center   string                `json:"center,omitempty"` // RF
	Turn     av.TurnDirection      `json:"turn,omitempty"`   // RF, HM
	Length   av.HoldLegLength      `json:"hold_length,omitzero"`
}

// ScenarioAircraft describes an aircraft at the start of a session. The
// initial location is given either as a point or as a fix.
type ScenarioAircraft struct {
	Location         math.Point2LL `json:"location"`
	Fix              string        `json:"fix,omitempty"`
	Altitude         float32       `json:"altitude"`
	Altimeter        float32       `json:"altimeter,omitempty"` // hPa
	Heading          float32       `json:"heading"`             // magnetic
	IAS              float32       `json:"ias"`
	AssignedAltitude float32       `json:"assigned_altitude,omitempty"`
	CruiseAltitude   float32       `json:"cruise_altitude,omitempty"`
	Departure        string        `json:"departure,omitempty"`
	Arrival          string        `json:"arrival,omitempty"`
	Route            []ScenarioLeg `json:"route,omitempty"`
	LNAV             bool          `json:"lnav,omitempty"`
}

// Scenario is the set of aircraft to simulate. Aircraft are created in
// the order in which they appear in the file.
type Scenario struct {
	StartTime time.Time
	Callsigns []string
	Aircraft  map[string]ScenarioAircraft
}

type scenarioFile struct {
	StartTime time.Time              `json:"start_time"`
	Aircraft  *orderedmap.OrderedMap `json:"aircraft"`
}

func LoadScenario(r io.Reader) (*Scenario, error) {
	f := scenarioFile{Aircraft: orderedmap.New()}
	if err := util.DecodeJSON(r, &f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidScenario, err)
	}

	s := &Scenario{StartTime: f.StartTime, Aircraft: make(map[string]ScenarioAircraft)}
	for _, cs := range f.Aircraft.Keys() {
		v, _ := f.Aircraft.Get(cs)
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidScenario, cs, err)
		}

		var ac ScenarioAircraft
		if err := util.DecodeJSON(bytes.NewReader(b), &ac); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidScenario, cs, err)
		}
		cs = normalizeCallsign(cs)
		if _, ok := s.Aircraft[cs]; ok {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidScenario, cs, ErrDuplicateCallsign)
		}
		s.Callsigns = append(s.Callsigns, cs)
		s.Aircraft[cs] = ac
	}
	return s, nil
}

// OpenScenario loads a scenario from a JSON file, which may be
// zstd-compressed.
func OpenScenario(path string) (*Scenario, error) {
	r, err := util.OpenDataFile(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	s, err := LoadScenario(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Build creates the scenario's aircraft and their routes.
func (s *Scenario) Build(env Environment, cfg Config, lg *log.Logger) ([]*Aircraft, error) {
	start := s.StartTime
	if start.IsZero() {
		start = time.Now().UTC()
	}

	var all []*Aircraft
	for _, cs := range s.Callsigns {
		ac, err := s.Aircraft[cs].build(cs, start, env, cfg, lg)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidScenario, cs, err)
		}
		all = append(all, ac)
	}
	return all, nil
}

func findFix(env Environment, id string, near math.Point2LL) (av.Fix, error) {
	if env.Nav != nil {
		if fix, ok := env.Nav.FindFixNear(id, near); ok {
			return fix, nil
		}
	}
	return av.Fix{}, fmt.Errorf("%s: %w", id, av.ErrNoMatchingFix)
}

func (sa ScenarioAircraft) build(callsign string, start time.Time, env Environment, cfg Config, lg *log.Logger) (*Aircraft, error) {
	loc := sa.Location
	if sa.Fix != "" {
		fix, err := findFix(env, sa.Fix, loc)
		if err != nil {
			return nil, err
		}
		loc = fix.Location
	}
	if sa.Altitude < -1000 || sa.Altitude > 60000 {
		return nil, fmt.Errorf("%.0f: %w", sa.Altitude, nav.ErrInvalidAltitude)
	}
	if sa.Heading < 0 || sa.Heading > 360 {
		return nil, fmt.Errorf("%.0f: %w", sa.Heading, nav.ErrInvalidHeading)
	}
	if sa.IAS < 0 || sa.IAS > 450 {
		return nil, fmt.Errorf("%.0f: %w", sa.IAS, nav.ErrInvalidSpeed)
	}

	ac := NewAircraft(callsign, nav.InitialPosition{
		Location:          loc,
		Time:              start,
		IndicatedAltitude: sa.Altitude,
		AltimeterSetting:  sa.Altimeter,
		MagneticHeading:   sa.Heading,
		IAS:               sa.IAS,
	}, env, cfg, lg)

	fms := ac.Fms()
	fms.CruiseAltitude = sa.CruiseAltitude
	fms.Departure = sa.Departure
	fms.Arrival = sa.Arrival

	rb := routeBuilder{env: env, time: start, ref: loc, radiusBuffer: cfg.HoldRadiusBuffer}
	for i, leg := range sa.Route {
		rl, err := rb.build(leg)
		if err != nil {
			return nil, fmt.Errorf("leg %d: %w", i+1, err)
		}
		fms.AddLeg(rl)
	}

	if sa.AssignedAltitude != 0 {
		if err := ac.control.AssignAltitude(ac.pos, sa.AssignedAltitude, 0); err != nil {
			return nil, err
		}
	}
	if sa.LNAV {
		if err := ac.control.EngageLNAV(ac.pos); err != nil {
			return nil, err
		}
	}
	ac.updateState()
	return ac, nil
}

// routeBuilder turns ScenarioLegs into route legs. Consecutive legs that
// share a fix share its *FmsPoint.
type routeBuilder struct {
	env          Environment
	time         time.Time
	ref          math.Point2LL
	prev         *av.FmsPoint
	radiusBuffer float32
}

func (rb *routeBuilder) point(leg ScenarioLeg) (*av.FmsPoint, error) {
	if leg.Fix == "" {
		return nil, fmt.Errorf("%s leg without a fix: %w", leg.Type, ErrInvalidScenario)
	}

	var p *av.FmsPoint
	if rb.prev != nil && rb.prev.Identifier == leg.Fix {
		p = rb.prev
	} else {
		fix, err := findFix(rb.env, leg.Fix, rb.ref)
		if err != nil {
			return nil, err
		}
		p = av.NewFmsPoint(fix.Identifier, fix.Location, av.FlyBy)
	}

	if leg.FlyOver {
		p.Type = av.FlyOver
	}
	if leg.Altitude.Type != av.ConstraintNone {
		p.Altitude = leg.Altitude
	}
	if leg.Speed.Type != av.ConstraintNone {
		p.Speed = leg.Speed
	}
	rb.ref = p.Location
	return p, nil
}

func (rb *routeBuilder) trueCourse(magnetic float32, p math.Point2LL) float32 {
	return av.MagneticToTrue(rb.env.Magnetic, p, rb.time, magnetic)
}

func (rb *routeBuilder) build(leg ScenarioLeg) (nav.RouteLeg, error) {
	var rl nav.RouteLeg

	switch strings.ToUpper(leg.Type) {
	case "DF":
		p, err := rb.point(leg)
		if err != nil {
			return nil, err
		}
		rl = nav.NewDirectToFixLeg(p)

	case "CF":
		p, err := rb.point(leg)
		if err != nil {
			return nil, err
		}
		rl = nav.NewCourseToFixLeg(p, rb.trueCourse(leg.Course, p.Location))

	case "TF":
		start := rb.prev
		if start == nil {
			return nil, fmt.Errorf("TF leg without a start point: %w", ErrInvalidScenario)
		}
		p, err := rb.point(leg)
		if err != nil {
			return nil, err
		}
		rl = nav.NewTrackToFixLeg(start, p)

	case "FA", "CA":
		if leg.Altitude.Altitude == 0 {
			return nil, fmt.Errorf("%s leg without an altitude: %w", leg.Type, ErrInvalidScenario)
		}
		var start *av.FmsPoint
		if strings.ToUpper(leg.Type) == "FA" {
			p, err := rb.point(leg)
			if err != nil {
				return nil, err
			}
			start = p
		}
		rl = nav.NewFixToAltitudeLeg(start, rb.trueCourse(leg.Course, rb.ref), leg.Altitude.Altitude)

	case "FM":
		p, err := rb.point(leg)
		if err != nil {
			return nil, err
		}
		rl = nav.NewFixToManualLeg(p, rb.trueCourse(leg.Course, p.Location))

	case "RF":
		start := rb.prev
		if start == nil {
			return nil, fmt.Errorf("RF leg without a start point: %w", ErrInvalidScenario)
		}
		center, err := findFix(rb.env, leg.Center, start.Location)
		if err != nil {
			return nil, err
		}
		p, err := rb.point(leg)
		if err != nil {
			return nil, err
		}
		rl = nav.NewRadiusToFixLeg(start, p, center.Location, leg.Turn)

	case "HM":
		p, err := rb.point(leg)
		if err != nil {
			return nil, err
		}
		p.Type = av.FlyOver
		h := nav.NewHoldController(p, rb.trueCourse(leg.Course, p.Location), leg.Course, leg.Turn, leg.Length, rb.radiusBuffer)
		rl = nav.NewHoldToManualLeg(h)

	default:
		return nil, fmt.Errorf("%q: %w", leg.Type, ErrUnknownLegType)
	}

	rb.prev = rl.EndPoint()
	return rl, nil
}
