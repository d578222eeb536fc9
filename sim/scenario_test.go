// sim/scenario_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"errors"
	"slices"
	"strings"
	"testing"

	av "github.com/sauna-sim/sauna-api-sub001/aviation"
	"github.com/sauna-sim/sauna-api-sub001/math"
	"github.com/sauna-sim/sauna-api-sub001/nav"
)

const testScenario = `{
  "start_time": "2025-06-01T12:00:00Z",
  "aircraft": {
    "UAL9": {
      "fix": "AAAAA", "altitude": 5000, "heading": 90, "ias": 250,
      "assigned_altitude": 8000, "cruise_altitude": 35000,
      "departure": "KTST", "arrival": "KXYZ",
      "route": [
        {"type": "DF", "fix": "AAAAA"},
        {"type": "TF", "fix": "BBBBB", "altitude": {"type": "at_or_above", "altitude": 6000}},
        {"type": "RF", "fix": "CCCCC", "center": "CNTR", "turn": "L"},
        {"type": "HM", "fix": "CCCCC", "course": 180, "turn": "R", "hold_length": {"type": "distance", "value": 5}}
      ],
      "lnav": true
    },
    "aal1": {
      "location": [-0.1, 0.1], "altitude": 3000, "altimeter": 1020, "heading": 180, "ias": 210,
      "route": [
        {"type": "CF", "fix": "BBBBB", "course": 45, "fly_over": true},
        {"type": "FA", "fix": "BBBBB", "course": 90, "altitude": {"type": "at", "altitude": 7000}},
        {"type": "CA", "course": 120, "altitude": {"type": "at", "altitude": 9000}},
        {"type": "FM", "fix": "MERIT", "course": 270}
      ]
    }
  }
}`

func TestLoadScenario(t *testing.T) {
	s, err := LoadScenario(strings.NewReader(testScenario))
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(s.Callsigns, []string{"UAL9", "AAL1"}) {
		t.Errorf("Callsigns = %v, expected the file's order [UAL9 AAL1]", s.Callsigns)
	}
	if !s.StartTime.Equal(testStart) {
		t.Errorf("StartTime = %v, expected %v", s.StartTime, testStart)
	}

	ual := s.Aircraft["UAL9"]
	if len(ual.Route) != 4 || ual.Route[1].Altitude.Type != av.ConstraintAtOrAbove || ual.Route[2].Turn != av.TurnLeft {
		t.Errorf("UAL9 route = %+v", ual.Route)
	}
	if ual.Route[3].Length != (av.HoldLegLength{Type: av.HoldLegDistance, Value: 5}) {
		t.Errorf("hold length = %v, expected 5 nm", ual.Route[3].Length)
	}
	if aal := s.Aircraft["AAL1"]; aal.Location != (math.Point2LL{-0.1, 0.1}) || aal.Altimeter != 1020 {
		t.Errorf("AAL1 = %+v", aal)
	}
}

func TestLoadScenarioErrors(t *testing.T) {
	tests := []struct {
		name     string
		scenario string
		err      error
	}{
		{"duplicate callsign", `{"aircraft": {"AAL1": {"altitude": 1000}, "aal1": {"altitude": 2000}}}`, ErrDuplicateCallsign},
		{"unknown field", `{"aircraft": {"AAL1": {"altitud": 1000}}}`, ErrInvalidScenario},
		{"syntax", `{"aircraft": {"AAL1": `, ErrInvalidScenario},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(strings.NewReader(tt.scenario))
			if !errors.Is(err, tt.err) {
				t.Errorf("LoadScenario() = %v, expected %v", err, tt.err)
			}
		})
	}
}

func TestBuildScenario(t *testing.T) {
	s, err := LoadScenario(strings.NewReader(testScenario))
	if err != nil {
		t.Fatal(err)
	}
	env := Environment{Nav: testNavDatabase(t)}
	all, err := s.Build(env, testConfig(), nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(all) != 2 || all[0].Callsign != "UAL9" || all[1].Callsign != "AAL1" {
		t.Fatalf("Build returned %v, expected UAL9 and AAL1", all)
	}

	ual := all[0]
	if loc := ual.State().Location; loc != (math.Point2LL{0, 0}) {
		t.Errorf("UAL9 location = %v, expected AAAAA", loc)
	}
	legs := ual.Fms().Legs()
	types := make([]nav.LegType, len(legs))
	for i, leg := range legs {
		types[i] = leg.Type()
	}
	if !slices.Equal(types, []nav.LegType{nav.LegDirectToFix, nav.LegTrackToFix, nav.LegRadiusToFix, nav.LegHoldToManual}) {
		t.Fatalf("UAL9 legs = %v", types)
	}
	// Consecutive legs share their points.
	if legs[1].StartPoint() != legs[0].EndPoint() || legs[3].EndPoint() != legs[2].EndPoint() {
		t.Errorf("route points aren't shared: %v", legs)
	}
	if p := legs[1].EndPoint(); p.Altitude != (av.AltitudeConstraint{Type: av.ConstraintAtOrAbove, Altitude: 6000}) {
		t.Errorf("BBBBB constraint = %+v, expected at or above 6000", p.Altitude)
	}
	if legs[3].EndPoint().Type != av.FlyOver {
		t.Errorf("hold fix is %s, expected fly-over", legs[3].EndPoint().Type)
	}
	if fms := ual.Fms(); fms.CruiseAltitude != 35000 || fms.Departure != "KTST" || fms.Arrival != "KXYZ" {
		t.Errorf("FMS = %v %s %s", fms.CruiseAltitude, fms.Departure, fms.Arrival)
	}
	if _, ok := ual.control.ArmedLateral().(*nav.LNAV); !ok {
		t.Errorf("armed lateral = %v, expected LNAV", ual.control.ArmedLateral())
	}
	if r := ual.Report(); r.Vertical != "VS" {
		t.Errorf("vertical mode = %s, expected a climb to the assigned altitude", r.Vertical)
	}

	aal := all[1]
	if st := aal.State(); st.AltimeterSetting != 1020 {
		t.Errorf("AAL1 altimeter = %v, expected 1020", st.AltimeterSetting)
	}
	legs = aal.Fms().Legs()
	types = types[:0]
	for _, leg := range legs {
		types = append(types, leg.Type())
	}
	if !slices.Equal(types, []nav.LegType{nav.LegCourseToFix, nav.LegFixToAltitude, nav.LegFixToAltitude, nav.LegFixToManual}) {
		t.Fatalf("AAL1 legs = %v", types)
	}
	if legs[0].EndPoint().Type != av.FlyOver {
		t.Errorf("BBBBB is %s, expected fly-over", legs[0].EndPoint().Type)
	}
}

func TestBuildScenarioErrors(t *testing.T) {
	tests := []struct {
		name     string
		aircraft ScenarioAircraft
		err      error
	}{
		{"unknown fix", ScenarioAircraft{Fix: "NOWHERE", IAS: 250}, av.ErrNoMatchingFix},
		{"heading", ScenarioAircraft{Heading: 400, IAS: 250}, nav.ErrInvalidHeading},
		{"altitude", ScenarioAircraft{Altitude: 70000, IAS: 250}, nav.ErrInvalidAltitude},
		{"speed", ScenarioAircraft{IAS: 900}, nav.ErrInvalidSpeed},
		{"leg type", ScenarioAircraft{IAS: 250, Route: []ScenarioLeg{{Type: "PI", Fix: "AAAAA"}}}, ErrUnknownLegType},
		{"TF first", ScenarioAircraft{IAS: 250, Route: []ScenarioLeg{{Type: "TF", Fix: "AAAAA"}}}, ErrInvalidScenario},
		{"leg fix", ScenarioAircraft{IAS: 250, Route: []ScenarioLeg{{Type: "DF", Fix: "NOWHERE"}}}, av.ErrNoMatchingFix},
		{"FA altitude", ScenarioAircraft{IAS: 250, Route: []ScenarioLeg{{Type: "FA", Fix: "AAAAA", Course: 90}}}, ErrInvalidScenario},
		{"LNAV without route", ScenarioAircraft{IAS: 250, LNAV: true}, nav.ErrNoRoute},
	}
	env := Environment{Nav: testNavDatabase(t)}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Scenario{
				StartTime: testStart,
				Callsigns: []string{"AAL1"},
				Aircraft:  map[string]ScenarioAircraft{"AAL1": tt.aircraft},
			}
			_, err := s.Build(env, testConfig(), nil)
			if !errors.Is(err, tt.err) {
				t.Errorf("Build() = %v, expected %v", err, tt.err)
			}
			if !errors.Is(err, ErrInvalidScenario) {
				t.Errorf("Build() = %v, expected it to wrap %v", err, ErrInvalidScenario)
			}
		})
	}
}
