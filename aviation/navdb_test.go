// aviation/navdb_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"errors"
	"strings"
	"testing"

	"github.com/sauna-sim/sauna-api-sub001/math"
)

const testNavDatabase = `{
  "fixes": [
    {"id": "MERIT", "location": "N41.22.53.000,W073.08.14.000"},
    {"id": "DUPE", "location": [10, 10]},
    {"id": "DUPE", "location": [-73, 41]}
  ],
  "localizers": [
    {"airport": "KJFK", "runway": "22L", "threshold": "40.6621,-73.7765", "course": 211,
     "elevation": 13, "glideslope_angle": 3, "crossing_height": 50}
  ],
  "holds": [
    {"fix": "MERIT", "inbound_course": 250, "turn": "R", "leg_length": {"type": "time", "value": 1}}
  ]
}`

func TestLoadNavDatabase(t *testing.T) {
	db, err := LoadNavDatabase(strings.NewReader(testNavDatabase))
	if err != nil {
		t.Fatal(err)
	}
	if db.NumFixes() != 3 {
		t.Errorf("NumFixes = %d, expected 3", db.NumFixes())
	}

	if f, ok := db.FindFixNear("merit", math.Point2LL{-73, 41}); !ok || f.Identifier != "MERIT" {
		t.Errorf("FindFixNear(merit) = %+v, %v", f, ok)
	}
	if f, ok := db.FindFixNear("DUPE", math.Point2LL{-72, 40}); !ok || f.Location != (math.Point2LL{-73, 41}) {
		t.Errorf("FindFixNear(DUPE) returned %+v, expected the nearer one", f)
	}
	if _, ok := db.FindFixNear("NOPE", math.Point2LL{}); ok {
		t.Errorf("FindFixNear(NOPE) should fail")
	}

	loc, ok := db.FindLocalizer("kjfk", "22l")
	if !ok || loc.Course != 211 || loc.GlideslopeAngle != 3 {
		t.Errorf("FindLocalizer = %+v, %v", loc, ok)
	}

	h, ok := db.FindPublishedHold("MERIT")
	if !ok || h.Turn != TurnRight || h.LegLength.Type != HoldLegTime || h.InboundCourse != 250 {
		t.Errorf("FindPublishedHold = %+v, %v", h, ok)
	}
}

func TestLoadNavDatabaseErrors(t *testing.T) {
	for _, s := range []string{
		`{"fixes": [{"location": [1, 2]}]}`,
		`{"holds": [{"fix": "X", "leg_length": {"type": "distance", "value": 0}}]}`,
		`{"fixes": [}`,
	} {
		if _, err := LoadNavDatabase(strings.NewReader(s)); !errors.Is(err, ErrInvalidNavDatabase) {
			t.Errorf("LoadNavDatabase(%s) error = %v, expected ErrInvalidNavDatabase", s, err)
		}
	}
}
