// aviation/navdb.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"fmt"
	"io"
	"strings"

	"github.com/sauna-sim/sauna-api-sub001/math"
	"github.com/sauna-sim/sauna-api-sub001/util"
)

type Fix struct {
	Identifier string        `json:"id"`
	Location   math.Point2LL `json:"location"`
}

func (f Fix) RoutePoint() RoutePoint {
	return RoutePoint{Identifier: f.Identifier, Location: f.Location}
}

// Localizer describes the lateral and vertical guidance of an
// instrument approach to a runway.
type Localizer struct {
	Airport   string        `json:"airport"`
	Runway    string        `json:"runway"`
	Threshold math.Point2LL `json:"threshold"`
	// True course of the final approach course.
	Course float32 `json:"course"`
	// Elevation of the threshold in feet MSL.
	Elevation float32 `json:"elevation"`
	// Glideslope angle in degrees; 0 for localizer-only approaches.
	GlideslopeAngle float32 `json:"glideslope_angle"`
	// Threshold crossing height in feet.
	CrossingHeight float32 `json:"crossing_height"`
}

// NavigationOracle provides the navigation data used to resolve
// commands and build routes.
type NavigationOracle interface {
	// FindFixNear returns the fix with the given identifier that is
	// closest to p; identifiers are not globally unique.
	FindFixNear(id string, p math.Point2LL) (Fix, bool)
	FindLocalizer(airport, runway string) (Localizer, bool)
	FindPublishedHold(fix string) (PublishedHold, bool)
}

// NavDatabase is an in-memory NavigationOracle.
type NavDatabase struct {
	fixes      map[string][]Fix
	localizers map[string]Localizer
	holds      map[string]PublishedHold
}

func NewNavDatabase() *NavDatabase {
	return &NavDatabase{
		fixes:      make(map[string][]Fix),
		localizers: make(map[string]Localizer),
		holds:      make(map[string]PublishedHold),
	}
}

func localizerKey(airport, runway string) string {
	return strings.ToUpper(airport) + "/" + strings.ToUpper(runway)
}

func (db *NavDatabase) AddFix(f Fix) {
	id := strings.ToUpper(f.Identifier)
	db.fixes[id] = append(db.fixes[id], f)
}

func (db *NavDatabase) AddLocalizer(loc Localizer) error {
	key := localizerKey(loc.Airport, loc.Runway)
	if _, ok := db.localizers[key]; ok {
		return fmt.Errorf("%s: %w", key, ErrDuplicateLocalizer)
	}
	db.localizers[key] = loc
	return nil
}

func (db *NavDatabase) AddPublishedHold(h PublishedHold) {
	db.holds[strings.ToUpper(h.Fix)] = h
}

func (db *NavDatabase) FindFixNear(id string, p math.Point2LL) (Fix, bool) {
	var best Fix
	bestDist := float32(-1)
	for _, f := range db.fixes[strings.ToUpper(id)] {
		if d := math.DistanceMeters(p, f.Location); bestDist < 0 || d < bestDist {
			best, bestDist = f, d
		}
	}
	return best, bestDist >= 0
}

func (db *NavDatabase) FindLocalizer(airport, runway string) (Localizer, bool) {
	loc, ok := db.localizers[localizerKey(airport, runway)]
	return loc, ok
}

func (db *NavDatabase) FindPublishedHold(fix string) (PublishedHold, bool) {
	h, ok := db.holds[strings.ToUpper(fix)]
	return h, ok
}

func (db *NavDatabase) NumFixes() int {
	n := 0
	for _, f := range db.fixes {
		n += len(f)
	}
	return n
}

type navDatabaseFile struct {
	Fixes      []Fix           `json:"fixes"`
	Localizers []Localizer     `json:"localizers"`
	Holds      []PublishedHold `json:"holds"`
}

// LoadNavDatabase decodes a JSON navigation database.
func LoadNavDatabase(r io.Reader) (*NavDatabase, error) {
	var f navDatabaseFile
	if err := util.DecodeJSON(r, &f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidNavDatabase, err)
	}

	db := NewNavDatabase()
	for _, fix := range f.Fixes {
		if fix.Identifier == "" {
			return nil, fmt.Errorf("%w: fix at %s has no identifier", ErrInvalidNavDatabase, fix.Location.DDString())
		}
		db.AddFix(fix)
	}
	for _, loc := range f.Localizers {
		if err := db.AddLocalizer(loc); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidNavDatabase, err)
		}
	}
	for _, h := range f.Holds {
		if h.LegLength.Type != HoldLegDefault && h.LegLength.Value <= 0 {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidNavDatabase, h.Fix, ErrInvalidHoldLegValue)
		}
		db.AddPublishedHold(h)
	}
	return db, nil
}

// OpenNavDatabase loads a navigation database from a JSON file, which may
// be zstd-compressed.
func OpenNavDatabase(path string) (*NavDatabase, error) {
	r, err := util.OpenDataFile(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	db, err := LoadNavDatabase(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return db, nil
}
