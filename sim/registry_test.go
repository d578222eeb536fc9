// sim/registry_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"errors"
	"slices"
	"testing"

	"github.com/sauna-sim/sauna-api-sub001/math"
	"github.com/sauna-sim/sauna-api-sub001/nav"
)

func makeAircraft(callsign string, loc math.Point2LL, env Environment, cfg Config) *Aircraft {
	return NewAircraft(callsign, nav.InitialPosition{
		Location:          loc,
		Time:              testStart,
		IndicatedAltitude: 5000,
		MagneticHeading:   90,
		IAS:               250,
	}, env, cfg, nil)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	cfg := DefaultConfig()

	dal := makeAircraft("dal22 ", math.Point2LL{}, Environment{}, cfg)
	aal := makeAircraft("AAL1", math.Point2LL{}, Environment{}, cfg)
	for _, ac := range []*Aircraft{dal, aal} {
		if err := r.Add(ac); err != nil {
			t.Fatalf("Add(%s): %v", ac.Callsign, err)
		}
	}
	if err := r.Add(makeAircraft("DAL22", math.Point2LL{}, Environment{}, cfg)); !errors.Is(err, ErrDuplicateCallsign) {
		t.Errorf("Add(DAL22) = %v, expected %v", err, ErrDuplicateCallsign)
	}

	if cs := r.Callsigns(); !slices.Equal(cs, []string{"AAL1", "DAL22"}) {
		t.Errorf("Callsigns = %v, expected [AAL1 DAL22]", cs)
	}
	if all := r.All(); len(all) != 2 || all[0] != aal || all[1] != dal {
		t.Errorf("All = %v, expected AAL1 then DAL22", all)
	}
	if ac, ok := r.Get(" dal22"); !ok || ac != dal {
		t.Errorf("Get(dal22) = %v, %v", ac, ok)
	}

	// Only the aircraft that is registered under the callsign is removed.
	other := makeAircraft("AAL1", math.Point2LL{}, Environment{}, cfg)
	r.removeAircraft(other)
	if r.Len() != 2 {
		t.Errorf("removeAircraft removed a different aircraft")
	}

	if ac, ok := r.Remove("aal1"); !ok || ac != aal {
		t.Errorf("Remove(aal1) = %v, %v", ac, ok)
	}
	if _, ok := r.Remove("AAL1"); ok {
		t.Errorf("Remove(AAL1) succeeded twice")
	}
	if _, ok := r.Get("AAL1"); ok {
		t.Errorf("Get(AAL1) found a removed aircraft")
	}
	if r.Len() != 1 {
		t.Errorf("Len = %d, expected 1", r.Len())
	}
}
