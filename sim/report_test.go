// sim/report_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"bytes"
	"context"
	"testing"

	"github.com/sauna-sim/sauna-api-sub001/log"
	"github.com/sauna-sim/sauna-api-sub001/math"
)

func TestStreamTransmitter(t *testing.T) {
	var buf bytes.Buffer
	tx := NewStreamTransmitter(&buf)

	aal := makeAircraft("AAL1", math.Point2LL{-73, 41}, Environment{}, testConfig())
	dal := makeAircraft("DAL22", math.Point2LL{2, 48}, Environment{}, testConfig())
	sent := []PositionReport{aal.Report(), dal.Report(), aal.Report()}
	for _, r := range sent {
		if err := tx.Transmit(context.Background(), r); err != nil {
			t.Fatalf("Transmit: %v", err)
		}
	}

	got, err := ReadPositionReports(&buf)
	if err != nil {
		t.Fatalf("ReadPositionReports: %v", err)
	}
	if len(got) != len(sent) {
		t.Fatalf("ReadPositionReports returned %d reports, expected %d", len(got), len(sent))
	}
	for i := range sent {
		g, s := got[i], sent[i]
		if g.Callsign != s.Callsign || g.Sequence != s.Sequence || g.Lateral != s.Lateral || g.Vertical != s.Vertical {
			t.Errorf("report %d = %+v, expected %+v", i, g, s)
		}
		if g.State.Location != s.State.Location || g.State.IndicatedAltitude != s.State.IndicatedAltitude {
			t.Errorf("report %d state = %+v, expected %+v", i, g.State, s.State)
		}
		if !g.State.Time.Equal(s.State.Time) {
			t.Errorf("report %d time = %v, expected %v", i, g.State.Time, s.State.Time)
		}
	}
	if got[2].Sequence != 2 {
		t.Errorf("AAL1's second report has sequence %d, expected 2", got[2].Sequence)
	}
}

func TestLogTransmitter(t *testing.T) {
	var buf bytes.Buffer
	tx := LogTransmitter{Logger: log.NewWithWriter(&buf, "info")}
	ac := makeAircraft("AAL1", math.Point2LL{-73, 41}, Environment{}, testConfig())

	if err := tx.Transmit(context.Background(), ac.Report()); err != nil {
		t.Fatalf("Transmit: %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"callsign":"AAL1"`)) {
		t.Errorf("log = %q, expected the report", buf.String())
	}

	b, err := ac.Report().Marshal()
	if err != nil {
		t.Fatal(err)
	}
	r, err := UnmarshalPositionReport(b)
	if err != nil || r.Callsign != "AAL1" || r.Sequence != 2 {
		t.Errorf("UnmarshalPositionReport = %+v, %v", r, err)
	}
}
