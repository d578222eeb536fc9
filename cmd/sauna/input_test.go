// cmd/sauna/input_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sauna-sim/sauna-api-sub001/math"
	"github.com/sauna-sim/sauna-api-sub001/nav"
	"github.com/sauna-sim/sauna-api-sub001/sim"
)

func TestReadCommands(t *testing.T) {
	cfg := sim.DefaultConfig()
	cfg.UpdateInterval, cfg.ReportInterval = 10, 50
	cfg.CommandDelayMin, cfg.CommandDelayMax = 0, 0
	cfg.StatsInterval = 0

	s := sim.NewSim(cfg, sim.Environment{}, sim.LogTransmitter{}, nil)
	ac := sim.NewAircraft("AAL1", nav.InitialPosition{
		Location:          math.Point2LL{-73, 41},
		Time:              time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		IndicatedAltitude: 5000,
		MagneticHeading:   90,
		IAS:               250,
	}, sim.Environment{}, cfg, nil)
	if err := s.Add(ac); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()
	defer func() {
		cancel()
		<-done
	}()

	input := "aal1 h180 c100\n\n?\nAAL1 ?\nUAL9 H180\nAAL1 XYZ\n"
	var out bytes.Buffer
	if err := readCommands(ctx, s, strings.NewReader(input), &out); err != io.EOF {
		t.Errorf("readCommands = %v, expected EOF", err)
	}

	for _, expected := range []string{
		"AAL1 h180 c100: ok",
		"AAL1     (41.",
		"lateral",
		"UAL9 H180: " + sim.ErrNoMatchingAircraft.Error(),
		"AAL1 XYZ: " + sim.ErrInvalidCommandSyntax.Error(),
	} {
		if !strings.Contains(out.String(), expected) {
			t.Errorf("output %q doesn't contain %q", out.String(), expected)
		}
	}
}
