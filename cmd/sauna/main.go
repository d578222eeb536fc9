// cmd/sauna/main.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

// sauna loads a scenario and flies its aircraft, reading control
// instructions of the form "CALLSIGN CMD CMD..." from standard input.

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	av "github.com/sauna-sim/sauna-api-sub001/aviation"
	"github.com/sauna-sim/sauna-api-sub001/log"
	"github.com/sauna-sim/sauna-api-sub001/nav"
	"github.com/sauna-sim/sauna-api-sub001/sim"
	"github.com/sauna-sim/sauna-api-sub001/util"
	"github.com/sauna-sim/sauna-api-sub001/wx"

	"github.com/klauspost/compress/zstd"
)

var (
	configFilename   = flag.String("config", "", "filename of JSON configuration file")
	scenarioFilename = flag.String("scenario", "", "filename of JSON file with the scenario definition")
	reportsFilename  = flag.String("reports", "", "write position reports to this file (msgpack; zstd-compressed if it ends in .zst) instead of the log")
	logLevel         = flag.String("loglevel", "", "logging level: debug, info, warn, error (overrides the configuration)")
	logDir           = flag.String("logdir", "", "log file directory (overrides the configuration)")
	cpuprofile       = flag.String("cpuprofile", "", "write CPU profile to file")
	memprofile       = flag.String("memprofile", "", "write memory profile to this file")
	navLog           = flag.Bool("navlog", false, "enable navigation logging")
	navLogCategories = flag.String("navlog-categories", "all", "navigation log categories (comma-separated: state,waypoint,altitude,speed,heading,approach,command,route,hold)")
	navLogCallsign   = flag.String("navlog-callsign", "", "filter navigation logs to only show this callsign (empty = show all)")
)

func main() {
	flag.Parse()

	if *scenarioFilename == "" {
		fmt.Fprintln(os.Stderr, "sauna: -scenario must be specified")
		flag.Usage()
		os.Exit(1)
	}

	cfg := sim.DefaultConfig()
	if *configFilename != "" {
		var err error
		if cfg, err = sim.LoadConfig(*configFilename); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *logDir != "" {
		cfg.LogDir = *logDir
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	// Initialize the logging system first and foremost.
	lg := log.New(cfg.LogLevel, cfg.LogDir)
	defer lg.CatchAndReportCrash()
	cfg.Log(lg)

	nav.InitNavLog(*navLog, *navLogCategories, *navLogCallsign)

	profiler, err := util.CreateProfiler(*cpuprofile, *memprofile)
	if err != nil {
		lg.Errorf("%v", err)
	}
	defer profiler.Cleanup()

	if err := run(cfg, lg); err != nil {
		lg.Errorf("%v", err)
		fmt.Fprintf(os.Stderr, "%v\n", err)
		profiler.Cleanup()
		os.Exit(1)
	}
}

func loadEnvironment(cfg sim.Config, lg *log.Logger) (sim.Environment, error) {
	var env sim.Environment

	if cfg.NavData != "" {
		db, err := av.OpenNavDatabase(cfg.NavData)
		if err != nil {
			return env, err
		}
		lg.Info("loaded navigation data", slog.String("path", cfg.NavData), slog.Int("fixes", db.NumFixes()))
		env.Nav = db
	}

	if cfg.WXGrid != "" {
		g, err := wx.OpenGrid(cfg.WXGrid)
		if err != nil {
			return env, err
		}
		lg.Info("loaded weather grid", slog.String("path", cfg.WXGrid))
		env.Atmosphere = g
	}

	m, err := cfg.MagneticModel()
	if err != nil {
		return env, err
	}
	env.Magnetic = m

	return env, nil
}

// openTransmitter returns the transmitter for position reports and a
// function that flushes and closes its output.
func openTransmitter(lg *log.Logger) (sim.Transmitter, func() error, error) {
	if *reportsFilename == "" {
		return sim.LogTransmitter{Logger: lg}, func() error { return nil }, nil
	}

	f, err := os.Create(*reportsFilename)
	if err != nil {
		return nil, nil, err
	}
	if filepath.Ext(*reportsFilename) != ".zst" {
		return sim.NewStreamTransmitter(f), f.Close, nil
	}

	zw, err := zstd.NewWriter(f)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	closer := func() error {
		if err := zw.Close(); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}
	return sim.NewStreamTransmitter(zw), closer, nil
}

func run(cfg sim.Config, lg *log.Logger) error {
	env, err := loadEnvironment(cfg, lg)
	if err != nil {
		return err
	}

	scenario, err := sim.OpenScenario(*scenarioFilename)
	if err != nil {
		return err
	}
	aircraft, err := scenario.Build(env, cfg, lg)
	if err != nil {
		return err
	}

	tx, closeReports, err := openTransmitter(lg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeReports(); err != nil {
			lg.Errorf("%s: %v", *reportsFilename, err)
		}
	}()

	s := sim.NewSim(cfg, env, tx, lg)
	for _, ac := range aircraft {
		if err := s.Add(ac); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		defer lg.CatchAndReportCrash()
		if err := readCommands(ctx, s, os.Stdin, os.Stdout); err != nil && err != io.EOF {
			lg.Warn("reading commands", slog.Any("error", err))
		}
	}()

	fmt.Fprintf(os.Stderr, "sauna: %d aircraft; enter \"CALLSIGN COMMANDS\", or \"?\" to list aircraft\n", len(aircraft))
	return s.Run(ctx)
}
