// cmd/sauna/input.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/sauna-sim/sauna-api-sub001/sim"
)

// syncWriter serializes writes from the goroutines that wait for command
// results.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Println(args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.w, args...)
}

// readCommands reads lines from r until EOF or ctx is cancelled:
//
//	?                   list the aircraft
//	CALLSIGN ?          print the aircraft's state
//	CALLSIGN CMD...     run commands
//
// Command results are written to w as they arrive; results that arrive
// after r is exhausted are still written as long as ctx is live.
func readCommands(ctx context.Context, s *sim.Sim, r io.Reader, w io.Writer) error {
	out := &syncWriter{w: w}
	var wg sync.WaitGroup
	defer wg.Wait()

	lines := bufio.NewScanner(r)
	for lines.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		line := strings.TrimSpace(lines.Text())
		callsign, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)

		switch {
		case line == "":
			continue

		case line == "?":
			for _, ac := range s.Registry.All() {
				st := ac.State()
				out.Println(fmt.Sprintf("%-8s %s alt %.0f hdg %03.0f gs %.0f", ac.Callsign,
					st.Location.DDString(), st.IndicatedAltitude, st.MagneticHeading, st.GS))
			}

		case rest == "?":
			ac, ok := s.Registry.Get(callsign)
			if !ok {
				out.Println(callsign+":", sim.ErrNoMatchingAircraft)
				continue
			}
			if status, err := ac.Status(ctx); err != nil {
				out.Println(ac.Callsign+":", err)
			} else {
				out.Println(status)
			}

		default:
			ch := s.RunCommands(ctx, callsign, rest)
			wg.Add(1)
			go func() {
				defer wg.Done()
				select {
				case r := <-ch:
					out.Println(r)
					if r.Output != "" {
						out.Println(r.Output)
					}
				case <-ctx.Done():
				}
			}()
		}
	}

	if err := lines.Err(); err != nil {
		return err
	}
	return io.EOF
}
