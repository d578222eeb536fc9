// log/log_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNilLogger(t *testing.T) {
	var l *Logger
	// None of these should panic.
	l.Debug("debug")
	l.Infof("info %d", 1)
	if l.With("callsign", "AAL1") != nil {
		t.Errorf("With on nil logger should return nil")
	}
}

func TestLevelsAndAttributes(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "warn").With("callsign", "DAL22")

	l.Info("dropped")
	l.Warnf("fell back to %s", "ISA")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 record, got %d: %q", len(lines), buf.String())
	}

	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatal(err)
	}
	if rec["msg"] != "fell back to ISA" || rec["callsign"] != "DAL22" || rec["level"] != "WARN" {
		t.Errorf("unexpected record %v", rec)
	}
	if _, ok := rec["callstack"]; !ok {
		t.Errorf("record is missing callstack")
	}
}

func TestCatchAndReportCrash(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "info")

	func() {
		defer l.CatchAndReportCrash()
		panic("boom")
	}()
	if !strings.Contains(buf.String(), "Crashed: boom") {
		t.Errorf("crash was not logged: %q", buf.String())
	}
}
