//go:build navlog

// nav/log_debug.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"fmt"
	"strings"
	"time"
)

// Navigation logging configuration
var (
	navlogEnabled    bool
	navlogCategories map[string]bool
	navlogCallsign   string // filter to only log this callsign (empty = log all)
)

// InitNavLog initializes the navigation logging system
func InitNavLog(enabled bool, categories string, callsign string) {
	navlogEnabled = enabled
	navlogCategories = make(map[string]bool)
	navlogCallsign = strings.TrimSpace(callsign)

	if !enabled {
		return
	}

	if categories == "" || categories == "all" {
		for _, cat := range allNavLogCategories {
			navlogCategories[cat] = true
		}
	} else {
		for _, cat := range strings.Split(categories, ",") {
			navlogCategories[strings.TrimSpace(cat)] = true
		}
	}
}

func navlogActive(callsign, category string) bool {
	return navlogEnabled && navlogCategories[category] && (navlogCallsign == "" || navlogCallsign == callsign)
}

// NavLog logs a message with timestamp, callsign, and category
func NavLog(callsign string, simTime time.Time, category string, format string, args ...interface{}) {
	if !navlogActive(callsign, category) {
		return
	}

	// Format: [HH:MM:SS] [callsign] [category] message
	fmt.Printf("[%s] [%s] [%s] %s\n", simTime.Format("15:04:05"), callsign, category, fmt.Sprintf(format, args...))
}

// NavLogEnabled returns whether navigation logging is enabled for a given category
func NavLogEnabled(category string) bool {
	return navlogEnabled && navlogCategories[category]
}

// LogRoute logs the current route for an aircraft
func LogRoute(callsign string, simTime time.Time, legs []RouteLeg) {
	if !navlogActive(callsign, NavLogRoute) {
		return
	}

	var s []string
	for _, leg := range legs {
		s = append(s, leg.String())
	}
	route := strings.Join(s, " | ")
	if route == "" {
		route = "(no route)"
	}
	fmt.Printf("[%s] [%s] [%s] route: %s\n", simTime.Format("15:04:05"), callsign, NavLogRoute, route)
}
