package config

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// DefaultIntervalSeconds is used when an interval cannot be parsed.
// Unparseable values fall back to checking once a day rather than failing;
// this is user-facing configuration, not protocol data.
const DefaultIntervalSeconds int64 = 86400

// unitSeconds maps every accepted unit spelling to its second count.
var unitSeconds = map[string]int64{
	"s": 1, "sec": 1, "secs": 1, "second": 1, "seconds": 1,
	"m": 60, "min": 60, "mins": 60, "minute": 60, "minutes": 60,
	"h": 3600, "hr": 3600, "hrs": 3600, "hour": 3600, "hours": 3600,
	"d": 86400, "day": 86400, "days": 86400,
	"w": 604800, "week": 604800, "weeks": 604800,
}

// intervalPattern matches an integer magnitude, optional internal
// whitespace, and an optional unit word.
var intervalPattern = regexp.MustCompile(`^([0-9]+)\s*([a-z]*)$`)

// ParseInterval converts an update interval string into seconds.
//
// "always" and "0" mean zero (check on every invocation). Otherwise the
// value is an integer magnitude with a unit suffix among seconds, minutes,
// hours, days, and weeks; single-letter and full-word spellings are both
// accepted, case-insensitively, with optional whitespace between magnitude
// and unit. A bare number is taken as seconds. Anything else yields
// DefaultIntervalSeconds.
func ParseInterval(s string) int64 {
	s = strings.ToLower(strings.TrimSpace(s))

	if s == "always" || s == "0" {
		return 0
	}

	m := intervalPattern.FindStringSubmatch(s)
	if m == nil {
		return DefaultIntervalSeconds
	}

	magnitude, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		// Digits that overflow int64 count as unparseable.
		return DefaultIntervalSeconds
	}

	if m[2] == "" {
		return magnitude
	}

	unit, ok := unitSeconds[m[2]]
	if !ok {
		return DefaultIntervalSeconds
	}
	if magnitude > math.MaxInt64/unit {
		// A product that overflows counts as unparseable too.
		return DefaultIntervalSeconds
	}
	return magnitude * unit
}
