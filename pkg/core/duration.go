package core

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var intervalPart = regexp.MustCompile(`^([0-9]+)\s*([A-Za-z]+)`)

// Months and years follow the 30.44 and 365.25 day conventions.
var intervalUnits = map[string]time.Duration{
	"nanos": time.Nanosecond, "nsec": time.Nanosecond, "ns": time.Nanosecond,
	"usec": time.Microsecond, "us": time.Microsecond,
	"millis": time.Millisecond, "msec": time.Millisecond, "ms": time.Millisecond,
	"seconds": time.Second, "second": time.Second, "secs": time.Second, "sec": time.Second, "s": time.Second,
	"minutes": time.Minute, "minute": time.Minute, "mins": time.Minute, "min": time.Minute, "m": time.Minute,
	"hours": time.Hour, "hour": time.Hour, "hrs": time.Hour, "hr": time.Hour, "h": time.Hour,
	"days": 24 * time.Hour, "day": 24 * time.Hour, "d": 24 * time.Hour,
	"weeks": 7 * 24 * time.Hour, "week": 7 * 24 * time.Hour, "w": 7 * 24 * time.Hour,
	"months": 2630016 * time.Second, "month": 2630016 * time.Second, "M": 2630016 * time.Second,
	"years": 31557600 * time.Second, "year": 31557600 * time.Second, "y": 31557600 * time.Second,
}

// ParseInterval reads a refresh interval. Go durations ("1h30m") are accepted
// as well as spelled-out sequences such as "1day", "2h 30m" or "3 weeks".
func ParseInterval(text string) (time.Duration, error) {
	if interval, err := time.ParseDuration(text); err == nil {
		return interval, nil
	}

	rest := strings.TrimSpace(text)
	if rest == "" {
		return 0, errors.New("empty duration")
	}

	var total time.Duration
	for rest != "" {
		match := intervalPart.FindStringSubmatch(rest)
		if match == nil {
			return 0, fmt.Errorf("invalid duration %q", text)
		}
		unit, ok := intervalUnits[match[2]]
		if !ok {
			return 0, fmt.Errorf("unknown unit %q in duration %q", match[2], text)
		}
		count, err := strconv.ParseInt(match[1], 10, 64)
		if err != nil || count > int64(math.MaxInt64/unit) {
			return 0, fmt.Errorf("duration %q overflows", text)
		}
		part := time.Duration(count) * unit
		if total > math.MaxInt64-part {
			return 0, fmt.Errorf("duration %q overflows", text)
		}
		total += part
		rest = strings.TrimSpace(rest[len(match[0]):])
	}
	return total, nil
}
