// Package timespec turns --since/--until flag values into ledger timestamps.
package timespec

import (
	"fmt"
	"time"
)

// now is replaced in tests.
var now = time.Now

// Parse parses a time specification into a Unix timestamp in seconds, the unit
// of pixel timestamps. Supports two formats:
//   - Go duration format: "1h", "30m", "1h30m", "2h45m30s", read as that long ago
//   - RFC3339 timestamps: "2025-10-29T13:00:00Z"
func Parse(spec string) (uint64, error) {
	if spec == "" {
		return 0, fmt.Errorf("empty time specification")
	}

	if t, err := time.Parse(time.RFC3339, spec); err == nil {
		return toUnix(t, spec)
	}

	if d, err := time.ParseDuration(spec); err == nil {
		if d < 0 {
			return 0, fmt.Errorf("negative duration: %s", spec)
		}
		return toUnix(now().Add(-d), spec)
	}

	return 0, fmt.Errorf("invalid time specification: %s (use duration like '1h30m' or RFC3339 like '2025-10-29T13:00:00Z')", spec)
}

func toUnix(t time.Time, spec string) (uint64, error) {
	if t.Unix() < 0 {
		return 0, fmt.Errorf("time specification before 1970: %s", spec)
	}
	return uint64(t.Unix()), nil
}

// ParseRange parses both --since and --until flags into a time range.
// Zero values indicate "no bound" for that end of the range.
func ParseRange(since, until string) (uint64, uint64, error) {
	var sinceTS, untilTS uint64
	var err error

	if since != "" {
		sinceTS, err = Parse(since)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid --since: %w", err)
		}
	}

	if until != "" {
		untilTS, err = Parse(until)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid --until: %w", err)
		}
	}

	if sinceTS > 0 && untilTS > 0 && sinceTS >= untilTS {
		return 0, 0, fmt.Errorf("--since must be before --until")
	}

	return sinceTS, untilTS, nil
}
