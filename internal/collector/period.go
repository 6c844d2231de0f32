package collector

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParsePeriod converts a lookback like "7d", "3mo", "1y", "2wk" into a duration.
func ParsePeriod(period string) (time.Duration, error) {
	n, unit, err := splitSpec(period)
	if err != nil {
		return 0, err
	}
	day := 24 * time.Hour
	switch unit {
	case "d":
		return time.Duration(n) * day, nil
	case "wk":
		return time.Duration(n) * 7 * day, nil
	case "mo":
		return time.Duration(n) * 30 * day, nil
	case "y":
		return time.Duration(n) * 365 * day, nil
	}
	return 0, fmt.Errorf("unknown period unit %q in %q", unit, period)
}

// ParseInterval converts a bar interval like "1m", "1h", "1d", "1wk" into a duration.
func ParseInterval(interval string) (time.Duration, error) {
	n, unit, err := splitSpec(interval)
	if err != nil {
		return 0, err
	}
	switch unit {
	case "m":
		return time.Duration(n) * time.Minute, nil
	case "h":
		return time.Duration(n) * time.Hour, nil
	case "d":
		return time.Duration(n) * 24 * time.Hour, nil
	case "wk":
		return time.Duration(n) * 7 * 24 * time.Hour, nil
	}
	return 0, fmt.Errorf("unknown interval unit %q in %q", unit, interval)
}

func splitSpec(s string) (int, string, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 || i == len(s) {
		return 0, "", fmt.Errorf("malformed spec %q", s)
	}
	n, err := strconv.Atoi(s[:i])
	if err != nil || n <= 0 {
		return 0, "", fmt.Errorf("malformed spec %q", s)
	}
	return n, s[i:], nil
}
