package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseRate reads "20/10s" style limits: 20 lines per 10 seconds.
// Units are s, m and h. An empty string means no limit.
func ParseRate(s string) (int64, time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, nil
	}
	limitStr, spanStr, found := strings.Cut(s, "/")
	if !found {
		return 0, 0, fmt.Errorf("unexpected rate format: %s", s)
	}
	limit, err := strconv.ParseInt(limitStr, 10, 64)
	if err != nil || limit < 0 {
		return 0, 0, fmt.Errorf("unexpected rate format: %s", s)
	}

	if len(spanStr) < 2 {
		return 0, 0, fmt.Errorf("unexpected time format: %s", spanStr)
	}
	unit := spanStr[len(spanStr)-1]
	value, err := strconv.Atoi(spanStr[:len(spanStr)-1])
	if err != nil || value <= 0 {
		return 0, 0, fmt.Errorf("unexpected time format: %s", spanStr)
	}
	switch unit {
	case 's':
		return limit, time.Duration(value) * time.Second, nil
	case 'm':
		return limit, time.Duration(value) * time.Minute, nil
	case 'h':
		return limit, time.Duration(value) * time.Hour, nil
	default:
		return 0, 0, fmt.Errorf("unexpected time unit: %s", string(unit))
	}
}
