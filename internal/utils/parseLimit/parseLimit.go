package utils

import (
	"strconv"
	"strings"
)

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// ParseLimit reads a list limit from a query value. Missing or invalid values
// fall back to DefaultLimit; large ones are clamped to MaxLimit.
func ParseLimit(s string) int {
	limit, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || limit <= 0 {
		return DefaultLimit
	}

	if limit > MaxLimit {
		return MaxLimit
	}

	return limit
}
