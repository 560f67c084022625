// Package partition names the log partition (sheet tab) requests are written to.
package partition

import (
	"fmt"
	"strings"
	"time"
)

// Naming selects how the partition name is chosen.
type Naming string

// Supported naming strategies.
const (
	Static  Naming = "static-name"
	Monthly Naming = "derived-from-current-period"
)

// PeriodLayout formats the current month, e.g. "March 2026".
const PeriodLayout = "January 2006"

// ParseNaming validates a naming option.
func ParseNaming(s string) (Naming, error) {
	switch n := Naming(strings.ToLower(strings.TrimSpace(s))); n {
	case Static, Monthly:
		return n, nil
	default:
		return "", fmt.Errorf("invalid partition naming %q, use: %s, %s", s, Static, Monthly)
	}
}

// Resolve returns the partition name for the given strategy at time now.
func Resolve(n Naming, staticName string, now time.Time) string {
	if n == Static {
		return staticName
	}
	return now.Format(PeriodLayout)
}
