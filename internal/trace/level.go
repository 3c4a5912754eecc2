package trace

import (
	"fmt"
	"strings"
)

// Level controls tracing verbosity.
type Level uint8

const (
	// LevelOff disables tracing.
	LevelOff    Level = iota
	LevelError        // only the ring dump on failure
	LevelPhase        // driver and suite boundaries
	LevelDetail       // every fixture case
	LevelDebug        // everything including writes
)

// String returns the string representation of Level.
func (l Level) String() string {
	switch l {
	case LevelOff:
		return "off"
	case LevelError:
		return "error"
	case LevelPhase:
		return "phase"
	case LevelDetail:
		return "detail"
	case LevelDebug:
		return "debug"
	default:
		return "unknown"
	}
}

// ParseLevel converts a string to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "":
		return LevelOff, nil
	case "error":
		return LevelError, nil
	case "phase":
		return LevelPhase, nil
	case "detail":
		return LevelDetail, nil
	case "debug":
		return LevelDebug, nil
	default:
		return LevelOff, fmt.Errorf("invalid trace level: %q (expected: off|error|phase|detail|debug)", s)
	}
}

// ShouldEmit returns true if the given scope should emit at this level.
func (l Level) ShouldEmit(scope Scope) bool {
	switch l {
	case LevelPhase:
		return scope <= ScopeSuite
	case LevelDetail:
		return scope <= ScopeCase
	case LevelDebug:
		return true
	}
	// LevelError never streams; see Records.
	return false
}

// Records reports whether spans at scope are created at all. LevelError
// records everything so the ring holds the lead-up to a failure; stream
// output still follows ShouldEmit.
func (l Level) Records(scope Scope) bool {
	return l == LevelError || l.ShouldEmit(scope)
}
