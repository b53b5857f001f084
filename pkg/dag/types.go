package dag

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidDependencyType is returned when a dependency kind is not one of
// the four scheduling relations.
var ErrInvalidDependencyType = errors.New("invalid dependency type")

// DependencyType is the scheduling relation carried by an edge.
//
// Only the kind is recorded: every kind constrains acyclicity the same way
// and none of them feeds date arithmetic.
type DependencyType string

const (
	FinishToStart  DependencyType = "finish-to-start"
	StartToStart   DependencyType = "start-to-start"
	FinishToFinish DependencyType = "finish-to-finish"
	StartToFinish  DependencyType = "start-to-finish"
)

// retypeOrder is the fixed cycle walked by [DependencyType.Next].
var retypeOrder = []DependencyType{FinishToStart, StartToStart, FinishToFinish, StartToFinish}

// DependencyTypes returns the four kinds in retype order.
func DependencyTypes() []DependencyType {
	return append([]DependencyType(nil), retypeOrder...)
}

// Valid reports whether t is one of the four known kinds.
func (t DependencyType) Valid() bool {
	for _, k := range retypeOrder {
		if k == t {
			return true
		}
	}
	return false
}

// Next returns the kind following t in the retype cycle, wrapping around
// after start-to-finish. Unknown kinds restart the cycle at finish-to-start.
func (t DependencyType) Next() DependencyType {
	for i, k := range retypeOrder {
		if k == t {
			return retypeOrder[(i+1)%len(retypeOrder)]
		}
	}
	return FinishToStart
}

// Short returns the two-letter abbreviation (FS, SS, FF, SF).
func (t DependencyType) Short() string {
	switch t {
	case StartToStart:
		return "SS"
	case FinishToFinish:
		return "FF"
	case StartToFinish:
		return "SF"
	default:
		return "FS"
	}
}

// ParseDependencyType accepts the long form ("finish-to-start") or the
// abbreviation ("FS"), case-insensitively. An empty string yields
// [FinishToStart].
func ParseDependencyType(s string) (DependencyType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return FinishToStart, nil
	}
	for _, k := range retypeOrder {
		if s == string(k) || s == strings.ToLower(k.Short()) {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDependencyType, s)
}
