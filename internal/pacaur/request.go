package pacaur

import (
	"fmt"
	"strings"
)

// State is the desired state of the requested packages.
type State string

const (
	StateAbsent  State = "absent"
	StatePresent State = "present"
	StateLatest  State = "latest"
)

// ParseState validates a caller-supplied state string.
func ParseState(s string) (State, error) {
	switch State(s) {
	case StateAbsent, StatePresent, StateLatest:
		return State(s), nil
	}
	return "", &ValidationError{Msg: fmt.Sprintf("invalid state %q: must be absent, present or latest", s)}
}

// pastParticiple returns the verb used in outcome messages.
func (s State) pastParticiple() string {
	switch s {
	case StateAbsent:
		return "removed"
	case StateLatest:
		return "updated"
	default:
		return "installed"
	}
}

// Request describes one reconciliation run. It is immutable for the duration
// of the run.
type Request struct {
	Names       []string
	State       State
	Upgrade     bool
	UpdateCache bool
	Force       bool
	ExtraArgs   string
	CheckMode   bool
}

// Validate enforces the option contract: name and upgrade are mutually
// exclusive, and at least one of name, upgrade or update_cache is required.
func (r *Request) Validate() error {
	if len(r.Names) > 0 && r.Upgrade {
		return &ValidationError{Msg: "name and upgrade options are mutually exclusive"}
	}
	if len(r.Names) == 0 && !r.Upgrade && !r.UpdateCache {
		return &ValidationError{Msg: "one of name, upgrade or update_cache is required"}
	}
	switch r.State {
	case StateAbsent, StatePresent, StateLatest:
	default:
		return &ValidationError{Msg: fmt.Sprintf("invalid state %q: must be absent, present or latest", string(r.State))}
	}
	return nil
}

// splitExtraArgs splits the free-form extra-arguments string.
func splitExtraArgs(extraArgs string) []string {
	return strings.Fields(extraArgs)
}
