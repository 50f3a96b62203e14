package pacaur

import (
	"fmt"
	"strings"
)

// ValidationError reports a request that can never succeed as stated:
// conflicting options, an unavailable package, or a disallowed origin mix.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// PrivilegeError reports a mutating action requested under the wrong
// identity: root attempting an AUR build, or a non-root user attempting an
// official-only action with no pacman wrapper installed.
type PrivilegeError struct {
	Msg string
}

func (e *PrivilegeError) Error() string { return e.Msg }

// CommandError reports a delegated command that exited non-zero when a
// non-zero exit was not itself the expected signal.
type CommandError struct {
	Cmd      string
	ExitCode int
	Stderr   string
}

func (e *CommandError) Error() string {
	if s := strings.TrimSpace(e.Stderr); s != "" {
		return fmt.Sprintf("%s failed (exit %d): %s", e.Cmd, e.ExitCode, s)
	}
	return fmt.Sprintf("%s failed (exit %d)", e.Cmd, e.ExitCode)
}

// MetadataError reports an AUR metadata lookup that returned no results when
// one was required to proceed.
type MetadataError struct {
	Package string
}

func (e *MetadataError) Error() string {
	return fmt.Sprintf("failed to install %s: could not retrieve the package details", e.Package)
}
