package pacaur

import (
	"context"
	"strings"
)

// Official-repository queries. All of these are read-only probes through the
// Runner; a non-zero exit is the query's negative answer, not a failure.

// isInstalled reports whether the exact package name is installed locally.
func (rec *Reconciler) isInstalled(ctx context.Context, name string) bool {
	_, err := rec.Run.Capture(ctx, rec.Pacman, "-Q", name)
	return err == nil
}

// isOfficial reports whether the name exists in the official repositories,
// treated as an exact-match regular-expression anchor.
func (rec *Reconciler) isOfficial(ctx context.Context, name string) bool {
	_, err := rec.Run.Capture(ctx, rec.Pacman, "-S", "-s", "^"+name+"$")
	return err == nil
}

// expandGroup returns the member list when name is an official-repository
// package group, or nil.
func (rec *Reconciler) expandGroup(ctx context.Context, name string) []string {
	out, err := rec.Run.Capture(ctx, rec.Pacman, "-S", "-g", "-q", name)
	if err != nil {
		return nil
	}
	var members []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			members = append(members, line)
		}
	}
	return members
}

// queryVersion returns the installed (or, with remote set, the repository)
// version of a package, or "" when it cannot be determined.
func (rec *Reconciler) queryVersion(ctx context.Context, name string, remote bool) string {
	queryParameter := "-Q"
	if remote {
		queryParameter = "-S"
	}
	out, err := rec.Run.Capture(ctx, rec.Pacman, queryParameter, "-i", name)
	if err != nil {
		return ""
	}
	return parseVersionField(out)
}

// parseVersionField extracts the Version field from pacman -Qi/-Si output.
func parseVersionField(out string) string {
	for _, line := range strings.Split(out, "\n") {
		if !strings.HasPrefix(line, "Version") {
			continue
		}
		if i := strings.Index(line, ":"); i >= 0 {
			return strings.TrimSpace(line[i+1:])
		}
	}
	return ""
}

// listOutdated returns the raw `-Q -u` listing from the handler, or "" when
// the system is up to date (pacman exits non-zero when nothing is outdated).
func (rec *Reconciler) listOutdated(ctx context.Context, h Handler) string {
	out, err := rec.Run.Capture(ctx, h.Path, "-Q", "-u")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}
