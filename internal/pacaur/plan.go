package pacaur

import "context"

// needsChange applies the convergence decision table.
//
//	absent  -> installed
//	present -> not installed
//	latest  -> not installed or not up to date
func needsChange(desired State, d *PackageDetails) bool {
	switch desired {
	case StateAbsent:
		return d.Installed
	case StatePresent:
		return !d.Installed
	case StateLatest:
		return !d.Installed || !d.UpToDate
	}
	return false
}

// validateHandlerMix rejects install requests that batch official and AUR
// packages when no wrapper is available: the makepkg path cannot accept
// officially-sourced names.
func validateHandlerMix(b *buckets, h Handler) error {
	if len(b.aur) > 0 && len(b.official) > 0 && !h.IsWrapper() {
		return &ValidationError{
			Msg: "could not install packages from the official repositories mixed with aur packages when no pacman wrapper is installed",
		}
	}
	return nil
}

// filterNeedingChange returns, in caller order, the identifiers whose state
// diverges from the desired state. For local archives the details lookup
// runs under the normalized package name while the returned value stays the
// original path, which is what the install command needs.
func (rec *Reconciler) filterNeedingChange(ctx context.Context, names []string, origin Origin, desired State) ([]string, error) {
	var out []string
	for _, name := range names {
		lookup := name
		if origin == OriginLocalFile {
			lookup = localArchiveName(name)
		}
		d, err := rec.details(ctx, lookup, origin, desired)
		if err != nil {
			return nil, err
		}
		if needsChange(desired, d) {
			out = append(out, name)
		}
	}
	return out, nil
}

// countChanges tallies the would-be changes across a bucket without acting.
func (rec *Reconciler) countChanges(ctx context.Context, names []string, origin Origin, desired State) (int, error) {
	changed, err := rec.filterNeedingChange(ctx, names, origin, desired)
	if err != nil {
		return 0, err
	}
	return len(changed), nil
}
