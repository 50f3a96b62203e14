package pacaur

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"
)

// PackageDetails is the observed state of one package: derived data,
// recomputed fresh whenever needed and never cached across a run.
type PackageDetails struct {
	Name      string
	Installed bool
	UpToDate  bool
}

// versionSuffixPattern strips the version/extension tail from a local
// package-archive filename (e.g. "bar-1.0.0-1-any.pkg.tar.xz" -> "bar").
var versionSuffixPattern = regexp.MustCompile(`-[0-9].*$`)

// localArchiveName derives the package name from a local archive path.
func localArchiveName(path string) string {
	return versionSuffixPattern.ReplaceAllString(filepath.Base(path), "")
}

// normalizeVersion keeps only the part after the epoch separator, so
// "1:2.3-1" and "2.3-1" compare equal.
func normalizeVersion(v string) string {
	if i := strings.LastIndex(v, ":"); i >= 0 {
		v = v[i+1:]
	}
	return strings.TrimSpace(v)
}

// details reports whether a package is installed and, when the desired
// state requires currency, whether the installed version matches the latest
// available one. When the remote version cannot be determined, currency
// cannot be disproved and the package counts as up to date (logged, since
// this silently suppresses upgrades while metadata is degraded).
func (rec *Reconciler) details(ctx context.Context, name string, origin Origin, desired State) (*PackageDetails, error) {
	installed := rec.isInstalled(ctx, name)
	d := &PackageDetails{Name: name, Installed: installed, UpToDate: installed}

	if desired != StateLatest || !installed {
		return d, nil
	}

	local := normalizeVersion(rec.queryVersion(ctx, name, false))

	var remote string
	if origin == OriginUnofficial {
		info, err := rec.AUR.Info(ctx, name)
		if err != nil {
			return nil, err
		}
		if info != nil {
			remote = normalizeVersion(info.Version)
		}
	} else {
		remote = normalizeVersion(rec.queryVersion(ctx, name, true))
	}

	if remote == "" {
		debugf("Remote version for %s could not be determined, assuming current\n", name)
		return d, nil
	}

	d.UpToDate = local == remote
	return d, nil
}
