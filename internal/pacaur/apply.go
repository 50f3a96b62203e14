package pacaur

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Reconciler drives one run: classify the requested identifiers, compare
// observed state against the desired state, and issue the minimal set of
// mutating commands through the selected handler.
type Reconciler struct {
	// Pacman is the resolved path of the pacman binary.
	Pacman string
	Run    Runner
	AUR    MetadataClient

	handler *Handler
}

// resolveHandler memoizes the handler for the run. Handler selection is
// stable for a whole invocation; probing wrappers repeatedly would only add
// noise to the command log.
func (rec *Reconciler) resolveHandler(ctx context.Context) Handler {
	if rec.handler == nil {
		h := selectHandler(ctx, rec.Run, rec.Pacman)
		rec.handler = &h
	}
	return *rec.handler
}

// Apply runs the requested reconciliation. Stages run in a fixed order:
// database refresh, then system upgrade, then named packages. The first
// failing stage aborts the run; partial change counts are discarded.
func (rec *Reconciler) Apply(ctx context.Context, req *Request) (*Outcome, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	standalone := len(req.Names) == 0 && !req.Upgrade

	if req.UpdateCache {
		if req.CheckMode {
			if standalone {
				return &Outcome{Changed: true, Msg: "master package databases would be refreshed"}, nil
			}
		} else {
			if err := rec.refreshDatabases(ctx, req, standalone); err != nil {
				return nil, err
			}
			if standalone {
				return &Outcome{Changed: true, Msg: "master package databases have been refreshed"}, nil
			}
		}
	}

	if req.Upgrade {
		if req.CheckMode {
			return &Outcome{Changed: true, Msg: "system would be upgraded"}, nil
		}
		return rec.upgradeSystem(ctx, req)
	}

	if len(req.Names) > 0 {
		return rec.processNames(ctx, req)
	}

	return &Outcome{Msg: "no action has been taken"}, nil
}

// refreshDatabases refreshes the master package databases. Extra arguments
// are forwarded only when the refresh is the sole requested action, so they
// cannot leak into a combined refresh-then-install run.
func (rec *Reconciler) refreshDatabases(ctx context.Context, req *Request, standalone bool) error {
	h := rec.resolveHandler(ctx)
	if !h.IsWrapper() && currentUser(ctx, rec.Run) != "root" {
		return &PrivilegeError{
			Msg: "could not refresh the master package databases as a non-root user when no pacman wrapper is installed",
		}
	}

	args := []string{"-S", "-y"}
	if req.Force {
		args = append(args, "-y")
	}
	if standalone {
		args = append(args, splitExtraArgs(req.ExtraArgs)...)
	}

	cPrintf(colArrow, "-> ")
	cPrintf(colInfo, "Refreshing the master package databases\n")
	if err := rec.Run.Run(ctx, "", h.Path, args...); err != nil {
		return fmt.Errorf("could not refresh the master package databases: %w", err)
	}
	return nil
}

// upgradeSystem upgrades every outdated package. The outdated query decides
// whether anything runs at all: an up-to-date system short-circuits with no
// mutation.
func (rec *Reconciler) upgradeSystem(ctx context.Context, req *Request) (*Outcome, error) {
	h := rec.resolveHandler(ctx)
	if !h.IsWrapper() && currentUser(ctx, rec.Run) != "root" {
		return nil, &PrivilegeError{
			Msg: "could not upgrade the system as a non-root user when no pacman wrapper is installed",
		}
	}

	if rec.listOutdated(ctx, h) == "" {
		return &Outcome{Msg: "system is up to date"}, nil
	}

	args := append(h.UpgradeArgs(), splitExtraArgs(req.ExtraArgs)...)
	cPrintf(colArrow, "-> ")
	cPrintf(colInfo, "Upgrading the system\n")
	if err := rec.Run.Run(ctx, "", h.Path, args...); err != nil {
		return nil, fmt.Errorf("could not upgrade the system: %w", err)
	}
	return &Outcome{Changed: true, Msg: "system has been upgraded", Handler: h.Path}, nil
}

// processNames converges the named packages on the desired state.
func (rec *Reconciler) processNames(ctx context.Context, req *Request) (*Outcome, error) {
	b, err := rec.classifyAll(ctx, req)
	if err != nil {
		return nil, err
	}

	if req.CheckMode {
		return rec.planOnly(ctx, req, b)
	}
	if req.State == StateAbsent {
		return rec.removePackages(ctx, req, b.official)
	}
	return rec.installPackages(ctx, req, b)
}

// planOnly reports what a real run would change without issuing a single
// mutating command. Validation failures a real run would hit still apply;
// privilege checks do not, since no privileged action is attempted.
func (rec *Reconciler) planOnly(ctx context.Context, req *Request, b *buckets) (*Outcome, error) {
	if req.State != StateAbsent {
		if err := validateHandlerMix(b, rec.resolveHandler(ctx)); err != nil {
			return nil, err
		}
	}

	changes, err := rec.countChanges(ctx, b.official, OriginOfficial, req.State)
	if err != nil {
		return nil, err
	}
	if req.State != StateAbsent {
		n, err := rec.countChanges(ctx, b.aur, OriginUnofficial, req.State)
		if err != nil {
			return nil, err
		}
		changes += n
		n, err = rec.countChanges(ctx, b.local, OriginLocalFile, req.State)
		if err != nil {
			return nil, err
		}
		changes += n
	}

	return buildOutcome(req.State, changes, b.total() == 1, true, ""), nil
}

// removePackages uninstalls each installed package one at a time, in request
// order. Identifiers that are not installed are silently skipped.
func (rec *Reconciler) removePackages(ctx context.Context, req *Request, names []string) (*Outcome, error) {
	base := []string{"-R"}
	if req.Force {
		base = append(base, "-d", "-d")
	}
	base = append(base, "--noconfirm", "--noprogressbar")
	base = append(base, splitExtraArgs(req.ExtraArgs)...)

	changes := 0
	for _, name := range names {
		d, err := rec.details(ctx, name, OriginOfficial, req.State)
		if err != nil {
			return nil, err
		}
		if !d.Installed {
			continue
		}

		cPrintf(colArrow, "-> ")
		cPrintf(colInfo, "Removing %s\n", name)
		args := append(append([]string(nil), base...), name)
		if err := rec.Run.Run(ctx, "", rec.Pacman, args...); err != nil {
			return nil, fmt.Errorf("failed to remove %s: %w", name, err)
		}
		changes++
	}

	return buildOutcome(req.State, changes, len(names) == 1, false, ""), nil
}

// installPackages converges present/latest requests. Any AUR involvement
// switches to the AUR path with its inverted privilege rule; otherwise root
// installs official and local packages directly with pacman.
func (rec *Reconciler) installPackages(ctx context.Context, req *Request, b *buckets) (*Outcome, error) {
	if len(b.aur) > 0 {
		return rec.installWithAURSupport(ctx, req, b)
	}

	if currentUser(ctx, rec.Run) != "root" {
		return nil, &PrivilegeError{
			Msg: "could not install neither packages from the official repositories nor local packages as a non-root user",
		}
	}

	changes := 0
	if len(b.official) > 0 {
		n, err := rec.installWithPacman(ctx, req, b.official, false)
		if err != nil {
			return nil, err
		}
		changes += n
	}
	if len(b.local) > 0 {
		n, err := rec.installWithPacman(ctx, req, b.local, true)
		if err != nil {
			return nil, err
		}
		changes += n
	}

	return buildOutcome(req.State, changes, b.total() == 1, false, rec.Pacman), nil
}

// installWithPacman issues one batched pacman install for the identifiers
// that need a change. Local archives are compared under their normalized
// package name but installed by their original path via -U.
func (rec *Reconciler) installWithPacman(ctx context.Context, req *Request, names []string, localFiles bool) (int, error) {
	origin, op := OriginOfficial, "-S"
	if localFiles {
		origin, op = OriginLocalFile, "-U"
	}

	need, err := rec.filterNeedingChange(ctx, names, origin, req.State)
	if err != nil {
		return 0, err
	}
	if len(need) == 0 {
		return 0, nil
	}

	args := []string{op, "--needed", "--noconfirm", "--noprogressbar"}
	args = append(args, splitExtraArgs(req.ExtraArgs)...)
	args = append(args, need...)

	cPrintf(colArrow, "-> ")
	cPrintf(colInfo, "Installing %s\n", strings.Join(need, " "))
	if err := rec.Run.Run(ctx, "", rec.Pacman, args...); err != nil {
		return 0, fmt.Errorf("failed to install %s: %w", strings.Join(need, " "), err)
	}
	return len(need), nil
}

// installWithAURSupport handles any install involving AUR packages. A
// wrapper batches official and AUR names into one command under the
// wrapper's own privilege model; without one, official names are rejected
// and each AUR package is built locally with makepkg.
func (rec *Reconciler) installWithAURSupport(ctx context.Context, req *Request, b *buckets) (*Outcome, error) {
	if currentUser(ctx, rec.Run) == "root" {
		return nil, &PrivilegeError{Msg: "could not install aur packages as root"}
	}

	h := rec.resolveHandler(ctx)
	single := b.total() == 1

	if h.IsWrapper() {
		changes, err := rec.installWithWrapper(ctx, req, b, h)
		if err != nil {
			return nil, err
		}
		return buildOutcome(req.State, changes, single, false, h.Path), nil
	}

	if err := validateHandlerMix(b, h); err != nil {
		return nil, err
	}
	if _, err := rec.Run.LookPath("fakeroot"); err != nil {
		return nil, fmt.Errorf("fakeroot is required to build aur packages: %w", err)
	}
	makepkg, err := rec.Run.LookPath("makepkg")
	if err != nil {
		return nil, fmt.Errorf("makepkg is required to build aur packages: %w", err)
	}

	changes, err := rec.buildAURPackages(ctx, req, b.aur, makepkg)
	if err != nil {
		return nil, err
	}
	return buildOutcome(req.State, changes, single, false, makepkg), nil
}

// installWithWrapper issues one batched wrapper install covering both the
// official and the AUR names that need a change.
func (rec *Reconciler) installWithWrapper(ctx context.Context, req *Request, b *buckets, h Handler) (int, error) {
	need, err := rec.filterNeedingChange(ctx, b.official, OriginOfficial, req.State)
	if err != nil {
		return 0, err
	}
	aurNeed, err := rec.filterNeedingChange(ctx, b.aur, OriginUnofficial, req.State)
	if err != nil {
		return 0, err
	}
	need = append(need, aurNeed...)
	if len(need) == 0 {
		return 0, nil
	}

	args := append(h.InstallArgs(), splitExtraArgs(req.ExtraArgs)...)
	args = append(args, need...)

	cPrintf(colArrow, "-> ")
	cPrintf(colInfo, "Installing %s\n", strings.Join(need, " "))
	if err := rec.Run.Run(ctx, "", h.Path, args...); err != nil {
		return 0, fmt.Errorf("failed to install %s: %w", strings.Join(need, " "), err)
	}
	return len(need), nil
}

// buildAURPackages builds and installs each AUR package that needs a change,
// one at a time in request order, failing fast on the first error.
func (rec *Reconciler) buildAURPackages(ctx context.Context, req *Request, names []string, makepkg string) (int, error) {
	args := []string{"-s", "-i", "--needed", "--noconfirm", "--noprogressbar"}
	args = append(args, splitExtraArgs(req.ExtraArgs)...)

	changes := 0
	for _, name := range names {
		d, err := rec.details(ctx, name, OriginUnofficial, req.State)
		if err != nil {
			return 0, err
		}
		if !needsChange(req.State, d) {
			continue
		}

		info, err := rec.AUR.Info(ctx, name)
		if err != nil {
			return 0, err
		}
		if info == nil {
			return 0, &MetadataError{Package: name}
		}

		if err := rec.buildOne(ctx, makepkg, args, info); err != nil {
			return 0, fmt.Errorf("failed to install %s: %w", name, err)
		}
		changes++
	}
	return changes, nil
}

// buildOne downloads, unpacks and builds a single AUR package inside a
// scratch directory that is removed even on failure. The build runs with the
// snapshot's package directory as the child's working directory; the pacaur
// process itself never changes directory.
func (rec *Reconciler) buildOne(ctx context.Context, makepkg string, args []string, info *AURInfo) error {
	archive, err := rec.AUR.DownloadSnapshot(ctx, info)
	if err != nil {
		return err
	}

	scratch, err := os.MkdirTemp(tmpDir, "pacaur-build-")
	if err != nil {
		return fmt.Errorf("failed to create build directory: %w", err)
	}
	defer os.RemoveAll(scratch)

	if err := extractArchive(archive, scratch); err != nil {
		return err
	}

	buildDir := filepath.Join(scratch, info.Name)
	if _, err := os.Stat(buildDir); err != nil {
		return fmt.Errorf("snapshot did not unpack into the expected %s directory: %w", info.Name, err)
	}

	cPrintf(colArrow, "-> ")
	cPrintf(colInfo, "Building %s %s\n", info.Name, info.Version)
	if err := rec.Run.Run(ctx, buildDir, makepkg, args...); err != nil {
		return err
	}
	cPrintf(colSuccess, "Built and installed %s\n", info.Name)
	return nil
}
