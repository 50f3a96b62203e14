package pacaur

import (
	"context"
	"strings"
)

// Wrapper identifies one of the supported pacman wrappers with direct AUR
// support. The argument templates are fixed and not user-configurable;
// supporting a new wrapper means adding a variant here.
type Wrapper int

const (
	WrapperNone Wrapper = iota
	WrapperYay
	WrapperPikaur
	WrapperTrizen
)

// wrapperProbeOrder is the fixed scan order for optional wrappers.
var wrapperProbeOrder = []Wrapper{WrapperYay, WrapperPikaur, WrapperTrizen}

func (w Wrapper) Name() string {
	switch w {
	case WrapperYay:
		return "yay"
	case WrapperPikaur:
		return "pikaur"
	case WrapperTrizen:
		return "trizen"
	}
	return ""
}

// InstallArgs returns the wrapper's install template.
func (w Wrapper) InstallArgs() []string {
	switch w {
	case WrapperYay:
		return []string{"-S", "--needed", "--noconfirm", "--noprogressbar", "--cleanafter"}
	case WrapperPikaur, WrapperTrizen:
		return []string{"-S", "--needed", "--noconfirm", "--noprogressbar", "--noedit"}
	}
	return nil
}

// UpgradeArgs returns the wrapper's upgrade template.
func (w Wrapper) UpgradeArgs() []string {
	switch w {
	case WrapperYay, WrapperPikaur, WrapperTrizen:
		return []string{"-S", "-u", "-q", "--noconfirm"}
	}
	return nil
}

// Handler is the single program authorized to execute mutating actions for
// the current run: either pacman itself or one of the wrappers.
type Handler struct {
	Path    string
	Wrapper Wrapper
}

func (h Handler) IsWrapper() bool { return h.Wrapper != WrapperNone }

// InstallArgs returns the install argv template for the handler.
func (h Handler) InstallArgs() []string {
	if h.IsWrapper() {
		return h.Wrapper.InstallArgs()
	}
	return []string{"-S", "--needed", "--noconfirm", "--noprogressbar"}
}

// UpgradeArgs returns the upgrade argv template for the handler.
func (h Handler) UpgradeArgs() []string {
	if h.IsWrapper() {
		return h.Wrapper.UpgradeArgs()
	}
	return []string{"-S", "-u", "-q", "--noconfirm"}
}

// currentUser resolves the identity of the invoking user. A failed lookup is
// treated as root, matching the most restrictive interpretation.
func currentUser(ctx context.Context, r Runner) string {
	out, err := r.Capture(ctx, "whoami")
	if err != nil {
		return "root"
	}
	return strings.TrimSpace(out)
}

// selectHandler picks the program that will execute mutating actions. Root
// always uses pacman directly; a non-root user gets the first installed
// wrapper in probe order, or pacman when none is present (in which case any
// unofficial-repository action must fail with a privilege error).
func selectHandler(ctx context.Context, r Runner, pacman string) Handler {
	if currentUser(ctx, r) == "root" {
		return Handler{Path: pacman}
	}
	for _, w := range wrapperProbeOrder {
		if path, err := r.LookPath(w.Name()); err == nil {
			return Handler{Path: path, Wrapper: w}
		}
	}
	return Handler{Path: pacman}
}
