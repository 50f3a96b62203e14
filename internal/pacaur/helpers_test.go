package pacaur

import (
	"context"
	"fmt"
	"strings"
)

// fakeRunner scripts command results by their full argv. Unscripted Capture
// calls answer like a non-zero exit, which is how the reconciler reads "no".
type fakeRunner struct {
	// responses maps "name arg arg ..." to the stdout of a successful call.
	responses map[string]string
	// failures maps the same key to a forced error for Run calls.
	failures map[string]*CommandError
	// paths maps binary names LookPath should resolve.
	paths map[string]string

	runCalls []runCall
	captures []string
}

type runCall struct {
	dir  string
	argv string
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		responses: map[string]string{},
		failures:  map[string]*CommandError{},
		paths:     map[string]string{},
	}
}

func key(name string, args ...string) string {
	return strings.Join(append([]string{name}, args...), " ")
}

func (f *fakeRunner) Run(ctx context.Context, dir, name string, args ...string) error {
	k := key(name, args...)
	f.runCalls = append(f.runCalls, runCall{dir: dir, argv: k})
	if ce, ok := f.failures[k]; ok {
		return ce
	}
	return nil
}

func (f *fakeRunner) Capture(ctx context.Context, name string, args ...string) (string, error) {
	k := key(name, args...)
	f.captures = append(f.captures, k)
	if out, ok := f.responses[k]; ok {
		return out, nil
	}
	if ce, ok := f.failures[k]; ok {
		return "", ce
	}
	return "", &CommandError{Cmd: name, ExitCode: 1}
}

func (f *fakeRunner) LookPath(name string) (string, error) {
	if path, ok := f.paths[name]; ok {
		return path, nil
	}
	return "", fmt.Errorf("exec: %q: executable file not found in $PATH", name)
}

// fakeAUR scripts metadata lookups and snapshot downloads.
type fakeAUR struct {
	infos     map[string]*AURInfo
	err       error
	snapshots map[string]string
	infoCalls int
	// infoNilAfter, when positive, makes Info return no match once the call
	// count exceeds it. Simulates a package vanishing between classification
	// and the build step.
	infoNilAfter int
}

func newFakeAUR() *fakeAUR {
	return &fakeAUR{
		infos:     map[string]*AURInfo{},
		snapshots: map[string]string{},
	}
}

func (f *fakeAUR) Info(ctx context.Context, name string) (*AURInfo, error) {
	f.infoCalls++
	if f.err != nil {
		return nil, f.err
	}
	if f.infoNilAfter > 0 && f.infoCalls > f.infoNilAfter {
		return nil, nil
	}
	return f.infos[name], nil
}

func (f *fakeAUR) DownloadSnapshot(ctx context.Context, info *AURInfo) (string, error) {
	if path, ok := f.snapshots[info.Name]; ok {
		return path, nil
	}
	return "", fmt.Errorf("no snapshot scripted for %s", info.Name)
}

func newTestReconciler() (*Reconciler, *fakeRunner, *fakeAUR) {
	run := newFakeRunner()
	aur := newFakeAUR()
	return &Reconciler{Pacman: "pacman", Run: run, AUR: aur}, run, aur
}
