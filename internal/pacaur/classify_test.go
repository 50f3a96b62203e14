package pacaur

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalArchivePattern(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{"foo-1.0.0-1-x86_64.pkg.tar.xz", true},
		{"foo-1.0.0-1-any.pkg.tar.zst", true},
		{"foo-1.0.0-1-any.pkg.tar.gz", true},
		{"foo-1.0.0-1-any.pkg.tar.bz2", true},
		{"foo-1.0.0-1-any.pkg.tar.Z", true},
		{"foo-1.0.0-1-any.pkg.tar", true},
		{"foo", false},
		{"foo.tar.gz", false},
		{"foo.pkg.tar.rar", false},
		{".pkg.tar", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, isLocalArchive(tc.name), tc.name)
	}
}

func TestClassifyAbsentSkipsQueries(t *testing.T) {
	rec, run, aur := newTestReconciler()
	req := &Request{Names: []string{"foo", "", "bar"}, State: StateAbsent}

	b, err := rec.classifyAll(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, []string{"foo", "bar"}, b.official)
	assert.Empty(t, b.aur)
	assert.Empty(t, b.local)
	assert.Zero(t, aur.infoCalls)
	assert.Empty(t, run.captures)
}

func TestClassifyAURTakesPrecedenceOverOfficial(t *testing.T) {
	rec, run, aur := newTestReconciler()
	aur.infos["spotify"] = &AURInfo{Name: "spotify", Version: "1.2.0-1"}
	run.responses[key("pacman", "-S", "-s", "^spotify$")] = "extra/spotify 1.2.0-1"

	b, err := rec.classifyAll(context.Background(), &Request{Names: []string{"spotify"}, State: StatePresent})
	require.NoError(t, err)

	assert.Equal(t, []string{"spotify"}, b.aur)
	assert.Empty(t, b.official)
}

func TestClassifyForceSuppressesAURLookup(t *testing.T) {
	rec, run, aur := newTestReconciler()
	aur.infos["spotify"] = &AURInfo{Name: "spotify"}
	run.responses[key("pacman", "-S", "-s", "^spotify$")] = "extra/spotify 1.2.0-1"

	b, err := rec.classifyAll(context.Background(), &Request{Names: []string{"spotify"}, State: StatePresent, Force: true})
	require.NoError(t, err)

	assert.Zero(t, aur.infoCalls)
	assert.Equal(t, []string{"spotify"}, b.official)
}

func TestClassifyGroupExpansion(t *testing.T) {
	rec, run, _ := newTestReconciler()
	run.responses[key("pacman", "-S", "-s", "^base-devel$")] = "group match"
	run.responses[key("pacman", "-S", "-g", "-q", "base-devel")] = "autoconf\nautomake\ngcc\n"

	b, err := rec.classifyAll(context.Background(), &Request{Names: []string{"base-devel"}, State: StatePresent})
	require.NoError(t, err)

	assert.Equal(t, []string{"autoconf", "automake", "gcc"}, b.official)
}

func TestClassifyLocalArchive(t *testing.T) {
	rec, _, aur := newTestReconciler()
	path := "/tmp/bar-1.0.0-1-any.pkg.tar.zst"

	b, err := rec.classifyAll(context.Background(), &Request{Names: []string{path}, State: StatePresent})
	require.NoError(t, err)

	assert.Equal(t, []string{path}, b.local)
	assert.Zero(t, aur.infoCalls)
}

func TestClassifyUnavailablePackage(t *testing.T) {
	rec, _, _ := newTestReconciler()

	_, err := rec.classifyAll(context.Background(), &Request{Names: []string{"no-such-pkg"}, State: StatePresent})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Msg, "unavailable package has been detected")
	assert.Contains(t, verr.Msg, "no-such-pkg")
}

func TestClassifyRejectsAURMixedWithLocal(t *testing.T) {
	rec, _, aur := newTestReconciler()
	aur.infos["spotify"] = &AURInfo{Name: "spotify"}

	_, err := rec.classifyAll(context.Background(), &Request{
		Names: []string{"spotify", "/tmp/bar-1.0-1-any.pkg.tar.xz"},
		State: StatePresent,
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "could not install aur packages mixed with local packages", verr.Msg)
}

func TestClassifyPropagatesMetadataErrors(t *testing.T) {
	rec, _, aur := newTestReconciler()
	aur.err = errors.New("aur is down")

	_, err := rec.classifyAll(context.Background(), &Request{Names: []string{"spotify"}, State: StatePresent})
	assert.ErrorContains(t, err, "aur is down")
}
