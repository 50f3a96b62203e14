package pacaur

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeVersion(t *testing.T) {
	assert.Equal(t, "2.3-1", normalizeVersion("1:2.3-1"))
	assert.Equal(t, "2.3-1", normalizeVersion("2.3-1"))
	assert.Equal(t, "2.3-1", normalizeVersion("  2.3-1\n"))
	assert.Equal(t, "", normalizeVersion(""))
}

func TestLocalArchiveName(t *testing.T) {
	assert.Equal(t, "bar", localArchiveName("/tmp/bar-1.0.0-1-any.pkg.tar.xz"))
	assert.Equal(t, "linux-lts", localArchiveName("linux-lts-6.6.1-1-x86_64.pkg.tar.zst"))
}

func TestParseVersionField(t *testing.T) {
	out := "Name            : vim\nVersion         : 9.0.2116-1\nDescription     : editor\n"
	assert.Equal(t, "9.0.2116-1", parseVersionField(out))
	assert.Equal(t, "", parseVersionField("no such field"))
}

func TestDetailsPresentChecksInstallOnly(t *testing.T) {
	rec, run, _ := newTestReconciler()
	run.responses[key("pacman", "-Q", "vim")] = "vim 9.0.2116-1\n"

	d, err := rec.details(context.Background(), "vim", OriginOfficial, StatePresent)
	require.NoError(t, err)

	assert.True(t, d.Installed)
	assert.True(t, d.UpToDate)
	// present never compares versions
	assert.Len(t, run.captures, 1)
}

func TestDetailsNotInstalled(t *testing.T) {
	rec, _, _ := newTestReconciler()

	d, err := rec.details(context.Background(), "vim", OriginOfficial, StateLatest)
	require.NoError(t, err)

	assert.False(t, d.Installed)
	assert.False(t, d.UpToDate)
}

func TestDetailsLatestOfficialOutdated(t *testing.T) {
	rec, run, _ := newTestReconciler()
	run.responses[key("pacman", "-Q", "vim")] = "vim 9.0-1\n"
	run.responses[key("pacman", "-Q", "-i", "vim")] = "Version         : 9.0-1\n"
	run.responses[key("pacman", "-S", "-i", "vim")] = "Version         : 9.1-1\n"

	d, err := rec.details(context.Background(), "vim", OriginOfficial, StateLatest)
	require.NoError(t, err)

	assert.True(t, d.Installed)
	assert.False(t, d.UpToDate)
}

func TestDetailsLatestEpochStripped(t *testing.T) {
	rec, run, _ := newTestReconciler()
	run.responses[key("pacman", "-Q", "vim")] = "vim 9.0-1\n"
	run.responses[key("pacman", "-Q", "-i", "vim")] = "Version         : 1:9.0-1\n"
	run.responses[key("pacman", "-S", "-i", "vim")] = "Version         : 9.0-1\n"

	d, err := rec.details(context.Background(), "vim", OriginOfficial, StateLatest)
	require.NoError(t, err)

	assert.True(t, d.UpToDate)
}

func TestDetailsLatestUnofficialUsesMetadata(t *testing.T) {
	rec, run, aur := newTestReconciler()
	run.responses[key("pacman", "-Q", "spotify")] = "spotify 1.2.0-1\n"
	run.responses[key("pacman", "-Q", "-i", "spotify")] = "Version         : 1.2.0-1\n"
	aur.infos["spotify"] = &AURInfo{Name: "spotify", Version: "1.2.1-1"}

	d, err := rec.details(context.Background(), "spotify", OriginUnofficial, StateLatest)
	require.NoError(t, err)

	assert.False(t, d.UpToDate)
}

func TestDetailsLatestUndeterminableRemoteCountsAsCurrent(t *testing.T) {
	rec, run, _ := newTestReconciler()
	run.responses[key("pacman", "-Q", "vim")] = "vim 9.0-1\n"
	run.responses[key("pacman", "-Q", "-i", "vim")] = "Version         : 9.0-1\n"
	// no -S -i response scripted: remote lookup fails

	d, err := rec.details(context.Background(), "vim", OriginOfficial, StateLatest)
	require.NoError(t, err)

	assert.True(t, d.UpToDate)
}
