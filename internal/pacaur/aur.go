package pacaur

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
	"lukechampine.com/blake3"
)

// AURInfo is the subset of the AUR RPC result the reconciler needs.
type AURInfo struct {
	Name    string `json:"Name"`
	Version string `json:"Version"`
	URLPath string `json:"URLPath"`
}

type aurResponse struct {
	ResultCount int       `json:"resultcount"`
	Results     []AURInfo `json:"results"`
}

// MetadataClient is the read-only AUR surface: exact-name metadata lookup
// and snapshot download.
type MetadataClient interface {
	// Info returns the metadata for an exact package name, or nil when the
	// AUR has no such package.
	Info(ctx context.Context, name string) (*AURInfo, error)
	// DownloadSnapshot fetches the source snapshot for a package and returns
	// the local archive path.
	DownloadSnapshot(ctx context.Context, info *AURInfo) (string, error)
}

// AURClient talks to the AUR RPC endpoint over HTTPS.
type AURClient struct {
	BaseURL string
	HTTP    *http.Client
}

func NewAURClient(baseURL string) *AURClient {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	// Slow AUR mirrors during release storms; give the handshake room.
	transport.TLSHandshakeTimeout = 30 * time.Second

	return &AURClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Transport: transport,
			Timeout:   300 * time.Second, // 5 min total timeout for large snapshots
		},
	}
}

func (c *AURClient) Info(ctx context.Context, name string) (*AURInfo, error) {
	rpcURL := fmt.Sprintf("%s/rpc/?v=5&type=info&arg=%s", c.BaseURL, url.QueryEscape(name))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rpcURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("aur metadata query failed for %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("aur metadata query failed for %s: %s", name, resp.Status)
	}

	var parsed aurResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("aur metadata response for %s is not valid json: %w", name, err)
	}
	if parsed.ResultCount < 1 || len(parsed.Results) == 0 {
		return nil, nil
	}

	info := parsed.Results[0]
	info.Name = strings.TrimSpace(info.Name)
	info.Version = strings.TrimSpace(info.Version)
	info.URLPath = strings.TrimSpace(info.URLPath)
	return &info, nil
}

// DownloadSnapshot fetches the snapshot tarball into the pacaur cache and
// returns its path. The cache key includes the package version, so a bumped
// package re-downloads while repeated runs against the same version reuse
// the cached archive. A file lock serializes concurrent pacaur invocations
// filling the same cache slot.
func (c *AURClient) DownloadSnapshot(ctx context.Context, info *AURInfo) (string, error) {
	if info.URLPath == "" {
		return "", &MetadataError{Package: info.Name}
	}
	fileURL := c.BaseURL + info.URLPath

	if err := os.MkdirAll(CacheStore, 0o755); err != nil {
		return "", fmt.Errorf("failed to create snapshot cache %s: %w", CacheStore, err)
	}

	hashName := fmt.Sprintf("%s-%s.tar.gz", hashString(fileURL+info.Version), info.Name)
	cachePath := filepath.Join(CacheStore, hashName)
	lockPath := cachePath + ".lock"

	lFile, err := os.Create(lockPath)
	if err != nil {
		return "", fmt.Errorf("failed to create lock file: %w", err)
	}
	defer lFile.Close()

	// Blocks while another invocation downloads the same snapshot.
	if err := unix.Flock(int(lFile.Fd()), unix.LOCK_EX); err != nil {
		return "", fmt.Errorf("failed to acquire lock for download: %w", err)
	}
	defer unix.Flock(int(lFile.Fd()), unix.LOCK_UN)

	if _, err := os.Stat(cachePath); err == nil {
		debugf("Snapshot already in cache: %s\n", cachePath)
		_ = os.Remove(lockPath)
		return cachePath, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("snapshot download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("snapshot download failed with status: %s", resp.Status)
	}

	// Write to a temp file first so a failed download never poisons the cache.
	tmpPath := fmt.Sprintf("%s.tmp.%d", cachePath, time.Now().UnixNano())
	out, err := os.Create(tmpPath)
	if err != nil {
		return "", fmt.Errorf("failed to create snapshot file: %w", err)
	}

	var w io.Writer = out
	if term.IsTerminal(int(os.Stderr.Fd())) && resp.ContentLength > 0 {
		bar := progressbar.DefaultBytes(resp.ContentLength, "downloading "+info.Name)
		w = io.MultiWriter(out, bar)
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		out.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmpPath)
		return "", err
	}

	if err := os.Rename(tmpPath, cachePath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to move snapshot into cache: %w", err)
	}
	_ = os.Remove(lockPath)

	debugf("Snapshot cached: %s\n", cachePath)
	return cachePath, nil
}

// hashString produces a stable cache key (32-byte BLAKE3, hex).
func hashString(s string) string {
	h := blake3.New(32, nil)
	h.Write([]byte(s))
	return fmt.Sprintf("%x", h.Sum(nil))
}
