package version

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/khanglvm/course-hub/internal/logging"
)

const (
	RepoOwner = "khanglvm"
	RepoName  = "course-hub"
	UpdateURL = "https://api.github.com/repos/" + RepoOwner + "/" + RepoName + "/releases/latest"

	checkInterval = 24 * time.Hour
)

var checkMu sync.Mutex

// GitHubRelease represents a GitHub release API response.
type GitHubRelease struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// UpdateCache stores update check state.
type UpdateCache struct {
	LastUpdateCheck  time.Time `json:"lastUpdateCheck"`
	LastKnownVersion string    `json:"lastKnownVersion"`
}

// Checker looks up the latest published release.
type Checker struct {
	// URL is the releases endpoint (default UpdateURL).
	URL string

	// CachePath is where the last result is kept (default
	// ~/.course-hub/update-cache.json). Empty disables caching when the
	// home directory cannot be resolved.
	CachePath string

	// Current is the running version (default Version).
	Current string

	client *http.Client
}

// NewChecker creates a checker with defaults filled in.
func NewChecker() *Checker {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 2
	retryClient.HTTPClient.Timeout = 10 * time.Second
	retryClient.Logger = logging.NewLeveledLogger("update")

	c := &Checker{
		URL:     UpdateURL,
		Current: Version,
		client:  retryClient.StandardClient(),
	}
	if path, err := defaultCachePath(); err == nil {
		c.CachePath = path
	}
	return c
}

// CheckUpdate returns the latest version when it is newer than the running
// one, or "" when up to date. A result fetched within the last 24 hours is
// served from the cache unless force is set.
func (c *Checker) CheckUpdate(ctx context.Context, force bool) (string, error) {
	checkMu.Lock()
	defer checkMu.Unlock()

	cache := c.loadCache()
	if !force && cache.LastKnownVersion != "" && time.Since(cache.LastUpdateCheck) < checkInterval {
		return c.newer(cache.LastKnownVersion), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", Get().UserAgent())

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to check for updates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("GitHub API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var release GitHubRelease
	if err := json.Unmarshal(body, &release); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	latest := strings.TrimPrefix(release.TagName, "v")
	cache.LastUpdateCheck = time.Now()
	cache.LastKnownVersion = latest
	if err := c.saveCache(cache); err != nil {
		logging.Warn().Err(err).Msg("failed to save update cache")
	}

	return c.newer(latest), nil
}

func (c *Checker) newer(latest string) string {
	current := strings.TrimPrefix(c.Current, "v")
	if current == "dev" || latest == "" {
		return ""
	}
	if compareVersions(latest, current) > 0 {
		return latest
	}
	return ""
}

// compareVersions compares dotted numeric versions ("1.10.0" > "1.9.3").
// Non-numeric parts compare as zero; pre-release suffixes are ignored.
func compareVersions(a, b string) int {
	pa, pb := versionParts(a), versionParts(b)
	for i := 0; i < max(len(pa), len(pb)); i++ {
		var x, y int
		if i < len(pa) {
			x = pa[i]
		}
		if i < len(pb) {
			y = pb[i]
		}
		switch {
		case x > y:
			return 1
		case x < y:
			return -1
		}
	}
	return 0
}

func versionParts(v string) []int {
	v = strings.TrimPrefix(v, "v")
	if i := strings.IndexAny(v, "-+"); i >= 0 {
		v = v[:i]
	}
	fields := strings.Split(v, ".")
	parts := make([]int, len(fields))
	for i, f := range fields {
		parts[i], _ = strconv.Atoi(f)
	}
	return parts
}

// defaultCachePath returns ~/.course-hub/update-cache.json.
func defaultCachePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".course-hub", "update-cache.json"), nil
}

func (c *Checker) loadCache() *UpdateCache {
	if c.CachePath == "" {
		return &UpdateCache{}
	}
	data, err := os.ReadFile(c.CachePath)
	if err != nil {
		return &UpdateCache{}
	}

	var cache UpdateCache
	if err := json.Unmarshal(data, &cache); err != nil {
		return &UpdateCache{}
	}
	return &cache
}

func (c *Checker) saveCache(cache *UpdateCache) error {
	if c.CachePath == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(c.CachePath), 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.CachePath, data, 0644)
}
