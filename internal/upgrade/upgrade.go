// Package upgrade looks up the latest released version and caches it in the site settings.
package upgrade

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/config"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/controller/setting"
)

// SettingName is the site setting holding the cached Check.
const SettingName = "latest_version"

var versionRegex = regexp.MustCompile(`^[0-9.]+\|[0-9.]+\|`)

// Check is the cached result of the last lookup.
type Check struct {
	Version   string    `json:"version"`
	CheckedAt time.Time `json:"checked_at"`
}

// FetchFunc downloads the version file.
type FetchFunc func(ctx context.Context, url string, timeout time.Duration) (string, error)

// Checker returns the latest version, fetching it at most once per interval.
type Checker struct {
	db    *gorm.DB
	cfg   config.Upgrade
	fetch FetchFunc
	now   func() time.Time
}

// New returns a Checker using the Fiber HTTP client.
func New(db *gorm.DB, cfg config.Upgrade) *Checker {
	return &Checker{db: db, cfg: cfg, fetch: Fetch, now: time.Now}
}

// Parse returns the version of a version file "<version>|<min version>|...", or "" when malformed.
func Parse(txt string) string {
	if !versionRegex.MatchString(txt) {
		return ""
	}

	version, _, _ := strings.Cut(txt, "|")

	return version
}

// Newer reports whether version a is later than version b. Missing parts count as 0,
// a suffix such as "-dev" is ignored.
func Newer(a, b string) bool {
	if a == "" {
		return false
	}

	pa, pb := parts(a), parts(b)

	for i := range max(len(pa), len(pb)) {
		var x, y int
		if i < len(pa) {
			x = pa[i]
		}

		if i < len(pb) {
			y = pb[i]
		}

		if x != y {
			return x > y
		}
	}

	return false
}

func parts(v string) []int {
	v, _, _ = strings.Cut(v, "-")

	var out []int

	for _, p := range strings.Split(v, ".") {
		n, _ := strconv.Atoi(p)
		out = append(out, n)
	}

	return out
}

// Latest returns the latest version, "" when unknown.
// A failed lookup keeps the cached value and is retried after the next interval.
func (c *Checker) Latest(ctx context.Context) string {
	var cached Check

	err := setting.LoadJSON(c.db, SettingName, &cached)
	if err != nil && !errors.Is(err, setting.ErrSettingNotFound) {
		log.Warn().Err(err).Msg("failed to read the cached latest version")
	}

	if c.cfg.URL == "" || c.now().Sub(cached.CheckedAt) < c.cfg.CheckInterval {
		return cached.Version
	}

	txt, err := c.fetch(ctx, c.cfg.URL, c.cfg.Timeout)
	if err != nil {
		log.Warn().Err(err).Str("url", c.cfg.URL).Msg("failed to fetch the latest version")
	} else if v := Parse(txt); v != "" {
		cached.Version = v
	}

	cached.CheckedAt = c.now()

	if err = setting.SaveJSON(c.db, SettingName, cached); err != nil {
		log.Error().Err(err).Msg("failed to cache the latest version")
	}

	return cached.Version
}

// Fetch downloads url with the Fiber client.
func Fetch(ctx context.Context, url string, timeout time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	agent := fiber.Get(url).Timeout(timeout)

	status, body, errs := agent.String()
	if len(errs) > 0 {
		return "", errors.Join(errs...)
	}

	if status != fiber.StatusOK {
		return "", fmt.Errorf("unexpected status %d", status)
	}

	return body, nil
}
