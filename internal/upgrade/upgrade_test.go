package upgrade

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/config"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/controller/setting"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/dbtest"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2.1.20|1.7.4|https://example.com/webtrees-2.1.20.zip", "2.1.20"},
		{"2.2.0|2.1.0|", "2.2.0"},
		{"2.2.0", ""},
		{"<html>error</html>", ""},
		{"v2.2|1|x", ""},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Parse(tt.in), tt.in)
	}
}

func TestNewer(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"2.1.20", "2.1.19", true},
		{"2.1.20", "2.1.20", false},
		{"2.1", "2.1.0", false},
		{"2.2.0", "2.1.0-dev", true},
		{"2.1.0", "2.1.0-dev", false},
		{"2.0.9", "2.1.0", false},
		{"", "2.1.0", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Newer(tt.a, tt.b), "%s > %s", tt.a, tt.b)
	}
}

type fakeFetch struct {
	calls int
	body  string
	err   error
}

func (f *fakeFetch) fetch(context.Context, string, time.Duration) (string, error) {
	f.calls++

	return f.body, f.err
}

func TestLatest(t *testing.T) {
	db := dbtest.Open(t)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	f := &fakeFetch{body: "2.1.20|1.7.4|url"}

	c := New(db, config.Upgrade{URL: "https://example.com/latest", CheckInterval: time.Hour, Timeout: time.Second})
	c.fetch = f.fetch
	c.now = func() time.Time { return now }

	assert.Equal(t, "2.1.20", c.Latest(context.Background()))
	assert.Equal(t, 1, f.calls)

	// cached within the interval
	f.body = "2.2.0|1.7.4|url"
	now = now.Add(30 * time.Minute)
	assert.Equal(t, "2.1.20", c.Latest(context.Background()))
	assert.Equal(t, 1, f.calls)

	// a failed fetch keeps the cached version
	f.err = errors.New("offline")
	now = now.Add(time.Hour)
	assert.Equal(t, "2.1.20", c.Latest(context.Background()))
	assert.Equal(t, 2, f.calls)

	var stored Check
	require.NoError(t, setting.LoadJSON(db, SettingName, &stored))
	assert.Equal(t, "2.1.20", stored.Version)
	assert.True(t, stored.CheckedAt.Equal(now))

	f.err = nil
	now = now.Add(2 * time.Hour)
	assert.Equal(t, "2.2.0", c.Latest(context.Background()))
}

func TestLatestDisabled(t *testing.T) {
	db := dbtest.Open(t)
	f := &fakeFetch{body: "2.1.20|1.7.4|url"}

	c := New(db, config.Upgrade{CheckInterval: time.Hour})
	c.fetch = f.fetch

	assert.Empty(t, c.Latest(context.Background()))
	assert.Zero(t, f.calls)
}
