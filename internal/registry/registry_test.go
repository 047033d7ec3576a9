package registry

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

const (
	testRoot = "/work/repo"
	testFile = ".jira-issues.json"
)

func newTestRegistry(t *testing.T, contents string) (*Registry, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll(testRoot, 0o755))
	if contents != "" {
		require.NoError(t, afero.WriteFile(fs, testRoot+"/"+testFile, []byte(contents), 0o644))
	}
	return New(fs, testRoot, testFile), fs
}

func TestRegisterCreatesFile(t *testing.T) {
	reg, fs := newTestRegistry(t, "")

	previous, err := reg.Register("example")
	require.NoError(t, err)
	require.Empty(t, previous)

	data, err := afero.ReadFile(fs, reg.Path())
	require.NoError(t, err)
	require.JSONEq(t, `{"domain":"example"}`, string(data))

	domain, err := reg.Domain()
	require.NoError(t, err)
	require.Equal(t, "example", domain)
}

func TestRegisterReplacesDomainAndKeepsIssues(t *testing.T) {
	reg, fs := newTestRegistry(t, `{"domain":"old","issues":{"ABC-1":{"summary":"First","points":3}},"team":"core"}`)

	previous, err := reg.Register("example")
	require.NoError(t, err)
	require.Equal(t, "old", previous)

	data, err := afero.ReadFile(fs, reg.Path())
	require.NoError(t, err)
	require.JSONEq(t, `{"domain":"example","issues":{"ABC-1":{"summary":"First","points":3}},"team":"core"}`, string(data))
}

func TestDomainErrors(t *testing.T) {
	reg, _ := newTestRegistry(t, "")
	_, err := reg.Domain()
	require.True(t, errors.Is(err, ErrNotRegistered))

	reg, _ = newTestRegistry(t, `{"issues":{}}`)
	_, err = reg.Domain()
	require.True(t, errors.Is(err, ErrNoDomain))

	reg, _ = newTestRegistry(t, `{"domain":""}`)
	_, err = reg.Domain()
	require.True(t, errors.Is(err, ErrNoDomain))
}

func TestCachedSummary(t *testing.T) {
	reg, _ := newTestRegistry(t, `{"domain":"example","issues":{"ABC-1":{"summary":"Fix login bug"},"ABC-2":{}}}`)

	summary, ok, err := reg.CachedSummary("ABC-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Fix login bug", summary)

	_, ok, err = reg.CachedSummary("ABC-2")
	require.NoError(t, err)
	require.False(t, ok)

	_, ok, err = reg.CachedSummary("ABC-3")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCachedSummaryMissingFile(t *testing.T) {
	reg, _ := newTestRegistry(t, "")

	_, _, err := reg.CachedSummary("ABC-1")
	require.True(t, errors.Is(err, ErrNotRegistered))
}

func TestStoreSummary(t *testing.T) {
	reg, fs := newTestRegistry(t, `{"domain":"example","issues":{"ABC-2":{"summary":"Other","labels":["x"]}}}`)

	require.NoError(t, reg.StoreSummary("ABC-1", "Fix login bug"))
	require.NoError(t, reg.StoreSummary("ABC-2", "Renamed"))

	summary, ok, err := reg.CachedSummary("ABC-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Fix login bug", summary)

	data, err := afero.ReadFile(fs, reg.Path())
	require.NoError(t, err)
	require.JSONEq(t, `{"domain":"example","issues":{"ABC-1":{"summary":"Fix login bug"},"ABC-2":{"summary":"Renamed","labels":["x"]}}}`, string(data))
	require.Contains(t, string(data), "\n    \"domain\"")
}

func TestStoreSummaryKeepsMarkupVerbatim(t *testing.T) {
	reg, fs := newTestRegistry(t, `{"domain":"example"}`)

	require.NoError(t, reg.StoreSummary("ABC-1", "Fix <div> & co"))

	data, err := afero.ReadFile(fs, reg.Path())
	require.NoError(t, err)
	require.Contains(t, string(data), `"summary": "Fix <div> & co"`)

	summary, ok, err := reg.CachedSummary("ABC-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Fix <div> & co", summary)
}

func TestLoadMalformedFile(t *testing.T) {
	reg, _ := newTestRegistry(t, `[1,2]`)

	_, err := reg.Domain()
	require.ErrorContains(t, err, "parse project file")
	require.False(t, errors.Is(err, ErrNotRegistered))
}
