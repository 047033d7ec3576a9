package utils

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"

	"github.com/Ilia01/jira-git-issue/internal/config"
)

func TestExtractIssueKey(t *testing.T) {
	tests := []struct {
		name   string
		branch string
		want   string
	}{
		{"basic", "issue/jira/ABC-123", "ABC-123"},
		{"digits in project", "issue/jira/AB2-7", "AB2-7"},
		{"lowercase project", "issue/jira/proj-42", "proj-42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractIssueKey(config.DefaultBranchPattern, tt.branch)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestExtractIssueKeyMismatch(t *testing.T) {
	for _, branch := range []string{
		"main",
		"issue/jira/ABC",
		"issue/jira/ABC-12x",
		"feature/issue/jira/ABC-1",
		"issue/jira/ABC-1/extra",
		"issue/github/ABC-1",
	} {
		_, err := ExtractIssueKey(config.DefaultBranchPattern, branch)
		require.Error(t, err, branch)
		require.True(t, errors.Is(err, ErrBranchMismatch), branch)
	}
}

func TestExtractIssueKeyCustomPattern(t *testing.T) {
	key, err := ExtractIssueKey(`^feat/([A-Z]+-\d+)/`, "feat/WAB-3848/implement_attempts")
	require.NoError(t, err)
	require.Equal(t, "WAB-3848", key)

	_, err = ExtractIssueKey(`([`, "feat/WAB-1/x")
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrBranchMismatch))
}
