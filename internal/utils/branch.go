package utils

import (
	"regexp"

	"github.com/cockroachdb/errors"
)

var ErrBranchMismatch = errors.New("branch does not reference a jira issue")

// ExtractIssueKey returns the first capture group of pattern matched
// against branch.
func ExtractIssueKey(pattern, branch string) (string, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return "", errors.Wrap(err, "compile branch pattern")
	}
	match := re.FindStringSubmatch(branch)
	if len(match) < 2 || match[1] == "" {
		return "", errors.Wrapf(ErrBranchMismatch, "branch '%s'", branch)
	}
	return match[1], nil
}
