package git

import (
	"bytes"
	"os/exec"
	"strings"

	"github.com/cockroachdb/errors"
)

var (
	ErrNotInRepository   = errors.New("not in a git repository")
	ErrBranchUnavailable = errors.New("cannot resolve current branch")
	ErrDetachedHead      = errors.New("detached HEAD state")
)

type Client struct {
	worktree string
}

func NewClient() (*Client, error) {
	out, err := runInDir("", "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "not in git repository"), ErrNotInRepository)
	}
	return &Client{worktree: strings.TrimSpace(out)}, nil
}

// CurrentBranch returns the short name of HEAD. A repository without
// commits has no branch to report.
func (c *Client) CurrentBranch() (string, error) {
	out, err := runInDir(c.worktree, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", errors.Mark(errors.Wrap(err, "resolve current branch"), ErrBranchUnavailable)
	}
	branch := strings.TrimSpace(out)
	if branch == "HEAD" {
		return "", ErrDetachedHead
	}
	return branch, nil
}

func (c *Client) Root() string {
	return c.worktree
}

func runInDir(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	if dir != "" {
		cmd.Dir = dir
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return "", errors.Newf("%s", strings.TrimSpace(stderr.String()))
		}
		return "", err
	}
	return stdout.String(), nil
}
