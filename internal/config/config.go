package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

const (
	DefaultSecretsFile   = ".jira_secrets.json"
	DefaultIssuesFile    = ".jira-issues.json"
	DefaultBranchPattern = `^issue/jira/([a-zA-Z0-9]+-\d+)$`
	DefaultSiteURL       = "https://%s.atlassian.net"
	DefaultAPIURL        = "https://api.atlassian.com"
	DefaultTimeout       = 30 * time.Second

	settingsFile = ".jira-git-issue.yaml"
	settingsEnv  = "JIRA_GIT_ISSUE_CONFIG"
)

// Settings are optional overrides read from ~/.jira-git-issue.yaml. Every
// field falls back to the built-in default when left empty.
type Settings struct {
	SecretsPath   string        `yaml:"secrets_path,omitempty"`
	IssuesFile    string        `yaml:"issues_file,omitempty"`
	BranchPattern string        `yaml:"branch_pattern,omitempty"`
	SiteURL       string        `yaml:"site_url,omitempty"`
	APIURL        string        `yaml:"api_url,omitempty"`
	Timeout       time.Duration `yaml:"timeout,omitempty"`
}

func Defaults() (*Settings, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, errors.Wrap(err, "resolve home dir")
	}
	return &Settings{
		SecretsPath:   filepath.Join(home, DefaultSecretsFile),
		IssuesFile:    DefaultIssuesFile,
		BranchPattern: DefaultBranchPattern,
		SiteURL:       DefaultSiteURL,
		APIURL:        DefaultAPIURL,
		Timeout:       DefaultTimeout,
	}, nil
}

// Load returns the defaults merged with the settings file, if one exists.
func Load() (*Settings, error) {
	settings, err := Defaults()
	if err != nil {
		return nil, err
	}

	path, err := SettingsPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return nil, errors.Wrap(err, "read settings")
	}

	var overrides Settings
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, errors.Wrapf(err, "parse settings %s", path)
	}
	settings.merge(overrides)

	if err := settings.Validate(); err != nil {
		return nil, errors.Wrapf(err, "settings %s", path)
	}
	return settings, nil
}

func (s *Settings) merge(o Settings) {
	if o.SecretsPath != "" {
		s.SecretsPath = expandHome(o.SecretsPath)
	}
	if o.IssuesFile != "" {
		s.IssuesFile = o.IssuesFile
	}
	if o.BranchPattern != "" {
		s.BranchPattern = o.BranchPattern
	}
	if o.SiteURL != "" {
		s.SiteURL = o.SiteURL
	}
	if o.APIURL != "" {
		s.APIURL = o.APIURL
	}
	if o.Timeout > 0 {
		s.Timeout = o.Timeout
	}
}

func (s *Settings) Validate() error {
	re, err := regexp.Compile(s.BranchPattern)
	if err != nil {
		return errors.Wrap(err, "branch_pattern")
	}
	if re.NumSubexp() < 1 {
		return errors.WithHint(
			errors.Newf("branch_pattern %q has no capture group", s.BranchPattern),
			"Wrap the issue key part of the pattern in parentheses.")
	}
	if !strings.Contains(s.SiteURL, "%s") {
		return errors.Newf("site_url %q must contain %%s for the domain", s.SiteURL)
	}
	if filepath.IsAbs(s.IssuesFile) {
		return errors.Newf("issues_file %q must be relative to the repository root", s.IssuesFile)
	}
	return nil
}

// SiteURLFor returns the Jira site root for a domain, e.g.
// https://example.atlassian.net.
func (s *Settings) SiteURLFor(domain string) string {
	return strings.TrimRight(fmt.Sprintf(s.SiteURL, domain), "/")
}

func SettingsPath() (string, error) {
	if p := os.Getenv(settingsEnv); p != "" {
		return expandHome(p), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "resolve home dir")
	}
	return filepath.Join(home, settingsFile), nil
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

func MaskToken(token string) string {
	if len(token) <= 4 {
		return strings.Repeat("*", len(token))
	}
	return fmt.Sprintf("%s***%s", token[:4], token[len(token)-4:])
}
