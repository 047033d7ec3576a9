package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/Ilia01/jira-git-issue/internal/config"
	"github.com/Ilia01/jira-git-issue/internal/exit"
	"github.com/Ilia01/jira-git-issue/internal/git"
	"github.com/Ilia01/jira-git-issue/internal/jira"
	"github.com/Ilia01/jira-git-issue/internal/models"
	"github.com/Ilia01/jira-git-issue/internal/registry"
	"github.com/Ilia01/jira-git-issue/internal/secrets"
	"github.com/Ilia01/jira-git-issue/internal/utils"
)

type jiraService interface {
	TenantInfo() (*models.TenantInfo, error)
	GetIssue(cloudID, issueKey string) (*models.JiraIssue, error)
	BrowseURL(issueKey string) string
}

type repository interface {
	Root() string
	CurrentBranch() (string, error)
}

var (
	appFs afero.Fs = afero.NewOsFs()

	jiraFactory = func(siteURL, apiURL, email, token string, timeout time.Duration) jiraService {
		return jira.NewClient(siteURL, apiURL, email, token, timeout)
	}

	gitFactory = func() (repository, error) {
		return git.NewClient()
	}

	openURL = utils.OpenURL
)

func handleRegisterSecrets(domain, email, apiKey string) error {
	domain = strings.TrimSpace(domain)
	email = strings.TrimSpace(email)
	if domain == "" || email == "" {
		return exit.NewError(errors.New("domain and email are required"), exit.Usage())
	}
	if apiKey == "" {
		key, err := utils.Prompt(stdin, stderr, "Jira API token")
		if err != nil {
			return exit.NewError(err, exit.Usage())
		}
		apiKey = key
	}
	if apiKey == "" {
		return exit.NewError(errors.New("API key is required"), exit.Usage())
	}

	client := jiraFactory(settings.SiteURLFor(domain), settings.APIURL, email, apiKey, settings.Timeout)
	info, err := client.TenantInfo()
	if err != nil {
		return exit.NewError(
			errors.WithHint(errors.Wrap(err, "failed to fetch tenant info"),
				"Check the domain, email and API token. Tokens are created at https://id.atlassian.com/manage-profile/security/api-tokens"),
			exit.TenantInfoFailed())
	}
	logrus.WithField("domain", domain).Debug("resolved cloud id")

	store := secrets.NewStore(appFs, settings.SecretsPath)
	entry := secrets.Entry{Email: email, APIKey: apiKey, CloudID: info.CloudID}
	if err := store.Register(domain, entry); err != nil {
		return exit.NewError(err, exit.UnspecifiedError())
	}

	fmt.Fprintln(stdout, utils.Green(fmt.Sprintf("Registered %s with provided email and API key.", domain)))
	return nil
}

func handleRegisterProject(domain string) error {
	domain = strings.TrimSpace(domain)
	if domain == "" {
		return exit.NewError(errors.New("domain is required"), exit.Usage())
	}

	repo, err := openRepository()
	if err != nil {
		return err
	}

	if _, err := lookupSecrets(domain); err != nil {
		return err
	}

	reg := registry.New(appFs, repo.Root(), settings.IssuesFile)
	previous, err := reg.Register(domain)
	if err != nil {
		return exit.NewError(err, exit.UnspecifiedError())
	}
	if previous != "" {
		fmt.Fprintln(stderr, utils.Yellow(fmt.Sprintf("Project was registered to %s. Replacing it with %s.", previous, domain)))
	}

	fmt.Fprintln(stdout, utils.Green(fmt.Sprintf("Registered %s (found API key).", domain)))
	return nil
}

func handleViewIssue(open bool) error {
	repo, err := openRepository()
	if err != nil {
		return err
	}

	issueKey, err := currentIssueKey(repo)
	if err != nil {
		return err
	}

	reg := registry.New(appFs, repo.Root(), settings.IssuesFile)
	summary, cached, err := reg.CachedSummary(issueKey)
	if err != nil {
		if errors.Is(err, registry.ErrNotRegistered) {
			return exit.NewError(
				errors.WithHint(errors.Wrap(err, "no jira issues file"),
					"Register your Jira domain and secrets first."),
				exit.IssuesFileMissing())
		}
		return exit.NewError(err, exit.UnspecifiedError())
	}

	var client jiraService
	if cached {
		logrus.WithField("issue", issueKey).Debug("cache hit")
	} else {
		var cloudID string
		client, cloudID, err = projectClient(reg)
		if err != nil {
			return err
		}
		issue, err := client.GetIssue(cloudID, issueKey)
		if err != nil {
			return exit.NewError(errors.Wrapf(err, "failed to fetch issue %s", issueKey), exit.IssueFetchFailed())
		}
		summary = issue.Fields.Summary
		if err := reg.StoreSummary(issueKey, summary); err != nil {
			return exit.NewError(err, exit.UnspecifiedError())
		}
	}

	fmt.Fprintln(stdout, summary)

	if open {
		if client == nil {
			if client, _, err = projectClient(reg); err != nil {
				return err
			}
		}
		if err := openURL(client.BrowseURL(issueKey)); err != nil {
			logrus.WithError(err).Warn("could not open browser")
		}
	}
	return nil
}

func handleListSecrets() error {
	store := secrets.NewStore(appFs, settings.SecretsPath)
	entries, domains, err := store.All()
	if err != nil {
		return classifySecretsError(err)
	}
	if len(domains) == 0 {
		fmt.Fprintln(stdout, utils.Dim("No domains registered."))
		return nil
	}
	for _, domain := range domains {
		entry := entries[domain]
		fmt.Fprintf(stdout, "%s\n  email:    %s\n  api key:  %s\n  cloud id: %s\n",
			utils.Bold(domain), entry.Email, config.MaskToken(entry.APIKey), entry.CloudID)
	}
	return nil
}

func openRepository() (repository, error) {
	repo, err := gitFactory()
	if err != nil {
		return nil, exit.NewError(err, exit.NotInRepository())
	}
	return repo, nil
}

func currentIssueKey(repo repository) (string, error) {
	branch, err := repo.CurrentBranch()
	if err != nil {
		if errors.Is(err, git.ErrDetachedHead) {
			return "", exit.NewError(err, exit.BranchMismatch())
		}
		return "", exit.NewError(err, exit.BranchUnavailable())
	}

	key, err := utils.ExtractIssueKey(settings.BranchPattern, branch)
	if err != nil {
		if errors.Is(err, utils.ErrBranchMismatch) {
			return "", exit.NewError(err, exit.BranchMismatch())
		}
		return "", exit.NewError(err, exit.UnspecifiedError())
	}
	logrus.WithFields(logrus.Fields{"branch": branch, "issue": key}).Debug("issue key resolved")
	return key, nil
}

// projectClient builds a Jira client for the domain the project is
// registered to and returns the tenant's cloud id alongside it.
func projectClient(reg *registry.Registry) (jiraService, string, error) {
	domain, err := reg.Domain()
	if err != nil {
		switch {
		case errors.Is(err, registry.ErrNotRegistered):
			return nil, "", exit.NewError(
				errors.WithHint(errors.Wrap(err, "no jira issues file"), "Register your Jira domain first."),
				exit.ProjectFileMissing())
		case errors.Is(err, registry.ErrNoDomain):
			return nil, "", exit.NewError(
				errors.WithHint(err, "Run --register-project DOMAIN in this repository."),
				exit.ProjectDomainMissing())
		default:
			return nil, "", exit.NewError(err, exit.UnspecifiedError())
		}
	}

	entry, err := lookupSecrets(domain)
	if err != nil {
		return nil, "", err
	}
	client := jiraFactory(settings.SiteURLFor(domain), settings.APIURL, entry.Email, entry.APIKey, settings.Timeout)
	return client, entry.CloudID, nil
}

func lookupSecrets(domain string) (secrets.Entry, error) {
	store := secrets.NewStore(appFs, settings.SecretsPath)
	entry, err := store.Lookup(domain)
	if err != nil {
		return secrets.Entry{}, classifySecretsError(err)
	}
	return entry, nil
}

func classifySecretsError(err error) error {
	switch {
	case errors.Is(err, secrets.ErrStoreNotFound):
		return exit.NewError(
			errors.WithHint(err, "Register your Jira domain and API key with --register-secrets."),
			exit.SecretsFileMissing())
	case errors.Is(err, secrets.ErrDomainNotFound):
		return exit.NewError(
			errors.WithHint(err, "Register it first with --register-secrets."),
			exit.DomainNotRegistered())
	default:
		return exit.NewError(err, exit.UnspecifiedError())
	}
}
