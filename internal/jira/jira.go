package jira

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"

	"github.com/Ilia01/jira-git-issue/internal/models"
)

// APIError is returned for any non-200 response. Body holds the raw
// response text so callers can report it verbatim.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("jira api error (%d): %s", e.StatusCode, e.Body)
}

type Client struct {
	siteURL string
	apiURL  string
	email   string
	token   string
	http    *http.Client
}

// NewClient builds a client authenticating with email and API token.
// siteURL is the tenant root (https://<domain>.atlassian.net) and apiURL
// the cloud gateway (https://api.atlassian.com).
func NewClient(siteURL, apiURL, email, token string, timeout time.Duration) *Client {
	return &Client{
		siteURL: strings.TrimRight(siteURL, "/"),
		apiURL:  strings.TrimRight(apiURL, "/"),
		email:   email,
		token:   token,
		http: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) TenantInfo() (*models.TenantInfo, error) {
	req, err := c.newRequest(c.siteURL + "/_edge/tenant_info")
	if err != nil {
		return nil, err
	}

	var info models.TenantInfo
	if err := c.doJSON(req, &info); err != nil {
		return nil, err
	}
	if info.CloudID == "" {
		return nil, errors.New("tenant info response has no cloudId")
	}
	return &info, nil
}

// GetIssue fetches an issue through the cloud-scoped REST endpoint. The
// gateway rejects ?fields= for API tokens, so the full issue is requested.
func (c *Client) GetIssue(cloudID, issueKey string) (*models.JiraIssue, error) {
	endpoint := fmt.Sprintf("%s/ex/jira/%s/rest/api/3/issue/%s",
		c.apiURL, url.PathEscape(cloudID), url.PathEscape(issueKey))
	req, err := c.newRequest(endpoint)
	if err != nil {
		return nil, err
	}

	var issue models.JiraIssue
	if err := c.doJSON(req, &issue); err != nil {
		return nil, err
	}
	return &issue, nil
}

// BrowseURL is the human-facing page for an issue.
func (c *Client) BrowseURL(issueKey string) string {
	return fmt.Sprintf("%s/browse/%s", c.siteURL, url.PathEscape(issueKey))
}

func (c *Client) newRequest(endpoint string) (*http.Request, error) {
	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.SetBasicAuth(c.email, c.token)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) doJSON(req *http.Request, v any) error {
	return c.do(req, func(body []byte) error {
		if v == nil {
			return nil
		}
		if err := json.Unmarshal(body, v); err != nil {
			return errors.Wrap(err, "parse response")
		}
		return nil
	})
}

func (c *Client) do(req *http.Request, handler func([]byte) error) error {
	logrus.WithField("url", req.URL.String()).Debug("jira request")

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "request %s", req.URL.Redacted())
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "read response")
	}

	logrus.WithFields(logrus.Fields{
		"url":    req.URL.String(),
		"status": resp.StatusCode,
	}).Debug("jira response")

	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Body: string(data)}
	}

	if handler != nil {
		return handler(data)
	}
	return nil
}
