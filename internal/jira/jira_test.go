package jira

import (
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, fn roundTripFunc) *Client {
	t.Helper()
	client := NewClient("https://example.atlassian.net/", "https://api.atlassian.com", "user@example.com", "token", time.Second)
	client.http.Transport = fn
	return client
}

func TestTenantInfo(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) *http.Response {
		if req.Method != http.MethodGet || req.URL.String() != "https://example.atlassian.net/_edge/tenant_info" {
			t.Fatalf("unexpected request: %s %s", req.Method, req.URL)
		}
		user, pass, ok := req.BasicAuth()
		if !ok || user != "user@example.com" || pass != "token" {
			t.Fatalf("missing basic auth")
		}
		if req.Header.Get("Accept") != "application/json" {
			t.Fatalf("unexpected accept header: %s", req.Header.Get("Accept"))
		}
		return jsonResponse(http.StatusOK, `{"cloudId":"xyz"}`)
	})

	info, err := client.TenantInfo()
	require.NoError(t, err)
	require.Equal(t, "xyz", info.CloudID)
}

func TestTenantInfoUnauthorized(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) *http.Response {
		return jsonResponse(http.StatusUnauthorized, "Unauthorized")
	})

	_, err := client.TenantInfo()
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	require.Equal(t, "Unauthorized", apiErr.Body)
	require.Contains(t, err.Error(), "401")
}

func TestTenantInfoWithoutCloudID(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) *http.Response {
		return jsonResponse(http.StatusOK, `{}`)
	})

	_, err := client.TenantInfo()
	require.ErrorContains(t, err, "no cloudId")
}

func TestGetIssue(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) *http.Response {
		if req.URL.Path != "/ex/jira/xyz/rest/api/3/issue/ABC-123" {
			t.Fatalf("unexpected path: %s", req.URL.Path)
		}
		body := `{"key":"ABC-123","fields":{"summary":"Fix login bug","status":{"name":"To Do"}}}`
		return jsonResponse(http.StatusOK, body)
	})

	issue, err := client.GetIssue("xyz", "ABC-123")
	require.NoError(t, err)
	require.Equal(t, "ABC-123", issue.Key)
	require.Equal(t, "Fix login bug", issue.Fields.Summary)
}

func TestGetIssueNotFound(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) *http.Response {
		return jsonResponse(http.StatusNotFound, `{"errorMessages":["Issue does not exist"]}`)
	})

	issue, err := client.GetIssue("xyz", "ABC-999")
	require.Nil(t, issue)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestGetIssueMalformedBody(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) *http.Response {
		return jsonResponse(http.StatusOK, `{"fields":`)
	})

	_, err := client.GetIssue("xyz", "ABC-1")
	require.ErrorContains(t, err, "parse response")
}

func TestBrowseURL(t *testing.T) {
	client := NewClient("https://example.atlassian.net/", "", "", "", time.Second)
	require.Equal(t, "https://example.atlassian.net/browse/ABC-1", client.BrowseURL("ABC-1"))
}

type roundTripFunc func(*http.Request) *http.Response

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req), nil
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}
