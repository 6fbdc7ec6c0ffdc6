// Package atlassian reads requirement sources from Confluence and Jira Cloud.
package atlassian

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ziadkadry99/auto-qa/internal/config"
)

var (
	// ErrPageNotFound is returned when a Confluence page does not exist.
	ErrPageNotFound = errors.New("Page not found")
	// ErrIssueNotFound is returned when a Jira issue does not exist.
	ErrIssueNotFound = errors.New("Issue not found")
	// ErrAuthFailed is returned when Atlassian rejects the credentials.
	ErrAuthFailed = errors.New("Authentication failed")
	// ErrUnresolvableURL is returned when no page id can be derived from a URL.
	ErrUnresolvableURL = errors.New("Unable to extract page ID from URL")
	// ErrNotConfigured is returned when no Atlassian site is configured.
	ErrNotConfigured = errors.New("Atlassian integration is not configured")
)

// client is the HTTP plumbing shared by the Confluence and Jira clients.
type client struct {
	email      string
	apiToken   string
	httpClient *http.Client
}

func newClient(cfg config.AtlassianConfig) client {
	return client{
		email:      cfg.Email,
		apiToken:   cfg.APIToken,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// siteURL turns a configured domain into a base URL. A value that already
// carries a scheme is used as is.
func siteURL(domain string) string {
	domain = strings.TrimRight(strings.TrimSpace(domain), "/")
	if domain == "" {
		return ""
	}
	if strings.HasPrefix(domain, "http://") || strings.HasPrefix(domain, "https://") {
		return domain
	}
	return "https://" + domain
}

// statusError carries a non-success HTTP status from the Atlassian API.
type statusError struct {
	Code int
	Body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("API request failed: %d", e.Code)
}

// getJSON issues an authenticated GET and decodes the JSON reply into v.
// 401 and 403 map to ErrAuthFailed, 404 to notFound.
func (c client) getJSON(ctx context.Context, endpoint string, params url.Values, notFound error, v any) error {
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.SetBasicAuth(c.email, c.apiToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return notFound
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrAuthFailed
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &statusError{Code: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
