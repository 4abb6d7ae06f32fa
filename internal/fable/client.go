// Package fable retrieves a user's library collections from the Fable
// API. Payloads are kept untyped (map[string]any) because the upstream
// schema drifts across revisions; all typing happens in the catalog
// package. Every fetched page is persisted verbatim for auditing.
package fable

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.fable.co/api"

	reviewsPageSize   = 50
	listBooksPageSize = 100

	defaultTimeout     = 30 * time.Second
	maxRetries         = 3
	initialRetryDelay  = 1 * time.Second
	maxRetryDelay      = 30 * time.Second
	retryBackoffFactor = 2
)

// RawSink receives the verbatim bytes of every API page for auditing.
type RawSink interface {
	Save(name string, payload []byte) error
}

// Client interfaces with the Fable library API on behalf of one user.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userID     string
	token      string
	raw        RawSink
}

// NewClient creates a client for the given user. Tokens copied out of
// browser devtools often carry a "JWT " or "Token " prefix; both are
// stripped.
func NewClient(userID, token string, raw RawSink) *Client {
	token = strings.TrimPrefix(token, "JWT ")
	token = strings.TrimPrefix(token, "Token ")
	return &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    defaultBaseURL,
		userID:     userID,
		token:      token,
		raw:        raw,
	}
}

// SetTimeout overrides the default per-request timeout.
func (c *Client) SetTimeout(d time.Duration) {
	if d > 0 {
		c.httpClient.Timeout = d
	}
}

// FetchReviews pages through the user's reviews and keys them by the id of
// the reviewed book. Entries without a usable book id are skipped.
func (c *Client) FetchReviews(ctx context.Context) (map[string]map[string]any, error) {
	reviews := map[string]map[string]any{}

	for offset := 0; ; offset += reviewsPageSize {
		url := fmt.Sprintf("%s/v2/users/%s/reviews/?limit=%d&offset=%d",
			c.baseURL, c.userID, reviewsPageSize, offset)

		page, err := c.fetchPage(ctx, url)
		var notFound *notFoundError
		if errors.As(err, &notFound) {
			// Older accounts are still served from the unversioned path.
			url = fmt.Sprintf("%s/users/%s/reviews/?limit=%d&offset=%d",
				c.baseURL, c.userID, reviewsPageSize, offset)
			page, err = c.fetchPage(ctx, url)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to fetch reviews page at offset %d: %w", offset, err)
		}

		if err := c.saveRaw(fmt.Sprintf("reviews_%d", offset), page.body); err != nil {
			return nil, err
		}

		for _, r := range page.results {
			if id := reviewedBookID(r); id != "" {
				reviews[id] = r
			}
		}

		if page.rawCount < reviewsPageSize {
			break
		}
	}

	return reviews, nil
}

// FetchLists returns the metadata of every book list the user curates.
func (c *Client) FetchLists(ctx context.Context) ([]map[string]any, error) {
	url := fmt.Sprintf("%s/v2/users/%s/book_lists", c.baseURL, c.userID)

	page, err := c.fetchPage(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch book lists: %w", err)
	}
	if err := c.saveRaw("user_lists", page.body); err != nil {
		return nil, err
	}
	return page.results, nil
}

// FetchListBooks pages through one list's items, annotating each with the
// list name so downstream formats can report list membership.
func (c *Client) FetchListBooks(ctx context.Context, listID, listName string) ([]map[string]any, error) {
	var items []map[string]any

	for offset := 0; ; offset += listBooksPageSize {
		url := fmt.Sprintf("%s/v2/users/%s/book_lists/%s/books?limit=%d&offset=%d",
			c.baseURL, c.userID, listID, listBooksPageSize, offset)

		page, err := c.fetchPage(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch list %q page at offset %d: %w", listName, offset, err)
		}

		if err := c.saveRaw(fmt.Sprintf("list_%s_%d", sanitizeName(listName), offset), page.body); err != nil {
			return nil, err
		}

		for _, r := range page.results {
			r["_list_name"] = listName
			items = append(items, r)
		}

		if page.rawCount < listBooksPageSize {
			break
		}
	}

	return items, nil
}

// apiPage is one decoded response: the object entries of "results", the
// count the server actually returned (pagination must be driven off this,
// not the filtered length), and the verbatim body.
type apiPage struct {
	results  []map[string]any
	rawCount int
	body     []byte
}

// fetchPage performs one GET with limited retries.
func (c *Client) fetchPage(ctx context.Context, url string) (apiPage, error) {
	var page apiPage
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			delay := calculateRetryDelay(attempt)
			select {
			case <-ctx.Done():
				return apiPage{}, ctx.Err()
			case <-time.After(delay):
			}
		}

		page, lastErr = c.doRequest(ctx, url)
		if lastErr == nil {
			return page, nil
		}

		// Only retry on rate limits or server errors
		if !isRetryableError(lastErr) {
			return apiPage{}, lastErr
		}
	}

	return apiPage{}, fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (c *Client) doRequest(ctx context.Context, url string) (apiPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return apiPage{}, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "JWT "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apiPage{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return apiPage{}, ErrInvalidToken
	case resp.StatusCode == http.StatusNotFound:
		return apiPage{}, &notFoundError{url: url}
	case resp.StatusCode == http.StatusTooManyRequests:
		return apiPage{}, ErrRateLimited
	case resp.StatusCode >= 500:
		return apiPage{}, &ServerError{StatusCode: resp.StatusCode}
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(resp.Body)
		return apiPage{}, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return apiPage{}, fmt.Errorf("failed to read response: %w", err)
	}

	var decoded struct {
		Results []any `json:"results"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return apiPage{}, fmt.Errorf("failed to decode response: %w", err)
	}

	results := make([]map[string]any, 0, len(decoded.Results))
	for _, r := range decoded.Results {
		if obj, ok := r.(map[string]any); ok {
			results = append(results, obj)
		}
	}

	return apiPage{results: results, rawCount: len(decoded.Results), body: body}, nil
}

func (c *Client) saveRaw(name string, payload []byte) error {
	if c.raw == nil {
		return nil
	}
	if err := c.raw.Save(name, payload); err != nil {
		return fmt.Errorf("failed to persist raw payload %s: %w", name, err)
	}
	return nil
}

// reviewedBookID extracts the id of the book a review belongs to. Ids are
// normally strings but some legacy records carry numbers.
func reviewedBookID(review map[string]any) string {
	book, _ := review["book"].(map[string]any)
	if book == nil {
		return ""
	}
	switch v := book["id"].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatInt(int64(v), 10)
	}
	return ""
}

// sanitizeName makes a list name safe for use inside a filename.
func sanitizeName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_':
			return r
		}
		return '_'
	}, name)
}

func calculateRetryDelay(attempt int) time.Duration {
	delay := initialRetryDelay
	for i := 0; i < attempt; i++ {
		delay *= time.Duration(retryBackoffFactor)
	}
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	return delay
}

func isRetryableError(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var serverErr *ServerError
	return errors.As(err, &serverErr)
}
