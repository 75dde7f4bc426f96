package figma

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const figmaAPIBase = "https://api.figma.com/v1"

// ErrUpstreamUnavailable indicates that the Figma API could not be reached or
// kept failing after retries. The report pipeline propagates it instead of
// fabricating a structure.
var ErrUpstreamUnavailable = errors.New("figma API unavailable")

// ErrMalformedPayload indicates the API answered with a body that does not
// match the file response shape. Retrying cannot help; the payload is bad.
var ErrMalformedPayload = errors.New("malformed Figma API payload")

const (
	maxRetries = 3

	// Conservative client-side limit; Figma allows considerably more but
	// large file fetches are expensive on their side.
	requestsPerSecond = 2
	burstSize         = 4
)

// Client represents a Figma API client with configured HTTP settings for
// reliable communication with the Figma API. It applies client-side rate
// limiting and retries with backoff on rate-limit and server errors.
type Client struct {
	accessToken string
	baseURL     string
	httpClient  *http.Client
	limiter     *rate.Limiter
}

// NewClient creates a new Figma API client with the provided personal access token.
// The client is configured with optimized HTTP transport settings including
// connection pooling, disabled HTTP/2 (for large file stability), and a
// 10-minute timeout for very large files.
func NewClient(accessToken string) *Client {
	transport := &http.Transport{
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		MaxIdleConnsPerHost: 10,
		// Disable HTTP/2 to avoid stream errors with large files
		ForceAttemptHTTP2: false,
	}

	return &Client{
		accessToken: accessToken,
		baseURL:     figmaAPIBase,
		httpClient: &http.Client{
			Timeout:   10 * time.Minute,
			Transport: transport,
		},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burstSize),
	}
}

// SetBaseURL overrides the Figma API base URL. Used by tests to point the
// client at a local server.
func (c *Client) SetBaseURL(base string) { c.baseURL = base }

// SetRateLimit overrides the client-side request rate in requests per
// second. Non-positive values keep the current limit.
func (c *Client) SetRateLimit(rps float64) {
	if rps > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(rps), burstSize)
	}
}

// HasToken reports whether the client was constructed with an access token.
func (c *Client) HasToken() bool { return c.accessToken != "" }

// GetFile retrieves complete file data from the Figma API including the
// document tree, the components map, styles, and metadata. Requests are rate
// limited and automatically retried (up to 3 attempts) with backoff on 429
// (honoring Retry-After) and 5xx responses.
func (c *Client) GetFile(ctx context.Context, fileKey string) (*FileResponse, error) {
	url := fmt.Sprintf("%s/files/%s", c.baseURL, fileKey)

	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		body, retryable, err := c.get(ctx, url, attempt)
		if err == nil {
			var fileResp FileResponse
			if err := json.Unmarshal(body, &fileResp); err != nil {
				return nil, fmt.Errorf("%w: failed to parse file response: %v", ErrMalformedPayload, err)
			}
			return &fileResp, nil
		}

		lastErr = err
		if !retryable || attempt == maxRetries {
			break
		}
	}

	return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, lastErr)
}

// get performs a single authenticated GET. The second return value reports
// whether the failure is worth retrying, and includes any backoff sleep the
// server requested via Retry-After.
func (c *Client) get(ctx context.Context, url string, attempt int) (body []byte, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-Figma-Token", c.accessToken)
	// Disable HTTP/2 to avoid stream errors with large files
	req.Header.Set("Connection", "close")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.sleep(ctx, backoff(attempt))
		return nil, true, fmt.Errorf("attempt %d failed to execute request: %w", attempt, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		err := fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(respBody))

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			c.sleep(ctx, retryAfter(resp, attempt))
			return nil, true, err
		case resp.StatusCode >= 500:
			c.sleep(ctx, backoff(attempt))
			return nil, true, err
		default:
			return nil, false, err
		}
	}

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		c.sleep(ctx, backoff(attempt))
		return nil, true, fmt.Errorf("attempt %d failed to read response body: %w", attempt, err)
	}

	return body, false, nil
}

func (c *Client) sleep(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

func backoff(attempt int) time.Duration {
	return time.Duration(attempt) * 2 * time.Second
}

// retryAfter computes the wait before retrying a rate-limited request,
// scaling the server-provided Retry-After exponentially with the attempt
// number.
func retryAfter(resp *http.Response, attempt int) time.Duration {
	seconds := 2
	if v := resp.Header.Get("Retry-After"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			seconds = parsed
		}
	}
	return time.Duration(seconds*(1<<(attempt-1))) * time.Second
}
