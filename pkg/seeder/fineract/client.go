package fineract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path"
	"strconv"
	"strings"
	"time"
)

// RetryPolicy bounds the upload driver's retry loop. The wait between
// attempts grows by Multiplier up to MaxInterval.
type RetryPolicy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
}

// DefaultRetryPolicy mirrors the service defaults: 3 attempts, 1s initial
// wait, doubled up to 10s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     3,
		InitialInterval: time.Second,
		MaxInterval:     10 * time.Second,
		Multiplier:      2.0,
	}
}

// SleepFunc waits for d or until ctx is done. Injectable so backoff timing
// is testable without real delays.
type SleepFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Client talks to the Fineract API. Every request carries the tenant header
// and whatever the auth provider adds; every delivery goes through the same
// bounded retry loop.
type Client struct {
	baseURL    string
	tenant     string
	locale     string
	dateFormat string
	auth       AuthProvider
	httpClient *http.Client
	retry      RetryPolicy
	sleep      SleepFunc
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying transport.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.httpClient = h } }

// WithRetryPolicy replaces the retry policy.
func WithRetryPolicy(p RetryPolicy) Option { return func(c *Client) { c.retry = p } }

// WithSleep replaces the inter-attempt sleep.
func WithSleep(s SleepFunc) Option { return func(c *Client) { c.sleep = s } }

// WithTimeout sets the per-request timeout on the default transport.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithLocale sets the locale and date format stamped onto multipart uploads.
func WithLocale(locale, dateFormat string) Option {
	return func(c *Client) {
		c.locale = locale
		c.dateFormat = dateFormat
	}
}

// NewClient builds a client for the given API root and tenant.
func NewClient(baseURL, tenant string, auth AuthProvider, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		tenant:     tenant,
		locale:     "en",
		dateFormat: "dd MMMM yyyy",
		auth:       auth,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		retry:      DefaultRetryPolicy(),
		sleep:      sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Locale returns the locale stamped onto payloads that require it.
func (c *Client) Locale() string { return c.locale }

// DateFormat returns the date format the remote API expects alongside dates.
func (c *Client) DateFormat() string { return c.dateFormat }

// resolveURL joins an endpoint onto the API root. Absolute URLs pass through.
func (c *Client) resolveURL(endpoint string) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	return c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
}

// PostJSON creates a resource and returns the decoded response body.
func (c *Client) PostJSON(ctx context.Context, endpoint string, payload map[string]any) (map[string]any, error) {
	return c.sendJSON(ctx, http.MethodPost, endpoint, payload)
}

// PutJSON replaces or updates a resource and returns the decoded response.
func (c *Client) PutJSON(ctx context.Context, endpoint string, payload map[string]any) (map[string]any, error) {
	return c.sendJSON(ctx, http.MethodPut, endpoint, payload)
}

func (c *Client) sendJSON(ctx context.Context, method, endpoint string, payload map[string]any) (map[string]any, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", endpoint, err)
	}
	respBody, err := c.doWithRetry(ctx, method, c.resolveURL(endpoint), "application/json", body)
	if err != nil {
		return nil, err
	}
	return decodeObject(respBody)
}

// GetJSON fetches an endpoint whose response root is a JSON object.
func (c *Client) GetJSON(ctx context.Context, endpoint string) (map[string]any, error) {
	respBody, err := c.doWithRetry(ctx, http.MethodGet, c.resolveURL(endpoint), "", nil)
	if err != nil {
		return nil, err
	}
	return decodeObject(respBody)
}

// GetJSONArray fetches an endpoint whose response root is a JSON array.
func (c *Client) GetJSONArray(ctx context.Context, endpoint string) ([]map[string]any, error) {
	respBody, err := c.doWithRetry(ctx, http.MethodGet, c.resolveURL(endpoint), "", nil)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(respBody)) == 0 {
		return nil, nil
	}
	var items []map[string]any
	if err := json.Unmarshal(respBody, &items); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return items, nil
}

// GetTemplate retrieves a template endpoint, discarding the body. Used only
// to confirm the endpoint is serviceable.
func (c *Client) GetTemplate(ctx context.Context, endpoint string) error {
	_, err := c.doWithRetry(ctx, http.MethodGet, c.resolveURL(endpoint), "", nil)
	return err
}

// UploadTemplate sends a spreadsheet to a bulk-import endpoint as multipart
// form data, with the locale and date format fields Fineract requires.
// Client uploads carry the person legal-form query parameter.
func (c *Client) UploadTemplate(ctx context.Context, endpoint, fileName string, file []byte) error {
	cleanName := path.Base(strings.ReplaceAll(fileName, "\\", "/"))

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, cleanName))
	header.Set("Content-Type", "application/vnd.ms-excel")
	part, err := w.CreatePart(header)
	if err != nil {
		return fmt.Errorf("build upload for %s: %w", cleanName, err)
	}
	if _, err := part.Write(file); err != nil {
		return fmt.Errorf("build upload for %s: %w", cleanName, err)
	}
	_ = w.WriteField("locale", c.locale)
	_ = w.WriteField("dateFormat", c.dateFormat)
	if err := w.Close(); err != nil {
		return fmt.Errorf("build upload for %s: %w", cleanName, err)
	}

	url := c.resolveURL(endpoint)
	if strings.Contains(endpoint, "clients/uploadtemplate") {
		url += "?legalFormType=CLIENTS_PERSON"
	}
	_, err = c.doWithRetry(ctx, http.MethodPost, url, w.FormDataContentType(), buf.Bytes())
	return err
}

// doWithRetry is the delivery loop: attempt, classify the failure, sleep,
// try again. Network errors and retryable statuses loop; terminal statuses
// and context cancellation return immediately.
func (c *Client) doWithRetry(ctx context.Context, method, url, contentType string, body []byte) ([]byte, error) {
	interval := c.retry.InitialInterval
	var lastErr error
	for attempt := 1; attempt <= c.retry.MaxAttempts; attempt++ {
		if attempt > 1 {
			slog.Info("retrying request", "method", method, "url", url,
				"attempt", attempt, "max_attempts", c.retry.MaxAttempts, "wait", interval)
			if err := c.sleep(ctx, interval); err != nil {
				return nil, fmt.Errorf("retry interrupted: %w", err)
			}
			next := time.Duration(float64(interval) * c.retry.Multiplier)
			if next > c.retry.MaxInterval {
				next = c.retry.MaxInterval
			}
			interval = next
		}

		respBody, err := c.doOnce(ctx, method, url, contentType, body)
		if err == nil {
			return respBody, nil
		}
		lastErr = err

		var reqErr *RequestError
		if errors.As(err, &reqErr) && !reqErr.Retryable() {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("request aborted: %w", ctx.Err())
		}
		slog.Warn("request attempt failed", "method", method, "url", url,
			"attempt", attempt, "error", err)
	}
	return nil, fmt.Errorf("%w: %s %s: %w", ErrAttemptsExhausted, method, url, lastErr)
}

func (c *Client) doOnce(ctx context.Context, method, url, contentType string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Fineract-Platform-TenantId", c.tenant)
	c.auth.Apply(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &RequestError{
			Method:     method,
			URL:        url,
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
		}
	}
	return respBody, nil
}

func decodeObject(body []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return map[string]any{}, nil
	}
	var obj map[string]any
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return obj, nil
}

// ResourceID extracts the created resource's id from a creation response.
// Fineract sometimes omits it; the caller decides whether that matters.
func ResourceID(resp map[string]any) (int64, bool) {
	return numericField(resp, "resourceId")
}

func numericField(obj map[string]any, key string) (int64, bool) {
	switch v := obj[key].(type) {
	case float64:
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}
