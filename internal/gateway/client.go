package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"shareit/internal/models"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ServerClient forwards validated calls to the ShareIt server.
type ServerClient struct {
	baseURL    string
	apiKey     string
	apiExtra   string
	retry      RetryPolicy
	httpClient *http.Client
}

// Response is the server reply relayed to the caller unchanged.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
}

func NewServerClient(baseURL, apiKey, apiExtra string, timeout time.Duration) *ServerClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ServerClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		apiExtra:   apiExtra,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// WithRetry makes idempotent calls repeat on transport failures.
func (c *ServerClient) WithRetry(policy RetryPolicy) *ServerClient {
	c.retry = policy
	return c
}

// Do sends one call. A zero sharerID omits the sharer header; a nil body sends none.
func (c *ServerClient) Do(ctx context.Context, method, path, rawQuery string, sharerID int64, body any) (*Response, error) {
	endpoint := c.baseURL + path
	if rawQuery != "" {
		endpoint += "?" + rawQuery
	}

	var data []byte
	if body != nil {
		var err error
		data, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
	}

	attempts := 1
	if retryable(method) && c.retry.MaxRetries > 0 {
		attempts += c.retry.MaxRetries
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			timer := time.NewTimer(c.retry.NextDelay(attempt - 1))
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, fmt.Errorf("call server %s %s: %w", method, path, ctx.Err())
			case <-timer.C:
			}
		}

		resp, err := c.send(ctx, method, endpoint, sharerID, data)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}

	if attempts > 1 {
		return nil, fmt.Errorf("call server %s %s after %d attempts: %w", method, path, attempts, lastErr)
	}
	return nil, fmt.Errorf("call server %s %s: %w", method, path, lastErr)
}

func (c *ServerClient) send(ctx context.Context, method, endpoint string, sharerID int64, data []byte) (*Response, error) {
	var reader io.Reader
	if data != nil {
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sharerID != 0 {
		req.Header.Set(models.HeaderSharerUserID, strconv.FormatInt(sharerID, 10))
	}
	c.addHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read server response: %w", err)
	}
	return &Response{
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        raw,
	}, nil
}

func (c *ServerClient) addHeaders(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}
	if c.apiExtra != "" {
		req.Header.Set("x-api-extra", c.apiExtra)
	}
}
