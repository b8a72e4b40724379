// Package backend is the generic HTTP wrapper every domain service goes
// through: one base URL, a bearer token attached when a session exists,
// JSON or multipart bodies, and a uniform error surface for anything
// non-2xx.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"qc-console/pkg/apierror"
)

// TokenSource yields the current bearer token, or "" when logged out.
// The client reads it fresh on every call; the value is never cached.
type TokenSource interface {
	Token() string
}

type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

func NewClient(baseURL string, timeout time.Duration, tokens TokenSource) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
	}
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.request(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body any, out any) error {
	return c.request(ctx, http.MethodPost, path, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body any, out any) error {
	return c.request(ctx, http.MethodPut, path, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.request(ctx, http.MethodDelete, path, nil, out)
}

// Stream issues a GET and hands the raw body to the caller, for binary
// downloads such as the spreadsheet export. The caller owns the ReadCloser.
func (c *Client) Stream(ctx context.Context, path string) (io.ReadCloser, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, "", err
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", apierror.Transport("backend request failed", err.Error())
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, "", httpError(resp)
	}

	return resp.Body, resp.Header.Get("Content-Type"), nil
}

func (c *Client) request(ctx context.Context, method string, path string, body any, out any) error {
	var reader io.Reader
	contentType := ""

	switch payload := body.(type) {
	case nil:
	case *Multipart:
		data, boundary, err := payload.finalize()
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
		contentType = boundary
	default:
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return apierror.Transport("backend request failed", err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return httpError(resp)
	}

	if out == nil {
		return nil
	}

	// A 2xx without a JSON body leaves the target untouched rather than
	// failing; several backend endpoints answer with an empty 200.
	if !strings.Contains(strings.ToLower(resp.Header.Get("Content-Type")), "application/json") {
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return apierror.Transport("reading backend response failed", err.Error())
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return apierror.Decode("BAD_RESPONSE", "backend response is not valid JSON", err.Error())
	}

	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.tokens == nil {
		return
	}

	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// httpError turns a non-2xx response into the uniform error surface: the
// body text when present, otherwise a status-line fallback.
func httpError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	message := strings.TrimSpace(string(data))
	if message == "" {
		message = fmt.Sprintf("HTTP Error: %d - %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	return apierror.HTTP(message, resp.StatusCode)
}
