package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/livrex-com/livrexgo/internal/config"
)

// Client talks to the remote delivery-management REST API. All
// responses are JSON; non-2xx statuses surface as *Error so callers
// can branch on the failure class instead of parsing strings.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a remote API client from configuration
func NewClient(cfg config.RemoteConfig) *Client {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.APIToken,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Health probes the remote liveness endpoint. Any error means the
// system should treat itself as offline.
func (c *Client) Health() error {
	resp, err := c.do("GET", "/health", nil, nil)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// List fetches a collection, tolerating both the {"data": [...]}
// envelope and a bare array.
func (c *Client) List(entityType string, query url.Values) ([]map[string]interface{}, error) {
	resp, err := c.do("GET", "/"+entityType, query, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var envelope struct {
		Data []map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Data != nil {
		return envelope.Data, nil
	}

	var bare []map[string]interface{}
	if err := json.Unmarshal(body, &bare); err != nil {
		return nil, fmt.Errorf("failed to decode list response: %w", err)
	}
	return bare, nil
}

// Get fetches a single entity by id
func (c *Client) Get(entityType, id string) (map[string]interface{}, error) {
	resp, err := c.do("GET", "/"+entityType+"/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return decodeObject(resp.Body)
}

// Create creates an entity and returns the server-side record,
// including the server-assigned identifier.
func (c *Client) Create(entityType string, payload interface{}) (map[string]interface{}, error) {
	resp, err := c.do("POST", "/"+entityType, nil, payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return decodeObject(resp.Body)
}

// Update applies a partial update and returns the updated record
func (c *Client) Update(entityType, id string, payload interface{}) (map[string]interface{}, error) {
	resp, err := c.do("PATCH", "/"+entityType+"/"+url.PathEscape(id), nil, payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return decodeObject(resp.Body)
}

// Delete removes an entity
func (c *Client) Delete(entityType, id string) error {
	resp, err := c.do("DELETE", "/"+entityType+"/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// do issues a request and converts non-2xx statuses into *Error
func (c *Client) do(method, path string, query url.Values, payload interface{}) (*http.Response, error) {
	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", fullURL, err)
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &Error{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(data)),
		}
	}

	return resp, nil
}

func decodeObject(r io.Reader) (map[string]interface{}, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}

	var envelope struct {
		Data map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Data != nil {
		return envelope.Data, nil
	}

	var obj map[string]interface{}
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return obj, nil
}
