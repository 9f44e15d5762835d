// Package monitorclient provides the HTTP client used by cmd/qrng-monitor
// to poll a running qrng-server instance.
package monitorclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to the qrng-server REST API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// New creates a client pointed at addr (e.g. "http://localhost:8080").
func New(addr string) *Client {
	return &Client{
		BaseURL: addr,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// HealthResponse mirrors GET /api/v1/health.
type HealthResponse struct {
	Status          string `json:"status"`
	Device          string `json:"device"`
	BufferAvailable uint64 `json:"buffer_available"`
}

// DeviceInfoData mirrors the data payload of GET /api/v1/device/info.
type DeviceInfoData struct {
	Device struct {
		Product string `json:"product"`
		Serial  string `json:"serial"`
		Version string `json:"version"`
	} `json:"device"`
	BufferSize      uint64 `json:"buffer_size"`
	BufferAvailable uint64 `json:"buffer_available"`
}

// BytesData mirrors the data payload of GET /api/v1/random/bytes.
type BytesData struct {
	Bytes      string `json:"bytes"`
	Count      int    `json:"count"`
	Format     string `json:"format"`
	Correction string `json:"correction"`
}

// MetricsData mirrors the data payload of GET /api/v1/metrics.
type MetricsData struct {
	BufferFillPercent       float64 `json:"buffer_fill_percent"`
	RefillRunning           bool    `json:"refill_running"`
	RefillConsecutiveErrors uint64  `json:"refill_consecutive_errors"`
	HostCPUPercent          float64 `json:"host_cpu_percent"`
	HostMemPercent          float64 `json:"host_mem_percent"`
}

type envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
}

// GetHealth calls the health endpoint. A non-2xx response still decodes
// into HealthResponse when the body is valid JSON, since the service
// reports unhealthy with HTTP 503.
func (c *Client) GetHealth() (*HealthResponse, error) {
	body, _, err := c.get("/api/v1/health")
	if err != nil {
		return nil, err
	}
	var result HealthResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode health response: %w", err)
	}
	return &result, nil
}

// GetDeviceInfo calls GET /api/v1/device/info.
func (c *Client) GetDeviceInfo() (*DeviceInfoData, error) {
	body, _, err := c.get("/api/v1/device/info")
	if err != nil {
		return nil, err
	}
	var env envelope[DeviceInfoData]
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode device info response: %w", err)
	}
	if !env.Success {
		return nil, fmt.Errorf("server error: %s", env.Error)
	}
	return &env.Data, nil
}

// GetMetrics calls GET /api/v1/metrics.
func (c *Client) GetMetrics() (*MetricsData, error) {
	body, _, err := c.get("/api/v1/metrics")
	if err != nil {
		return nil, err
	}
	var env envelope[MetricsData]
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode metrics response: %w", err)
	}
	if !env.Success {
		return nil, fmt.Errorf("server error: %s", env.Error)
	}
	return &env.Data, nil
}

// GetRandomBytes calls GET /api/v1/random/bytes with the given parameters.
func (c *Client) GetRandomBytes(count int, format, correction string) (*BytesData, error) {
	path := fmt.Sprintf("/api/v1/random/bytes?count=%d&format=%s&correction=%s", count, format, correction)
	body, _, err := c.get(path)
	if err != nil {
		return nil, err
	}
	var env envelope[BytesData]
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode random bytes response: %w", err)
	}
	if !env.Success {
		return nil, fmt.Errorf("server error: %s", env.Error)
	}
	return &env.Data, nil
}

// get issues a GET request and returns the raw response body and status code.
func (c *Client) get(path string) ([]byte, int, error) {
	resp, err := c.HTTPClient.Get(c.BaseURL + path)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response body: %w", err)
	}

	if !bytes.HasPrefix(bytes.TrimSpace(body), []byte("{")) {
		preview := string(body)
		if len(preview) > 120 {
			preview = preview[:120] + "..."
		}
		return nil, resp.StatusCode, fmt.Errorf("unexpected response body: %s", preview)
	}

	return body, resp.StatusCode, nil
}
