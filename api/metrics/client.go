// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package metrics fetches the metrics exposed by a running VM.
package metrics

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/luxfi/metric"
	"github.com/prometheus/common/expfmt"
	"github.com/prometheus/common/model"
)

// cleanlyCloseBody drains and closes an HTTP response body to prevent
// HTTP/2 GOAWAY errors caused by closing bodies with unread data.
func cleanlyCloseBody(body io.ReadCloser) error {
	if body == nil {
		return nil
	}
	_, _ = io.Copy(io.Discard, body)
	return body.Close()
}

// Client for requesting metrics from a running VM
type Client struct {
	uri        string
	httpClient *http.Client
}

// NewClient returns a new Metrics API Client. uri is the server root, for
// example http://127.0.0.1:9650.
func NewClient(uri string) *Client {
	return &Client{
		uri: uri + "/ext/metrics",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GetMetrics returns the metrics as a map of metric family name to the metric
// family.
func (c *Client) GetMetrics(ctx context.Context) (map[string]*metric.MetricFamily, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.uri, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("failed to issue request: %w", err)
	}
	defer cleanlyCloseBody(resp.Body)

	// Return an error for any non successful status code
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("received status code: %d", resp.StatusCode)
	}

	parser := expfmt.NewTextParser(model.UTF8Validation)
	return parser.TextToMetricFamilies(resp.Body)
}
