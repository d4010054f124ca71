// Package client talks to the AAMI config-server. It owns the wire types of
// the checks API and the order-preserving config value representation.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"resty.dev/v3"
)

// HTTPClient fetches check definitions over the config-server REST API.
type HTTPClient struct {
	rc  *resty.Client
	log zerolog.Logger
}

// NewHTTPClient builds a client for the given base URL. The timeout bounds
// each request end to end.
func NewHTTPClient(baseURL string, timeout time.Duration, log zerolog.Logger) *HTTPClient {
	rc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &HTTPClient{rc: rc, log: log}
}

// Close releases the underlying transport.
func (c *HTTPClient) Close() error { return c.rc.Close() }

// FetchChecks retrieves the effective checks for the given hostname. All
// failure modes surface as *FetchError. Records with missing fields are kept
// with defensive defaults; a missing config becomes an empty mapping.
func (c *HTTPClient) FetchChecks(ctx context.Context, hostname string) ([]CheckDefinition, error) {
	path := "/api/v1/checks/target/hostname/" + url.PathEscape(hostname)
	c.log.Debug().Str("path", path).Msg("fetching effective checks")

	res, err := c.rc.R().SetContext(ctx).Get(path)
	if err != nil {
		return nil, &FetchError{Hostname: hostname, Err: err}
	}
	if !res.IsSuccess() {
		return nil, &FetchError{Hostname: hostname, Err: fmt.Errorf("unexpected status %s", res.Status())}
	}

	var payload []checkPayload
	if err := json.Unmarshal(res.Bytes(), &payload); err != nil {
		return nil, &FetchError{Hostname: hostname, Err: fmt.Errorf("decoding response: %w", err)}
	}

	defs := make([]CheckDefinition, 0, len(payload))
	for _, p := range payload {
		cfg := p.Config
		if cfg == nil {
			cfg = EmptyMapping()
		}
		defs = append(defs, CheckDefinition{
			Name:        p.Name,
			ScriptBody:  []byte(p.ScriptContent),
			ContentHash: p.ScriptHash,
			Config:      cfg,
		})
	}
	c.log.Debug().Int("count", len(defs)).Msg("received checks")
	return defs, nil
}

// Ping probes the config-server health endpoint. Used by preflight.
func (c *HTTPClient) Ping(ctx context.Context) error {
	res, err := c.rc.R().SetContext(ctx).Get("/api/v1/health")
	if err != nil {
		return fmt.Errorf("config-server unreachable: %w", err)
	}
	if !res.IsSuccess() {
		return fmt.Errorf("config-server health returned %s", res.Status())
	}
	return nil
}
