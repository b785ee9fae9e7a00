// Package lookup talks to the external postal-code reference API.
//
// The API answers "which localities carry this postal code". A 2xx response
// carries the list; a 4xx means the reference data has no entry for the
// code, which is a definitive answer (empty list), not a fault. Only 5xx
// responses, transport errors and timeouts surface as errors, so the
// caller can tell "no match" apart from "the dependency is down".
package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Locality is one entry of the reference data for a postal code.
type Locality struct {
	City       string `json:"nomCommune"`
	PostalCode string `json:"codePostal"`
}

// Source answers postal-code lookups. Implemented by Client and by the
// caching decorator in this package.
type Source interface {
	Localities(ctx context.Context, postalCode string) ([]Locality, error)
}

// Client is the HTTP implementation of Source.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
	tracer  trace.Tracer
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTimeout bounds every lookup call. This timeout must stay shorter
// than any caller-facing deadline so a hung reference API cannot hang the
// business operation.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client, for tests.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// NewClient creates a lookup client for the given API base URL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 2 * time.Second},
		logger:  slog.Default(),
		tracer:  otel.Tracer("clientele/addressing/lookup"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Localities fetches the localities registered for a postal code.
func (c *Client) Localities(ctx context.Context, postalCode string) ([]Locality, error) {
	ctx, span := c.tracer.Start(ctx, "lookup.Localities",
		trace.WithAttributes(attribute.String("postal_code", postalCode)))
	defer span.End()

	endpoint := fmt.Sprintf("%s/codes_postaux/communes/%s", c.baseURL, url.PathEscape(postalCode))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build lookup request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("postal code lookup: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		var localities []Locality
		if err := json.NewDecoder(resp.Body).Decode(&localities); err != nil {
			return nil, fmt.Errorf("decode lookup response: %w", err)
		}
		return localities, nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		// The reference data has no entry for this code. A definitive
		// answer, not a dependency fault.
		c.logger.Debug("postal code not found in reference data",
			"postal_code", postalCode, "status", resp.StatusCode)
		return nil, nil
	default:
		return nil, fmt.Errorf("postal code lookup returned status %d", resp.StatusCode)
	}
}
