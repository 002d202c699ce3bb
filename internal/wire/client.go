// Package wire sends signed requests in the provider's four wire dialects
// and returns raw response bodies. One attempt per call; every failure is
// surfaced to the caller as a typed error, never retried or swallowed.
package wire

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/plexarc/sigwire/internal/creds"
	"github.com/plexarc/sigwire/internal/endpoint"
	"github.com/plexarc/sigwire/internal/log"
	"github.com/plexarc/sigwire/internal/sigv4"
)

// defaultTimeout bounds one control-plane HTTP exchange.
const defaultTimeout = 30 * time.Second

// Client issues signed requests for one profile/region pair. Each request
// resolves credentials and signs with a fresh timestamp; requests are
// independent and carry no ordering guarantee.
type Client struct {
	httpc     *http.Client
	creds     *creds.Resolver
	profile   string
	endpoints *endpoint.Resolver

	// now is injectable so signing tests are deterministic.
	now func() time.Time

	// bucketRegions caches bucket→region lookups; lookups coalesces
	// concurrent misses for the same bucket.
	bucketRegions sync.Map
	lookups       singleflight.Group
}

// Options configures a Client.
type Options struct {
	// Profile selects the credential profile. Defaults to "default".
	Profile string
	// Region is the target region. Defaults per endpoint.DefaultRegion.
	Region string
	// Endpoint overrides every service endpoint (local emulation).
	Endpoint string
	// HTTPClient defaults to a client with a 30s timeout.
	HTTPClient *http.Client
	// Credentials defaults to creds.NewResolver().
	Credentials *creds.Resolver
}

// New creates a Client.
func New(opts Options) *Client {
	profile := opts.Profile
	if profile == "" {
		profile = "default"
	}
	httpc := opts.HTTPClient
	if httpc == nil {
		httpc = &http.Client{Timeout: defaultTimeout}
	}
	resolver := opts.Credentials
	if resolver == nil {
		resolver = creds.NewResolver()
	}
	return &Client{
		httpc:     httpc,
		creds:     resolver,
		profile:   profile,
		endpoints: &endpoint.Resolver{Region: opts.Region, Override: opts.Endpoint},
		now:       time.Now,
	}
}

// Region returns the client's effective region.
func (c *Client) Region() string {
	if c.endpoints.Region != "" {
		return c.endpoints.Region
	}
	return endpoint.DefaultRegion
}

// request is one signable exchange, dialect differences already applied.
type request struct {
	method  string
	baseURL string // scheme://host[:port]
	path    string // "" means "/"
	query   url.Values
	headers map[string]string // sent and signed
	body    []byte
	service string // SigV4 signing name
	region  string // SigV4 signing region
	rawPath bool   // S3: sign and send the path as given
}

// do resolves credentials, signs, sends, and returns the response body.
// Non-2xx statuses become *StatusError with the body preserved.
func (c *Client) do(ctx context.Context, req request) (string, error) {
	cr, err := c.creds.Resolve(ctx, c.profile)
	if err != nil {
		return "", err
	}

	u, err := url.Parse(req.baseURL)
	if err != nil {
		return "", fmt.Errorf("parsing endpoint %q: %w", req.baseURL, err)
	}

	path := req.path
	if path == "" {
		path = "/"
	}

	headers := map[string]string{"host": u.Host}
	for k, v := range req.headers {
		headers[strings.ToLower(k)] = v
	}

	payloadHash := sigv4.HashPayload(req.body)

	auth := sigv4.Sign(sigv4.Context{
		Method:      req.method,
		Path:        path,
		Query:       req.query,
		Headers:     headers,
		PayloadHash: payloadHash,
		Region:      req.region,
		Service:     req.service,
		Time:        c.now(),
		RawPath:     req.rawPath,
	}, cr)

	// Send exactly the query string that was signed.
	full := req.baseURL + path
	if rawQuery := sigv4.CanonicalQuery(req.query); rawQuery != "" {
		full += "?" + rawQuery
	}

	var body io.Reader
	if len(req.body) > 0 {
		body = bytes.NewReader(req.body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, full, body)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	for k, v := range req.headers {
		httpReq.Header.Set(k, v)
	}
	for k, v := range auth {
		httpReq.Header.Set(k, v)
	}

	log.Debug("sending request",
		"service", req.service, "method", req.method, "host", u.Host, "path", path)

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("sending request to %s: %w", u.Host, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response from %s: %w", u.Host, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	return string(respBody), nil
}

// splitPath separates an adapter path like "?versioning" or
// "/p?list-type=2&prefix=a" into its path and parsed query parts.
func splitPath(path string) (string, url.Values) {
	p, rawQuery, ok := strings.Cut(path, "?")
	if !ok {
		return p, nil
	}
	return p, sigv4.ParseQuery(rawQuery)
}
