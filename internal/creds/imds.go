package creds

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/plexarc/sigwire/internal/log"
)

const (
	// defaultIMDSEndpoint is the well-known link-local metadata address.
	defaultIMDSEndpoint = "http://169.254.169.254"
	// imdsTokenTTL is the requested session token lifetime (6 hours).
	imdsTokenTTL = 21600
	// imdsTimeout bounds every metadata request. Kept aggressive so that
	// off-EC2 resolution fails fast instead of hanging the chain.
	imdsTimeout = 1 * time.Second
	// refreshBuffer: refresh cached credentials this long before expiry.
	refreshBuffer = 5 * time.Minute
	// defaultValidity is assumed when the credential document carries an
	// unparseable or already-past expiration.
	defaultValidity = 1 * time.Hour

	tokenPath = "/latest/api/token"
	rolePath  = "/latest/meta-data/iam/security-credentials/"

	tokenTTLHeader = "X-aws-ec2-metadata-token-ttl-seconds"
	tokenHeader    = "X-aws-ec2-metadata-token"
)

// IMDSClient fetches temporary credentials from the EC2 instance metadata
// service using the token-gated v2 flow, caching them until close to
// expiry. The cache is the only shared mutable state in this package; the
// lock is held only to read or swap the cached triple, never across the
// network refresh. Concurrent first-time callers may each fetch — the
// results are equivalent and the last write wins.
type IMDSClient struct {
	endpoint string
	httpc    *http.Client
	now      func() time.Time

	mu     sync.Mutex
	cached *cachedCredentials
}

type cachedCredentials struct {
	creds      Credentials
	expiration time.Time
}

// NewIMDSClient returns a client for the standard metadata endpoint.
func NewIMDSClient() *IMDSClient {
	return &IMDSClient{
		endpoint: defaultIMDSEndpoint,
		httpc:    &http.Client{Timeout: imdsTimeout},
		now:      time.Now,
	}
}

// newIMDSClientForTest points the client at a fake endpoint.
func newIMDSClientForTest(endpoint string, now func() time.Time) *IMDSClient {
	return &IMDSClient{
		endpoint: endpoint,
		httpc:    &http.Client{Timeout: imdsTimeout},
		now:      now,
	}
}

// Credentials returns the cached triple when it has more than the refresh
// buffer left, otherwise performs the three-step fetch and replaces the
// cache wholesale.
func (c *IMDSClient) Credentials(ctx context.Context) (Credentials, error) {
	c.mu.Lock()
	if c.cached != nil && c.cached.expiration.After(c.now().Add(refreshBuffer)) {
		creds := c.cached.creds
		c.mu.Unlock()
		return creds, nil
	}
	c.mu.Unlock()

	creds, expiration, err := c.fetch(ctx)
	if err != nil {
		return Credentials{}, err
	}

	c.mu.Lock()
	c.cached = &cachedCredentials{creds: creds, expiration: expiration}
	c.mu.Unlock()

	log.Debug("cached instance metadata credentials", "expires_in", expiration.Sub(c.now()).String())
	return creds, nil
}

// Available probes the token endpoint. Useful for detecting whether the
// process runs on a compute instance at all.
func (c *IMDSClient) Available(ctx context.Context) bool {
	_, err := c.fetchToken(ctx)
	return err == nil
}

// credentialDocument is the JSON body served for a role.
type credentialDocument struct {
	AccessKeyID     string `json:"AccessKeyId"`
	SecretAccessKey string `json:"SecretAccessKey"`
	Token           string `json:"Token"`
	Expiration      string `json:"Expiration"`
}

func (c *IMDSClient) fetch(ctx context.Context) (Credentials, time.Time, error) {
	token, err := c.fetchToken(ctx)
	if err != nil {
		return Credentials{}, time.Time{}, fmt.Errorf("getting metadata token (not on EC2?): %w", err)
	}

	role, err := c.get(ctx, rolePath, token)
	if err != nil {
		return Credentials{}, time.Time{}, fmt.Errorf("getting IAM role name: %w", err)
	}
	role = strings.TrimSpace(role)
	if role == "" {
		return Credentials{}, time.Time{}, fmt.Errorf("no IAM role attached to this instance")
	}

	body, err := c.get(ctx, rolePath+role, token)
	if err != nil {
		return Credentials{}, time.Time{}, fmt.Errorf("getting credentials for role %q: %w", role, err)
	}

	var doc credentialDocument
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return Credentials{}, time.Time{}, fmt.Errorf("parsing credential document: %w", err)
	}
	if doc.AccessKeyID == "" || doc.SecretAccessKey == "" {
		return Credentials{}, time.Time{}, fmt.Errorf("credential document for role %q missing keys", role)
	}

	creds := Credentials{
		AccessKeyID:     doc.AccessKeyID,
		SecretAccessKey: doc.SecretAccessKey,
		SessionToken:    doc.Token,
	}

	// An unparseable or already-past expiration gets a conservative
	// default rather than failing the resolution.
	expiration := c.now().Add(defaultValidity)
	if t, err := time.Parse(time.RFC3339, doc.Expiration); err == nil && t.After(c.now()) {
		expiration = t
	}

	return creds, expiration, nil
}

// fetchToken performs the PUT that opens a metadata session.
func (c *IMDSClient) fetchToken(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.endpoint+tokenPath, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set(tokenTTLHeader, strconv.Itoa(imdsTokenTTL))

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token request returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (c *IMDSClient) get(ctx context.Context, path, token string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+path, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set(tokenHeader, token)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("metadata request %s returned status %d", path, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}
