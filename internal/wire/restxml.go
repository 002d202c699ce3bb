package wire

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/plexarc/sigwire/internal/endpoint"
	"github.com/plexarc/sigwire/internal/log"
	"github.com/plexarc/sigwire/internal/sigv4"
)

// RestXMLRequest performs a REST-XML call against a service's regional
// endpoint: method and path encode the operation, response is raw XML.
func (c *Client) RestXMLRequest(ctx context.Context, service, method, path string, body []byte) (string, error) {
	svc, ok := endpoint.Lookup(service)
	if !ok {
		return "", fmt.Errorf("unknown service %q", service)
	}
	if svc.Protocol != endpoint.RestXML {
		return "", fmt.Errorf("service %q does not speak the REST-XML protocol", service)
	}

	baseURL, region := c.endpoints.Endpoint(svc)
	p, query := splitPath(path)

	return c.do(ctx, request{
		method:  method,
		baseURL: baseURL,
		path:    p,
		query:   query,
		headers: restXMLHeaders(body),
		body:    body,
		service: svc.Signing(),
		region:  region,
		rawPath: true,
	})
}

// RestXMLBucketRequest performs a REST-XML call addressed to a specific
// bucket in a specific region. Buckets are strictly regional: a request
// signed or addressed for the wrong region fails, so callers resolve the
// region first (GetBucketRegion). pathSuffix is appended after the bucket
// addressing, e.g. "?versioning" or "?list-type=2&delimiter=/".
func (c *Client) RestXMLBucketRequest(ctx context.Context, method, bucket, pathSuffix string, body []byte, region string) (string, error) {
	if region == "" {
		region = endpoint.DefaultRegion
	}

	baseURL, pathPrefix := c.endpoints.BucketEndpoint(bucket, region)
	p, query := splitPath(pathSuffix)
	if p == "" {
		p = "/"
	}

	return c.do(ctx, request{
		method:  method,
		baseURL: baseURL,
		path:    pathPrefix + p,
		query:   query,
		headers: restXMLHeaders(body),
		body:    body,
		service: "s3",
		region:  region,
		rawPath: true,
	})
}

// restXMLHeaders carries the content hash header S3 requires on every
// signed request.
func restXMLHeaders(body []byte) map[string]string {
	return map[string]string{
		"x-amz-content-sha256": sigv4.HashPayload(body),
	}
}

// GetBucketRegion resolves a bucket's region with an unsigned HEAD,
// reading the x-amz-bucket-region response header — present even on 301
// and 403 responses, so no credentials or signing are needed. Results are
// cached for the life of the client and concurrent lookups for the same
// bucket are coalesced.
func (c *Client) GetBucketRegion(ctx context.Context, bucket string) (string, error) {
	if cached, ok := c.bucketRegions.Load(bucket); ok {
		return cached.(string), nil
	}

	region, err, _ := c.lookups.Do(bucket, func() (any, error) {
		url := "https://" + bucket + ".s3.amazonaws.com/"
		if c.endpoints.Override != "" {
			url = strings.TrimSuffix(c.endpoints.Override, "/") + "/" + bucket
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
		if err != nil {
			return "", err
		}

		resp, err := c.httpc.Do(req)
		if err != nil {
			return "", fmt.Errorf("looking up region for bucket %q: %w", bucket, err)
		}
		resp.Body.Close()

		region := resp.Header.Get("x-amz-bucket-region")
		if region == "" {
			region = endpoint.DefaultRegion
		}
		log.Debug("resolved bucket region", "bucket", bucket, "region", region)
		return region, nil
	})
	if err != nil {
		return "", err
	}

	c.bucketRegions.Store(bucket, region.(string))
	return region.(string), nil
}
