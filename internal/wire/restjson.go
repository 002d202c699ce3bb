package wire

import (
	"context"
	"fmt"

	"github.com/plexarc/sigwire/internal/endpoint"
)

// RestJSONRequest performs a REST-JSON call: method and path encode the
// operation, body (if any) is a JSON document. Returns the raw JSON
// response body. The path may carry a query string.
func (c *Client) RestJSONRequest(ctx context.Context, service, method, path string, body []byte) (string, error) {
	svc, ok := endpoint.Lookup(service)
	if !ok {
		return "", fmt.Errorf("unknown service %q", service)
	}
	if svc.Protocol != endpoint.RestJSON {
		return "", fmt.Errorf("service %q does not speak the REST-JSON protocol", service)
	}

	baseURL, region := c.endpoints.Endpoint(svc)
	p, query := splitPath(path)

	headers := map[string]string{}
	if len(body) > 0 {
		headers["content-type"] = "application/json"
	}

	return c.do(ctx, request{
		method:  method,
		baseURL: baseURL,
		path:    p,
		query:   query,
		headers: headers,
		body:    body,
		service: svc.Signing(),
		region:  region,
	})
}
