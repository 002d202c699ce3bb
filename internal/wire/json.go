package wire

import (
	"context"
	"fmt"

	"github.com/plexarc/sigwire/internal/endpoint"
)

// JSONRequest performs a JSON-target-protocol call: the operation name
// rides in the X-Amz-Target header and body is a single JSON document.
// Returns the raw JSON response body.
func (c *Client) JSONRequest(ctx context.Context, service, operation, body string) (string, error) {
	svc, ok := endpoint.Lookup(service)
	if !ok {
		return "", fmt.Errorf("unknown service %q", service)
	}
	if svc.Protocol != endpoint.JSON {
		return "", fmt.Errorf("service %q does not speak the JSON target protocol", service)
	}
	if body == "" {
		body = "{}"
	}

	baseURL, region := c.endpoints.Endpoint(svc)

	return c.do(ctx, request{
		method:  "POST",
		baseURL: baseURL,
		body:    []byte(body),
		headers: map[string]string{
			"content-type": "application/x-amz-json-" + svc.JSONVersion,
			"x-amz-target": svc.Target + "." + operation,
		},
		service: svc.Signing(),
		region:  region,
	})
}
