package wire

import (
	"context"
	"fmt"
	"net/url"

	"github.com/plexarc/sigwire/internal/endpoint"
)

// QueryRequest performs a Query-protocol call: Action, Version and params
// form-encoded into a POST body, XML response body returned raw. The
// Version parameter comes from the service catalog so callers supply only
// the action and its parameters.
func (c *Client) QueryRequest(ctx context.Context, service, action string, params url.Values) (string, error) {
	svc, ok := endpoint.Lookup(service)
	if !ok {
		return "", fmt.Errorf("unknown service %q", service)
	}
	if svc.Protocol != endpoint.Query {
		return "", fmt.Errorf("service %q does not speak the query protocol", service)
	}

	form := url.Values{}
	form.Set("Action", action)
	form.Set("Version", svc.APIVersion)
	for k, vs := range params {
		for _, v := range vs {
			form.Add(k, v)
		}
	}

	baseURL, region := c.endpoints.Endpoint(svc)

	return c.do(ctx, request{
		method:  "POST",
		baseURL: baseURL,
		body:    []byte(form.Encode()),
		headers: map[string]string{
			"content-type": "application/x-www-form-urlencoded; charset=utf-8",
		},
		service: svc.Signing(),
		region:  region,
	})
}
