package endpoint

import (
	"fmt"
	"strings"
)

// DefaultRegion is assumed when neither caller nor environment names one.
const DefaultRegion = "us-east-1"

// Resolver derives the base URL and signing region for a service, honoring
// an override endpoint for local emulation.
type Resolver struct {
	// Region is the caller-selected region.
	Region string
	// Override, when set, replaces scheme+host for every service (and
	// switches bucket addressing to path style).
	Override string
}

// Endpoint returns the base URL (scheme+host, no trailing slash) and the
// region the request must be signed for.
func (r *Resolver) Endpoint(svc Service) (baseURL, signingRegion string) {
	region := r.Region
	if region == "" {
		region = DefaultRegion
	}
	if svc.Global {
		region = DefaultRegion
	}

	if r.Override != "" {
		return strings.TrimSuffix(r.Override, "/"), region
	}

	if svc.Global {
		return fmt.Sprintf("https://%s.amazonaws.com", svc.EndpointPrefix()), region
	}
	return fmt.Sprintf("https://%s.%s.amazonaws.com", svc.EndpointPrefix(), region), region
}

// BucketEndpoint returns the base URL and remaining path prefix for a
// bucket in a given region. Buckets are strictly regional, so the caller
// must already know the bucket's region (see wire.GetBucketRegion).
// Virtual-hosted addressing is used against the real endpoint; an override
// endpoint gets path-style addressing, which is what local emulators expect.
func (r *Resolver) BucketEndpoint(bucket, region string) (baseURL, pathPrefix string) {
	if region == "" {
		region = DefaultRegion
	}
	if r.Override != "" {
		return strings.TrimSuffix(r.Override, "/"), "/" + bucket
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region), ""
}
