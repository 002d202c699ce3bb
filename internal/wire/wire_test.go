package wire

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plexarc/sigwire/internal/creds"
	"github.com/plexarc/sigwire/internal/sigv4"
)

// capture records the last request a test server saw.
type capture struct {
	method string
	path   string
	query  url.Values
	header http.Header
	body   string
}

func testServer(t *testing.T, status int, response string) (*httptest.Server, *capture) {
	t.Helper()
	var cap capture
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		cap = capture{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.Query(),
			header: r.Header.Clone(),
			body:   string(body),
		}
		w.WriteHeader(status)
		io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)
	return srv, &cap
}

// testClient signs with fixed env credentials against the given endpoint,
// hermetic from the host environment.
func testClient(t *testing.T, endpointURL string) *Client {
	t.Helper()
	env := map[string]string{
		"AWS_ACCESS_KEY_ID":     "AKIDEXAMPLE",
		"AWS_SECRET_ACCESS_KEY": "wJalrXUtnFEMI/K7MDENG+bPxRfiCYEXAMPLEKEY",
	}
	c := New(Options{
		Region:   "us-east-1",
		Endpoint: endpointURL,
		Credentials: &creds.Resolver{
			Dir: t.TempDir(),
			Env: func(key string) string { return env[key] },
		},
	})
	c.now = func() time.Time { return time.Date(2015, 8, 30, 12, 36, 0, 0, time.UTC) }
	return c
}

func TestQueryRequest(t *testing.T) {
	srv, cap := testServer(t, http.StatusOK, "<DescribeRegionsResponse/>")
	c := testClient(t, srv.URL)

	params := url.Values{}
	params.Set("RegionName.1", "us-east-1")
	body, err := c.QueryRequest(context.Background(), "ec2", "DescribeRegions", params)
	require.NoError(t, err)
	assert.Equal(t, "<DescribeRegionsResponse/>", body)

	assert.Equal(t, "POST", cap.method)
	assert.Equal(t, "/", cap.path)
	assert.Equal(t, "application/x-www-form-urlencoded; charset=utf-8", cap.header.Get("Content-Type"))

	form, err := url.ParseQuery(cap.body)
	require.NoError(t, err)
	assert.Equal(t, "DescribeRegions", form.Get("Action"))
	assert.Equal(t, "2016-11-15", form.Get("Version"))
	assert.Equal(t, "us-east-1", form.Get("RegionName.1"))

	auth := cap.header.Get("Authorization")
	assert.Contains(t, auth, "AWS4-HMAC-SHA256 Credential=AKIDEXAMPLE/20150830/us-east-1/ec2/aws4_request")
	assert.Contains(t, auth, "SignedHeaders=")
	assert.Equal(t, "20150830T123600Z", cap.header.Get("X-Amz-Date"))
}

func TestQueryRequestUnknownService(t *testing.T) {
	c := testClient(t, "http://unused.invalid")
	_, err := c.QueryRequest(context.Background(), "nope", "Act", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown service "nope"`)
}

func TestQueryRequestWrongProtocol(t *testing.T) {
	c := testClient(t, "http://unused.invalid")
	_, err := c.QueryRequest(context.Background(), "dynamodb", "ListTables", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not speak the query protocol")
}

func TestJSONRequest(t *testing.T) {
	srv, cap := testServer(t, http.StatusOK, `{"TableNames":[]}`)
	c := testClient(t, srv.URL)

	body, err := c.JSONRequest(context.Background(), "dynamodb", "ListTables", "")
	require.NoError(t, err)
	assert.Equal(t, `{"TableNames":[]}`, body)

	assert.Equal(t, "POST", cap.method)
	assert.Equal(t, "{}", cap.body) // empty input becomes the empty document
	assert.Equal(t, "application/x-amz-json-1.0", cap.header.Get("Content-Type"))
	assert.Equal(t, "DynamoDB_20120810.ListTables", cap.header.Get("X-Amz-Target"))
	assert.Contains(t, cap.header.Get("Authorization"), "/dynamodb/aws4_request")
}

func TestRestJSONRequest(t *testing.T) {
	srv, cap := testServer(t, http.StatusOK, `{"Functions":[]}`)
	c := testClient(t, srv.URL)

	_, err := c.RestJSONRequest(context.Background(), "lambda", "GET", "/2015-03-31/functions?MaxItems=10", nil)
	require.NoError(t, err)

	assert.Equal(t, "GET", cap.method)
	assert.Equal(t, "/2015-03-31/functions", cap.path)
	assert.Equal(t, "10", cap.query.Get("MaxItems"))
	// No body means no content type.
	assert.Empty(t, cap.header.Get("Content-Type"))
}

func TestRestJSONRequestWithBody(t *testing.T) {
	srv, cap := testServer(t, http.StatusCreated, `{}`)
	c := testClient(t, srv.URL)

	payload := []byte(`{"FunctionName":"fn"}`)
	_, err := c.RestJSONRequest(context.Background(), "lambda", "POST", "/2015-03-31/functions", payload)
	require.NoError(t, err)

	assert.Equal(t, "application/json", cap.header.Get("Content-Type"))
	assert.Equal(t, string(payload), cap.body)
}

func TestRestXMLRequest(t *testing.T) {
	srv, cap := testServer(t, http.StatusOK, "<ListAllMyBucketsResult/>")
	c := testClient(t, srv.URL)

	_, err := c.RestXMLRequest(context.Background(), "s3", "GET", "/", nil)
	require.NoError(t, err)

	assert.Equal(t, sigv4.EmptyPayloadHash, cap.header.Get("X-Amz-Content-Sha256"))
	assert.Contains(t, cap.header.Get("Authorization"), "/s3/aws4_request")
}

func TestRestXMLBucketRequest(t *testing.T) {
	srv, cap := testServer(t, http.StatusOK, "<VersioningConfiguration/>")
	c := testClient(t, srv.URL)

	body, err := c.RestXMLBucketRequest(context.Background(), "GET", "my-bucket", "?versioning", nil, "eu-west-1")
	require.NoError(t, err)
	assert.Equal(t, "<VersioningConfiguration/>", body)

	// Override endpoints get path-style addressing.
	assert.Equal(t, "/my-bucket/", cap.path)
	_, hasVersioning := cap.query["versioning"]
	assert.True(t, hasVersioning)
	assert.Contains(t, cap.header.Get("Authorization"), "/eu-west-1/s3/aws4_request")
}

func TestDoStatusError(t *testing.T) {
	srv, _ := testServer(t, http.StatusForbidden, "<Error><Code>AccessDenied</Code></Error>")
	c := testClient(t, srv.URL)

	_, err := c.QueryRequest(context.Background(), "sts", "GetCallerIdentity", nil)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusForbidden, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "AccessDenied")
}

func TestStatusErrorTruncation(t *testing.T) {
	long := make([]byte, 1000)
	for i := range long {
		long[i] = 'x'
	}
	e := &StatusError{StatusCode: 500, Body: string(long)}
	assert.Less(t, len(e.Error()), 600)
	assert.Contains(t, e.Error(), "HTTP 500")

	short := &StatusError{StatusCode: 404, Body: "missing"}
	assert.Equal(t, "HTTP 404: missing", short.Error())
}

func TestGetBucketRegion(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, http.MethodHead, r.Method)
		w.Header().Set("x-amz-bucket-region", "ap-southeast-2")
		w.WriteHeader(http.StatusForbidden) // the header is served even on 403
	}))
	t.Cleanup(srv.Close)
	c := testClient(t, srv.URL)

	region, err := c.GetBucketRegion(context.Background(), "my-bucket")
	require.NoError(t, err)
	assert.Equal(t, "ap-southeast-2", region)

	// Second lookup is served from the cache.
	region, err = c.GetBucketRegion(context.Background(), "my-bucket")
	require.NoError(t, err)
	assert.Equal(t, "ap-southeast-2", region)
	assert.Equal(t, int64(1), hits.Load())
}

func TestGetBucketRegionFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK) // no region header
	}))
	t.Cleanup(srv.Close)
	c := testClient(t, srv.URL)

	region, err := c.GetBucketRegion(context.Background(), "plain")
	require.NoError(t, err)
	assert.Equal(t, "us-east-1", region)
}

func TestRegionDefault(t *testing.T) {
	c := New(Options{})
	assert.Equal(t, "us-east-1", c.Region())

	c = New(Options{Region: "eu-north-1"})
	assert.Equal(t, "eu-north-1", c.Region())
}

func TestSplitPath(t *testing.T) {
	tests := []struct {
		in       string
		wantPath string
		wantRaw  string
	}{
		{"", "", ""},
		{"/p", "/p", ""},
		{"?versioning", "", "versioning="},
		{"/p?list-type=2&prefix=a%2Fb", "/p", "list-type=2&prefix=a%2Fb"},
	}
	for _, tt := range tests {
		p, q := splitPath(tt.in)
		assert.Equal(t, tt.wantPath, p, tt.in)
		assert.Equal(t, tt.wantRaw, sigv4.CanonicalQuery(q), tt.in)
	}
}
