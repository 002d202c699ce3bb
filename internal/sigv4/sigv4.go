// Package sigv4 computes AWS Signature Version 4 authentication headers
// from first principles: canonical request, string-to-sign, and the
// four-step HMAC-SHA256 key derivation chain.
//
// Sign is a pure function of its inputs. Identical inputs — including the
// timestamp — always produce byte-identical output; callers inject the
// clock, the signer never reads it.
package sigv4

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/plexarc/sigwire/internal/creds"
)

const (
	// Algorithm is the SigV4 algorithm identifier.
	Algorithm = "AWS4-HMAC-SHA256"

	// EmptyPayloadHash is the hex SHA-256 of the empty string, used for
	// bodiless requests.
	EmptyPayloadHash = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

	amzDateFormat   = "20060102T150405Z"
	shortDateFormat = "20060102"
	scopeTerminator = "aws4_request"
)

// Context carries everything the signature binds to. Headers must include
// host; names are lowercased and values whitespace-trimmed during
// canonicalization, so callers may pass them in any case.
type Context struct {
	Method      string
	Path        string // unencoded request path; "" means "/"
	Query       url.Values
	Headers     map[string]string
	PayloadHash string // hex SHA-256 of the body; EmptyPayloadHash if none
	Region      string
	Service     string
	Time        time.Time
	// RawPath skips segment re-encoding for services (S3) whose keys are
	// sent pre-encoded.
	RawPath bool
}

// Sign computes the authentication headers for sc: Authorization,
// X-Amz-Date, and X-Amz-Security-Token when the credentials carry one.
// The date and token headers participate in the canonical header set.
func Sign(sc Context, cr creds.Credentials) map[string]string {
	t := sc.Time.UTC()
	amzDate := t.Format(amzDateFormat)
	shortDate := t.Format(shortDateFormat)

	headers := map[string]string{"x-amz-date": amzDate}
	for k, v := range sc.Headers {
		headers[strings.ToLower(k)] = strings.TrimSpace(v)
	}
	if cr.SessionToken != "" {
		headers["x-amz-security-token"] = cr.SessionToken
	}

	signedHeaders, canonicalHeaders := canonicalizeHeaders(headers)

	payloadHash := sc.PayloadHash
	if payloadHash == "" {
		payloadHash = EmptyPayloadHash
	}

	canonicalRequest := strings.Join([]string{
		strings.ToUpper(sc.Method),
		canonicalPath(sc.Path, sc.RawPath),
		CanonicalQuery(sc.Query),
		canonicalHeaders + "\n",
		signedHeaders,
		payloadHash,
	}, "\n")

	scope := strings.Join([]string{shortDate, sc.Region, sc.Service, scopeTerminator}, "/")

	stringToSign := strings.Join([]string{
		Algorithm,
		amzDate,
		scope,
		hashHex([]byte(canonicalRequest)),
	}, "\n")

	key := deriveKey(cr.SecretAccessKey, shortDate, sc.Region, sc.Service)
	signature := hex.EncodeToString(hmacSHA256(key, []byte(stringToSign)))

	out := map[string]string{
		"Authorization": Algorithm +
			" Credential=" + cr.AccessKeyID + "/" + scope +
			", SignedHeaders=" + signedHeaders +
			", Signature=" + signature,
		"X-Amz-Date": amzDate,
	}
	if cr.SessionToken != "" {
		out["X-Amz-Security-Token"] = cr.SessionToken
	}
	return out
}

// HashPayload returns the hex SHA-256 of a request body.
func HashPayload(body []byte) string {
	if len(body) == 0 {
		return EmptyPayloadHash
	}
	return hashHex(body)
}

// canonicalizeHeaders renders the sorted signed-header list and the
// canonical header block. Input keys must already be lowercased.
func canonicalizeHeaders(headers map[string]string) (signedHeaders, canonicalHeaders string) {
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, len(names))
	for i, name := range names {
		lines[i] = name + ":" + strings.TrimSpace(headers[name])
	}

	return strings.Join(names, ";"), strings.Join(lines, "\n")
}

// deriveKey chains four HMAC-SHA256 operations seeded from the secret key:
// date, region, service, terminator — each step's output keys the next.
func deriveKey(secret, date, region, service string) []byte {
	k := hmacSHA256([]byte("AWS4"+secret), []byte(date))
	k = hmacSHA256(k, []byte(region))
	k = hmacSHA256(k, []byte(service))
	return hmacSHA256(k, []byte(scopeTerminator))
}

func hmacSHA256(key, data []byte) []byte {
	h := hmac.New(sha256.New, key)
	h.Write(data)
	return h.Sum(nil)
}

func hashHex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
