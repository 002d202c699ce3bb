package sigv4

import (
	"net/url"
	"sort"
	"strings"
)

// CanonicalQuery renders query parameters in canonical form: pairs sorted
// by key then value, both percent-encoded, joined with '&'. Empty string
// when there are no parameters.
func CanonicalQuery(query url.Values) string {
	if len(query) == 0 {
		return ""
	}

	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var pairs []string
	for _, k := range keys {
		values := append([]string(nil), query[k]...)
		sort.Strings(values)
		ek := uriEncode(k, true)
		for _, v := range values {
			pairs = append(pairs, ek+"="+uriEncode(v, true))
		}
	}
	return strings.Join(pairs, "&")
}

// canonicalPath percent-encodes each path segment independently. raw
// leaves segments as given for services whose keys arrive pre-encoded.
func canonicalPath(path string, raw bool) string {
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if raw {
		return path
	}

	segments := strings.Split(path, "/")
	for i, seg := range segments {
		segments[i] = uriEncode(seg, false)
	}
	return strings.Join(segments, "/")
}

// uriEncode percent-encodes per the SigV4 rules: unreserved characters
// (A-Z a-z 0-9 - . _ ~) pass through, everything else becomes uppercase
// %XX, space is %20 (never '+'). encodeSlash controls whether '/' is
// escaped; it is for query strings, not for path segments.
func uriEncode(s string, encodeSlash bool) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9',
			c == '-', c == '.', c == '_', c == '~':
			b.WriteByte(c)
		case c == '/' && !encodeSlash:
			b.WriteByte(c)
		default:
			b.WriteString("%" + strings.ToUpper(hexByte(c)))
		}
	}
	return b.String()
}

func hexByte(c byte) string {
	const digits = "0123456789ABCDEF"
	return string([]byte{digits[c>>4], digits[c&0xf]})
}

// ParseQuery is url.ParseQuery without '+'-as-space interpretation in
// values, which matters for pre-encoded subresource paths like
// "?list-type=2&prefix=a%2Fb". Keys and values are percent-decoded.
func ParseQuery(rawQuery string) url.Values {
	values := url.Values{}
	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		if dk, err := url.QueryUnescape(strings.ReplaceAll(k, "+", "%2B")); err == nil {
			k = dk
		}
		if dv, err := url.QueryUnescape(strings.ReplaceAll(v, "+", "%2B")); err == nil {
			v = dv
		}
		values.Add(k, v)
	}
	return values
}
