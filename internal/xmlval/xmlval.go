// Package xmlval normalizes XML response documents into a generic value
// tree so callers can use one addressing scheme regardless of the wire
// dialect a response arrived in.
//
// The tree holds only four shapes: nil, string, []any and map[string]any.
// Element tag names become map keys. An element with no children becomes
// its text content as a string. Repeated sibling tags with the same name
// accumulate into a []any under that key — but a tag that happens to occur
// once stays a bare value, even for wrapper tags (item, member) that the
// provider uses for lists. Callers reading list-shaped fields must branch
// on slice-vs-single; List is the helper for that. This asymmetry is
// deliberate and matches existing call sites; do not "fix" it here.
//
// Element attributes are dropped: no consumer of the provider's control
// plane responses reads them.
package xmlval

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Parse converts an XML document into a generic value tree. The root
// element's tag name is the single key of the returned map. Malformed XML
// returns an error, never panics.
func Parse(data []byte) (map[string]any, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil, fmt.Errorf("parsing XML: no root element")
		}
		if err != nil {
			return nil, fmt.Errorf("parsing XML: %w", err)
		}

		if start, ok := tok.(xml.StartElement); ok {
			val, err := parseElement(dec, start)
			if err != nil {
				return nil, fmt.Errorf("parsing XML: %w", err)
			}
			return map[string]any{start.Name.Local: val}, nil
		}
	}
}

// parseElement consumes tokens until start's matching end tag and returns
// the element's normalized value.
func parseElement(dec *xml.Decoder, start xml.StartElement) (any, error) {
	children := map[string]any{}
	var text strings.Builder

	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			child, err := parseElement(dec, t)
			if err != nil {
				return nil, err
			}
			name := t.Name.Local
			if prev, ok := children[name]; ok {
				// Repeated sibling tag: accumulate into a sequence.
				if arr, ok := prev.([]any); ok {
					children[name] = append(arr, child)
				} else {
					children[name] = []any{prev, child}
				}
			} else {
				children[name] = child
			}
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			if len(children) > 0 {
				// Mixed content loses interleaved text; the provider's
				// responses never mix text and elements.
				return children, nil
			}
			return strings.TrimSpace(text.String()), nil
		}
	}
}

// Pointer navigates a value tree with a JSON-pointer-style path of
// /-separated keys, e.g. "/DescribeInstancesResponse/reservationSet/item".
// A path segment that parses as a number indexes into a sequence. Returns
// (nil, false) when any step is missing.
func Pointer(v any, path string) (any, bool) {
	if path == "" {
		return v, true
	}
	cur := v
	for _, seg := range strings.Split(strings.TrimPrefix(path, "/"), "/") {
		switch node := cur.(type) {
		case map[string]any:
			next, ok := node[seg]
			if !ok {
				return nil, false
			}
			cur = next
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			cur = node[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

// String returns the string at path, or "" if the path is missing or the
// value there is not a string.
func String(v any, path string) string {
	node, ok := Pointer(v, path)
	if !ok {
		return ""
	}
	s, _ := node.(string)
	return s
}

// List normalizes a list-shaped field read: a sequence is returned as-is,
// a single bare value (the one-element quirk) becomes a one-element slice,
// and nil stays nil. This is the single branch point for slice-vs-single.
func List(v any) []any {
	switch node := v.(type) {
	case nil:
		return nil
	case []any:
		return node
	default:
		return []any{node}
	}
}
