package http

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/vncsmyrnk/polls/internal/core/ports"
)

const maxBodyBytes = 1 << 20

// payload keeps the raw JSON members of a request body so handlers can tell
// an absent field from an explicit null.
type payload map[string]json.RawMessage

var errMalformedBody = errors.New("Malformed JSON body.")

func decodePayload(r *http.Request) (payload, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return payload{}, nil
	}

	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, errMalformedBody
	}
	if p == nil {
		p = payload{}
	}
	return p, nil
}

// text reads a string member. Absent, null and non-string members give nil;
// wrongTypes reports the non-string ones.
func (p payload) text(key string) *string {
	raw, ok := p[key]
	if !ok {
		return nil
	}
	return stringValue(raw)
}

func (p payload) patch(key string) ports.Patch[string] {
	if _, ok := p[key]; !ok {
		return ports.Patch[string]{}
	}
	if v := p.text(key); v != nil {
		return ports.Some(*v)
	}
	return ports.Null[string]()
}

// list reads an array member. Items that are not strings come back as nil so
// option cleaning drops them. A present value that is not an array gives nil.
func (p payload) list(key string) *[]*string {
	raw, ok := p[key]
	if !ok || isNull(raw) {
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}

	out := make([]*string, 0, len(items))
	for _, item := range items {
		out = append(out, stringValue(item))
	}
	return &out
}

func (p payload) listPatch(key string) ports.Patch[[]*string] {
	if _, ok := p[key]; !ok {
		return ports.Patch[[]*string]{}
	}
	if v := p.list(key); v != nil {
		return ports.Some(*v)
	}
	return ports.Null[[]*string]()
}

// wrongTypes names the present, non-null members that are not strings
// (scalars) or not arrays (lists), in argument order.
func (p payload) wrongTypes(scalars []string, lists []string) []string {
	var wrong []string
	for _, key := range scalars {
		raw, ok := p[key]
		if ok && !isNull(raw) && stringValue(raw) == nil {
			wrong = append(wrong, key)
		}
	}
	for _, key := range lists {
		raw, ok := p[key]
		if ok && !isNull(raw) && p.list(key) == nil {
			wrong = append(wrong, key)
		}
	}
	return wrong
}

func stringValue(raw json.RawMessage) *string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '"' {
		return nil
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return nil
	}
	return &s
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
