package backend

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// Body is a successful response: structured JSON when the backend declared a
// JSON content type, raw text otherwise.
type Body struct {
	contentType string
	raw         []byte
	json        bool
}

func newBody(contentType string, data []byte) (*Body, error) {
	b := &Body{contentType: contentType, raw: data}
	if strings.Contains(strings.ToLower(contentType), "application/json") {
		b.json = true
		if len(bytes.TrimSpace(data)) > 0 && !json.Valid(data) {
			return nil, &Error{Kind: KindDecodeFailure, Err: errors.New("response declared JSON but is not valid JSON")}
		}
	}
	return b, nil
}

// IsJSON reports whether the body is structured data.
func (b *Body) IsJSON() bool { return b.json }

func (b *Body) ContentType() string { return b.contentType }

// Text returns the body as received.
func (b *Body) Text() string { return string(b.raw) }

// JSON returns the structured body, or nil for a text body or an empty
// JSON body.
func (b *Body) JSON() json.RawMessage {
	if !b.json || len(bytes.TrimSpace(b.raw)) == 0 {
		return nil
	}
	return json.RawMessage(b.raw)
}

// Decode unmarshals a JSON body into v. An empty JSON body leaves v untouched.
func (b *Body) Decode(v any) error {
	if !b.json {
		return &Error{Kind: KindDecodeFailure, Err: errors.New("response is not JSON (content type " + b.contentType + ")")}
	}
	if len(bytes.TrimSpace(b.raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(b.raw, v); err != nil {
		return &Error{Kind: KindDecodeFailure, Err: err}
	}
	return nil
}
