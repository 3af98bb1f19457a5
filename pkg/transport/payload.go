package transport

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Payload is the decoded body of one Helix response. Body holds the
// raw bytes; IsJSON records whether the Content-Type declared
// application/json, in which case Envelope can unwrap the standard
// success envelope.
type Payload struct {
	Status int
	Header http.Header
	Body   []byte
	IsJSON bool
}

// Envelope is the Helix success envelope: a data array plus, for
// cursor-paginated endpoints, a pagination object.
type Envelope struct {
	Data       []json.RawMessage `json:"data"`
	Pagination Pagination        `json:"pagination"`
}

// Pagination carries the opaque continuation cursor. Absent on the
// last page.
type Pagination struct {
	Cursor string `json:"cursor"`
}

// Envelope parses the payload body as the standard envelope.
func (p *Payload) Envelope() (*Envelope, error) {
	if !p.IsJSON {
		return nil, fmt.Errorf("response is not JSON (content-type %q)", p.Header.Get("Content-Type"))
	}
	var env Envelope
	if err := json.Unmarshal(p.Body, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	return &env, nil
}

// readPayload drains and decodes an HTTP response body. The body is
// treated as JSON only when the Content-Type header says so; anything
// else stays opaque text.
func readPayload(resp *http.Response) (*Payload, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	return &Payload{
		Status: resp.StatusCode,
		Header: resp.Header.Clone(),
		Body:   body,
		IsJSON: strings.Contains(resp.Header.Get("Content-Type"), "application/json"),
	}, nil
}
