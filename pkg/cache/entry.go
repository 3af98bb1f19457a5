package cache

import (
	"time"
)

// Entry represents one cached Helix response body.
type Entry struct {
	// Body is the decoded response body (raw JSON bytes or plain text).
	Body []byte `json:"body"`

	// IsJSON records whether the response declared application/json.
	IsJSON bool `json:"is_json"`

	// StoredAt is when the entry was written.
	StoredAt time.Time `json:"stored_at"`
}

// Age returns how long the entry has been cached.
func (e *Entry) Age() time.Duration {
	return time.Since(e.StoredAt)
}
