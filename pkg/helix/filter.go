package helix

import (
	"errors"
	"fmt"

	"github.com/streamkit/helix-client/pkg/transport"
)

// ErrFilterTooLarge is wrapped into the error returned when a filter
// list exceeds its Helix bound.
var ErrFilterTooLarge = errors.New("filter list exceeds maximum")

// Helix bounds for stream filter lists.
const (
	maxFilterUserIDs    = 100
	maxFilterUserLogins = 100
	maxFilterGameIDs    = 10
	maxFilterLanguages  = 100
)

// StreamFilter restricts a stream listing query. Every field is
// optional; nil or empty lists are ignored.
type StreamFilter struct {
	// UserIDs returns streams broadcast by the given user IDs. Maximum: 100.
	UserIDs []string

	// UserLogins returns streams broadcast by the given login names. Maximum: 100.
	UserLogins []string

	// GameIDs returns streams of the given games. Maximum: 10.
	GameIDs []string

	// Languages returns streams in the given languages. Maximum: 100.
	Languages []string
}

// Validate checks every list against its Helix bound. Called before
// any network activity; a violation is a configuration error.
func (f *StreamFilter) Validate() error {
	if f == nil {
		return nil
	}
	if len(f.UserIDs) > maxFilterUserIDs {
		return fmt.Errorf("%w: %d user IDs (maximum %d)", ErrFilterTooLarge, len(f.UserIDs), maxFilterUserIDs)
	}
	if len(f.UserLogins) > maxFilterUserLogins {
		return fmt.Errorf("%w: %d user logins (maximum %d)", ErrFilterTooLarge, len(f.UserLogins), maxFilterUserLogins)
	}
	if len(f.GameIDs) > maxFilterGameIDs {
		return fmt.Errorf("%w: %d game IDs (maximum %d)", ErrFilterTooLarge, len(f.GameIDs), maxFilterGameIDs)
	}
	if len(f.Languages) > maxFilterLanguages {
		return fmt.Errorf("%w: %d languages (maximum %d)", ErrFilterTooLarge, len(f.Languages), maxFilterLanguages)
	}
	return nil
}

// params renders the filter as query parameters, one repeated key per
// list entry.
func (f *StreamFilter) params() []transport.Param {
	if f == nil {
		return nil
	}
	var out []transport.Param
	for _, id := range f.UserIDs {
		out = append(out, transport.String("user_id", id))
	}
	for _, login := range f.UserLogins {
		out = append(out, transport.String("user_login", login))
	}
	for _, id := range f.GameIDs {
		out = append(out, transport.String("game_id", id))
	}
	for _, lang := range f.Languages {
		out = append(out, transport.String("language", lang))
	}
	return out
}
