package helix

import (
	"time"
)

// Stream represents an active Helix stream record.
type Stream struct {
	// ID is the stream ID.
	ID string `json:"id"`

	// UserID is the ID of the broadcasting user.
	UserID string `json:"user_id"`

	// UserName is the display name corresponding to UserID.
	UserName string `json:"user_name"`

	// GameID is the ID of the game being played.
	GameID string `json:"game_id"`

	// Type is "live", or "" in case of error.
	Type string `json:"type"`

	// Title is the stream title.
	Title string `json:"title"`

	// ViewerCount is the number of viewers at query time.
	ViewerCount int `json:"viewer_count"`

	// StartedAt is the UTC stream start timestamp.
	StartedAt time.Time `json:"started_at"`

	// Language is the stream language.
	Language string `json:"language"`

	// ThumbnailTemplate is the thumbnail URL template with {width} and
	// {height} placeholders. Use ThumbnailURL for a concrete size.
	ThumbnailTemplate string `json:"thumbnail_url"`

	// TagIDs are the tag IDs applied to the stream.
	TagIDs []string `json:"tag_ids"`
}

func (s Stream) String() string {
	return s.Title
}

// Live reports whether the stream status is "live".
func (s Stream) Live() bool {
	return s.Type == "live"
}

// ThumbnailURL renders the stream thumbnail at the given size.
func (s Stream) ThumbnailURL(width, height int) string {
	return expandImageTemplate(s.ThumbnailTemplate, width, height)
}
