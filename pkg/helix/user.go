package helix

// User represents a Helix user record.
type User struct {
	// ID is the user's ID.
	ID string `json:"id"`

	// Login is the user's login name.
	Login string `json:"login"`

	// DisplayName is the user's display name.
	DisplayName string `json:"display_name"`

	// Type is "staff", "admin", "global_mod", or "".
	Type string `json:"type"`

	// BroadcasterType is "partner", "affiliate", or "".
	BroadcasterType string `json:"broadcaster_type"`

	// Description is the user's channel description.
	Description string `json:"description"`

	// ProfileImageURL is the URL of the user's profile image.
	ProfileImageURL string `json:"profile_image_url"`

	// OfflineImageURL is the URL of the user's offline image.
	OfflineImageURL string `json:"offline_image_url"`

	// Email is the user's email address. Only populated when the
	// request carried the user:read:email scope.
	Email string `json:"email"`

	// ViewCount is the total number of views of the user's channel.
	ViewCount int `json:"view_count"`
}

func (u User) String() string {
	return u.DisplayName
}
