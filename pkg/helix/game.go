package helix

import (
	"strconv"
	"strings"
)

// Game represents a Helix game record.
type Game struct {
	// ID is the game ID.
	ID string `json:"id"`

	// Name is the game name.
	Name string `json:"name"`

	// BoxArtTemplate is the box art URL template with {width} and
	// {height} placeholders. Use BoxArtURL for a concrete size.
	BoxArtTemplate string `json:"box_art_url"`
}

func (g Game) String() string {
	return g.Name
}

// BoxArtURL renders the box art URL at the given size. Helix serves
// box art at any requested dimensions; 144x192 is the documented
// default.
func (g Game) BoxArtURL(width, height int) string {
	return expandImageTemplate(g.BoxArtTemplate, width, height)
}

// expandImageTemplate substitutes the {width}/{height} placeholders
// Helix embeds in image URL templates.
func expandImageTemplate(template string, width, height int) string {
	r := strings.NewReplacer(
		"{width}", strconv.Itoa(width),
		"{height}", strconv.Itoa(height),
	)
	return r.Replace(template)
}
