package helix

import "testing"

func TestGameBoxArtURL(t *testing.T) {
	game := Game{
		ID:             "33214",
		Name:           "Fortnite",
		BoxArtTemplate: "https://static-cdn.jtvnw.net/ttv-boxart/Fortnite-{width}x{height}.jpg",
	}

	want := "https://static-cdn.jtvnw.net/ttv-boxart/Fortnite-285x380.jpg"
	if got := game.BoxArtURL(285, 380); got != want {
		t.Errorf("BoxArtURL(285, 380) = %q, want %q", got, want)
	}
}

func TestStreamThumbnailURL(t *testing.T) {
	stream := Stream{
		ThumbnailTemplate: "https://static-cdn.jtvnw.net/previews-ttv/live_user_x-{width}x{height}.jpg",
	}

	want := "https://static-cdn.jtvnw.net/previews-ttv/live_user_x-640x360.jpg"
	if got := stream.ThumbnailURL(640, 360); got != want {
		t.Errorf("ThumbnailURL(640, 360) = %q, want %q", got, want)
	}
}

func TestStreamLive(t *testing.T) {
	if !(Stream{Type: "live"}).Live() {
		t.Error("Live() = false for type live")
	}
	if (Stream{Type: ""}).Live() {
		t.Error("Live() = true for empty type")
	}
}
