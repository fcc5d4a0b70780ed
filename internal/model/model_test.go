package model

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var testPathConfig = &PathConfig{
	DownloadsPath:          "/music/{artist}/{playlist}",
	CoverArtFileNameFormat: "{playlist}",
	PlaylistFileNameFormat: "{playlist}",
	PlaylistFormat:         PlaylistFormatM3U,
}

func TestCollection_PathComputation(t *testing.T) {
	releaseDate := time.Date(2023, 5, 15, 0, 0, 0, 0, time.UTC)
	c := NewCollection("Test Artist", "Test Set", "https://i1.sndcdn.com/artworks-1-large.png", releaseDate, testPathConfig)

	if c.Path != "/music/Test Artist/Test Set" {
		t.Errorf("Collection.Path = %q, want %q", c.Path, "/music/Test Artist/Test Set")
	}
	if want := filepath.Join(c.Path, "Test Set.png"); c.ArtworkPath != want {
		t.Errorf("ArtworkPath = %q, want %q", c.ArtworkPath, want)
	}
	if want := filepath.Join(c.Path, "Test Set.m3u"); c.PlaylistPath != want {
		t.Errorf("PlaylistPath = %q, want %q", c.PlaylistPath, want)
	}
}

func TestCollection_DatePlaceholders(t *testing.T) {
	cfg := *testPathConfig
	cfg.DownloadsPath = "/music/{year}-{month}-{day} {album}"

	c := NewCollection("a", "Mix: Vol/1", "", time.Date(2021, 2, 3, 0, 0, 0, 0, time.UTC), &cfg)

	if want := "/music/2021-02-03 Mix_ Vol_1"; c.Path != want {
		t.Errorf("Collection.Path = %q, want %q", c.Path, want)
	}
}

func TestCollection_NoArtwork(t *testing.T) {
	c := NewCollection("Test Artist", "Test Set", "", time.Time{}, testPathConfig)

	if c.HasArtwork() {
		t.Error("HasArtwork() should return false when ArtworkURL is empty")
	}
	if c.ArtworkPath != "" {
		t.Errorf("ArtworkPath should be empty, got %q", c.ArtworkPath)
	}
}

func TestTrack_PathComputation(t *testing.T) {
	c := NewCollection("Owner", "Set", "", time.Date(2023, 5, 15, 0, 0, 0, 0, time.UTC), testPathConfig)

	tests := []struct {
		name   string
		format string
		want   string
	}{
		{name: "number and title", format: "{tracknum} {title}.mp3", want: "/music/Owner/Set/03 Track: One.mp3"},
		{name: "track artist", format: "{artist} - {title}.mp3", want: "/music/Owner/Set/Guest - Track_ One.mp3"},
		{name: "id and playlist", format: "{playlist} {id}.mp3", want: "/music/Owner/Set/Set 42.mp3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			track := NewTrack(c, 3, "Track: One", "Guest", 180.5, 42, &TrackConfig{FileNameFormat: tt.format})
			want := strings.ReplaceAll(tt.want, "Track: One", "Track_ One")
			if track.Path != want {
				t.Errorf("Track.Path = %q, want %q", track.Path, want)
			}
		})
	}
}

func TestTrack_LongPathIsShortened(t *testing.T) {
	c := NewCollection("a", "b", "", time.Time{}, testPathConfig)
	track := NewTrack(c, 1, strings.Repeat("x", 400), "a", 1, 1, &TrackConfig{FileNameFormat: "{title}.mp3"})

	if len(track.Path) >= maxFilePath {
		t.Errorf("len(Track.Path) = %d, want < %d", len(track.Path), maxFilePath)
	}
	if !strings.HasSuffix(track.Path, ".mp3") {
		t.Errorf("shortened path %q lost its extension", track.Path)
	}
}

func TestPlaylistFormat(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"m3u", ".m3u"},
		{"PLS", ".pls"},
		{"wpl", ".wpl"},
		{"zpl", ".zpl"},
		{"unknown", ".m3u"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParsePlaylistFormat(tt.name).Extension(); got != tt.want {
				t.Errorf("Extension() = %q, want %q", got, tt.want)
			}
		})
	}
}
