package model

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	ioutils "github.com/handiism/soundcloud-downloader/internal/io"
)

// Track is one file to download within a Collection.
//
// The file path is computed by NewTrack from the collection's folder and the
// TrackConfig file name format.
//
// Example:
//
//	cfg := &TrackConfig{FileNameFormat: "{tracknum} {artist} - {title}.mp3"}
//	track := NewTrack(c, 1, "Cold Nights", "mt-marcy", 215.3, 255374012, cfg)
//	// track.Path = "/music/mt-marcy/Cold Nights/01 mt-marcy - Cold Nights.mp3"
type Track struct {
	// Collection is the parent collection.
	Collection *Collection

	// Number is the position in the collection (1-indexed).
	Number int

	// Title is the track title.
	Title string

	// Artist is the credited artist of this track, which may differ from the
	// playlist owner.
	Artist string

	// Duration is the track length in seconds.
	Duration float64

	// SourceID is the SoundCloud track id.
	SourceID int64

	// Path is the local file path where the track will be saved.
	Path string
}

// TrackConfig holds track path formatting settings.
//
// The FileNameFormat supports placeholders that are replaced with actual values:
//   - {tracknum} - Position in the collection (2 digits, zero-padded)
//   - {title} - Track title
//   - {artist} - Track artist
//   - {playlist} - Collection title ({album} is accepted as an alias)
//   - {id} - SoundCloud track id
//   - {year}, {month}, {day} - Release date components of the collection
type TrackConfig struct {
	// FileNameFormat is the template for track filenames.
	// Must include the file extension (typically ".mp3").
	FileNameFormat string
}

// NewTrack creates a Track with computed path.
func NewTrack(c *Collection, number int, title, artist string, duration float64, sourceID int64, cfg *TrackConfig) *Track {
	track := &Track{
		Collection: c,
		Number:     number,
		Title:      title,
		Artist:     artist,
		Duration:   duration,
		SourceID:   sourceID,
	}

	name := track.fileName(cfg)
	ext := filepath.Ext(name)
	track.Path = joinLimited(c.Path, strings.TrimSuffix(name, ext), ext)

	return track
}

// fileName expands the template in a single pass. Track placeholders come
// first so {artist} names the track artist rather than the playlist owner.
func (t *Track) fileName(cfg *TrackConfig) string {
	pairs := []string{
		"{tracknum}", fmt.Sprintf("%02d", t.Number),
		"{title}", t.Title,
		"{artist}", t.Artist,
		"{id}", strconv.FormatInt(t.SourceID, 10),
	}
	pairs = append(pairs, t.Collection.placeholders(false)...)
	return ioutils.SanitizeFileName(strings.NewReplacer(pairs...).Replace(cfg.FileNameFormat))
}
