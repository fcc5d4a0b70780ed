package model

import (
	"path/filepath"
	"strings"
	"time"

	ioutils "github.com/handiism/soundcloud-downloader/internal/io"
)

// Windows MAX_PATH limits for folders and files.
const (
	maxFolderPath = 248
	maxFilePath   = 260
)

// Collection is a group of tracks downloaded into one folder: a SoundCloud
// playlist, or a single track resolved on its own.
//
// Paths are computed by NewCollection from PathConfig using placeholders like
// {artist}, {playlist}, {year} etc.
//
// Example:
//
//	cfg := &PathConfig{
//	    DownloadsPath:          "/music/{artist}/{playlist}",
//	    CoverArtFileNameFormat: "cover",
//	    PlaylistFormat:         PlaylistFormatM3U,
//	}
//	c := NewCollection("mt-marcy", "Cold Nights", artURL, releaseDate, cfg)
//	// c.Path = "/music/mt-marcy/Cold Nights"
type Collection struct {
	// Artist is the playlist owner or the track's artist.
	Artist string

	// Title is the playlist title, or the track title for single tracks.
	Title string

	// ArtworkURL is the URL to download the cover art from.
	// Empty string means no artwork is available.
	ArtworkURL string

	// ReleaseDate is used for date placeholders.
	ReleaseDate time.Time

	// Tracks contains all tracks in this collection, in playlist order.
	Tracks []*Track

	// Path is the local directory where files will be saved.
	Path string

	// ArtworkPath is the local file path for the cover art.
	// Empty if the collection has no artwork.
	ArtworkPath string

	// PlaylistPath is the local file path for the playlist file.
	PlaylistPath string
}

// NewCollection creates a Collection with computed paths.
//
// The pathConfig determines how file paths are constructed using placeholders:
//   - {artist} - Artist name
//   - {playlist} - Playlist title ({album} is accepted as an alias)
//   - {year} - Release year (4 digits)
//   - {month} - Release month (2 digits, zero-padded)
//   - {day} - Release day (2 digits, zero-padded)
//
// Invalid filename characters are replaced with underscores and paths are
// truncated to Windows limits (248 for folders, 260 for files).
func NewCollection(artist, title, artworkURL string, releaseDate time.Time, cfg *PathConfig) *Collection {
	c := &Collection{
		Artist:      artist,
		Title:       title,
		ArtworkURL:  artworkURL,
		ReleaseDate: releaseDate,
	}

	c.Path = c.folderPath(cfg)
	c.PlaylistPath = c.filePath(cfg.PlaylistFileNameFormat, cfg.PlaylistFormat.Extension())
	if c.HasArtwork() {
		c.ArtworkPath = c.filePath(cfg.CoverArtFileNameFormat, artworkExtension(artworkURL))
	}

	return c
}

// HasArtwork returns true if the collection has cover art available for download.
func (c *Collection) HasArtwork() bool {
	return c.ArtworkURL != ""
}

// PathConfig holds path formatting settings for collections.
//
// Example configuration:
//
//	cfg := &PathConfig{
//	    DownloadsPath:          "/home/user/Music/{artist}/{playlist}",
//	    CoverArtFileNameFormat: "cover",
//	    PlaylistFileNameFormat: "{playlist}",
//	    PlaylistFormat:         PlaylistFormatM3U,
//	}
type PathConfig struct {
	// DownloadsPath is the folder template. Example: "/music/{artist}/{playlist}"
	DownloadsPath string

	// CoverArtFileNameFormat is the filename template for cover art (without extension).
	CoverArtFileNameFormat string

	// PlaylistFileNameFormat is the filename template for playlists (without extension).
	PlaylistFileNameFormat string

	// PlaylistFormat determines the playlist file type and extension.
	PlaylistFormat PlaylistFormat
}

// PlaylistFormat represents supported playlist file formats.
type PlaylistFormat int

const (
	// PlaylistFormatM3U creates .m3u playlist files (most widely supported).
	PlaylistFormatM3U PlaylistFormat = iota

	// PlaylistFormatPLS creates .pls playlist files (used by Winamp).
	PlaylistFormatPLS

	// PlaylistFormatWPL creates .wpl playlist files (Windows Media Player).
	PlaylistFormatWPL

	// PlaylistFormatZPL creates .zpl playlist files (Zune Media Player).
	PlaylistFormatZPL
)

// ParsePlaylistFormat maps a settings value ("m3u", "pls", "wpl", "zpl") to a
// PlaylistFormat. Unknown values fall back to M3U.
func ParsePlaylistFormat(s string) PlaylistFormat {
	switch strings.ToLower(s) {
	case "pls":
		return PlaylistFormatPLS
	case "wpl":
		return PlaylistFormatWPL
	case "zpl":
		return PlaylistFormatZPL
	default:
		return PlaylistFormatM3U
	}
}

// Extension returns the file extension for the playlist format, including the dot.
func (pf PlaylistFormat) Extension() string {
	switch pf {
	case PlaylistFormatPLS:
		return ".pls"
	case PlaylistFormatWPL:
		return ".wpl"
	case PlaylistFormatZPL:
		return ".zpl"
	default:
		return ".m3u"
	}
}

// placeholders returns the old/new pairs for the collection placeholders.
// Values are sanitized when sanitize is set, which folder templates need
// because their separators must survive.
func (c *Collection) placeholders(sanitize bool) []string {
	clean := func(s string) string {
		if sanitize {
			return ioutils.SanitizeFileName(s)
		}
		return s
	}
	return []string{
		"{year}", clean(c.ReleaseDate.Format("2006")),
		"{month}", clean(c.ReleaseDate.Format("01")),
		"{day}", clean(c.ReleaseDate.Format("02")),
		"{artist}", clean(c.Artist),
		"{playlist}", clean(c.Title),
		"{album}", clean(c.Title),
	}
}

func (c *Collection) expand(template string, sanitize bool) string {
	return strings.NewReplacer(c.placeholders(sanitize)...).Replace(template)
}

func (c *Collection) folderPath(cfg *PathConfig) string {
	path := c.expand(cfg.DownloadsPath, true)
	if len(path) >= maxFolderPath {
		path = path[:maxFolderPath-1]
	}
	return path
}

// filePath joins a templated file name and ext onto the collection folder.
func (c *Collection) filePath(template, ext string) string {
	fileName := ioutils.SanitizeFileName(c.expand(template, false))
	return joinLimited(c.Path, fileName, ext)
}

// joinLimited joins dir and name+ext, shortening name when the result would
// exceed the Windows file path limit.
func joinLimited(dir, name, ext string) string {
	path := filepath.Join(dir, name+ext)
	if len(path) < maxFilePath {
		return path
	}
	keep := maxFilePath - 1 - len(dir) - 1 - len(ext)
	if keep > 0 && keep < len(name) {
		return filepath.Join(dir, name[:keep]+ext)
	}
	return path
}

// artworkExtension returns the extension of an artwork URL, ignoring any
// query string. SoundCloud artwork without an extension is JPEG.
func artworkExtension(artworkURL string) string {
	if i := strings.IndexAny(artworkURL, "?#"); i >= 0 {
		artworkURL = artworkURL[:i]
	}
	ext := filepath.Ext(artworkURL)
	if ext == "" || len(ext) > 5 {
		return ".jpg"
	}
	return ext
}
