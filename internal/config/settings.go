package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/handiism/soundcloud-downloader/internal/audio"
	"github.com/handiism/soundcloud-downloader/internal/http"
	ioutils "github.com/handiism/soundcloud-downloader/internal/io"
	"github.com/handiism/soundcloud-downloader/internal/model"
	"github.com/handiism/soundcloud-downloader/internal/soundcloud"
)

// Settings holds all configuration options.
type Settings struct {
	// Download settings
	DownloadsPath                    string  `json:"downloads_path" yaml:"downloads_path" toml:"downloads_path"`
	MaxConcurrentCollectionsDownload int     `json:"max_concurrent_collections" yaml:"max_concurrent_collections" toml:"max_concurrent_collections"`
	MaxConcurrentTracksDownload      int     `json:"max_concurrent_tracks" yaml:"max_concurrent_tracks" toml:"max_concurrent_tracks"`
	DownloadMaxRetries               int     `json:"download_max_retries" yaml:"download_max_retries" toml:"download_max_retries"`
	DownloadRetryCooldown            float64 `json:"download_retry_cooldown" yaml:"download_retry_cooldown" toml:"download_retry_cooldown"`
	DownloadRetryExponent            float64 `json:"download_retry_exponent" yaml:"download_retry_exponent" toml:"download_retry_exponent"`
	SkipExistingFiles                bool    `json:"skip_existing_files" yaml:"skip_existing_files" toml:"skip_existing_files"`

	// File naming
	FileNameFormat         string `json:"file_name_format" yaml:"file_name_format" toml:"file_name_format"`
	CoverArtFileNameFormat string `json:"cover_art_file_name_format" yaml:"cover_art_file_name_format" toml:"cover_art_file_name_format"`
	PlaylistFileNameFormat string `json:"playlist_file_name_format" yaml:"playlist_file_name_format" toml:"playlist_file_name_format"`

	// Cover art settings
	SaveCoverArtInFolder    bool `json:"save_cover_art_in_folder" yaml:"save_cover_art_in_folder" toml:"save_cover_art_in_folder"`
	SaveCoverArtInTags      bool `json:"save_cover_art_in_tags" yaml:"save_cover_art_in_tags" toml:"save_cover_art_in_tags"`
	CoverArtInFolderResize  bool `json:"cover_art_in_folder_resize" yaml:"cover_art_in_folder_resize" toml:"cover_art_in_folder_resize"`
	CoverArtInFolderMaxSize int  `json:"cover_art_in_folder_max_size" yaml:"cover_art_in_folder_max_size" toml:"cover_art_in_folder_max_size"`
	CoverArtInTagsResize    bool `json:"cover_art_in_tags_resize" yaml:"cover_art_in_tags_resize" toml:"cover_art_in_tags_resize"`
	CoverArtInTagsMaxSize   int  `json:"cover_art_in_tags_max_size" yaml:"cover_art_in_tags_max_size" toml:"cover_art_in_tags_max_size"`
	ConvertCoverArtToJPG    bool `json:"convert_cover_art_to_jpg" yaml:"convert_cover_art_to_jpg" toml:"convert_cover_art_to_jpg"`

	// Playlist settings
	CreatePlaylist bool   `json:"create_playlist" yaml:"create_playlist" toml:"create_playlist"`
	PlaylistFormat string `json:"playlist_format" yaml:"playlist_format" toml:"playlist_format"` // m3u, pls, wpl, zpl
	M3UExtended    bool   `json:"m3u_extended" yaml:"m3u_extended" toml:"m3u_extended"`

	// Tag settings
	ModifyTags bool        `json:"modify_tags" yaml:"modify_tags" toml:"modify_tags"`
	Tags       TagSettings `json:"tags" yaml:"tags" toml:"tags"`

	// Logging
	LogLevel  string `json:"log_level" yaml:"log_level" toml:"log_level"`    // debug, info, warn, error
	LogFormat string `json:"log_format" yaml:"log_format" toml:"log_format"` // json, console

	SoundCloud SoundCloudSettings `json:"soundcloud" yaml:"soundcloud" toml:"soundcloud"`
}

// TagSettings chooses, per ID3 frame, whether to "modify", "empty" or
// "keep" it.
type TagSettings struct {
	Artist      string `json:"artist" yaml:"artist" toml:"artist"`
	AlbumArtist string `json:"album_artist" yaml:"album_artist" toml:"album_artist"`
	Album       string `json:"album" yaml:"album" toml:"album"`
	Year        string `json:"year" yaml:"year" toml:"year"`
	Date        string `json:"date" yaml:"date" toml:"date"`
	TrackNumber string `json:"track_number" yaml:"track_number" toml:"track_number"`
	TrackTitle  string `json:"track_title" yaml:"track_title" toml:"track_title"`
	Genre       string `json:"genre" yaml:"genre" toml:"genre"`
	Comments    string `json:"comments" yaml:"comments" toml:"comments"`
}

// SoundCloudSettings configures the catalog client and its transport.
type SoundCloudSettings struct {
	// ClientID skips credential discovery when set.
	ClientID          string   `json:"client_id" yaml:"client_id" toml:"client_id"`
	ScrapeURLs        []string `json:"scrape_urls" yaml:"scrape_urls" toml:"scrape_urls"`
	APIBaseURL        string   `json:"api_base_url" yaml:"api_base_url" toml:"api_base_url"`
	UserAgent         string   `json:"user_agent" yaml:"user_agent" toml:"user_agent"`
	HTTPTimeout       float64  `json:"http_timeout" yaml:"http_timeout" toml:"http_timeout"` // seconds
	RequestsPerSecond float64  `json:"requests_per_second" yaml:"requests_per_second" toml:"requests_per_second"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	homeDir, _ := os.UserHomeDir()
	return &Settings{
		DownloadsPath:                    filepath.Join(homeDir, "Music", "SoundCloud", "{artist}", "{playlist}"),
		MaxConcurrentCollectionsDownload: 1,
		MaxConcurrentTracksDownload:      4,
		DownloadMaxRetries:               7,
		DownloadRetryCooldown:            0.2,
		DownloadRetryExponent:            4.0,
		SkipExistingFiles:                true,

		FileNameFormat:         "{tracknum} {artist} - {title}.mp3",
		CoverArtFileNameFormat: "{playlist}",
		PlaylistFileNameFormat: "{playlist}",

		SaveCoverArtInFolder:    false,
		SaveCoverArtInTags:      true,
		CoverArtInFolderResize:  false,
		CoverArtInFolderMaxSize: 1000,
		CoverArtInTagsResize:    true,
		CoverArtInTagsMaxSize:   1000,
		ConvertCoverArtToJPG:    true,

		CreatePlaylist: false,
		PlaylistFormat: "m3u",
		M3UExtended:    true,

		ModifyTags: true,
		Tags: TagSettings{
			Artist:      "modify",
			AlbumArtist: "modify",
			Album:       "modify",
			Year:        "modify",
			Date:        "modify",
			TrackNumber: "modify",
			TrackTitle:  "modify",
			Genre:       "modify",
			Comments:    "empty",
		},

		LogLevel:  "info",
		LogFormat: "console",

		SoundCloud: SoundCloudSettings{
			ScrapeURLs:        append([]string(nil), soundcloud.DefaultScrapeURLs...),
			APIBaseURL:        soundcloud.DefaultAPIBaseURL,
			UserAgent:         http.DefaultUserAgent,
			HTTPTimeout:       30,
			RequestsPerSecond: 0,
		},
	}
}

// format is a config file encoding, chosen by file extension.
type format string

const (
	formatJSON format = "json"
	formatYAML format = "yaml"
	formatTOML format = "toml"
)

func formatOf(path string) (format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return formatJSON, nil
	case ".yaml", ".yml":
		return formatYAML, nil
	case ".toml":
		return formatTOML, nil
	default:
		return "", fmt.Errorf("unsupported config file extension %q (use .json, .yaml or .toml)", filepath.Ext(path))
	}
}

// Load reads settings from a JSON, YAML or TOML file, chosen by extension.
//
// ${VAR} and ${VAR:-default} references are expanded before decoding. Keys
// missing from the file keep their default values, and a missing file yields
// DefaultSettings().
func Load(path string) (*Settings, error) {
	f, err := formatOf(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, fmt.Errorf("cannot read config file %q: %w", path, err)
	}

	expanded := []byte(ExpandEnv(string(data)))
	settings := DefaultSettings()

	switch f {
	case formatJSON:
		err = json.Unmarshal(expanded, settings)
	case formatYAML:
		err = yaml.Unmarshal(expanded, settings)
	case formatTOML:
		err = toml.NewDecoder(bytes.NewReader(expanded)).Decode(settings)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid %s in %s: %w", strings.ToUpper(string(f)), path, err)
	}

	return settings, nil
}

// Save writes settings to path in the format matching its extension.
func (s *Settings) Save(path string) error {
	f, err := formatOf(path)
	if err != nil {
		return err
	}

	var data []byte
	switch f {
	case formatJSON:
		data, err = json.MarshalIndent(s, "", "  ")
	case formatYAML:
		data, err = yaml.Marshal(s)
	case formatTOML:
		data, err = toml.Marshal(s)
	}
	if err != nil {
		return err
	}

	if err := ioutils.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ToPathConfig converts settings to PathConfig.
func (s *Settings) ToPathConfig() *model.PathConfig {
	return &model.PathConfig{
		DownloadsPath:          s.DownloadsPath,
		CoverArtFileNameFormat: s.CoverArtFileNameFormat,
		PlaylistFileNameFormat: s.PlaylistFileNameFormat,
		PlaylistFormat:         model.ParsePlaylistFormat(s.PlaylistFormat),
	}
}

// ToTrackConfig converts settings to TrackConfig.
func (s *Settings) ToTrackConfig() *model.TrackConfig {
	return &model.TrackConfig{
		FileNameFormat: s.FileNameFormat,
	}
}

// ToTagConfig converts settings to the tagger configuration.
func (s *Settings) ToTagConfig() *audio.TagConfig {
	return &audio.TagConfig{
		ModifyTags:  s.ModifyTags,
		Artist:      audio.ParseTagEditAction(s.Tags.Artist),
		AlbumArtist: audio.ParseTagEditAction(s.Tags.AlbumArtist),
		Album:       audio.ParseTagEditAction(s.Tags.Album),
		Year:        audio.ParseTagEditAction(s.Tags.Year),
		Date:        audio.ParseTagEditAction(s.Tags.Date),
		TrackNumber: audio.ParseTagEditAction(s.Tags.TrackNumber),
		TrackTitle:  audio.ParseTagEditAction(s.Tags.TrackTitle),
		Genre:       audio.ParseTagEditAction(s.Tags.Genre),
		Comments:    audio.ParseTagEditAction(s.Tags.Comments),
		CoverArt:    s.SaveCoverArtInTags,
		Artwork: ioutils.ArtworkOptions{
			Resize:        s.CoverArtInTagsResize,
			MaxSize:       s.CoverArtInTagsMaxSize,
			ConvertToJPEG: s.ConvertCoverArtToJPG,
		},
	}
}

// FolderArtworkOptions returns how cover art saved next to the tracks is
// prepared.
func (s *Settings) FolderArtworkOptions() ioutils.ArtworkOptions {
	return ioutils.ArtworkOptions{
		Resize:        s.CoverArtInFolderResize,
		MaxSize:       s.CoverArtInFolderMaxSize,
		ConvertToJPEG: s.ConvertCoverArtToJPG,
	}
}

// ToClientConfig converts the SoundCloud section to the transport settings.
func (s *Settings) ToClientConfig() http.ClientConfig {
	return http.ClientConfig{
		UserAgent:         s.SoundCloud.UserAgent,
		Timeout:           time.Duration(s.SoundCloud.HTTPTimeout * float64(time.Second)),
		RequestsPerSecond: s.SoundCloud.RequestsPerSecond,
	}
}
