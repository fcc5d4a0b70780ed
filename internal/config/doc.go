// Package config provides configuration management for soundcloud-downloader.
//
// This package handles:
//   - Loading and saving settings as JSON, YAML or TOML
//   - Environment variable references inside config files
//   - Default configuration values
//   - Conversion to the configs of the model, audio and http packages
//
// # Default Settings
//
//	settings := config.DefaultSettings()
//	// Downloads to ~/Music/SoundCloud/{artist}/{playlist}
//	// Four tracks downloaded concurrently
//	// ID3 tagging enabled
//
// # Loading from File
//
// The decoder is chosen by extension (.json, .yaml, .yml, .toml). Keys
// missing from the file keep their defaults and a missing file yields the
// defaults:
//
//	settings, err := config.Load("/path/to/config.yaml")
//
// References like ${SC_CLIENT_ID} or ${SC_MUSIC:-/srv/music} are expanded
// from the environment before decoding.
//
// # Saving Settings
//
//	settings.DownloadsPath = "/custom/path/{artist}/{playlist}"
//	err := settings.Save("/path/to/config.toml")
//
// # Configuration Options
//
// Settings includes options for:
//   - Download paths and file naming
//   - Concurrent download limits
//   - Retry behavior
//   - Cover art handling
//   - Playlist generation
//   - ID3 tag modification per frame
//   - Logging level and format
//   - SoundCloud client id, API base URL and HTTP transport
package config
