package soundcloud

import (
	"strings"
	"time"
)

// User is the uploader of a track or owner of a playlist.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	FullName     string `json:"full_name,omitempty"`
	PermalinkURL string `json:"permalink_url,omitempty"`
	AvatarURL    string `json:"avatar_url,omitempty"`
}

// PublisherMetadata carries label-supplied credits when present.
type PublisherMetadata struct {
	Artist       string `json:"artist,omitempty"`
	AlbumTitle   string `json:"album_title,omitempty"`
	ReleaseTitle string `json:"release_title,omitempty"`
	ISRC         string `json:"isrc,omitempty"`
}

// Transcoding describes one encoded rendition of a track. URL points at a
// descriptor that, once fetched with a client id, yields the actual stream
// URL.
type Transcoding struct {
	URL      string `json:"url"`
	Preset   string `json:"preset"`
	Snipped  bool   `json:"snipped"`
	Quality  string `json:"quality,omitempty"`
	Protocol string `json:"protocol"`
	MimeType string `json:"mime_type"`
}

// Media lists the renditions available for a track.
type Media struct {
	Transcodings []Transcoding `json:"transcodings"`
}

// hlsTranscoding picks the rendition WriteMP3To can reassemble: HLS MP3
// first, any other HLS rendition second. Snipped (preview) renditions are
// only used when nothing else is available.
func (m Media) hlsTranscoding() (Transcoding, bool) {
	rank := func(tc Transcoding) int {
		if tc.Protocol != "hls" || tc.URL == "" {
			return -1
		}
		score := 1
		if strings.HasPrefix(tc.MimeType, "audio/mpeg") {
			score += 2
		}
		if !tc.Snipped {
			score += 4
		}
		return score
	}

	best, bestRank := Transcoding{}, -1
	for _, tc := range m.Transcodings {
		if r := rank(tc); r > bestRank {
			best, bestRank = tc, r
		}
	}
	return best, bestRank >= 0
}

// Track is a single resolved SoundCloud track.
//
// Every field except StreamURL is copied from the catalog response and never
// changes afterwards. StreamURL is filled in by Client.StreamURL on first use;
// a Track must not be streamed from several goroutines at once.
type Track struct {
	ID                 int64              `json:"id"`
	Title              string             `json:"title"`
	Description        string             `json:"description,omitempty"`
	Genre              string             `json:"genre,omitempty"`
	TagList            string             `json:"tag_list,omitempty"`
	LabelName          string             `json:"label_name,omitempty"`
	DurationMillis     int64              `json:"duration"`
	FullDurationMillis int64              `json:"full_duration,omitempty"`
	ArtworkURL         string             `json:"artwork_url,omitempty"`
	PermalinkURL       string             `json:"permalink_url"`
	WaveformURL        string             `json:"waveform_url,omitempty"`
	Streamable         bool               `json:"streamable"`
	Downloadable       bool               `json:"downloadable"`
	Policy             string             `json:"policy,omitempty"`
	TrackAuthorization string             `json:"-"`
	PlaybackCount      int64              `json:"playback_count"`
	LikesCount         int64              `json:"likes_count"`
	CreatedAt          time.Time          `json:"created_at"`
	ReleaseDate        time.Time          `json:"release_date,omitzero"`
	DisplayDate        time.Time          `json:"display_date,omitzero"`
	User               User               `json:"user"`
	PublisherMetadata  *PublisherMetadata `json:"publisher_metadata,omitempty"`
	Media              Media              `json:"media"`

	// StreamURL is the HLS manifest URL, resolved lazily.
	StreamURL string `json:"stream_url,omitempty"`
}

func (*Track) isResource() {}

// Duration returns the playable length of the track.
func (t *Track) Duration() time.Duration {
	return time.Duration(t.DurationMillis) * time.Millisecond
}

// HasArtwork returns true if the track has cover art available for download.
func (t *Track) HasArtwork() bool {
	return t.ArtworkURL != ""
}

// Artist returns the credited artist: the publisher's artist when the label
// supplied one, the uploader's username otherwise.
func (t *Track) Artist() string {
	if t.PublisherMetadata != nil && t.PublisherMetadata.Artist != "" {
		return t.PublisherMetadata.Artist
	}
	return t.User.Username
}

// Album returns the publisher's album or release title, if any.
func (t *Track) Album() string {
	if t.PublisherMetadata == nil {
		return ""
	}
	if t.PublisherMetadata.AlbumTitle != "" {
		return t.PublisherMetadata.AlbumTitle
	}
	return t.PublisherMetadata.ReleaseTitle
}

// Released returns the release date, falling back to the upload date.
func (t *Track) Released() time.Time {
	if !t.ReleaseDate.IsZero() {
		return t.ReleaseDate
	}
	if !t.DisplayDate.IsZero() {
		return t.DisplayDate
	}
	return t.CreatedAt
}
