package soundcloud

import (
	"encoding/json"
	"fmt"
	"time"
)

// apiTime handles the timestamp variants the API emits: RFC 3339 strings,
// "2006/01/02 15:04:05 -0700" on older objects, empty strings and null.
type apiTime struct {
	time.Time
}

func (at *apiTime) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		at.Time = time.Time{}
		return nil
	}

	formats := []string{
		time.RFC3339,
		"2006/01/02 15:04:05 -0700",
		"2006-01-02",
	}
	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			at.Time = t
			return nil
		}
	}

	return fmt.Errorf("unable to parse date: %s", s)
}

// kindProbe reads only the discriminator of a catalog object.
type kindProbe struct {
	Kind string `json:"kind"`
}

type userJSON struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	FullName     string `json:"full_name"`
	PermalinkURL string `json:"permalink_url"`
	AvatarURL    string `json:"avatar_url"`
}

func (u *userJSON) toUser() User {
	if u == nil {
		return User{}
	}
	return User{
		ID:           u.ID,
		Username:     u.Username,
		FullName:     u.FullName,
		PermalinkURL: u.PermalinkURL,
		AvatarURL:    u.AvatarURL,
	}
}

type transcodingJSON struct {
	URL     string `json:"url"`
	Preset  string `json:"preset"`
	Snipped bool   `json:"snipped"`
	Quality string `json:"quality"`
	Format  struct {
		Protocol string `json:"protocol"`
		MimeType string `json:"mime_type"`
	} `json:"format"`
}

type publisherMetadataJSON struct {
	Artist       string `json:"artist"`
	AlbumTitle   string `json:"album_title"`
	ReleaseTitle string `json:"release_title"`
	ISRC         string `json:"isrc"`
}

// trackJSON is a track as returned by /tracks and embedded in playlists.
// Stub entries inside playlists only carry id and kind.
type trackJSON struct {
	ID                 int64                  `json:"id"`
	Kind               string                 `json:"kind"`
	Title              string                 `json:"title"`
	Description        string                 `json:"description"`
	Genre              string                 `json:"genre"`
	TagList            string                 `json:"tag_list"`
	LabelName          string                 `json:"label_name"`
	Duration           int64                  `json:"duration"`
	FullDuration       int64                  `json:"full_duration"`
	ArtworkURL         string                 `json:"artwork_url"`
	PermalinkURL       string                 `json:"permalink_url"`
	WaveformURL        string                 `json:"waveform_url"`
	Streamable         bool                   `json:"streamable"`
	Downloadable       bool                   `json:"downloadable"`
	Policy             string                 `json:"policy"`
	TrackAuthorization string                 `json:"track_authorization"`
	PlaybackCount      int64                  `json:"playback_count"`
	LikesCount         int64                  `json:"likes_count"`
	CreatedAt          apiTime                `json:"created_at"`
	ReleaseDate        apiTime                `json:"release_date"`
	DisplayDate        apiTime                `json:"display_date"`
	User               *userJSON              `json:"user"`
	PublisherMetadata  *publisherMetadataJSON `json:"publisher_metadata"`
	Media              struct {
		Transcodings []transcodingJSON `json:"transcodings"`
	} `json:"media"`
}

// materialized reports whether the object carries full metadata rather than
// being an id-only stub.
func (jt *trackJSON) materialized() bool {
	return jt.Title != ""
}

func (jt *trackJSON) toTrack() *Track {
	track := &Track{
		ID:                 jt.ID,
		Title:              jt.Title,
		Description:        jt.Description,
		Genre:              jt.Genre,
		TagList:            jt.TagList,
		LabelName:          jt.LabelName,
		DurationMillis:     jt.Duration,
		FullDurationMillis: jt.FullDuration,
		ArtworkURL:         jt.ArtworkURL,
		PermalinkURL:       jt.PermalinkURL,
		WaveformURL:        jt.WaveformURL,
		Streamable:         jt.Streamable,
		Downloadable:       jt.Downloadable,
		Policy:             jt.Policy,
		TrackAuthorization: jt.TrackAuthorization,
		PlaybackCount:      jt.PlaybackCount,
		LikesCount:         jt.LikesCount,
		CreatedAt:          jt.CreatedAt.Time,
		ReleaseDate:        jt.ReleaseDate.Time,
		DisplayDate:        jt.DisplayDate.Time,
		User:               jt.User.toUser(),
	}

	// Fall back to the uploader's avatar like the web player does.
	if track.ArtworkURL == "" && jt.User != nil {
		track.ArtworkURL = jt.User.AvatarURL
	}

	if pm := jt.PublisherMetadata; pm != nil {
		track.PublisherMetadata = &PublisherMetadata{
			Artist:       pm.Artist,
			AlbumTitle:   pm.AlbumTitle,
			ReleaseTitle: pm.ReleaseTitle,
			ISRC:         pm.ISRC,
		}
	}

	for _, tc := range jt.Media.Transcodings {
		track.Media.Transcodings = append(track.Media.Transcodings, Transcoding{
			URL:      tc.URL,
			Preset:   tc.Preset,
			Snipped:  tc.Snipped,
			Quality:  tc.Quality,
			Protocol: tc.Format.Protocol,
			MimeType: tc.Format.MimeType,
		})
	}

	return track
}

// playlistJSON covers both "playlist" and "system-playlist" objects.
type playlistJSON struct {
	ID           int64       `json:"id"`
	URN          string      `json:"urn"`
	Kind         string      `json:"kind"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	Genre        string      `json:"genre"`
	ArtworkURL   string      `json:"artwork_url"`
	PermalinkURL string      `json:"permalink_url"`
	TrackCount   int         `json:"track_count"`
	SetType      string      `json:"set_type"`
	IsAlbum      bool        `json:"is_album"`
	CreatedAt    apiTime     `json:"created_at"`
	ReleaseDate  apiTime     `json:"release_date"`
	PublishedAt  apiTime     `json:"published_at"`
	User         *userJSON   `json:"user"`
	Tracks       []trackJSON `json:"tracks"`
}

func (jp *playlistJSON) toPlaylist(lookup TrackLookup) *Playlist {
	playlist := &Playlist{
		ID:           jp.ID,
		URN:          jp.URN,
		Kind:         jp.Kind,
		Title:        jp.Title,
		Description:  jp.Description,
		Genre:        jp.Genre,
		ArtworkURL:   jp.ArtworkURL,
		PermalinkURL: jp.PermalinkURL,
		TrackCount:   jp.TrackCount,
		SetType:      jp.SetType,
		IsAlbum:      jp.IsAlbum,
		CreatedAt:    jp.CreatedAt.Time,
		ReleaseDate:  jp.ReleaseDate.Time,
		User:         jp.User.toUser(),
		lookup:       lookup,
	}
	if playlist.ReleaseDate.IsZero() {
		playlist.ReleaseDate = jp.PublishedAt.Time
	}

	playlist.Entries = make([]Entry, 0, len(jp.Tracks))
	for i := range jp.Tracks {
		jt := &jp.Tracks[i]
		if jt.materialized() {
			playlist.Entries = append(playlist.Entries, Entry{ID: jt.ID, Track: jt.toTrack()})
		} else {
			playlist.Entries = append(playlist.Entries, Entry{ID: jt.ID})
		}
	}

	return playlist
}

// streamJSON is the response of a transcoding URL.
type streamJSON struct {
	URL string `json:"url"`
}
