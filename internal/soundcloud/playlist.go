package soundcloud

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// TrackLookup materializes tracks by id. *Client implements it.
type TrackLookup interface {
	GetTracks(ctx context.Context, ids []int64) ([]*Track, error)
}

// Entry is one position of a playlist: either a materialized Track or a bare
// ID waiting for Complete.
type Entry struct {
	ID    int64
	Track *Track
}

// Materialized reports whether the entry carries full track metadata.
func (e Entry) Materialized() bool {
	return e.Track != nil
}

// Playlist is a resolved SoundCloud playlist or system playlist.
//
// Large playlists only embed full metadata for their first tracks; the rest
// are id-only entries until Complete runs.
type Playlist struct {
	ID           int64
	URN          string
	Kind         string
	Title        string
	Description  string
	Genre        string
	ArtworkURL   string
	PermalinkURL string
	TrackCount   int
	SetType      string
	IsAlbum      bool
	CreatedAt    time.Time
	ReleaseDate  time.Time
	User         User

	// Entries keeps the order declared by the catalog.
	Entries []Entry

	mu     sync.Mutex
	ready  bool
	lookup TrackLookup
}

func (*Playlist) isResource() {}

// Bind attaches the lookup used by Complete. Playlists returned by
// Client.Resolve are already bound.
func (p *Playlist) Bind(lookup TrackLookup) {
	p.mu.Lock()
	p.lookup = lookup
	p.mu.Unlock()
}

// Ready reports whether Complete has succeeded.
func (p *Playlist) Ready() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ready
}

// Complete replaces every id-only entry with its materialized track.
//
// Leading materialized entries are kept as they are; remaining ids are looked
// up in batches of BatchSize. Complete is idempotent: once it has succeeded,
// later calls return immediately without network requests. Concurrent calls
// are serialized and converge on the first successful result.
//
// On failure the entries are left untouched and the playlist stays not ready,
// so Complete can be retried. Ids the catalog no longer knows are dropped.
func (p *Playlist) Complete(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ready {
		return nil
	}

	i := 0
	output := make([]*Track, 0, len(p.Entries))
	for i < len(p.Entries) && p.Entries[i].Materialized() {
		output = append(output, p.Entries[i].Track)
		i++
	}

	if i < len(p.Entries) && p.lookup == nil {
		return fmt.Errorf("%w: playlist %d has %d unresolved tracks and no client",
			ErrResolution, p.ID, len(p.Entries)-i)
	}

	pending := make([]int64, 0, BatchSize)
	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		tracks, err := p.lookup.GetTracks(ctx, pending)
		if err != nil {
			return err
		}
		output = append(output, tracks...)
		pending = pending[:0]
		return nil
	}

	for ; i < len(p.Entries); i++ {
		entry := p.Entries[i]
		if entry.Materialized() {
			// A materialized entry after a gap keeps its place in the order.
			if err := flush(); err != nil {
				return err
			}
			output = append(output, entry.Track)
			continue
		}
		pending = append(pending, entry.ID)
		if len(pending) == BatchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}

	p.Entries = mergeEntries(output)
	p.ready = true
	return nil
}

// mergeEntries builds the final entry list, skipping tracks whose id is
// already present.
func mergeEntries(tracks []*Track) []Entry {
	seen := make(map[int64]bool, len(tracks))
	entries := make([]Entry, 0, len(tracks))
	for _, track := range tracks {
		if seen[track.ID] {
			continue
		}
		seen[track.ID] = true
		entries = append(entries, Entry{ID: track.ID, Track: track})
	}
	return entries
}

// Tracks returns the materialized tracks in playlist order.
func (p *Playlist) Tracks() []*Track {
	p.mu.Lock()
	defer p.mu.Unlock()

	tracks := make([]*Track, 0, len(p.Entries))
	for _, entry := range p.Entries {
		if entry.Materialized() {
			tracks = append(tracks, entry.Track)
		}
	}
	return tracks
}

// HasArtwork returns true if the playlist has its own cover art.
func (p *Playlist) HasArtwork() bool {
	return p.ArtworkURL != ""
}

// MarshalJSON encodes the playlist together with its materialized tracks.
func (p *Playlist) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID           int64     `json:"id"`
		URN          string    `json:"urn,omitempty"`
		Kind         string    `json:"kind"`
		Title        string    `json:"title"`
		Description  string    `json:"description,omitempty"`
		Genre        string    `json:"genre,omitempty"`
		ArtworkURL   string    `json:"artwork_url,omitempty"`
		PermalinkURL string    `json:"permalink_url"`
		TrackCount   int       `json:"track_count"`
		SetType      string    `json:"set_type,omitempty"`
		IsAlbum      bool      `json:"is_album"`
		CreatedAt    time.Time `json:"created_at"`
		ReleaseDate  time.Time `json:"release_date,omitzero"`
		User         User      `json:"user"`
		Ready        bool      `json:"ready"`
		Tracks       []*Track  `json:"tracks"`
	}{
		ID:           p.ID,
		URN:          p.URN,
		Kind:         p.Kind,
		Title:        p.Title,
		Description:  p.Description,
		Genre:        p.Genre,
		ArtworkURL:   p.ArtworkURL,
		PermalinkURL: p.PermalinkURL,
		TrackCount:   p.TrackCount,
		SetType:      p.SetType,
		IsAlbum:      p.IsAlbum,
		CreatedAt:    p.CreatedAt,
		ReleaseDate:  p.ReleaseDate,
		User:         p.User,
		Ready:        p.Ready(),
		Tracks:       p.Tracks(),
	})
}
