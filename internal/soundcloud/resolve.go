package soundcloud

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"go.uber.org/zap"
)

// Resource is a resolved catalog object: *Track or *Playlist.
type Resource interface {
	isResource()
}

// Resolve turns a SoundCloud URL into a *Track or a *Playlist.
//
// Public permalinks are fetched to read the object's id from page metadata;
// API URLs that already carry an id skip that step. Playlists are completed
// before Resolve returns. If completion fails the partially materialized
// playlist is returned together with the error, and Complete can be called
// again.
//
// Example:
//
//	res, err := client.Resolve(ctx, "https://soundcloud.com/user/track-1")
//	switch v := res.(type) {
//	case *soundcloud.Track:
//	    fmt.Println(v.Title)
//	case *soundcloud.Playlist:
//	    fmt.Println(len(v.Tracks()))
//	}
func (c *Client) Resolve(ctx context.Context, rawURL string) (Resource, error) {
	clientID, err := c.ClientID(ctx)
	if err != nil {
		return nil, err
	}

	ref, err := c.reference(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("resolving", zap.String("url", rawURL), zap.Stringer("kind", ref.Kind), zap.Int64("id", ref.ID))

	raw, err := c.lookup(ctx, ref, clientID)
	if err != nil {
		return nil, err
	}

	res, err := c.decodeResource(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", rawURL, err)
	}

	if playlist, ok := res.(*Playlist); ok {
		if err := playlist.Complete(ctx); err != nil {
			return playlist, err
		}
	}
	return res, nil
}

// ResolveTrack resolves rawURL and fails with ErrUnsupportedKind unless it
// names a track.
func (c *Client) ResolveTrack(ctx context.Context, rawURL string) (*Track, error) {
	res, err := c.Resolve(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	track, ok := res.(*Track)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a track", ErrUnsupportedKind, rawURL)
	}
	return track, nil
}

// ResolvePlaylist resolves rawURL and fails with ErrUnsupportedKind unless it
// names a playlist.
func (c *Client) ResolvePlaylist(ctx context.Context, rawURL string) (*Playlist, error) {
	res, err := c.Resolve(ctx, rawURL)
	playlist, ok := res.(*Playlist)
	if err != nil {
		return playlist, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a playlist", ErrUnsupportedKind, rawURL)
	}
	return playlist, nil
}

// lookup fetches the raw JSON object for ref.
func (c *Client) lookup(ctx context.Context, ref Reference, clientID string) (json.RawMessage, error) {
	switch ref.Kind {
	case RefPlaylist:
		endpoint := c.apiURL(fmt.Sprintf("/playlists/%d?representation=full&client_id=%s", ref.ID, url.QueryEscape(clientID)))
		body, err := c.fetcher.Get(ctx, endpoint)
		if err != nil {
			return nil, err
		}
		if len(body) == 0 {
			return nil, fmt.Errorf("%w: empty response for playlist %d", ErrResolution, ref.ID)
		}
		return json.RawMessage(body), nil

	default:
		body, err := c.fetcher.Get(ctx, c.tracksURL([]int64{ref.ID}, clientID))
		if err != nil {
			return nil, err
		}
		var items []json.RawMessage
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, fmt.Errorf("%w: track %d: %w", ErrResolution, ref.ID, err)
		}
		if len(items) == 0 {
			return nil, fmt.Errorf("%w: track %d not found", ErrResolution, ref.ID)
		}
		return items[0], nil
	}
}

// decodeResource dispatches on the object's kind field.
func (c *Client) decodeResource(raw json.RawMessage) (Resource, error) {
	var probe kindProbe
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrResolution, err)
	}

	switch probe.Kind {
	case "track":
		var jt trackJSON
		if err := json.Unmarshal(raw, &jt); err != nil {
			return nil, fmt.Errorf("%w: decode track: %w", ErrResolution, err)
		}
		return jt.toTrack(), nil

	case "playlist", "system-playlist":
		var jp playlistJSON
		if err := json.Unmarshal(raw, &jp); err != nil {
			return nil, fmt.Errorf("%w: decode playlist: %w", ErrResolution, err)
		}
		return jp.toPlaylist(c), nil

	case "":
		return nil, fmt.Errorf("%w: object has no kind", ErrResolution)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKind, probe.Kind)
	}
}
