package soundcloud

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// GetTracks looks up tracks by id and returns them in the order of ids.
//
// Ids are sent in chunks of BatchSize, all chunks concurrently. If any chunk
// fails the whole call fails with ErrLookup and no tracks are returned.
//
// Ids the catalog does not return (deleted or private tracks) are omitted
// from the result and logged; they never shift the position of other tracks.
// Duplicate ids yield a single track at the first position.
func (c *Client) GetTracks(ctx context.Context, ids []int64) ([]*Track, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	clientID, err := c.ClientID(ctx)
	if err != nil {
		return nil, err
	}

	chunks := chunkIDs(ids, BatchSize)
	results := make([][]trackJSON, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			body, err := c.fetcher.Get(gctx, c.tracksURL(chunk, clientID))
			if err != nil {
				return fmt.Errorf("%w: chunk %d of %d: %w", ErrLookup, i+1, len(chunks), err)
			}
			var items []trackJSON
			if err := json.Unmarshal(body, &items); err != nil {
				return fmt.Errorf("%w: chunk %d of %d: %w", ErrLookup, i+1, len(chunks), err)
			}
			results[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var flat []*Track
	for _, items := range results {
		for j := range items {
			flat = append(flat, items[j].toTrack())
		}
	}

	ordered, missing := orderTracks(ids, flat)
	if len(missing) > 0 {
		c.logger.Warn("tracks missing from lookup response",
			zap.Int64s("ids", missing),
			zap.Int("requested", len(ids)),
		)
	}
	return ordered, nil
}

// GetTrack looks up a single track by id.
func (c *Client) GetTrack(ctx context.Context, id int64) (*Track, error) {
	tracks, err := c.GetTracks(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	if len(tracks) == 0 {
		return nil, fmt.Errorf("%w: track %d not found", ErrResolution, id)
	}
	return tracks[0], nil
}

func (c *Client) tracksURL(ids []int64, clientID string) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return c.apiURL(fmt.Sprintf("/tracks?ids=%s&client_id=%s",
		url.QueryEscape(strings.Join(parts, ",")), url.QueryEscape(clientID)))
}

// chunkIDs splits ids into consecutive slices of at most size elements.
func chunkIDs(ids []int64, size int) [][]int64 {
	chunks := make([][]int64, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}

// orderTracks arranges tracks by the first position of their id in ids.
//
// Tracks whose id was not requested are dropped, as are repeated copies of
// the same id. missing lists requested ids without a track, in request order.
func orderTracks(ids []int64, tracks []*Track) (ordered []*Track, missing []int64) {
	byID := make(map[int64]*Track, len(tracks))
	for _, track := range tracks {
		if _, seen := byID[track.ID]; !seen {
			byID[track.ID] = track
		}
	}

	placed := make(map[int64]bool, len(ids))
	ordered = make([]*Track, 0, len(ids))
	for _, id := range ids {
		if placed[id] {
			continue
		}
		placed[id] = true
		if track, ok := byID[id]; ok {
			ordered = append(ordered, track)
		} else {
			missing = append(missing, id)
		}
	}
	return ordered, missing
}
