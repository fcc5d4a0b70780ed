package soundcloud

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// StreamURL returns the HLS manifest URL of track, resolving it on first use.
//
// Returns ErrNoStream when the track offers no HLS rendition or the catalog
// answers without a url. That is expected for blocked or removed tracks.
func (c *Client) StreamURL(ctx context.Context, track *Track) (string, error) {
	if track.StreamURL != "" {
		return track.StreamURL, nil
	}

	tc, ok := track.Media.hlsTranscoding()
	if !ok {
		return "", fmt.Errorf("%w: track %d has no HLS transcoding", ErrNoStream, track.ID)
	}

	clientID, err := c.ClientID(ctx)
	if err != nil {
		return "", err
	}

	descriptorURL, err := url.Parse(tc.URL)
	if err != nil {
		return "", fmt.Errorf("%w: track %d: %w", ErrNoStream, track.ID, err)
	}
	query := descriptorURL.Query()
	query.Set("client_id", clientID)
	if track.TrackAuthorization != "" {
		query.Set("track_authorization", track.TrackAuthorization)
	}
	descriptorURL.RawQuery = query.Encode()

	body, err := c.fetcher.Get(ctx, descriptorURL.String())
	if err != nil {
		return "", err
	}
	if len(body) == 0 {
		return "", fmt.Errorf("%w: track %d: empty stream descriptor", ErrNoStream, track.ID)
	}

	var stream streamJSON
	if err := json.Unmarshal(body, &stream); err != nil {
		return "", fmt.Errorf("%w: track %d: %w", ErrNoStream, track.ID, err)
	}
	if stream.URL == "" {
		return "", fmt.Errorf("%w: track %d: descriptor has no url", ErrNoStream, track.ID)
	}

	track.StreamURL = stream.URL
	return stream.URL, nil
}

// ParseManifest returns the segment URLs of an HLS media playlist in file
// order. Comment and tag lines (starting with '#') and blank lines are
// skipped.
func ParseManifest(manifest string) []string {
	var segments []string
	for _, line := range strings.Split(manifest, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		segments = append(segments, line)
	}
	return segments
}

// SegmentProgressFunc is called after each segment is written.
type SegmentProgressFunc func(done, total int, bytes int64)

type writeOptions struct {
	onSegment SegmentProgressFunc
	tagger    TagWriter
}

// WriteOption customizes WriteMP3To.
type WriteOption func(*writeOptions)

// WithSegmentProgress reports progress after every segment written.
func WithSegmentProgress(fn SegmentProgressFunc) WriteOption {
	return func(o *writeOptions) {
		o.onSegment = fn
	}
}

// WithTagger tags this write with tw instead of the client's TagWriter.
func WithTagger(tw TagWriter) WriteOption {
	return func(o *writeOptions) {
		o.tagger = tw
	}
}

// WriteMP3To downloads track's stream into sink and tags it.
//
// The sink must support reading, writing and seeking (an *os.File opened with
// os.O_RDWR, or an in-memory buffer). It is truncated first when it supports
// Truncate(int64). Segments are fetched one after another and written in
// manifest order. Afterwards the artwork is fetched, if the track has any,
// and the configured TagWriter (or the one given with WithTagger) embeds
// metadata. On return the sink is
// positioned at its start.
//
// Sink failures wrap ErrSinkMode; network failures wrap the fetcher's error.
//
// Example:
//
//	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
//	if err != nil {
//	    return err
//	}
//	defer f.Close()
//	err = client.WriteMP3To(ctx, track, f)
func (c *Client) WriteMP3To(ctx context.Context, track *Track, sink io.ReadWriteSeeker, opts ...WriteOption) error {
	o := writeOptions{tagger: c.tagger}
	for _, opt := range opts {
		opt(&o)
	}

	err := c.writeMP3(ctx, track, guardSink(sink), o)
	if errors.Is(err, ErrSinkMode) {
		c.logger.Error("sink must be opened for reading and writing in binary mode",
			zap.Int64("track", track.ID), zap.Error(err))
	}
	return err
}

func (c *Client) writeMP3(ctx context.Context, track *Track, sink *guardedSink, o writeOptions) error {
	streamURL, err := c.StreamURL(ctx, track)
	if err != nil {
		return err
	}

	manifest, err := c.fetcher.Get(ctx, streamURL)
	if err != nil {
		return err
	}
	segments := ParseManifest(string(manifest))
	c.logger.Debug("writing stream",
		zap.Int64("track", track.ID),
		zap.Int("segments", len(segments)),
	)

	if err := sink.Truncate(0); err != nil {
		return err
	}
	if _, err := sink.Seek(0, io.SeekStart); err != nil {
		return err
	}

	var written int64
	for i, segmentURL := range segments {
		data, err := c.fetcher.Get(ctx, segmentURL)
		if err != nil {
			return fmt.Errorf("segment %d of %d: %w", i+1, len(segments), err)
		}
		n, err := sink.Write(data)
		written += int64(n)
		if err != nil {
			return err
		}
		if o.onSegment != nil {
			o.onSegment(i+1, len(segments), written)
		}
	}

	if _, err := sink.Seek(0, io.SeekStart); err != nil {
		return err
	}

	var artwork []byte
	if track.HasArtwork() {
		artwork, err = c.fetcher.Get(ctx, LargeArtworkURL(track.ArtworkURL))
		if err != nil {
			return fmt.Errorf("artwork: %w", err)
		}
	}

	if o.tagger == nil {
		return nil
	}
	if err := o.tagger.WriteTags(sink, track, artwork); err != nil {
		return fmt.Errorf("tag track %d: %w", track.ID, err)
	}
	_, err = sink.Seek(0, io.SeekStart)
	return err
}

// guardedSink tags every I/O failure of the caller's sink with ErrSinkMode so
// it can be told apart from network failures.
type guardedSink struct {
	rws io.ReadWriteSeeker
}

func guardSink(rws io.ReadWriteSeeker) *guardedSink {
	return &guardedSink{rws: rws}
}

func (s *guardedSink) Read(p []byte) (int, error) {
	n, err := s.rws.Read(p)
	if err != nil && err != io.EOF {
		err = fmt.Errorf("%w: read: %w", ErrSinkMode, err)
	}
	return n, err
}

func (s *guardedSink) Write(p []byte) (int, error) {
	n, err := s.rws.Write(p)
	if err != nil {
		err = fmt.Errorf("%w: write: %w", ErrSinkMode, err)
	}
	return n, err
}

func (s *guardedSink) Seek(offset int64, whence int) (int64, error) {
	pos, err := s.rws.Seek(offset, whence)
	if err != nil {
		err = fmt.Errorf("%w: seek: %w", ErrSinkMode, err)
	}
	return pos, err
}

// Truncate resizes the sink when it supports it and is a no-op otherwise.
func (s *guardedSink) Truncate(size int64) error {
	t, ok := s.rws.(interface{ Truncate(int64) error })
	if !ok {
		return nil
	}
	if err := t.Truncate(size); err != nil {
		return fmt.Errorf("%w: truncate: %w", ErrSinkMode, err)
	}
	return nil
}
