package soundcloud

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
)

const testAPI = "https://api.test"

var errNotFound = errors.New("not found")

// fakeFetcher serves canned responses and records every requested URL.
type fakeFetcher struct {
	mu     sync.Mutex
	urls   []string
	handle func(u *url.URL) ([]byte, error)
}

func (f *fakeFetcher) Get(ctx context.Context, rawURL string) ([]byte, error) {
	f.mu.Lock()
	f.urls = append(f.urls, rawURL)
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	return f.handle(u)
}

// count returns how many requests matched pred.
func (f *fakeFetcher) count(pred func(u *url.URL) bool) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, raw := range f.urls {
		u, err := url.Parse(raw)
		if err == nil && pred(u) {
			n++
		}
	}
	return n
}

func isPath(path string) func(u *url.URL) bool {
	return func(u *url.URL) bool { return u.Path == path }
}

func newTestClient(t *testing.T, f *fakeFetcher, tagger TagWriter) *Client {
	t.Helper()
	c, err := NewClient(Config{
		Fetcher:    f,
		ClientID:   "testid",
		APIBaseURL: testAPI,
		Tagger:     tagger,
	})
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	return c
}

func trackObject(id int64) map[string]any {
	return map[string]any{
		"id":            id,
		"kind":          "track",
		"title":         fmt.Sprintf("Track %d", id),
		"duration":      1000 * id,
		"permalink_url": fmt.Sprintf("https://soundcloud.com/user/track-%d", id),
		"created_at":    "2020-01-02T03:04:05Z",
		"user":          map[string]any{"id": 9, "username": "user"},
	}
}

func stubObject(id int64) map[string]any {
	return map[string]any{"id": id, "kind": "track"}
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("json.Marshal() error: %v", err)
	}
	return data
}

// parseIDs reads the comma separated ids parameter of a /tracks request.
func parseIDs(u *url.URL) []int64 {
	var ids []int64
	for _, part := range strings.Split(u.Query().Get("ids"), ",") {
		if id, err := strconv.ParseInt(part, 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// tracksResponse answers a /tracks request with every requested id, in
// reverse order, minus the ids in skip.
func tracksResponse(u *url.URL, skip map[int64]bool) ([]byte, error) {
	ids := parseIDs(u)
	items := make([]map[string]any, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		if !skip[ids[i]] {
			items = append(items, trackObject(ids[i]))
		}
	}
	return json.Marshal(items)
}

func idRange(from, to int64) []int64 {
	ids := make([]int64, 0, to-from+1)
	for id := from; id <= to; id++ {
		ids = append(ids, id)
	}
	return ids
}

func trackIDs(tracks []*Track) []int64 {
	ids := make([]int64, len(tracks))
	for i, track := range tracks {
		ids[i] = track.ID
	}
	return ids
}

// memSink is an in-memory io.ReadWriteSeeker with Truncate.
type memSink struct {
	data []byte
	pos  int64
}

func (m *memSink) Read(p []byte) (int, error) {
	if m.pos >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[m.pos:])
	m.pos += int64(n)
	return n, nil
}

func (m *memSink) Write(p []byte) (int, error) {
	end := m.pos + int64(len(p))
	if end > int64(len(m.data)) {
		grown := make([]byte, end)
		copy(grown, m.data)
		m.data = grown
	}
	copy(m.data[m.pos:], p)
	m.pos = end
	return len(p), nil
}

func (m *memSink) Seek(offset int64, whence int) (int64, error) {
	var next int64
	switch whence {
	case io.SeekStart:
		next = offset
	case io.SeekCurrent:
		next = m.pos + offset
	case io.SeekEnd:
		next = int64(len(m.data)) + offset
	}
	if next < 0 {
		return 0, errors.New("negative position")
	}
	m.pos = next
	return next, nil
}

func (m *memSink) Truncate(size int64) error {
	if size <= int64(len(m.data)) {
		m.data = m.data[:size]
		return nil
	}
	grown := make([]byte, size)
	copy(grown, m.data)
	m.data = grown
	return nil
}

// writeOnlySink fails every read, like a file opened with O_WRONLY.
type writeOnlySink struct {
	memSink
}

func (w *writeOnlySink) Read(p []byte) (int, error) {
	return 0, errors.New("bad file descriptor")
}

// brokenSink fails every write.
type brokenSink struct {
	memSink
}

func (b *brokenSink) Write(p []byte) (int, error) {
	return 0, errors.New("bad file descriptor")
}

// recordingTagger captures what WriteMP3To hands to the tag writer.
type recordingTagger struct {
	calls   int
	audio   []byte
	artwork []byte
	track   *Track
}

func (r *recordingTagger) WriteTags(sink io.ReadWriteSeeker, track *Track, artwork []byte) error {
	r.calls++
	r.track = track
	r.artwork = artwork
	data, err := io.ReadAll(sink)
	if err != nil {
		return err
	}
	r.audio = data
	return nil
}

// readingTagger fails like a tag writer handed a write-only file.
type readingTagger struct{}

func (readingTagger) WriteTags(sink io.ReadWriteSeeker, track *Track, artwork []byte) error {
	_, err := io.ReadAll(sink)
	return err
}
