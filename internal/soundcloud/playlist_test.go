package soundcloud

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
)

// countingLookup materializes ids locally and records every batch.
type countingLookup struct {
	mu      sync.Mutex
	batches [][]int64
	fail    error
}

func (l *countingLookup) GetTracks(ctx context.Context, ids []int64) ([]*Track, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.batches = append(l.batches, slices.Clone(ids))
	if l.fail != nil {
		return nil, l.fail
	}
	tracks := make([]*Track, 0, len(ids))
	for _, id := range ids {
		tracks = append(tracks, &Track{ID: id, Title: "looked up"})
	}
	return tracks, nil
}

func pendingPlaylist(materialized, pending int64) *Playlist {
	p := &Playlist{ID: 1, Kind: "playlist", Title: "Set"}
	for id := int64(1); id <= materialized; id++ {
		p.Entries = append(p.Entries, Entry{ID: id, Track: &Track{ID: id, Title: "embedded"}})
	}
	for id := materialized + 1; id <= materialized+pending; id++ {
		p.Entries = append(p.Entries, Entry{ID: id})
	}
	return p
}

func TestPlaylist_Complete(t *testing.T) {
	tests := []struct {
		name         string
		materialized int64
		pending      int64
		wantBatches  []int
	}{
		{name: "already materialized", materialized: 3, pending: 0, wantBatches: []int{}},
		{name: "all pending", materialized: 0, pending: 30, wantBatches: []int{30}},
		{name: "mixed", materialized: 5, pending: 245, wantBatches: []int{100, 100, 45}},
		{name: "exact threshold", materialized: 0, pending: 100, wantBatches: []int{100}},
		{name: "empty", materialized: 0, pending: 0, wantBatches: []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lookup := &countingLookup{}
			p := pendingPlaylist(tt.materialized, tt.pending)
			p.Bind(lookup)

			if err := p.Complete(context.Background()); err != nil {
				t.Fatalf("Complete() error: %v", err)
			}

			sizes := make([]int, len(lookup.batches))
			for i, batch := range lookup.batches {
				sizes[i] = len(batch)
			}
			if !slices.Equal(sizes, tt.wantBatches) {
				t.Errorf("batches = %v, want %v", sizes, tt.wantBatches)
			}

			total := tt.materialized + tt.pending
			if got := trackIDs(p.Tracks()); !slices.Equal(got, idRange(1, total)) {
				t.Errorf("Tracks() ids = %v, want 1..%d", got, total)
			}
			if len(p.Entries) != int(total) {
				t.Errorf("len(Entries) = %d, want %d", len(p.Entries), total)
			}
			if !p.Ready() {
				t.Errorf("Ready() = false after Complete")
			}
		})
	}
}

func TestPlaylist_Complete_Idempotent(t *testing.T) {
	lookup := &countingLookup{}
	p := pendingPlaylist(2, 150)
	p.Bind(lookup)

	if err := p.Complete(context.Background()); err != nil {
		t.Fatalf("Complete() error: %v", err)
	}
	first := slices.Clone(p.Entries)
	calls := len(lookup.batches)

	if err := p.Complete(context.Background()); err != nil {
		t.Fatalf("second Complete() error: %v", err)
	}
	if len(lookup.batches) != calls {
		t.Errorf("second Complete() issued %d more lookups", len(lookup.batches)-calls)
	}
	if !slices.Equal(p.Entries, first) {
		t.Errorf("second Complete() changed the entries")
	}
}

func TestPlaylist_Complete_Concurrent(t *testing.T) {
	lookup := &countingLookup{}
	p := pendingPlaylist(0, 120)
	p.Bind(lookup)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := p.Complete(context.Background()); err != nil {
				t.Errorf("Complete() error: %v", err)
			}
		}()
	}
	wg.Wait()

	if len(lookup.batches) != 2 {
		t.Errorf("lookups = %d, want 2", len(lookup.batches))
	}
	if len(p.Tracks()) != 120 {
		t.Errorf("len(Tracks()) = %d, want 120", len(p.Tracks()))
	}
}

func TestPlaylist_Complete_GapKeepsOrder(t *testing.T) {
	p := &Playlist{Entries: []Entry{
		{ID: 1, Track: &Track{ID: 1}},
		{ID: 2},
		{ID: 3, Track: &Track{ID: 3}},
		{ID: 4},
	}}
	p.Bind(&countingLookup{})

	if err := p.Complete(context.Background()); err != nil {
		t.Fatalf("Complete() error: %v", err)
	}
	if got, want := trackIDs(p.Tracks()), []int64{1, 2, 3, 4}; !slices.Equal(got, want) {
		t.Errorf("Tracks() = %v, want %v", got, want)
	}
}

func TestPlaylist_Complete_NoDuplicates(t *testing.T) {
	p := &Playlist{Entries: []Entry{
		{ID: 1, Track: &Track{ID: 1}},
		{ID: 2},
		{ID: 1},
	}}
	p.Bind(&countingLookup{})

	if err := p.Complete(context.Background()); err != nil {
		t.Fatalf("Complete() error: %v", err)
	}
	if got, want := trackIDs(p.Tracks()), []int64{1, 2}; !slices.Equal(got, want) {
		t.Errorf("Tracks() = %v, want %v", got, want)
	}
}

func TestPlaylist_Complete_Unbound(t *testing.T) {
	p := pendingPlaylist(1, 1)

	if err := p.Complete(context.Background()); !errors.Is(err, ErrResolution) {
		t.Fatalf("Complete() error = %v, want ErrResolution", err)
	}
	if p.Ready() {
		t.Errorf("Ready() = true after failed Complete")
	}

	done := pendingPlaylist(2, 0)
	if err := done.Complete(context.Background()); err != nil {
		t.Errorf("Complete() on materialized playlist without client: %v", err)
	}
}

func TestPlaylist_Complete_RetryAfterFailure(t *testing.T) {
	lookup := &countingLookup{fail: ErrLookup}
	p := pendingPlaylist(1, 10)
	p.Bind(lookup)

	if err := p.Complete(context.Background()); !errors.Is(err, ErrLookup) {
		t.Fatalf("Complete() error = %v, want ErrLookup", err)
	}
	if p.Ready() {
		t.Fatalf("Ready() = true after failed Complete")
	}
	if len(p.Entries) != 11 || p.Entries[1].Materialized() {
		t.Fatalf("failed Complete() modified the entries")
	}

	lookup.fail = nil
	if err := p.Complete(context.Background()); err != nil {
		t.Fatalf("retried Complete() error: %v", err)
	}
	if len(p.Tracks()) != 11 {
		t.Errorf("len(Tracks()) = %d, want 11", len(p.Tracks()))
	}
}
