package download

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/handiism/soundcloud-downloader/internal/audio"
	"github.com/handiism/soundcloud-downloader/internal/config"
	"github.com/handiism/soundcloud-downloader/internal/http"
	ioutils "github.com/handiism/soundcloud-downloader/internal/io"
	"github.com/handiism/soundcloud-downloader/internal/logging"
	"github.com/handiism/soundcloud-downloader/internal/model"
	"github.com/handiism/soundcloud-downloader/internal/soundcloud"
)

// bytesPerMilli estimates the size of a 128 kbit/s MP3 stream.
const bytesPerMilli = 16

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a download progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// Option customizes a Manager.
type Option func(*Manager)

// WithLogger sets the logger for diagnostics. Progress messages meant for
// the user still go to the progress callback.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithFetcher replaces the HTTP transport, for example with a recorded one.
func WithFetcher(f soundcloud.Fetcher) Option {
	return func(m *Manager) {
		m.fetcher = f
	}
}

// job is one collection to download. sources[i] is the SoundCloud track
// behind collection.Tracks[i].
type job struct {
	collection *model.Collection
	sources    []*soundcloud.Track
	playlist   bool
}

// Manager coordinates collection downloads.
type Manager struct {
	settings     *config.Settings
	logger       *zap.Logger
	fetcher      soundcloud.Fetcher
	client       *soundcloud.Client
	tagger       *audio.Tagger
	playlist     *audio.PlaylistCreator
	imageService *ioutils.ImageService
	pathCfg      *model.PathConfig
	trackCfg     *model.TrackConfig

	jobs            []*job
	totalBytes      int64
	receivedBytes   int64
	totalFiles      int32
	downloadedFiles int32

	onProgress func(ProgressEvent)
	mu         sync.RWMutex
}

// NewManager creates a new download Manager.
func NewManager(settings *config.Settings, onProgress func(ProgressEvent), opts ...Option) (*Manager, error) {
	m := &Manager{
		settings:     settings,
		tagger:       audio.NewTagger(settings.ToTagConfig()),
		playlist:     audio.NewPlaylistCreator(model.ParsePlaylistFormat(settings.PlaylistFormat), settings.M3UExtended),
		imageService: ioutils.NewImageService(),
		pathCfg:      settings.ToPathConfig(),
		trackCfg:     settings.ToTrackConfig(),
		onProgress:   onProgress,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = logging.OrNop(m.logger)
	if m.fetcher == nil {
		m.fetcher = http.NewClient(settings.ToClientConfig())
	}

	client, err := soundcloud.NewClient(soundcloud.Config{
		Fetcher:    m.fetcher,
		ClientID:   settings.SoundCloud.ClientID,
		ScrapeURLs: settings.SoundCloud.ScrapeURLs,
		APIBaseURL: settings.SoundCloud.APIBaseURL,
		Tagger:     m.tagger,
		Logger:     m.logger,
	})
	if err != nil {
		return nil, err
	}
	m.client = client
	m.logger = m.logger.Named("download")

	return m, nil
}

// Client returns the SoundCloud client the manager resolves with.
func (m *Manager) Client() *soundcloud.Client {
	return m.client
}

// Initialize resolves the input URLs (whitespace separated, usually one per
// line) into collections.
//
// A track URL becomes a collection of one; a playlist URL becomes a
// collection of its tracks in playlist order. URLs that fail to resolve are
// reported and skipped.
func (m *Manager) Initialize(ctx context.Context, inputURLs string) error {
	for _, inputURL := range m.parseInputURLs(inputURLs) {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Resolving %s", inputURL), Level: LevelVerbose})

		j, err := m.resolve(ctx, inputURL)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error resolving %s: %v", inputURL, err), Level: LevelError})
			continue
		}

		m.mu.Lock()
		m.jobs = append(m.jobs, j)
		m.mu.Unlock()

		c := j.collection
		m.progress(ProgressEvent{Message: fmt.Sprintf("Found: %s - %s (%d tracks)", c.Artist, c.Title, len(c.Tracks)), Level: LevelInfo})
	}

	m.calculateTotals()

	return nil
}

// StartDownloads begins downloading all initialized collections.
func (m *Manager) StartDownloads(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, m.settings.MaxConcurrentCollectionsDownload))

	for _, j := range m.snapshot() {
		j := j
		g.Go(func() error {
			return m.downloadCollection(ctx, j)
		})
	}

	return g.Wait()
}

// GetProgress returns current download progress. total is estimated from
// track durations.
func (m *Manager) GetProgress() (received, total int64, filesReceived, filesTotal int32) {
	return atomic.LoadInt64(&m.receivedBytes), atomic.LoadInt64(&m.totalBytes),
		atomic.LoadInt32(&m.downloadedFiles), atomic.LoadInt32(&m.totalFiles)
}

// GetCollectionNames returns the names of all initialized collections.
func (m *Manager) GetCollectionNames() []string {
	jobs := m.snapshot()
	names := make([]string, len(jobs))
	for i, j := range jobs {
		names[i] = fmt.Sprintf("%s - %s (%d tracks)", j.collection.Artist, j.collection.Title, len(j.collection.Tracks))
	}
	return names
}

// Collections returns the initialized collections with their computed paths.
func (m *Manager) Collections() []*model.Collection {
	jobs := m.snapshot()
	collections := make([]*model.Collection, len(jobs))
	for i, j := range jobs {
		collections[i] = j.collection
	}
	return collections
}

func (m *Manager) snapshot() []*job {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*job(nil), m.jobs...)
}

func (m *Manager) parseInputURLs(input string) []string {
	var urls []string
	for _, line := range strings.Fields(input) {
		if strings.HasPrefix(line, "http://") || strings.HasPrefix(line, "https://") {
			urls = append(urls, line)
		}
	}
	return urls
}

// resolve turns one input URL into a job, retrying transport failures.
func (m *Manager) resolve(ctx context.Context, inputURL string) (*job, error) {
	var res soundcloud.Resource
	err := m.retry(ctx, inputURL, func() error {
		var err error
		res, err = m.client.Resolve(ctx, inputURL)
		if p, ok := res.(*soundcloud.Playlist); ok && p != nil && err != nil {
			return m.completePlaylist(ctx, p, err)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	switch v := res.(type) {
	case *soundcloud.Track:
		return m.trackJob(v), nil
	case *soundcloud.Playlist:
		return m.playlistJob(v), nil
	default:
		return nil, fmt.Errorf("%w: unexpected resource %T", soundcloud.ErrResolution, res)
	}
}

// completePlaylist retries completion of a partially materialized playlist.
func (m *Manager) completePlaylist(ctx context.Context, p *soundcloud.Playlist, err error) error {
	for tries := 0; !p.Ready() && retryable(ctx, err) && tries < m.settings.DownloadMaxRetries; tries++ {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Retry %d/%d completing %s", tries+1, m.settings.DownloadMaxRetries, p.Title), Level: LevelWarning})
		m.waitForRetry(ctx, tries)
		err = p.Complete(ctx)
	}
	if err == nil || p.Ready() {
		return nil
	}
	m.logger.Warn("playlist incomplete", zap.Int64("playlist", p.ID), zap.Error(err))
	m.progress(ProgressEvent{Message: fmt.Sprintf("Playlist %s is incomplete: %v", p.Title, err), Level: LevelWarning})
	return nil
}

func (m *Manager) trackJob(t *soundcloud.Track) *job {
	c := model.NewCollection(t.Artist(), t.Title, soundcloud.LargeArtworkURL(t.ArtworkURL), t.Released(), m.pathCfg)
	c.Tracks = []*model.Track{m.modelTrack(c, 1, t)}
	return &job{collection: c, sources: []*soundcloud.Track{t}}
}

func (m *Manager) playlistJob(p *soundcloud.Playlist) *job {
	released := p.ReleaseDate
	if released.IsZero() {
		released = p.CreatedAt
	}
	c := model.NewCollection(p.User.Username, p.Title, soundcloud.LargeArtworkURL(p.ArtworkURL), released, m.pathCfg)

	sources := p.Tracks()
	c.Tracks = make([]*model.Track, len(sources))
	for i, t := range sources {
		c.Tracks[i] = m.modelTrack(c, i+1, t)
	}
	return &job{collection: c, sources: sources, playlist: true}
}

func (m *Manager) modelTrack(c *model.Collection, number int, t *soundcloud.Track) *model.Track {
	return model.NewTrack(c, number, t.Title, t.Artist(), t.Duration().Seconds(), t.ID, m.trackCfg)
}

func (m *Manager) calculateTotals() {
	var files int32
	var size int64
	for _, j := range m.snapshot() {
		for _, t := range j.sources {
			files++
			size += t.DurationMillis * bytesPerMilli
		}
		if m.settings.SaveCoverArtInFolder && j.collection.HasArtwork() {
			files++
		}
	}
	atomic.StoreInt32(&m.totalFiles, files)
	atomic.StoreInt64(&m.totalBytes, size)
}

func (m *Manager) downloadCollection(ctx context.Context, j *job) error {
	c := j.collection
	if err := ioutils.EnsureDir(c.Path); err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error creating directory: %v", err), Level: LevelError})
		return err
	}

	if m.settings.SaveCoverArtInFolder && c.HasArtwork() {
		if err := m.saveArtwork(ctx, c); err != nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error downloading artwork for %s: %v", c.Title, err), Level: LevelWarning})
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, m.settings.MaxConcurrentTracksDownload))

	var successCount int32
	for i := range c.Tracks {
		i := i
		g.Go(func() error {
			track := c.Tracks[i]
			if err := m.downloadTrack(gctx, j, i); err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				level := LevelError
				if errors.Is(err, soundcloud.ErrNoStream) {
					level = LevelWarning
				}
				m.progress(ProgressEvent{Message: fmt.Sprintf("Error downloading %s: %v", track.Title, err), Level: level})
				return nil // Continue with other tracks
			}
			atomic.AddInt32(&successCount, 1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	if m.settings.CreatePlaylist && j.playlist {
		content := m.playlist.CreatePlaylist(c)
		if err := ioutils.WriteFile(ctx, c.PlaylistPath, []byte(content)); err != nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error creating playlist: %v", err), Level: LevelWarning})
		} else {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Created playlist for %s", c.Title), Level: LevelSuccess})
		}
	}

	if int(successCount) == len(c.Tracks) {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Successfully downloaded: %s", c.Title), Level: LevelSuccess})
	} else {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Finished %s, %d of %d tracks failed", c.Title, len(c.Tracks)-int(successCount), len(c.Tracks)), Level: LevelWarning})
	}

	return nil
}

// saveArtwork stores the collection cover next to its tracks.
func (m *Manager) saveArtwork(ctx context.Context, c *model.Collection) error {
	var artwork []byte
	err := m.retry(ctx, c.ArtworkURL, func() error {
		var err error
		artwork, err = m.fetcher.Get(ctx, c.ArtworkURL)
		return err
	})
	if err != nil {
		return err
	}

	prepared, err := m.imageService.Prepare(ctx, artwork, m.settings.FolderArtworkOptions())
	if err != nil {
		m.logger.Debug("artwork kept as downloaded", zap.String("url", c.ArtworkURL), zap.Error(err))
		prepared = artwork
	}

	path := c.ArtworkPath
	if ext := ioutils.ImageExtension(prepared); filepath.Ext(path) != ext {
		path = strings.TrimSuffix(path, filepath.Ext(path)) + ext
	}
	if err := ioutils.WriteFile(ctx, path, prepared); err != nil {
		return err
	}

	atomic.AddInt32(&m.downloadedFiles, 1)
	m.progress(ProgressEvent{Message: fmt.Sprintf("Saved artwork for %s", c.Title), Level: LevelVerbose})
	return nil
}

func (m *Manager) downloadTrack(ctx context.Context, j *job, i int) error {
	track, source := j.collection.Tracks[i], j.sources[i]

	if m.settings.SkipExistingFiles && ioutils.FileExists(track.Path) {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Skipping existing: %s", filepath.Base(track.Path)), Level: LevelVerbose})
		atomic.AddInt32(&m.downloadedFiles, 1)
		atomic.AddInt64(&m.receivedBytes, source.DurationMillis*bytesPerMilli)
		return nil
	}

	var pos audio.Position
	if j.playlist {
		pos = audio.Position{
			Number:      track.Number,
			Total:       len(j.collection.Tracks),
			Album:       j.collection.Title,
			AlbumArtist: j.collection.Artist,
		}
	}

	err := m.retry(ctx, track.Title, func() error {
		return m.writeTrack(ctx, track, source, pos)
	})
	if err != nil {
		return err
	}

	atomic.AddInt32(&m.downloadedFiles, 1)
	m.progress(ProgressEvent{Message: fmt.Sprintf("Downloaded: %s", filepath.Base(track.Path)), Level: LevelVerbose})
	return nil
}

// writeTrack downloads one attempt into the track's partial file and moves
// it into place on success.
func (m *Manager) writeTrack(ctx context.Context, track *model.Track, source *soundcloud.Track, pos audio.Position) error {
	part, err := ioutils.CreatePart(track.Path)
	if err != nil {
		return err
	}

	var written int64
	err = m.client.WriteMP3To(ctx, source, part,
		soundcloud.WithSegmentProgress(func(done, total int, bytes int64) {
			atomic.AddInt64(&m.receivedBytes, bytes-written)
			written = bytes
		}),
		soundcloud.WithTagger(m.tagger.At(pos)),
	)
	if err != nil {
		atomic.AddInt64(&m.receivedBytes, -written)
		if abortErr := part.Abort(); abortErr != nil {
			m.logger.Warn("removing partial file", zap.String("path", part.Name()), zap.Error(abortErr))
		}
		return err
	}

	if err := part.Commit(); err != nil {
		atomic.AddInt64(&m.receivedBytes, -written)
		return err
	}
	return nil
}

// retry runs fn until it succeeds, fails with a non-transport error or the
// retry budget is spent.
func (m *Manager) retry(ctx context.Context, what string, fn func() error) error {
	attempts := max(1, m.settings.DownloadMaxRetries)
	var err error
	for tries := 0; tries < attempts; tries++ {
		if err = fn(); err == nil || !retryable(ctx, err) {
			return err
		}
		m.logger.Debug("retrying", zap.String("item", what), zap.Int("try", tries+1), zap.Error(err))
		if tries+1 < attempts {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Retry %d/%d for %s", tries+1, attempts-1, what), Level: LevelWarning})
			m.waitForRetry(ctx, tries)
		}
	}
	return err
}

// retryable reports whether err is a transient network failure. Discovery,
// resolution and stream errors as well as sink misuse are final.
func retryable(ctx context.Context, err error) bool {
	if err == nil || ctx.Err() != nil {
		return false
	}
	for _, final := range []error{soundcloud.ErrDiscovery, soundcloud.ErrResolution, soundcloud.ErrNoStream, soundcloud.ErrSinkMode} {
		if errors.Is(err, final) {
			return false
		}
	}
	return errors.Is(err, http.ErrTransport)
}

func (m *Manager) waitForRetry(ctx context.Context, tries int) {
	cooldown := m.settings.DownloadRetryCooldown * math.Pow(m.settings.DownloadRetryExponent, float64(tries))
	select {
	case <-ctx.Done():
	case <-time.After(time.Duration(cooldown * float64(time.Second))):
	}
}

func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress != nil {
		m.onProgress(event)
	}
}
