// Package download provides the download orchestration logic for
// fetching SoundCloud tracks and playlists to disk.
//
// # Manager
//
// The Manager coordinates the entire download process:
//
//  1. Parse input URLs
//  2. Resolve them into tracks and completed playlists
//  3. Save cover art next to the tracks (optional)
//  4. Reconstruct each track's stream into a partial file, concurrently
//  5. Tag MP3 files with ID3 metadata including the playlist position
//  6. Generate playlists (optional)
//
// # Basic Usage
//
//	manager, err := download.NewManager(settings, func(event download.ProgressEvent) {
//	    fmt.Println(event.Message)
//	}, download.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//
//	if err := manager.Initialize(ctx, "https://soundcloud.com/mt-marcy/sets/winter"); err != nil {
//	    return err
//	}
//	return manager.StartDownloads(ctx)
//
// # Concurrency
//
// The Manager uses configurable concurrency limits:
//   - MaxConcurrentCollectionsDownload: How many collections to download in parallel
//   - MaxConcurrentTracksDownload: How many tracks per collection to download in parallel
//
// # Progress Tracking
//
// Progress is reported via a callback function that receives ProgressEvent:
//
//	type ProgressEvent struct {
//	    Message string
//	    Level   ProgressLevel // Info, Verbose, Warning, Error, Success
//	}
//
// Byte totals are estimated from track durations, since HLS streams do not
// announce their size.
//
// # Retry Logic
//
// Transport failures are retried with exponential backoff, configurable via
// settings.DownloadMaxRetries, DownloadRetryCooldown and DownloadRetryExponent.
// Discovery, resolution and stream errors are reported without retrying.
package download
