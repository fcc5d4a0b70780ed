package soundcloud

import (
	"errors"
	"fmt"
)

// Failure classes surfaced by the Client. Every error returned by this package
// wraps exactly one of them (or http.ErrTransport for network failures), so
// callers classify with errors.Is.
var (
	// ErrDiscovery means no public client id could be found. It is not worth
	// retrying: the page layout changed and the extraction pattern needs a
	// code change.
	ErrDiscovery = errors.New("client id discovery failed")

	// ErrResolution means the catalog returned missing or malformed data for
	// a URL or id. Retrying the same input will not help.
	ErrResolution = errors.New("resolution failed")

	// ErrUnsupportedKind is returned for catalog objects that are neither
	// tracks nor playlists (users, albums by urn, ...).
	ErrUnsupportedKind = fmt.Errorf("%w: unsupported kind", ErrResolution)

	// ErrLookup means a batch track lookup failed outright.
	ErrLookup = errors.New("track lookup failed")

	// ErrNoStream means the track has no downloadable stream. This is normal
	// for blocked, snipped or otherwise unplayable tracks.
	ErrNoStream = errors.New("no stream available")

	// ErrSinkMode means the sink given to WriteMP3To could not be read,
	// written, seeked or truncated. This is a caller bug.
	ErrSinkMode = errors.New("sink must be opened for reading and writing in binary mode")
)
