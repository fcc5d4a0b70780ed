package soundcloud

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// RefKind selects the catalog endpoint a Reference is looked up with.
type RefKind int

const (
	RefTrack RefKind = iota
	RefPlaylist
)

func (k RefKind) String() string {
	switch k {
	case RefTrack:
		return "track"
	case RefPlaylist:
		return "playlist"
	default:
		return fmt.Sprintf("RefKind(%d)", int(k))
	}
}

// Reference is the numeric identity of a catalog object.
type Reference struct {
	Kind RefKind
	ID   int64
}

var apiReferencePattern = regexp.MustCompile(`^https?://api(?:-v2)?\.soundcloud\.com/(tracks|playlists)/(\d+)(?:[/?#]|$)`)

// ParseAPIReference recognises URLs that already name a catalog object by id,
// such as https://api-v2.soundcloud.com/tracks/123.
func ParseAPIReference(rawURL string) (Reference, bool) {
	match := apiReferencePattern.FindStringSubmatch(rawURL)
	if match == nil {
		return Reference{}, false
	}
	id, err := strconv.ParseInt(match[2], 10, 64)
	if err != nil {
		return Reference{}, false
	}
	kind := RefTrack
	if match[1] == "playlists" {
		kind = RefPlaylist
	}
	return Reference{Kind: kind, ID: id}, true
}

// ParseAppURL parses the app deep link found in page metadata.
//
// Example:
//
//	ParseAppURL("soundcloud://sounds:1234")    // {RefTrack 1234}
//	ParseAppURL("soundcloud://playlists:5678") // {RefPlaylist 5678}
func ParseAppURL(appURL string) (Reference, error) {
	_, rest, found := strings.Cut(appURL, "://")
	if !found {
		rest = appURL
	}

	idx := strings.LastIndex(rest, ":")
	var kindName, idText string
	if idx < 0 {
		idText = rest
	} else {
		kindName, idText = rest[:idx], rest[idx+1:]
	}

	id, err := strconv.ParseInt(strings.TrimSpace(idText), 10, 64)
	if err != nil || id <= 0 {
		return Reference{}, fmt.Errorf("%w: malformed app url %q", ErrResolution, appURL)
	}

	switch kindName {
	case "", "sounds", "tracks":
		return Reference{Kind: RefTrack, ID: id}, nil
	case "playlists":
		return Reference{Kind: RefPlaylist, ID: id}, nil
	default:
		return Reference{}, fmt.Errorf("%w: %q", ErrUnsupportedKind, kindName)
	}
}

// reference turns any supported URL into a Reference, fetching the page when
// the URL is a public permalink.
func (c *Client) reference(ctx context.Context, rawURL string) (Reference, error) {
	if ref, ok := ParseAPIReference(rawURL); ok {
		return ref, nil
	}

	page, err := c.fetcher.Get(ctx, rawURL)
	if err != nil {
		return Reference{}, err
	}

	content, err := FindMetaContent(string(page), appURLProperty)
	if err != nil {
		return Reference{}, fmt.Errorf("%w: %s: %w", ErrResolution, rawURL, err)
	}
	return ParseAppURL(content)
}
