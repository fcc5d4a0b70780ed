package soundcloud

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

var (
	scriptSrcPattern = regexp.MustCompile(`(?is)<script\b[^>]*?\bsrc\s*=\s*(?:"([^"]*)"|'([^']*)')`)
	clientIDPattern  = regexp.MustCompile(`client_id=([a-zA-Z0-9]+)`)
	metaTagPattern   = regexp.MustCompile(`(?is)<meta\b[^>]*>`)
	attrPattern      = regexp.MustCompile(`(?s)([a-zA-Z_:.-]+)\s*=\s*(?:"([^"]*)"|'([^']*)')`)
	trackURLPattern  = regexp.MustCompile(`^https?://soundcloud\.com/[a-z0-9][\w-]{1,23}[a-z0-9]/\S+$`)
)

// blockedScriptHosts lists script hosts that never carry the client id.
var blockedScriptHosts = []string{"cookielaw.org"}

// FindScriptURLs returns the src attribute of every script tag in the
// document, in document order. Consent-manager scripts are skipped.
//
// Returns an empty slice when the page has no external scripts; the caller
// decides whether that is fatal.
func FindScriptURLs(htmlText string) []string {
	matches := scriptSrcPattern.FindAllStringSubmatch(htmlText, -1)
	urls := make([]string, 0, len(matches))
	for _, match := range matches {
		src := match[1]
		if src == "" {
			src = match[2]
		}
		src = strings.TrimSpace(html.UnescapeString(src))
		if src == "" || isBlockedScript(src) {
			continue
		}
		urls = append(urls, src)
	}
	return urls
}

func isBlockedScript(src string) bool {
	for _, host := range blockedScriptHosts {
		if strings.Contains(src, host) {
			return true
		}
	}
	return false
}

// FindClientID extracts the first client_id=... token from script text.
func FindClientID(scriptText string) (string, bool) {
	match := clientIDPattern.FindStringSubmatch(scriptText)
	if match == nil {
		return "", false
	}
	return match[1], true
}

// FindMetaContent returns the content attribute of the first meta tag whose
// property (or name) attribute equals property.
//
// SoundCloud pages carry the canonical object reference in
//
//	<meta property="twitter:app:url:googleplay" content="soundcloud://sounds:123456">
func FindMetaContent(htmlText, property string) (string, error) {
	for _, tag := range metaTagPattern.FindAllString(htmlText, -1) {
		attrs := parseAttributes(tag)
		if attrs["property"] != property && attrs["name"] != property {
			continue
		}
		content, ok := attrs["content"]
		if !ok {
			return "", fmt.Errorf("meta tag %q has no content attribute", property)
		}
		return content, nil
	}
	return "", fmt.Errorf("meta tag %q not found", property)
}

func parseAttributes(tag string) map[string]string {
	attrs := make(map[string]string)
	for _, match := range attrPattern.FindAllStringSubmatch(tag, -1) {
		name := strings.ToLower(match[1])
		if _, seen := attrs[name]; seen {
			continue
		}
		value := match[2]
		if value == "" {
			value = match[3]
		}
		attrs[name] = html.UnescapeString(value)
	}
	return attrs
}

// LargeArtworkURL rewrites a SoundCloud artwork URL to its 500x500 variant.
//
// Example:
//
//	LargeArtworkURL("https://i1.sndcdn.com/artworks-abc-large.jpg")
//	// "https://i1.sndcdn.com/artworks-abc-t500x500.jpg"
func LargeArtworkURL(artworkURL string) string {
	return strings.ReplaceAll(artworkURL, "large", "t500x500")
}

// IsTrackURL reports whether rawURL looks like a public SoundCloud permalink
// of the form https://soundcloud.com/<user>/<slug>.
//
// User names are 3 to 25 characters, start and end with a letter or digit and
// never contain two consecutive separators.
func IsTrackURL(rawURL string) bool {
	if !trackURLPattern.MatchString(rawURL) {
		return false
	}
	_, rest, _ := strings.Cut(rawURL, "soundcloud.com/")
	for _, pair := range []string{"--", "__", "-_", "_-"} {
		if strings.Contains(rest, pair) {
			return false
		}
	}
	return true
}
