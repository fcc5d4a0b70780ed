package soundcloud

import (
	"slices"
	"testing"
)

func TestFindScriptURLs(t *testing.T) {
	tests := []struct {
		name string
		html string
		want []string
	}{
		{
			name: "document order",
			html: `<html><head>
				<script crossorigin src="https://a-v2.sndcdn.com/assets/0-aaa.js"></script>
				<script>window.__sc_hydration = [];</script>
				<script src='https://a-v2.sndcdn.com/assets/49-bbb.js'></script>
			</head></html>`,
			want: []string{
				"https://a-v2.sndcdn.com/assets/0-aaa.js",
				"https://a-v2.sndcdn.com/assets/49-bbb.js",
			},
		},
		{
			name: "consent manager skipped",
			html: `<script src="https://cdn.cookielaw.org/scripttemplates/otSDKStub.js"></script>
				<script src="https://a-v2.sndcdn.com/assets/2-ccc.js"></script>`,
			want: []string{"https://a-v2.sndcdn.com/assets/2-ccc.js"},
		},
		{
			name: "entities unescaped",
			html: `<script src="/assets/app.js?a=1&amp;b=2"></script>`,
			want: []string{"/assets/app.js?a=1&b=2"},
		},
		{
			name: "no scripts",
			html: `<html><body>nothing</body></html>`,
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindScriptURLs(tt.html)
			if !slices.Equal(got, tt.want) {
				t.Errorf("FindScriptURLs() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFindClientID(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   string
		wantOK bool
	}{
		{
			name:   "query parameter",
			text:   `fetch("https://api-v2.soundcloud.com/me?client_id=AbC123xyz&app_version=1")`,
			want:   "AbC123xyz",
			wantOK: true,
		},
		{
			name:   "first match wins",
			text:   `client_id=first1 client_id=second2`,
			want:   "first1",
			wantOK: true,
		},
		{
			name:   "object key is not enough",
			text:   `{client_id:"nope"}`,
			wantOK: false,
		},
		{
			name:   "empty",
			text:   "",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FindClientID(tt.text)
			if ok != tt.wantOK {
				t.Fatalf("FindClientID() ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("FindClientID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFindMetaContent(t *testing.T) {
	page := `<html><head>
		<meta charset="utf-8">
		<meta property="og:title" content="Cold Nights">
		<meta content="soundcloud://sounds:255374012" property="twitter:app:url:googleplay">
		<meta name="twitter:app:name:iphone" content="SoundCloud">
	</head></html>`

	tests := []struct {
		name     string
		property string
		want     string
		wantErr  bool
	}{
		{name: "content after property", property: "og:title", want: "Cold Nights"},
		{name: "content before property", property: "twitter:app:url:googleplay", want: "soundcloud://sounds:255374012"},
		{name: "name attribute", property: "twitter:app:name:iphone", want: "SoundCloud"},
		{name: "missing", property: "og:image", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindMetaContent(page, tt.property)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("FindMetaContent() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLargeArtworkURL(t *testing.T) {
	got := LargeArtworkURL("https://i1.sndcdn.com/artworks-000123-abcdef-large.jpg")
	want := "https://i1.sndcdn.com/artworks-000123-abcdef-t500x500.jpg"
	if got != want {
		t.Errorf("LargeArtworkURL() = %q, want %q", got, want)
	}
}

func TestIsTrackURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://soundcloud.com/mt-marcy/cold-nights", true},
		{"http://soundcloud.com/user_1/some-track", true},
		{"https://soundcloud.com/ab/too-short-user", false},
		{"https://soundcloud.com/user--name/track", false},
		{"https://soundcloud.com/user-_name/track", false},
		{"https://soundcloud.com/username", false},
		{"https://example.com/user/track", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := IsTrackURL(tt.url); got != tt.want {
				t.Errorf("IsTrackURL(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestParseManifest(t *testing.T) {
	manifest := "#EXTM3U\n" +
		"#EXT-X-VERSION:6\n" +
		"#EXTINF:1.985272,\n" +
		"https://cf-hls-media.sndcdn.com/media/0/31762/abc.128.mp3\n" +
		"#EXTINF:9.978776,\r\n" +
		"https://cf-hls-media.sndcdn.com/media/31762/230948/abc.128.mp3\r\n" +
		"\n" +
		"#EXT-X-ENDLIST\n"

	want := []string{
		"https://cf-hls-media.sndcdn.com/media/0/31762/abc.128.mp3",
		"https://cf-hls-media.sndcdn.com/media/31762/230948/abc.128.mp3",
	}
	if got := ParseManifest(manifest); !slices.Equal(got, want) {
		t.Errorf("ParseManifest() = %q, want %q", got, want)
	}
}
