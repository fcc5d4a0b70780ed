package audio

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"testing"
	"time"

	"github.com/bogem/id3v2"
	"github.com/handiism/soundcloud-downloader/internal/soundcloud"
)

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
	if end := m.pos + int64(len(p)); end > int64(len(m.data)) {
		m.data = append(m.data, make([]byte, end-int64(len(m.data)))...)
	}
	n := copy(m.data[m.pos:], p)
	m.pos += int64(n)
	return n, nil
}

func (m *memSink) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		m.pos = offset
	case io.SeekCurrent:
		m.pos += offset
	case io.SeekEnd:
		m.pos = int64(len(m.data)) + offset
	}
	return m.pos, nil
}

func (m *memSink) Truncate(size int64) error {
	m.data = m.data[:size]
	return nil
}

const fakeAudio = "\xff\xfb\x90\x00 not really mpeg frames"

func testTrack() *soundcloud.Track {
	return &soundcloud.Track{
		ID:           255374012,
		Title:        "Cold Nights",
		Genre:        "Ambient",
		PermalinkURL: "https://soundcloud.com/mt-marcy/cold-nights",
		CreatedAt:    time.Date(2016, 4, 6, 12, 0, 0, 0, time.UTC),
		User:         soundcloud.User{ID: 7, Username: "mt-marcy"},
	}
}

func testArtwork(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		img.Set(x, x, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error: %v", err)
	}
	return buf.Bytes()
}

func parseSink(t *testing.T, sink *memSink) (*id3v2.Tag, []byte) {
	t.Helper()
	size := id3Size(sink.data)
	if size == 0 {
		t.Fatalf("sink has no ID3 tag")
	}
	tag, err := id3v2.ParseReader(bytes.NewReader(sink.data[:size]), id3v2.Options{Parse: true})
	if err != nil {
		t.Fatalf("ParseReader() error: %v", err)
	}
	return tag, sink.data[size:]
}

func textFrame(tag *id3v2.Tag, id string) string {
	return tag.GetTextFrame(id).Text
}

func TestTagger_WriteTags(t *testing.T) {
	sink := &memSink{data: []byte(fakeAudio)}
	tagger := NewTagger(nil)

	if err := tagger.WriteTags(sink, testTrack(), testArtwork(t)); err != nil {
		t.Fatalf("WriteTags() error: %v", err)
	}
	if sink.pos != 0 {
		t.Errorf("sink position = %d, want 0", sink.pos)
	}

	tag, audio := parseSink(t, sink)
	if string(audio) != fakeAudio {
		t.Errorf("audio after tag = %q, want %q", audio, fakeAudio)
	}

	tests := []struct {
		id   string
		want string
	}{
		{"TPE1", "mt-marcy"},
		{"TPE2", "mt-marcy"},
		{"TIT2", "Cold Nights"},
		{"TCON", "Ambient"},
		{"TYER", "2016"},
		{"TDRC", "2016-04-06"},
		{"TALB", ""},
		{"TRCK", ""},
	}
	for _, tt := range tests {
		if got := textFrame(tag, tt.id); got != tt.want {
			t.Errorf("%s = %q, want %q", tt.id, got, tt.want)
		}
	}

	pics := tag.GetFrames(tag.CommonID("Attached picture"))
	if len(pics) != 1 {
		t.Fatalf("attached pictures = %d, want 1", len(pics))
	}
	pic := pics[0].(id3v2.PictureFrame)
	if pic.MimeType != "image/jpeg" {
		t.Errorf("picture MIME = %q, want image/jpeg", pic.MimeType)
	}
}

func TestTagger_At(t *testing.T) {
	sink := &memSink{data: []byte(fakeAudio)}
	tagger := NewTagger(nil).At(Position{Number: 3, Total: 12, Album: "Winter Set", AlbumArtist: "curator"})

	if err := tagger.WriteTags(sink, testTrack(), nil); err != nil {
		t.Fatalf("WriteTags() error: %v", err)
	}

	tag, _ := parseSink(t, sink)
	if got := textFrame(tag, "TRCK"); got != "3/12" {
		t.Errorf("TRCK = %q, want %q", got, "3/12")
	}
	if got := textFrame(tag, "TALB"); got != "Winter Set" {
		t.Errorf("TALB = %q, want %q", got, "Winter Set")
	}
	if got := textFrame(tag, "TPE2"); got != "curator" {
		t.Errorf("TPE2 = %q, want %q", got, "curator")
	}
	if got := textFrame(tag, "TPE1"); got != "mt-marcy" {
		t.Errorf("TPE1 = %q, want %q", got, "mt-marcy")
	}
}

func TestTagger_Retag(t *testing.T) {
	sink := &memSink{data: []byte(fakeAudio)}
	first := NewTagger(nil)
	if err := first.WriteTags(sink, testTrack(), testArtwork(t)); err != nil {
		t.Fatalf("first WriteTags() error: %v", err)
	}
	firstLen := len(sink.data)

	cfg := DefaultTagConfig()
	cfg.Genre = TagDoNotModify
	cfg.Comments = TagModify
	cfg.CoverArt = false
	track := testTrack()
	track.Title = "Cold Nights (Edit)"
	track.Genre = "Changed"

	if err := NewTagger(cfg).WriteTags(sink, track, nil); err != nil {
		t.Fatalf("second WriteTags() error: %v", err)
	}

	tag, audio := parseSink(t, sink)
	if string(audio) != fakeAudio {
		t.Errorf("audio after retag = %q, want %q", audio, fakeAudio)
	}
	if got := textFrame(tag, "TIT2"); got != "Cold Nights (Edit)" {
		t.Errorf("TIT2 = %q, want the new title", got)
	}
	if got := textFrame(tag, "TCON"); got != "Ambient" {
		t.Errorf("TCON = %q, want the kept genre %q", got, "Ambient")
	}
	if n := len(tag.GetFrames(tag.CommonID("Attached picture"))); n != 1 {
		t.Errorf("attached pictures = %d, want the kept cover", n)
	}
	comments := tag.GetFrames("COMM")
	if len(comments) != 1 || comments[0].(id3v2.CommentFrame).Text != track.PermalinkURL {
		t.Errorf("comments = %v, want the permalink", comments)
	}
	if len(sink.data) > firstLen+len(track.PermalinkURL)+64 {
		t.Errorf("sink grew to %d bytes, stale data not truncated", len(sink.data))
	}
}

func TestTagger_EmptyActions(t *testing.T) {
	sink := &memSink{data: []byte(fakeAudio)}
	if err := NewTagger(nil).WriteTags(sink, testTrack(), nil); err != nil {
		t.Fatalf("WriteTags() error: %v", err)
	}

	cfg := DefaultTagConfig()
	cfg.Artist = TagEmpty
	if err := NewTagger(cfg).WriteTags(sink, testTrack(), nil); err != nil {
		t.Fatalf("WriteTags() error: %v", err)
	}

	tag, _ := parseSink(t, sink)
	if got := textFrame(tag, "TPE1"); got != "" {
		t.Errorf("TPE1 = %q, want empty", got)
	}
	if got := textFrame(tag, "TIT2"); got != "Cold Nights" {
		t.Errorf("TIT2 = %q, want %q", got, "Cold Nights")
	}
}

func TestParseTagEditAction(t *testing.T) {
	tests := []struct {
		input string
		want  TagEditAction
	}{
		{"empty", TagEmpty},
		{"modify", TagModify},
		{"keep", TagDoNotModify},
		{"do_not_modify", TagDoNotModify},
		{"", TagModify},
	}
	for _, tt := range tests {
		if got := ParseTagEditAction(tt.input); got != tt.want {
			t.Errorf("ParseTagEditAction(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestID3Size(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want int
	}{
		{name: "no tag", data: []byte(fakeAudio), want: 0},
		{name: "short", data: []byte("ID3"), want: 0},
		{name: "header", data: append([]byte("ID3\x04\x00\x00\x00\x00\x01\x00"), make([]byte, 200)...), want: 138},
		{name: "footer", data: append([]byte("ID3\x04\x00\x10\x00\x00\x00\x05"), make([]byte, 40)...), want: 25},
		{name: "not syncsafe", data: []byte("ID3\x04\x00\x00\x00\x00\x80\x00rest"), want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := id3Size(tt.data); got != tt.want {
				t.Errorf("id3Size() = %d, want %d", got, tt.want)
			}
		})
	}
}
