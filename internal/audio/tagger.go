package audio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/bogem/id3v2"
	ioutils "github.com/handiism/soundcloud-downloader/internal/io"
	"github.com/handiism/soundcloud-downloader/internal/soundcloud"
)

// TagEditAction defines how to handle individual ID3 tags.
//
// Each tag field can be configured independently to determine whether
// it should be modified, cleared, or left unchanged.
type TagEditAction int

const (
	// TagEmpty clears the tag value.
	TagEmpty TagEditAction = iota

	// TagModify updates the tag with the value from SoundCloud.
	TagModify

	// TagDoNotModify leaves the existing tag value unchanged.
	TagDoNotModify
)

// ParseTagEditAction maps a settings value ("empty", "modify", "keep") to a
// TagEditAction. Unknown values mean TagModify.
func ParseTagEditAction(s string) TagEditAction {
	switch s {
	case "empty":
		return TagEmpty
	case "keep", "do_not_modify":
		return TagDoNotModify
	default:
		return TagModify
	}
}

// TagConfig holds tagging configuration for each ID3 field.
//
// Example:
//
//	cfg := &TagConfig{
//	    ModifyTags:  true,
//	    Artist:      TagModify,      // Credited artist
//	    Album:       TagModify,      // Playlist or publisher album
//	    TrackTitle:  TagModify,
//	    Genre:       TagModify,
//	    Comments:    TagEmpty,       // Clear any existing comments
//	    AlbumArtist: TagDoNotModify,
//	}
type TagConfig struct {
	// ModifyTags is a master switch. If false, no text frames are modified.
	ModifyTags bool

	// Artist controls the TPE1 (Lead artist) frame.
	Artist TagEditAction

	// AlbumArtist controls the TPE2 (Album artist) frame.
	AlbumArtist TagEditAction

	// Album controls the TALB (Album title) frame.
	Album TagEditAction

	// Year controls the TYER (Year) frame.
	Year TagEditAction

	// Date controls the TDRC (Recording time) frame (ID3v2.4).
	Date TagEditAction

	// TrackNumber controls the TRCK (Track number) frame. Only written for
	// tracks downloaded as part of a playlist.
	TrackNumber TagEditAction

	// TrackTitle controls the TIT2 (Title) frame.
	TrackTitle TagEditAction

	// Genre controls the TCON (Content type) frame.
	Genre TagEditAction

	// Comments controls the COMM (Comments) frame, filled with the permalink.
	Comments TagEditAction

	// CoverArt embeds the artwork as an APIC frame.
	CoverArt bool

	// Artwork is applied to cover art before embedding.
	Artwork ioutils.ArtworkOptions
}

// DefaultTagConfig returns the default tag configuration.
//
// By default all text frames are set from SoundCloud data except comments,
// which are cleared. Cover art is embedded as a JPEG of at most 1000x1000.
func DefaultTagConfig() *TagConfig {
	return &TagConfig{
		ModifyTags:  true,
		Artist:      TagModify,
		AlbumArtist: TagModify,
		Album:       TagModify,
		Year:        TagModify,
		Date:        TagModify,
		TrackNumber: TagModify,
		TrackTitle:  TagModify,
		Genre:       TagModify,
		Comments:    TagEmpty,
		CoverArt:    true,
		Artwork: ioutils.ArtworkOptions{
			Resize:        true,
			MaxSize:       1000,
			ConvertToJPEG: true,
		},
	}
}

// Position places a track inside the playlist it was downloaded with.
type Position struct {
	Number      int
	Total       int
	Album       string
	AlbumArtist string
}

// Tagger writes ID3 tags into assembled MP3 data.
//
// Tagger uses the id3v2 library and works on any io.ReadWriteSeeker, so the
// same code tags files on disk and in-memory buffers. It writes:
//   - Artist, Album Artist, Album, Title, Genre
//   - Track Number (playlist position), Year, Date
//   - Comments (permalink)
//   - Cover Art (attached picture)
//
// Tagger implements soundcloud.TagWriter.
//
// Example:
//
//	tagger := NewTagger(DefaultTagConfig())
//	client, _ := soundcloud.NewClient(soundcloud.Config{Fetcher: f, Tagger: tagger})
type Tagger struct {
	config *TagConfig
	images *ioutils.ImageService
}

// NewTagger creates a new Tagger with the given configuration.
//
// If config is nil, DefaultTagConfig() is used.
func NewTagger(config *TagConfig) *Tagger {
	if config == nil {
		config = DefaultTagConfig()
	}
	return &Tagger{config: config, images: ioutils.NewImageService()}
}

// WriteTags tags the MP3 held by sink using track metadata only.
func (t *Tagger) WriteTags(sink io.ReadWriteSeeker, track *soundcloud.Track, artwork []byte) error {
	return t.WriteTagsAt(sink, track, artwork, nil)
}

// At returns a TagWriter that also records the playlist position.
func (t *Tagger) At(pos Position) soundcloud.TagWriter {
	return &positionedTagger{tagger: t, pos: pos}
}

type positionedTagger struct {
	tagger *Tagger
	pos    Position
}

func (p *positionedTagger) WriteTags(sink io.ReadWriteSeeker, track *soundcloud.Track, artwork []byte) error {
	return p.tagger.WriteTagsAt(sink, track, artwork, &p.pos)
}

// WriteTagsAt tags the MP3 held by sink.
//
// This method:
//  1. Reads the whole sink and splits off any existing ID3v2 tag
//  2. Updates text frames based on TagConfig
//  3. Embeds cover art if artwork bytes are provided
//  4. Rewrites the sink as tag + audio, truncating leftovers when possible
//
// The sink is left positioned at its start. pos may be nil.
func (t *Tagger) WriteTagsAt(sink io.ReadWriteSeeker, track *soundcloud.Track, artwork []byte, pos *Position) error {
	if _, err := sink.Seek(0, io.SeekStart); err != nil {
		return err
	}
	data, err := io.ReadAll(sink)
	if err != nil {
		return err
	}

	tag, audio, err := splitTag(data)
	if err != nil {
		return fmt.Errorf("parse existing tag: %w", err)
	}
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)

	if t.config.ModifyTags {
		t.updateStringTags(tag, track, pos)
	}

	if t.config.CoverArt && len(artwork) > 0 {
		// Undecodable artwork is embedded as served.
		if prepared, err := t.images.Prepare(context.Background(), artwork, t.config.Artwork); err == nil {
			artwork = prepared
		}
		updateArtwork(tag, artwork)
	}

	var out bytes.Buffer
	if _, err := tag.WriteTo(&out); err != nil {
		return fmt.Errorf("encode tag: %w", err)
	}
	out.Write(audio)

	if _, err := sink.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if _, err := sink.Write(out.Bytes()); err != nil {
		return err
	}
	if tr, ok := sink.(interface{ Truncate(int64) error }); ok {
		if err := tr.Truncate(int64(out.Len())); err != nil {
			return err
		}
	}
	_, err = sink.Seek(0, io.SeekStart)
	return err
}

// splitTag separates a leading ID3v2 tag from the audio frames. Data without
// a tag yields an empty tag and the data unchanged.
func splitTag(data []byte) (*id3v2.Tag, []byte, error) {
	size := id3Size(data)
	if size == 0 {
		return id3v2.NewEmptyTag(), data, nil
	}
	tag, err := id3v2.ParseReader(bytes.NewReader(data[:size]), id3v2.Options{Parse: true})
	if err != nil {
		return nil, nil, err
	}
	return tag, data[size:], nil
}

// id3Size returns the total size of a leading ID3v2 tag including header and
// footer, or 0 if data does not start with one.
func id3Size(data []byte) int {
	if len(data) < 10 || string(data[:3]) != "ID3" {
		return 0
	}
	for _, b := range data[6:10] {
		if b&0x80 != 0 {
			return 0
		}
	}
	size := int(data[6])<<21 | int(data[7])<<14 | int(data[8])<<7 | int(data[9])
	size += 10
	if data[5]&0x10 != 0 {
		size += 10
	}
	return min(size, len(data))
}

// setText applies action to a text frame.
func setText(tag *id3v2.Tag, id string, action TagEditAction, value string) {
	switch action {
	case TagEmpty:
		tag.DeleteFrames(id)
	case TagModify:
		if value == "" {
			tag.DeleteFrames(id)
			return
		}
		tag.AddTextFrame(id, id3v2.EncodingUTF8, value)
	}
}

// updateStringTags updates text-based ID3 frames based on configuration.
func (t *Tagger) updateStringTags(tag *id3v2.Tag, track *soundcloud.Track, pos *Position) {
	album, albumArtist := track.Album(), track.Artist()
	if pos != nil {
		if pos.Album != "" {
			album = pos.Album
		}
		if pos.AlbumArtist != "" {
			albumArtist = pos.AlbumArtist
		}
	}

	released := track.Released()
	var year, date string
	if !released.IsZero() {
		year, date = released.Format("2006"), released.Format("2006-01-02")
	}

	setText(tag, "TPE1", t.config.Artist, track.Artist())
	setText(tag, "TPE2", t.config.AlbumArtist, albumArtist)
	setText(tag, "TALB", t.config.Album, album)
	setText(tag, "TIT2", t.config.TrackTitle, track.Title)
	setText(tag, "TCON", t.config.Genre, track.Genre)
	setText(tag, "TYER", t.config.Year, year)
	setText(tag, "TDRC", t.config.Date, date)

	var number string
	if pos != nil && pos.Number > 0 {
		number = strconv.Itoa(pos.Number)
		if pos.Total > 0 {
			number += "/" + strconv.Itoa(pos.Total)
		}
	}
	if t.config.TrackNumber != TagModify || number != "" {
		setText(tag, "TRCK", t.config.TrackNumber, number)
	}

	switch t.config.Comments {
	case TagEmpty:
		tag.DeleteFrames("COMM")
	case TagModify:
		tag.DeleteFrames("COMM")
		if track.PermalinkURL != "" {
			tag.AddCommentFrame(id3v2.CommentFrame{
				Encoding:    id3v2.EncodingUTF8,
				Language:    "eng",
				Description: "",
				Text:        track.PermalinkURL,
			})
		}
	}
}

// updateArtwork embeds cover art as the front cover picture frame.
func updateArtwork(tag *id3v2.Tag, artwork []byte) {
	tag.DeleteFrames(tag.CommonID("Attached picture"))

	tag.AddAttachedPicture(id3v2.PictureFrame{
		Encoding:    id3v2.EncodingUTF8,
		MimeType:    ioutils.MimeType(artwork),
		PictureType: id3v2.PTFrontCover,
		Description: "Cover",
		Picture:     artwork,
	})
}
