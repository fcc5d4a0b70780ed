package ioutils

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"normal-file.mp3", "normal-file.mp3"},
		{"file:with:colons.mp3", "file_with_colons.mp3"},
		{"file<with>brackets.mp3", "file_with_brackets.mp3"},
		{"file/with\\slashes.mp3", "file_with_slashes.mp3"},
		{"file|with|pipes.mp3", "file_with_pipes.mp3"},
		{"file?with*wildcards.mp3", "file_with_wildcards.mp3"},
		{"file\"with\"quotes.mp3", "file_with_quotes.mp3"},
		{"trailing dots...", "trailing dots"},
		{"multiple   spaces", "multiple spaces"},
		{"trailing spaces   ", "trailing spaces"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := SanitizeFileName(tt.input)
			if got != tt.want {
				t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestPartFile_Commit(t *testing.T) {
	final := filepath.Join(t.TempDir(), "Set", "01 Song.mp3")

	part, err := CreatePart(final)
	if err != nil {
		t.Fatalf("CreatePart() error: %v", err)
	}
	if _, err := part.Write([]byte("audio")); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if FileExists(final) {
		t.Errorf("final file exists before Commit")
	}
	if err := part.Commit(); err != nil {
		t.Fatalf("Commit() error: %v", err)
	}

	data, err := os.ReadFile(final)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if string(data) != "audio" {
		t.Errorf("final content = %q, want %q", data, "audio")
	}
	if _, err := os.Stat(final + PartSuffix); !os.IsNotExist(err) {
		t.Errorf("part file still present after Commit")
	}
}

func TestPartFile_Abort(t *testing.T) {
	final := filepath.Join(t.TempDir(), "song.mp3")

	part, err := CreatePart(final)
	if err != nil {
		t.Fatalf("CreatePart() error: %v", err)
	}
	part.Write([]byte("half"))
	if err := part.Abort(); err != nil {
		t.Fatalf("Abort() error: %v", err)
	}

	for _, path := range []string{final, final + PartSuffix} {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("%s exists after Abort", filepath.Base(path))
		}
	}
}

func TestFitWithin(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		wantW, wantH int
	}{
		{name: "smaller is kept", w: 300, h: 200, wantW: 300, wantH: 200},
		{name: "landscape", w: 1500, h: 1000, wantW: 1000, wantH: 666},
		{name: "portrait", w: 1000, h: 2000, wantW: 500, wantH: 1000},
		{name: "square", w: 3000, h: 3000, wantW: 1000, wantH: 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := fitWithin(tt.w, tt.h, 1000, 1000)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("fitWithin(%d, %d) = %dx%d, want %dx%d", tt.w, tt.h, w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error: %v", err)
	}
	return buf.Bytes()
}

func TestImageService_Prepare(t *testing.T) {
	svc := NewImageService()
	ctx := context.Background()
	src := testPNG(t, 40, 20)

	if ImageExtension(src) != ".png" {
		t.Errorf("ImageExtension(png) = %q, want .png", ImageExtension(src))
	}

	same, err := svc.Prepare(ctx, src, ArtworkOptions{})
	if err != nil || !bytes.Equal(same, src) {
		t.Errorf("Prepare() with zero options changed the image (err %v)", err)
	}

	converted, err := svc.Prepare(ctx, src, ArtworkOptions{ConvertToJPEG: true})
	if err != nil {
		t.Fatalf("Prepare(convert) error: %v", err)
	}
	if MimeType(converted) != "image/jpeg" {
		t.Errorf("converted MIME = %q, want image/jpeg", MimeType(converted))
	}

	resized, err := svc.Prepare(ctx, src, ArtworkOptions{Resize: true, MaxSize: 10})
	if err != nil {
		t.Fatalf("Prepare(resize) error: %v", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(resized))
	if err != nil {
		t.Fatalf("resized image is not JPEG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 10 || b.Dy() != 5 {
		t.Errorf("resized to %dx%d, want 10x5", b.Dx(), b.Dy())
	}

	if _, err := svc.Prepare(ctx, []byte("not an image"), ArtworkOptions{ConvertToJPEG: true}); err == nil {
		t.Errorf("Prepare() on garbage succeeded, want error")
	}
}
