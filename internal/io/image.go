package ioutils

import (
	"bytes"
	"context"
	"image"
	_ "image/gif" // GIF decoder registration
	"image/jpeg"
	_ "image/png" // PNG decoder registration
	"net/http"

	"golang.org/x/image/draw"
)

const jpegQuality = 90

// ArtworkOptions controls how cover art is prepared before it is saved or
// embedded. The zero value leaves the image untouched.
type ArtworkOptions struct {
	// Resize shrinks the image to fit within MaxSize x MaxSize.
	Resize  bool
	MaxSize int

	// ConvertToJPEG re-encodes the image as JPEG.
	ConvertToJPEG bool
}

// ImageService provides image processing operations for cover art.
//
// ImageService is used to:
//   - Resize images to fit maximum dimensions (for embedding in MP3 or saving)
//   - Convert images to JPEG format (for better compatibility)
//
// Example usage:
//
//	svc := NewImageService()
//	art, err := svc.Prepare(ctx, artwork, ArtworkOptions{Resize: true, MaxSize: 500, ConvertToJPEG: true})
type ImageService struct{}

// NewImageService creates a new ImageService.
func NewImageService() *ImageService {
	return &ImageService{}
}

// Prepare applies opts to data. SoundCloud serves 500x500 JPEG artwork, so
// with default settings this is usually a decode-free passthrough.
func (s *ImageService) Prepare(ctx context.Context, data []byte, opts ArtworkOptions) ([]byte, error) {
	var err error
	if opts.Resize && opts.MaxSize > 0 {
		data, err = s.ResizeImage(ctx, data, opts.MaxSize, opts.MaxSize)
		if err != nil {
			return nil, err
		}
		// ResizeImage already produced JPEG.
		return data, nil
	}
	if opts.ConvertToJPEG && MimeType(data) != "image/jpeg" {
		return s.ConvertToJPEG(ctx, data)
	}
	return data, nil
}

// ResizeImage resizes an image to fit within the specified maximum dimensions.
//
// The aspect ratio is preserved and images are never enlarged. The result is
// JPEG-encoded. Catmull-Rom is used for high-quality scaling.
//
// Example:
//
//	// A 1500x1000 image becomes 1000x666
//	resized, err := svc.ResizeImage(ctx, imageData, 1000, 1000)
func (s *ImageService) ResizeImage(ctx context.Context, data []byte, maxWidth, maxHeight int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	width, height := fitWithin(bounds.Dx(), bounds.Dy(), maxWidth, maxHeight)

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// fitWithin scales width x height down to fit the bounds, keeping the ratio.
func fitWithin(width, height, maxWidth, maxHeight int) (int, int) {
	if width <= maxWidth && height <= maxHeight {
		return width, height
	}
	ratio := float64(width) / float64(height)
	if float64(maxWidth)/float64(maxHeight) > ratio {
		return max(1, int(float64(maxHeight)*ratio)), maxHeight
	}
	return maxWidth, max(1, int(float64(maxWidth)/ratio))
}

// ConvertToJPEG re-encodes an image (JPEG, PNG or GIF) as JPEG with 90%
// quality.
func (s *ImageService) ConvertToJPEG(ctx context.Context, data []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MimeType sniffs the media type of image data, e.g. "image/png".
func MimeType(data []byte) string {
	return http.DetectContentType(data)
}

// ImageExtension returns the file extension matching the image data,
// including the dot. Unknown data maps to ".jpg".
func ImageExtension(data []byte) string {
	switch MimeType(data) {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	default:
		return ".jpg"
	}
}
