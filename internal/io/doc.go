// Package ioutils provides file system and image processing utilities.
//
// # Partial Files
//
// Tracks are written to "<name>.part" and only renamed when complete, so an
// interrupted run never leaves a truncated MP3 under its final name:
//
//	part, err := ioutils.CreatePart("/music/Set/01 Song.mp3")
//	// write through part (an *os.File opened O_RDWR)
//	err = part.Commit()
//
// # Filename Sanitization
//
// Use SanitizeFileName to remove invalid characters from filenames:
//
//	safe := ioutils.SanitizeFileName("Song: Part 1/2") // Returns "Song_ Part 1_2"
//
// # Image Processing
//
// The ImageService handles cover art manipulation:
//
//	svc := ioutils.NewImageService()
//	art, err := svc.Prepare(ctx, imageData, ioutils.ArtworkOptions{
//	    Resize:        true,
//	    MaxSize:       500,
//	    ConvertToJPEG: true,
//	})
package ioutils
