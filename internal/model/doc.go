// Package model defines the local download layout: which tracks go into which
// folder and under which file names.
//
// # Collection
//
// Collection is a playlist (or a single track) with computed file paths:
//
//	c := model.NewCollection("Artist", "Set Title", artworkURL, releaseDate, pathConfig)
//	fmt.Println(c.Path)        // Where to save the tracks
//	fmt.Println(c.ArtworkPath) // Where to save cover art
//
// # Track
//
// Track is a single file within a collection:
//
//	track := model.NewTrack(c, 1, "Song Title", "Artist", 180.5, 123456, trackConfig)
//	fmt.Println(track.Path) // Full path where track will be saved
//
// Available placeholders: {artist}, {playlist}, {album}, {title}, {tracknum},
// {id}, {year}, {month}, {day}
package model
