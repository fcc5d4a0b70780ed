// Package audio provides ID3 tagging and playlist generation for downloaded
// tracks.
//
// # ID3 Tagging
//
// Tagger implements soundcloud.TagWriter and tags the assembled MP3 in place:
//
//	tagger := audio.NewTagger(audio.DefaultTagConfig())
//	err := client.WriteMP3To(ctx, track, part,
//	    soundcloud.WithTagger(tagger.At(audio.Position{Number: 3, Total: 12, Album: "Winter Set"})))
//
// The tagger supports:
//   - Artist, Album Artist
//   - Album Title, Track Title, Genre
//   - Track Number, Year, Date
//   - Comments (permalink)
//   - Cover Art (embedded in MP3)
//
// # Playlist Generation
//
//	creator := audio.NewPlaylistCreator(model.PlaylistFormatM3U, true) // extended M3U
//	content := creator.CreatePlaylist(collection)
//
// Supported formats:
//   - M3U (with optional extended info)
//   - PLS
//   - WPL (Windows Media Player)
//   - ZPL (Zune Media Player)
package audio
