package ports

import "context"

// SupportedAudioExtensions lists the file types the local store accepts.
var SupportedAudioExtensions = []string{".mp3", ".opus", ".ogg", ".wav", ".flac"}

// LocalAudioStore keeps downloaded copies of audio files and serves them to
// the audio node over HTTP when it cannot fetch the original URL itself.
type LocalAudioStore interface {
	// Enabled reports whether a public URL is configured for the store.
	Enabled() bool

	// Download fetches sourceURL into the store and returns the stored file name.
	Download(ctx context.Context, sourceURL, fileName string) (string, error)

	// URL returns the address the audio node should load a stored file from.
	URL(storedName string) string

	// Remove deletes a stored file. Removing a missing file is not an error.
	Remove(storedName string) error
}
