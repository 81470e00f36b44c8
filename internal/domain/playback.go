package domain

// Playback is a running trailer in an external player
type Playback interface {
	// Stop ends playback. Stopping twice, or stopping a player that already
	// exited, is not an error.
	Stop() error
}

// NoPlayback is returned when the video was handed to a process we cannot
// control (a browser, "open -a")
type NoPlayback struct{}

func (NoPlayback) Stop() error { return nil }
