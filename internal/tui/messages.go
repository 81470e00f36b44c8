package tui

import (
	"github.com/mmcdole/neurostream/internal/domain"
	"github.com/mmcdole/neurostream/internal/service"
)

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// FeedPageMsg carries a completed page request back to the UI loop
type FeedPageMsg struct {
	Category domain.Category
	Result   service.FetchResult
}

// DetailsLoadedMsg carries the detail lookup for the item shown in the modal
type DetailsLoadedMsg struct {
	ItemID string
	Detail *domain.Detail
	Err    error
}

// TrailerFoundMsg carries a trailer lookup result
type TrailerFoundMsg struct {
	Item    domain.Item
	Trailer domain.Trailer
	Err     error
	Play    bool // start playback once found
}

// TrailerStartedMsg signals that the external player was launched
type TrailerStartedMsg struct {
	ItemID   string
	Title    string
	Key      string
	FromReel bool // started for the item on screen in the reel
}

// StatusMsg represents a status message to display
type StatusMsg struct {
	Message string
	IsError bool
}

// ClearStatusMsg signals to clear the status message
type ClearStatusMsg struct{}
