package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/neurostream/internal/domain"
	"github.com/mmcdole/neurostream/internal/service"
)

const trailerLookupTimeout = 15 * time.Second

// Command factories for async operations

// FetchPageCmd runs a page request dispatched by the feed controller.
// A nil request (rejected or coalesced) produces no command.
func FetchPageCmd(feed *service.FeedController, category domain.Category, req *service.FetchRequest) tea.Cmd {
	if req == nil {
		return nil
	}
	return func() tea.Msg {
		return FeedPageMsg{Category: category, Result: feed.Run(req)}
	}
}

// LoadDetailsCmd fetches the detail record for the item shown in the modal
func LoadDetailsCmd(svc *service.DetailService, category domain.Category, itemID string) tea.Cmd {
	return func() tea.Msg {
		detail, err := svc.Get(context.Background(), category, itemID)
		return DetailsLoadedMsg{ItemID: itemID, Detail: detail, Err: err}
	}
}

// LookupTrailerCmd resolves the trailer for an item, optionally starting it
func LookupTrailerCmd(svc *service.TrailerService, category domain.Category, item domain.Item, play bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), trailerLookupTimeout)
		defer cancel()

		trailer, err := svc.Lookup(ctx, category, item)
		return TrailerFoundMsg{Item: item, Trailer: trailer, Err: err, Play: play}
	}
}

// PlayTrailerCmd launches the external player for a trailer. fromReel marks
// playback tied to the reel item on screen.
func PlayTrailerCmd(svc *service.TrailerService, item domain.Item, trailer domain.Trailer, fromReel bool) tea.Cmd {
	return func() tea.Msg {
		if err := svc.Play(trailer); err != nil {
			return ErrMsg{Err: err, Context: "playing trailer"}
		}
		return TrailerStartedMsg{ItemID: item.ID, Title: item.Title, Key: trailer.Key, FromReel: fromReel}
	}
}

// OpenSearchCmd opens a YouTube trailer search in the system browser
func OpenSearchCmd(svc *service.TrailerService, category domain.Category, item domain.Item) tea.Cmd {
	return func() tea.Msg {
		if err := svc.OpenSearch(category, item.Title, item.DisplayYear()); err != nil {
			return ErrMsg{Err: err, Context: "opening browser"}
		}
		return StatusMsg{Message: "Opened YouTube search for " + item.Title}
	}
}

// ClearStatusCmd returns a command that clears status after a delay
func ClearStatusCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
