package service

import "github.com/mmcdole/neurostream/internal/domain"

// TabState is the saved browsing state of one category tab
type TabState struct {
	Data    []domain.Item
	Page    int
	HasMore bool
	Query   string
}

// DefaultTabState is the state of a tab that has never been searched
func DefaultTabState() TabState {
	return TabState{
		Data:    nil,
		Page:    1,
		HasMore: true,
		Query:   "",
	}
}

// TabStore keeps one snapshot per category for the lifetime of the session
type TabStore struct {
	states map[domain.Category]TabState
}

// NewTabStore creates an empty store
func NewTabStore() *TabStore {
	return &TabStore{states: make(map[domain.Category]TabState)}
}

// Save stores a snapshot for the category, replacing any previous one
func (s *TabStore) Save(category domain.Category, state TabState) {
	// Clip capacity so a later append on the live slice can't write into the snapshot
	state.Data = state.Data[:len(state.Data):len(state.Data)]
	s.states[category] = state
}

// Restore returns the last snapshot for the category, or the default state
func (s *TabStore) Restore(category domain.Category) TabState {
	if state, ok := s.states[category]; ok {
		return state
	}
	return DefaultTabState()
}
