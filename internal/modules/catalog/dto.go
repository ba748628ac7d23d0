package catalog

import "museumtix/internal/domain"

type EventView struct {
	domain.Event
	Remaining int `json:"remaining"`
}

type MuseumDetail struct {
	domain.Museum
	Events []EventView `json:"events"`
}

type EventQuery struct {
	MuseumID string `form:"museumId"`
	Upcoming bool   `form:"upcoming"`
}

// Snapshot is the read-only reference catalog used to resolve names in conversation.
type Snapshot struct {
	Museums []domain.Museum
	Events  []domain.Event
}

func (s *Snapshot) Museum(id string) *domain.Museum {
	for i := range s.Museums {
		if s.Museums[i].ID == id {
			return &s.Museums[i]
		}
	}
	return nil
}

func (s *Snapshot) Event(id string) *domain.Event {
	for i := range s.Events {
		if s.Events[i].ID == id {
			return &s.Events[i]
		}
	}
	return nil
}

func (s *Snapshot) EventsOf(museumID string) []domain.Event {
	var out []domain.Event
	for _, e := range s.Events {
		if e.MuseumID == museumID {
			out = append(out, e)
		}
	}
	return out
}

func toView(e domain.Event) EventView {
	return EventView{Event: e, Remaining: e.Remaining()}
}
