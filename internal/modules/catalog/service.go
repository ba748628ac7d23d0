package catalog

import (
	"context"
	"errors"
	"time"

	"museumtix/internal/domain"
	"museumtix/internal/repository"
)

var ErrNotFound = errors.New("not found")

type Service struct {
	museums MuseumReader
	events  EventReader
	now     func() time.Time
}

func NewService(museums MuseumReader, events EventReader) *Service {
	return &Service{museums: museums, events: events, now: time.Now}
}

func (s *Service) today() string {
	return s.now().UTC().Format(domain.DateLayout)
}

func (s *Service) ListMuseums(ctx context.Context, city string) ([]domain.Museum, error) {
	return s.museums.List(ctx, city)
}

func (s *Service) GetMuseum(ctx context.Context, id string) (*MuseumDetail, error) {
	m, err := s.museums.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	events, err := s.events.List(ctx, repository.EventFilter{MuseumID: id, FromDate: s.today()})
	if err != nil {
		return nil, err
	}

	detail := &MuseumDetail{Museum: *m, Events: make([]EventView, 0, len(events))}
	for _, e := range events {
		detail.Events = append(detail.Events, toView(e))
	}
	return detail, nil
}

func (s *Service) ListEvents(ctx context.Context, q EventQuery) ([]EventView, error) {
	f := repository.EventFilter{MuseumID: q.MuseumID}
	if q.Upcoming {
		f.FromDate = s.today()
	}
	events, err := s.events.List(ctx, f)
	if err != nil {
		return nil, err
	}

	out := make([]EventView, 0, len(events))
	for _, e := range events {
		out = append(out, toView(e))
	}
	return out, nil
}

func (s *Service) GetEvent(ctx context.Context, id string) (*EventView, error) {
	e, err := s.events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	v := toView(*e)
	return &v, nil
}

// Snapshot returns all museums with their upcoming events.
func (s *Service) Snapshot(ctx context.Context) (*Snapshot, error) {
	museums, err := s.museums.List(ctx, "")
	if err != nil {
		return nil, err
	}
	events, err := s.events.List(ctx, repository.EventFilter{FromDate: s.today()})
	if err != nil {
		return nil, err
	}
	return &Snapshot{Museums: museums, Events: events}, nil
}
