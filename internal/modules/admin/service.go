package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"museumtix/internal/domain"
	"museumtix/internal/pkg/llm"
	"museumtix/internal/pkg/validator"
	"museumtix/internal/repository"

	"github.com/gosimple/slug"
)

type Service struct {
	museums  MuseumRepository
	events   EventRepository
	users    UserRepository
	bookings BookingLister
	chatLogs ChatLogStats
	model    llm.Client
	now      func() time.Time
}

func NewService(
	museums MuseumRepository,
	events EventRepository,
	users UserRepository,
	bookings BookingLister,
	chatLogs ChatLogStats,
	model llm.Client,
) *Service {
	return &Service{
		museums:  museums,
		events:   events,
		users:    users,
		bookings: bookings,
		chatLogs: chatLogs,
		model:    model,
		now:      time.Now,
	}
}

func mapRepoErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrDuplicateKey):
		return fmt.Errorf("%w: id already in use", ErrConflict)
	case errors.Is(err, repository.ErrCapacityExceeded):
		return fmt.Errorf("%w: capacity is below tickets already sold", ErrConflict)
	}
	return err
}

func invalid(errs map[string]string) error {
	parts := make([]string, 0, len(errs))
	for field, tag := range errs {
		parts = append(parts, field+"="+tag)
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(parts, ", "))
}

// -------------------- Museums --------------------

func (s *Service) ListMuseums(ctx context.Context) ([]domain.Museum, error) {
	return s.museums.List(ctx, "")
}

func (s *Service) CreateMuseum(ctx context.Context, req MuseumRequest) (*domain.Museum, error) {
	if errs := validator.Validate(req); errs != nil {
		return nil, invalid(errs)
	}
	id := strings.TrimSpace(req.ID)
	if id == "" {
		id = slug.Make(req.Name)
	}
	now := s.now().UTC()
	m := &domain.Museum{ID: id, CreatedAt: now}
	applyMuseum(m, req)
	m.UpdatedAt = now
	if err := s.museums.Create(ctx, m); err != nil {
		return nil, mapRepoErr(err)
	}
	return m, nil
}

func (s *Service) UpdateMuseum(ctx context.Context, id string, req MuseumRequest) (*domain.Museum, error) {
	if errs := validator.Validate(req); errs != nil {
		return nil, invalid(errs)
	}
	m, err := s.museums.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	applyMuseum(m, req)
	m.UpdatedAt = s.now().UTC()
	if err := s.museums.Update(ctx, m); err != nil {
		return nil, mapRepoErr(err)
	}
	return m, nil
}

// DeleteMuseum refuses to orphan events; delete them first.
func (s *Service) DeleteMuseum(ctx context.Context, id string) error {
	n, err := s.events.CountByMuseum(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: museum still has %d events", ErrConflict, n)
	}
	return mapRepoErr(s.museums.Delete(ctx, id))
}

func applyMuseum(m *domain.Museum, req MuseumRequest) {
	m.Name = strings.TrimSpace(req.Name)
	m.Description = req.Description
	m.Location = domain.Location{
		Address: strings.TrimSpace(req.Address),
		City:    strings.TrimSpace(req.City),
		Country: strings.TrimSpace(req.Country),
	}
	m.OpenHours = req.OpenHours
	m.ImageURL = req.ImageURL
	m.ImageHint = req.ImageHint
}

// -------------------- Events --------------------

func (s *Service) ListEvents(ctx context.Context, museumID string) ([]domain.Event, error) {
	return s.events.List(ctx, repository.EventFilter{MuseumID: museumID})
}

func (s *Service) checkEvent(ctx context.Context, req EventRequest) error {
	if errs := validator.Validate(req); errs != nil {
		return invalid(errs)
	}
	if req.EndTime <= req.StartTime {
		return fmt.Errorf("%w: end_time must be after start_time", ErrValidation)
	}
	if _, err := s.museums.GetByID(ctx, req.MuseumID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: unknown museum %q", ErrValidation, req.MuseumID)
		}
		return err
	}
	return nil
}

func (s *Service) CreateEvent(ctx context.Context, req EventRequest) (*domain.Event, error) {
	if err := s.checkEvent(ctx, req); err != nil {
		return nil, err
	}
	id := strings.TrimSpace(req.ID)
	if id == "" {
		id = slug.Make(req.Title + " " + req.Date)
	}
	now := s.now().UTC()
	e := &domain.Event{ID: id, CreatedAt: now}
	applyEvent(e, req)
	e.UpdatedAt = now
	if err := s.events.Create(ctx, e); err != nil {
		return nil, mapRepoErr(err)
	}
	return e, nil
}

func (s *Service) UpdateEvent(ctx context.Context, id string, req EventRequest) (*domain.Event, error) {
	if err := s.checkEvent(ctx, req); err != nil {
		return nil, err
	}
	e, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	applyEvent(e, req)
	e.UpdatedAt = s.now().UTC()
	if err := s.events.Update(ctx, e); err != nil {
		return nil, mapRepoErr(err)
	}
	return s.events.GetByID(ctx, id)
}

func (s *Service) DeleteEvent(ctx context.Context, id string) error {
	return mapRepoErr(s.events.Delete(ctx, id))
}

func applyEvent(e *domain.Event, req EventRequest) {
	e.MuseumID = req.MuseumID
	e.Title = strings.TrimSpace(req.Title)
	e.Description = req.Description
	e.Date = req.Date
	e.StartTime = req.StartTime
	e.EndTime = req.EndTime
	e.Capacity = req.Capacity
	e.BasePrice = req.BasePrice
	e.ImageURL = req.ImageURL
	e.ImageHint = req.ImageHint
}

// -------------------- Users --------------------

func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

func (s *Service) UpdateUserRole(ctx context.Context, adminID, userID, role string) (*domain.User, error) {
	r, ok := domain.ParseUserRole(role)
	if !ok {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}
	if adminID == userID && r != domain.RoleAdmin {
		return nil, fmt.Errorf("%w: admins cannot demote themselves", ErrConflict)
	}
	if err := s.users.UpdateRole(ctx, userID, r); err != nil {
		return nil, mapRepoErr(err)
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return u, nil
}
