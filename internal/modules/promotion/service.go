package promotion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"museumtix/internal/domain"
	"museumtix/internal/pkg/validator"
	"museumtix/internal/repository"

	"github.com/google/uuid"
)

type Service struct {
	promos PromotionRepository
}

func NewService(promos PromotionRepository) *Service {
	return &Service{promos: promos}
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func mapRepoErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrDuplicateKey):
		return ErrDuplicateCode
	}
	return err
}

func (s *Service) ListActive(ctx context.Context) ([]domain.Promotion, error) {
	return s.promos.List(ctx, true)
}

func (s *Service) ListAll(ctx context.Context) ([]domain.Promotion, error) {
	return s.promos.List(ctx, false)
}

// Lookup returns the active promotion with the given code.
func (s *Service) Lookup(ctx context.Context, code string) (*domain.Promotion, error) {
	p, err := s.promos.GetByCode(ctx, normalizeCode(code))
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if !p.Active {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *Service) Create(ctx context.Context, req UpsertPromotionRequest) (*domain.Promotion, error) {
	if errs := validator.Validate(req); errs != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, errs)
	}
	now := time.Now().UTC()
	p := &domain.Promotion{
		ID:              uuid.NewString(),
		Title:           strings.TrimSpace(req.Title),
		Description:     req.Description,
		DiscountPercent: req.DiscountPercent,
		Code:            normalizeCode(req.Code),
		Active:          req.Active == nil || *req.Active,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.promos.Create(ctx, p); err != nil {
		return nil, mapRepoErr(err)
	}
	return p, nil
}

func (s *Service) Update(ctx context.Context, id string, req UpsertPromotionRequest) (*domain.Promotion, error) {
	if errs := validator.Validate(req); errs != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, errs)
	}
	p, err := s.promos.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	p.Title = strings.TrimSpace(req.Title)
	p.Description = req.Description
	p.DiscountPercent = req.DiscountPercent
	p.Code = normalizeCode(req.Code)
	if req.Active != nil {
		p.Active = *req.Active
	}
	p.UpdatedAt = time.Now().UTC()
	if err := s.promos.Update(ctx, p); err != nil {
		return nil, mapRepoErr(err)
	}
	return p, nil
}

func (s *Service) SetActive(ctx context.Context, id string, active bool) (*domain.Promotion, error) {
	p, err := s.promos.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	p.Active = active
	p.UpdatedAt = time.Now().UTC()
	if err := s.promos.Update(ctx, p); err != nil {
		return nil, mapRepoErr(err)
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return mapRepoErr(s.promos.Delete(ctx, id))
}
