package promotion

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"museumtix/internal/domain"
	"museumtix/internal/repository"
)

type MockPromotionRepository struct {
	mock.Mock
}

func (m *MockPromotionRepository) List(ctx context.Context, activeOnly bool) ([]domain.Promotion, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Promotion), args.Error(1)
}

func (m *MockPromotionRepository) GetByID(ctx context.Context, id string) (*domain.Promotion, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Promotion), args.Error(1)
}

func (m *MockPromotionRepository) GetByCode(ctx context.Context, code string) (*domain.Promotion, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Promotion), args.Error(1)
}

func (m *MockPromotionRepository) Create(ctx context.Context, p *domain.Promotion) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPromotionRepository) Update(ctx context.Context, p *domain.Promotion) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPromotionRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func TestService_Create_NormalizesCode(t *testing.T) {
	repo := new(MockPromotionRepository)
	svc := NewService(repo)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.Promotion) bool {
		return p.Code == "SPRING25" && p.Active
	})).Return(nil)

	p, err := svc.Create(context.Background(), UpsertPromotionRequest{Title: "Spring", DiscountPercent: 25, Code: "spring25"})
	require.NoError(t, err)
	assert.Equal(t, "SPRING25", p.Code)
	repo.AssertExpectations(t)
}

func TestService_Create_RejectsBadPercent(t *testing.T) {
	svc := NewService(new(MockPromotionRepository))

	_, err := svc.Create(context.Background(), UpsertPromotionRequest{Title: "Free", DiscountPercent: 150, Code: "FREE"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(context.Background(), UpsertPromotionRequest{Title: "Zero", DiscountPercent: 0, Code: "ZERO"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestService_Create_DuplicateCode(t *testing.T) {
	repo := new(MockPromotionRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return(repository.ErrDuplicateKey)

	_, err := NewService(repo).Create(context.Background(), UpsertPromotionRequest{Title: "Dup", DiscountPercent: 5, Code: "DUP"})
	assert.ErrorIs(t, err, ErrDuplicateCode)
}

func TestService_Lookup_InactiveIsNotFound(t *testing.T) {
	repo := new(MockPromotionRepository)
	repo.On("GetByCode", mock.Anything, "OLD").Return(&domain.Promotion{Code: "OLD", Active: false}, nil)
	repo.On("GetByCode", mock.Anything, "NEW").Return(&domain.Promotion{Code: "NEW", Active: true, DiscountPercent: 10}, nil)
	svc := NewService(repo)

	_, err := svc.Lookup(context.Background(), " old ")
	assert.ErrorIs(t, err, ErrNotFound)

	p, err := svc.Lookup(context.Background(), "new")
	require.NoError(t, err)
	assert.Equal(t, 45.0, p.Apply(50))
}

func TestPromotion_Apply(t *testing.T) {
	p := &domain.Promotion{Active: true, DiscountPercent: 15}
	assert.Equal(t, 63.75, p.Apply(75))

	p.Active = false
	assert.Equal(t, 75.0, p.Apply(75))

	var none *domain.Promotion
	assert.Equal(t, 10.0, none.Apply(10))
}
