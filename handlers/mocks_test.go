package handlers

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/upb/studio-dashboard/models"
)

// MockProfileRepository is a mock implementation of repositories.ProfileRepository
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileRepository) RoleBySubject(ctx context.Context, subject uuid.UUID) (string, error) {
	args := m.Called(ctx, subject)
	return args.String(0), args.Error(1)
}

// MockDesignRepository is a mock implementation of repositories.DesignRepository
type MockDesignRepository struct {
	mock.Mock
}

func (m *MockDesignRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Design, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Design), args.Error(1)
}

func (m *MockDesignRepository) List(ctx context.Context, filter models.DesignFilter) ([]*models.Design, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Design), args.Error(1)
}

func (m *MockDesignRepository) Steps(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockPriceTierRepository is a mock implementation of repositories.PriceTierRepository
type MockPriceTierRepository struct {
	mock.Mock
}

func (m *MockPriceTierRepository) List(ctx context.Context) ([]*models.PriceTier, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PriceTier), args.Error(1)
}
