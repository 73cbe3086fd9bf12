package professionals

import (
	"context"
	"errors"
	"testing"

	"github.com/nfrund/propdesk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockServiceTypes struct {
	mock.Mock
}

func (m *mockServiceTypes) Create(ctx context.Context, st *domain.ServiceType) (*domain.ServiceType, error) {
	args := m.Called(ctx, st)
	return args.Get(0).(*domain.ServiceType), args.Error(1)
}

func (m *mockServiceTypes) FindByID(ctx context.Context, id string) (*domain.ServiceType, error) {
	args := m.Called(ctx, id)
	st, _ := args.Get(0).(*domain.ServiceType)
	return st, args.Error(1)
}

func (m *mockServiceTypes) FindByName(ctx context.Context, name string) (*domain.ServiceType, error) {
	args := m.Called(ctx, name)
	st, _ := args.Get(0).(*domain.ServiceType)
	return st, args.Error(1)
}

func (m *mockServiceTypes) List(ctx context.Context) ([]*domain.ServiceType, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*domain.ServiceType), args.Error(1)
}

func (m *mockServiceTypes) Update(ctx context.Context, st *domain.ServiceType) (*domain.ServiceType, error) {
	args := m.Called(ctx, st)
	return args.Get(0).(*domain.ServiceType), args.Error(1)
}

func (m *mockServiceTypes) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func TestResolveServiceTypes(t *testing.T) {
	ctx := context.Background()

	t.Run("dedupes and checks each id once", func(t *testing.T) {
		repo := &mockServiceTypes{}
		repo.On("FindByID", ctx, "a").Return(&domain.ServiceType{ID: "a"}, nil).Once()
		repo.On("FindByID", ctx, "b").Return(&domain.ServiceType{ID: "b"}, nil).Once()
		svc := NewService(repo, nil, nil, nil)

		ids, err := svc.resolveServiceTypes(ctx, []string{" a", "b", "a", ""})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, ids)
		repo.AssertExpectations(t)
	})

	t.Run("unknown id is a field error", func(t *testing.T) {
		repo := &mockServiceTypes{}
		repo.On("FindByID", ctx, "gone").Return(nil, domain.ErrNotFound)
		svc := NewService(repo, nil, nil, nil)

		_, err := svc.resolveServiceTypes(ctx, []string{"gone"})
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "service_type_ids")
	})

	t.Run("storage failures pass through", func(t *testing.T) {
		boom := errors.New("connection reset")
		repo := &mockServiceTypes{}
		repo.On("FindByID", ctx, "a").Return(nil, boom)
		svc := NewService(repo, nil, nil, nil)

		_, err := svc.resolveServiceTypes(ctx, []string{"a"})
		assert.ErrorIs(t, err, boom)
	})
}

func TestCreateServiceType_Conflict(t *testing.T) {
	ctx := context.Background()
	repo := &mockServiceTypes{}
	repo.On("FindByName", ctx, "Notaría").Return(&domain.ServiceType{ID: "other", Name: "notaría"}, nil)
	svc := NewService(repo, nil, nil, nil)

	_, err := svc.CreateServiceType(ctx, ServiceTypeInput{Name: " Notaría "})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
