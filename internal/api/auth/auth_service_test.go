package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/FACorreiaa/devconnector-api/internal/api"
	"github.com/FACorreiaa/devconnector-api/internal/types"
)

// MockAuthRepo is a mock implementation of the AuthRepo interface
type MockAuthRepo struct {
	mock.Mock
}

func (m *MockAuthRepo) Create(ctx context.Context, user *types.UserAuth) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockAuthRepo) GetByEmail(ctx context.Context, email string) (*types.UserAuth, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.UserAuth), args.Error(1)
}

func (m *MockAuthRepo) GetByID(ctx context.Context, userID uuid.UUID) (*types.UserAuth, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.UserAuth), args.Error(1)
}

func (m *MockAuthRepo) GetByIDs(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]*types.UserAuth, error) {
	args := m.Called(ctx, userIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]*types.UserAuth), args.Error(1)
}

func (m *MockAuthRepo) Delete(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func newTestAuthService(repo AuthRepo) (*AuthServiceImpl, *JWTTokenService) {
	tokens := NewTokenService(testJWTConfig())
	svc := NewAuthService(repo, tokens, nil, slog.Default())
	svc.hashCost = bcrypt.MinCost
	return svc, tokens
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service, tokens := newTestAuthService(mockRepo)

		var created *types.UserAuth
		mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*types.UserAuth")).
			Run(func(args mock.Arguments) { created = args.Get(1).(*types.UserAuth) }).
			Return(nil).Once()

		token, err := service.Register(ctx, types.RegisterParams{
			Name:     " Jane Doe ",
			Email:    "Jane@Example.com",
			Password: "secret1",
		})
		require.NoError(t, err)
		require.NotNil(t, created)

		assert.Equal(t, "Jane Doe", created.Name)
		assert.Equal(t, "jane@example.com", created.Email)
		assert.Equal(t, GravatarURL("jane@example.com"), created.Avatar)
		assert.NotEqual(t, "secret1", created.Password)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.Password), []byte("secret1")))

		userID, err := tokens.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, created.ID, userID)
		mockRepo.AssertExpectations(t)
	})

	t.Run("ValidationFailure", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service, _ := newTestAuthService(mockRepo)

		_, err := service.Register(ctx, types.RegisterParams{Email: "not-an-email", Password: "123"})
		require.ErrorIs(t, err, api.ErrValidation)

		var verr *api.ValidationError
		require.True(t, errors.As(err, &verr))
		params := make([]string, 0, len(verr.Fields))
		for _, f := range verr.Fields {
			params = append(params, f.Param)
		}
		assert.Equal(t, []string{"name", "email", "password"}, params)
		mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("PasswordTooLong", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service, _ := newTestAuthService(mockRepo)

		_, err := service.Register(ctx, types.RegisterParams{
			Name: "U", Email: "u@example.com", Password: strings.Repeat("a", 80),
		})
		require.ErrorIs(t, err, api.ErrValidation)
		assert.Equal(t, http.StatusBadRequest, api.StatusFor(err))

		var verr *api.ValidationError
		require.True(t, errors.As(err, &verr))
		require.Len(t, verr.Fields, 1)
		assert.Equal(t, "password", verr.Fields[0].Param)
		mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("EmailTaken", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service, _ := newTestAuthService(mockRepo)

		mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*types.UserAuth")).Return(api.ErrEmailTaken).Once()

		token, err := service.Register(ctx, types.RegisterParams{Name: "Jane", Email: "jane@example.com", Password: "secret1"})
		assert.ErrorIs(t, err, api.ErrEmailTaken)
		assert.Empty(t, token)
		mockRepo.AssertExpectations(t)
	})

	t.Run("RepositoryError", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service, _ := newTestAuthService(mockRepo)

		mockRepo.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection reset")).Once()

		_, err := service.Register(ctx, types.RegisterParams{Name: "Jane", Email: "jane@example.com", Password: "secret1"})
		require.Error(t, err)
		assert.Equal(t, 500, api.StatusFor(err))
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &types.UserAuth{ID: uuid.New(), Name: "Jane", Email: "jane@example.com", Password: string(hash)}

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service, tokens := newTestAuthService(mockRepo)
		mockRepo.On("GetByEmail", mock.Anything, "jane@example.com").Return(user, nil).Once()

		token, err := service.Login(ctx, types.LoginParams{Email: "JANE@example.com", Password: "secret1"})
		require.NoError(t, err)

		userID, err := tokens.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, userID)
		mockRepo.AssertExpectations(t)
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service, _ := newTestAuthService(mockRepo)
		mockRepo.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, api.ErrNotFound).Once()

		_, err := service.Login(ctx, types.LoginParams{Email: "nobody@example.com", Password: "secret1"})
		assert.ErrorIs(t, err, api.ErrInvalidCredentials)
		mockRepo.AssertExpectations(t)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service, _ := newTestAuthService(mockRepo)
		mockRepo.On("GetByEmail", mock.Anything, "jane@example.com").Return(user, nil).Once()

		_, err := service.Login(ctx, types.LoginParams{Email: "jane@example.com", Password: "wrong-password"})
		assert.ErrorIs(t, err, api.ErrInvalidCredentials)
		assert.Equal(t, "Invalid credentials.", api.MessageFor(err))
		mockRepo.AssertExpectations(t)
	})

	t.Run("MissingPassword", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service, _ := newTestAuthService(mockRepo)

		_, err := service.Login(ctx, types.LoginParams{Email: "jane@example.com"})
		assert.ErrorIs(t, err, api.ErrValidation)
		mockRepo.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
	})
}

func TestCurrentUser(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockAuthRepo)
	service, _ := newTestAuthService(mockRepo)
	user := &types.UserAuth{ID: uuid.New(), Name: "Jane"}

	mockRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil).Once()
	got, err := service.CurrentUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user, got)

	missing := uuid.New()
	mockRepo.On("GetByID", mock.Anything, missing).Return(nil, api.ErrNotFound).Once()
	_, err = service.CurrentUser(ctx, missing)
	assert.ErrorIs(t, err, api.ErrNotFound)
	mockRepo.AssertExpectations(t)
}

func TestGravatarURL(t *testing.T) {
	url := GravatarURL(" Jane@Example.com ")
	assert.Equal(t, GravatarURL("jane@example.com"), url)
	assert.True(t, strings.HasPrefix(url, "//www.gravatar.com/avatar/"))
	assert.True(t, strings.HasSuffix(url, "?s=200&r=pg&d=mm"))
}
