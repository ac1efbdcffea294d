package profiles

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/devconnector-api/internal/api"
	"github.com/FACorreiaa/devconnector-api/internal/api/auth"
	"github.com/FACorreiaa/devconnector-api/internal/types"
)

// MockProfileService is a mock implementation of the ProfileService interface
type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) profile(args mock.Arguments) (*types.Profile, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Profile), args.Error(1)
}

func (m *MockProfileService) GetMine(ctx context.Context, userID uuid.UUID) (*types.Profile, error) {
	return m.profile(m.Called(ctx, userID))
}

func (m *MockProfileService) Upsert(ctx context.Context, userID uuid.UUID, params types.UpsertProfileParams) (*types.Profile, error) {
	return m.profile(m.Called(ctx, userID, params))
}

func (m *MockProfileService) List(ctx context.Context) ([]*types.Profile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*types.Profile), args.Error(1)
}

func (m *MockProfileService) GetByUser(ctx context.Context, userID uuid.UUID) (*types.Profile, error) {
	return m.profile(m.Called(ctx, userID))
}

func (m *MockProfileService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockProfileService) AddExperience(ctx context.Context, userID uuid.UUID, params types.ExperienceParams) (*types.Profile, error) {
	return m.profile(m.Called(ctx, userID, params))
}

func (m *MockProfileService) RemoveExperience(ctx context.Context, userID, expID uuid.UUID) (*types.Profile, error) {
	return m.profile(m.Called(ctx, userID, expID))
}

func (m *MockProfileService) AddEducation(ctx context.Context, userID uuid.UUID, params types.EducationParams) (*types.Profile, error) {
	return m.profile(m.Called(ctx, userID, params))
}

func (m *MockProfileService) RemoveEducation(ctx context.Context, userID, eduID uuid.UUID) (*types.Profile, error) {
	return m.profile(m.Called(ctx, userID, eduID))
}

func newRequest(method string, body []byte, userID uuid.UUID, id string) *http.Request {
	req := httptest.NewRequest(method, "/api/profile", bytes.NewReader(body))
	rctx := chi.NewRouteContext()
	if id != "" {
		rctx.URLParams.Add("id", id)
	}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	if userID != uuid.Nil {
		ctx = auth.WithUserID(ctx, userID)
	}
	return req.WithContext(ctx)
}

func TestHandler_GetMyProfile(t *testing.T) {
	service := new(MockProfileService)
	handler := NewHandlerImpl(service, slog.Default())
	userID := uuid.New()

	t.Run("Found", func(t *testing.T) {
		profile := &types.Profile{ID: uuid.New(), UserID: userID, Status: "Dev", Skills: []string{"go"},
			User: &types.UserSummary{ID: userID, Name: "Jane"}}
		service.On("GetMine", mock.Anything, userID).Return(profile, nil).Once()

		w := httptest.NewRecorder()
		handler.GetMyProfile(w, newRequest(http.MethodGet, nil, userID, ""))

		assert.Equal(t, http.StatusOK, w.Code)
		var got map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, "Dev", got["status"])
		assert.Equal(t, "Jane", got["user"].(map[string]interface{})["name"])
		assert.NotContains(t, got, "version")
	})

	t.Run("Missing", func(t *testing.T) {
		service.On("GetMine", mock.Anything, userID).Return(nil, errNoProfile).Once()

		w := httptest.NewRecorder()
		handler.GetMyProfile(w, newRequest(http.MethodGet, nil, userID, ""))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"success":false,"msg":"There is no profile for this user."}`, w.Body.String())
	})

	t.Run("NoIdentity", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.GetMyProfile(w, newRequest(http.MethodGet, nil, uuid.Nil, ""))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestHandler_UpsertProfile(t *testing.T) {
	service := new(MockProfileService)
	handler := NewHandlerImpl(service, slog.Default())
	userID := uuid.New()

	t.Run("Validation", func(t *testing.T) {
		verr := &api.ValidationError{Fields: []api.FieldError{
			{Msg: "Status is required.", Param: "status", Location: "body"},
			{Msg: "Skills is required", Param: "skills", Location: "body"},
		}}
		service.On("Upsert", mock.Anything, userID, types.UpsertProfileParams{}).Return(nil, verr).Once()

		w := httptest.NewRecorder()
		handler.UpsertProfile(w, newRequest(http.MethodPost, []byte(`{}`), userID, ""))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var resp struct {
			Errors []api.FieldError `json:"errors"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Len(t, resp.Errors, 2)
	})

	t.Run("UnknownField", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.UpsertProfile(w, newRequest(http.MethodPost, []byte(`{"user":"someone-else"}`), userID, ""))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		service.AssertExpectations(t)
	})
}

func TestHandler_ListProfiles(t *testing.T) {
	service := new(MockProfileService)
	handler := NewHandlerImpl(service, slog.Default())
	service.On("List", mock.Anything).Return([]*types.Profile{{ID: uuid.New()}, {ID: uuid.New()}}, nil).Once()

	w := httptest.NewRecorder()
	handler.ListProfiles(w, newRequest(http.MethodGet, nil, uuid.Nil, ""))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp types.ProfileList
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.Count)
	assert.Len(t, resp.Data, 2)
}

func TestHandler_GetProfileByUser(t *testing.T) {
	service := new(MockProfileService)
	handler := NewHandlerImpl(service, slog.Default())

	t.Run("MalformedID", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.GetProfileByUser(w, newRequest(http.MethodGet, nil, uuid.Nil, "42"))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"success":false,"msg":"Not found profile with id of 42"}`, w.Body.String())
	})

	t.Run("Found", func(t *testing.T) {
		userID := uuid.New()
		service.On("GetByUser", mock.Anything, userID).Return(&types.Profile{ID: uuid.New(), UserID: userID}, nil).Once()

		w := httptest.NewRecorder()
		handler.GetProfileByUser(w, newRequest(http.MethodGet, nil, uuid.Nil, userID.String()))

		assert.Equal(t, http.StatusOK, w.Code)
		var resp api.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
	})
}

func TestHandler_DeleteAccount(t *testing.T) {
	service := new(MockProfileService)
	handler := NewHandlerImpl(service, slog.Default())
	userID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		service.On("DeleteAccount", mock.Anything, userID).Return(nil).Once()

		w := httptest.NewRecorder()
		handler.DeleteAccount(w, newRequest(http.MethodDelete, nil, userID, ""))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":true,"msg":"User deleted."}`, w.Body.String())
	})

	t.Run("Partial", func(t *testing.T) {
		service.On("DeleteAccount", mock.Anything, userID).
			Return(errors.Join(api.ErrPartialDelete, errors.New("timeout"))).Once()

		w := httptest.NewRecorder()
		handler.DeleteAccount(w, newRequest(http.MethodDelete, nil, userID, ""))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"success":false,"msg":"Account deletion is incomplete, please retry."}`, w.Body.String())
	})
}

func TestHandler_RemoveExperience(t *testing.T) {
	service := new(MockProfileService)
	handler := NewHandlerImpl(service, slog.Default())
	userID, expID := uuid.New(), uuid.New()

	service.On("RemoveExperience", mock.Anything, userID, expID).
		Return(nil, api.WithMessage(api.ErrNotFound, "Not found experience with id of %s", expID)).Once()

	w := httptest.NewRecorder()
	handler.RemoveExperience(w, newRequest(http.MethodDelete, nil, userID, expID.String()))

	assert.Equal(t, http.StatusNotFound, w.Code)
	service.AssertExpectations(t)
}

func TestHandler_AddEducation(t *testing.T) {
	service := new(MockProfileService)
	handler := NewHandlerImpl(service, slog.Default())
	userID := uuid.New()
	params := types.EducationParams{School: "MIT", Degree: "BSc", FieldOfStudy: "CS", From: "2010-09-01"}
	body, err := json.Marshal(params)
	require.NoError(t, err)

	profile := &types.Profile{ID: uuid.New(), UserID: userID, Education: []types.Education{{ID: uuid.New(), School: "MIT"}}}
	service.On("AddEducation", mock.Anything, userID, params).Return(profile, nil).Once()

	w := httptest.NewRecorder()
	handler.AddEducation(w, newRequest(http.MethodPut, body, userID, ""))

	assert.Equal(t, http.StatusOK, w.Code)
	var got types.Profile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got.Education, 1)
	assert.Equal(t, "MIT", got.Education[0].School)
}
