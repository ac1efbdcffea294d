package profiles

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/devconnector-api/internal/api"
	"github.com/FACorreiaa/devconnector-api/internal/api/auth"
	"github.com/FACorreiaa/devconnector-api/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	GetMyProfile(w http.ResponseWriter, r *http.Request)
	UpsertProfile(w http.ResponseWriter, r *http.Request)
	ListProfiles(w http.ResponseWriter, r *http.Request)
	GetProfileByUser(w http.ResponseWriter, r *http.Request)
	DeleteAccount(w http.ResponseWriter, r *http.Request)
	AddExperience(w http.ResponseWriter, r *http.Request)
	RemoveExperience(w http.ResponseWriter, r *http.Request)
	AddEducation(w http.ResponseWriter, r *http.Request)
	RemoveEducation(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	profileService ProfileService
	logger         *slog.Logger
}

// NewHandlerImpl creates a new profile HandlerImpl instance.
func NewHandlerImpl(profileService ProfileService, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		profileService: profileService,
		logger:         logger,
	}
}

func (h *HandlerImpl) start(r *http.Request, name, route string) (trace.Span, *http.Request) {
	ctx, span := otel.Tracer("ProfileHandler").Start(r.Context(), name, trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String(route),
	))
	return span, r.WithContext(ctx)
}

func pathID(w http.ResponseWriter, r *http.Request, kind string) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusNotFound, "Not found "+kind+" with id of "+raw)
		return uuid.Nil, false
	}
	return id, true
}

func (h *HandlerImpl) respond(w http.ResponseWriter, r *http.Request, span trace.Span, profile *types.Profile, err error, op string) {
	if err != nil {
		span.SetStatus(codes.Error, op+" failed")
		api.WriteError(w, r, h.logger, err)
		return
	}
	span.SetStatus(codes.Ok, op+" succeeded")
	api.WriteJSONResponse(w, r, http.StatusOK, profile)
}

// GetMyProfile godoc
// @Summary      Get the caller's profile
// @Tags         Profiles
// @Produce      json
// @Success      200 {object} types.Profile
// @Failure      401 {object} api.Response
// @Failure      404 {object} api.Response
// @Security     ApiKeyAuth
// @Router       /profile/me [get]
func (h *HandlerImpl) GetMyProfile(w http.ResponseWriter, r *http.Request) {
	span, r := h.start(r, "GetMyProfile", "/api/profile/me")
	defer span.End()

	userID, ok := auth.RequireUserID(w, r)
	if !ok {
		return
	}
	profile, err := h.profileService.GetMine(r.Context(), userID)
	h.respond(w, r, span, profile, err, "get profile")
}

// UpsertProfile godoc
// @Summary      Create or update the caller's profile
// @Description  Skills is a comma separated list. Empty optional fields keep their stored value.
// @Tags         Profiles
// @Accept       json
// @Produce      json
// @Param        body body types.UpsertProfileParams true "Profile fields"
// @Success      200 {object} types.Profile
// @Failure      400 {object} api.Response
// @Failure      401 {object} api.Response
// @Security     ApiKeyAuth
// @Router       /profile [post]
func (h *HandlerImpl) UpsertProfile(w http.ResponseWriter, r *http.Request) {
	span, r := h.start(r, "UpsertProfile", "/api/profile")
	defer span.End()

	userID, ok := auth.RequireUserID(w, r)
	if !ok {
		return
	}

	var params types.UpsertProfileParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		span.SetStatus(codes.Error, "invalid body")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	profile, err := h.profileService.Upsert(r.Context(), userID, params)
	h.respond(w, r, span, profile, err, "upsert profile")
}

// ListProfiles godoc
// @Summary      List all profiles
// @Tags         Profiles
// @Produce      json
// @Success      200 {object} types.ProfileList
// @Router       /profile [get]
func (h *HandlerImpl) ListProfiles(w http.ResponseWriter, r *http.Request) {
	span, r := h.start(r, "ListProfiles", "/api/profile")
	defer span.End()

	profiles, err := h.profileService.List(r.Context())
	if err != nil {
		span.SetStatus(codes.Error, "list failed")
		api.WriteError(w, r, h.logger, err)
		return
	}

	span.SetStatus(codes.Ok, "profiles listed")
	api.WriteJSONResponse(w, r, http.StatusOK, types.ProfileList{
		Success: true,
		Count:   len(profiles),
		Data:    profiles,
	})
}

// GetProfileByUser godoc
// @Summary      Get a user's profile
// @Tags         Profiles
// @Produce      json
// @Param        id path string true "User ID"
// @Success      200 {object} api.Response{msg=types.Profile}
// @Failure      404 {object} api.Response
// @Router       /profile/user/{id} [get]
func (h *HandlerImpl) GetProfileByUser(w http.ResponseWriter, r *http.Request) {
	span, r := h.start(r, "GetProfileByUser", "/api/profile/user/{id}")
	defer span.End()

	userID, ok := pathID(w, r, "profile")
	if !ok {
		return
	}

	profile, err := h.profileService.GetByUser(r.Context(), userID)
	if err != nil {
		span.SetStatus(codes.Error, "get failed")
		api.WriteError(w, r, h.logger, err)
		return
	}

	span.SetStatus(codes.Ok, "profile loaded")
	api.WriteJSONResponse(w, r, http.StatusOK, api.Response{Success: true, Msg: profile})
}

// DeleteAccount godoc
// @Summary      Delete the caller's posts, profile and account
// @Tags         Profiles
// @Produce      json
// @Success      200 {object} api.Response
// @Failure      401 {object} api.Response
// @Failure      500 {object} api.Response
// @Security     ApiKeyAuth
// @Router       /profile [delete]
func (h *HandlerImpl) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	span, r := h.start(r, "DeleteAccount", "/api/profile")
	defer span.End()

	userID, ok := auth.RequireUserID(w, r)
	if !ok {
		return
	}

	if err := h.profileService.DeleteAccount(r.Context(), userID); err != nil {
		span.SetStatus(codes.Error, "delete failed")
		api.WriteError(w, r, h.logger, err)
		return
	}

	span.SetStatus(codes.Ok, "account deleted")
	api.WriteJSONResponse(w, r, http.StatusOK, api.Response{Success: true, Msg: "User deleted."})
}

// AddExperience godoc
// @Summary      Add an experience entry
// @Tags         Profiles
// @Accept       json
// @Produce      json
// @Param        body body types.ExperienceParams true "Experience"
// @Success      200 {object} types.Profile
// @Failure      400 {object} api.Response
// @Failure      404 {object} api.Response
// @Security     ApiKeyAuth
// @Router       /profile/experience [put]
func (h *HandlerImpl) AddExperience(w http.ResponseWriter, r *http.Request) {
	span, r := h.start(r, "AddExperience", "/api/profile/experience")
	defer span.End()

	userID, ok := auth.RequireUserID(w, r)
	if !ok {
		return
	}

	var params types.ExperienceParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		span.SetStatus(codes.Error, "invalid body")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	profile, err := h.profileService.AddExperience(r.Context(), userID, params)
	h.respond(w, r, span, profile, err, "add experience")
}

// RemoveExperience godoc
// @Summary      Remove an experience entry
// @Tags         Profiles
// @Produce      json
// @Param        id path string true "Experience ID"
// @Success      200 {object} types.Profile
// @Failure      404 {object} api.Response
// @Security     ApiKeyAuth
// @Router       /profile/experience/{id} [delete]
func (h *HandlerImpl) RemoveExperience(w http.ResponseWriter, r *http.Request) {
	span, r := h.start(r, "RemoveExperience", "/api/profile/experience/{id}")
	defer span.End()

	userID, ok := auth.RequireUserID(w, r)
	if !ok {
		return
	}
	expID, ok := pathID(w, r, "experience")
	if !ok {
		return
	}

	profile, err := h.profileService.RemoveExperience(r.Context(), userID, expID)
	h.respond(w, r, span, profile, err, "remove experience")
}

// AddEducation godoc
// @Summary      Add an education entry
// @Tags         Profiles
// @Accept       json
// @Produce      json
// @Param        body body types.EducationParams true "Education"
// @Success      200 {object} types.Profile
// @Failure      400 {object} api.Response
// @Failure      404 {object} api.Response
// @Security     ApiKeyAuth
// @Router       /profile/education [put]
func (h *HandlerImpl) AddEducation(w http.ResponseWriter, r *http.Request) {
	span, r := h.start(r, "AddEducation", "/api/profile/education")
	defer span.End()

	userID, ok := auth.RequireUserID(w, r)
	if !ok {
		return
	}

	var params types.EducationParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		span.SetStatus(codes.Error, "invalid body")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	profile, err := h.profileService.AddEducation(r.Context(), userID, params)
	h.respond(w, r, span, profile, err, "add education")
}

// RemoveEducation godoc
// @Summary      Remove an education entry
// @Tags         Profiles
// @Produce      json
// @Param        id path string true "Education ID"
// @Success      200 {object} types.Profile
// @Failure      404 {object} api.Response
// @Security     ApiKeyAuth
// @Router       /profile/education/{id} [delete]
func (h *HandlerImpl) RemoveEducation(w http.ResponseWriter, r *http.Request) {
	span, r := h.start(r, "RemoveEducation", "/api/profile/education/{id}")
	defer span.End()

	userID, ok := auth.RequireUserID(w, r)
	if !ok {
		return
	}
	eduID, ok := pathID(w, r, "education")
	if !ok {
		return
	}

	profile, err := h.profileService.RemoveEducation(r.Context(), userID, eduID)
	h.respond(w, r, span, profile, err, "remove education")
}
