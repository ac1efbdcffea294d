package auth

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/devconnector-api/internal/api"
	"github.com/FACorreiaa/devconnector-api/internal/types"
)

type AuthHandler struct {
	authService AuthService
	logger      *slog.Logger
}

func NewAuthHandler(authService AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// RequireUserID returns the authenticated identity or answers 401.
func RequireUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, deniedMsg)
		return uuid.Nil, false
	}
	return userID, true
}

// CurrentUser godoc
// @Summary      Get authenticated user
// @Description  Returns the identity behind the supplied token, without the password hash.
// @Tags         Auth
// @Produce      json
// @Success      200 {object} api.Response{msg=types.UserAuth}
// @Failure      401 {object} api.Response
// @Failure      500 {object} api.Response
// @Security     ApiKeyAuth
// @Router       /auth [get]
func (h *AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "CurrentUser", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/auth"),
	))
	defer span.End()

	userID, ok := RequireUserID(w, r)
	if !ok {
		span.SetStatus(codes.Error, "no identity in context")
		return
	}

	user, err := h.authService.CurrentUser(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to load user")
		api.WriteError(w, r, h.logger, err)
		return
	}

	span.SetStatus(codes.Ok, "user loaded")
	api.WriteJSONResponse(w, r, http.StatusOK, api.Response{Success: true, Msg: user})
}

// Login godoc
// @Summary      Authenticate user and get token
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body body types.LoginParams true "Credentials"
// @Success      200 {object} types.TokenResponse
// @Failure      400 {object} api.Response
// @Failure      500 {object} api.Response
// @Router       /auth [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "Login", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/auth"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "Login"))

	var params types.LoginParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		l.WarnContext(ctx, "Failed to decode request body", slog.Any("error", err))
		span.SetStatus(codes.Error, "invalid body")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	token, err := h.authService.Login(ctx, params)
	if err != nil {
		span.SetStatus(codes.Error, "login failed")
		api.WriteError(w, r, h.logger, err)
		return
	}

	span.SetStatus(codes.Ok, "logged in")
	api.WriteJSONResponse(w, r, http.StatusOK, types.TokenResponse{Token: token})
}

// Register godoc
// @Summary      Register user
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        body body types.RegisterParams true "New user"
// @Success      200 {object} types.TokenResponse
// @Failure      400 {object} api.Response
// @Failure      500 {object} api.Response
// @Router       /users [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "Register", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/users"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "Register"))

	var params types.RegisterParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		l.WarnContext(ctx, "Failed to decode request body", slog.Any("error", err))
		span.SetStatus(codes.Error, "invalid body")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	token, err := h.authService.Register(ctx, params)
	if err != nil {
		span.SetStatus(codes.Error, "registration failed")
		api.WriteError(w, r, h.logger, err)
		return
	}

	span.SetStatus(codes.Ok, "registered")
	api.WriteJSONResponse(w, r, http.StatusOK, types.TokenResponse{Token: token})
}
