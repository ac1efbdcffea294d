package github

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/devconnector-api/internal/api"
)

type Handler struct {
	client Client
	logger *slog.Logger
}

func NewHandler(client Client, logger *slog.Logger) *Handler {
	return &Handler{
		client: client,
		logger: logger,
	}
}

// GetRepos godoc
// @Summary      List a GitHub user's latest repositories
// @Description  Relays the GitHub API response unchanged.
// @Tags         Profiles
// @Produce      json
// @Param        username path string true "GitHub login"
// @Success      200 {array} object
// @Failure      400 {object} api.Response
// @Router       /profile/github/{username} [get]
func (h *Handler) GetRepos(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("GithubHandler").Start(r.Context(), "GetRepos", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/profile/github/{username}"),
	))
	defer span.End()

	repos, err := h.client.Repos(ctx, chi.URLParam(r, "username"))
	if err != nil {
		span.SetStatus(codes.Error, "github lookup failed")
		api.WriteError(w, r, h.logger, err)
		return
	}

	span.SetStatus(codes.Ok, "repos relayed")
	api.WriteJSONResponse(w, r, http.StatusOK, repos)
}
