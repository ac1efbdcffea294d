package posts

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

// PostHandler handles HTTP requests related to posts.
type PostHandler struct {
	postService PostService
	logger      *slog.Logger
}

// NewPostHandler creates a new post handler instance.
func NewPostHandler(postService PostService, logger *slog.Logger) *PostHandler {
	return &PostHandler{
		postService: postService,
		logger:      logger,
	}
}

func (h *PostHandler) start(r *http.Request, name, route string) (trace.Span, *http.Request) {
	ctx, span := otel.Tracer("PostHandler").Start(r.Context(), name, trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String(route),
	))
	return span, r.WithContext(ctx)
}

// pathID parses a uuid path parameter. A malformed id cannot match any
// document, so it is answered like a missing one.
func pathID(w http.ResponseWriter, r *http.Request, param, kind string) (uuid.UUID, bool) {
	raw := chi.URLParam(r, param)
	id, err := uuid.Parse(raw)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusNotFound, "Not found "+kind+" with id of "+raw+".")
		return uuid.Nil, false
	}
	return id, true
}

// CreatePost godoc
// @Summary      Create a post
// @Tags         Posts
// @Accept       json
// @Produce      json
// @Param        body body types.CreatePostParams true "Post text"
// @Success      200 {object} api.Response{msg=types.Post}
// @Failure      400 {object} api.Response
// @Failure      401 {object} api.Response
// @Security     ApiKeyAuth
// @Router       /posts [post]
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	span, r := h.start(r, "CreatePost", "/api/posts")
	defer span.End()

	userID, ok := auth.RequireUserID(w, r)
	if !ok {
		return
	}

	var params types.CreatePostParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		span.SetStatus(codes.Error, "invalid body")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	post, err := h.postService.Create(r.Context(), userID, params)
	if err != nil {
		span.SetStatus(codes.Error, "create failed")
		api.WriteError(w, r, h.logger, err)
		return
	}

	span.SetStatus(codes.Ok, "post created")
	api.WriteJSONResponse(w, r, http.StatusOK, api.Response{Success: true, Msg: post})
}

// ListPosts godoc
// @Summary      List posts, newest first
// @Tags         Posts
// @Produce      json
// @Success      200 {object} api.Response{msg=[]types.Post}
// @Failure      401 {object} api.Response
// @Security     ApiKeyAuth
// @Router       /posts [get]
func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	span, r := h.start(r, "ListPosts", "/api/posts")
	defer span.End()

	posts, err := h.postService.List(r.Context())
	if err != nil {
		span.SetStatus(codes.Error, "list failed")
		api.WriteError(w, r, h.logger, err)
		return
	}

	span.SetStatus(codes.Ok, "posts listed")
	api.WriteJSONResponse(w, r, http.StatusOK, api.Response{Success: true, Msg: posts})
}

// GetPost godoc
// @Summary      Get a post by id
// @Tags         Posts
// @Produce      json
// @Param        id path string true "Post ID"
// @Success      200 {object} api.Response{msg=types.Post}
// @Failure      404 {object} api.Response
// @Security     ApiKeyAuth
// @Router       /posts/{id} [get]
func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	span, r := h.start(r, "GetPost", "/api/posts/{id}")
	defer span.End()

	postID, ok := pathID(w, r, "id", "post")
	if !ok {
		return
	}

	post, err := h.postService.Get(r.Context(), postID)
	if err != nil {
		span.SetStatus(codes.Error, "get failed")
		api.WriteError(w, r, h.logger, err)
		return
	}

	span.SetStatus(codes.Ok, "post loaded")
	api.WriteJSONResponse(w, r, http.StatusOK, api.Response{Success: true, Msg: post})
}

// DeletePost godoc
// @Summary      Delete own post
// @Tags         Posts
// @Produce      json
// @Param        id path string true "Post ID"
// @Success      200 {object} api.Response
// @Failure      401 {object} api.Response
// @Failure      404 {object} api.Response
// @Security     ApiKeyAuth
// @Router       /posts/{id} [delete]
func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	span, r := h.start(r, "DeletePost", "/api/posts/{id}")
	defer span.End()

	userID, ok := auth.RequireUserID(w, r)
	if !ok {
		return
	}
	postID, ok := pathID(w, r, "id", "post")
	if !ok {
		return
	}

	if err := h.postService.Delete(r.Context(), userID, postID); err != nil {
		span.SetStatus(codes.Error, "delete failed")
		api.WriteError(w, r, h.logger, err)
		return
	}

	span.SetStatus(codes.Ok, "post deleted")
	api.WriteJSONResponse(w, r, http.StatusOK, api.Response{Success: true, Msg: "Post deleted."})
}

// LikePost godoc
// @Summary      Like a post
// @Tags         Posts
// @Produce      json
// @Param        id path string true "Post ID"
// @Success      200 {array} types.Like
// @Failure      400 {object} api.Response
// @Failure      404 {object} api.Response
// @Security     ApiKeyAuth
// @Router       /posts/like/{id} [put]
func (h *PostHandler) LikePost(w http.ResponseWriter, r *http.Request) {
	span, r := h.start(r, "LikePost", "/api/posts/like/{id}")
	defer span.End()

	userID, ok := auth.RequireUserID(w, r)
	if !ok {
		return
	}
	postID, ok := pathID(w, r, "id", "post")
	if !ok {
		return
	}

	likes, err := h.postService.Like(r.Context(), userID, postID)
	if err != nil {
		span.SetStatus(codes.Error, "like failed")
		api.WriteError(w, r, h.logger, err)
		return
	}

	span.SetStatus(codes.Ok, "post liked")
	api.WriteJSONResponse(w, r, http.StatusOK, likes)
}

// UnlikePost godoc
// @Summary      Remove own like from a post
// @Tags         Posts
// @Produce      json
// @Param        id path string true "Post ID"
// @Success      200 {array} types.Like
// @Failure      400 {object} api.Response
// @Failure      404 {object} api.Response
// @Security     ApiKeyAuth
// @Router       /posts/unlike/{id} [put]
func (h *PostHandler) UnlikePost(w http.ResponseWriter, r *http.Request) {
	span, r := h.start(r, "UnlikePost", "/api/posts/unlike/{id}")
	defer span.End()

	userID, ok := auth.RequireUserID(w, r)
	if !ok {
		return
	}
	postID, ok := pathID(w, r, "id", "post")
	if !ok {
		return
	}

	likes, err := h.postService.Unlike(r.Context(), userID, postID)
	if err != nil {
		span.SetStatus(codes.Error, "unlike failed")
		api.WriteError(w, r, h.logger, err)
		return
	}

	span.SetStatus(codes.Ok, "post unliked")
	api.WriteJSONResponse(w, r, http.StatusOK, likes)
}

// AddComment godoc
// @Summary      Comment on a post
// @Tags         Posts
// @Accept       json
// @Produce      json
// @Param        id path string true "Post ID"
// @Param        body body types.CreatePostParams true "Comment text"
// @Success      200 {object} api.Response{msg=types.Comment}
// @Failure      400 {object} api.Response
// @Failure      404 {object} api.Response
// @Security     ApiKeyAuth
// @Router       /posts/comment/{id} [post]
func (h *PostHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	span, r := h.start(r, "AddComment", "/api/posts/comment/{id}")
	defer span.End()

	userID, ok := auth.RequireUserID(w, r)
	if !ok {
		return
	}
	postID, ok := pathID(w, r, "id", "post")
	if !ok {
		return
	}

	var params types.CreatePostParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		span.SetStatus(codes.Error, "invalid body")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	comment, err := h.postService.AddComment(r.Context(), userID, postID, params)
	if err != nil {
		span.SetStatus(codes.Error, "comment failed")
		api.WriteError(w, r, h.logger, err)
		return
	}

	span.SetStatus(codes.Ok, "comment added")
	api.WriteJSONResponse(w, r, http.StatusOK, api.Response{Success: true, Msg: comment})
}

// RemoveComment godoc
// @Summary      Delete own comment
// @Tags         Posts
// @Produce      json
// @Param        id path string true "Post ID"
// @Param        commentId path string true "Comment ID"
// @Success      200 {object} api.Response
// @Failure      401 {object} api.Response
// @Failure      404 {object} api.Response
// @Security     ApiKeyAuth
// @Router       /posts/{id}/{commentId} [delete]
func (h *PostHandler) RemoveComment(w http.ResponseWriter, r *http.Request) {
	span, r := h.start(r, "RemoveComment", "/api/posts/{id}/{commentId}")
	defer span.End()

	userID, ok := auth.RequireUserID(w, r)
	if !ok {
		return
	}
	postID, ok := pathID(w, r, "id", "post")
	if !ok {
		return
	}
	commentID, ok := pathID(w, r, "commentId", "comment")
	if !ok {
		return
	}

	if err := h.postService.RemoveComment(r.Context(), userID, postID, commentID); err != nil {
		span.SetStatus(codes.Error, "remove comment failed")
		api.WriteError(w, r, h.logger, err)
		return
	}

	span.SetStatus(codes.Ok, "comment removed")
	api.WriteJSONResponse(w, r, http.StatusOK, api.Response{Success: true, Msg: "Comment deleted."})
}
