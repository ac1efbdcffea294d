package posts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/devconnector-api/app/observability/metrics"
	"github.com/FACorreiaa/devconnector-api/internal/api"
	"github.com/FACorreiaa/devconnector-api/internal/policy"
	"github.com/FACorreiaa/devconnector-api/internal/types"
)

// Ensure implementation satisfies the interface
var _ PostService = (*PostServiceImpl)(nil)

// UserLookup resolves the author snapshot stored on posts and comments.
type UserLookup interface {
	GetByID(ctx context.Context, userID uuid.UUID) (*types.UserAuth, error)
}

// PostService defines the business logic contract for posts.
type PostService interface {
	Create(ctx context.Context, userID uuid.UUID, params types.CreatePostParams) (*types.Post, error)
	List(ctx context.Context) ([]*types.Post, error)
	Get(ctx context.Context, postID uuid.UUID) (*types.Post, error)
	// Delete removes a post owned by userID.
	Delete(ctx context.Context, userID, postID uuid.UUID) error
	// Like returns the likes after userID's like was added.
	Like(ctx context.Context, userID, postID uuid.UUID) ([]types.Like, error)
	// Unlike returns the likes after userID's like was removed.
	Unlike(ctx context.Context, userID, postID uuid.UUID) ([]types.Like, error)
	AddComment(ctx context.Context, userID, postID uuid.UUID, params types.CreatePostParams) (*types.Comment, error)
	// RemoveComment deletes a comment written by userID.
	RemoveComment(ctx context.Context, userID, postID, commentID uuid.UUID) error
	CountByOwner(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteByOwner(ctx context.Context, userID uuid.UUID) (int64, error)
}

// PostServiceImpl provides the implementation for PostService.
type PostServiceImpl struct {
	logger  *slog.Logger
	repo    PostRepo
	users   UserLookup
	metrics *metrics.AppMetrics
	now     func() time.Time
}

// NewPostService creates a new post service instance.
func NewPostService(repo PostRepo, users UserLookup, m *metrics.AppMetrics, logger *slog.Logger) *PostServiceImpl {
	return &PostServiceImpl{
		logger:  logger,
		repo:    repo,
		users:   users,
		metrics: m,
		now:     time.Now,
	}
}

func spanFor(ctx context.Context, name string, userID, postID uuid.UUID) (context.Context, trace.Span) {
	return otel.Tracer("PostService").Start(ctx, name, trace.WithAttributes(
		attribute.String("user.id", userID.String()),
		attribute.String("post.id", postID.String()),
	))
}

// fail records err on span and logs it unless it is an expected outcome.
func (s *PostServiceImpl) fail(ctx context.Context, span trace.Span, l *slog.Logger, err error, msg string) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
	if api.StatusFor(err) == http.StatusInternalServerError {
		l.ErrorContext(ctx, msg, slog.Any("error", err))
	} else {
		l.InfoContext(ctx, msg, slog.String("reason", err.Error()))
	}
	return err
}

func textValidation(text string) error {
	var v api.Validator
	v.Require("text", text, "Text is required.")
	return v.Err()
}

// replace saves post and counts lost races.
func (s *PostServiceImpl) replace(ctx context.Context, post *types.Post) error {
	err := s.repo.Replace(ctx, post)
	if errors.Is(err, api.ErrVersionConflict) {
		s.metrics.Conflict(ctx, "post")
	}
	return err
}

func (s *PostServiceImpl) author(ctx context.Context, userID uuid.UUID) (*types.UserAuth, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			return nil, api.WithMessage(api.ErrNotFound, "User not found.")
		}
		return nil, fmt.Errorf("error loading author: %w", err)
	}
	return user, nil
}

func (s *PostServiceImpl) Create(ctx context.Context, userID uuid.UUID, params types.CreatePostParams) (*types.Post, error) {
	ctx, span := spanFor(ctx, "Create", userID, uuid.Nil)
	defer span.End()
	l := s.logger.With(slog.String("method", "Create"), slog.String("userID", userID.String()))

	text := api.SanitizeText(params.Text)
	if err := textValidation(text); err != nil {
		return nil, s.fail(ctx, span, l, err, "Invalid post")
	}

	user, err := s.author(ctx, userID)
	if err != nil {
		return nil, s.fail(ctx, span, l, err, "Failed to load author")
	}

	post := &types.Post{
		ID:        uuid.New(),
		UserID:    userID,
		Text:      text,
		Name:      user.Name,
		Avatar:    user.Avatar,
		Likes:     []types.Like{},
		Comments:  []types.Comment{},
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Insert(ctx, post); err != nil {
		return nil, s.fail(ctx, span, l, fmt.Errorf("error creating post: %w", err), "Failed to create post")
	}

	l.InfoContext(ctx, "Post created", slog.String("postID", post.ID.String()))
	span.SetStatus(codes.Ok, "Post created")
	s.metrics.PostMutated(ctx, "create")
	return post, nil
}

func (s *PostServiceImpl) List(ctx context.Context) ([]*types.Post, error) {
	ctx, span := otel.Tracer("PostService").Start(ctx, "List")
	defer span.End()

	posts, err := s.repo.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to list posts")
		return nil, fmt.Errorf("error listing posts: %w", err)
	}
	span.SetStatus(codes.Ok, "Posts listed")
	return posts, nil
}

func (s *PostServiceImpl) Get(ctx context.Context, postID uuid.UUID) (*types.Post, error) {
	ctx, span := spanFor(ctx, "Get", uuid.Nil, postID)
	defer span.End()

	post, err := s.repo.Get(ctx, postID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to get post")
		return nil, err
	}
	span.SetStatus(codes.Ok, "Post loaded")
	return post, nil
}

func (s *PostServiceImpl) Delete(ctx context.Context, userID, postID uuid.UUID) error {
	ctx, span := spanFor(ctx, "Delete", userID, postID)
	defer span.End()
	l := s.logger.With(slog.String("method", "Delete"), slog.String("userID", userID.String()), slog.String("postID", postID.String()))

	post, err := s.repo.Get(ctx, postID)
	if err != nil {
		return s.fail(ctx, span, l, err, "Failed to load post")
	}
	if err := policy.CheckPost(userID, post); err != nil {
		return s.fail(ctx, span, l, err, "Delete denied")
	}
	if err := s.repo.Delete(ctx, postID); err != nil {
		return s.fail(ctx, span, l, fmt.Errorf("error deleting post: %w", err), "Failed to delete post")
	}

	l.InfoContext(ctx, "Post deleted")
	span.SetStatus(codes.Ok, "Post deleted")
	s.metrics.PostMutated(ctx, "delete")
	return nil
}

func (s *PostServiceImpl) Like(ctx context.Context, userID, postID uuid.UUID) ([]types.Like, error) {
	ctx, span := spanFor(ctx, "Like", userID, postID)
	defer span.End()
	l := s.logger.With(slog.String("method", "Like"), slog.String("userID", userID.String()), slog.String("postID", postID.String()))

	var likes []types.Like
	err := api.RetryOnConflict(ctx, api.MaxWriteAttempts, func() error {
		post, err := s.repo.Get(ctx, postID)
		if err != nil {
			return err
		}
		if !post.AddLike(userID) {
			return api.ErrAlreadyLiked
		}
		if err := s.replace(ctx, post); err != nil {
			return err
		}
		likes = post.Likes
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, span, l, err, "Failed to like post")
	}

	span.SetStatus(codes.Ok, "Post liked")
	s.metrics.PostMutated(ctx, "like")
	return likes, nil
}

func (s *PostServiceImpl) Unlike(ctx context.Context, userID, postID uuid.UUID) ([]types.Like, error) {
	ctx, span := spanFor(ctx, "Unlike", userID, postID)
	defer span.End()
	l := s.logger.With(slog.String("method", "Unlike"), slog.String("userID", userID.String()), slog.String("postID", postID.String()))

	var likes []types.Like
	err := api.RetryOnConflict(ctx, api.MaxWriteAttempts, func() error {
		post, err := s.repo.Get(ctx, postID)
		if err != nil {
			return err
		}
		if !post.RemoveLike(userID) {
			return api.ErrNotYetLiked
		}
		if err := s.replace(ctx, post); err != nil {
			return err
		}
		likes = post.Likes
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, span, l, err, "Failed to unlike post")
	}

	span.SetStatus(codes.Ok, "Post unliked")
	s.metrics.PostMutated(ctx, "unlike")
	return likes, nil
}

func (s *PostServiceImpl) AddComment(ctx context.Context, userID, postID uuid.UUID, params types.CreatePostParams) (*types.Comment, error) {
	ctx, span := spanFor(ctx, "AddComment", userID, postID)
	defer span.End()
	l := s.logger.With(slog.String("method", "AddComment"), slog.String("userID", userID.String()), slog.String("postID", postID.String()))

	text := api.SanitizeText(params.Text)
	if err := textValidation(text); err != nil {
		return nil, s.fail(ctx, span, l, err, "Invalid comment")
	}

	user, err := s.author(ctx, userID)
	if err != nil {
		return nil, s.fail(ctx, span, l, err, "Failed to load author")
	}

	comment := types.Comment{
		ID:        uuid.New(),
		UserID:    userID,
		Text:      text,
		Name:      user.Name,
		Avatar:    user.Avatar,
		CreatedAt: s.now().UTC(),
	}
	err = api.RetryOnConflict(ctx, api.MaxWriteAttempts, func() error {
		post, err := s.repo.Get(ctx, postID)
		if err != nil {
			return err
		}
		post.AddComment(comment)
		return s.replace(ctx, post)
	})
	if err != nil {
		return nil, s.fail(ctx, span, l, err, "Failed to add comment")
	}

	l.InfoContext(ctx, "Comment added", slog.String("commentID", comment.ID.String()))
	span.SetStatus(codes.Ok, "Comment added")
	s.metrics.PostMutated(ctx, "comment")
	return &comment, nil
}

func (s *PostServiceImpl) RemoveComment(ctx context.Context, userID, postID, commentID uuid.UUID) error {
	ctx, span := spanFor(ctx, "RemoveComment", userID, postID)
	defer span.End()
	span.SetAttributes(attribute.String("comment.id", commentID.String()))
	l := s.logger.With(slog.String("method", "RemoveComment"), slog.String("userID", userID.String()),
		slog.String("postID", postID.String()), slog.String("commentID", commentID.String()))

	err := api.RetryOnConflict(ctx, api.MaxWriteAttempts, func() error {
		post, err := s.repo.Get(ctx, postID)
		if err != nil {
			return err
		}
		comment := post.FindComment(commentID)
		if comment == nil {
			return api.WithMessage(api.ErrNotFound, "Not found comment with id of %s", commentID)
		}
		if err := policy.CheckComment(userID, comment); err != nil {
			return err
		}
		post.RemoveComment(commentID)
		return s.replace(ctx, post)
	})
	if err != nil {
		return s.fail(ctx, span, l, err, "Failed to remove comment")
	}

	l.InfoContext(ctx, "Comment removed")
	span.SetStatus(codes.Ok, "Comment removed")
	s.metrics.PostMutated(ctx, "uncomment")
	return nil
}

func (s *PostServiceImpl) CountByOwner(ctx context.Context, userID uuid.UUID) (int64, error) {
	ctx, span := spanFor(ctx, "CountByOwner", userID, uuid.Nil)
	defer span.End()

	n, err := s.repo.CountByOwner(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to count posts")
		return 0, fmt.Errorf("error counting posts: %w", err)
	}
	span.SetStatus(codes.Ok, "Posts counted")
	return n, nil
}

func (s *PostServiceImpl) DeleteByOwner(ctx context.Context, userID uuid.UUID) (int64, error) {
	ctx, span := spanFor(ctx, "DeleteByOwner", userID, uuid.Nil)
	defer span.End()
	l := s.logger.With(slog.String("method", "DeleteByOwner"), slog.String("userID", userID.String()))

	n, err := s.repo.DeleteByOwner(ctx, userID)
	if err != nil {
		return 0, s.fail(ctx, span, l, fmt.Errorf("error deleting posts: %w", err), "Failed to delete posts")
	}
	l.InfoContext(ctx, "Posts deleted", slog.Int64("count", n))
	span.SetStatus(codes.Ok, "Posts deleted")
	return n, nil
}
