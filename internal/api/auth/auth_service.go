package auth

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"

	"github.com/FACorreiaa/devconnector-api/app/observability/metrics"
	"github.com/FACorreiaa/devconnector-api/internal/api"
	"github.com/FACorreiaa/devconnector-api/internal/types"
)

const (
	minPasswordLen = 6
	// bcrypt rejects longer input.
	maxPasswordLen = 72
)

var _ AuthService = (*AuthServiceImpl)(nil)

// AuthService registers identities and exchanges credentials for tokens.
type AuthService interface {
	// Register creates an identity and returns a token for it.
	Register(ctx context.Context, params types.RegisterParams) (string, error)
	// Login verifies credentials and returns a fresh token.
	Login(ctx context.Context, params types.LoginParams) (string, error)
	// CurrentUser loads the identity behind an authenticated request.
	CurrentUser(ctx context.Context, userID uuid.UUID) (*types.UserAuth, error)
}

type AuthServiceImpl struct {
	logger   *slog.Logger
	repo     AuthRepo
	tokens   TokenService
	metrics  *metrics.AppMetrics
	hashCost int
	now      func() time.Time
}

func NewAuthService(repo AuthRepo, tokens TokenService, m *metrics.AppMetrics, logger *slog.Logger) *AuthServiceImpl {
	return &AuthServiceImpl{
		logger:   logger,
		repo:     repo,
		tokens:   tokens,
		metrics:  m,
		hashCost: bcrypt.DefaultCost,
		now:      time.Now,
	}
}

// GravatarURL returns the avatar reference for email: a 200px, PG-rated
// Gravatar with the mystery-man fallback.
func GravatarURL(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return "//www.gravatar.com/avatar/" + hex.EncodeToString(sum[:]) + "?s=200&r=pg&d=mm"
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	domain := email[strings.LastIndex(email, "@")+1:]
	return strings.Contains(domain, ".") && !strings.HasSuffix(domain, ".")
}

func (s *AuthServiceImpl) Register(ctx context.Context, params types.RegisterParams) (string, error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "Register")
	defer span.End()

	started := time.Now()
	l := s.logger.With(slog.String("method", "Register"))

	name := strings.TrimSpace(params.Name)
	email := strings.ToLower(strings.TrimSpace(params.Email))

	var v api.Validator
	v.Require("name", name, "Name is required.")
	v.Check(validEmail(email), "email", "Please include a valid email.")
	v.Check(len(params.Password) >= minPasswordLen, "password", "Please enter a password with 6 or more characters.")
	v.Check(len(params.Password) <= maxPasswordLen, "password", "Please enter a password with 72 or fewer bytes.")
	if err := v.Err(); err != nil {
		span.SetStatus(codes.Error, "validation failed")
		s.metrics.Registered(ctx, false, started)
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), s.hashCost)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "hash failed")
		s.metrics.Registered(ctx, false, started)
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &types.UserAuth{
		ID:        uuid.New(),
		Name:      name,
		Email:     email,
		Avatar:    GravatarURL(email),
		Password:  string(hash),
		CreatedAt: s.now().UTC(),
	}
	span.SetAttributes(attribute.String("user.id", user.ID.String()))

	if err := s.repo.Create(ctx, user); err != nil {
		s.metrics.Registered(ctx, false, started)
		if errors.Is(err, api.ErrEmailTaken) {
			l.InfoContext(ctx, "Registration rejected, email already in use")
			span.SetStatus(codes.Error, "email taken")
			return "", err
		}
		l.ErrorContext(ctx, "Failed to create user", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "create failed")
		return "", fmt.Errorf("error registering user: %w", err)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "token issue failed")
		s.metrics.Registered(ctx, false, started)
		return "", err
	}

	l.InfoContext(ctx, "User registered", slog.String("userID", user.ID.String()))
	span.SetStatus(codes.Ok, "user registered")
	s.metrics.Registered(ctx, true, started)
	return token, nil
}

func (s *AuthServiceImpl) Login(ctx context.Context, params types.LoginParams) (string, error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "Login")
	defer span.End()

	l := s.logger.With(slog.String("method", "Login"))
	email := strings.ToLower(strings.TrimSpace(params.Email))

	var v api.Validator
	v.Check(validEmail(email), "email", "Please include a valid email.")
	v.Require("password", params.Password, "Password is required.")
	if err := v.Err(); err != nil {
		span.SetStatus(codes.Error, "validation failed")
		s.metrics.LoggedIn(ctx, false)
		return "", err
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		s.metrics.LoggedIn(ctx, false)
		if errors.Is(err, api.ErrNotFound) {
			span.SetStatus(codes.Error, "unknown email")
			return "", api.ErrInvalidCredentials
		}
		l.ErrorContext(ctx, "Failed to load user", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "lookup failed")
		return "", fmt.Errorf("error loading user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(params.Password)); err != nil {
		l.InfoContext(ctx, "Password mismatch", slog.String("userID", user.ID.String()))
		span.SetStatus(codes.Error, "password mismatch")
		s.metrics.LoggedIn(ctx, false)
		return "", api.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "token issue failed")
		s.metrics.LoggedIn(ctx, false)
		return "", err
	}

	span.SetAttributes(attribute.String("user.id", user.ID.String()))
	span.SetStatus(codes.Ok, "user logged in")
	s.metrics.LoggedIn(ctx, true)
	return token, nil
}

func (s *AuthServiceImpl) CurrentUser(ctx context.Context, userID uuid.UUID) (*types.UserAuth, error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "CurrentUser", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
	))
	defer span.End()

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "lookup failed")
		return nil, err
	}
	span.SetStatus(codes.Ok, "user loaded")
	return user, nil
}
