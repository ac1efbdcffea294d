package profiles

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/devconnector-api/app/observability/metrics"
	"github.com/FACorreiaa/devconnector-api/internal/api"
	"github.com/FACorreiaa/devconnector-api/internal/policy"
	"github.com/FACorreiaa/devconnector-api/internal/types"
)

// Ensure implementation satisfies the interface
var _ ProfileService = (*ProfileServiceImpl)(nil)

// Accounts is the slice of the credential store profiles depend on.
type Accounts interface {
	GetByID(ctx context.Context, userID uuid.UUID) (*types.UserAuth, error)
	GetByIDs(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]*types.UserAuth, error)
	Delete(ctx context.Context, userID uuid.UUID) error
}

// PostRemover removes the posts of an account being deleted.
type PostRemover interface {
	DeleteByOwner(ctx context.Context, userID uuid.UUID) (int64, error)
	CountByOwner(ctx context.Context, userID uuid.UUID) (int64, error)
}

// ProfileService defines the business logic contract for profiles. Every
// mutating call acts on the caller's own profile.
type ProfileService interface {
	GetMine(ctx context.Context, userID uuid.UUID) (*types.Profile, error)
	// Upsert creates the caller's profile or updates the provided fields.
	Upsert(ctx context.Context, userID uuid.UUID, params types.UpsertProfileParams) (*types.Profile, error)
	List(ctx context.Context) ([]*types.Profile, error)
	GetByUser(ctx context.Context, userID uuid.UUID) (*types.Profile, error)
	// DeleteAccount removes posts, profile and identity in that order.
	DeleteAccount(ctx context.Context, userID uuid.UUID) error
	AddExperience(ctx context.Context, userID uuid.UUID, params types.ExperienceParams) (*types.Profile, error)
	RemoveExperience(ctx context.Context, userID, expID uuid.UUID) (*types.Profile, error)
	AddEducation(ctx context.Context, userID uuid.UUID, params types.EducationParams) (*types.Profile, error)
	RemoveEducation(ctx context.Context, userID, eduID uuid.UUID) (*types.Profile, error)
}

// ProfileServiceImpl provides the implementation for ProfileService.
type ProfileServiceImpl struct {
	logger   *slog.Logger
	repo     ProfileRepo
	accounts Accounts
	posts    PostRemover
	metrics  *metrics.AppMetrics
	now      func() time.Time
}

// NewProfileService creates a new profile service instance.
func NewProfileService(repo ProfileRepo, accounts Accounts, posts PostRemover, m *metrics.AppMetrics, logger *slog.Logger) *ProfileServiceImpl {
	return &ProfileServiceImpl{
		logger:   logger,
		repo:     repo,
		accounts: accounts,
		posts:    posts,
		metrics:  m,
		now:      time.Now,
	}
}

var errNoProfile = api.WithMessage(api.ErrNotFound, "There is no profile for this user.")

// Accepted layouts for experience and education dates.
var dateLayouts = []string{"2006-01-02", time.RFC3339}

func spanFor(ctx context.Context, name string, userID uuid.UUID) (context.Context, trace.Span) {
	return otel.Tracer("ProfileService").Start(ctx, name, trace.WithAttributes(
		attribute.String("user.id", userID.String()),
	))
}

func (s *ProfileServiceImpl) fail(ctx context.Context, span trace.Span, l *slog.Logger, err error, msg string) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
	if api.StatusFor(err) == http.StatusInternalServerError {
		l.ErrorContext(ctx, msg, slog.Any("error", err))
	} else {
		l.InfoContext(ctx, msg, slog.String("reason", err.Error()))
	}
	return err
}

// mine loads the caller's profile and confirms ownership of it.
func (s *ProfileServiceImpl) mine(ctx context.Context, userID uuid.UUID) (*types.Profile, error) {
	profile, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			return nil, errNoProfile
		}
		return nil, err
	}
	if err := policy.CheckProfile(userID, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *ProfileServiceImpl) replace(ctx context.Context, profile *types.Profile) error {
	err := s.repo.Replace(ctx, profile)
	if errors.Is(err, api.ErrVersionConflict) {
		s.metrics.Conflict(ctx, "profile")
	}
	return err
}

// populate attaches the owner summary to each profile. Owners that no
// longer exist are left empty.
func (s *ProfileServiceImpl) populate(ctx context.Context, profiles ...*types.Profile) error {
	if len(profiles) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(profiles))
	for _, p := range profiles {
		ids = append(ids, p.UserID)
	}
	users, err := s.accounts.GetByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("error loading profile owners: %w", err)
	}
	for _, p := range profiles {
		if u, ok := users[p.UserID]; ok {
			summary := u.Summary()
			p.User = &summary
		}
	}
	return nil
}

func parseDate(raw string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// parsePeriod validates the from/to pair of an entry. To is dropped for a
// current position.
func parsePeriod(v *api.Validator, from, to string, current bool, fromMsg string) (time.Time, *time.Time) {
	v.Require("from", from, fromMsg)
	var start time.Time
	if from != "" {
		var ok bool
		start, ok = parseDate(from)
		v.Check(ok, "from", "From date is invalid.")
	}
	if current || to == "" {
		return start, nil
	}
	end, ok := parseDate(to)
	v.Check(ok, "to", "To date is invalid.")
	if !ok {
		return start, nil
	}
	return start, &end
}

func splitSkills(csv string) []string {
	skills := make([]string, 0)
	for _, skill := range strings.Split(csv, ",") {
		if skill = strings.TrimSpace(skill); skill != "" {
			skills = append(skills, skill)
		}
	}
	return skills
}

// apply copies the non-empty scalar fields of params onto profile. Social
// links are replaced as a whole.
func apply(profile *types.Profile, params types.UpsertProfileParams) {
	set := func(dst *string, v string) {
		if v = strings.TrimSpace(v); v != "" {
			*dst = v
		}
	}
	set(&profile.Company, params.Company)
	set(&profile.Website, params.Website)
	set(&profile.Location, params.Location)
	set(&profile.Bio, api.SanitizeText(params.Bio))
	set(&profile.Status, params.Status)
	set(&profile.GithubUsername, params.GithubUsername)
	profile.Skills = splitSkills(params.Skills)
	profile.Social = types.Social{
		Youtube:   strings.TrimSpace(params.Youtube),
		Twitter:   strings.TrimSpace(params.Twitter),
		Facebook:  strings.TrimSpace(params.Facebook),
		Linkedin:  strings.TrimSpace(params.Linkedin),
		Instagram: strings.TrimSpace(params.Instagram),
	}
}

func (s *ProfileServiceImpl) GetMine(ctx context.Context, userID uuid.UUID) (*types.Profile, error) {
	ctx, span := spanFor(ctx, "GetMine", userID)
	defer span.End()
	l := s.logger.With(slog.String("method", "GetMine"), slog.String("userID", userID.String()))

	profile, err := s.mine(ctx, userID)
	if err != nil {
		return nil, s.fail(ctx, span, l, err, "Failed to load profile")
	}
	if err := s.populate(ctx, profile); err != nil {
		return nil, s.fail(ctx, span, l, err, "Failed to populate profile")
	}
	span.SetStatus(codes.Ok, "Profile loaded")
	return profile, nil
}

func (s *ProfileServiceImpl) Upsert(ctx context.Context, userID uuid.UUID, params types.UpsertProfileParams) (*types.Profile, error) {
	ctx, span := spanFor(ctx, "Upsert", userID)
	defer span.End()
	l := s.logger.With(slog.String("method", "Upsert"), slog.String("userID", userID.String()))

	var v api.Validator
	v.Require("status", strings.TrimSpace(params.Status), "Status is required.")
	v.Require("skills", strings.TrimSpace(params.Skills), "Skills is required")
	if err := v.Err(); err != nil {
		return nil, s.fail(ctx, span, l, err, "Invalid profile")
	}

	var profile *types.Profile
	created := false
	err := api.RetryOnConflict(ctx, api.MaxWriteAttempts, func() error {
		existing, err := s.repo.GetByUser(ctx, userID)
		switch {
		case err == nil:
			if err := policy.CheckProfile(userID, existing); err != nil {
				return err
			}
			apply(existing, params)
			if err := s.replace(ctx, existing); err != nil {
				return err
			}
			profile, created = existing, false
			return nil
		case errors.Is(err, api.ErrNotFound):
			fresh := &types.Profile{
				ID:         uuid.New(),
				UserID:     userID,
				Experience: []types.Experience{},
				Education:  []types.Education{},
				CreatedAt:  s.now().UTC(),
			}
			apply(fresh, params)
			// A concurrent create for the same owner surfaces as a conflict
			// and the retry takes the update path.
			if err := s.repo.Insert(ctx, fresh); err != nil {
				return err
			}
			profile, created = fresh, true
			return nil
		default:
			return err
		}
	})
	if err != nil {
		return nil, s.fail(ctx, span, l, err, "Failed to save profile")
	}
	if err := s.populate(ctx, profile); err != nil {
		return nil, s.fail(ctx, span, l, err, "Failed to populate profile")
	}

	l.InfoContext(ctx, "Profile saved", slog.Bool("created", created))
	span.SetAttributes(attribute.Bool("profile.created", created))
	span.SetStatus(codes.Ok, "Profile saved")
	return profile, nil
}

func (s *ProfileServiceImpl) List(ctx context.Context) ([]*types.Profile, error) {
	ctx, span := otel.Tracer("ProfileService").Start(ctx, "List")
	defer span.End()

	profiles, err := s.repo.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to list profiles")
		return nil, fmt.Errorf("error listing profiles: %w", err)
	}
	if err := s.populate(ctx, profiles...); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to populate profiles")
		return nil, err
	}
	span.SetStatus(codes.Ok, "Profiles listed")
	return profiles, nil
}

// GetByUser loads the profile and its owner concurrently.
func (s *ProfileServiceImpl) GetByUser(ctx context.Context, userID uuid.UUID) (*types.Profile, error) {
	ctx, span := spanFor(ctx, "GetByUser", userID)
	defer span.End()
	l := s.logger.With(slog.String("method", "GetByUser"), slog.String("userID", userID.String()))

	var profile *types.Profile
	var owner *types.UserAuth
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.repo.GetByUser(gctx, userID)
		profile = p
		return err
	})
	g.Go(func() error {
		u, err := s.accounts.GetByID(gctx, userID)
		if errors.Is(err, api.ErrNotFound) {
			return nil
		}
		owner = u
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, s.fail(ctx, span, l, err, "Failed to load profile")
	}
	if owner != nil {
		summary := owner.Summary()
		profile.User = &summary
	}
	span.SetStatus(codes.Ok, "Profile loaded")
	return profile, nil
}

func (s *ProfileServiceImpl) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	ctx, span := spanFor(ctx, "DeleteAccount", userID)
	defer span.End()
	l := s.logger.With(slog.String("method", "DeleteAccount"), slog.String("userID", userID.String()))

	err := s.deleteAccount(ctx, l, userID)
	s.metrics.AccountDeleted(ctx, err == nil)
	if err != nil {
		return s.fail(ctx, span, l, err, "Account deletion incomplete")
	}
	l.InfoContext(ctx, "Account deleted")
	span.SetStatus(codes.Ok, "Account deleted")
	return nil
}

// deleteAccount runs the cascade. Every step is idempotent, so a caller
// that receives api.ErrPartialDelete can simply retry.
func (s *ProfileServiceImpl) deleteAccount(ctx context.Context, l *slog.Logger, userID uuid.UUID) error {
	deleted, err := s.posts.DeleteByOwner(ctx, userID)
	if err != nil {
		return fmt.Errorf("%w: deleting posts: %w", api.ErrPartialDelete, err)
	}
	left, err := s.posts.CountByOwner(ctx, userID)
	if err != nil {
		return fmt.Errorf("%w: counting posts: %w", api.ErrPartialDelete, err)
	}
	if left != 0 {
		return fmt.Errorf("%w: %d posts remain", api.ErrPartialDelete, left)
	}
	l.DebugContext(ctx, "Posts removed", slog.Int64("count", deleted))

	if err := s.repo.DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("%w: deleting profile: %w", api.ErrPartialDelete, err)
	}
	if err := s.accounts.Delete(ctx, userID); err != nil {
		return fmt.Errorf("%w: deleting identity: %w", api.ErrPartialDelete, err)
	}
	return nil
}

// mutate runs fn against the caller's profile inside the optimistic retry loop.
func (s *ProfileServiceImpl) mutate(ctx context.Context, userID uuid.UUID, fn func(*types.Profile) error) (*types.Profile, error) {
	var profile *types.Profile
	err := api.RetryOnConflict(ctx, api.MaxWriteAttempts, func() error {
		p, err := s.mine(ctx, userID)
		if err != nil {
			return err
		}
		if err := fn(p); err != nil {
			return err
		}
		if err := s.replace(ctx, p); err != nil {
			return err
		}
		profile = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := s.populate(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *ProfileServiceImpl) AddExperience(ctx context.Context, userID uuid.UUID, params types.ExperienceParams) (*types.Profile, error) {
	ctx, span := spanFor(ctx, "AddExperience", userID)
	defer span.End()
	l := s.logger.With(slog.String("method", "AddExperience"), slog.String("userID", userID.String()))

	var v api.Validator
	v.Require("title", strings.TrimSpace(params.Title), "Title is required.")
	v.Require("company", strings.TrimSpace(params.Company), "Company is required.")
	from, to := parsePeriod(&v, strings.TrimSpace(params.From), strings.TrimSpace(params.To), params.Current, "From date is required.")
	if err := v.Err(); err != nil {
		return nil, s.fail(ctx, span, l, err, "Invalid experience")
	}

	entry := types.Experience{
		ID:          uuid.New(),
		Title:       strings.TrimSpace(params.Title),
		Company:     strings.TrimSpace(params.Company),
		Location:    strings.TrimSpace(params.Location),
		From:        from,
		To:          to,
		Current:     params.Current,
		Description: api.SanitizeText(params.Description),
	}
	profile, err := s.mutate(ctx, userID, func(p *types.Profile) error {
		p.AddExperience(entry)
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, span, l, err, "Failed to add experience")
	}

	l.InfoContext(ctx, "Experience added", slog.String("expID", entry.ID.String()))
	span.SetStatus(codes.Ok, "Experience added")
	return profile, nil
}

func (s *ProfileServiceImpl) RemoveExperience(ctx context.Context, userID, expID uuid.UUID) (*types.Profile, error) {
	ctx, span := spanFor(ctx, "RemoveExperience", userID)
	defer span.End()
	span.SetAttributes(attribute.String("experience.id", expID.String()))
	l := s.logger.With(slog.String("method", "RemoveExperience"), slog.String("userID", userID.String()), slog.String("expID", expID.String()))

	profile, err := s.mutate(ctx, userID, func(p *types.Profile) error {
		if !p.RemoveExperience(expID) {
			return api.WithMessage(api.ErrNotFound, "Not found experience with id of %s", expID)
		}
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, span, l, err, "Failed to remove experience")
	}

	l.InfoContext(ctx, "Experience removed")
	span.SetStatus(codes.Ok, "Experience removed")
	return profile, nil
}

func (s *ProfileServiceImpl) AddEducation(ctx context.Context, userID uuid.UUID, params types.EducationParams) (*types.Profile, error) {
	ctx, span := spanFor(ctx, "AddEducation", userID)
	defer span.End()
	l := s.logger.With(slog.String("method", "AddEducation"), slog.String("userID", userID.String()))

	var v api.Validator
	v.Require("school", strings.TrimSpace(params.School), "School is required.")
	v.Require("degree", strings.TrimSpace(params.Degree), "Degree is required.")
	v.Require("fieldofstudy", strings.TrimSpace(params.FieldOfStudy), "Field of study is required.")
	from, to := parsePeriod(&v, strings.TrimSpace(params.From), strings.TrimSpace(params.To), params.Current, "Date is required.")
	if err := v.Err(); err != nil {
		return nil, s.fail(ctx, span, l, err, "Invalid education")
	}

	entry := types.Education{
		ID:           uuid.New(),
		School:       strings.TrimSpace(params.School),
		Degree:       strings.TrimSpace(params.Degree),
		FieldOfStudy: strings.TrimSpace(params.FieldOfStudy),
		From:         from,
		To:           to,
		Current:      params.Current,
		Description:  api.SanitizeText(params.Description),
	}
	profile, err := s.mutate(ctx, userID, func(p *types.Profile) error {
		p.AddEducation(entry)
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, span, l, err, "Failed to add education")
	}

	l.InfoContext(ctx, "Education added", slog.String("eduID", entry.ID.String()))
	span.SetStatus(codes.Ok, "Education added")
	return profile, nil
}

func (s *ProfileServiceImpl) RemoveEducation(ctx context.Context, userID, eduID uuid.UUID) (*types.Profile, error) {
	ctx, span := spanFor(ctx, "RemoveEducation", userID)
	defer span.End()
	span.SetAttributes(attribute.String("education.id", eduID.String()))
	l := s.logger.With(slog.String("method", "RemoveEducation"), slog.String("userID", userID.String()), slog.String("eduID", eduID.String()))

	profile, err := s.mutate(ctx, userID, func(p *types.Profile) error {
		if !p.RemoveEducation(eduID) {
			return api.WithMessage(api.ErrNotFound, "Not found education with id of %s", eduID)
		}
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, span, l, err, "Failed to remove education")
	}

	l.InfoContext(ctx, "Education removed")
	span.SetStatus(codes.Ok, "Education removed")
	return profile, nil
}
