package router_test

import (
	"context"
	"encoding/json"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/FACorreiaa/devconnector-api/internal/api"
	"github.com/FACorreiaa/devconnector-api/internal/types"
)

// memStore keeps identities, posts and profiles in memory with the same
// versioning rules as the database repositories.
type memStore struct {
	mu       sync.Mutex
	users    map[uuid.UUID]types.UserAuth
	posts    map[uuid.UUID]types.Post
	profiles map[uuid.UUID]types.Profile // keyed by owner
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[uuid.UUID]types.UserAuth{},
		posts:    map[uuid.UUID]types.Post{},
		profiles: map[uuid.UUID]types.Profile{},
	}
}

func clonePost(p types.Post) *types.Post {
	p.Likes = slices.Clone(p.Likes)
	p.Comments = slices.Clone(p.Comments)
	return &p
}

func cloneProfile(p types.Profile) *types.Profile {
	p.User = nil
	p.Skills = slices.Clone(p.Skills)
	p.Experience = slices.Clone(p.Experience)
	p.Education = slices.Clone(p.Education)
	return &p
}

type memAuthRepo struct{ s *memStore }

func (r memAuthRepo) Create(_ context.Context, user *types.UserAuth) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return api.ErrEmailTaken
		}
	}
	r.s.users[user.ID] = *user
	return nil
}

func (r memAuthRepo) GetByEmail(_ context.Context, email string) (*types.UserAuth, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, api.ErrNotFound
}

func (r memAuthRepo) GetByID(_ context.Context, userID uuid.UUID) (*types.UserAuth, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[userID]
	if !ok {
		return nil, api.ErrNotFound
	}
	return &u, nil
}

func (r memAuthRepo) GetByIDs(_ context.Context, userIDs []uuid.UUID) (map[uuid.UUID]*types.UserAuth, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make(map[uuid.UUID]*types.UserAuth, len(userIDs))
	for _, id := range userIDs {
		if u, ok := r.s.users[id]; ok {
			out[id] = &u
		}
	}
	return out, nil
}

func (r memAuthRepo) Delete(_ context.Context, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.users, userID)
	return nil
}

type memPostRepo struct{ s *memStore }

func (r memPostRepo) Insert(_ context.Context, post *types.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	post.Version = 1
	r.s.posts[post.ID] = *clonePost(*post)
	return nil
}

func (r memPostRepo) Get(_ context.Context, postID uuid.UUID) (*types.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.posts[postID]
	if !ok {
		return nil, api.WithMessage(api.ErrNotFound, "Post not found.")
	}
	return clonePost(p), nil
}

func (r memPostRepo) List(_ context.Context) ([]*types.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*types.Post, 0, len(r.s.posts))
	for _, p := range r.s.posts {
		out = append(out, clonePost(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r memPostRepo) Replace(_ context.Context, post *types.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.posts[post.ID]
	if !ok || stored.Version != post.Version {
		return api.ErrVersionConflict
	}
	post.Version++
	r.s.posts[post.ID] = *clonePost(*post)
	return nil
}

func (r memPostRepo) Delete(_ context.Context, postID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.posts, postID)
	return nil
}

func (r memPostRepo) CountByOwner(_ context.Context, userID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, p := range r.s.posts {
		if p.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r memPostRepo) DeleteByOwner(_ context.Context, userID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, p := range r.s.posts {
		if p.UserID == userID {
			delete(r.s.posts, id)
			n++
		}
	}
	return n, nil
}

type memProfileRepo struct{ s *memStore }

func (r memProfileRepo) GetByUser(_ context.Context, userID uuid.UUID) (*types.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.profiles[userID]
	if !ok {
		return nil, api.WithMessage(api.ErrNotFound, "Not found profile with id of %s", userID)
	}
	return cloneProfile(p), nil
}

func (r memProfileRepo) List(_ context.Context) ([]*types.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*types.Profile, 0, len(r.s.profiles))
	for _, p := range r.s.profiles {
		out = append(out, cloneProfile(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r memProfileRepo) Insert(_ context.Context, profile *types.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.profiles[profile.UserID]; ok {
		return api.ErrVersionConflict
	}
	profile.Version = 1
	r.s.profiles[profile.UserID] = *cloneProfile(*profile)
	return nil
}

func (r memProfileRepo) Replace(_ context.Context, profile *types.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.profiles[profile.UserID]
	if !ok || stored.ID != profile.ID || stored.Version != profile.Version {
		return api.ErrVersionConflict
	}
	profile.Version++
	r.s.profiles[profile.UserID] = *cloneProfile(*profile)
	return nil
}

func (r memProfileRepo) DeleteByUser(_ context.Context, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.profiles, userID)
	return nil
}

// stubGithub answers every username with a fixed repository list.
type stubGithub struct{}

func (stubGithub) Repos(_ context.Context, username string) (json.RawMessage, error) {
	if username == "ghost" {
		return nil, api.WithMessage(api.ErrUpstream, "No Github profile found")
	}
	return json.RawMessage(`[{"name":"` + username + `-repo"}]`), nil
}
