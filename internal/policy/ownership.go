// Package policy decides whether an identity may mutate a resource.
//
// The rules are pure functions of the identity and the loaded resource, so
// callers must load the resource first and report a missing resource as
// api.ErrNotFound before asking. A denial is always api.ErrNotAuthorized.
package policy

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/FACorreiaa/devconnector-api/internal/api"
	"github.com/FACorreiaa/devconnector-api/internal/types"
)

// CanMutatePost reports whether identity owns post.
func CanMutatePost(identity uuid.UUID, post *types.Post) bool {
	return identity != uuid.Nil && post != nil && post.UserID == identity
}

// CanDeleteComment reports whether identity wrote comment. Owning the parent
// post is not enough.
func CanDeleteComment(identity uuid.UUID, comment *types.Comment) bool {
	return identity != uuid.Nil && comment != nil && comment.UserID == identity
}

// CanMutateProfile reports whether identity owns profile. Experience and
// education entries have no owner of their own.
func CanMutateProfile(identity uuid.UUID, profile *types.Profile) bool {
	return identity != uuid.Nil && profile != nil && profile.UserID == identity
}

// CheckPost returns api.ErrNotAuthorized unless identity owns post.
func CheckPost(identity uuid.UUID, post *types.Post) error {
	if post == nil {
		return api.ErrNotAuthorized
	}
	if !CanMutatePost(identity, post) {
		return fmt.Errorf("%w: post %s", api.ErrNotAuthorized, post.ID)
	}
	return nil
}

// CheckComment returns api.ErrNotAuthorized unless identity wrote comment.
func CheckComment(identity uuid.UUID, comment *types.Comment) error {
	if comment == nil {
		return api.ErrNotAuthorized
	}
	if !CanDeleteComment(identity, comment) {
		return fmt.Errorf("%w: comment %s", api.ErrNotAuthorized, comment.ID)
	}
	return nil
}

// CheckProfile returns api.ErrNotAuthorized unless identity owns profile.
func CheckProfile(identity uuid.UUID, profile *types.Profile) error {
	if profile == nil {
		return api.ErrNotAuthorized
	}
	if !CanMutateProfile(identity, profile) {
		return fmt.Errorf("%w: profile %s", api.ErrNotAuthorized, profile.ID)
	}
	return nil
}
