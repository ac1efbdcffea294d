package types

import (
	"time"

	"github.com/google/uuid"
)

// Post is an aggregate: the post document with its likes and comments.
// Likes and Comments are ordered most-recent-first.
type Post struct {
	ID        uuid.UUID `json:"_id" bson:"_id"`
	UserID    uuid.UUID `json:"user" bson:"user"`     // Owner identity.
	Text      string    `json:"text" bson:"text"`     // Sanitized body.
	Name      string    `json:"name" bson:"name"`     // Owner name at creation time.
	Avatar    string    `json:"avatar" bson:"avatar"` // Owner avatar at creation time.
	Likes     []Like    `json:"likes" bson:"likes"`
	Comments  []Comment `json:"comments" bson:"comments"`
	CreatedAt time.Time `json:"date" bson:"date"`
	Version   int64     `json:"-" bson:"version"`
}

// Like records one identity liking a post.
type Like struct {
	ID     uuid.UUID `json:"_id" bson:"_id"`
	UserID uuid.UUID `json:"user" bson:"user"`
}

// Comment is nested in a Post and records its own author.
type Comment struct {
	ID        uuid.UUID `json:"_id" bson:"_id"`
	UserID    uuid.UUID `json:"user" bson:"user"`
	Text      string    `json:"text" bson:"text"`
	Name      string    `json:"name" bson:"name"`
	Avatar    string    `json:"avatar" bson:"avatar"`
	CreatedAt time.Time `json:"date" bson:"date"`
}

// LikedBy reports whether userID is present in the post's likes.
func (p *Post) LikedBy(userID uuid.UUID) bool {
	return p.likeIndex(userID) >= 0
}

func (p *Post) likeIndex(userID uuid.UUID) int {
	for i, l := range p.Likes {
		if l.UserID == userID {
			return i
		}
	}
	return -1
}

// AddLike inserts a like for userID at the front. It returns false when the
// identity already likes the post.
func (p *Post) AddLike(userID uuid.UUID) bool {
	if p.LikedBy(userID) {
		return false
	}
	p.Likes = append([]Like{{ID: uuid.New(), UserID: userID}}, p.Likes...)
	return true
}

// RemoveLike removes the like recorded by userID. It returns false when
// there is none.
func (p *Post) RemoveLike(userID uuid.UUID) bool {
	i := p.likeIndex(userID)
	if i < 0 {
		return false
	}
	p.Likes = append(p.Likes[:i:i], p.Likes[i+1:]...)
	return true
}

// AddComment inserts c at the front of the comments.
func (p *Post) AddComment(c Comment) {
	p.Comments = append([]Comment{c}, p.Comments...)
}

// FindComment returns the comment with the given id, or nil.
func (p *Post) FindComment(commentID uuid.UUID) *Comment {
	for i := range p.Comments {
		if p.Comments[i].ID == commentID {
			return &p.Comments[i]
		}
	}
	return nil
}

// RemoveComment removes the comment with the given id and reports whether
// it was present.
func (p *Post) RemoveComment(commentID uuid.UUID) bool {
	for i := range p.Comments {
		if p.Comments[i].ID == commentID {
			p.Comments = append(p.Comments[:i:i], p.Comments[i+1:]...)
			return true
		}
	}
	return false
}

// CreatePostParams is the body of POST /api/posts and POST /api/posts/comment/{id}.
type CreatePostParams struct {
	Text string `json:"text" example:"hello"`
}
