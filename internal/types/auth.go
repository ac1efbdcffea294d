package types

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// UserAuth represents the core identity entity in the domain.
type UserAuth struct {
	ID        uuid.UUID `json:"_id" bson:"_id" example:"d290f1ee-6c54-4b01-90e6-d701748f0851"` // Unique identifier (UUID).
	Name      string    `json:"name" bson:"name" example:"John Doe"`                           // Display name.
	Email     string    `json:"email" bson:"email" example:"john.doe@example.com"`             // Unique email address used for login.
	Avatar    string    `json:"avatar" bson:"avatar"`                                          // Gravatar URL derived from the email.
	Password  string    `json:"-" bson:"password"`                                             // Hashed password (never exposed).
	CreatedAt time.Time `json:"date" bson:"date"`                                              // Timestamp when the identity was created.
}

// UserSummary is the public slice of an identity embedded into other documents.
type UserSummary struct {
	ID     uuid.UUID `json:"_id"`
	Name   string    `json:"name"`
	Avatar string    `json:"avatar"`
}

// Summary returns the public projection of the identity.
func (u *UserAuth) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Avatar: u.Avatar}
}

// TokenUser is the identity section embedded in access tokens.
type TokenUser struct {
	ID string `json:"id"`
}

// Claims are the JWT claims issued on login and registration.
type Claims struct {
	User TokenUser `json:"user"`
	jwt.RegisteredClaims
}

// RegisterParams is the body of POST /api/users.
type RegisterParams struct {
	Name     string `json:"name" example:"John Doe"`
	Email    string `json:"email" example:"john.doe@example.com"`
	Password string `json:"password" example:"secret123"`
}

// LoginParams is the body of POST /api/auth.
type LoginParams struct {
	Email    string `json:"email" example:"john.doe@example.com"`
	Password string `json:"password" example:"secret123"`
}

// TokenResponse is returned after a successful login or registration.
type TokenResponse struct {
	Token string `json:"token"`
}
