package auth

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// User is a registered account. The password hash never leaves the server.
type User struct {
	ID           bson.ObjectID `bson:"_id,omitempty" json:"id,omitempty" swaggertype:"string" example:"683cdb8aa96ad71e8e075bd1"`
	Email        string        `bson:"email" json:"email" example:"test@example.com"`
	PasswordHash string        `bson:"password_hash" json:"-"`
	CreatedAt    time.Time     `bson:"created_at" json:"created_at" example:"2025-06-01T23:00:26.005703677Z"`
	UpdatedAt    time.Time     `bson:"updated_at" json:"updated_at" example:"2025-06-01T23:00:26.005703677Z"`
}

// Identity is the principal a token for u authenticates.
func (u *User) Identity() Identity {
	return Identity{UserID: u.ID, Email: u.Email}
}

// UsersRepo stores accounts. Create reports a taken email as ErrDuplicate and
// FindByEmail a missing one as ErrUserNotFound.
type UsersRepo interface {
	Create(ctx context.Context, user *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
}

// SignUpRequest represents a user registration request
type SignUpRequest struct {
	Email    string `json:"email" validate:"required,email" example:"test@example.com"`
	Password string `json:"password" validate:"required,password" example:"Password123"`
}

// SignInRequest represents a user login request
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email" example:"test@example.com"`
	Password string `json:"password" validate:"required" example:"Password123"`
}

// AuthResponse carries the account and a freshly signed access token.
type AuthResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}
