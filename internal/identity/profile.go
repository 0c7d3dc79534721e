// Package identity holds the user profile documents kept in the external
// document database. Authentication itself is delegated to the identity
// provider; this package only reads and writes the profile records used to
// personalize greetings and gate admin views.
package identity

import (
	"context"
	"errors"
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

var ErrProfileNotFound = errors.New("profile not found")

type Profile struct {
	UserID    string    `bson:"user_id" json:"uid"`
	FullName  string    `bson:"full_name" json:"fullName"`
	Email     string    `bson:"email" json:"email"`
	Role      string    `bson:"role" json:"role"`
	PhotoURL  string    `bson:"photo_url,omitempty" json:"photoURL,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

func (p *Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// ProfileStore defines the profile document operations.
// Consumers define this interface, not the MongoDB implementation.
type ProfileStore interface {
	Get(ctx context.Context, userID string) (*Profile, error)
	Upsert(ctx context.Context, profile *Profile) error
	SetPhotoURL(ctx context.Context, userID, photoURL string) error
	List(ctx context.Context) ([]*Profile, error)
}
