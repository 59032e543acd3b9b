package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID   `json:"id"`
	Name         string      `json:"name"`
	Username     string      `json:"username"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"`
	ProfilePic   *string     `json:"profile_pic,omitempty"`
	Location     *string     `json:"location,omitempty"`
	DOB          *time.Time  `json:"dob,omitempty"`
	Following    []uuid.UUID `json:"following"`
	Followers    []uuid.UUID `json:"followers"`
	CreatedAt    time.Time   `json:"created_at"`
}

// UserSummary is the reference form of a user embedded in other views.
type UserSummary struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Username   string    `json:"username"`
	ProfilePic *string   `json:"profile_pic,omitempty"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:         u.ID,
		Name:       u.Name,
		Username:   u.Username,
		ProfilePic: u.ProfilePic,
	}
}

// IsFollowing reports whether u follows the given user.
func (u *User) IsFollowing(id uuid.UUID) bool {
	return slices.Contains(u.Following, id)
}

// UserProfile is a user with the follow graph resolved to summaries.
type UserProfile struct {
	User
	FollowingUsers []UserSummary `json:"following_users"`
	FollowerUsers  []UserSummary `json:"follower_users"`
}
