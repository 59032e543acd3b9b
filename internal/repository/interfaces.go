package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/vedran77/tweeter/internal/domain"
)

// Conditional mutations report these; plain lookups return (nil, nil) when
// the record does not exist.
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// ProfileUpdate lists the profile fields to overwrite; nil leaves a field as is.
type ProfileUpdate struct {
	Name     *string
	Location *string
	DOB      *time.Time
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.User, error)
	// UpdateProfile applies the set fields of update in one write and returns
	// the stored user. ErrNotFound if the user does not exist.
	UpdateProfile(ctx context.Context, id uuid.UUID, update ProfileUpdate) (*domain.User, error)
	SetProfilePic(ctx context.Context, id uuid.UUID, ref string) error
	// Follow adds followeeID to follower's following and followerID to
	// followee's followers as one unit. ErrDuplicate if already following.
	Follow(ctx context.Context, followerID, followeeID uuid.UUID) error
	// Unfollow removes both sides of the relation; a missing relation is not an error.
	Unfollow(ctx context.Context, followerID, followeeID uuid.UUID) error
}

type TweetRepository interface {
	Create(ctx context.Context, tweet *domain.Tweet) error
	// CreateReply stores reply and appends its id to the parent's replies as
	// one unit. ErrNotFound if the parent does not exist.
	CreateReply(ctx context.Context, reply *domain.Tweet) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Tweet, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Tweet, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]domain.Tweet, error)
	ListAll(ctx context.Context) ([]domain.Tweet, error)
	AddLike(ctx context.Context, tweetID, userID uuid.UUID) error
	RemoveLike(ctx context.Context, tweetID, userID uuid.UUID) error
	AddRetweet(ctx context.Context, tweetID, userID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}
