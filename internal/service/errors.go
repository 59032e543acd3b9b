package service

import (
	"github.com/pkg/errors"
)

// Error kinds. Every error a service returns on purpose wraps exactly one of
// these; anything else is an internal failure.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrConflict           = errors.New("conflict")
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRateLimited        = errors.New("rate limited")
)

type Kind string

const (
	KindInvalidInput       Kind = "invalid_input"
	KindConflict           Kind = "conflict"
	KindNotFound           Kind = "not_found"
	KindForbidden          Kind = "forbidden"
	KindInvalidCredentials Kind = "invalid_credentials"
	KindRateLimited        Kind = "rate_limited"
	KindInternal           Kind = "internal"
)

// Error is a typed operation failure.
type Error struct {
	kind error
	msg  string
}

func newError(kind error, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Unwrap() error { return e.kind }

func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrInvalidCredentials):
		return KindInvalidCredentials
	case errors.Is(err, ErrRateLimited):
		return KindRateLimited
	default:
		return KindInternal
	}
}

var (
	ErrMissingFields = newError(ErrInvalidInput, "all fields are required")
	ErrEmailTaken    = newError(ErrConflict, "email already taken")
	ErrUsernameTaken = newError(ErrConflict, "username already taken")
	ErrInvalidCreds  = newError(ErrInvalidCredentials, "invalid email or password")
	ErrTooManyLogins = newError(ErrRateLimited, "too many login attempts, try again later")

	ErrUserNotFound     = newError(ErrNotFound, "user not found")
	ErrCannotFollowSelf = newError(ErrInvalidInput, "you cannot follow or unfollow yourself")
	ErrAlreadyFollowing = newError(ErrConflict, "already following this user")
	ErrInvalidDOB       = newError(ErrInvalidInput, "date of birth must be YYYY-MM-DD")
	ErrNotProfileOwner  = newError(ErrForbidden, "you can only change your own profile")

	ErrEmptyContent     = newError(ErrInvalidInput, "tweet content is required")
	ErrTweetNotFound    = newError(ErrNotFound, "tweet not found")
	ErrParentNotFound   = newError(ErrNotFound, "parent tweet not found")
	ErrAlreadyLiked     = newError(ErrConflict, "already liked this tweet")
	ErrCannotRetweetOwn = newError(ErrInvalidInput, "you cannot retweet your own tweet")
	ErrAlreadyRetweeted = newError(ErrConflict, "already retweeted")
	ErrNotTweetAuthor   = newError(ErrForbidden, "only the author can delete this tweet")
)
