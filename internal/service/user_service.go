package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vedran77/tweeter/internal/domain"
	"github.com/vedran77/tweeter/internal/repository"
)

const dobLayout = "2006-01-02"

type UserService struct {
	userRepo repository.UserRepository
	logger   logrus.FieldLogger
}

func NewUserService(userRepo repository.UserRepository, logger logrus.FieldLogger) *UserService {
	return &UserService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// EditProfileInput carries optional profile changes. Nil or blank fields are
// left untouched.
type EditProfileInput struct {
	Name     *string `json:"name,omitempty"`
	Location *string `json:"location,omitempty"`
	DOB      *string `json:"dob,omitempty"`
}

func (s *UserService) GetProfile(ctx context.Context, id uuid.UUID) (*domain.UserProfile, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	profile := &domain.UserProfile{User: *user}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profile.FollowingUsers, err = s.summaries(gctx, user.Following)
		return err
	})
	g.Go(func() error {
		var err error
		profile.FollowerUsers, err = s.summaries(gctx, user.Followers)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "resolving follow graph")
	}

	return profile, nil
}

func (s *UserService) EditProfile(ctx context.Context, callerID uuid.UUID, input EditProfileInput) (*domain.User, error) {
	var update repository.ProfileUpdate
	if name := trimmed(input.Name); name != "" {
		update.Name = &name
	}
	if location := trimmed(input.Location); location != "" {
		update.Location = &location
	}
	if raw := trimmed(input.DOB); raw != "" {
		dob, err := time.Parse(dobLayout, raw)
		if err != nil {
			return nil, ErrInvalidDOB
		}
		update.DOB = &dob
	}

	user, err := s.userRepo.UpdateProfile(ctx, callerID, update)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, errors.Wrap(err, "updating profile")
	}

	s.logger.WithField("user_id", user.ID).Debug("profile updated")
	return user, nil
}

// SetProfileImage stores an already uploaded image reference on the user.
func (s *UserService) SetProfileImage(ctx context.Context, id uuid.UUID, ref string) (*domain.User, error) {
	if strings.TrimSpace(ref) == "" {
		return nil, newError(ErrInvalidInput, "image reference is required")
	}

	if err := s.userRepo.SetProfilePic(ctx, id, ref); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, errors.Wrap(err, "setting profile picture")
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *UserService) Follow(ctx context.Context, callerID, targetID uuid.UUID) error {
	if callerID == targetID {
		return ErrCannotFollowSelf
	}

	err := s.userRepo.Follow(ctx, callerID, targetID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrUserNotFound
	case errors.Is(err, repository.ErrDuplicate):
		return ErrAlreadyFollowing
	case err != nil:
		return errors.Wrap(err, "following user")
	}

	s.logger.WithFields(logrus.Fields{
		"follower": callerID,
		"followee": targetID,
	}).Debug("follow")
	return nil
}

// Unfollow succeeds when the relation is already absent.
func (s *UserService) Unfollow(ctx context.Context, callerID, targetID uuid.UUID) error {
	if callerID == targetID {
		return ErrCannotFollowSelf
	}

	err := s.userRepo.Unfollow(ctx, callerID, targetID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrUserNotFound
	case err != nil:
		return errors.Wrap(err, "unfollowing user")
	}

	s.logger.WithFields(logrus.Fields{
		"follower": callerID,
		"followee": targetID,
	}).Debug("unfollow")
	return nil
}

func (s *UserService) summaries(ctx context.Context, ids []uuid.UUID) ([]domain.UserSummary, error) {
	users, err := s.userRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]domain.UserSummary, 0, len(users))
	for i := range users {
		out = append(out, users[i].Summary())
	}
	return out, nil
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
