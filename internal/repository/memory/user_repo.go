// Package memory is an in-process arena store: every record lives in a map
// keyed by id and relations are id slices resolved by the caller.
//
// Lock order is always repo mutex first, then record mutexes, and a pair of
// records is locked lower id first.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/vedran77/tweeter/internal/domain"
	"github.com/vedran77/tweeter/internal/repository"
)

type userRecord struct {
	mu   sync.Mutex
	user domain.User
}

type UserRepo struct {
	mu         sync.RWMutex
	records    map[uuid.UUID]*userRecord
	byEmail    map[string]uuid.UUID
	byUsername map[string]uuid.UUID
}

func NewUserRepo() *UserRepo {
	return &UserRepo{
		records:    make(map[uuid.UUID]*userRecord),
		byEmail:    make(map[string]uuid.UUID),
		byUsername: make(map[string]uuid.UUID),
	}
}

func (r *UserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[user.ID]; ok {
		return repository.ErrDuplicate
	}
	if _, ok := r.byEmail[user.Email]; ok {
		return repository.ErrDuplicate
	}
	if _, ok := r.byUsername[user.Username]; ok {
		return repository.ErrDuplicate
	}

	r.records[user.ID] = &userRecord{user: cloneUser(user)}
	r.byEmail[user.Email] = user.ID
	r.byUsername[user.Username] = user.ID
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.read(id), nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return nil, nil
	}
	return r.read(id), nil
}

func (r *UserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byUsername[username]
	if !ok {
		return nil, nil
	}
	return r.read(id), nil
}

func (r *UserRepo) ListByIDs(_ context.Context, ids []uuid.UUID) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]domain.User, 0, len(ids))
	for _, id := range ids {
		if u := r.read(id); u != nil {
			users = append(users, *u)
		}
	}
	return users, nil
}

func (r *UserRepo) UpdateProfile(_ context.Context, id uuid.UUID, update repository.ProfileUpdate) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if update.Name != nil {
		rec.user.Name = *update.Name
	}
	if update.Location != nil {
		rec.user.Location = cloneString(update.Location)
	}
	if update.DOB != nil {
		dob := *update.DOB
		rec.user.DOB = &dob
	}
	u := cloneUser(&rec.user)
	return &u, nil
}

func (r *UserRepo) SetProfilePic(_ context.Context, id uuid.UUID, ref string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[id]
	if !ok {
		return repository.ErrNotFound
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.user.ProfilePic = &ref
	return nil
}

func (r *UserRepo) Follow(_ context.Context, followerID, followeeID uuid.UUID) error {
	return r.withPair(followerID, followeeID, func(follower, followee *domain.User) error {
		if follower.IsFollowing(followeeID) {
			return repository.ErrDuplicate
		}
		follower.Following = append(follower.Following, followeeID)
		if !slices.Contains(followee.Followers, followerID) {
			followee.Followers = append(followee.Followers, followerID)
		}
		return nil
	})
}

func (r *UserRepo) Unfollow(_ context.Context, followerID, followeeID uuid.UUID) error {
	return r.withPair(followerID, followeeID, func(follower, followee *domain.User) error {
		follower.Following = domain.RemoveID(follower.Following, followeeID)
		followee.Followers = domain.RemoveID(followee.Followers, followerID)
		return nil
	})
}

// withPair runs fn with both records locked.
func (r *UserRepo) withPair(aID, bID uuid.UUID, fn func(a, b *domain.User) error) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, okA := r.records[aID]
	b, okB := r.records[bID]
	if !okA || !okB {
		return repository.ErrNotFound
	}
	if a == b {
		return repository.ErrDuplicate
	}

	first, second := a, b
	if aID.String() > bID.String() {
		first, second = b, a
	}
	first.mu.Lock()
	defer first.mu.Unlock()
	second.mu.Lock()
	defer second.mu.Unlock()

	return fn(&a.user, &b.user)
}

// read must be called with r.mu held.
func (r *UserRepo) read(id uuid.UUID) *domain.User {
	rec, ok := r.records[id]
	if !ok {
		return nil
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	u := cloneUser(&rec.user)
	return &u
}

func cloneUser(u *domain.User) domain.User {
	c := *u
	c.ProfilePic = cloneString(u.ProfilePic)
	c.Location = cloneString(u.Location)
	if u.DOB != nil {
		dob := *u.DOB
		c.DOB = &dob
	}
	c.Following = cloneIDs(u.Following)
	c.Followers = cloneIDs(u.Followers)
	return c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneIDs(ids []uuid.UUID) []uuid.UUID {
	if ids == nil {
		return []uuid.UUID{}
	}
	return slices.Clone(ids)
}
