package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/vedran77/tweeter/internal/domain"
	"github.com/vedran77/tweeter/internal/repository"
)

type tweetRecord struct {
	mu    sync.Mutex
	tweet domain.Tweet
}

type TweetRepo struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*tweetRecord
	seq     int64
}

func NewTweetRepo() *TweetRepo {
	return &TweetRepo{records: make(map[uuid.UUID]*tweetRecord)}
}

func (r *TweetRepo) Create(_ context.Context, tweet *domain.Tweet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insert(tweet)
}

// CreateReply holds the repo write lock for the whole operation, so the
// reply and the parent's updated replies become visible together.
func (r *TweetRepo) CreateReply(_ context.Context, reply *domain.Tweet) error {
	if reply.ParentID == nil {
		return repository.ErrNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	parent, ok := r.records[*reply.ParentID]
	if !ok {
		return repository.ErrNotFound
	}
	if err := r.insert(reply); err != nil {
		return err
	}

	parent.mu.Lock()
	parent.tweet.Replies = append(parent.tweet.Replies, reply.ID)
	parent.mu.Unlock()
	return nil
}

func (r *TweetRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Tweet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.read(id), nil
}

func (r *TweetRepo) ListByIDs(_ context.Context, ids []uuid.UUID) ([]domain.Tweet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tweets := make([]domain.Tweet, 0, len(ids))
	for _, id := range ids {
		if t := r.read(id); t != nil {
			tweets = append(tweets, *t)
		}
	}
	return tweets, nil
}

func (r *TweetRepo) ListByAuthor(_ context.Context, authorID uuid.UUID) ([]domain.Tweet, error) {
	return r.listWhere(func(t *domain.Tweet) bool { return t.TweetedBy == authorID }), nil
}

func (r *TweetRepo) ListAll(_ context.Context) ([]domain.Tweet, error) {
	return r.listWhere(func(*domain.Tweet) bool { return true }), nil
}

func (r *TweetRepo) AddLike(_ context.Context, tweetID, userID uuid.UUID) error {
	return r.update(tweetID, func(t *domain.Tweet) error {
		if t.LikedBy(userID) {
			return repository.ErrDuplicate
		}
		t.Likes = append(t.Likes, userID)
		return nil
	})
}

func (r *TweetRepo) RemoveLike(_ context.Context, tweetID, userID uuid.UUID) error {
	return r.update(tweetID, func(t *domain.Tweet) error {
		t.Likes = domain.RemoveID(t.Likes, userID)
		return nil
	})
}

func (r *TweetRepo) AddRetweet(_ context.Context, tweetID, userID uuid.UUID) error {
	return r.update(tweetID, func(t *domain.Tweet) error {
		if t.RetweetedBy(userID) {
			return repository.ErrDuplicate
		}
		t.RetweetBy = append(t.RetweetBy, userID)
		return nil
	})
}

func (r *TweetRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.records, id)
	return nil
}

// insert must be called with r.mu held for writing.
func (r *TweetRepo) insert(tweet *domain.Tweet) error {
	if _, ok := r.records[tweet.ID]; ok {
		return repository.ErrDuplicate
	}
	r.seq++
	tweet.Seq = r.seq
	r.records[tweet.ID] = &tweetRecord{tweet: cloneTweet(tweet)}
	return nil
}

func (r *TweetRepo) update(id uuid.UUID, fn func(t *domain.Tweet) error) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[id]
	if !ok {
		return repository.ErrNotFound
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return fn(&rec.tweet)
}

func (r *TweetRepo) listWhere(match func(t *domain.Tweet) bool) []domain.Tweet {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tweets := []domain.Tweet{}
	for id := range r.records {
		t := r.read(id)
		if match(t) {
			tweets = append(tweets, *t)
		}
	}
	slices.SortFunc(tweets, func(a, b domain.Tweet) int {
		switch {
		case domain.Newer(&a, &b):
			return -1
		case domain.Newer(&b, &a):
			return 1
		}
		return 0
	})
	return tweets
}

// read must be called with r.mu held.
func (r *TweetRepo) read(id uuid.UUID) *domain.Tweet {
	rec, ok := r.records[id]
	if !ok {
		return nil
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	t := cloneTweet(&rec.tweet)
	return &t
}

func cloneTweet(t *domain.Tweet) domain.Tweet {
	c := *t
	c.Image = cloneString(t.Image)
	if t.ParentID != nil {
		parent := *t.ParentID
		c.ParentID = &parent
	}
	c.Likes = cloneIDs(t.Likes)
	c.RetweetBy = cloneIDs(t.RetweetBy)
	c.Replies = cloneIDs(t.Replies)
	return c
}
