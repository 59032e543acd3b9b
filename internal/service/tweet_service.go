package service

import (
	"context"
	"maps"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vedran77/tweeter/internal/domain"
	"github.com/vedran77/tweeter/internal/repository"
	"github.com/vedran77/tweeter/internal/util"
)

type TweetService struct {
	tweetRepo repository.TweetRepository
	userRepo  repository.UserRepository
	clock     util.Clock
	logger    logrus.FieldLogger
}

func NewTweetService(
	tweetRepo repository.TweetRepository,
	userRepo repository.UserRepository,
	clock util.Clock,
	logger logrus.FieldLogger,
) *TweetService {
	return &TweetService{
		tweetRepo: tweetRepo,
		userRepo:  userRepo,
		clock:     clock,
		logger:    logger,
	}
}

type CreateTweetInput struct {
	Content string  `json:"content"`
	Image   *string `json:"image,omitempty"`
}

type ReplyInput struct {
	Content string `json:"content"`
}

type ReplyResult struct {
	ParentID uuid.UUID         `json:"tweet_id"`
	Reply    *domain.TweetView `json:"reply"`
}

func (s *TweetService) Create(ctx context.Context, authorID uuid.UUID, input CreateTweetInput) (*domain.TweetView, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	author, err := s.author(ctx, authorID)
	if err != nil {
		return nil, err
	}

	tweet := s.newTweet(authorID, content)
	if input.Image != nil && *input.Image != "" {
		image := *input.Image
		tweet.Image = &image
	}

	if err := s.tweetRepo.Create(ctx, tweet); err != nil {
		return nil, errors.Wrap(err, "creating tweet")
	}

	s.logger.WithFields(logrus.Fields{
		"tweet_id":  tweet.ID,
		"author_id": authorID,
	}).Debug("tweet created")

	summary := author.Summary()
	return &domain.TweetView{Tweet: *tweet, Author: &summary}, nil
}

// CheckAuthor returns ErrUserNotFound unless authorID belongs to a user.
// Callers use it before storing attachments for a new tweet.
func (s *TweetService) CheckAuthor(ctx context.Context, authorID uuid.UUID) error {
	_, err := s.author(ctx, authorID)
	return err
}

func (s *TweetService) author(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "loading author")
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// Reply creates a reply and appends it to the parent's replies in one step.
func (s *TweetService) Reply(ctx context.Context, authorID, parentID uuid.UUID, input ReplyInput) (*ReplyResult, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	author, err := s.author(ctx, authorID)
	if err != nil {
		return nil, err
	}

	reply := s.newTweet(authorID, content)
	reply.ParentID = &parentID

	if err := s.tweetRepo.CreateReply(ctx, reply); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrParentNotFound
		}
		return nil, errors.Wrap(err, "creating reply")
	}

	s.logger.WithFields(logrus.Fields{
		"tweet_id":  reply.ID,
		"parent_id": parentID,
		"author_id": authorID,
	}).Debug("reply created")

	summary := author.Summary()
	return &ReplyResult{
		ParentID: parentID,
		Reply:    &domain.TweetView{Tweet: *reply, Author: &summary},
	}, nil
}

func (s *TweetService) Like(ctx context.Context, userID, tweetID uuid.UUID) error {
	err := s.tweetRepo.AddLike(ctx, tweetID, userID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrTweetNotFound
	case errors.Is(err, repository.ErrDuplicate):
		return ErrAlreadyLiked
	case err != nil:
		return errors.Wrap(err, "liking tweet")
	}
	return nil
}

// Unlike is a no-op when the user has not liked the tweet.
func (s *TweetService) Unlike(ctx context.Context, userID, tweetID uuid.UUID) error {
	err := s.tweetRepo.RemoveLike(ctx, tweetID, userID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrTweetNotFound
	case err != nil:
		return errors.Wrap(err, "unliking tweet")
	}
	return nil
}

func (s *TweetService) Retweet(ctx context.Context, userID, tweetID uuid.UUID) error {
	tweet, err := s.tweetRepo.GetByID(ctx, tweetID)
	if err != nil {
		return err
	}
	if tweet == nil {
		return ErrTweetNotFound
	}
	// The author never changes, so this check cannot go stale.
	if tweet.TweetedBy == userID {
		return ErrCannotRetweetOwn
	}

	err = s.tweetRepo.AddRetweet(ctx, tweetID, userID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrTweetNotFound
	case errors.Is(err, repository.ErrDuplicate):
		return ErrAlreadyRetweeted
	case err != nil:
		return errors.Wrap(err, "retweeting")
	}
	return nil
}

// Delete removes only the tweet itself. Replies keep their parent id and the
// parent keeps the deleted id in its replies.
func (s *TweetService) Delete(ctx context.Context, callerID, tweetID uuid.UUID) error {
	tweet, err := s.tweetRepo.GetByID(ctx, tweetID)
	if err != nil {
		return err
	}
	if tweet == nil {
		return ErrTweetNotFound
	}
	if tweet.TweetedBy != callerID {
		return ErrNotTweetAuthor
	}

	if err := s.tweetRepo.Delete(ctx, tweetID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTweetNotFound
		}
		return errors.Wrap(err, "deleting tweet")
	}

	s.logger.WithField("tweet_id", tweetID).Info("tweet deleted")
	return nil
}

// Get returns the tweet with its author, likers, retweeters and direct
// replies resolved.
func (s *TweetService) Get(ctx context.Context, tweetID uuid.UUID) (*domain.TweetView, error) {
	tweet, err := s.tweetRepo.GetByID(ctx, tweetID)
	if err != nil {
		return nil, err
	}
	if tweet == nil {
		return nil, ErrTweetNotFound
	}

	var (
		replies []domain.Tweet
		users   map[uuid.UUID]domain.UserSummary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		replies, err = s.tweetRepo.ListByIDs(gctx, tweet.Replies)
		return errors.Wrap(err, "loading replies")
	})
	g.Go(func() error {
		var err error
		users, err = s.userIndex(gctx, engagementIDs(tweet))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var missing []uuid.UUID
	for i := range replies {
		if _, ok := users[replies[i].TweetedBy]; !ok {
			missing = append(missing, replies[i].TweetedBy)
		}
	}
	if len(missing) > 0 {
		authors, err := s.userIndex(ctx, missing)
		if err != nil {
			return nil, err
		}
		maps.Copy(users, authors)
	}

	view := buildView(tweet, users, true)
	view.ReplyTweets = make([]domain.TweetView, 0, len(replies))
	for i := range replies {
		view.ReplyTweets = append(view.ReplyTweets, buildView(&replies[i], users, false))
	}
	return &view, nil
}

// ListByUser returns every tweet and reply authored by userID, newest first.
func (s *TweetService) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.TweetView, error) {
	tweets, err := s.tweetRepo.ListByAuthor(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "listing user tweets")
	}
	return s.views(ctx, tweets)
}

// ListAll returns the global feed, newest first.
func (s *TweetService) ListAll(ctx context.Context) ([]domain.TweetView, error) {
	tweets, err := s.tweetRepo.ListAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "listing tweets")
	}
	return s.views(ctx, tweets)
}

func (s *TweetService) newTweet(authorID uuid.UUID, content string) *domain.Tweet {
	return &domain.Tweet{
		ID:        uuid.New(),
		Content:   content,
		TweetedBy: authorID,
		Likes:     []uuid.UUID{},
		RetweetBy: []uuid.UUID{},
		Replies:   []uuid.UUID{},
		CreatedAt: s.clock.NowUtc(),
	}
}

func (s *TweetService) views(ctx context.Context, tweets []domain.Tweet) ([]domain.TweetView, error) {
	var ids []uuid.UUID
	for i := range tweets {
		ids = append(ids, engagementIDs(&tweets[i])...)
	}
	users, err := s.userIndex(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]domain.TweetView, 0, len(tweets))
	for i := range tweets {
		out = append(out, buildView(&tweets[i], users, true))
	}
	return out, nil
}

// userIndex loads the distinct users in ids in one batch.
func (s *TweetService) userIndex(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.UserSummary, error) {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	distinct := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		distinct = append(distinct, id)
	}

	users, err := s.userRepo.ListByIDs(ctx, distinct)
	if err != nil {
		return nil, errors.Wrap(err, "resolving users")
	}
	index := make(map[uuid.UUID]domain.UserSummary, len(users))
	for i := range users {
		index[users[i].ID] = users[i].Summary()
	}
	return index, nil
}

func engagementIDs(t *domain.Tweet) []uuid.UUID {
	ids := make([]uuid.UUID, 0, 1+len(t.Likes)+len(t.RetweetBy))
	ids = append(ids, t.TweetedBy)
	ids = append(ids, t.Likes...)
	return append(ids, t.RetweetBy...)
}

func buildView(t *domain.Tweet, users map[uuid.UUID]domain.UserSummary, engagement bool) domain.TweetView {
	view := domain.TweetView{Tweet: *t}
	if author, ok := users[t.TweetedBy]; ok {
		view.Author = &author
	}
	if engagement {
		view.Likers = pick(users, t.Likes)
		view.Retweeters = pick(users, t.RetweetBy)
	}
	return view
}

func pick(users map[uuid.UUID]domain.UserSummary, ids []uuid.UUID) []domain.UserSummary {
	out := make([]domain.UserSummary, 0, len(ids))
	for _, id := range ids {
		if u, ok := users[id]; ok {
			out = append(out, u)
		}
	}
	return out
}
