package service_test

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vedran77/tweeter/internal/service"
)

func TestCreateTweet(t *testing.T) {
	ctx, cancel := getTestContext()
	defer cancel()
	env := newTestEnv(t)

	alice := env.register(ctx, t)

	image := "/uploads/tweetImages/cat.png"
	view, err := env.tweet.Create(ctx, alice.ID, service.CreateTweetInput{Content: " hello ", Image: &image})
	require.NoError(t, err)
	assert.Equal(t, "hello", view.Content)
	assert.Equal(t, alice.ID, view.TweetedBy)
	require.NotNil(t, view.Author)
	assert.Equal(t, alice.Username, view.Author.Username)
	require.NotNil(t, view.Image)
	assert.Equal(t, image, *view.Image)
	assert.Equal(t, env.clock.NowUtc(), view.CreatedAt)
	assert.NotNil(t, view.Likes)
	assert.Empty(t, view.Likes)
	assert.Empty(t, view.RetweetBy)
	assert.Empty(t, view.Replies)
	assert.Nil(t, view.ParentID)

	_, err = env.tweet.Create(ctx, alice.ID, service.CreateTweetInput{Content: "   "})
	require.ErrorIs(t, err, service.ErrEmptyContent)
	assert.Equal(t, service.KindInvalidInput, service.KindOf(err))
}

func TestLikeUnlike(t *testing.T) {
	ctx, cancel := getTestContext()
	defer cancel()
	env := newTestEnv(t)

	alice := env.register(ctx, t)
	bob := env.register(ctx, t)
	tweet := env.post(ctx, t, alice, "hello")

	require.NoError(t, env.tweet.Like(ctx, bob.ID, tweet.ID))
	err := env.tweet.Like(ctx, bob.ID, tweet.ID)
	require.ErrorIs(t, err, service.ErrAlreadyLiked)
	assert.Equal(t, service.KindConflict, service.KindOf(err))

	got, err := env.tweet.Get(ctx, tweet.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{bob.ID}, got.Likes)
	require.Len(t, got.Likers, 1)
	assert.Equal(t, bob.ID, got.Likers[0].ID)

	require.NoError(t, env.tweet.Unlike(ctx, bob.ID, tweet.ID))
	require.NoError(t, env.tweet.Unlike(ctx, bob.ID, tweet.ID))
	got, err = env.tweet.Get(ctx, tweet.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Likes)

	require.ErrorIs(t, env.tweet.Like(ctx, bob.ID, uuid.New()), service.ErrTweetNotFound)
	require.ErrorIs(t, env.tweet.Unlike(ctx, bob.ID, uuid.New()), service.ErrTweetNotFound)
}

func TestConcurrentLikesAreNotLost(t *testing.T) {
	ctx, cancel := getTestContext()
	defer cancel()
	env := newTestEnv(t)

	alice := env.register(ctx, t)
	tweet := env.post(ctx, t, alice, "popular")

	const n = 40
	likers := make([]uuid.UUID, n)
	for i := range likers {
		likers[i] = env.register(ctx, t).ID
	}

	var wg sync.WaitGroup
	for _, id := range likers {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			assert.NoError(t, env.tweet.Like(ctx, id, tweet.ID))
		}(id)
	}
	wg.Wait()

	got, err := env.tweet.Get(ctx, tweet.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, likers, got.Likes)
}

func TestRetweet(t *testing.T) {
	ctx, cancel := getTestContext()
	defer cancel()
	env := newTestEnv(t)

	alice := env.register(ctx, t)
	bob := env.register(ctx, t)
	tweet := env.post(ctx, t, alice, "hello")

	err := env.tweet.Retweet(ctx, alice.ID, tweet.ID)
	require.ErrorIs(t, err, service.ErrCannotRetweetOwn)
	assert.Equal(t, service.KindInvalidInput, service.KindOf(err))

	require.NoError(t, env.tweet.Retweet(ctx, bob.ID, tweet.ID))
	require.ErrorIs(t, env.tweet.Retweet(ctx, bob.ID, tweet.ID), service.ErrAlreadyRetweeted)
	require.ErrorIs(t, env.tweet.Retweet(ctx, bob.ID, uuid.New()), service.ErrTweetNotFound)

	got, err := env.tweet.Get(ctx, tweet.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{bob.ID}, got.RetweetBy)
	require.Len(t, got.Retweeters, 1)
	assert.Equal(t, bob.ID, got.Retweeters[0].ID)
}

func TestReply(t *testing.T) {
	ctx, cancel := getTestContext()
	defer cancel()
	env := newTestEnv(t)

	alice := env.register(ctx, t)
	bob := env.register(ctx, t)
	tweet := env.post(ctx, t, alice, "hello")

	result, err := env.tweet.Reply(ctx, bob.ID, tweet.ID, service.ReplyInput{Content: "hi"})
	require.NoError(t, err)
	assert.Equal(t, tweet.ID, result.ParentID)
	require.NotNil(t, result.Reply.ParentID)
	assert.Equal(t, tweet.ID, *result.Reply.ParentID)

	got, err := env.tweet.Get(ctx, tweet.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{result.Reply.ID}, got.Replies)
	require.Len(t, got.ReplyTweets, 1)
	assert.Equal(t, "hi", got.ReplyTweets[0].Content)
	require.NotNil(t, got.ReplyTweets[0].Author)
	assert.Equal(t, bob.ID, got.ReplyTweets[0].Author.ID)

	_, err = env.tweet.Reply(ctx, bob.ID, uuid.New(), service.ReplyInput{Content: "hi"})
	require.ErrorIs(t, err, service.ErrParentNotFound)
	assert.Equal(t, service.KindNotFound, service.KindOf(err))

	_, err = env.tweet.Reply(ctx, bob.ID, tweet.ID, service.ReplyInput{Content: ""})
	require.ErrorIs(t, err, service.ErrEmptyContent)
}

func TestConcurrentRepliesAppendOnce(t *testing.T) {
	ctx, cancel := getTestContext()
	defer cancel()
	env := newTestEnv(t)

	alice := env.register(ctx, t)
	tweet := env.post(ctx, t, alice, "thread")

	const n = 25
	ids := make(chan uuid.UUID, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := env.tweet.Reply(ctx, alice.ID, tweet.ID, service.ReplyInput{Content: "reply"})
			if assert.NoError(t, err) {
				ids <- res.Reply.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	var want []uuid.UUID
	for id := range ids {
		want = append(want, id)
	}

	got, err := env.tweet.Get(ctx, tweet.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, want, got.Replies)
}

func TestDeleteTweet(t *testing.T) {
	ctx, cancel := getTestContext()
	defer cancel()
	env := newTestEnv(t)

	alice := env.register(ctx, t)
	bob := env.register(ctx, t)
	tweet := env.post(ctx, t, alice, "hello")

	err := env.tweet.Delete(ctx, bob.ID, tweet.ID)
	require.ErrorIs(t, err, service.ErrNotTweetAuthor)
	assert.Equal(t, service.KindForbidden, service.KindOf(err))

	require.NoError(t, env.tweet.Delete(ctx, alice.ID, tweet.ID))
	_, err = env.tweet.Get(ctx, tweet.ID)
	require.ErrorIs(t, err, service.ErrTweetNotFound)
	require.ErrorIs(t, env.tweet.Delete(ctx, alice.ID, tweet.ID), service.ErrTweetNotFound)
}

func TestListOrdering(t *testing.T) {
	ctx, cancel := getTestContext()
	defer cancel()
	env := newTestEnv(t)

	alice := env.register(ctx, t)
	bob := env.register(ctx, t)

	first := env.post(ctx, t, alice, "first")
	env.clock.Advance(time.Minute)
	second := env.post(ctx, t, bob, "second")
	// Same timestamp as second: insertion order breaks the tie.
	third := env.post(ctx, t, alice, "third")
	require.NoError(t, env.tweet.Like(ctx, bob.ID, first.ID))

	all, err := env.tweet.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []uuid.UUID{third.ID, second.ID, first.ID},
		[]uuid.UUID{all[0].ID, all[1].ID, all[2].ID})
	for _, v := range all {
		require.NotNil(t, v.Author)
		assert.Equal(t, v.TweetedBy, v.Author.ID)
	}
	require.Len(t, all[2].Likers, 1)
	assert.Equal(t, bob.ID, all[2].Likers[0].ID)

	mine, err := env.tweet.ListByUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, third.ID, mine[0].ID)
	assert.Equal(t, first.ID, mine[1].ID)

	none, err := env.tweet.ListByUser(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestListByUserIncludesReplies(t *testing.T) {
	ctx, cancel := getTestContext()
	defer cancel()
	env := newTestEnv(t)

	alice := env.register(ctx, t)
	bob := env.register(ctx, t)
	tweet := env.post(ctx, t, alice, "hello")

	env.clock.Advance(time.Second)
	res, err := env.tweet.Reply(ctx, bob.ID, tweet.ID, service.ReplyInput{Content: "hi"})
	require.NoError(t, err)

	bobs, err := env.tweet.ListByUser(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, bobs, 1)
	assert.Equal(t, res.Reply.ID, bobs[0].ID)
}
