package service_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vedran77/tweeter/internal/service"
)

// TestAliceAndBob walks one conversation end to end.
func TestAliceAndBob(t *testing.T) {
	ctx, cancel := getTestContext()
	defer cancel()
	env := newTestEnv(t)

	alice, err := env.auth.Register(ctx, service.RegisterInput{
		Name: "Alice", Username: "alice", Email: "alice@x.com", Password: "pw-alice",
	})
	require.NoError(t, err)
	bob, err := env.auth.Register(ctx, service.RegisterInput{
		Name: "Bob", Username: "bob", Email: "bob@x.com", Password: "pw-bob",
	})
	require.NoError(t, err)

	_, err = env.auth.Register(ctx, service.RegisterInput{
		Name: "Mallory", Username: "mallory", Email: "alice@x.com", Password: "pw",
	})
	require.ErrorIs(t, err, service.ErrConflict)

	hello, err := env.tweet.Create(ctx, alice.ID, service.CreateTweetInput{Content: "hello"})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{}, hello.Likes)
	assert.Equal(t, []uuid.UUID{}, hello.RetweetBy)
	assert.Equal(t, []uuid.UUID{}, hello.Replies)

	require.NoError(t, env.tweet.Like(ctx, bob.ID, hello.ID))
	got, err := env.tweet.Get(ctx, hello.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{bob.ID}, got.Likes)

	require.ErrorIs(t, env.tweet.Like(ctx, bob.ID, hello.ID), service.ErrConflict)
	require.ErrorIs(t, env.tweet.Retweet(ctx, alice.ID, hello.ID), service.ErrInvalidInput)

	res, err := env.tweet.Reply(ctx, bob.ID, hello.ID, service.ReplyInput{Content: "hi"})
	require.NoError(t, err)
	got, err = env.tweet.Get(ctx, hello.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{res.Reply.ID}, got.Replies)
	require.NotNil(t, res.Reply.ParentID)
	assert.Equal(t, hello.ID, *res.Reply.ParentID)

	require.NoError(t, env.tweet.Delete(ctx, alice.ID, hello.ID))
	_, err = env.tweet.Get(ctx, hello.ID)
	require.ErrorIs(t, err, service.ErrNotFound)

	reply, err := env.tweet.Get(ctx, res.Reply.ID)
	require.NoError(t, err)
	require.NotNil(t, reply.ParentID)
	assert.Equal(t, hello.ID, *reply.ParentID)
}
