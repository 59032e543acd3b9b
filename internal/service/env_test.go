package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/vedran77/tweeter/internal/domain"
	"github.com/vedran77/tweeter/internal/repository/memory"
	"github.com/vedran77/tweeter/internal/security/credential"
	"github.com/vedran77/tweeter/internal/service"
	"github.com/vedran77/tweeter/internal/util"
)

type testEnv struct {
	users  *memory.UserRepo
	tweets *memory.TweetRepo
	clock  *util.StubClock
	tokens *credential.TokenManager

	auth    *service.AuthService
	profile *service.UserService
	tweet   *service.TweetService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger, _ := logrustest.NewNullLogger()
	env := &testEnv{
		users:  memory.NewUserRepo(),
		tweets: memory.NewTweetRepo(),
		clock:  util.NewStubClock(),
		tokens: credential.NewTokenManager("test-secret", time.Hour),
	}
	// Small argon2 parameters keep the suite fast.
	hasher := &credential.Argon2Hasher{Time: 1, Memory: 1024, Threads: 1, KeyLen: 32}

	env.auth = service.NewAuthService(env.users, hasher, env.tokens, env.clock, logger)
	env.profile = service.NewUserService(env.users, logger)
	env.tweet = service.NewTweetService(env.tweets, env.users, env.clock, logger)
	return env
}

func getTestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

func (e *testEnv) register(ctx context.Context, t *testing.T) *domain.User {
	t.Helper()
	user, err := e.auth.Register(ctx, service.RegisterInput{
		Name:     gofakeit.Name(),
		Username: strings.ToLower(gofakeit.Username()) + gofakeit.DigitN(6),
		Email:    gofakeit.DigitN(6) + gofakeit.Email(),
		Password: gofakeit.Password(true, true, true, false, false, 12),
	})
	require.NoError(t, err)
	return user
}

func (e *testEnv) post(ctx context.Context, t *testing.T, author *domain.User, content string) *domain.TweetView {
	t.Helper()
	tweet, err := e.tweet.Create(ctx, author.ID, service.CreateTweetInput{Content: content})
	require.NoError(t, err)
	return tweet
}
