package handlers

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/vedran77/tweeter/internal/observability/metrics"
	"github.com/vedran77/tweeter/internal/service"
	"github.com/vedran77/tweeter/internal/storage/blob"
	"github.com/vedran77/tweeter/internal/transport/http/middleware"
)

type RouterConfig struct {
	Auth   *service.AuthService
	Users  *service.UserService
	Tweets *service.TweetService
	Blobs  blob.Store
	Tokens middleware.TokenVerifier
	Logger logrus.FieldLogger

	// UploadDir is served under /uploads/ when set (disk blob backend).
	UploadDir   string
	CORSOrigins []string
}

func NewRouter(cfg RouterConfig) http.Handler {
	authHandler := NewAuthHandler(cfg.Auth, cfg.Logger)
	userHandler := NewUserHandler(cfg.Users, cfg.Blobs, cfg.Logger)
	tweetHandler := NewTweetHandler(cfg.Tweets, cfg.Blobs, cfg.Logger)

	auth := middleware.Auth(cfg.Tokens)
	protected := func(h http.HandlerFunc) http.Handler { return auth(h) }

	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)
	mux.HandleFunc("GET /api/v1/users/{id}", userHandler.Get)
	if cfg.UploadDir != "" {
		mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))
	}

	// Protected - Users
	mux.Handle("GET /api/v1/users/me", protected(userHandler.Me))
	mux.Handle("PATCH /api/v1/users/{id}", protected(userHandler.Update))
	mux.Handle("PUT /api/v1/users/{id}/avatar", protected(userHandler.UploadAvatar))
	mux.Handle("POST /api/v1/users/{id}/follow", protected(userHandler.Follow))
	mux.Handle("POST /api/v1/users/{id}/unfollow", protected(userHandler.Unfollow))

	// Protected - Tweets
	mux.Handle("POST /api/v1/tweets", protected(tweetHandler.Create))
	mux.Handle("GET /api/v1/tweets", protected(tweetHandler.List))
	mux.Handle("GET /api/v1/tweets/{id}", protected(tweetHandler.Get))
	mux.Handle("DELETE /api/v1/tweets/{id}", protected(tweetHandler.Delete))
	mux.Handle("POST /api/v1/tweets/{id}/like", protected(tweetHandler.Like))
	mux.Handle("POST /api/v1/tweets/{id}/dislike", protected(tweetHandler.Dislike))
	mux.Handle("POST /api/v1/tweets/{id}/reply", protected(tweetHandler.Reply))
	mux.Handle("POST /api/v1/tweets/{id}/retweet", protected(tweetHandler.Retweet))
	mux.Handle("GET /api/v1/tweets/user/{userId}", protected(tweetHandler.ListByUser))

	var handler http.Handler = mux
	handler = metrics.HTTPMetricsMiddleware(handler)
	handler = middleware.RequestLogger(cfg.Logger)(handler)
	handler = middleware.CORS(cfg.CORSOrigins)(handler)
	return handler
}
