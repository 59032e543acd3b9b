package handlers

import (
	"mime"
	"net/http"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/vedran77/tweeter/internal/observability/metrics"
	"github.com/vedran77/tweeter/internal/service"
	"github.com/vedran77/tweeter/internal/storage/blob"
	"github.com/vedran77/tweeter/internal/transport/http/middleware"
	"github.com/vedran77/tweeter/pkg/validator"
)

type TweetHandler struct {
	tweetService *service.TweetService
	blobs        blob.Store
	logger       logrus.FieldLogger
}

func NewTweetHandler(tweetService *service.TweetService, blobs blob.Store, logger logrus.FieldLogger) *TweetHandler {
	return &TweetHandler{tweetService: tweetService, blobs: blobs, logger: logger}
}

type tweetRequest struct {
	Content string `json:"content"`
}

// Create accepts JSON, or a multipart form with "content" and an optional
// "image" file.
func (h *TweetHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var input service.CreateTweetInput
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_FORM", "Expected a multipart form up to 5MB")
			return
		}
		input.Content = r.FormValue("content")
	} else {
		var req tweetRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		input.Content = req.Content
	}

	if errs := validator.ValidateTweet(input.Content); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	if mediaType == "multipart/form-data" {
		if err := h.tweetService.CheckAuthor(r.Context(), userID); err != nil {
			writeServiceError(w, h.logger, "create tweet", err)
			return
		}
		ref, err := storeUpload(r.Context(), r, h.blobs, "image", blob.FolderTweetImages)
		switch {
		case errors.Is(err, errNoFile):
			// the image is optional
		case err != nil:
			if !writeUploadError(w, err) {
				writeServiceError(w, h.logger, "upload tweet image", err)
			}
			return
		default:
			input.Image = &ref
		}
	}

	tweet, err := h.tweetService.Create(r.Context(), userID, input)
	if err != nil {
		if input.Image != nil {
			h.logger.WithField("image", *input.Image).Warn("tweet not created, uploaded image left unreferenced")
		}
		writeServiceError(w, h.logger, "create tweet", err)
		return
	}
	metrics.ObserveEngagement("tweet")
	writeJSON(w, http.StatusCreated, tweet)
}

func (h *TweetHandler) List(w http.ResponseWriter, r *http.Request) {
	tweets, err := h.tweetService.ListAll(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, "list tweets", err)
		return
	}
	writeJSON(w, http.StatusOK, tweets)
}

func (h *TweetHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseID(w, r, "userId", "user")
	if !ok {
		return
	}

	tweets, err := h.tweetService.ListByUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.logger, "list user tweets", err)
		return
	}
	writeJSON(w, http.StatusOK, tweets)
}

func (h *TweetHandler) Get(w http.ResponseWriter, r *http.Request) {
	tweetID, ok := parseID(w, r, "id", "tweet")
	if !ok {
		return
	}

	tweet, err := h.tweetService.Get(r.Context(), tweetID)
	if err != nil {
		writeServiceError(w, h.logger, "get tweet", err)
		return
	}
	writeJSON(w, http.StatusOK, tweet)
}

func (h *TweetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	tweetID, ok := parseID(w, r, "id", "tweet")
	if !ok {
		return
	}

	if err := h.tweetService.Delete(r.Context(), userID, tweetID); err != nil {
		writeServiceError(w, h.logger, "delete tweet", err)
		return
	}
	writeMessage(w, "Tweet deleted successfully")
}

func (h *TweetHandler) Like(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	tweetID, ok := parseID(w, r, "id", "tweet")
	if !ok {
		return
	}

	if err := h.tweetService.Like(r.Context(), userID, tweetID); err != nil {
		writeServiceError(w, h.logger, "like", err)
		return
	}
	metrics.ObserveEngagement("like")
	writeMessage(w, "Tweet liked")
}

func (h *TweetHandler) Dislike(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	tweetID, ok := parseID(w, r, "id", "tweet")
	if !ok {
		return
	}

	if err := h.tweetService.Unlike(r.Context(), userID, tweetID); err != nil {
		writeServiceError(w, h.logger, "dislike", err)
		return
	}
	metrics.ObserveEngagement("unlike")
	writeMessage(w, "Tweet disliked")
}

func (h *TweetHandler) Reply(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	parentID, ok := parseID(w, r, "id", "tweet")
	if !ok {
		return
	}

	var input service.ReplyInput
	if !decodeJSON(w, r, &input) {
		return
	}
	if errs := validator.ValidateTweet(input.Content); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	result, err := h.tweetService.Reply(r.Context(), userID, parentID, input)
	if err != nil {
		writeServiceError(w, h.logger, "reply", err)
		return
	}
	metrics.ObserveEngagement("reply")
	writeJSON(w, http.StatusCreated, result)
}

func (h *TweetHandler) Retweet(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	tweetID, ok := parseID(w, r, "id", "tweet")
	if !ok {
		return
	}

	if err := h.tweetService.Retweet(r.Context(), userID, tweetID); err != nil {
		writeServiceError(w, h.logger, "retweet", err)
		return
	}
	metrics.ObserveEngagement("retweet")
	writeMessage(w, "Tweet retweeted")
}
