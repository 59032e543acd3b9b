package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/vedran77/tweeter/internal/observability/metrics"
	"github.com/vedran77/tweeter/internal/service"
	"github.com/vedran77/tweeter/internal/storage/blob"
	"github.com/vedran77/tweeter/internal/transport/http/middleware"
	"github.com/vedran77/tweeter/pkg/validator"
)

type UserHandler struct {
	userService *service.UserService
	blobs       blob.Store
	logger      logrus.FieldLogger
}

func NewUserHandler(userService *service.UserService, blobs blob.Store, logger logrus.FieldLogger) *UserHandler {
	return &UserHandler{userService: userService, blobs: blobs, logger: logger}
}

// Me returns the caller's own profile.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	profile, err := h.userService.GetProfile(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeServiceError(w, h.logger, "get own profile", err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "user")
	if !ok {
		return
	}

	profile, err := h.userService.GetProfile(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, "get profile", err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id, ok := parseID(w, r, "id", "user")
	if !ok {
		return
	}
	if id != userID {
		writeServiceError(w, h.logger, "edit profile", service.ErrNotProfileOwner)
		return
	}

	var input service.EditProfileInput
	if !decodeJSON(w, r, &input) {
		return
	}
	if errs := validator.ValidateProfile(input.Name, input.Location, input.DOB); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	user, err := h.userService.EditProfile(r.Context(), userID, input)
	if err != nil {
		writeServiceError(w, h.logger, "edit profile", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id, ok := parseID(w, r, "id", "user")
	if !ok {
		return
	}
	if id != userID {
		writeServiceError(w, h.logger, "upload avatar", service.ErrNotProfileOwner)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_FORM", "Expected a multipart form up to 5MB")
		return
	}

	ref, err := storeUpload(r.Context(), r, h.blobs, "profilePic", blob.FolderAvatars)
	if err != nil {
		if !writeUploadError(w, err) {
			writeServiceError(w, h.logger, "upload avatar", err)
		}
		return
	}

	user, err := h.userService.SetProfileImage(r.Context(), userID, ref)
	if err != nil {
		writeServiceError(w, h.logger, "set profile image", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) Follow(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	targetID, ok := parseID(w, r, "id", "user")
	if !ok {
		return
	}

	if err := h.userService.Follow(r.Context(), userID, targetID); err != nil {
		writeServiceError(w, h.logger, "follow", err)
		return
	}
	metrics.ObserveEngagement("follow")
	writeMessage(w, "User followed successfully")
}

func (h *UserHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	targetID, ok := parseID(w, r, "id", "user")
	if !ok {
		return
	}

	if err := h.userService.Unfollow(r.Context(), userID, targetID); err != nil {
		writeServiceError(w, h.logger, "unfollow", err)
		return
	}
	metrics.ObserveEngagement("unfollow")
	writeMessage(w, "User unfollowed successfully")
}
