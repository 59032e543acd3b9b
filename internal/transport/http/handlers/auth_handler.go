package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/vedran77/tweeter/internal/domain"
	"github.com/vedran77/tweeter/internal/service"
	"github.com/vedran77/tweeter/pkg/validator"
)

type AuthHandler struct {
	authService *service.AuthService
	logger      logrus.FieldLogger
}

func NewAuthHandler(authService *service.AuthService, logger logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

type registerResponse struct {
	Message string       `json:"message"`
	User    *domain.User `json:"user"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input service.RegisterInput
	if !decodeJSON(w, r, &input) {
		return
	}

	if errs := validator.ValidateRegister(input.Name, input.Username, input.Email, input.Password); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	user, err := h.authService.Register(r.Context(), input)
	if err != nil {
		writeServiceError(w, h.logger, "register", err)
		return
	}

	writeJSON(w, http.StatusCreated, registerResponse{Message: "User registered successfully", User: user})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input service.LoginInput
	if !decodeJSON(w, r, &input) {
		return
	}

	if errs := validator.ValidateLogin(input.Email, input.Password); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	resp, err := h.authService.Login(r.Context(), input)
	if err != nil {
		writeServiceError(w, h.logger, "login", err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
