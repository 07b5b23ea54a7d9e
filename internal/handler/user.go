package handler

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/Miro-wq/phonebook-api/internal/middleware"
	"github.com/Miro-wq/phonebook-api/internal/payload"
	"github.com/Miro-wq/phonebook-api/internal/usecase"
	"github.com/Miro-wq/phonebook-api/internal/validation"
)

const maxAvatarUploadBytes = 10 << 20

// UserHandler serves the account lifecycle routes.
type UserHandler struct {
	authUC   usecase.AuthUsecase
	userUC   usecase.UserUsecase
	validate *validation.Validator
	logger   *zerolog.Logger
	tempDir  string
}

// NewUserHandler creates a UserHandler. Uploaded avatars are staged in
// tempDir before processing.
func NewUserHandler(
	authUC usecase.AuthUsecase,
	userUC usecase.UserUsecase,
	validate *validation.Validator,
	logger *zerolog.Logger,
	tempDir string,
) *UserHandler {
	return &UserHandler{
		authUC:   authUC,
		userUC:   userUC,
		validate: validate,
		logger:   logger,
		tempDir:  tempDir,
	}
}

// RegisterRoutes mounts the user routes on r; authGate guards the routes that
// need an authenticated user.
func (h *UserHandler) RegisterRoutes(r chi.Router, authGate func(http.Handler) http.Handler) {
	r.Post("/signup", h.SignUp)
	r.Post("/login", h.Login)
	r.Get("/verify/{verificationToken}", h.Verify)
	r.Post("/verify", h.ResendVerification)

	r.Group(func(r chi.Router) {
		r.Use(authGate)
		r.Get("/current", h.Current)
		r.Post("/logout", h.Logout)
		r.Patch("/", h.UpdateSubscription)
		r.Patch("/avatars", h.UpdateAvatar)
	})
}

func (h *UserHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req payload.SignUpRequest
	if err := decodeJSON(r, &req); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		respondMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.authUC.SignUp(r.Context(), usecase.SignUpParams{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, usecase.ErrEmailInUse) {
			respondMessage(w, http.StatusConflict, "Email in use")
			return
		}

		h.logger.Error().Err(err).Msg("failed to sign up user")
		respondInternalError(w)
		return
	}

	respondJSON(w, http.StatusCreated, payload.SignUpResponse{
		User: payload.UserResponse{
			Email:        user.Email,
			Subscription: user.Subscription,
		},
	})
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req payload.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		respondMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	token, user, err := h.authUC.Login(r.Context(), usecase.LoginParams{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidCredentials) {
			respondMessage(w, http.StatusUnauthorized, "Email or password is wrong")
			return
		}

		h.logger.Error().Err(err).Msg("failed to log in user")
		respondInternalError(w)
		return
	}

	respondJSON(w, http.StatusOK, payload.LoginResponse{
		Token: token,
		User: payload.UserResponse{
			Email:        user.Email,
			Subscription: user.Subscription,
		},
	})
}

func (h *UserHandler) Verify(w http.ResponseWriter, r *http.Request) {
	err := h.authUC.Verify(r.Context(), chi.URLParam(r, "verificationToken"))
	if err != nil {
		if errors.Is(err, usecase.ErrVerificationNotFound) {
			respondMessage(w, http.StatusNotFound, "User not found")
			return
		}

		h.logger.Error().Err(err).Msg("failed to verify user")
		respondInternalError(w)
		return
	}

	respondMessage(w, http.StatusOK, "Verification successful")
}

func (h *UserHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req payload.ResendVerificationRequest
	if err := decodeJSON(r, &req); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		respondMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	err := h.authUC.ResendVerification(r.Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrUserNotFound):
			respondMessage(w, http.StatusNotFound, "User not found")
		case errors.Is(err, usecase.ErrAlreadyVerified):
			respondMessage(w, http.StatusBadRequest, "Verification has already been passed")
		default:
			h.logger.Error().Err(err).Msg("failed to resend verification email")
			respondInternalError(w)
		}
		return
	}

	respondMessage(w, http.StatusOK, "Verification email sent")
}

func (h *UserHandler) Current(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondMessage(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	respondJSON(w, http.StatusOK, payload.UserResponse{
		Email:        user.Email,
		Subscription: user.Subscription,
	})
}

func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondMessage(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	if err := h.authUC.Logout(r.Context(), user.ID.Hex()); err != nil {
		h.logger.Error().Err(err).Msg("failed to log out user")
		respondInternalError(w)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) UpdateSubscription(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondMessage(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	var req payload.UpdateSubscriptionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		respondMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.userUC.UpdateSubscription(r.Context(), user.ID.Hex(), req.Subscription)
	if err != nil {
		if errors.Is(err, usecase.ErrUserNotFound) {
			respondMessage(w, http.StatusNotFound, "User not found")
			return
		}

		h.logger.Error().Err(err).Msg("failed to update subscription")
		respondInternalError(w)
		return
	}

	respondJSON(w, http.StatusOK, payload.UserResponse{
		Email:        updated.Email,
		Subscription: updated.Subscription,
	})
}

func (h *UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondMessage(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	if err := r.ParseMultipartForm(maxAvatarUploadBytes); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "avatar file is required")
		return
	}
	defer file.Close()

	tempPath, err := h.stageUpload(file)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to stage avatar upload")
		respondInternalError(w)
		return
	}

	avatarURL, err := h.userUC.UpdateAvatar(r.Context(), user.ID.Hex(), tempPath, header.Filename)
	if err != nil {
		if errors.Is(err, usecase.ErrUserNotFound) {
			respondMessage(w, http.StatusNotFound, "User not found")
			return
		}

		respondMessage(w, http.StatusBadRequest, "failed to process avatar image")
		return
	}

	respondJSON(w, http.StatusOK, payload.AvatarResponse{AvatarURL: avatarURL})
}

// stageUpload copies the multipart file into the temp directory so the image
// pipeline can work from a path. The usecase removes the staged file.
func (h *UserHandler) stageUpload(file io.Reader) (string, error) {
	if err := os.MkdirAll(h.tempDir, 0o755); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(h.tempDir, "avatar-*")
	if err != nil {
		return "", err
	}
	defer tmp.Close()

	if _, err := io.Copy(tmp, file); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}

	return filepath.Clean(tmp.Name()), nil
}
