package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"hospital-records/internal/delivery/dto"
	"hospital-records/internal/delivery/http/middleware"
	"hospital-records/internal/usecase"
	"hospital-records/pkg/response"
	"hospital-records/pkg/validator"

	"github.com/gorilla/mux"
)

type AuthHandler struct {
	authUsecase usecase.AuthUsecase
	validator   *validator.CustomValidator
}

func NewAuthHandler(authUsecase usecase.AuthUsecase, validator *validator.CustomValidator) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
		validator:   validator,
	}
}

// RegisterPatient handles patient self-registration
// @Summary Register a new patient
// @Description Create a patient account together with its patient record
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterPatientRequest true "Register Patient Request"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /auth/register [post]
func (h *AuthHandler) RegisterPatient(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterPatientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	account, err := h.authUsecase.RegisterPatient(r.Context(), &req)
	if err != nil {
		h.writeRegisterError(w, err)
		return
	}

	response.Success(w, http.StatusCreated, "Patient registered successfully", account)
}

// RegisterDoctor handles doctor onboarding by an admin
// @Summary Register a new doctor
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.RegisterDoctorRequest true "Register Doctor Request"
// @Success 201 {object} response.Response
// @Router /admin/doctors [post]
func (h *AuthHandler) RegisterDoctor(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterDoctorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	account, err := h.authUsecase.RegisterDoctor(r.Context(), &req)
	if err != nil {
		h.writeRegisterError(w, err)
		return
	}

	response.Success(w, http.StatusCreated, "Doctor registered successfully", account)
}

func (h *AuthHandler) writeRegisterError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, usecase.ErrUsernameTaken):
		response.Conflict(w, "Username already exists", nil)
	case errors.Is(err, usecase.ErrInvalidGender):
		response.BadRequest(w, err.Error())
	default:
		response.InternalServerError(w, "Failed to register account")
	}
}

// Login handles user login
// @Summary Login user
// @Description Authenticate with username and password and receive a token pair
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login Request"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	tokens, err := h.authUsecase.Login(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidCredentials):
			response.Unauthorized(w, "Invalid username or password")
		case errors.Is(err, usecase.ErrAccountInactive):
			response.Forbidden(w, "Account is deactivated")
		default:
			response.InternalServerError(w, "Failed to login")
		}
		return
	}

	response.Success(w, http.StatusOK, "Login successful", tokens)
}

// RefreshToken handles token refresh
// @Summary Refresh access token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh Token Request"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/refresh [post]
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	tokens, err := h.authUsecase.RefreshToken(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidToken), errors.Is(err, usecase.ErrAccountNotFound):
			response.Unauthorized(w, "Invalid or expired refresh token")
		case errors.Is(err, usecase.ErrAccountInactive):
			response.Forbidden(w, "Account is deactivated")
		default:
			response.InternalServerError(w, "Failed to refresh token")
		}
		return
	}

	response.Success(w, http.StatusOK, "Token refreshed successfully", tokens)
}

// GetCurrentUser returns the authenticated account and its profile
// @Summary Get current user
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /auth/me [get]
func (h *AuthHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	username, ok := middleware.GetUsernameFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "User not found in context")
		return
	}

	account, err := h.authUsecase.GetCurrentUser(r.Context(), username)
	if err != nil {
		if errors.Is(err, usecase.ErrAccountNotFound) {
			response.NotFound(w, "Account not found")
			return
		}
		response.InternalServerError(w, "Failed to get current user")
		return
	}

	response.Success(w, http.StatusOK, "User retrieved successfully", account)
}

// ChangePassword
// @Summary Change own password
// @Tags Auth
// @Accept json
// @Security BearerAuth
// @Param request body dto.ChangePasswordRequest true "Change Password Request"
// @Router /auth/password [put]
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	username, ok := middleware.GetUsernameFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "User not found in context")
		return
	}

	var req dto.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	if err := h.authUsecase.ChangePassword(r.Context(), username, &req); err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidCredentials):
			response.BadRequest(w, "Current password is incorrect")
		case errors.Is(err, usecase.ErrAccountNotFound):
			response.NotFound(w, "Account not found")
		default:
			response.InternalServerError(w, "Failed to change password")
		}
		return
	}

	response.Success(w, http.StatusOK, "Password changed successfully", nil)
}

func (h *AuthHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	var req dto.SetActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.authUsecase.SetActive(r.Context(), username, req.Active); err != nil {
		if errors.Is(err, usecase.ErrAccountNotFound) {
			response.NotFound(w, "Account not found")
			return
		}
		response.InternalServerError(w, "Failed to update account")
		return
	}

	message := "Account deactivated"
	if req.Active {
		message = "Account activated"
	}
	response.Success(w, http.StatusOK, message, nil)
}
