package handler

import (
	"errors"
	"net/http"

	"hospital-records/internal/delivery/http/middleware"
	"hospital-records/internal/usecase"
	"hospital-records/pkg/response"

	"github.com/gorilla/mux"
)

type DoctorHandler struct {
	recordsUsecase usecase.RecordsUsecase
	bookingUsecase usecase.BookingUsecase
}

func NewDoctorHandler(recordsUsecase usecase.RecordsUsecase, bookingUsecase usecase.BookingUsecase) *DoctorHandler {
	return &DoctorHandler{
		recordsUsecase: recordsUsecase,
		bookingUsecase: bookingUsecase,
	}
}

// GetAllDoctors lists doctors
// @Summary List doctors
// @Description List doctors, optionally filtered by specialization or a name search
// @Tags Doctors
// @Produce json
// @Security BearerAuth
// @Param specialization query string false "Specialization"
// @Param q query string false "Name search"
// @Success 200 {object} response.Response
// @Router /doctors [get]
func (h *DoctorHandler) GetAllDoctors(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	doctors, err := h.recordsUsecase.ListDoctors(r.Context(), query.Get("specialization"), query.Get("q"))
	if err != nil {
		response.InternalServerError(w, "Failed to get doctors")
		return
	}

	response.Success(w, http.StatusOK, "Doctors retrieved successfully", doctors)
}

func (h *DoctorHandler) GetDoctor(w http.ResponseWriter, r *http.Request) {
	doctor, err := h.recordsUsecase.GetDoctor(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, usecase.ErrDoctorNotFound) {
			response.NotFound(w, "Doctor not found")
			return
		}
		response.InternalServerError(w, "Failed to get doctor")
		return
	}

	response.Success(w, http.StatusOK, "Doctor retrieved successfully", doctor)
}

func (h *DoctorHandler) GetSelfProfile(w http.ResponseWriter, r *http.Request) {
	username, ok := middleware.GetUsernameFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "User not found in context")
		return
	}

	doctor, err := h.recordsUsecase.GetDoctorByUsername(r.Context(), username)
	if err != nil {
		if errors.Is(err, usecase.ErrDoctorNotFound) {
			response.NotFound(w, "Doctor profile not found")
			return
		}
		response.InternalServerError(w, "Failed to get doctor profile")
		return
	}

	response.Success(w, http.StatusOK, "Doctor profile retrieved successfully", doctor)
}

// GetSlots returns the free and booked slots of a doctor on a date
// @Summary Get doctor slots
// @Tags Doctors
// @Produce json
// @Security BearerAuth
// @Param id path string true "Doctor ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /doctors/{id}/slots [get]
func (h *DoctorHandler) GetSlots(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		response.BadRequest(w, "date query parameter is required")
		return
	}

	slots, err := h.bookingUsecase.GetSlots(r.Context(), mux.Vars(r)["id"], date)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrDoctorNotFound):
			response.NotFound(w, "Doctor not found")
		case errors.Is(err, usecase.ErrInvalidDateTime):
			response.BadRequest(w, err.Error())
		default:
			response.InternalServerError(w, "Failed to get slots")
		}
		return
	}

	response.Success(w, http.StatusOK, "Slots retrieved successfully", slots)
}
