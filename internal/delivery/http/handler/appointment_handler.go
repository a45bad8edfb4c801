package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"hospital-records/internal/delivery/dto"
	"hospital-records/internal/delivery/http/middleware"
	"hospital-records/internal/domain/entity"
	"hospital-records/internal/usecase"
	"hospital-records/pkg/response"
	"hospital-records/pkg/validator"

	"github.com/gorilla/mux"
)

type AppointmentHandler struct {
	bookingUsecase usecase.BookingUsecase
	recordsUsecase usecase.RecordsUsecase
	validator      *validator.CustomValidator
}

func NewAppointmentHandler(bookingUsecase usecase.BookingUsecase, recordsUsecase usecase.RecordsUsecase, validator *validator.CustomValidator) *AppointmentHandler {
	return &AppointmentHandler{
		bookingUsecase: bookingUsecase,
		recordsUsecase: recordsUsecase,
		validator:      validator,
	}
}

// BookAppointment books a slot for the authenticated patient
// @Summary Book appointment
// @Description Book a standard half-hour slot with a doctor
// @Tags Appointments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.BookAppointmentRequest true "Book Appointment Request"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /appointments [post]
func (h *AppointmentHandler) BookAppointment(w http.ResponseWriter, r *http.Request) {
	username, ok := middleware.GetUsernameFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "User not found in context")
		return
	}

	var req dto.BookAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointment, err := h.bookingUsecase.BookAppointment(r.Context(), username, &req)
	if err != nil {
		writeBookingError(w, err, "Failed to book appointment")
		return
	}

	response.Success(w, http.StatusCreated, "Appointment booked successfully", appointment)
}

// GetMyAppointments lists the caller's appointments: a patient's bookings or a doctor's schedule.
func (h *AppointmentHandler) GetMyAppointments(w http.ResponseWriter, r *http.Request) {
	username, _ := middleware.GetUsernameFromContext(r.Context())
	role, _ := middleware.GetRoleFromContext(r.Context())

	var (
		appointments *dto.AppointmentListResponse
		err          error
	)
	if role == entity.RoleDoctor {
		doctor, derr := h.recordsUsecase.GetDoctorByUsername(r.Context(), username)
		if derr != nil {
			response.NotFound(w, "Doctor profile not found")
			return
		}
		appointments, err = h.bookingUsecase.GetAppointmentsByDoctor(r.Context(), doctor.DoctorID)
	} else {
		appointments, err = h.bookingUsecase.GetAppointmentsByPatient(r.Context(), username)
	}
	if err != nil {
		response.InternalServerError(w, "Failed to get appointments")
		return
	}

	response.Success(w, http.StatusOK, "Appointments retrieved successfully", appointments)
}

func (h *AppointmentHandler) GetUpcoming(w http.ResponseWriter, r *http.Request) {
	username, _ := middleware.GetUsernameFromContext(r.Context())

	appointments, err := h.bookingUsecase.GetUpcoming(r.Context(), username)
	if err != nil {
		response.InternalServerError(w, "Failed to get upcoming appointments")
		return
	}

	response.Success(w, http.StatusOK, "Upcoming appointments retrieved successfully", appointments)
}

func (h *AppointmentHandler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	appointment, ok := h.loadOwned(w, r)
	if !ok {
		return
	}

	response.Success(w, http.StatusOK, "Appointment retrieved successfully", appointment)
}

// EditAppointment moves a scheduled appointment to another slot
// @Summary Edit appointment
// @Tags Appointments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Appointment ID"
// @Param request body dto.EditAppointmentRequest true "Edit Appointment Request"
// @Success 200 {object} response.Response
// @Router /appointments/{id} [put]
func (h *AppointmentHandler) EditAppointment(w http.ResponseWriter, r *http.Request) {
	current, ok := h.loadOwned(w, r)
	if !ok {
		return
	}

	var req dto.EditAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointment, err := h.bookingUsecase.EditAppointment(r.Context(), current.AppointmentID, &req)
	if err != nil {
		writeBookingError(w, err, "Failed to edit appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment updated successfully", appointment)
}

func (h *AppointmentHandler) CancelAppointment(w http.ResponseWriter, r *http.Request) {
	current, ok := h.loadOwned(w, r)
	if !ok {
		return
	}

	if err := h.bookingUsecase.CancelAppointment(r.Context(), current.AppointmentID); err != nil {
		writeBookingError(w, err, "Failed to cancel appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment cancelled successfully", nil)
}

func (h *AppointmentHandler) CompleteAppointment(w http.ResponseWriter, r *http.Request) {
	current, ok := h.loadOwned(w, r)
	if !ok {
		return
	}

	var req dto.CompleteAppointmentRequest
	// An empty body means no notes.
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "Invalid request body")
			return
		}
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	if err := h.bookingUsecase.MarkCompleted(r.Context(), current.AppointmentID, req.Notes); err != nil {
		writeBookingError(w, err, "Failed to complete appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment marked as completed", nil)
}

func (h *AppointmentHandler) MarkNoShow(w http.ResponseWriter, r *http.Request) {
	current, ok := h.loadOwned(w, r)
	if !ok {
		return
	}

	if err := h.bookingUsecase.MarkNoShow(r.Context(), current.AppointmentID); err != nil {
		writeBookingError(w, err, "Failed to mark appointment as no-show")
		return
	}

	response.Success(w, http.StatusOK, "Appointment marked as no-show", nil)
}

func (h *AppointmentHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	if err := h.bookingUsecase.MarkPaid(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeBookingError(w, err, "Failed to record payment")
		return
	}

	response.Success(w, http.StatusOK, "Payment recorded", nil)
}

// GetRevenue sums the price of every appointment that is not cancelled.
func (h *AppointmentHandler) GetRevenue(w http.ResponseWriter, r *http.Request) {
	total, err := h.bookingUsecase.TotalRevenue(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to compute revenue")
		return
	}

	response.Success(w, http.StatusOK, "Revenue computed successfully", &dto.RevenueResponse{Total: total})
}

// loadOwned fetches the appointment named in the path and checks the caller may act on it.
// Admins may act on any appointment, patients on their own, doctors on those booked with them.
func (h *AppointmentHandler) loadOwned(w http.ResponseWriter, r *http.Request) (*dto.AppointmentResponse, bool) {
	appointment, err := h.bookingUsecase.GetAppointment(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeBookingError(w, err, "Failed to get appointment")
		return nil, false
	}

	if err := h.authorize(r.Context(), appointment); err != nil {
		writeBookingError(w, err, "Failed to get appointment")
		return nil, false
	}
	return appointment, true
}

func (h *AppointmentHandler) authorize(ctx context.Context, appointment *dto.AppointmentResponse) error {
	username, _ := middleware.GetUsernameFromContext(ctx)
	role, _ := middleware.GetRoleFromContext(ctx)

	switch role {
	case entity.RoleAdmin:
		return nil
	case entity.RolePatient:
		if strings.EqualFold(appointment.PatientUsername, username) {
			return nil
		}
	case entity.RoleDoctor:
		doctor, err := h.recordsUsecase.GetDoctorByUsername(ctx, username)
		if err != nil {
			return err
		}
		if doctor.DoctorID == appointment.DoctorID {
			return nil
		}
	}
	return usecase.ErrAppointmentNotOwned
}

func writeBookingError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, usecase.ErrAppointmentNotFound):
		response.NotFound(w, "Appointment not found")
	case errors.Is(err, usecase.ErrPatientNotFound):
		response.NotFound(w, "Patient not found")
	case errors.Is(err, usecase.ErrDoctorNotFound):
		response.NotFound(w, "Doctor not found")
	case errors.Is(err, usecase.ErrAppointmentNotOwned):
		response.Forbidden(w, "Appointment does not belong to you")
	case errors.Is(err, usecase.ErrSlotUnavailable),
		errors.Is(err, usecase.ErrAppointmentNotOpen),
		errors.Is(err, usecase.ErrAppointmentAlreadyPaid):
		response.Conflict(w, err.Error(), nil)
	case errors.Is(err, usecase.ErrInvalidDateTime),
		errors.Is(err, usecase.ErrDateInPast),
		errors.Is(err, usecase.ErrTimeInPast),
		errors.Is(err, usecase.ErrInvalidSlot),
		errors.Is(err, usecase.ErrAppointmentPast):
		response.BadRequest(w, err.Error())
	default:
		response.InternalServerError(w, fallback)
	}
}
