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

type PrescriptionHandler struct {
	dispensingUsecase usecase.DispensingUsecase
	recordsUsecase    usecase.RecordsUsecase
	validator         *validator.CustomValidator
}

func NewPrescriptionHandler(dispensingUsecase usecase.DispensingUsecase, recordsUsecase usecase.RecordsUsecase, validator *validator.CustomValidator) *PrescriptionHandler {
	return &PrescriptionHandler{
		dispensingUsecase: dispensingUsecase,
		recordsUsecase:    recordsUsecase,
		validator:         validator,
	}
}

// CreatePrescription writes a prescription for one of the doctor's appointments
// @Summary Create prescription
// @Tags Prescriptions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreatePrescriptionRequest true "Create Prescription Request"
// @Success 201 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /prescriptions [post]
func (h *PrescriptionHandler) CreatePrescription(w http.ResponseWriter, r *http.Request) {
	var req dto.CreatePrescriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	// Admins may prescribe against any appointment.
	var doctorID string
	if role, _ := middleware.GetRoleFromContext(r.Context()); role == entity.RoleDoctor {
		id, err := h.currentDoctorID(r.Context())
		if err != nil {
			response.NotFound(w, "Doctor profile not found")
			return
		}
		doctorID = id
	}

	prescription, err := h.dispensingUsecase.CreatePrescription(r.Context(), doctorID, &req)
	if err != nil {
		writePrescriptionError(w, err, "Failed to create prescription")
		return
	}

	response.Success(w, http.StatusCreated, "Prescription created successfully", prescription)
}

func (h *PrescriptionHandler) GetPrescription(w http.ResponseWriter, r *http.Request) {
	prescription, ok := h.loadOwned(w, r)
	if !ok {
		return
	}

	response.Success(w, http.StatusOK, "Prescription retrieved successfully", prescription)
}

// GetMyPrescriptions lists a patient's prescriptions, or those a doctor has written.
func (h *PrescriptionHandler) GetMyPrescriptions(w http.ResponseWriter, r *http.Request) {
	username, _ := middleware.GetUsernameFromContext(r.Context())
	role, _ := middleware.GetRoleFromContext(r.Context())

	var (
		prescriptions *dto.PrescriptionListResponse
		err           error
	)
	if role == entity.RoleDoctor {
		doctorID, derr := h.currentDoctorID(r.Context())
		if derr != nil {
			response.NotFound(w, "Doctor profile not found")
			return
		}
		prescriptions, err = h.dispensingUsecase.GetByDoctor(r.Context(), doctorID)
	} else {
		prescriptions, err = h.dispensingUsecase.GetByPatient(r.Context(), username)
	}
	if err != nil {
		response.InternalServerError(w, "Failed to get prescriptions")
		return
	}

	response.Success(w, http.StatusOK, "Prescriptions retrieved successfully", prescriptions)
}

func (h *PrescriptionHandler) GetPending(w http.ResponseWriter, r *http.Request) {
	prescriptions, err := h.dispensingUsecase.GetPending(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get pending prescriptions")
		return
	}

	response.Success(w, http.StatusOK, "Pending prescriptions retrieved successfully", prescriptions)
}

func (h *PrescriptionHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	current, ok := h.loadOwned(w, r)
	if !ok {
		return
	}

	var req dto.PrescriptionItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	prescription, err := h.dispensingUsecase.AddItem(r.Context(), current.PrescriptionID, &req)
	if err != nil {
		writePrescriptionError(w, err, "Failed to add item")
		return
	}

	response.Success(w, http.StatusOK, "Item added successfully", prescription)
}

// UpdateItem changes quantity or directions of a medicine already on the prescription.
func (h *PrescriptionHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	current, ok := h.loadOwned(w, r)
	if !ok {
		return
	}

	var req dto.PrescriptionItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	req.MedicineID = mux.Vars(r)["medicineId"]

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	prescription, err := h.dispensingUsecase.UpdateItem(r.Context(), current.PrescriptionID, &req)
	if err != nil {
		writePrescriptionError(w, err, "Failed to update item")
		return
	}

	response.Success(w, http.StatusOK, "Item updated successfully", prescription)
}

func (h *PrescriptionHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	current, ok := h.loadOwned(w, r)
	if !ok {
		return
	}

	prescription, err := h.dispensingUsecase.RemoveItem(r.Context(), current.PrescriptionID, mux.Vars(r)["medicineId"])
	if err != nil {
		writePrescriptionError(w, err, "Failed to remove item")
		return
	}

	response.Success(w, http.StatusOK, "Item removed successfully", prescription)
}

func (h *PrescriptionHandler) ClearItems(w http.ResponseWriter, r *http.Request) {
	current, ok := h.loadOwned(w, r)
	if !ok {
		return
	}

	prescription, err := h.dispensingUsecase.ClearItems(r.Context(), current.PrescriptionID)
	if err != nil {
		writePrescriptionError(w, err, "Failed to clear items")
		return
	}

	response.Success(w, http.StatusOK, "Items cleared successfully", prescription)
}

// CheckDispense reports whether a prescription could be dispensed now, without touching stock.
func (h *PrescriptionHandler) CheckDispense(w http.ResponseWriter, r *http.Request) {
	result, err := h.dispensingUsecase.CanDispense(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		response.InternalServerError(w, "Failed to check prescription")
		return
	}

	response.Success(w, http.StatusOK, result.Message, result)
}

// Dispense deducts stock for every item and marks the prescription dispensed
// @Summary Dispense prescription
// @Description All items are dispensed or none are; failed items are listed in the response
// @Tags Prescriptions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Prescription ID"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /prescriptions/{id}/dispense [post]
func (h *PrescriptionHandler) Dispense(w http.ResponseWriter, r *http.Request) {
	result, err := h.dispensingUsecase.DispensePrescription(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		response.InternalServerError(w, "Failed to dispense prescription")
		return
	}

	if !result.Success {
		response.Conflict(w, result.Message, result)
		return
	}
	response.Success(w, http.StatusOK, result.Message, result)
}

func (h *PrescriptionHandler) Undispense(w http.ResponseWriter, r *http.Request) {
	if err := h.dispensingUsecase.MarkAsUndispensed(r.Context(), mux.Vars(r)["id"]); err != nil {
		writePrescriptionError(w, err, "Failed to update prescription")
		return
	}

	response.Success(w, http.StatusOK, "Prescription marked as not dispensed", nil)
}

func (h *PrescriptionHandler) currentDoctorID(ctx context.Context) (string, error) {
	username, _ := middleware.GetUsernameFromContext(ctx)
	doctor, err := h.recordsUsecase.GetDoctorByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	return doctor.DoctorID, nil
}

// loadOwned fetches the prescription in the path. Patients only see their own and doctors
// only those they wrote.
func (h *PrescriptionHandler) loadOwned(w http.ResponseWriter, r *http.Request) (*dto.PrescriptionResponse, bool) {
	prescription, err := h.dispensingUsecase.GetPrescription(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writePrescriptionError(w, err, "Failed to get prescription")
		return nil, false
	}

	username, _ := middleware.GetUsernameFromContext(r.Context())
	role, _ := middleware.GetRoleFromContext(r.Context())
	switch role {
	case entity.RoleAdmin:
		return prescription, true
	case entity.RolePatient:
		if strings.EqualFold(prescription.PatientUsername, username) {
			return prescription, true
		}
	case entity.RoleDoctor:
		if doctorID, err := h.currentDoctorID(r.Context()); err == nil && doctorID == prescription.DoctorID {
			return prescription, true
		}
	}

	response.Forbidden(w, "Prescription does not belong to you")
	return nil, false
}

func writePrescriptionError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, usecase.ErrPrescriptionNotFound):
		response.NotFound(w, "Prescription not found")
	case errors.Is(err, usecase.ErrAppointmentNotFound):
		response.NotFound(w, "Appointment not found")
	case errors.Is(err, usecase.ErrMedicineNotFound):
		response.NotFound(w, "Medicine not found")
	case errors.Is(err, usecase.ErrPrescriptionItem):
		response.NotFound(w, "Prescription item not found")
	case errors.Is(err, usecase.ErrAppointmentNotOwned):
		response.Forbidden(w, "Appointment does not belong to you")
	case errors.Is(err, usecase.ErrPrescriptionExists),
		errors.Is(err, usecase.ErrPrescriptionDispensed),
		errors.Is(err, usecase.ErrAppointmentCancelled):
		response.Conflict(w, err.Error(), nil)
	case errors.Is(err, entity.ErrInvalidQuantity):
		response.BadRequest(w, err.Error())
	default:
		response.InternalServerError(w, fallback)
	}
}
