package handler

import (
	"errors"
	"net/http"

	"hospital-records/internal/usecase"
	"hospital-records/pkg/response"

	"github.com/gorilla/mux"
)

type PatientHandler struct {
	recordsUsecase usecase.RecordsUsecase
}

func NewPatientHandler(recordsUsecase usecase.RecordsUsecase) *PatientHandler {
	return &PatientHandler{
		recordsUsecase: recordsUsecase,
	}
}

// GetAllPatients lists patient records, optionally filtered by a name search (?q=).
func (h *PatientHandler) GetAllPatients(w http.ResponseWriter, r *http.Request) {
	patients, err := h.recordsUsecase.ListPatients(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		response.InternalServerError(w, "Failed to get patients")
		return
	}

	response.Success(w, http.StatusOK, "Patients retrieved successfully", patients)
}

func (h *PatientHandler) GetPatient(w http.ResponseWriter, r *http.Request) {
	patient, err := h.recordsUsecase.GetPatient(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, usecase.ErrPatientNotFound) {
			response.NotFound(w, "Patient not found")
			return
		}
		response.InternalServerError(w, "Failed to get patient")
		return
	}

	response.Success(w, http.StatusOK, "Patient retrieved successfully", patient)
}
