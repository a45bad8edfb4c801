package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"hospital-records/internal/delivery/dto"
	"hospital-records/internal/usecase"
	"hospital-records/pkg/response"
	"hospital-records/pkg/validator"

	"github.com/gorilla/mux"
)

type DepartmentHandler struct {
	recordsUsecase usecase.RecordsUsecase
	validator      *validator.CustomValidator
}

func NewDepartmentHandler(recordsUsecase usecase.RecordsUsecase, validator *validator.CustomValidator) *DepartmentHandler {
	return &DepartmentHandler{
		recordsUsecase: recordsUsecase,
		validator:      validator,
	}
}

func (h *DepartmentHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	departments, err := h.recordsUsecase.ListDepartments(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get departments")
		return
	}

	response.Success(w, http.StatusOK, "Departments retrieved successfully", departments)
}

// Create handles department creation
// @Summary Create department
// @Tags Departments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateDepartmentRequest true "Create Department Request"
// @Success 201 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /departments [post]
func (h *DepartmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateDepartmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	department, err := h.recordsUsecase.CreateDepartment(r.Context(), &req)
	if err != nil {
		writeDepartmentError(w, err, "Failed to create department")
		return
	}

	response.Success(w, http.StatusCreated, "Department created successfully", department)
}

func (h *DepartmentHandler) AssignDoctor(w http.ResponseWriter, r *http.Request) {
	var req dto.AssignDoctorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	department, err := h.recordsUsecase.AssignDoctor(r.Context(), mux.Vars(r)["id"], &req)
	if err != nil {
		writeDepartmentError(w, err, "Failed to assign doctor")
		return
	}

	response.Success(w, http.StatusOK, "Doctor assigned successfully", department)
}

func (h *DepartmentHandler) RemoveDoctor(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	department, err := h.recordsUsecase.RemoveDoctor(r.Context(), vars["id"], vars["doctorId"])
	if err != nil {
		writeDepartmentError(w, err, "Failed to remove doctor")
		return
	}

	response.Success(w, http.StatusOK, "Doctor removed successfully", department)
}

func writeDepartmentError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, usecase.ErrDepartmentNotFound):
		response.NotFound(w, "Department not found")
	case errors.Is(err, usecase.ErrDoctorNotFound):
		response.NotFound(w, "Doctor not found")
	case errors.Is(err, usecase.ErrDepartmentExists):
		response.Conflict(w, "Department already exists", nil)
	default:
		response.InternalServerError(w, fallback)
	}
}
