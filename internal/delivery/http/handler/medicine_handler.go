package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"hospital-records/internal/delivery/dto"
	"hospital-records/internal/usecase"
	"hospital-records/pkg/response"
	"hospital-records/pkg/validator"

	"github.com/gorilla/mux"
)

type MedicineHandler struct {
	medicineUsecase usecase.MedicineUsecase
	validator       *validator.CustomValidator
}

func NewMedicineHandler(medicineUsecase usecase.MedicineUsecase, validator *validator.CustomValidator) *MedicineHandler {
	return &MedicineHandler{
		medicineUsecase: medicineUsecase,
		validator:       validator,
	}
}

// Create handles adding a medicine to the inventory
// @Summary Create a new medicine
// @Tags Medicines
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateMedicineRequest true "Create Medicine Request"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /medicines [post]
func (h *MedicineHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateMedicineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	medicine, err := h.medicineUsecase.Create(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrMedicineExists):
			response.Conflict(w, "Medicine already exists", nil)
		case errors.Is(err, usecase.ErrInvalidMedicine):
			response.BadRequest(w, "Invalid medicine data")
		default:
			response.InternalServerError(w, "Failed to create medicine")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Medicine created successfully", medicine)
}

// GetAll handles getting the medicine inventory
// @Summary Get all medicines
// @Description Get medicines with pagination, optionally filtered by name search or category
// @Tags Medicines
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Param q query string false "Name or generic name search"
// @Param category query string false "Category"
// @Success 200 {object} response.Response
// @Router /medicines [get]
func (h *MedicineHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	limit, _ := strconv.Atoi(query.Get("limit"))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	filter := usecase.MedicineFilter{
		Query:    query.Get("q"),
		Category: query.Get("category"),
	}
	medicines, total, err := h.medicineUsecase.GetAll(r.Context(), filter, page, limit)
	if err != nil {
		response.InternalServerError(w, "Failed to get medicines")
		return
	}

	response.SuccessWithMeta(w, http.StatusOK, "Medicines retrieved successfully", medicines,
		response.NewMeta(page, limit, int64(total)))
}

func (h *MedicineHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	medicine, err := h.medicineUsecase.GetByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, usecase.ErrMedicineNotFound) {
			response.NotFound(w, "Medicine not found")
			return
		}
		response.InternalServerError(w, "Failed to get medicine")
		return
	}

	response.Success(w, http.StatusOK, "Medicine retrieved successfully", medicine)
}

// Restock adds units to a medicine's stock
// @Summary Restock medicine
// @Tags Medicines
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Medicine ID"
// @Param request body dto.RestockRequest true "Restock Request"
// @Success 200 {object} response.Response
// @Router /medicines/{id}/restock [post]
func (h *MedicineHandler) Restock(w http.ResponseWriter, r *http.Request) {
	var req dto.RestockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	medicine, err := h.medicineUsecase.Restock(r.Context(), mux.Vars(r)["id"], &req)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrMedicineNotFound):
			response.NotFound(w, "Medicine not found")
		case errors.Is(err, usecase.ErrInvalidMedicine):
			response.BadRequest(w, "Quantity must be positive")
		default:
			response.InternalServerError(w, "Failed to restock medicine")
		}
		return
	}

	response.Success(w, http.StatusOK, "Medicine restocked successfully", medicine)
}

func (h *MedicineHandler) GetLowStock(w http.ResponseWriter, r *http.Request) {
	medicines, err := h.medicineUsecase.GetLowStock(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get low stock medicines")
		return
	}

	response.Success(w, http.StatusOK, "Low stock medicines retrieved successfully", medicines)
}

func (h *MedicineHandler) GetExpired(w http.ResponseWriter, r *http.Request) {
	medicines, err := h.medicineUsecase.GetExpired(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get expired medicines")
		return
	}

	response.Success(w, http.StatusOK, "Expired medicines retrieved successfully", medicines)
}
