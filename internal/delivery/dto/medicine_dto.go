package dto

import "github.com/shopspring/decimal"

// Request DTOs

type CreateMedicineRequest struct {
	Name         string          `json:"name" validate:"required,max=100,linesafe"`
	GenericName  string          `json:"generic_name" validate:"omitempty,linesafe"`
	Category     string          `json:"category" validate:"omitempty,linesafe"`
	Manufacturer string          `json:"manufacturer" validate:"omitempty,linesafe"`
	Description  string          `json:"description" validate:"omitempty,linesafe"`
	UnitPrice    decimal.Decimal `json:"unit_price" validate:"gte=0"`
	Quantity     int             `json:"quantity" validate:"gte=0"`
	ReorderLevel int             `json:"reorder_level" validate:"gte=0"`
	ExpiryDate   string          `json:"expiry_date" validate:"omitempty,datefmt"`
	DosageForm   string          `json:"dosage_form" validate:"omitempty,linesafe"`
	Strength     string          `json:"strength" validate:"omitempty,linesafe"`
}

type RestockRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

// Response DTOs

type MedicineResponse struct {
	MedicineID   string          `json:"medicine_id"`
	Name         string          `json:"name"`
	GenericName  string          `json:"generic_name,omitempty"`
	Category     string          `json:"category,omitempty"`
	Manufacturer string          `json:"manufacturer,omitempty"`
	Description  string          `json:"description,omitempty"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Quantity     int             `json:"quantity"`
	ReorderLevel int             `json:"reorder_level"`
	ExpiryDate   string          `json:"expiry_date,omitempty"`
	DosageForm   string          `json:"dosage_form,omitempty"`
	Strength     string          `json:"strength,omitempty"`
	LowStock     bool            `json:"low_stock"`
}

type MedicineListResponse struct {
	Medicines []MedicineResponse `json:"medicines"`
	Total     int                `json:"total"`
}
