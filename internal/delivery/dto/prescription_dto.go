package dto

import "github.com/shopspring/decimal"

// Request DTOs

type PrescriptionItemRequest struct {
	MedicineID   string `json:"medicine_id" validate:"required,itemsafe"`
	Quantity     int    `json:"quantity" validate:"required,gt=0"`
	Dosage       string `json:"dosage" validate:"omitempty,itemsafe"`
	Duration     string `json:"duration" validate:"omitempty,itemsafe"`
	Instructions string `json:"instructions" validate:"omitempty,itemsafe"`
}

type CreatePrescriptionRequest struct {
	AppointmentID string                    `json:"appointment_id" validate:"required,linesafe"`
	Diagnosis     string                    `json:"diagnosis" validate:"omitempty,max=500,linesafe"`
	Notes         string                    `json:"notes" validate:"omitempty,max=1000,linesafe"`
	Items         []PrescriptionItemRequest `json:"items" validate:"omitempty,dive"`
}

// Response DTOs

type PrescriptionItemResponse struct {
	MedicineID   string `json:"medicine_id"`
	MedicineName string `json:"medicine_name"`
	Quantity     int    `json:"quantity"`
	Dosage       string `json:"dosage,omitempty"`
	Duration     string `json:"duration,omitempty"`
	Instructions string `json:"instructions,omitempty"`
}

type PrescriptionResponse struct {
	PrescriptionID  string                     `json:"prescription_id"`
	AppointmentID   string                     `json:"appointment_id"`
	PatientUsername string                     `json:"patient_username"`
	DoctorID        string                     `json:"doctor_id"`
	Date            string                     `json:"date"`
	Diagnosis       string                     `json:"diagnosis,omitempty"`
	Notes           string                     `json:"notes,omitempty"`
	IsDispensed     bool                       `json:"is_dispensed"`
	Items           []PrescriptionItemResponse `json:"items"`
}

type PrescriptionListResponse struct {
	Prescriptions []PrescriptionResponse `json:"prescriptions"`
	Total         int                    `json:"total"`
}

// DispenseResponse reports a dispense attempt or a dry-run check.
type DispenseResponse struct {
	Success     bool            `json:"success"`
	Message     string          `json:"message"`
	FailedItems []string        `json:"failed_items,omitempty"`
	TotalCost   decimal.Decimal `json:"total_cost"`
}
