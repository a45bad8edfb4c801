package dto

import "github.com/shopspring/decimal"

// Request DTOs

type BookAppointmentRequest struct {
	DoctorID string `json:"doctor_id" validate:"required,linesafe"`
	Date     string `json:"date" validate:"required"`
	Time     string `json:"time" validate:"required"`
	Reason   string `json:"reason" validate:"omitempty,max=500,linesafe"`
}

type EditAppointmentRequest struct {
	Date   string `json:"date" validate:"required"`
	Time   string `json:"time" validate:"required"`
	Reason string `json:"reason" validate:"omitempty,max=500,linesafe"`
}

type CompleteAppointmentRequest struct {
	Notes string `json:"notes" validate:"omitempty,max=1000,linesafe"`
}

// Response DTOs

type AppointmentResponse struct {
	AppointmentID   string          `json:"appointment_id"`
	PatientUsername string          `json:"patient_username"`
	DoctorID        string          `json:"doctor_id"`
	Date            string          `json:"date"`
	Time            string          `json:"time"`
	Reason          string          `json:"reason,omitempty"`
	Price           decimal.Decimal `json:"price"`
	IsPaid          bool            `json:"is_paid"`
	Status          string          `json:"status"`
	Notes           string          `json:"notes,omitempty"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}

type RevenueResponse struct {
	Total decimal.Decimal `json:"total"`
}
