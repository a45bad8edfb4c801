package dto

import "github.com/shopspring/decimal"

type DoctorResponse struct {
	DoctorID        string          `json:"doctor_id"`
	Username        string          `json:"username"`
	FullName        string          `json:"full_name"`
	Gender          string          `json:"gender"`
	Phone           string          `json:"phone,omitempty"`
	Specialization  string          `json:"specialization"`
	Qualification   string          `json:"qualification,omitempty"`
	ConsultationFee decimal.Decimal `json:"consultation_fee"`
}

type DoctorListResponse struct {
	Doctors []DoctorResponse `json:"doctors"`
	Total   int              `json:"total"`
}

// SlotsResponse lists a doctor's free and taken half-hour slots on one date.
type SlotsResponse struct {
	DoctorID  string   `json:"doctor_id"`
	Date      string   `json:"date"`
	Available []string `json:"available"`
	Booked    []string `json:"booked"`
}
