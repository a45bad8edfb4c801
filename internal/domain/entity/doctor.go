package entity

import "github.com/shopspring/decimal"

// Doctor holds the doctor profile linked 1:1 to an Account by username.
type Doctor struct {
	DoctorID        string          `json:"doctor_id" validate:"required,linesafe"`
	Username        string          `json:"username" validate:"required,linesafe"`
	FullName        string          `json:"full_name" validate:"required,linesafe"`
	Gender          Gender          `json:"gender"`
	Phone           string          `json:"phone" validate:"linesafe"`
	Specialization  string          `json:"specialization" validate:"linesafe"`
	Qualification   string          `json:"qualification" validate:"linesafe"`
	ConsultationFee decimal.Decimal `json:"consultation_fee" validate:"gte=0"`
}
