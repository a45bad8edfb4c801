package dto

import "github.com/shopspring/decimal"

// Request DTOs

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

type SetActiveRequest struct {
	Active bool `json:"active"`
}

// RegisterPatientRequest creates a patient account together with its profile.
type RegisterPatientRequest struct {
	Username       string `json:"username" validate:"required,min=3,max=32,linesafe"`
	Password       string `json:"password" validate:"required,min=6"`
	FullName       string `json:"full_name" validate:"required,min=2,linesafe"`
	DateOfBirth    string `json:"date_of_birth" validate:"omitempty,datefmt"`
	Gender         string `json:"gender" validate:"omitempty,oneof=male female other M F O m f o"`
	Phone          string `json:"phone" validate:"omitempty,max=20,linesafe"`
	Address        string `json:"address" validate:"omitempty,linesafe"`
	BloodType      string `json:"blood_type" validate:"omitempty,max=3,linesafe"`
	MedicalHistory string `json:"medical_history" validate:"omitempty,linesafe"`
}

// RegisterDoctorRequest creates a doctor account together with its profile.
type RegisterDoctorRequest struct {
	Username        string          `json:"username" validate:"required,min=3,max=32,linesafe"`
	Password        string          `json:"password" validate:"required,min=6"`
	FullName        string          `json:"full_name" validate:"required,min=2,linesafe"`
	Gender          string          `json:"gender" validate:"omitempty,oneof=male female other M F O m f o"`
	Phone           string          `json:"phone" validate:"omitempty,max=20,linesafe"`
	Specialization  string          `json:"specialization" validate:"required,linesafe"`
	Qualification   string          `json:"qualification" validate:"omitempty,linesafe"`
	ConsultationFee decimal.Decimal `json:"consultation_fee" validate:"gte=0"`
}

// Response DTOs

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

type AccountResponse struct {
	Username    string           `json:"username"`
	Role        string           `json:"role"`
	IsActive    bool             `json:"is_active"`
	CreatedDate string           `json:"created_date,omitempty"`
	Patient     *PatientResponse `json:"patient,omitempty"`
	Doctor      *DoctorResponse  `json:"doctor,omitempty"`
}
