package entity

// Patient holds the patient profile linked 1:1 to an Account by username.
type Patient struct {
	PatientID      string `json:"patient_id" validate:"required,linesafe"`
	Username       string `json:"username" validate:"required,linesafe"`
	FullName       string `json:"full_name" validate:"required,linesafe"`
	DateOfBirth    string `json:"date_of_birth" validate:"omitempty,datefmt"`
	Gender         Gender `json:"gender"`
	Phone          string `json:"phone" validate:"linesafe"`
	Address        string `json:"address" validate:"linesafe"`
	BloodType      string `json:"blood_type" validate:"linesafe"`
	MedicalHistory string `json:"medical_history" validate:"linesafe"`
}
