package dto

type PatientResponse struct {
	PatientID      string `json:"patient_id"`
	Username       string `json:"username"`
	FullName       string `json:"full_name"`
	DateOfBirth    string `json:"date_of_birth,omitempty"`
	Gender         string `json:"gender"`
	Phone          string `json:"phone,omitempty"`
	Address        string `json:"address,omitempty"`
	BloodType      string `json:"blood_type,omitempty"`
	MedicalHistory string `json:"medical_history,omitempty"`
}

type PatientListResponse struct {
	Patients []PatientResponse `json:"patients"`
	Total    int               `json:"total"`
}
