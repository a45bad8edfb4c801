package dto

type CreateDepartmentRequest struct {
	Name         string `json:"name" validate:"required,max=100,linesafe"`
	Description  string `json:"description" validate:"omitempty,linesafe"`
	HeadDoctorID string `json:"head_doctor_id" validate:"omitempty,listsafe"`
}

type AssignDoctorRequest struct {
	DoctorID string `json:"doctor_id" validate:"required,listsafe"`
	Head     bool   `json:"head"`
}

type DepartmentResponse struct {
	DepartmentID string   `json:"department_id"`
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	HeadDoctorID string   `json:"head_doctor_id,omitempty"`
	DoctorIDs    []string `json:"doctor_ids"`
}

type DepartmentListResponse struct {
	Departments []DepartmentResponse `json:"departments"`
	Total       int                  `json:"total"`
}
