package converter

import (
	"hospital-records/internal/delivery/dto"
	"hospital-records/internal/domain/entity"
)

// PatientToResponse converts a Patient entity to PatientResponse DTO
func PatientToResponse(patient *entity.Patient) *dto.PatientResponse {
	if patient == nil {
		return nil
	}

	return &dto.PatientResponse{
		PatientID:      patient.PatientID,
		Username:       patient.Username,
		FullName:       patient.FullName,
		DateOfBirth:    patient.DateOfBirth,
		Gender:         string(patient.Gender),
		Phone:          patient.Phone,
		Address:        patient.Address,
		BloodType:      patient.BloodType,
		MedicalHistory: patient.MedicalHistory,
	}
}

// PatientsToResponses converts a slice of Patient entities to slice of PatientResponse DTOs
func PatientsToResponses(patients []entity.Patient) []dto.PatientResponse {
	responses := make([]dto.PatientResponse, len(patients))
	for i := range patients {
		responses[i] = *PatientToResponse(&patients[i])
	}
	return responses
}
