package converter

import (
	"hospital-records/internal/delivery/dto"
	"hospital-records/internal/domain/entity"
)

// DoctorToResponse converts a Doctor entity to DoctorResponse DTO
func DoctorToResponse(doctor *entity.Doctor) *dto.DoctorResponse {
	if doctor == nil {
		return nil
	}

	return &dto.DoctorResponse{
		DoctorID:        doctor.DoctorID,
		Username:        doctor.Username,
		FullName:        doctor.FullName,
		Gender:          string(doctor.Gender),
		Phone:           doctor.Phone,
		Specialization:  doctor.Specialization,
		Qualification:   doctor.Qualification,
		ConsultationFee: doctor.ConsultationFee,
	}
}

// DoctorsToResponses converts a slice of Doctor entities to slice of DoctorResponse DTOs
func DoctorsToResponses(doctors []entity.Doctor) []dto.DoctorResponse {
	responses := make([]dto.DoctorResponse, len(doctors))
	for i := range doctors {
		responses[i] = *DoctorToResponse(&doctors[i])
	}
	return responses
}
