package converter

import (
	"hospital-records/internal/delivery/dto"
	"hospital-records/internal/domain/entity"
)

// AccountToResponse converts an Account plus its optional profiles to AccountResponse DTO
func AccountToResponse(account *entity.Account, patient *entity.Patient, doctor *entity.Doctor) *dto.AccountResponse {
	if account == nil {
		return nil
	}

	return &dto.AccountResponse{
		Username:    account.Username,
		Role:        string(account.Role),
		IsActive:    account.IsActive,
		CreatedDate: account.CreatedDate,
		Patient:     PatientToResponse(patient),
		Doctor:      DoctorToResponse(doctor),
	}
}
