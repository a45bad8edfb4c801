package converter

import (
	"hospital-records/internal/delivery/dto"
	"hospital-records/internal/domain/entity"
)

// DepartmentToResponse converts a Department entity to DepartmentResponse DTO
func DepartmentToResponse(department *entity.Department) *dto.DepartmentResponse {
	if department == nil {
		return nil
	}

	ids := make([]string, len(department.DoctorIDs))
	copy(ids, department.DoctorIDs)

	return &dto.DepartmentResponse{
		DepartmentID: department.DepartmentID,
		Name:         department.Name,
		Description:  department.Description,
		HeadDoctorID: department.HeadDoctorID,
		DoctorIDs:    ids,
	}
}

func DepartmentsToListResponse(departments []entity.Department) *dto.DepartmentListResponse {
	responses := make([]dto.DepartmentResponse, len(departments))
	for i := range departments {
		responses[i] = *DepartmentToResponse(&departments[i])
	}
	return &dto.DepartmentListResponse{
		Departments: responses,
		Total:       len(departments),
	}
}
