package converter

import (
	"hospital-records/internal/delivery/dto"
	"hospital-records/internal/domain/entity"
)

// AppointmentToResponse converts an Appointment entity to AppointmentResponse DTO
func AppointmentToResponse(appointment *entity.Appointment) *dto.AppointmentResponse {
	if appointment == nil {
		return nil
	}

	return &dto.AppointmentResponse{
		AppointmentID:   appointment.AppointmentID,
		PatientUsername: appointment.PatientUsername,
		DoctorID:        appointment.DoctorID,
		Date:            appointment.Date,
		Time:            appointment.Time,
		Reason:          appointment.Reason,
		Price:           appointment.Price,
		IsPaid:          appointment.IsPaid,
		Status:          string(appointment.Status),
		Notes:           appointment.Notes,
	}
}

// AppointmentsToResponses converts a slice of Appointment entities to slice of AppointmentResponse DTOs
func AppointmentsToResponses(appointments []entity.Appointment) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, len(appointments))
	for i := range appointments {
		responses[i] = *AppointmentToResponse(&appointments[i])
	}
	return responses
}

// AppointmentsToListResponse wraps appointments with their count
func AppointmentsToListResponse(appointments []entity.Appointment) *dto.AppointmentListResponse {
	return &dto.AppointmentListResponse{
		Appointments: AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}
}
