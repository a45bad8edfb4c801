package converter

import (
	"hospital-records/internal/delivery/dto"
	"hospital-records/internal/domain/entity"
)

// PrescriptionToResponse converts a Prescription entity to PrescriptionResponse DTO
func PrescriptionToResponse(prescription *entity.Prescription) *dto.PrescriptionResponse {
	if prescription == nil {
		return nil
	}

	items := make([]dto.PrescriptionItemResponse, len(prescription.Items))
	for i, item := range prescription.Items {
		items[i] = dto.PrescriptionItemResponse{
			MedicineID:   item.MedicineID,
			MedicineName: item.MedicineName,
			Quantity:     item.Quantity,
			Dosage:       item.Dosage,
			Duration:     item.Duration,
			Instructions: item.Instructions,
		}
	}

	return &dto.PrescriptionResponse{
		PrescriptionID:  prescription.PrescriptionID,
		AppointmentID:   prescription.AppointmentID,
		PatientUsername: prescription.PatientUsername,
		DoctorID:        prescription.DoctorID,
		Date:            prescription.Date,
		Diagnosis:       prescription.Diagnosis,
		Notes:           prescription.Notes,
		IsDispensed:     prescription.IsDispensed,
		Items:           items,
	}
}

// PrescriptionsToListResponse converts prescriptions to a PrescriptionListResponse DTO
func PrescriptionsToListResponse(prescriptions []entity.Prescription) *dto.PrescriptionListResponse {
	responses := make([]dto.PrescriptionResponse, len(prescriptions))
	for i := range prescriptions {
		responses[i] = *PrescriptionToResponse(&prescriptions[i])
	}
	return &dto.PrescriptionListResponse{
		Prescriptions: responses,
		Total:         len(prescriptions),
	}
}
