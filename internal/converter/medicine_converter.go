package converter

import (
	"hospital-records/internal/delivery/dto"
	"hospital-records/internal/domain/entity"
)

// MedicineToResponse converts a Medicine entity to MedicineResponse DTO
func MedicineToResponse(medicine *entity.Medicine) *dto.MedicineResponse {
	if medicine == nil {
		return nil
	}

	return &dto.MedicineResponse{
		MedicineID:   medicine.MedicineID,
		Name:         medicine.Name,
		GenericName:  medicine.GenericName,
		Category:     medicine.Category,
		Manufacturer: medicine.Manufacturer,
		Description:  medicine.Description,
		UnitPrice:    medicine.UnitPrice,
		Quantity:     medicine.Quantity,
		ReorderLevel: medicine.ReorderLevel,
		ExpiryDate:   medicine.ExpiryDate,
		DosageForm:   medicine.DosageForm,
		Strength:     medicine.Strength,
		LowStock:     medicine.IsLowStock(),
	}
}

// MedicinesToListResponse converts medicines to a MedicineListResponse DTO
func MedicinesToListResponse(medicines []entity.Medicine) *dto.MedicineListResponse {
	responses := make([]dto.MedicineResponse, len(medicines))
	for i := range medicines {
		responses[i] = *MedicineToResponse(&medicines[i])
	}
	return &dto.MedicineListResponse{
		Medicines: responses,
		Total:     len(medicines),
	}
}

// CreateMedicineRequestToEntity maps the request onto a Medicine without an ID
func CreateMedicineRequestToEntity(req *dto.CreateMedicineRequest) *entity.Medicine {
	return &entity.Medicine{
		Name:         req.Name,
		GenericName:  req.GenericName,
		Category:     req.Category,
		Manufacturer: req.Manufacturer,
		Description:  req.Description,
		UnitPrice:    req.UnitPrice,
		Quantity:     req.Quantity,
		ReorderLevel: req.ReorderLevel,
		ExpiryDate:   req.ExpiryDate,
		DosageForm:   req.DosageForm,
		Strength:     req.Strength,
	}
}
