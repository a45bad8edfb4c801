package repository

import "hospital-records/internal/domain/entity"

type PrescriptionRepository interface {
	Repository[entity.Prescription]
	Sequenced[entity.Prescription]
	FindByAppointmentID(appointmentID string) (*entity.Prescription, error)
	GetByPatient(username string) ([]entity.Prescription, error)
	GetByDoctor(doctorID string) ([]entity.Prescription, error)
	GetPending() ([]entity.Prescription, error)
	AddItem(prescriptionID string, item entity.PrescriptionItem) error
	UpdateItem(prescriptionID string, item entity.PrescriptionItem) error
	RemoveItem(prescriptionID, medicineID string) error
	ClearItems(prescriptionID string) error
	// MarkAsDispensed is idempotent. It fails with entity.ErrItemsChanged when the stored
	// lines no longer match items.
	MarkAsDispensed(prescriptionID string, items []entity.PrescriptionItem) error
	// MarkAsUndispensed only flips the flag; stock is not restored.
	MarkAsUndispensed(prescriptionID string) error
}
