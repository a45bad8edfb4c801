package repository

import (
	"fmt"

	"hospital-records/internal/codec"
	"hospital-records/internal/domain/entity"
	domainRepo "hospital-records/internal/domain/repository"
)

type prescriptionRepository struct {
	*fileRepository[entity.Prescription]
}

func NewPrescriptionRepository(deps Deps, path string) domainRepo.PrescriptionRepository {
	return &prescriptionRepository{
		fileRepository: newFileRepository(deps, path, entitySpec[entity.Prescription]{
			codec:  codec.NewPrescriptionCodec(codec.WithWarnFunc(codecWarn(deps.Log))),
			prefix: PrescriptionPrefix,
			key:    func(p *entity.Prescription) string { return p.PrescriptionID },
			setKey: func(p *entity.Prescription, id string) { p.PrescriptionID = id },
			clone:  entity.Prescription.Clone,
			conflict: func(c, e *entity.Prescription) error {
				if c.AppointmentID != "" && c.AppointmentID == e.AppointmentID {
					return fmt.Errorf("%w: appointment %s already has prescription %s",
						domainRepo.ErrDuplicate, c.AppointmentID, e.PrescriptionID)
				}
				return nil
			},
		}),
	}
}

func (r *prescriptionRepository) FindByAppointmentID(appointmentID string) (*entity.Prescription, error) {
	if appointmentID == "" {
		return nil, nil
	}
	return r.first(func(p *entity.Prescription) bool { return p.AppointmentID == appointmentID })
}

func (r *prescriptionRepository) GetByPatient(username string) ([]entity.Prescription, error) {
	return r.filter(func(p *entity.Prescription) bool { return p.PatientUsername == username })
}

func (r *prescriptionRepository) GetByDoctor(doctorID string) ([]entity.Prescription, error) {
	return r.filter(func(p *entity.Prescription) bool { return p.DoctorID == doctorID })
}

func (r *prescriptionRepository) GetPending() ([]entity.Prescription, error) {
	return r.filter(func(p *entity.Prescription) bool { return !p.IsDispensed })
}

func (r *prescriptionRepository) AddItem(prescriptionID string, item entity.PrescriptionItem) error {
	return r.Modify(prescriptionID, func(p *entity.Prescription) error {
		return p.AddItem(item)
	})
}

func (r *prescriptionRepository) UpdateItem(prescriptionID string, item entity.PrescriptionItem) error {
	return r.Modify(prescriptionID, func(p *entity.Prescription) error {
		return p.UpdateItem(item)
	})
}

func (r *prescriptionRepository) RemoveItem(prescriptionID, medicineID string) error {
	return r.Modify(prescriptionID, func(p *entity.Prescription) error {
		return p.RemoveItem(medicineID)
	})
}

func (r *prescriptionRepository) ClearItems(prescriptionID string) error {
	return r.Modify(prescriptionID, func(p *entity.Prescription) error {
		return p.ClearItems()
	})
}

func (r *prescriptionRepository) MarkAsDispensed(prescriptionID string, items []entity.PrescriptionItem) error {
	return r.Modify(prescriptionID, func(p *entity.Prescription) error {
		if p.IsDispensed {
			return domainRepo.ErrUnchanged
		}
		if !p.SameLines(items) {
			return entity.ErrItemsChanged
		}
		p.IsDispensed = true
		return nil
	})
}

func (r *prescriptionRepository) MarkAsUndispensed(prescriptionID string) error {
	return r.Modify(prescriptionID, func(p *entity.Prescription) error {
		if !p.IsDispensed {
			return domainRepo.ErrUnchanged
		}
		p.IsDispensed = false
		return nil
	})
}
