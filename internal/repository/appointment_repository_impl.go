package repository

import (
	"fmt"
	"sort"

	"hospital-records/internal/codec"
	"hospital-records/internal/domain/entity"
	domainRepo "hospital-records/internal/domain/repository"

	"github.com/shopspring/decimal"
)

type appointmentRepository struct {
	*fileRepository[entity.Appointment]
}

func NewAppointmentRepository(deps Deps, path string) domainRepo.AppointmentRepository {
	return &appointmentRepository{
		fileRepository: newFileRepository(deps, path, entitySpec[entity.Appointment]{
			codec:  codec.NewAppointmentCodec(codec.WithWarnFunc(codecWarn(deps.Log))),
			prefix: AppointmentPrefix,
			key:    func(a *entity.Appointment) string { return a.AppointmentID },
			setKey: func(a *entity.Appointment, id string) { a.AppointmentID = id },
			// Two live appointments may never hold the same doctor slot.
			conflict: func(c, e *entity.Appointment) error {
				if !c.IsCancelled() && e.OccupiesSlot(c.DoctorID, c.Date, c.Time) {
					return fmt.Errorf("%w: doctor %s is already booked at %s %s (%s)",
						domainRepo.ErrDuplicate, c.DoctorID, c.Date, c.Time, e.AppointmentID)
				}
				return nil
			},
		}),
	}
}

func (r *appointmentRepository) GetByPatient(username string) ([]entity.Appointment, error) {
	return r.filter(func(a *entity.Appointment) bool { return a.PatientUsername == username })
}

func (r *appointmentRepository) GetByDoctor(doctorID string) ([]entity.Appointment, error) {
	return r.filter(func(a *entity.Appointment) bool { return a.DoctorID == doctorID })
}

func (r *appointmentRepository) GetByDoctorAndDate(doctorID, date string) ([]entity.Appointment, error) {
	return r.filter(func(a *entity.Appointment) bool {
		return a.DoctorID == doctorID && a.Date == date
	})
}

func (r *appointmentRepository) GetByDate(date string) ([]entity.Appointment, error) {
	return r.filter(func(a *entity.Appointment) bool { return a.Date == date })
}

func (r *appointmentRepository) GetByStatus(status entity.AppointmentStatus) ([]entity.Appointment, error) {
	return r.filter(func(a *entity.Appointment) bool { return a.Status == status })
}

func (r *appointmentRepository) BookedSlots(doctorID, date string) ([]string, error) {
	appts, err := r.filter(func(a *entity.Appointment) bool {
		return !a.IsCancelled() && a.DoctorID == doctorID && a.Date == date
	})
	if err != nil {
		return nil, err
	}
	slots := make([]string, 0, len(appts))
	for _, a := range appts {
		slots = append(slots, a.Time)
	}
	sort.Strings(slots)
	return slots, nil
}

func (r *appointmentRepository) IsSlotTaken(doctorID, date, time, excludeID string) (bool, error) {
	a, err := r.first(func(a *entity.Appointment) bool {
		return a.AppointmentID != excludeID && a.OccupiesSlot(doctorID, date, time)
	})
	return a != nil, err
}

func (r *appointmentRepository) TotalRevenue() (decimal.Decimal, error) {
	appts, err := r.filter(func(a *entity.Appointment) bool { return !a.IsCancelled() })
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, a := range appts {
		total = total.Add(a.Price)
	}
	return total, nil
}
