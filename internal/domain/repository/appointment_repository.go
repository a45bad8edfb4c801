package repository

import (
	"hospital-records/internal/domain/entity"

	"github.com/shopspring/decimal"
)

type AppointmentRepository interface {
	Repository[entity.Appointment]
	Sequenced[entity.Appointment]
	GetByPatient(username string) ([]entity.Appointment, error)
	GetByDoctor(doctorID string) ([]entity.Appointment, error)
	GetByDoctorAndDate(doctorID, date string) ([]entity.Appointment, error)
	GetByDate(date string) ([]entity.Appointment, error)
	GetByStatus(status entity.AppointmentStatus) ([]entity.Appointment, error)
	// BookedSlots returns the sorted times held by non-cancelled appointments.
	BookedSlots(doctorID, date string) ([]string, error)
	// IsSlotTaken ignores the appointment with id excludeID, if any.
	IsSlotTaken(doctorID, date, time, excludeID string) (bool, error)
	// TotalRevenue sums the price of every non-cancelled appointment, paid or not.
	TotalRevenue() (decimal.Decimal, error)
}
