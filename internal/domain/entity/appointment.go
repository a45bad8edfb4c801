package entity

import (
	"strings"

	"github.com/shopspring/decimal"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusNoShow    AppointmentStatus = "no_show"
	AppointmentStatusUnknown   AppointmentStatus = "unknown"
)

// ParseAppointmentStatus is lenient: unrecognised values become AppointmentStatusUnknown.
func ParseAppointmentStatus(s string) (AppointmentStatus, bool) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", "_")) {
	case "scheduled":
		return AppointmentStatusScheduled, true
	case "completed":
		return AppointmentStatusCompleted, true
	case "cancelled", "canceled":
		return AppointmentStatusCancelled, true
	case "no_show", "noshow":
		return AppointmentStatusNoShow, true
	case "unknown":
		return AppointmentStatusUnknown, true
	default:
		return AppointmentStatusUnknown, false
	}
}

// CanTransitionTo reports whether the status machine allows moving to next.
// Only Scheduled has outgoing transitions.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	if s != AppointmentStatusScheduled {
		return false
	}
	switch next {
	case AppointmentStatusCompleted, AppointmentStatusCancelled, AppointmentStatusNoShow:
		return true
	}
	return false
}

// Appointment is a patient's booking of a doctor's half-hour slot.
type Appointment struct {
	AppointmentID   string            `json:"appointment_id" validate:"required,linesafe"`
	PatientUsername string            `json:"patient_username" validate:"required,linesafe"`
	DoctorID        string            `json:"doctor_id" validate:"required,linesafe"`
	Date            string            `json:"date" validate:"required,datefmt"`
	Time            string            `json:"time" validate:"required,timefmt"`
	Reason          string            `json:"reason" validate:"linesafe"`
	Price           decimal.Decimal   `json:"price" validate:"gte=0"`
	IsPaid          bool              `json:"is_paid"`
	Status          AppointmentStatus `json:"status"`
	Notes           string            `json:"notes" validate:"linesafe"`
}

// IsScheduled checks if appointment is still open
func (a *Appointment) IsScheduled() bool {
	return a.Status == AppointmentStatusScheduled
}

// IsCancelled checks if appointment was cancelled
func (a *Appointment) IsCancelled() bool {
	return a.Status == AppointmentStatusCancelled
}

// OccupiesSlot reports whether the appointment blocks (doctorID, date, time).
// Cancelled appointments release their slot.
func (a *Appointment) OccupiesSlot(doctorID, date, time string) bool {
	return !a.IsCancelled() && a.DoctorID == doctorID && a.Date == date && a.Time == time
}

// Cancel changes appointment status to cancelled
func (a *Appointment) Cancel() {
	a.Status = AppointmentStatusCancelled
}

// Complete changes appointment status to completed
func (a *Appointment) Complete() {
	a.Status = AppointmentStatusCompleted
}

// MarkNoShow changes appointment status to no-show
func (a *Appointment) MarkNoShow() {
	a.Status = AppointmentStatusNoShow
}
