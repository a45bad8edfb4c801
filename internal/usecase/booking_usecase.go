package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"hospital-records/internal/converter"
	"hospital-records/internal/delivery/dto"
	"hospital-records/internal/domain/entity"
	"hospital-records/internal/domain/repository"
	"hospital-records/internal/infrastructure/metrics"
	"hospital-records/internal/service"
	"hospital-records/pkg/clock"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidDateTime        = errors.New("invalid date or time, use YYYY-MM-DD and HH:MM")
	ErrDateInPast             = errors.New("appointment date is in the past")
	ErrTimeInPast             = errors.New("appointment time has already passed today")
	ErrInvalidSlot            = errors.New("time is not a standard appointment slot")
	ErrPatientNotFound        = errors.New("patient not found")
	ErrDoctorNotFound         = errors.New("doctor not found")
	ErrSlotUnavailable        = errors.New("slot is already booked")
	ErrAppointmentNotFound    = errors.New("appointment not found")
	ErrAppointmentNotOpen     = errors.New("appointment is no longer scheduled")
	ErrAppointmentPast        = errors.New("appointment date has already passed")
	ErrAppointmentNotOwned    = errors.New("appointment does not belong to you")
	ErrAppointmentAlreadyPaid = errors.New("appointment is already paid")
)

const (
	firstSlotMinutes = 8 * 60
	endSlotMinutes   = 17 * 60
	slotMinutes      = 30
)

var standardSlots = buildStandardSlots()

func buildStandardSlots() []string {
	slots := make([]string, 0, (endSlotMinutes-firstSlotMinutes)/slotMinutes)
	for m := firstSlotMinutes; m < endSlotMinutes; m += slotMinutes {
		slots = append(slots, fmt.Sprintf("%02d:%02d", m/60, m%60))
	}
	return slots
}

// StandardSlots returns the half-hour slots shared by every doctor, 08:00 through 16:30.
func StandardSlots() []string {
	out := make([]string, len(standardSlots))
	copy(out, standardSlots)
	return out
}

func isStandardSlot(t string) bool {
	i := sort.SearchStrings(standardSlots, t)
	return i < len(standardSlots) && standardSlots[i] == t
}

type BookingUsecase interface {
	GetAvailableSlots(ctx context.Context, doctorID, date string) ([]string, error)
	GetBookedSlots(ctx context.Context, doctorID, date string) ([]string, error)
	GetSlots(ctx context.Context, doctorID, date string) (*dto.SlotsResponse, error)
	IsSlotAvailable(ctx context.Context, doctorID, date, time string) (bool, error)
	BookAppointment(ctx context.Context, patientUsername string, req *dto.BookAppointmentRequest) (*dto.AppointmentResponse, error)
	EditAppointment(ctx context.Context, appointmentID string, req *dto.EditAppointmentRequest) (*dto.AppointmentResponse, error)
	CancelAppointment(ctx context.Context, appointmentID string) error
	MarkCompleted(ctx context.Context, appointmentID, notes string) error
	MarkNoShow(ctx context.Context, appointmentID string) error
	MarkPaid(ctx context.Context, appointmentID string) error
	GetAppointment(ctx context.Context, appointmentID string) (*dto.AppointmentResponse, error)
	GetAppointmentsByPatient(ctx context.Context, username string) (*dto.AppointmentListResponse, error)
	GetAppointmentsByDoctor(ctx context.Context, doctorID string) (*dto.AppointmentListResponse, error)
	GetUpcoming(ctx context.Context, username string) (*dto.AppointmentListResponse, error)
	TotalRevenue(ctx context.Context) (decimal.Decimal, error)
}

type bookingUsecase struct {
	log             *logrus.Logger
	clock           clock.Clock
	appointmentRepo repository.AppointmentRepository
	doctorRepo      repository.DoctorRepository
	patientRepo     repository.PatientRepository
	auditService    service.AuditService
}

func NewBookingUsecase(
	log *logrus.Logger,
	clk clock.Clock,
	appointmentRepo repository.AppointmentRepository,
	doctorRepo repository.DoctorRepository,
	patientRepo repository.PatientRepository,
	auditService service.AuditService,
) BookingUsecase {
	return &bookingUsecase{
		log:             log,
		clock:           clk,
		appointmentRepo: appointmentRepo,
		doctorRepo:      doctorRepo,
		patientRepo:     patientRepo,
		auditService:    auditService,
	}
}

// GetAvailableSlots is the standard table minus booked slots, minus already-passed slots when date is today.
func (u *bookingUsecase) GetAvailableSlots(ctx context.Context, doctorID, date string) ([]string, error) {
	if !entity.ValidDate(date) {
		return nil, ErrInvalidDateTime
	}

	booked, err := u.appointmentRepo.BookedSlots(doctorID, date)
	if err != nil {
		u.log.Warnf("Failed to get booked slots for doctor %s on %s: %+v", doctorID, date, err)
		return nil, err
	}

	today, now := clock.Today(u.clock), clock.NowHHMM(u.clock)
	available := make([]string, 0, len(standardSlots))
	i := 0
	for _, slot := range standardSlots {
		// Both lists are sorted; advance through booked in step.
		for i < len(booked) && booked[i] < slot {
			i++
		}
		if i < len(booked) && booked[i] == slot {
			continue
		}
		if date == today && slot <= now {
			continue
		}
		available = append(available, slot)
	}
	return available, nil
}

func (u *bookingUsecase) GetBookedSlots(ctx context.Context, doctorID, date string) ([]string, error) {
	if !entity.ValidDate(date) {
		return nil, ErrInvalidDateTime
	}
	booked, err := u.appointmentRepo.BookedSlots(doctorID, date)
	if err != nil {
		u.log.Warnf("Failed to get booked slots for doctor %s on %s: %+v", doctorID, date, err)
		return nil, err
	}
	return booked, nil
}

func (u *bookingUsecase) GetSlots(ctx context.Context, doctorID, date string) (*dto.SlotsResponse, error) {
	doctor, err := u.doctorRepo.FindByID(doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", doctorID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	available, err := u.GetAvailableSlots(ctx, doctorID, date)
	if err != nil {
		return nil, err
	}
	booked, err := u.GetBookedSlots(ctx, doctorID, date)
	if err != nil {
		return nil, err
	}

	return &dto.SlotsResponse{
		DoctorID:  doctorID,
		Date:      date,
		Available: available,
		Booked:    booked,
	}, nil
}

func (u *bookingUsecase) IsSlotAvailable(ctx context.Context, doctorID, date, time string) (bool, error) {
	taken, err := u.appointmentRepo.IsSlotTaken(doctorID, date, time, "")
	if err != nil {
		u.log.Warnf("Failed to check slot %s %s for doctor %s: %+v", date, time, doctorID, err)
		return false, err
	}
	return !taken, nil
}

// BookAppointment validates in a fixed order and stops at the first failure:
// date/time syntax, date not past, time not past if today, standard slot,
// patient exists, doctor exists, slot free.
func (u *bookingUsecase) BookAppointment(ctx context.Context, patientUsername string, req *dto.BookAppointmentRequest) (*dto.AppointmentResponse, error) {
	if err := u.checkWhen(req.Date, req.Time); err != nil {
		return nil, u.reject(err)
	}

	patient, err := u.patientRepo.FindByUsername(patientUsername)
	if err != nil {
		u.log.Warnf("Failed to find patient %s: %+v", patientUsername, err)
		return nil, err
	}
	if patient == nil {
		return nil, u.reject(ErrPatientNotFound)
	}

	doctor, err := u.doctorRepo.FindByID(req.DoctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", req.DoctorID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, u.reject(ErrDoctorNotFound)
	}

	available, err := u.IsSlotAvailable(ctx, doctor.DoctorID, req.Date, req.Time)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, u.reject(ErrSlotUnavailable)
	}

	appointment := &entity.Appointment{
		PatientUsername: patient.Username,
		DoctorID:        doctor.DoctorID,
		Date:            req.Date,
		Time:            req.Time,
		Reason:          req.Reason,
		Price:           doctor.ConsultationFee,
		IsPaid:          false,
		Status:          entity.AppointmentStatusScheduled,
	}

	// The repository re-checks the slot under its lock, so a concurrent booking surfaces here.
	if err := u.appointmentRepo.Create(appointment); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, u.reject(ErrSlotUnavailable)
		}
		u.log.Warnf("Failed to create appointment: %+v", err)
		return nil, err
	}

	metrics.RecordAppointmentBooked()
	u.auditService.Record(ctx, entity.AuditActionAppointmentBook, "Appointment", appointment.AppointmentID,
		fmt.Sprintf("patient=%s doctor=%s at=%s %s", appointment.PatientUsername, appointment.DoctorID, appointment.Date, appointment.Time))
	u.log.Infof("Appointment %s booked: patient %s with doctor %s at %s %s",
		appointment.AppointmentID, appointment.PatientUsername, appointment.DoctorID, appointment.Date, appointment.Time)

	return converter.AppointmentToResponse(appointment), nil
}

// EditAppointment moves a scheduled, not-yet-past appointment to a new date and time.
func (u *bookingUsecase) EditAppointment(ctx context.Context, appointmentID string, req *dto.EditAppointmentRequest) (*dto.AppointmentResponse, error) {
	if err := u.checkWhen(req.Date, req.Time); err != nil {
		return nil, err
	}

	var updated entity.Appointment
	err := u.appointmentRepo.Modify(appointmentID, func(a *entity.Appointment) error {
		if err := u.checkOpen(a); err != nil {
			return err
		}
		// The slot check for the new date/time runs inside Modify, under the repository lock.
		a.Date = req.Date
		a.Time = req.Time
		a.Reason = req.Reason
		updated = *a
		return nil
	})
	if err != nil {
		return nil, u.mapModifyError(appointmentID, "edit", err)
	}

	u.auditService.Record(ctx, entity.AuditActionAppointmentEdit, "Appointment", appointmentID,
		fmt.Sprintf("at=%s %s", updated.Date, updated.Time))
	u.log.Infof("Appointment %s moved to %s %s", appointmentID, updated.Date, updated.Time)
	return converter.AppointmentToResponse(&updated), nil
}

func (u *bookingUsecase) CancelAppointment(ctx context.Context, appointmentID string) error {
	return u.transition(ctx, appointmentID, entity.AppointmentStatusCancelled, func(a *entity.Appointment) error {
		if err := u.checkOpen(a); err != nil {
			return err
		}
		a.Cancel()
		return nil
	})
}

func (u *bookingUsecase) MarkCompleted(ctx context.Context, appointmentID, notes string) error {
	return u.transition(ctx, appointmentID, entity.AppointmentStatusCompleted, func(a *entity.Appointment) error {
		if !a.Status.CanTransitionTo(entity.AppointmentStatusCompleted) {
			return ErrAppointmentNotOpen
		}
		a.Complete()
		if notes != "" {
			a.Notes = notes
		}
		return nil
	})
}

func (u *bookingUsecase) MarkNoShow(ctx context.Context, appointmentID string) error {
	return u.transition(ctx, appointmentID, entity.AppointmentStatusNoShow, func(a *entity.Appointment) error {
		if !a.Status.CanTransitionTo(entity.AppointmentStatusNoShow) {
			return ErrAppointmentNotOpen
		}
		a.MarkNoShow()
		return nil
	})
}

func (u *bookingUsecase) MarkPaid(ctx context.Context, appointmentID string) error {
	err := u.appointmentRepo.Modify(appointmentID, func(a *entity.Appointment) error {
		if a.IsCancelled() {
			return ErrAppointmentNotOpen
		}
		if a.IsPaid {
			return ErrAppointmentAlreadyPaid
		}
		a.IsPaid = true
		return nil
	})
	if err != nil {
		return u.mapModifyError(appointmentID, "mark paid", err)
	}
	u.auditService.Record(ctx, entity.AuditActionAppointmentPaid, "Appointment", appointmentID, "")
	u.log.Infof("Appointment %s marked as paid", appointmentID)
	return nil
}

func (u *bookingUsecase) GetAppointment(ctx context.Context, appointmentID string) (*dto.AppointmentResponse, error) {
	appointment, err := u.appointmentRepo.FindByID(appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", appointmentID, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	return converter.AppointmentToResponse(appointment), nil
}

func (u *bookingUsecase) GetAppointmentsByPatient(ctx context.Context, username string) (*dto.AppointmentListResponse, error) {
	appointments, err := u.appointmentRepo.GetByPatient(username)
	if err != nil {
		u.log.Warnf("Failed to find appointments for patient %s: %+v", username, err)
		return nil, err
	}
	sortAppointments(appointments)
	return converter.AppointmentsToListResponse(appointments), nil
}

func (u *bookingUsecase) GetAppointmentsByDoctor(ctx context.Context, doctorID string) (*dto.AppointmentListResponse, error) {
	appointments, err := u.appointmentRepo.GetByDoctor(doctorID)
	if err != nil {
		u.log.Warnf("Failed to find appointments for doctor %s: %+v", doctorID, err)
		return nil, err
	}
	sortAppointments(appointments)
	return converter.AppointmentsToListResponse(appointments), nil
}

// GetUpcoming returns the patient's scheduled appointments from today on, soonest first.
func (u *bookingUsecase) GetUpcoming(ctx context.Context, username string) (*dto.AppointmentListResponse, error) {
	appointments, err := u.appointmentRepo.GetByPatient(username)
	if err != nil {
		u.log.Warnf("Failed to find appointments for patient %s: %+v", username, err)
		return nil, err
	}

	today := clock.Today(u.clock)
	upcoming := make([]entity.Appointment, 0, len(appointments))
	for _, a := range appointments {
		if a.IsScheduled() && a.Date >= today {
			upcoming = append(upcoming, a)
		}
	}
	sortAppointments(upcoming)
	return converter.AppointmentsToListResponse(upcoming), nil
}

// TotalRevenue counts every appointment that is not cancelled, paid or not.
func (u *bookingUsecase) TotalRevenue(ctx context.Context) (decimal.Decimal, error) {
	total, err := u.appointmentRepo.TotalRevenue()
	if err != nil {
		u.log.Warnf("Failed to compute revenue: %+v", err)
		return decimal.Zero, err
	}
	return total, nil
}

// checkWhen runs the date/time part of the booking validation order.
func (u *bookingUsecase) checkWhen(date, time string) error {
	if !entity.ValidDate(date) || !entity.ValidTime(time) {
		return ErrInvalidDateTime
	}
	today := clock.Today(u.clock)
	if date < today {
		return ErrDateInPast
	}
	if date == today && time <= clock.NowHHMM(u.clock) {
		return ErrTimeInPast
	}
	if !isStandardSlot(time) {
		return ErrInvalidSlot
	}
	return nil
}

// checkOpen allows changes only to scheduled appointments whose date has not passed.
func (u *bookingUsecase) checkOpen(a *entity.Appointment) error {
	if !a.IsScheduled() {
		return ErrAppointmentNotOpen
	}
	if a.Date < clock.Today(u.clock) {
		return ErrAppointmentPast
	}
	return nil
}

func (u *bookingUsecase) transition(ctx context.Context, appointmentID string, to entity.AppointmentStatus, fn func(*entity.Appointment) error) error {
	if err := u.appointmentRepo.Modify(appointmentID, fn); err != nil {
		return u.mapModifyError(appointmentID, string(to), err)
	}
	metrics.RecordAppointmentStatusChange(string(to))
	u.auditService.Record(ctx, statusAuditAction[to], "Appointment", appointmentID, "")
	u.log.Infof("Appointment %s is now %s", appointmentID, to)
	return nil
}

var statusAuditAction = map[entity.AppointmentStatus]string{
	entity.AppointmentStatusCancelled: entity.AuditActionAppointmentCancel,
	entity.AppointmentStatusCompleted: entity.AuditActionAppointmentComplete,
	entity.AppointmentStatusNoShow:    entity.AuditActionAppointmentNoShow,
}

func (u *bookingUsecase) mapModifyError(appointmentID, action string, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrAppointmentNotFound
	case errors.Is(err, repository.ErrDuplicate):
		return ErrSlotUnavailable
	case errors.Is(err, ErrAppointmentNotOpen),
		errors.Is(err, ErrAppointmentPast),
		errors.Is(err, ErrAppointmentAlreadyPaid),
		errors.Is(err, ErrSlotUnavailable):
		return err
	}
	u.log.Warnf("Failed to %s appointment %s: %+v", action, appointmentID, err)
	return err
}

func (u *bookingUsecase) reject(err error) error {
	metrics.RecordBookingRejected(bookingRejectReason(err))
	return err
}

func bookingRejectReason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidDateTime):
		return "invalid_datetime"
	case errors.Is(err, ErrDateInPast), errors.Is(err, ErrTimeInPast):
		return "past"
	case errors.Is(err, ErrInvalidSlot):
		return "invalid_slot"
	case errors.Is(err, ErrPatientNotFound):
		return "patient_not_found"
	case errors.Is(err, ErrDoctorNotFound):
		return "doctor_not_found"
	case errors.Is(err, ErrSlotUnavailable):
		return "slot_taken"
	}
	return "other"
}

func sortAppointments(appointments []entity.Appointment) {
	sort.SliceStable(appointments, func(i, j int) bool {
		if appointments[i].Date != appointments[j].Date {
			return appointments[i].Date < appointments[j].Date
		}
		return appointments[i].Time < appointments[j].Time
	})
}
