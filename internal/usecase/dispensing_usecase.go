package usecase

import (
	"context"
	"errors"
	"sync"

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
	ErrPrescriptionNotFound  = errors.New("prescription not found")
	ErrPrescriptionExists    = errors.New("appointment already has a prescription")
	ErrPrescriptionDispensed = errors.New("prescription already dispensed")
	ErrPrescriptionItem      = errors.New("prescription item not found")
	ErrAppointmentCancelled  = errors.New("appointment is cancelled")
	ErrMedicineNotFound      = errors.New("medicine not found")
)

// Dispense result messages.
const (
	MsgDispensed            = "Prescription dispensed successfully"
	MsgDispensable          = "All items are in stock"
	MsgInsufficientStock    = "Insufficient stock"
	MsgPrescriptionNotFound = "Prescription not found"
	MsgAlreadyDispensed     = "Prescription already dispensed"
	MsgNoItems              = "Prescription has no items"
	MsgItemsChanged         = "Prescription items changed while dispensing"
)

type DispensingUsecase interface {
	CreatePrescription(ctx context.Context, doctorID string, req *dto.CreatePrescriptionRequest) (*dto.PrescriptionResponse, error)
	GetPrescription(ctx context.Context, prescriptionID string) (*dto.PrescriptionResponse, error)
	GetByPatient(ctx context.Context, username string) (*dto.PrescriptionListResponse, error)
	GetByDoctor(ctx context.Context, doctorID string) (*dto.PrescriptionListResponse, error)
	GetPending(ctx context.Context) (*dto.PrescriptionListResponse, error)
	AddItem(ctx context.Context, prescriptionID string, req *dto.PrescriptionItemRequest) (*dto.PrescriptionResponse, error)
	UpdateItem(ctx context.Context, prescriptionID string, req *dto.PrescriptionItemRequest) (*dto.PrescriptionResponse, error)
	RemoveItem(ctx context.Context, prescriptionID, medicineID string) (*dto.PrescriptionResponse, error)
	ClearItems(ctx context.Context, prescriptionID string) (*dto.PrescriptionResponse, error)
	CanDispense(ctx context.Context, prescriptionID string) (*dto.DispenseResponse, error)
	DispensePrescription(ctx context.Context, prescriptionID string) (*dto.DispenseResponse, error)
	MarkAsUndispensed(ctx context.Context, prescriptionID string) error
}

type dispensingUsecase struct {
	// mu serialises dispense operations and item edits, so items cannot change mid-dispense.
	mu               sync.Mutex
	log              *logrus.Logger
	clock            clock.Clock
	prescriptionRepo repository.PrescriptionRepository
	medicineRepo     repository.MedicineRepository
	appointmentRepo  repository.AppointmentRepository
	auditService     service.AuditService
}

func NewDispensingUsecase(
	log *logrus.Logger,
	clk clock.Clock,
	prescriptionRepo repository.PrescriptionRepository,
	medicineRepo repository.MedicineRepository,
	appointmentRepo repository.AppointmentRepository,
	auditService service.AuditService,
) DispensingUsecase {
	return &dispensingUsecase{
		log:              log,
		clock:            clk,
		prescriptionRepo: prescriptionRepo,
		medicineRepo:     medicineRepo,
		appointmentRepo:  appointmentRepo,
		auditService:     auditService,
	}
}

// CreatePrescription writes a prescription for an appointment. Patient and doctor are taken from
// the appointment; a non-empty doctorID must match it.
func (u *dispensingUsecase) CreatePrescription(ctx context.Context, doctorID string, req *dto.CreatePrescriptionRequest) (*dto.PrescriptionResponse, error) {
	appointment, err := u.appointmentRepo.FindByID(req.AppointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", req.AppointmentID, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	if appointment.IsCancelled() {
		return nil, ErrAppointmentCancelled
	}
	if doctorID != "" && appointment.DoctorID != doctorID {
		return nil, ErrAppointmentNotOwned
	}

	existing, err := u.prescriptionRepo.FindByAppointmentID(appointment.AppointmentID)
	if err != nil {
		u.log.Warnf("Failed to check prescription for appointment %s: %+v", appointment.AppointmentID, err)
		return nil, err
	}
	if existing != nil {
		return nil, ErrPrescriptionExists
	}

	prescription := &entity.Prescription{
		AppointmentID:   appointment.AppointmentID,
		PatientUsername: appointment.PatientUsername,
		DoctorID:        appointment.DoctorID,
		Date:            clock.Today(u.clock),
		Diagnosis:       req.Diagnosis,
		Notes:           req.Notes,
	}
	for i := range req.Items {
		item, err := u.buildItem(&req.Items[i])
		if err != nil {
			return nil, err
		}
		if err := prescription.AddItem(item); err != nil {
			return nil, err
		}
	}

	if err := u.prescriptionRepo.Create(prescription); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrPrescriptionExists
		}
		u.log.Warnf("Failed to create prescription: %+v", err)
		return nil, err
	}

	u.auditService.Record(ctx, entity.AuditActionPrescriptionCreate, "Prescription", prescription.PrescriptionID,
		"appointment="+prescription.AppointmentID)
	u.log.Infof("Prescription %s created for appointment %s", prescription.PrescriptionID, prescription.AppointmentID)
	return converter.PrescriptionToResponse(prescription), nil
}

func (u *dispensingUsecase) GetPrescription(ctx context.Context, prescriptionID string) (*dto.PrescriptionResponse, error) {
	prescription, err := u.prescriptionRepo.FindByID(prescriptionID)
	if err != nil {
		u.log.Warnf("Failed to find prescription %s: %+v", prescriptionID, err)
		return nil, err
	}
	if prescription == nil {
		return nil, ErrPrescriptionNotFound
	}
	return converter.PrescriptionToResponse(prescription), nil
}

func (u *dispensingUsecase) GetByPatient(ctx context.Context, username string) (*dto.PrescriptionListResponse, error) {
	prescriptions, err := u.prescriptionRepo.GetByPatient(username)
	if err != nil {
		u.log.Warnf("Failed to find prescriptions for patient %s: %+v", username, err)
		return nil, err
	}
	return converter.PrescriptionsToListResponse(prescriptions), nil
}

func (u *dispensingUsecase) GetByDoctor(ctx context.Context, doctorID string) (*dto.PrescriptionListResponse, error) {
	prescriptions, err := u.prescriptionRepo.GetByDoctor(doctorID)
	if err != nil {
		u.log.Warnf("Failed to find prescriptions for doctor %s: %+v", doctorID, err)
		return nil, err
	}
	return converter.PrescriptionsToListResponse(prescriptions), nil
}

func (u *dispensingUsecase) GetPending(ctx context.Context) (*dto.PrescriptionListResponse, error) {
	prescriptions, err := u.prescriptionRepo.GetPending()
	if err != nil {
		u.log.Warnf("Failed to find pending prescriptions: %+v", err)
		return nil, err
	}
	return converter.PrescriptionsToListResponse(prescriptions), nil
}

func (u *dispensingUsecase) AddItem(ctx context.Context, prescriptionID string, req *dto.PrescriptionItemRequest) (*dto.PrescriptionResponse, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	item, err := u.buildItem(req)
	if err != nil {
		return nil, err
	}
	if err := u.prescriptionRepo.AddItem(prescriptionID, item); err != nil {
		return nil, u.mapItemError(prescriptionID, err)
	}
	u.auditService.Record(ctx, entity.AuditActionPrescriptionItems, "Prescription", prescriptionID, "add "+item.MedicineID)
	return u.GetPrescription(ctx, prescriptionID)
}

// UpdateItem replaces the line for req.MedicineID; the medicine must already be on the prescription.
func (u *dispensingUsecase) UpdateItem(ctx context.Context, prescriptionID string, req *dto.PrescriptionItemRequest) (*dto.PrescriptionResponse, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	item, err := u.buildItem(req)
	if err != nil {
		return nil, err
	}
	if err := u.prescriptionRepo.UpdateItem(prescriptionID, item); err != nil {
		return nil, u.mapItemError(prescriptionID, err)
	}
	u.auditService.Record(ctx, entity.AuditActionPrescriptionItems, "Prescription", prescriptionID, "update "+item.MedicineID)
	return u.GetPrescription(ctx, prescriptionID)
}

func (u *dispensingUsecase) RemoveItem(ctx context.Context, prescriptionID, medicineID string) (*dto.PrescriptionResponse, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if err := u.prescriptionRepo.RemoveItem(prescriptionID, medicineID); err != nil {
		return nil, u.mapItemError(prescriptionID, err)
	}
	u.auditService.Record(ctx, entity.AuditActionPrescriptionItems, "Prescription", prescriptionID, "remove "+medicineID)
	return u.GetPrescription(ctx, prescriptionID)
}

func (u *dispensingUsecase) ClearItems(ctx context.Context, prescriptionID string) (*dto.PrescriptionResponse, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if err := u.prescriptionRepo.ClearItems(prescriptionID); err != nil {
		return nil, u.mapItemError(prescriptionID, err)
	}
	u.auditService.Record(ctx, entity.AuditActionPrescriptionItems, "Prescription", prescriptionID, "clear")
	return u.GetPrescription(ctx, prescriptionID)
}

// CanDispense runs the stock check without changing anything.
func (u *dispensingUsecase) CanDispense(ctx context.Context, prescriptionID string) (*dto.DispenseResponse, error) {
	prescription, result, err := u.loadDispensable(prescriptionID)
	if err != nil || result != nil {
		return result, err
	}

	check, err := u.medicineRepo.CheckStock(stockLines(prescription))
	if err != nil {
		u.log.Warnf("Failed to check stock for prescription %s: %+v", prescriptionID, err)
		return nil, err
	}
	if len(check.FailedItems) > 0 {
		return failedDispense(MsgInsufficientStock, check.FailedItems), nil
	}
	return &dto.DispenseResponse{
		Success:   true,
		Message:   MsgDispensable,
		TotalCost: check.TotalCost,
	}, nil
}

// DispensePrescription deducts stock for every item and marks the prescription dispensed.
// Stock is checked and deducted in one medicine repository operation, so either every item
// is deducted or none is. If the prescription cannot be marked afterwards, the stock is put back.
func (u *dispensingUsecase) DispensePrescription(ctx context.Context, prescriptionID string) (*dto.DispenseResponse, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	prescription, result, err := u.loadDispensable(prescriptionID)
	if err != nil {
		metrics.RecordDispense("error")
		return nil, err
	}
	if result != nil {
		metrics.RecordDispense("rejected")
		return result, nil
	}

	lines := stockLines(prescription)
	stock, err := u.medicineRepo.DispenseStock(lines)
	if err != nil {
		u.log.Warnf("Failed to deduct stock for prescription %s: %+v", prescriptionID, err)
		metrics.RecordDispense("error")
		return nil, err
	}
	if !stock.Deducted {
		u.log.Infof("Prescription %s not dispensed, insufficient stock for %v", prescriptionID, stock.FailedItems)
		metrics.RecordDispense("insufficient_stock")
		return failedDispense(MsgInsufficientStock, stock.FailedItems), nil
	}

	if err := u.prescriptionRepo.MarkAsDispensed(prescriptionID, prescription.Items); err != nil {
		u.log.Warnf("Failed to mark prescription %s dispensed, restoring stock: %+v", prescriptionID, err)
		if restoreErr := u.medicineRepo.RestoreStock(lines); restoreErr != nil {
			u.log.Errorf("Failed to restore stock for prescription %s: %+v", prescriptionID, restoreErr)
		}
		if errors.Is(err, entity.ErrItemsChanged) {
			metrics.RecordDispense("rejected")
			return failedDispense(MsgItemsChanged, nil), nil
		}
		metrics.RecordDispense("error")
		return nil, err
	}

	metrics.RecordDispense("dispensed")
	u.auditService.Record(ctx, entity.AuditActionPrescriptionDispense, "Prescription", prescriptionID,
		"total="+stock.TotalCost.String())
	u.log.Infof("Prescription %s dispensed, total cost %s", prescriptionID, stock.TotalCost.String())
	return &dto.DispenseResponse{
		Success:   true,
		Message:   MsgDispensed,
		TotalCost: stock.TotalCost,
	}, nil
}

// MarkAsUndispensed clears the dispensed flag. Deducted stock is not returned.
func (u *dispensingUsecase) MarkAsUndispensed(ctx context.Context, prescriptionID string) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if err := u.prescriptionRepo.MarkAsUndispensed(prescriptionID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPrescriptionNotFound
		}
		u.log.Warnf("Failed to mark prescription %s undispensed: %+v", prescriptionID, err)
		return err
	}
	u.auditService.Record(ctx, entity.AuditActionPrescriptionUndo, "Prescription", prescriptionID, "stock not restored")
	u.log.Infof("Prescription %s marked undispensed, stock unchanged", prescriptionID)
	return nil
}

// loadDispensable returns the prescription, or a failed result explaining why it cannot be dispensed.
func (u *dispensingUsecase) loadDispensable(prescriptionID string) (*entity.Prescription, *dto.DispenseResponse, error) {
	prescription, err := u.prescriptionRepo.FindByID(prescriptionID)
	if err != nil {
		u.log.Warnf("Failed to find prescription %s: %+v", prescriptionID, err)
		return nil, nil, err
	}
	switch {
	case prescription == nil:
		return nil, failedDispense(MsgPrescriptionNotFound, nil), nil
	case prescription.IsDispensed:
		return nil, failedDispense(MsgAlreadyDispensed, nil), nil
	case len(prescription.Items) == 0:
		return nil, failedDispense(MsgNoItems, nil), nil
	}
	return prescription, nil, nil
}

func (u *dispensingUsecase) buildItem(req *dto.PrescriptionItemRequest) (entity.PrescriptionItem, error) {
	if req.Quantity <= 0 {
		return entity.PrescriptionItem{}, entity.ErrInvalidQuantity
	}
	medicine, err := u.medicineRepo.FindByID(req.MedicineID)
	if err != nil {
		u.log.Warnf("Failed to find medicine %s: %+v", req.MedicineID, err)
		return entity.PrescriptionItem{}, err
	}
	if medicine == nil {
		return entity.PrescriptionItem{}, ErrMedicineNotFound
	}
	return entity.PrescriptionItem{
		MedicineID:   medicine.MedicineID,
		MedicineName: medicine.Name,
		Quantity:     req.Quantity,
		Dosage:       req.Dosage,
		Duration:     req.Duration,
		Instructions: req.Instructions,
	}, nil
}

func (u *dispensingUsecase) mapItemError(prescriptionID string, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrPrescriptionNotFound
	case errors.Is(err, entity.ErrPrescriptionDispensed):
		return ErrPrescriptionDispensed
	case errors.Is(err, entity.ErrItemNotFound):
		return ErrPrescriptionItem
	case errors.Is(err, entity.ErrInvalidQuantity):
		return err
	}
	u.log.Warnf("Failed to change items of prescription %s: %+v", prescriptionID, err)
	return err
}

func stockLines(p *entity.Prescription) []repository.StockLine {
	lines := make([]repository.StockLine, len(p.Items))
	for i, item := range p.Items {
		lines[i] = repository.StockLine{MedicineID: item.MedicineID, Quantity: item.Quantity}
	}
	return lines
}

func failedDispense(message string, failed []string) *dto.DispenseResponse {
	return &dto.DispenseResponse{
		Success:     false,
		Message:     message,
		FailedItems: failed,
		TotalCost:   decimal.Zero,
	}
}
