package usecase

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"hospital-records/internal/delivery/dto"
	"hospital-records/internal/domain/entity"
	domainRepo "hospital-records/internal/domain/repository"

	"github.com/shopspring/decimal"
)

// newPrescription books an appointment for alice with D001 and writes a prescription for it.
func newPrescription(t *testing.T, f *fixture, items ...dto.PrescriptionItemRequest) string {
	t.Helper()
	ctx := context.Background()
	appt, err := f.booking().BookAppointment(ctx, "alice", &dto.BookAppointmentRequest{DoctorID: "D001", Date: "2030-01-05", Time: "09:00"})
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	p, err := f.dispensing().CreatePrescription(ctx, "D001", &dto.CreatePrescriptionRequest{
		AppointmentID: appt.AppointmentID,
		Diagnosis:     "Flu",
		Items:         items,
	})
	if err != nil {
		t.Fatalf("CreatePrescription: %v", err)
	}
	return p.PrescriptionID
}

func TestCreatePrescription(t *testing.T) {
	f := newFixture(t)
	f.seedPeople(t)
	m1 := f.seedMedicine(t, "Paracetamol", 5000, 10)
	uc := f.dispensing()
	ctx := context.Background()

	appt, err := f.booking().BookAppointment(ctx, "alice", &dto.BookAppointmentRequest{DoctorID: "D001", Date: "2030-01-05", Time: "09:00"})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := uc.CreatePrescription(ctx, "D002", &dto.CreatePrescriptionRequest{AppointmentID: appt.AppointmentID}); !errors.Is(err, ErrAppointmentNotOwned) {
		t.Errorf("other doctor: got %v", err)
	}
	if _, err := uc.CreatePrescription(ctx, "", &dto.CreatePrescriptionRequest{AppointmentID: "APT404"}); !errors.Is(err, ErrAppointmentNotFound) {
		t.Errorf("missing appointment: got %v", err)
	}
	if _, err := uc.CreatePrescription(ctx, "", &dto.CreatePrescriptionRequest{
		AppointmentID: appt.AppointmentID,
		Items:         []dto.PrescriptionItemRequest{{MedicineID: "MED404", Quantity: 1}},
	}); !errors.Is(err, ErrMedicineNotFound) {
		t.Errorf("unknown medicine: got %v", err)
	}

	p, err := uc.CreatePrescription(ctx, "D001", &dto.CreatePrescriptionRequest{
		AppointmentID: appt.AppointmentID,
		Diagnosis:     "Flu",
		Items:         []dto.PrescriptionItemRequest{{MedicineID: m1, Quantity: 2, Dosage: "500mg"}},
	})
	if err != nil {
		t.Fatalf("CreatePrescription: %v", err)
	}
	if p.PatientUsername != "alice" || p.DoctorID != "D001" || p.Date != "2030-01-02" || p.IsDispensed {
		t.Errorf("prescription = %+v", p)
	}
	if len(p.Items) != 1 || p.Items[0].MedicineName != "Paracetamol" {
		t.Errorf("items = %+v", p.Items)
	}

	if _, err := uc.CreatePrescription(ctx, "", &dto.CreatePrescriptionRequest{AppointmentID: appt.AppointmentID}); !errors.Is(err, ErrPrescriptionExists) {
		t.Errorf("second prescription: got %v", err)
	}
}

func TestCreatePrescriptionForCancelledAppointment(t *testing.T) {
	f := newFixture(t)
	f.seedPeople(t)
	ctx := context.Background()

	appt, err := f.booking().BookAppointment(ctx, "alice", &dto.BookAppointmentRequest{DoctorID: "D001", Date: "2030-01-05", Time: "09:00"})
	if err != nil {
		t.Fatal(err)
	}
	if err := f.booking().CancelAppointment(ctx, appt.AppointmentID); err != nil {
		t.Fatal(err)
	}
	if _, err := f.dispensing().CreatePrescription(ctx, "", &dto.CreatePrescriptionRequest{AppointmentID: appt.AppointmentID}); !errors.Is(err, ErrAppointmentCancelled) {
		t.Errorf("got %v, want ErrAppointmentCancelled", err)
	}
}

func TestDispenseInsufficientStockTouchesNothing(t *testing.T) {
	f := newFixture(t)
	f.seedPeople(t)
	m1 := f.seedMedicine(t, "Paracetamol", 5000, 3)
	m2 := f.seedMedicine(t, "Vitamin C", 2000, 10)
	id := newPrescription(t, f,
		dto.PrescriptionItemRequest{MedicineID: m1, Quantity: 5},
		dto.PrescriptionItemRequest{MedicineID: m2, Quantity: 3},
	)
	uc := f.dispensing()
	ctx := context.Background()

	check, err := uc.CanDispense(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if check.Success || !reflect.DeepEqual(check.FailedItems, []string{m1}) {
		t.Errorf("CanDispense = %+v", check)
	}

	result, err := uc.DispensePrescription(ctx, id)
	if err != nil {
		t.Fatalf("DispensePrescription: %v", err)
	}
	if result.Success || result.Message != MsgInsufficientStock {
		t.Errorf("result = %+v", result)
	}
	if !reflect.DeepEqual(result.FailedItems, []string{m1}) {
		t.Errorf("failed items = %v, want [%s]", result.FailedItems, m1)
	}
	if !result.TotalCost.IsZero() {
		t.Errorf("total cost = %s, want 0", result.TotalCost)
	}

	if got := f.stockOf(t, m1); got != 3 {
		t.Errorf("%s stock = %d, want 3", m1, got)
	}
	if got := f.stockOf(t, m2); got != 10 {
		t.Errorf("%s stock = %d, want 10", m2, got)
	}
	p, err := uc.GetPrescription(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if p.IsDispensed {
		t.Error("prescription marked dispensed after failed dispense")
	}
}

func TestDispenseDeductsEveryLine(t *testing.T) {
	f := newFixture(t)
	f.seedPeople(t)
	m1 := f.seedMedicine(t, "Paracetamol", 5000, 10)
	m2 := f.seedMedicine(t, "Vitamin C", 2000, 10)
	id := newPrescription(t, f,
		dto.PrescriptionItemRequest{MedicineID: m1, Quantity: 2},
		dto.PrescriptionItemRequest{MedicineID: m2, Quantity: 3},
	)
	uc := f.dispensing()
	ctx := context.Background()

	check, err := uc.CanDispense(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if !check.Success || !check.TotalCost.Equal(decimal.NewFromInt(16000)) {
		t.Errorf("CanDispense = %+v", check)
	}
	if got := f.stockOf(t, m1); got != 10 {
		t.Errorf("CanDispense changed stock to %d", got)
	}

	result, err := uc.DispensePrescription(ctx, id)
	if err != nil {
		t.Fatalf("DispensePrescription: %v", err)
	}
	if !result.Success || result.Message != MsgDispensed {
		t.Fatalf("result = %+v", result)
	}
	if !result.TotalCost.Equal(decimal.NewFromInt(16000)) {
		t.Errorf("total cost = %s, want 16000", result.TotalCost)
	}
	if got := f.stockOf(t, m1); got != 8 {
		t.Errorf("%s stock = %d, want 8", m1, got)
	}
	if got := f.stockOf(t, m2); got != 7 {
		t.Errorf("%s stock = %d, want 7", m2, got)
	}

	again, err := uc.DispensePrescription(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if again.Success || again.Message != MsgAlreadyDispensed {
		t.Errorf("second dispense = %+v", again)
	}
	if got := f.stockOf(t, m1); got != 8 {
		t.Errorf("second dispense changed stock to %d", got)
	}

	pending, err := uc.GetPending(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if pending.Total != 0 {
		t.Errorf("pending = %d, want 0", pending.Total)
	}
}

func TestDispensedPrescriptionIsFrozen(t *testing.T) {
	f := newFixture(t)
	f.seedPeople(t)
	m1 := f.seedMedicine(t, "Paracetamol", 5000, 10)
	m2 := f.seedMedicine(t, "Vitamin C", 2000, 10)
	id := newPrescription(t, f, dto.PrescriptionItemRequest{MedicineID: m1, Quantity: 1})
	uc := f.dispensing()
	ctx := context.Background()

	if _, err := uc.DispensePrescription(ctx, id); err != nil {
		t.Fatal(err)
	}
	if _, err := uc.AddItem(ctx, id, &dto.PrescriptionItemRequest{MedicineID: m2, Quantity: 1}); !errors.Is(err, ErrPrescriptionDispensed) {
		t.Errorf("AddItem after dispense: got %v", err)
	}
	if _, err := uc.RemoveItem(ctx, id, m1); !errors.Is(err, ErrPrescriptionDispensed) {
		t.Errorf("RemoveItem after dispense: got %v", err)
	}
}

func TestUndispenseKeepsStockDeducted(t *testing.T) {
	f := newFixture(t)
	f.seedPeople(t)
	m1 := f.seedMedicine(t, "Paracetamol", 5000, 10)
	id := newPrescription(t, f, dto.PrescriptionItemRequest{MedicineID: m1, Quantity: 4})
	uc := f.dispensing()
	ctx := context.Background()

	if _, err := uc.DispensePrescription(ctx, id); err != nil {
		t.Fatal(err)
	}
	if err := uc.MarkAsUndispensed(ctx, id); err != nil {
		t.Fatalf("MarkAsUndispensed: %v", err)
	}
	if got := f.stockOf(t, m1); got != 6 {
		t.Errorf("stock = %d, want 6", got)
	}
	p, err := uc.GetPrescription(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if p.IsDispensed {
		t.Error("still dispensed")
	}
	if err := uc.MarkAsUndispensed(ctx, "PRE404"); !errors.Is(err, ErrPrescriptionNotFound) {
		t.Errorf("missing prescription: got %v", err)
	}
}

func TestDispenseRejections(t *testing.T) {
	f := newFixture(t)
	f.seedPeople(t)
	id := newPrescription(t, f)
	uc := f.dispensing()
	ctx := context.Background()

	empty, err := uc.DispensePrescription(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if empty.Success || empty.Message != MsgNoItems {
		t.Errorf("empty prescription = %+v", empty)
	}

	missing, err := uc.DispensePrescription(ctx, "PRE404")
	if err != nil {
		t.Fatal(err)
	}
	if missing.Success || missing.Message != MsgPrescriptionNotFound {
		t.Errorf("missing prescription = %+v", missing)
	}
}

func TestPrescriptionItemEditing(t *testing.T) {
	f := newFixture(t)
	f.seedPeople(t)
	m1 := f.seedMedicine(t, "Paracetamol", 5000, 10)
	m2 := f.seedMedicine(t, "Vitamin C", 2000, 10)
	id := newPrescription(t, f, dto.PrescriptionItemRequest{MedicineID: m1, Quantity: 1})
	uc := f.dispensing()
	ctx := context.Background()

	p, err := uc.AddItem(ctx, id, &dto.PrescriptionItemRequest{MedicineID: m2, Quantity: 2, Instructions: "after meals"})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if len(p.Items) != 2 {
		t.Fatalf("items = %+v", p.Items)
	}
	if _, err := uc.AddItem(ctx, id, &dto.PrescriptionItemRequest{MedicineID: m2, Quantity: 0}); !errors.Is(err, entity.ErrInvalidQuantity) {
		t.Errorf("zero quantity: got %v", err)
	}
	if _, err := uc.AddItem(ctx, "PRE404", &dto.PrescriptionItemRequest{MedicineID: m2, Quantity: 1}); !errors.Is(err, ErrPrescriptionNotFound) {
		t.Errorf("missing prescription: got %v", err)
	}

	p, err = uc.RemoveItem(ctx, id, m1)
	if err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if len(p.Items) != 1 || p.Items[0].MedicineID != m2 {
		t.Errorf("items = %+v", p.Items)
	}
	if _, err := uc.RemoveItem(ctx, id, m1); !errors.Is(err, ErrPrescriptionItem) {
		t.Errorf("remove twice: got %v", err)
	}

	p, err = uc.UpdateItem(ctx, id, &dto.PrescriptionItemRequest{MedicineID: m2, Quantity: 4, Dosage: "1x1"})
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if p.Items[0].Quantity != 4 || p.Items[0].Dosage != "1x1" {
		t.Errorf("updated item = %+v", p.Items[0])
	}
	if _, err := uc.UpdateItem(ctx, id, &dto.PrescriptionItemRequest{MedicineID: m1, Quantity: 1}); !errors.Is(err, ErrPrescriptionItem) {
		t.Errorf("update missing line: got %v", err)
	}

	p, err = uc.ClearItems(ctx, id)
	if err != nil {
		t.Fatalf("ClearItems: %v", err)
	}
	if len(p.Items) != 0 {
		t.Errorf("items after clear = %+v", p.Items)
	}

	mine, err := uc.GetByPatient(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if mine.Total != 1 {
		t.Errorf("patient prescriptions = %d, want 1", mine.Total)
	}
}

// editingPrescriptions adds a line just before the dispensed flag is written.
type editingPrescriptions struct {
	domainRepo.PrescriptionRepository
	extra entity.PrescriptionItem
}

func (r editingPrescriptions) MarkAsDispensed(prescriptionID string, items []entity.PrescriptionItem) error {
	if err := r.PrescriptionRepository.AddItem(prescriptionID, r.extra); err != nil {
		return err
	}
	return r.PrescriptionRepository.MarkAsDispensed(prescriptionID, items)
}

func TestDispenseRefusesItemsChangedAfterDeduction(t *testing.T) {
	f := newFixture(t)
	f.seedPeople(t)
	m1 := f.seedMedicine(t, "Paracetamol", 5000, 10)
	m2 := f.seedMedicine(t, "Vitamin C", 2000, 10)
	id := newPrescription(t, f, dto.PrescriptionItemRequest{MedicineID: m1, Quantity: 2})

	prescriptions := editingPrescriptions{
		PrescriptionRepository: f.prescriptions,
		extra:                  entity.PrescriptionItem{MedicineID: m2, MedicineName: "Vitamin C", Quantity: 5},
	}
	uc := NewDispensingUsecase(f.log, f.clock, prescriptions, f.medicines, f.appointments, f.audit)

	result, err := uc.DispensePrescription(context.Background(), id)
	if err != nil {
		t.Fatalf("DispensePrescription: %v", err)
	}
	if result.Success || result.Message != MsgItemsChanged {
		t.Fatalf("result = %+v", result)
	}

	p, err := f.prescriptions.FindByID(id)
	if err != nil || p == nil {
		t.Fatalf("FindByID: %v", err)
	}
	if p.IsDispensed {
		t.Error("prescription marked dispensed with undeducted items")
	}
	if got := f.stockOf(t, m1); got != 10 {
		t.Errorf("%s stock = %d, want 10 after compensation", m1, got)
	}
	if got := f.stockOf(t, m2); got != 10 {
		t.Errorf("%s stock = %d, want 10", m2, got)
	}

	// The edited prescription dispenses normally afterwards.
	result, err = f.dispensing().DispensePrescription(context.Background(), id)
	if err != nil || !result.Success {
		t.Fatalf("second dispense = %+v, %v", result, err)
	}
	if f.stockOf(t, m1) != 8 || f.stockOf(t, m2) != 5 {
		t.Errorf("stock = %d, %d; want 8, 5", f.stockOf(t, m1), f.stockOf(t, m2))
	}
}
