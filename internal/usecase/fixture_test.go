package usecase

import (
	"io"
	"testing"
	"time"

	"hospital-records/internal/domain/entity"
	domainRepo "hospital-records/internal/domain/repository"
	"hospital-records/internal/infrastructure/filestore"
	"hospital-records/internal/repository"
	"hospital-records/internal/service"
	"hospital-records/pkg/clock"
	"hospital-records/pkg/validator"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// now is 2030-01-02 10:00; slots up to and including 10:00 are gone for today.
var testNow = time.Date(2030, 1, 2, 10, 0, 0, 0, time.UTC)

type fixture struct {
	log           *logrus.Logger
	clock         clock.Clock
	audit         service.AuditService
	accounts      domainRepo.AccountRepository
	patients      domainRepo.PatientRepository
	doctors       domainRepo.DoctorRepository
	appointments  domainRepo.AppointmentRepository
	medicines     domainRepo.MedicineRepository
	prescriptions domainRepo.PrescriptionRepository
	departments   domainRepo.DepartmentRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	clk := clock.Fixed(testNow)
	files := filestore.NewWithFs(afero.NewMemMapFs(), "/data/backup", clk, log)
	deps := repository.Deps{Files: files, Validate: validator.NewValidator(), Log: log}

	return &fixture{
		log:           log,
		clock:         clk,
		audit:         service.NewAuditService(files, "/data/audit.log", clk, log),
		accounts:      repository.NewAccountRepository(deps, "/data/accounts.txt"),
		patients:      repository.NewPatientRepository(deps, "/data/patients.txt"),
		doctors:       repository.NewDoctorRepository(deps, "/data/doctors.txt"),
		appointments:  repository.NewAppointmentRepository(deps, "/data/appointments.txt"),
		medicines:     repository.NewMedicineRepository(deps, "/data/medicines.txt"),
		prescriptions: repository.NewPrescriptionRepository(deps, "/data/prescriptions.txt"),
		departments:   repository.NewDepartmentRepository(deps, "/data/departments.txt"),
	}
}

func (f *fixture) booking() BookingUsecase {
	return NewBookingUsecase(f.log, f.clock, f.appointments, f.doctors, f.patients, f.audit)
}

func (f *fixture) dispensing() DispensingUsecase {
	return NewDispensingUsecase(f.log, f.clock, f.prescriptions, f.medicines, f.appointments, f.audit)
}

// seedPeople adds patient alice (P001) and doctor D001 with a 150000 fee.
func (f *fixture) seedPeople(t *testing.T) {
	t.Helper()
	patient := &entity.Patient{Username: "alice", FullName: "Alice Smith"}
	if err := f.patients.Create(patient); err != nil {
		t.Fatalf("create patient: %v", err)
	}
	doctor := &entity.Doctor{
		Username:        "drhouse",
		FullName:        "Gregory House",
		Specialization:  "Diagnostics",
		ConsultationFee: decimal.NewFromInt(150000),
	}
	if err := f.doctors.Create(doctor); err != nil {
		t.Fatalf("create doctor: %v", err)
	}
	if doctor.DoctorID != "D001" {
		t.Fatalf("doctor id = %s, want D001", doctor.DoctorID)
	}
}

func (f *fixture) seedMedicine(t *testing.T, name string, price int64, qty int) string {
	t.Helper()
	m := &entity.Medicine{
		Name:         name,
		Manufacturer: "ACME",
		UnitPrice:    decimal.NewFromInt(price),
		Quantity:     qty,
		ReorderLevel: 1,
	}
	if err := f.medicines.Create(m); err != nil {
		t.Fatalf("create medicine %s: %v", name, err)
	}
	return m.MedicineID
}

func (f *fixture) stockOf(t *testing.T, medicineID string) int {
	t.Helper()
	m, err := f.medicines.FindByID(medicineID)
	if err != nil || m == nil {
		t.Fatalf("find medicine %s: %v", medicineID, err)
	}
	return m.Quantity
}
