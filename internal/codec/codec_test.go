package codec

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"hospital-records/internal/domain/entity"

	"github.com/shopspring/decimal"
)

func TestDecodeSkipsBlankAndCommentLines(t *testing.T) {
	c := NewMedicineCodec()
	for _, line := range []string{"", "   ", "# Medicine records", "  # indented comment"} {
		if _, err := c.Decode(line); !errors.Is(err, ErrSkipLine) {
			t.Errorf("Decode(%q) = %v, want ErrSkipLine", line, err)
		}
	}
}

func TestDecodeWrongFieldCount(t *testing.T) {
	_, err := NewAccountCodec().Decode("alice|hash|patient")
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("got %v, want *ParseError", err)
	}
	if !strings.Contains(perr.Reason, "expected 5 fields, got 3") {
		t.Errorf("reason = %q", perr.Reason)
	}
}

func TestMedicineRoundTripKeepsDecimalPrice(t *testing.T) {
	c := NewMedicineCodec()
	in := entity.Medicine{
		MedicineID:   "MED001",
		Name:         "Amoxicillin",
		GenericName:  "amoxicillin",
		Category:     "Antibiotic",
		Manufacturer: "Kimia Farma",
		UnitPrice:    decimal.RequireFromString("2500.50"),
		Quantity:     40,
		ReorderLevel: 10,
		ExpiryDate:   "2027-01-31",
		DosageForm:   "capsule",
		Strength:     "500mg",
	}

	out, err := c.Decode(c.Encode(in))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !out.UnitPrice.Equal(in.UnitPrice) {
		t.Errorf("price = %s, want %s", out.UnitPrice, in.UnitPrice)
	}
	out.UnitPrice, in.UnitPrice = decimal.Zero, decimal.Zero
	if !reflect.DeepEqual(out, in) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", out, in)
	}
}

func TestDecodeTrimsFields(t *testing.T) {
	m, err := NewMedicineCodec().Decode(" MED002 | Ibuprofen | | | ACME | | 1000 | 5 | 2 | | tablet | 200mg ")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if m.MedicineID != "MED002" || m.Name != "Ibuprofen" || m.Strength != "200mg" || m.Quantity != 5 {
		t.Errorf("fields not trimmed: %+v", m)
	}
}

func TestMedicineRejectsNegativeQuantity(t *testing.T) {
	_, err := NewMedicineCodec().Decode("MED003|X||||| 10|-1|0|||")
	var perr *ParseError
	if !errors.As(err, &perr) || perr.Field != "quantity" {
		t.Fatalf("got %v, want quantity ParseError", err)
	}
}

func TestAppointmentUnknownStatusIsLenient(t *testing.T) {
	var warned []string
	c := NewAppointmentCodec(WithWarnFunc(func(entityName, field, value string) {
		warned = append(warned, field+"="+value)
	}))

	a, err := c.Decode("APT001|alice|D001|2030-01-01|09:00|checkup|150000|0|postponed|")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if a.Status != entity.AppointmentStatusUnknown {
		t.Errorf("status = %s, want unknown", a.Status)
	}
	if len(warned) != 1 || warned[0] != "status=postponed" {
		t.Errorf("warnings = %v", warned)
	}
}

func TestAppointmentRejectsBadTime(t *testing.T) {
	_, err := NewAppointmentCodec().Decode("APT001|alice|D001|2030-01-01|9am|checkup|150000|0|scheduled|")
	var perr *ParseError
	if !errors.As(err, &perr) || perr.Field != "time" {
		t.Fatalf("got %v, want time ParseError", err)
	}
}

func TestAccountRejectsUnknownRole(t *testing.T) {
	_, err := NewAccountCodec().Decode("mallory|hash|superuser|1|2024-01-01")
	var perr *ParseError
	if !errors.As(err, &perr) || perr.Field != "role" {
		t.Fatalf("got %v, want role ParseError", err)
	}
}

func TestPrescriptionItemsRoundTrip(t *testing.T) {
	c := NewPrescriptionCodec()
	in := entity.Prescription{
		PrescriptionID:  "PRE001",
		AppointmentID:   "APT001",
		PatientUsername: "alice",
		DoctorID:        "D001",
		Date:            "2030-01-01",
		Diagnosis:       "Flu",
		IsDispensed:     true,
		Items: []entity.PrescriptionItem{
			{MedicineID: "MED001", MedicineName: "Paracetamol", Quantity: 2, Dosage: "500mg", Duration: "3 days", Instructions: "after meals"},
			{MedicineID: "MED002", MedicineName: "Vitamin C", Quantity: 10},
		},
	}

	line := c.Encode(in)
	if !strings.Contains(line, "MED001:Paracetamol:2:500mg:3 days:after meals;MED002:Vitamin C:10:::") {
		t.Errorf("unexpected item encoding: %s", line)
	}

	out, err := c.Decode(line)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !reflect.DeepEqual(out, in) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", out, in)
	}
}

func TestPrescriptionRejectsMalformedItem(t *testing.T) {
	_, err := NewPrescriptionCodec().Decode("PRE001|APT001|alice|D001|2030-01-01|||0|MED001:Paracetamol:zero:::")
	var perr *ParseError
	if !errors.As(err, &perr) || perr.Field != "items" {
		t.Fatalf("got %v, want items ParseError", err)
	}
}

func TestDepartmentDoctorList(t *testing.T) {
	c := NewDepartmentCodec()
	d, err := c.Decode("DEP001|Cardiology|Heart care|D001| D001 , D002 ,D001")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !reflect.DeepEqual(d.DoctorIDs, []string{"D001", "D002"}) {
		t.Errorf("doctor ids = %v", d.DoctorIDs)
	}
	if got := c.Encode(d); got != "DEP001|Cardiology|Heart care|D001|D001,D002" {
		t.Errorf("Encode = %q", got)
	}
}

func TestPatientUnknownGenderIsLenient(t *testing.T) {
	warned := 0
	c := NewPatientCodec(WithWarnFunc(func(string, string, string) { warned++ }))
	p, err := c.Decode("P001|alice|Alice Smith|1990-05-01|robot|0812||O+|")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if p.Gender != entity.GenderUnknown || warned != 1 {
		t.Errorf("gender = %s, warned = %d", p.Gender, warned)
	}
}

func TestHeader(t *testing.T) {
	h := Header(NewAccountCodec())
	want := []string{
		"# Account records",
		"# Format: username|passwordHash|role|isActive|createdDate",
	}
	if !reflect.DeepEqual(h, want) {
		t.Errorf("Header = %v, want %v", h, want)
	}
}

// roundTrip checks decode(encode(in)) == in. zeroMoney clears decimal fields after they
// were compared with Equal, since equal decimals can differ in representation.
func roundTrip[T any](t *testing.T, c Codec[T], in T, zeroMoney func(in, out *T)) {
	t.Helper()
	line := c.Encode(in)
	out, err := c.Decode(line)
	if err != nil {
		t.Fatalf("Decode(%q): %v", line, err)
	}
	if zeroMoney != nil {
		zeroMoney(&in, &out)
	}
	if !reflect.DeepEqual(out, in) {
		t.Errorf("round trip of %q:\n got %+v\nwant %+v", line, out, in)
	}
}

func moneyEqual(t *testing.T, got, want decimal.Decimal) {
	t.Helper()
	if !got.Equal(want) {
		t.Errorf("amount = %s, want %s", got, want)
	}
}

func TestAccountRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   entity.Account
	}{
		{"active patient", entity.Account{Username: "alice", PasswordHash: "$2a$10$abc", Role: entity.RolePatient, IsActive: true, CreatedDate: "2030-01-02"}},
		{"inactive admin without date", entity.Account{Username: "root", PasswordHash: "x", Role: entity.RoleAdmin}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roundTrip(t, NewAccountCodec(), tt.in, nil)
		})
	}
}

func TestPatientRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   entity.Patient
	}{
		{"all fields", entity.Patient{
			PatientID: "P001", Username: "alice", FullName: "Alice Smith", DateOfBirth: "1990-05-17",
			Gender: entity.GenderFemale, Phone: "0812", Address: "Jl. Merdeka 1", BloodType: "O+", MedicalHistory: "asthma",
		}},
		{"optional fields empty", entity.Patient{PatientID: "P002", Username: "bob", FullName: "Bob", Gender: entity.GenderUnknown}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roundTrip(t, NewPatientCodec(), tt.in, nil)
		})
	}
}

func TestDoctorRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   entity.Doctor
	}{
		{"all fields", entity.Doctor{
			DoctorID: "D001", Username: "drhouse", FullName: "Gregory House", Gender: entity.GenderMale, Phone: "555",
			Specialization: "Diagnostics", Qualification: "MD", ConsultationFee: decimal.RequireFromString("150000.50"),
		}},
		{"free consultation", entity.Doctor{DoctorID: "D002", Username: "drwho", FullName: "Who", Gender: entity.GenderUnknown, ConsultationFee: decimal.Zero}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roundTrip(t, NewDoctorCodec(), tt.in, func(in, out *entity.Doctor) {
				moneyEqual(t, out.ConsultationFee, in.ConsultationFee)
				in.ConsultationFee, out.ConsultationFee = decimal.Zero, decimal.Zero
			})
		})
	}
}

func TestAppointmentRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   entity.Appointment
	}{
		{"paid and completed", entity.Appointment{
			AppointmentID: "APT001", PatientUsername: "alice", DoctorID: "D001", Date: "2030-01-05", Time: "09:30",
			Reason: "checkup", Price: decimal.NewFromInt(150000), IsPaid: true, Status: entity.AppointmentStatusCompleted, Notes: "follow up",
		}},
		{"free with unknown status", entity.Appointment{
			AppointmentID: "APT002", PatientUsername: "bob", DoctorID: "D002", Date: "2030-01-06", Time: "16:30",
			Price: decimal.Zero, Status: entity.AppointmentStatusUnknown,
		}},
		{"no show", entity.Appointment{
			AppointmentID: "APT003", PatientUsername: "bob", DoctorID: "D001", Date: "2030-01-07", Time: "08:00",
			Price: decimal.NewFromInt(1), Status: entity.AppointmentStatusNoShow,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roundTrip(t, NewAppointmentCodec(), tt.in, func(in, out *entity.Appointment) {
				moneyEqual(t, out.Price, in.Price)
				in.Price, out.Price = decimal.Zero, decimal.Zero
			})
		})
	}
}

func TestDepartmentRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   entity.Department
	}{
		{"with members", entity.Department{
			DepartmentID: "DEP001", Name: "Cardiology", Description: "Heart", HeadDoctorID: "D001", DoctorIDs: []string{"D001", "D002"},
		}},
		{"no members", entity.Department{DepartmentID: "DEP002", Name: "Radiology"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roundTrip(t, NewDepartmentCodec(), tt.in, nil)
		})
	}
}

func TestMedicineRoundTripWithZeroPrice(t *testing.T) {
	in := entity.Medicine{MedicineID: "MED009", Name: "Saline", UnitPrice: decimal.Zero}
	roundTrip(t, NewMedicineCodec(), in, func(in, out *entity.Medicine) {
		moneyEqual(t, out.UnitPrice, in.UnitPrice)
		in.UnitPrice, out.UnitPrice = decimal.Zero, decimal.Zero
	})
}
