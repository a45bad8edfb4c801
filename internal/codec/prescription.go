package codec

import (
	"fmt"
	"strconv"
	"strings"

	"hospital-records/internal/domain/entity"
)

var prescriptionFields = []string{
	"prescriptionID", "appointmentID", "patientUsername", "doctorID", "date",
	"diagnosis", "notes", "isDispensed", "items",
}

const itemFieldCount = 6

type prescriptionCodec struct {
	opts options
}

// NewPrescriptionCodec encodes items as medicineID:medicineName:quantity:dosage:duration:instructions joined by ';'.
func NewPrescriptionCodec(opts ...Option) Codec[entity.Prescription] {
	return &prescriptionCodec{opts: newOptions(opts)}
}

func (c *prescriptionCodec) Entity() string   { return "Prescription" }
func (c *prescriptionCodec) Fields() []string { return prescriptionFields }

func (c *prescriptionCodec) Encode(p entity.Prescription) string {
	return join(p.PrescriptionID, p.AppointmentID, p.PatientUsername, p.DoctorID, p.Date,
		p.Diagnosis, p.Notes, formatFlag(p.IsDispensed), encodeItems(p.Items))
}

func (c *prescriptionCodec) Decode(line string) (entity.Prescription, error) {
	r, err := split(c.Entity(), prescriptionFields, line)
	if err != nil {
		return entity.Prescription{}, err
	}

	p := entity.Prescription{
		PrescriptionID:  r.required(0),
		AppointmentID:   r.optional(1),
		PatientUsername: r.required(2),
		DoctorID:        r.required(3),
		Date:            r.date(4, true),
		Diagnosis:       r.optional(5),
		Notes:           r.optional(6),
		IsDispensed:     r.flag(7),
	}

	items, err := decodeItems(r.optional(8))
	if err != nil {
		r.fail(8, err.Error())
	}
	p.Items = items

	return p, r.result()
}

func encodeItems(items []entity.PrescriptionItem) string {
	encoded := make([]string, 0, len(items))
	for _, it := range items {
		encoded = append(encoded, strings.Join([]string{
			it.MedicineID, it.MedicineName, itoa(it.Quantity), it.Dosage, it.Duration, it.Instructions,
		}, ItemFieldSeparator))
	}
	return strings.Join(encoded, ItemSeparator)
}

func decodeItems(s string) ([]entity.PrescriptionItem, error) {
	if s == "" {
		return nil, nil
	}
	var items []entity.PrescriptionItem
	for n, raw := range strings.Split(s, ItemSeparator) {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		parts := strings.Split(raw, ItemFieldSeparator)
		if len(parts) != itemFieldCount {
			return nil, fmt.Errorf("item %d: expected %d parts, got %d", n+1, itemFieldCount, len(parts))
		}
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if parts[0] == "" {
			return nil, fmt.Errorf("item %d: medicine id is empty", n+1)
		}
		qty, err := strconv.Atoi(parts[2])
		if err != nil || qty <= 0 {
			return nil, fmt.Errorf("item %d: quantity must be a positive integer", n+1)
		}
		items = append(items, entity.PrescriptionItem{
			MedicineID:   parts[0],
			MedicineName: parts[1],
			Quantity:     qty,
			Dosage:       parts[3],
			Duration:     parts[4],
			Instructions: parts[5],
		})
	}
	return items, nil
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
