package entity

import "errors"

var (
	ErrPrescriptionDispensed = errors.New("prescription already dispensed")
	ErrItemNotFound          = errors.New("prescription item not found")
	ErrInvalidQuantity       = errors.New("quantity must be greater than zero")
	ErrItemsChanged          = errors.New("prescription items changed")
)

// PrescriptionItem is one medicine line on a prescription.
type PrescriptionItem struct {
	MedicineID   string `json:"medicine_id" validate:"required,itemsafe"`
	MedicineName string `json:"medicine_name" validate:"itemsafe"`
	Quantity     int    `json:"quantity" validate:"gt=0"`
	Dosage       string `json:"dosage" validate:"itemsafe"`
	Duration     string `json:"duration" validate:"itemsafe"`
	Instructions string `json:"instructions" validate:"itemsafe"`
}

// Prescription is written by a doctor for an appointment. At most one exists per appointment.
type Prescription struct {
	PrescriptionID  string             `json:"prescription_id" validate:"required,linesafe"`
	AppointmentID   string             `json:"appointment_id" validate:"linesafe"`
	PatientUsername string             `json:"patient_username" validate:"required,linesafe"`
	DoctorID        string             `json:"doctor_id" validate:"required,linesafe"`
	Date            string             `json:"date" validate:"required,datefmt"`
	Diagnosis       string             `json:"diagnosis" validate:"linesafe"`
	Notes           string             `json:"notes" validate:"linesafe"`
	IsDispensed     bool               `json:"is_dispensed"`
	Items           []PrescriptionItem `json:"items" validate:"dive"`
}

// Clone returns a copy that shares no item storage with p.
func (p Prescription) Clone() Prescription {
	if p.Items != nil {
		items := make([]PrescriptionItem, len(p.Items))
		copy(items, p.Items)
		p.Items = items
	}
	return p
}

// FindItem returns the index of the item for medicineID, or -1.
func (p *Prescription) FindItem(medicineID string) int {
	for i := range p.Items {
		if p.Items[i].MedicineID == medicineID {
			return i
		}
	}
	return -1
}

// AddItem appends item, replacing any existing line for the same medicine.
func (p *Prescription) AddItem(item PrescriptionItem) error {
	if p.IsDispensed {
		return ErrPrescriptionDispensed
	}
	if item.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if i := p.FindItem(item.MedicineID); i >= 0 {
		p.Items[i] = item
		return nil
	}
	p.Items = append(p.Items, item)
	return nil
}

// UpdateItem replaces the existing line for item.MedicineID.
func (p *Prescription) UpdateItem(item PrescriptionItem) error {
	if p.IsDispensed {
		return ErrPrescriptionDispensed
	}
	if item.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	i := p.FindItem(item.MedicineID)
	if i < 0 {
		return ErrItemNotFound
	}
	p.Items[i] = item
	return nil
}

// SameLines reports whether p carries exactly the medicine and quantity lines of items, in order.
func (p *Prescription) SameLines(items []PrescriptionItem) bool {
	if len(p.Items) != len(items) {
		return false
	}
	for i := range items {
		if p.Items[i].MedicineID != items[i].MedicineID || p.Items[i].Quantity != items[i].Quantity {
			return false
		}
	}
	return true
}

// RemoveItem drops the line for medicineID.
func (p *Prescription) RemoveItem(medicineID string) error {
	if p.IsDispensed {
		return ErrPrescriptionDispensed
	}
	i := p.FindItem(medicineID)
	if i < 0 {
		return ErrItemNotFound
	}
	p.Items = append(p.Items[:i], p.Items[i+1:]...)
	return nil
}

// ClearItems removes every line.
func (p *Prescription) ClearItems() error {
	if p.IsDispensed {
		return ErrPrescriptionDispensed
	}
	p.Items = nil
	return nil
}
