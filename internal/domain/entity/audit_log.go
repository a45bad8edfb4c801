package entity

// AuditEntry is one line of the append-only audit trail.
type AuditEntry struct {
	Timestamp string `json:"timestamp"`
	Actor     string `json:"actor"`
	Action    string `json:"action"`
	Entity    string `json:"entity"`
	EntityID  string `json:"entity_id"`
	Detail    string `json:"detail,omitempty"`
}

// Common audit actions
const (
	AuditActionAccountRegister      = "account.register"
	AuditActionAccountPassword      = "account.password"
	AuditActionAccountActivation    = "account.activation"
	AuditActionAppointmentBook      = "appointment.book"
	AuditActionAppointmentEdit      = "appointment.edit"
	AuditActionAppointmentCancel    = "appointment.cancel"
	AuditActionAppointmentComplete  = "appointment.complete"
	AuditActionAppointmentNoShow    = "appointment.no_show"
	AuditActionAppointmentPaid      = "appointment.paid"
	AuditActionPrescriptionCreate   = "prescription.create"
	AuditActionPrescriptionItems    = "prescription.items"
	AuditActionPrescriptionDispense = "prescription.dispense"
	AuditActionPrescriptionUndo     = "prescription.undispense"
	AuditActionMedicineCreate       = "medicine.create"
	AuditActionMedicineRestock      = "medicine.restock"
)
