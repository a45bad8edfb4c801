package codec

import "hospital-records/internal/domain/entity"

var appointmentFields = []string{
	"appointmentID", "patientUsername", "doctorID", "date", "time",
	"reason", "price", "isPaid", "status", "notes",
}

type appointmentCodec struct {
	opts options
}

func NewAppointmentCodec(opts ...Option) Codec[entity.Appointment] {
	return &appointmentCodec{opts: newOptions(opts)}
}

func (c *appointmentCodec) Entity() string   { return "Appointment" }
func (c *appointmentCodec) Fields() []string { return appointmentFields }

func (c *appointmentCodec) Encode(a entity.Appointment) string {
	return join(a.AppointmentID, a.PatientUsername, a.DoctorID, a.Date, a.Time,
		a.Reason, a.Price.String(), formatFlag(a.IsPaid), string(a.Status), a.Notes)
}

func (c *appointmentCodec) Decode(line string) (entity.Appointment, error) {
	r, err := split(c.Entity(), appointmentFields, line)
	if err != nil {
		return entity.Appointment{}, err
	}

	a := entity.Appointment{
		AppointmentID:   r.required(0),
		PatientUsername: r.required(1),
		DoctorID:        r.required(2),
		Date:            r.date(3, true),
		Time:            r.clock(4),
		Reason:          r.optional(5),
		Price:           r.money(6),
		IsPaid:          r.flag(7),
		Notes:           r.optional(9),
	}

	status, ok := entity.ParseAppointmentStatus(r.parts[8])
	if !ok {
		c.opts.warn(c.Entity(), appointmentFields[8], r.parts[8])
	}
	a.Status = status

	return a, r.result()
}
