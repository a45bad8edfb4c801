package codec

import "hospital-records/internal/domain/entity"

var patientFields = []string{
	"patientID", "username", "fullName", "dateOfBirth", "gender",
	"phone", "address", "bloodType", "medicalHistory",
}

type patientCodec struct {
	opts options
}

func NewPatientCodec(opts ...Option) Codec[entity.Patient] {
	return &patientCodec{opts: newOptions(opts)}
}

func (c *patientCodec) Entity() string   { return "Patient" }
func (c *patientCodec) Fields() []string { return patientFields }

func (c *patientCodec) Encode(p entity.Patient) string {
	return join(p.PatientID, p.Username, p.FullName, p.DateOfBirth, string(p.Gender),
		p.Phone, p.Address, p.BloodType, p.MedicalHistory)
}

func (c *patientCodec) Decode(line string) (entity.Patient, error) {
	r, err := split(c.Entity(), patientFields, line)
	if err != nil {
		return entity.Patient{}, err
	}

	p := entity.Patient{
		PatientID:      r.required(0),
		Username:       r.required(1),
		FullName:       r.required(2),
		DateOfBirth:    r.date(3, false),
		Gender:         r.gender(4, c.opts.warn),
		Phone:          r.optional(5),
		Address:        r.optional(6),
		BloodType:      r.optional(7),
		MedicalHistory: r.optional(8),
	}
	return p, r.result()
}
