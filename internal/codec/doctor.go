package codec

import "hospital-records/internal/domain/entity"

var doctorFields = []string{
	"doctorID", "username", "fullName", "gender", "phone",
	"specialization", "qualification", "consultationFee",
}

type doctorCodec struct {
	opts options
}

func NewDoctorCodec(opts ...Option) Codec[entity.Doctor] {
	return &doctorCodec{opts: newOptions(opts)}
}

func (c *doctorCodec) Entity() string   { return "Doctor" }
func (c *doctorCodec) Fields() []string { return doctorFields }

func (c *doctorCodec) Encode(d entity.Doctor) string {
	return join(d.DoctorID, d.Username, d.FullName, string(d.Gender), d.Phone,
		d.Specialization, d.Qualification, d.ConsultationFee.String())
}

func (c *doctorCodec) Decode(line string) (entity.Doctor, error) {
	r, err := split(c.Entity(), doctorFields, line)
	if err != nil {
		return entity.Doctor{}, err
	}

	d := entity.Doctor{
		DoctorID:        r.required(0),
		Username:        r.required(1),
		FullName:        r.required(2),
		Gender:          r.gender(3, c.opts.warn),
		Phone:           r.optional(4),
		Specialization:  r.optional(5),
		Qualification:   r.optional(6),
		ConsultationFee: r.money(7),
	}
	return d, r.result()
}
