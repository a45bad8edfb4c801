package codec

import (
	"strings"

	"hospital-records/internal/domain/entity"
)

var departmentFields = []string{"departmentID", "name", "description", "headDoctorID", "doctorIDs"}

type departmentCodec struct {
	opts options
}

// NewDepartmentCodec encodes member doctor IDs joined by ','.
func NewDepartmentCodec(opts ...Option) Codec[entity.Department] {
	return &departmentCodec{opts: newOptions(opts)}
}

func (c *departmentCodec) Entity() string   { return "Department" }
func (c *departmentCodec) Fields() []string { return departmentFields }

func (c *departmentCodec) Encode(d entity.Department) string {
	return join(d.DepartmentID, d.Name, d.Description, d.HeadDoctorID, strings.Join(d.DoctorIDs, ListSeparator))
}

func (c *departmentCodec) Decode(line string) (entity.Department, error) {
	r, err := split(c.Entity(), departmentFields, line)
	if err != nil {
		return entity.Department{}, err
	}

	d := entity.Department{
		DepartmentID: r.required(0),
		Name:         r.required(1),
		Description:  r.optional(2),
		HeadDoctorID: r.optional(3),
	}
	if ids := r.optional(4); ids != "" {
		for _, id := range strings.Split(ids, ListSeparator) {
			d.AddDoctor(strings.TrimSpace(id))
		}
	}
	return d, r.result()
}
