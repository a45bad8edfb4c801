package codec

import "hospital-records/internal/domain/entity"

var medicineFields = []string{
	"medicineID", "name", "genericName", "category", "manufacturer", "description",
	"unitPrice", "quantity", "reorderLevel", "expiryDate", "dosageForm", "strength",
}

type medicineCodec struct {
	opts options
}

func NewMedicineCodec(opts ...Option) Codec[entity.Medicine] {
	return &medicineCodec{opts: newOptions(opts)}
}

func (c *medicineCodec) Entity() string   { return "Medicine" }
func (c *medicineCodec) Fields() []string { return medicineFields }

func (c *medicineCodec) Encode(m entity.Medicine) string {
	return join(m.MedicineID, m.Name, m.GenericName, m.Category, m.Manufacturer, m.Description,
		m.UnitPrice.String(), itoa(m.Quantity), itoa(m.ReorderLevel), m.ExpiryDate, m.DosageForm, m.Strength)
}

func (c *medicineCodec) Decode(line string) (entity.Medicine, error) {
	r, err := split(c.Entity(), medicineFields, line)
	if err != nil {
		return entity.Medicine{}, err
	}

	m := entity.Medicine{
		MedicineID:   r.required(0),
		Name:         r.required(1),
		GenericName:  r.optional(2),
		Category:     r.optional(3),
		Manufacturer: r.optional(4),
		Description:  r.optional(5),
		UnitPrice:    r.money(6),
		Quantity:     r.count(7),
		ReorderLevel: r.count(8),
		ExpiryDate:   r.date(9, false),
		DosageForm:   r.optional(10),
		Strength:     r.optional(11),
	}
	return m, r.result()
}
