package entity

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Medicine is a stocked inventory item. Name and manufacturer together are unique,
// compared case-insensitively after trimming.
type Medicine struct {
	MedicineID   string          `json:"medicine_id" validate:"required,linesafe"`
	Name         string          `json:"name" validate:"required,linesafe"`
	GenericName  string          `json:"generic_name" validate:"linesafe"`
	Category     string          `json:"category" validate:"linesafe"`
	Manufacturer string          `json:"manufacturer" validate:"linesafe"`
	Description  string          `json:"description" validate:"linesafe"`
	UnitPrice    decimal.Decimal `json:"unit_price" validate:"gte=0"`
	Quantity     int             `json:"quantity" validate:"gte=0"`
	ReorderLevel int             `json:"reorder_level" validate:"gte=0"`
	ExpiryDate   string          `json:"expiry_date" validate:"omitempty,datefmt"`
	DosageForm   string          `json:"dosage_form" validate:"linesafe"`
	Strength     string          `json:"strength" validate:"linesafe"`
}

// IdentityKey is the normalised name+manufacturer pair used for duplicate detection.
func (m *Medicine) IdentityKey() string {
	return normalizeKey(m.Name) + "\x00" + normalizeKey(m.Manufacturer)
}

// IsLowStock reports whether stock has fallen to the reorder level.
func (m *Medicine) IsLowStock() bool {
	return m.Quantity <= m.ReorderLevel
}

// IsExpired compares the expiry date against today (both YYYY-MM-DD, so string order is date order).
func (m *Medicine) IsExpired(today string) bool {
	return m.ExpiryDate != "" && m.ExpiryDate < today
}

// HasStock reports whether qty units can be taken from stock.
func (m *Medicine) HasStock(qty int) bool {
	return qty > 0 && m.Quantity >= qty
}

// LineCost is unit price times quantity.
func (m *Medicine) LineCost(qty int) decimal.Decimal {
	return m.UnitPrice.Mul(decimal.NewFromInt(int64(qty)))
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
