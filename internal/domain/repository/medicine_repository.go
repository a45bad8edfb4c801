package repository

import (
	"hospital-records/internal/domain/entity"

	"github.com/shopspring/decimal"
)

// StockLine asks for Quantity units of one medicine.
type StockLine struct {
	MedicineID string
	Quantity   int
}

// StockResult is the outcome of DispenseStock. Deducted is false when any line failed,
// in which case no stock was touched.
type StockResult struct {
	Deducted    bool
	FailedItems []string
	TotalCost   decimal.Decimal
}

type MedicineRepository interface {
	Repository[entity.Medicine]
	Sequenced[entity.Medicine]
	FindByNameAndManufacturer(name, manufacturer string) (*entity.Medicine, error)
	SearchByName(query string) ([]entity.Medicine, error)
	GetByCategory(category string) ([]entity.Medicine, error)
	GetLowStock() ([]entity.Medicine, error)
	GetExpired(today string) ([]entity.Medicine, error)
	AddStock(medicineID string, quantity int) error
	// CheckStock reports which lines cannot be served, without changing anything.
	CheckStock(lines []StockLine) (*StockResult, error)
	// DispenseStock checks every line and, only if all pass, deducts them in one write.
	DispenseStock(lines []StockLine) (*StockResult, error)
	// RestoreStock puts quantities back, used to compensate a failed dispense.
	RestoreStock(lines []StockLine) error
}
