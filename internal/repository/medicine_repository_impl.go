package repository

import (
	"fmt"
	"strings"

	"hospital-records/internal/codec"
	"hospital-records/internal/domain/entity"
	domainRepo "hospital-records/internal/domain/repository"

	"github.com/shopspring/decimal"
)

type medicineRepository struct {
	*fileRepository[entity.Medicine]
}

func NewMedicineRepository(deps Deps, path string) domainRepo.MedicineRepository {
	return &medicineRepository{
		fileRepository: newFileRepository(deps, path, entitySpec[entity.Medicine]{
			codec:  codec.NewMedicineCodec(codec.WithWarnFunc(codecWarn(deps.Log))),
			prefix: MedicinePrefix,
			key:    func(m *entity.Medicine) string { return m.MedicineID },
			setKey: func(m *entity.Medicine, id string) { m.MedicineID = id },
			conflict: func(c, e *entity.Medicine) error {
				if c.IdentityKey() == e.IdentityKey() {
					return fmt.Errorf("%w: medicine %q by %q already exists as %s",
						domainRepo.ErrDuplicate, c.Name, c.Manufacturer, e.MedicineID)
				}
				return nil
			},
		}),
	}
}

func (r *medicineRepository) FindByNameAndManufacturer(name, manufacturer string) (*entity.Medicine, error) {
	want := (&entity.Medicine{Name: name, Manufacturer: manufacturer}).IdentityKey()
	return r.first(func(m *entity.Medicine) bool { return m.IdentityKey() == want })
}

func (r *medicineRepository) SearchByName(query string) ([]entity.Medicine, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	return r.filter(func(m *entity.Medicine) bool {
		return strings.Contains(strings.ToLower(m.Name), q) ||
			strings.Contains(strings.ToLower(m.GenericName), q)
	})
}

func (r *medicineRepository) GetByCategory(category string) ([]entity.Medicine, error) {
	c := strings.TrimSpace(category)
	return r.filter(func(m *entity.Medicine) bool { return strings.EqualFold(m.Category, c) })
}

func (r *medicineRepository) GetLowStock() ([]entity.Medicine, error) {
	return r.filter(func(m *entity.Medicine) bool { return m.IsLowStock() })
}

func (r *medicineRepository) GetExpired(today string) ([]entity.Medicine, error) {
	return r.filter(func(m *entity.Medicine) bool { return m.IsExpired(today) })
}

func (r *medicineRepository) AddStock(medicineID string, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: %v", domainRepo.ErrInvalid, entity.ErrInvalidQuantity)
	}
	return r.modifyWhere("add_stock", func(m *entity.Medicine) bool {
		return m.MedicineID == medicineID
	}, func(m *entity.Medicine) error {
		m.Quantity += quantity
		return nil
	})
}

func (r *medicineRepository) CheckStock(lines []domainRepo.StockLine) (*domainRepo.StockResult, error) {
	var result *domainRepo.StockResult
	err := r.transact("check_stock", func(items []entity.Medicine) (bool, error) {
		result = evaluateStock(items, lines)
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DispenseStock checks and deducts under a single lock; either every line is deducted or none.
func (r *medicineRepository) DispenseStock(lines []domainRepo.StockLine) (*domainRepo.StockResult, error) {
	var result *domainRepo.StockResult
	err := r.transact("dispense_stock", func(items []entity.Medicine) (bool, error) {
		result = evaluateStock(items, lines)
		if len(result.FailedItems) > 0 {
			return false, nil
		}
		for _, line := range lines {
			items[indexMedicine(items, line.MedicineID)].Quantity -= line.Quantity
		}
		result.Deducted = true
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *medicineRepository) RestoreStock(lines []domainRepo.StockLine) error {
	return r.transact("restore_stock", func(items []entity.Medicine) (bool, error) {
		changed := false
		for _, line := range lines {
			i := indexMedicine(items, line.MedicineID)
			if i < 0 || line.Quantity <= 0 {
				continue
			}
			items[i].Quantity += line.Quantity
			changed = true
		}
		return changed, nil
	})
}

// evaluateStock totals the cost of lines and lists the medicine IDs that are unknown or short.
// Quantities for the same medicine on several lines are summed before comparing.
func evaluateStock(items []entity.Medicine, lines []domainRepo.StockLine) *domainRepo.StockResult {
	result := &domainRepo.StockResult{TotalCost: decimal.Zero}
	wanted := make(map[string]int, len(lines))
	order := make([]string, 0, len(lines))
	for _, line := range lines {
		if _, ok := wanted[line.MedicineID]; !ok {
			order = append(order, line.MedicineID)
		}
		if line.Quantity <= 0 {
			wanted[line.MedicineID] = -1
			continue
		}
		if wanted[line.MedicineID] >= 0 {
			wanted[line.MedicineID] += line.Quantity
		}
	}

	for _, id := range order {
		qty := wanted[id]
		i := indexMedicine(items, id)
		if i < 0 || qty <= 0 || !items[i].HasStock(qty) {
			result.FailedItems = append(result.FailedItems, id)
			continue
		}
		result.TotalCost = result.TotalCost.Add(items[i].LineCost(qty))
	}
	return result
}

func indexMedicine(items []entity.Medicine, id string) int {
	for i := range items {
		if items[i].MedicineID == id {
			return i
		}
	}
	return -1
}
