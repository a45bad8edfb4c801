package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"hospital-records/internal/converter"
	"hospital-records/internal/delivery/dto"
	"hospital-records/internal/domain/entity"
	"hospital-records/internal/domain/repository"
	"hospital-records/internal/service"
	"hospital-records/pkg/clock"

	"github.com/sirupsen/logrus"
)

var (
	ErrMedicineExists  = errors.New("medicine with this name and manufacturer already exists")
	ErrInvalidMedicine = errors.New("invalid medicine data")
)

// MedicineFilter narrows GetAll. Empty fields match everything.
type MedicineFilter struct {
	Query    string
	Category string
}

type MedicineUsecase interface {
	Create(ctx context.Context, req *dto.CreateMedicineRequest) (*dto.MedicineResponse, error)
	GetAll(ctx context.Context, filter MedicineFilter, page, limit int) (*dto.MedicineListResponse, int, error)
	GetByID(ctx context.Context, medicineID string) (*dto.MedicineResponse, error)
	Restock(ctx context.Context, medicineID string, req *dto.RestockRequest) (*dto.MedicineResponse, error)
	GetLowStock(ctx context.Context) (*dto.MedicineListResponse, error)
	GetExpired(ctx context.Context) (*dto.MedicineListResponse, error)
}

type medicineUsecase struct {
	log          *logrus.Logger
	clock        clock.Clock
	medicineRepo repository.MedicineRepository
	auditService service.AuditService
}

func NewMedicineUsecase(
	log *logrus.Logger,
	clk clock.Clock,
	medicineRepo repository.MedicineRepository,
	auditService service.AuditService,
) MedicineUsecase {
	return &medicineUsecase{
		log:          log,
		clock:        clk,
		medicineRepo: medicineRepo,
		auditService: auditService,
	}
}

func (u *medicineUsecase) Create(ctx context.Context, req *dto.CreateMedicineRequest) (*dto.MedicineResponse, error) {
	medicine := converter.CreateMedicineRequestToEntity(req)

	if err := u.medicineRepo.Create(medicine); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrMedicineExists
		case errors.Is(err, repository.ErrInvalid):
			return nil, ErrInvalidMedicine
		}
		u.log.Warnf("Failed to create medicine: %+v", err)
		return nil, err
	}

	u.auditService.Record(ctx, entity.AuditActionMedicineCreate, "Medicine", medicine.MedicineID,
		fmt.Sprintf("name=%s stock=%d", medicine.Name, medicine.Quantity))
	u.log.Infof("Medicine %s (%s) added with stock %d", medicine.MedicineID, medicine.Name, medicine.Quantity)
	return converter.MedicineToResponse(medicine), nil
}

// GetAll returns one page of matching medicines ordered by ID, plus the total match count.
func (u *medicineUsecase) GetAll(ctx context.Context, filter MedicineFilter, page, limit int) (*dto.MedicineListResponse, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	var (
		medicines []entity.Medicine
		err       error
	)
	switch {
	case filter.Query != "":
		medicines, err = u.medicineRepo.SearchByName(filter.Query)
	case filter.Category != "":
		medicines, err = u.medicineRepo.GetByCategory(filter.Category)
	default:
		medicines, err = u.medicineRepo.GetAll()
	}
	if err != nil {
		u.log.Warnf("Failed to list medicines: %+v", err)
		return nil, 0, err
	}
	if filter.Query != "" && filter.Category != "" {
		medicines = filterCategory(medicines, filter.Category)
	}

	sort.SliceStable(medicines, func(i, j int) bool {
		return medicines[i].MedicineID < medicines[j].MedicineID
	})

	total := len(medicines)
	offset := (page - 1) * limit
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}

	return converter.MedicinesToListResponse(medicines[offset:end]), total, nil
}

func (u *medicineUsecase) GetByID(ctx context.Context, medicineID string) (*dto.MedicineResponse, error) {
	medicine, err := u.medicineRepo.FindByID(medicineID)
	if err != nil {
		u.log.Warnf("Failed to find medicine %s: %+v", medicineID, err)
		return nil, err
	}
	if medicine == nil {
		return nil, ErrMedicineNotFound
	}
	return converter.MedicineToResponse(medicine), nil
}

func (u *medicineUsecase) Restock(ctx context.Context, medicineID string, req *dto.RestockRequest) (*dto.MedicineResponse, error) {
	if err := u.medicineRepo.AddStock(medicineID, req.Quantity); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrMedicineNotFound
		case errors.Is(err, repository.ErrInvalid):
			return nil, ErrInvalidMedicine
		}
		u.log.Warnf("Failed to restock medicine %s: %+v", medicineID, err)
		return nil, err
	}

	u.auditService.Record(ctx, entity.AuditActionMedicineRestock, "Medicine", medicineID, fmt.Sprintf("quantity=%d", req.Quantity))
	u.log.Infof("Medicine %s restocked by %d", medicineID, req.Quantity)
	return u.GetByID(ctx, medicineID)
}

func (u *medicineUsecase) GetLowStock(ctx context.Context) (*dto.MedicineListResponse, error) {
	medicines, err := u.medicineRepo.GetLowStock()
	if err != nil {
		u.log.Warnf("Failed to list low stock medicines: %+v", err)
		return nil, err
	}
	return converter.MedicinesToListResponse(medicines), nil
}

func (u *medicineUsecase) GetExpired(ctx context.Context) (*dto.MedicineListResponse, error) {
	medicines, err := u.medicineRepo.GetExpired(clock.Today(u.clock))
	if err != nil {
		u.log.Warnf("Failed to list expired medicines: %+v", err)
		return nil, err
	}
	return converter.MedicinesToListResponse(medicines), nil
}

func filterCategory(medicines []entity.Medicine, category string) []entity.Medicine {
	out := medicines[:0]
	for _, m := range medicines {
		if strings.EqualFold(strings.TrimSpace(m.Category), strings.TrimSpace(category)) {
			out = append(out, m)
		}
	}
	return out
}
