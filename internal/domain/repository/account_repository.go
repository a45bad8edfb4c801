package repository

import "hospital-records/internal/domain/entity"

type AccountRepository interface {
	Repository[entity.Account]
	FindByUsername(username string) (*entity.Account, error)
	GetByRole(role entity.Role) ([]entity.Account, error)
	SetActive(username string, active bool) error
	UpdatePasswordHash(username, hash string) error
}
