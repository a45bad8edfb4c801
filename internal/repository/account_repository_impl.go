package repository

import (
	"fmt"
	"strings"

	"hospital-records/internal/codec"
	"hospital-records/internal/domain/entity"
	domainRepo "hospital-records/internal/domain/repository"
)

type accountRepository struct {
	*fileRepository[entity.Account]
}

func NewAccountRepository(deps Deps, path string) domainRepo.AccountRepository {
	return &accountRepository{
		fileRepository: newFileRepository(deps, path, entitySpec[entity.Account]{
			codec:  codec.NewAccountCodec(codec.WithWarnFunc(codecWarn(deps.Log))),
			key:    func(a *entity.Account) string { return a.Username },
			setKey: func(a *entity.Account, id string) { a.Username = id },
			conflict: func(c, e *entity.Account) error {
				if strings.EqualFold(c.Username, e.Username) {
					return fmt.Errorf("%w: username %s is taken", domainRepo.ErrDuplicate, c.Username)
				}
				return nil
			},
		}),
	}
}

// FindByUsername matches case-insensitively.
func (r *accountRepository) FindByUsername(username string) (*entity.Account, error) {
	return r.first(func(a *entity.Account) bool {
		return strings.EqualFold(a.Username, username)
	})
}

func (r *accountRepository) GetByRole(role entity.Role) ([]entity.Account, error) {
	return r.filter(func(a *entity.Account) bool { return a.Role == role })
}

func (r *accountRepository) SetActive(username string, active bool) error {
	return r.modifyByUsername("set_active", username, func(a *entity.Account) error {
		if a.IsActive == active {
			return domainRepo.ErrUnchanged
		}
		a.IsActive = active
		return nil
	})
}

func (r *accountRepository) UpdatePasswordHash(username, hash string) error {
	return r.modifyByUsername("update_password", username, func(a *entity.Account) error {
		a.PasswordHash = hash
		return nil
	})
}

func (r *accountRepository) modifyByUsername(op, username string, fn func(*entity.Account) error) error {
	return r.modifyWhere(op, func(a *entity.Account) bool {
		return strings.EqualFold(a.Username, username)
	}, fn)
}
