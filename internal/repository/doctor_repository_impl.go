package repository

import (
	"fmt"
	"strings"

	"hospital-records/internal/codec"
	"hospital-records/internal/domain/entity"
	domainRepo "hospital-records/internal/domain/repository"
)

type doctorRepository struct {
	*fileRepository[entity.Doctor]
}

func NewDoctorRepository(deps Deps, path string) domainRepo.DoctorRepository {
	return &doctorRepository{
		fileRepository: newFileRepository(deps, path, entitySpec[entity.Doctor]{
			codec:  codec.NewDoctorCodec(codec.WithWarnFunc(codecWarn(deps.Log))),
			prefix: DoctorPrefix,
			key:    func(d *entity.Doctor) string { return d.DoctorID },
			setKey: func(d *entity.Doctor, id string) { d.DoctorID = id },
			conflict: func(c, e *entity.Doctor) error {
				if strings.EqualFold(c.Username, e.Username) {
					return fmt.Errorf("%w: username %s already has a doctor profile", domainRepo.ErrDuplicate, c.Username)
				}
				return nil
			},
		}),
	}
}

func (r *doctorRepository) FindByUsername(username string) (*entity.Doctor, error) {
	return r.first(func(d *entity.Doctor) bool {
		return strings.EqualFold(d.Username, username)
	})
}

func (r *doctorRepository) GetBySpecialization(specialization string) ([]entity.Doctor, error) {
	s := strings.TrimSpace(specialization)
	return r.filter(func(d *entity.Doctor) bool {
		return strings.EqualFold(d.Specialization, s)
	})
}

func (r *doctorRepository) SearchByName(query string) ([]entity.Doctor, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	return r.filter(func(d *entity.Doctor) bool {
		return strings.Contains(strings.ToLower(d.FullName), q)
	})
}
