package repository

import (
	"fmt"
	"strings"

	"hospital-records/internal/codec"
	"hospital-records/internal/domain/entity"
	domainRepo "hospital-records/internal/domain/repository"
)

type patientRepository struct {
	*fileRepository[entity.Patient]
}

func NewPatientRepository(deps Deps, path string) domainRepo.PatientRepository {
	return &patientRepository{
		fileRepository: newFileRepository(deps, path, entitySpec[entity.Patient]{
			codec:  codec.NewPatientCodec(codec.WithWarnFunc(codecWarn(deps.Log))),
			prefix: PatientPrefix,
			key:    func(p *entity.Patient) string { return p.PatientID },
			setKey: func(p *entity.Patient, id string) { p.PatientID = id },
			conflict: func(c, e *entity.Patient) error {
				if strings.EqualFold(c.Username, e.Username) {
					return fmt.Errorf("%w: username %s already has a patient profile", domainRepo.ErrDuplicate, c.Username)
				}
				return nil
			},
		}),
	}
}

func (r *patientRepository) FindByUsername(username string) (*entity.Patient, error) {
	return r.first(func(p *entity.Patient) bool {
		return strings.EqualFold(p.Username, username)
	})
}

func (r *patientRepository) ExistsByUsername(username string) (bool, error) {
	p, err := r.FindByUsername(username)
	return p != nil, err
}

func (r *patientRepository) SearchByName(query string) ([]entity.Patient, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	return r.filter(func(p *entity.Patient) bool {
		return strings.Contains(strings.ToLower(p.FullName), q)
	})
}
