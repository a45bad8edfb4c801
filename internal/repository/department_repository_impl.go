package repository

import (
	"fmt"
	"strings"

	"hospital-records/internal/codec"
	"hospital-records/internal/domain/entity"
	domainRepo "hospital-records/internal/domain/repository"
)

type departmentRepository struct {
	*fileRepository[entity.Department]
}

func NewDepartmentRepository(deps Deps, path string) domainRepo.DepartmentRepository {
	return &departmentRepository{
		fileRepository: newFileRepository(deps, path, entitySpec[entity.Department]{
			codec:  codec.NewDepartmentCodec(codec.WithWarnFunc(codecWarn(deps.Log))),
			prefix: DepartmentPrefix,
			key:    func(d *entity.Department) string { return d.DepartmentID },
			setKey: func(d *entity.Department, id string) { d.DepartmentID = id },
			clone:  entity.Department.Clone,
			conflict: func(c, e *entity.Department) error {
				if strings.EqualFold(strings.TrimSpace(c.Name), strings.TrimSpace(e.Name)) {
					return fmt.Errorf("%w: department %q already exists as %s", domainRepo.ErrDuplicate, c.Name, e.DepartmentID)
				}
				return nil
			},
		}),
	}
}

func (r *departmentRepository) FindByDoctor(doctorID string) ([]entity.Department, error) {
	return r.filter(func(d *entity.Department) bool { return d.HasDoctor(doctorID) })
}

func (r *departmentRepository) AddDoctor(departmentID, doctorID string) error {
	return r.Modify(departmentID, func(d *entity.Department) error {
		if !d.AddDoctor(doctorID) {
			return domainRepo.ErrUnchanged
		}
		return nil
	})
}

func (r *departmentRepository) RemoveDoctor(departmentID, doctorID string) error {
	return r.Modify(departmentID, func(d *entity.Department) error {
		if !d.RemoveDoctor(doctorID) {
			return domainRepo.ErrUnchanged
		}
		return nil
	})
}

// SetHead makes doctorID the head, adding it as a member if needed. An empty doctorID clears the head.
func (r *departmentRepository) SetHead(departmentID, doctorID string) error {
	return r.Modify(departmentID, func(d *entity.Department) error {
		if d.HeadDoctorID == doctorID {
			return domainRepo.ErrUnchanged
		}
		d.AddDoctor(doctorID)
		d.HeadDoctorID = doctorID
		return nil
	})
}
