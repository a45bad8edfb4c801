package repository

import "hospital-records/internal/domain/entity"

type DepartmentRepository interface {
	Repository[entity.Department]
	Sequenced[entity.Department]
	FindByDoctor(doctorID string) ([]entity.Department, error)
	AddDoctor(departmentID, doctorID string) error
	RemoveDoctor(departmentID, doctorID string) error
	SetHead(departmentID, doctorID string) error
}
