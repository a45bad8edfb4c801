package repository

import "hospital-records/internal/domain/entity"

type DoctorRepository interface {
	Repository[entity.Doctor]
	Sequenced[entity.Doctor]
	FindByUsername(username string) (*entity.Doctor, error)
	GetBySpecialization(specialization string) ([]entity.Doctor, error)
	SearchByName(query string) ([]entity.Doctor, error)
}
