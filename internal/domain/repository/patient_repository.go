package repository

import "hospital-records/internal/domain/entity"

type PatientRepository interface {
	Repository[entity.Patient]
	Sequenced[entity.Patient]
	FindByUsername(username string) (*entity.Patient, error)
	ExistsByUsername(username string) (bool, error)
	SearchByName(query string) ([]entity.Patient, error)
}
