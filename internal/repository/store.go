package repository

import (
	"errors"
	"strings"

	"hospital-records/config"
	domainRepo "hospital-records/internal/domain/repository"
)

// Store holds one repository per entity kind. It is built once at startup and passed to
// every usecase that needs it.
type Store struct {
	Accounts      domainRepo.AccountRepository
	Patients      domainRepo.PatientRepository
	Doctors       domainRepo.DoctorRepository
	Appointments  domainRepo.AppointmentRepository
	Medicines     domainRepo.MedicineRepository
	Prescriptions domainRepo.PrescriptionRepository
	Departments   domainRepo.DepartmentRepository
}

// Loader is the part of a repository the maintenance commands drive.
type Loader interface {
	Load() error
	FilePath() string
	EntityName() string
	LastLoad() domainRepo.LoadStats
}

// NewStore wires every repository to its file under cfg's data directory. Nothing is read yet.
func NewStore(deps Deps, cfg *config.Config) *Store {
	return &Store{
		Accounts:      NewAccountRepository(deps, cfg.DataFile(config.AccountsFile)),
		Patients:      NewPatientRepository(deps, cfg.DataFile(config.PatientsFile)),
		Doctors:       NewDoctorRepository(deps, cfg.DataFile(config.DoctorsFile)),
		Appointments:  NewAppointmentRepository(deps, cfg.DataFile(config.AppointmentsFile)),
		Medicines:     NewMedicineRepository(deps, cfg.DataFile(config.MedicinesFile)),
		Prescriptions: NewPrescriptionRepository(deps, cfg.DataFile(config.PrescriptionsFile)),
		Departments:   NewDepartmentRepository(deps, cfg.DataFile(config.DepartmentsFile)),
	}
}

// All lists the repositories in dependency order.
func (s *Store) All() []Loader {
	return []Loader{s.Accounts, s.Patients, s.Doctors, s.Appointments, s.Medicines, s.Prescriptions, s.Departments}
}

// Find returns the repository whose entity name matches name case-insensitively, or nil.
func (s *Store) Find(name string) Loader {
	for _, l := range s.All() {
		if equalFoldEntity(l.EntityName(), name) {
			return l
		}
	}
	return nil
}

// LoadAll forces every repository to read its file, returning every failure joined.
func (s *Store) LoadAll() error {
	var errs []error
	for _, l := range s.All() {
		if err := l.Load(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// equalFoldEntity accepts "medicine", "Medicine" and "medicines" alike.
func equalFoldEntity(entity, name string) bool {
	return strings.EqualFold(entity, name) || strings.EqualFold(entity+"s", name)
}
