package usecase

import (
	"context"
	"errors"

	"hospital-records/internal/converter"
	"hospital-records/internal/delivery/dto"
	"hospital-records/internal/domain/entity"
	"hospital-records/internal/domain/repository"

	"github.com/sirupsen/logrus"
)

var (
	ErrDepartmentNotFound = errors.New("department not found")
	ErrDepartmentExists   = errors.New("department with this name already exists")
)

// RecordsUsecase is the read side over patients, doctors and departments, plus department membership.
type RecordsUsecase interface {
	ListDoctors(ctx context.Context, specialization, query string) (*dto.DoctorListResponse, error)
	GetDoctor(ctx context.Context, doctorID string) (*dto.DoctorResponse, error)
	GetDoctorByUsername(ctx context.Context, username string) (*dto.DoctorResponse, error)
	ListPatients(ctx context.Context, query string) (*dto.PatientListResponse, error)
	GetPatient(ctx context.Context, patientID string) (*dto.PatientResponse, error)
	ListDepartments(ctx context.Context) (*dto.DepartmentListResponse, error)
	CreateDepartment(ctx context.Context, req *dto.CreateDepartmentRequest) (*dto.DepartmentResponse, error)
	AssignDoctor(ctx context.Context, departmentID string, req *dto.AssignDoctorRequest) (*dto.DepartmentResponse, error)
	RemoveDoctor(ctx context.Context, departmentID, doctorID string) (*dto.DepartmentResponse, error)
}

type recordsUsecase struct {
	log            *logrus.Logger
	patientRepo    repository.PatientRepository
	doctorRepo     repository.DoctorRepository
	departmentRepo repository.DepartmentRepository
}

func NewRecordsUsecase(
	log *logrus.Logger,
	patientRepo repository.PatientRepository,
	doctorRepo repository.DoctorRepository,
	departmentRepo repository.DepartmentRepository,
) RecordsUsecase {
	return &recordsUsecase{
		log:            log,
		patientRepo:    patientRepo,
		doctorRepo:     doctorRepo,
		departmentRepo: departmentRepo,
	}
}

func (u *recordsUsecase) ListDoctors(ctx context.Context, specialization, query string) (*dto.DoctorListResponse, error) {
	var (
		doctors []entity.Doctor
		err     error
	)
	switch {
	case specialization != "":
		doctors, err = u.doctorRepo.GetBySpecialization(specialization)
	case query != "":
		doctors, err = u.doctorRepo.SearchByName(query)
	default:
		doctors, err = u.doctorRepo.GetAll()
	}
	if err != nil {
		u.log.Warnf("Failed to list doctors: %+v", err)
		return nil, err
	}

	return &dto.DoctorListResponse{
		Doctors: converter.DoctorsToResponses(doctors),
		Total:   len(doctors),
	}, nil
}

func (u *recordsUsecase) GetDoctor(ctx context.Context, doctorID string) (*dto.DoctorResponse, error) {
	doctor, err := u.doctorRepo.FindByID(doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", doctorID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}
	return converter.DoctorToResponse(doctor), nil
}

func (u *recordsUsecase) GetDoctorByUsername(ctx context.Context, username string) (*dto.DoctorResponse, error) {
	doctor, err := u.doctorRepo.FindByUsername(username)
	if err != nil {
		u.log.Warnf("Failed to find doctor by username %s: %+v", username, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}
	return converter.DoctorToResponse(doctor), nil
}

func (u *recordsUsecase) ListPatients(ctx context.Context, query string) (*dto.PatientListResponse, error) {
	var (
		patients []entity.Patient
		err      error
	)
	if query != "" {
		patients, err = u.patientRepo.SearchByName(query)
	} else {
		patients, err = u.patientRepo.GetAll()
	}
	if err != nil {
		u.log.Warnf("Failed to list patients: %+v", err)
		return nil, err
	}

	return &dto.PatientListResponse{
		Patients: converter.PatientsToResponses(patients),
		Total:    len(patients),
	}, nil
}

func (u *recordsUsecase) GetPatient(ctx context.Context, patientID string) (*dto.PatientResponse, error) {
	patient, err := u.patientRepo.FindByID(patientID)
	if err != nil {
		u.log.Warnf("Failed to find patient %s: %+v", patientID, err)
		return nil, err
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}
	return converter.PatientToResponse(patient), nil
}

func (u *recordsUsecase) ListDepartments(ctx context.Context) (*dto.DepartmentListResponse, error) {
	departments, err := u.departmentRepo.GetAll()
	if err != nil {
		u.log.Warnf("Failed to list departments: %+v", err)
		return nil, err
	}
	return converter.DepartmentsToListResponse(departments), nil
}

func (u *recordsUsecase) CreateDepartment(ctx context.Context, req *dto.CreateDepartmentRequest) (*dto.DepartmentResponse, error) {
	department := &entity.Department{
		Name:        req.Name,
		Description: req.Description,
	}
	if req.HeadDoctorID != "" {
		if err := u.requireDoctor(req.HeadDoctorID); err != nil {
			return nil, err
		}
		department.AddDoctor(req.HeadDoctorID)
		department.HeadDoctorID = req.HeadDoctorID
	}

	if err := u.departmentRepo.Create(department); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDepartmentExists
		}
		u.log.Warnf("Failed to create department: %+v", err)
		return nil, err
	}

	u.log.Infof("Department %s (%s) created", department.DepartmentID, department.Name)
	return converter.DepartmentToResponse(department), nil
}

func (u *recordsUsecase) AssignDoctor(ctx context.Context, departmentID string, req *dto.AssignDoctorRequest) (*dto.DepartmentResponse, error) {
	if err := u.requireDoctor(req.DoctorID); err != nil {
		return nil, err
	}

	var err error
	if req.Head {
		err = u.departmentRepo.SetHead(departmentID, req.DoctorID)
	} else {
		err = u.departmentRepo.AddDoctor(departmentID, req.DoctorID)
	}
	if err != nil {
		return nil, u.mapDepartmentError(departmentID, err)
	}
	return u.getDepartment(departmentID)
}

func (u *recordsUsecase) RemoveDoctor(ctx context.Context, departmentID, doctorID string) (*dto.DepartmentResponse, error) {
	if err := u.departmentRepo.RemoveDoctor(departmentID, doctorID); err != nil {
		return nil, u.mapDepartmentError(departmentID, err)
	}
	return u.getDepartment(departmentID)
}

func (u *recordsUsecase) requireDoctor(doctorID string) error {
	exists, err := u.doctorRepo.Exists(doctorID)
	if err != nil {
		u.log.Warnf("Failed to check doctor %s: %+v", doctorID, err)
		return err
	}
	if !exists {
		return ErrDoctorNotFound
	}
	return nil
}

func (u *recordsUsecase) getDepartment(departmentID string) (*dto.DepartmentResponse, error) {
	department, err := u.departmentRepo.FindByID(departmentID)
	if err != nil {
		u.log.Warnf("Failed to find department %s: %+v", departmentID, err)
		return nil, err
	}
	if department == nil {
		return nil, ErrDepartmentNotFound
	}
	return converter.DepartmentToResponse(department), nil
}

func (u *recordsUsecase) mapDepartmentError(departmentID string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrDepartmentNotFound
	}
	u.log.Warnf("Failed to update department %s: %+v", departmentID, err)
	return err
}
