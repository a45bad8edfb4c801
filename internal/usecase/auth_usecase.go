package usecase

import (
	"context"
	"errors"
	"fmt"

	"hospital-records/internal/converter"
	"hospital-records/internal/delivery/dto"
	"hospital-records/internal/domain/entity"
	"hospital-records/internal/domain/repository"
	"hospital-records/internal/service"
	"hospital-records/pkg/clock"
	"hospital-records/pkg/jwt"
	"hospital-records/pkg/password"

	"github.com/sirupsen/logrus"
)

var (
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountInactive    = errors.New("account is deactivated")
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrInvalidGender      = errors.New("gender must be male, female or other")
)

type AuthUsecase interface {
	RegisterPatient(ctx context.Context, req *dto.RegisterPatientRequest) (*dto.AccountResponse, error)
	RegisterDoctor(ctx context.Context, req *dto.RegisterDoctorRequest) (*dto.AccountResponse, error)
	CreateAdmin(ctx context.Context, username, plainPassword string) (*dto.AccountResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error)
	GetCurrentUser(ctx context.Context, username string) (*dto.AccountResponse, error)
	ChangePassword(ctx context.Context, username string, req *dto.ChangePasswordRequest) error
	SetActive(ctx context.Context, username string, active bool) error
}

type authUsecase struct {
	log          *logrus.Logger
	clock        clock.Clock
	accountRepo  repository.AccountRepository
	patientRepo  repository.PatientRepository
	doctorRepo   repository.DoctorRepository
	hasher       password.Hasher
	jwtService   *jwt.JWTService
	auditService service.AuditService
}

func NewAuthUsecase(
	log *logrus.Logger,
	clk clock.Clock,
	accountRepo repository.AccountRepository,
	patientRepo repository.PatientRepository,
	doctorRepo repository.DoctorRepository,
	hasher password.Hasher,
	jwtService *jwt.JWTService,
	auditService service.AuditService,
) AuthUsecase {
	return &authUsecase{
		log:          log,
		clock:        clk,
		accountRepo:  accountRepo,
		patientRepo:  patientRepo,
		doctorRepo:   doctorRepo,
		hasher:       hasher,
		jwtService:   jwtService,
		auditService: auditService,
	}
}

func (u *authUsecase) RegisterPatient(ctx context.Context, req *dto.RegisterPatientRequest) (*dto.AccountResponse, error) {
	gender, ok := entity.ParseGender(req.Gender)
	if !ok {
		return nil, ErrInvalidGender
	}

	account, err := u.createAccount(req.Username, req.Password, entity.RolePatient)
	if err != nil {
		return nil, err
	}

	patient := &entity.Patient{
		Username:       account.Username,
		FullName:       req.FullName,
		DateOfBirth:    req.DateOfBirth,
		Gender:         gender,
		Phone:          req.Phone,
		Address:        req.Address,
		BloodType:      req.BloodType,
		MedicalHistory: req.MedicalHistory,
	}

	if err := u.patientRepo.Create(patient); err != nil {
		u.log.Warnf("Failed to create patient profile for %s: %+v", account.Username, err)
		u.rollbackAccount(account.Username)
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	u.auditService.Record(ctx, entity.AuditActionAccountRegister, "Patient", patient.PatientID, "username="+account.Username)
	u.log.Infof("Registered patient %s as %s", account.Username, patient.PatientID)
	return converter.AccountToResponse(account, patient, nil), nil
}

func (u *authUsecase) RegisterDoctor(ctx context.Context, req *dto.RegisterDoctorRequest) (*dto.AccountResponse, error) {
	gender, ok := entity.ParseGender(req.Gender)
	if !ok {
		return nil, ErrInvalidGender
	}

	account, err := u.createAccount(req.Username, req.Password, entity.RoleDoctor)
	if err != nil {
		return nil, err
	}

	doctor := &entity.Doctor{
		Username:        account.Username,
		FullName:        req.FullName,
		Gender:          gender,
		Phone:           req.Phone,
		Specialization:  req.Specialization,
		Qualification:   req.Qualification,
		ConsultationFee: req.ConsultationFee,
	}

	if err := u.doctorRepo.Create(doctor); err != nil {
		u.log.Warnf("Failed to create doctor profile for %s: %+v", account.Username, err)
		u.rollbackAccount(account.Username)
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	u.auditService.Record(ctx, entity.AuditActionAccountRegister, "Doctor", doctor.DoctorID, "username="+account.Username)
	u.log.Infof("Registered doctor %s as %s", account.Username, doctor.DoctorID)
	return converter.AccountToResponse(account, nil, doctor), nil
}

func (u *authUsecase) CreateAdmin(ctx context.Context, username, plainPassword string) (*dto.AccountResponse, error) {
	account, err := u.createAccount(username, plainPassword, entity.RoleAdmin)
	if err != nil {
		return nil, err
	}
	u.auditService.Record(ctx, entity.AuditActionAccountRegister, "Account", account.Username, "role=admin")
	u.log.Infof("Created admin account %s", account.Username)
	return converter.AccountToResponse(account, nil, nil), nil
}

func (u *authUsecase) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	account, err := u.accountRepo.FindByUsername(req.Username)
	if err != nil {
		u.log.Warnf("Failed to find account %s: %+v", req.Username, err)
		return nil, err
	}
	if account == nil || !u.hasher.Verify(req.Password, account.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if !account.IsActive {
		return nil, ErrAccountInactive
	}

	return u.issueTokens(account)
}

func (u *authUsecase) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	claims, err := u.jwtService.ValidateToken(req.RefreshToken)
	if err != nil || claims.TokenType != jwt.RefreshToken {
		return nil, ErrInvalidToken
	}

	// The account may have been deactivated since the token was issued.
	account, err := u.accountRepo.FindByUsername(claims.Username)
	if err != nil {
		u.log.Warnf("Failed to find account %s: %+v", claims.Username, err)
		return nil, err
	}
	if account == nil {
		return nil, ErrInvalidToken
	}
	if !account.IsActive {
		return nil, ErrAccountInactive
	}

	return u.issueTokens(account)
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, username string) (*dto.AccountResponse, error) {
	account, err := u.accountRepo.FindByUsername(username)
	if err != nil {
		u.log.Warnf("Failed to find account %s: %+v", username, err)
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}

	var (
		patient *entity.Patient
		doctor  *entity.Doctor
	)
	switch account.Role {
	case entity.RolePatient:
		patient, err = u.patientRepo.FindByUsername(account.Username)
	case entity.RoleDoctor:
		doctor, err = u.doctorRepo.FindByUsername(account.Username)
	}
	if err != nil {
		u.log.Warnf("Failed to load profile for %s: %+v", account.Username, err)
		return nil, err
	}

	return converter.AccountToResponse(account, patient, doctor), nil
}

func (u *authUsecase) ChangePassword(ctx context.Context, username string, req *dto.ChangePasswordRequest) error {
	account, err := u.accountRepo.FindByUsername(username)
	if err != nil {
		u.log.Warnf("Failed to find account %s: %+v", username, err)
		return err
	}
	if account == nil || !u.hasher.Verify(req.OldPassword, account.PasswordHash) {
		return ErrInvalidCredentials
	}

	hash, err := u.hasher.Hash(req.NewPassword)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return err
	}
	if err := u.accountRepo.UpdatePasswordHash(account.Username, hash); err != nil {
		u.log.Warnf("Failed to update password for %s: %+v", account.Username, err)
		return err
	}

	u.auditService.Record(ctx, entity.AuditActionAccountPassword, "Account", account.Username, "")
	u.log.Infof("Password changed for %s", account.Username)
	return nil
}

func (u *authUsecase) SetActive(ctx context.Context, username string, active bool) error {
	if err := u.accountRepo.SetActive(username, active); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		u.log.Warnf("Failed to set active=%t for %s: %+v", active, username, err)
		return err
	}
	u.auditService.Record(ctx, entity.AuditActionAccountActivation, "Account", username, fmt.Sprintf("active=%t", active))
	u.log.Infof("Account %s active=%t", username, active)
	return nil
}

func (u *authUsecase) createAccount(username, plainPassword string, role entity.Role) (*entity.Account, error) {
	existing, err := u.accountRepo.FindByUsername(username)
	if err != nil {
		u.log.Warnf("Failed to check username %s: %+v", username, err)
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	hash, err := u.hasher.Hash(plainPassword)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	account := &entity.Account{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		CreatedDate:  clock.Today(u.clock),
	}
	if err := u.accountRepo.Add(*account); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		u.log.Warnf("Failed to create account %s: %+v", username, err)
		return nil, err
	}
	return account, nil
}

// rollbackAccount removes an account whose profile could not be written.
func (u *authUsecase) rollbackAccount(username string) {
	if err := u.accountRepo.Remove(username); err != nil {
		u.log.Errorf("Failed to roll back account %s: %+v", username, err)
	}
}

func (u *authUsecase) issueTokens(account *entity.Account) (*dto.TokenResponse, error) {
	accessToken, _, err := u.jwtService.GenerateAccessToken(account.Username, string(account.Role))
	if err != nil {
		u.log.Warnf("Failed to generate access token: %+v", err)
		return nil, err
	}

	refreshToken, _, err := u.jwtService.GenerateRefreshToken(account.Username, string(account.Role))
	if err != nil {
		u.log.Warnf("Failed to generate refresh token: %+v", err)
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(u.jwtService.GetAccessExpiry().Seconds()),
	}, nil
}
