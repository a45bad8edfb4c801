package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"hospital-records/config"
	"hospital-records/internal/delivery/dto"
	"hospital-records/pkg/jwt"
	"hospital-records/pkg/password"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

func newAuthUsecase(f *fixture) AuthUsecase {
	jwtService := jwt.NewJWTService(config.JWTConfig{
		Secret:        "test-secret",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: time.Hour,
	})
	return NewAuthUsecase(f.log, f.clock, f.accounts, f.patients, f.doctors,
		password.NewBcryptHasher(bcrypt.MinCost), jwtService, f.audit)
}

func TestRegisterPatientAndLogin(t *testing.T) {
	f := newFixture(t)
	uc := newAuthUsecase(f)
	ctx := context.Background()

	acc, err := uc.RegisterPatient(ctx, &dto.RegisterPatientRequest{
		Username: "alice",
		Password: "secret1",
		FullName: "Alice Smith",
		Gender:   "F",
	})
	if err != nil {
		t.Fatalf("RegisterPatient: %v", err)
	}
	if acc.Role != "patient" || !acc.IsActive || acc.CreatedDate != "2030-01-02" {
		t.Errorf("account = %+v", acc)
	}
	if acc.Patient == nil || acc.Patient.PatientID != "P001" {
		t.Errorf("patient profile = %+v", acc.Patient)
	}

	stored, err := f.accounts.FindByUsername("alice")
	if err != nil || stored == nil {
		t.Fatalf("FindByUsername: %v", err)
	}
	if stored.PasswordHash == "secret1" {
		t.Error("password stored in plain text")
	}

	if _, err := uc.RegisterPatient(ctx, &dto.RegisterPatientRequest{Username: "ALICE", Password: "secret2", FullName: "Other"}); !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("duplicate username: got %v", err)
	}

	tokens, err := uc.Login(ctx, &dto.LoginRequest{Username: "alice", Password: "secret1"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" || tokens.ExpiresIn != 900 {
		t.Errorf("tokens = %+v", tokens)
	}
	if _, err := uc.Login(ctx, &dto.LoginRequest{Username: "alice", Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: got %v", err)
	}
	if _, err := uc.Login(ctx, &dto.LoginRequest{Username: "nobody", Password: "secret1"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user: got %v", err)
	}

	refreshed, err := uc.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	if err != nil {
		t.Fatalf("RefreshToken: %v", err)
	}
	if refreshed.AccessToken == "" {
		t.Error("no access token after refresh")
	}
	if _, err := uc.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: tokens.AccessToken}); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("access token used as refresh: got %v", err)
	}
}

func TestRegisterRejectsUnknownGender(t *testing.T) {
	f := newFixture(t)
	uc := newAuthUsecase(f)
	_, err := uc.RegisterPatient(context.Background(), &dto.RegisterPatientRequest{
		Username: "bob", Password: "secret1", FullName: "Bob", Gender: "robot",
	})
	if !errors.Is(err, ErrInvalidGender) {
		t.Fatalf("got %v, want ErrInvalidGender", err)
	}
	if acc, _ := f.accounts.FindByUsername("bob"); acc != nil {
		t.Error("account created despite invalid gender")
	}
}

func TestDeactivatedAccountCannotLogin(t *testing.T) {
	f := newFixture(t)
	uc := newAuthUsecase(f)
	ctx := context.Background()

	if _, err := uc.RegisterDoctor(ctx, &dto.RegisterDoctorRequest{
		Username:        "drhouse",
		Password:        "vicodin",
		FullName:        "Gregory House",
		ConsultationFee: decimal.NewFromInt(150000),
	}); err != nil {
		t.Fatalf("RegisterDoctor: %v", err)
	}
	tokens, err := uc.Login(ctx, &dto.LoginRequest{Username: "drhouse", Password: "vicodin"})
	if err != nil {
		t.Fatal(err)
	}

	if err := uc.SetActive(ctx, "drhouse", false); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	if _, err := uc.Login(ctx, &dto.LoginRequest{Username: "drhouse", Password: "vicodin"}); !errors.Is(err, ErrAccountInactive) {
		t.Errorf("login while inactive: got %v", err)
	}
	if _, err := uc.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: tokens.RefreshToken}); !errors.Is(err, ErrAccountInactive) {
		t.Errorf("refresh while inactive: got %v", err)
	}
	if err := uc.SetActive(ctx, "nobody", true); !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("unknown account: got %v", err)
	}

	me, err := uc.GetCurrentUser(ctx, "drhouse")
	if err != nil {
		t.Fatal(err)
	}
	if me.IsActive || me.Doctor == nil || me.Doctor.DoctorID != "D001" {
		t.Errorf("current user = %+v", me)
	}
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	uc := newAuthUsecase(f)
	ctx := context.Background()

	if _, err := uc.CreateAdmin(ctx, "root", "initial1"); err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}
	if err := uc.ChangePassword(ctx, "root", &dto.ChangePasswordRequest{OldPassword: "nope", NewPassword: "changed1"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong old password: got %v", err)
	}
	if err := uc.ChangePassword(ctx, "root", &dto.ChangePasswordRequest{OldPassword: "initial1", NewPassword: "changed1"}); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if _, err := uc.Login(ctx, &dto.LoginRequest{Username: "root", Password: "initial1"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("old password still works: %v", err)
	}
	if _, err := uc.Login(ctx, &dto.LoginRequest{Username: "root", Password: "changed1"}); err != nil {
		t.Errorf("new password rejected: %v", err)
	}
}
