package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hospital-records/config"
	"hospital-records/internal/delivery/http/handler"
	"hospital-records/internal/delivery/http/middleware"
	"hospital-records/internal/domain/entity"
	"hospital-records/internal/infrastructure/filestore"
	"hospital-records/internal/repository"
	"hospital-records/internal/service"
	"hospital-records/internal/usecase"
	"hospital-records/pkg/clock"
	"hospital-records/pkg/jwt"
	"hospital-records/pkg/password"
	"hospital-records/pkg/validator"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"golang.org/x/crypto/bcrypt"
)

type testServer struct {
	t      *testing.T
	router *mux.Router
	auth   usecase.AuthUsecase
	store  *repository.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	clk := clock.Fixed(time.Date(2030, 1, 2, 10, 0, 0, 0, time.UTC))

	cfg := &config.Config{}
	cfg.Storage.DataDir = "/data"
	files := filestore.NewWithFs(afero.NewMemMapFs(), "/data/backup", clk, log)
	v := validator.NewValidator()
	store := repository.NewStore(repository.Deps{Files: files, Validate: v, Log: log}, cfg)
	audit := service.NewAuditService(files, "/data/audit.log", clk, log)
	jwtService := jwt.NewJWTService(config.JWTConfig{Secret: "test", AccessExpiry: time.Minute, RefreshExpiry: time.Hour})

	auth := usecase.NewAuthUsecase(log, clk, store.Accounts, store.Patients, store.Doctors,
		password.NewBcryptHasher(bcrypt.MinCost), jwtService, audit)
	booking := usecase.NewBookingUsecase(log, clk, store.Appointments, store.Doctors, store.Patients, audit)
	dispensing := usecase.NewDispensingUsecase(log, clk, store.Prescriptions, store.Medicines, store.Appointments, audit)
	medicines := usecase.NewMedicineUsecase(log, clk, store.Medicines, audit)
	records := usecase.NewRecordsUsecase(log, store.Patients, store.Doctors, store.Departments)

	router := NewRouter(
		handler.NewAuthHandler(auth, v),
		handler.NewDoctorHandler(records, booking),
		handler.NewPatientHandler(records),
		handler.NewAppointmentHandler(booking, records, v),
		handler.NewMedicineHandler(medicines, v),
		handler.NewPrescriptionHandler(dispensing, records, v),
		handler.NewDepartmentHandler(records, v),
		handler.NewAuditLogHandler(usecase.NewAuditLogUsecase(log, audit)),
		middleware.NewAuthMiddleware(jwtService, store.Accounts, log),
		middleware.NewCORSMiddleware(true),
		nil,
	)
	return &testServer{t: t, router: router.Setup(), auth: auth, store: store}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (s *testServer) do(method, path, token string, body interface{}) (int, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			s.t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		s.t.Fatalf("%s %s: decode response %q: %v", method, path, rec.Body.String(), err)
	}
	return rec.Code, env
}

func (s *testServer) register(username string) string {
	s.t.Helper()
	code, env := s.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username":  username,
		"password":  "secret1",
		"full_name": username + " test",
	})
	if code != http.StatusCreated {
		s.t.Fatalf("register %s: %d %s", username, code, env.Message)
	}
	return s.login(username, "secret1")
}

func (s *testServer) login(username, pw string) string {
	s.t.Helper()
	code, env := s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": username, "password": pw})
	if code != http.StatusOK {
		s.t.Fatalf("login %s: %d %s", username, code, env.Message)
	}
	var tokens struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(env.Data, &tokens); err != nil {
		s.t.Fatal(err)
	}
	return tokens.AccessToken
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("health: %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("CORS header missing in development mode")
	}
}

func TestBookingOverHTTP(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("alice")
	bob := s.register("bob")

	doctor := &entity.Doctor{Username: "drhouse", FullName: "Gregory House", ConsultationFee: decimal.NewFromInt(150000)}
	if err := s.store.Doctors.Create(doctor); err != nil {
		t.Fatal(err)
	}

	if code, _ := s.do(http.MethodGet, "/api/v1/appointments/me", "", nil); code != http.StatusUnauthorized {
		t.Errorf("no token: %d, want 401", code)
	}

	booking := map[string]string{"doctor_id": doctor.DoctorID, "date": "2030-01-05", "time": "09:00"}
	code, env := s.do(http.MethodPost, "/api/v1/appointments", alice, booking)
	if code != http.StatusCreated {
		t.Fatalf("book: %d %s", code, env.Message)
	}
	var appt struct {
		AppointmentID string `json:"appointment_id"`
	}
	if err := json.Unmarshal(env.Data, &appt); err != nil {
		t.Fatal(err)
	}

	if code, _ := s.do(http.MethodPost, "/api/v1/appointments", bob, booking); code != http.StatusConflict {
		t.Errorf("double booking: %d, want 409", code)
	}
	booking["time"] = "09:15"
	if code, _ := s.do(http.MethodPost, "/api/v1/appointments", bob, booking); code != http.StatusBadRequest {
		t.Errorf("non-standard slot: %d, want 400", code)
	}

	if code, _ := s.do(http.MethodGet, "/api/v1/appointments/"+appt.AppointmentID, bob, nil); code != http.StatusForbidden {
		t.Errorf("other patient reads appointment: %d, want 403", code)
	}
	if code, _ := s.do(http.MethodPost, "/api/v1/appointments/"+appt.AppointmentID+"/cancel", bob, nil); code != http.StatusForbidden {
		t.Errorf("other patient cancels: %d, want 403", code)
	}

	code, env = s.do(http.MethodGet, "/api/v1/doctors/"+doctor.DoctorID+"/slots?date=2030-01-05", alice, nil)
	if code != http.StatusOK {
		t.Fatalf("slots: %d %s", code, env.Message)
	}
	var slots struct {
		Booked []string `json:"booked"`
	}
	if err := json.Unmarshal(env.Data, &slots); err != nil {
		t.Fatal(err)
	}
	if len(slots.Booked) != 1 || slots.Booked[0] != "09:00" {
		t.Errorf("booked = %v", slots.Booked)
	}

	if code, env := s.do(http.MethodPost, "/api/v1/appointments/"+appt.AppointmentID+"/cancel", alice, nil); code != http.StatusOK {
		t.Errorf("owner cancels: %d %s", code, env.Message)
	}
}

func TestAdminRoutes(t *testing.T) {
	s := newTestServer(t)
	patient := s.register("alice")

	if code, _ := s.do(http.MethodGet, "/api/v1/admin/audit-logs", patient, nil); code != http.StatusForbidden {
		t.Errorf("patient on admin route: %d, want 403", code)
	}

	if _, err := s.auth.CreateAdmin(context.Background(), "root", "rootpw1"); err != nil {
		t.Fatal(err)
	}
	admin := s.login("root", "rootpw1")

	code, env := s.do(http.MethodPut, "/api/v1/admin/accounts/alice/active", admin, map[string]bool{"active": false})
	if code != http.StatusOK {
		t.Fatalf("deactivate: %d %s", code, env.Message)
	}
	if code, _ := s.do(http.MethodGet, "/api/v1/auth/me", patient, nil); code != http.StatusUnauthorized {
		t.Errorf("deactivated token still works: %d", code)
	}

	code, env = s.do(http.MethodGet, "/api/v1/admin/audit-logs?limit=5", admin, nil)
	if code != http.StatusOK {
		t.Fatalf("audit logs: %d %s", code, env.Message)
	}
	var logs struct {
		Total int `json:"total"`
	}
	if err := json.Unmarshal(env.Data, &logs); err != nil {
		t.Fatal(err)
	}
	if logs.Total == 0 {
		t.Error("audit trail is empty")
	}
}
