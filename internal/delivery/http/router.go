package http

import (
	"net/http"

	"hospital-records/internal/delivery/http/handler"
	"hospital-records/internal/delivery/http/middleware"
	"hospital-records/internal/domain/entity"
	"hospital-records/internal/infrastructure/metrics"

	"github.com/gorilla/mux"
)

type Router struct {
	router              *mux.Router
	authHandler         *handler.AuthHandler
	doctorHandler       *handler.DoctorHandler
	patientHandler      *handler.PatientHandler
	appointmentHandler  *handler.AppointmentHandler
	medicineHandler     *handler.MedicineHandler
	prescriptionHandler *handler.PrescriptionHandler
	departmentHandler   *handler.DepartmentHandler
	auditLogHandler     *handler.AuditLogHandler
	authMiddleware      *middleware.AuthMiddleware
	corsMiddleware      *middleware.CORSMiddleware
	rateLimiter         *middleware.RateLimiter
}

func NewRouter(
	authHandler *handler.AuthHandler,
	doctorHandler *handler.DoctorHandler,
	patientHandler *handler.PatientHandler,
	appointmentHandler *handler.AppointmentHandler,
	medicineHandler *handler.MedicineHandler,
	prescriptionHandler *handler.PrescriptionHandler,
	departmentHandler *handler.DepartmentHandler,
	auditLogHandler *handler.AuditLogHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
	rateLimiter *middleware.RateLimiter,
) *Router {
	return &Router{
		router:              mux.NewRouter(),
		authHandler:         authHandler,
		doctorHandler:       doctorHandler,
		patientHandler:      patientHandler,
		appointmentHandler:  appointmentHandler,
		medicineHandler:     medicineHandler,
		prescriptionHandler: prescriptionHandler,
		departmentHandler:   departmentHandler,
		auditLogHandler:     auditLogHandler,
		authMiddleware:      authMiddleware,
		corsMiddleware:      corsMiddleware,
		rateLimiter:         rateLimiter,
	}
}

func (r *Router) Setup() *mux.Router {
	r.router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Auth routes (public)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register", r.authHandler.RegisterPatient).Methods(http.MethodPost)
	auth.HandleFunc("/login", r.authHandler.Login).Methods(http.MethodPost)
	auth.HandleFunc("/refresh", r.authHandler.RefreshToken).Methods(http.MethodPost)

	// Everything below needs a valid access token
	protected := api.NewRoute().Subrouter()
	protected.Use(r.authMiddleware.Authenticate)

	protected.HandleFunc("/auth/me", r.authHandler.GetCurrentUser).Methods(http.MethodGet)
	protected.HandleFunc("/auth/password", r.authHandler.ChangePassword).Methods(http.MethodPut)

	// Doctors and departments (any role)
	protected.Handle("/doctors/me", middleware.RequireDoctor(http.HandlerFunc(r.doctorHandler.GetSelfProfile))).Methods(http.MethodGet)
	protected.HandleFunc("/doctors", r.doctorHandler.GetAllDoctors).Methods(http.MethodGet)
	protected.HandleFunc("/doctors/{id}", r.doctorHandler.GetDoctor).Methods(http.MethodGet)
	protected.HandleFunc("/doctors/{id}/slots", r.doctorHandler.GetSlots).Methods(http.MethodGet)
	protected.HandleFunc("/departments", r.departmentHandler.GetAll).Methods(http.MethodGet)

	// Patient records (staff)
	protected.Handle("/patients", middleware.RequireAdminOrDoctor(http.HandlerFunc(r.patientHandler.GetAllPatients))).Methods(http.MethodGet)
	protected.Handle("/patients/{id}", middleware.RequireAdminOrDoctor(http.HandlerFunc(r.patientHandler.GetPatient))).Methods(http.MethodGet)

	// Medicines
	protected.HandleFunc("/medicines", r.medicineHandler.GetAll).Methods(http.MethodGet)
	protected.Handle("/medicines/low-stock", middleware.RequireAdminOrDoctor(http.HandlerFunc(r.medicineHandler.GetLowStock))).Methods(http.MethodGet)
	protected.Handle("/medicines/expired", middleware.RequireAdminOrDoctor(http.HandlerFunc(r.medicineHandler.GetExpired))).Methods(http.MethodGet)
	protected.HandleFunc("/medicines/{id}", r.medicineHandler.GetByID).Methods(http.MethodGet)

	// Appointments ("me" and "upcoming" must be registered before "{id}")
	patientOrAdmin := middleware.RequireRole(entity.RolePatient, entity.RoleAdmin)
	doctorOrAdmin := middleware.RequireAdminOrDoctor
	protected.Handle("/appointments", middleware.RequirePatient(http.HandlerFunc(r.appointmentHandler.BookAppointment))).Methods(http.MethodPost)
	protected.HandleFunc("/appointments/me", r.appointmentHandler.GetMyAppointments).Methods(http.MethodGet)
	protected.Handle("/appointments/upcoming", middleware.RequirePatient(http.HandlerFunc(r.appointmentHandler.GetUpcoming))).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/{id}", r.appointmentHandler.GetAppointment).Methods(http.MethodGet)
	protected.Handle("/appointments/{id}", patientOrAdmin(http.HandlerFunc(r.appointmentHandler.EditAppointment))).Methods(http.MethodPut)
	protected.Handle("/appointments/{id}/cancel", patientOrAdmin(http.HandlerFunc(r.appointmentHandler.CancelAppointment))).Methods(http.MethodPost)
	protected.Handle("/appointments/{id}/complete", doctorOrAdmin(http.HandlerFunc(r.appointmentHandler.CompleteAppointment))).Methods(http.MethodPost)
	protected.Handle("/appointments/{id}/no-show", doctorOrAdmin(http.HandlerFunc(r.appointmentHandler.MarkNoShow))).Methods(http.MethodPost)

	// Prescriptions
	protected.Handle("/prescriptions", doctorOrAdmin(http.HandlerFunc(r.prescriptionHandler.CreatePrescription))).Methods(http.MethodPost)
	protected.HandleFunc("/prescriptions/me", r.prescriptionHandler.GetMyPrescriptions).Methods(http.MethodGet)
	protected.HandleFunc("/prescriptions/{id}", r.prescriptionHandler.GetPrescription).Methods(http.MethodGet)
	protected.Handle("/prescriptions/{id}/items", doctorOrAdmin(http.HandlerFunc(r.prescriptionHandler.AddItem))).Methods(http.MethodPost)
	protected.Handle("/prescriptions/{id}/items", doctorOrAdmin(http.HandlerFunc(r.prescriptionHandler.ClearItems))).Methods(http.MethodDelete)
	protected.Handle("/prescriptions/{id}/items/{medicineId}", doctorOrAdmin(http.HandlerFunc(r.prescriptionHandler.UpdateItem))).Methods(http.MethodPut)
	protected.Handle("/prescriptions/{id}/items/{medicineId}", doctorOrAdmin(http.HandlerFunc(r.prescriptionHandler.RemoveItem))).Methods(http.MethodDelete)

	// Admin routes (protected - admin only)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)

	admin.HandleFunc("/doctors", r.authHandler.RegisterDoctor).Methods(http.MethodPost)
	admin.HandleFunc("/accounts/{username}/active", r.authHandler.SetActive).Methods(http.MethodPut)
	admin.HandleFunc("/appointments/{id}/pay", r.appointmentHandler.MarkPaid).Methods(http.MethodPost)
	admin.HandleFunc("/revenue", r.appointmentHandler.GetRevenue).Methods(http.MethodGet)

	// Inventory and dispensing (admin)
	admin.HandleFunc("/medicines", r.medicineHandler.Create).Methods(http.MethodPost)
	admin.HandleFunc("/medicines/{id}/restock", r.medicineHandler.Restock).Methods(http.MethodPost)
	admin.HandleFunc("/prescriptions/pending", r.prescriptionHandler.GetPending).Methods(http.MethodGet)
	admin.HandleFunc("/prescriptions/{id}/check", r.prescriptionHandler.CheckDispense).Methods(http.MethodGet)
	admin.HandleFunc("/prescriptions/{id}/dispense", r.prescriptionHandler.Dispense).Methods(http.MethodPost)
	admin.HandleFunc("/prescriptions/{id}/undispense", r.prescriptionHandler.Undispense).Methods(http.MethodPost)

	// Departments (admin)
	admin.HandleFunc("/departments", r.departmentHandler.Create).Methods(http.MethodPost)
	admin.HandleFunc("/departments/{id}/doctors", r.departmentHandler.AssignDoctor).Methods(http.MethodPost)
	admin.HandleFunc("/departments/{id}/doctors/{doctorId}", r.departmentHandler.RemoveDoctor).Methods(http.MethodDelete)

	admin.HandleFunc("/audit-logs", r.auditLogHandler.GetRecentAuditLogs).Methods(http.MethodGet)

	r.router.Use(metrics.Middleware)
	if r.rateLimiter != nil {
		r.router.Use(r.rateLimiter.Handle)
	}
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
