package http

import (
	"net/http"

	"clinic-queue-manager/internal/delivery/http/handler"
	"clinic-queue-manager/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router             *mux.Router
	authHandler        *handler.AuthHandler
	clinicHandler      *handler.ClinicHandler
	doctorHandler      *handler.DoctorHandler
	scheduleHandler    *handler.DoctorScheduleHandler
	queueHandler       *handler.QueueHandler
	ticketHandler      *handler.QueueTicketHandler
	appointmentHandler *handler.AppointmentHandler
	statisticsHandler  *handler.StatisticsHandler
	authMiddleware     *middleware.AuthMiddleware
	corsMiddleware     *middleware.CORSMiddleware
}

func NewRouter(
	authHandler *handler.AuthHandler,
	clinicHandler *handler.ClinicHandler,
	doctorHandler *handler.DoctorHandler,
	scheduleHandler *handler.DoctorScheduleHandler,
	queueHandler *handler.QueueHandler,
	ticketHandler *handler.QueueTicketHandler,
	appointmentHandler *handler.AppointmentHandler,
	statisticsHandler *handler.StatisticsHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
) *Router {
	return &Router{
		router:             mux.NewRouter(),
		authHandler:        authHandler,
		clinicHandler:      clinicHandler,
		doctorHandler:      doctorHandler,
		scheduleHandler:    scheduleHandler,
		queueHandler:       queueHandler,
		ticketHandler:      ticketHandler,
		appointmentHandler: appointmentHandler,
		statisticsHandler:  statisticsHandler,
		authMiddleware:     authMiddleware,
		corsMiddleware:     corsMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Auth routes (public)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register/patient", r.authHandler.RegisterPatient).Methods(http.MethodPost)
	auth.HandleFunc("/login", r.authHandler.Login).Methods(http.MethodPost)
	auth.HandleFunc("/refresh-token", r.authHandler.RefreshToken).Methods(http.MethodPost)

	// Auth routes (protected)
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(r.authMiddleware.Authenticate)
	authProtected.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)
	authProtected.HandleFunc("/me", r.authHandler.GetCurrentProfile).Methods(http.MethodGet)

	// Public board routes: clinic directory and queue state are
	// readable without a token so waiting-room displays can poll them
	api.HandleFunc("/clinics", r.clinicHandler.ListClinics).Methods(http.MethodGet)
	api.HandleFunc("/clinics/{id}", r.clinicHandler.GetClinic).Methods(http.MethodGet)
	api.HandleFunc("/clinics/{id}/doctors", r.clinicHandler.ListClinicDoctors).Methods(http.MethodGet)
	api.HandleFunc("/doctors/{id}/schedules", r.scheduleHandler.ListDoctorSchedules).Methods(http.MethodGet)
	api.HandleFunc("/doctors/{id}/slots", r.scheduleHandler.ListDoctorSlots).Methods(http.MethodGet)
	api.HandleFunc("/queues", r.queueHandler.ListQueues).Methods(http.MethodGet)
	api.HandleFunc("/queues/{id}", r.queueHandler.GetQueue).Methods(http.MethodGet)
	api.HandleFunc("/queues/{id}/board", r.queueHandler.GetQueueBoard).Methods(http.MethodGet)
	api.HandleFunc("/queues/{id}/tickets", r.ticketHandler.ListTickets).Methods(http.MethodGet)
	api.HandleFunc("/queues/{id}/next", r.ticketHandler.NextToServe).Methods(http.MethodGet)
	api.HandleFunc("/tickets/{id}", r.ticketHandler.GetTicket).Methods(http.MethodGet)

	// Staff routes (protected - clinic staff or admin)
	staff := api.PathPrefix("").Subrouter()
	staff.Use(r.authMiddleware.Authenticate)
	staff.Use(middleware.RequireStaff)

	// Queue lifecycle (staff)
	staff.HandleFunc("/queues", r.queueHandler.CreateQueue).Methods(http.MethodPost)
	staff.HandleFunc("/queues/{id}", r.queueHandler.UpdateQueue).Methods(http.MethodPatch)
	staff.HandleFunc("/queues/{id}/events", r.queueHandler.ListQueueEvents).Methods(http.MethodGet)

	// Ticket management (staff)
	staff.HandleFunc("/queues/{id}/tickets", r.ticketHandler.CreateTicket).Methods(http.MethodPost)
	staff.HandleFunc("/queues/{id}/call-next", r.ticketHandler.CallNext).Methods(http.MethodPost)
	staff.HandleFunc("/tickets/{id}", r.ticketHandler.UpdateTicket).Methods(http.MethodPatch)

	// Appointments (staff)
	staff.HandleFunc("/appointments", r.appointmentHandler.CreateAppointment).Methods(http.MethodPost)
	staff.HandleFunc("/appointments", r.appointmentHandler.ListAppointments).Methods(http.MethodGet)
	staff.HandleFunc("/appointments/{id}", r.appointmentHandler.GetAppointment).Methods(http.MethodGet)
	staff.HandleFunc("/appointments/{id}", r.appointmentHandler.UpdateAppointment).Methods(http.MethodPatch)

	// Admin routes (protected - admin only)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)

	// Clinic management (admin)
	admin.HandleFunc("/clinics", r.clinicHandler.CreateClinic).Methods(http.MethodPost)
	admin.HandleFunc("/clinics/{id}", r.clinicHandler.UpdateClinic).Methods(http.MethodPut)
	admin.HandleFunc("/clinics/{id}", r.clinicHandler.DeleteClinic).Methods(http.MethodDelete)

	// Doctor management (admin)
	admin.HandleFunc("/doctors", r.doctorHandler.CreateDoctor).Methods(http.MethodPost)
	admin.HandleFunc("/doctors/{id}", r.doctorHandler.GetDoctor).Methods(http.MethodGet)
	admin.HandleFunc("/doctors/{id}", r.doctorHandler.UpdateDoctor).Methods(http.MethodPut)
	admin.HandleFunc("/doctors/{id}", r.doctorHandler.DeleteDoctor).Methods(http.MethodDelete)

	// Doctor schedule management (admin)
	admin.HandleFunc("/schedules", r.scheduleHandler.CreateSchedule).Methods(http.MethodPost)
	admin.HandleFunc("/schedules/{id}", r.scheduleHandler.GetSchedule).Methods(http.MethodGet)
	admin.HandleFunc("/schedules/{id}", r.scheduleHandler.UpdateSchedule).Methods(http.MethodPut)
	admin.HandleFunc("/schedules/{id}", r.scheduleHandler.DeleteSchedule).Methods(http.MethodDelete)

	// Role management and destructive queue ops (admin)
	admin.HandleFunc("/staff", r.authHandler.GrantStaff).Methods(http.MethodPost)
	admin.HandleFunc("/queues/{id}", r.queueHandler.DeleteQueue).Methods(http.MethodDelete)
	admin.HandleFunc("/tickets/{id}", r.ticketHandler.DeleteTicket).Methods(http.MethodDelete)

	// Statistics (admin)
	admin.HandleFunc("/statistics", r.statisticsHandler.GetStatistics).Methods(http.MethodGet)

	// Add CORS middleware
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
