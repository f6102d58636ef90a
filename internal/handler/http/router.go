package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/rbac"
	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/jwt"
)

// RouterConfig carries the deployment settings the router needs.
type RouterConfig struct {
	AllowedOrigins []string
	Env            string
	LogLevel       slog.Level
}

type Handlers struct {
	Attendance AttendanceHandler
	Employee   EmployeeHandler
	Shift      ShiftHandler
	Status     StatusHandler
	Overtime   OvertimeHandler
	Report     ReportHandler
	RBAC       RBACHandler
	Device     DeviceHandler
}

func NewRouter(JWTService jwt.Service, rbacService rbac.Service, cfg RouterConfig, h Handlers) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(cfg.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.LogLevel,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "attendance-engine"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Language", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	reads := middleware.RequireSelfOrCapability("employeeID", rbac.ViewReports)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
		r.Use(middleware.AuthRequired(rbacService))
		r.Use(middleware.Locale)

		r.Get("/me", h.RBAC.Me)

		r.Route("/attendance", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireCapability(rbac.ManageAttendance))
				r.Post("/check-in", h.Attendance.CheckIn)
				r.Post("/check-out", h.Attendance.CheckOut)
			})
			r.With(middleware.RequireCapability(rbac.ViewReports)).Get("/", h.Attendance.List)
			r.With(reads).Get("/{employeeID}/{date}", h.Attendance.Get)
		})

		r.Route("/departments", func(r chi.Router) {
			r.Get("/", h.Employee.ListDepartments)
			r.Post("/", h.Employee.CreateDepartment)
			r.Route("/{code}", func(r chi.Router) {
				r.Get("/", h.Employee.GetDepartment)
				r.Put("/", h.Employee.UpdateDepartment)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireCapability(rbac.ViewReports, rbac.ManageHR))
					r.Get("/shifts", h.Shift.ListForDepartment)
					r.Get("/statuses", h.Status.ListForDepartment)
				})
			})
		})

		r.Route("/employees", func(r chi.Router) {
			r.With(middleware.RequireCapability(rbac.ViewReports, rbac.ManageUsers, rbac.ManageHR)).Get("/", h.Employee.List)
			r.Post("/", h.Employee.Create)

			r.Route("/{employeeID}", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(reads)
					r.Get("/", h.Employee.Get)
					r.Get("/transfers", h.Employee.ListTransfers)
					r.Get("/shifts", h.Shift.ListForEmployee)
					r.Get("/shift", h.Shift.Resolve)
					r.Get("/statuses", h.Status.ListForEmployee)
					r.Get("/status", h.Status.Resolve)
					r.Get("/overtime", h.Overtime.EmployeeDays)
				})

				r.Put("/", h.Employee.Update)
				r.Delete("/", h.Employee.Delete)
				r.Post("/transfer", h.Employee.Transfer)
				r.Post("/shifts", h.Shift.Assign)
				r.With(middleware.RequireSelfOrCapability("employeeID", rbac.ManageHR)).Post("/statuses", h.Status.Add)

				r.Route("/capabilities", func(r chi.Router) {
					r.Get("/", h.RBAC.ListOverrides)
					r.Put("/{capability}", h.RBAC.SetOverride)
					r.Delete("/{capability}", h.RBAC.ClearOverride)
				})
			})
		})

		r.Route("/roles", func(r chi.Router) {
			r.Get("/", h.RBAC.ListRoles)
			r.Post("/", h.RBAC.CreateRole)
			r.Route("/{code}", func(r chi.Router) {
				r.Get("/", h.RBAC.GetRole)
				r.Put("/", h.RBAC.UpdateRole)
				r.Delete("/", h.RBAC.DeleteRole)
				r.Put("/capabilities", h.RBAC.SetRoleCapabilities)
			})
		})

		r.Route("/shift-types", func(r chi.Router) {
			r.Get("/", h.Shift.ListTypes)
			r.Post("/", h.Shift.CreateType)
			r.Put("/{id}", h.Shift.UpdateType)
			r.Delete("/{id}", h.Shift.DeleteType)
		})

		r.Route("/status-types", func(r chi.Router) {
			r.Get("/", h.Status.ListTypes)
			r.Post("/", h.Status.CreateType)
			r.Put("/{id}", h.Status.UpdateType)
			r.Delete("/{id}", h.Status.DeleteType)
		})

		r.Route("/statuses", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireCapability(rbac.ViewReports, rbac.ApproveStatus))
				r.Get("/", h.Status.List)
				r.Get("/{id}", h.Status.Get)
			})
			// approval capability is checked by the status service
			r.Post("/{id}/approve", h.Status.Approve)
			r.Post("/{id}/reject", h.Status.Reject)
		})

		r.With(middleware.RequireCapability(rbac.ViewReports)).Get("/overtime", h.Overtime.Summary)

		r.Route("/reports", func(r chi.Router) {
			r.With(middleware.RequireCapability(rbac.ViewReports)).Get("/late-arrivals", h.Report.LateArrivals)
			r.With(middleware.RequireCapability(rbac.ViewReports)).Get("/departments", h.Report.Departments)
			r.With(reads).Get("/employees/{employeeID}", h.Report.Employee)
		})

		r.Route("/devices", func(r chi.Router) {
			r.Post("/", h.Device.Register)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireCapability(rbac.ManageAttendance))
				r.Get("/", h.Device.List)
				r.Post("/{id}/sync", h.Device.Sync)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "Route not found")
	})
	return r
}
