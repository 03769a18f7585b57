package http

import (
	"log/slog"
	"os"

	"github.com/cmlabs-hris/worktrack-backend-go/internal/config"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

const appVersion = "v1.0.0"

func NewRouter(
	appConfig config.AppConfig,
	JWTService jwt.Service,
	activityHandler ActivityHandler,
	clientHandler ClientHandler,
	projectHandler ProjectHandler,
	employeeHandler EmployeeHandler,
	reportHandler ReportHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(appConfig.Env == "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "worktrack"),
		slog.String("version", appVersion),
		slog.String("env", appConfig.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   appConfig.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		// Public: the report page and the PDF renderer fetch shared reports by url
		r.Get("/reports/saved/{url}", reportHandler.GetSavedReport)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Route("/activities", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.ActionRead, user.ResourceActivity)).Get("/", activityHandler.ListActivities)
				r.With(middleware.RequirePermission(user.ActionCreate, user.ResourceActivity)).Post("/", activityHandler.CreateActivity)
				r.With(middleware.RequirePermission(user.ActionUpdate, user.ResourceActivity)).Post("/split", activityHandler.SplitActivity)
				r.Route("/{id}", func(r chi.Router) {
					r.With(middleware.RequirePermission(user.ActionUpdate, user.ResourceActivity)).Put("/", activityHandler.UpdateActivity)
					r.With(middleware.RequirePermission(user.ActionDelete, user.ResourceActivity)).Delete("/", activityHandler.DeleteActivity)
				})
			})

			r.Route("/screenshots", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.ActionCreate, user.ResourceActivity)).Post("/", activityHandler.CreateScreenshot)
				r.With(middleware.RequirePermission(user.ActionDelete, user.ResourceActivity)).Delete("/", activityHandler.DeleteScreenshots)
			})

			r.Route("/clients", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.ActionRead, user.ResourceClient)).Get("/", clientHandler.ListClients)
				r.With(middleware.RequirePermission(user.ActionCreate, user.ResourceClient)).Post("/", clientHandler.CreateClient)
				r.Route("/{id}", func(r chi.Router) {
					r.With(middleware.RequirePermission(user.ActionRead, user.ResourceClient)).Get("/", clientHandler.GetClient)
					r.With(middleware.RequirePermission(user.ActionRead, user.ResourceClient)).Get("/time", clientHandler.GetClientTime)
					r.With(middleware.RequirePermission(user.ActionUpdate, user.ResourceClient)).Put("/", clientHandler.UpdateClient)
					r.With(middleware.RequirePermission(user.ActionDelete, user.ResourceClient)).Delete("/", clientHandler.DeleteClient)
				})
			})

			r.Route("/projects", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.ActionRead, user.ResourceProject)).Get("/", projectHandler.ListProjects)
				r.With(middleware.RequirePermission(user.ActionCreate, user.ResourceProject)).Post("/", projectHandler.CreateProject)
				r.Route("/{id}", func(r chi.Router) {
					r.With(middleware.RequirePermission(user.ActionRead, user.ResourceProject)).Get("/", projectHandler.GetProject)
					r.With(middleware.RequirePermission(user.ActionRead, user.ResourceProject)).Get("/time", projectHandler.GetProjectTime)
					r.With(middleware.RequirePermission(user.ActionUpdate, user.ResourceProject)).Put("/", projectHandler.UpdateProject)
					r.With(middleware.RequirePermission(user.ActionDelete, user.ResourceProject)).Delete("/", projectHandler.DeleteProject)

					r.With(middleware.RequirePermission(user.ActionCreate, user.ResourceMembers)).Post("/members", projectHandler.AddMember)
					r.With(middleware.RequirePermission(user.ActionDelete, user.ResourceMembers)).Delete("/members/{employeeID}", projectHandler.RemoveMember)
				})
			})

			r.Route("/employees", func(r chi.Router) {
				r.Get("/", employeeHandler.ListEmployees)
				r.Put("/me/last-active", employeeHandler.UpdateLastActive)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", employeeHandler.GetEmployee)
					r.Get("/days", employeeHandler.ListDays)

					// Manager only
					r.Group(func(r chi.Router) {
						r.Use(middleware.RequireManager)
						r.Put("/", employeeHandler.UpdateEmployee)
						r.Delete("/", employeeHandler.DeleteEmployee)
					})
				})
			})

			r.Route("/reports", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.ActionRead, user.ResourceReport)).Get("/", reportHandler.ListReports)
				r.With(middleware.RequirePermission(user.ActionRead, user.ResourceReport)).Post("/generate", reportHandler.GenerateReport)
				r.With(middleware.RequirePermission(user.ActionCreate, user.ResourceReport)).Post("/", reportHandler.SaveReport)
				r.With(middleware.RequirePermission(user.ActionCreate, user.ResourceReport)).Post("/schedule", reportHandler.ScheduleReport)
				r.With(middleware.RequirePermission(user.ActionDelete, user.ResourceReport)).Delete("/{id}", reportHandler.DeleteReport)
			})
		})
	})

	return r
}
