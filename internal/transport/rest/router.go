package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/docflow/internal/auth"
	"github.com/frahmantamala/docflow/internal/document"
	"github.com/frahmantamala/docflow/internal/folder"
	"github.com/frahmantamala/docflow/internal/permission"
	"github.com/frahmantamala/docflow/internal/role"
	"github.com/frahmantamala/docflow/internal/stats"
	"github.com/frahmantamala/docflow/internal/task"
	"github.com/frahmantamala/docflow/internal/transport/middleware"
	"github.com/frahmantamala/docflow/internal/transport/swagger"
	"github.com/frahmantamala/docflow/internal/user"
)

type Handlers struct {
	Auth       *auth.Handler
	Permission *permission.Handler
	Document   *document.Handler
	Task       *task.Handler
	Folder     *folder.Handler
	Role       *role.Handler
	User       *user.Handler
	Stats      *stats.Handler
}

// RegisterAllRoutes wires the full API surface. Everything except login
// and the health probes sits behind the bearer-token middleware;
// administrative surfaces additionally require their permission.
func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)
	rbac := auth.NewRBACAuthorization(logger)

	router.Use(middleware.CORS)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	// OpenAPI spec and Swagger UI live outside the API prefix
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", h.Auth.Login)
			sr.Post("/logout", h.Auth.Logout)
			sr.With(h.Auth.AuthMiddleware).Get("/me", h.Auth.Me)
		})

		// Protected routes
		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Get("/permissions", h.Permission.ListPermissions)

			pr.Route("/documents", func(dr chi.Router) {
				dr.Get("/", h.Document.ListDocuments)
				dr.Post("/", h.Document.CreateDocument)
				dr.Get("/{id}", h.Document.GetDocument)
				dr.Put("/{id}", h.Document.UpdateDocument)
				dr.Post("/{id}/status", h.Document.SetDocumentStatus)
				dr.Delete("/{id}", h.Document.DeleteDocument)
			})

			pr.Route("/tasks", func(tr chi.Router) {
				tr.Get("/", h.Task.ListTasks)
				tr.Post("/", h.Task.CreateTask)
				tr.Get("/{id}", h.Task.GetTask)
				tr.Post("/{id}/messages", h.Task.AddTaskMessage)
				tr.Post("/{id}/status", h.Task.SetTaskStatus)
			})

			pr.Route("/folders", func(fr chi.Router) {
				fr.Get("/", h.Folder.GetFolderTree)
				fr.Post("/", h.Folder.CreateFolder)
				fr.Put("/{id}", h.Folder.UpdateFolder)
				fr.Delete("/{id}", h.Folder.DeleteFolder)
			})

			pr.Route("/users", func(ur chi.Router) {
				ur.Get("/me", h.Auth.Me)

				ur.Group(func(ar chi.Router) {
					ar.Use(rbac.Require(permission.AdminUsersManage))
					ar.Get("/", h.User.ListUsers)
					ar.Post("/", h.User.CreateUser)
					ar.Get("/{id}", h.User.GetUser)
					ar.Put("/{id}", h.User.UpdateUser)
					ar.Delete("/{id}", h.User.DeleteUser)
				})
			})

			pr.Route("/roles", func(rr chi.Router) {
				rr.Use(rbac.Require(permission.AdminSettings))
				rr.Get("/", h.Role.ListRoles)
				rr.Post("/", h.Role.CreateRole)
				rr.Put("/{id}", h.Role.UpdateRole)
				rr.Delete("/{id}", h.Role.DeleteRole)
				rr.Get("/{id}/permissions", h.Role.GetRolePermissions)
				rr.Put("/{id}/permissions", h.Role.SetRolePermissions)
			})

			pr.Get("/stats", h.Stats.GetStats)
			pr.Get("/reports", h.Stats.GetReport)
		})
	})
}
