package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/webmaek/aventus/ratelimit"
)

// setupRoutes mounts every /api endpoint. Public reads sit next to guarded writes.
func setupRoutes(r chi.Router, handlers *routeHandlers, guard authGuard, loginLimiter ratelimit.Limiter) {
	r.Route("/projects", func(r chi.Router) {
		r.Get("/", handlers.projectHandler.getProjects())
		r.With(guard.authenticate).Post("/", handlers.projectHandler.createProject())

		r.Route("/{slug}", func(r chi.Router) {
			r.Get("/", handlers.projectHandler.getProject())
			r.Get("/stats", handlers.projectHandler.getProjectStats())
			r.Get("/comments", handlers.commentHandler.getComments())
			r.Get("/comments/{id}", handlers.commentHandler.getComment())

			r.Group(func(r chi.Router) {
				r.Use(guard.authenticate)

				r.Put("/", handlers.projectHandler.updateProject())
				r.Delete("/", handlers.projectHandler.deleteProject())
				r.Post("/like", handlers.projectHandler.likeProject())
				r.Post("/bookmark", handlers.projectHandler.bookmarkProject())

				r.Post("/comments", handlers.commentHandler.createComment())
				r.Put("/comments/{id}", handlers.commentHandler.updateComment())
				r.Delete("/comments/{id}", handlers.commentHandler.deleteComment())
			})
		})
	})

	r.Route("/tags", func(r chi.Router) {
		r.Get("/", handlers.tagHandler.getTags())
		r.With(guard.requireAdmin).Post("/", handlers.tagHandler.createTag())
	})

	r.Route("/users", func(r chi.Router) {
		r.Post("/", handlers.userHandler.register())
		r.With(rateLimit(loginLimiter, "login")).Post("/login", handlers.userHandler.login())
		r.Post("/logout", handlers.userHandler.logout())
		r.With(guard.optionalIdentity).Get("/me", handlers.userHandler.getMe())

		r.Group(func(r chi.Router) {
			r.Use(guard.authenticate)

			r.Put("/me", handlers.userHandler.updateMe())
			r.Delete("/me", handlers.userHandler.deleteMe())
			r.Post("/me/avatar", handlers.userHandler.uploadAvatar())
			r.Get("/me/projects", handlers.userHandler.getMyProjects())
			r.Get("/me/bookmarks", handlers.userHandler.getMyBookmarks())
		})

		r.Group(func(r chi.Router) {
			r.Use(guard.requireAdmin)

			r.Get("/", handlers.userHandler.getUsers())
			r.Delete("/{id}", handlers.userHandler.deleteUser())
		})
	})
}
