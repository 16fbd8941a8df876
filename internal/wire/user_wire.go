package wire

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"account-service/internal/adaptor"
	"account-service/pkg/middleware"
)

// wireUser configures profile and admin user management routes
func wireUser(
	r chi.Router,
	userHandler *adaptor.UserHandler,
	auth func(http.Handler) http.Handler,
	log *zap.Logger,
) {
	// ==================== PROTECTED USER ROUTES ====================
	r.With(auth).Get("/api/profile", userHandler.GetProfile)

	// ==================== ADMIN ROUTES ====================
	r.With(auth, middleware.Admin(log)).Route("/api/admin/users", func(r chi.Router) {
		r.Get("/", userHandler.GetAllUsers)       // GET /api/admin/users?page=1&per_page=10
		r.Post("/", userHandler.CreateUser)       // POST /api/admin/users
		r.Put("/{id}", userHandler.UpdateUser)    // PUT /api/admin/users/{user-id}
		r.Delete("/{id}", userHandler.DeleteUser) // DELETE /api/admin/users/{user-id}
	})
}
