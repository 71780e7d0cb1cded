package wire

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"socialgram/internal/adaptor"
	"socialgram/pkg/middleware"
	"socialgram/pkg/token"
)

func wireAuth(
	r chi.Router,
	authHandler *adaptor.AuthHandler,
	issuer *token.Issuer,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	r.Post("/api/signup", authHandler.SignUp)
	r.Post("/api/login", authHandler.Login)
	r.Post("/api/login/refresh", authHandler.Refresh)
	r.Post("/api/forgot-password", authHandler.ForgotPassword)

	// ==================== PROTECTED ROUTES ====================
	// Verification and profile completion run before the account can log in;
	// the bearer token from signup carries identity only.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(issuer, log))

		r.Post("/api/verify", authHandler.VerifyCode)
		r.Get("/api/verify/resend", authHandler.ResendCode)
		r.Put("/api/profile", authHandler.CompleteProfile)
		r.Put("/api/profile/photo", authHandler.UploadPhoto)
		r.Put("/api/reset-password", authHandler.ResetPassword)
		r.Post("/api/logout", authHandler.Logout)
	})
}
