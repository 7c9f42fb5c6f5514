package app

import (
	"fmt"
	"net/http"
	"tokengate/internal/app/deps"
	"tokengate/internal/app/services"
	confirmpasswordreset "tokengate/internal/http/handlers/auth/confirm_password_reset"
	requestpasswordreset "tokengate/internal/http/handlers/auth/request_password_reset"
	resendverification "tokengate/internal/http/handlers/auth/resend_verification"
	signup "tokengate/internal/http/handlers/auth/sign_up"
	verifyemail "tokengate/internal/http/handlers/auth/verify_email"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

func InitHttpServer(deps *deps.Deps, s *services.Services) *http.Server {
	isTestMode := deps.Config.IsTestMode

	authRouter := chi.NewRouter()
	authRouter.Method(http.MethodPost, "/signup", signup.New(s.SignUp, isTestMode))
	authRouter.Method(http.MethodGet, "/verify/{token}", verifyemail.New(s.VerifyEmail))
	authRouter.Method(http.MethodPost, "/verify/resend", resendverification.New(s.ResendVerification, isTestMode))
	authRouter.Method(
		http.MethodPost,
		"/password_reset",
		requestpasswordreset.New(s.RequestPasswordReset, isTestMode),
	)
	authRouter.Method(http.MethodPut, "/password_reset", confirmpasswordreset.New(s.ConfirmPasswordReset))

	router := chi.NewRouter()
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))
	router.Mount("/auth", authRouter)

	address := fmt.Sprintf("0.0.0.0:%d", deps.Config.Port)

	return &http.Server{
		Handler: router,
		Addr:    address,
	}
}
