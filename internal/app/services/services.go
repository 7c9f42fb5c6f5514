package services

import (
	"tokengate/internal/app/deps"
	drl "tokengate/internal/core/domain/rate_limiter"
	"tokengate/internal/core/services"
	confirmpasswordreset "tokengate/internal/core/services/confirm_password_reset"
	ratelimiting "tokengate/internal/core/services/rate_limiting"
	requestpasswordreset "tokengate/internal/core/services/request_password_reset"
	resendverification "tokengate/internal/core/services/resend_verification"
	signup "tokengate/internal/core/services/sign_up"
	verifyemail "tokengate/internal/core/services/verify_email"
)

type Services struct {
	SignUp               services.Service[signup.Input, signup.Result]
	VerifyEmail          services.Service[verifyemail.Input, verifyemail.Result]
	ResendVerification   services.Service[resendverification.Input, resendverification.Result]
	RequestPasswordReset services.Service[requestpasswordreset.Input, requestpasswordreset.Result]
	ConfirmPasswordReset services.Service[confirmpasswordreset.Input, confirmpasswordreset.Result]
}

func InitServices(deps *deps.Deps) *Services {
	s := &Services{}

	// Sign up sends synchronously through SES; a failed send fails the
	// call. Resend and reset requests go through the queue instead.
	s.SignUp = signup.NewWithVerificationTokenSending(
		deps.Logger,
		deps.EmailSender,
		signup.New(
			deps.Logger,
			deps.UnitOfWork,
			deps.PasswordHasher,
			deps.PasswordPolicy,
			deps.TokenGenerator,
			deps.Now,
		),
	)
	s.VerifyEmail = verifyemail.New(
		deps.Logger,
		deps.UnitOfWork,
		deps.Config.VerificationTokenValidDuration,
		deps.Now,
	)
	s.ResendVerification = ratelimiting.WithRateLimiting(
		deps.Logger,
		deps.RateLimiter,
		drl.Limit{Interval: drl.Hour, Value: 5},
		resendverification.NewWithVerificationTokenSending(
			deps.Logger,
			deps.TokenEmailPublisher,
			resendverification.New(
				deps.Logger,
				deps.UnitOfWork,
				deps.TokenGenerator,
				deps.Config.VerificationTokenValidDuration,
				deps.Now,
			),
		),
	)
	s.RequestPasswordReset = ratelimiting.WithRateLimiting(
		deps.Logger,
		deps.RateLimiter,
		drl.Limit{Interval: drl.Hour, Value: 3},
		requestpasswordreset.New(
			deps.Logger,
			deps.UnitOfWork,
			deps.TokenGenerator,
			deps.TokenEmailPublisher,
			deps.Now,
		),
	)
	s.ConfirmPasswordReset = confirmpasswordreset.New(
		deps.Logger,
		deps.UnitOfWork,
		deps.PasswordHasher,
		deps.PasswordPolicy,
		deps.Config.PasswordResetTokenValidDuration,
		deps.Now,
	)

	return s
}
