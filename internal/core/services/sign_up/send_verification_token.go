package signup

import (
	"context"
	"errors"
	e "tokengate/internal/core/domain/errors"
	"tokengate/internal/core/domain/logging"
	"tokengate/internal/core/domain/token"
	"tokengate/internal/core/services"
)

// serviceWithVerificationTokenSending delivers the verification token after
// a successful sign up. A failed send fails the whole sign up, even though
// the account row is already committed.
type serviceWithVerificationTokenSending struct {
	log    logging.Logger
	sender token.VerificationTokenSender
	inner  services.Service[Input, Result]
}

func NewWithVerificationTokenSending(
	log logging.Logger,
	sender token.VerificationTokenSender,
	inner services.Service[Input, Result],
) services.Service[Input, Result] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if sender == nil {
		panic(e.NewNilArgumentError("sender"))
	}
	if inner == nil {
		panic(e.NewNilArgumentError("inner"))
	}
	return &serviceWithVerificationTokenSending{
		log:    log,
		sender: sender,
		inner:  inner,
	}
}

func (s *serviceWithVerificationTokenSending) Run(ctx context.Context, input Input) (result Result, err error) {
	result, err = s.inner.Run(ctx, input)
	if errors.Is(err, context.Canceled) {
		return result, err
	}
	if err != nil {
		s.log.Info(ctx, "Skip sending verification token.", logging.Entry("err", err))
		return result, err
	}

	err = s.sender.SendVerificationToken(ctx, result.Account, result.Token)
	if errors.Is(err, context.Canceled) {
		return result, err
	}
	if err != nil {
		s.log.Error(
			ctx,
			"Could not send verification token, sign up reported as failed.",
			logging.Entry("accountID", result.Account.ID),
			logging.Entry("err", err),
		)
		return result, token.ErrDispatchFailed
	}

	s.log.Info(
		ctx,
		"Verification token has been sent to the account email.",
		logging.Entry("accountID", result.Account.ID),
	)
	return result, nil
}
