package resendverification

import (
	"context"
	"errors"
	e "tokengate/internal/core/domain/errors"
	"tokengate/internal/core/domain/logging"
	"tokengate/internal/core/domain/token"
	"tokengate/internal/core/services"
)

// serviceWithVerificationTokenSending redelivers the token after a
// successful resend. Unlike the initial sign up, delivery here is
// fire-and-forget: a failed send is logged and never surfaced, the caller
// still gets a success response.
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
	if err != nil {
		return result, err
	}

	err = s.sender.SendVerificationToken(ctx, result.Account, result.Token)
	if errors.Is(err, context.Canceled) {
		return result, err
	}
	if err != nil {
		s.log.Error(
			ctx,
			"Could not dispatch verification token on resend.",
			logging.Entry("accountID", result.Account.ID),
			logging.Entry("err", err),
		)
		return result, nil
	}

	s.log.Info(
		ctx,
		"Verification token resent.",
		logging.Entry("accountID", result.Account.ID),
	)
	return result, nil
}
