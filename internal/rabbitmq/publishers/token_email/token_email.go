package tokenemail

import (
	"context"
	"tokengate/internal/core/domain/account"
	e "tokengate/internal/core/domain/errors"
	"tokengate/internal/core/domain/logging"
	"tokengate/internal/core/domain/token"
	"tokengate/internal/rabbitmq"
	"tokengate/internal/rabbitmq/schema"

	"github.com/rabbitmq/amqp091-go"
)

// Publisher enqueues token delivery requests instead of sending mail
// inline. It satisfies both token sender interfaces.
type Publisher struct {
	log        logging.Logger
	channel    *rabbitmq.Channel
	exchange   string
	routingKey string
}

func NewPublisher(log logging.Logger, channel *rabbitmq.Channel, exchange string, routingKey string) *Publisher {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if channel == nil {
		panic(e.NewNilArgumentError("channel"))
	}
	return &Publisher{log: log, channel: channel, exchange: exchange, routingKey: routingKey}
}

func (p *Publisher) SendVerificationToken(
	ctx context.Context,
	a account.Account,
	t token.VerificationToken,
) error {
	return p.publish(ctx, schema.TokenEmail{
		Kind:      schema.KindVerification,
		AccountID: int64(a.ID),
		TokenID:   string(t.ID),
	})
}

func (p *Publisher) SendPasswordResetToken(
	ctx context.Context,
	a account.Account,
	t token.PasswordResetToken,
) error {
	return p.publish(ctx, schema.TokenEmail{
		Kind:      schema.KindPasswordReset,
		AccountID: int64(a.ID),
		TokenID:   string(t.ID),
	})
}

func (p *Publisher) publish(ctx context.Context, message schema.TokenEmail) error {
	body, err := message.Marshal()
	if err != nil {
		return err
	}
	err = p.channel.PublishWithContext(ctx, p.exchange, p.routingKey, false, false, amqp091.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
	if err != nil {
		logging.Error(ctx, p.log, err)
		return err
	}
	p.log.Info(
		ctx,
		"AMQP message has been successfully published.",
		logging.Entry("exchange", p.exchange),
		logging.Entry("RK", p.routingKey),
		logging.Entry("kind", message.Kind),
		logging.Entry("accountID", message.AccountID),
	)
	return nil
}
