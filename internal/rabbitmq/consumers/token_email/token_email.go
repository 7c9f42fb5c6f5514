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

// Consumer drains queued token delivery requests and sends the emails.
// Malformed or undeliverable messages are acked and dropped; token email
// is retried by the user, not by the broker.
type Consumer struct {
	log                      logging.Logger
	channel                  *rabbitmq.Channel
	queue                    string
	accountRepository        account.Repository
	verificationTokenSender  token.VerificationTokenSender
	passwordResetTokenSender token.PasswordResetTokenSender
}

func New(
	log logging.Logger,
	channel *rabbitmq.Channel,
	queue string,
	accountRepository account.Repository,
	verificationTokenSender token.VerificationTokenSender,
	passwordResetTokenSender token.PasswordResetTokenSender,
) *Consumer {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if channel == nil {
		panic(e.NewNilArgumentError("channel"))
	}
	if queue == "" {
		panic("queue name must not be empty")
	}
	if accountRepository == nil {
		panic(e.NewNilArgumentError("accountRepository"))
	}
	if verificationTokenSender == nil {
		panic(e.NewNilArgumentError("verificationTokenSender"))
	}
	if passwordResetTokenSender == nil {
		panic(e.NewNilArgumentError("passwordResetTokenSender"))
	}

	return &Consumer{
		log:                      log,
		channel:                  channel,
		queue:                    queue,
		accountRepository:        accountRepository,
		verificationTokenSender:  verificationTokenSender,
		passwordResetTokenSender: passwordResetTokenSender,
	}
}

func (c *Consumer) Consume() error {
	deliveries, err := c.channel.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		c.log.Error(context.Background(), "Could not start consuming.", logging.Entry("err", err))
		return err
	}

	go func() {
		for delivery := range deliveries {
			message := &schema.TokenEmail{}
			if err := message.Unmarshal(delivery.Body); err != nil {
				c.log.Error(
					context.Background(),
					"Could not unmarshal token email message.",
					logging.Entry("err", err),
					logging.Entry("delivery", delivery),
				)
				c.Ack(delivery)
				continue
			}

			c.log.Info(
				context.Background(),
				"Got token email message.",
				logging.Entry("kind", message.Kind),
				logging.Entry("accountID", message.AccountID),
			)
			if err := c.send(context.Background(), message); err != nil {
				c.log.Error(
					context.Background(),
					"Could not send token email.",
					logging.Entry("kind", message.Kind),
					logging.Entry("accountID", message.AccountID),
					logging.Entry("err", err),
				)
			}
			c.Ack(delivery)
		}
	}()
	return nil
}

func (c *Consumer) send(ctx context.Context, message *schema.TokenEmail) error {
	a, err := c.accountRepository.GetByID(ctx, account.ID(message.AccountID))
	if err != nil {
		return err
	}

	switch message.Kind {
	case schema.KindPasswordReset:
		return c.passwordResetTokenSender.SendPasswordResetToken(
			ctx,
			a,
			token.PasswordResetToken{ID: token.ID(message.TokenID), AccountID: a.ID},
		)
	default:
		return c.verificationTokenSender.SendVerificationToken(
			ctx,
			a,
			token.VerificationToken{ID: token.ID(message.TokenID), AccountID: a.ID},
		)
	}
}

func (c *Consumer) Ack(delivery amqp091.Delivery) {
	if err := delivery.Ack(true); err != nil {
		c.log.Error(context.Background(), "Could not ACK AMQP message.", logging.Entry("err", err))
	}
}
