package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"tokengate/internal/app/deps"
	"tokengate/internal/core/domain/logging"
	tokenemail "tokengate/internal/rabbitmq/consumers/token_email"
)

// The notifier drains the token email queue and delivers queued
// verification and password reset messages through SES.
func main() {
	deps, shutdownDeps := deps.InitDeps()
	log := deps.Logger
	defer shutdownDeps()

	channel, err := deps.TokenEmailChannel()
	if err != nil {
		log.Error(context.Background(), "Could not open RabbitMQ channel.", logging.Entry("err", err))
		panic(err)
	}
	defer channel.Close()

	consumer := tokenemail.New(
		log,
		channel,
		deps.Config.RabbitmqTokenEmailQueue,
		deps.AccountRepository,
		deps.EmailSender,
		deps.EmailSender,
	)
	if err := consumer.Consume(); err != nil {
		panic(err)
	}

	log.Info(
		context.Background(),
		"Token email worker has started.",
		logging.Entry("queue", deps.Config.RabbitmqTokenEmailQueue),
	)

	stopCh, closeCh := createChannel()
	defer closeCh()

	<-stopCh
	log.Info(context.Background(), "Token email worker is stopping.")
}

func createChannel() (chan os.Signal, func()) {
	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	return stopCh, func() {
		close(stopCh)
	}
}
