package config

import (
	"time"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	IsTestMode bool   `env:"TEST_MODE" envDefault:"false"`
	Secret     string `env:"SECRET,required"`
	Port       uint16 `env:"PORT" envDefault:"9000"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	PostgresqlURL string `env:"POSTGRESQL_URL,required"`
	RedisURL      string `env:"REDIS_URL,required"`
	RabbitmqURL   string `env:"RABBITMQ_URL,required"`

	RabbitmqTokenEmailQueue string `env:"RABBITMQ_TOKEN_EMAIL_QUEUE" envDefault:"token-email"`

	BcryptHasherCost  int `env:"BCRYPT_HASHER_COST" envDefault:"10"`
	PasswordMinLength int `env:"PASSWORD_MIN_LENGTH" envDefault:"8"`

	VerificationTokenValidDuration  time.Duration `env:"VERIFICATION_TOKEN_VALID_DURATION" envDefault:"24h"`
	PasswordResetTokenValidDuration time.Duration `env:"PASSWORD_RESET_TOKEN_VALID_DURATION" envDefault:"1h"`

	AwsRegion          string `env:"AWS_REGION" envDefault:"us-west-2"`
	AwsAccessKeyID     string `env:"AWS_ACCESS_KEY_ID,required"`
	AwsSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY,required"`

	AwsEmailSender                string `env:"AWS_EMAIL_SENDER,required"`
	AwsEmailVerificationTemplate  string `env:"AWS_EMAIL_VERIFICATION_TEMPLATE" envDefault:"email-verification"`
	AwsEmailVerificationBaseURL   string `env:"AWS_EMAIL_VERIFICATION_BASE_URL,required"`
	AwsEmailPasswordResetTemplate string `env:"AWS_EMAIL_PASSWORD_RESET_TEMPLATE" envDefault:"password-reset"`
	AwsEmailPasswordResetBaseURL  string `env:"AWS_EMAIL_PASSWORD_RESET_BASE_URL,required"`
}

func Load() (*Config, error) {
	config := &Config{}
	if err := env.Parse(config); err != nil {
		return nil, err
	}
	return config, nil
}
