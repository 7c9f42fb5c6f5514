package deps

import (
	"context"
	"net/url"
	"sync"
	"time"
	"tokengate/internal/config"
	"tokengate/internal/core/domain/account"
	dl "tokengate/internal/core/domain/logging"
	drl "tokengate/internal/core/domain/rate_limiter"
	"tokengate/internal/core/domain/token"
	duow "tokengate/internal/core/domain/unit_of_work"
	dbaccount "tokengate/internal/db/account"
	dbtoken "tokengate/internal/db/token"
	uow "tokengate/internal/db/unit_of_work"
	"tokengate/internal/implementations/email"
	"tokengate/internal/implementations/logging"
	passwordhasher "tokengate/internal/implementations/password_hasher"
	passwordpolicy "tokengate/internal/implementations/password_policy"
	ratelimiter "tokengate/internal/implementations/rate_limiter"
	tokengenerator "tokengate/internal/implementations/token_generator"
	"tokengate/internal/rabbitmq"
	tokenemail "tokengate/internal/rabbitmq/publishers/token_email"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/go-redis/redis/v9"
	"github.com/jackc/pgx/v4/pgxpool"
)

type Deps struct {
	Config    *config.Config
	AwsConfig aws.Config
	Logger    dl.Logger

	DB       *pgxpool.Pool
	Redis    *redis.Client
	Rabbitmq *rabbitmq.Connection

	Now func() time.Time

	UnitOfWork                   duow.UnitOfWork
	AccountRepository            account.Repository
	VerificationTokenRepository  token.VerificationTokenRepository
	PasswordResetTokenRepository token.PasswordResetTokenRepository

	RateLimiter drl.RateLimiter

	EmailSender *email.EmailSender
	// TokenEmailPublisher enqueues delivery for the flows where send
	// failure must not block the response.
	TokenEmailPublisher *tokenemail.Publisher

	TokenGenerator token.Generator
	PasswordHasher account.PasswordHasher
	PasswordPolicy account.PasswordPolicy
}

func InitDeps() (*Deps, func()) {
	deps := &Deps{}

	deps.initConfig()
	deps.initAwsConfig()

	closeLogger := deps.initLogger()
	closePgxPool := deps.initPgxPool()
	closeRedisClient := deps.initRedisClient()
	closeRabbitmqConn := deps.initRabbitmqConnection()

	deps.UnitOfWork = uow.NewPgxUnitOfWork(deps.DB)
	deps.AccountRepository = dbaccount.NewPgxRepository(deps.DB)
	deps.VerificationTokenRepository = dbtoken.NewPgxVerificationTokenRepository(deps.DB)
	deps.PasswordResetTokenRepository = dbtoken.NewPgxPasswordResetTokenRepository(deps.DB)

	deps.EmailSender = email.NewEmailSender(
		deps.AwsConfig,
		deps.Config.AwsEmailSender,
		deps.Config.AwsEmailVerificationTemplate,
		mustParseURL(deps.Config.AwsEmailVerificationBaseURL),
		deps.Config.AwsEmailPasswordResetTemplate,
		mustParseURL(deps.Config.AwsEmailPasswordResetBaseURL),
	)

	deps.Now = func() time.Time { return time.Now().UTC() }
	deps.RateLimiter = ratelimiter.NewRedis(deps.Redis, deps.Logger, deps.Now)
	deps.TokenGenerator = tokengenerator.NewGenerator()
	deps.PasswordHasher = passwordhasher.NewBcrypt(deps.Config.Secret, deps.Config.BcryptHasherCost)
	deps.PasswordPolicy = passwordpolicy.NewPolicy(deps.Config.PasswordMinLength)

	closeTokenEmailPublisher := deps.initTokenEmailPublisher()

	return deps, func() {
		closeFuncs := []func(){
			closeTokenEmailPublisher,
			closeRabbitmqConn,
			closeRedisClient,
			closePgxPool,
			closeLogger,
		}

		var wg sync.WaitGroup
		wg.Add(len(closeFuncs))
		for _, closeFunc := range closeFuncs {
			closeFunc := closeFunc
			go func() {
				closeFunc()
				wg.Done()
			}()
		}

		wg.Wait()
	}
}

func (deps *Deps) initConfig() {
	config, err := config.Load()
	if err != nil {
		panic(err)
	}
	deps.Config = config
}

func (deps *Deps) initAwsConfig() {
	cfg, err := awsConfig.LoadDefaultConfig(
		context.Background(),
		awsConfig.WithRegion(deps.Config.AwsRegion),
		awsConfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				deps.Config.AwsAccessKeyID,
				deps.Config.AwsSecretAccessKey,
				"",
			),
		),
		awsConfig.WithRetryer(func() aws.Retryer {
			return retry.AddWithMaxAttempts(
				retry.AddWithMaxBackoffDelay(retry.NewStandard(), time.Second*5),
				3,
			)
		}),
	)
	if err != nil {
		panic(err)
	}
	deps.AwsConfig = cfg
}

func (deps *Deps) initLogger() func() {
	logger := logging.NewZapLogger()
	deps.Logger = logger
	return func() { logger.Sync() }
}

func (deps *Deps) initPgxPool() func() {
	db, err := pgxpool.Connect(context.Background(), deps.Config.PostgresqlURL)
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not connect to DB.", dl.Entry("err", err))
		panic(err)
	}
	deps.DB = db
	return func() {
		deps.Logger.Info(context.Background(), "Shutting down DB connection.")
		db.Close()
		deps.Logger.Info(context.Background(), "DB connection shut down.")
	}
}

func (deps *Deps) initRedisClient() func() {
	redisOpt, err := redis.ParseURL(deps.Config.RedisURL)
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not connect to Redis.", dl.Entry("err", err))
		panic(err)
	}
	redisClient := redis.NewClient(redisOpt)
	deps.Redis = redisClient
	return func() {
		deps.Logger.Info(context.Background(), "Shutting down Redis client.")
		redisClient.Close()
		deps.Logger.Info(context.Background(), "Redis client shut down.")
	}
}

func (deps *Deps) initRabbitmqConnection() func() {
	rabbitmqConnection, err := rabbitmq.Dial(deps.Config.RabbitmqURL, deps.Logger)
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not connect to RabbitMQ.", dl.Entry("err", err))
		panic("could not connect to RabbitMQ")
	}
	deps.Rabbitmq = rabbitmqConnection
	return func() {
		deps.Logger.Info(context.Background(), "Shutting down RabbitMQ connection.")
		rabbitmqConnection.Close()
		deps.Logger.Info(context.Background(), "RabbitMQ connection shut down.")
	}
}

func (deps *Deps) initTokenEmailPublisher() func() {
	rabbitmqChannel, err := deps.Rabbitmq.Channel()
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not create RabbitMQ channel.", dl.Entry("err", err))
		panic(err)
	}

	queue := deps.Config.RabbitmqTokenEmailQueue
	if _, err := rabbitmqChannel.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		deps.Logger.Error(context.Background(), "Could not create RabbitMQ queue.", dl.Entry("err", err))
		panic(err)
	}

	// Default exchange, routing key equals the queue name.
	deps.TokenEmailPublisher = tokenemail.NewPublisher(deps.Logger, rabbitmqChannel, "", queue)

	return func() {
		deps.Logger.Info(context.Background(), "Shutting down token email publisher.")
		rabbitmqChannel.Close()
		deps.Logger.Info(context.Background(), "Token email publisher shut down.")
	}
}

// TokenEmailChannel opens a channel bound to the token email queue, used
// by the notification worker.
func (deps *Deps) TokenEmailChannel() (*rabbitmq.Channel, error) {
	rabbitmqChannel, err := deps.Rabbitmq.Channel()
	if err != nil {
		return nil, err
	}
	queue := deps.Config.RabbitmqTokenEmailQueue
	if _, err := rabbitmqChannel.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return nil, err
	}
	return rabbitmqChannel, nil
}

func mustParseURL(raw string) url.URL {
	u, err := url.Parse(raw)
	if err != nil {
		panic(err)
	}
	return *u
}
