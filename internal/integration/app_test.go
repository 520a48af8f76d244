package integration_test

import (
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/storefront/internal/app"
	"github.com/metinatakli/storefront/internal/mailer"
	"github.com/metinatakli/storefront/internal/payment"
	"github.com/metinatakli/storefront/internal/repository"
	appvalidator "github.com/metinatakli/storefront/internal/validator"
	"github.com/redis/go-redis/v9"
)

type TestApp struct {
	App             *app.Application
	DB              *pgxpool.Pool
	RedisClient     *redis.Client
	Mailer          *mailer.MockMailer
	PaymentProvider *payment.MockPaymentProvider
}

func newTestApp(cfg app.Config) (*TestApp, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	validator := appvalidator.NewValidator()
	mailer := mailer.NewMockMailer()

	db, err := app.NewDatabasePool(cfg)
	if err != nil {
		return nil, err
	}

	redisClient, err := app.NewRedisClient(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	sessionManager := app.NewSessionManager(redisClient)

	productRepo := repository.NewPostgresProductRepository(db)
	basketRepo := repository.NewRedisBasketRepository(redisClient, cfg.Checkout.BasketTTL)
	paymentRepo := repository.NewPostgresPaymentRepository(db)

	paymentProvider := payment.NewMockPaymentProvider()

	application := app.NewApp(
		cfg,
		logger,
		db,
		redisClient,
		validator,
		mailer,
		sessionManager,
		productRepo,
		basketRepo,
		paymentRepo,
		paymentProvider,
	)

	return &TestApp{
		App:             application,
		DB:              db,
		RedisClient:     redisClient,
		Mailer:          mailer,
		PaymentProvider: paymentProvider,
	}, nil
}
