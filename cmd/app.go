package cmd

import (
	"context"
	"fmt"

	"wagerledger/application"
	"wagerledger/config"
	"wagerledger/database"
	"wagerledger/domain/events"
	"wagerledger/domain/interfaces"
	"wagerledger/infrastructure"
	"wagerledger/infrastructure/observability"
	"wagerledger/repository"

	"github.com/bwmarrin/discordgo"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// App holds the wired components shared by the service and the debug shell
type App struct {
	Config      *config.Config
	DB          *database.DB
	Coordinator *application.WagerCoordinator

	natsClient *infrastructure.NATSClient
	redis      *redis.Client
	discord    *discordgo.Session
	refresh    *application.PresentationRefreshWorker
}

// NewApp connects to every configured backend and builds the coordinator
func NewApp(ctx context.Context) (*App, error) {
	cfg := config.Get()
	app := &App{Config: cfg}

	if err := observability.InitializeGlobalMetrics(ctx, cfg); err != nil {
		log.WithError(err).Warn("Failed to initialize metrics, continuing without them")
	}
	metrics := observability.GetMetrics()

	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db

	if err := database.RunMigrationsWithURL(cfg.GetDatabaseURL()); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	eventPublisher, err := app.connectEventPublisher(ctx, metrics)
	if err != nil {
		app.Close()
		return nil, err
	}

	uowFactory := infrastructure.NewUnitOfWorkFactory(db, eventPublisher)
	uowFactory.RegisterLocalHandler(events.EventTypeBalanceChange, func(ctx context.Context, event events.Event) error {
		if change, ok := event.(events.BalanceChangeEvent); ok {
			metrics.RecordBalanceTransaction(string(change.TransactionType))
		}
		return nil
	})

	presenter, err := app.connectPresenter()
	if err != nil {
		app.Close()
		return nil, err
	}

	notifier, err := app.connectNotifier(ctx, db, presenter, metrics)
	if err != nil {
		app.Close()
		return nil, err
	}

	app.Coordinator = application.NewWagerCoordinator(uowFactory, notifier, metrics)
	return app, nil
}

func (a *App) connectEventPublisher(ctx context.Context, metrics *observability.MetricsProvider) (interfaces.EventPublisher, error) {
	if a.Config.NATSServers == "" {
		log.Info("NATS_SERVERS not set, domain events stay in-process")
		return infrastructure.NewNoopEventPublisher(), nil
	}

	log.WithField("servers", a.Config.NATSServers).Info("Connecting to NATS...")
	client := infrastructure.NewNATSClient(a.Config.NATSServers)
	if err := client.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	a.natsClient = client

	mapper := infrastructure.NewEventSubjectMapper()
	if err := client.EnsureStream(infrastructure.DomainEventStream, mapper.GetAllSubjects()); err != nil {
		return nil, fmt.Errorf("failed to ensure event stream: %w", err)
	}

	return infrastructure.NewNATSEventPublisher(client, mapper, metrics), nil
}

func (a *App) connectPresenter() (interfaces.Presenter, error) {
	if a.Config.DiscordToken == "" {
		log.Info("DISCORD_TOKEN not set, wager views are logged")
		return infrastructure.NewLogPresenter(), nil
	}

	session, err := infrastructure.OpenDiscordSession(a.Config.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to open Discord session: %w", err)
	}
	a.discord = session
	return infrastructure.NewDiscordPresenter(session), nil
}

func (a *App) connectNotifier(
	ctx context.Context,
	db *database.DB,
	presenter interfaces.Presenter,
	metrics *observability.MetricsProvider,
) (interfaces.PresentationNotifier, error) {
	reader := repository.NewWagerSnapshotReader(db)

	if a.Config.RedisAddr == "" {
		return application.NewDirectNotifier(reader, presenter), nil
	}

	log.WithField("addr", a.Config.RedisAddr).Info("Connecting to Redis...")
	client, err := infrastructure.ConnectRedis(ctx, a.Config.RedisAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	a.redis = client

	queue := infrastructure.NewRedisRefreshQueue(client)
	a.refresh = application.NewPresentationRefreshWorker(queue, reader, presenter, metrics)
	return application.NewQueuedNotifier(queue), nil
}

// StartBackground starts the refresh worker when a queue is configured.
// The returned function stops it and waits for the last batch.
func (a *App) StartBackground(ctx context.Context) func() {
	if a.refresh == nil {
		return func() {}
	}
	return a.refresh.Start(ctx, a.Config.RefreshInterval)
}

// HealthChecks returns one check per connected backend
func (a *App) HealthChecks() map[string]infrastructure.HealthFunc {
	checks := map[string]infrastructure.HealthFunc{
		"database": func(ctx context.Context) error {
			return a.DB.Ping(ctx)
		},
	}
	if a.redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return a.redis.Ping(ctx).Err()
		}
	}
	if a.natsClient != nil {
		checks["nats"] = func(ctx context.Context) error {
			if !a.natsClient.IsConnected() {
				return fmt.Errorf("not connected")
			}
			return nil
		}
	}
	return checks
}

// Close releases every backend connection
func (a *App) Close() {
	if a.discord != nil {
		if err := a.discord.Close(); err != nil {
			log.WithError(err).Error("Error closing Discord session")
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			log.WithError(err).Error("Error closing Redis client")
		}
	}
	if a.natsClient != nil {
		if err := a.natsClient.Close(); err != nil {
			log.WithError(err).Error("Error closing NATS connection")
		}
	}
	if a.DB != nil {
		a.DB.Close()
	}
}
