package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/jmoiron/sqlx"
	goredis "github.com/redis/go-redis/v9"

	server "github.com/admin/tg-bots/dose-bot/internal/adapters/primary/http"
	healthcheckController "github.com/admin/tg-bots/dose-bot/internal/adapters/primary/http/controllers/healthcheck"
	telegramController "github.com/admin/tg-bots/dose-bot/internal/adapters/primary/http/controllers/telegram"
	kafkaConsumerAdapter "github.com/admin/tg-bots/dose-bot/internal/adapters/primary/kafka"
	kafkaHandlers "github.com/admin/tg-bots/dose-bot/internal/adapters/primary/kafka/handlers"
	alerterAdapter "github.com/admin/tg-bots/dose-bot/internal/adapters/secondary/alerter"
	kafkaAdapter "github.com/admin/tg-bots/dose-bot/internal/adapters/secondary/kafka"
	"github.com/admin/tg-bots/dose-bot/internal/adapters/secondary/psychonautwiki"
	"github.com/admin/tg-bots/dose-bot/internal/adapters/secondary/storage/inmemory"
	"github.com/admin/tg-bots/dose-bot/internal/adapters/secondary/storage/pg"
	redisAdapter "github.com/admin/tg-bots/dose-bot/internal/adapters/secondary/storage/redis"
	s3Adapter "github.com/admin/tg-bots/dose-bot/internal/adapters/secondary/storage/s3"
	tgAdapter "github.com/admin/tg-bots/dose-bot/internal/adapters/secondary/telegram"
	"github.com/admin/tg-bots/dose-bot/internal/domain"
	"github.com/admin/tg-bots/dose-bot/internal/ports/cache"
	"github.com/admin/tg-bots/dose-bot/internal/ports/command"
	kafkaPorts "github.com/admin/tg-bots/dose-bot/internal/ports/kafka"
	"github.com/admin/tg-bots/dose-bot/internal/ports/repository"
	"github.com/admin/tg-bots/dose-bot/internal/ports/service"
	doseLogRepo "github.com/admin/tg-bots/dose-bot/internal/repository/doselog"
	alerterService "github.com/admin/tg-bots/dose-bot/internal/services/alerter"
	"github.com/admin/tg-bots/dose-bot/internal/services/dispatcher"
	exportService "github.com/admin/tg-bots/dose-bot/internal/services/export"
	jobScheduler "github.com/admin/tg-bots/dose-bot/internal/services/jobs"
	"github.com/admin/tg-bots/dose-bot/internal/services/pagination"
	substanceService "github.com/admin/tg-bots/dose-bot/internal/services/substance"
	telegramService "github.com/admin/tg-bots/dose-bot/internal/services/telegram"
	doselogUsecase "github.com/admin/tg-bots/dose-bot/internal/usecases/doselog"
	infoUsecase "github.com/admin/tg-bots/dose-bot/internal/usecases/info"
	utilUsecase "github.com/admin/tg-bots/dose-bot/internal/usecases/util"
)

type Dependencies struct {
	HTTPServer      *http.Server
	TelegramService *telegramService.Service
	TelegramClient  *tgAdapter.Client
	TelegramPoller  *tgAdapter.Poller
	KafkaConsumer   *kafkaConsumerAdapter.Consumer
	JobScheduler    *jobScheduler.Scheduler

	// closers закрываются в обратном порядке при остановке
	closers []closer
}

type closer struct {
	name  string
	close func() error
}

func (d *Dependencies) onClose(name string, fn func() error) {
	d.closers = append(d.closers, closer{name: name, close: fn})
}

// initDependencies инициализирует все зависимости приложения
func (a *App) initDependencies(ctx context.Context) (deps *Dependencies, err error) {
	deps = &Dependencies{}
	defer func() {
		// частично поднятые соединения не должны утечь
		if err != nil {
			a.closeAll(deps)
		}
	}()

	if a.Cfg.Telegram.BotToken == "" {
		return deps, fmt.Errorf("telegram bot token is required")
	}

	tgClient := tgAdapter.NewClient(a.Cfg.Telegram.BotToken, a.Log)
	me, err := tgClient.GetMe(ctx)
	if err != nil {
		return deps, fmt.Errorf("failed to get bot identity: %w", err)
	}
	botUsername := ""
	if me.Username != nil {
		botUsername = *me.Username
	}
	a.Log.Info("telegram bot identified", "bot_id", me.ID, "username", botUsername)
	deps.TelegramClient = tgClient

	pingers := make(map[string]healthcheckController.Pinger)

	repo, err := a.initStore(ctx, deps, pingers)
	if err != nil {
		return deps, fmt.Errorf("failed to init store: %w", err)
	}

	redisClient, err := a.initRedis(ctx, deps, pingers)
	if err != nil {
		return deps, fmt.Errorf("failed to init redis: %w", err)
	}

	alerter := a.initAlerter(tgClient)

	responder := telegramService.NewResponder(tgClient, a.Log)
	paginationStore, sweeper := a.initPaginationStore(redisClient)
	paginator := pagination.New(paginationStore, responder, a.Cfg.Pagination.TTL, a.Log)

	exporter, err := a.initExporter(ctx)
	if err != nil {
		return deps, fmt.Errorf("failed to init exporter: %w", err)
	}

	var lookupCache cache.Cache
	if redisClient != nil {
		lookupCache = redisAdapter.NewClient(redisClient)
	}
	lookup := substanceService.New(
		psychonautwiki.NewClient(a.Cfg.PsychonautWiki, a.Log),
		lookupCache,
		a.Cfg.Bot.LookupCacheTTL,
		a.Log,
	)

	registry := dispatcher.NewRegistry()
	doseLog := doselogUsecase.New(repo, paginator, responder, exporter, doselogUsecase.Config{
		PageSize:       a.Cfg.Bot.PageSize,
		TimestampStyle: domain.TimestampStyle(a.Cfg.Bot.TimestampStyle),
		Location:       a.Cfg.Location(),
		StoreTimeout:   a.Cfg.Store.Timeout,
		ExportTimeout:  a.Cfg.Bot.ExportTimeout,
	}, a.Log)
	info := infoUsecase.New(lookup, responder, a.Cfg.Bot.LookupTimeout, a.Log)
	util := utilUsecase.New(registry, responder, utilUsecase.Links{
		InviteURL:  a.Cfg.Bot.InviteURL,
		SupportURL: a.Cfg.Bot.SupportURL,
	}, a.Log)
	if err := registerCommands(registry, doseLog, info, util); err != nil {
		return deps, err
	}

	dispatch := dispatcher.New(
		registry,
		telegramService.NewRoleResolver(tgClient, me.ID),
		responder,
		alerter,
		a.Log,
	)
	deps.TelegramService = telegramService.New(dispatch, paginator, tgClient, botUsername, a.Log)

	if err := tgClient.SetMyCommands(ctx, BotCommands(registry.DescribeAll())); err != nil {
		a.Log.Warn("failed to register bot commands", "error", err)
	}

	producer, err := a.initKafka(deps)
	if err != nil {
		return deps, fmt.Errorf("failed to init kafka: %w", err)
	}

	deps.HTTPServer = server.NewHTTPServer(a.Cfg.Server, a.Log,
		healthcheckController.New(pingers, a.Log),
		telegramController.New(deps.TelegramService, producer, a.Cfg.Telegram.WebhookSecret, a.Log),
	)

	if err := a.initTelegramMode(ctx, deps); err != nil {
		return deps, fmt.Errorf("failed to init telegram mode: %w", err)
	}

	deps.JobScheduler = jobScheduler.NewScheduler(a.Log, alerter)
	if sweeper != nil {
		deps.JobScheduler.Register(jobScheduler.NewPaginationSweeper(sweeper, a.Cfg.Pagination.SweepInterval, a.Log))
		a.Log.Info("pagination sweeper job registered")
	}

	return deps, nil
}

// initStore хранилище логов по STORE_DRIVER
func (a *App) initStore(
	ctx context.Context,
	deps *Dependencies,
	pingers map[string]healthcheckController.Pinger,
) (repository.IDoseLogRepo, error) {
	switch a.Cfg.Store.Driver {
	case StorePostgres:
		db, err := a.initPostgres(ctx)
		if err != nil {
			return nil, err
		}
		persistenceLayer := pg.NewDB(db)
		deps.onClose("postgres", persistenceLayer.Close)
		pingers["postgres"] = persistenceLayer
		return doseLogRepo.New(persistenceLayer, a.Log), nil

	case StoreMongo:
		client, err := a.Cfg.Mongo.NewConnection(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mongo: %w", err)
		}
		deps.onClose("mongo", func() error { return client.Disconnect(context.Background()) })
		a.Log.Info("mongo connected successfully", "database", a.Cfg.Mongo.Database)

		repo := doseLogRepo.NewMongo(client.Database(a.Cfg.Mongo.Database), a.Log)
		if err := repo.EnsureIndexes(ctx); err != nil {
			return nil, fmt.Errorf("failed to ensure mongo indexes: %w", err)
		}
		pingers["mongo"] = repo
		return repo, nil

	default:
		a.Log.Warn("in-memory store enabled - dose logs are lost on restart")
		return inmemory.NewDoseLogRepo(), nil
	}
}

// initRedis подключается, только если Redis нужен для пагинации
func (a *App) initRedis(ctx context.Context, deps *Dependencies, pingers map[string]healthcheckController.Pinger) (*goredis.Client, error) {
	if a.Cfg.Pagination.Driver != PaginationRedis {
		return nil, nil
	}

	client, err := a.Cfg.Redis.NewConnection(ctx)
	if err != nil {
		return nil, err
	}
	wrapped := redisAdapter.NewClient(client)
	deps.onClose("redis", wrapped.Close)
	pingers["redis"] = wrapped
	a.Log.Info("redis connected successfully")
	return client, nil
}

func (a *App) initPaginationStore(redisClient *goredis.Client) (cache.IPaginationStore, jobScheduler.Sweeper) {
	if redisClient != nil {
		return redisAdapter.NewPaginationStore(redisClient), nil
	}
	store := inmemory.NewPaginationStore()
	return store, store
}

// initAlerter nil, если чат для алертов не задан
func (a *App) initAlerter(tgClient *tgAdapter.Client) service.IAlerterService {
	client := alerterAdapter.NewClient(a.Cfg.Alerter, tgClient, a.Log)
	if client == nil {
		a.Log.Info("alerter not configured")
		return nil
	}
	return alerterService.New(client, a.Cfg.Bot.AlertCooldown)
}

// initExporter nil, если S3 не настроен: /log export ответит, что выгрузка недоступна
func (a *App) initExporter(ctx context.Context) (service.ILogExporter, error) {
	if !a.Cfg.S3.Enabled() {
		a.Log.Info("s3 not configured, log export disabled")
		return nil, nil
	}

	minioClient, err := a.Cfg.S3.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	a.Log.Info("s3 connected successfully", "bucket", a.Cfg.S3.Bucket)

	s3Client := s3Adapter.NewClient(minioClient, a.Cfg.S3.Bucket, a.Log)
	return exportService.New(s3Client, a.Cfg.S3.LinkTTL, a.Log), nil
}

// initKafka producer для вебхука и consumer, который отдаёт обновления в telegram service
func (a *App) initKafka(deps *Dependencies) (kafkaPorts.IKafkaProducer, error) {
	if !a.Cfg.Kafka.Enabled {
		return nil, nil
	}

	producer, err := kafkaAdapter.NewProducer(a.Cfg.Kafka, a.Log)
	if err != nil {
		return nil, err
	}
	deps.onClose("kafka producer", producer.Close)

	handler := kafkaHandlers.NewUpdatesHandler(deps.TelegramService, a.Log)
	consumer, err := kafkaConsumerAdapter.NewConsumer(a.Cfg.Kafka, handler, a.Log)
	if err != nil {
		return nil, err
	}
	deps.onClose("kafka consumer", consumer.Close)
	deps.KafkaConsumer = consumer

	return producer, nil
}

// initTelegramMode инициализирует режим работы Telegram (webhook или polling)
func (a *App) initTelegramMode(ctx context.Context, deps *Dependencies) error {
	a.Log.Info("telegram configuration",
		"use_webhook", a.Cfg.Telegram.IsWebhookEnabled(),
		"webhook_url", a.Cfg.Telegram.WebhookURL,
	)

	if a.Cfg.Telegram.IsWebhookEnabled() {
		webhookURL := strings.TrimSuffix(a.Cfg.Telegram.WebhookURL, "/") + "/webhook/"
		if err := deps.TelegramClient.SetWebhook(ctx, webhookURL, a.Cfg.Telegram.WebhookSecret); err != nil {
			return fmt.Errorf("failed to set webhook: %w", err)
		}
		a.Log.Info("webhook set successfully", "webhook_url", webhookURL)
		return nil
	}

	a.Log.Warn("polling mode enabled - this should only be used for local development")
	deps.TelegramPoller = tgAdapter.NewPoller(
		deps.TelegramClient,
		a.Cfg.Telegram,
		deps.TelegramService.HandleUpdate,
		a.Log,
	)
	return nil
}

// initPostgres подключение к PostgreSQL и миграции
func (a *App) initPostgres(ctx context.Context) (*sqlx.DB, error) {
	db, err := a.Cfg.Postgres.NewConnection(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	a.Log.Info("postgres connected successfully")

	if err := pg.RunMigrations(ctx, db, a.Log); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

func registerCommands(
	registry *dispatcher.Registry,
	doseLog *doselogUsecase.Service,
	info *infoUsecase.Service,
	util *utilUsecase.Service,
) error {
	cmds := []command.Command{doseLog.Command(), info.Command()}
	cmds = append(cmds, util.Commands()...)

	for _, cmd := range cmds {
		if err := registry.Register(cmd); err != nil {
			return fmt.Errorf("failed to register command %s: %w", cmd.Name, err)
		}
	}
	return nil
}

// Catalog описания команд без подключения к внешним системам (для dose-bot commands)
func Catalog() ([]domain.CommandDescriptor, error) {
	registry := dispatcher.NewRegistry()
	err := registerCommands(
		registry,
		doselogUsecase.New(nil, nil, nil, nil, doselogUsecase.Config{}, nil),
		infoUsecase.New(nil, nil, 0, nil),
		utilUsecase.New(registry, nil, utilUsecase.Links{}, nil),
	)
	if err != nil {
		return nil, err
	}
	return registry.DescribeAll(), nil
}

// BotCommands меню команд для setMyCommands
func BotCommands(descriptors []domain.CommandDescriptor) []domain.BotCommand {
	out := make([]domain.BotCommand, 0, len(descriptors))
	for _, desc := range descriptors {
		out = append(out, domain.BotCommand{Command: desc.Name, Description: desc.Description})
	}
	return out
}
