package app

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"

	config "github.com/DRSN-tech/seller-agent/internal/cfg"
	v1Http "github.com/DRSN-tech/seller-agent/internal/delivery/v1/http"
	"github.com/DRSN-tech/seller-agent/internal/infrastructure/kafka"
	minioInfra "github.com/DRSN-tech/seller-agent/internal/infrastructure/minio"
	"github.com/DRSN-tech/seller-agent/internal/infrastructure/openrouter"
	s3Repo "github.com/DRSN-tech/seller-agent/internal/repository/minio"
	"github.com/DRSN-tech/seller-agent/internal/repository/pgdb"
	pgdbConv "github.com/DRSN-tech/seller-agent/internal/repository/pgdb/converter"
	qdrantRepo "github.com/DRSN-tech/seller-agent/internal/repository/qdrant"
	"github.com/DRSN-tech/seller-agent/internal/repository/redis"
	redisConv "github.com/DRSN-tech/seller-agent/internal/repository/redis/converter"
	"github.com/DRSN-tech/seller-agent/internal/usecase"
	"github.com/DRSN-tech/seller-agent/pkg/clients"
	"github.com/DRSN-tech/seller-agent/pkg/closer"
	"github.com/DRSN-tech/seller-agent/pkg/e"
	"github.com/DRSN-tech/seller-agent/pkg/logger"
	"github.com/DRSN-tech/seller-agent/pkg/postgres"
)

const (
	initTimeout     = 10 * time.Second
	shutdownTimeout = 15 * time.Second
)

// App связывает все слои приложения и управляет их жизненным циклом.
type App struct {
	cfg    *config.Config
	logger logger.Logger

	httpSrv      *v1Http.Server
	outboxWorker *kafka.OutboxWorker
	closer       *closer.Closer

	appCtx    context.Context
	appCancel context.CancelFunc
}

func NewApp(cfg *config.Config, log logger.Logger) (*App, error) {
	appCtx, appCancel := context.WithCancel(context.Background())
	cl := closer.NewCloser(0)

	db, err := initPGDB(log, cfg)
	if err != nil {
		appCancel()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	cl.Add(func(ctx context.Context) error {
		db.Close()
		log.Infof("postgres pool closed")
		return nil
	})

	productRepo := pgdb.NewProductRepo(db.Pool, pgdbConv.ProductConverter{})
	sessionRepo := pgdb.NewSessionRepo(db.Pool, pgdbConv.ChatSessionConverter{})
	messageRepo := pgdb.NewMessageRepo(db.Pool, pgdbConv.ChatMessageConverter{})
	cartRepo := pgdb.NewCartRepo(db.Pool, pgdbConv.CartItemConverter{})
	outboxRepo := pgdb.NewOutboxEventRepo(db.Pool, pgdbConv.OutboxEventConverter{})

	minioClient, err := clients.NewMinIOClient(cfg.Minio)
	if err != nil {
		appCancel()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	minioCtx, minioCancel := context.WithTimeout(context.Background(), initTimeout)
	if err := clients.EnsureBucket(minioCtx, minioClient, cfg.Minio.BucketName); err != nil {
		minioCancel()
		appCancel()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	minioCancel()

	imageRepo := s3Repo.NewImageRepo(minioClient, cfg.Minio)
	imagesInfra := minioInfra.NewMinioInfrastructure(imageRepo, cfg.Minio, log, appCtx)
	cl.Add(func(ctx context.Context) error {
		return imagesInfra.WaitForCleanup(ctx)
	})

	qdrantClient, err := clients.NewQdrantClient(cfg.Qdrant)
	if err != nil {
		appCancel()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	qdrantCtx, qdrantCancel := context.WithTimeout(context.Background(), initTimeout)
	if err := clients.EnsureCollection(qdrantCtx, qdrantClient); err != nil {
		qdrantCancel()
		appCancel()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	qdrantCancel()
	cl.Add(func(ctx context.Context) error {
		return qdrantClient.Client.Close()
	})

	embRepo := qdrantRepo.NewEmbeddingRepo(qdrantClient.Client, cfg.Qdrant)

	redisClient := clients.NewRedisClient(cfg.Redis)
	redisCtx, redisCancel := context.WithTimeout(context.Background(), initTimeout)
	if err := redisClient.Ping(redisCtx); err != nil {
		redisCancel()
		appCancel()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	redisCancel()
	cl.Add(func(ctx context.Context) error {
		return redisClient.Client.Close()
	})

	cacheRepo := redis.NewCacheRepo(redisClient, redisConv.ProductInfoConverter{}, cfg.Redis, log)

	producer, err := kafka.NewProducer(log, cfg.Kafka)
	if err != nil {
		appCancel()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	if err := producer.EnsureTopic(initTimeout); err != nil {
		appCancel()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	cl.Add(func(ctx context.Context) error {
		return producer.Close()
	})

	providerClient := openrouter.NewClient(cfg.OpenRouter, log)
	chatInfra := openrouter.NewChatInfra(providerClient)

	productUC := usecase.NewProductUC(productRepo, outboxRepo, db.Pool, imagesInfra, cacheRepo, log)
	retrievalUC := usecase.NewRetrievalUC(productRepo, embRepo, providerClient, log)
	recommendationUC := usecase.NewRecommendationUC(
		retrievalUC,
		productUC,
		productRepo,
		chatInfra,
		log,
		rand.New(rand.NewSource(time.Now().UnixNano())),
	)
	chatUC := usecase.NewChatUC(sessionRepo, messageRepo, productUC, recommendationUC, db.Pool, producer, log)
	cartUC := usecase.NewCartUC(cartRepo, sessionRepo, productUC, log)

	outboxWorker := kafka.NewOutboxWorker(outboxRepo, log, producer, db.Dsn)

	r := chi.NewRouter()
	router := v1Http.NewRouter(r, log)
	router.Init(chatUC, productUC, cartUC, retrievalUC)

	httpSrv := v1Http.NewServer(r, cfg.Http)

	return &App{
		cfg:          cfg,
		logger:       log,
		httpSrv:      httpSrv,
		outboxWorker: outboxWorker,
		closer:       cl,
		appCtx:       appCtx,
		appCancel:    appCancel,
	}, nil
}

// Run запускает HTTP-сервер и outbox-воркер и блокируется до сигнала
// завершения или фатальной ошибки сервера. Ресурсы закрываются в порядке,
// обратном инициализации.
func (a *App) Run() error {
	a.outboxWorker.Start(a.appCtx)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Infof("HTTP server started on port %s", a.cfg.Http.Port)
		if err := a.httpSrv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	var appErr error
	select {
	case appErr = <-errCh:
		a.logger.Errorf(appErr, "HTTP server fatal error")
	case <-shutdown:
		a.logger.Infof("Received shutdown signal, stopping gracefully...")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := a.httpSrv.Stop(shutdownCtx); err != nil {
		a.logger.Errorf(err, "HTTP server shutdown error")
	} else {
		a.logger.Infof("HTTP server stopped")
	}

	a.appCancel()
	a.outboxWorker.Stop()

	if err := a.closer.Close(shutdownCtx); err != nil {
		a.logger.Errorf(err, "resource shutdown error")
	}

	a.logger.Infof("Application shutdown complete")
	return appErr
}

func initPGDB(logger logger.Logger, cfg *config.Config) (*postgres.PgDatabase, error) {
	db, err := postgres.Connect(cfg.Db)
	if err != nil {
		logger.Errorf(err, "failed to connect to database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.RunMigrations(logger); err != nil {
		logger.Errorf(err, "failed to run migrations")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.Ping(); err != nil {
		logger.Errorf(err, "failed to ping database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return db, nil
}
