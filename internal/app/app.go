package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/caixa-terminal/internal/domain"
	cozinhagw "github.com/vladislavdragonenkov/caixa-terminal/internal/gateway/cozinha"
	"github.com/vladislavdragonenkov/caixa-terminal/internal/gateway/pedido"
	healthcheck "github.com/vladislavdragonenkov/caixa-terminal/internal/health"
	"github.com/vladislavdragonenkov/caixa-terminal/internal/httpapi"
	"github.com/vladislavdragonenkov/caixa-terminal/internal/metrics"
	"github.com/vladislavdragonenkov/caixa-terminal/internal/service/caixa"
	"github.com/vladislavdragonenkov/caixa-terminal/internal/service/cozinha"
	"github.com/vladislavdragonenkov/caixa-terminal/internal/storage/memory"
	"github.com/vladislavdragonenkov/caixa-terminal/internal/storage/postgres"
	"github.com/vladislavdragonenkov/caixa-terminal/internal/storage/redisstore"
	"github.com/vladislavdragonenkov/caixa-terminal/internal/version"
)

// Run собирает зависимости терминала и держит HTTP сервер до отмены ctx.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	orderClient, err := pedido.NewClient(cfg.Upstream.BaseURL, log.WithField("component", "pedido-gateway"))
	if err != nil {
		return err
	}
	kitchenClient, err := cozinhagw.NewClient(cfg.Upstream.BaseURL, log.WithField("component", "cozinha-gateway"))
	if err != nil {
		return err
	}

	// Получаем CSRF cookie до первой отправки заказа.
	if err := orderClient.Prime(ctx); err != nil {
		logger.WithError(err).Warn("failed to prime csrf cookie, orders will retry without it")
	}

	var (
		mirror      domain.MirrorStore
		redisMirror *redisstore.MirrorStore
	)
	switch cfg.Mirror.Backend {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Mirror.Redis.Addr,
			Password: cfg.Mirror.Redis.Password,
			DB:       cfg.Mirror.Redis.DB,
		})
		redisMirror = redisstore.NewMirrorStore(rdb)
		mirror = redisMirror
		logger.WithField("addr", cfg.Mirror.Redis.Addr).Info("cart mirror backed by redis")
	default:
		mirror = memory.NewMirrorStore()
	}

	var (
		journal domain.JournalRepository
		pgStore *postgres.Store
	)
	switch cfg.Journal.Backend {
	case "postgres":
		pgStore, err = postgres.Open(ctx, cfg.Journal.Postgres.DSN)
		if err != nil {
			return err
		}
		journal = postgres.NewJournalRepository(pgStore)
		logger.Info("order journal backed by postgres")
	default:
		journal = memory.NewJournalRepository()
	}

	// Kafka опционален: без brokers терминал работает автономно.
	producer, _ := initKafkaProducer(cfg.Kafka.Brokers, logger)

	caixaMetrics := metrics.NewCaixaMetrics()

	controllerOptions := []caixa.Option{
		caixa.WithJournal(journal),
		caixa.WithMetrics(caixaMetrics),
		caixa.WithLogger(log.WithField("component", "caixa-controller")),
	}
	if producer != nil {
		controllerOptions = append(controllerOptions, caixa.WithEvents(producer))
	}
	controller := caixa.NewController(mirror, orderClient, controllerOptions...)

	poller := cozinha.NewPoller(kitchenClient,
		cozinha.WithPollInterval(cfg.Kitchen.PollInterval),
		cozinha.WithMetrics(caixaMetrics),
		cozinha.WithLogger(log.WithField("component", "cozinha-poller")),
	)

	handler := httpapi.NewHandler(controller, poller, journal, log.WithField("component", "httpapi"))

	// Cardápio забирается на старте; сервер столовой недоступен —
	// терминал поднимается с пустым каталогом.
	if products, fetchErr := orderClient.FetchProducts(ctx); fetchErr != nil {
		logger.WithError(fetchErr).Warn("failed to fetch cardapio on startup")
	} else {
		handler.SetProducts(products)
		logger.WithField("count", len(products)).Info("cardapio loaded")
	}

	healthHandler := healthcheck.NewHandler(version.GetVersion())
	healthHandler.Register("upstream", orderClient.Ping)
	if redisMirror != nil {
		healthHandler.Register("mirror", redisMirror.Ping)
	}
	if pgStore != nil {
		healthHandler.Register("journal", pgStore.Ping)
	}

	router := httpapi.NewRouter(handler, healthHandler, prometheus.DefaultGatherer, log.WithField("component", "http"))

	srv := &http.Server{
		Addr:         cfg.App.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go poller.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("HTTP сервер слушает %s", cfg.App.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	closeResources := func() {
		closeKafka(producer, logger)
		if pgStore != nil {
			if closeErr := pgStore.Close(); closeErr != nil {
				logger.WithError(closeErr).Warn("failed to close postgres store")
			}
		}
	}

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем HTTP сервер")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
			logger.WithError(shutdownErr).Warn("graceful shutdown превысил таймаут")
		}
		closeResources()
		return ctx.Err()
	case err := <-errCh:
		closeResources()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
