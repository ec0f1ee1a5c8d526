package main

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	ahttp "github.com/radieske/numbers-bet-platform/internal/admin-service/http"
	ccache "github.com/radieske/numbers-bet-platform/internal/catalog/cache"
	crepo "github.com/radieske/numbers-bet-platform/internal/catalog/repo"
	lrepo "github.com/radieske/numbers-bet-platform/internal/ledger/repo"
	"github.com/radieske/numbers-bet-platform/internal/ledger/producer"
	"github.com/radieske/numbers-bet-platform/internal/shared/cache"
	"github.com/radieske/numbers-bet-platform/internal/shared/config"
	"github.com/radieske/numbers-bet-platform/internal/shared/db"
	"github.com/radieske/numbers-bet-platform/internal/shared/kafka"
	"github.com/radieske/numbers-bet-platform/internal/shared/logger"
	"github.com/radieske/numbers-bet-platform/internal/shared/metrics"
)

func main() {
	cfg := config.Load()

	log, err := logger.New("admin-service", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("starting service", zap.String("env", cfg.Env))

	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	if err := lrepo.Migrate(pg); err != nil {
		log.Fatal("migrate", zap.Error(err))
	}

	rdb, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer rdb.Close()

	catalogRepo := crepo.NewPostgres(pg)
	catalogCache := ccache.NewCatalogCache(rdb, time.Duration(cfg.CatalogCacheTTLSeconds)*time.Second, catalogRepo)

	ledger := lrepo.NewPostgres(pg, cfg.PayoutMultiplier)

	// Producer Kafka: pedidos de liquidação consumidos pelo settlement-worker
	requestedWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicSettlementRequested)
	defer requestedWriter.Close()
	settleEvents := &producer.SettlementEvents{Requested: requestedWriter}

	api := ahttp.NewServer(log, ledger, catalogRepo, catalogCache, settleEvents)

	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return err
		}
		return rdb.Ping(ctx).Err()
	})

	apiSrv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: api.Router(),
	}

	log.Info("api listening", zap.String("addr", apiSrv.Addr))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api srv", zap.Error(err))
	}
}
