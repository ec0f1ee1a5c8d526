package main

import (
	"context"
	"encoding/json"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/numbers-bet-platform/internal/ledger/producer"
	lrepo "github.com/radieske/numbers-bet-platform/internal/ledger/repo"
	"github.com/radieske/numbers-bet-platform/internal/shared/config"
	"github.com/radieske/numbers-bet-platform/internal/shared/db"
	"github.com/radieske/numbers-bet-platform/internal/shared/kafka"
	"github.com/radieske/numbers-bet-platform/internal/shared/logger"
	"github.com/radieske/numbers-bet-platform/internal/shared/metrics"
	ev "github.com/radieske/numbers-bet-platform/pkg/contracts/events"
)

func main() {
	cfg := config.Load()
	log, err := logger.New("settlement-worker", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Conexão com o banco: o worker executa a liquidação direto no ledger
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg connect", zap.Error(err))
	}
	defer pg.Close()

	if err := lrepo.Migrate(pg); err != nil {
		log.Fatal("migrate", zap.Error(err))
	}

	ledger := lrepo.NewPostgres(pg, cfg.PayoutMultiplier)

	// Kafka consumer: pedidos de liquidação vindos do admin-service
	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicSettlementRequested, "settlement-worker")
	defer reader.Close()

	// Kafka producer: conclusões e, opcionalmente, DLQ
	completedWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicSettlementCompleted)
	defer completedWriter.Close()
	publ := &producer.SettlementEvents{Completed: completedWriter}

	var dlqWriter *kafka.Writer
	if cfg.TopicSettlementRequestedDLQ != "" {
		dlqWriter = kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicSettlementRequestedDLQ)
		defer dlqWriter.Close()
	}

	// Métricas Prometheus do worker
	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "settlement_messages_consumed_total", Help: "pedidos de liquidação consumidos"})
	settled := prometheus.NewCounter(prometheus.CounterOpts{Name: "settlement_runs_total", Help: "liquidações concluídas"})
	payouts := prometheus.NewCounter(prometheus.CounterOpts{Name: "settlement_payouts_total", Help: "apostas vencedoras creditadas"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "settlement_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, settled, payouts, errorsBy)

	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return pg.PingContext(ctx)
	})

	log.Info("settlement-worker started",
		zap.String("consume", cfg.TopicSettlementRequested),
		zap.String("publish", cfg.TopicSettlementCompleted),
	)

	ctx := context.Background()

	// Loop principal: consome pedidos, liquida, publica conclusão
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			log.Warn("kafka read", zap.Error(err))
			errorsBy.WithLabelValues("read").Inc()
			time.Sleep(time.Second)
			continue
		}
		consumed.Inc()

		var req ev.SettlementRequested
		if jerr := json.Unmarshal(msg.Value, &req); jerr != nil {
			log.Error("unmarshal settlement_requested", zap.Error(jerr))
			errorsBy.WithLabelValues("unmarshal").Inc()
			if dlqWriter != nil {
				_ = kafka.WriteJSON(ctx, dlqWriter, string(msg.Key), msg.Value)
			}
			continue
		}

		sum, err := processOne(ctx, log, ledger, publ, &req)
		if err != nil {
			log.Error("settle", zap.String("marketId", req.MarketID), zap.String("gameId", req.GameID), zap.Error(err))
			errorsBy.WithLabelValues("settle").Inc()
			if dlqWriter != nil {
				_ = kafka.WriteJSON(ctx, dlqWriter, string(msg.Key), msg.Value)
			}
			continue
		}
		settled.Inc()
		payouts.Add(float64(sum.WinnersCredited))
	}
}

// processOne executa uma liquidação com retry:
// 1. Roda o Settle (idempotente: créditos por bid id, flag re-checado)
// 2. Publica settlement_completed
// Retries cobrem falha transitória de storage; o retry é seguro porque
// créditos já aplicados são pulados pela reference.
func processOne(
	ctx context.Context,
	log *zap.Logger,
	ledger *lrepo.Postgres,
	publ *producer.SettlementEvents,
	req *ev.SettlementRequested,
) (lrepo.SettlementSummary, error) {
	side, err := lrepo.ParseSide(req.Side)
	if err != nil {
		return lrepo.SettlementSummary{}, err
	}

	var sum lrepo.SettlementSummary
	const retries = 3
	for i := 0; ; i++ {
		sum, err = ledger.Settle(ctx, req.MarketID, req.GameID, side, req.ResultDate)
		if err == nil {
			break
		}
		if i >= retries {
			return sum, err
		}
		time.Sleep(time.Duration(300*(i+1)) * time.Millisecond)
	}

	if sum.AlreadySettled {
		log.Info("settlement already done, skipping",
			zap.String("marketId", req.MarketID),
			zap.String("gameId", req.GameID),
			zap.String("side", req.Side),
			zap.String("resultDate", req.ResultDate),
		)
		return sum, nil
	}

	evc := ev.SettlementCompleted{
		MarketID:         req.MarketID,
		GameID:           req.GameID,
		Side:             req.Side,
		ResultDate:       req.ResultDate,
		WinNumber:        sum.WinNumber,
		WinnersCredited:  sum.WinnersCredited,
		TotalPayoutCents: sum.TotalPayoutCents,
	}
	if err := publ.PublishCompleted(ctx, evc); err != nil {
		// a liquidação já está persistida; só o evento falhou
		log.Warn("publish settlement_completed", zap.Error(err))
	}
	return sum, nil
}
