package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/radieske/numbers-bet-platform/pkg/contracts/events"
)

// BidEvents publica eventos de aposta; o writer já vem ligado ao tópico
type BidEvents struct {
	Writer *kafka.Writer
}

func NewBidEvents(w *kafka.Writer) *BidEvents { return &BidEvents{Writer: w} }

func (p *BidEvents) PublishBidPlaced(ctx context.Context, e events.BidPlaced) error {
	e.TsUnixMs = time.Now().UnixMilli()
	b, _ := json.Marshal(e)
	return p.Writer.WriteMessages(ctx, kafka.Message{Key: []byte(e.BidID), Value: b})
}

// SettlementEvents publica pedidos e conclusões de liquidação
type SettlementEvents struct {
	Requested *kafka.Writer
	Completed *kafka.Writer
}

func (p *SettlementEvents) PublishRequested(ctx context.Context, e events.SettlementRequested) error {
	e.TsUnixMs = time.Now().UnixMilli()
	b, _ := json.Marshal(e)
	key := e.MarketID + ":" + e.GameID + ":" + e.Side + ":" + e.ResultDate
	return p.Requested.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: b})
}

func (p *SettlementEvents) PublishCompleted(ctx context.Context, e events.SettlementCompleted) error {
	e.Ts = time.Now()
	b, _ := json.Marshal(e)
	key := e.MarketID + ":" + e.GameID + ":" + e.Side + ":" + e.ResultDate
	return p.Completed.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: b})
}
