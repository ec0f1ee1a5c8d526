package events

import "time"

// SettlementRequested é publicado pelo admin-service quando o operador
// dispara a liquidação de um resultado já declarado.
type SettlementRequested struct {
	MarketID   string `json:"market_id"`
	GameID     string `json:"game_id"`
	Side       string `json:"side"`        // OPEN | CLOSE
	ResultDate string `json:"result_date"` // YYYY-MM-DD
	TsUnixMs   int64  `json:"ts_unix_ms"`
}

// SettlementCompleted é publicado pelo settlement-worker após creditar os vencedores.
type SettlementCompleted struct {
	MarketID         string    `json:"market_id"`
	GameID           string    `json:"game_id"`
	Side             string    `json:"side"`
	ResultDate       string    `json:"result_date"`
	WinNumber        int       `json:"win_number"`
	WinnersCredited  int       `json:"winners_credited"`
	TotalPayoutCents int64     `json:"total_payout_cents"`
	Ts               time.Time `json:"ts"`
}
