package events

type BidPlaced struct {
	BidID      string `json:"bid_id"`
	AccountID  string `json:"account_id"`
	MarketID   string `json:"market_id"`
	GameID     string `json:"game_id"`
	Number     int    `json:"number"`
	StakeCents int64  `json:"stake_cents"`
	Side       string `json:"side"` // OPEN | CLOSE
	TsUnixMs   int64  `json:"ts_unix_ms"`
}
