package dto

type AddRequestRequest struct {
	TxnID       string `json:"txn_id"` // comprovante externo; chave de idempotência
	AmountCents int64  `json:"amount_cents"`
}

type WithdrawRequestRequest struct {
	AmountCents int64 `json:"amount_cents"`
}

type PlaceBidRequest struct {
	MarketID   string `json:"market_id"`
	GameID     string `json:"game_id"`
	Number     int    `json:"number"`
	StakeCents int64  `json:"stake_cents"`
	Side       string `json:"side"` // OPEN | CLOSE
}
