package dto

import "time"

type WalletResponse struct {
	AccountID    string `json:"account_id"`
	BalanceCents int64  `json:"balance_cents"`
	Betting      bool   `json:"betting"`
	Transfer     bool   `json:"transfer"`
	Active       bool   `json:"active"`
}

type TransactionResponse struct {
	ID          string    `json:"id"`
	Reference   string    `json:"txn_id"`
	Type        string    `json:"txn_type"`
	AmountCents int64     `json:"amount_cents"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type RequestCreatedResponse struct {
	EntryID string `json:"entry_id"`
	Status  string `json:"status"` // PENDING
}

type PlaceBidResponse struct {
	BidID           string `json:"bid_id"`
	NewBalanceCents int64  `json:"new_balance_cents"`
}

type BidResponse struct {
	BidID      string    `json:"bid_id"`
	MarketID   string    `json:"market_id"`
	GameID     string    `json:"game_id"`
	Number     int       `json:"number"`
	StakeCents int64     `json:"stake_cents"`
	Side       string    `json:"side"`
	CreatedAt  time.Time `json:"created_at"`
}

type MarketResponse struct {
	ID     string `json:"id"`
	Name   string `json:"market_name"`
	Active bool   `json:"market_status"`
}

type GameResponse struct {
	ID            string `json:"id"`
	Name          string `json:"game_name"`
	MinStakeCents int64  `json:"min_stake_cents"`
	MaxStakeCents int64  `json:"max_stake_cents"`
	Active        bool   `json:"game_status"`
}
