package dto

import "time"

type AccountCreatedResponse struct {
	AccountID string `json:"account_id"`
}

type BalanceResponse struct {
	AccountID       string `json:"account_id"`
	NewBalanceCents int64  `json:"new_balance_cents"`
}

type CreatedResponse struct {
	ID string `json:"id"`
}

type SettlementResponse struct {
	ID         string    `json:"id"`
	MarketID   string    `json:"market_id"`
	GameID     string    `json:"game_id"`
	Side       string    `json:"side"`
	WinNumber  int       `json:"win_number"`
	ResultDate string    `json:"result_date"`
	Settled    bool      `json:"money_settled"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type WinnerResponse struct {
	BidID      string    `json:"bid_id"`
	AccountID  string    `json:"account_id"`
	Number     int       `json:"bid_number"`
	StakeCents int64     `json:"stake_cents"`
	Side       string    `json:"side"`
	CreatedAt  time.Time `json:"created_at"`
}
