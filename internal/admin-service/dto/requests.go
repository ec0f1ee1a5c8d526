package dto

import "encoding/json"

type UpdateProfileRequest struct {
	AccountID string `json:"account_id"`

	// Campos opcionais: só os presentes são aplicados
	Betting       *bool   `json:"betting,omitempty"`
	Transfer      *bool   `json:"transfer,omitempty"`
	Active        *bool   `json:"active,omitempty"`
	BankName      *string `json:"bank_name,omitempty"`
	AccountHolder *string `json:"account_holder,omitempty"`
	AccountNumber *int64  `json:"account_number,omitempty"`
	IFSCCode      *string `json:"ifsc_code,omitempty"`
	PhonePayNo    *string `json:"phone_pay_no,omitempty"`
	GooglePayNo   *string `json:"google_pay_no,omitempty"`
	PaytmPayNo    *string `json:"paytm_pay_no,omitempty"`
}

type DecideTransactionRequest struct {
	EntryID  string `json:"entry_id"`
	Decision string `json:"decision"` // APPROVED | REJECTED
}

type AdjustmentRequest struct {
	AccountID   string `json:"account_id"`
	AmountCents int64  `json:"amount_cents"`
}

type CreateMarketRequest struct {
	Name     string          `json:"market_name"`
	Schedule json.RawMessage `json:"market_time,omitempty"`
}

type CreateGameRequest struct {
	Name          string `json:"game_name"`
	MinStakeCents int64  `json:"min_stake_cents"`
	MaxStakeCents int64  `json:"max_stake_cents"`
}

type SetStatusRequest struct {
	ID     string `json:"id"`
	Active bool   `json:"active"`
}

type DeclareResultRequest struct {
	MarketID   string `json:"market_id"`
	GameID     string `json:"game_id"`
	Side       string `json:"side"`        // OPEN | CLOSE
	ResultDate string `json:"result_date"` // YYYY-MM-DD
	WinNumber  int    `json:"win_number"`
}

type SettleRequest struct {
	MarketID   string `json:"market_id"`
	GameID     string `json:"game_id"`
	Side       string `json:"side"`
	ResultDate string `json:"result_date"`
}
