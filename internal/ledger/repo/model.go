package repo

import (
	"fmt"
	"time"
)

// TxnType classifica o motivo de cada lançamento no extrato
type TxnType string

const (
	TxnAddRequest      TxnType = "ADD_REQUEST"
	TxnWithdrawRequest TxnType = "WITHDRAW_REQUEST"
	TxnBidPlaced       TxnType = "BID_PLACED"
	TxnWinnings        TxnType = "WINNINGS"
	TxnAdminAdjustment TxnType = "ADMIN_ADJUSTMENT"
)

// TxnStatus é o ciclo de vida de um lançamento: PENDING -> APPROVED | REJECTED
type TxnStatus string

const (
	StatusPending  TxnStatus = "PENDING"
	StatusApproved TxnStatus = "APPROVED"
	StatusRejected TxnStatus = "REJECTED"
)

// Side é a janela do sorteio diário
type Side string

const (
	SideOpen  Side = "OPEN"
	SideClose Side = "CLOSE"
)

// ParseSide valida o lado na borda da API; qualquer outro valor é rejeitado
func ParseSide(s string) (Side, error) {
	switch Side(s) {
	case SideOpen, SideClose:
		return Side(s), nil
	}
	return "", fmt.Errorf("invalid side %q (want OPEN or CLOSE)", s)
}

// ParseDecision aceita apenas os estados terminais de um pedido pendente
func ParseDecision(s string) (TxnStatus, error) {
	switch TxnStatus(s) {
	case StatusApproved, StatusRejected:
		return TxnStatus(s), nil
	}
	return "", fmt.Errorf("invalid decision %q (want APPROVED or REJECTED)", s)
}

// Account é o modelo persistido no Postgres.
// O saldo nunca é escrito fora de ApplyDelta / dos fluxos transacionais deste pacote.
type Account struct {
	ID            string
	BalanceCents  int64
	Betting       bool
	Transfer      bool
	Active        bool
	BankName      string
	AccountHolder string
	AccountNumber int64
	IFSCCode      string
	PhonePayNo    string
	GooglePayNo   string
	PaytmPayNo    string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ProfilePatch atualiza apenas os campos presentes (ponteiro != nil)
type ProfilePatch struct {
	Betting       *bool
	Transfer      *bool
	Active        *bool
	BankName      *string
	AccountHolder *string
	AccountNumber *int64
	IFSCCode      *string
	PhonePayNo    *string
	GooglePayNo   *string
	PaytmPayNo    *string
}

type TransactionEntry struct {
	ID          string
	AccountID   string
	Reference   string // txn_id externo, chave de idempotência
	Type        TxnType
	AmountCents int64
	Status      TxnStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Bid é imutável após a criação; o lançamento BID_PLACED ligado a ele usa
// o próprio id do bid como reference.
type Bid struct {
	ID         string
	AccountID  string
	MarketID   string
	GameID     string
	Number     int
	StakeCents int64
	Side       Side
	CreatedAt  time.Time
}

type SettlementRecord struct {
	ID         string
	MarketID   string
	GameID     string
	Side       Side
	WinNumber  int
	ResultDate string // YYYY-MM-DD
	Settled    bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// SettlementSummary é o resultado de uma rodada de liquidação
type SettlementSummary struct {
	WinNumber        int
	WinnersCredited  int
	TotalPayoutCents int64
	AlreadySettled   bool
}
