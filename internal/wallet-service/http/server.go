package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	crepo "github.com/radieske/numbers-bet-platform/internal/catalog/repo"
	"github.com/radieske/numbers-bet-platform/internal/ledger/repo"
	"github.com/radieske/numbers-bet-platform/internal/wallet-service/dto"
	"github.com/radieske/numbers-bet-platform/pkg/contracts/events"
)

// Ledger define as operações do core usadas pelo handler HTTP
type Ledger interface {
	GetAccount(ctx context.Context, accountID string) (*repo.Account, error)
	ListTransactions(ctx context.Context, accountID string) ([]repo.TransactionEntry, error)
	CreateAddRequest(ctx context.Context, accountID, reference string, amountCents int64) (string, error)
	CreateWithdrawRequest(ctx context.Context, accountID string, amountCents int64) (string, error)
	PlaceBid(ctx context.Context, accountID, marketID, gameID string, number int, stakeCents int64, side repo.Side) (string, int64, error)
	ListBids(ctx context.Context, accountID string) ([]repo.Bid, error)
}

// Catalog é consultado como pré-condição de aposta (normalmente via cache Redis)
type Catalog interface {
	GetMarket(ctx context.Context, id string) (*crepo.Market, error)
	GetGame(ctx context.Context, id string) (*crepo.Game, error)
}

type CatalogLister interface {
	ListMarkets(ctx context.Context) ([]crepo.Market, error)
	ListGames(ctx context.Context) ([]crepo.Game, error)
}

// Server expõe a API do usuário: carteira, extrato, pedidos e apostas
type Server struct {
	log     *zap.Logger
	ledger  Ledger
	catalog Catalog
	lister  CatalogLister
	publ    interface {
		PublishBidPlaced(context.Context, events.BidPlaced) error
	}
}

func NewServer(log *zap.Logger, l Ledger, c Catalog, cl CatalogLister, p interface {
	PublishBidPlaced(context.Context, events.BidPlaced) error
}) *Server {
	return &Server{log: log, ledger: l, catalog: c, lister: cl, publ: p}
}

// Router retorna o mux HTTP com as rotas da API do usuário.
// A identidade chega verificada pelo gateway no header X-User-ID.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/wallet", s.getWallet)                              // GET
	mux.HandleFunc("/wallet/transactions", s.listTransactions)          // GET
	mux.HandleFunc("/wallet/add-request", s.createAddRequest)           // POST
	mux.HandleFunc("/wallet/withdraw-request", s.createWithdrawRequest) // POST
	mux.HandleFunc("/bids", s.bids)                                     // POST | GET
	mux.HandleFunc("/markets", s.listMarkets)                           // GET
	mux.HandleFunc("/games", s.listGames)                               // GET
	return mux
}

// accountID extrai a identidade já autenticada; sem ela nada prossegue
func accountID(r *http.Request) string { return r.Header.Get("X-User-ID") }

func (s *Server) getWallet(w http.ResponseWriter, r *http.Request) {
	uid := accountID(r)
	if uid == "" {
		http.Error(w, "X-User-ID required", http.StatusUnauthorized)
		return
	}
	acc, err := s.ledger.GetAccount(r.Context(), uid)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, dto.WalletResponse{
		AccountID:    acc.ID,
		BalanceCents: acc.BalanceCents,
		Betting:      acc.Betting,
		Transfer:     acc.Transfer,
		Active:       acc.Active,
	})
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	uid := accountID(r)
	if uid == "" {
		http.Error(w, "X-User-ID required", http.StatusUnauthorized)
		return
	}
	entries, err := s.ledger.ListTransactions(r.Context(), uid)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	out := make([]dto.TransactionResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.TransactionResponse{
			ID:          e.ID,
			Reference:   e.Reference,
			Type:        string(e.Type),
			AmountCents: e.AmountCents,
			Status:      string(e.Status),
			CreatedAt:   e.CreatedAt,
			UpdatedAt:   e.UpdatedAt,
		})
	}
	writeJSON(w, out)
}

// createAddRequest registra o pedido de depósito; saldo só muda na aprovação
func (s *Server) createAddRequest(w http.ResponseWriter, r *http.Request) {
	uid := accountID(r)
	if uid == "" {
		http.Error(w, "X-User-ID required", http.StatusUnauthorized)
		return
	}
	var req dto.AddRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.TxnID == "" || req.AmountCents <= 0 {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	entryID, err := s.ledger.CreateAddRequest(r.Context(), uid, req.TxnID, req.AmountCents)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, dto.RequestCreatedResponse{EntryID: entryID, Status: "PENDING"})
}

func (s *Server) createWithdrawRequest(w http.ResponseWriter, r *http.Request) {
	uid := accountID(r)
	if uid == "" {
		http.Error(w, "X-User-ID required", http.StatusUnauthorized)
		return
	}
	var req dto.WithdrawRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.AmountCents <= 0 {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	entryID, err := s.ledger.CreateWithdrawRequest(r.Context(), uid, req.AmountCents)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, dto.RequestCreatedResponse{EntryID: entryID, Status: "PENDING"})
}

func (s *Server) bids(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.placeBid(w, r)
	case http.MethodGet:
		s.listBids(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// placeBid valida as pré-condições de catálogo e delega o débito + insert
// atômico ao ledger. Com fundos insuficientes nada é criado.
func (s *Server) placeBid(w http.ResponseWriter, r *http.Request) {
	uid := accountID(r)
	if uid == "" {
		http.Error(w, "X-User-ID required", http.StatusUnauthorized)
		return
	}
	var req dto.PlaceBidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.MarketID == "" || req.GameID == "" || req.StakeCents <= 0 {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	side, err := repo.ParseSide(req.Side)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Number < 0 || req.Number > 99 {
		http.Error(w, "number must be between 0 and 99", http.StatusBadRequest)
		return
	}

	// 1) Mercado precisa existir e estar aberto
	market, err := s.catalog.GetMarket(r.Context(), req.MarketID)
	if err != nil {
		http.Error(w, "market "+req.MarketID+" doesn't exist", http.StatusUnprocessableEntity)
		return
	}
	if !market.Active {
		http.Error(w, "market is closed", http.StatusConflict)
		return
	}

	// 2) Jogo precisa existir, estar ativo e aceitar a stake
	game, err := s.catalog.GetGame(r.Context(), req.GameID)
	if err != nil {
		http.Error(w, "game "+req.GameID+" doesn't exist", http.StatusUnprocessableEntity)
		return
	}
	if !game.Active {
		http.Error(w, "game is inactive", http.StatusConflict)
		return
	}
	if req.StakeCents < game.MinStakeCents || req.StakeCents > game.MaxStakeCents {
		http.Error(w, "stake out of game bounds", http.StatusUnprocessableEntity)
		return
	}

	// 3) Débito + aposta em uma transação
	bidID, newBalance, err := s.ledger.PlaceBid(r.Context(), uid, req.MarketID, req.GameID, req.Number, req.StakeCents, side)
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	// 4) Publica evento bid_placed (best effort; a aposta já está persistida)
	if err := s.publ.PublishBidPlaced(r.Context(), events.BidPlaced{
		BidID:      bidID,
		AccountID:  uid,
		MarketID:   req.MarketID,
		GameID:     req.GameID,
		Number:     req.Number,
		StakeCents: req.StakeCents,
		Side:       string(side),
	}); err != nil {
		s.log.Warn("publish bid_placed", zap.String("bidId", bidID), zap.Error(err))
	}

	writeJSONStatus(w, http.StatusCreated, dto.PlaceBidResponse{BidID: bidID, NewBalanceCents: newBalance})
}

func (s *Server) listBids(w http.ResponseWriter, r *http.Request) {
	uid := accountID(r)
	if uid == "" {
		http.Error(w, "X-User-ID required", http.StatusUnauthorized)
		return
	}
	bids, err := s.ledger.ListBids(r.Context(), uid)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	out := make([]dto.BidResponse, 0, len(bids))
	for _, b := range bids {
		out = append(out, dto.BidResponse{
			BidID:      b.ID,
			MarketID:   b.MarketID,
			GameID:     b.GameID,
			Number:     b.Number,
			StakeCents: b.StakeCents,
			Side:       string(b.Side),
			CreatedAt:  b.CreatedAt,
		})
	}
	writeJSON(w, out)
}

func (s *Server) listMarkets(w http.ResponseWriter, r *http.Request) {
	list, err := s.lister.ListMarkets(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	out := make([]dto.MarketResponse, 0, len(list))
	for _, m := range list {
		out = append(out, dto.MarketResponse{ID: m.ID, Name: m.Name, Active: m.Active})
	}
	writeJSON(w, out)
}

func (s *Server) listGames(w http.ResponseWriter, r *http.Request) {
	list, err := s.lister.ListGames(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	out := make([]dto.GameResponse, 0, len(list))
	for _, g := range list {
		out = append(out, dto.GameResponse{
			ID:            g.ID,
			Name:          g.Name,
			MinStakeCents: g.MinStakeCents,
			MaxStakeCents: g.MaxStakeCents,
			Active:        g.Active,
		})
	}
	writeJSON(w, out)
}

// writeLedgerError mapeia os erros estruturados do core pra status HTTP.
// StorageFailure genérico vira 500 e o cliente pode repetir com a mesma reference.
func writeLedgerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		http.Error(w, "account not found", http.StatusNotFound)
	case errors.Is(err, repo.ErrDuplicateReference):
		http.Error(w, "duplicate txn_id", http.StatusConflict)
	case errors.Is(err, repo.ErrInsufficientFunds):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, repo.ErrBettingDisabled):
		http.Error(w, "betting is disabled for this account", http.StatusForbidden)
	case errors.Is(err, repo.ErrInvalidTransition):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// writeJSON serializa e envia resposta JSON
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
