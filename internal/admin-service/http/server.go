package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/numbers-bet-platform/internal/admin-service/dto"
	crepo "github.com/radieske/numbers-bet-platform/internal/catalog/repo"
	"github.com/radieske/numbers-bet-platform/internal/ledger/repo"
	"github.com/radieske/numbers-bet-platform/pkg/contracts/events"
)

// Ledger define as operações do core usadas pela superfície admin
type Ledger interface {
	CreateAccount(ctx context.Context) (string, error)
	UpdateProfile(ctx context.Context, accountID string, patch repo.ProfilePatch) error
	DecideRequest(ctx context.Context, entryID string, decision repo.TxnStatus) (int64, error)
	AdminAdjust(ctx context.Context, accountID string, signedCents int64) (int64, error)
	DeclareResult(ctx context.Context, marketID, gameID string, side repo.Side, resultDate string, winNumber int) (string, error)
	DeleteDeclaration(ctx context.Context, recordID string) error
	ListSettlements(ctx context.Context) ([]repo.SettlementRecord, error)
	ListWinners(ctx context.Context, marketID, gameID string, side repo.Side, resultDate string) ([]repo.Bid, error)
}

// Catalog cobre o CRUD de mercados/jogos do painel
type Catalog interface {
	CreateMarket(ctx context.Context, name string, schedule []byte) (string, error)
	CreateGame(ctx context.Context, name string, minStakeCents, maxStakeCents int64) (string, error)
	GetMarket(ctx context.Context, id string) (*crepo.Market, error)
	GetGame(ctx context.Context, id string) (*crepo.Game, error)
	SetMarketStatus(ctx context.Context, id string, active bool) error
	SetGameStatus(ctx context.Context, id string, active bool) error
}

// Invalidator derruba as chaves de catálogo no Redis após mudança de status
type Invalidator interface {
	InvalidateMarket(ctx context.Context, id string)
	InvalidateGame(ctx context.Context, id string)
}

// Server expõe a superfície do operador. A autenticação de admin fica no
// gateway; aqui a identidade já chega confiável.
type Server struct {
	log     *zap.Logger
	ledger  Ledger
	catalog Catalog
	inval   Invalidator
	publ    interface {
		PublishRequested(context.Context, events.SettlementRequested) error
	}
}

func NewServer(log *zap.Logger, l Ledger, c Catalog, inv Invalidator, p interface {
	PublishRequested(context.Context, events.SettlementRequested) error
}) *Server {
	return &Server{log: log, ledger: l, catalog: c, inval: inv, publ: p}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/accounts", s.createAccount)           // POST
	mux.HandleFunc("/accounts/profile", s.updateProfile)   // POST
	mux.HandleFunc("/transactions/decide", s.decide)       // POST
	mux.HandleFunc("/wallet/add", s.addMoney)              // POST
	mux.HandleFunc("/wallet/remove", s.removeMoney)        // POST
	mux.HandleFunc("/markets", s.createMarket)             // POST
	mux.HandleFunc("/markets/status", s.setMarketStatus)   // POST
	mux.HandleFunc("/games", s.createGame)                 // POST
	mux.HandleFunc("/games/status", s.setGameStatus)       // POST
	mux.HandleFunc("/winnings/declare", s.declareResult)   // POST
	mux.HandleFunc("/winnings/settle", s.requestSettle)    // POST (202)
	mux.HandleFunc("/winnings/winners", s.listWinners)     // GET
	mux.HandleFunc("/winnings", s.winnings)                // GET | DELETE
	return mux
}

func (s *Server) createAccount(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id, err := s.ledger.CreateAccount(r.Context())
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, dto.AccountCreatedResponse{AccountID: id})
}

// updateProfile aplica só os campos enviados (presença via ponteiro)
func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.AccountID == "" {
		http.Error(w, "account_id required", http.StatusBadRequest)
		return
	}
	patch := repo.ProfilePatch{
		Betting:       req.Betting,
		Transfer:      req.Transfer,
		Active:        req.Active,
		BankName:      req.BankName,
		AccountHolder: req.AccountHolder,
		AccountNumber: req.AccountNumber,
		IFSCCode:      req.IFSCCode,
		PhonePayNo:    req.PhonePayNo,
		GooglePayNo:   req.GooglePayNo,
		PaytmPayNo:    req.PaytmPayNo,
	}
	if err := s.ledger.UpdateProfile(r.Context(), req.AccountID, patch); err != nil {
		writeLedgerError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"updated"}`))
}

// decide aprova/rejeita um pedido pendente; o retry da mesma decisão
// responde 409 sem tocar o saldo de novo.
func (s *Server) decide(w http.ResponseWriter, r *http.Request) {
	var req dto.DecideTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	decision, err := repo.ParseDecision(req.Decision)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.EntryID == "" {
		http.Error(w, "entry_id required", http.StatusBadRequest)
		return
	}
	if _, err := s.ledger.DecideRequest(r.Context(), req.EntryID, decision); err != nil {
		writeLedgerError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"` + string(decision) + `"}`))
}

func (s *Server) addMoney(w http.ResponseWriter, r *http.Request) {
	s.adjust(w, r, +1)
}

func (s *Server) removeMoney(w http.ResponseWriter, r *http.Request) {
	s.adjust(w, r, -1)
}

func (s *Server) adjust(w http.ResponseWriter, r *http.Request, sign int64) {
	var req dto.AdjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.AccountID == "" || req.AmountCents <= 0 {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	newBalance, err := s.ledger.AdminAdjust(r.Context(), req.AccountID, sign*req.AmountCents)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, dto.BalanceResponse{AccountID: req.AccountID, NewBalanceCents: newBalance})
}

func (s *Server) createMarket(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateMarketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "market_name required", http.StatusBadRequest)
		return
	}
	id, err := s.catalog.CreateMarket(r.Context(), req.Name, req.Schedule)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSONStatus(w, http.StatusCreated, dto.CreatedResponse{ID: id})
}

func (s *Server) createGame(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.MinStakeCents <= 0 || req.MaxStakeCents < req.MinStakeCents {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	id, err := s.catalog.CreateGame(r.Context(), req.Name, req.MinStakeCents, req.MaxStakeCents)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSONStatus(w, http.StatusCreated, dto.CreatedResponse{ID: id})
}

func (s *Server) setMarketStatus(w http.ResponseWriter, r *http.Request) {
	var req dto.SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if err := s.catalog.SetMarketStatus(r.Context(), req.ID, req.Active); err != nil {
		writeCatalogError(w, err)
		return
	}
	s.inval.InvalidateMarket(r.Context(), req.ID)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"updated"}`))
}

func (s *Server) setGameStatus(w http.ResponseWriter, r *http.Request) {
	var req dto.SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if err := s.catalog.SetGameStatus(r.Context(), req.ID, req.Active); err != nil {
		writeCatalogError(w, err)
		return
	}
	s.inval.InvalidateGame(r.Context(), req.ID)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"updated"}`))
}

// declareResult registra o número vencedor; chave repetida responde 409
func (s *Server) declareResult(w http.ResponseWriter, r *http.Request) {
	var req dto.DeclareResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	side, resultDate, ok := s.validateDrawKey(w, r, req.MarketID, req.GameID, req.Side, req.ResultDate)
	if !ok {
		return
	}
	if req.WinNumber < 0 || req.WinNumber > 99 {
		http.Error(w, "win_number must be between 0 and 99", http.StatusBadRequest)
		return
	}
	id, err := s.ledger.DeclareResult(r.Context(), req.MarketID, req.GameID, side, resultDate, req.WinNumber)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, dto.CreatedResponse{ID: id})
}

// requestSettle publica settlement_requested e responde 202; quem executa
// a liquidação é o settlement-worker.
func (s *Server) requestSettle(w http.ResponseWriter, r *http.Request) {
	var req dto.SettleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	side, resultDate, ok := s.validateDrawKey(w, r, req.MarketID, req.GameID, req.Side, req.ResultDate)
	if !ok {
		return
	}
	err := s.publ.PublishRequested(r.Context(), events.SettlementRequested{
		MarketID:   req.MarketID,
		GameID:     req.GameID,
		Side:       string(side),
		ResultDate: resultDate,
	})
	if err != nil {
		s.log.Error("publish settlement_requested", zap.Error(err))
		http.Error(w, "failed to enqueue settlement", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusAccepted)
	_, _ = w.Write([]byte(`{"status":"SETTLEMENT_REQUESTED"}`))
}

func (s *Server) winnings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listSettlements(w, r)
	case http.MethodDelete:
		s.deleteDeclaration(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) listSettlements(w http.ResponseWriter, r *http.Request) {
	list, err := s.ledger.ListSettlements(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	out := make([]dto.SettlementResponse, 0, len(list))
	for _, rec := range list {
		out = append(out, dto.SettlementResponse{
			ID:         rec.ID,
			MarketID:   rec.MarketID,
			GameID:     rec.GameID,
			Side:       string(rec.Side),
			WinNumber:  rec.WinNumber,
			ResultDate: rec.ResultDate,
			Settled:    rec.Settled,
			CreatedAt:  rec.CreatedAt,
			UpdatedAt:  rec.UpdatedAt,
		})
	}
	writeJSON(w, out)
}

func (s *Server) deleteDeclaration(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "id required", http.StatusBadRequest)
		return
	}
	if err := s.ledger.DeleteDeclaration(r.Context(), id); err != nil {
		writeLedgerError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"deleted"}`))
}

func (s *Server) listWinners(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	side, resultDate, ok := s.validateDrawKey(w, r, q.Get("market_id"), q.Get("game_id"), q.Get("side"), q.Get("result_date"))
	if !ok {
		return
	}
	winners, err := s.ledger.ListWinners(r.Context(), q.Get("market_id"), q.Get("game_id"), side, resultDate)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	out := make([]dto.WinnerResponse, 0, len(winners))
	for _, b := range winners {
		out = append(out, dto.WinnerResponse{
			BidID:      b.ID,
			AccountID:  b.AccountID,
			Number:     b.Number,
			StakeCents: b.StakeCents,
			Side:       string(b.Side),
			CreatedAt:  b.CreatedAt,
		})
	}
	writeJSON(w, out)
}

// validateDrawKey valida a chave (mercado, jogo, lado, data) usada por
// declaração, liquidação e listagem de vencedores. Mercado e jogo precisam
// existir no catálogo.
func (s *Server) validateDrawKey(w http.ResponseWriter, r *http.Request, marketID, gameID, rawSide, rawDate string) (repo.Side, string, bool) {
	if marketID == "" || gameID == "" {
		http.Error(w, "market_id and game_id required", http.StatusBadRequest)
		return "", "", false
	}
	side, err := repo.ParseSide(rawSide)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return "", "", false
	}
	t, err := time.Parse("2006-01-02", rawDate)
	if err != nil {
		http.Error(w, "result_date must be YYYY-MM-DD", http.StatusBadRequest)
		return "", "", false
	}
	if _, err := s.catalog.GetMarket(r.Context(), marketID); err != nil {
		http.Error(w, "market "+marketID+" doesn't exist", http.StatusUnprocessableEntity)
		return "", "", false
	}
	if _, err := s.catalog.GetGame(r.Context(), gameID); err != nil {
		http.Error(w, "game "+gameID+" doesn't exist", http.StatusUnprocessableEntity)
		return "", "", false
	}
	return side, t.Format("2006-01-02"), true
}

func writeLedgerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, repo.ErrDuplicateReference), errors.Is(err, repo.ErrDuplicateDeclaration):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, repo.ErrInvalidTransition), errors.Is(err, repo.ErrAlreadySettled):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, repo.ErrInsufficientFunds):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeCatalogError(w http.ResponseWriter, err error) {
	if errors.Is(err, crepo.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
