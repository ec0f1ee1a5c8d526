package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	crepo "github.com/radieske/numbers-bet-platform/internal/catalog/repo"
	"github.com/radieske/numbers-bet-platform/internal/ledger/repo"
	"github.com/radieske/numbers-bet-platform/internal/wallet-service/dto"
	"github.com/radieske/numbers-bet-platform/pkg/contracts/events"
)

// fakeLedger implementa Ledger em memória, sem Postgres.
// Cada teste configura só o que o handler sob teste usa.
type fakeLedger struct {
	account *repo.Account
	entries []repo.TransactionEntry
	bids    []repo.Bid
	balance int64
	err     error
}

func (f *fakeLedger) GetAccount(ctx context.Context, accountID string) (*repo.Account, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.account, nil
}

func (f *fakeLedger) ListTransactions(ctx context.Context, accountID string) ([]repo.TransactionEntry, error) {
	return f.entries, f.err
}

func (f *fakeLedger) CreateAddRequest(ctx context.Context, accountID, reference string, amountCents int64) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "entry-1", nil
}

func (f *fakeLedger) CreateWithdrawRequest(ctx context.Context, accountID string, amountCents int64) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "entry-2", nil
}

func (f *fakeLedger) PlaceBid(ctx context.Context, accountID, marketID, gameID string, number int, stakeCents int64, side repo.Side) (string, int64, error) {
	if f.err != nil {
		return "", 0, f.err
	}
	return "bid-1", f.balance - stakeCents, nil
}

func (f *fakeLedger) ListBids(ctx context.Context, accountID string) ([]repo.Bid, error) {
	return f.bids, f.err
}

type fakeCatalog struct {
	market *crepo.Market
	game   *crepo.Game
}

func (f *fakeCatalog) GetMarket(ctx context.Context, id string) (*crepo.Market, error) {
	if f.market == nil {
		return nil, crepo.ErrNotFound
	}
	return f.market, nil
}

func (f *fakeCatalog) GetGame(ctx context.Context, id string) (*crepo.Game, error) {
	if f.game == nil {
		return nil, crepo.ErrNotFound
	}
	return f.game, nil
}

func (f *fakeCatalog) ListMarkets(ctx context.Context) ([]crepo.Market, error) {
	if f.market == nil {
		return nil, nil
	}
	return []crepo.Market{*f.market}, nil
}

func (f *fakeCatalog) ListGames(ctx context.Context) ([]crepo.Game, error) {
	if f.game == nil {
		return nil, nil
	}
	return []crepo.Game{*f.game}, nil
}

type fakePublisher struct {
	published []events.BidPlaced
	err       error
}

func (f *fakePublisher) PublishBidPlaced(ctx context.Context, e events.BidPlaced) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, e)
	return nil
}

func newTestServer(l *fakeLedger, c *fakeCatalog, p *fakePublisher) *Server {
	return NewServer(zap.NewNop(), l, c, c, p)
}

func openCatalog() *fakeCatalog {
	return &fakeCatalog{
		market: &crepo.Market{ID: "m1", Name: "morning", Active: true},
		game:   &crepo.Game{ID: "g1", Name: "single", MinStakeCents: 100, MaxStakeCents: 100000, Active: true},
	}
}

func doReq(t *testing.T, srv *Server, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestGetWallet(t *testing.T) {
	l := &fakeLedger{account: &repo.Account{ID: "u1", BalanceCents: 4200, Betting: true, Active: true}}
	srv := newTestServer(l, openCatalog(), &fakePublisher{})

	rec := doReq(t, srv, http.MethodGet, "/wallet", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.WalletResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "u1", resp.AccountID)
	require.EqualValues(t, 4200, resp.BalanceCents)
	require.True(t, resp.Betting)
}

func TestGetWalletRequiresIdentity(t *testing.T) {
	srv := newTestServer(&fakeLedger{}, openCatalog(), &fakePublisher{})

	rec := doReq(t, srv, http.MethodGet, "/wallet", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetWalletNotFound(t *testing.T) {
	l := &fakeLedger{err: repo.ErrNotFound}
	srv := newTestServer(l, openCatalog(), &fakePublisher{})

	rec := doReq(t, srv, http.MethodGet, "/wallet", "ghost", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateAddRequest(t *testing.T) {
	srv := newTestServer(&fakeLedger{}, openCatalog(), &fakePublisher{})

	rec := doReq(t, srv, http.MethodPost, "/wallet/add-request", "u1",
		dto.AddRequestRequest{TxnID: "utr-123", AmountCents: 5000})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp dto.RequestCreatedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "entry-1", resp.EntryID)
	require.Equal(t, "PENDING", resp.Status)
}

func TestCreateAddRequestValidation(t *testing.T) {
	srv := newTestServer(&fakeLedger{}, openCatalog(), &fakePublisher{})

	// sem txn_id
	rec := doReq(t, srv, http.MethodPost, "/wallet/add-request", "u1",
		dto.AddRequestRequest{AmountCents: 5000})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// valor não positivo
	rec = doReq(t, srv, http.MethodPost, "/wallet/add-request", "u1",
		dto.AddRequestRequest{TxnID: "utr-1", AmountCents: 0})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateAddRequestDuplicate(t *testing.T) {
	l := &fakeLedger{err: repo.ErrDuplicateReference}
	srv := newTestServer(l, openCatalog(), &fakePublisher{})

	rec := doReq(t, srv, http.MethodPost, "/wallet/add-request", "u1",
		dto.AddRequestRequest{TxnID: "utr-123", AmountCents: 5000})
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreateWithdrawRequestInsufficient(t *testing.T) {
	l := &fakeLedger{err: fmt.Errorf("%w: current balance is 100, cannot withdraw 200", repo.ErrInsufficientFunds)}
	srv := newTestServer(l, openCatalog(), &fakePublisher{})

	rec := doReq(t, srv, http.MethodPost, "/wallet/withdraw-request", "u1",
		dto.WithdrawRequestRequest{AmountCents: 200})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestPlaceBid(t *testing.T) {
	l := &fakeLedger{balance: 1000}
	pub := &fakePublisher{}
	srv := newTestServer(l, openCatalog(), pub)

	rec := doReq(t, srv, http.MethodPost, "/bids", "u1",
		dto.PlaceBidRequest{MarketID: "m1", GameID: "g1", Number: 42, StakeCents: 600, Side: "OPEN"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp dto.PlaceBidResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "bid-1", resp.BidID)
	require.EqualValues(t, 400, resp.NewBalanceCents)

	// evento publicado com os dados da aposta
	require.Len(t, pub.published, 1)
	require.Equal(t, "bid-1", pub.published[0].BidID)
	require.Equal(t, 42, pub.published[0].Number)
}

func TestPlaceBidValidation(t *testing.T) {
	srv := newTestServer(&fakeLedger{balance: 1000}, openCatalog(), &fakePublisher{})

	cases := []struct {
		name string
		req  dto.PlaceBidRequest
	}{
		{"missing market", dto.PlaceBidRequest{GameID: "g1", Number: 1, StakeCents: 100, Side: "OPEN"}},
		{"bad side", dto.PlaceBidRequest{MarketID: "m1", GameID: "g1", Number: 1, StakeCents: 100, Side: "open"}},
		{"number too big", dto.PlaceBidRequest{MarketID: "m1", GameID: "g1", Number: 100, StakeCents: 100, Side: "OPEN"}},
		{"zero stake", dto.PlaceBidRequest{MarketID: "m1", GameID: "g1", Number: 1, Side: "OPEN"}},
	}
	for _, tc := range cases {
		rec := doReq(t, srv, http.MethodPost, "/bids", "u1", tc.req)
		require.Equal(t, http.StatusBadRequest, rec.Code, tc.name)
	}
}

func TestPlaceBidCatalogPreconditions(t *testing.T) {
	l := &fakeLedger{balance: 1000}

	// mercado inexistente
	srv := newTestServer(l, &fakeCatalog{}, &fakePublisher{})
	rec := doReq(t, srv, http.MethodPost, "/bids", "u1",
		dto.PlaceBidRequest{MarketID: "mx", GameID: "g1", Number: 1, StakeCents: 100, Side: "OPEN"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// mercado fechado
	closed := openCatalog()
	closed.market.Active = false
	srv = newTestServer(l, closed, &fakePublisher{})
	rec = doReq(t, srv, http.MethodPost, "/bids", "u1",
		dto.PlaceBidRequest{MarketID: "m1", GameID: "g1", Number: 1, StakeCents: 100, Side: "OPEN"})
	require.Equal(t, http.StatusConflict, rec.Code)

	// stake fora dos limites do jogo
	bounded := openCatalog()
	bounded.game.MaxStakeCents = 500
	srv = newTestServer(l, bounded, &fakePublisher{})
	rec = doReq(t, srv, http.MethodPost, "/bids", "u1",
		dto.PlaceBidRequest{MarketID: "m1", GameID: "g1", Number: 1, StakeCents: 600, Side: "OPEN"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestPlaceBidInsufficientFunds(t *testing.T) {
	l := &fakeLedger{err: fmt.Errorf("%w: current balance is 100, cannot debit 600", repo.ErrInsufficientFunds)}
	srv := newTestServer(l, openCatalog(), &fakePublisher{})

	rec := doReq(t, srv, http.MethodPost, "/bids", "u1",
		dto.PlaceBidRequest{MarketID: "m1", GameID: "g1", Number: 1, StakeCents: 600, Side: "OPEN"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestPlaceBidBettingDisabled(t *testing.T) {
	l := &fakeLedger{err: repo.ErrBettingDisabled}
	srv := newTestServer(l, openCatalog(), &fakePublisher{})

	rec := doReq(t, srv, http.MethodPost, "/bids", "u1",
		dto.PlaceBidRequest{MarketID: "m1", GameID: "g1", Number: 1, StakeCents: 100, Side: "OPEN"})
	require.Equal(t, http.StatusForbidden, rec.Code)
}

// falha no Kafka não derruba a resposta: a aposta já está persistida
func TestPlaceBidPublishFailureStillCreated(t *testing.T) {
	l := &fakeLedger{balance: 1000}
	pub := &fakePublisher{err: fmt.Errorf("broker down")}
	srv := newTestServer(l, openCatalog(), pub)

	rec := doReq(t, srv, http.MethodPost, "/bids", "u1",
		dto.PlaceBidRequest{MarketID: "m1", GameID: "g1", Number: 1, StakeCents: 100, Side: "OPEN"})
	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestListBids(t *testing.T) {
	l := &fakeLedger{bids: []repo.Bid{
		{ID: "b1", AccountID: "u1", MarketID: "m1", GameID: "g1", Number: 7, StakeCents: 100, Side: repo.SideOpen},
	}}
	srv := newTestServer(l, openCatalog(), &fakePublisher{})

	rec := doReq(t, srv, http.MethodGet, "/bids", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []dto.BidResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	require.Equal(t, "b1", resp[0].BidID)
	require.Equal(t, "OPEN", resp[0].Side)
}

func TestListMarkets(t *testing.T) {
	srv := newTestServer(&fakeLedger{}, openCatalog(), &fakePublisher{})

	rec := doReq(t, srv, http.MethodGet, "/markets", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []dto.MarketResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	require.Equal(t, "m1", resp[0].ID)
	require.True(t, resp[0].Active)
}

func TestListGames(t *testing.T) {
	srv := newTestServer(&fakeLedger{}, openCatalog(), &fakePublisher{})

	rec := doReq(t, srv, http.MethodGet, "/games", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []dto.GameResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	require.Equal(t, "g1", resp[0].ID)
	require.EqualValues(t, 100, resp[0].MinStakeCents)
}
