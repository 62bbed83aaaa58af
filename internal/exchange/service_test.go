package exchange

import (
	"context"
	"fmt"

	"github.com/zilix-space/adapix-backend/internal/config"
	"github.com/zilix-space/adapix-backend/internal/models"
	"github.com/zilix-space/adapix-backend/internal/providers"
	repo "github.com/zilix-space/adapix-backend/internal/repository"
)

// ---- provider stubs ----

type stubQuotes struct {
	price float64
	err   error
	calls int
}

func (s *stubQuotes) Quote(ctx context.Context, base, quote string) (float64, error) {
	s.calls++
	return s.price, s.err
}

type stubFiat struct {
	est     providers.FiatEstimate
	estErr  error
	estDir  providers.Direction
	estAmt  float64
	estCall int

	op           providers.FiatOperation
	openErr      error
	openDir      providers.Direction
	openAmt      float64
	openTarget   string
	openIdentity models.Identity
	openCall     int

	status     providers.FiatStatus
	statusErr  error
	statusCall int
}

func (s *stubFiat) Estimate(ctx context.Context, dir providers.Direction, amount float64) (providers.FiatEstimate, error) {
	s.estCall++
	s.estDir, s.estAmt = dir, amount
	return s.est, s.estErr
}

func (s *stubFiat) Open(ctx context.Context, dir providers.Direction, amount float64, target string, identity models.Identity) (providers.FiatOperation, error) {
	s.openCall++
	s.openDir, s.openAmt, s.openTarget, s.openIdentity = dir, amount, target, identity
	return s.op, s.openErr
}

func (s *stubFiat) Status(ctx context.Context, id string) (providers.FiatStatus, error) {
	s.statusCall++
	return s.status, s.statusErr
}

type stubCrypto struct {
	est     providers.CryptoEstimate
	estErr  error
	estAmt  float64
	estFrom string
	estTo   string
	estCall int

	swap          providers.CryptoSwap
	openErr       error
	openRecipient string
	openAmt       float64
	openRateID    string
	openCall      int

	status     providers.CryptoSwapStatus
	statusErr  error
	statusCall int
}

func (s *stubCrypto) Estimate(ctx context.Context, amount float64, from, to string) (providers.CryptoEstimate, error) {
	s.estCall++
	s.estAmt, s.estFrom, s.estTo = amount, from, to
	return s.est, s.estErr
}

func (s *stubCrypto) Open(ctx context.Context, recipient string, amount float64, from, to, rateID string) (providers.CryptoSwap, error) {
	s.openCall++
	s.openRecipient, s.openAmt, s.openRateID = recipient, amount, rateID
	return s.swap, s.openErr
}

func (s *stubCrypto) Status(ctx context.Context, id string) (providers.CryptoSwapStatus, error) {
	s.statusCall++
	return s.status, s.statusErr
}

// ---- repository stubs ----

type stubTransactions struct {
	byID      map[string]models.Transaction
	created   []models.Transaction
	updates   []models.TransactionUpdate
	createErr error
	updateErr error
}

func newStubTransactions(seed ...models.Transaction) *stubTransactions {
	s := &stubTransactions{byID: map[string]models.Transaction{}}
	for _, tx := range seed {
		s.byID[tx.ID] = tx
	}
	return s
}

func (s *stubTransactions) Create(ctx context.Context, tx models.Transaction) (models.Transaction, error) {
	if s.createErr != nil {
		return models.Transaction{}, s.createErr
	}
	s.created = append(s.created, tx)
	s.byID[tx.ID] = tx
	return tx, nil
}

func (s *stubTransactions) GetByID(ctx context.Context, id string) (models.Transaction, error) {
	tx, ok := s.byID[id]
	if !ok {
		return models.Transaction{}, repo.ErrNotFound
	}
	return tx, nil
}

func (s *stubTransactions) Update(ctx context.Context, id string, upd models.TransactionUpdate) (models.Transaction, error) {
	if s.updateErr != nil {
		return models.Transaction{}, s.updateErr
	}
	tx, ok := s.byID[id]
	if !ok {
		return models.Transaction{}, repo.ErrNotFound
	}
	if upd.Status != nil {
		tx.Status = *upd.Status
	}
	if upd.ToAmount != nil {
		tx.ToAmount = *upd.ToAmount
	}
	if upd.CompletedAt != nil {
		tx.CompletedAt = upd.CompletedAt
	}
	s.byID[id] = tx
	s.updates = append(s.updates, upd)
	return tx, nil
}

func (s *stubTransactions) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Transaction, error) {
	var out []models.Transaction
	for _, tx := range s.byID {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (s *stubTransactions) ListPending(ctx context.Context) ([]models.Transaction, error) {
	var out []models.Transaction
	for _, tx := range s.byID {
		if !tx.Status.Terminal() {
			out = append(out, tx)
		}
	}
	return out, nil
}

type stubUsers struct {
	user models.User
	err  error
}

func (s *stubUsers) Create(ctx context.Context, u models.User) (models.User, error) { return u, nil }
func (s *stubUsers) GetByID(ctx context.Context, id string) (models.User, error) {
	if s.err != nil {
		return models.User{}, s.err
	}
	if s.user.ID == "" {
		return models.User{}, fmt.Errorf("user %s: %w", id, repo.ErrNotFound)
	}
	return s.user, nil
}
func (s *stubUsers) GetByEmail(ctx context.Context, email string) (models.User, error) {
	return s.user, s.err
}
func (s *stubUsers) List(ctx context.Context) ([]models.User, error) {
	return []models.User{s.user}, nil
}

type stubAudit struct{ entries []models.AuditLog }

func (s *stubAudit) Create(ctx context.Context, l models.AuditLog) error {
	s.entries = append(s.entries, l)
	return nil
}

// ---- fixture ----

type fixture struct {
	svc    *Service
	quotes *stubQuotes
	fiat   *stubFiat
	crypto *stubCrypto
	trx    *stubTransactions
	users  *stubUsers
	audit  *stubAudit
}

func newFixture(seed ...models.Transaction) *fixture {
	f := &fixture{
		quotes: &stubQuotes{price: 2.50},
		fiat:   &stubFiat{},
		crypto: &stubCrypto{},
		trx:    newStubTransactions(seed...),
		users: &stubUsers{user: models.User{
			ID: "u1", Name: "Maria Souza", Document: "12345678900",
			Phone: "+5511999990000", Address: "Rua A 1, Sao Paulo",
		}},
		audit: &stubAudit{},
	}
	cfg := config.Config{
		FiatCurrency:   "BRL",
		BridgeAsset:    "USDT",
		CryptoCurrency: "ADA",
		MinDeposit:     25,
		MinWithdraw:    10,
	}
	f.svc = NewService(cfg, f.quotes, f.fiat, f.crypto, f.trx, f.users, f.audit)
	return f
}
