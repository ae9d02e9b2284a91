package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/bankgate/internal/gateway/catalog"
	"github.com/aussiebroadwan/bankgate/internal/gateway/domain"
	"github.com/aussiebroadwan/bankgate/internal/gateway/protocol"
	"github.com/aussiebroadwan/bankgate/internal/gateway/protocol/protocoltest"
	"github.com/aussiebroadwan/bankgate/internal/gateway/store/drivers/sqlite"
	"github.com/aussiebroadwan/bankgate/pkg/cryptox"
	"github.com/aussiebroadwan/bankgate/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type env struct {
	store *sqlite.Store
	bank  *protocoltest.Bank
	cat   *catalog.Catalog
	clock *clock

	sessions     *SessionService
	correlations *CorrelationService
	payments     *PaymentService
	auth         *AuthorizationService
	status       *StatusService
	accounts     *AccountService
}

// newEnv wires the services against an in-memory store. bank-a has the
// standard rest profile; bank-b lacks SINGLE_PAYMENT and lists accounts
// without consent.
func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	bank := &protocoltest.Bank{Family: domain.ProtocolREST}
	reg := protocol.NewRegistry()
	require.NoError(t, bank.Register(reg))

	seed := catalog.File{Banks: []catalog.BankSpec{
		{ID: "bank-a", Name: "Bank A", Protocol: "rest", Endpoint: "https://bank-a.example", Profile: catalog.ProfileStandard},
		{ID: "bank-b", Name: "Bank B", Protocol: "rest", Endpoint: "https://bank-b.example", Profile: catalog.ProfileStandard,
			Omit: []string{string(domain.ActionSinglePayment)},
			Actions: []catalog.ActionSpec{{
				Kind:    string(domain.ActionListAccounts),
				Handler: protocol.HandlerName(domain.ProtocolREST, domain.ActionListAccounts),
			}}},
	}}
	require.NoError(t, catalog.Import(ctx, st, reg, seed))
	cat, err := catalog.Load(ctx, st, reg)
	require.NoError(t, err)

	sealer, err := cryptox.NewSealer([]byte("test-master-key"))
	require.NoError(t, err)
	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	signer, err := jwtx.NewSignerEdDSA("test", pemKey)
	require.NoError(t, err)

	clk := &clock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	e := &env{store: st, bank: bank, cat: cat, clock: clk}

	e.sessions = &SessionService{
		Store:  st,
		Hasher: cryptox.PasswordHasher{Pepper: "pepper"},
		Sealer: sealer,
		Signer: signer,
		Issuer: "bankgate-test",
		TTL:    time.Hour,
		Now:    clk.Now,
	}
	e.correlations = &CorrelationService{Store: st, TTL: 10 * time.Minute, PublicURL: "https://gw.example", Now: clk.Now}
	e.payments = &PaymentService{Store: st, Catalog: cat, Correlations: e.correlations}
	e.auth = &AuthorizationService{Store: st, Catalog: cat, Sessions: e.sessions, Correlations: e.correlations, Now: clk.Now}
	e.status = &StatusService{Store: st, Catalog: cat, Concurrency: 2}
	e.accounts = &AccountService{Store: st, Catalog: cat, Correlations: e.correlations}
	return e
}

// login creates a user and returns its live session.
func (e *env) login(t *testing.T, username string) domain.Session {
	t.Helper()
	ctx := context.Background()

	_, err := e.sessions.CreateUser(ctx, username, "correct-horse")
	require.NoError(t, err)
	l, err := e.sessions.Login(ctx, username, "correct-horse")
	require.NoError(t, err)
	require.NotEmpty(t, l.AccessToken)

	sess, err := e.sessions.Get(ctx, l.SessionID)
	require.NoError(t, err)
	return sess
}

func paymentRequest() InitiateRequest {
	return InitiateRequest{
		BankID:       "bank-a",
		AccountID:    "acc-1",
		CreditorIBAN: "DE89 3704 0044 0532 0130 00",
		CreditorName: "Bob",
		DebtorIBAN:   "DE02120300000000202051",
		Amount:       "10.00",
		Remittance:   "invoice 42",
		OkURL:        "/ok",
		NokURL:       "/nok",
	}
}

// confirmedPayment initiates a payment and completes its SCA.
func (e *env) confirmedPayment(t *testing.T, sess domain.Session) domain.Payment {
	t.Helper()
	ctx := context.Background()

	r, err := e.payments.Initiate(ctx, sess, paymentRequest())
	require.NoError(t, err)
	cb, err := e.auth.FromRedirect(ctx, r.Code, protocol.RedirectOK)
	require.NoError(t, err)
	require.Equal(t, domain.StateConfirmed, cb.State)

	p, err := e.store.Payments().GetPayment(ctx, r.ResourceID)
	require.NoError(t, err)
	return p
}
