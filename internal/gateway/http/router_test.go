package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/bankgate/internal/gateway/catalog"
	"github.com/aussiebroadwan/bankgate/internal/gateway/protocol"
	"github.com/aussiebroadwan/bankgate/internal/gateway/protocol/rest"
	"github.com/aussiebroadwan/bankgate/internal/gateway/service"
	"github.com/aussiebroadwan/bankgate/internal/gateway/store/drivers/sqlite"
	"github.com/aussiebroadwan/bankgate/internal/sandbox"
	"github.com/aussiebroadwan/bankgate/pkg/cryptox"
	"github.com/aussiebroadwan/bankgate/pkg/gatewaysdk"
	"github.com/aussiebroadwan/bankgate/pkg/jwtx"
	"github.com/aussiebroadwan/bankgate/pkg/slogx"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPassword = "correct-horse"

type testServer struct {
	gw     *httptest.Server
	bank   *sandbox.Bank
	client *http.Client
}

// newTestServer runs the gateway against a sandbox bank registered as
// "sandbox" and creates the user alice.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	var bankHandler http.Handler
	bankSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bankHandler.ServeHTTP(w, r)
	}))
	t.Cleanup(bankSrv.Close)
	bank, err := sandbox.New(sandbox.Config{BaseURL: bankSrv.URL, Logger: slogx.Discard()})
	require.NoError(t, err)
	bankHandler = bank.Handler()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	reg := protocol.NewRegistry()
	require.NoError(t, rest.Register(reg, rest.NewClient(5*time.Second)))
	require.NoError(t, catalog.Import(ctx, st, reg, catalog.File{Banks: []catalog.BankSpec{
		{ID: "sandbox", Name: "Sandbox Bank", Protocol: "rest", Endpoint: bankSrv.URL, Profile: catalog.ProfileStandard},
	}}))
	cat, err := catalog.Load(ctx, st, reg)
	require.NoError(t, err)

	sealer, err := cryptox.NewSealer([]byte("test-master-key"))
	require.NoError(t, err)
	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	signer, err := jwtx.NewSignerEdDSA("test", pemKey)
	require.NoError(t, err)
	keys := jwtx.NewKeySet()
	keys.AddSigner(signer)

	var router http.Handler
	gw := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		router.ServeHTTP(w, r)
	}))
	t.Cleanup(gw.Close)

	sessions := &service.SessionService{
		Store:  st,
		Hasher: cryptox.PasswordHasher{Pepper: "pepper"},
		Sealer: sealer,
		Signer: signer,
		Issuer: "bankgate-test",
		TTL:    time.Hour,
	}
	correlations := &service.CorrelationService{Store: st, PublicURL: gw.URL}

	r := NewRouter(jwtx.NewVerifierEdDSA(keys, "bankgate-test", nil), "test", st, cat, slog.New(slog.DiscardHandler))
	r.SessionService = sessions
	r.PaymentService = &service.PaymentService{Store: st, Catalog: cat, Correlations: correlations}
	r.StatusService = &service.StatusService{Store: st, Catalog: cat}
	r.AuthorizationService = &service.AuthorizationService{Store: st, Catalog: cat, Sessions: sessions, Correlations: correlations}
	r.AccountService = &service.AccountService{Store: st, Catalog: cat, Correlations: correlations}
	r.ApplyRoutes()
	router = r

	_, err = sessions.CreateUser(ctx, "alice", testPassword)
	require.NoError(t, err)

	return &testServer{
		gw:   gw,
		bank: bank,
		client: &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}},
	}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(raw))
	}
	target := path
	if strings.HasPrefix(path, "/") {
		target = s.gw.URL + path
	}
	req, err := http.NewRequest(method, target, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func (s *testServer) login(t *testing.T) string {
	t.Helper()
	resp, err := s.client.PostForm(s.gw.URL+"/v1/login", url.Values{"username": {"alice"}, "password": {testPassword}})
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[gatewaysdk.LoginResponse](t, resp)
	require.NotEmpty(t, out.AccessToken)
	assert.Equal(t, "Bearer", out.TokenType)
	assert.Positive(t, out.ExpiresIn)
	return out.AccessToken
}

func (s *testServer) tan(t *testing.T) string {
	t.Helper()
	code, err := totp.GenerateCode(s.bank.TOTPSecret(), time.Now())
	require.NoError(t, err)
	return code
}

// approve completes SCA on the sandbox page and returns where the bank
// sends the browser.
func (s *testServer) approve(t *testing.T, scaURL string) string {
	t.Helper()
	resp, err := s.client.PostForm(scaURL, url.Values{"action": {"approve"}, "tan": {s.tan(t)}})
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	return resp.Header.Get("Location")
}

func paymentBody() gatewaysdk.PaymentInitiationRequest {
	return gatewaysdk.PaymentInitiationRequest{
		CreditorIBAN: "DE89370400440532013000",
		CreditorName: "Bob",
		DebtorIBAN:   "DE02120300000000202051",
		Amount:       "10.00",
		OkURL:        "/ok",
		NokURL:       "/nok",
	}
}

func (s *testServer) initiate(t *testing.T, token string) gatewaysdk.RedirectResponse {
	t.Helper()
	resp := s.do(t, http.MethodPost, "/v1/banks/sandbox/accounts/acc-1/payments", token, paymentBody())
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	out := decode[gatewaysdk.RedirectResponse](t, resp)
	assert.Equal(t, out.Location, resp.Header.Get("Location"))
	return out
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	live := s.do(t, http.MethodGet, "/livez", "", nil)
	require.Equal(t, http.StatusOK, live.StatusCode)
	assert.Equal(t, "ok", decode[gatewaysdk.HealthResponse](t, live).Status)

	ready := s.do(t, http.MethodGet, "/readyz", "", nil)
	require.Equal(t, http.StatusOK, ready.StatusCode)
	body := decode[gatewaysdk.HealthResponse](t, ready)
	require.NotNil(t, body.Checks)
	assert.Equal(t, "ok", body.Checks.Database)
	assert.Equal(t, "ok", body.Checks.Catalog)
	assert.Equal(t, "test", body.Version)
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name     string
		form     url.Values
		wantCode int
		wantErr  string
	}{
		{"wrong password", url.Values{"username": {"alice"}, "password": {"nope"}}, http.StatusUnauthorized, gatewaysdk.ErrorCodeInvalidCredentials},
		{"unknown user", url.Values{"username": {"mallory"}, "password": {"whatever1"}}, http.StatusUnauthorized, gatewaysdk.ErrorCodeInvalidCredentials},
		{"missing password", url.Values{"username": {"alice"}}, http.StatusBadRequest, gatewaysdk.ErrorCodeInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := s.client.PostForm(s.gw.URL+"/v1/login", tt.form)
			require.NoError(t, err)
			defer resp.Body.Close()
			require.Equal(t, tt.wantCode, resp.StatusCode)
			assert.Equal(t, tt.wantErr, decode[gatewaysdk.ErrorResponse](t, resp).Error)
		})
	}
}

func TestSessionRequired(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, http.MethodGet, "/v1/banks", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("WWW-Authenticate"), "Bearer")

	token := s.login(t)
	banks := s.do(t, http.MethodGet, "/v1/banks", token, nil)
	require.Equal(t, http.StatusOK, banks.StatusCode)
	list := decode[gatewaysdk.BankListResponse](t, banks)
	require.Len(t, list.Banks, 1)
	assert.Equal(t, "sandbox", list.Banks[0].ID)
	assert.Contains(t, list.Banks[0].Actions, "SINGLE_PAYMENT")

	logout := s.do(t, http.MethodDelete, "/v1/session", token, nil)
	require.Equal(t, http.StatusNoContent, logout.StatusCode)

	// The token still verifies but its session is gone.
	after := s.do(t, http.MethodGet, "/v1/banks/sandbox/accounts/acc-1/payments", token, nil)
	require.Equal(t, http.StatusUnauthorized, after.StatusCode)
	assert.Equal(t, gatewaysdk.ErrorCodeSessionExpired, decode[gatewaysdk.ErrorResponse](t, after).Error)
}

func TestPaymentRedirectFlow(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	empty := s.do(t, http.MethodGet, "/v1/banks/sandbox/accounts/acc-1/payments", token, nil)
	require.Equal(t, http.StatusOK, empty.StatusCode)
	assert.Empty(t, decode[gatewaysdk.PaymentListResponse](t, empty).Payments)

	redirect := s.initiate(t, token)
	require.NotEmpty(t, redirect.ResourceID)

	callback := s.approve(t, redirect.Location)
	require.True(t, strings.HasPrefix(callback, s.gw.URL+"/v1/redirect/"), callback)
	require.True(t, strings.HasSuffix(callback, "/ok"), callback)

	back := s.do(t, http.MethodGet, callback, "", nil)
	require.Equal(t, http.StatusSeeOther, back.StatusCode)
	assert.Equal(t, "/ok", back.Header.Get("Location"))

	again := s.do(t, http.MethodGet, callback, "", nil)
	require.Equal(t, http.StatusGone, again.StatusCode)
	assert.Equal(t, gatewaysdk.ErrorCodeCorrelationNotFound, decode[gatewaysdk.ErrorResponse](t, again).Error)

	authz := s.do(t, http.MethodGet, "/v1/banks/sandbox/payments/"+redirect.ResourceID+"/authorization", token, nil)
	require.Equal(t, http.StatusOK, authz.StatusCode)
	assert.Equal(t, "CONFIRMED", decode[gatewaysdk.AuthorizationResponse](t, authz).State)

	list := s.do(t, http.MethodGet, "/v1/banks/sandbox/accounts/acc-1/payments", token, nil)
	require.Equal(t, http.StatusOK, list.StatusCode)
	payments := decode[gatewaysdk.PaymentListResponse](t, list).Payments
	require.Len(t, payments, 1)
	assert.Equal(t, redirect.ResourceID, payments[0].ID)
	assert.Equal(t, sandbox.TxCompleted, payments[0].Status)
	assert.True(t, payments[0].Confirmed)

	info := s.do(t, http.MethodGet, "/v1/banks/sandbox/payments/"+redirect.ResourceID, token, nil)
	require.Equal(t, http.StatusOK, info.StatusCode)
	details := decode[gatewaysdk.PaymentInformationResponse](t, info)
	assert.Equal(t, sandbox.TxCompleted, details.TransactionStatus)
	assert.Equal(t, "10.00", details.BankAmount)
	assert.Equal(t, "Bob", details.BankCreditorName)
}

func TestPaymentNokRedirect(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)
	redirect := s.initiate(t, token)

	resp, err := s.client.PostForm(redirect.Location, url.Values{"action": {"deny"}})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	callback := resp.Header.Get("Location")
	require.True(t, strings.HasSuffix(callback, "/nok"), callback)

	back := s.do(t, http.MethodGet, callback, "", nil)
	require.Equal(t, http.StatusSeeOther, back.StatusCode)
	assert.Equal(t, "/nok", back.Header.Get("Location"))

	authz := s.do(t, http.MethodGet, "/v1/banks/sandbox/payments/"+redirect.ResourceID+"/authorization", token, nil)
	assert.Equal(t, "DENIED", decode[gatewaysdk.AuthorizationResponse](t, authz).State)
}

func TestPaymentEmbeddedAuthorization(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)
	redirect := s.initiate(t, token)
	path := "/v1/banks/sandbox/payments/" + redirect.ResourceID + "/authorization"

	bad := s.do(t, http.MethodPut, path, token, gatewaysdk.UpdateAuthorizationRequest{})
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)

	method := s.do(t, http.MethodPut, path, token, gatewaysdk.UpdateAuthorizationRequest{MethodID: "totp"})
	require.Equal(t, http.StatusOK, method.StatusCode)
	step := decode[gatewaysdk.AuthorizationResponse](t, method)
	assert.Equal(t, "AUTHORIZING", step.State)
	assert.Equal(t, "scaMethodSelected", step.ScaStatus)

	done := s.do(t, http.MethodPut, path, token, gatewaysdk.UpdateAuthorizationRequest{TAN: s.tan(t)})
	require.Equal(t, http.StatusOK, done.StatusCode)
	assert.Equal(t, "CONFIRMED", decode[gatewaysdk.AuthorizationResponse](t, done).State)

	again := s.do(t, http.MethodPut, path, token, gatewaysdk.UpdateAuthorizationRequest{TAN: s.tan(t)})
	require.Equal(t, http.StatusConflict, again.StatusCode)
	assert.Equal(t, gatewaysdk.ErrorCodeInvalidStateTransition, decode[gatewaysdk.ErrorResponse](t, again).Error)
}

func TestPaymentDeny(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)
	redirect := s.initiate(t, token)
	path := "/v1/banks/sandbox/payments/" + redirect.ResourceID + "/authorization"

	denied := s.do(t, http.MethodDelete, path, token, nil)
	require.Equal(t, http.StatusOK, denied.StatusCode)
	assert.Equal(t, "DENIED", decode[gatewaysdk.AuthorizationResponse](t, denied).State)

	again := s.do(t, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusConflict, again.StatusCode)
}

func TestInitiateErrors(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	badAmount := paymentBody()
	badAmount.Amount = "10.001"
	badOrigin := paymentBody()
	badOrigin.OkURL = "https://evil.example/ok"

	tests := []struct {
		name     string
		path     string
		body     any
		wantCode int
		wantErr  string
	}{
		{"bad amount", "/v1/banks/sandbox/accounts/acc-1/payments", badAmount, http.StatusBadRequest, gatewaysdk.ErrorCodeInvalidRequest},
		{"foreign redirect", "/v1/banks/sandbox/accounts/acc-1/payments", badOrigin, http.StatusBadRequest, gatewaysdk.ErrorCodeInvalidRequest},
		{"unknown field", "/v1/banks/sandbox/accounts/acc-1/payments", map[string]string{"iban": "x"}, http.StatusBadRequest, gatewaysdk.ErrorCodeInvalidRequest},
		{"unknown bank", "/v1/banks/nope/accounts/acc-1/payments", paymentBody(), http.StatusNotFound, gatewaysdk.ErrorCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := s.do(t, http.MethodPost, tt.path, token, tt.body)
			require.Equal(t, tt.wantCode, resp.StatusCode)
			assert.Equal(t, tt.wantErr, decode[gatewaysdk.ErrorResponse](t, resp).Error)
		})
	}

	missing := s.do(t, http.MethodGet, "/v1/banks/sandbox/payments/01J00000000000000000000000", token, nil)
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestCallbackErrors(t *testing.T) {
	s := newTestServer(t)

	unknown := s.do(t, http.MethodGet, "/v1/redirect/not-a-code/ok", "", nil)
	assert.Equal(t, http.StatusGone, unknown.StatusCode)

	token := s.login(t)
	redirect := s.initiate(t, token)
	callback := s.approve(t, redirect.Location)

	// A bad outcome does not spend the code.
	bad := s.do(t, http.MethodGet, strings.TrimSuffix(callback, "/ok")+"/maybe", "", nil)
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)

	good := s.do(t, http.MethodGet, callback, "", nil)
	assert.Equal(t, http.StatusSeeOther, good.StatusCode)
}

func TestAccountsConsentFlow(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	noURLs := s.do(t, http.MethodGet, "/v1/banks/sandbox/accounts", token, nil)
	assert.Equal(t, http.StatusBadRequest, noURLs.StatusCode)

	query := "?" + url.Values{"ok_url": {"/accounts/ok"}, "nok_url": {"/accounts/nok"}}.Encode()
	pending := s.do(t, http.MethodGet, "/v1/banks/sandbox/accounts"+query, token, nil)
	require.Equal(t, http.StatusAccepted, pending.StatusCode)
	redirect := decode[gatewaysdk.RedirectResponse](t, pending)

	callback := s.approve(t, redirect.Location)
	back := s.do(t, http.MethodGet, callback, "", nil)
	require.Equal(t, http.StatusSeeOther, back.StatusCode)
	assert.Equal(t, "/accounts/ok", back.Header.Get("Location"))

	accounts := s.do(t, http.MethodGet, "/v1/banks/sandbox/accounts", token, nil)
	require.Equal(t, http.StatusOK, accounts.StatusCode)
	list := decode[gatewaysdk.AccountListResponse](t, accounts).Accounts
	require.Len(t, list, 2)

	txs := s.do(t, http.MethodGet, "/v1/banks/sandbox/accounts/"+list[0].ResourceID+"/transactions", token, nil)
	require.Equal(t, http.StatusOK, txs.StatusCode)
	assert.NotEmpty(t, decode[gatewaysdk.TransactionListResponse](t, txs).Transactions)
}

func TestSandboxMount(t *testing.T) {
	bank, err := sandbox.New(sandbox.Config{BaseURL: "http://gw.example/sandbox"})
	require.NoError(t, err)

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	r := NewRouter(jwtx.NewVerifierEdDSA(jwtx.NewKeySet(), "", nil), "test", st, nil, slog.New(slog.DiscardHandler))
	r.Sandbox = bank.Handler()
	r.ApplyRoutes()

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sandbox/v1/consents", strings.NewReader(`{}`)))
	// Reaches the sandbox, which wants PSU credentials.
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "tppMessages")

	ready := httptest.NewRecorder()
	r.ServeHTTP(ready, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, ready.Code)
}
