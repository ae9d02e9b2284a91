// Package sandbox is an in-memory bank speaking the gateway's rest dialect.
// It backs local development and the end-to-end suite: payments, consents,
// accounts and transactions, with SCA completed on a browser page or by an
// embedded TAN. TANs are TOTP codes for a single shared secret.
package sandbox

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/bankgate/internal/gateway/protocol/rest"
	"github.com/aussiebroadwan/bankgate/pkg/httpx"
	"github.com/aussiebroadwan/bankgate/pkg/idx"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// Transaction and SCA statuses the sandbox reports.
const (
	TxReceived  = "RCVD"
	TxAccepted  = "ACCP"
	TxCompleted = "ACSC"
	TxRejected  = "RJCT"
	TxCancelled = "CANC"

	ConsentReceived = "received"
	ConsentValid    = "valid"
	ConsentRejected = "rejected"

	ScaReceived       = "received"
	ScaMethodSelected = "scaMethodSelected"
	ScaFinalised      = "finalised"
	ScaFailed         = "failed"
)

type Config struct {
	// BaseURL is where the sandbox is reachable from a browser; SCA links
	// are built from it.
	BaseURL string

	// TOTPSecret is the base32 secret TANs are checked against. A random
	// one is generated when empty.
	TOTPSecret string

	Logger *slog.Logger
	Now    func() time.Time
}

// Bank is the sandbox state. All methods are safe for concurrent use.
type Bank struct {
	baseURL string
	secret  string
	logger  *slog.Logger
	now     func() time.Time

	mu       sync.Mutex
	payments map[string]*payment
	consents map[string]*consent
}

// authorisation is the SCA resource shared by payments and consents.
type authorisation struct {
	status string
	okURL  string
	nokURL string
}

type payment struct {
	id      string
	psu     string
	product string
	body    rest.PaymentInitiationRequest
	status  string
	sca     authorisation
	created time.Time
}

type consent struct {
	id      string
	psu     string
	status  string
	sca     authorisation
	created time.Time
}

func New(cfg Config) (*Bank, error) {
	secret := cfg.TOTPSecret
	if secret == "" {
		key, err := totp.Generate(totp.GenerateOpts{
			Issuer:      "bankgate-sandbox",
			AccountName: "sandbox",
			Period:      30,
			Digits:      otp.DigitsSix,
			Algorithm:   otp.AlgorithmSHA1,
		})
		if err != nil {
			return nil, fmt.Errorf("sandbox: generate TOTP secret: %w", err)
		}
		secret = key.Secret()
	}

	b := &Bank{
		baseURL:  strings.TrimSuffix(cfg.BaseURL, "/"),
		secret:   secret,
		logger:   cfg.Logger,
		now:      cfg.Now,
		payments: make(map[string]*payment),
		consents: make(map[string]*consent),
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	if b.now == nil {
		b.now = time.Now
	}
	return b, nil
}

// TOTPSecret returns the secret TANs are generated from.
func (b *Bank) TOTPSecret() string { return b.secret }

// TAN returns the currently valid TAN.
func (b *Bank) TAN() (string, error) {
	return totp.GenerateCode(b.secret, b.now())
}

func (b *Bank) validTAN(tan string) bool {
	ok, err := totp.ValidateCustom(strings.TrimSpace(tan), b.secret, b.now(), totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}

// Handler serves the bank API and the SCA pages.
func (b *Bank) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/payments/{product}", b.handleInitiatePayment)
	mux.HandleFunc("GET /v1/payments/{product}/{id}", b.handlePaymentInformation)
	mux.HandleFunc("GET /v1/payments/{product}/{id}/status", b.handlePaymentStatus)
	mux.HandleFunc("GET /v1/payments/{product}/{id}/authorisation", b.handleGetAuthorisation(kindPayment))
	mux.HandleFunc("PUT /v1/payments/{product}/{id}/authorisation", b.handleUpdateAuthorisation(kindPayment))
	mux.HandleFunc("DELETE /v1/payments/{product}/{id}/authorisation", b.handleDeleteAuthorisation(kindPayment))

	mux.HandleFunc("POST /v1/consents", b.handleCreateConsent)
	mux.HandleFunc("GET /v1/consents/{id}/authorisation", b.handleGetAuthorisation(kindConsent))
	mux.HandleFunc("PUT /v1/consents/{id}/authorisation", b.handleUpdateAuthorisation(kindConsent))
	mux.HandleFunc("DELETE /v1/consents/{id}/authorisation", b.handleDeleteAuthorisation(kindConsent))

	mux.HandleFunc("GET /v1/accounts", b.handleAccounts)
	mux.HandleFunc("GET /v1/accounts/{id}/transactions", b.handleTransactions)

	mux.HandleFunc("GET /sca/{kind}/{id}", b.handleScaPage)
	mux.HandleFunc("POST /sca/{kind}/{id}", b.handleScaSubmit)

	return mux
}

func (b *Bank) scaLink(kind, id string) *rest.Href {
	return &rest.Href{Href: b.baseURL + "/sca/" + kind + "/" + id}
}

// psu returns the caller's PSU id. Every API call must carry one along with
// a bearer secret.
func psu(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(r.Header.Get(rest.HeaderPSUID))
	authz := r.Header.Get("Authorization")
	if id == "" || !strings.HasPrefix(authz, "Bearer ") || strings.TrimSpace(strings.TrimPrefix(authz, "Bearer ")) == "" {
		writeTppError(w, http.StatusUnauthorized, "PSU_CREDENTIALS_INVALID", "PSU-ID and bearer secret are required")
		return "", false
	}
	return id, true
}

func writeTppError(w http.ResponseWriter, status int, code, text string) {
	httpx.WriteJSON(w, status, rest.ErrorResponse{TppMessages: []rest.TppMessage{{
		Category: "ERROR",
		Code:     code,
		Text:     text,
	}}})
}

func newID(prefix string) string {
	return prefix + "-" + strings.ToLower(idx.NewString())
}
