package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/bankgate/internal/gateway/catalog"
	"github.com/aussiebroadwan/bankgate/internal/gateway/service"
	"github.com/aussiebroadwan/bankgate/internal/gateway/store"
	"github.com/aussiebroadwan/bankgate/pkg/httpx"
	"github.com/aussiebroadwan/bankgate/pkg/jwtx"
	"github.com/aussiebroadwan/bankgate/pkg/slogx"

	_ "github.com/aussiebroadwan/bankgate/api/gateway" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store   store.Store
	catalog *catalog.Catalog

	SessionService       *service.SessionService
	PaymentService       *service.PaymentService
	StatusService        *service.StatusService
	AuthorizationService *service.AuthorizationService
	AccountService       *service.AccountService

	// Sandbox is mounted under /sandbox/ when set.
	Sandbox http.Handler
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	cat *catalog.Catalog,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		catalog:      cat,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerSessions()
	r.registerBanks()
	r.registerPayments()
	r.registerAuthorization()
	r.registerAccounts()
	r.registerCallback()
	r.registerSystem()
	r.registerSandbox()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			bankgate Payment Gateway API
//	@version		0.1.0
//	@description	Initiates bank payments and account information requests over several bank protocols.
//	@description
//	@description				Strong customer authentication happens at the bank. The gateway hands out the bank's SCA redirect
//	@description				and receives the browser back on /v1/redirect/{code}/{outcome}.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/bankgate
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Session token from /v1/login. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// secured wraps h with session authentication and a per-session limit.
func (r *Router) secured(h http.HandlerFunc, limit httpx.RateLimitConfig) http.Handler {
	return httpx.Chain(h,
		httpx.AuthnMiddleware(r.verifier),
		httpx.RateLimitBySession(limit),
	)
}

func (r *Router) registerSessions() {
	h := &SessionHandler{Sessions: r.SessionService}

	// POST /login - strict rate limit by IP + username to slow password guessing
	r.Mux.Handle("POST /v1/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIPAndFormField(httpx.StrictLimit, "username"),
		),
	)
	r.Mux.Handle("DELETE /v1/session", r.secured(h.HandleLogout, httpx.ModerateLimit))
}

func (r *Router) registerBanks() {
	h := &BanksHandler{Catalog: r.catalog}
	r.Mux.Handle("GET /v1/banks", r.secured(h.HandleList, httpx.LenientLimit))
}

func (r *Router) registerPayments() {
	h := &PaymentsHandler{
		Sessions: r.SessionService,
		Payments: r.PaymentService,
		Status:   r.StatusService,
	}

	// Initiation reaches out to the bank, keep it moderate
	r.Mux.Handle("POST /v1/banks/{bankID}/accounts/{accountID}/payments", r.secured(h.HandleInitiate, httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/banks/{bankID}/accounts/{accountID}/payments", r.secured(h.HandleList, httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/banks/{bankID}/payments/{paymentID}", r.secured(h.HandleGet, httpx.LenientLimit))
}

func (r *Router) registerAuthorization() {
	h := &AuthorizationHandler{
		Sessions:      r.SessionService,
		Authorization: r.AuthorizationService,
	}

	const path = "/v1/banks/{bankID}/payments/{paymentID}/authorization"
	r.Mux.Handle("GET "+path, r.secured(h.HandleGet, httpx.LenientLimit))
	// PUT carries TANs, strict to slow guessing
	r.Mux.Handle("PUT "+path, r.secured(h.HandleUpdate, httpx.StrictLimit))
	r.Mux.Handle("DELETE "+path, r.secured(h.HandleDeny, httpx.ModerateLimit))
}

func (r *Router) registerAccounts() {
	h := &AccountsHandler{
		Sessions: r.SessionService,
		Accounts: r.AccountService,
	}
	r.Mux.Handle("GET /v1/banks/{bankID}/accounts", r.secured(h.HandleListAccounts, httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/banks/{bankID}/accounts/{accountID}/transactions", r.secured(h.HandleListTransactions, httpx.ModerateLimit))
}

func (r *Router) registerCallback() {
	// The bank sends the browser here, there is no bearer token
	h := &CallbackHandler{Authorization: r.AuthorizationService}
	r.Mux.Handle("GET /v1/redirect/{code}/{outcome}",
		httpx.Chain(h,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.catalog),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerSandbox() {
	if r.Sandbox == nil {
		return
	}
	r.Mux.Handle("/sandbox/", http.StripPrefix("/sandbox", r.Sandbox))
}
