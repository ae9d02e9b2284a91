package protocol

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/aussiebroadwan/bankgate/internal/gateway/domain"
)

// Registry maps handler names, as stored in catalog rows, to handler values.
// It is filled at startup and read when the catalog is loaded.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register adds handlers, failing on a duplicate name.
func (r *Registry) Register(hs ...Handler) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, h := range hs {
		if _, dup := r.handlers[h.Name()]; dup {
			return fmt.Errorf("protocol: handler %q already registered", h.Name())
		}
		r.handlers[h.Name()] = h
	}
	return nil
}

// MustRegister is Register for static wiring.
func (r *Registry) MustRegister(hs ...Handler) {
	if err := r.Register(hs...); err != nil {
		panic(err)
	}
}

func (r *Registry) Lookup(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[name]
	return h, ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.handlers))
}

// HandlerName is the conventional registry name for a family's action or
// sub-action, e.g. "rest.single_payment".
func HandlerName[K ~string](family domain.ProtocolFamily, kind K) string {
	return string(family) + "." + strings.ToLower(string(kind))
}

// Satisfies reports whether h implements the capability an action kind needs.
func Satisfies(h Handler, kind domain.ActionKind) bool {
	switch kind {
	case domain.ActionListAccounts:
		_, ok := h.(AccountLister)
		return ok
	case domain.ActionListTransactions:
		_, ok := h.(TransactionLister)
		return ok
	case domain.ActionSinglePayment:
		_, ok := h.(PaymentInitiator)
		return ok
	case domain.ActionGetPaymentInformation:
		_, ok := h.(PaymentInformationGetter)
		return ok
	case domain.ActionGetPaymentStatus:
		_, ok := h.(PaymentStatusGetter)
		return ok
	}
	return false
}

// SatisfiesSub is Satisfies for authorization sub-actions.
func SatisfiesSub(h Handler, kind domain.SubActionKind) bool {
	switch kind {
	case domain.SubActionGetAuthorizationState:
		_, ok := h.(AuthorizationStateGetter)
		return ok
	case domain.SubActionUpdateAuthorization:
		_, ok := h.(AuthorizationUpdater)
		return ok
	case domain.SubActionFromASPSPRedirect:
		_, ok := h.(RedirectHandler)
		return ok
	case domain.SubActionDenyAuthorization:
		_, ok := h.(AuthorizationDenier)
		return ok
	}
	return false
}
