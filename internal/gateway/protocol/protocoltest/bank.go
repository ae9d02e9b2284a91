// Package protocoltest provides a scriptable in-memory bank adapter.
package protocoltest

import (
	"context"
	"fmt"
	"sync"

	"github.com/aussiebroadwan/bankgate/internal/gateway/domain"
	"github.com/aussiebroadwan/bankgate/internal/gateway/protocol"
)

// Bank implements every capability for one protocol family. Each action is
// exposed as a separate Handler via Handlers so it can be registered under
// the standard names. Zero-value funcs give happy-path answers.
type Bank struct {
	Family domain.ProtocolFamily

	InitiateFunc  func(protocol.Call, protocol.PaymentRequest) (protocol.Result, error)
	StatusFunc    func(protocol.Call, string) (protocol.PaymentStatus, error)
	InfoFunc      func(protocol.Call, string) (protocol.PaymentInformation, error)
	AccountsFunc  func(protocol.Call) (protocol.AccountList, error)
	TxFunc        func(protocol.Call, string) (protocol.TransactionList, error)
	AuthStateFunc func(protocol.Call, protocol.AuthorizationRef) (protocol.AuthorizationStatus, error)
	UpdateFunc    func(protocol.Call, protocol.AuthorizationRef, protocol.ScaInput) (protocol.AuthorizationStatus, error)
	RedirectFunc  func(protocol.Call, protocol.AuthorizationRef, protocol.RedirectOutcome) (protocol.AuthorizationStatus, error)
	DenyFunc      func(protocol.Call, protocol.AuthorizationRef) error

	mu    sync.Mutex
	calls []string
	seq   int
}

// Calls returns the names of the actions invoked so far, in order.
func (b *Bank) Calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

func (b *Bank) record(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, name)
	b.seq++
	return b.seq
}

// Handlers returns one handler per action and sub-action kind.
func (b *Bank) Handlers() []protocol.Handler {
	hs := make([]protocol.Handler, 0, 9)
	for _, k := range domain.ActionKinds {
		if k == domain.ActionAuthorization {
			continue
		}
		hs = append(hs, action{b: b, name: protocol.HandlerName(b.Family, k)})
	}
	for _, k := range domain.SubActionKinds {
		hs = append(hs, action{b: b, name: protocol.HandlerName(b.Family, k)})
	}
	return hs
}

// Register adds b's handlers to reg.
func (b *Bank) Register(reg *protocol.Registry) error {
	return reg.Register(b.Handlers()...)
}

type action struct {
	b    *Bank
	name string
}

func (a action) Name() string                    { return a.name }
func (a action) Protocol() domain.ProtocolFamily { return a.b.Family }

func (a action) InitiatePayment(_ context.Context, call protocol.Call, req protocol.PaymentRequest) (protocol.Result, error) {
	n := a.b.record("initiate")
	if a.b.InitiateFunc != nil {
		return a.b.InitiateFunc(call, req)
	}
	psid := fmt.Sprintf("pay-%d", n)
	return protocol.Result{
		Outcome:           protocol.OutcomeAcceptedPending,
		ScaRedirect:       "https://bank.example/sca/" + psid,
		ProtocolSessionID: psid,
		Status:            "RCVD",
	}, nil
}

func (a action) GetPaymentStatus(_ context.Context, call protocol.Call, _ string, psid string) (protocol.PaymentStatus, error) {
	a.b.record("status")
	if a.b.StatusFunc != nil {
		return a.b.StatusFunc(call, psid)
	}
	return protocol.PaymentStatus{TransactionStatus: "ACSC"}, nil
}

func (a action) GetPaymentInformation(_ context.Context, call protocol.Call, _ string, psid string) (protocol.PaymentInformation, error) {
	a.b.record("info")
	if a.b.InfoFunc != nil {
		return a.b.InfoFunc(call, psid)
	}
	return protocol.PaymentInformation{TransactionStatus: "ACSC"}, nil
}

func (a action) ListAccounts(_ context.Context, call protocol.Call) (protocol.AccountList, error) {
	n := a.b.record("accounts")
	if a.b.AccountsFunc != nil {
		return a.b.AccountsFunc(call)
	}
	if call.ConsentRequired && call.ConsentID == "" {
		psid := fmt.Sprintf("consent-%d", n)
		return protocol.AccountList{Result: protocol.Result{
			Outcome:           protocol.OutcomeAcceptedPending,
			ScaRedirect:       "https://bank.example/sca/" + psid,
			ProtocolSessionID: psid,
		}}, nil
	}
	return protocol.AccountList{Accounts: []protocol.Account{{ResourceID: "acc-1", IBAN: "DE89370400440532013000", Currency: "EUR"}}}, nil
}

func (a action) ListTransactions(_ context.Context, call protocol.Call, accountID string) (protocol.TransactionList, error) {
	n := a.b.record("transactions")
	if a.b.TxFunc != nil {
		return a.b.TxFunc(call, accountID)
	}
	if call.ConsentRequired && call.ConsentID == "" {
		psid := fmt.Sprintf("consent-%d", n)
		return protocol.TransactionList{Result: protocol.Result{
			Outcome:           protocol.OutcomeAcceptedPending,
			ScaRedirect:       "https://bank.example/sca/" + psid,
			ProtocolSessionID: psid,
		}}, nil
	}
	return protocol.TransactionList{Transactions: []protocol.Transaction{{
		TransactionID: "tx-1",
		BookingDate:   "2026-01-02",
		Amount:        protocol.Amount{Currency: "EUR", Value: "-12.50"},
	}}}, nil
}

func (a action) GetAuthorizationState(_ context.Context, call protocol.Call, ref protocol.AuthorizationRef) (protocol.AuthorizationStatus, error) {
	a.b.record("auth_state")
	if a.b.AuthStateFunc != nil {
		return a.b.AuthStateFunc(call, ref)
	}
	return protocol.AuthorizationStatus{ScaStatus: protocol.ScaStarted}, nil
}

func (a action) UpdateAuthorization(_ context.Context, call protocol.Call, ref protocol.AuthorizationRef, in protocol.ScaInput) (protocol.AuthorizationStatus, error) {
	a.b.record("auth_update")
	if a.b.UpdateFunc != nil {
		return a.b.UpdateFunc(call, ref, in)
	}
	return protocol.AuthorizationStatus{ScaStatus: protocol.ScaMethodSelected}, nil
}

func (a action) FromRedirect(_ context.Context, call protocol.Call, ref protocol.AuthorizationRef, outcome protocol.RedirectOutcome) (protocol.AuthorizationStatus, error) {
	a.b.record("auth_redirect")
	if a.b.RedirectFunc != nil {
		return a.b.RedirectFunc(call, ref, outcome)
	}
	if outcome == protocol.RedirectOK {
		return protocol.AuthorizationStatus{ScaStatus: protocol.ScaFinalised}, nil
	}
	return protocol.AuthorizationStatus{ScaStatus: protocol.ScaFailed}, nil
}

func (a action) DenyAuthorization(_ context.Context, call protocol.Call, ref protocol.AuthorizationRef) error {
	a.b.record("auth_deny")
	if a.b.DenyFunc != nil {
		return a.b.DenyFunc(call, ref)
	}
	return nil
}
