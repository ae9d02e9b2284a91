package sandbox

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"net/http"
	"strings"
	"time"

	"github.com/aussiebroadwan/bankgate/internal/gateway/protocol/rest"
	"github.com/aussiebroadwan/bankgate/pkg/httpx"
)

const (
	kindPayment = "payments"
	kindConsent = "consents"
)

const maxBodyBytes = 1 << 20

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeTppError(w, http.StatusBadRequest, "FORMAT_ERROR", "malformed request body")
		return false
	}
	return true
}

func redirectURIs(r *http.Request) authorisation {
	return authorisation{
		status: ScaReceived,
		okURL:  r.Header.Get(rest.HeaderRedirectURI),
		nokURL: r.Header.Get(rest.HeaderNokRedirectURI),
	}
}

func (b *Bank) handleInitiatePayment(w http.ResponseWriter, r *http.Request) {
	owner, ok := psu(w, r)
	if !ok {
		return
	}
	var body rest.PaymentInitiationRequest
	if !decode(w, r, &body) {
		return
	}
	if body.CreditorAccount.IBAN == "" || body.DebtorAccount.IBAN == "" || body.InstructedAmount.Amount == "" {
		writeTppError(w, http.StatusBadRequest, "FORMAT_ERROR", "debtor, creditor and amount are required")
		return
	}

	p := &payment{
		id:      newID("pay"),
		psu:     owner,
		product: r.PathValue("product"),
		body:    body,
		status:  TxReceived,
		sca:     redirectURIs(r),
		created: b.now(),
	}
	b.mu.Lock()
	b.payments[p.id] = p
	b.mu.Unlock()

	b.logger.InfoContext(r.Context(), "sandbox payment received",
		"payment_id", p.id,
		"product", p.product,
		"psu", owner,
	)

	httpx.WriteJSON(w, http.StatusCreated, rest.PaymentInitiationResponse{
		TransactionStatus: p.status,
		PaymentID:         p.id,
		Links: rest.Links{
			ScaRedirect: b.scaLink(kindPayment, p.id),
			Status:      &rest.Href{Href: "/v1/payments/" + p.product + "/" + p.id + "/status"},
		},
	})
}

// ownPayment finds the caller's payment. Payments of other PSUs are
// reported as missing.
func (b *Bank) ownPayment(w http.ResponseWriter, r *http.Request) (*payment, bool) {
	owner, ok := psu(w, r)
	if !ok {
		return nil, false
	}
	b.mu.Lock()
	p, found := b.payments[r.PathValue("id")]
	b.mu.Unlock()
	if !found || p.psu != owner {
		writeTppError(w, http.StatusNotFound, "RESOURCE_UNKNOWN", "payment not found")
		return nil, false
	}
	return p, true
}

func (b *Bank) handlePaymentStatus(w http.ResponseWriter, r *http.Request) {
	p, ok := b.ownPayment(w, r)
	if !ok {
		return
	}
	b.mu.Lock()
	status := p.status
	b.mu.Unlock()
	httpx.WriteJSON(w, http.StatusOK, rest.PaymentStatusResponse{TransactionStatus: status})
}

func (b *Bank) handlePaymentInformation(w http.ResponseWriter, r *http.Request) {
	p, ok := b.ownPayment(w, r)
	if !ok {
		return
	}
	b.mu.Lock()
	out := rest.PaymentInformationResponse{
		PaymentInitiationRequest: p.body,
		TransactionStatus:        p.status,
	}
	b.mu.Unlock()
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (b *Bank) handleCreateConsent(w http.ResponseWriter, r *http.Request) {
	owner, ok := psu(w, r)
	if !ok {
		return
	}
	var body rest.ConsentRequest
	if !decode(w, r, &body) {
		return
	}
	c := &consent{
		id:      newID("consent"),
		psu:     owner,
		status:  ConsentReceived,
		sca:     redirectURIs(r),
		created: b.now(),
	}
	b.mu.Lock()
	b.consents[c.id] = c
	b.mu.Unlock()

	b.logger.InfoContext(r.Context(), "sandbox consent received", "consent_id", c.id, "psu", owner)

	httpx.WriteJSON(w, http.StatusCreated, rest.ConsentResponse{
		ConsentStatus: c.status,
		ConsentID:     c.id,
		Links:         rest.Links{ScaRedirect: b.scaLink(kindConsent, c.id)},
	})
}

// lookupAuthorisation locks the bank and returns the SCA resource of the
// given payment or consent, or nil when the caller does not own it. The
// caller must unlock.
func (b *Bank) lookupAuthorisation(kind, id, owner string) *authorisation {
	b.mu.Lock()
	switch kind {
	case kindPayment:
		if p, ok := b.payments[id]; ok && (owner == "" || p.psu == owner) {
			return &p.sca
		}
	case kindConsent:
		if c, ok := b.consents[id]; ok && (owner == "" || c.psu == owner) {
			return &c.sca
		}
	}
	return nil
}

// settle moves the parent resource along with its SCA status. Callers hold
// the lock.
func (b *Bank) settle(kind, id, scaStatus string, cancelled bool) {
	switch kind {
	case kindPayment:
		p := b.payments[id]
		p.sca.status = scaStatus
		switch {
		case scaStatus == ScaFinalised:
			p.status = TxCompleted
		case cancelled:
			p.status = TxCancelled
		case scaStatus == ScaFailed:
			p.status = TxRejected
		}
	case kindConsent:
		c := b.consents[id]
		c.sca.status = scaStatus
		switch scaStatus {
		case ScaFinalised:
			c.status = ConsentValid
		case ScaFailed:
			c.status = ConsentRejected
		}
	}
}

func (b *Bank) handleGetAuthorisation(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := psu(w, r)
		if !ok {
			return
		}
		id := r.PathValue("id")
		sca := b.lookupAuthorisation(kind, id, owner)
		if sca == nil {
			b.mu.Unlock()
			writeTppError(w, http.StatusNotFound, "RESOURCE_UNKNOWN", "authorisation not found")
			return
		}
		out := rest.ScaStatusResponse{ScaStatus: sca.status}
		if sca.status != ScaFinalised && sca.status != ScaFailed {
			out.Links.ScaRedirect = b.scaLink(kind, id)
		}
		b.mu.Unlock()
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

func (b *Bank) handleUpdateAuthorisation(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := psu(w, r)
		if !ok {
			return
		}
		var body rest.UpdateAuthorisationRequest
		if !decode(w, r, &body) {
			return
		}
		if body.AuthenticationMethodID == "" && body.ScaAuthenticationData == "" {
			writeTppError(w, http.StatusBadRequest, "FORMAT_ERROR", "authenticationMethodId or scaAuthenticationData is required")
			return
		}

		id := r.PathValue("id")
		sca := b.lookupAuthorisation(kind, id, owner)
		if sca == nil {
			b.mu.Unlock()
			writeTppError(w, http.StatusNotFound, "RESOURCE_UNKNOWN", "authorisation not found")
			return
		}
		if sca.status == ScaFinalised || sca.status == ScaFailed {
			b.mu.Unlock()
			writeTppError(w, http.StatusConflict, "STATUS_INVALID", "authorisation already completed")
			return
		}

		switch {
		case body.ScaAuthenticationData != "" && b.validTAN(body.ScaAuthenticationData):
			b.settle(kind, id, ScaFinalised, false)
		case body.ScaAuthenticationData != "":
			b.settle(kind, id, ScaFailed, false)
		default:
			sca.status = ScaMethodSelected
		}
		status := sca.status
		b.mu.Unlock()

		b.logger.InfoContext(r.Context(), "sandbox authorisation updated",
			"kind", kind,
			"id", id,
			"sca_status", status,
		)
		httpx.WriteJSON(w, http.StatusOK, rest.ScaStatusResponse{ScaStatus: status})
	}
}

func (b *Bank) handleDeleteAuthorisation(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := psu(w, r)
		if !ok {
			return
		}
		id := r.PathValue("id")
		sca := b.lookupAuthorisation(kind, id, owner)
		if sca == nil {
			b.mu.Unlock()
			writeTppError(w, http.StatusNotFound, "RESOURCE_UNKNOWN", "authorisation not found")
			return
		}
		if sca.status == ScaFinalised {
			b.mu.Unlock()
			writeTppError(w, http.StatusConflict, "STATUS_INVALID", "authorisation already finalised")
			return
		}
		b.settle(kind, id, ScaFailed, true)
		b.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}
}

// account is a seeded account of a PSU.
type account struct {
	rest.AccountDetails
	seed []rest.TransactionDetails
}

// accountsFor derives two accounts per PSU. The same PSU always gets the
// same IBANs and history.
func (b *Bank) accountsFor(owner string) []account {
	h := fnv.New32a()
	_, _ = h.Write([]byte(owner))
	n := h.Sum32()

	base := time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC)
	names := []string{"Everyday", "Savings"}
	out := make([]account, 0, len(names))
	for i, name := range names {
		iban := fmt.Sprintf("DE89370400440%09d", (uint64(n)+uint64(i)*7919)%1_000_000_000)
		out = append(out, account{
			AccountDetails: rest.AccountDetails{
				ResourceID: fmt.Sprintf("acc-%08x-%d", n, i+1),
				IBAN:       iban,
				Currency:   "EUR",
				Name:       name,
			},
			seed: []rest.TransactionDetails{
				{
					TransactionID:                     fmt.Sprintf("tx-%08x-%d-1", n, i+1),
					BookingDate:                       base.Format(time.DateOnly),
					TransactionAmount:                 rest.Amount{Currency: "EUR", Amount: "2500.00"},
					DebtorName:                        "Employer Pty Ltd",
					RemittanceInformationUnstructured: "Salary",
				},
				{
					TransactionID:                     fmt.Sprintf("tx-%08x-%d-2", n, i+1),
					BookingDate:                       base.AddDate(0, 0, 3).Format(time.DateOnly),
					TransactionAmount:                 rest.Amount{Currency: "EUR", Amount: "-42.50"},
					CreditorName:                      "Corner Store",
					RemittanceInformationUnstructured: "Groceries",
				},
			},
		})
	}
	return out
}

// consented checks the Consent-ID header against a valid consent of the
// caller.
func (b *Bank) consented(w http.ResponseWriter, r *http.Request, owner string) bool {
	id := r.Header.Get(rest.HeaderConsentID)
	b.mu.Lock()
	c, ok := b.consents[id]
	valid := ok && c.psu == owner && c.status == ConsentValid
	b.mu.Unlock()
	if !valid {
		writeTppError(w, http.StatusUnauthorized, "CONSENT_INVALID", "a valid consent is required")
		return false
	}
	return true
}

func (b *Bank) handleAccounts(w http.ResponseWriter, r *http.Request) {
	owner, ok := psu(w, r)
	if !ok || !b.consented(w, r, owner) {
		return
	}
	accounts := b.accountsFor(owner)
	out := rest.AccountListResponse{Accounts: make([]rest.AccountDetails, 0, len(accounts))}
	for _, a := range accounts {
		out.Accounts = append(out.Accounts, a.AccountDetails)
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (b *Bank) handleTransactions(w http.ResponseWriter, r *http.Request) {
	owner, ok := psu(w, r)
	if !ok || !b.consented(w, r, owner) {
		return
	}

	var acc *account
	accounts := b.accountsFor(owner)
	for i := range accounts {
		if accounts[i].ResourceID == r.PathValue("id") {
			acc = &accounts[i]
		}
	}
	if acc == nil {
		writeTppError(w, http.StatusNotFound, "RESOURCE_UNKNOWN", "account not found")
		return
	}

	booked := append([]rest.TransactionDetails(nil), acc.seed...)
	b.mu.Lock()
	for _, p := range b.payments {
		if p.psu != owner || p.status != TxCompleted || !strings.EqualFold(p.body.DebtorAccount.IBAN, acc.IBAN) {
			continue
		}
		booked = append(booked, rest.TransactionDetails{
			TransactionID:                     p.id,
			BookingDate:                       p.created.UTC().Format(time.DateOnly),
			TransactionAmount:                 rest.Amount{Currency: p.body.InstructedAmount.Currency, Amount: "-" + p.body.InstructedAmount.Amount},
			CreditorName:                      p.body.CreditorName,
			RemittanceInformationUnstructured: p.body.RemittanceInformationUnstructured,
		})
	}
	b.mu.Unlock()

	httpx.WriteJSON(w, http.StatusOK, rest.TransactionsResponse{Transactions: rest.AccountReport{Booked: booked}})
}
