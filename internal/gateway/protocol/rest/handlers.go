package rest

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/aussiebroadwan/bankgate/internal/gateway/domain"
	"github.com/aussiebroadwan/bankgate/internal/gateway/protocol"
)

// consentValidity is how long an AIS consent requested by the gateway lasts.
const consentValidity = 90 * 24 * time.Hour

// Handlers returns one handler per action and sub-action, named by
// protocol.HandlerName for the rest family.
func Handlers(c *Client) []protocol.Handler {
	return []protocol.Handler{
		accountLister{c},
		transactionLister{c},
		paymentInitiator{c},
		paymentInformationGetter{c},
		paymentStatusGetter{c},
		authorizationStateGetter{c},
		authorizationUpdater{c},
		redirectHandler{c},
		authorizationDenier{c},
	}
}

// Register adds the rest handlers to reg.
func Register(reg *protocol.Registry, c *Client) error {
	return reg.Register(Handlers(c)...)
}

func name[K ~string](kind K) string { return protocol.HandlerName(domain.ProtocolREST, kind) }

type paymentInitiator struct{ c *Client }

func (paymentInitiator) Name() string                    { return name(domain.ActionSinglePayment) }
func (paymentInitiator) Protocol() domain.ProtocolFamily { return domain.ProtocolREST }

func (h paymentInitiator) InitiatePayment(ctx context.Context, call protocol.Call, req protocol.PaymentRequest) (protocol.Result, error) {
	body := PaymentInitiationRequest{
		DebtorAccount:                     AccountReference{IBAN: req.DebtorAccount.IBAN, Currency: req.DebtorAccount.Currency},
		InstructedAmount:                  Amount{Currency: req.Amount.Currency, Amount: req.Amount.Value},
		CreditorAccount:                   AccountReference{IBAN: req.CreditorAccount.IBAN, Currency: req.CreditorAccount.Currency},
		CreditorName:                      req.CreditorName,
		RemittanceInformationUnstructured: req.RemittanceInformation,
	}

	var out PaymentInitiationResponse
	path := "v1/payments/" + url.PathEscape(paymentProduct(req.Product, req.Instant))
	if _, err := h.c.do(ctx, call, "initiate_payment", http.MethodPost, path, body, &out); err != nil {
		return protocol.Result{}, err
	}
	return result(out.TransactionStatus, out.PaymentID, out.Links), nil
}

type paymentStatusGetter struct{ c *Client }

func (paymentStatusGetter) Name() string                    { return name(domain.ActionGetPaymentStatus) }
func (paymentStatusGetter) Protocol() domain.ProtocolFamily { return domain.ProtocolREST }

func (h paymentStatusGetter) GetPaymentStatus(ctx context.Context, call protocol.Call, product, psid string) (protocol.PaymentStatus, error) {
	var out PaymentStatusResponse
	path := "v1/payments/" + url.PathEscape(product) + "/" + url.PathEscape(psid) + "/status"
	if _, err := h.c.do(ctx, call, "payment_status", http.MethodGet, path, nil, &out); err != nil {
		return protocol.PaymentStatus{}, err
	}
	return protocol.PaymentStatus{TransactionStatus: out.TransactionStatus}, nil
}

type paymentInformationGetter struct{ c *Client }

func (paymentInformationGetter) Name() string                    { return name(domain.ActionGetPaymentInformation) }
func (paymentInformationGetter) Protocol() domain.ProtocolFamily { return domain.ProtocolREST }

func (h paymentInformationGetter) GetPaymentInformation(ctx context.Context, call protocol.Call, product, psid string) (protocol.PaymentInformation, error) {
	var out PaymentInformationResponse
	path := "v1/payments/" + url.PathEscape(product) + "/" + url.PathEscape(psid)
	if _, err := h.c.do(ctx, call, "payment_information", http.MethodGet, path, nil, &out); err != nil {
		return protocol.PaymentInformation{}, err
	}
	return protocol.PaymentInformation{
		TransactionStatus:     out.TransactionStatus,
		CreditorIBAN:          out.CreditorAccount.IBAN,
		CreditorName:          out.CreditorName,
		DebtorIBAN:            out.DebtorAccount.IBAN,
		Amount:                protocol.Amount{Currency: out.InstructedAmount.Currency, Value: out.InstructedAmount.Amount},
		RemittanceInformation: out.RemittanceInformationUnstructured,
	}, nil
}

// createConsent asks the bank for an all-accounts consent.
func (c *Client) createConsent(ctx context.Context, call protocol.Call) (protocol.Result, error) {
	body := ConsentRequest{
		Access:             ConsentAccess{AllPsd2: "allAccounts"},
		RecurringIndicator: true,
		ValidUntil:         time.Now().Add(consentValidity).Format(time.DateOnly),
		FrequencyPerDay:    4,
	}
	var out ConsentResponse
	if _, err := c.do(ctx, call, "create_consent", http.MethodPost, "v1/consents", body, &out); err != nil {
		return protocol.Result{}, err
	}
	return result(out.ConsentStatus, out.ConsentID, out.Links), nil
}

type accountLister struct{ c *Client }

func (accountLister) Name() string                    { return name(domain.ActionListAccounts) }
func (accountLister) Protocol() domain.ProtocolFamily { return domain.ProtocolREST }

func (h accountLister) ListAccounts(ctx context.Context, call protocol.Call) (protocol.AccountList, error) {
	if call.ConsentRequired && call.ConsentID == "" {
		res, err := h.c.createConsent(ctx, call)
		return protocol.AccountList{Result: res}, err
	}

	var out AccountListResponse
	if _, err := h.c.do(ctx, call, "list_accounts", http.MethodGet, "v1/accounts", nil, &out); err != nil {
		return protocol.AccountList{}, err
	}
	list := protocol.AccountList{Accounts: make([]protocol.Account, 0, len(out.Accounts))}
	for _, a := range out.Accounts {
		list.Accounts = append(list.Accounts, protocol.Account{
			ResourceID: a.ResourceID,
			IBAN:       a.IBAN,
			Currency:   a.Currency,
			Name:       a.Name,
		})
	}
	return list, nil
}

type transactionLister struct{ c *Client }

func (transactionLister) Name() string                    { return name(domain.ActionListTransactions) }
func (transactionLister) Protocol() domain.ProtocolFamily { return domain.ProtocolREST }

func (h transactionLister) ListTransactions(ctx context.Context, call protocol.Call, accountID string) (protocol.TransactionList, error) {
	if call.ConsentRequired && call.ConsentID == "" {
		res, err := h.c.createConsent(ctx, call)
		return protocol.TransactionList{Result: res}, err
	}

	var out TransactionsResponse
	path := "v1/accounts/" + url.PathEscape(accountID) + "/transactions"
	if _, err := h.c.do(ctx, call, "list_transactions", http.MethodGet, path, nil, &out); err != nil {
		return protocol.TransactionList{}, err
	}
	list := protocol.TransactionList{Transactions: make([]protocol.Transaction, 0, len(out.Transactions.Booked))}
	for _, t := range out.Transactions.Booked {
		counterparty := t.CreditorName
		if counterparty == "" {
			counterparty = t.DebtorName
		}
		list.Transactions = append(list.Transactions, protocol.Transaction{
			TransactionID: t.TransactionID,
			BookingDate:   t.BookingDate,
			Amount:        protocol.Amount{Currency: t.TransactionAmount.Currency, Value: t.TransactionAmount.Amount},
			Counterparty:  counterparty,
			Remittance:    t.RemittanceInformationUnstructured,
		})
	}
	return list, nil
}

// authorisationPath is the SCA resource of a payment or consent.
func authorisationPath(ref protocol.AuthorizationRef) string {
	if ref.Type == domain.ConsentAIS {
		return "v1/consents/" + url.PathEscape(ref.ProtocolSessionID) + "/authorisation"
	}
	return "v1/payments/" + url.PathEscape(ref.Product) + "/" + url.PathEscape(ref.ProtocolSessionID) + "/authorisation"
}

func scaStatus(out ScaStatusResponse) protocol.AuthorizationStatus {
	st := protocol.AuthorizationStatus{ScaStatus: protocol.ScaStatus(out.ScaStatus)}
	if out.Links.ScaRedirect != nil {
		st.ScaRedirect = out.Links.ScaRedirect.Href
	}
	return st
}

type authorizationStateGetter struct{ c *Client }

func (authorizationStateGetter) Name() string                    { return name(domain.SubActionGetAuthorizationState) }
func (authorizationStateGetter) Protocol() domain.ProtocolFamily { return domain.ProtocolREST }

func (h authorizationStateGetter) GetAuthorizationState(ctx context.Context, call protocol.Call, ref protocol.AuthorizationRef) (protocol.AuthorizationStatus, error) {
	var out ScaStatusResponse
	if _, err := h.c.do(ctx, call, "authorization_state", http.MethodGet, authorisationPath(ref), nil, &out); err != nil {
		return protocol.AuthorizationStatus{}, err
	}
	return scaStatus(out), nil
}

type authorizationUpdater struct{ c *Client }

func (authorizationUpdater) Name() string                    { return name(domain.SubActionUpdateAuthorization) }
func (authorizationUpdater) Protocol() domain.ProtocolFamily { return domain.ProtocolREST }

func (h authorizationUpdater) UpdateAuthorization(ctx context.Context, call protocol.Call, ref protocol.AuthorizationRef, in protocol.ScaInput) (protocol.AuthorizationStatus, error) {
	body := UpdateAuthorisationRequest{
		AuthenticationMethodID: in.MethodID,
		ScaAuthenticationData:  in.TAN,
	}
	var out ScaStatusResponse
	if _, err := h.c.do(ctx, call, "update_authorization", http.MethodPut, authorisationPath(ref), body, &out); err != nil {
		return protocol.AuthorizationStatus{}, err
	}
	return scaStatus(out), nil
}

type redirectHandler struct{ c *Client }

func (redirectHandler) Name() string                    { return name(domain.SubActionFromASPSPRedirect) }
func (redirectHandler) Protocol() domain.ProtocolFamily { return domain.ProtocolREST }

// FromRedirect asks the bank for the final SCA status. A nok return whose
// SCA never finished is reported as failed.
func (h redirectHandler) FromRedirect(ctx context.Context, call protocol.Call, ref protocol.AuthorizationRef, outcome protocol.RedirectOutcome) (protocol.AuthorizationStatus, error) {
	var out ScaStatusResponse
	if _, err := h.c.do(ctx, call, "from_redirect", http.MethodGet, authorisationPath(ref), nil, &out); err != nil {
		return protocol.AuthorizationStatus{}, err
	}
	st := scaStatus(out)
	if outcome == protocol.RedirectNOK && !st.ScaStatus.Succeeded() {
		st.ScaStatus = protocol.ScaFailed
	}
	return st, nil
}

type authorizationDenier struct{ c *Client }

func (authorizationDenier) Name() string                    { return name(domain.SubActionDenyAuthorization) }
func (authorizationDenier) Protocol() domain.ProtocolFamily { return domain.ProtocolREST }

func (h authorizationDenier) DenyAuthorization(ctx context.Context, call protocol.Call, ref protocol.AuthorizationRef) error {
	_, err := h.c.do(ctx, call, "deny_authorization", http.MethodDelete, authorisationPath(ref), nil, nil)
	return err
}
