package message

import (
	"context"
	"net/url"

	"github.com/aussiebroadwan/bankgate/internal/gateway/domain"
	"github.com/aussiebroadwan/bankgate/internal/gateway/protocol"
)

// Handlers returns one handler per action and sub-action, named by
// protocol.HandlerName for the message family.
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

// Register adds the message handlers to reg.
func Register(reg *protocol.Registry, c *Client) error {
	return reg.Register(Handlers(c)...)
}

func name[K ~string](kind K) string { return protocol.HandlerName(domain.ProtocolMessage, kind) }

type paymentInitiator struct{ c *Client }

func (paymentInitiator) Name() string                    { return name(domain.ActionSinglePayment) }
func (paymentInitiator) Protocol() domain.ProtocolFamily { return domain.ProtocolMessage }

func (h paymentInitiator) InitiatePayment(ctx context.Context, call protocol.Call, req protocol.PaymentRequest) (protocol.Result, error) {
	minor, err := toMinorUnits(req.Amount.Value)
	if err != nil {
		return protocol.Result{}, err
	}
	code, data, err := h.c.exchange(ctx, call, request{
		action: "initiate_payment",
		mti:    MTIFinancialRequest,
		proc:   ProcTransfer,
		fields: map[int]string{
			fieldAmount:        minor,
			fieldCurrency:      req.Amount.Currency,
			fieldDebtorAccount: req.DebtorAccount.IBAN,
			fieldCreditorAcct:  req.CreditorAccount.IBAN,
		},
		data: url.Values{
			KeyProduct:      {req.Product},
			KeyCreditorName: {req.CreditorName},
			KeyRemittance:   {req.RemittanceInformation},
			KeyInstant:      {boolString(req.Instant)},
			KeyRedirectOK:   {call.RedirectOK},
			KeyRedirectNOK:  {call.RedirectNOK},
		},
	})
	if err != nil {
		return protocol.Result{}, err
	}
	return result(code, data), nil
}

type paymentStatusGetter struct{ c *Client }

func (paymentStatusGetter) Name() string                    { return name(domain.ActionGetPaymentStatus) }
func (paymentStatusGetter) Protocol() domain.ProtocolFamily { return domain.ProtocolMessage }

func (h paymentStatusGetter) GetPaymentStatus(ctx context.Context, call protocol.Call, product, psid string) (protocol.PaymentStatus, error) {
	_, data, err := h.c.exchange(ctx, call, request{
		action: "payment_status",
		mti:    MTIAdminRequest,
		proc:   ProcPaymentStatus,
		data:   url.Values{KeyRef: {psid}, KeyProduct: {product}},
	})
	if err != nil {
		return protocol.PaymentStatus{}, err
	}
	return protocol.PaymentStatus{TransactionStatus: data.Get(KeyStatus)}, nil
}

type paymentInformationGetter struct{ c *Client }

func (paymentInformationGetter) Name() string                    { return name(domain.ActionGetPaymentInformation) }
func (paymentInformationGetter) Protocol() domain.ProtocolFamily { return domain.ProtocolMessage }

func (h paymentInformationGetter) GetPaymentInformation(ctx context.Context, call protocol.Call, product, psid string) (protocol.PaymentInformation, error) {
	_, data, err := h.c.exchange(ctx, call, request{
		action: "payment_information",
		mti:    MTIAdminRequest,
		proc:   ProcPaymentInformation,
		data:   url.Values{KeyRef: {psid}, KeyProduct: {product}},
	})
	if err != nil {
		return protocol.PaymentInformation{}, err
	}
	// Amount and accounts come back in private data: "amount|currency".
	amount := splitRecord(data.Get("amount"), 2)
	return protocol.PaymentInformation{
		TransactionStatus:     data.Get(KeyStatus),
		CreditorIBAN:          data.Get("creditor"),
		CreditorName:          data.Get(KeyCreditorName),
		DebtorIBAN:            data.Get("debtor"),
		Amount:                protocol.Amount{Value: fromMinorUnits(amount[0]), Currency: amount[1]},
		RemittanceInformation: data.Get(KeyRemittance),
	}, nil
}

// createConsent asks the bank for an all-accounts consent.
func (c *Client) createConsent(ctx context.Context, call protocol.Call) (protocol.Result, error) {
	code, data, err := c.exchange(ctx, call, request{
		action: "create_consent",
		mti:    MTIAdminRequest,
		proc:   ProcCreateConsent,
		data: url.Values{
			KeyRedirectOK:  {call.RedirectOK},
			KeyRedirectNOK: {call.RedirectNOK},
		},
	})
	if err != nil {
		return protocol.Result{}, err
	}
	return result(code, data), nil
}

type accountLister struct{ c *Client }

func (accountLister) Name() string                    { return name(domain.ActionListAccounts) }
func (accountLister) Protocol() domain.ProtocolFamily { return domain.ProtocolMessage }

func (h accountLister) ListAccounts(ctx context.Context, call protocol.Call) (protocol.AccountList, error) {
	if call.ConsentRequired && call.ConsentID == "" {
		res, err := h.c.createConsent(ctx, call)
		return protocol.AccountList{Result: res}, err
	}

	_, data, err := h.c.exchange(ctx, call, request{
		action: "list_accounts",
		mti:    MTIAdminRequest,
		proc:   ProcListAccounts,
	})
	if err != nil {
		return protocol.AccountList{}, err
	}
	list := protocol.AccountList{Accounts: make([]protocol.Account, 0, len(data[KeyAccounts]))}
	for _, rec := range data[KeyAccounts] {
		p := splitRecord(rec, 4)
		list.Accounts = append(list.Accounts, protocol.Account{ResourceID: p[0], IBAN: p[1], Currency: p[2], Name: p[3]})
	}
	return list, nil
}

type transactionLister struct{ c *Client }

func (transactionLister) Name() string                    { return name(domain.ActionListTransactions) }
func (transactionLister) Protocol() domain.ProtocolFamily { return domain.ProtocolMessage }

func (h transactionLister) ListTransactions(ctx context.Context, call protocol.Call, accountID string) (protocol.TransactionList, error) {
	if call.ConsentRequired && call.ConsentID == "" {
		res, err := h.c.createConsent(ctx, call)
		return protocol.TransactionList{Result: res}, err
	}

	_, data, err := h.c.exchange(ctx, call, request{
		action: "list_transactions",
		mti:    MTIAdminRequest,
		proc:   ProcListTransactions,
		data:   url.Values{KeyAccount: {accountID}},
	})
	if err != nil {
		return protocol.TransactionList{}, err
	}
	list := protocol.TransactionList{Transactions: make([]protocol.Transaction, 0, len(data[KeyTransaction]))}
	for _, rec := range data[KeyTransaction] {
		// id|date|minor amount|currency|counterparty|remittance
		p := splitRecord(rec, 6)
		value := p[2]
		sign := ""
		if len(value) > 0 && value[0] == '-' {
			sign, value = "-", value[1:]
		}
		list.Transactions = append(list.Transactions, protocol.Transaction{
			TransactionID: p[0],
			BookingDate:   p[1],
			Amount:        protocol.Amount{Value: sign + fromMinorUnits(value), Currency: p[3]},
			Counterparty:  p[4],
			Remittance:    p[5],
		})
	}
	return list, nil
}

type authorizationStateGetter struct{ c *Client }

func (authorizationStateGetter) Name() string                    { return name(domain.SubActionGetAuthorizationState) }
func (authorizationStateGetter) Protocol() domain.ProtocolFamily { return domain.ProtocolMessage }

func (h authorizationStateGetter) GetAuthorizationState(ctx context.Context, call protocol.Call, ref protocol.AuthorizationRef) (protocol.AuthorizationStatus, error) {
	_, data, err := h.c.exchange(ctx, call, request{
		action: "authorization_state",
		mti:    MTIAdminRequest,
		proc:   ProcAuthorizationState,
		data:   authorizationData(ref),
	})
	if err != nil {
		return protocol.AuthorizationStatus{}, err
	}
	return authorizationStatus(data), nil
}

type authorizationUpdater struct{ c *Client }

func (authorizationUpdater) Name() string                    { return name(domain.SubActionUpdateAuthorization) }
func (authorizationUpdater) Protocol() domain.ProtocolFamily { return domain.ProtocolMessage }

func (h authorizationUpdater) UpdateAuthorization(ctx context.Context, call protocol.Call, ref protocol.AuthorizationRef, in protocol.ScaInput) (protocol.AuthorizationStatus, error) {
	data := authorizationData(ref)
	data.Set(KeyMethod, in.MethodID)
	data.Set(KeyTAN, in.TAN)

	_, out, err := h.c.exchange(ctx, call, request{
		action: "update_authorization",
		mti:    MTIAdminRequest,
		proc:   ProcUpdateAuthorization,
		data:   data,
	})
	if err != nil {
		return protocol.AuthorizationStatus{}, err
	}
	return authorizationStatus(out), nil
}

type redirectHandler struct{ c *Client }

func (redirectHandler) Name() string                    { return name(domain.SubActionFromASPSPRedirect) }
func (redirectHandler) Protocol() domain.ProtocolFamily { return domain.ProtocolMessage }

func (h redirectHandler) FromRedirect(ctx context.Context, call protocol.Call, ref protocol.AuthorizationRef, outcome protocol.RedirectOutcome) (protocol.AuthorizationStatus, error) {
	data := authorizationData(ref)
	data.Set(KeyOutcome, string(outcome))

	_, out, err := h.c.exchange(ctx, call, request{
		action: "from_redirect",
		mti:    MTIAdminRequest,
		proc:   ProcRedirectStatus,
		data:   data,
	})
	if err != nil {
		return protocol.AuthorizationStatus{}, err
	}
	return authorizationStatus(out), nil
}

type authorizationDenier struct{ c *Client }

func (authorizationDenier) Name() string                    { return name(domain.SubActionDenyAuthorization) }
func (authorizationDenier) Protocol() domain.ProtocolFamily { return domain.ProtocolMessage }

func (h authorizationDenier) DenyAuthorization(ctx context.Context, call protocol.Call, ref protocol.AuthorizationRef) error {
	_, _, err := h.c.exchange(ctx, call, request{
		action: "deny_authorization",
		mti:    MTIAdminRequest,
		proc:   ProcDenyAuthorization,
		data:   authorizationData(ref),
	})
	return err
}
