package message

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/aussiebroadwan/bankgate/internal/gateway/domain"
	"github.com/aussiebroadwan/bankgate/internal/gateway/protocol"
	"github.com/moov-io/iso8583"
	"github.com/stretchr/testify/require"
)

// wireBank runs requests through a full pack and unpack in both directions
// before handing them to answer.
type wireBank struct {
	t      *testing.T
	answer func(req *iso8583.Message) (string, url.Values)
	seen   []*iso8583.Message
}

func (b *wireBank) Exchange(_ context.Context, endpoint string, req *iso8583.Message) (*iso8583.Message, error) {
	require.Equal(b.t, "legacy:8583", endpoint)

	raw, err := req.Pack()
	if err != nil {
		return nil, err
	}
	in := iso8583.NewMessage(iso8583.Spec87)
	if err := in.Unpack(raw); err != nil {
		return nil, err
	}
	b.seen = append(b.seen, in)

	code, data := b.answer(in)
	resp, err := NewResponse(in, code, data)
	if err != nil {
		return nil, err
	}
	raw, err = resp.Pack()
	if err != nil {
		return nil, err
	}
	out := iso8583.NewMessage(iso8583.Spec87)
	if err := out.Unpack(raw); err != nil {
		return nil, err
	}
	return out, nil
}

func newCall() protocol.Call {
	return protocol.NewCall(
		domain.Bank{ID: "legacy", Protocol: domain.ProtocolMessage, Endpoint: "legacy:8583"},
		protocol.Credentials{PSUID: "psu-1", Secret: "s3cret"},
	)
}

func TestHandlersCoverEveryKind(t *testing.T) {
	reg := protocol.NewRegistry()
	require.NoError(t, Register(reg, NewClient(&wireBank{t: t})))

	for _, k := range domain.ActionKinds {
		if k == domain.ActionAuthorization {
			continue
		}
		h, ok := reg.Lookup(protocol.HandlerName(domain.ProtocolMessage, k))
		require.True(t, ok, k)
		require.True(t, protocol.Satisfies(h, k), k)
	}
	for _, k := range domain.SubActionKinds {
		h, ok := reg.Lookup(protocol.HandlerName(domain.ProtocolMessage, k))
		require.True(t, ok, k)
		require.True(t, protocol.SatisfiesSub(h, k), k)
	}
}

func TestInitiatePayment(t *testing.T) {
	bank := &wireBank{t: t, answer: func(req *iso8583.Message) (string, url.Values) {
		return RespPendingSCA, url.Values{
			KeyRef:      {"PSID00000042"},
			KeyRedirect: {"https://legacy.example/sca/42"},
			KeyStatus:   {"RCVD"},
		}
	}}
	call := newCall()
	call.RedirectOK = "https://gw.example/v1/redirect/abc/ok"
	call.RedirectNOK = "https://gw.example/v1/redirect/abc/nok"

	res, err := paymentInitiator{NewClient(bank)}.InitiatePayment(context.Background(), call, protocol.PaymentRequest{
		Product:         "sepa-credit-transfers",
		DebtorAccount:   protocol.AccountReference{IBAN: "DE02120300000000202051"},
		CreditorAccount: protocol.AccountReference{IBAN: "DE89370400440532013000"},
		CreditorName:    "Bob",
		Amount:          protocol.Amount{Currency: "EUR", Value: "10.5"},
	})
	require.NoError(t, err)
	require.Equal(t, protocol.OutcomeAcceptedPending, res.Outcome)
	require.Equal(t, "PSID00000042", res.ProtocolSessionID)
	require.Equal(t, "https://legacy.example/sca/42", res.ScaRedirect)

	require.Len(t, bank.seen, 1)
	req := bank.seen[0]
	mti, err := req.GetMTI()
	require.NoError(t, err)
	require.Equal(t, MTIFinancialRequest, mti)
	require.Equal(t, ProcTransfer, ProcessingCode(req))

	amount, err := req.GetString(fieldAmount)
	require.NoError(t, err)
	require.Equal(t, "1050", amount)

	creditor, err := req.GetString(fieldCreditorAcct)
	require.NoError(t, err)
	require.Equal(t, "DE89370400440532013000", creditor)

	data, err := PrivateData(req)
	require.NoError(t, err)
	require.Equal(t, "Bob", data.Get(KeyCreditorName))
	require.Equal(t, "psu-1", data.Get(KeyPSU))
	require.Equal(t, call.RequestID.String(), data.Get(KeyRequestID))
	require.Equal(t, call.RedirectOK, data.Get(KeyRedirectOK))
}

func TestDeclinedIsBankError(t *testing.T) {
	bank := &wireBank{t: t, answer: func(*iso8583.Message) (string, url.Values) {
		return RespDeclined, url.Values{KeyMessage: {"insufficient funds"}}
	}}

	_, err := paymentStatusGetter{NewClient(bank)}.GetPaymentStatus(context.Background(), newCall(), "sepa-credit-transfers", "PSID1")
	require.ErrorIs(t, err, protocol.ErrBankRejected)

	var bankErr *BankError
	require.True(t, errors.As(err, &bankErr))
	require.Equal(t, RespDeclined, bankErr.Code)
	require.Equal(t, "insufficient funds", bankErr.Message)
}

func TestListAccountsAndTransactions(t *testing.T) {
	bank := &wireBank{t: t, answer: func(req *iso8583.Message) (string, url.Values) {
		switch ProcessingCode(req) {
		case ProcListAccounts:
			return RespApproved, url.Values{KeyAccounts: {
				joinRecord("acc-1", "DE89370400440532013000", "EUR", "Main"),
				joinRecord("acc-2", "DE02120300000000202051", "EUR", ""),
			}}
		case ProcListTransactions:
			data, _ := PrivateData(req)
			require.Equal(t, "acc-1", data.Get(KeyAccount))
			return RespApproved, url.Values{KeyTransaction: {
				joinRecord("tx-1", "2026-01-02", "-1250", "EUR", "Coffee Shop", "latte"),
			}}
		}
		return RespFormatError, nil
	}}
	c := NewClient(bank)
	ctx := context.Background()

	accounts, err := accountLister{c}.ListAccounts(ctx, newCall())
	require.NoError(t, err)
	require.Len(t, accounts.Accounts, 2)
	require.Equal(t, "Main", accounts.Accounts[0].Name)

	txs, err := transactionLister{c}.ListTransactions(ctx, newCall(), "acc-1")
	require.NoError(t, err)
	require.Len(t, txs.Transactions, 1)
	require.Equal(t, "-12.50", txs.Transactions[0].Amount.Value)
	require.Equal(t, "Coffee Shop", txs.Transactions[0].Counterparty)
}

func TestAuthorizationSubActions(t *testing.T) {
	bank := &wireBank{t: t, answer: func(req *iso8583.Message) (string, url.Values) {
		data, _ := PrivateData(req)
		switch ProcessingCode(req) {
		case ProcAuthorizationState:
			return RespApproved, url.Values{KeySca: {"started"}}
		case ProcUpdateAuthorization:
			if data.Get(KeyTAN) == "123456" {
				return RespApproved, url.Values{KeySca: {"finalised"}}
			}
			return RespDeclined, nil
		case ProcRedirectStatus:
			if data.Get(KeyOutcome) == "ok" {
				return RespApproved, url.Values{KeySca: {"finalised"}}
			}
			return RespApproved, url.Values{KeySca: {"failed"}}
		case ProcDenyAuthorization:
			return RespApproved, nil
		}
		return RespFormatError, nil
	}}
	c := NewClient(bank)
	ctx := context.Background()
	ref := protocol.AuthorizationRef{Type: domain.ConsentPIS, Product: "sepa-credit-transfers", ProtocolSessionID: "PSID1"}

	st, err := authorizationStateGetter{c}.GetAuthorizationState(ctx, newCall(), ref)
	require.NoError(t, err)
	require.Equal(t, protocol.ScaStarted, st.ScaStatus)

	_, err = authorizationUpdater{c}.UpdateAuthorization(ctx, newCall(), ref, protocol.ScaInput{TAN: "000000"})
	require.ErrorIs(t, err, protocol.ErrBankRejected)

	st, err = authorizationUpdater{c}.UpdateAuthorization(ctx, newCall(), ref, protocol.ScaInput{TAN: "123456"})
	require.NoError(t, err)
	require.True(t, st.ScaStatus.Succeeded())

	st, err = redirectHandler{c}.FromRedirect(ctx, newCall(), ref, protocol.RedirectNOK)
	require.NoError(t, err)
	require.Equal(t, protocol.ScaFailed, st.ScaStatus)

	require.NoError(t, authorizationDenier{c}.DenyAuthorization(ctx, newCall(), ref))
}

func TestMinorUnits(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "10", want: "1000"},
		{in: "10.5", want: "1050"},
		{in: "0.01", want: "1"},
		{in: "10.123", wantErr: true},
		{in: "abc", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := toMinorUnits(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}

	require.Equal(t, "10.50", fromMinorUnits("1050"))
	require.Equal(t, "0.05", fromMinorUnits("5"))
}

func TestLengthFraming(t *testing.T) {
	var buf bytes.Buffer
	n, err := writeLength(&buf, 300)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	got, err := readLength(&buf)
	require.NoError(t, err)
	require.Equal(t, 300, got)
}

func TestSTANIsSixDigits(t *testing.T) {
	c := NewClient(&wireBank{t: t})
	for range 10 {
		require.Len(t, c.nextSTAN(), 6)
	}
}
