package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/aussiebroadwan/bankgate/internal/gateway/catalog"
	"github.com/aussiebroadwan/bankgate/internal/gateway/domain"
	"github.com/aussiebroadwan/bankgate/internal/gateway/protocol"
	"github.com/aussiebroadwan/bankgate/internal/gateway/store"
	"github.com/aussiebroadwan/bankgate/pkg/slogx"
)

const (
	DefaultCurrency       = "EUR"
	DefaultPaymentProduct = "sepa-credit-transfers"

	// MaxAmountDigits bounds the integer part of an amount. With two
	// fraction digits it fills a 12 digit minor-unit field.
	MaxAmountDigits = 10
)

var amountPattern = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)

// InitiateRequest is a caller's single payment.
type InitiateRequest struct {
	BankID       string
	AccountID    string
	CreditorIBAN string
	CreditorName string
	DebtorIBAN   string
	Amount       string
	Currency     string
	Remittance   string
	Instant      bool

	// Caller URLs the browser lands on after SCA.
	OkURL  string
	NokURL string

	AuthenticationRequired bool
}

// PaymentDetails is a local payment merged with the bank's view of it.
type PaymentDetails struct {
	Payment domain.Payment
	Bank    protocol.PaymentInformation
}

// PaymentService initiates payments and reads them back from the bank.
type PaymentService struct {
	Store        store.Store
	Catalog      *catalog.Catalog
	Correlations *CorrelationService
	Redirects    RedirectPolicy

	// Recorder defaults to PaymentRecorder.
	Recorder AcceptedReconciler

	Currency string
	Product  string
}

func (s *PaymentService) product() string {
	if s.Product == "" {
		return DefaultPaymentProduct
	}
	return s.Product
}

func (s *PaymentService) recorder() AcceptedReconciler {
	if s.Recorder == nil {
		return PaymentRecorder{Now: s.Correlations.Now}
	}
	return s.Recorder
}

// Initiate starts a payment at the bank. On an accepted-pending answer it
// stores exactly one pending payment and one correlation and returns the
// bank SCA redirect. Any other answer persists nothing.
func (s *PaymentService) Initiate(ctx context.Context, sess domain.Session, req InitiateRequest) (Redirect, error) {
	l := slogx.FromContext(ctx).With(slog.String("bank_id", req.BankID))

	initiator, action, err := catalog.ResolveAs[protocol.PaymentInitiator](s.Catalog, req.BankID, domain.ActionSinglePayment)
	if err != nil {
		return Redirect{}, err
	}

	if err := s.validate(&req); err != nil {
		return Redirect{}, err
	}

	res, err := s.Correlations.Reserve()
	if err != nil {
		return Redirect{}, err
	}

	call := newCall(action.Bank, sess)
	call.ConsentRequired = action.ConsentRequired
	call.AuthenticationRequired = req.AuthenticationRequired
	call.RedirectOK = res.CallbackOK
	call.RedirectNOK = res.CallbackNOK

	product := s.product()
	if req.Instant && !strings.HasPrefix(product, "instant-") {
		product = "instant-" + product
	}

	preq := protocol.PaymentRequest{
		Product:               product,
		DebtorAccount:         protocol.AccountReference{IBAN: req.DebtorIBAN, Currency: req.Currency},
		CreditorAccount:       protocol.AccountReference{IBAN: req.CreditorIBAN, Currency: req.Currency},
		CreditorName:          req.CreditorName,
		Amount:                protocol.Amount{Currency: req.Currency, Value: req.Amount},
		RemittanceInformation: req.Remittance,
		Instant:               req.Instant,
	}

	result, err := initiator.InitiatePayment(ctx, call, preq)
	if err != nil {
		l.Warn("payment initiation failed", slog.String("request_id", call.RequestID.String()), slog.Any("error", err))
		return Redirect{}, fmt.Errorf("%w: initiate payment: %w", ErrUnexpectedProtocolResponse, err)
	}

	out, err := accept(ctx, s.Correlations, s.recorder(), res, req.OkURL, req.NokURL, Accepted{
		Session: sess,
		BankID:  req.BankID,
		Result:  result,
		Payment: &domain.Payment{
			AccountID:    req.AccountID,
			CreditorIBAN: req.CreditorIBAN,
			CreditorName: req.CreditorName,
			DebtorIBAN:   req.DebtorIBAN,
			Amount:       req.Amount,
			Currency:     req.Currency,
			Remittance:   req.Remittance,
			Instant:      req.Instant,
			Product:      preq.Product,
		},
	})
	if err != nil {
		return Redirect{}, err
	}

	l.Info("payment initiated", slog.String("payment_id", out.ResourceID), slog.String("request_id", call.RequestID.String()))
	return out, nil
}

// amountDigits counts the significant digits before the decimal point.
func amountDigits(amount string) int {
	whole, _, _ := strings.Cut(amount, ".")
	return len(strings.TrimLeft(whole, "0"))
}

func (s *PaymentService) validate(req *InitiateRequest) error {
	req.Amount = strings.TrimSpace(req.Amount)
	req.CreditorIBAN = normalizeIBAN(req.CreditorIBAN)
	req.DebtorIBAN = normalizeIBAN(req.DebtorIBAN)
	req.Currency = strings.ToUpper(strings.TrimSpace(req.Currency))
	if req.Currency == "" {
		req.Currency = s.Currency
	}
	if req.Currency == "" {
		req.Currency = DefaultCurrency
	}

	switch {
	case req.AccountID == "":
		return fmt.Errorf("%w: account is required", ErrInvalidRequest)
	case !amountPattern.MatchString(req.Amount):
		return fmt.Errorf("%w: amount %q must be a decimal with at most two fraction digits", ErrInvalidRequest, req.Amount)
	case strings.Trim(req.Amount, "0.") == "":
		return fmt.Errorf("%w: amount must be greater than zero", ErrInvalidRequest)
	case amountDigits(req.Amount) > MaxAmountDigits:
		return fmt.Errorf("%w: amount %q exceeds %d integer digits", ErrInvalidRequest, req.Amount, MaxAmountDigits)
	case req.CreditorIBAN == "":
		return fmt.Errorf("%w: creditor iban is required", ErrInvalidRequest)
	case req.DebtorIBAN == "":
		return fmt.Errorf("%w: debtor iban is required", ErrInvalidRequest)
	case len(req.Currency) != 3:
		return fmt.Errorf("%w: currency %q", ErrInvalidRequest, req.Currency)
	}
	return s.Redirects.ValidatePair(req.OkURL, req.NokURL)
}

func normalizeIBAN(s string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
}

// Information returns a payment owned by sess merged with the bank's view.
func (s *PaymentService) Information(ctx context.Context, sess domain.Session, bankID, paymentID string) (PaymentDetails, error) {
	p, err := ownedPayment(ctx, s.Store, sess, bankID, paymentID)
	if err != nil {
		return PaymentDetails{}, err
	}

	getter, action, err := catalog.ResolveAs[protocol.PaymentInformationGetter](s.Catalog, bankID, domain.ActionGetPaymentInformation)
	if err != nil {
		return PaymentDetails{}, err
	}

	info, err := getter.GetPaymentInformation(ctx, newCall(action.Bank, sess), p.Product, p.ProtocolSessionID)
	if err != nil {
		return PaymentDetails{}, fmt.Errorf("%w: payment information: %w", ErrUnexpectedProtocolResponse, err)
	}
	return PaymentDetails{Payment: p, Bank: info}, nil
}

// ownedPayment loads a payment, hiding ones that belong to another session
// or bank.
func ownedPayment(ctx context.Context, st store.Store, sess domain.Session, bankID, paymentID string) (domain.Payment, error) {
	p, err := st.Payments().GetPayment(ctx, paymentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Payment{}, ErrNotFound
		}
		return domain.Payment{}, err
	}
	if p.SessionID != sess.ID || p.BankID != bankID {
		return domain.Payment{}, ErrNotFound
	}
	return p, nil
}
