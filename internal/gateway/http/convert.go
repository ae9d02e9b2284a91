package http

import (
	"github.com/aussiebroadwan/bankgate/internal/gateway/domain"
	"github.com/aussiebroadwan/bankgate/internal/gateway/protocol"
	"github.com/aussiebroadwan/bankgate/internal/gateway/service"
	"github.com/aussiebroadwan/bankgate/pkg/gatewaysdk"
)

func toPayment(p domain.Payment) gatewaysdk.Payment {
	return gatewaysdk.Payment{
		ID:           p.ID,
		BankID:       p.BankID,
		AccountID:    p.AccountID,
		State:        string(p.State),
		Confirmed:    p.Confirmed,
		CreditorIBAN: p.CreditorIBAN,
		CreditorName: p.CreditorName,
		DebtorIBAN:   p.DebtorIBAN,
		Amount:       p.Amount,
		Currency:     p.Currency,
		Remittance:   p.Remittance,
		Instant:      p.Instant,
		CreatedAt:    p.CreatedAt,
	}
}

func toRedirect(r service.Redirect) gatewaysdk.RedirectResponse {
	return gatewaysdk.RedirectResponse{Location: r.Location, ResourceID: r.ResourceID}
}

func toAuthorization(a service.Authorization) gatewaysdk.AuthorizationResponse {
	return gatewaysdk.AuthorizationResponse{
		PaymentID:   a.ResourceID,
		State:       string(a.State),
		ScaStatus:   string(a.ScaStatus),
		ScaRedirect: a.ScaRedirect,
	}
}

func toAccounts(in []protocol.Account) []gatewaysdk.Account {
	out := make([]gatewaysdk.Account, 0, len(in))
	for _, a := range in {
		out = append(out, gatewaysdk.Account{
			ResourceID: a.ResourceID,
			IBAN:       a.IBAN,
			Currency:   a.Currency,
			Name:       a.Name,
		})
	}
	return out
}

func toTransactions(in []protocol.Transaction) []gatewaysdk.Transaction {
	out := make([]gatewaysdk.Transaction, 0, len(in))
	for _, t := range in {
		out = append(out, gatewaysdk.Transaction{
			TransactionID: t.TransactionID,
			BookingDate:   t.BookingDate,
			Amount:        t.Amount.Value,
			Currency:      t.Amount.Currency,
			Counterparty:  t.Counterparty,
			Remittance:    t.Remittance,
		})
	}
	return out
}
