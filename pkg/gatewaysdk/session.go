package gatewaysdk

import (
	"context"
	"net/http"
	"net/url"
)

// Session is an authenticated gateway session.
type Session struct {
	client      *Client
	accessToken string
	sessionID   string
}

func (s *Session) ID() string          { return s.sessionID }
func (s *Session) AccessToken() string { return s.accessToken }

// Logout ends the session. Pending authorizations are discarded.
func (s *Session) Logout(ctx context.Context) error {
	resp, err := s.doAuthRequest(ctx, http.MethodDelete, "/v1/session", nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// ListBanks returns the catalog.
func (s *Session) ListBanks(ctx context.Context) (*BankListResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/banks", nil)
	if err != nil {
		return nil, err
	}

	var out BankListResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ============================================================================
// Payments
// ============================================================================

// InitiatePayment starts a payment. The returned Location is the bank SCA
// target for the user's browser.
func (s *Session) InitiatePayment(ctx context.Context, bankID, accountID string, req PaymentInitiationRequest) (*RedirectResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, accountPath(bankID, accountID)+"/payments", req)
	if err != nil {
		return nil, err
	}

	var out RedirectResponse
	if err := decodeJSON(resp, &out, http.StatusAccepted); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListPayments returns confirmed payments with their current bank status.
func (s *Session) ListPayments(ctx context.Context, bankID, accountID string) (*PaymentListResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, accountPath(bankID, accountID)+"/payments", nil)
	if err != nil {
		return nil, err
	}

	var out PaymentListResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) GetPayment(ctx context.Context, bankID, paymentID string) (*PaymentInformationResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, paymentPath(bankID, paymentID), nil)
	if err != nil {
		return nil, err
	}

	var out PaymentInformationResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ============================================================================
// Authorization
// ============================================================================

func (s *Session) GetAuthorization(ctx context.Context, bankID, paymentID string) (*AuthorizationResponse, error) {
	return s.authorization(ctx, http.MethodGet, bankID, paymentID, nil)
}

// UpdateAuthorization sends an embedded SCA step such as a TAN.
func (s *Session) UpdateAuthorization(ctx context.Context, bankID, paymentID string, req UpdateAuthorizationRequest) (*AuthorizationResponse, error) {
	return s.authorization(ctx, http.MethodPut, bankID, paymentID, req)
}

func (s *Session) DenyAuthorization(ctx context.Context, bankID, paymentID string) (*AuthorizationResponse, error) {
	return s.authorization(ctx, http.MethodDelete, bankID, paymentID, nil)
}

func (s *Session) authorization(ctx context.Context, method, bankID, paymentID string, in any) (*AuthorizationResponse, error) {
	resp, err := s.doAuthRequest(ctx, method, paymentPath(bankID, paymentID)+"/authorization", in)
	if err != nil {
		return nil, err
	}

	var out AuthorizationResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ============================================================================
// Accounts
// ============================================================================

// ListAccounts returns accounts, or a consent redirect when the bank needs
// one first. Exactly one of the results is non-nil on success.
func (s *Session) ListAccounts(ctx context.Context, bankID, okURL, nokURL string) (*AccountListResponse, *RedirectResponse, error) {
	path := "/v1/banks/" + url.PathEscape(bankID) + "/accounts" + consentQuery(okURL, nokURL)
	var out AccountListResponse
	redirect, err := s.getOrRedirect(ctx, path, &out)
	if err != nil || redirect != nil {
		return nil, redirect, err
	}
	return &out, nil, nil
}

// ListTransactions behaves like ListAccounts.
func (s *Session) ListTransactions(ctx context.Context, bankID, accountID, okURL, nokURL string) (*TransactionListResponse, *RedirectResponse, error) {
	path := accountPath(bankID, accountID) + "/transactions" + consentQuery(okURL, nokURL)
	var out TransactionListResponse
	redirect, err := s.getOrRedirect(ctx, path, &out)
	if err != nil || redirect != nil {
		return nil, redirect, err
	}
	return &out, nil, nil
}

func (s *Session) getOrRedirect(ctx context.Context, path string, out any) (*RedirectResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusAccepted {
		var redirect RedirectResponse
		if err := decodeJSON(resp, &redirect, http.StatusAccepted); err != nil {
			return nil, err
		}
		return &redirect, nil
	}
	return nil, decodeJSON(resp, out, http.StatusOK)
}

func accountPath(bankID, accountID string) string {
	return "/v1/banks/" + url.PathEscape(bankID) + "/accounts/" + url.PathEscape(accountID)
}

func paymentPath(bankID, paymentID string) string {
	return "/v1/banks/" + url.PathEscape(bankID) + "/payments/" + url.PathEscape(paymentID)
}

func consentQuery(okURL, nokURL string) string {
	if okURL == "" && nokURL == "" {
		return ""
	}
	return "?" + url.Values{"ok_url": {okURL}, "nok_url": {nokURL}}.Encode()
}
