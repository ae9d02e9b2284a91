// Package rest adapts the gateway's logical actions to banks exposing a
// JSON HTTP API in the Berlin Group style.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aussiebroadwan/bankgate/internal/gateway/protocol"
	"github.com/aussiebroadwan/bankgate/pkg/slogx"
)

const maxResponseBytes = 1 << 20

// Client performs bank requests for every rest handler.
type Client struct {
	HTTPClient *http.Client
}

func NewClient(timeout time.Duration) *Client {
	return &Client{HTTPClient: &http.Client{Timeout: timeout}}
}

// BankError is a non-2xx bank answer. It wraps protocol.ErrBankRejected.
type BankError struct {
	Status   int
	Messages []TppMessage
}

func (e *BankError) Error() string {
	if len(e.Messages) == 0 {
		return fmt.Sprintf("bank answered %d", e.Status)
	}
	m := e.Messages[0]
	return fmt.Sprintf("bank answered %d: %s %s", e.Status, m.Code, m.Text)
}

func (e *BankError) Unwrap() error { return protocol.ErrBankRejected }

// do sends one request and decodes a JSON answer into out, when out is not nil.
func (c *Client) do(ctx context.Context, call protocol.Call, action, method, path string, body, out any) (int, error) {
	endpoint, err := url.JoinPath(call.Bank.Endpoint, path)
	if err != nil {
		return 0, fmt.Errorf("rest: bank %s endpoint: %w", call.Bank.ID, err)
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("rest: encode %s: %w", action, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return 0, fmt.Errorf("rest: build %s: %w", action, err)
	}
	setHeaders(req, call)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	log := slogx.FromContext(ctx).With(
		slog.String("bank_id", call.Bank.ID),
		slog.String("action", action),
		slog.String("request_id", call.RequestID.String()),
	)
	start := time.Now()

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		log.DebugContext(ctx, "bank request failed", slog.Any("error", err))
		return 0, fmt.Errorf("rest: %s: %w", action, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, fmt.Errorf("rest: %s: read body: %w", action, err)
	}

	log.DebugContext(ctx, "bank request",
		slog.String("method", method),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		bankErr := &BankError{Status: resp.StatusCode}
		var payload ErrorResponse
		if json.Unmarshal(raw, &payload) == nil {
			bankErr.Messages = payload.TppMessages
		}
		return resp.StatusCode, fmt.Errorf("rest: %s: %w", action, bankErr)
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return resp.StatusCode, fmt.Errorf("rest: %s: decode: %w", action, err)
		}
	}
	return resp.StatusCode, nil
}

func setHeaders(req *http.Request, call protocol.Call) {
	req.Header.Set(HeaderRequestID, call.RequestID.String())
	if call.Credentials.PSUID != "" {
		req.Header.Set(HeaderPSUID, call.Credentials.PSUID)
	}
	if call.Credentials.Secret != "" {
		req.Header.Set("Authorization", "Bearer "+call.Credentials.Secret)
	}
	if call.ConsentID != "" {
		req.Header.Set(HeaderConsentID, call.ConsentID)
	}
	if call.RedirectOK != "" {
		req.Header.Set(HeaderRedirectPrefers, "true")
		req.Header.Set(HeaderRedirectURI, call.RedirectOK)
		req.Header.Set(HeaderNokRedirectURI, call.RedirectNOK)
	}
}

// paymentProduct maps the instant flag onto the product path segment.
func paymentProduct(product string, instant bool) string {
	if instant && !strings.HasPrefix(product, "instant-") {
		return "instant-" + product
	}
	return product
}

func result(status, id string, links Links) protocol.Result {
	r := protocol.Result{
		Outcome:           protocol.OutcomeFinal,
		ProtocolSessionID: id,
		Status:            status,
	}
	if links.ScaRedirect != nil && links.ScaRedirect.Href != "" {
		r.Outcome = protocol.OutcomeAcceptedPending
		r.ScaRedirect = links.ScaRedirect.Href
	}
	return r
}
