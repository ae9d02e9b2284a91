package message

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/aussiebroadwan/bankgate/internal/gateway/protocol"
	"github.com/aussiebroadwan/bankgate/pkg/slogx"
	"github.com/google/uuid"
)

// Client performs bank exchanges for every message handler.
type Client struct {
	ex   Exchanger
	stan atomic.Uint32
}

func NewClient(ex Exchanger) *Client {
	c := &Client{ex: ex}
	seed := uuid.New()
	c.stan.Store(binary.BigEndian.Uint32(seed[:4]) % 999999)
	return c
}

// BankError is a response code other than approved or pending SCA.
type BankError struct {
	Code    string
	Message string
}

func (e *BankError) Error() string {
	if e.Message == "" {
		return "bank response code " + e.Code
	}
	return fmt.Sprintf("bank response code %s: %s", e.Code, e.Message)
}

func (e *BankError) Unwrap() error { return protocol.ErrBankRejected }

// nextSTAN returns the next six digit audit number, skipping zero.
func (c *Client) nextSTAN() string {
	n := c.stan.Add(1) % 1000000
	if n == 0 {
		n = c.stan.Add(1) % 1000000
	}
	return fmt.Sprintf("%06d", n)
}

type request struct {
	action string
	mti    string
	proc   string
	fields map[int]string
	data   url.Values
}

// exchange sends req and returns the response code and private data.
// Codes other than approved and pending SCA come back as *BankError.
func (c *Client) exchange(ctx context.Context, call protocol.Call, req request) (string, url.Values, error) {
	msg, err := NewRequest(req.mti, req.proc, c.nextSTAN(), time.Now())
	if err != nil {
		return "", nil, err
	}
	for id, v := range req.fields {
		if v == "" {
			continue
		}
		if err := msg.Field(id, v); err != nil {
			return "", nil, fmt.Errorf("message: %s: set field %d: %w", req.action, id, err)
		}
	}

	data := req.data
	if data == nil {
		data = url.Values{}
	}
	data.Set(KeyRequestID, call.RequestID.String())
	if call.Credentials.PSUID != "" {
		data.Set(KeyPSU, call.Credentials.PSUID)
	}
	if call.Credentials.Secret != "" {
		data.Set(KeySecret, call.Credentials.Secret)
	}
	if call.ConsentID != "" {
		data.Set(KeyConsent, call.ConsentID)
	}
	if err := SetPrivateData(msg, data); err != nil {
		return "", nil, err
	}

	log := slogx.FromContext(ctx).With(
		slog.String("bank_id", call.Bank.ID),
		slog.String("action", req.action),
		slog.String("request_id", call.RequestID.String()),
	)
	start := time.Now()

	resp, err := c.ex.Exchange(ctx, call.Bank.Endpoint, msg)
	if err != nil {
		log.DebugContext(ctx, "bank exchange failed", slog.Any("error", err))
		return "", nil, fmt.Errorf("message: %s: %w", req.action, err)
	}

	code, err := ResponseCode(resp)
	if err != nil {
		return "", nil, fmt.Errorf("message: %s: %w", req.action, err)
	}
	out, err := PrivateData(resp)
	if err != nil {
		return "", nil, fmt.Errorf("message: %s: %w", req.action, err)
	}

	log.DebugContext(ctx, "bank exchange",
		slog.String("mti", req.mti),
		slog.String("response_code", code),
		slog.Duration("duration", time.Since(start)),
	)

	if code != RespApproved && code != RespPendingSCA {
		return code, out, fmt.Errorf("message: %s: %w", req.action, &BankError{Code: code, Message: out.Get(KeyMessage)})
	}
	return code, out, nil
}

// result maps a response code and private data onto a protocol result.
func result(code string, data url.Values) protocol.Result {
	r := protocol.Result{
		Outcome:           protocol.OutcomeFinal,
		ProtocolSessionID: data.Get(KeyRef),
		Status:            data.Get(KeyStatus),
	}
	if code == RespPendingSCA {
		r.Outcome = protocol.OutcomeAcceptedPending
		r.ScaRedirect = data.Get(KeyRedirect)
	}
	return r
}

func authorizationData(ref protocol.AuthorizationRef) url.Values {
	return url.Values{
		KeyRef:     {ref.ProtocolSessionID},
		KeyRefType: {string(ref.Type)},
		KeyProduct: {ref.Product},
	}
}

func authorizationStatus(data url.Values) protocol.AuthorizationStatus {
	return protocol.AuthorizationStatus{
		ScaStatus:   protocol.ScaStatus(data.Get(KeySca)),
		ScaRedirect: data.Get(KeyRedirect),
	}
}

func boolString(b bool) string { return strconv.FormatBool(b) }
