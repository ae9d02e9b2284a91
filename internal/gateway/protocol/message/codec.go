// Package message adapts the gateway's logical actions to banks speaking
// ISO 8583 (1987) over TCP. Card-style fields carry amounts and accounts;
// everything else travels URL-encoded in field 48.
package message

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/moov-io/iso8583"
)

// Message type indicators.
const (
	MTIFinancialRequest  = "0200"
	MTIFinancialResponse = "0210"
	MTIAdminRequest      = "0600"
	MTIAdminResponse     = "0610"
)

// Processing codes (field 3) per logical action.
const (
	ProcListAccounts        = "300000"
	ProcPaymentStatus       = "310000"
	ProcPaymentInformation  = "320000"
	ProcAuthorizationState  = "330000"
	ProcUpdateAuthorization = "340000"
	ProcRedirectStatus      = "350000"
	ProcDenyAuthorization   = "360000"
	ProcListTransactions    = "380000"
	ProcCreateConsent       = "390000"
	ProcTransfer            = "400000"
)

// Response codes (field 39).
const (
	RespApproved    = "00"
	RespPendingSCA  = "01"
	RespDeclined    = "05"
	RespInProgress  = "09"
	RespFormatError = "30"
)

// Field numbers used by the dialect.
const (
	fieldProcessingCode = 3
	fieldAmount         = 4
	fieldTransmission   = 7
	fieldSTAN           = 11
	fieldResponseCode   = 39
	fieldPrivateData    = 48
	fieldCurrency       = 49
	fieldDebtorAccount  = 102
	fieldCreditorAcct   = 103
)

// Keys of the field 48 private data.
const (
	KeyPSU          = "psu"
	KeySecret       = "secret"
	KeyRequestID    = "rid"
	KeyRedirectOK   = "ok"
	KeyRedirectNOK  = "nok"
	KeyProduct      = "product"
	KeyCreditorName = "cname"
	KeyRemittance   = "rmt"
	KeyInstant      = "instant"
	KeyRef          = "ref"
	KeyRefType      = "reftype"
	KeyConsent      = "consent"
	KeyAccount      = "account"
	KeyMethod       = "method"
	KeyTAN          = "tan"
	KeyOutcome      = "outcome"

	KeyRedirect    = "redirect"
	KeyStatus      = "status"
	KeySca         = "sca"
	KeyAccounts    = "acc"
	KeyTransaction = "tx"
	KeyMessage     = "msg"
)

var errMalformed = errors.New("message: malformed response")

// NewRequest builds a request message with the common header fields.
func NewRequest(mti, proc, stan string, now time.Time) (*iso8583.Message, error) {
	msg := iso8583.NewMessage(iso8583.Spec87)
	msg.MTI(mti)
	for id, v := range map[int]string{
		fieldProcessingCode: proc,
		fieldTransmission:   now.UTC().Format("0102150405"),
		fieldSTAN:           stan,
	} {
		if err := msg.Field(id, v); err != nil {
			return nil, fmt.Errorf("message: set field %d: %w", id, err)
		}
	}
	return msg, nil
}

// SetPrivateData writes v into field 48.
func SetPrivateData(msg *iso8583.Message, v url.Values) error {
	if len(v) == 0 {
		return nil
	}
	if err := msg.Field(fieldPrivateData, v.Encode()); err != nil {
		return fmt.Errorf("message: set private data: %w", err)
	}
	return nil
}

// PrivateData reads field 48. An absent field yields empty values.
func PrivateData(msg *iso8583.Message) (url.Values, error) {
	raw, err := msg.GetString(fieldPrivateData)
	if err != nil || raw == "" {
		return url.Values{}, nil
	}
	v, err := url.ParseQuery(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: field 48: %v", errMalformed, err)
	}
	return v, nil
}

// ResponseCode reads field 39.
func ResponseCode(msg *iso8583.Message) (string, error) {
	code, err := msg.GetString(fieldResponseCode)
	if err != nil || code == "" {
		return "", fmt.Errorf("%w: no response code", errMalformed)
	}
	return code, nil
}

// ProcessingCode reads field 3, restoring its zero padding.
func ProcessingCode(msg *iso8583.Message) string {
	code, _ := msg.GetString(fieldProcessingCode)
	if len(code) < 6 {
		code = strings.Repeat("0", 6-len(code)) + code
	}
	return code
}

// STAN reads field 11.
func STAN(msg *iso8583.Message) string {
	stan, _ := msg.GetString(fieldSTAN)
	return stan
}

// NewResponse builds the answer to req with the given response code.
func NewResponse(req *iso8583.Message, code string, data url.Values) (*iso8583.Message, error) {
	mti, err := req.GetMTI()
	if err != nil {
		return nil, fmt.Errorf("message: request MTI: %w", err)
	}
	resp := iso8583.NewMessage(iso8583.Spec87)
	resp.MTI(responseMTI(mti))

	for _, id := range []int{fieldProcessingCode, fieldSTAN} {
		v, err := req.GetString(id)
		if err != nil {
			return nil, fmt.Errorf("message: request field %d: %w", id, err)
		}
		if err := resp.Field(id, v); err != nil {
			return nil, fmt.Errorf("message: set field %d: %w", id, err)
		}
	}
	if err := resp.Field(fieldResponseCode, code); err != nil {
		return nil, fmt.Errorf("message: set response code: %w", err)
	}
	if err := SetPrivateData(resp, data); err != nil {
		return nil, err
	}
	return resp, nil
}

func responseMTI(mti string) string {
	switch mti {
	case MTIFinancialRequest:
		return MTIFinancialResponse
	case MTIAdminRequest:
		return MTIAdminResponse
	}
	return mti
}

// toMinorUnits converts a decimal amount such as "10.5" into "1050".
func toMinorUnits(amount string) (string, error) {
	whole, frac, _ := strings.Cut(amount, ".")
	if len(frac) > 2 {
		return "", fmt.Errorf("message: amount %q has more than two decimals", amount)
	}
	frac += strings.Repeat("0", 2-len(frac))
	n, err := strconv.ParseUint(whole+frac, 10, 64)
	if err != nil {
		return "", fmt.Errorf("message: amount %q: %w", amount, err)
	}
	return strconv.FormatUint(n, 10), nil
}

// fromMinorUnits converts "1050" into "10.50".
func fromMinorUnits(minor string) string {
	if minor == "" {
		return ""
	}
	if len(minor) < 3 {
		minor = strings.Repeat("0", 3-len(minor)) + minor
	}
	return minor[:len(minor)-2] + "." + minor[len(minor)-2:]
}

// joinRecord and splitRecord encode list entries in field 48.
func joinRecord(parts ...string) string { return strings.Join(parts, "|") }

func splitRecord(s string, n int) []string {
	parts := strings.SplitN(s, "|", n)
	for len(parts) < n {
		parts = append(parts, "")
	}
	return parts
}
