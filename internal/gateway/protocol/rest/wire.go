package rest

// JSON bodies of the rest dialect. Field names follow the Berlin Group
// NextGenPSD2 conventions.

// Header names sent on every bank request.
const (
	HeaderRequestID       = "X-Request-ID"
	HeaderPSUID           = "PSU-ID"
	HeaderConsentID       = "Consent-ID"
	HeaderRedirectURI     = "TPP-Redirect-URI"
	HeaderNokRedirectURI  = "TPP-Nok-Redirect-URI"
	HeaderRedirectPrefers = "TPP-Redirect-Preferred"
)

type AccountReference struct {
	IBAN     string `json:"iban"`
	Currency string `json:"currency,omitempty"`
}

type Amount struct {
	Currency string `json:"currency"`
	Amount   string `json:"amount"`
}

type Href struct {
	Href string `json:"href"`
}

type Links struct {
	ScaRedirect *Href `json:"scaRedirect,omitempty"`
	ScaStatus   *Href `json:"scaStatus,omitempty"`
	Status      *Href `json:"status,omitempty"`
}

type PaymentInitiationRequest struct {
	DebtorAccount                     AccountReference `json:"debtorAccount"`
	InstructedAmount                  Amount           `json:"instructedAmount"`
	CreditorAccount                   AccountReference `json:"creditorAccount"`
	CreditorName                      string           `json:"creditorName"`
	RemittanceInformationUnstructured string           `json:"remittanceInformationUnstructured,omitempty"`
}

type PaymentInitiationResponse struct {
	TransactionStatus string `json:"transactionStatus"`
	PaymentID         string `json:"paymentId"`
	Links             Links  `json:"_links"`
}

type PaymentStatusResponse struct {
	TransactionStatus string `json:"transactionStatus"`
}

type PaymentInformationResponse struct {
	PaymentInitiationRequest
	TransactionStatus string `json:"transactionStatus"`
}

type ConsentAccess struct {
	AllPsd2 string `json:"allPsd2,omitempty"`
}

type ConsentRequest struct {
	Access             ConsentAccess `json:"access"`
	RecurringIndicator bool          `json:"recurringIndicator"`
	ValidUntil         string        `json:"validUntil"`
	FrequencyPerDay    int           `json:"frequencyPerDay"`
}

type ConsentResponse struct {
	ConsentStatus string `json:"consentStatus"`
	ConsentID     string `json:"consentId"`
	Links         Links  `json:"_links"`
}

type AccountDetails struct {
	ResourceID string `json:"resourceId"`
	IBAN       string `json:"iban"`
	Currency   string `json:"currency"`
	Name       string `json:"name,omitempty"`
}

type AccountListResponse struct {
	Accounts []AccountDetails `json:"accounts"`
}

type TransactionDetails struct {
	TransactionID                     string `json:"transactionId"`
	BookingDate                       string `json:"bookingDate"`
	TransactionAmount                 Amount `json:"transactionAmount"`
	CreditorName                      string `json:"creditorName,omitempty"`
	DebtorName                        string `json:"debtorName,omitempty"`
	RemittanceInformationUnstructured string `json:"remittanceInformationUnstructured,omitempty"`
}

type AccountReport struct {
	Booked []TransactionDetails `json:"booked"`
}

type TransactionsResponse struct {
	Transactions AccountReport `json:"transactions"`
}

type ScaStatusResponse struct {
	ScaStatus string `json:"scaStatus"`
	Links     Links  `json:"_links"`
}

type UpdateAuthorisationRequest struct {
	AuthenticationMethodID string `json:"authenticationMethodId,omitempty"`
	ScaAuthenticationData  string `json:"scaAuthenticationData,omitempty"`
}

type TppMessage struct {
	Category string `json:"category"`
	Code     string `json:"code"`
	Text     string `json:"text,omitempty"`
}

type ErrorResponse struct {
	TppMessages []TppMessage `json:"tppMessages"`
}
