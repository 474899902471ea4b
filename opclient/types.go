package opclient

import "github.com/peerpay-dev/peerpay/domain"

// Wire types for the GNAP-style grant protocol and the Open Payments
// resource servers. Field names follow the protocol, not Go conventions.

// GrantRequest is the body POSTed to an authorization server's grant
// endpoint.
type GrantRequest struct {
	AccessToken AccessTokenRequest `json:"access_token"`
	Client      string             `json:"client,omitempty"`
	Interact    *InteractRequest   `json:"interact,omitempty"`
}

// AccessTokenRequest wraps the requested access items.
type AccessTokenRequest struct {
	Access []AccessItem `json:"access"`
}

// AccessItem is one requested capability.
type AccessItem struct {
	Type       string        `json:"type"`
	Actions    []string      `json:"actions"`
	Identifier string        `json:"identifier,omitempty"`
	Limits     *AccessLimits `json:"limits,omitempty"`
}

// AccessLimits narrows an outgoing-payment access item.
type AccessLimits struct {
	QuoteID string `json:"quoteId,omitempty"`
}

// InteractRequest describes how the user can be sent to give consent and
// how the flow is finished.
type InteractRequest struct {
	Start  []string        `json:"start"`
	Finish *InteractFinish `json:"finish,omitempty"`
}

// InteractFinish is the redirect-based finish descriptor. Nonce must be
// freshly generated per request; it binds the request to its callback.
type InteractFinish struct {
	Method string `json:"method"`
	URI    string `json:"uri"`
	Nonce  string `json:"nonce"`
}

// GrantResponse is what the authorization server returns for a grant
// request or continuation. Exactly one of the two shapes is present: a
// usable access token (finalized) or an interaction plus continuation
// (pending).
type GrantResponse struct {
	AccessToken *AccessTokenResponse `json:"access_token,omitempty"`
	Interact    *InteractResponse    `json:"interact,omitempty"`
	Continue    *ContinueResponse    `json:"continue,omitempty"`
}

// AccessTokenResponse carries the issued token.
type AccessTokenResponse struct {
	Value     string `json:"value"`
	Manage    string `json:"manage,omitempty"`
	ExpiresIn int    `json:"expires_in,omitempty"`
}

// InteractResponse carries the consent redirect and the server's finish
// nonce used in callback hash verification.
type InteractResponse struct {
	Redirect string `json:"redirect"`
	Finish   string `json:"finish"`
}

// ContinueResponse authorizes the continuation call for a pending grant.
type ContinueResponse struct {
	AccessToken ContinueAccessToken `json:"access_token"`
	URI         string              `json:"uri"`
	Wait        int                 `json:"wait,omitempty"`
}

// ContinueAccessToken is the single-use token presented on continuation.
type ContinueAccessToken struct {
	Value string `json:"value"`
}

// ContinueRequest is the continuation body carrying the interaction
// reference from the callback.
type ContinueRequest struct {
	InteractRef string `json:"interact_ref"`
}

// walletAddressResponse is the public wallet metadata document.
type walletAddressResponse struct {
	ID             string `json:"id"`
	PublicName     string `json:"publicName,omitempty"`
	AssetCode      string `json:"assetCode"`
	AssetScale     int    `json:"assetScale"`
	AuthServer     string `json:"authServer"`
	ResourceServer string `json:"resourceServer"`
}

// IncomingPaymentRequest creates an invoice on the receiver's resource
// server.
type IncomingPaymentRequest struct {
	WalletAddress  string        `json:"walletAddress"`
	IncomingAmount domain.Amount `json:"incomingAmount"`
	ExpiresAt      string        `json:"expiresAt,omitempty"`
}

// IncomingPayment is the invoice resource.
type IncomingPayment struct {
	ID             string         `json:"id"`
	WalletAddress  string         `json:"walletAddress"`
	IncomingAmount domain.Amount  `json:"incomingAmount"`
	ReceivedAmount *domain.Amount `json:"receivedAmount,omitempty"`
	State          string         `json:"state,omitempty"`
	Completed      bool           `json:"completed,omitempty"`
	CreatedAt      string         `json:"createdAt"`
	ExpiresAt      string         `json:"expiresAt,omitempty"`
}

// QuoteRequest locks in price and fees for paying one incoming payment.
type QuoteRequest struct {
	WalletAddress string `json:"walletAddress"`
	Receiver      string `json:"receiver"`
	Method        string `json:"method"`
}

// Quote is the price-locked estimate resource.
type Quote struct {
	ID            string        `json:"id"`
	WalletAddress string        `json:"walletAddress"`
	Receiver      string        `json:"receiver"`
	DebitAmount   domain.Amount `json:"debitAmount"`
	ReceiveAmount domain.Amount `json:"receiveAmount"`
	Method        string        `json:"method"`
	CreatedAt     string        `json:"createdAt"`
	ExpiresAt     string        `json:"expiresAt,omitempty"`
}

// OutgoingPaymentRequest sends the funds a finalized grant authorized.
type OutgoingPaymentRequest struct {
	WalletAddress string `json:"walletAddress"`
	QuoteID       string `json:"quoteId"`
}

// OutgoingPayment is the sent-funds resource.
type OutgoingPayment struct {
	ID            string         `json:"id"`
	WalletAddress string         `json:"walletAddress"`
	QuoteID       string         `json:"quoteId,omitempty"`
	State         string         `json:"state,omitempty"`
	Failed        bool           `json:"failed,omitempty"`
	DebitAmount   domain.Amount  `json:"debitAmount"`
	ReceiveAmount *domain.Amount `json:"receiveAmount,omitempty"`
	SentAmount    *domain.Amount `json:"sentAmount,omitempty"`
	CreatedAt     string         `json:"createdAt"`
}

// incomingPaymentList and outgoingPaymentList are the paginated list
// envelopes returned by resource servers.
type incomingPaymentList struct {
	Pagination pagination        `json:"pagination"`
	Result     []IncomingPayment `json:"result"`
}

type outgoingPaymentList struct {
	Pagination pagination        `json:"pagination"`
	Result     []OutgoingPayment `json:"result"`
}

type pagination struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor,omitempty"`
}
