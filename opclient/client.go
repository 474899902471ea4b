// Package opclient is the HTTP facade over a wallet's authorization and
// resource servers: wallet metadata resolution, grant requests and
// continuations, and payment/quote resource operations. It owns no flow
// state; grant classification and pending-authorization bookkeeping live
// with the caller.
package opclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/peerpay-dev/peerpay/domain"
	"github.com/peerpay-dev/peerpay/errors"
)

const defaultTimeout = 30 * time.Second

// Client performs signed Open Payments operations for one identity.
type Client struct {
	http     *http.Client
	signer   RequestSigner
	identity domain.Identity
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient swaps the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithSigner swaps the request signer.
func WithSigner(s RequestSigner) Option {
	return func(c *Client) { c.signer = s }
}

// New creates a client for the given identity.
func New(identity domain.Identity, opts ...Option) (*Client, error) {
	if !identity.Valid() {
		return nil, fmt.Errorf("opclient: incomplete identity (keyId, private key and wallet address are required)")
	}

	c := &Client{
		http:     &http.Client{Timeout: defaultTimeout},
		signer:   NoopSigner(),
		identity: identity,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// WalletAddressURL returns the identity's own wallet address URL.
func (c *Client) WalletAddressURL() string {
	return c.identity.WalletAddressURL
}

// ResolveWalletAddress fetches the public metadata document of a wallet
// address: its canonical id and the locations of its authorization and
// resource servers.
func (c *Client) ResolveWalletAddress(ctx context.Context, walletAddressURL string) (*domain.WalletAddress, error) {
	var resp walletAddressResponse
	if err := c.do(ctx, http.MethodGet, walletAddressURL, "", nil, &resp); err != nil {
		return nil, err
	}

	if resp.ID == "" || resp.AuthServer == "" || resp.ResourceServer == "" {
		return nil, errors.NewUpstreamError(0, "wallet address document is missing id, authServer or resourceServer")
	}

	return &domain.WalletAddress{
		ID:             resp.ID,
		AuthServer:     resp.AuthServer,
		ResourceServer: resp.ResourceServer,
		AssetCode:      resp.AssetCode,
		AssetScale:     resp.AssetScale,
		PublicName:     resp.PublicName,
	}, nil
}

// RequestGrant POSTs a grant request to the authorization server's grant
// endpoint. The response shape (pending vs finalized) is classified by the
// caller.
func (c *Client) RequestGrant(ctx context.Context, grantEndpoint string, req *GrantRequest) (*GrantResponse, error) {
	if req.Client == "" {
		req.Client = c.identity.WalletAddressURL
	}

	var resp GrantResponse
	if err := c.do(ctx, http.MethodPost, grantEndpoint, "", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ContinueGrant presents the continuation token plus the interaction
// reference to convert a pending grant into a finalized one. The
// continuation token is usable at most once.
func (c *Client) ContinueGrant(ctx context.Context, continueURI, continueToken, interactRef string) (*GrantResponse, error) {
	var resp GrantResponse
	body := &ContinueRequest{InteractRef: interactRef}
	if err := c.do(ctx, http.MethodPost, continueURI, continueToken, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateIncomingPayment creates an invoice on the resource server.
func (c *Client) CreateIncomingPayment(ctx context.Context, resourceServer, accessToken string, req *IncomingPaymentRequest) (*IncomingPayment, error) {
	var resp IncomingPayment
	u := joinURL(resourceServer, "/incoming-payments")
	if err := c.do(ctx, http.MethodPost, u, accessToken, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetIncomingPayment reads one invoice by its resource URL.
func (c *Client) GetIncomingPayment(ctx context.Context, paymentURL, accessToken string) (*IncomingPayment, error) {
	var resp IncomingPayment
	if err := c.do(ctx, http.MethodGet, paymentURL, accessToken, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListIncomingPayments lists invoices of one wallet address, newest page
// first.
func (c *Client) ListIncomingPayments(ctx context.Context, resourceServer, accessToken, walletAddress string, first int) ([]IncomingPayment, error) {
	var resp incomingPaymentList
	u := listURL(resourceServer, "/incoming-payments", walletAddress, first)
	if err := c.do(ctx, http.MethodGet, u, accessToken, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Result, nil
}

// CreateQuote creates a price-locked quote for paying the receiver.
func (c *Client) CreateQuote(ctx context.Context, resourceServer, accessToken string, req *QuoteRequest) (*Quote, error) {
	var resp Quote
	u := joinURL(resourceServer, "/quotes")
	if err := c.do(ctx, http.MethodPost, u, accessToken, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateOutgoingPayment moves the funds a finalized grant authorized.
func (c *Client) CreateOutgoingPayment(ctx context.Context, resourceServer, accessToken string, req *OutgoingPaymentRequest) (*OutgoingPayment, error) {
	var resp OutgoingPayment
	u := joinURL(resourceServer, "/outgoing-payments")
	if err := c.do(ctx, http.MethodPost, u, accessToken, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListOutgoingPayments lists sent payments of one wallet address.
func (c *Client) ListOutgoingPayments(ctx context.Context, resourceServer, accessToken, walletAddress string, first int) ([]OutgoingPayment, error) {
	var resp outgoingPaymentList
	u := listURL(resourceServer, "/outgoing-payments", walletAddress, first)
	if err := c.do(ctx, http.MethodGet, u, accessToken, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Result, nil
}

// do executes one JSON request. Non-2xx responses become UpstreamError with
// the upstream status and description preserved.
func (c *Client) do(ctx context.Context, method, rawURL, accessToken string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("opclient: encoding request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return fmt.Errorf("opclient: building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "GNAP "+accessToken)
	}

	if err := c.signer.Sign(req); err != nil {
		return fmt.Errorf("opclient: signing request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.NewUpstreamError(0, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.NewUpstreamError(resp.StatusCode, readErrorDescription(resp.Body))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.NewUpstreamError(0, fmt.Sprintf("decoding response: %v", err))
	}
	return nil
}

// readErrorDescription extracts a human-readable description from an error
// body, which wallets send either as a JSON error object or as plain text.
func readErrorDescription(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 8<<10))
	if err != nil || len(raw) == 0 {
		return "upstream returned no error description"
	}

	var structured struct {
		Error struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &structured) == nil {
		if structured.Error.Description != "" {
			return structured.Error.Description
		}
		if structured.Message != "" {
			return structured.Message
		}
	}
	return strings.TrimSpace(string(raw))
}

func joinURL(base, p string) string {
	return strings.TrimSuffix(base, "/") + p
}

func listURL(base, p, walletAddress string, first int) string {
	q := url.Values{}
	q.Set("wallet-address", walletAddress)
	if first > 0 {
		q.Set("first", strconv.Itoa(first))
	}
	return joinURL(base, p) + "?" + q.Encode()
}
