package peerpay

import (
	"context"

	"github.com/peerpay-dev/peerpay/domain"
	"github.com/peerpay-dev/peerpay/opclient"
)

// OpenPaymentsClient is the facade the grant lifecycle needs from the
// underlying signed-request transport. opclient.Client is the production
// implementation; tests substitute fakes.
type OpenPaymentsClient interface {
	WalletAddressURL() string
	ResolveWalletAddress(ctx context.Context, walletAddressURL string) (*domain.WalletAddress, error)
	RequestGrant(ctx context.Context, grantEndpoint string, req *opclient.GrantRequest) (*opclient.GrantResponse, error)
	ContinueGrant(ctx context.Context, continueURI, continueToken, interactRef string) (*opclient.GrantResponse, error)
	CreateIncomingPayment(ctx context.Context, resourceServer, accessToken string, req *opclient.IncomingPaymentRequest) (*opclient.IncomingPayment, error)
	GetIncomingPayment(ctx context.Context, paymentURL, accessToken string) (*opclient.IncomingPayment, error)
	ListIncomingPayments(ctx context.Context, resourceServer, accessToken, walletAddress string, first int) ([]opclient.IncomingPayment, error)
	CreateQuote(ctx context.Context, resourceServer, accessToken string, req *opclient.QuoteRequest) (*opclient.Quote, error)
	CreateOutgoingPayment(ctx context.Context, resourceServer, accessToken string, req *opclient.OutgoingPaymentRequest) (*opclient.OutgoingPayment, error)
	ListOutgoingPayments(ctx context.Context, resourceServer, accessToken, walletAddress string, first int) ([]opclient.OutgoingPayment, error)
}

// ClientFactory builds a client bound to one identity. Identities arrive
// per request, so a fresh client is created for every operation.
type ClientFactory func(identity domain.Identity) (OpenPaymentsClient, error)

// DefaultClientFactory builds real opclient clients.
func DefaultClientFactory(opts ...opclient.Option) ClientFactory {
	return func(identity domain.Identity) (OpenPaymentsClient, error) {
		return opclient.New(identity, opts...)
	}
}
