package peerpay

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/peerpay-dev/peerpay/domain"
	"github.com/peerpay-dev/peerpay/opclient"
)

// CreateIncomingPayment creates an invoice on the seller's wallet: a
// non-interactive grant followed by resource creation. The amount value is
// passed through to the resource server byte-identically.
func (s *Service) CreateIncomingPayment(ctx context.Context, seller domain.Identity, amount domain.Amount) (*opclient.IncomingPayment, error) {
	client, err := s.clients(seller)
	if err != nil {
		return nil, err
	}

	wallet, err := client.ResolveWalletAddress(ctx, seller.WalletAddressURL)
	if err != nil {
		return nil, err
	}

	resp, err := client.RequestGrant(ctx, wallet.AuthServer, accessOnlyGrant(domain.AccessRequest{
		Type:    domain.ResourceTypeIncomingPayment,
		Actions: []string{domain.ActionList, domain.ActionRead, domain.ActionReadAll, domain.ActionComplete, domain.ActionCreate},
	}))
	if err != nil {
		return nil, err
	}
	grant, err := FinalizedFromResponse(resp)
	if err != nil {
		return nil, err
	}

	payment, err := client.CreateIncomingPayment(ctx, wallet.ResourceServer, grant.AccessToken, &opclient.IncomingPaymentRequest{
		WalletAddress:  wallet.ID,
		IncomingAmount: amount,
		ExpiresAt:      time.Now().Add(s.opts.InvoiceTTL).UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("payment_id", payment.ID).Msg("Incoming payment created")
	return payment, nil
}

// CheckPaymentStatus reads an invoice with a fresh read-only grant so the
// seller can see whether it has been paid.
func (s *Service) CheckPaymentStatus(ctx context.Context, seller domain.Identity, paymentURL string) (*opclient.IncomingPayment, error) {
	client, err := s.clients(seller)
	if err != nil {
		return nil, err
	}

	wallet, err := client.ResolveWalletAddress(ctx, seller.WalletAddressURL)
	if err != nil {
		return nil, err
	}

	resp, err := client.RequestGrant(ctx, wallet.AuthServer, accessOnlyGrant(domain.AccessRequest{
		Type:    domain.ResourceTypeIncomingPayment,
		Actions: []string{domain.ActionRead},
	}))
	if err != nil {
		return nil, err
	}
	grant, err := FinalizedFromResponse(resp)
	if err != nil {
		return nil, err
	}

	return client.GetIncomingPayment(ctx, paymentURL, grant.AccessToken)
}
