package peerpay

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/peerpay-dev/peerpay/cache"
	"github.com/peerpay-dev/peerpay/domain"
	"github.com/peerpay-dev/peerpay/opclient"
)

// CreateQuote locks in the price and fees for paying one invoice. The
// quote grant is non-interactive.
func (s *Service) CreateQuote(ctx context.Context, payer domain.Identity, receiverURL string) (*opclient.Quote, error) {
	client, err := s.clients(payer)
	if err != nil {
		return nil, err
	}

	wallet, err := client.ResolveWalletAddress(ctx, payer.WalletAddressURL)
	if err != nil {
		return nil, err
	}

	resp, err := client.RequestGrant(ctx, wallet.AuthServer, accessOnlyGrant(domain.AccessRequest{
		Type:    domain.ResourceTypeQuote,
		Actions: []string{domain.ActionCreate, domain.ActionRead, domain.ActionReadAll},
	}))
	if err != nil {
		return nil, err
	}
	grant, err := FinalizedFromResponse(resp)
	if err != nil {
		return nil, err
	}

	quote, err := client.CreateQuote(ctx, wallet.ResourceServer, grant.AccessToken, &opclient.QuoteRequest{
		WalletAddress: wallet.ID,
		Receiver:      receiverURL,
		Method:        "ilp",
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("quote_id", quote.ID).Msg("Quote created")
	return quote, nil
}

// StartPaymentResult is what the presentation layer needs to send the user
// into the consent flow. Continuation tokens stay server-side.
type StartPaymentResult struct {
	SessionID   string
	RedirectURL string
}

// StartPayment requests an interactive outgoing-payment grant bound to one
// quote and stores the pending authorization under a fresh session id. The
// session id, not any cookie, is what the callback presents to resume the
// flow: it travels inside the interaction finish URI.
func (s *Service) StartPayment(ctx context.Context, payer domain.Identity, quoteID string) (*StartPaymentResult, error) {
	client, err := s.clients(payer)
	if err != nil {
		return nil, err
	}

	wallet, err := client.ResolveWalletAddress(ctx, payer.WalletAddressURL)
	if err != nil {
		return nil, err
	}

	sessionID := uuid.NewString()
	clientNonce := uuid.NewString()

	finishURI, err := callbackURI(s.opts.CallbackBaseURL, sessionID)
	if err != nil {
		return nil, err
	}

	resp, err := client.RequestGrant(ctx, wallet.AuthServer, interactiveGrant(domain.AccessRequest{
		Type:       domain.ResourceTypeOutgoingPayment,
		Actions:    []string{domain.ActionList, domain.ActionListAll, domain.ActionRead, domain.ActionReadAll, domain.ActionCreate},
		Identifier: wallet.ID,
		QuoteID:    quoteID,
	}, finishURI, clientNonce))
	if err != nil {
		return nil, err
	}

	grant, err := PendingFromResponse(resp)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	record := &domain.PendingAuthorization{
		SessionID:     sessionID,
		ContinueToken: grant.ContinueToken,
		ContinueURI:   grant.ContinueURI,
		ClientNonce:   clientNonce,
		FinishNonce:   grant.FinishNonce,
		GrantEndpoint: wallet.AuthServer,
		QuoteID:       quoteID,
		Owner:         payer.Clone(),
		CreatedAt:     now,
		ExpiresAt:     now.Add(s.opts.PendingTTL),
	}
	if err := s.pending.Put(ctx, record); err != nil {
		return nil, err
	}

	log.Info().Str("session_id", sessionID).Str("quote_id", quoteID).Msg("Interactive grant pending, user must consent")
	return &StartPaymentResult{
		SessionID:   sessionID,
		RedirectURL: grant.RedirectURL,
	}, nil
}

// FinalizePayment resumes the flow when the interaction callback arrives:
// consume the pending authorization, verify the interaction hash, continue
// the grant, and create the outgoing payment bound to the stored quote.
//
// Consumption is irreversible. Whatever fails afterwards, the record is
// gone: grant continuations are at-most-once.
func (s *Service) FinalizePayment(ctx context.Context, sessionID, interactRef, hash string) (*opclient.OutgoingPayment, error) {
	record, err := s.pending.TakeAndConsume(ctx, sessionID)
	if err != nil {
		if errors.Is(err, cache.ErrPendingAuthNotFound) {
			return nil, ErrSessionExpired
		}
		return nil, err
	}
	defer record.Owner.Wipe()

	if err := VerifyInteraction(record, interactRef, hash); err != nil {
		log.Warn().Str("session_id", sessionID).Msg("Interaction hash mismatch, discarding consumed authorization")
		return nil, err
	}

	client, err := s.clients(record.Owner)
	if err != nil {
		return nil, err
	}

	resp, err := client.ContinueGrant(ctx, record.ContinueURI, record.ContinueToken, interactRef)
	if err != nil {
		return nil, err
	}
	grant, err := FinalizedFromResponse(resp)
	if err != nil {
		// A tokenless response that still offers a continuation means the
		// user has not finished the interaction.
		if hasContinuation(resp) {
			return nil, ErrGrantStillPending
		}
		return nil, err
	}

	wallet, err := client.ResolveWalletAddress(ctx, record.Owner.WalletAddressURL)
	if err != nil {
		return nil, err
	}

	payment, err := client.CreateOutgoingPayment(ctx, wallet.ResourceServer, grant.AccessToken, &opclient.OutgoingPaymentRequest{
		WalletAddress: wallet.ID,
		QuoteID:       record.QuoteID,
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("payment_id", payment.ID).Str("session_id", sessionID).Msg("Outgoing payment created")
	return payment, nil
}

// CancelPayment discards a pending authorization on user abort. The grant
// itself lapses at the authorization server when nobody continues it.
func (s *Service) CancelPayment(ctx context.Context, sessionID string) error {
	return s.pending.Delete(ctx, sessionID)
}

// callbackURI appends the session id to the configured finish target,
// preserving any query parameters the base already carries.
func callbackURI(base, sessionID string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("session_id", sessionID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
