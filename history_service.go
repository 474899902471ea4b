package peerpay

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/peerpay-dev/peerpay/domain"
	serrors "github.com/peerpay-dev/peerpay/errors"
	"github.com/peerpay-dev/peerpay/opclient"
)

// HistoryResult is the merged transaction history. Warnings name the sides
// that failed when the result is partial.
type HistoryResult struct {
	Transactions []domain.Transaction
	Warnings     []string
}

// GetHistory lists incoming and outgoing payments under fresh read grants
// and merges them into one sequence, newest first. The two sides run
// concurrently and fail independently: one side failing degrades the
// result with a warning, both sides failing is an error.
func (s *Service) GetHistory(ctx context.Context, user domain.Identity) (*HistoryResult, error) {
	client, err := s.clients(user)
	if err != nil {
		return nil, err
	}

	wallet, err := client.ResolveWalletAddress(ctx, user.WalletAddressURL)
	if err != nil {
		return nil, err
	}

	var (
		incoming    []domain.Transaction
		incomingErr error
		outgoing    []domain.Transaction
		outgoingErr error
	)

	// Side errors are collected, not returned, so one side cannot cancel
	// the other through the group context.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		incoming, incomingErr = s.listIncomingHistory(gctx, client, wallet)
		return nil
	})
	if s.opts.IncludeOutgoingHistory {
		g.Go(func() error {
			outgoing, outgoingErr = s.listOutgoingHistory(gctx, client, wallet)
			return nil
		})
	}
	_ = g.Wait()

	if incomingErr != nil && (!s.opts.IncludeOutgoingHistory || outgoingErr != nil) {
		return nil, fmt.Errorf("history listing failed: %w", incomingErr)
	}

	result := &HistoryResult{}
	if incomingErr != nil {
		result.Warnings = append(result.Warnings, (&serrors.PartialHistoryError{Side: serrors.HistorySideIncoming, Err: incomingErr}).Error())
	}
	if s.opts.IncludeOutgoingHistory && outgoingErr != nil {
		result.Warnings = append(result.Warnings, (&serrors.PartialHistoryError{Side: serrors.HistorySideOutgoing, Err: outgoingErr}).Error())
	}

	result.Transactions = append(result.Transactions, incoming...)
	result.Transactions = append(result.Transactions, outgoing...)
	sortTransactions(result.Transactions)

	return result, nil
}

func (s *Service) listIncomingHistory(ctx context.Context, client OpenPaymentsClient, wallet *domain.WalletAddress) ([]domain.Transaction, error) {
	resp, err := client.RequestGrant(ctx, wallet.AuthServer, accessOnlyGrant(domain.AccessRequest{
		Type:    domain.ResourceTypeIncomingPayment,
		Actions: []string{domain.ActionList, domain.ActionRead},
	}))
	if err != nil {
		return nil, err
	}
	grant, err := FinalizedFromResponse(resp)
	if err != nil {
		return nil, err
	}

	payments, err := client.ListIncomingPayments(ctx, wallet.ResourceServer, grant.AccessToken, wallet.ID, s.opts.HistoryPageSize)
	if err != nil {
		return nil, err
	}

	transactions := make([]domain.Transaction, 0, len(payments))
	for _, p := range payments {
		transactions = append(transactions, domain.Transaction{
			ID:        p.ID,
			Direction: domain.DirectionReceived,
			Amount:    p.IncomingAmount,
			State:     incomingState(p),
			CreatedAt: parseResourceTime(p.CreatedAt),
		})
	}
	return transactions, nil
}

func (s *Service) listOutgoingHistory(ctx context.Context, client OpenPaymentsClient, wallet *domain.WalletAddress) ([]domain.Transaction, error) {
	resp, err := client.RequestGrant(ctx, wallet.AuthServer, accessOnlyGrant(domain.AccessRequest{
		Type:       domain.ResourceTypeOutgoingPayment,
		Actions:    []string{domain.ActionList, domain.ActionRead},
		Identifier: wallet.ID,
	}))
	if err != nil {
		return nil, err
	}
	grant, err := FinalizedFromResponse(resp)
	if err != nil {
		return nil, err
	}

	payments, err := client.ListOutgoingPayments(ctx, wallet.ResourceServer, grant.AccessToken, wallet.ID, s.opts.HistoryPageSize)
	if err != nil {
		return nil, err
	}

	transactions := make([]domain.Transaction, 0, len(payments))
	for _, p := range payments {
		transactions = append(transactions, domain.Transaction{
			ID:        p.ID,
			Direction: domain.DirectionSent,
			Amount:    p.DebitAmount,
			State:     outgoingState(p),
			CreatedAt: parseResourceTime(p.CreatedAt),
		})
	}
	return transactions, nil
}

// sortTransactions orders newest first. The sort is stable so equal
// timestamps keep their original list order.
func sortTransactions(transactions []domain.Transaction) {
	sort.SliceStable(transactions, func(i, j int) bool {
		return transactions[i].CreatedAt.After(transactions[j].CreatedAt)
	})
}

func incomingState(p opclient.IncomingPayment) domain.TransactionState {
	if p.State != "" {
		return domain.TransactionState(strings.ToUpper(p.State))
	}
	if p.Completed {
		return domain.TransactionStateCompleted
	}
	return domain.TransactionStatePending
}

func outgoingState(p opclient.OutgoingPayment) domain.TransactionState {
	if p.State != "" {
		return domain.TransactionState(strings.ToUpper(p.State))
	}
	if p.Failed {
		return domain.TransactionStateFailed
	}
	return domain.TransactionStatePending
}

// parseResourceTime parses the RFC 3339 timestamps resource servers emit.
// Unparseable values sort last rather than failing the whole listing.
func parseResourceTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
