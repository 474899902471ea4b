package peerpay

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peerpay-dev/peerpay/domain"
	"github.com/peerpay-dev/peerpay/opclient"
)

func TestGetHistoryMergesNewestFirst(t *testing.T) {
	client := &fakeClient{
		listIncomingFn: func() ([]opclient.IncomingPayment, error) {
			return []opclient.IncomingPayment{
				{ID: "in-old", State: "COMPLETED", CreatedAt: "2026-08-01T10:00:00Z"},
				{ID: "in-new", State: "PENDING", CreatedAt: "2026-08-03T10:00:00Z"},
			}, nil
		},
		listOutgoingFn: func() ([]opclient.OutgoingPayment, error) {
			return []opclient.OutgoingPayment{
				{ID: "out-mid", State: "COMPLETED", CreatedAt: "2026-08-02T10:00:00Z"},
			}, nil
		},
	}
	svc, _ := newTestService(t, client)

	result, err := svc.GetHistory(context.Background(), testIdentity())
	require.NoError(t, err)
	require.Len(t, result.Transactions, 3)
	assert.Empty(t, result.Warnings)

	assert.Equal(t, "in-new", result.Transactions[0].ID)
	assert.Equal(t, "out-mid", result.Transactions[1].ID)
	assert.Equal(t, "in-old", result.Transactions[2].ID)

	assert.Equal(t, domain.DirectionReceived, result.Transactions[0].Direction)
	assert.Equal(t, domain.DirectionSent, result.Transactions[1].Direction)
}

func TestGetHistoryStableOnEqualTimestamps(t *testing.T) {
	client := &fakeClient{
		listIncomingFn: func() ([]opclient.IncomingPayment, error) {
			return []opclient.IncomingPayment{
				{ID: "in-a", CreatedAt: "2026-08-02T10:00:00Z"},
				{ID: "in-b", CreatedAt: "2026-08-02T10:00:00Z"},
			}, nil
		},
		listOutgoingFn: func() ([]opclient.OutgoingPayment, error) {
			return []opclient.OutgoingPayment{
				{ID: "out-a", CreatedAt: "2026-08-02T10:00:00Z"},
			}, nil
		},
	}
	svc, _ := newTestService(t, client)

	result, err := svc.GetHistory(context.Background(), testIdentity())
	require.NoError(t, err)
	require.Len(t, result.Transactions, 3)

	// Equal timestamps keep insertion order: incoming before outgoing.
	assert.Equal(t, "in-a", result.Transactions[0].ID)
	assert.Equal(t, "in-b", result.Transactions[1].ID)
	assert.Equal(t, "out-a", result.Transactions[2].ID)
}

func TestGetHistoryPartialOutgoingFailure(t *testing.T) {
	client := &fakeClient{
		listIncomingFn: func() ([]opclient.IncomingPayment, error) {
			return []opclient.IncomingPayment{
				{ID: "in-1", CreatedAt: "2026-08-01T10:00:00Z"},
			}, nil
		},
		listOutgoingFn: func() ([]opclient.OutgoingPayment, error) {
			return nil, errors.New("resource server unreachable")
		},
	}
	svc, _ := newTestService(t, client)

	result, err := svc.GetHistory(context.Background(), testIdentity())
	require.NoError(t, err)
	require.Len(t, result.Transactions, 1)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "outgoing")
}

func TestGetHistoryPartialIncomingFailure(t *testing.T) {
	client := &fakeClient{
		listIncomingFn: func() ([]opclient.IncomingPayment, error) {
			return nil, errors.New("auth server down")
		},
		listOutgoingFn: func() ([]opclient.OutgoingPayment, error) {
			return []opclient.OutgoingPayment{
				{ID: "out-1", CreatedAt: "2026-08-01T10:00:00Z"},
			}, nil
		},
	}
	svc, _ := newTestService(t, client)

	result, err := svc.GetHistory(context.Background(), testIdentity())
	require.NoError(t, err)
	require.Len(t, result.Transactions, 1)
	assert.Equal(t, "out-1", result.Transactions[0].ID)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "incoming")
}

func TestGetHistoryBothSidesFail(t *testing.T) {
	client := &fakeClient{
		listIncomingFn: func() ([]opclient.IncomingPayment, error) {
			return nil, errors.New("incoming broken")
		},
		listOutgoingFn: func() ([]opclient.OutgoingPayment, error) {
			return nil, errors.New("outgoing broken")
		},
	}
	svc, _ := newTestService(t, client)

	_, err := svc.GetHistory(context.Background(), testIdentity())
	require.Error(t, err)
}

func TestGetHistoryOutgoingDisabled(t *testing.T) {
	outgoingCalled := false
	client := &fakeClient{
		listIncomingFn: func() ([]opclient.IncomingPayment, error) {
			return []opclient.IncomingPayment{
				{ID: "in-1", CreatedAt: "2026-08-01T10:00:00Z"},
			}, nil
		},
		listOutgoingFn: func() ([]opclient.OutgoingPayment, error) {
			outgoingCalled = true
			return nil, nil
		},
	}
	svc := NewService(client.factory(), mustMemoryStore(t), Options{
		CallbackBaseURL:        "peerpay://payment/callback",
		IncludeOutgoingHistory: false,
	})

	result, err := svc.GetHistory(context.Background(), testIdentity())
	require.NoError(t, err)
	require.Len(t, result.Transactions, 1)
	assert.False(t, outgoingCalled)
}

func TestTransactionStates(t *testing.T) {
	assert.Equal(t, domain.TransactionStateCompleted, incomingState(opclient.IncomingPayment{Completed: true}))
	assert.Equal(t, domain.TransactionStatePending, incomingState(opclient.IncomingPayment{}))
	assert.Equal(t, domain.TransactionState("EXPIRED"), incomingState(opclient.IncomingPayment{State: "expired"}))
	assert.Equal(t, domain.TransactionStateFailed, outgoingState(opclient.OutgoingPayment{Failed: true}))
	assert.Equal(t, domain.TransactionState("COMPLETED"), outgoingState(opclient.OutgoingPayment{State: "COMPLETED"}))
}

func TestParseResourceTime(t *testing.T) {
	assert.False(t, parseResourceTime("2026-08-01T10:00:00.123Z").IsZero())
	assert.True(t, parseResourceTime("not a timestamp").IsZero())
	assert.True(t, parseResourceTime("").IsZero())
}
