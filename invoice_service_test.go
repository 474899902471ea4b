package peerpay

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peerpay-dev/peerpay/domain"
	"github.com/peerpay-dev/peerpay/opclient"
)

func TestCreateIncomingPayment(t *testing.T) {
	var captured *opclient.IncomingPaymentRequest
	client := &fakeClient{
		createIncomingFn: func(req *opclient.IncomingPaymentRequest) (*opclient.IncomingPayment, error) {
			captured = req
			return &opclient.IncomingPayment{
				ID:             "https://ilp.wallet.example/incoming-payments/7",
				WalletAddress:  req.WalletAddress,
				IncomingAmount: req.IncomingAmount,
				State:          "PENDING",
			}, nil
		},
	}
	svc, _ := newTestService(t, client)

	amount := domain.Amount{Value: "1000", AssetCode: "CAD", AssetScale: 2}
	payment, err := svc.CreateIncomingPayment(context.Background(), testIdentity(), amount)
	require.NoError(t, err)
	assert.Equal(t, "https://ilp.wallet.example/incoming-payments/7", payment.ID)

	require.NotNil(t, captured)
	// The amount value is an opaque decimal string and must survive
	// untouched.
	assert.Equal(t, amount, captured.IncomingAmount)
	assert.Equal(t, testWallet().ID, captured.WalletAddress)

	expiry, err := time.Parse(time.RFC3339, captured.ExpiresAt)
	require.NoError(t, err)
	assert.True(t, expiry.After(time.Now()))

	// A non-interactive create grant precedes the resource call.
	require.Len(t, client.grantRequests, 1)
	access := client.grantRequests[0].AccessToken.Access
	require.Len(t, access, 1)
	assert.Equal(t, string(domain.ResourceTypeIncomingPayment), access[0].Type)
	assert.Contains(t, access[0].Actions, domain.ActionCreate)
	assert.Nil(t, client.grantRequests[0].Interact)
}

func TestCheckPaymentStatus(t *testing.T) {
	client := &fakeClient{
		getIncomingFn: func(paymentURL string) (*opclient.IncomingPayment, error) {
			return &opclient.IncomingPayment{
				ID:        paymentURL,
				Completed: true,
				State:     "COMPLETED",
			}, nil
		},
	}
	svc, _ := newTestService(t, client)

	payment, err := svc.CheckPaymentStatus(context.Background(), testIdentity(), "https://ilp.wallet.example/incoming-payments/7")
	require.NoError(t, err)
	assert.Equal(t, "https://ilp.wallet.example/incoming-payments/7", payment.ID)
	assert.True(t, payment.Completed)

	// Status checks ask for read access only.
	require.Len(t, client.grantRequests, 1)
	access := client.grantRequests[0].AccessToken.Access
	require.Len(t, access, 1)
	assert.Equal(t, []string{domain.ActionRead}, access[0].Actions)
}
