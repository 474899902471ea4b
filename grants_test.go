package peerpay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peerpay-dev/peerpay/domain"
	"github.com/peerpay-dev/peerpay/opclient"
)

func TestFinalizedFromResponse(t *testing.T) {
	t.Run("finalized shape yields token", func(t *testing.T) {
		grant, err := FinalizedFromResponse(finalizedResponse("tok-123"))
		require.NoError(t, err)
		assert.Equal(t, "tok-123", grant.AccessToken)
	})

	t.Run("pending shape is a protocol violation", func(t *testing.T) {
		resp := pendingResponse("https://auth.example/interact/1", "fn", "ct", "https://auth.example/continue/1")
		grant, err := FinalizedFromResponse(resp)
		require.ErrorIs(t, err, ErrUnexpectedGrantState)
		assert.Nil(t, grant)
	})

	t.Run("empty response is rejected, never defaulted", func(t *testing.T) {
		_, err := FinalizedFromResponse(&opclient.GrantResponse{})
		require.ErrorIs(t, err, ErrUnexpectedGrantState)
	})

	t.Run("token with empty value is rejected", func(t *testing.T) {
		_, err := FinalizedFromResponse(&opclient.GrantResponse{AccessToken: &opclient.AccessTokenResponse{}})
		require.ErrorIs(t, err, ErrUnexpectedGrantState)
	})
}

func TestPendingFromResponse(t *testing.T) {
	t.Run("pending shape yields interaction and continuation", func(t *testing.T) {
		resp := pendingResponse("https://auth.example/interact/1", "finish-nonce", "cont-token", "https://auth.example/continue/1")
		resp.Continue.Wait = 5

		grant, err := PendingFromResponse(resp)
		require.NoError(t, err)
		assert.Equal(t, "https://auth.example/interact/1", grant.RedirectURL)
		assert.Equal(t, "finish-nonce", grant.FinishNonce)
		assert.Equal(t, "cont-token", grant.ContinueToken)
		assert.Equal(t, "https://auth.example/continue/1", grant.ContinueURI)
		assert.Equal(t, 5, grant.Wait)
	})

	t.Run("finalized shape is a protocol violation", func(t *testing.T) {
		grant, err := PendingFromResponse(finalizedResponse("tok"))
		require.ErrorIs(t, err, ErrUnexpectedGrantState)
		assert.Nil(t, grant)
	})

	t.Run("interaction without continuation is rejected", func(t *testing.T) {
		resp := &opclient.GrantResponse{
			Interact: &opclient.InteractResponse{Redirect: "https://auth.example/interact/1"},
		}
		_, err := PendingFromResponse(resp)
		require.ErrorIs(t, err, ErrUnexpectedGrantState)
	})
}

func TestClassify(t *testing.T) {
	pendingResp := pendingResponse("https://auth.example/i", "fn", "ct", "https://auth.example/c")

	pending, finalized, err := Classify(pendingResp, GrantOutcomePending)
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.Nil(t, finalized)

	pending, finalized, err = Classify(finalizedResponse("tok"), GrantOutcomeFinalized)
	require.NoError(t, err)
	require.NotNil(t, finalized)
	assert.Nil(t, pending)

	_, _, err = Classify(pendingResp, GrantOutcomeFinalized)
	require.ErrorIs(t, err, ErrUnexpectedGrantState)

	_, _, err = Classify(finalizedResponse("tok"), GrantOutcomePending)
	require.ErrorIs(t, err, ErrUnexpectedGrantState)
}

func TestGrantRequestBuilders(t *testing.T) {
	access := domain.AccessRequest{
		Type:       domain.ResourceTypeOutgoingPayment,
		Actions:    []string{domain.ActionCreate},
		Identifier: "https://wallet.example/alice",
		QuoteID:    "https://ilp.wallet.example/quotes/1",
	}

	t.Run("non-interactive request omits the interact descriptor", func(t *testing.T) {
		req := accessOnlyGrant(access)
		assert.Nil(t, req.Interact)
		require.Len(t, req.AccessToken.Access, 1)
		item := req.AccessToken.Access[0]
		assert.Equal(t, "outgoing-payment", item.Type)
		require.NotNil(t, item.Limits)
		assert.Equal(t, "https://ilp.wallet.example/quotes/1", item.Limits.QuoteID)
	})

	t.Run("interactive request carries redirect finish and nonce", func(t *testing.T) {
		req := interactiveGrant(access, "peerpay://payment/callback?session_id=s1", "nonce-1")
		require.NotNil(t, req.Interact)
		assert.Equal(t, []string{"redirect"}, req.Interact.Start)
		require.NotNil(t, req.Interact.Finish)
		assert.Equal(t, "redirect", req.Interact.Finish.Method)
		assert.Equal(t, "peerpay://payment/callback?session_id=s1", req.Interact.Finish.URI)
		assert.Equal(t, "nonce-1", req.Interact.Finish.Nonce)
	})

	t.Run("no limits object without a quote binding", func(t *testing.T) {
		req := accessOnlyGrant(domain.AccessRequest{
			Type:    domain.ResourceTypeIncomingPayment,
			Actions: []string{domain.ActionRead},
		})
		assert.Nil(t, req.AccessToken.Access[0].Limits)
	})
}
