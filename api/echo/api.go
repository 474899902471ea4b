// Package echo exposes the payment flows over HTTP with labstack/echo.
package echo

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	peerpay "github.com/peerpay-dev/peerpay"
	"github.com/peerpay-dev/peerpay/api"
	serrors "github.com/peerpay-dev/peerpay/errors"
)

// PaymentsAPI holds the handler dependencies.
type PaymentsAPI struct {
	service    *peerpay.Service
	successURL string
	errorURL   string
}

// NewPaymentsAPI initializes the payments API. successURL and errorURL are
// where the browser callback redirects after finalization.
func NewPaymentsAPI(service *peerpay.Service, successURL, errorURL string) *PaymentsAPI {
	return &PaymentsAPI{
		service:    service,
		successURL: successURL,
		errorURL:   errorURL,
	}
}

// RegisterRoutes registers the payment routes.
func (pa *PaymentsAPI) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/create-incoming-payment", pa.CreateIncomingPaymentHandler)
	e.POST("/api/check-payment-status", pa.CheckPaymentStatusHandler)
	e.POST("/api/quotes", pa.CreateQuoteHandler)
	e.POST("/api/start-payment", pa.StartPaymentHandler)
	e.POST("/api/finalize-payment", pa.FinalizePaymentHandler)
	e.GET("/api/payment-callback", pa.PaymentCallbackHandler)
	e.POST("/api/get-history", pa.GetHistoryHandler)
	e.DELETE("/api/pending-payments/:session_id", pa.CancelPaymentHandler)
}

// CreateIncomingPaymentHandler creates an invoice for the seller.
func (pa *PaymentsAPI) CreateIncomingPaymentHandler(c echo.Context) error {
	var req api.CreateIncomingPaymentRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := req.SellerCredentials.Validate(); err != nil {
		return badRequest(c, "sellerCredentials: "+err.Error())
	}
	if err := req.PaymentDetails.Validate(); err != nil {
		return badRequest(c, "paymentDetails: "+err.Error())
	}

	identity := req.SellerCredentials.Identity()
	defer identity.Wipe()

	payment, err := pa.service.CreateIncomingPayment(c.Request().Context(), identity, req.PaymentDetails.Amount())
	if err != nil {
		return pa.writeError(c, err)
	}
	return c.JSON(http.StatusOK, payment)
}

// CheckPaymentStatusHandler reads one invoice so the seller can see
// whether it has been paid.
func (pa *PaymentsAPI) CheckPaymentStatusHandler(c echo.Context) error {
	var req api.CheckPaymentStatusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := req.SellerCredentials.Validate(); err != nil {
		return badRequest(c, "sellerCredentials: "+err.Error())
	}
	if req.PaymentURL == "" {
		return badRequest(c, "paymentUrl is required")
	}

	identity := req.SellerCredentials.Identity()
	defer identity.Wipe()

	payment, err := pa.service.CheckPaymentStatus(c.Request().Context(), identity, req.PaymentURL)
	if err != nil {
		return pa.writeError(c, err)
	}
	return c.JSON(http.StatusOK, api.CheckPaymentStatusResponse{
		Message:       "payment status retrieved",
		PaymentStatus: payment,
	})
}

// CreateQuoteHandler creates a price-locked quote for paying an invoice.
func (pa *PaymentsAPI) CreateQuoteHandler(c echo.Context) error {
	var req api.CreateQuoteRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := req.PayerCredentials.Validate(); err != nil {
		return badRequest(c, "payerCredentials: "+err.Error())
	}
	if req.RecipientURL == "" {
		return badRequest(c, "recipientUrl is required")
	}

	identity := req.PayerCredentials.Identity()
	defer identity.Wipe()

	quote, err := pa.service.CreateQuote(c.Request().Context(), identity, req.RecipientURL)
	if err != nil {
		return pa.writeError(c, err)
	}
	return c.JSON(http.StatusOK, quote)
}

// StartPaymentHandler begins the interactive consent flow. The response
// carries only the redirect and a session id; continuation state stays on
// this server.
func (pa *PaymentsAPI) StartPaymentHandler(c echo.Context) error {
	var req api.StartPaymentRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := req.PayerCredentials.Validate(); err != nil {
		return badRequest(c, "payerCredentials: "+err.Error())
	}
	if req.QuoteID == "" {
		return badRequest(c, "quoteId is required")
	}

	identity := req.PayerCredentials.Identity()
	defer identity.Wipe()

	result, err := pa.service.StartPayment(c.Request().Context(), identity, req.QuoteID)
	if err != nil {
		return pa.writeError(c, err)
	}
	return c.JSON(http.StatusOK, api.StartPaymentResponse{
		Message:    "grant pending, redirect the user",
		RedirectTo: result.RedirectURL,
		SessionID:  result.SessionID,
	})
}

// FinalizePaymentHandler resumes the flow from an intercepted deep link:
// the app extracted interact_ref and hash from the callback URI and posts
// them together with the session id.
func (pa *PaymentsAPI) FinalizePaymentHandler(c echo.Context) error {
	var req api.FinalizePaymentRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.SessionID == "" || req.InteractRef == "" || req.Hash == "" {
		return badRequest(c, "sessionId, interact_ref and hash are required")
	}

	payment, err := pa.service.FinalizePayment(c.Request().Context(), req.SessionID, req.InteractRef, req.Hash)
	if err != nil {
		return pa.writeError(c, err)
	}
	return c.JSON(http.StatusOK, api.FinalizePaymentResponse{
		Message: "payment sent",
		Payment: payment,
	})
}

// PaymentCallbackHandler is the browser-redirect finish target. The
// authorization server, not the frontend, sends the user here. Success and
// failure both leave through a redirect so the user is never stranded.
func (pa *PaymentsAPI) PaymentCallbackHandler(c echo.Context) error {
	sessionID := c.QueryParam("session_id")
	interactRef := c.QueryParam("interact_ref")
	hash := c.QueryParam("hash")

	if sessionID == "" || interactRef == "" || hash == "" {
		return pa.redirectError(c, "invalid callback: session_id, interact_ref and hash are required")
	}

	payment, err := pa.service.FinalizePayment(c.Request().Context(), sessionID, interactRef, hash)
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("Payment callback failed")
		return pa.redirectError(c, err.Error())
	}

	success, err := url.Parse(pa.successURL)
	if err != nil {
		return pa.redirectError(c, "invalid success redirect configured")
	}
	q := success.Query()
	q.Set("paymentId", payment.ID)
	success.RawQuery = q.Encode()
	return c.Redirect(http.StatusFound, success.String())
}

// GetHistoryHandler returns the merged transaction history.
func (pa *PaymentsAPI) GetHistoryHandler(c echo.Context) error {
	var req api.GetHistoryRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := req.UserCredentials.Validate(); err != nil {
		return badRequest(c, "userCredentials: "+err.Error())
	}

	identity := req.UserCredentials.Identity()
	defer identity.Wipe()

	history, err := pa.service.GetHistory(c.Request().Context(), identity)
	if err != nil {
		return pa.writeError(c, err)
	}
	return c.JSON(http.StatusOK, api.GetHistoryResponse{
		Transactions: history.Transactions,
		Warnings:     history.Warnings,
	})
}

// CancelPaymentHandler discards a pending authorization on user abort.
func (pa *PaymentsAPI) CancelPaymentHandler(c echo.Context) error {
	sessionID := c.Param("session_id")
	if sessionID == "" {
		return badRequest(c, "session_id is required")
	}
	if err := pa.service.CancelPayment(c.Request().Context(), sessionID); err != nil {
		return pa.writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (pa *PaymentsAPI) redirectError(c echo.Context, message string) error {
	target, err := url.Parse(pa.errorURL)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "server_error", Description: message})
	}
	q := target.Query()
	q.Set("message", message)
	target.RawQuery = q.Encode()
	return c.Redirect(http.StatusFound, target.String())
}

func badRequest(c echo.Context, description string) error {
	return c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid_request", Description: description})
}

// writeError maps lifecycle errors to HTTP responses. Upstream failures
// keep their original status and description.
func (pa *PaymentsAPI) writeError(c echo.Context, err error) error {
	var upstream *serrors.UpstreamError
	switch {
	case errors.As(err, &upstream):
		return c.JSON(upstream.Status, api.ErrorResponse{Error: "upstream_error", Description: upstream.Description})
	case errors.Is(err, peerpay.ErrSessionExpired):
		return c.JSON(http.StatusGone, api.ErrorResponse{Error: "session_expired", Description: err.Error()})
	case errors.Is(err, peerpay.ErrInteractionMismatch):
		return c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "interaction_mismatch", Description: err.Error()})
	case errors.Is(err, peerpay.ErrUnexpectedGrantState), errors.Is(err, peerpay.ErrGrantStillPending):
		return c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: "protocol_violation", Description: err.Error()})
	default:
		log.Error().Err(err).Msg("Unhandled service error")
		return c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "server_error", Description: err.Error()})
	}
}
