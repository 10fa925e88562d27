package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"

	apperrors "github.com/zevix-io/zevix/internal/shared/errors"
	"github.com/zevix-io/zevix/internal/shared/logger"
	"github.com/zevix-io/zevix/internal/shared/utils"
)

const maxWebhookBodyBytes = int64(65536)

type BillingHandler struct {
	verifier      SessionVerifier
	canceller     CancellationApplier
	emailResolver CustomerEmailResolver
	webhookSecret string
	logger        logger.Interface
}

func NewBillingHandler(
	verifier SessionVerifier,
	canceller CancellationApplier,
	emailResolver CustomerEmailResolver,
	webhookSecret string,
) *BillingHandler {
	return &BillingHandler{
		verifier:      verifier,
		canceller:     canceller,
		emailResolver: emailResolver,
		webhookSecret: webhookSecret,
		logger:        logger.NewLogger(),
	}
}

type VerifySessionRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

// VerifySession lets the frontend confirm a checkout right after the
// redirect instead of waiting for the webhook.
func (h *BillingHandler) VerifySession(c *gin.Context) {
	var req VerifySessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, apperrors.NewValidationError("invalid_input", "session_id is required"))
		return
	}

	result, err := h.verifier.Execute(c.Request.Context(), req.SessionID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "session verified", result)
}

// Webhook handles signed billing events. Completed checkouts apply a
// plan; subscription deletions downgrade the account. Events that can
// never succeed (unknown user, no email) are acknowledged anyway so
// the billing system stops retrying them.
func (h *BillingHandler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		utils.ErrorResponseWithError(c, apperrors.NewBadRequestError("invalid_input", "failed to read payload"))
		return
	}

	event, err := webhook.ConstructEventWithOptions(
		body,
		c.GetHeader("Stripe-Signature"),
		h.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		h.logger.Warnw("webhook signature verification failed", "error", err)
		utils.ErrorResponseWithError(c, apperrors.NewBadRequestError("invalid_signature", "signature verification failed"))
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		h.handleCheckoutCompleted(c, event)
	case "customer.subscription.deleted":
		h.handleSubscriptionDeleted(c, event)
	default:
		h.logger.Debugw("ignoring webhook event", "type", event.Type)
		utils.SuccessResponse(c, http.StatusOK, "event ignored", nil)
	}
}

func (h *BillingHandler) handleCheckoutCompleted(c *gin.Context, event stripe.Event) {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		h.logger.Errorw("failed to decode checkout session event", "error", err)
		utils.ErrorResponseWithError(c, apperrors.NewBadRequestError("invalid_input", "malformed event payload"))
		return
	}

	// Event payloads carry no line items; re-fetch the session expanded
	// so the plan can be resolved.
	result, err := h.verifier.Execute(c.Request.Context(), session.ID)
	if err != nil {
		if appErr := apperrors.GetAppError(err); appErr != nil && appErr.Code < http.StatusInternalServerError {
			h.logger.Warnw("checkout event cannot be applied, acknowledging",
				"session_id", session.ID, "reason", appErr.Reason)
			utils.SuccessResponse(c, http.StatusOK, "event acknowledged", nil)
			return
		}
		h.logger.Errorw("failed to apply checkout event", "session_id", session.ID, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "checkout applied", result)
}

func (h *BillingHandler) handleSubscriptionDeleted(c *gin.Context, event stripe.Event) {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		h.logger.Errorw("failed to decode subscription event", "error", err)
		utils.ErrorResponseWithError(c, apperrors.NewBadRequestError("invalid_input", "malformed event payload"))
		return
	}

	if sub.Customer == nil {
		h.logger.Warnw("subscription deletion without customer, acknowledging", "subscription_id", sub.ID)
		utils.SuccessResponse(c, http.StatusOK, "event acknowledged", nil)
		return
	}

	email, err := h.emailResolver.CustomerEmail(c.Request.Context(), sub.Customer.ID)
	if err != nil || email == "" {
		h.logger.Warnw("cannot resolve customer email for cancellation, acknowledging",
			"subscription_id", sub.ID, "customer_id", sub.Customer.ID, "error", err)
		utils.SuccessResponse(c, http.StatusOK, "event acknowledged", nil)
		return
	}

	if err := h.canceller.ApplyCancellation(c.Request.Context(), email); err != nil {
		if appErr := apperrors.GetAppError(err); appErr != nil && appErr.Code < http.StatusInternalServerError {
			h.logger.Warnw("cancellation cannot be applied, acknowledging",
				"email", email, "reason", appErr.Reason)
			utils.SuccessResponse(c, http.StatusOK, "event acknowledged", nil)
			return
		}
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "subscription cancelled", nil)
}
