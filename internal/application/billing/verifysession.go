package billing

import (
	"context"
	"fmt"
	"strings"

	apperrors "github.com/zevix-io/zevix/internal/shared/errors"
	"github.com/zevix-io/zevix/internal/shared/logger"
)

// VerifySessionUseCase lets the frontend confirm a checkout after the
// redirect, without waiting for the webhook. It retrieves the session
// from the billing system and applies it. States short of "complete"
// are tolerated: trials and delayed payment methods report "open" while
// the entitlement is already live.
type VerifySessionUseCase struct {
	gateway Gateway
	apply   *ApplyCheckoutUseCase
	logger  logger.Interface
}

// NewVerifySessionUseCase creates a new verify session use case
func NewVerifySessionUseCase(gateway Gateway, apply *ApplyCheckoutUseCase, logger logger.Interface) *VerifySessionUseCase {
	return &VerifySessionUseCase{
		gateway: gateway,
		apply:   apply,
		logger:  logger,
	}
}

// Execute retrieves the checkout session and applies its plan.
func (uc *VerifySessionUseCase) Execute(ctx context.Context, sessionID string) (*ApplyResult, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, apperrors.NewValidationError("invalid_input", "session_id is required")
	}

	session, err := uc.gateway.CheckoutSession(ctx, sessionID)
	if err != nil {
		uc.logger.Errorw("failed to retrieve checkout session", "session_id", sessionID, "error", err)
		return nil, fmt.Errorf("failed to retrieve checkout session: %w", err)
	}
	if session == nil {
		return nil, apperrors.NewNotFoundError("session_not_found", "checkout session not found")
	}

	if session.Status == "expired" {
		return nil, apperrors.NewBadRequestError("session_expired", "checkout session has expired")
	}

	return uc.apply.Execute(ctx, session)
}
