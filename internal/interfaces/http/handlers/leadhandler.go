package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zevix-io/zevix/internal/application/metering"
	"github.com/zevix-io/zevix/internal/interfaces/http/middleware"
	apperrors "github.com/zevix-io/zevix/internal/shared/errors"
	"github.com/zevix-io/zevix/internal/shared/logger"
	"github.com/zevix-io/zevix/internal/shared/utils"
)

type LeadHandler struct {
	consumeUC ConsumeLeadsUseCase
	logger    logger.Interface
}

func NewLeadHandler(consumeUC ConsumeLeadsUseCase) *LeadHandler {
	return &LeadHandler{
		consumeUC: consumeUC,
		logger:    logger.NewLogger(),
	}
}

type ConsumeLeadsRequest struct {
	Email   string   `json:"email"`
	LeadIDs []string `json:"lead_ids"`
}

// ConsumeLeads meters a batch of lead ids against the caller's monthly
// quota. The account comes from the bearer token when present, and
// from the body email otherwise.
func (h *LeadHandler) ConsumeLeads(c *gin.Context) {
	var req ConsumeLeadsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, apperrors.NewValidationError("invalid_input", "request body is invalid"))
		return
	}

	email := req.Email
	if authed, ok := middleware.AuthenticatedEmail(c); ok {
		email = authed
	}

	result, err := h.consumeUC.Execute(c.Request.Context(), metering.ConsumeLeadsCommand{
		Email:   email,
		LeadIDs: req.LeadIDs,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "leads consumed", result)
}
