package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/zevix-io/zevix/internal/shared/errors"
	"github.com/zevix-io/zevix/internal/shared/logger"
	"github.com/zevix-io/zevix/internal/shared/utils"
)

type MandateHandler struct {
	sender    MandateSender
	recipient string
	logger    logger.Interface
}

func NewMandateHandler(sender MandateSender, recipient string) *MandateHandler {
	return &MandateHandler{
		sender:    sender,
		recipient: recipient,
		logger:    logger.NewLogger(),
	}
}

type MandateRequest struct {
	Email   string `json:"email" binding:"required"`
	Company string `json:"company" binding:"required"`
	Message string `json:"message" binding:"required,max=5000"`
}

// Submit forwards a campaign mandate form to the sales inbox.
func (h *MandateHandler) Submit(c *gin.Context) {
	var req MandateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, apperrors.NewValidationError("invalid_input", "email, company, and message are required"))
		return
	}

	email := utils.NormalizeEmail(req.Email)
	if !utils.IsValidEmail(email) {
		utils.ErrorResponseWithError(c, apperrors.NewValidationError("invalid_input", "a valid email is required"))
		return
	}

	if err := h.sender.SendMandateRequest(h.recipient, email, req.Company, req.Message); err != nil {
		h.logger.Errorw("failed to send mandate email", "email", email, "error", err)
		utils.ErrorResponseWithError(c, apperrors.NewInternalError("email_failed", "failed to submit the mandate"))
		return
	}

	h.logger.Infow("mandate submitted", "email", email, "company", req.Company)
	utils.SuccessResponse(c, http.StatusOK, "mandate submitted", nil)
}
