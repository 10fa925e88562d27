package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zevix-io/zevix/internal/application/roi"
	apperrors "github.com/zevix-io/zevix/internal/shared/errors"
	"github.com/zevix-io/zevix/internal/shared/utils"
)

type ROIHandler struct{}

func NewROIHandler() *ROIHandler {
	return &ROIHandler{}
}

// Calculate projects revenue for the marketing site's ROI widget.
func (h *ROIHandler) Calculate(c *gin.Context) {
	var cmd roi.CalculateCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		utils.ErrorResponseWithError(c, apperrors.NewValidationError("invalid_input", "request body is invalid"))
		return
	}

	result, err := roi.Calculate(cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "roi calculated", result)
}
