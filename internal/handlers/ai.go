package handlers

import (
	"errors"
	"net/http"

	"github.com/focusflow/focusflow-api/internal/dto"
	apierrors "github.com/focusflow/focusflow-api/internal/errors"
	"github.com/focusflow/focusflow-api/internal/services"
	"github.com/gin-gonic/gin"
)

// AIHandler proxies assistant questions to the completion endpoint.
type AIHandler struct {
	aiService *services.AIService
}

func NewAIHandler(aiService *services.AIService) *AIHandler {
	return &AIHandler{aiService: aiService}
}

// Generate answers a free-text question given the board summary in context.
func (h *AIHandler) Generate(c *gin.Context) {
	type GenerateRequest struct {
		Input   string `json:"input"`
		Context string `json:"context"`
	}

	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	content, err := h.aiService.Generate(c.Request.Context(), req.Input, req.Context)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAIServiceNotConfigured):
			apierrors.ServiceUnavailable(c, "AI service is not configured")
		case errors.Is(err, services.ErrAIInputRequired):
			apierrors.BadRequest(c, "Input is required")
		case errors.Is(err, services.ErrAIRequestFailed):
			apierrors.BadGateway(c, "Failed to generate AI response", err.Error())
		default:
			apierrors.InternalError(c, "Failed to generate AI response")
		}
		return
	}

	c.JSON(http.StatusOK, dto.GenerateResponse{Content: content})
}
