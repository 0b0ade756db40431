package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/wangchienwei/pushchat/internal/notify"
)

// NotificationHandlers provides the relay's HTTP handlers.
type NotificationHandlers struct {
	provider notify.Provider
	limiter  *RateLimiter
	log      *zerolog.Logger
}

// NewNotificationHandlers creates a new handlers instance.
func NewNotificationHandlers(provider notify.Provider, limiter *RateLimiter, logger *zerolog.Logger) *NotificationHandlers {
	return &NotificationHandlers{
		provider: provider,
		limiter:  limiter,
		log:      logger,
	}
}

// MessageResponse is the success response body.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the uniform error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// dispatchCompleted acknowledges the request, not end-to-end delivery; the
// provider's own guarantees stay best effort.
const dispatchCompleted = "Notification dispatch completed."

// SendNotification forwards one delivery request to the push provider.
// POST /send-notification
//
// Every code path returns a response: malformed input, a provider non-2xx,
// and a transport failure all normalize to the uniform error body. The
// relay holds no state between requests.
func (h *NotificationHandlers) SendNotification(c *gin.Context) {
	requestID := uuid.NewString()
	log := h.log.With().Str("request_id", requestID).Logger()

	if !h.limiter.Allow() {
		log.Warn().Msg("dispatch rate limit exceeded")
		c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "too many dispatch requests, slow down"})
		return
	}

	var req notify.DeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("malformed delivery request")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	if err := h.provider.Push(c.Request.Context(), req.Title, req.Body); err != nil {
		log.Error().Err(err).Msg("push provider call failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	log.Info().Str("title", req.Title).Msg("notification dispatched")
	c.JSON(http.StatusOK, MessageResponse{Message: dispatchCompleted})
}
