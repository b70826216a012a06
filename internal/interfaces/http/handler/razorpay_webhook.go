package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	paymentapp "github.com/craftline/backend/internal/application/payment"
	"github.com/craftline/backend/internal/domain/shared"
	"github.com/craftline/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

const (
	razorpaySignatureHeader = "X-Razorpay-Signature"
	razorpayEventIDHeader   = "X-Razorpay-Event-Id"
)

// razorpayEventEnvelope is the minimal shape we peek at before queueing;
// full parsing happens in the async processor.
type razorpayEventEnvelope struct {
	Event string `json:"event"`
}

// RazorpayWebhookHandler receives gateway deliveries. It only verifies and
// stores them; Razorpay retries on anything but a 2xx, so the handler must
// answer quickly and never depend on downstream processing.
type RazorpayWebhookHandler struct {
	BaseHandler
	ingestService *paymentapp.WebhookIngestService
}

// NewRazorpayWebhookHandler creates a new RazorpayWebhookHandler
func NewRazorpayWebhookHandler(ingestService *paymentapp.WebhookIngestService) *RazorpayWebhookHandler {
	return &RazorpayWebhookHandler{ingestService: ingestService}
}

// Receive godoc
// @Summary      Receive a Razorpay webhook delivery
// @Description  Verifies the HMAC signature against the raw body, stores the
// @Description  event for asynchronous processing and acknowledges.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        X-Razorpay-Signature header string true "HMAC-SHA256 signature of the body"
// @Param        X-Razorpay-Event-Id header string false "Gateway event id for deduplication"
// @Success      200 {object} SuccessResponse
// @Failure      400 {object} ErrorResponse
// @Router       /payments/razorpay/webhook [post]
func (h *RazorpayWebhookHandler) Receive(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.BadRequest(c, "Failed to read request body")
		return
	}
	if len(body) == 0 {
		h.BadRequest(c, "Empty request body")
		return
	}

	signature := c.GetHeader(razorpaySignatureHeader)
	eventID := c.GetHeader(razorpayEventIDHeader)

	var envelope razorpayEventEnvelope
	// A body that is not JSON still gets signature-checked; event type stays empty
	_ = json.Unmarshal(body, &envelope)

	err = h.ingestService.Ingest(c.Request.Context(), eventID, envelope.Event, body, signature)
	if err != nil {
		if errors.Is(err, shared.ErrSignatureInvalid) {
			h.Error(c, http.StatusBadRequest, dto.ErrCodeSignatureInvalid, "Webhook signature verification failed")
			return
		}
		h.HandleDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"status": "ok"}))
}
