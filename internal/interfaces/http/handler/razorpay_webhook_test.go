package handler

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	paymentapp "github.com/craftline/backend/internal/application/payment"
	"github.com/craftline/backend/internal/domain/payment"
	"github.com/craftline/backend/internal/domain/shared"
	"github.com/craftline/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testWebhookSecret = "whsec_test_secret"

type hmacVerifier struct{ secret string }

func (v *hmacVerifier) VerifyWebhookSignature(body []byte, signature string) error {
	mac := hmac.New(sha256.New, []byte(v.secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return shared.ErrSignatureInvalid
	}
	return nil
}

type memWebhookRepo struct {
	mu     sync.Mutex
	events []*payment.WebhookEvent
}

func (r *memWebhookRepo) Save(ctx context.Context, event *payment.WebhookEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *memWebhookRepo) FindByID(ctx context.Context, id uuid.UUID) (*payment.WebhookEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memWebhookRepo) FindByGatewayEventID(ctx context.Context, gateway payment.Gateway, gatewayEventID string) (*payment.WebhookEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.Gateway == gateway && e.GatewayEventID == gatewayEventID {
			return e, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memWebhookRepo) FindDue(ctx context.Context, now time.Time, limit int) ([]*payment.WebhookEvent, error) {
	return nil, nil
}

func (r *memWebhookRepo) MarkProcessing(ctx context.Context, ids []uuid.UUID) ([]*payment.WebhookEvent, error) {
	return nil, nil
}

func (r *memWebhookRepo) Update(ctx context.Context, event *payment.WebhookEvent) error {
	return nil
}

func (r *memWebhookRepo) FindDead(ctx context.Context, page, pageSize int) ([]*payment.WebhookEvent, int64, error) {
	return nil, 0, nil
}

func (r *memWebhookRepo) CountByStatus(ctx context.Context) (map[payment.WebhookEventStatus]int64, error) {
	return map[payment.WebhookEventStatus]int64{}, nil
}

func (r *memWebhookRepo) DeleteProcessedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func signBody(body []byte) string {
	mac := hmac.New(sha256.New, []byte(testWebhookSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func newWebhookTestRouter(repo *memWebhookRepo) *gin.Engine {
	ingest := paymentapp.NewWebhookIngestService(repo, &hmacVerifier{secret: testWebhookSecret}, zap.NewNop())
	h := NewRazorpayWebhookHandler(ingest)
	r := gin.New()
	r.POST("/webhook", h.Receive)
	return r
}

func postWebhook(r *gin.Engine, body []byte, signature, eventID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
	if signature != "" {
		req.Header.Set(razorpaySignatureHeader, signature)
	}
	if eventID != "" {
		req.Header.Set(razorpayEventIDHeader, eventID)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRazorpayWebhookHandler_StoresValidDelivery(t *testing.T) {
	repo := &memWebhookRepo{}
	router := newWebhookTestRouter(repo)

	body := []byte(`{"event":"payment.captured","payload":{}}`)
	w := postWebhook(router, body, signBody(body), "evt_001")

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, repo.events, 1)
	assert.Equal(t, "evt_001", repo.events[0].GatewayEventID)
	assert.Equal(t, "payment.captured", repo.events[0].EventType)
	assert.Equal(t, payment.WebhookStatusPending, repo.events[0].Status)
}

func TestRazorpayWebhookHandler_RejectsInvalidSignature(t *testing.T) {
	repo := &memWebhookRepo{}
	router := newWebhookTestRouter(repo)

	body := []byte(`{"event":"payment.captured","payload":{}}`)
	w := postWebhook(router, body, "deadbeef", "evt_002")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, repo.events)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeSignatureInvalid, resp.Error.Code)
}

func TestRazorpayWebhookHandler_AcknowledgesRedelivery(t *testing.T) {
	repo := &memWebhookRepo{}
	router := newWebhookTestRouter(repo)

	body := []byte(`{"event":"payment.captured","payload":{}}`)
	sig := signBody(body)

	first := postWebhook(router, body, sig, "evt_003")
	second := postWebhook(router, body, sig, "evt_003")

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Len(t, repo.events, 1)
}

func TestRazorpayWebhookHandler_RejectsEmptyBody(t *testing.T) {
	repo := &memWebhookRepo{}
	router := newWebhookTestRouter(repo)

	w := postWebhook(router, nil, "", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, repo.events)
}
