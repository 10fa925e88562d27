package handlers

import (
	"context"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79/webhook"

	appbilling "github.com/zevix-io/zevix/internal/application/billing"
	"github.com/zevix-io/zevix/internal/domain/billing"
	"github.com/zevix-io/zevix/internal/interfaces/http/handlers/testutil"
	apperrors "github.com/zevix-io/zevix/internal/shared/errors"
)

const testWebhookSecret = "whsec_test_secret"

type mockVerifier struct {
	result       *appbilling.ApplyResult
	err          error
	gotSessionID string
}

func (m *mockVerifier) Execute(ctx context.Context, sessionID string) (*appbilling.ApplyResult, error) {
	m.gotSessionID = sessionID
	return m.result, m.err
}

type mockCanceller struct {
	err      error
	gotEmail string
}

func (m *mockCanceller) ApplyCancellation(ctx context.Context, email string) error {
	m.gotEmail = email
	return m.err
}

type mockEmailResolver struct {
	email string
	err   error
}

func (m *mockEmailResolver) CustomerEmail(ctx context.Context, customerID string) (string, error) {
	return m.email, m.err
}

type testContext struct {
	c *gin.Context
	w *httptest.ResponseRecorder
}

func newBodyRequest(payload string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/zevix/webhook", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// signedWebhookRequest builds a test context carrying a payload signed
// the way the billing provider signs webhook deliveries.
func signedWebhookRequest(payload string) *testContext {
	now := time.Now()
	sig := webhook.ComputeSignature(now, []byte(payload), testWebhookSecret)
	header := fmt.Sprintf("t=%d,v1=%s", now.Unix(), hex.EncodeToString(sig))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = newBodyRequest(payload)
	c.Request.Header.Set("Stripe-Signature", header)
	return &testContext{c: c, w: w}
}

func TestBillingHandler_VerifySession_Success(t *testing.T) {
	verifier := &mockVerifier{result: &appbilling.ApplyResult{
		Email:   "user@example.com",
		Plan:    billing.PlanBasic,
		Changed: true,
	}}
	handler := NewBillingHandler(verifier, nil, nil, testWebhookSecret)

	c, w := testutil.NewTestContext(http.MethodPost, "/zevix/verify-session",
		VerifySessionRequest{SessionID: "cs_test_123"})

	handler.VerifySession(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cs_test_123", verifier.gotSessionID)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	assert.True(t, resp.Success)
}

func TestBillingHandler_VerifySession_NotFound(t *testing.T) {
	verifier := &mockVerifier{err: apperrors.NewNotFoundError("session_not_found", "checkout session does not exist")}
	handler := NewBillingHandler(verifier, nil, nil, testWebhookSecret)

	c, w := testutil.NewTestContext(http.MethodPost, "/zevix/verify-session",
		VerifySessionRequest{SessionID: "cs_missing"})

	handler.VerifySession(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBillingHandler_VerifySession_MissingID(t *testing.T) {
	handler := NewBillingHandler(&mockVerifier{}, nil, nil, testWebhookSecret)

	c, w := testutil.NewTestContext(http.MethodPost, "/zevix/verify-session", map[string]string{})

	handler.VerifySession(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBillingHandler_Webhook_BadSignature(t *testing.T) {
	handler := NewBillingHandler(&mockVerifier{}, nil, nil, testWebhookSecret)

	c, w := testutil.NewTestContext(http.MethodPost, "/zevix/webhook", nil)
	c.Request = newBodyRequest(`{"type":"checkout.session.completed"}`)
	c.Request.Header.Set("Stripe-Signature", "t=123,v1=deadbeef")

	handler.Webhook(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "invalid_signature", resp.Error.Reason)
}

func TestBillingHandler_Webhook_CheckoutCompleted(t *testing.T) {
	verifier := &mockVerifier{result: &appbilling.ApplyResult{
		Email:   "user@example.com",
		Plan:    billing.PlanBusiness,
		Changed: true,
	}}
	handler := NewBillingHandler(verifier, nil, nil, testWebhookSecret)

	payload := `{"type":"checkout.session.completed","data":{"object":{"id":"cs_test_456","object":"checkout.session"}}}`
	tc := signedWebhookRequest(payload)

	handler.Webhook(tc.c)

	assert.Equal(t, http.StatusOK, tc.w.Code)
	assert.Equal(t, "cs_test_456", verifier.gotSessionID)
}

func TestBillingHandler_Webhook_CheckoutUnknownUserAcked(t *testing.T) {
	verifier := &mockVerifier{err: apperrors.NewNotFoundError("user_not_found", "no account for checkout email")}
	handler := NewBillingHandler(verifier, nil, nil, testWebhookSecret)

	payload := `{"type":"checkout.session.completed","data":{"object":{"id":"cs_test_789","object":"checkout.session"}}}`
	tc := signedWebhookRequest(payload)

	handler.Webhook(tc.c)

	// Retrying this event can never succeed, so it is acknowledged.
	assert.Equal(t, http.StatusOK, tc.w.Code)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(tc.w, &resp))
	assert.True(t, resp.Success)
}

func TestBillingHandler_Webhook_SubscriptionDeleted(t *testing.T) {
	canceller := &mockCanceller{}
	resolver := &mockEmailResolver{email: "user@example.com"}
	handler := NewBillingHandler(&mockVerifier{}, canceller, resolver, testWebhookSecret)

	payload := `{"type":"customer.subscription.deleted","data":{"object":{"id":"sub_1","object":"subscription","customer":{"id":"cus_1"}}}}`
	tc := signedWebhookRequest(payload)

	handler.Webhook(tc.c)

	assert.Equal(t, http.StatusOK, tc.w.Code)
	assert.Equal(t, "user@example.com", canceller.gotEmail)
}

func TestBillingHandler_Webhook_SubscriptionDeletedUnresolvableAcked(t *testing.T) {
	canceller := &mockCanceller{}
	resolver := &mockEmailResolver{err: fmt.Errorf("customer lookup failed")}
	handler := NewBillingHandler(&mockVerifier{}, canceller, resolver, testWebhookSecret)

	payload := `{"type":"customer.subscription.deleted","data":{"object":{"id":"sub_2","object":"subscription","customer":{"id":"cus_2"}}}}`
	tc := signedWebhookRequest(payload)

	handler.Webhook(tc.c)

	assert.Equal(t, http.StatusOK, tc.w.Code)
	assert.Empty(t, canceller.gotEmail)
}

func TestBillingHandler_Webhook_UnknownEventIgnored(t *testing.T) {
	handler := NewBillingHandler(&mockVerifier{}, nil, nil, testWebhookSecret)

	payload := `{"type":"invoice.paid","data":{"object":{"id":"in_1"}}}`
	tc := signedWebhookRequest(payload)

	handler.Webhook(tc.c)

	assert.Equal(t, http.StatusOK, tc.w.Code)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(tc.w, &resp))
	assert.Equal(t, "event ignored", resp.Message)
}
