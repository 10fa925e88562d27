package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	appbilling "github.com/zevix-io/zevix/internal/application/billing"
	"github.com/zevix-io/zevix/internal/application/metering"
	userapp "github.com/zevix-io/zevix/internal/application/user"
	domainbilling "github.com/zevix-io/zevix/internal/domain/billing"
	"github.com/zevix-io/zevix/internal/infrastructure/auth"
	"github.com/zevix-io/zevix/internal/infrastructure/persistence/models"
	"github.com/zevix-io/zevix/internal/infrastructure/repository"
	"github.com/zevix-io/zevix/internal/interfaces/http/handlers"
	"github.com/zevix-io/zevix/internal/interfaces/http/handlers/testutil"
	"github.com/zevix-io/zevix/internal/interfaces/http/routes"
	"github.com/zevix-io/zevix/internal/shared/db"
)

// fakeBillingGateway serves checkout sessions and subscriptions from
// memory so the full flow runs without the external billing system.
type fakeBillingGateway struct {
	sessions map[string]*appbilling.CheckoutSession
	subs     map[string][]domainbilling.Subscription
}

func (g *fakeBillingGateway) SubscriptionsByEmail(ctx context.Context, email string) ([]domainbilling.Subscription, error) {
	return g.subs[email], nil
}

func (g *fakeBillingGateway) CheckoutSession(ctx context.Context, sessionID string) (*appbilling.CheckoutSession, error) {
	return g.sessions[sessionID], nil
}

func (g *fakeBillingGateway) CustomerEmail(ctx context.Context, customerID string) (string, error) {
	return "", nil
}

type flowFixture struct {
	engine  *gin.Engine
	gateway *fakeBillingGateway
}

func newFlowFixture(t *testing.T) *flowFixture {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&models.UserModel{}, &models.UsageModel{}))

	log := testutil.NewMockLogger()
	userRepo := repository.NewUserRepository(gdb, log)
	usageRepo := repository.NewUsageRepository(gdb, log)
	txManager := db.NewTransactionManager(gdb)

	catalog := domainbilling.NewCatalog(nil, map[string]string{"price_basic": "basic"}, nil)
	planCache := appbilling.NewPlanCache(5 * time.Minute)
	gateway := &fakeBillingGateway{
		sessions: map[string]*appbilling.CheckoutSession{},
		subs:     map[string][]domainbilling.Subscription{},
	}

	reconcileUC := appbilling.NewReconcilePlanUseCase(gateway, userRepo, catalog, planCache, time.Second, 30, log)
	applyUC := appbilling.NewApplyCheckoutUseCase(userRepo, usageRepo, catalog, planCache, gateway, 30, log)
	verifyUC := appbilling.NewVerifySessionUseCase(gateway, applyUC, log)

	hasher := auth.NewBcryptPasswordHasher(4)
	jwtService := auth.NewJWTService("integration-test-secret", 30)
	registerUC := userapp.NewRegisterUseCase(userRepo, hasher, log)
	loginUC := userapp.NewLoginUseCase(userRepo, usageRepo, catalog, reconcileUC, hasher, jwtService, log)
	consumeUC := metering.NewConsumeLeadsUseCase(userRepo, usageRepo, catalog, reconcileUC, txManager, log)

	engine := gin.New()
	routes.SetupZevixRoutes(engine, &routes.ZevixRouteConfig{
		AuthHandler:    handlers.NewAuthHandler(registerUC, loginUC),
		LeadHandler:    handlers.NewLeadHandler(consumeUC),
		BillingHandler: handlers.NewBillingHandler(verifyUC, applyUC, gateway, "whsec_flow"),
		JWTService:     jwtService,
	})

	return &flowFixture{engine: engine, gateway: gateway}
}

func (f *flowFixture) post(t *testing.T, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	jsonBytes, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(jsonBytes))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

// TestLeadFlow walks the whole account lifecycle: register, blocked
// consumption without a plan, checkout verification, login, metered
// consumption, and idempotent re-submission of the same lead ids.
func TestLeadFlow(t *testing.T) {
	f := newFlowFixture(t)
	const email = "flow@example.com"

	// Register a fresh account.
	w := f.post(t, "/zevix/register", "", map[string]string{
		"email":    email,
		"password": "long-enough-password",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// Consumption without a plan is refused.
	w = f.post(t, "/zevix/consume-leads", "", map[string]interface{}{
		"email":    email,
		"lead_ids": []string{"l1"},
	})
	require.Equal(t, http.StatusForbidden, w.Code)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "no_plan", resp.Error.Reason)

	// A completed checkout carrying the basic price upgrades the account.
	f.gateway.sessions["cs_flow_1"] = &appbilling.CheckoutSession{
		ID:            "cs_flow_1",
		Status:        "complete",
		PaymentStatus: "paid",
		Metadata:      map[string]string{"email": email},
		LineItems:     []appbilling.CheckoutLineItem{{PriceID: "price_basic"}},
	}
	w = f.post(t, "/zevix/verify-session", "", map[string]string{"session_id": "cs_flow_1"})
	require.Equal(t, http.StatusOK, w.Code)

	// Login returns the plan snapshot and a token.
	w = f.post(t, "/zevix/login", "", map[string]string{
		"email":    email,
		"password": "long-enough-password",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var loginResp struct {
		Data userapp.LoginResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &loginResp))
	assert.Equal(t, "basic", loginResp.Data.Plan)
	assert.Equal(t, 500, loginResp.Data.Limit)
	require.NotEmpty(t, loginResp.Data.Token)
	token := loginResp.Data.Token

	// Consume two leads with the bearer token.
	w = f.post(t, "/zevix/consume-leads", token, map[string]interface{}{
		"lead_ids": []string{"l1", "l2"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var consumeResp struct {
		Data metering.ConsumeLeadsResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &consumeResp))
	assert.Equal(t, 2, consumeResp.Data.Used)
	assert.Equal(t, 2, consumeResp.Data.NewlyUsed)
	assert.Equal(t, 498, consumeResp.Data.Remaining)

	// Re-submitting the same ids succeeds but charges nothing.
	w = f.post(t, "/zevix/consume-leads", token, map[string]interface{}{
		"lead_ids": []string{"l1", "l2"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &consumeResp))
	assert.Equal(t, 2, consumeResp.Data.Used)
	assert.Equal(t, 0, consumeResp.Data.NewlyUsed)
	assert.ElementsMatch(t, []string{"l1", "l2"}, consumeResp.Data.DuplicateIDs)

	// The legacy route name behaves identically.
	w = f.post(t, "/zevix/export-lead", token, map[string]interface{}{
		"lead_ids": []string{"l3"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &consumeResp))
	assert.Equal(t, 3, consumeResp.Data.Used)
	assert.Equal(t, 1, consumeResp.Data.NewlyUsed)
}
