package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"bondfall/internal/bondlock"
	"bondfall/internal/handlers"
	"bondfall/internal/logger"
	"bondfall/internal/middleware"
	"bondfall/internal/models"
	"bondfall/internal/services"
	"bondfall/internal/testutil"
	"bondfall/internal/validator"
)

const pipelineKey = "pipeline-test-key"

// testEpoch anchors every integration test's clock so accrual windows are
// deterministic.
var testEpoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
	Clock  *testutil.FakeClock
	Ledger *testutil.FakeLedger
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.User{},
		&models.Bond{},
		&models.Tranche{},
		&models.Investment{},
		&models.RevenueDistribution{},
		&models.Redemption{},
		&models.AuditLog{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory
// SQLite, a frozen clock, and a recording payment ledger.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)
	clk := testutil.NewFakeClock(testEpoch)
	paymentLedger := testutil.NewFakeLedger()
	guard := bondlock.NewGuard()
	authCtx := services.NewRoleAuthorization(db)

	// Services
	userService := services.NewUserService(db, clk)
	auditService := services.NewAuditService(db)
	bondService := services.NewBondService(db, clk, authCtx)
	investmentService := services.NewInvestmentService(db, clk, guard)
	distributionService := services.NewDistributionService(db, clk, guard)
	redemptionService := services.NewRedemptionService(db, clk, guard, paymentLedger)
	lifecycleService := services.NewLifecycleService(db, clk, guard, authCtx)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService, auditService)
	bondHandler := handlers.NewBondHandler(bondService, lifecycleService, auditService)
	investmentHandler := handlers.NewInvestmentHandler(investmentService, auditService)
	distributionHandler := handlers.NewDistributionHandler(distributionService, auditService)
	redemptionHandler := handlers.NewRedemptionHandler(redemptionService, auditService)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)

	bonds := protected.Group("/bonds")
	bonds.POST("", bondHandler.IssueBond)
	bonds.GET("", bondHandler.ListBonds)
	bonds.GET("/:id", bondHandler.GetBond)
	bonds.GET("/:id/tranches/:index", bondHandler.GetTranche)
	bonds.GET("/:id/distributions", bondHandler.ListDistributions)
	bonds.POST("/:id/mature", bondHandler.MatureBond)
	bonds.POST("/:id/default", bondHandler.DefaultBond)
	bonds.POST("/:id/invest", investmentHandler.Invest)
	bonds.POST("/:id/redeem", redemptionHandler.Redeem)

	protected.GET("/positions", investmentHandler.GetPositions)

	pipeline := v1.Group("/pipeline")
	pipeline.Use(middleware.PipelineAuthMiddleware(pipelineKey))
	pipeline.POST("/distributions", distributionHandler.Distribute)

	return &testApp{DB: db, Router: router, Clock: clk, Ledger: paymentLedger}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// pipelineRequest makes a request authenticated with the pipeline API key.
func (app *testApp) pipelineRequest(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", pipelineKey)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// assertErrorCode asserts the machine-readable error code on a failure response.
func assertErrorCode(t *testing.T, rec *httptest.ResponseRecorder, code string) {
	t.Helper()
	result := parseJSON(t, rec)
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object, got %s", rec.Body.String())
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %s, got %v", code, errObj["code"])
	}
}

// registerUser registers a new investor and returns the access token, refresh
// token, and user ID.
func (app *testApp) registerUser(t *testing.T, email, password string) (accessToken, refreshToken, userID string) {
	t.Helper()
	return app.registerUserWithRole(t, email, password, "")
}

// registerUserWithRole registers a user with an explicit role.
func (app *testApp) registerUserWithRole(t *testing.T, email, password, role string) (accessToken, refreshToken, userID string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q,"first_name":"Test","last_name":"User"`, email, password)
	if role != "" {
		body += fmt.Sprintf(`,"role":%q`, role)
	}
	body += `}`
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	user := result["user"].(map[string]interface{})
	return result["access_token"].(string), result["refresh_token"].(string), user["id"].(string)
}

// loginUser logs in and returns the access and refresh tokens.
func (app *testApp) loginUser(t *testing.T, email, password string) (accessToken, refreshToken string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	rec := app.request("POST", "/api/v1/auth/login", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	return result["access_token"].(string), result["refresh_token"].(string)
}

// issueBond issues a bond as the given issuer and returns its ID. Maturity is
// one year past the test epoch unless the body overrides it.
func (app *testApp) issueBond(t *testing.T, issuerToken string, totalValue int64) string {
	t.Helper()
	body := fmt.Sprintf(
		`{"asset_ref":"warehouse-7","total_value":%d,"maturity_date":%q,"rates_bps":[500,1000,2000]}`,
		totalValue, testEpoch.AddDate(1, 0, 0).Format(time.RFC3339))
	rec := app.request("POST", "/api/v1/bonds", body, issuerToken)
	if rec.Code != http.StatusCreated {
		t.Fatalf("issue bond failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	bond := result["bond"].(map[string]interface{})
	return bond["id"].(string)
}

// invest places principal into a bond tranche for the given investor.
func (app *testApp) invest(t *testing.T, token, bondID string, trancheIndex int, amount int64) {
	t.Helper()
	body := fmt.Sprintf(`{"tranche_index":%d,"amount":%d}`, trancheIndex, amount)
	rec := app.request("POST", "/api/v1/bonds/"+bondID+"/invest", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("invest failed: %d %s", rec.Code, rec.Body.String())
	}
}

// distribute pushes revenue through the pipeline endpoint.
func (app *testApp) distribute(t *testing.T, bondID string, amount int64) map[string]interface{} {
	t.Helper()
	body := fmt.Sprintf(`{"bond_id":%q,"amount":%d}`, bondID, amount)
	rec := app.pipelineRequest("POST", "/api/v1/pipeline/distributions", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("distribute failed: %d %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)["distribution"].(map[string]interface{})
}
