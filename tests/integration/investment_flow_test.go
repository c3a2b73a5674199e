package integration

import (
	"net/http"
	"testing"
	"time"
)

func TestInvestmentFlow_InvestAndListPositions(t *testing.T) {
	app := setupApp(t)

	issuerToken, _, _ := app.registerUserWithRole(t, "issuer@test.com", "password123", "issuer")
	investorToken, _, investorID := app.registerUser(t, "investor@test.com", "password123")
	bondID := app.issueBond(t, issuerToken, 10000)

	// First investment creates a position
	rec := app.request("POST", "/api/v1/bonds/"+bondID+"/invest",
		`{"tranche_index":0,"amount":3000}`, investorToken)
	if rec.Code != http.StatusCreated {
		t.Fatalf("invest failed: %d %s", rec.Code, rec.Body.String())
	}
	investment := parseJSON(t, rec)["investment"].(map[string]interface{})
	if investment["principal"].(float64) != 3000 {
		t.Errorf("expected principal 3000, got %v", investment["principal"])
	}
	if investment["investor_id"] != investorID {
		t.Errorf("expected investor_id %s, got %v", investorID, investment["investor_id"])
	}

	// Second investment accumulates onto the same position
	app.invest(t, investorToken, bondID, 0, 1500)

	rec = app.request("GET", "/api/v1/positions", "", investorToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("list positions failed: %d %s", rec.Code, rec.Body.String())
	}
	page := parseJSON(t, rec)
	if page["total_items"].(float64) != 1 {
		t.Fatalf("expected a single position, got %v", page["total_items"])
	}
	position := page["data"].([]interface{})[0].(map[string]interface{})
	if position["principal"].(float64) != 4500 {
		t.Errorf("expected accumulated principal 4500, got %v", position["principal"])
	}

	// Tranche bookkeeping reflects both investments
	rec = app.request("GET", "/api/v1/bonds/"+bondID+"/tranches/0", "", investorToken)
	tranche := parseJSON(t, rec)["tranche"].(map[string]interface{})
	if tranche["total_invested"].(float64) != 4500 {
		t.Errorf("expected total_invested 4500, got %v", tranche["total_invested"])
	}
}

func TestInvestmentFlow_AllocationCap(t *testing.T) {
	app := setupApp(t)

	issuerToken, _, _ := app.registerUserWithRole(t, "issuer@test.com", "password123", "issuer")
	aliceToken, _, _ := app.registerUser(t, "alice@test.com", "password123")
	bobToken, _, _ := app.registerUser(t, "bob@test.com", "password123")
	bondID := app.issueBond(t, issuerToken, 10000)

	// Senior cap is 5000 under the default split
	app.invest(t, aliceToken, bondID, 0, 4000)

	// Bob's 1001 would breach the cap
	rec := app.request("POST", "/api/v1/bonds/"+bondID+"/invest",
		`{"tranche_index":0,"amount":1001}`, bobToken)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
	assertErrorCode(t, rec, "ALLOCATION_EXCEEDED")

	// Exactly filling the remainder is fine
	app.invest(t, bobToken, bondID, 0, 1000)
}

func TestInvestmentFlow_ClosedAfterMaturityDate(t *testing.T) {
	app := setupApp(t)

	issuerToken, _, _ := app.registerUserWithRole(t, "issuer@test.com", "password123", "issuer")
	investorToken, _, _ := app.registerUser(t, "investor@test.com", "password123")
	bondID := app.issueBond(t, issuerToken, 10000)

	// The bond is still ACTIVE but its maturity date has passed
	app.Clock.Advance(366 * 24 * time.Hour)

	rec := app.request("POST", "/api/v1/bonds/"+bondID+"/invest",
		`{"tranche_index":0,"amount":1000}`, investorToken)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
	assertErrorCode(t, rec, "BOND_MATURED")
}

func TestInvestmentFlow_UnknownBond(t *testing.T) {
	app := setupApp(t)

	investorToken, _, _ := app.registerUser(t, "investor@test.com", "password123")

	rec := app.request("POST", "/api/v1/bonds/no-such-bond/invest",
		`{"tranche_index":0,"amount":1000}`, investorToken)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
	assertErrorCode(t, rec, "BOND_NOT_FOUND")
}
